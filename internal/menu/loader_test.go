package menu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jacoelho/xsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = "testdata/restaurant_schema.xsd"

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader(testSchema, LoaderOptions{})
	require.NoError(t, err)
	return l
}

func TestNewLoader_MissingSchema(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.xsd"), LoaderOptions{})
	require.Error(t, err)
	assert.Equal(t, KindSchema, KindOf(err))
	assert.Equal(t, StageLoad, StageOf(err))
}

func TestNewLoader_BrokenSchema(t *testing.T) {
	_, err := NewLoader("testdata/broken_schema.xsd", LoaderOptions{})
	require.Error(t, err)
	assert.Equal(t, KindSchema, KindOf(err))
	assert.Equal(t, StageLoad, StageOf(err))
	assert.Contains(t, err.Error(), "undefined type")
}

func TestLoader_Load_UndefinedSchemaType(t *testing.T) {
	engine, err := xsd.Compile(xsd.File("testdata/broken_schema.xsd"))
	require.NoError(t, err, "compilation accepts undefined type references")
	l := &Loader{schemaPath: "testdata/broken_schema.xsd", engine: engine}

	_, err = l.Load("testdata/ex7.xml")
	require.Error(t, err)
	assert.Equal(t, KindSchema, KindOf(err))
	assert.Equal(t, StageLoad, StageOf(err))

	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "testdata/broken_schema.xsd", merr.Path)
}

func TestNewLoader_NegativeMaxErrors(t *testing.T) {
	l, err := NewLoader(testSchema, LoaderOptions{MaxErrors: -3})
	require.NoError(t, err)
	assert.Equal(t, 0, l.opts.MaxErrors)
	assert.Equal(t, testSchema, l.SchemaPath())
}

func TestLoader_Load_Valid(t *testing.T) {
	l := newTestLoader(t)

	doc, err := l.Load("testdata/ex7.xml")
	require.NoError(t, err)
	require.NotNil(t, doc.Root())
	assert.Equal(t, "restaurant", doc.Root().Tag)
	assert.Equal(t, "Trattoria Lucia", doc.Root().SelectAttrValue("name", ""))
}

func TestLoader_Load_Errors(t *testing.T) {
	l := newTestLoader(t)

	tests := []struct {
		name string
		path string
		kind Kind
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.xml"), KindIO},
		{"malformed", "testdata/malformed.xml", KindParse},
		{"doctype", "testdata/doctype.xml", KindParse},
		{"schema violation", "testdata/invalid.xml", KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := l.Load(tt.path)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, StageLoad, StageOf(err))
		})
	}
}

func TestLoader_Load_DoctypeMessage(t *testing.T) {
	l := newTestLoader(t)

	_, err := l.Load("testdata/doctype.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCTYPE declarations are not allowed")
}

func TestLoader_Load_ExternalEntity(t *testing.T) {
	l := newTestLoader(t)

	path := filepath.Join(t.TempDir(), "xxe.xml")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE restaurant [
  <!ENTITY secret SYSTEM "file:///etc/passwd">
]>
<restaurant name="&secret;"><menu/></restaurant>
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := l.Load(path)
	require.Error(t, err)
	assert.Equal(t, KindParse, KindOf(err))
}

func TestLoader_Load_SchemaViolationMessage(t *testing.T) {
	l := newTestLoader(t)

	_, err := l.Load("testdata/invalid.xml")
	require.Error(t, err)

	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "testdata/invalid.xml", me.Path)
	assert.Contains(t, err.Error(), "validation error in load stage")
}
