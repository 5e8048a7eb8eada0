package menu

import (
	"bytes"
	"errors"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/jacoelho/xsd"
	"github.com/jacoelho/xsd/xsderrors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoaderOptions tunes schema validation.
type LoaderOptions struct {
	// MaxErrors caps the number of validation diagnostics collected before
	// the validator stops. Zero uses the validator's default.
	MaxErrors int
}

// Loader validates menu documents against a compiled schema and parses them
// into a mutable element tree.
type Loader struct {
	schemaPath string
	engine     *xsd.Engine
	opts       xsd.ValidateOptions
}

// NewLoader compiles the schema at schemaPath. The returned Loader can be used
// for any number of documents.
func NewLoader(schemaPath string, opts LoaderOptions) (*Loader, error) {
	if _, err := os.Stat(schemaPath); err != nil {
		return nil, newError(KindSchema, StageLoad, schemaPath, eris.Wrap(err, "menu: stat schema"))
	}

	engine, err := xsd.Compile(xsd.File(schemaPath))
	if err != nil {
		return nil, newError(KindSchema, StageLoad, schemaPath, eris.Wrap(err, "menu: compile schema"))
	}

	maxErrors := opts.MaxErrors
	if maxErrors < 0 {
		maxErrors = 0
	}

	l := &Loader{
		schemaPath: schemaPath,
		engine:     engine,
		opts:       xsd.ValidateOptions{MaxErrors: maxErrors},
	}
	if err := l.checkRootType(); err != nil {
		return nil, err
	}
	return l, nil
}

// checkRootType validates an empty instance of the schema's first global
// element. Compilation accepts references to undefined types, so this is the
// earliest point they surface. Content diagnostics on the empty instance are
// expected and ignored.
func (l *Loader) checkRootType() error {
	xsdDoc := etree.NewDocument()
	if err := xsdDoc.ReadFromFile(l.schemaPath); err != nil {
		return newError(KindSchema, StageLoad, l.schemaPath, eris.Wrap(err, "menu: read schema"))
	}
	root := xsdDoc.Root()
	if root == nil {
		return newError(KindSchema, StageLoad, l.schemaPath, eris.New("menu: schema has no root element"))
	}

	var name string
	for _, el := range root.ChildElements() {
		if el.Tag == "element" && el.SelectAttrValue("name", "") != "" {
			name = el.SelectAttrValue("name", "")
			break
		}
	}
	if name == "" {
		return nil
	}

	instance := etree.NewDocument()
	instance.CreateElement(name)
	data, err := instance.WriteToBytes()
	if err != nil {
		return newError(KindSchema, StageLoad, l.schemaPath, eris.Wrap(err, "menu: build schema check document"))
	}

	err = l.engine.ValidateWithOptions(bytes.NewReader(data), xsd.ValidateOptions{})
	if err == nil {
		return nil
	}
	for _, d := range xsderrors.Flatten(err) {
		var xe *xsderrors.Error
		if errors.As(d, &xe) && isSchemaDiagnostic(xe) {
			return newError(KindSchema, StageLoad, l.schemaPath,
				eris.Wrapf(d, "menu: schema element %q references an undefined type", name))
		}
	}
	return nil
}

// SchemaPath returns the path the schema was compiled from.
func (l *Loader) SchemaPath() string {
	return l.schemaPath
}

// Load reads the document at path, rejects DOCTYPE declarations, validates
// it against the schema and returns the parsed tree.
func (l *Loader) Load(path string) (*etree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KindIO, StageLoad, path, eris.Wrap(err, "menu: read document"))
	}

	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = false
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, newError(KindParse, StageLoad, path, eris.Wrap(err, "menu: parse document"))
	}

	if hasDoctype(&doc.Element) {
		return nil, newError(KindParse, StageLoad, path, eris.New("menu: DOCTYPE declarations are not allowed"))
	}

	if err := l.engine.ValidateWithOptions(bytes.NewReader(data), l.opts); err != nil {
		return nil, l.classifyValidation(path, err)
	}

	if doc.Root() == nil {
		return nil, newError(KindParse, StageLoad, path, eris.New("menu: document has no root element"))
	}

	return doc, nil
}

func hasDoctype(e *etree.Element) bool {
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.Directive:
			if strings.HasPrefix(strings.TrimSpace(t.Data), "DOCTYPE") {
				return true
			}
		case *etree.Element:
			if hasDoctype(t) {
				return true
			}
		}
	}
	return false
}

// classifyValidation turns validator diagnostics into a single typed error.
// Unresolved schema types are schema failures reported against the schema
// file. Well-formedness and unsupported-feature diagnostics are parse
// failures; everything else means the document does not conform.
func (l *Loader) classifyValidation(path string, err error) error {
	diags := xsderrors.Flatten(err)
	if len(diags) == 0 {
		diags = []error{err}
	}

	kind := KindValidation
	var schemaDiag error
	for _, d := range diags {
		var xe *xsderrors.Error
		if !errors.As(d, &xe) {
			zap.L().Error("schema validation failed", zap.String("document", path), zap.Error(d))
			continue
		}
		zap.L().Error("schema validation failed",
			zap.String("document", path),
			zap.String("category", string(xe.Category())),
			zap.String("code", string(xe.Code())),
			zap.String("path", xe.Path()),
			zap.Int("line", xe.Line()),
			zap.Int("column", xe.Column()),
			zap.String("message", xe.Message()),
		)
		switch {
		case isSchemaDiagnostic(xe):
			if schemaDiag == nil {
				schemaDiag = d
			}
		case isParseDiagnostic(xe):
			kind = KindParse
		}
	}

	if schemaDiag != nil {
		return newError(KindSchema, StageLoad, l.schemaPath,
			eris.Wrapf(schemaDiag, "menu: schema references an undefined type (validating %s)", path))
	}

	first := diags[0]
	if rest := len(diags) - 1; rest > 0 {
		return newError(kind, StageLoad, path, eris.Wrapf(first, "menu: validate document (%d more)", rest))
	}
	return newError(kind, StageLoad, path, eris.Wrap(first, "menu: validate document"))
}

// isSchemaDiagnostic reports an element whose declared type the compiled
// schema could not resolve. The validator only detects this at validation
// time.
func isSchemaDiagnostic(xe *xsderrors.Error) bool {
	return xe.Code() == xsderrors.CodeValidationElement &&
		strings.Contains(xe.Message(), "element type is unavailable")
}

func isParseDiagnostic(xe *xsderrors.Error) bool {
	if xe.Code() == xsderrors.CodeValidationXML {
		return true
	}
	switch xe.Category() {
	case xsderrors.CategoryUnsupported, xsderrors.CategoryFormat:
		return true
	}
	return false
}
