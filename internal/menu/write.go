package menu

import (
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"
)

// DefaultIndent is the number of spaces per nesting level in written output.
const DefaultIndent = 2

// WriteFile indents doc and writes it to path. The file is written to a
// temporary sibling first and renamed into place, so a failed write never
// leaves a partial document at path.
func WriteFile(doc *etree.Document, path string, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	ensureDeclaration(doc)
	doc.IndentWithSettings(&etree.IndentSettings{
		Spaces:                 indent,
		PreserveLeafWhitespace: true,
	})

	if err := writeAtomic(doc, path); err != nil {
		return newError(KindIO, StageSerialize, path, err)
	}
	return nil
}

func ensureDeclaration(doc *etree.Document) {
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = `version="1.0" encoding="UTF-8"`
			return
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
}

func writeAtomic(doc *etree.Document, path string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "menu: create temp file")
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = doc.WriteTo(tmp); err != nil {
		return eris.Wrap(err, "menu: write document")
	}
	if err = tmp.Sync(); err != nil {
		return eris.Wrap(err, "menu: sync document")
	}
	if err = tmp.Close(); err != nil {
		return eris.Wrap(err, "menu: close document")
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return eris.Wrap(err, "menu: chmod document")
	}
	if err = os.Rename(tmpName, path); err != nil {
		return eris.Wrap(err, "menu: rename document")
	}
	return nil
}
