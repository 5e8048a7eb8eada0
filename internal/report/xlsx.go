package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "statistics"

// noType fills the type column of metrics that are not per dish type.
const noType = "-"

var xlsxHeader = []string{"metric", "type", "value"}

// WriteXLSX saves stats as a single-sheet workbook at path.
func WriteXLSX(path string, stats *model.Statistics) error {
	if stats == nil {
		return eris.New("report: no statistics")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	addRow(sheet, xlsxHeader...)
	for _, r := range rows(stats, itoa) {
		typ := r.Type
		if typ == "" {
			typ = noType
		}
		addRow(sheet, r.Metric, typ, r.Value)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
