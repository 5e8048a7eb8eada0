// Package report renders menu statistics for people and spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/Alexander-P/DOM-XMLParsing/internal/menu"
	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
)

// Format selects how statistics are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("report: unknown format %q (want table, json, yaml or xlsx)", s)
	}
}

// DishPrice is the average price of one dish type.
type DishPrice struct {
	Type    string `json:"type" yaml:"type"`
	Average string `json:"average" yaml:"average"`
	Dishes  int    `json:"dishes" yaml:"dishes"`
}

// Summary is the serializable view of a Statistics value. Decimals are
// pre-formatted so every format matches the XML output.
type Summary struct {
	AverageDishPrice []DishPrice `json:"average_dish_price" yaml:"average_dish_price"`
	AverageRating    string      `json:"average_rating" yaml:"average_rating"`
	IngredientCount  int         `json:"ingredient_count" yaml:"ingredient_count"`
	TotalOpenHours   string      `json:"total_open_hours" yaml:"total_open_hours"`
	Dishes           int         `json:"dishes" yaml:"dishes"`
	Reviews          int         `json:"reviews" yaml:"reviews"`
	OpenDays         int         `json:"open_days" yaml:"open_days"`
}

// NewSummary builds the Summary for stats.
func NewSummary(stats *model.Statistics) Summary {
	s := Summary{
		AverageDishPrice: make([]DishPrice, 0, len(stats.DishTypes)),
		AverageRating:    model.FormatDecimal(stats.AverageRating()),
		IngredientCount:  stats.IngredientCount,
		TotalOpenHours:   model.FormatDecimal(stats.TotalOpenHours),
		Dishes:           stats.DishCount,
		Reviews:          stats.ReviewCount,
		OpenDays:         stats.OpenDays,
	}
	for _, d := range stats.DishTypes {
		s.AverageDishPrice = append(s.AverageDishPrice, DishPrice{
			Type:    d.Type,
			Average: model.FormatDecimal(d.Average()),
			Dishes:  d.Count,
		})
	}
	return s
}

// Write renders stats to w. FormatXLSX needs a file and is handled by
// WriteXLSX.
func Write(w io.Writer, stats *model.Statistics, f Format) error {
	if stats == nil {
		return eris.New("report: no statistics")
	}

	switch f {
	case FormatTable:
		return writeTable(w, stats)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewSummary(stats)); err != nil {
			return eris.Wrap(err, "report: encode json")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewSummary(stats)); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "report: close yaml encoder")
		}
		return nil
	case FormatXLSX:
		return eris.New("report: xlsx output requires a file path")
	default:
		return eris.Errorf("report: unknown format %q", f)
	}
}

// row is one metric line shared by the table and spreadsheet renderers.
type row struct {
	Metric string
	Type   string
	Value  string
}

func rows(stats *model.Statistics, count func(int) string) []row {
	out := make([]row, 0, len(stats.DishTypes)+3)
	for _, d := range stats.DishTypes {
		out = append(out, row{menu.ElemAverageDishPrice, d.Type, model.FormatDecimal(d.Average())})
	}
	out = append(out,
		row{Metric: menu.ElemAverageRating, Value: model.FormatDecimal(stats.AverageRating())},
		row{Metric: menu.ElemIngredientCount, Value: count(stats.IngredientCount)},
		row{Metric: menu.ElemTotalOpenHours, Value: model.FormatDecimal(stats.TotalOpenHours)},
	)
	return out
}

func writeTable(out io.Writer, stats *model.Statistics) error {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "METRIC\tTYPE\tVALUE")
	_, _ = fmt.Fprintln(w, "------\t----\t-----")
	for _, r := range rows(stats, func(n int) string { return p.Sprintf("%d", n) }) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Metric, r.Type, r.Value)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = p.Fprintf(w, "Dishes:\t%d\n", stats.DishCount)
	_, _ = p.Fprintf(w, "Reviews:\t%d\n", stats.ReviewCount)
	_, _ = p.Fprintf(w, "Open days:\t%d\n", stats.OpenDays)

	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "report: write table")
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
