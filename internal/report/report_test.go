package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
)

func sampleStats() *model.Statistics {
	return &model.Statistics{
		DishTypes: []model.DishTypeStats{
			{Type: "appetizer", Sum: 8.5, Count: 1},
			{Type: "entree", Sum: 40.75, Count: 2},
			{Type: "dessert", Sum: 7.25, Count: 1},
		},
		DishCount:       4,
		ReviewCount:     3,
		RatingSum:       12,
		IngredientCount: 9,
		OpenDays:        6,
		TotalOpenHours:  70,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "table", want: FormatTable},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "xlsx", want: FormatXLSX},
		{in: "csv", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(sampleStats())

	require.Len(t, s.AverageDishPrice, 3)
	assert.Equal(t, DishPrice{Type: "appetizer", Average: "8.50", Dishes: 1}, s.AverageDishPrice[0])
	assert.Equal(t, DishPrice{Type: "entree", Average: "20.38", Dishes: 2}, s.AverageDishPrice[1])
	assert.Equal(t, "dessert", s.AverageDishPrice[2].Type)
	assert.Equal(t, "4.00", s.AverageRating)
	assert.Equal(t, 9, s.IngredientCount)
	assert.Equal(t, "70.00", s.TotalOpenHours)
	assert.Equal(t, 6, s.OpenDays)
}

func TestNewSummary_NoReviews(t *testing.T) {
	s := NewSummary(&model.Statistics{})
	assert.Equal(t, "0.00", s.AverageRating)
	assert.Equal(t, "0.00", s.TotalOpenHours)
	assert.NotNil(t, s.AverageDishPrice)
	assert.Empty(t, s.AverageDishPrice)
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleStats(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "METRIC")
	assert.Contains(t, out, "averageDishPrice")
	assert.Contains(t, out, "entree")
	assert.Contains(t, out, "20.38")
	assert.Contains(t, out, "ingredientCount")
	assert.Contains(t, out, "70.00")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Open days:  6", lines[len(lines)-1])
}

func TestWrite_TableGroupsLargeCounts(t *testing.T) {
	stats := &model.Statistics{IngredientCount: 12345, DishCount: 1500}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, stats, FormatTable))
	assert.Contains(t, buf.String(), "12,345")
	assert.Contains(t, buf.String(), "1,500")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleStats(), FormatJSON))

	var got Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, NewSummary(sampleStats()), got)
	assert.Contains(t, buf.String(), `"average_rating": "4.00"`)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleStats(), FormatYAML))

	var got Summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, NewSummary(sampleStats()), got)
	assert.Contains(t, buf.String(), "ingredient_count: 9")
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, Write(&buf, nil, FormatTable))
	assert.Error(t, Write(&buf, sampleStats(), FormatXLSX))
	assert.Error(t, Write(&buf, sampleStats(), Format("csv")))
	assert.Zero(t, buf.Len())
}
