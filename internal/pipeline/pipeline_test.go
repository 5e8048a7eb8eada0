package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Alexander-P/DOM-XMLParsing/internal/config"
	"github.com/Alexander-P/DOM-XMLParsing/internal/menu"
	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
	"github.com/Alexander-P/DOM-XMLParsing/internal/store"
	storemocks "github.com/Alexander-P/DOM-XMLParsing/internal/store/mocks"
)

const testdata = "../menu/testdata"

func testConfig(t *testing.T, document string) *config.Config {
	t.Helper()
	return &config.Config{
		Input: config.InputConfig{
			Document: filepath.Join(testdata, document),
			Schema:   filepath.Join(testdata, "restaurant_schema.xsd"),
		},
		Output: config.OutputConfig{
			Path:   filepath.Join(t.TempDir(), "out.xml"),
			Indent: 2,
		},
		Store: config.StoreConfig{Driver: config.DriverNone},
		Log:   config.LogConfig{Level: "info", Format: "console"},
	}
}

func phaseNames(result *model.RunResult) []string {
	names := make([]string, 0, len(result.Phases))
	for _, p := range result.Phases {
		names = append(names, p.Name)
	}
	return names
}

func TestPipeline_Transform_FullFlow(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "roundtrip.xml")

	st := storemocks.NewMockStore(t)
	st.On("CreateRun", mock.Anything, mock.MatchedBy(func(in model.RunInput) bool {
		return in.Mode == model.RunModeTransform && in.Output == cfg.Output.Path
	})).Return(&model.Run{ID: "run-001", Status: model.RunStatusRunning}, nil)
	st.On("FinishRun", mock.Anything, "run-001", model.RunStatusComplete, mock.AnythingOfType("*model.RunResult")).Return(nil)

	result, err := New(cfg, st).Transform(ctx)
	require.NoError(t, err)

	assert.Equal(t, "run-001", result.RunID)
	assert.Nil(t, result.Error)
	assert.Equal(t, []string{menu.StageLoad, menu.StageAggregate, menu.StageMutate, menu.StageSerialize}, phaseNames(result))
	for _, p := range result.Phases {
		assert.Equal(t, model.PhaseStatusComplete, p.Status, p.Name)
	}

	require.NotNil(t, result.Stats)
	assert.Equal(t, 1, result.Stats.ReviewCount)

	got, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(testdata, "roundtrip.golden.xml"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestPipeline_Transform_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "invalid.xml")

	var recorded *model.RunResult
	st := storemocks.NewMockStore(t)
	st.On("CreateRun", mock.Anything, mock.Anything).Return(&model.Run{ID: "run-002"}, nil)
	st.On("FinishRun", mock.Anything, "run-002", model.RunStatusFailed, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(3).(*model.RunResult)
		}).
		Return(nil)

	result, err := New(cfg, st).Transform(ctx)
	require.Error(t, err)
	assert.Equal(t, menu.KindValidation, menu.KindOf(err))

	require.NotNil(t, result.Error)
	assert.Equal(t, "validation", result.Error.Kind)
	assert.Equal(t, menu.StageLoad, result.Error.Stage)
	assert.Equal(t, []string{menu.StageLoad}, phaseNames(result))
	assert.Equal(t, model.PhaseStatusFailed, result.Phases[0].Status)
	assert.Same(t, result, recorded)

	_, statErr := os.Stat(cfg.Output.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no output is written on failure")
}

func TestPipeline_Transform_DataFailureWritesNothing(t *testing.T) {
	cfg := testConfig(t, "bad_hours.xml")

	result, err := New(cfg, nil).Transform(context.Background())
	require.Error(t, err)
	assert.Equal(t, menu.KindData, menu.KindOf(err))
	assert.Equal(t, menu.StageAggregate, result.Error.Stage)
	assert.Equal(t, []string{menu.StageLoad, menu.StageAggregate}, phaseNames(result))

	_, statErr := os.Stat(cfg.Output.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestPipeline_Transform_UnwritableOutput(t *testing.T) {
	cfg := testConfig(t, "ex7.xml")
	cfg.Output.Path = filepath.Join(t.TempDir(), "missing", "out.xml")

	result, err := New(cfg, nil).Transform(context.Background())
	require.Error(t, err)
	assert.Equal(t, menu.KindIO, menu.KindOf(err))
	assert.Equal(t, menu.StageSerialize, result.Error.Stage)
	assert.Len(t, result.Phases, 4)
}

func TestPipeline_Validate(t *testing.T) {
	cfg := testConfig(t, "ex7.xml")

	st := storemocks.NewMockStore(t)
	st.On("CreateRun", mock.Anything, mock.MatchedBy(func(in model.RunInput) bool {
		return in.Mode == model.RunModeValidate && in.Output == ""
	})).Return(&model.Run{ID: "run-003"}, nil)
	st.On("FinishRun", mock.Anything, "run-003", model.RunStatusComplete, mock.Anything).Return(nil)

	result, err := New(cfg, st).Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{menu.StageLoad}, phaseNames(result))
	assert.Equal(t, "restaurant", result.Phases[0].Metadata["root"])
	assert.Nil(t, result.Stats)

	_, statErr := os.Stat(cfg.Output.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestPipeline_Validate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		document string
		schema   string
		kind     menu.Kind
	}{
		{name: "malformed", document: "malformed.xml", kind: menu.KindParse},
		{name: "doctype", document: "doctype.xml", kind: menu.KindParse},
		{name: "missing document", document: "nope.xml", kind: menu.KindIO},
		{name: "broken schema", document: "ex7.xml", schema: "broken_schema.xsd", kind: menu.KindSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.document)
			if tt.schema != "" {
				cfg.Input.Schema = filepath.Join(testdata, tt.schema)
			}

			result, err := New(cfg, nil).Validate(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.kind, menu.KindOf(err))
			require.NotNil(t, result.Error)
			assert.Equal(t, string(tt.kind), result.Error.Kind)
		})
	}
}

func TestPipeline_Collect(t *testing.T) {
	cfg := testConfig(t, "ex7.xml")

	stats, result, err := New(cfg, store.NopStore{}).Collect(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Same(t, stats, result.Stats)

	assert.Equal(t, 9, stats.IngredientCount)
	assert.Equal(t, 6, stats.OpenDays)
	assert.InDelta(t, 70.0, stats.TotalOpenHours, 1e-9)
	assert.InDelta(t, 4.0, stats.AverageRating(), 1e-9)

	agg := result.Phases[1]
	assert.Equal(t, menu.StageAggregate, agg.Name)
	assert.Equal(t, len(stats.DishTypes), agg.Metadata["dish_types"])

	_, statErr := os.Stat(cfg.Output.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestPipeline_Collect_Error(t *testing.T) {
	cfg := testConfig(t, "bad_hours.xml")

	stats, result, err := New(cfg, nil).Collect(context.Background())
	require.Error(t, err)
	assert.Nil(t, stats)
	require.NotNil(t, result)
	assert.Equal(t, "data", result.Error.Kind)
}

func TestPipeline_StoreFailuresAreTolerated(t *testing.T) {
	cfg := testConfig(t, "ex7.xml")

	st := storemocks.NewMockStore(t)
	st.On("CreateRun", mock.Anything, mock.Anything).Return(nil, errors.New("database is locked"))

	result, err := New(cfg, st).Transform(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.RunID)
	assert.FileExists(t, cfg.Output.Path)
	st.AssertNotCalled(t, "FinishRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_FinishRunFailureIsTolerated(t *testing.T) {
	cfg := testConfig(t, "ex7.xml")

	st := storemocks.NewMockStore(t)
	st.On("CreateRun", mock.Anything, mock.Anything).Return(&model.Run{ID: "run-004"}, nil)
	st.On("FinishRun", mock.Anything, "run-004", model.RunStatusComplete, mock.Anything).Return(errors.New("connection reset"))

	result, err := New(cfg, st).Transform(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-004", result.RunID)
	assert.FileExists(t, cfg.Output.Path)
}
