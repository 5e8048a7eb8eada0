package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
)

// NopStore hands out run IDs but keeps no history. It backs the "none"
// store driver.
type NopStore struct{}

var _ Store = NopStore{}

func (NopStore) CreateRun(_ context.Context, input model.RunInput) (*model.Run, error) {
	now := time.Now().UTC()
	return &model.Run{
		ID:        uuid.New().String(),
		Input:     input,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (NopStore) FinishRun(context.Context, string, model.RunStatus, *model.RunResult) error {
	return nil
}

func (NopStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	return nil, eris.Errorf("run not found: %s (run history is disabled)", runID)
}

func (NopStore) ListRuns(context.Context, RunFilter) ([]model.Run, error) {
	return nil, nil
}

func (NopStore) Migrate(context.Context) error { return nil }

func (NopStore) Close() error { return nil }
