package pipeline

import (
	"context"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/Alexander-P/DOM-XMLParsing/internal/config"
	"github.com/Alexander-P/DOM-XMLParsing/internal/menu"
	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
	"github.com/Alexander-P/DOM-XMLParsing/internal/store"
)

// Pipeline runs the load, aggregate, mutate and serialize stages over one
// menu document and records each run in the store.
type Pipeline struct {
	cfg   *config.Config
	store store.Store
}

// New creates a Pipeline. A nil store disables run history.
func New(cfg *config.Config, st store.Store) *Pipeline {
	if st == nil {
		st = store.NopStore{}
	}
	return &Pipeline{cfg: cfg, store: st}
}

// Validate loads and schema-checks the configured document.
func (p *Pipeline) Validate(ctx context.Context) (*model.RunResult, error) {
	r := p.newRun(ctx, model.RunModeValidate)
	_, err := r.load()
	return r.finish(err)
}

// Collect loads the document and computes its statistics without writing
// any output.
func (p *Pipeline) Collect(ctx context.Context) (*model.Statistics, *model.RunResult, error) {
	r := p.newRun(ctx, model.RunModeStats)

	doc, err := r.load()
	var stats *model.Statistics
	if err == nil {
		stats, err = r.aggregate(doc)
	}

	result, err := r.finish(err)
	if err != nil {
		return nil, result, err
	}
	return stats, result, nil
}

// Transform runs every stage and writes the augmented document to the
// configured output path. Nothing is written unless all earlier stages
// succeed.
func (p *Pipeline) Transform(ctx context.Context) (*model.RunResult, error) {
	r := p.newRun(ctx, model.RunModeTransform)

	doc, err := r.load()
	var stats *model.Statistics
	if err == nil {
		stats, err = r.aggregate(doc)
	}
	if err == nil {
		err = r.mutate(doc, stats)
	}
	if err == nil {
		err = r.serialize(doc)
	}

	return r.finish(err)
}

// run carries the state of one pipeline invocation.
type run struct {
	ctx    context.Context
	p      *Pipeline
	input  model.RunInput
	log    *zap.Logger
	runID  string
	result *model.RunResult
}

func (p *Pipeline) newRun(ctx context.Context, mode model.RunMode) *run {
	input := model.RunInput{
		Mode:     mode,
		Document: p.cfg.Input.Document,
		Schema:   p.cfg.Input.Schema,
	}
	if mode == model.RunModeTransform {
		input.Output = p.cfg.Output.Path
	}

	r := &run{
		ctx:    ctx,
		p:      p,
		input:  input,
		log:    zap.L().With(zap.String("document", input.Document), zap.String("mode", string(mode))),
		result: &model.RunResult{},
	}

	rec, err := p.store.CreateRun(ctx, input)
	if err != nil {
		r.log.Warn("pipeline: failed to create run", zap.Error(err))
	} else {
		r.runID = rec.ID
		r.result.RunID = rec.ID
		r.log = r.log.With(zap.String("run_id", rec.ID))
	}

	r.log.Debug("pipeline: starting run", zap.String("schema", input.Schema))
	return r
}

// trackPhase times fn, logs its outcome and appends a phase result.
func (r *run) trackPhase(name string, fn func() (map[string]any, error)) error {
	start := time.Now()
	metadata, err := fn()
	duration := time.Since(start).Milliseconds()

	pr := model.PhaseResult{
		Name:     name,
		Duration: duration,
		Metadata: metadata,
	}

	if err != nil {
		pr.Status = model.PhaseStatusFailed
		pr.Error = err.Error()
		r.log.Error("pipeline: phase failed",
			zap.String("phase", name),
			zap.String("kind", string(menu.KindOf(err))),
			zap.Int64("duration_ms", duration),
			zap.Error(err),
		)
	} else {
		pr.Status = model.PhaseStatusComplete
		r.log.Debug("pipeline: phase complete",
			zap.String("phase", name),
			zap.Int64("duration_ms", duration),
		)
	}

	r.result.Phases = append(r.result.Phases, pr)
	return err
}

func (r *run) load() (*etree.Document, error) {
	var doc *etree.Document
	err := r.trackPhase(menu.StageLoad, func() (map[string]any, error) {
		loader, err := menu.NewLoader(r.input.Schema, menu.LoaderOptions{
			MaxErrors: r.p.cfg.Validation.MaxErrors,
		})
		if err != nil {
			return nil, err
		}
		doc, err = loader.Load(r.input.Document)
		if err != nil {
			return nil, err
		}
		return map[string]any{"root": doc.Root().Tag}, nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("xml is valid and parsed successfully")
	return doc, nil
}

func (r *run) aggregate(doc *etree.Document) (*model.Statistics, error) {
	var stats *model.Statistics
	err := r.trackPhase(menu.StageAggregate, func() (map[string]any, error) {
		var err error
		stats, err = menu.Aggregate(doc)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"dish_types": len(stats.DishTypes),
			"dishes":     stats.DishCount,
			"reviews":    stats.ReviewCount,
			"open_days":  stats.OpenDays,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	r.result.Stats = stats
	return stats, nil
}

func (r *run) mutate(doc *etree.Document, stats *model.Statistics) error {
	return r.trackPhase(menu.StageMutate, func() (map[string]any, error) {
		el, err := menu.AppendStatistics(doc, stats)
		if err != nil {
			return nil, err
		}
		return map[string]any{"entries": len(el.ChildElements())}, nil
	})
}

func (r *run) serialize(doc *etree.Document) error {
	indent := r.p.cfg.Output.Indent
	err := r.trackPhase(menu.StageSerialize, func() (map[string]any, error) {
		if err := menu.WriteFile(doc, r.input.Output, indent); err != nil {
			return nil, err
		}
		return map[string]any{"output": r.input.Output, "indent": indent}, nil
	})
	if err != nil {
		return err
	}

	r.log.Info("document transformed successfully", zap.String("output", r.input.Output))
	return nil
}

// finish records the outcome of the run. Store failures are logged and
// never change the result.
func (r *run) finish(err error) (*model.RunResult, error) {
	status := model.RunStatusComplete
	if err != nil {
		status = model.RunStatusFailed
		r.result.Error = &model.RunError{
			Kind:    string(menu.KindOf(err)),
			Stage:   menu.StageOf(err),
			Message: err.Error(),
		}
	}

	if r.runID != "" {
		if storeErr := r.p.store.FinishRun(r.ctx, r.runID, status, r.result); storeErr != nil {
			r.log.Warn("pipeline: failed to record run", zap.Error(storeErr))
		}
	}

	return r.result, err
}
