// Package engine holds the loaded ingredients catalog and answers cost and
// sensitivity queries against it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/mercury/internal/costing"
	"github.com/Simplici0/mercury/internal/source"
)

// ErrNotReady is returned by queries made before a catalog has been loaded.
var ErrNotReady = errors.New("ingredients catalog not loaded")

// Defaults are applied to queries that leave batch size or margin unset.
type Defaults struct {
	BatchSize float64
	Margin    float64
}

// Quote is the priced cost of one batch.
type Quote struct {
	TotalBatchCost float64 `json:"total_batch_cost"`
	CostPerItem    float64 `json:"cost_per_item"`
	SuggestedPrice float64 `json:"suggested_price"`
	BatchSize      float64 `json:"batch_size"`
}

// Engine answers costing queries against the current catalog snapshot.
type Engine struct {
	defaults Defaults
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.RWMutex
	state State
}

// New returns an uninitialized engine. Zero defaults fall back to the costing
// package defaults.
func New(defaults Defaults, logger *zap.Logger) *Engine {
	if defaults.BatchSize == 0 {
		defaults.BatchSize = costing.DefaultBatchSize
	}
	if defaults.Margin == 0 {
		defaults.Margin = costing.DefaultMargin
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
		state:    Uninitialized{},
	}
}

// Defaults returns the engine's default batch size and margin.
func (e *Engine) Defaults() Defaults {
	return e.defaults
}

// State returns the current load state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Load replaces the catalog with a fresh snapshot from src. On failure the
// engine moves to FailedToLoad and the error is returned.
func (e *Engine) Load(ctx context.Context, src source.CatalogSource) error {
	catalog, err := src.LoadCatalog(ctx)
	if err != nil {
		e.setState(FailedToLoad{Err: err})
		e.logger.Error("failed to load ingredients catalog", zap.Error(err))
		return err
	}

	name := fmt.Sprintf("%T", src)
	if s, ok := src.(fmt.Stringer); ok {
		name = s.String()
	}
	e.setState(Ready{Catalog: catalog, Source: name, LoadedAt: e.now()})
	e.logger.Info("ingredients catalog loaded",
		zap.String("source", name),
		zap.Int("ingredients", len(catalog)))
	return nil
}

// Fail records a load failure that happened before a source could be read,
// such as an unreachable database or an invalid source location.
func (e *Engine) Fail(err error) {
	e.setState(FailedToLoad{Err: err})
	e.logger.Error("failed to initialize ingredients catalog", zap.Error(err))
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) catalog() (costing.Catalog, error) {
	switch s := e.State().(type) {
	case Ready:
		return s.Catalog, nil
	case FailedToLoad:
		return nil, fmt.Errorf("%w: %w", ErrNotReady, s.Err)
	default:
		return nil, ErrNotReady
	}
}

// Quote prices one batch of recipe at the engine's default margin.
func (e *Engine) Quote(recipe costing.Recipe, batchSize float64) (Quote, error) {
	catalog, err := e.catalog()
	if err != nil {
		return Quote{}, err
	}

	cost, err := costing.CalculateCostPerBatch(catalog, recipe, batchSize)
	if err != nil {
		return Quote{}, err
	}
	price, err := costing.SuggestPrice(cost.CostPerItem, e.defaults.Margin)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		TotalBatchCost: cost.TotalBatchCost,
		CostPerItem:    cost.CostPerItem,
		SuggestedPrice: price,
		BatchSize:      batchSize,
	}, nil
}

// Sensitivity runs a sensitivity sweep of recipe. Unset batch size and margin
// take the engine defaults; unset variation lists take the costing defaults.
func (e *Engine) Sensitivity(recipe costing.Recipe, opts costing.SensitivityOptions) (costing.SensitivityReport, error) {
	catalog, err := e.catalog()
	if err != nil {
		return costing.SensitivityReport{}, err
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = e.defaults.BatchSize
	}
	if opts.Margin == 0 {
		opts.Margin = e.defaults.Margin
	}
	return costing.PerformSensitivityAnalysis(catalog, recipe, opts), nil
}
