package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Simplici0/mercury/internal/costing"
	"github.com/Simplici0/mercury/internal/source"
)

type failingSource struct{ err error }

func (f failingSource) LoadCatalog(context.Context) (costing.Catalog, error) {
	return nil, &source.LoadError{Source: "test", Err: f.err}
}

func bakery() source.StaticCatalog {
	return source.StaticCatalog{
		{Name: "Flour", UnitCost: "$2.00"},
		{Name: "Sugar", UnitCost: "$1.50"},
	}
}

func cookies() costing.Recipe {
	return costing.Recipe{{Item: "Flour", Quantity: 4}, {Item: "Sugar", Quantity: 2}}
}

func TestEngine_StartsUninitialized(t *testing.T) {
	e := New(Defaults{}, zaptest.NewLogger(t))

	assert.Equal(t, Uninitialized{}, e.State())
	assert.Equal(t, Defaults{BatchSize: 12, Margin: 3}, e.Defaults())

	_, err := e.Quote(cookies(), 12)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = e.Sensitivity(cookies(), costing.SensitivityOptions{})
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestEngine_LoadAndQuote(t *testing.T) {
	e := New(Defaults{}, zaptest.NewLogger(t))
	loadedAt := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return loadedAt }

	require.NoError(t, e.Load(context.Background(), bakery()))

	ready, ok := e.State().(Ready)
	require.True(t, ok)
	assert.Equal(t, loadedAt, ready.LoadedAt)
	assert.Len(t, ready.Catalog, 2)

	q, err := e.Quote(cookies(), 12)
	require.NoError(t, err)
	assert.Equal(t, Quote{TotalBatchCost: 11, CostPerItem: 0.92, SuggestedPrice: 3.68, BatchSize: 12}, q)
}

func TestEngine_QuoteValidation(t *testing.T) {
	e := New(Defaults{}, nil)
	require.NoError(t, e.Load(context.Background(), bakery()))

	_, err := e.Quote(cookies(), 0)
	var batchErr *costing.InvalidBatchSizeError
	assert.True(t, errors.As(err, &batchErr))

	_, err = e.Quote(costing.Recipe{{Item: "Yeast", Quantity: 1}}, 12)
	var unknown *costing.UnknownIngredientError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Yeast", unknown.Item)
}

func TestEngine_CustomMargin(t *testing.T) {
	e := New(Defaults{BatchSize: 24, Margin: 1}, nil)
	require.NoError(t, e.Load(context.Background(), bakery()))

	q, err := e.Quote(cookies(), 12)
	require.NoError(t, err)
	assert.Equal(t, 1.84, q.SuggestedPrice)

	report, err := e.Sensitivity(cookies(), costing.SensitivityOptions{SizeVariations: []float64{}})
	require.NoError(t, err)
	base, ok := report.Cost("100%")
	require.True(t, ok)
	assert.Equal(t, &costing.Outcome{TotalBatchCost: 11, CostPerItem: 0.46, SuggestedPrice: 0.92}, base.Result)
}

func TestEngine_FailedLoadIsReported(t *testing.T) {
	e := New(Defaults{}, zaptest.NewLogger(t))
	cause := errors.New("connection refused")

	err := e.Load(context.Background(), failingSource{err: cause})
	require.ErrorIs(t, err, cause)

	failed, ok := e.State().(FailedToLoad)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, cause)
	assert.Equal(t, "failed", e.State().Name())

	_, err = e.Quote(cookies(), 12)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, err, cause)
	assert.False(t, costing.IsValidation(err))
}

func TestEngine_ReloadRecovers(t *testing.T) {
	e := New(Defaults{}, nil)
	_ = e.Load(context.Background(), failingSource{err: errors.New("boom")})
	require.NoError(t, e.Load(context.Background(), bakery()))

	assert.Equal(t, "ready", e.State().Name())
}

func TestEngine_Fail(t *testing.T) {
	e := New(Defaults{}, nil)
	e.Fail(errors.New("bad location"))

	_, ok := e.State().(FailedToLoad)
	assert.True(t, ok)
}
