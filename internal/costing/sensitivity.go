package costing

import (
	"fmt"
	"math"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// SensitivityOptions configures a sensitivity sweep. Zero-valued fields fall
// back to DefaultSensitivityOptions; a non-nil empty slice disables that axis.
type SensitivityOptions struct {
	BatchSize      float64
	Margin         float64
	CostVariations []float64
	SizeVariations []float64
}

// DefaultSensitivityOptions returns the sweep used when a caller gives no options.
func DefaultSensitivityOptions() SensitivityOptions {
	return SensitivityOptions{
		BatchSize:      DefaultBatchSize,
		Margin:         DefaultMargin,
		CostVariations: []float64{0.8, 0.9, 1.0, 1.1, 1.2},
		SizeVariations: []float64{6, 12, 24, 36},
	}
}

func (o SensitivityOptions) withDefaults() SensitivityOptions {
	def := DefaultSensitivityOptions()
	if o.BatchSize == 0 {
		o.BatchSize = def.BatchSize
	}
	if o.Margin == 0 {
		o.Margin = def.Margin
	}
	if o.CostVariations == nil {
		o.CostVariations = def.CostVariations
	}
	if o.SizeVariations == nil {
		o.SizeVariations = def.SizeVariations
	}
	return o
}

// Outcome is the result of a single successful variation.
type Outcome struct {
	TotalBatchCost float64 `json:"total_batch_cost"`
	CostPerItem    float64 `json:"cost_per_item"`
	SuggestedPrice float64 `json:"suggested_price"`
}

// CostVariation is one entry of the cost axis, keyed by a percentage label.
// Exactly one of Result and Error is set.
type CostVariation struct {
	Label      string   `json:"variation"`
	Multiplier float64  `json:"multiplier"`
	Result     *Outcome `json:"result,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// SizeVariation is one entry of the batch-size axis, keyed by the batch size.
// Exactly one of Result and Error is set.
type SizeVariation struct {
	BatchSize float64  `json:"batch_size"`
	Result    *Outcome `json:"result,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// SensitivityReport collects the per-variation outcomes of a sweep in the
// order the variations were requested.
type SensitivityReport struct {
	CostSensitivity      []CostVariation `json:"cost_sensitivity"`
	BatchSizeSensitivity []SizeVariation `json:"batch_size_sensitivity"`
}

// Cost returns the cost-axis entry with the given percentage label.
func (r SensitivityReport) Cost(label string) (CostVariation, bool) {
	for _, v := range r.CostSensitivity {
		if v.Label == label {
			return v, true
		}
	}
	return CostVariation{}, false
}

// BatchSize returns the batch-size-axis entry for size.
func (r SensitivityReport) BatchSize(size float64) (SizeVariation, bool) {
	for _, v := range r.BatchSizeSensitivity {
		if v.BatchSize == size {
			return v, true
		}
	}
	return SizeVariation{}, false
}

// PercentLabel formats a cost multiplier as a percentage label, e.g. 0.8 -> "80%".
func PercentLabel(multiplier float64) string {
	return strconv.FormatFloat(math.Round(multiplier*100), 'f', -1, 64) + "%"
}

// PerformSensitivityAnalysis re-costs recipe under each cost multiplier (at the
// default batch size) and under each batch size (with the original catalog).
// A failing variation is recorded in the report and does not stop the others.
func PerformSensitivityAnalysis(catalog Catalog, recipe Recipe, opts SensitivityOptions) SensitivityReport {
	opts = opts.withDefaults()

	costs := make([]CostVariation, len(opts.CostVariations))
	sizes := make([]SizeVariation, len(opts.SizeVariations))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, multiplier := range opts.CostVariations {
		g.Go(func() error {
			outcome, err := evaluate(catalog.Scale(multiplier), recipe, opts.BatchSize, opts.Margin)
			costs[i] = CostVariation{Label: PercentLabel(multiplier), Multiplier: multiplier}
			if err != nil {
				costs[i].Error = fmt.Sprintf("Error: %v", err)
				return nil
			}
			costs[i].Result = &outcome
			return nil
		})
	}
	for i, size := range opts.SizeVariations {
		g.Go(func() error {
			outcome, err := evaluate(catalog, recipe, size, opts.Margin)
			sizes[i] = SizeVariation{BatchSize: size}
			if err != nil {
				sizes[i].Error = fmt.Sprintf("Error: %v", err)
				return nil
			}
			sizes[i].Result = &outcome
			return nil
		})
	}
	_ = g.Wait()

	return SensitivityReport{
		CostSensitivity:      collapse(costs, func(v CostVariation) string { return v.Label }),
		BatchSizeSensitivity: collapse(sizes, func(v SizeVariation) float64 { return v.BatchSize }),
	}
}

func evaluate(catalog Catalog, recipe Recipe, batchSize, margin float64) (Outcome, error) {
	cost, err := CalculateCostPerBatch(catalog, recipe, batchSize)
	if err != nil {
		return Outcome{}, err
	}
	price, err := SuggestPrice(cost.CostPerItem, margin)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		TotalBatchCost: cost.TotalBatchCost,
		CostPerItem:    cost.CostPerItem,
		SuggestedPrice: price,
	}, nil
}

// collapse merges entries sharing a key: the first occurrence keeps its
// position and takes the value of the last one.
func collapse[T any, K comparable](entries []T, key func(T) K) []T {
	index := make(map[K]int, len(entries))
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		k := key(e)
		if at, ok := index[k]; ok {
			out[at] = e
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}
