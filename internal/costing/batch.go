package costing

import (
	"fmt"
	"math"
)

// DefaultBatchSize is the number of items a batch yields when none is given.
const DefaultBatchSize = 12.0

// BatchCost is the cost of producing one batch of a recipe.
type BatchCost struct {
	TotalBatchCost float64 `json:"total_batch_cost"`
	CostPerItem    float64 `json:"cost_per_item"`
}

// CalculateCostPerBatch joins recipe against catalog and sums the ingredient
// costs. The first failing line, in recipe order, aborts the calculation.
func CalculateCostPerBatch(catalog Catalog, recipe Recipe, batchSize float64) (BatchCost, error) {
	if !(batchSize > 0) || math.IsInf(batchSize, 1) {
		return BatchCost{}, &InvalidBatchSizeError{BatchSize: batchSize}
	}

	total := 0.0
	for _, line := range recipe {
		rec, ok := catalog.Lookup(line.Item)
		if !ok {
			return BatchCost{}, &UnknownIngredientError{Item: line.Item}
		}
		if line.Quantity < 0 || math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
			return BatchCost{}, &InvalidQuantityError{Item: line.Item, Quantity: line.Quantity}
		}

		unitCost, err := ParsePrice(rec.UnitCost)
		if err != nil {
			return BatchCost{}, fmt.Errorf("price ingredient %q: %w", line.Item, err)
		}
		total += unitCost * line.Quantity
	}

	cost := BatchCost{
		TotalBatchCost: Round2(total),
		CostPerItem:    Round2(total / batchSize),
	}
	if !finite(cost.TotalBatchCost) {
		return BatchCost{}, &CostOverflowError{Amount: "total batch cost"}
	}
	if !finite(cost.CostPerItem) {
		return BatchCost{}, &CostOverflowError{Amount: "cost per item"}
	}
	return cost, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
