package costing

import "math"

// DefaultMargin is the profit multiplier applied when none is given. A margin
// of 3 prices an item at four times its cost.
const DefaultMargin = 3.0

// SuggestPrice returns the selling price for an item, computed as
// costPerItem * (1 + margin) rounded to two places.
func SuggestPrice(costPerItem, margin float64) (float64, error) {
	if !(margin > 0) || math.IsInf(margin, 1) {
		return 0, &InvalidMarginError{Margin: margin}
	}
	price := Round2(costPerItem * (1 + margin))
	if !finite(price) {
		return 0, &CostOverflowError{Amount: "suggested price"}
	}
	return price, nil
}
