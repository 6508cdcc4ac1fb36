package costing

import (
	"errors"
	"fmt"
)

// InvalidBatchSizeError is returned when a batch size is zero, negative or not finite.
type InvalidBatchSizeError struct {
	BatchSize float64
}

func (e *InvalidBatchSizeError) Error() string {
	return fmt.Sprintf("batch size must be positive, got %v", e.BatchSize)
}

// InvalidMarginError is returned when a profit margin is not greater than zero.
type InvalidMarginError struct {
	Margin float64
}

func (e *InvalidMarginError) Error() string {
	return fmt.Sprintf("margin must be greater than 0, got %v", e.Margin)
}

// UnknownIngredientError names a recipe item that has no record in the catalog.
type UnknownIngredientError struct {
	Item string
}

func (e *UnknownIngredientError) Error() string {
	return fmt.Sprintf("ingredient %q not found in ingredients catalog", e.Item)
}

// MalformedPriceError names a unit cost that is not of the form "$<number>".
type MalformedPriceError struct {
	Raw string
}

func (e *MalformedPriceError) Error() string {
	return fmt.Sprintf("malformed price %q, want \"$<number>\"", e.Raw)
}

// InvalidQuantityError is returned for a recipe line with a negative or non-finite quantity.
type InvalidQuantityError struct {
	Item     string
	Quantity float64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity for %q must be zero or positive, got %v", e.Item, e.Quantity)
}

// CostOverflowError is returned when an amount derived from valid inputs is
// too large to represent, such as a huge quantity or a tiny batch size.
type CostOverflowError struct {
	Amount string
}

func (e *CostOverflowError) Error() string {
	return fmt.Sprintf("%s is too large to represent", e.Amount)
}

// IsValidation reports whether err was caused by invalid caller input rather
// than by an infrastructure failure.
func IsValidation(err error) bool {
	var (
		batchErr    *InvalidBatchSizeError
		marginErr   *InvalidMarginError
		unknownErr  *UnknownIngredientError
		priceErr    *MalformedPriceError
		quantityErr *InvalidQuantityError
		overflowErr *CostOverflowError
	)
	return errors.As(err, &batchErr) ||
		errors.As(err, &marginErr) ||
		errors.As(err, &unknownErr) ||
		errors.As(err, &priceErr) ||
		errors.As(err, &quantityErr) ||
		errors.As(err, &overflowErr)
}
