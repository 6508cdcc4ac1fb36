package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/mercury/internal/costing"
)

// recipeRequirements decodes a JSON object of item -> quantity while keeping
// the key order, which decides which failing line is reported first.
type recipeRequirements struct {
	lines costing.Recipe
}

func (r *recipeRequirements) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("recipe_requirements must be an object of item: quantity")
	}

	r.lines = costing.Recipe{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		item, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v in recipe_requirements", tok)
		}

		var qty *float64
		if err := dec.Decode(&qty); err != nil || qty == nil {
			return fmt.Errorf("quantity for %q must be a number", item)
		}
		// A repeated key keeps its first position and its last quantity.
		if at, ok := seen[item]; ok {
			r.lines[at].Quantity = *qty
			continue
		}
		seen[item] = len(r.lines)
		r.lines = append(r.lines, costing.RecipeLine{Item: item, Quantity: *qty})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

type calculateCostRequest struct {
	RecipeRequirements *recipeRequirements `json:"recipe_requirements"`
	BatchSize          *float64            `json:"batch_size"`
}

type sensitivityRequest struct {
	RecipeRequirements *recipeRequirements `json:"recipe_requirements"`
	BatchSize          *float64            `json:"batch_size"`
	Margin             *float64            `json:"margin"`
	CostVariations     []float64           `json:"cost_variations"`
	SizeVariations     []float64           `json:"size_variations"`
}

type calculateCostResponse struct {
	TotalBatchCost float64 `json:"total_batch_cost"`
	CostPerItem    float64 `json:"cost_per_item"`
	SuggestedPrice float64 `json:"suggested_price"`
	BatchSize      float64 `json:"batch_size"`
}

type healthResponse struct {
	Status            string `json:"status"`
	IngredientsLoaded bool   `json:"ingredients_loaded"`
	State             string `json:"state"`
	Ingredients       int    `json:"ingredients,omitempty"`
	Error             string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
