package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/mercury/internal/costing"
)

func TestRecipeRequirements_PreservesKeyOrder(t *testing.T) {
	var req calculateCostRequest
	err := json.Unmarshal([]byte(`{"recipe_requirements": {"Sugar": 2, "Flour": 4, "Eggs": 0.5}}`), &req)
	require.NoError(t, err)

	assert.Equal(t, costing.Recipe{
		{Item: "Sugar", Quantity: 2},
		{Item: "Flour", Quantity: 4},
		{Item: "Eggs", Quantity: 0.5},
	}, req.RecipeRequirements.lines)
	assert.Nil(t, req.BatchSize)
}

func TestRecipeRequirements_DuplicateKeyKeepsLastQuantity(t *testing.T) {
	var req calculateCostRequest
	err := json.Unmarshal([]byte(`{"recipe_requirements": {"Flour": 1, "Sugar": 2, "Flour": 3}}`), &req)
	require.NoError(t, err)

	assert.Equal(t, costing.Recipe{
		{Item: "Flour", Quantity: 3},
		{Item: "Sugar", Quantity: 2},
	}, req.RecipeRequirements.lines)
}

func TestRecipeRequirements_EmptyObject(t *testing.T) {
	var req calculateCostRequest
	require.NoError(t, json.Unmarshal([]byte(`{"recipe_requirements": {}}`), &req))

	require.NotNil(t, req.RecipeRequirements)
	assert.Empty(t, req.RecipeRequirements.lines)
}
