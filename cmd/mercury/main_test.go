package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ingredientsCSV = "Item,Unit Cost\nFlour,$2.00\nSugar,$1.50\nButter,market price\n"
	recipeCSV      = "Item,Quantity Needed\nFlour,4\nSugar,2\n"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"APP_ENV", "LOG_LEVEL", "CATALOG_SOURCE", "DB_PATH", "DEFAULT_BATCH_SIZE", "DEFAULT_MARGIN"} {
		t.Setenv(key, "")
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// executeWithDB runs the CLI with DB_PATH pointing at dbPath.
func executeWithDB(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_PATH", dbPath)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReport_Text(t *testing.T) {
	dir := t.TempDir()
	catalog := writeTemp(t, dir, "ingredients.csv", ingredientsCSV)
	recipe := writeTemp(t, dir, "recipe.csv", recipeCSV)

	out, err := execute(t, "report", "--catalog", catalog, "--recipe", recipe)
	require.NoError(t, err)

	assert.Contains(t, out, "Basic Cost Analysis:")
	assert.Contains(t, out, "Total Batch Cost: $11.00")
	assert.Contains(t, out, "Cost per Item: $0.92")
	assert.Contains(t, out, "Suggested Selling Price: $3.68")
	assert.Contains(t, out, "At 80% of base cost:")
	assert.Contains(t, out, "At 120% of base cost:")
	assert.Contains(t, out, "With batch size of 36:")
	assert.Contains(t, out, "Suggested Price: $4.04")
}

func TestReport_JSON(t *testing.T) {
	dir := t.TempDir()
	catalog := writeTemp(t, dir, "ingredients.csv", ingredientsCSV)
	recipe := writeTemp(t, dir, "recipe.csv", recipeCSV)

	out, err := execute(t, "report", "--catalog", catalog, "--recipe", recipe, "--batch-size", "6", "--json")
	require.NoError(t, err)

	var got reportOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 6.0, got.Quote.BatchSize)
	assert.Equal(t, 1.83, got.Quote.CostPerItem)
	assert.Equal(t, 7.32, got.Quote.SuggestedPrice)
	assert.Len(t, got.Sensitivity.CostSensitivity, 5)
	assert.Len(t, got.Sensitivity.BatchSizeSensitivity, 4)
}

func TestReport_MalformedIngredientFails(t *testing.T) {
	dir := t.TempDir()
	catalog := writeTemp(t, dir, "ingredients.csv", ingredientsCSV)
	recipe := writeTemp(t, dir, "recipe.csv", "Item,Quantity Needed\nButter,1\n")

	_, err := execute(t, "report", "--catalog", catalog, "--recipe", recipe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `malformed price "market price"`)
}

func TestReport_RejectsZeroBatchSize(t *testing.T) {
	dir := t.TempDir()
	catalog := writeTemp(t, dir, "ingredients.csv", ingredientsCSV)
	recipe := writeTemp(t, dir, "recipe.csv", recipeCSV)

	_, err := execute(t, "report", "--catalog", catalog, "--recipe", recipe, "--batch-size", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch size must be positive")
}

func TestSeedThenReportFromStore(t *testing.T) {
	dir := t.TempDir()
	catalog := writeTemp(t, dir, "ingredients.csv", ingredientsCSV)
	recipe := writeTemp(t, dir, "recipe.csv", recipeCSV)
	dbPath := filepath.Join(dir, "data", "mercury.db")

	out, err := execute(t, "seed", "--db", dbPath, "--catalog", catalog, "--recipe", "cookies="+recipe)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 2")
	assert.Contains(t, out, "seed completed: 4 inserts, 0 updates")

	out, err = execute(t, "seed", "--db", dbPath, "--catalog", catalog, "--recipe", "cookies="+recipe)
	require.NoError(t, err)
	assert.Contains(t, out, "seed completed: 0 inserts, 0 updates")

	out, err = executeWithDB(t, dbPath, "report", "--catalog", "sqlite", "--recipe", recipe)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Batch Cost: $11.00")

	out, err = executeWithDB(t, dbPath, "report", "--catalog", "sqlite", "--recipe", "sqlite:cookies")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Batch Cost: $11.00")
	assert.Contains(t, out, "Suggested Selling Price: $3.68")
}

func TestReport_UnknownStoredRecipe(t *testing.T) {
	dir := t.TempDir()
	catalog := writeTemp(t, dir, "ingredients.csv", ingredientsCSV)
	dbPath := filepath.Join(dir, "mercury.db")

	_, err := execute(t, "seed", "--db", dbPath, "--catalog", catalog)
	require.NoError(t, err)

	_, err = executeWithDB(t, dbPath, "report", "--catalog", catalog, "--recipe", "sqlite:brownies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sqlite recipe "brownies"`)
	assert.Contains(t, err.Error(), "recipe not found")
}

func TestRecipes_ListsStoredNames(t *testing.T) {
	dir := t.TempDir()
	catalog := writeTemp(t, dir, "ingredients.csv", ingredientsCSV)
	recipe := writeTemp(t, dir, "recipe.csv", recipeCSV)
	dbPath := filepath.Join(dir, "mercury.db")

	out, err := execute(t, "recipes", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no recipes stored")

	_, err = execute(t, "seed", "--db", dbPath, "--catalog", catalog,
		"--recipe", "shortbread="+recipe, "--recipe", "cookies="+recipe)
	require.NoError(t, err)

	out, err = execute(t, "recipes", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "cookies\nshortbread\n", out)
}

func TestSeed_InvalidRecipeFlag(t *testing.T) {
	dir := t.TempDir()
	catalog := writeTemp(t, dir, "ingredients.csv", ingredientsCSV)

	_, err := execute(t, "seed", "--db", filepath.Join(dir, "m.db"), "--catalog", catalog, "--recipe", "cookies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want name=location")
}
