package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/mercury/internal/costing"
)

// Store reads catalogs and recipes from the SQLite ingredients store.
type Store struct {
	DB *sql.DB
}

func (s Store) String() string { return "sqlite store" }

// LoadCatalog returns every ingredient in insertion order.
func (s Store) LoadCatalog(ctx context.Context) (costing.Catalog, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT name, unit_cost
		FROM ingredients
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, loadErr(s, fmt.Errorf("query ingredients: %w", err))
	}
	defer rows.Close()

	catalog := make(costing.Catalog, 0)
	for rows.Next() {
		var rec costing.IngredientRecord
		if err := rows.Scan(&rec.Name, &rec.UnitCost); err != nil {
			return nil, loadErr(s, fmt.Errorf("scan ingredient: %w", err))
		}
		catalog = append(catalog, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(s, fmt.Errorf("iterate ingredients: %w", err))
	}

	return catalog, nil
}

// Recipe returns a RecipeSource for the stored recipe with the given name.
func (s Store) Recipe(name string) RecipeSource {
	return storedRecipe{store: s, name: name}
}

// RecipeNames lists stored recipes alphabetically.
func (s Store) RecipeNames(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT name FROM recipes ORDER BY name ASC`)
	if err != nil {
		return nil, loadErr(s, fmt.Errorf("query recipes: %w", err))
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, loadErr(s, fmt.Errorf("scan recipe: %w", err))
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(s, fmt.Errorf("iterate recipes: %w", err))
	}
	return names, nil
}

type storedRecipe struct {
	store Store
	name  string
}

func (r storedRecipe) String() string { return fmt.Sprintf("sqlite recipe %q", r.name) }

func (r storedRecipe) LoadRecipe(ctx context.Context) (costing.Recipe, error) {
	var recipeID int64
	err := r.store.DB.QueryRowContext(ctx, `SELECT id FROM recipes WHERE name = ?`, r.name).Scan(&recipeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, loadErr(r, errors.New("recipe not found"))
	}
	if err != nil {
		return nil, loadErr(r, fmt.Errorf("query recipe: %w", err))
	}

	rows, err := r.store.DB.QueryContext(ctx, `
		SELECT item, quantity
		FROM recipe_lines
		WHERE recipe_id = ?
		ORDER BY position ASC
	`, recipeID)
	if err != nil {
		return nil, loadErr(r, fmt.Errorf("query recipe lines: %w", err))
	}
	defer rows.Close()

	recipe := make(costing.Recipe, 0)
	for rows.Next() {
		var line costing.RecipeLine
		if err := rows.Scan(&line.Item, &line.Quantity); err != nil {
			return nil, loadErr(r, fmt.Errorf("scan recipe line: %w", err))
		}
		recipe = append(recipe, line)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(r, fmt.Errorf("iterate recipe lines: %w", err))
	}

	return recipe, nil
}
