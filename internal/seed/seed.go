package seed

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/mercury/internal/costing"
)

// NamedRecipe is a recipe stored under a unique name.
type NamedRecipe struct {
	Name   string
	Recipe costing.Recipe
}

// Data is the content imported into the ingredients store.
type Data struct {
	Catalog costing.Catalog
	Recipes []NamedRecipe
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run imports data into the store in a single transaction. Running it again
// with the same data changes nothing.
func Run(db *sql.DB, data Data) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	seen := make(map[string]bool, len(data.Catalog))
	for _, rec := range data.Catalog {
		// Lookups resolve to the first record, so later duplicates are skipped.
		if seen[rec.Name] {
			continue
		}
		seen[rec.Name] = true
		if err := ensureIngredient(tx, rec, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, r := range data.Recipes {
		if err := ensureRecipe(tx, r, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureIngredient(tx *sql.Tx, rec costing.IngredientRecord, stats *Stats) error {
	var (
		id       int64
		unitCost string
	)
	err := tx.QueryRow(`
		SELECT id, unit_cost
		FROM ingredients
		WHERE name = ?
		ORDER BY id ASC
		LIMIT 1
	`, rec.Name).Scan(&id, &unitCost)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.Exec(`INSERT INTO ingredients (name, unit_cost) VALUES (?, ?)`, rec.Name, rec.UnitCost); err != nil {
			return fmt.Errorf("insert ingredient %q: %w", rec.Name, err)
		}
		stats.Inserts++
		return nil
	}
	if err != nil {
		return fmt.Errorf("check ingredient %q existence: %w", rec.Name, err)
	}
	if unitCost == rec.UnitCost {
		return nil
	}

	if _, err := tx.Exec(`
		UPDATE ingredients
		SET unit_cost = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, rec.UnitCost, id); err != nil {
		return fmt.Errorf("update ingredient %q: %w", rec.Name, err)
	}
	stats.Updates++
	return nil
}

func ensureRecipe(tx *sql.Tx, r NamedRecipe, stats *Stats) error {
	if r.Name == "" {
		return errors.New("recipe name is required")
	}

	var recipeID int64
	err := tx.QueryRow(`SELECT id FROM recipes WHERE name = ?`, r.Name).Scan(&recipeID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.Exec(`INSERT INTO recipes (name) VALUES (?)`, r.Name)
		if err != nil {
			return fmt.Errorf("insert recipe %q: %w", r.Name, err)
		}
		if recipeID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("read recipe %q id: %w", r.Name, err)
		}
		stats.Inserts++
	case err != nil:
		return fmt.Errorf("check recipe %q existence: %w", r.Name, err)
	default:
		current, err := recipeLines(tx, recipeID)
		if err != nil {
			return err
		}
		if sameRecipe(current, r.Recipe) {
			return nil
		}
		if _, err := tx.Exec(`DELETE FROM recipe_lines WHERE recipe_id = ?`, recipeID); err != nil {
			return fmt.Errorf("clear recipe %q lines: %w", r.Name, err)
		}
		stats.Updates++
	}

	for i, line := range r.Recipe {
		if _, err := tx.Exec(`
			INSERT INTO recipe_lines (recipe_id, position, item, quantity)
			VALUES (?, ?, ?, ?)
		`, recipeID, i, line.Item, line.Quantity); err != nil {
			return fmt.Errorf("insert recipe %q line %d: %w", r.Name, i, err)
		}
	}
	return nil
}

func recipeLines(tx *sql.Tx, recipeID int64) (costing.Recipe, error) {
	rows, err := tx.Query(`
		SELECT item, quantity
		FROM recipe_lines
		WHERE recipe_id = ?
		ORDER BY position ASC
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("query recipe lines: %w", err)
	}
	defer rows.Close()

	var lines costing.Recipe
	for rows.Next() {
		var line costing.RecipeLine
		if err := rows.Scan(&line.Item, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe lines: %w", err)
	}
	return lines, nil
}

func sameRecipe(a, b costing.Recipe) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
