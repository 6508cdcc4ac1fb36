// Package source loads ingredient catalogs and recipes from tabular documents
// and from the SQLite store. Everything returned here is a read-only snapshot
// that the costing engine can use without further I/O.
package source

import (
	"context"
	"fmt"

	"github.com/Simplici0/mercury/internal/costing"
)

// CatalogSource yields an ingredients catalog snapshot.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) (costing.Catalog, error)
}

// RecipeSource yields a recipe snapshot.
type RecipeSource interface {
	LoadRecipe(ctx context.Context) (costing.Recipe, error)
}

// LoadError reports that a catalog or recipe could not be loaded.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(source fmt.Stringer, err error) error {
	return &LoadError{Source: source.String(), Err: err}
}

// StaticCatalog serves an in-memory catalog.
type StaticCatalog costing.Catalog

// LoadCatalog returns a copy of the catalog.
func (s StaticCatalog) LoadCatalog(context.Context) (costing.Catalog, error) {
	return append(costing.Catalog(nil), s...), nil
}
