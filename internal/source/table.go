package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/mercury/internal/costing"
)

var (
	itemColumns     = []string{"item"}
	unitCostColumns = []string{"unit cost", "unit_cost"}
	quantityColumns = []string{"quantity needed", "quantity_needed", "quantity"}
)

// DocumentCatalog reads an ingredients catalog from a CSV or YAML document.
type DocumentCatalog struct {
	Doc Document
}

// Catalog returns a CatalogSource backed by doc.
func Catalog(doc Document) DocumentCatalog {
	return DocumentCatalog{Doc: doc}
}

func (d DocumentCatalog) LoadCatalog(ctx context.Context) (costing.Catalog, error) {
	rc, err := d.Doc.Open(ctx)
	if err != nil {
		return nil, loadErr(d.Doc, err)
	}
	defer rc.Close()

	var catalog costing.Catalog
	if documentFormat(d.Doc) == "yaml" {
		catalog, err = decodeYAMLCatalog(rc)
	} else {
		catalog, err = decodeCSVCatalog(rc)
	}
	if err != nil {
		return nil, loadErr(d.Doc, err)
	}
	return catalog, nil
}

// DocumentRecipe reads a recipe from a CSV or YAML document.
type DocumentRecipe struct {
	Doc Document
}

// Recipe returns a RecipeSource backed by doc.
func Recipe(doc Document) DocumentRecipe {
	return DocumentRecipe{Doc: doc}
}

func (d DocumentRecipe) LoadRecipe(ctx context.Context) (costing.Recipe, error) {
	rc, err := d.Doc.Open(ctx)
	if err != nil {
		return nil, loadErr(d.Doc, err)
	}
	defer rc.Close()

	var recipe costing.Recipe
	if documentFormat(d.Doc) == "yaml" {
		recipe, err = decodeYAMLRecipe(rc)
	} else {
		recipe, err = decodeCSVRecipe(rc)
	}
	if err != nil {
		return nil, loadErr(d.Doc, err)
	}
	return recipe, nil
}

func decodeCSVCatalog(r io.Reader) (costing.Catalog, error) {
	rows, cols, err := readCSV(r, itemColumns, unitCostColumns)
	if err != nil {
		return nil, err
	}

	catalog := make(costing.Catalog, 0, len(rows))
	for _, row := range rows {
		catalog = append(catalog, costing.IngredientRecord{
			Name:     strings.TrimSpace(row[cols[0]]),
			UnitCost: strings.TrimSpace(row[cols[1]]),
		})
	}
	return catalog, nil
}

func decodeCSVRecipe(r io.Reader) (costing.Recipe, error) {
	rows, cols, err := readCSV(r, itemColumns, quantityColumns)
	if err != nil {
		return nil, err
	}

	recipe := make(costing.Recipe, 0, len(rows))
	for i, row := range rows {
		item := strings.TrimSpace(row[cols[0]])
		qty, err := ParseQuantity(row[cols[1]])
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+2, item, err)
		}
		recipe = append(recipe, costing.RecipeLine{Item: item, Quantity: qty})
	}
	return recipe, nil
}

// readCSV returns the data rows of a headed CSV document together with the
// index of the first header matching each wanted column.
func readCSV(r io.Reader, wanted ...[]string) ([][]string, []int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty document")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols := make([]int, len(wanted))
	for i, names := range wanted {
		cols[i] = columnIndex(header, names)
		if cols[i] < 0 {
			return nil, nil, fmt.Errorf("missing %q column in header %q", names[0], header)
		}
	}

	var rows [][]string
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		if blankRow(row) {
			continue
		}
		for _, c := range cols {
			if c >= len(row) {
				return nil, nil, fmt.Errorf("row %d has %d fields, want at least %d", line, len(row), c+1)
			}
		}
		rows = append(rows, row)
	}
	return rows, cols, nil
}

func columnIndex(header []string, names []string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
				return i
			}
		}
	}
	return -1
}

func blankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParseQuantity parses a recipe quantity, which must be a finite number >= 0.
func ParseQuantity(raw string) (float64, error) {
	qty, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0, fmt.Errorf("quantity %q is not a number", raw)
	}
	if qty < 0 {
		return 0, fmt.Errorf("quantity %q must not be negative", raw)
	}
	return qty, nil
}

type yamlCatalog struct {
	Ingredients []costing.IngredientRecord `yaml:"ingredients"`
}

type yamlRecipe struct {
	Items []costing.RecipeLine `yaml:"items"`
}

func decodeYAMLCatalog(r io.Reader) (costing.Catalog, error) {
	var doc yamlCatalog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return costing.Catalog(doc.Ingredients), nil
}

func decodeYAMLRecipe(r io.Reader) (costing.Recipe, error) {
	var doc yamlRecipe
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	for _, line := range doc.Items {
		if line.Quantity < 0 {
			return nil, fmt.Errorf("quantity for %q must not be negative", line.Item)
		}
	}
	return costing.Recipe(doc.Items), nil
}
