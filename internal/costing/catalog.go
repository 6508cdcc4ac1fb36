package costing

// IngredientRecord is one row of an ingredients catalog.
type IngredientRecord struct {
	Name     string `json:"item" yaml:"item"`
	UnitCost string `json:"unit_cost" yaml:"unit_cost"`
}

// Catalog is an ordered snapshot of ingredient records. Names are not required
// to be unique; lookups return the first match.
type Catalog []IngredientRecord

// Lookup returns the first record whose name equals name.
func (c Catalog) Lookup(name string) (IngredientRecord, bool) {
	for _, rec := range c {
		if rec.Name == name {
			return rec, true
		}
	}
	return IngredientRecord{}, false
}

// Scale returns a copy of the catalog with every unit cost multiplied by factor.
// Entries whose unit cost cannot be parsed are copied unchanged.
func (c Catalog) Scale(factor float64) Catalog {
	scaled := make(Catalog, len(c))
	for i, rec := range c {
		scaled[i] = rec
		price, err := ParsePrice(rec.UnitCost)
		if err != nil {
			continue
		}
		scaled[i].UnitCost = FormatPrice(price * factor)
	}
	return scaled
}

// RecipeLine is the quantity of one ingredient needed for a batch.
type RecipeLine struct {
	Item     string  `json:"item" yaml:"item"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
}

// Recipe is an ordered list of recipe lines.
type Recipe []RecipeLine
