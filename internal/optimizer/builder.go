package optimizer

import (
	"fmt"

	"github.com/chrisdamba/grocerplan/internal/catalog"
	"github.com/chrisdamba/grocerplan/internal/models"
)

// BuildProgram lays out one variable per eligible catalog item, one floor row
// per tracked nutrient and one diversity row per required category. Item
// capacity is carried by the variable bounds. Variables keep catalog order so
// that Vars[j] corresponds to items[j] of the returned slice.
func BuildProgram(net models.Nutrients, cat *catalog.Catalog, required []models.Category) (*Program, []models.CatalogItem, error) {
	items := cat.Eligible()
	p := &Program{Vars: make([]Variable, len(items))}

	for j, item := range items {
		cost, _ := item.UnitPrice.Float64()
		p.Vars[j] = Variable{Name: item.ID, Cost: cost, Upper: item.MaxQuantity}
	}

	for _, n := range models.TrackedNutrients {
		row := Row{Name: string(n), Class: RowNutrient, RHS: net.Get(n)}
		for j, item := range items {
			if c := item.Nutrients.Get(n); c > 0 {
				row.Terms = append(row.Terms, Term{Var: j, Coeff: c})
			}
		}
		p.Rows = append(p.Rows, row)
	}

	seen := make(map[models.Category]bool, len(required))
	for _, c := range required {
		if !c.Valid() || c == models.CategoryOther {
			return nil, nil, fmt.Errorf("category %q cannot be required", c)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		row := Row{Name: string(c), Class: RowDiversity, RHS: 1}
		for j, item := range items {
			if item.Category == c {
				row.Terms = append(row.Terms, Term{Var: j, Coeff: 1})
			}
		}
		p.Rows = append(p.Rows, row)
	}

	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to build program: %w", err)
	}
	return p, items, nil
}
