package models

import "github.com/shopspring/decimal"

type CatalogItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Food        string          `json:"food,omitempty"`
	Store       string          `json:"store"`
	Category    Category        `json:"category"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Nutrients   Nutrients       `json:"nutrients_per_unit"`
	MaxQuantity int             `json:"max_quantity"`
	WeightLb    float64         `json:"weight_lb,omitempty"`
}

// Eligible reports whether the item can appear in the decision space.
func (c CatalogItem) Eligible() bool {
	return c.MaxQuantity > 0
}
