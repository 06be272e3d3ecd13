package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchasePlanEntry struct {
	Item         CatalogItem     `json:"item"`
	Quantity     int             `json:"quantity"`
	LineCost     decimal.Decimal `json:"line_cost"`
	LineWeightLb float64         `json:"line_weight_lb"`
}

type StoreGroup struct {
	Store    string              `json:"store"`
	Entries  []PurchasePlanEntry `json:"entries"`
	Subtotal decimal.Decimal     `json:"subtotal"`
	Packages int                 `json:"packages"`
	WeightLb float64             `json:"weight_lb"`
}

type SolveStats struct {
	Variables int           `json:"variables"`
	Rows      int           `json:"rows"`
	Nodes     int           `json:"nodes"`
	Duration  time.Duration `json:"duration"`
}

// PurchasePlan is the terminal artifact of one solve. Entries are ordered by
// store, and Stores holds the same entries grouped.
type PurchasePlan struct {
	ID                string               `json:"id"`
	HouseholdID       string               `json:"household_id,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	Requirement       NetWeeklyRequirement `json:"requirement"`
	Entries           []PurchasePlanEntry  `json:"entries"`
	Stores            []StoreGroup         `json:"stores"`
	TotalCost         decimal.Decimal      `json:"total_cost"`
	TotalPackages     int                  `json:"total_packages"`
	TotalWeightLb     float64              `json:"total_weight_lb"`
	NutrientsAchieved Nutrients            `json:"nutrients_achieved"`
	Objective         float64              `json:"objective"`
	Stats             SolveStats           `json:"stats"`
}

// QuantityOf returns the planned quantity of an item, zero when it is not bought.
func (p *PurchasePlan) QuantityOf(itemID string) int {
	for _, e := range p.Entries {
		if e.Item.ID == itemID {
			return e.Quantity
		}
	}
	return 0
}

// PlanSummary mirrors the summary sheet of the exported workbook.
type PlanSummary struct {
	TotalCost     decimal.Decimal `json:"total_cost"`
	TotalPackages int             `json:"total_packages"`
	TotalWeightLb float64         `json:"total_weight_lb"`
	StoreCount    int             `json:"store_count"`
}

func (p *PurchasePlan) Summary() PlanSummary {
	return PlanSummary{
		TotalCost:     p.TotalCost,
		TotalPackages: p.TotalPackages,
		TotalWeightLb: p.TotalWeightLb,
		StoreCount:    len(p.Stores),
	}
}
