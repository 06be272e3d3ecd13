package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chrisdamba/grocerplan/internal/models"
)

var shoppingListHeader = []string{
	"store", "item_id", "item", "category", "quantity", "unit_price", "line_cost", "line_weight_lb",
}

// CSVOutput writes a plan as a workbook: a directory per plan holding
// summary.csv, shopping_list.csv and one sheet per store.
type CSVOutput struct {
	basePath string
	folder   string
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
	}
}

func (c *CSVOutput) WritePlan(ctx context.Context, plan *models.PurchasePlan) error {
	fullPath := filepath.Join(planDir(c.basePath, c.folder, plan), plan.ID)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(fullPath, "summary.csv"), summaryRows(plan)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(fullPath, "shopping_list.csv"), entryRows(plan.Entries)); err != nil {
		return err
	}

	used := make(map[string]int)
	for _, group := range plan.Stores {
		name := sheetName(group.Store)
		// truncated names can collide
		if n := used[name]; n > 0 {
			suffix := "_" + strconv.Itoa(n+1)
			if r := []rune(name); len(r)+len(suffix) > 31 {
				name = string(r[:31-len(suffix)])
			}
			name += suffix
		}
		used[sheetName(group.Store)]++

		rows := entryRows(group.Entries)
		rows = append(rows, []string{"subtotal", "", "", "", strconv.Itoa(group.Packages), "", group.Subtotal.StringFixed(2), formatNumber(group.WeightLb)})
		if err := writeCSV(filepath.Join(fullPath, name+".csv"), rows); err != nil {
			return err
		}
	}
	return nil
}

func (c *CSVOutput) Close() error {
	return nil
}

func summaryRows(plan *models.PurchasePlan) [][]string {
	s := plan.Summary()
	daily := plan.Requirement.Daily()
	rows := [][]string{
		{"field", "value"},
		{"plan_id", plan.ID},
		{"household_id", plan.HouseholdID},
		{"created_at", plan.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")},
		{"total_cost", s.TotalCost.StringFixed(2)},
		{"total_packages", strconv.Itoa(s.TotalPackages)},
		{"total_weight_lb", formatNumber(s.TotalWeightLb)},
		{"stores", strconv.Itoa(s.StoreCount)},
	}
	for _, n := range models.TrackedNutrients {
		rows = append(rows,
			[]string{"daily_" + string(n), formatNumber(daily.Get(n))},
			[]string{"weekly_" + string(n), formatNumber(plan.Requirement.Gross.Get(n))},
			[]string{"net_" + string(n), formatNumber(plan.Requirement.Net.Get(n))},
			[]string{"planned_" + string(n), formatNumber(plan.NutrientsAchieved.Get(n))},
		)
	}
	return rows
}

func entryRows(entries []models.PurchasePlanEntry) [][]string {
	rows := [][]string{shoppingListHeader}
	for _, e := range entries {
		rows = append(rows, []string{
			e.Item.Store,
			e.Item.ID,
			e.Item.Name,
			string(e.Item.Category),
			strconv.Itoa(e.Quantity),
			e.Item.UnitPrice.StringFixed(2),
			e.LineCost.StringFixed(2),
			formatNumber(e.LineWeightLb),
		})
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
