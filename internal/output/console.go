package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/chrisdamba/grocerplan/internal/models"
)

// ConsoleOutput renders a plan as aligned text tables.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput writes to w, or to stdout when w is nil.
func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WritePlan(ctx context.Context, plan *models.PurchasePlan) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tw := tabwriter.NewWriter(c.w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Plan %s", plan.ID)
	if plan.HouseholdID != "" {
		fmt.Fprintf(tw, " for household %s", plan.HouseholdID)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw)

	daily := plan.Requirement.Daily()
	fmt.Fprintln(tw, "NUTRIENT\tDAILY\tWEEKLY\tFROM STOCK\tTO BUY\tPLANNED")
	for _, n := range models.TrackedNutrients {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			n,
			daily.Get(n),
			plan.Requirement.Gross.Get(n),
			plan.Requirement.StockOffset.Get(n),
			plan.Requirement.Net.Get(n),
			plan.NutrientsAchieved.Get(n))
	}
	fmt.Fprintln(tw)

	for _, group := range plan.Stores {
		fmt.Fprintf(tw, "%s\tsubtotal $%s\t%d packages\t%.1f lb\n",
			group.Store, group.Subtotal.StringFixed(2), group.Packages, group.WeightLb)
		fmt.Fprintln(tw, "  ITEM\tCATEGORY\tQTY\tUNIT PRICE\tLINE COST\tWEIGHT")
		for _, e := range group.Entries {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t$%s\t$%s\t%.1f lb\n",
				e.Item.Name, e.Item.Category, e.Quantity,
				e.Item.UnitPrice.StringFixed(2), e.LineCost.StringFixed(2), e.LineWeightLb)
		}
		fmt.Fprintln(tw)
	}

	s := plan.Summary()
	fmt.Fprintf(tw, "TOTAL\t$%s\t%d packages\t%.1f lb\t%d stores\n",
		s.TotalCost.StringFixed(2), s.TotalPackages, s.TotalWeightLb, s.StoreCount)

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error {
	return nil
}
