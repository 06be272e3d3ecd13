// Package assembler turns solved quantities into a PurchasePlan grouped by
// store, recomputing every total independently of the solver.
package assembler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/optimizer"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

// objectiveTol is the relative tolerance between the decimal total and the
// solver objective.
const objectiveTol = 1e-6

type Assembler struct {
	now   func() time.Time
	newID func() string
}

func New() *Assembler {
	return &Assembler{now: time.Now, newID: cuid.New}
}

// Assemble builds the plan for one solve. Any disagreement between the
// solver's view and the recomputed totals is an InternalInconsistencyError.
func (a *Assembler) Assemble(householdID string, req models.NetWeeklyRequirement, res *optimizer.Result) (*models.PurchasePlan, error) {
	if res == nil {
		return nil, &models.InternalInconsistencyError{Detail: "no solver result"}
	}
	if len(res.Items) != len(res.Quantities) {
		return nil, &models.InternalInconsistencyError{
			Detail: fmt.Sprintf("%d quantities for %d items", len(res.Quantities), len(res.Items)),
		}
	}

	type indexed struct {
		pos   int
		entry models.PurchasePlanEntry
	}
	byStore := make(map[string][]indexed)
	var achieved models.Nutrients
	for j, item := range res.Items {
		q := res.Quantities[j]
		if q == 0 {
			continue
		}
		if q < 0 || q > item.MaxQuantity {
			return nil, &models.InternalInconsistencyError{
				Detail: fmt.Sprintf("item %s quantity %d outside [1, %d]", item.ID, q, item.MaxQuantity),
			}
		}
		entry := models.PurchasePlanEntry{
			Item:         item,
			Quantity:     q,
			LineCost:     item.UnitPrice.Mul(decimal.NewFromInt(int64(q))),
			LineWeightLb: item.WeightLb * float64(q),
		}
		byStore[item.Store] = append(byStore[item.Store], indexed{pos: j, entry: entry})
		achieved = achieved.Add(item.Nutrients.Scale(float64(q)))
	}

	stores := make([]string, 0, len(byStore))
	for s := range byStore {
		stores = append(stores, s)
	}
	sort.Strings(stores)

	plan := &models.PurchasePlan{
		ID:                a.newID(),
		HouseholdID:       householdID,
		CreatedAt:         a.now().UTC(),
		Requirement:       req,
		Entries:           []models.PurchasePlanEntry{},
		Stores:            make([]models.StoreGroup, 0, len(stores)),
		TotalCost:         decimal.Zero,
		NutrientsAchieved: achieved,
		Objective:         res.Objective,
		Stats:             res.Stats,
	}
	for _, s := range stores {
		lines := byStore[s]
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].pos < lines[j].pos })

		group := models.StoreGroup{Store: s, Subtotal: decimal.Zero}
		for _, l := range lines {
			group.Entries = append(group.Entries, l.entry)
			group.Subtotal = group.Subtotal.Add(l.entry.LineCost)
			group.Packages += l.entry.Quantity
			group.WeightLb += l.entry.LineWeightLb
		}
		plan.Stores = append(plan.Stores, group)
		plan.Entries = append(plan.Entries, group.Entries...)
		plan.TotalCost = plan.TotalCost.Add(group.Subtotal)
		plan.TotalPackages += group.Packages
		plan.TotalWeightLb += group.WeightLb
	}

	total, _ := plan.TotalCost.Float64()
	if !withinTol(total, res.Objective) {
		return nil, &models.InternalInconsistencyError{
			Detail: fmt.Sprintf("plan costs %s but the engine computed %.6f", plan.TotalCost.StringFixed(2), res.Objective),
		}
	}
	if !withinTol(total, res.SolverObjective) {
		return nil, &models.InternalInconsistencyError{
			Detail: fmt.Sprintf("plan costs %s but the solver reported %.6f", plan.TotalCost.StringFixed(2), res.SolverObjective),
		}
	}
	if !achieved.Covers(req.Net, objectiveTol) {
		return nil, &models.InternalInconsistencyError{
			Detail: fmt.Sprintf("plan supplies %v, below the net requirement %v", achieved, req.Net),
		}
	}
	return plan, nil
}

func withinTol(total, objective float64) bool {
	return math.Abs(total-objective) <= objectiveTol*math.Max(1, math.Abs(objective))
}
