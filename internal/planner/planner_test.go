package planner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chrisdamba/grocerplan/internal/catalog"
	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/optimizer"
	"github.com/chrisdamba/grocerplan/internal/reference"
	"github.com/shopspring/decimal"
)

func item(id, store string, cat models.Category, price string, n models.Nutrients, max int) models.CatalogItem {
	return models.CatalogItem{
		ID:          id,
		Name:        id,
		Store:       store,
		Category:    cat,
		UnitPrice:   decimal.RequireFromString(price),
		Nutrients:   n,
		MaxQuantity: max,
		WeightLb:    1,
	}
}

func adultTable(t *testing.T, daily models.Nutrients) *reference.Table {
	t.Helper()
	table, err := reference.NewTable([]models.RequirementRow{
		{Sex: models.SexMale, MinAge: 19, MaxAge: 50, Daily: daily},
		{Sex: models.SexFemale, MinAge: 19, MaxAge: 50, Daily: daily},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

func mustCatalog(t *testing.T, items ...models.CatalogItem) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Normalize(items)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return c
}

type countingSolver struct {
	mu    sync.Mutex
	calls int
	inner optimizer.Solver
}

func (s *countingSolver) Solve(ctx context.Context, p *optimizer.Program) (optimizer.Solution, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.inner.Solve(ctx, p)
}

func TestPlanOneAdultOneWeek(t *testing.T) {
	daily := models.Nutrients{Calories: 2000, ProteinG: 50, CarbsG: 250, FatG: 70}
	perUnit := models.Nutrients{Calories: 400, ProteinG: 10, CarbsG: 50, FatG: 14}
	cat := mustCatalog(t,
		item("chicken", "Kroger", models.CategoryProtein, "2.50", perUnit, 7),
		item("oats", "Costco", models.CategoryGrains, "1.75", perUnit, 7),
		item("spinach", "Kroger", models.CategoryVegetables, "0.99", perUnit, 7),
		item("banana", "Aldi", models.CategoryFruits, "3.10", perUnit, 7),
		item("almonds", "Costco", models.CategoryFatsOrNuts, "4.25", perUnit, 7),
	)
	p := New(cat, adultTable(t, daily), nil)

	plan, err := p.Plan(context.Background(), models.Household{
		ID:      "solo",
		Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}},
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	for _, id := range []string{"chicken", "oats", "spinach", "banana", "almonds"} {
		if q := plan.QuantityOf(id); q != 7 {
			t.Errorf("Expected 7 x %s, got %d", id, q)
		}
	}
	want := decimal.RequireFromString("88.13")
	if !plan.TotalCost.Equal(want) {
		t.Errorf("Expected total %s, got %s", want, plan.TotalCost)
	}
	if len(plan.Stores) != 3 || plan.Stores[0].Store != "Aldi" {
		t.Errorf("Expected three stores led by Aldi, got %+v", plan.Stores)
	}
	if plan.TotalWeightLb != 35 {
		t.Errorf("Expected 35 lb, got %v", plan.TotalWeightLb)
	}
	if got := plan.Requirement.Daily(); got.Calories != 2000 {
		t.Errorf("Expected 2000 kcal per day, got %v", got.Calories)
	}
}

type inflatingSolver struct {
	inner optimizer.Solver
}

func (s inflatingSolver) Solve(ctx context.Context, p *optimizer.Program) (optimizer.Solution, error) {
	sol, err := s.inner.Solve(ctx, p)
	sol.Objective += 100
	return sol, err
}

func TestPlanRejectsMisreportedObjective(t *testing.T) {
	daily := models.Nutrients{Calories: 2000, ProteinG: 50, CarbsG: 250, FatG: 70}
	perUnit := models.Nutrients{Calories: 400, ProteinG: 10, CarbsG: 50, FatG: 14}
	cat := mustCatalog(t,
		item("chicken", "Kroger", models.CategoryProtein, "2.50", perUnit, 7),
		item("oats", "Costco", models.CategoryGrains, "1.75", perUnit, 7),
		item("spinach", "Kroger", models.CategoryVegetables, "0.99", perUnit, 7),
		item("banana", "Aldi", models.CategoryFruits, "3.10", perUnit, 7),
		item("almonds", "Costco", models.CategoryFatsOrNuts, "4.25", perUnit, 7),
	)
	engine := optimizer.NewEngine(optimizer.WithSolver(inflatingSolver{inner: optimizer.NewBranchAndBound(0, nil)}))
	p := New(cat, adultTable(t, daily), engine)

	plan, err := p.Plan(context.Background(), models.Household{
		ID:      "solo",
		Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}},
	})
	if !errors.Is(err, models.ErrInternalInconsistency) {
		t.Fatalf("Expected ErrInternalInconsistency, got %v", err)
	}
	if plan != nil {
		t.Error("Expected no plan when the solver misreports its objective")
	}
}

func TestPlanStockCoversProtein(t *testing.T) {
	daily := models.Nutrients{Calories: 1000, ProteinG: 20, CarbsG: 100, FatG: 20}
	cat := mustCatalog(t,
		item("jerky", "Kroger", models.CategoryProtein, "8.00", models.Nutrients{Calories: 1000, ProteinG: 100, CarbsG: 50, FatG: 20}, 0),
		item("steak", "Kroger", models.CategoryProtein, "9.00", models.Nutrients{Calories: 200, ProteinG: 50, FatG: 10}, 5),
		item("rice", "Kroger", models.CategoryGrains, "1.00", models.Nutrients{Calories: 1000, ProteinG: 20, CarbsG: 200, FatG: 5}, 5),
		item("carrots", "Kroger", models.CategoryVegetables, "1.00", models.Nutrients{Calories: 100, ProteinG: 2, CarbsG: 20}, 5),
		item("apples", "Kroger", models.CategoryFruits, "1.00", models.Nutrients{Calories: 100, CarbsG: 25}, 5),
		item("oil", "Kroger", models.CategoryFatsOrNuts, "1.00", models.Nutrients{Calories: 800, FatG: 90}, 5),
	)
	p := New(cat, adultTable(t, daily), nil)

	plan, err := p.Plan(context.Background(), models.Household{
		ID:      "stocked",
		Members: []models.HouseholdMember{{Age: 25, Sex: models.SexFemale}},
		Stock:   []models.PantryStockItem{{ItemID: "jerky", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if plan.Requirement.Net.ProteinG != 0 {
		t.Fatalf("Expected stock to cover protein, net is %v", plan.Requirement.Net.ProteinG)
	}
	if q := plan.QuantityOf("steak"); q != 1 {
		t.Errorf("Expected exactly one protein unit for diversity, got %d", q)
	}
	if !plan.TotalCost.Equal(decimal.NewFromInt(16)) {
		t.Errorf("Expected total 16, got %s", plan.TotalCost)
	}
}

func TestPlanFailsBeforeSolve(t *testing.T) {
	daily := models.Nutrients{Calories: 2000}
	cat := mustCatalog(t, item("bread", "Kroger", models.CategoryGrains, "2.00", models.Nutrients{Calories: 2000}, 7))
	solver := &countingSolver{inner: optimizer.NewBranchAndBound(0, nil)}
	p := New(cat, adultTable(t, daily), optimizer.NewEngine(optimizer.WithSolver(solver)))

	t.Run("Unknown member", func(t *testing.T) {
		_, err := p.Plan(context.Background(), models.Household{
			Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}, {Age: 8, Sex: models.SexFemale}},
		})
		var lookupErr *models.LookupError
		if !errors.As(err, &lookupErr) || lookupErr.MemberIndex != 1 {
			t.Fatalf("Expected LookupError for member 1, got %v", err)
		}
	})

	t.Run("Unknown stock", func(t *testing.T) {
		_, err := p.Plan(context.Background(), models.Household{
			Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}},
			Stock:   []models.PantryStockItem{{ItemID: "caviar", Quantity: 1}},
		})
		if !errors.Is(err, models.ErrValidation) {
			t.Fatalf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("Missing categories", func(t *testing.T) {
		_, err := p.Plan(context.Background(), models.Household{
			Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}},
		})
		if !errors.Is(err, models.ErrInfeasible) {
			t.Fatalf("Expected ErrInfeasible, got %v", err)
		}
	})

	if solver.calls != 0 {
		t.Errorf("Expected the solver never to run, got %d calls", solver.calls)
	}
}

func TestPlanBatch(t *testing.T) {
	daily := models.Nutrients{Calories: 1000, ProteinG: 20, CarbsG: 100, FatG: 20}
	perUnit := models.Nutrients{Calories: 1000, ProteinG: 20, CarbsG: 100, FatG: 20}
	cat := mustCatalog(t,
		item("eggs", "Kroger", models.CategoryProtein, "3.00", perUnit, 14),
		item("rice", "Kroger", models.CategoryGrains, "1.00", perUnit, 14),
		item("peas", "Kroger", models.CategoryVegetables, "2.00", perUnit, 14),
		item("figs", "Kroger", models.CategoryFruits, "2.00", perUnit, 14),
		item("pecans", "Kroger", models.CategoryFatsOrNuts, "4.00", perUnit, 14),
	)
	p := New(cat, adultTable(t, daily), nil, WithConcurrency(3))

	households := []models.Household{
		{ID: "a", Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}}},
		{ID: "b", Members: []models.HouseholdMember{{Age: 99, Sex: models.SexMale}}},
		{ID: "c", Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}, {Age: 31, Sex: models.SexFemale}}},
	}

	var mu sync.Mutex
	seen := 0
	results, err := p.PlanBatch(context.Background(), households, func(BatchResult) {
		mu.Lock()
		seen++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("PlanBatch failed: %v", err)
	}
	if seen != 3 {
		t.Errorf("Expected 3 callbacks, got %d", seen)
	}

	for i, h := range households {
		if results[i].HouseholdID != h.ID {
			t.Errorf("Result %d belongs to %s, expected %s", i, results[i].HouseholdID, h.ID)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("Unexpected failures: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, models.ErrLookup) {
		t.Errorf("Expected household b to fail lookup, got %v", results[1].Err)
	}
	// one of each category plus cheap rice for the rest of the week
	if !results[0].Plan.TotalCost.Equal(decimal.NewFromInt(14)) {
		t.Errorf("Expected household a to cost 14, got %s", results[0].Plan.TotalCost)
	}
	if !results[2].Plan.TotalCost.Equal(decimal.NewFromInt(21)) {
		t.Errorf("Expected household c to cost 21, got %s", results[2].Plan.TotalCost)
	}
}
