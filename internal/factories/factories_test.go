package factories

import (
	"testing"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/shopspring/decimal"
)

func TestCreateCatalog(t *testing.T) {
	Seed(7)
	cf := &CatalogItemFactory{}
	stores := []string{"Kroger", " Aldi "}
	items := cf.CreateCatalog(stores, 2)

	want := len(stores) * (len(models.RequiredCategories) + 1) * 2
	if len(items) != want {
		t.Fatalf("Expected %d items, got %d", want, len(items))
	}

	ids := make(map[string]bool, len(items))
	for _, item := range items {
		if ids[item.ID] {
			t.Errorf("Duplicate item id %s", item.ID)
		}
		ids[item.ID] = true
		if item.Store != "Kroger" && item.Store != "Aldi" {
			t.Errorf("Unexpected store %q", item.Store)
		}
		if item.UnitPrice.LessThan(decimal.NewFromInt(1)) || item.UnitPrice.GreaterThan(decimal.NewFromInt(16)) {
			t.Errorf("Price %s out of range for %s", item.UnitPrice, item.Name)
		}
		if item.MaxQuantity < 2 || item.MaxQuantity > 14 {
			t.Errorf("MaxQuantity %d out of range for %s", item.MaxQuantity, item.Name)
		}
		if item.Nutrients.Calories <= 0 && item.Category != models.CategoryOther {
			t.Errorf("Expected calories for %s", item.Name)
		}
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	cf := &CatalogItemFactory{}

	Seed(42)
	first := cf.CreateCatalog([]string{"Kroger"}, 1)
	Seed(42)
	second := cf.CreateCatalog([]string{"Kroger"}, 1)

	for i := range first {
		a, b := first[i], second[i]
		if a.Name != b.Name || !a.UnitPrice.Equal(b.UnitPrice) || a.Nutrients != b.Nutrients {
			t.Errorf("Item %d differs between seeded runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestCreateHousehold(t *testing.T) {
	Seed(11)
	hf := &HouseholdFactory{}

	tests := []struct {
		name string
		size int
		want int
	}{
		{"single", 1, 1},
		{"family", 4, 4},
		{"zero becomes one", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := hf.CreateHousehold(tt.size)
			if len(h.Members) != tt.want {
				t.Fatalf("Expected %d members, got %d", tt.want, len(h.Members))
			}
			if h.ID == "" {
				t.Error("Expected household id")
			}
			if age := h.Members[0].Age; age < 19 || age > 70 {
				t.Errorf("Expected an adult first member, got age %d", age)
			}
			for _, m := range h.Members {
				if m.Age < 1 || m.Age > 90 {
					t.Errorf("Age %d out of range", m.Age)
				}
				if m.Sex != models.SexMale && m.Sex != models.SexFemale {
					t.Errorf("Unexpected sex %q", m.Sex)
				}
			}
		})
	}
}

func TestCreateStock(t *testing.T) {
	Seed(5)
	items := (&CatalogItemFactory{}).CreateCatalog([]string{"Kroger"}, 3)
	hf := &HouseholdFactory{}

	if stock := hf.CreateStock(nil, 5); stock != nil {
		t.Errorf("Expected no stock without items, got %v", stock)
	}

	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}
	for i := 0; i < 20; i++ {
		stock := hf.CreateStock(items, 5)
		if len(stock) > 5 {
			t.Fatalf("Expected at most 5 lines, got %d", len(stock))
		}
		seen := map[string]bool{}
		for _, s := range stock {
			if !known[s.ItemID] {
				t.Errorf("Stock references unknown item %s", s.ItemID)
			}
			if seen[s.ItemID] {
				t.Errorf("Duplicate stock line for %s", s.ItemID)
			}
			seen[s.ItemID] = true
			if s.Quantity < 1 || s.Quantity > 3 {
				t.Errorf("Quantity %d out of range", s.Quantity)
			}
		}
	}
}
