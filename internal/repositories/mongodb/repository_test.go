package mongodb

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/shopspring/decimal"
)

func TestPlanRecordRoundTrip(t *testing.T) {
	item := models.CatalogItem{ID: "eggs", Name: "Eggs", Store: "Kroger", Category: models.CategoryProtein,
		UnitPrice: decimal.RequireFromString("3.49"), Nutrients: models.Nutrients{Calories: 840, ProteinG: 72}, MaxQuantity: 4}
	entry := models.PurchasePlanEntry{Item: item, Quantity: 2, LineCost: decimal.RequireFromString("6.98"), LineWeightLb: 3}
	plan := &models.PurchasePlan{
		ID:                "plan-1",
		HouseholdID:       "smiths",
		CreatedAt:         time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC),
		Entries:           []models.PurchasePlanEntry{entry},
		Stores:            []models.StoreGroup{{Store: "Kroger", Entries: []models.PurchasePlanEntry{entry}, Subtotal: entry.LineCost, Packages: 2, WeightLb: 3}},
		TotalCost:         entry.LineCost,
		TotalPackages:     2,
		TotalWeightLb:     3,
		NutrientsAchieved: models.Nutrients{Calories: 1680, ProteinG: 144},
		Objective:         6.98,
	}

	record, err := newPlanRecord(plan)
	if err != nil {
		t.Fatalf("newPlanRecord failed: %v", err)
	}
	if record.TotalCost.String() != "6.98" || record.StoreCount != 1 {
		t.Errorf("Unexpected record %+v", record)
	}

	data, err := bson.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var stored storedPlan
	if err := bson.Unmarshal(data, &stored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	back, err := decodePlan(stored.Plan)
	if err != nil {
		t.Fatalf("decodePlan failed: %v", err)
	}

	if back.ID != plan.ID || !back.TotalCost.Equal(plan.TotalCost) || !back.CreatedAt.Equal(plan.CreatedAt) {
		t.Errorf("Plan header changed: %+v", back)
	}
	if back.QuantityOf("eggs") != 2 || back.NutrientsAchieved.ProteinG != 144 || !back.Stores[0].Subtotal.Equal(entry.LineCost) {
		t.Errorf("Plan body changed: %+v", back)
	}
}
