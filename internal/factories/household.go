package factories

import (
	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/lucsky/cuid"
)

type HouseholdFactory struct {
	// MinAge and MaxAge bound generated ages; zero values mean 1 and 90.
	MinAge int
	MaxAge int
}

func (hf *HouseholdFactory) CreateMember() models.HouseholdMember {
	minAge, maxAge := hf.MinAge, hf.MaxAge
	if minAge == 0 {
		minAge = 1
	}
	if maxAge == 0 {
		maxAge = 90
	}

	sex := models.SexFemale
	if fake.Bool() {
		sex = models.SexMale
	}
	return models.HouseholdMember{
		Age: fake.IntBetween(minAge, maxAge),
		Sex: sex,
	}
}

// CreateHousehold builds a household with one adult and up to size-1 others.
func (hf *HouseholdFactory) CreateHousehold(size int) models.Household {
	if size < 1 {
		size = 1
	}
	adult := &HouseholdFactory{MinAge: 19, MaxAge: 70}
	members := []models.HouseholdMember{adult.CreateMember()}
	for i := 1; i < size; i++ {
		members = append(members, hf.CreateMember())
	}
	return models.Household{
		ID:      cuid.New(),
		Members: members,
	}
}

// CreateStock picks a few catalog items the household already has at home.
func (hf *HouseholdFactory) CreateStock(items []models.CatalogItem, maxLines int) []models.PantryStockItem {
	if len(items) == 0 || maxLines < 1 {
		return nil
	}
	n := fake.IntBetween(0, maxLines)
	stock := make([]models.PantryStockItem, 0, n)
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		item := items[fake.IntBetween(0, len(items)-1)]
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		stock = append(stock, models.PantryStockItem{
			ItemID:   item.ID,
			Quantity: fake.IntBetween(1, 3),
		})
	}
	return stock
}
