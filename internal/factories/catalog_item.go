package factories

import (
	"fmt"
	"strings"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

type CatalogItemFactory struct{}

type nutrientRange struct {
	calories, protein, carbs, fat [2]int
}

// per-package profiles, loosely following USDA figures for common pack sizes
var categoryProfiles = map[models.Category]nutrientRange{
	models.CategoryProtein:    {calories: [2]int{300, 900}, protein: [2]int{40, 120}, carbs: [2]int{0, 10}, fat: [2]int{10, 60}},
	models.CategoryGrains:     {calories: [2]int{1200, 3500}, protein: [2]int{20, 80}, carbs: [2]int{250, 700}, fat: [2]int{5, 30}},
	models.CategoryVegetables: {calories: [2]int{80, 300}, protein: [2]int{5, 20}, carbs: [2]int{15, 60}, fat: [2]int{0, 3}},
	models.CategoryFruits:     {calories: [2]int{150, 500}, protein: [2]int{1, 6}, carbs: [2]int{40, 120}, fat: [2]int{0, 3}},
	models.CategoryFatsOrNuts: {calories: [2]int{1500, 3500}, protein: [2]int{20, 100}, carbs: [2]int{20, 120}, fat: [2]int{150, 350}},
	models.CategoryOther:      {calories: [2]int{100, 1500}, protein: [2]int{0, 20}, carbs: [2]int{10, 200}, fat: [2]int{0, 50}},
}

var categoryFoods = map[models.Category][]string{
	models.CategoryProtein:    {"Chicken Breast", "Ground Beef", "Eggs", "Salmon Fillet", "Tofu", "Black Beans", "Greek Yogurt"},
	models.CategoryGrains:     {"Brown Rice", "Rolled Oats", "Whole Wheat Bread", "Pasta", "Quinoa", "Tortillas"},
	models.CategoryVegetables: {"Broccoli", "Carrots", "Spinach", "Bell Peppers", "Sweet Potatoes", "Frozen Peas"},
	models.CategoryFruits:     {"Bananas", "Apples", "Oranges", "Blueberries", "Grapes", "Strawberries"},
	models.CategoryFatsOrNuts: {"Peanut Butter", "Almonds", "Olive Oil", "Walnuts", "Sunflower Seeds"},
	models.CategoryOther:      {"Coffee", "Tomato Sauce", "Honey", "Salsa"},
}

var packageSizes = []string{"12 oz", "1 lb", "2 lb", "3 lb", "5 lb", "family pack"}

func (cf *CatalogItemFactory) CreateCatalogItem(store string, category models.Category) models.CatalogItem {
	profile, ok := categoryProfiles[category]
	if !ok {
		profile = categoryProfiles[models.CategoryOther]
	}
	food := fake.RandomStringElement(categoryFoods[category])
	if food == "" {
		food = "Pantry Staple"
	}
	size := fake.RandomStringElement(packageSizes)

	return models.CatalogItem{
		ID:        cuid.New(),
		Name:      fmt.Sprintf("%s %s (%s)", store, food, size),
		Food:      food,
		Store:     store,
		Category:  category,
		UnitPrice: decimal.NewFromFloat(fake.Float64(2, 1, 15)).Round(2),
		Nutrients: models.Nutrients{
			Calories: fake.Float64(0, profile.calories[0], profile.calories[1]),
			ProteinG: fake.Float64(1, profile.protein[0], profile.protein[1]),
			CarbsG:   fake.Float64(1, profile.carbs[0], profile.carbs[1]),
			FatG:     fake.Float64(1, profile.fat[0], profile.fat[1]),
		},
		MaxQuantity: fake.IntBetween(2, 14),
		WeightLb:    fake.Float64(2, 1, 5),
	}
}

// CreateCatalog builds perCategory items for every category in every store.
func (cf *CatalogItemFactory) CreateCatalog(stores []string, perCategory int) []models.CatalogItem {
	categories := append(append([]models.Category{}, models.RequiredCategories...), models.CategoryOther)
	items := make([]models.CatalogItem, 0, len(stores)*len(categories)*perCategory)
	for _, store := range stores {
		store = strings.TrimSpace(store)
		for _, category := range categories {
			for i := 0; i < perCategory; i++ {
				items = append(items, cf.CreateCatalogItem(store, category))
			}
		}
	}
	return items
}
