package models

import (
	"fmt"
	"strings"
)

// DaysPerWeek converts daily requirement rows into the weekly planning horizon.
const DaysPerWeek = 7

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return SexMale, nil
	case "female", "f":
		return SexFemale, nil
	}
	return "", fmt.Errorf("unknown sex %q", s)
}

type Category string

const (
	CategoryProtein    Category = "protein"
	CategoryGrains     Category = "grains"
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategoryFatsOrNuts Category = "fats_or_nuts"
	CategoryOther      Category = "other"
)

// RequiredCategories are the food baskets a plan must buy at least one unit from.
var RequiredCategories = []Category{
	CategoryProtein,
	CategoryGrains,
	CategoryVegetables,
	CategoryFruits,
	CategoryFatsOrNuts,
}

var categoryAliases = map[string]Category{
	"protein":                       CategoryProtein,
	"grains":                        CategoryGrains,
	"grains & carbohydrate sources": CategoryGrains,
	"grains_and_carbohydrates":      CategoryGrains,
	"vegetables":                    CategoryVegetables,
	"fruits":                        CategoryFruits,
	"fats_or_nuts":                  CategoryFatsOrNuts,
	"fats, nuts & seeds":            CategoryFatsOrNuts,
	"fats_nuts_seeds":               CategoryFatsOrNuts,
	"other":                         CategoryOther,
}

// ParseCategory accepts the canonical names as well as the basket labels used
// by the grocery spreadsheets.
func ParseCategory(s string) (Category, error) {
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) Valid() bool {
	switch c {
	case CategoryProtein, CategoryGrains, CategoryVegetables, CategoryFruits, CategoryFatsOrNuts, CategoryOther:
		return true
	}
	return false
}
