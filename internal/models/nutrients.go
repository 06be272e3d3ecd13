package models

import (
	"fmt"
	"math"
)

// Nutrient names a tracked nutrient. The values double as column and config keys.
type Nutrient string

const (
	NutrientCalories Nutrient = "calories"
	NutrientProtein  Nutrient = "protein_g"
	NutrientCarbs    Nutrient = "carbs_g"
	NutrientFat      Nutrient = "fat_g"
)

// TrackedNutrients is the fixed order used for constraint rows and reports.
var TrackedNutrients = []Nutrient{NutrientCalories, NutrientProtein, NutrientCarbs, NutrientFat}

// Nutrients is a per-unit, per-day or per-week nutrient vector.
type Nutrients struct {
	Calories float64 `json:"calories" yaml:"calories" mapstructure:"calories"`
	ProteinG float64 `json:"protein_g" yaml:"protein_g" mapstructure:"protein_g"`
	CarbsG   float64 `json:"carbs_g" yaml:"carbs_g" mapstructure:"carbs_g"`
	FatG     float64 `json:"fat_g" yaml:"fat_g" mapstructure:"fat_g"`
}

func (n Nutrients) Get(k Nutrient) float64 {
	switch k {
	case NutrientCalories:
		return n.Calories
	case NutrientProtein:
		return n.ProteinG
	case NutrientCarbs:
		return n.CarbsG
	case NutrientFat:
		return n.FatG
	}
	return 0
}

func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		ProteinG: n.ProteinG + o.ProteinG,
		CarbsG:   n.CarbsG + o.CarbsG,
		FatG:     n.FatG + o.FatG,
	}
}

func (n Nutrients) Scale(f float64) Nutrients {
	return Nutrients{
		Calories: n.Calories * f,
		ProteinG: n.ProteinG * f,
		CarbsG:   n.CarbsG * f,
		FatG:     n.FatG * f,
	}
}

// ClampedSub subtracts o component-wise and floors every component at zero,
// so a surplus in one nutrient never offsets another.
func (n Nutrients) ClampedSub(o Nutrients) Nutrients {
	return Nutrients{
		Calories: math.Max(0, n.Calories-o.Calories),
		ProteinG: math.Max(0, n.ProteinG-o.ProteinG),
		CarbsG:   math.Max(0, n.CarbsG-o.CarbsG),
		FatG:     math.Max(0, n.FatG-o.FatG),
	}
}

// Covers reports whether every component of n reaches the matching component
// of floor, allowing a relative tolerance.
func (n Nutrients) Covers(floor Nutrients, tol float64) bool {
	for _, k := range TrackedNutrients {
		want := floor.Get(k)
		if n.Get(k) < want-tol*math.Max(1, math.Abs(want)) {
			return false
		}
	}
	return true
}

// Validate rejects negative or non-finite components.
func (n Nutrients) Validate() error {
	for _, k := range TrackedNutrients {
		v := n.Get(k)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not a finite number", k)
		}
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %g", k, v)
		}
	}
	return nil
}

func (n Nutrients) String() string {
	return fmt.Sprintf("%.0f kcal | %.1fg protein | %.1fg carbs | %.1fg fat", n.Calories, n.ProteinG, n.CarbsG, n.FatG)
}
