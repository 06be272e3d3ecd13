package models

// RequirementRow is one bracket of the nutrient reference table.
// MinAge and MaxAge are inclusive.
type RequirementRow struct {
	Sex    Sex       `json:"sex" yaml:"sex"`
	MinAge int       `json:"min_age" yaml:"min_age"`
	MaxAge int       `json:"max_age" yaml:"max_age"`
	Daily  Nutrients `json:"daily" yaml:"daily"`
}

func (r RequirementRow) Matches(age int, sex Sex) bool {
	return r.Sex == sex && r.MinAge <= age && age <= r.MaxAge
}

// NetWeeklyRequirement is the nutrient target the optimizer has to reach.
type NetWeeklyRequirement struct {
	Gross       Nutrients `json:"gross"`
	StockOffset Nutrients `json:"stock_offset"`
	Net         Nutrients `json:"net"`
}

// Daily returns the household's gross requirement for a single day.
func (r NetWeeklyRequirement) Daily() Nutrients {
	return Nutrients{
		Calories: r.Gross.Calories / DaysPerWeek,
		ProteinG: r.Gross.ProteinG / DaysPerWeek,
		CarbsG:   r.Gross.CarbsG / DaysPerWeek,
		FatG:     r.Gross.FatG / DaysPerWeek,
	}
}
