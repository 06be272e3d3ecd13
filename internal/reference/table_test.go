package reference

import (
	"errors"
	"strings"
	"testing"

	"github.com/chrisdamba/grocerplan/internal/models"
)

func TestDefaultTableLookup(t *testing.T) {
	table := Default()

	tests := []struct {
		name     string
		age      int
		sex      models.Sex
		calories float64
	}{
		{"toddler lower bound", 1, models.SexFemale, 1000},
		{"adult male", 30, models.SexMale, 2600},
		{"bracket upper bound", 50, models.SexFemale, 1800},
		{"senior", 120, models.SexMale, 2200},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row, err := table.Lookup(tc.age, tc.sex)
			if err != nil {
				t.Fatalf("Lookup(%d, %s) failed: %v", tc.age, tc.sex, err)
			}
			if row.Daily.Calories != tc.calories {
				t.Errorf("Expected %v kcal, got %v", tc.calories, row.Daily.Calories)
			}
		})
	}
}

func TestLookupFailsLoudly(t *testing.T) {
	table := Default()

	for _, tc := range []struct {
		age int
		sex models.Sex
	}{
		{0, models.SexMale},
		{121, models.SexFemale},
		{30, models.Sex("unknown")},
	} {
		_, err := table.Lookup(tc.age, tc.sex)
		if !errors.Is(err, models.ErrLookup) {
			t.Errorf("Lookup(%d, %q): expected ErrLookup, got %v", tc.age, tc.sex, err)
		}
		var lookupErr *models.LookupError
		if !errors.As(err, &lookupErr) || lookupErr.Age != tc.age {
			t.Errorf("Expected a LookupError carrying age %d, got %v", tc.age, err)
		}
	}
}

func TestNewTableRejectsOverlap(t *testing.T) {
	_, err := NewTable([]models.RequirementRow{
		{Sex: models.SexMale, MinAge: 19, MaxAge: 30},
		{Sex: models.SexMale, MinAge: 30, MaxAge: 50},
	})
	if err == nil || !strings.Contains(err.Error(), "overlapping") {
		t.Fatalf("Expected an overlap error, got %v", err)
	}

	// the same bracket for both sexes is fine
	if _, err := NewTable([]models.RequirementRow{
		{Sex: models.SexMale, MinAge: 19, MaxAge: 30},
		{Sex: models.SexFemale, MinAge: 19, MaxAge: 30},
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestNewTableRejectsBadRows(t *testing.T) {
	tests := map[string]models.RequirementRow{
		"inverted bracket":  {Sex: models.SexMale, MinAge: 10, MaxAge: 5},
		"negative nutrient": {Sex: models.SexMale, MinAge: 1, MaxAge: 5, Daily: models.Nutrients{FatG: -1}},
		"unknown sex":       {Sex: "x", MinAge: 1, MaxAge: 5},
	}
	for name, row := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewTable([]models.RequirementRow{row}); err == nil {
				t.Fatal("Expected an error, got nil")
			}
		})
	}
}

func TestDecode(t *testing.T) {
	doc := `
rows:
  - sex: Female
    min_age: 19
    max_age: 30
    daily: {calories: 2000, protein_g: 46, carbs_g: 130, fat_g: 65}
`
	table, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	row, err := table.Lookup(25, models.SexFemale)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if row.Daily.ProteinG != 46 {
		t.Errorf("Expected 46g protein, got %v", row.Daily.ProteinG)
	}

	if _, err := Decode(strings.NewReader("rows:\n  - {sex: male, min_age: 1, max_age: 2, colour: red}\n")); err == nil {
		t.Error("Expected unknown fields to be rejected")
	}
}
