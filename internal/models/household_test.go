package models

import "testing"

func TestHouseholdNormalizeSex(t *testing.T) {
	h := Household{Members: []HouseholdMember{
		{Age: 40, Sex: "M"},
		{Age: 38, Sex: " Female "},
		{Age: 9, Sex: "other"},
	}}
	h.NormalizeSex()

	want := []Sex{SexMale, SexFemale, "other"}
	for i, m := range h.Members {
		if m.Sex != want[i] {
			t.Errorf("member %d: expected %q, got %q", i, want[i], m.Sex)
		}
	}
}
