// Package demand converts a household and its pantry into the net weekly
// nutrient requirement the optimizer has to cover.
package demand

import (
	"errors"
	"fmt"

	"github.com/chrisdamba/grocerplan/internal/models"
)

var ErrNoMembers = errors.New("household has no members")

// RequirementSource resolves a member to a daily requirement row.
type RequirementSource interface {
	Lookup(age int, sex models.Sex) (models.RequirementRow, error)
}

type Aggregator struct {
	table RequirementSource
}

func NewAggregator(table RequirementSource) *Aggregator {
	return &Aggregator{table: table}
}

// Gross sums every member's daily row over the week. The first member without
// a matching row aborts with a *models.LookupError naming that member.
func (a *Aggregator) Gross(members []models.HouseholdMember) (models.Nutrients, error) {
	if len(members) == 0 {
		return models.Nutrients{}, ErrNoMembers
	}

	var daily models.Nutrients
	for i, m := range members {
		if m.Age < 0 {
			return models.Nutrients{}, &models.LookupError{MemberIndex: i, Age: m.Age, Sex: m.Sex}
		}
		row, err := a.table.Lookup(m.Age, m.Sex)
		if err != nil {
			var lookupErr *models.LookupError
			if errors.As(err, &lookupErr) {
				return models.Nutrients{}, &models.LookupError{MemberIndex: i, Age: m.Age, Sex: m.Sex}
			}
			return models.Nutrients{}, fmt.Errorf("member %d: %w", i, err)
		}
		daily = daily.Add(row.Daily)
	}
	return daily.Scale(models.DaysPerWeek), nil
}

// StockOffset is the nutrient content already on hand.
func (a *Aggregator) StockOffset(stock []models.StockLine) models.Nutrients {
	var offset models.Nutrients
	for _, line := range stock {
		offset = offset.Add(line.Nutrients())
	}
	return offset
}

// NetWeekly clamps gross minus stock at zero per nutrient.
func (a *Aggregator) NetWeekly(members []models.HouseholdMember, stock []models.StockLine) (models.NetWeeklyRequirement, error) {
	gross, err := a.Gross(members)
	if err != nil {
		return models.NetWeeklyRequirement{}, err
	}
	offset := a.StockOffset(stock)
	return models.NetWeeklyRequirement{
		Gross:       gross,
		StockOffset: offset,
		Net:         gross.ClampedSub(offset),
	}, nil
}
