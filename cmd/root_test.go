package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chrisdamba/grocerplan/internal/demand"
	"github.com/chrisdamba/grocerplan/internal/models"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"lookup", &models.LookupError{MemberIndex: 2}, exitInput},
		{"validation", fmt.Errorf("load: %w", &models.ValidationError{}), exitInput},
		{"no members", demand.ErrNoMembers, exitInput},
		{"infeasible", &models.InfeasibleProblemError{Class: models.ConstraintNutrient}, exitInfeasible},
		{"timeout", &models.SolverTimeoutError{}, exitTimeout},
		{"other", errors.New("disk full"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCloserRunsInReverse(t *testing.T) {
	var order []int
	var c closer
	c.add(func() { order = append(order, 1) })
	c.add(func() { order = append(order, 2) })
	c.close()
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("Expected [2 1], got %v", order)
	}
}
