// Package optimizer formulates the weekly purchase decision as an integer
// program and solves it.
package optimizer

import (
	"fmt"
	"math"
)

// Variable is one integer decision variable with inclusive bounds.
type Variable struct {
	Name  string
	Cost  float64
	Lower int
	Upper int
}

// Term is a single coefficient of a sparse constraint row.
type Term struct {
	Var   int
	Coeff float64
}

// Row is a covering constraint: sum(Coeff * x[Var]) >= RHS.
type Row struct {
	Name  string
	Class RowClass
	Terms []Term
	RHS   float64
}

type RowClass string

const (
	RowNutrient  RowClass = "nutrient"
	RowDiversity RowClass = "diversity"
)

// Program is a solver-independent minimisation problem over bounded integer
// variables with non-negative covering rows. It is built once per solve and
// never shared between solves.
type Program struct {
	Vars []Variable
	Rows []Row
}

func (p *Program) Objective(x []int) float64 {
	var sum float64
	for j, v := range p.Vars {
		sum += v.Cost * float64(x[j])
	}
	return sum
}

// Activity evaluates the left-hand side of row r at x.
func (p *Program) Activity(r int, x []float64) float64 {
	var sum float64
	for _, t := range p.Rows[r].Terms {
		sum += t.Coeff * x[t.Var]
	}
	return sum
}

// Check verifies that an integer assignment respects every bound and row.
func (p *Program) Check(x []int, tol float64) error {
	if len(x) != len(p.Vars) {
		return fmt.Errorf("assignment has %d values for %d variables", len(x), len(p.Vars))
	}
	xf := make([]float64, len(x))
	for j, v := range p.Vars {
		if x[j] < v.Lower || x[j] > v.Upper {
			return fmt.Errorf("variable %s = %d outside [%d, %d]", v.Name, x[j], v.Lower, v.Upper)
		}
		xf[j] = float64(x[j])
	}
	for r, row := range p.Rows {
		if got := p.Activity(r, xf); got < row.RHS-tol*math.Max(1, math.Abs(row.RHS)) {
			return fmt.Errorf("row %s: %g < %g", row.Name, got, row.RHS)
		}
	}
	return nil
}

// Validate rejects programs the solvers in this package cannot handle.
func (p *Program) Validate() error {
	for j, v := range p.Vars {
		if v.Lower < 0 || v.Upper < v.Lower {
			return fmt.Errorf("variable %s has invalid bounds [%d, %d]", v.Name, v.Lower, v.Upper)
		}
		if v.Cost < 0 || math.IsNaN(v.Cost) || math.IsInf(v.Cost, 0) {
			return fmt.Errorf("variable %d (%s) has invalid cost %g", j, v.Name, v.Cost)
		}
	}
	for _, row := range p.Rows {
		if math.IsNaN(row.RHS) || math.IsInf(row.RHS, 0) {
			return fmt.Errorf("row %s has invalid rhs %g", row.Name, row.RHS)
		}
		for _, t := range row.Terms {
			if t.Var < 0 || t.Var >= len(p.Vars) {
				return fmt.Errorf("row %s references unknown variable %d", row.Name, t.Var)
			}
			if t.Coeff < 0 || math.IsNaN(t.Coeff) || math.IsInf(t.Coeff, 0) {
				return fmt.Errorf("row %s has invalid coefficient %g", row.Name, t.Coeff)
			}
		}
	}
	return nil
}
