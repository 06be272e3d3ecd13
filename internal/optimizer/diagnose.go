package optimizer

import (
	"fmt"
	"math"

	"github.com/chrisdamba/grocerplan/internal/models"
)

// Diagnose looks for rows no assignment within bounds can satisfy. Rows are
// checked in order, diversity first, so the reported class is stable. A nil
// result means buying every variable at its upper bound is feasible.
func Diagnose(p *Program) *models.InfeasibleProblemError {
	for _, class := range []RowClass{RowDiversity, RowNutrient} {
		for _, row := range p.Rows {
			if row.Class != class || row.RHS <= 0 {
				continue
			}
			var reach float64
			for _, t := range row.Terms {
				reach += t.Coeff * float64(p.Vars[t.Var].Upper)
			}
			if reach < row.RHS-feasTol*math.Max(1, row.RHS) {
				return classify(row, reach)
			}
		}
	}
	return nil
}

func classify(row Row, reach float64) *models.InfeasibleProblemError {
	if row.Class == RowDiversity {
		return &models.InfeasibleProblemError{
			Class:      models.ConstraintDiversity,
			Constraint: row.Name,
			Detail:     fmt.Sprintf("catalog has no purchasable item in category %s", row.Name),
		}
	}
	if len(row.Terms) == 0 {
		return &models.InfeasibleProblemError{
			Class:      models.ConstraintNutrient,
			Constraint: row.Name,
			Detail:     fmt.Sprintf("no purchasable item supplies %s, %.1f needed", row.Name, row.RHS),
		}
	}
	return &models.InfeasibleProblemError{
		Class:      models.ConstraintCapacity,
		Constraint: row.Name,
		Detail:     fmt.Sprintf("max quantities reach only %.1f of %.1f %s", reach, row.RHS, row.Name),
	}
}
