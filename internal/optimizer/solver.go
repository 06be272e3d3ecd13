package optimizer

import "context"

type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	// StatusNodeLimit means the search budget ran out before optimality was proven.
	StatusNodeLimit Status = "node_limit"
)

// Solution carries raw solver output. Values are floating point even though
// the program is integral; callers round them.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
	Nodes     int
}

// Solver is the seam between the engine and whatever backs the integer
// program. Implementations must return promptly once ctx is done.
type Solver interface {
	Solve(ctx context.Context, p *Program) (Solution, error)
}

const (
	// feasTol is the relative slack granted to covering rows.
	feasTol = 1e-9
	// intTol is how far from an integer a relaxed value may be and still count as integral.
	intTol = 1e-6
	// checkTol is the relative tolerance used to verify integer assignments.
	checkTol = 1e-6
	// objectiveTol is the relative gap allowed between the reported and the
	// recomputed objective.
	objectiveTol = 1e-6
)
