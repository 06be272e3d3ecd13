package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrisdamba/grocerplan/internal/catalog"
	"github.com/chrisdamba/grocerplan/internal/models"
	"go.uber.org/zap"
)

// Result is an optimal integer assignment over the eligible catalog items.
type Result struct {
	Items      []models.CatalogItem
	Quantities []int
	// Objective is recomputed from the rounded quantities.
	Objective float64
	// SolverObjective is the objective the solver reported.
	SolverObjective float64
	Stats           models.SolveStats
}

type Engine struct {
	solver   Solver
	required []models.Category
	timeout  time.Duration
	logger   *zap.Logger
}

type EngineOption func(*Engine)

func WithSolver(s Solver) EngineOption {
	return func(e *Engine) { e.solver = s }
}

// WithTimeout caps every solve. It applies on top of any deadline already on
// the caller's context.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.timeout = d }
}

func WithRequiredCategories(categories []models.Category) EngineOption {
	return func(e *Engine) {
		if len(categories) > 0 {
			e.required = categories
		}
	}
}

func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		required: models.RequiredCategories,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.solver == nil {
		e.solver = NewBranchAndBound(DefaultMaxNodes, e.logger)
	}
	return e
}

type solveOutcome struct {
	sol Solution
	err error
}

// Solve finds the cheapest integer purchase that covers net and every
// required category. It blocks until the solver finishes or ctx is done, and
// never returns a partial assignment.
func (e *Engine) Solve(ctx context.Context, net models.Nutrients, cat *catalog.Catalog) (*Result, error) {
	start := time.Now()
	p, items, err := BuildProgram(net, cat, e.required)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("program built",
		zap.Int("variables", len(p.Vars)),
		zap.Int("rows", len(p.Rows)))

	if ierr := Diagnose(p); ierr != nil {
		e.logger.Info("program infeasible before solve",
			zap.String("class", string(ierr.Class)),
			zap.String("constraint", ierr.Constraint))
		return nil, ierr
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	// buffered so a solver finishing after the deadline never blocks
	done := make(chan solveOutcome, 1)
	go func() {
		sol, err := e.solver.Solve(ctx, p)
		done <- solveOutcome{sol: sol, err: err}
	}()

	var out solveOutcome
	select {
	case <-ctx.Done():
		return nil, e.contextError(ctx.Err(), 0)
	case out = <-done:
	}
	if out.err != nil {
		if errors.Is(out.err, context.DeadlineExceeded) || errors.Is(out.err, context.Canceled) {
			return nil, e.contextError(out.err, out.sol.Nodes)
		}
		return nil, fmt.Errorf("solver failed: %w", out.err)
	}

	stats := models.SolveStats{
		Variables: len(p.Vars),
		Rows:      len(p.Rows),
		Nodes:     out.sol.Nodes,
		Duration:  time.Since(start),
	}

	switch out.sol.Status {
	case StatusOptimal:
	case StatusInfeasible:
		return nil, &models.InfeasibleProblemError{
			Class:  models.ConstraintUnknown,
			Detail: "no integer assignment satisfies the nutrient floors and category rules together",
		}
	case StatusUnbounded:
		return nil, &models.InfeasibleProblemError{
			Class:  models.ConstraintUnbounded,
			Detail: "solver reported an unbounded objective",
		}
	case StatusNodeLimit:
		return nil, &models.SolverTimeoutError{Budget: e.timeout, Nodes: out.sol.Nodes, NodeLimit: true}
	default:
		return nil, fmt.Errorf("solver returned unknown status %q", out.sol.Status)
	}

	quantities, err := roundSolution(out.sol.Values, len(p.Vars))
	if err != nil {
		return nil, err
	}
	if err := p.Check(quantities, checkTol); err != nil {
		return nil, &models.InternalInconsistencyError{Detail: fmt.Sprintf("rounded solution is infeasible: %v", err)}
	}

	objective := p.Objective(quantities)
	if !sameObjective(objective, out.sol.Objective) {
		return nil, &models.InternalInconsistencyError{
			Detail: fmt.Sprintf("solver reported objective %.6f but the rounded plan costs %.6f", out.sol.Objective, objective),
		}
	}
	e.logger.Info("solve finished",
		zap.Int("variables", stats.Variables),
		zap.Int("rows", stats.Rows),
		zap.Int("nodes", stats.Nodes),
		zap.Float64("objective", objective),
		zap.Duration("duration", stats.Duration))

	return &Result{
		Items:           items,
		Quantities:      quantities,
		Objective:       objective,
		SolverObjective: out.sol.Objective,
		Stats:           stats,
	}, nil
}

func (e *Engine) contextError(err error, nodes int) error {
	if errors.Is(err, context.DeadlineExceeded) {
		e.logger.Warn("solve timed out", zap.Duration("budget", e.timeout), zap.Int("nodes", nodes))
		return &models.SolverTimeoutError{Budget: e.timeout, Nodes: nodes}
	}
	return fmt.Errorf("solve aborted: %w", err)
}

func sameObjective(a, b float64) bool {
	return math.Abs(a-b) <= objectiveTol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// roundSolution snaps solver values to integers. Anything below one half is
// treated as zero.
func roundSolution(values []float64, n int) ([]int, error) {
	if len(values) != n {
		return nil, &models.InternalInconsistencyError{
			Detail: fmt.Sprintf("solver returned %d values for %d variables", len(values), n),
		}
	}
	out := make([]int, n)
	for j, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &models.InternalInconsistencyError{Detail: fmt.Sprintf("variable %d has value %g", j, v)}
		}
		if v < 0.5 {
			continue
		}
		out[j] = int(math.Round(v))
	}
	return out, nil
}
