package optimizer

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// DefaultMaxNodes bounds the search when no limit is configured.
const DefaultMaxNodes = 200000

// BranchAndBound solves a Program by depth-first branch and bound over LP
// relaxations. Relaxations are solved with the gonum simplex.
type BranchAndBound struct {
	MaxNodes int
	Logger   *zap.Logger

	// lpSolve is swapped in tests; nil means simplex.
	lpSolve lpFunc
}

type lpFunc func(c []float64, A *mat.Dense, b []float64) ([]float64, error)

func NewBranchAndBound(maxNodes int, logger *zap.Logger) *BranchAndBound {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BranchAndBound{MaxNodes: maxNodes, Logger: logger}
}

type node struct {
	lo, hi []int
}

// relaxation is the LP bound of one node. x is nil when the simplex could not
// be used and the node has to be split blindly.
type relaxation struct {
	feasible bool
	bound    float64
	x        []float64
}

func (bb *BranchAndBound) Solve(ctx context.Context, p *Program) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}
	maxNodes := bb.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	logger := bb.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	solveLP := bb.lpSolve
	if solveLP == nil {
		solveLP = simplex
	}

	n := len(p.Vars)
	root := node{lo: make([]int, n), hi: make([]int, n)}
	for j, v := range p.Vars {
		root.lo[j], root.hi[j] = v.Lower, v.Upper
	}

	var (
		best      []int
		bestObj   = math.Inf(1)
		nodes     int
		stack     = []node{root}
		fallbacks int
	)

	offer := func(x []int) {
		if p.Check(x, checkTol) != nil {
			return
		}
		if obj := p.Objective(x); obj < bestObj {
			bestObj = obj
			best = append(best[:0:0], x...)
		}
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return Solution{Nodes: nodes}, err
		}
		if nodes >= maxNodes {
			logger.Warn("node limit reached",
				zap.Int("nodes", nodes),
				zap.Bool("has_incumbent", best != nil))
			return Solution{Status: StatusNodeLimit, Nodes: nodes}, nil
		}
		nodes++

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rel := relax(p, nd, solveLP)
		if !rel.feasible {
			continue
		}
		if best != nil && rel.bound >= bestObj-pruneGap(bestObj) {
			continue
		}

		if rel.x == nil {
			fallbacks++
			// every free variable at its upper bound is feasible for this node
			offer(nd.hi)
			j := firstFree(nd)
			if j < 0 {
				offer(nd.lo)
				continue
			}
			mid := nd.lo[j] + (nd.hi[j]-nd.lo[j])/2
			stack = append(stack, split(nd, j, mid)...)
			continue
		}

		offer(roundUp(rel.x, nd.hi))

		j, frac := mostFractional(rel.x, nd)
		if j < 0 {
			offer(roundNearest(rel.x))
			continue
		}
		floor := int(math.Floor(rel.x[j]))
		if floor < nd.lo[j] {
			floor = nd.lo[j]
		} else if floor >= nd.hi[j] {
			floor = nd.hi[j] - 1
		}
		children := split(nd, j, floor)
		if frac >= 0.5 {
			// explore the up branch first
			children[0], children[1] = children[1], children[0]
		}
		stack = append(stack, children...)
	}

	if fallbacks > 0 {
		logger.Debug("simplex fallback used", zap.Int("nodes", fallbacks))
	}
	if best == nil {
		return Solution{Status: StatusInfeasible, Nodes: nodes}, nil
	}

	values := make([]float64, n)
	for j, v := range best {
		values[j] = float64(v)
	}
	return Solution{
		Status:    StatusOptimal,
		Values:    values,
		Objective: bestObj,
		Nodes:     nodes,
	}, nil
}

func pruneGap(best float64) float64 {
	return feasTol * math.Max(1, math.Abs(best))
}

// split returns the children x[j] <= at and x[j] >= at+1, in that order. The
// first child is pushed first and therefore explored last.
func split(nd node, j, at int) []node {
	down := node{lo: append([]int(nil), nd.lo...), hi: append([]int(nil), nd.hi...)}
	up := node{lo: append([]int(nil), nd.lo...), hi: append([]int(nil), nd.hi...)}
	down.hi[j] = at
	up.lo[j] = at + 1
	return []node{up, down}
}

func firstFree(nd node) int {
	for j := range nd.lo {
		if nd.lo[j] < nd.hi[j] {
			return j
		}
	}
	return -1
}

func mostFractional(x []float64, nd node) (int, float64) {
	best, bestDist, bestFrac := -1, intTol, 0.0
	for j, v := range x {
		if nd.lo[j] == nd.hi[j] {
			continue
		}
		frac := v - math.Floor(v)
		if dist := math.Min(frac, 1-frac); dist > bestDist {
			best, bestDist, bestFrac = j, dist, frac
		}
	}
	return best, bestFrac
}

func roundUp(x []float64, hi []int) []int {
	out := make([]int, len(x))
	for j, v := range x {
		out[j] = int(math.Ceil(v - intTol))
		if out[j] > hi[j] {
			out[j] = hi[j]
		}
		if out[j] < 0 {
			out[j] = 0
		}
	}
	return out
}

func roundNearest(x []float64) []int {
	out := make([]int, len(x))
	for j, v := range x {
		out[j] = int(math.Round(v))
	}
	return out
}

// relax solves the LP relaxation of nd. Fixed variables are substituted out
// and free ones shifted to y = x - lo, so the standard form is
//
//	min  c'y
//	s.t. A y - s = b      (one row per covering row still binding)
//	     y + u = hi - lo  (one row per free variable)
//	     y, s, u >= 0
func relax(p *Program, nd node, solveLP lpFunc) relaxation {
	n := len(p.Vars)
	base := 0.0
	lo := make([]float64, n)
	for j, v := range p.Vars {
		lo[j] = float64(nd.lo[j])
		base += v.Cost * lo[j]
	}

	free := make([]int, 0, n)
	col := make([]int, n)
	for j := range p.Vars {
		col[j] = -1
		if nd.lo[j] < nd.hi[j] {
			col[j] = len(free)
			free = append(free, j)
		}
	}

	type binding struct {
		row int
		rhs float64
	}
	var rows []binding
	for r, row := range p.Rows {
		rhs := row.RHS - p.Activity(r, lo)
		tol := feasTol * math.Max(1, math.Abs(row.RHS))
		if rhs <= tol {
			continue
		}
		var reach float64
		for _, t := range row.Terms {
			reach += t.Coeff * float64(nd.hi[t.Var]-nd.lo[t.Var])
		}
		if reach < rhs-tol {
			return relaxation{}
		}
		rows = append(rows, binding{row: r, rhs: rhs - tol})
	}

	x := append([]float64(nil), lo...)
	if len(rows) == 0 {
		// costs are non-negative, so the lower bounds are optimal
		return relaxation{feasible: true, bound: base, x: x}
	}

	k, m1 := len(free), len(rows)
	m, cols := m1+k, 2*k+m1
	c := make([]float64, cols)
	for i, j := range free {
		c[i] = p.Vars[j].Cost
	}
	A := mat.NewDense(m, cols, nil)
	b := make([]float64, m)
	for i, br := range rows {
		for _, t := range p.Rows[br.row].Terms {
			if ci := col[t.Var]; ci >= 0 {
				A.Set(i, ci, A.At(i, ci)+t.Coeff)
			}
		}
		A.Set(i, k+i, -1)
		b[i] = br.rhs
	}
	for i, j := range free {
		A.Set(m1+i, i, 1)
		A.Set(m1+i, k+m1+i, 1)
		b[m1+i] = float64(nd.hi[j] - nd.lo[j])
	}

	y, err := solveLP(c, A, b)
	if err != nil {
		return relaxation{feasible: true, bound: base}
	}
	bound := base
	for i, j := range free {
		v := math.Max(0, y[i])
		x[j] = lo[j] + v
		bound += p.Vars[j].Cost * v
	}
	return relaxation{feasible: true, bound: bound, x: x}
}

func simplex(c []float64, A *mat.Dense, b []float64) (y []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simplex panicked: %v", r)
		}
	}()
	_, y, err = lp.Simplex(c, A, b, 1e-10, nil)
	return y, err
}
