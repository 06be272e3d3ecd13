package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrLookup                = errors.New("no nutrient reference row")
	ErrValidation            = errors.New("invalid catalog")
	ErrInfeasible            = errors.New("infeasible problem")
	ErrSolverTimeout         = errors.New("solver timeout")
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// LookupError is returned when a household member matches no reference bracket.
type LookupError struct {
	MemberIndex int
	Age         int
	Sex         Sex
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s for member %d (age %d, sex %q)", ErrLookup, e.MemberIndex, e.Age, e.Sex)
}

func (e *LookupError) Unwrap() error { return ErrLookup }

// ValidationError lists every malformed catalog or stock entry found in one pass.
type ValidationError struct {
	ItemIDs  []string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d offending item(s) [%s]: %s",
		ErrValidation, len(e.ItemIDs), strings.Join(e.ItemIDs, ", "), strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a problem for itemID, listing the id once.
func (e *ValidationError) Add(itemID, problem string) {
	if len(e.ItemIDs) == 0 || e.ItemIDs[len(e.ItemIDs)-1] != itemID {
		e.ItemIDs = append(e.ItemIDs, itemID)
	}
	e.Problems = append(e.Problems, fmt.Sprintf("%s: %s", itemID, problem))
}

// Empty reports whether no problem was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Problems) == 0
}

// ConstraintClass names the constraint family blamed for an infeasible program.
type ConstraintClass string

const (
	ConstraintNutrient  ConstraintClass = "nutrient"
	ConstraintDiversity ConstraintClass = "diversity"
	ConstraintCapacity  ConstraintClass = "capacity"
	ConstraintUnbounded ConstraintClass = "unbounded"
	ConstraintUnknown   ConstraintClass = "unknown"
)

type InfeasibleProblemError struct {
	Class ConstraintClass
	// Constraint is the name of the offending row when one can be singled out.
	Constraint string
	Detail     string
}

func (e *InfeasibleProblemError) Error() string {
	msg := fmt.Sprintf("%s (%s constraint", ErrInfeasible, e.Class)
	if e.Constraint != "" {
		msg += " " + e.Constraint
	}
	msg += ")"
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *InfeasibleProblemError) Unwrap() error { return ErrInfeasible }

type SolverTimeoutError struct {
	Budget time.Duration
	Nodes  int
	// NodeLimit is set when the search ran out of nodes rather than time.
	NodeLimit bool
}

func (e *SolverTimeoutError) Error() string {
	if e.NodeLimit {
		return fmt.Sprintf("%s: node limit reached after %d nodes", ErrSolverTimeout, e.Nodes)
	}
	if e.Budget > 0 {
		return fmt.Sprintf("%s after %s", ErrSolverTimeout, e.Budget)
	}
	return ErrSolverTimeout.Error()
}

func (e *SolverTimeoutError) Unwrap() error { return ErrSolverTimeout }

type InternalInconsistencyError struct {
	Detail string
}

func (e *InternalInconsistencyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInternalInconsistency, e.Detail)
}

func (e *InternalInconsistencyError) Unwrap() error { return ErrInternalInconsistency }
