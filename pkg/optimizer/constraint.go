package optimizer

import (
	"fmt"
	"math"

	"github.com/aristath/orbat/pkg/linalg"
)

// ConstraintKind identifies a constraint variant. The set is closed so the
// infeasibility heuristic can switch over it exhaustively.
type ConstraintKind int

const (
	// FullyInvested requires |Σw − 1| ≤ tolerance.
	FullyInvested ConstraintKind = iota
	// LongOnly requires every weight ≥ −tolerance.
	LongOnly
	// Box requires every weight within [lower−tol, upper+tol], with either
	// uniform or per-asset bounds.
	Box
)

// String returns the constraint kind name.
func (k ConstraintKind) String() string {
	switch k {
	case FullyInvested:
		return "FullyInvested"
	case LongOnly:
		return "LongOnly"
	case Box:
		return "Box"
	}
	return fmt.Sprintf("ConstraintKind(%d)", int(k))
}

// Constraint is a feasibility predicate over a weight vector. Feasibility of
// an empty weight vector is false, not an error.
type Constraint struct {
	kind      ConstraintKind
	tolerance float64

	// Box bounds. uniform selects between the scalar pair and the per-asset
	// slices.
	uniform      bool
	uniformLower float64
	uniformUpper float64
	lowers       []float64
	uppers       []float64
}

// NewFullyInvested builds a fully-invested constraint with the default
// tolerance (Epsilon).
func NewFullyInvested() Constraint {
	return Constraint{kind: FullyInvested, tolerance: linalg.Epsilon}
}

// NewFullyInvestedTol builds a fully-invested constraint with a custom
// tolerance.
func NewFullyInvestedTol(tolerance float64) (Constraint, error) {
	if tolerance < 0 {
		return Constraint{}, fmt.Errorf("tolerance must be non-negative, got %g", tolerance)
	}
	return Constraint{kind: FullyInvested, tolerance: tolerance}, nil
}

// NewLongOnly builds a long-only (no short selling) constraint with the
// default tolerance.
func NewLongOnly() Constraint {
	return Constraint{kind: LongOnly, tolerance: linalg.Epsilon}
}

// NewLongOnlyTol builds a long-only constraint with a custom tolerance.
func NewLongOnlyTol(tolerance float64) (Constraint, error) {
	if tolerance < 0 {
		return Constraint{}, fmt.Errorf("tolerance must be non-negative, got %g", tolerance)
	}
	return Constraint{kind: LongOnly, tolerance: tolerance}, nil
}

// NewBox builds a box constraint with uniform [lower, upper] bounds for all
// assets.
func NewBox(lower, upper float64) (Constraint, error) {
	if lower > upper {
		return Constraint{}, fmt.Errorf("lower bound %g exceeds upper bound %g", lower, upper)
	}
	return Constraint{kind: Box, tolerance: linalg.Epsilon, uniform: true, uniformLower: lower, uniformUpper: upper}, nil
}

// NewBoxPerAsset builds a box constraint with per-asset bounds.
func NewBoxPerAsset(lowers, uppers []float64) (Constraint, error) {
	if len(lowers) != len(uppers) {
		return Constraint{}, fmt.Errorf("bounds length mismatch: %d lower vs %d upper", len(lowers), len(uppers))
	}
	if len(lowers) == 0 {
		return Constraint{}, fmt.Errorf("bounds cannot be empty")
	}
	for i := range lowers {
		if lowers[i] > uppers[i] {
			return Constraint{}, fmt.Errorf("lower bound %g exceeds upper bound %g for asset %d", lowers[i], uppers[i], i)
		}
	}
	return Constraint{
		kind:      Box,
		tolerance: linalg.Epsilon,
		lowers:    append([]float64(nil), lowers...),
		uppers:    append([]float64(nil), uppers...),
	}, nil
}

// WithTolerance returns a copy of the constraint with a custom tolerance.
func (c Constraint) WithTolerance(tolerance float64) (Constraint, error) {
	if tolerance < 0 {
		return Constraint{}, fmt.Errorf("tolerance must be non-negative, got %g", tolerance)
	}
	c.tolerance = tolerance
	return c, nil
}

// Kind returns the constraint variant.
func (c Constraint) Kind() ConstraintKind { return c.kind }

// Tolerance returns the feasibility tolerance.
func (c Constraint) Tolerance() float64 { return c.tolerance }

// IsFeasible reports whether weights satisfy the constraint within tolerance.
func (c Constraint) IsFeasible(weights linalg.Vector) bool {
	if len(weights) == 0 {
		return false
	}

	switch c.kind {
	case FullyInvested:
		return math.Abs(weights.Sum()-1.0) <= c.tolerance
	case LongOnly:
		for _, w := range weights {
			if w < -c.tolerance {
				return false
			}
		}
		return true
	case Box:
		if c.uniform {
			for _, w := range weights {
				if w < c.uniformLower-c.tolerance || w > c.uniformUpper+c.tolerance {
					return false
				}
			}
			return true
		}
		if len(weights) != len(c.lowers) {
			return false
		}
		for i, w := range weights {
			if w < c.lowers[i]-c.tolerance || w > c.uppers[i]+c.tolerance {
				return false
			}
		}
		return true
	}
	return false
}

// Describe returns a human-readable description of the constraint.
func (c Constraint) Describe() string {
	switch c.kind {
	case FullyInvested:
		return fmt.Sprintf("weights must sum to 1.0 (tolerance %g)", c.tolerance)
	case LongOnly:
		return "all weights must be non-negative (no short selling)"
	case Box:
		if c.uniform {
			return fmt.Sprintf("all weights must be in [%g, %g]", c.uniformLower, c.uniformUpper)
		}
		return "weights must satisfy per-asset bounds"
	}
	return "unknown constraint"
}

// ConstraintSet is an ordered collection of constraints. A weight vector is
// feasible iff every member reports it feasible.
type ConstraintSet struct {
	constraints []Constraint
}

// Add appends a constraint to the set.
func (s *ConstraintSet) Add(c Constraint) {
	s.constraints = append(s.constraints, c)
}

// Len returns the number of constraints.
func (s *ConstraintSet) Len() int { return len(s.constraints) }

// IsEmpty reports whether the set has no constraints.
func (s *ConstraintSet) IsEmpty() bool { return len(s.constraints) == 0 }

// Clear removes all constraints.
func (s *ConstraintSet) Clear() { s.constraints = nil }

// Constraints returns the constraints in insertion order.
func (s *ConstraintSet) Constraints() []Constraint { return s.constraints }

// IsFeasible reports whether weights satisfy every constraint in the set.
func (s *ConstraintSet) IsFeasible(weights linalg.Vector) bool {
	for _, c := range s.constraints {
		if !c.IsFeasible(weights) {
			return false
		}
	}
	return true
}

// HasInfeasibleCombination detects structurally unsatisfiable constraint
// combinations for a portfolio of numAssets assets without running an
// optimizer:
//
//   - FullyInvested + Box where the bound sums cannot bracket 1.0
//   - LongOnly + Box where any upper bound is negative
//
// This is a necessary-but-not-sufficient heuristic, not a general
// feasibility prover; combinations it does not recognize pass as "possibly
// feasible".
func (s *ConstraintSet) HasInfeasibleCombination(numAssets int) (bool, error) {
	if numAssets <= 0 {
		return false, fmt.Errorf("number of assets must be positive, got %d", numAssets)
	}

	hasFullyInvested := false
	hasLongOnly := false
	var box *Constraint

	for i := range s.constraints {
		switch s.constraints[i].kind {
		case FullyInvested:
			hasFullyInvested = true
		case LongOnly:
			hasLongOnly = true
		case Box:
			box = &s.constraints[i]
		}
	}

	if box == nil {
		return false, nil
	}

	if hasFullyInvested {
		if box.uniform {
			if box.uniformLower*float64(numAssets) > 1.0+linalg.Epsilon {
				return true, nil
			}
			if box.uniformUpper*float64(numAssets) < 1.0-linalg.Epsilon {
				return true, nil
			}
		} else {
			if len(box.lowers) != numAssets {
				return true, nil
			}
			sumLower, sumUpper := 0.0, 0.0
			for i := 0; i < numAssets; i++ {
				sumLower += box.lowers[i]
				sumUpper += box.uppers[i]
			}
			if sumLower > 1.0+linalg.Epsilon {
				return true, nil
			}
			if sumUpper < 1.0-linalg.Epsilon {
				return true, nil
			}
		}
	}

	if hasLongOnly {
		if box.uniform {
			if box.uniformUpper < -linalg.Epsilon {
				return true, nil
			}
		} else {
			for _, upper := range box.uppers {
				if upper < -linalg.Epsilon {
					return true, nil
				}
			}
		}
	}

	return false, nil
}
