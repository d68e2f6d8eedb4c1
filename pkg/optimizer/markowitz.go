package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/aristath/orbat/pkg/linalg"
)

const (
	// DefaultMaxIterations bounds the constrained-projection fallback loop.
	DefaultMaxIterations = 1000
	// DefaultTolerance is the convergence tolerance for target-return range
	// checks.
	DefaultTolerance = 1e-8
)

// Markowitz is a classic mean-variance portfolio optimizer. It solves the
// closed-form fully-invested problems
//
//	minimize   (1/2)wᵀΣw − λμᵀw
//	subject to wᵀ1 = 1
//
// and falls back to an iterative projection when an optional constraint set
// rejects the analytical solution. Each call is a fresh solve; the optimizer
// keeps no state between calls beyond its immutable inputs and tuning
// parameters.
type Markowitz struct {
	returns       ExpectedReturns
	covariance    CovarianceMatrix
	constraints   ConstraintSet
	maxIterations int
	tolerance     float64
}

// NewMarkowitz builds an unconstrained mean-variance optimizer.
func NewMarkowitz(returns ExpectedReturns, covariance CovarianceMatrix) (*Markowitz, error) {
	return NewMarkowitzConstrained(returns, covariance, ConstraintSet{})
}

// NewMarkowitzConstrained builds a mean-variance optimizer with a constraint
// set. Construction fails when dimensions disagree or the constraint set is
// structurally unsatisfiable.
func NewMarkowitzConstrained(returns ExpectedReturns, covariance CovarianceMatrix, constraints ConstraintSet) (*Markowitz, error) {
	if returns.IsEmpty() {
		return nil, fmt.Errorf("expected returns cannot be empty")
	}
	if covariance.IsEmpty() {
		return nil, fmt.Errorf("covariance matrix cannot be empty")
	}
	if returns.Len() != covariance.Len() {
		return nil, fmt.Errorf("dimension mismatch: %d returns vs %dx%d covariance",
			returns.Len(), covariance.Len(), covariance.Len())
	}
	if !constraints.IsEmpty() {
		infeasible, err := constraints.HasInfeasibleCombination(returns.Len())
		if err != nil {
			return nil, err
		}
		if infeasible {
			return nil, fmt.Errorf("constraint set contains an infeasible combination")
		}
	}

	return &Markowitz{
		returns:       returns,
		covariance:    covariance,
		constraints:   constraints,
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
	}, nil
}

// SetMaxIterations sets the iteration cap for the projection fallback.
func (m *Markowitz) SetMaxIterations(maxIter int) error {
	if maxIter <= 0 {
		return fmt.Errorf("maximum iterations must be positive, got %d", maxIter)
	}
	m.maxIterations = maxIter
	return nil
}

// SetTolerance sets the convergence tolerance.
func (m *Markowitz) SetTolerance(tol float64) error {
	if tol <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", tol)
	}
	m.tolerance = tol
	return nil
}

// AddConstraint appends a constraint to the optimizer's set.
func (m *Markowitz) AddConstraint(c Constraint) {
	m.constraints.Add(c)
}

// MinimumVariance computes the fully-invested minimum-variance portfolio
//
//	w = Σ⁻¹1 / (1ᵀΣ⁻¹1)
//
// A singular covariance matrix yields Converged=false rather than an error.
func (m *Markowitz) MinimumVariance() Result {
	n := m.returns.Len()

	covInv, err := m.covariance.Matrix().Inverse()
	if err != nil {
		return Result{Converged: false, Message: fmt.Sprintf("Optimization failed: %v", err)}
	}

	ones := linalg.NewVectorFilled(n, 1.0)
	covInvOnes := covInv.MulVec(ones)

	denominator := ones.Dot(covInvOnes)
	if math.Abs(denominator) < linalg.Epsilon {
		return Result{Converged: false, Message: "Singular covariance matrix"}
	}

	weights := covInvOnes.DivScalar(denominator)

	if !m.constraints.IsEmpty() && !m.constraints.IsFeasible(weights) {
		return m.solveConstrainedQP(weights)
	}

	return m.finish(weights, "Minimum variance portfolio computed")
}

// Optimize computes the mean-variance optimal portfolio for risk-aversion
// parameter lambda ≥ 0:
//
//	w = λΣ⁻¹μ + γΣ⁻¹1  with  γ = (1 − λ·1ᵀΣ⁻¹μ) / (1ᵀΣ⁻¹1)
//
// lambda = 0 reduces to the minimum-variance portfolio. A negative lambda is
// a structural error.
func (m *Markowitz) Optimize(lambda float64) (Result, error) {
	if lambda < 0 {
		return Result{}, fmt.Errorf("risk aversion parameter must be non-negative, got %g", lambda)
	}
	if lambda < linalg.Epsilon {
		return m.MinimumVariance(), nil
	}

	n := m.returns.Len()

	covInv, err := m.covariance.Matrix().Inverse()
	if err != nil {
		return Result{Converged: false, Message: fmt.Sprintf("Optimization failed: %v", err)}, nil
	}

	ones := linalg.NewVectorFilled(n, 1.0)
	mu := m.returns.Values()

	covInvMu := covInv.MulVec(mu)
	covInvOnes := covInv.MulVec(ones)

	onesCovInvMu := ones.Dot(covInvMu)
	onesCovInvOnes := ones.Dot(covInvOnes)
	if math.Abs(onesCovInvOnes) < linalg.Epsilon {
		return Result{Converged: false, Message: "Singular covariance matrix"}, nil
	}

	gamma := (1.0 - lambda*onesCovInvMu) / onesCovInvOnes
	weights := covInvMu.Scale(lambda).Add(covInvOnes.Scale(gamma))

	if !m.constraints.IsEmpty() && !m.constraints.IsFeasible(weights) {
		return m.solveConstrainedQP(weights), nil
	}

	return m.finish(weights, "Mean-variance portfolio computed"), nil
}

// TargetReturn computes the minimum-variance portfolio achieving the given
// expected return, via the two-multiplier system
//
//	w = aΣ⁻¹μ + bΣ⁻¹1  with  μᵀw = r and 1ᵀw = 1.
//
// Targets outside the attainable per-asset return range, and near-singular
// systems (effectively constant returns), yield Converged=false.
func (m *Markowitz) TargetReturn(target float64) Result {
	n := m.returns.Len()
	mu := m.returns.Values()

	minReturn := floats.Min(mu)
	maxReturn := floats.Max(mu)
	if target < minReturn-m.tolerance || target > maxReturn+m.tolerance {
		return Result{Converged: false, Message: "Target return is not achievable"}
	}

	covInv, err := m.covariance.Matrix().Inverse()
	if err != nil {
		return Result{Converged: false, Message: fmt.Sprintf("Optimization failed: %v", err)}
	}

	ones := linalg.NewVectorFilled(n, 1.0)
	covInvMu := covInv.MulVec(mu)
	covInvOnes := covInv.MulVec(ones)

	a := mu.Dot(covInvMu)
	b := mu.Dot(covInvOnes)
	c := ones.Dot(covInvOnes)

	det := a*c - b*b
	if math.Abs(det) < linalg.Epsilon {
		return Result{Converged: false, Message: "System is singular (returns may be constant)"}
	}

	multA := (c*target - b) / det
	multB := (a - b*target) / det
	weights := covInvMu.Scale(multA).Add(covInvOnes.Scale(multB))

	if !m.constraints.IsEmpty() && !m.constraints.IsFeasible(weights) {
		return m.solveConstrainedQP(weights)
	}

	return m.finish(weights, "Target return portfolio computed")
}

// EfficientFrontier sweeps numPoints evenly spaced target returns from the
// minimum-variance return up to the highest single-asset return, keeping
// only the converged portfolios. numPoints must be at least 2.
func (m *Markowitz) EfficientFrontier(numPoints int) ([]Result, error) {
	if numPoints < 2 {
		return nil, fmt.Errorf("number of frontier points must be at least 2, got %d", numPoints)
	}

	minVar := m.MinimumVariance()
	if !minVar.Success() {
		return nil, nil
	}

	minReturn := minVar.ExpectedReturn
	maxReturn := floats.Max(m.returns.Values())

	frontier := make([]Result, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		t := float64(i) / float64(numPoints-1)
		target := minReturn + t*(maxReturn-minReturn)

		result := m.TargetReturn(target)
		if result.Success() {
			frontier = append(frontier, result)
		}
	}
	return frontier, nil
}

// Variance computes wᵀΣw for the given weights.
func (m *Markowitz) Variance(weights linalg.Vector) float64 {
	return weights.Dot(m.covariance.Matrix().MulVec(weights))
}

// finish attaches portfolio statistics to a converged solution.
func (m *Markowitz) finish(weights linalg.Vector, message string) Result {
	expectedReturn := m.returns.Values().Dot(weights)
	variance := m.Variance(weights)
	risk := math.Sqrt(math.Max(0.0, variance))

	sharpe := 0.0
	if risk > linalg.Epsilon {
		sharpe = expectedReturn / risk
	}

	return Result{
		Weights:        weights,
		ExpectedReturn: expectedReturn,
		Risk:           risk,
		SharpeRatio:    sharpe,
		Converged:      true,
		Message:        message,
	}
}

// solveConstrainedQP is the fallback for analytical solutions that violate
// the constraint set: clip negative weights to zero, renormalize to sum 1,
// and repeat until the set reports feasible or the iteration cap is hit.
//
// This is a heuristic projection, not a true constrained optimum, and it
// reports Converged=true even when the cap is exhausted before reaching
// feasibility. Callers needing strict satisfaction must re-check
// ConstraintSet.IsFeasible on the returned weights.
func (m *Markowitz) solveConstrainedQP(initial linalg.Vector) Result {
	n := m.returns.Len()
	weights := initial.Clone()

	feasible := false
	for iter := 0; iter < m.maxIterations; iter++ {
		for i := range weights {
			if weights[i] < 0.0 {
				weights[i] = 0.0
			}
		}

		sum := weights.Sum()
		if math.Abs(sum) > linalg.Epsilon {
			weights = weights.DivScalar(sum)
		} else {
			weights = linalg.NewVectorFilled(n, 1.0/float64(n))
		}

		if m.constraints.IsFeasible(weights) {
			feasible = true
			break
		}
	}

	message := "Constrained portfolio computed (projection heuristic)"
	if !feasible {
		message = "Constrained portfolio computed (projection heuristic; feasibility not reached within iteration cap)"
	}
	return m.finish(weights, message)
}
