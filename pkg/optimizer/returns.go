// Package optimizer implements mean-variance (Markowitz) and Black-Litterman
// portfolio optimization on top of the linalg layer. Inputs are validated at
// construction; numerical non-convergence is reported through the result's
// Converged flag rather than through errors.
package optimizer

import (
	"fmt"
	"math"

	"github.com/aristath/orbat/pkg/linalg"
)

// ExpectedReturns wraps a vector of per-asset expected returns. Construction
// rejects empty or non-finite data, so downstream formulas can rely on the
// invariants without re-checking.
type ExpectedReturns struct {
	returns linalg.Vector
	labels  []string
}

// NewExpectedReturns validates and wraps a returns vector.
func NewExpectedReturns(returns []float64) (ExpectedReturns, error) {
	er := ExpectedReturns{returns: linalg.Vector(returns).Clone()}
	if err := er.validate(); err != nil {
		return ExpectedReturns{}, err
	}
	return er, nil
}

// NewExpectedReturnsLabeled validates and wraps a returns vector with
// per-asset labels. Labels may be empty; otherwise their count must match
// the number of assets.
func NewExpectedReturnsLabeled(returns []float64, labels []string) (ExpectedReturns, error) {
	if len(labels) != 0 && len(labels) != len(returns) {
		return ExpectedReturns{}, fmt.Errorf("labels count %d does not match %d assets", len(labels), len(returns))
	}
	er, err := NewExpectedReturns(returns)
	if err != nil {
		return ExpectedReturns{}, err
	}
	er.labels = append([]string(nil), labels...)
	return er, nil
}

func (er ExpectedReturns) validate() error {
	if len(er.returns) == 0 {
		return fmt.Errorf("expected returns cannot be empty")
	}
	for i, r := range er.returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("expected return at index %d is not finite", i)
		}
	}
	return nil
}

// Len returns the number of assets.
func (er ExpectedReturns) Len() int { return len(er.returns) }

// IsEmpty reports whether no returns are present.
func (er ExpectedReturns) IsEmpty() bool { return len(er.returns) == 0 }

// Values returns the underlying returns vector. The caller must not mutate it.
func (er ExpectedReturns) Values() linalg.Vector { return er.returns }

// At returns the expected return of asset i.
func (er ExpectedReturns) At(i int) float64 { return er.returns[i] }

// Labels returns the asset labels, or nil when unlabeled.
func (er ExpectedReturns) Labels() []string { return er.labels }

// Label returns the label of asset i, falling back to "Asset <i>" when the
// asset is unlabeled.
func (er ExpectedReturns) Label(i int) string {
	if i >= 0 && i < len(er.labels) && er.labels[i] != "" {
		return er.labels[i]
	}
	return fmt.Sprintf("Asset %d", i)
}
