package optimizer

import (
	"fmt"
	"math"

	"github.com/aristath/orbat/pkg/linalg"
)

// CovarianceMatrix wraps a validated asset-return covariance matrix.
// Construction rejects empty, non-square, non-finite, non-positive-diagonal
// or asymmetric matrices. Symmetry is checked within a scale-relative
// tolerance of Epsilon × max(1, |value|).
type CovarianceMatrix struct {
	matrix linalg.Matrix
	labels []string
}

// NewCovarianceMatrix validates and wraps a covariance matrix given as rows.
func NewCovarianceMatrix(rows [][]float64) (CovarianceMatrix, error) {
	m, err := linalg.NewMatrixFromRows(rows)
	if err != nil {
		return CovarianceMatrix{}, err
	}
	return NewCovarianceFromMatrix(m)
}

// NewCovarianceFromMatrix validates and wraps an existing matrix.
func NewCovarianceFromMatrix(m linalg.Matrix) (CovarianceMatrix, error) {
	cov := CovarianceMatrix{matrix: m.Clone()}
	if err := cov.validate(); err != nil {
		return CovarianceMatrix{}, err
	}
	return cov, nil
}

// NewCovarianceMatrixLabeled validates and wraps a covariance matrix with
// per-asset labels. Labels may be empty; otherwise their count must match
// the matrix dimension.
func NewCovarianceMatrixLabeled(rows [][]float64, labels []string) (CovarianceMatrix, error) {
	cov, err := NewCovarianceMatrix(rows)
	if err != nil {
		return CovarianceMatrix{}, err
	}
	if len(labels) != 0 && len(labels) != cov.Len() {
		return CovarianceMatrix{}, fmt.Errorf("labels count %d does not match %d assets", len(labels), cov.Len())
	}
	cov.labels = append([]string(nil), labels...)
	return cov, nil
}

func (cov CovarianceMatrix) validate() error {
	if cov.matrix.IsEmpty() {
		return fmt.Errorf("covariance matrix cannot be empty")
	}
	if !cov.matrix.IsSquare() {
		return fmt.Errorf("covariance matrix must be square, got %dx%d", cov.matrix.Rows(), cov.matrix.Cols())
	}

	n := cov.matrix.Rows()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := cov.matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("covariance at (%d,%d) is not finite", i, j)
			}
		}
	}

	for i := 0; i < n; i++ {
		if cov.matrix.At(i, i) <= 0.0 {
			return fmt.Errorf("variance of asset %d must be positive, got %g", i, cov.matrix.At(i, i))
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			diff := math.Abs(cov.matrix.At(i, j) - cov.matrix.At(j, i))
			scale := math.Max(math.Abs(cov.matrix.At(i, j)), math.Abs(cov.matrix.At(j, i)))
			if diff > linalg.Epsilon*math.Max(1.0, scale) {
				return fmt.Errorf("covariance matrix is asymmetric at (%d,%d)", i, j)
			}
		}
	}

	return nil
}

// Len returns the number of assets (matrix dimension).
func (cov CovarianceMatrix) Len() int { return cov.matrix.Rows() }

// IsEmpty reports whether the matrix has no elements.
func (cov CovarianceMatrix) IsEmpty() bool { return cov.matrix.IsEmpty() }

// Matrix returns the underlying matrix. The caller must not mutate it.
func (cov CovarianceMatrix) Matrix() linalg.Matrix { return cov.matrix }

// At returns the covariance between assets i and j.
func (cov CovarianceMatrix) At(i, j int) float64 { return cov.matrix.At(i, j) }

// Labels returns the asset labels, or nil when unlabeled.
func (cov CovarianceMatrix) Labels() []string { return cov.labels }

// Label returns the label of asset i, falling back to "Asset <i>".
func (cov CovarianceMatrix) Label(i int) string {
	if i >= 0 && i < len(cov.labels) && cov.labels[i] != "" {
		return cov.labels[i]
	}
	return fmt.Sprintf("Asset %d", i)
}
