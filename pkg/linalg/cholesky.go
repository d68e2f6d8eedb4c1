package linalg

import "math"

// Cholesky computes the lower-triangular factor L of a symmetric
// positive-definite matrix A such that A = L·Lᵀ.
//
// Returns ErrNotSquare when the matrix is not square and
// ErrNotPositiveDefinite when a diagonal radicand is not strictly positive.
func (m Matrix) Cholesky() (Matrix, error) {
	if !m.IsSquare() {
		return Matrix{}, ErrNotSquare
	}

	n := m.rows
	l := NewMatrix(n, n)

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := 0.0
			if i == j {
				for k := 0; k < j; k++ {
					sum += l.data[j*n+k] * l.data[j*n+k]
				}
				value := m.data[j*n+j] - sum
				if value <= 0.0 {
					return Matrix{}, ErrNotPositiveDefinite
				}
				l.data[j*n+j] = math.Sqrt(value)
			} else {
				for k := 0; k < j; k++ {
					sum += l.data[i*n+k] * l.data[j*n+k]
				}
				l.data[i*n+j] = (m.data[i*n+j] - sum) / l.data[j*n+j]
			}
		}
	}

	return l, nil
}

// SolveLower solves L·x = b by forward substitution, treating the receiver
// as lower triangular. Returns ErrSingular when a diagonal element is below
// Epsilon in magnitude.
func (m Matrix) SolveLower(b Vector) (Vector, error) {
	if !m.IsSquare() || m.rows != len(b) {
		return nil, ErrDimensionMismatch
	}

	n := m.rows
	x := make(Vector, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < i; j++ {
			sum += m.data[i*n+j] * x[j]
		}
		pivot := m.data[i*n+i]
		if math.Abs(pivot) < Epsilon {
			return nil, ErrSingular
		}
		x[i] = (b[i] - sum) / pivot
	}
	return x, nil
}

// SolveUpper solves U·x = b by backward substitution, treating the receiver
// as upper triangular. Returns ErrSingular when a diagonal element is below
// Epsilon in magnitude.
func (m Matrix) SolveUpper(b Vector) (Vector, error) {
	if !m.IsSquare() || m.rows != len(b) {
		return nil, ErrDimensionMismatch
	}

	n := m.rows
	x := make(Vector, n)
	for i := n - 1; i >= 0; i-- {
		sum := 0.0
		for j := i + 1; j < n; j++ {
			sum += m.data[i*n+j] * x[j]
		}
		pivot := m.data[i*n+i]
		if math.Abs(pivot) < Epsilon {
			return nil, ErrSingular
		}
		x[i] = (b[i] - sum) / pivot
	}
	return x, nil
}

// Inverse computes the inverse of a symmetric positive-definite matrix via
// Cholesky factorization: for each unit basis vector eᵢ it solves L·y = eᵢ
// then Lᵀ·x = y, and x becomes column i of the inverse.
//
// This is the only inversion path in the library; general (non-SPD)
// inversion is out of scope.
func (m Matrix) Inverse() (Matrix, error) {
	if !m.IsSquare() {
		return Matrix{}, ErrNotSquare
	}

	l, err := m.Cholesky()
	if err != nil {
		return Matrix{}, err
	}
	lt := l.Transpose()

	n := m.rows
	inv := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		ei := make(Vector, n)
		ei[i] = 1.0

		y, err := l.SolveLower(ei)
		if err != nil {
			return Matrix{}, err
		}
		x, err := lt.SolveUpper(y)
		if err != nil {
			return Matrix{}, err
		}
		inv.SetCol(i, x)
	}
	return inv, nil
}

// IsPositiveDefinite reports whether the matrix is symmetric
// positive-definite. Unlike Cholesky it never returns an error: any failure
// mode (non-square, asymmetric, non-positive diagonal, factorization
// failure) yields false.
func (m Matrix) IsPositiveDefinite() bool {
	if m.IsEmpty() || !m.IsSquare() {
		return false
	}

	n := m.rows
	for i := 0; i < n; i++ {
		if m.data[i*n+i] <= 0.0 {
			return false
		}
		for j := i + 1; j < n; j++ {
			diff := math.Abs(m.data[i*n+j] - m.data[j*n+i])
			scale := math.Max(math.Abs(m.data[i*n+j]), math.Abs(m.data[j*n+i]))
			if diff > Epsilon*math.Max(1.0, scale) {
				return false
			}
		}
	}

	_, err := m.Cholesky()
	return err == nil
}
