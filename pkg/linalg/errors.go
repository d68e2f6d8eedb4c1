package linalg

import "errors"

var (
	// ErrDimensionMismatch is raised (as a panic) when a binary operation
	// receives operands of incompatible shape. Shape agreement is a caller
	// contract, matching the convention gonum's mat package uses.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrNotSquare is returned when a square matrix is required.
	ErrNotSquare = errors.New("linalg: matrix is not square")

	// ErrNotPositiveDefinite is returned by Cholesky when the factorization
	// encounters a non-positive pivot radicand.
	ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive-definite")

	// ErrSingular is returned by the triangular solvers when a diagonal
	// element is below Epsilon in magnitude.
	ErrSingular = errors.New("linalg: matrix is singular")

	// ErrDivideByZero is raised (as a panic) on scalar division by a value
	// below Epsilon in magnitude.
	ErrDivideByZero = errors.New("linalg: division by zero")
)
