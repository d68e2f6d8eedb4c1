// Package linalg provides the small dense linear algebra layer used by the
// portfolio optimizers: vectors, row-major matrices, and a Cholesky engine
// for factoring and inverting symmetric positive-definite matrices.
package linalg

import "math"

// Vector is a dense vector of float64 values. Indexing follows normal slice
// semantics; binary operations panic with ErrDimensionMismatch when lengths
// disagree.
type Vector []float64

// NewVector returns a zero-filled vector of length n.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// NewVectorFilled returns a vector of length n with every element set to value.
func NewVectorFilled(n int, value float64) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = value
	}
	return v
}

// Clone returns a copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Dot computes the dot product with other.
func (v Vector) Dot(other Vector) float64 {
	if len(v) != len(other) {
		panic(ErrDimensionMismatch)
	}
	sum := 0.0
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum
}

// Norm computes the L2 (Euclidean) norm.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Sum computes the sum of all elements.
func (v Vector) Sum() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum
}

// Add returns the elementwise sum v + other.
func (v Vector) Add(other Vector) Vector {
	if len(v) != len(other) {
		panic(ErrDimensionMismatch)
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + other[i]
	}
	return out
}

// Sub returns the elementwise difference v - other.
func (v Vector) Sub(other Vector) Vector {
	if len(v) != len(other) {
		panic(ErrDimensionMismatch)
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] - other[i]
	}
	return out
}

// Scale returns v multiplied by a scalar.
func (v Vector) Scale(scalar float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * scalar
	}
	return out
}

// DivScalar returns v divided by a scalar. Panics with ErrDivideByZero when
// the scalar magnitude is below Epsilon.
func (v Vector) DivScalar(scalar float64) Vector {
	if math.Abs(scalar) < Epsilon {
		panic(ErrDivideByZero)
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] / scalar
	}
	return out
}
