package linalg

import (
	"fmt"
	"math"
)

// Matrix is a dense matrix of float64 values stored in row-major order.
// Shapes are fixed at construction except through explicit Resize.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns a zero-filled rows×cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// NewMatrixFilled returns a rows×cols matrix with every element set to value.
func NewMatrixFilled(rows, cols int, value float64) Matrix {
	m := NewMatrix(rows, cols)
	for i := range m.data {
		m.data[i] = value
	}
	return m
}

// NewMatrixFromRows builds a matrix from a slice of rows. All rows must have
// the same length.
func NewMatrixFromRows(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, nil
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return Matrix{}, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), cols, ErrDimensionMismatch)
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1.0
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m Matrix) Cols() int { return m.cols }

// Size returns the total number of elements.
func (m Matrix) Size() int { return m.rows * m.cols }

// IsEmpty reports whether the matrix has no elements.
func (m Matrix) IsEmpty() bool { return m.rows == 0 || m.cols == 0 }

// IsSquare reports whether the matrix is square.
func (m Matrix) IsSquare() bool { return m.rows == m.cols }

// At returns the element at (row, col). Panics when indices are out of
// bounds; the row-major offset would otherwise silently alias another cell.
func (m Matrix) At(row, col int) float64 {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("linalg: index (%d,%d) out of bounds for %dx%d matrix", row, col, m.rows, m.cols))
	}
	return m.data[row*m.cols+col]
}

// Set assigns the element at (row, col). Panics when indices are out of bounds.
func (m Matrix) Set(row, col int, value float64) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("linalg: index (%d,%d) out of bounds for %dx%d matrix", row, col, m.rows, m.cols))
	}
	m.data[row*m.cols+col] = value
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	out := Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Resize reshapes the matrix to rows×cols, zero-filling the new storage.
// Existing values are not preserved.
func (m *Matrix) Resize(rows, cols int) {
	m.rows = rows
	m.cols = cols
	m.data = make([]float64, rows*cols)
}

// Row returns a copy of the given row.
func (m Matrix) Row(row int) Vector {
	if row < 0 || row >= m.rows {
		panic(fmt.Sprintf("linalg: row %d out of bounds for %dx%d matrix", row, m.rows, m.cols))
	}
	out := make(Vector, m.cols)
	copy(out, m.data[row*m.cols:(row+1)*m.cols])
	return out
}

// Col returns a copy of the given column.
func (m Matrix) Col(col int) Vector {
	if col < 0 || col >= m.cols {
		panic(fmt.Sprintf("linalg: column %d out of bounds for %dx%d matrix", col, m.rows, m.cols))
	}
	out := make(Vector, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = m.data[i*m.cols+col]
	}
	return out
}

// SetRow assigns an entire row from values.
func (m Matrix) SetRow(row int, values Vector) {
	if len(values) != m.cols {
		panic(ErrDimensionMismatch)
	}
	copy(m.data[row*m.cols:(row+1)*m.cols], values)
}

// SetCol assigns an entire column from values.
func (m Matrix) SetCol(col int, values Vector) {
	if len(values) != m.rows {
		panic(ErrDimensionMismatch)
	}
	for i := 0; i < m.rows; i++ {
		m.data[i*m.cols+col] = values[i]
	}
}

// Transpose returns the transpose of the matrix.
func (m Matrix) Transpose() Matrix {
	out := NewMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*out.cols+i] = m.data[i*m.cols+j]
		}
	}
	return out
}

// Mul computes the matrix product m × other. Panics with
// ErrDimensionMismatch when inner dimensions disagree.
func (m Matrix) Mul(other Matrix) Matrix {
	if m.cols != other.rows {
		panic(ErrDimensionMismatch)
	}
	out := NewMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < other.cols; j++ {
				out.data[i*out.cols+j] += a * other.data[k*other.cols+j]
			}
		}
	}
	return out
}

// MulVec computes the matrix-vector product m × v.
func (m Matrix) MulVec(v Vector) Vector {
	if m.cols != len(v) {
		panic(ErrDimensionMismatch)
	}
	out := make(Vector, m.rows)
	for i := 0; i < m.rows; i++ {
		sum := 0.0
		for j := 0; j < m.cols; j++ {
			sum += m.data[i*m.cols+j] * v[j]
		}
		out[i] = sum
	}
	return out
}

// Add returns the elementwise sum m + other.
func (m Matrix) Add(other Matrix) Matrix {
	if m.rows != other.rows || m.cols != other.cols {
		panic(ErrDimensionMismatch)
	}
	out := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] + other.data[i]
	}
	return out
}

// Sub returns the elementwise difference m - other.
func (m Matrix) Sub(other Matrix) Matrix {
	if m.rows != other.rows || m.cols != other.cols {
		panic(ErrDimensionMismatch)
	}
	out := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] - other.data[i]
	}
	return out
}

// Scale returns m multiplied by a scalar.
func (m Matrix) Scale(scalar float64) Matrix {
	out := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] * scalar
	}
	return out
}

// DivScalar returns m divided by a scalar. Panics with ErrDivideByZero when
// the scalar magnitude is below Epsilon.
func (m Matrix) DivScalar(scalar float64) Matrix {
	if math.Abs(scalar) < Epsilon {
		panic(ErrDivideByZero)
	}
	out := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] / scalar
	}
	return out
}
