package linalg

import (
	"errors"
	"math"
	"testing"
)

func TestNewMatrixFromRows(t *testing.T) {
	m, err := NewMatrixFromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	if err != nil {
		t.Fatalf("NewMatrixFromRows: %v", err)
	}
	if m.Rows() != 2 || m.Cols() != 3 {
		t.Errorf("Expected 2x3, got %dx%d", m.Rows(), m.Cols())
	}
	if m.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %g, want 6", m.At(1, 2))
	}
}

func TestNewMatrixFromRows_Ragged(t *testing.T) {
	_, err := NewMatrixFromRows([][]float64{
		{1, 2},
		{3},
	})
	if err == nil {
		t.Error("Expected error for ragged rows")
	}
}

func TestMatrixMul(t *testing.T) {
	a, _ := NewMatrixFromRows([][]float64{
		{1, 2},
		{3, 4},
	})
	b, _ := NewMatrixFromRows([][]float64{
		{5, 6},
		{7, 8},
	})

	c := a.Mul(b)
	want := [][]float64{{19, 22}, {43, 50}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if c.At(i, j) != want[i][j] {
				t.Errorf("C(%d,%d) = %g, want %g", i, j, c.At(i, j), want[i][j])
			}
		}
	}
}

func TestMatrixMul_ShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on shape mismatch")
		}
	}()

	a, _ := NewMatrixFromRows([][]float64{{1, 2}})
	b, _ := NewMatrixFromRows([][]float64{{1, 2}})
	a.Mul(b)
}

func TestMatrixMulVec(t *testing.T) {
	a, _ := NewMatrixFromRows([][]float64{
		{1, 2},
		{3, 4},
	})
	v := a.MulVec(Vector{1, 1})
	if v[0] != 3 || v[1] != 7 {
		t.Errorf("MulVec = %v, want [3 7]", v)
	}
}

func TestMatrixTranspose(t *testing.T) {
	a, _ := NewMatrixFromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	at := a.Transpose()
	if at.Rows() != 3 || at.Cols() != 2 {
		t.Fatalf("Expected 3x2, got %dx%d", at.Rows(), at.Cols())
	}
	if at.At(2, 1) != 6 || at.At(0, 1) != 4 {
		t.Errorf("Transpose values wrong: %v, %v", at.At(2, 1), at.At(0, 1))
	}
}

func TestIdentity(t *testing.T) {
	eye := Identity(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if eye.At(i, j) != want {
				t.Errorf("I(%d,%d) = %g, want %g", i, j, eye.At(i, j), want)
			}
		}
	}
}

func TestMatrixRowCol(t *testing.T) {
	a, _ := NewMatrixFromRows([][]float64{
		{1, 2},
		{3, 4},
	})
	row := a.Row(1)
	if row[0] != 3 || row[1] != 4 {
		t.Errorf("Row(1) = %v, want [3 4]", row)
	}
	col := a.Col(0)
	if col[0] != 1 || col[1] != 3 {
		t.Errorf("Col(0) = %v, want [1 3]", col)
	}
}

func TestVectorDot(t *testing.T) {
	v := Vector{1, 2, 3}
	w := Vector{4, 5, 6}
	if got := v.Dot(w); got != 32 {
		t.Errorf("Dot = %g, want 32", got)
	}
}

func TestVectorDot_DimensionMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic on dimension mismatch")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("Expected ErrDimensionMismatch, got %v", r)
		}
	}()

	Vector{1, 2}.Dot(Vector{1, 2, 3})
}

func TestVectorArithmetic(t *testing.T) {
	v := Vector{1, 2}
	w := Vector{3, 4}

	sum := v.Add(w)
	if sum[0] != 4 || sum[1] != 6 {
		t.Errorf("Add = %v, want [4 6]", sum)
	}

	diff := w.Sub(v)
	if diff[0] != 2 || diff[1] != 2 {
		t.Errorf("Sub = %v, want [2 2]", diff)
	}

	scaled := v.Scale(2)
	if scaled[0] != 2 || scaled[1] != 4 {
		t.Errorf("Scale = %v, want [2 4]", scaled)
	}

	if got := v.Sum(); got != 3 {
		t.Errorf("Sum = %g, want 3", got)
	}

	if got := (Vector{3, 4}).Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Norm = %g, want 5", got)
	}
}

func TestVectorDivScalar_ZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on division by zero")
		}
	}()

	Vector{1, 2}.DivScalar(0)
}

func TestVectorClone(t *testing.T) {
	v := Vector{1, 2}
	c := v.Clone()
	c[0] = 9
	if v[0] != 1 {
		t.Error("Clone should not share backing storage")
	}
}
