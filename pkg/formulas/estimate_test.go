package formulas

import (
	"math"
	"testing"
)

func TestReturnsFromPrices(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{
			name:   "up then down",
			prices: []float64{100, 110, 99},
			want:   []float64{0.1, -0.1},
		},
		{
			name:   "flat",
			prices: []float64{50, 50, 50},
			want:   []float64{0, 0},
		},
		{
			name:   "too short",
			prices: []float64{100},
			want:   []float64{},
		},
		{
			name:   "zero price skipped",
			prices: []float64{0, 100},
			want:   []float64{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReturnsFromPrices(tt.prices)
			if len(got) != len(tt.want) {
				t.Fatalf("Length = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("Returns[%d] = %g, want %g", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMeanReturns(t *testing.T) {
	history := [][]float64{
		{0.01, 0.02},
		{0.03, -0.02},
		{0.02, 0.03},
	}

	means, err := MeanReturns(history)
	if err != nil {
		t.Fatalf("MeanReturns: %v", err)
	}
	if math.Abs(means[0]-0.02) > 1e-12 {
		t.Errorf("means[0] = %g, want 0.02", means[0])
	}
	if math.Abs(means[1]-0.01) > 1e-12 {
		t.Errorf("means[1] = %g, want 0.01", means[1])
	}
}

func TestMeanReturns_Validation(t *testing.T) {
	if _, err := MeanReturns(nil); err == nil {
		t.Error("Expected error for empty history")
	}
	if _, err := MeanReturns([][]float64{{}}); err == nil {
		t.Error("Expected error for empty rows")
	}
	if _, err := MeanReturns([][]float64{{0.1, 0.2}, {0.1}}); err == nil {
		t.Error("Expected error for ragged history")
	}
}

func TestEWMAReturns(t *testing.T) {
	// A single rising asset; the EWMA leans toward recent values, so the
	// estimate exceeds the plain mean.
	history := [][]float64{{0.01}, {0.02}, {0.03}, {0.04}}

	estimates, err := EWMAReturns(history, 2)
	if err != nil {
		t.Fatalf("EWMAReturns: %v", err)
	}
	if len(estimates) != 1 {
		t.Fatalf("Expected 1 estimate, got %d", len(estimates))
	}

	means, err := MeanReturns(history)
	if err != nil {
		t.Fatalf("MeanReturns: %v", err)
	}
	if estimates[0] <= means[0] {
		t.Errorf("EWMA %g should exceed mean %g for a rising series", estimates[0], means[0])
	}
}

func TestEWMAReturns_Validation(t *testing.T) {
	history := [][]float64{{0.01}, {0.02}, {0.03}}

	if _, err := EWMAReturns(history, 1); err == nil {
		t.Error("Expected error for span below 2")
	}
	if _, err := EWMAReturns(history, 5); err == nil {
		t.Error("Expected error for span exceeding history")
	}
}

func TestSampleCovariance(t *testing.T) {
	history := [][]float64{
		{0.01, 0.02},
		{0.03, -0.02},
		{0.02, 0.03},
		{-0.01, 0.01},
	}

	cov, err := SampleCovariance(history)
	if err != nil {
		t.Fatalf("SampleCovariance: %v", err)
	}
	if len(cov) != 2 || len(cov[0]) != 2 {
		t.Fatalf("Expected 2x2 matrix, got %dx%d", len(cov), len(cov[0]))
	}

	// Symmetric with positive diagonal.
	if cov[0][1] != cov[1][0] {
		t.Errorf("Matrix asymmetric: %g vs %g", cov[0][1], cov[1][0])
	}
	if cov[0][0] <= 0 || cov[1][1] <= 0 {
		t.Errorf("Diagonal not positive: %g, %g", cov[0][0], cov[1][1])
	}

	// Diagonal entries match the per-asset sample variance.
	first := []float64{0.01, 0.03, 0.02, -0.01}
	if math.Abs(cov[0][0]-Variance(first)) > 1e-15 {
		t.Errorf("cov[0][0] = %g, want %g", cov[0][0], Variance(first))
	}
}

func TestSampleCovariance_Validation(t *testing.T) {
	if _, err := SampleCovariance([][]float64{{0.01, 0.02}}); err == nil {
		t.Error("Expected error for a single period")
	}
}
