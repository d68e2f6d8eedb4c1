package optimizer

import (
	"math"
	"testing"
)

func twoAssetInputs(t *testing.T) (ExpectedReturns, CovarianceMatrix) {
	t.Helper()

	returns, err := NewExpectedReturns([]float64{0.10, 0.15})
	if err != nil {
		t.Fatalf("NewExpectedReturns: %v", err)
	}
	covariance, err := NewCovarianceMatrix([][]float64{
		{0.04, 0.01},
		{0.01, 0.0225},
	})
	if err != nil {
		t.Fatalf("NewCovarianceMatrix: %v", err)
	}
	return returns, covariance
}

func threeAssetInputs(t *testing.T) (ExpectedReturns, CovarianceMatrix) {
	t.Helper()

	returns, err := NewExpectedReturns([]float64{0.08, 0.12, 0.16})
	if err != nil {
		t.Fatalf("NewExpectedReturns: %v", err)
	}
	covariance, err := NewCovarianceMatrix([][]float64{
		{0.04, 0.01, 0.005},
		{0.01, 0.0225, 0.008},
		{0.005, 0.008, 0.01},
	})
	if err != nil {
		t.Fatalf("NewCovarianceMatrix: %v", err)
	}
	return returns, covariance
}

func TestNewMarkowitz_Validation(t *testing.T) {
	returns, covariance := twoAssetInputs(t)

	if _, err := NewMarkowitz(ExpectedReturns{}, covariance); err == nil {
		t.Error("Expected error for empty returns")
	}
	if _, err := NewMarkowitz(returns, CovarianceMatrix{}); err == nil {
		t.Error("Expected error for empty covariance")
	}

	three, err := NewExpectedReturns([]float64{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("NewExpectedReturns: %v", err)
	}
	if _, err := NewMarkowitz(three, covariance); err == nil {
		t.Error("Expected error for dimension mismatch")
	}
}

func TestNewMarkowitzConstrained_InfeasibleCombination(t *testing.T) {
	returns, covariance := threeAssetInputs(t)

	var set ConstraintSet
	set.Add(NewFullyInvested())
	box, err := NewBox(0, 0.2)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	set.Add(box)

	// Three assets capped at 0.2 each can sum to at most 0.6.
	if _, err := NewMarkowitzConstrained(returns, covariance, set); err == nil {
		t.Error("Expected error for infeasible constraint combination")
	}
}

func TestMinimumVariance_TwoAssets(t *testing.T) {
	returns, covariance := twoAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	result := m.MinimumVariance()
	if !result.Converged {
		t.Fatalf("Expected convergence, got message %q", result.Message)
	}

	// w1 = (σ2² − σ12) / (σ1² + σ2² − 2σ12) = 0.0125 / 0.0425.
	wantW1 := 0.0125 / 0.0425
	if math.Abs(result.Weights[0]-wantW1) > 1e-6 {
		t.Errorf("w1 = %.8f, want %.8f", result.Weights[0], wantW1)
	}
	if math.Abs(result.Weights[1]-(1-wantW1)) > 1e-6 {
		t.Errorf("w2 = %.8f, want %.8f", result.Weights[1], 1-wantW1)
	}
	if math.Abs(result.Weights[0]+result.Weights[1]-1) > 1e-10 {
		t.Errorf("Weights sum to %.12f, want 1", result.Weights[0]+result.Weights[1])
	}

	// The reported risk matches wᵀΣw.
	variance := m.Variance(result.Weights)
	if math.Abs(result.Risk-math.Sqrt(variance)) > 1e-12 {
		t.Errorf("Risk = %g, want %g", result.Risk, math.Sqrt(variance))
	}
}

func TestMinimumVariance_IsGlobalMinimum(t *testing.T) {
	returns, covariance := threeAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	result := m.MinimumVariance()
	if !result.Converged {
		t.Fatalf("Expected convergence, got message %q", result.Message)
	}
	minVariance := m.Variance(result.Weights)

	// Perturbations along fully-invested directions cannot do better.
	perturbations := [][]float64{
		{0.01, -0.01, 0},
		{0, 0.01, -0.01},
		{-0.02, 0.01, 0.01},
	}
	for _, p := range perturbations {
		perturbed := result.Weights.Clone()
		for i := range perturbed {
			perturbed[i] += p[i]
		}
		if m.Variance(perturbed) < minVariance-1e-12 {
			t.Errorf("Perturbed weights %v beat the minimum variance", perturbed)
		}
	}
}

func TestOptimize_ZeroLambdaIsMinimumVariance(t *testing.T) {
	returns, covariance := twoAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	minVar := m.MinimumVariance()
	result, err := m.Optimize(0)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	for i := range result.Weights {
		if math.Abs(result.Weights[i]-minVar.Weights[i]) > 1e-12 {
			t.Errorf("Optimize(0) weights differ from minimum variance at %d", i)
		}
	}
}

func TestOptimize_NegativeLambda(t *testing.T) {
	returns, covariance := twoAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	if _, err := m.Optimize(-0.5); err == nil {
		t.Error("Expected error for negative lambda")
	}
}

func TestOptimize_HigherLambdaTakesMoreRisk(t *testing.T) {
	returns, covariance := threeAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	low, err := m.Optimize(0.1)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	high, err := m.Optimize(2.0)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if !low.Converged || !high.Converged {
		t.Fatal("Expected both portfolios to converge")
	}
	if high.ExpectedReturn <= low.ExpectedReturn {
		t.Errorf("Expected return to rise with lambda: %g vs %g", low.ExpectedReturn, high.ExpectedReturn)
	}
	if high.Risk <= low.Risk {
		t.Errorf("Expected risk to rise with lambda: %g vs %g", low.Risk, high.Risk)
	}

	// Budget constraint holds along the whole family.
	if math.Abs(high.Weights.Sum()-1) > 1e-9 {
		t.Errorf("Weights sum to %.12f, want 1", high.Weights.Sum())
	}
}

func TestTargetReturn_TwoAssetsExact(t *testing.T) {
	returns, covariance := twoAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	// With two assets the budget and return constraints pin the weights:
	// 0.6·0.10 + 0.4·0.15 = 0.12.
	result := m.TargetReturn(0.12)
	if !result.Converged {
		t.Fatalf("Expected convergence, got message %q", result.Message)
	}
	if math.Abs(result.Weights[0]-0.6) > 1e-6 || math.Abs(result.Weights[1]-0.4) > 1e-6 {
		t.Errorf("Weights = %v, want [0.6 0.4]", result.Weights)
	}
	if math.Abs(result.ExpectedReturn-0.12) > 1e-9 {
		t.Errorf("ExpectedReturn = %g, want 0.12", result.ExpectedReturn)
	}
}

func TestTargetReturn_OutOfRange(t *testing.T) {
	returns, covariance := twoAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	tests := []struct {
		name   string
		target float64
	}{
		{name: "above all assets", target: 0.25},
		{name: "below all assets", target: 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := m.TargetReturn(tt.target)
			if result.Converged {
				t.Error("Expected Converged=false for unattainable target")
			}
			if result.Message == "" {
				t.Error("Expected a diagnostic message")
			}
		})
	}
}

func TestEfficientFrontier(t *testing.T) {
	returns, covariance := threeAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	frontier, err := m.EfficientFrontier(10)
	if err != nil {
		t.Fatalf("EfficientFrontier: %v", err)
	}
	if len(frontier) < 2 {
		t.Fatalf("Expected at least 2 frontier points, got %d", len(frontier))
	}

	for i := 1; i < len(frontier); i++ {
		if frontier[i].ExpectedReturn < frontier[i-1].ExpectedReturn-1e-10 {
			t.Errorf("Frontier returns decreased at point %d", i)
		}
		if frontier[i].Risk < frontier[i-1].Risk-1e-10 {
			t.Errorf("Frontier risk decreased at point %d", i)
		}
	}

	for i, p := range frontier {
		if math.Abs(p.Weights.Sum()-1) > 1e-9 {
			t.Errorf("Point %d weights sum to %.12f, want 1", i, p.Weights.Sum())
		}
	}
}

func TestEfficientFrontier_VarianceConvexity(t *testing.T) {
	returns, covariance := threeAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	frontier, err := m.EfficientFrontier(15)
	if err != nil {
		t.Fatalf("EfficientFrontier: %v", err)
	}
	if len(frontier) < 3 {
		t.Fatalf("Expected at least 3 frontier points, got %d", len(frontier))
	}
	for i, p := range frontier {
		if !p.Converged {
			t.Fatalf("Point %d did not converge: %q", i, p.Message)
		}
	}

	// Points are evenly spaced in expected return, so the variance curve
	// must stay at or below the chord through each point's neighbors.
	for i := 1; i < len(frontier)-1; i++ {
		prev := frontier[i-1].Risk * frontier[i-1].Risk
		cur := frontier[i].Risk * frontier[i].Risk
		next := frontier[i+1].Risk * frontier[i+1].Risk
		if cur > (prev+next)/2+1e-4 {
			t.Errorf("Variance not convex at point %d: %.8f > %.8f", i, cur, (prev+next)/2)
		}
	}
}

func TestEfficientFrontier_TooFewPoints(t *testing.T) {
	returns, covariance := twoAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	if _, err := m.EfficientFrontier(1); err == nil {
		t.Error("Expected error for fewer than 2 points")
	}
}

func TestLongOnlyProjection(t *testing.T) {
	// Asset pair chosen so the unconstrained solution shorts asset 0.
	returns, err := NewExpectedReturns([]float64{0.02, 0.18})
	if err != nil {
		t.Fatalf("NewExpectedReturns: %v", err)
	}
	covariance, err := NewCovarianceMatrix([][]float64{
		{0.09, 0.002},
		{0.002, 0.01},
	})
	if err != nil {
		t.Fatalf("NewCovarianceMatrix: %v", err)
	}

	var set ConstraintSet
	set.Add(NewFullyInvested())
	set.Add(NewLongOnly())

	m, err := NewMarkowitzConstrained(returns, covariance, set)
	if err != nil {
		t.Fatalf("NewMarkowitzConstrained: %v", err)
	}

	result, err := m.Optimize(5.0)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !result.Converged {
		t.Fatalf("Expected convergence, got message %q", result.Message)
	}
	for i, w := range result.Weights {
		if w < 0 {
			t.Errorf("Weight %d is negative: %g", i, w)
		}
	}
	if math.Abs(result.Weights.Sum()-1) > 1e-9 {
		t.Errorf("Weights sum to %.12f, want 1", result.Weights.Sum())
	}
}

func TestSetTuningValidation(t *testing.T) {
	returns, covariance := twoAssetInputs(t)
	m, err := NewMarkowitz(returns, covariance)
	if err != nil {
		t.Fatalf("NewMarkowitz: %v", err)
	}

	if err := m.SetMaxIterations(0); err == nil {
		t.Error("Expected error for non-positive iteration cap")
	}
	if err := m.SetTolerance(-1); err == nil {
		t.Error("Expected error for non-positive tolerance")
	}
	if err := m.SetMaxIterations(50); err != nil {
		t.Errorf("SetMaxIterations(50): %v", err)
	}
	if err := m.SetTolerance(1e-6); err != nil {
		t.Errorf("SetTolerance(1e-6): %v", err)
	}
}
