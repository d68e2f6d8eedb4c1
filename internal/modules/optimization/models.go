package optimization

import (
	"time"

	"github.com/aristath/orbat/pkg/optimizer"
)

// Optimization methods stored with each run.
const (
	MethodMinVariance    = "min_variance"
	MethodRiskTolerance  = "risk_tolerance"
	MethodTargetReturn   = "target_return"
	MethodBlackLitterman = "black_litterman"
	MethodFrontier       = "frontier"
)

// Run is a persisted optimization run.
type Run struct {
	ID        string
	Method    string
	NumAssets int
	Labels    []string
	Result    optimizer.Result
	CreatedAt time.Time
}

// Request types

// MPTRequest asks for a single mean-variance portfolio. Exactly one of
// Lambda and TargetReturn may be set; with neither set the minimum-variance
// portfolio is computed. Instead of explicit returns and covariance a T×N
// return history may be given, from which both are estimated (sample mean,
// or EWMA when a span is set, plus sample covariance).
type MPTRequest struct {
	Returns      []float64   `json:"returns,omitempty"`
	Covariance   [][]float64 `json:"covariance,omitempty"`
	History      [][]float64 `json:"history,omitempty"`
	EWMASpan     *int        `json:"ewma_span,omitempty"`
	Labels       []string    `json:"labels,omitempty"`
	RiskFreeRate float64     `json:"risk_free_rate,omitempty"`
	Lambda       *float64    `json:"lambda,omitempty"`
	TargetReturn *float64    `json:"target_return,omitempty"`
	LongOnly     bool        `json:"long_only,omitempty"`
	MinWeight    *float64    `json:"min_weight,omitempty"`
	MaxWeight    *float64    `json:"max_weight,omitempty"`
}

// ViewRequest is one investor view in a Black-Litterman request.
type ViewRequest struct {
	Assets         []float64 `json:"assets"`
	ExpectedReturn float64   `json:"return"`
	Confidence     float64   `json:"confidence"`
}

// BLRequest asks for a Black-Litterman portfolio blending market equilibrium
// returns with investor views.
type BLRequest struct {
	MarketWeights []float64     `json:"market_weights"`
	Covariance    [][]float64   `json:"covariance"`
	Labels        []string      `json:"labels,omitempty"`
	RiskAversion  float64       `json:"risk_aversion"`
	Tau           *float64      `json:"tau,omitempty"`
	Views         []ViewRequest `json:"views,omitempty"`
	RiskFreeRate  float64       `json:"risk_free_rate,omitempty"`
}

// FrontierRequest asks for an efficient frontier sweep.
type FrontierRequest struct {
	Returns      []float64   `json:"returns"`
	Covariance   [][]float64 `json:"covariance"`
	Labels       []string    `json:"labels,omitempty"`
	Points       int         `json:"points,omitempty"`
	RiskFreeRate float64     `json:"risk_free_rate,omitempty"`
	LongOnly     bool        `json:"long_only,omitempty"`
}

// Response types

// RunResponse is the JSON shape of a persisted run.
type RunResponse struct {
	ID             string    `json:"id"`
	Method         string    `json:"method"`
	NumAssets      int       `json:"num_assets"`
	Labels         []string  `json:"labels,omitempty"`
	Weights        []float64 `json:"weights"`
	ExpectedReturn float64   `json:"expected_return"`
	Risk           float64   `json:"risk"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	Converged      bool      `json:"converged"`
	Message        string    `json:"message,omitempty"`
	CreatedAt      string    `json:"created_at"`
}

// FrontierPointResponse is one converged frontier portfolio.
type FrontierPointResponse struct {
	ExpectedReturn float64   `json:"return"`
	Volatility     float64   `json:"volatility"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	Weights        []float64 `json:"weights"`
}

// FrontierResponse is the JSON shape of a frontier sweep.
type FrontierResponse struct {
	Labels []string                `json:"labels,omitempty"`
	Points []FrontierPointResponse `json:"points"`
}

func runToResponse(run *Run) RunResponse {
	return RunResponse{
		ID:             run.ID,
		Method:         run.Method,
		NumAssets:      run.NumAssets,
		Labels:         run.Labels,
		Weights:        run.Result.Weights,
		ExpectedReturn: run.Result.ExpectedReturn,
		Risk:           run.Result.Risk,
		SharpeRatio:    run.Result.SharpeRatio,
		Converged:      run.Result.Converged,
		Message:        run.Result.Message,
		CreatedAt:      run.CreatedAt.UTC().Format(time.RFC3339),
	}
}
