package optimizer

import (
	"fmt"
	"math"

	"github.com/aristath/orbat/pkg/linalg"
)

// DefaultTau is the conventional prior-uncertainty scalar for the
// Black-Litterman model.
const DefaultTau = 0.025

// View is an investor's belief about a linear combination of asset returns:
// Assets·returns ≈ ExpectedReturn, held with the given confidence. A single
// nonzero weight expresses an absolute view; a +1/−1 pair expresses a
// relative view.
type View struct {
	Assets         linalg.Vector
	ExpectedReturn float64
	Confidence     float64
}

// NewView validates and builds a view. Confidence must lie in [0, 1]:
// 0 means no information, 1 full certainty.
func NewView(assets []float64, expectedReturn, confidence float64) (View, error) {
	if confidence < 0.0 || confidence > 1.0 {
		return View{}, fmt.Errorf("view confidence must be between 0 and 1, got %g", confidence)
	}
	return View{
		Assets:         linalg.Vector(assets).Clone(),
		ExpectedReturn: expectedReturn,
		Confidence:     confidence,
	}, nil
}

// BlackLitterman blends market-implied equilibrium returns with investor
// views through Bayesian updating:
//
//	μ_BL = [(τΣ)⁻¹ + PᵀΩ⁻¹P]⁻¹ [(τΣ)⁻¹Π + PᵀΩ⁻¹Q]
//
// where Π = λΣw_market are the equilibrium returns implied by reverse
// optimization of the market-cap portfolio. The posterior returns feed a
// Markowitz optimizer for final weights.
type BlackLitterman struct {
	marketWeights      linalg.Vector
	covariance         CovarianceMatrix
	riskAversion       float64
	tau                float64
	equilibriumReturns linalg.Vector
	views              []View
}

// NewBlackLitterman builds a Black-Litterman optimizer. Market weights must
// be non-negative, sum to 1 (±1e-6) and match the covariance dimension;
// riskAversion and tau must be positive. Equilibrium returns are computed
// immediately at construction.
func NewBlackLitterman(marketWeights []float64, covariance CovarianceMatrix, riskAversion, tau float64) (*BlackLitterman, error) {
	weights := linalg.Vector(marketWeights).Clone()

	if len(weights) == 0 {
		return nil, fmt.Errorf("market weights cannot be empty")
	}
	if covariance.IsEmpty() {
		return nil, fmt.Errorf("covariance matrix cannot be empty")
	}
	if len(weights) != covariance.Len() {
		return nil, fmt.Errorf("dimension mismatch: %d market weights vs %dx%d covariance",
			len(weights), covariance.Len(), covariance.Len())
	}
	if riskAversion <= 0 {
		return nil, fmt.Errorf("risk aversion must be positive, got %g", riskAversion)
	}
	if tau <= 0 {
		return nil, fmt.Errorf("tau must be positive, got %g", tau)
	}
	if math.Abs(weights.Sum()-1.0) > 1e-6 {
		return nil, fmt.Errorf("market weights must sum to 1.0, got %g", weights.Sum())
	}
	for i, w := range weights {
		if w < -linalg.Epsilon {
			return nil, fmt.Errorf("market weight %d must be non-negative, got %g", i, w)
		}
	}

	bl := &BlackLitterman{
		marketWeights: weights,
		covariance:    covariance,
		riskAversion:  riskAversion,
		tau:           tau,
	}
	// Reverse optimization: Π = λΣw.
	bl.equilibriumReturns = covariance.Matrix().MulVec(weights).Scale(riskAversion)
	return bl, nil
}

// AddView appends an investor view. The view's asset vector must match the
// number of assets.
func (bl *BlackLitterman) AddView(view View) error {
	if len(view.Assets) != len(bl.marketWeights) {
		return fmt.Errorf("view has %d assets, want %d", len(view.Assets), len(bl.marketWeights))
	}
	bl.views = append(bl.views, view)
	return nil
}

// ClearViews removes all views.
func (bl *BlackLitterman) ClearViews() { bl.views = nil }

// NumViews returns the number of views.
func (bl *BlackLitterman) NumViews() int { return len(bl.views) }

// EquilibriumReturns returns the reverse-optimized equilibrium returns Π.
func (bl *BlackLitterman) EquilibriumReturns() linalg.Vector { return bl.equilibriumReturns }

// MarketWeights returns the market-cap weights.
func (bl *BlackLitterman) MarketWeights() linalg.Vector { return bl.marketWeights }

// RiskAversion returns the market risk-aversion parameter.
func (bl *BlackLitterman) RiskAversion() float64 { return bl.riskAversion }

// Tau returns the prior-uncertainty scalar.
func (bl *BlackLitterman) Tau() float64 { return bl.tau }

// PosteriorReturns computes the Black-Litterman posterior expected returns.
// With no views the equilibrium returns pass through unchanged. Otherwise
// the view uncertainty Ω is diagonal with
//
//	Ω_ii = (P_i·(τΣ)·P_iᵀ) × (1/confidence_i − 1)
//
// floored at Epsilon, so a fully-certain view behaves as "very certain"
// rather than exact and Ω stays invertible.
func (bl *BlackLitterman) PosteriorReturns() (ExpectedReturns, error) {
	if len(bl.views) == 0 {
		return NewExpectedReturns(bl.equilibriumReturns)
	}

	n := len(bl.marketWeights)
	k := len(bl.views)

	p := linalg.NewMatrix(k, n)
	q := linalg.NewVector(k)
	omega := linalg.NewMatrix(k, k)

	for i, view := range bl.views {
		q[i] = view.ExpectedReturn
		p.SetRow(i, view.Assets)

		tauSigmaP := bl.covariance.Matrix().MulVec(view.Assets).Scale(bl.tau)
		viewVariance := view.Assets.Dot(tauSigmaP)

		uncertainty := viewVariance * (1.0/view.Confidence - 1.0)
		if uncertainty < linalg.Epsilon {
			uncertainty = linalg.Epsilon
		}
		omega.Set(i, i, uncertainty)
	}

	tauSigma := bl.covariance.Matrix().Scale(bl.tau)
	tauSigmaInv, err := tauSigma.Inverse()
	if err != nil {
		return ExpectedReturns{}, fmt.Errorf("failed to invert scaled covariance: %w", err)
	}

	omegaInv, err := omega.Inverse()
	if err != nil {
		return ExpectedReturns{}, fmt.Errorf("failed to invert view uncertainty matrix: %w", err)
	}

	pt := p.Transpose()
	ptOmegaInv := pt.Mul(omegaInv)

	// Posterior precision: (τΣ)⁻¹ + PᵀΩ⁻¹P.
	precision := tauSigmaInv.Add(ptOmegaInv.Mul(p))
	posteriorCov, err := precision.Inverse()
	if err != nil {
		return ExpectedReturns{}, fmt.Errorf("failed to invert posterior precision: %w", err)
	}

	rhs := tauSigmaInv.MulVec(bl.equilibriumReturns).Add(ptOmegaInv.MulVec(q))
	posteriorMean := posteriorCov.MulVec(rhs)

	return NewExpectedReturns(posteriorMean)
}

// Optimize computes posterior returns and delegates to a fresh Markowitz
// optimizer using the market risk aversion.
func (bl *BlackLitterman) Optimize() (Result, error) {
	return bl.OptimizeLambda(bl.riskAversion)
}

// OptimizeLambda is Optimize with an explicit risk-aversion parameter.
func (bl *BlackLitterman) OptimizeLambda(lambda float64) (Result, error) {
	if lambda < 0 {
		return Result{}, fmt.Errorf("risk aversion parameter must be non-negative, got %g", lambda)
	}

	posterior, err := bl.PosteriorReturns()
	if err != nil {
		return Result{}, err
	}

	markowitz, err := NewMarkowitz(posterior, bl.covariance)
	if err != nil {
		return Result{}, err
	}
	return markowitz.Optimize(lambda)
}
