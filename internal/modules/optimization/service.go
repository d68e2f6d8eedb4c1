// Package optimization exposes the portfolio optimizer over HTTP and the
// scheduler: request validation, run persistence, and the background
// re-optimization job.
package optimization

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/orbat/pkg/formulas"
	"github.com/aristath/orbat/pkg/optimizer"
)

// OptimizerService validates requests, runs the optimizer, and wraps the
// outcome in persistable runs.
type OptimizerService struct {
	log zerolog.Logger
}

// NewOptimizerService creates a new optimizer service.
func NewOptimizerService(log zerolog.Logger) *OptimizerService {
	return &OptimizerService{
		log: log.With().Str("component", "optimizer_service").Logger(),
	}
}

// RunMPT computes a single mean-variance portfolio. The method is picked
// from the request: lambda sweep point, target return, or minimum variance
// when neither is set.
func (s *OptimizerService) RunMPT(req MPTRequest) (*Run, error) {
	if req.Lambda != nil && req.TargetReturn != nil {
		return nil, fmt.Errorf("lambda and target_return are mutually exclusive")
	}

	if len(req.History) > 0 {
		if len(req.Returns) > 0 || len(req.Covariance) > 0 {
			return nil, fmt.Errorf("history and explicit returns/covariance are mutually exclusive")
		}
		estimated, covariance, err := estimateInputs(req.History, req.EWMASpan)
		if err != nil {
			return nil, err
		}
		req.Returns = estimated
		req.Covariance = covariance
	}

	returns, covariance, err := buildInputs(req.Returns, req.Covariance, req.Labels)
	if err != nil {
		return nil, err
	}

	constraints, err := buildConstraints(req.LongOnly, req.MinWeight, req.MaxWeight)
	if err != nil {
		return nil, err
	}

	markowitz, err := optimizer.NewMarkowitzConstrained(returns, covariance, constraints)
	if err != nil {
		return nil, err
	}

	var (
		method string
		result optimizer.Result
	)
	switch {
	case req.Lambda != nil:
		method = MethodRiskTolerance
		result, err = markowitz.Optimize(*req.Lambda)
		if err != nil {
			return nil, err
		}
	case req.TargetReturn != nil:
		method = MethodTargetReturn
		result = markowitz.TargetReturn(*req.TargetReturn)
	default:
		method = MethodMinVariance
		result = markowitz.MinimumVariance()
	}

	result.SetRiskFreeRate(req.RiskFreeRate)

	s.log.Info().
		Str("method", method).
		Int("num_assets", returns.Len()).
		Bool("converged", result.Converged).
		Msg("Mean-variance optimization completed")

	return s.newRun(method, returns.Len(), req.Labels, result), nil
}

// RunBlackLitterman blends equilibrium returns with investor views and
// optimizes against the posterior estimate.
func (s *OptimizerService) RunBlackLitterman(req BLRequest) (*Run, error) {
	covariance, err := newCovariance(req.Covariance, req.Labels)
	if err != nil {
		return nil, err
	}

	tau := optimizer.DefaultTau
	if req.Tau != nil {
		tau = *req.Tau
	}

	bl, err := optimizer.NewBlackLitterman(req.MarketWeights, covariance, req.RiskAversion, tau)
	if err != nil {
		return nil, err
	}

	for i, v := range req.Views {
		view, err := optimizer.NewView(v.Assets, v.ExpectedReturn, v.Confidence)
		if err != nil {
			return nil, fmt.Errorf("view %d is invalid: %w", i, err)
		}
		if err := bl.AddView(view); err != nil {
			return nil, fmt.Errorf("view %d is invalid: %w", i, err)
		}
	}

	result, err := bl.Optimize()
	if err != nil {
		return nil, err
	}
	result.SetRiskFreeRate(req.RiskFreeRate)

	s.log.Info().
		Int("num_assets", len(req.MarketWeights)).
		Int("num_views", bl.NumViews()).
		Bool("converged", result.Converged).
		Msg("Black-Litterman optimization completed")

	return s.newRun(MethodBlackLitterman, len(req.MarketWeights), req.Labels, result), nil
}

// RunFrontier sweeps the efficient frontier. The returned slice holds only
// converged portfolios.
func (s *OptimizerService) RunFrontier(req FrontierRequest) ([]optimizer.Result, error) {
	points := req.Points
	if points == 0 {
		points = 20
	}

	returns, covariance, err := buildInputs(req.Returns, req.Covariance, req.Labels)
	if err != nil {
		return nil, err
	}

	constraints, err := buildConstraints(req.LongOnly, nil, nil)
	if err != nil {
		return nil, err
	}

	markowitz, err := optimizer.NewMarkowitzConstrained(returns, covariance, constraints)
	if err != nil {
		return nil, err
	}

	frontier, err := markowitz.EfficientFrontier(points)
	if err != nil {
		return nil, err
	}

	converged := make([]optimizer.Result, 0, len(frontier))
	for _, r := range frontier {
		if !r.Success() {
			continue
		}
		r.SetRiskFreeRate(req.RiskFreeRate)
		converged = append(converged, r)
	}

	s.log.Info().
		Int("num_assets", returns.Len()).
		Int("requested_points", points).
		Int("converged_points", len(converged)).
		Msg("Efficient frontier computed")

	return converged, nil
}

func (s *OptimizerService) newRun(method string, numAssets int, labels []string, result optimizer.Result) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Method:    method,
		NumAssets: numAssets,
		Labels:    labels,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
}

// estimateInputs derives expected returns and a covariance matrix from a
// T×N return history: sample means, or an EWMA when a span is given, plus
// the sample covariance.
func estimateInputs(history [][]float64, ewmaSpan *int) ([]float64, [][]float64, error) {
	var (
		returns []float64
		err     error
	)
	if ewmaSpan != nil {
		returns, err = formulas.EWMAReturns(history, *ewmaSpan)
	} else {
		returns, err = formulas.MeanReturns(history)
	}
	if err != nil {
		return nil, nil, err
	}

	covariance, err := formulas.SampleCovariance(history)
	if err != nil {
		return nil, nil, err
	}
	return returns, covariance, nil
}

func buildInputs(rawReturns []float64, rawCovariance [][]float64, labels []string) (optimizer.ExpectedReturns, optimizer.CovarianceMatrix, error) {
	var (
		returns optimizer.ExpectedReturns
		err     error
	)
	if len(labels) > 0 {
		returns, err = optimizer.NewExpectedReturnsLabeled(rawReturns, labels)
	} else {
		returns, err = optimizer.NewExpectedReturns(rawReturns)
	}
	if err != nil {
		return optimizer.ExpectedReturns{}, optimizer.CovarianceMatrix{}, err
	}

	covariance, err := newCovariance(rawCovariance, labels)
	if err != nil {
		return optimizer.ExpectedReturns{}, optimizer.CovarianceMatrix{}, err
	}
	return returns, covariance, nil
}

func newCovariance(rows [][]float64, labels []string) (optimizer.CovarianceMatrix, error) {
	if len(labels) > 0 {
		return optimizer.NewCovarianceMatrixLabeled(rows, labels)
	}
	return optimizer.NewCovarianceMatrix(rows)
}

func buildConstraints(longOnly bool, minWeight, maxWeight *float64) (optimizer.ConstraintSet, error) {
	var set optimizer.ConstraintSet
	set.Add(optimizer.NewFullyInvested())
	if longOnly {
		set.Add(optimizer.NewLongOnly())
	}
	if minWeight != nil || maxWeight != nil {
		lower := 0.0
		upper := 1.0
		if minWeight != nil {
			lower = *minWeight
		}
		if maxWeight != nil {
			upper = *maxWeight
		}
		box, err := optimizer.NewBox(lower, upper)
		if err != nil {
			return optimizer.ConstraintSet{}, err
		}
		set.Add(box)
	}
	return set, nil
}
