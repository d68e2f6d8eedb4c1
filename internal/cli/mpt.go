package cli

import (
	"context"
	"flag"
	"math"

	"github.com/google/subcommands"

	"github.com/aristath/orbat/pkg/optimizer"
)

// mptCmd computes a single mean-variance portfolio.
type mptCmd struct {
	returnsPath    string
	covariancePath string
	historyPath    string
	ewmaSpan       int
	output         string
	format         string
	riskFreeRate   float64
	lambda         float64
	target         float64
	longOnly       bool
	minWeight      float64
	maxWeight      float64
}

func (*mptCmd) Name() string     { return "mpt" }
func (*mptCmd) Synopsis() string { return "compute a mean-variance portfolio" }
func (*mptCmd) Usage() string {
	return `mpt -returns <file> -covariance <file> [options]:
  Compute a mean-variance portfolio. With -lambda the risk-tolerance
  portfolio is computed, with -target the minimum-variance portfolio for
  that expected return, and with neither the global minimum-variance
  portfolio. With -history both inputs are estimated from a return
  history instead.
`
}

func (c *mptCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.returnsPath, "returns", "", "expected returns file (CSV or JSON)")
	f.StringVar(&c.covariancePath, "covariance", "", "covariance matrix file (CSV or JSON)")
	f.StringVar(&c.historyPath, "history", "", "return-history file (CSV or JSON), estimates returns and covariance")
	f.IntVar(&c.ewmaSpan, "ewma-span", 0, "EWMA span for history estimation (0 = sample mean)")
	f.StringVar(&c.output, "output", "", "output file (default stdout)")
	f.StringVar(&c.format, "format", "json", "output format: csv or json")
	f.Float64Var(&c.riskFreeRate, "rf-rate", 0, "risk-free rate for the Sharpe ratio")
	f.Float64Var(&c.lambda, "lambda", math.NaN(), "risk tolerance (0 = minimum variance)")
	f.Float64Var(&c.target, "target", math.NaN(), "target expected return")
	f.BoolVar(&c.longOnly, "long-only", true, "forbid short positions")
	f.Float64Var(&c.minWeight, "min-weight", math.NaN(), "per-asset lower weight bound")
	f.Float64Var(&c.maxWeight, "max-weight", math.NaN(), "per-asset upper weight bound")
}

func (c *mptCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !math.IsNaN(c.lambda) && !math.IsNaN(c.target) {
		return fail(errLambdaAndTarget)
	}

	rawReturns, rawCovariance, labels, err := resolveInputs(c.returnsPath, c.covariancePath, c.historyPath, c.ewmaSpan)
	if err != nil {
		return fail(err)
	}

	er, cov, err := buildOptimizerInputs(rawReturns, rawCovariance, labels)
	if err != nil {
		return fail(err)
	}

	constraints, err := buildConstraintSet(c.longOnly, c.minWeight, c.maxWeight)
	if err != nil {
		return fail(err)
	}

	markowitz, err := optimizer.NewMarkowitzConstrained(er, cov, constraints)
	if err != nil {
		return fail(err)
	}

	var result optimizer.Result
	switch {
	case !math.IsNaN(c.lambda):
		result, err = markowitz.Optimize(c.lambda)
		if err != nil {
			return fail(err)
		}
	case !math.IsNaN(c.target):
		result = markowitz.TargetReturn(c.target)
	default:
		result = markowitz.MinimumVariance()
	}
	result.SetRiskFreeRate(c.riskFreeRate)

	content, err := renderResult(result, c.format)
	if err != nil {
		return fail(err)
	}
	if err := writeOutput(c.output, content); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
