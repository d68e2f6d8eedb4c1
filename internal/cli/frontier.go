package cli

import (
	"context"
	"flag"
	"fmt"
	"math"

	"github.com/google/subcommands"

	"github.com/aristath/orbat/pkg/optimizer"
)

// frontierCmd sweeps the efficient frontier.
type frontierCmd struct {
	returnsPath    string
	covariancePath string
	historyPath    string
	ewmaSpan       int
	output         string
	format         string
	points         int
	riskFreeRate   float64
	longOnly       bool
}

func (*frontierCmd) Name() string     { return "frontier" }
func (*frontierCmd) Synopsis() string { return "sweep the efficient frontier" }
func (*frontierCmd) Usage() string {
	return `frontier -returns <file> -covariance <file> [options]:
  Compute evenly spaced portfolios between the minimum-variance return and
  the highest single-asset return.
`
}

func (c *frontierCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.returnsPath, "returns", "", "expected returns file (CSV or JSON)")
	f.StringVar(&c.covariancePath, "covariance", "", "covariance matrix file (CSV or JSON)")
	f.StringVar(&c.historyPath, "history", "", "return-history file (CSV or JSON), estimates returns and covariance")
	f.IntVar(&c.ewmaSpan, "ewma-span", 0, "EWMA span for history estimation (0 = sample mean)")
	f.StringVar(&c.output, "output", "", "output file (default stdout)")
	f.StringVar(&c.format, "format", "csv", "output format: csv or json")
	f.IntVar(&c.points, "points", 20, "number of frontier points")
	f.Float64Var(&c.riskFreeRate, "rf-rate", 0, "risk-free rate for the Sharpe ratio")
	f.BoolVar(&c.longOnly, "long-only", true, "forbid short positions")
}

func (c *frontierCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rawReturns, rawCovariance, labels, err := resolveInputs(c.returnsPath, c.covariancePath, c.historyPath, c.ewmaSpan)
	if err != nil {
		return fail(err)
	}

	er, cov, err := buildOptimizerInputs(rawReturns, rawCovariance, labels)
	if err != nil {
		return fail(err)
	}

	constraints, err := buildConstraintSet(c.longOnly, math.NaN(), math.NaN())
	if err != nil {
		return fail(err)
	}

	markowitz, err := optimizer.NewMarkowitzConstrained(er, cov, constraints)
	if err != nil {
		return fail(err)
	}

	frontier, err := markowitz.EfficientFrontier(c.points)
	if err != nil {
		return fail(err)
	}
	if frontier == nil {
		return fail(fmt.Errorf("minimum-variance portfolio did not converge"))
	}
	for i := range frontier {
		frontier[i].SetRiskFreeRate(c.riskFreeRate)
	}

	var content string
	switch c.format {
	case "csv":
		content, err = optimizer.FrontierCSV(frontier, labels)
	case "json":
		content, err = optimizer.FrontierJSON(frontier, labels)
	default:
		err = fmt.Errorf("unknown format %q, want csv or json", c.format)
	}
	if err != nil {
		return fail(err)
	}

	if err := writeOutput(c.output, content); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
