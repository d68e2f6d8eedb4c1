package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/aristath/orbat/internal/fileio"
	"github.com/aristath/orbat/pkg/optimizer"
)

// blCmd computes a Black-Litterman portfolio.
type blCmd struct {
	weightsPath    string
	covariancePath string
	viewsPath      string
	output         string
	format         string
	riskAversion   float64
	tau            float64
	riskFreeRate   float64
}

func (*blCmd) Name() string     { return "bl" }
func (*blCmd) Synopsis() string { return "compute a Black-Litterman portfolio" }
func (*blCmd) Usage() string {
	return `bl -weights <file> -covariance <file> [options]:
  Blend market equilibrium returns with investor views and optimize the
  resulting posterior estimate. Without -views the equilibrium portfolio
  is computed.
`
}

func (c *blCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weightsPath, "weights", "", "market-capitalization weights file (CSV or JSON)")
	f.StringVar(&c.covariancePath, "covariance", "", "covariance matrix file (CSV or JSON)")
	f.StringVar(&c.viewsPath, "views", "", "investor views file (JSON)")
	f.StringVar(&c.output, "output", "", "output file (default stdout)")
	f.StringVar(&c.format, "format", "json", "output format: csv or json")
	f.Float64Var(&c.riskAversion, "risk-aversion", 2.5, "market risk-aversion coefficient")
	f.Float64Var(&c.tau, "tau", optimizer.DefaultTau, "uncertainty scaling for the prior")
	f.Float64Var(&c.riskFreeRate, "rf-rate", 0, "risk-free rate for the Sharpe ratio")
}

func (c *blCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.weightsPath == "" {
		return fail(fmt.Errorf("-weights is required"))
	}
	if c.covariancePath == "" {
		return fail(fmt.Errorf("-covariance is required"))
	}

	// Market weights share the returns file formats.
	weights, err := fileio.ParseReturns(c.weightsPath)
	if err != nil {
		return fail(err)
	}
	covariance, err := fileio.ParseCovariance(c.covariancePath)
	if err != nil {
		return fail(err)
	}

	labels := weights.Labels
	if len(labels) == 0 {
		labels = covariance.Labels
	}

	var cov optimizer.CovarianceMatrix
	if len(labels) > 0 {
		cov, err = optimizer.NewCovarianceMatrixLabeled(covariance.Covariance, labels)
	} else {
		cov, err = optimizer.NewCovarianceMatrix(covariance.Covariance)
	}
	if err != nil {
		return fail(err)
	}

	bl, err := optimizer.NewBlackLitterman(weights.Returns, cov, c.riskAversion, c.tau)
	if err != nil {
		return fail(err)
	}

	if c.viewsPath != "" {
		views, err := fileio.ParseViews(c.viewsPath, len(weights.Returns))
		if err != nil {
			return fail(err)
		}
		for i, view := range views {
			if err := bl.AddView(view); err != nil {
				return fail(fmt.Errorf("view %d is invalid: %w", i, err))
			}
		}
	}

	result, err := bl.Optimize()
	if err != nil {
		return fail(err)
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
