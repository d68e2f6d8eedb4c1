// Package cli implements the orbat command line: one subcommand per
// optimization mode, reading inputs from CSV or JSON files and writing
// canonical fixed-precision output to stdout or a file.
package cli

import (
	"fmt"
	"math"
	"os"

	"github.com/google/subcommands"

	"github.com/aristath/orbat/internal/fileio"
	"github.com/aristath/orbat/pkg/formulas"
	"github.com/aristath/orbat/pkg/optimizer"
)

// Register wires all orbat subcommands plus the standard help commands.
func Register() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&mptCmd{}, "optimize")
	subcommands.Register(&blCmd{}, "optimize")
	subcommands.Register(&frontierCmd{}, "optimize")
}

// loadInputs reads the expected-returns and covariance files and resolves
// asset labels, preferring the returns file's labels.
func loadInputs(returnsPath, covariancePath string) (*fileio.ReturnsFile, *fileio.CovarianceFile, []string, error) {
	if returnsPath == "" {
		return nil, nil, nil, fmt.Errorf("-returns is required")
	}
	if covariancePath == "" {
		return nil, nil, nil, fmt.Errorf("-covariance is required")
	}

	returns, err := fileio.ParseReturns(returnsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	covariance, err := fileio.ParseCovariance(covariancePath)
	if err != nil {
		return nil, nil, nil, err
	}

	labels := returns.Labels
	if len(labels) == 0 {
		labels = covariance.Labels
	}
	return returns, covariance, labels, nil
}

// resolveInputs loads optimizer inputs either from explicit returns and
// covariance files or, when a history file is given, by estimating both
// from the return history.
func resolveInputs(returnsPath, covariancePath, historyPath string, ewmaSpan int) ([]float64, [][]float64, []string, error) {
	if historyPath != "" {
		if returnsPath != "" || covariancePath != "" {
			return nil, nil, nil, fmt.Errorf("-history and -returns/-covariance are mutually exclusive")
		}
		return loadHistoryInputs(historyPath, ewmaSpan)
	}

	returns, covariance, labels, err := loadInputs(returnsPath, covariancePath)
	if err != nil {
		return nil, nil, nil, err
	}
	return returns.Returns, covariance.Covariance, labels, nil
}

// loadHistoryInputs estimates expected returns and a covariance matrix from
// a return-history file: sample means, or an EWMA when a span is set, plus
// the sample covariance.
func loadHistoryInputs(path string, ewmaSpan int) ([]float64, [][]float64, []string, error) {
	history, err := fileio.ParseHistory(path)
	if err != nil {
		return nil, nil, nil, err
	}

	var returns []float64
	if ewmaSpan > 0 {
		returns, err = formulas.EWMAReturns(history.History, ewmaSpan)
	} else {
		returns, err = formulas.MeanReturns(history.History)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	covariance, err := formulas.SampleCovariance(history.History)
	if err != nil {
		return nil, nil, nil, err
	}
	return returns, covariance, history.Labels, nil
}

// writeOutput writes content to path, or stdout when path is empty.
func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// renderResult renders a single portfolio in the requested format.
func renderResult(result optimizer.Result, format string) (string, error) {
	switch format {
	case "json":
		return result.ToJSON(), nil
	case "csv":
		return result.ToCSV(true), nil
	default:
		return "", fmt.Errorf("unknown format %q, want csv or json", format)
	}
}

// buildOptimizerInputs converts raw file data into validated optimizer inputs.
func buildOptimizerInputs(rawReturns []float64, rawCovariance [][]float64, labels []string) (optimizer.ExpectedReturns, optimizer.CovarianceMatrix, error) {
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

	var covariance optimizer.CovarianceMatrix
	if len(labels) > 0 {
		covariance, err = optimizer.NewCovarianceMatrixLabeled(rawCovariance, labels)
	} else {
		covariance, err = optimizer.NewCovarianceMatrix(rawCovariance)
	}
	if err != nil {
		return optimizer.ExpectedReturns{}, optimizer.CovarianceMatrix{}, err
	}
	return returns, covariance, nil
}

// buildConstraintSet assembles the budget, long-only, and box constraints
// from CLI flags. NaN bounds mean the flag was not set.
func buildConstraintSet(longOnly bool, minWeight, maxWeight float64) (optimizer.ConstraintSet, error) {
	var set optimizer.ConstraintSet
	set.Add(optimizer.NewFullyInvested())
	if longOnly {
		set.Add(optimizer.NewLongOnly())
	}
	if !math.IsNaN(minWeight) || !math.IsNaN(maxWeight) {
		lower := 0.0
		upper := 1.0
		if !math.IsNaN(minWeight) {
			lower = minWeight
		}
		if !math.IsNaN(maxWeight) {
			upper = maxWeight
		}
		box, err := optimizer.NewBox(lower, upper)
		if err != nil {
			return optimizer.ConstraintSet{}, err
		}
		set.Add(box)
	}
	return set, nil
}

var errLambdaAndTarget = fmt.Errorf("-lambda and -target are mutually exclusive")

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}
