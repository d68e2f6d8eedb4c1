package optimizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/orbat/pkg/linalg"
)

// Result holds the outcome of a portfolio optimization: the optimal weights
// and their statistics when Converged is true, or a diagnostic message when
// the problem as posed has no solution.
type Result struct {
	Weights        linalg.Vector
	ExpectedReturn float64
	Risk           float64
	SharpeRatio    float64
	Converged      bool
	Message        string
}

// Success reports whether the optimization converged.
func (r Result) Success() bool { return r.Converged }

// SharpeFor computes the Sharpe ratio for a custom risk-free rate. The
// stored SharpeRatio assumes a risk-free rate of zero.
func (r Result) SharpeFor(riskFreeRate float64) float64 {
	if r.Risk <= linalg.Epsilon {
		return 0.0
	}
	return (r.ExpectedReturn - riskFreeRate) / r.Risk
}

// SetRiskFreeRate recomputes the stored Sharpe ratio for the given
// risk-free rate.
func (r *Result) SetRiskFreeRate(riskFreeRate float64) {
	r.SharpeRatio = r.SharpeFor(riskFreeRate)
}

// fixed8 formats a float with 8 decimal places, the canonical precision for
// serialized results.
func fixed8(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

// ToJSON serializes the result to its canonical JSON form with 8-decimal
// fixed-precision numbers:
//
//	{"converged":true,"message":"...","expectedReturn":0.12000000,...,"weights":[...]}
func (r Result) ToJSON() string {
	msg, _ := json.Marshal(r.Message)

	var b strings.Builder
	b.WriteString("{\n")
	fmt.Fprintf(&b, "  \"converged\": %t,\n", r.Converged)
	fmt.Fprintf(&b, "  \"message\": %s,\n", msg)
	fmt.Fprintf(&b, "  \"expectedReturn\": %s,\n", fixed8(r.ExpectedReturn))
	fmt.Fprintf(&b, "  \"risk\": %s,\n", fixed8(r.Risk))
	fmt.Fprintf(&b, "  \"sharpeRatio\": %s,\n", fixed8(r.SharpeRatio))
	b.WriteString("  \"weights\": [")
	for i, w := range r.Weights {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fixed8(w))
	}
	b.WriteString("]\n}")
	return b.String()
}

// ToCSV serializes the result to a CSV row, optionally preceded by a header:
//
//	converged,message,expectedReturn,risk,sharpeRatio,weight_0,...
func (r Result) ToCSV(includeHeader bool) string {
	var b strings.Builder
	if includeHeader {
		b.WriteString("converged,message,expectedReturn,risk,sharpeRatio")
		for i := range r.Weights {
			fmt.Fprintf(&b, ",weight_%d", i)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%t,%q,%s,%s,%s", r.Converged, r.Message, fixed8(r.ExpectedReturn), fixed8(r.Risk), fixed8(r.SharpeRatio))
	for _, w := range r.Weights {
		b.WriteString(",")
		b.WriteString(fixed8(w))
	}
	return b.String()
}

// resultJSON mirrors the canonical JSON field set for parsing.
type resultJSON struct {
	Converged      bool      `json:"converged"`
	Message        string    `json:"message"`
	ExpectedReturn float64   `json:"expectedReturn"`
	Risk           float64   `json:"risk"`
	SharpeRatio    float64   `json:"sharpeRatio"`
	Weights        []float64 `json:"weights"`
}

// ResultFromJSON parses a result previously serialized with ToJSON. Round
// trips preserve every numeric field within 1e-6.
func ResultFromJSON(data string) (Result, error) {
	var parsed resultJSON
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to parse result JSON: %w", err)
	}
	return Result{
		Weights:        linalg.Vector(parsed.Weights),
		ExpectedReturn: parsed.ExpectedReturn,
		Risk:           parsed.Risk,
		SharpeRatio:    parsed.SharpeRatio,
		Converged:      parsed.Converged,
		Message:        parsed.Message,
	}, nil
}
