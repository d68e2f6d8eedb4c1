package optimizer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FrontierCSV renders an efficient frontier as CSV with one row per
// converged portfolio:
//
//	return,volatility,weight_0,...,weight_{n-1}
//
// Asset labels replace the weight_<i> headers when provided. Non-converged
// entries are skipped; a frontier with no converged entries is an error.
func FrontierCSV(frontier []Result, assetLabels []string) (string, error) {
	if len(frontier) == 0 {
		return "", fmt.Errorf("cannot export an empty frontier")
	}

	numAssets := 0
	for _, r := range frontier {
		if r.Success() {
			numAssets = len(r.Weights)
			break
		}
	}
	if numAssets == 0 {
		return "", fmt.Errorf("no converged portfolios in frontier")
	}

	var b strings.Builder
	b.WriteString("return,volatility")
	for i := 0; i < numAssets; i++ {
		b.WriteString(",")
		if i < len(assetLabels) && assetLabels[i] != "" {
			b.WriteString(assetLabels[i])
		} else {
			fmt.Fprintf(&b, "weight_%d", i)
		}
	}
	b.WriteString("\n")

	for _, r := range frontier {
		if !r.Success() {
			continue
		}
		b.WriteString(fixed8(r.ExpectedReturn))
		b.WriteString(",")
		b.WriteString(fixed8(r.Risk))
		for _, w := range r.Weights {
			b.WriteString(",")
			b.WriteString(fixed8(w))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// FrontierJSON renders an efficient frontier as JSON:
//
//	{"assets":[...]?, "frontier":[{"return":..,"volatility":..,"weights":[..]},...]}
//
// Non-converged entries are skipped.
func FrontierJSON(frontier []Result, assetLabels []string) (string, error) {
	if len(frontier) == 0 {
		return "", fmt.Errorf("cannot export an empty frontier")
	}

	var b strings.Builder
	b.WriteString("{\n")

	if len(assetLabels) > 0 {
		b.WriteString("  \"assets\": [")
		for i, label := range assetLabels {
			if i > 0 {
				b.WriteString(", ")
			}
			encoded, _ := json.Marshal(label)
			b.Write(encoded)
		}
		b.WriteString("],\n")
	}

	b.WriteString("  \"frontier\": [\n")
	first := true
	for _, r := range frontier {
		if !r.Success() {
			continue
		}
		if !first {
			b.WriteString(",\n")
		}
		first = false

		b.WriteString("    {\n")
		fmt.Fprintf(&b, "      \"return\": %s,\n", fixed8(r.ExpectedReturn))
		fmt.Fprintf(&b, "      \"volatility\": %s,\n", fixed8(r.Risk))
		b.WriteString("      \"weights\": [")
		for i, w := range r.Weights {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fixed8(w))
		}
		b.WriteString("]\n    }")
	}
	b.WriteString("\n  ]\n}\n")
	return b.String(), nil
}
