package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseReturns_CSV(t *testing.T) {
	path := writeTemp(t, "returns.csv", "0.08\n0.12\n0.16\n")

	parsed, err := ParseReturns(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.08, 0.12, 0.16}, parsed.Returns)
	assert.Empty(t, parsed.Labels)
}

func TestParseReturns_CSVWithLabels(t *testing.T) {
	path := writeTemp(t, "returns.csv", "asset,return\nAAA,0.08\nBBB,0.12\n")

	parsed, err := ParseReturns(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.08, 0.12}, parsed.Returns)
	assert.Equal(t, []string{"AAA", "BBB"}, parsed.Labels)
}

func TestParseReturns_JSONBareArray(t *testing.T) {
	path := writeTemp(t, "returns.json", "[0.08, 0.12, 0.16]")

	parsed, err := ParseReturns(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.08, 0.12, 0.16}, parsed.Returns)
}

func TestParseReturns_JSONObject(t *testing.T) {
	path := writeTemp(t, "returns.json", `{"returns":[0.08,0.12],"labels":["AAA","BBB"]}`)

	parsed, err := ParseReturns(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.08, 0.12}, parsed.Returns)
	assert.Equal(t, []string{"AAA", "BBB"}, parsed.Labels)
}

func TestParseReturns_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "empty csv", file: "r.csv", content: ""},
		{name: "non-numeric csv", file: "r.csv", content: "abc\n"},
		{name: "label count mismatch", file: "r.json", content: `{"returns":[0.1,0.2],"labels":["A"]}`},
		{name: "empty json", file: "r.json", content: "[]"},
		{name: "malformed json", file: "r.json", content: "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.file, tt.content)
			_, err := ParseReturns(path)
			assert.Error(t, err)
		})
	}
}

func TestParseReturns_MissingFile(t *testing.T) {
	_, err := ParseReturns(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestParseReturns_MixedArity(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bare then labeled", content: "0.08\nBBB,0.12\n"},
		{name: "labeled then bare", content: "AAA,0.08\n0.12\n"},
		{name: "header then bare", content: "asset,return\n0.08\nBBB,0.12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "returns.csv", tt.content)
			_, err := ParseReturns(path)
			assert.Error(t, err)
		})
	}
}

func TestParseCovariance_CSV(t *testing.T) {
	path := writeTemp(t, "cov.csv", "0.04,0.01\n0.01,0.0225\n")

	parsed, err := ParseCovariance(path)
	require.NoError(t, err)
	require.Len(t, parsed.Covariance, 2)
	assert.Equal(t, []float64{0.04, 0.01}, parsed.Covariance[0])
	assert.Equal(t, []float64{0.01, 0.0225}, parsed.Covariance[1])
}

func TestParseCovariance_CSVWithHeader(t *testing.T) {
	path := writeTemp(t, "cov.csv", "AAA,BBB\n0.04,0.01\n0.01,0.0225\n")

	parsed, err := ParseCovariance(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, parsed.Labels)
	require.Len(t, parsed.Covariance, 2)
}

func TestParseCovariance_JSON(t *testing.T) {
	path := writeTemp(t, "cov.json", `{"covariance":[[0.04,0.01],[0.01,0.0225]],"labels":["AAA","BBB"]}`)

	parsed, err := ParseCovariance(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, parsed.Labels)
	assert.Equal(t, 0.0225, parsed.Covariance[1][1])
}

func TestParseCovariance_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "empty csv", file: "c.csv", content: ""},
		{name: "non-numeric body row", file: "c.csv", content: "0.04,0.01\nabc,0.0225\n"},
		{name: "label count mismatch", file: "c.json", content: `{"covariance":[[1]],"labels":["A","B"]}`},
		{name: "empty matrix", file: "c.json", content: `{"covariance":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.file, tt.content)
			_, err := ParseCovariance(path)
			assert.Error(t, err)
		})
	}
}

func TestParseHistory_CSV(t *testing.T) {
	path := writeTemp(t, "history.csv", "0.01,0.02\n0.03,-0.01\n-0.02,0.04\n")

	parsed, err := ParseHistory(path)
	require.NoError(t, err)
	require.Len(t, parsed.History, 3)
	assert.Equal(t, []float64{0.01, 0.02}, parsed.History[0])
	assert.Equal(t, []float64{-0.02, 0.04}, parsed.History[2])
	assert.Empty(t, parsed.Labels)
}

func TestParseHistory_CSVWithHeader(t *testing.T) {
	path := writeTemp(t, "history.csv", "AAA,BBB\n0.01,0.02\n0.03,-0.01\n")

	parsed, err := ParseHistory(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, parsed.Labels)
	require.Len(t, parsed.History, 2)
}

func TestParseHistory_JSON(t *testing.T) {
	path := writeTemp(t, "history.json", `{"history":[[0.01,0.02],[0.03,-0.01]],"labels":["AAA","BBB"]}`)

	parsed, err := ParseHistory(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, parsed.Labels)
	assert.Equal(t, -0.01, parsed.History[1][1])
}

func TestParseHistory_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "empty csv", file: "h.csv", content: ""},
		{name: "ragged rows", file: "h.csv", content: "0.01,0.02\n0.03\n"},
		{name: "non-numeric body row", file: "h.csv", content: "0.01,0.02\nabc,0.04\n"},
		{name: "label count mismatch", file: "h.json", content: `{"history":[[0.01,0.02]],"labels":["A"]}`},
		{name: "empty history", file: "h.json", content: `{"history":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.file, tt.content)
			_, err := ParseHistory(path)
			assert.Error(t, err)
		})
	}
}

func TestParseViews(t *testing.T) {
	path := writeTemp(t, "views.json", `[
		{"assets":[1,0],"return":0.10,"confidence":0.8},
		{"assets":[1,-1],"return":0.05,"confidence":0.5}
	]`)

	views, err := ParseViews(path, 2)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 0.10, views[0].ExpectedReturn)
	assert.Equal(t, 0.8, views[0].Confidence)
	assert.Equal(t, -1.0, views[1].Assets[1])
}

func TestParseViews_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		numAssets int
	}{
		{name: "wrong asset count", content: `[{"assets":[1,0,0],"return":0.1,"confidence":0.5}]`, numAssets: 2},
		{name: "invalid confidence", content: `[{"assets":[1,0],"return":0.1,"confidence":1.5}]`, numAssets: 2},
		{name: "empty array", content: `[]`, numAssets: 2},
		{name: "malformed json", content: `{`, numAssets: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "views.json", tt.content)
			_, err := ParseViews(path, tt.numAssets)
			assert.Error(t, err)
		})
	}
}
