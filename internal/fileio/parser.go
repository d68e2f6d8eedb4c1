// Package fileio loads optimizer inputs from disk. Expected returns,
// covariance matrices, and return histories are accepted as either CSV or
// JSON; investor views are JSON only. The format is picked by file
// extension, with anything that is not .json treated as CSV.
package fileio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aristath/orbat/pkg/optimizer"
)

// ReturnsFile holds parsed expected returns plus optional asset labels.
type ReturnsFile struct {
	Returns []float64
	Labels  []string
}

// CovarianceFile holds a parsed covariance matrix plus optional asset labels.
type CovarianceFile struct {
	Covariance [][]float64
	Labels     []string
}

// HistoryFile holds a parsed T×N return-history matrix (one period per row,
// one asset per column) plus optional asset labels.
type HistoryFile struct {
	History [][]float64
	Labels  []string
}

type returnsJSON struct {
	Returns []float64 `json:"returns"`
	Labels  []string  `json:"labels"`
}

type covarianceJSON struct {
	Covariance [][]float64 `json:"covariance"`
	Labels     []string    `json:"labels"`
}

type historyJSON struct {
	History [][]float64 `json:"history"`
	Labels  []string    `json:"labels"`
}

type viewJSON struct {
	Assets         []float64 `json:"assets"`
	ExpectedReturn float64   `json:"return"`
	Confidence     float64   `json:"confidence"`
}

// ParseReturns reads an expected-returns vector from path. JSON files may be
// a bare array of numbers or an object with "returns" and optional "labels";
// CSV files hold one value per row with an optional label in the first
// column.
func ParseReturns(path string) (*ReturnsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read returns file: %w", err)
	}

	if isJSON(path) {
		return parseReturnsJSON(data)
	}
	return parseReturnsCSV(data)
}

// ParseCovariance reads a covariance matrix from path. JSON files hold an
// object with "covariance" and optional "labels"; CSV files hold one matrix
// row per line, with an optional header row of labels.
func ParseCovariance(path string) (*CovarianceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read covariance file: %w", err)
	}

	if isJSON(path) {
		return parseCovarianceJSON(data)
	}
	return parseCovarianceCSV(data)
}

// ParseHistory reads a return-history matrix from path. JSON files hold an
// object with "history" and optional "labels"; CSV files hold one period per
// row, with an optional header row of asset labels.
func ParseHistory(path string) (*HistoryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if isJSON(path) {
		return parseHistoryJSON(data)
	}
	return parseHistoryCSV(data)
}

// ParseViews reads investor views from a JSON file holding an array of
// objects with "assets" (picking vector), "return" and "confidence".
func ParseViews(path string, numAssets int) ([]optimizer.View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read views file: %w", err)
	}

	var raw []viewJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse views file: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("views file contains no views")
	}

	views := make([]optimizer.View, 0, len(raw))
	for i, v := range raw {
		if len(v.Assets) != numAssets {
			return nil, fmt.Errorf("view %d has %d asset weights, want %d", i, len(v.Assets), numAssets)
		}
		view, err := optimizer.NewView(v.Assets, v.ExpectedReturn, v.Confidence)
		if err != nil {
			return nil, fmt.Errorf("view %d is invalid: %w", i, err)
		}
		views = append(views, view)
	}
	return views, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func parseReturnsJSON(data []byte) (*ReturnsFile, error) {
	// Bare arrays are accepted as a shorthand for {"returns": [...]}.
	var bare []float64
	if err := json.Unmarshal(data, &bare); err == nil {
		if len(bare) == 0 {
			return nil, fmt.Errorf("returns file contains no values")
		}
		return &ReturnsFile{Returns: bare}, nil
	}

	var obj returnsJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse returns file: %w", err)
	}
	if len(obj.Returns) == 0 {
		return nil, fmt.Errorf("returns file contains no values")
	}
	if len(obj.Labels) > 0 && len(obj.Labels) != len(obj.Returns) {
		return nil, fmt.Errorf("returns file has %d labels for %d values", len(obj.Labels), len(obj.Returns))
	}
	return &ReturnsFile{Returns: obj.Returns, Labels: obj.Labels}, nil
}

func parseReturnsCSV(data []byte) (*ReturnsFile, error) {
	records, err := readCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse returns file: %w", err)
	}

	out := &ReturnsFile{}
	dataCols := 0
	for i, record := range records {
		if len(record) != 1 && len(record) != 2 {
			return nil, fmt.Errorf("returns row %d has %d columns, want 1 or 2", i+1, len(record))
		}

		labeled := len(record) == 2
		v, err := parseFloat(record[len(record)-1])
		if err != nil {
			// A non-numeric first row is treated as a header.
			if i == 0 && labeled {
				continue
			}
			return nil, fmt.Errorf("returns row %d: %w", i+1, err)
		}

		// Data rows must all carry the same column count, otherwise
		// labels would silently misalign with values.
		if dataCols == 0 {
			dataCols = len(record)
		} else if len(record) != dataCols {
			return nil, fmt.Errorf("returns row %d has %d columns, want %d", i+1, len(record), dataCols)
		}

		if labeled {
			out.Labels = append(out.Labels, strings.TrimSpace(record[0]))
		}
		out.Returns = append(out.Returns, v)
	}
	if len(out.Returns) == 0 {
		return nil, fmt.Errorf("returns file contains no values")
	}
	return out, nil
}

func parseCovarianceJSON(data []byte) (*CovarianceFile, error) {
	var obj covarianceJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse covariance file: %w", err)
	}
	if len(obj.Covariance) == 0 {
		return nil, fmt.Errorf("covariance file contains no matrix")
	}
	if len(obj.Labels) > 0 && len(obj.Labels) != len(obj.Covariance) {
		return nil, fmt.Errorf("covariance file has %d labels for %d rows", len(obj.Labels), len(obj.Covariance))
	}
	return &CovarianceFile{Covariance: obj.Covariance, Labels: obj.Labels}, nil
}

func parseCovarianceCSV(data []byte) (*CovarianceFile, error) {
	records, err := readCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse covariance file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("covariance file contains no matrix")
	}

	out := &CovarianceFile{}
	for i, record := range records {
		row := make([]float64, 0, len(record))
		numeric := true
		for _, cell := range record {
			v, err := parseFloat(cell)
			if err != nil {
				numeric = false
				break
			}
			row = append(row, v)
		}
		if !numeric {
			// A non-numeric first row carries the asset labels.
			if i == 0 {
				for _, cell := range record {
					out.Labels = append(out.Labels, strings.TrimSpace(cell))
				}
				continue
			}
			return nil, fmt.Errorf("covariance row %d contains non-numeric values", i+1)
		}
		out.Covariance = append(out.Covariance, row)
	}
	if len(out.Covariance) == 0 {
		return nil, fmt.Errorf("covariance file contains no matrix")
	}
	if len(out.Labels) > 0 && len(out.Labels) != len(out.Covariance) {
		return nil, fmt.Errorf("covariance file has %d labels for %d rows", len(out.Labels), len(out.Covariance))
	}
	return out, nil
}

func parseHistoryJSON(data []byte) (*HistoryFile, error) {
	var obj historyJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	if len(obj.History) == 0 {
		return nil, fmt.Errorf("history file contains no periods")
	}
	if err := checkHistoryWidth(obj.History, len(obj.Labels)); err != nil {
		return nil, err
	}
	return &HistoryFile{History: obj.History, Labels: obj.Labels}, nil
}

func parseHistoryCSV(data []byte) (*HistoryFile, error) {
	records, err := readCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	out := &HistoryFile{}
	for i, record := range records {
		row := make([]float64, 0, len(record))
		numeric := true
		for _, cell := range record {
			v, err := parseFloat(cell)
			if err != nil {
				numeric = false
				break
			}
			row = append(row, v)
		}
		if !numeric {
			// A non-numeric first row carries the asset labels.
			if i == 0 {
				for _, cell := range record {
					out.Labels = append(out.Labels, strings.TrimSpace(cell))
				}
				continue
			}
			return nil, fmt.Errorf("history row %d contains non-numeric values", i+1)
		}
		out.History = append(out.History, row)
	}
	if len(out.History) == 0 {
		return nil, fmt.Errorf("history file contains no periods")
	}
	if err := checkHistoryWidth(out.History, len(out.Labels)); err != nil {
		return nil, err
	}
	return out, nil
}

func checkHistoryWidth(history [][]float64, numLabels int) error {
	width := len(history[0])
	if width == 0 {
		return fmt.Errorf("history rows cannot be empty")
	}
	for i, row := range history {
		if len(row) != width {
			return fmt.Errorf("history row %d has %d assets, want %d", i+1, len(row), width)
		}
	}
	if numLabels > 0 && numLabels != width {
		return fmt.Errorf("history file has %d labels for %d assets", numLabels, width)
	}
	return nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	// Drop blank lines.
	out := records[:0]
	for _, record := range records {
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", strings.TrimSpace(s))
	}
	return v, nil
}
