package optimization

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/orbat/internal/database"
)

// RunRepository persists optimization runs.
type RunRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *database.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With().Str("component", "run_repository").Logger(),
	}
}

// Save stores a run.
func (r *RunRepository) Save(run *Run) error {
	weights, err := json.Marshal([]float64(run.Result.Weights))
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	labels := []byte("[]")
	if len(run.Labels) > 0 {
		labels, err = json.Marshal(run.Labels)
		if err != nil {
			return fmt.Errorf("failed to encode labels: %w", err)
		}
	}

	_, err = r.db.Exec(`
		INSERT INTO optimization_runs
			(uuid, method, num_assets, converged, message, expected_return, risk, sharpe_ratio, weights_json, labels_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Method,
		run.NumAssets,
		boolToInt(run.Result.Converged),
		run.Result.Message,
		run.Result.ExpectedReturn,
		run.Result.Risk,
		run.Result.SharpeRatio,
		string(weights),
		string(labels),
		run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save optimization run: %w", err)
	}

	r.log.Debug().Str("uuid", run.ID).Str("method", run.Method).Msg("Optimization run saved")
	return nil
}

// Get returns a run by its UUID, or nil when it does not exist.
func (r *RunRepository) Get(id string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT uuid, method, num_assets, converged, message, expected_return, risk, sharpe_ratio, weights_json, labels_json, created_at
		FROM optimization_runs
		WHERE uuid = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load optimization run: %w", err)
	}
	return run, nil
}

// ListRecent returns the most recent runs, newest first.
func (r *RunRepository) ListRecent(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT uuid, method, num_assets, converged, message, expected_return, risk, sharpe_ratio, weights_json, labels_json, created_at
		FROM optimization_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		converged int
		weights   string
		labels    string
		createdAt string
	)

	err := row.Scan(
		&run.ID,
		&run.Method,
		&run.NumAssets,
		&converged,
		&run.Result.Message,
		&run.Result.ExpectedReturn,
		&run.Result.Risk,
		&run.Result.SharpeRatio,
		&weights,
		&labels,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.Result.Converged = converged != 0

	var ws []float64
	if err := json.Unmarshal([]byte(weights), &ws); err != nil {
		return nil, fmt.Errorf("corrupt weights for run %s: %w", run.ID, err)
	}
	run.Result.Weights = ws

	if err := json.Unmarshal([]byte(labels), &run.Labels); err != nil {
		return nil, fmt.Errorf("corrupt labels for run %s: %w", run.ID, err)
	}

	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at for run %s: %w", run.ID, err)
	}
	run.CreatedAt = created
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
