// Package trace records per-tick cogxel activations to a SQLite database
// for later inspection and export.
package trace

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/cogsim/internal/state"
)

// Sample is a single recorded activation.
type Sample struct {
	Tick       int64
	Scenario   string
	Label      string
	Activation float64
}

// Recorder writes cogxel activations to a SQLite trace database.
// Each Recorder covers one run, identified by a UUID.
type Recorder struct {
	mu    sync.Mutex
	db    *sql.DB
	runID string
}

// NewRecorder opens (or creates) the trace database at path and starts
// a new run.
func NewRecorder(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	runID := uuid.NewString()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	return &Recorder{db: db, runID: runID}, nil
}

// RunID returns the identifier of the current run.
func (r *Recorder) RunID() string { return r.runID }

// RecordTick stores all activations of cs for the given tick under the
// named scenario. Activations are written in a single transaction.
func (r *Recorder) RecordTick(ctx context.Context, tick int64, scenario string, cs *state.CogxelState) error {
	if cs == nil {
		return nil
	}
	activations := make(map[string]float64, cs.Len())
	for _, c := range cs.Cogxels() {
		activations[string(c.Identifier().Label())] = c.Activation()
	}
	return r.RecordActivations(ctx, tick, scenario, activations)
}

// RecordActivations stores a label-to-activation snapshot for the given
// tick and scenario in a single transaction. Samples from different
// scenarios never overwrite each other, even at the same tick and label.
func (r *Recorder) RecordActivations(ctx context.Context, tick int64, scenario string, activations map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO activations (run_id, tick, scenario, label, activation) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for label, activation := range activations {
		if _, err := stmt.ExecContext(ctx, r.runID, tick, scenario, label, activation); err != nil {
			return fmt.Errorf("failed to insert activation: %w", err)
		}
	}

	return tx.Commit()
}

// Samples returns all recorded activations of the current run in
// (tick, scenario, label) order.
func (r *Recorder) Samples(ctx context.Context) ([]Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT tick, scenario, label, activation FROM activations WHERE run_id = ? ORDER BY tick, scenario, label`,
		r.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activations: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.Tick, &s.Scenario, &s.Label, &s.Activation); err != nil {
			return nil, fmt.Errorf("failed to scan activation: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// History returns the activation of one label across ticks, in
// (tick, scenario) order.
func (r *Recorder) History(ctx context.Context, label string) ([]Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT tick, scenario, label, activation FROM activations WHERE run_id = ? AND label = ? ORDER BY tick, scenario`,
		r.runID, label)
	if err != nil {
		return nil, fmt.Errorf("failed to query activations: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.Tick, &s.Scenario, &s.Label, &s.Activation); err != nil {
			return nil, fmt.Errorf("failed to scan activation: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// ReadLatestRun opens an existing trace database and returns the run ID and
// samples of the most recently started run.
func ReadLatestRun(path string) (string, []Sample, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return "", nil, fmt.Errorf("failed to open trace database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()

	var runID string
	err = db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&runID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find latest run: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT tick, scenario, label, activation FROM activations WHERE run_id = ? ORDER BY tick, scenario, label`,
		runID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to query activations: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.Tick, &s.Scenario, &s.Label, &s.Activation); err != nil {
			return "", nil, fmt.Errorf("failed to scan activation: %w", err)
		}
		samples = append(samples, s)
	}
	return runID, samples, rows.Err()
}

// Close marks the run finished and closes the database.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}

	_, err := r.db.Exec(`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), r.runID)
	closeErr := r.db.Close()
	r.db = nil

	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return closeErr
}
