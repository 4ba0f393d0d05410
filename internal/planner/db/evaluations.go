package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rsned/geode-planner/pkg/planner"
)

// EvaluationStore records evaluation runs and their per-blueprint results.
type EvaluationStore struct {
	db *DB
}

// NewEvaluationStore creates a new EvaluationStore.
func NewEvaluationStore(db *DB) *EvaluationStore {
	return &EvaluationStore{db: db}
}

// Run is one evaluation run to record.
type Run struct {
	ID       string // assigned by RecordRun when empty
	Mode     string
	Horizon  int
	Score    int64
	Duration time.Duration
	Results  []planner.BlueprintYield
}

// RecordRun stores a run and its results, returning the run ID.
func (s *EvaluationStore) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	err := s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO evaluation_runs (id, mode, horizon, score, duration_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, run.Mode, run.Horizon, run.Score, run.Duration.Milliseconds(),
			time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO evaluation_results (run_id, blueprint_id, yield, nodes, plan_json)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing result statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range run.Results {
			plan, err := json.Marshal(r.Plan)
			if err != nil {
				return fmt.Errorf("encoding plan for %d: %w", r.BlueprintID, err)
			}
			if _, err := stmt.ExecContext(ctx, run.ID, r.BlueprintID, r.Yield, r.Nodes, string(plan)); err != nil {
				return fmt.Errorf("inserting result for %d: %w", r.BlueprintID, err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return run.ID, nil
}

// ListResults returns the recorded results for a blueprint, newest first.
func (s *EvaluationStore) ListResults(ctx context.Context, blueprintID int) ([]planner.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, u.mode, r.blueprint_id, u.horizon, r.yield, u.created_at
		FROM evaluation_results r
		JOIN evaluation_runs u ON u.id = r.run_id
		WHERE r.blueprint_id = ?
		ORDER BY u.created_at DESC, u.rowid DESC
	`, blueprintID)
	if err != nil {
		return nil, fmt.Errorf("querying evaluation results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []planner.EvaluationRecord
	for rows.Next() {
		var rec planner.EvaluationRecord
		if err := rows.Scan(&rec.RunID, &rec.Mode, &rec.BlueprintID, &rec.Horizon, &rec.Yield, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning evaluation result: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetRunScore returns the recorded score of a run, or false if no such run exists.
func (s *EvaluationStore) GetRunScore(ctx context.Context, runID string) (int64, bool, error) {
	var score int64
	err := s.db.QueryRowContext(ctx, `SELECT score FROM evaluation_runs WHERE id = ?`, runID).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying run score: %w", err)
	}
	return score, true, nil
}

// ClearEvaluations removes all recorded runs.
func (s *EvaluationStore) ClearEvaluations(ctx context.Context) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM evaluation_results`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM evaluation_runs`); err != nil {
			return err
		}
		return nil
	})
}
