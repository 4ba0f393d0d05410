package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rsned/geode-planner/pkg/planner"
)

// BlueprintStore handles blueprint data access.
type BlueprintStore struct {
	db *DB
}

// NewBlueprintStore creates a new BlueprintStore.
func NewBlueprintStore(db *DB) *BlueprintStore {
	return &BlueprintStore{db: db}
}

// StoredBlueprint pairs a blueprint with the text it was imported from.
type StoredBlueprint struct {
	planner.Blueprint
	SourceText string
}

// GetBlueprint retrieves a single blueprint by ID with all its costs.
// Returns nil if the blueprint does not exist.
func (s *BlueprintStore) GetBlueprint(ctx context.Context, id int) (*planner.Blueprint, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM blueprints WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying blueprint: %w", err)
	}

	bp := &planner.Blueprint{ID: id}
	if err := s.loadCosts(ctx, bp); err != nil {
		return nil, err
	}
	return bp, nil
}

// loadCosts fills in the cost rows of bp.
func (s *BlueprintStore) loadCosts(ctx context.Context, bp *planner.Blueprint) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT robot, input, quantity
		FROM blueprint_costs
		WHERE blueprint_id = ?
	`, bp.ID)
	if err != nil {
		return fmt.Errorf("querying blueprint costs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var robot, input string
		var qty int64
		if err := rows.Scan(&robot, &input, &qty); err != nil {
			return fmt.Errorf("scanning cost: %w", err)
		}

		r, err := planner.ParseResource(robot)
		if err != nil {
			return fmt.Errorf("blueprint %d: %w", bp.ID, err)
		}
		in, err := planner.ParseResource(input)
		if err != nil {
			return fmt.Errorf("blueprint %d: %w", bp.ID, err)
		}
		bp.Costs[r][in] = qty
	}

	return rows.Err()
}

// ListBlueprints retrieves every blueprint ordered by ID.
func (s *BlueprintStore) ListBlueprints(ctx context.Context) ([]planner.Blueprint, error) {
	ids, err := s.GetAllBlueprintIDs(ctx)
	if err != nil {
		return nil, err
	}

	blueprints := make([]planner.Blueprint, 0, len(ids))
	for _, id := range ids {
		bp := planner.Blueprint{ID: id}
		if err := s.loadCosts(ctx, &bp); err != nil {
			return nil, fmt.Errorf("loading costs for %d: %w", id, err)
		}
		blueprints = append(blueprints, bp)
	}

	return blueprints, nil
}

// GetAllBlueprintIDs returns all blueprint IDs in ascending order.
func (s *BlueprintStore) GetAllBlueprintIDs(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM blueprints ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing all blueprints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning blueprint id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetSourceText returns the text a blueprint was imported from.
func (s *BlueprintStore) GetSourceText(ctx context.Context, id int) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT source_text FROM blueprints WHERE id = ?`, id).Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying source text: %w", err)
	}
	return text, nil
}

// CountBlueprints returns the total number of blueprints.
func (s *BlueprintStore) CountBlueprints(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blueprints`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting blueprints: %w", err)
	}
	return count, nil
}

// BulkInsertBlueprints inserts or replaces multiple blueprints in a transaction.
func (s *BlueprintStore) BulkInsertBlueprints(ctx context.Context, blueprints []StoredBlueprint) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		// Replacing a blueprint must drop its old cost rows first
		delStmt, err := tx.PrepareContext(ctx, `DELETE FROM blueprint_costs WHERE blueprint_id = ?`)
		if err != nil {
			return fmt.Errorf("preparing delete statement: %w", err)
		}
		defer func() { _ = delStmt.Close() }()

		bpStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO blueprints (id, source_text, imported_at)
			VALUES (?, ?, datetime('now'))
			ON CONFLICT(id) DO UPDATE SET
				source_text = excluded.source_text,
				imported_at = excluded.imported_at
		`)
		if err != nil {
			return fmt.Errorf("preparing blueprint statement: %w", err)
		}
		defer func() { _ = bpStmt.Close() }()

		costStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO blueprint_costs (blueprint_id, robot, input, quantity)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing cost statement: %w", err)
		}
		defer func() { _ = costStmt.Close() }()

		for _, bp := range blueprints {
			if _, err := bpStmt.ExecContext(ctx, bp.ID, bp.SourceText); err != nil {
				return fmt.Errorf("inserting blueprint %d: %w", bp.ID, err)
			}
			if _, err := delStmt.ExecContext(ctx, bp.ID); err != nil {
				return fmt.Errorf("clearing costs for %d: %w", bp.ID, err)
			}

			for robot, cost := range bp.Costs {
				for input, qty := range cost {
					if qty == 0 {
						continue
					}
					_, err := costStmt.ExecContext(ctx,
						bp.ID, planner.Resource(robot).String(), planner.Resource(input).String(), qty,
					)
					if err != nil {
						return fmt.Errorf("inserting cost for %d: %w", bp.ID, err)
					}
				}
			}
		}

		return nil
	})
}

// ClearBlueprints removes all blueprint data (for re-import).
func (s *BlueprintStore) ClearBlueprints(ctx context.Context) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		// Foreign keys will cascade delete costs
		_, err := tx.ExecContext(ctx, `DELETE FROM blueprints`)
		return err
	})
}
