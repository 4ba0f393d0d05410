// Package sync handles importing blueprint files into the store.
package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rsned/geode-planner/internal/planner/blueprint"
	"github.com/rsned/geode-planner/internal/planner/db"
	"github.com/rsned/geode-planner/pkg/planner"
)

// ErrInvalidJSON is returned for JSON input that cannot be decoded.
var ErrInvalidJSON = errors.New("invalid blueprint JSON")

// Syncer handles blueprint imports.
type Syncer struct {
	db *db.DB
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB) *Syncer {
	return &Syncer{db: database}
}

// ImportBlueprintsFromFile imports blueprints from a text or JSON file,
// dropping everything stored before when replace is set.
func (s *Syncer) ImportBlueprintsFromFile(ctx context.Context, path string, replace bool) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if replace {
		return s.ReplaceBlueprints(ctx, data)
	}
	return s.ImportBlueprints(ctx, data)
}

// ImportBlueprints stores every blueprint in data and returns their ids.
// Input starting with '[' or '{' is decoded as JSON, anything else as
// blueprint text. Nothing is stored if any record is malformed.
func (s *Syncer) ImportBlueprints(ctx context.Context, data []byte) ([]int, error) {
	blueprints, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, blueprints)
}

// ReplaceBlueprints is ImportBlueprints after dropping every stored
// blueprint and evaluation run. Malformed input leaves the store untouched.
func (s *Syncer) ReplaceBlueprints(ctx context.Context, data []byte) ([]int, error) {
	blueprints, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if err := db.NewEvaluationStore(s.db).ClearEvaluations(ctx); err != nil {
		return nil, fmt.Errorf("clearing evaluations: %w", err)
	}
	if err := db.NewBlueprintStore(s.db).ClearBlueprints(ctx); err != nil {
		return nil, fmt.Errorf("clearing blueprints: %w", err)
	}
	return s.store(ctx, blueprints)
}

func (s *Syncer) store(ctx context.Context, blueprints []db.StoredBlueprint) ([]int, error) {
	store := db.NewBlueprintStore(s.db)
	if err := store.BulkInsertBlueprints(ctx, blueprints); err != nil {
		return nil, fmt.Errorf("inserting blueprints: %w", err)
	}

	// Update sync metadata
	if err := s.db.SetSyncMetadata(ctx, "blueprints_last_sync", time.Now().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := s.db.SetSyncMetadata(ctx, "blueprints_count", strconv.Itoa(len(blueprints))); err != nil {
		return nil, err
	}

	ids := make([]int, len(blueprints))
	for i, bp := range blueprints {
		ids[i] = bp.ID
	}
	return ids, nil
}

// Decode parses data as JSON or blueprint text without storing it.
func Decode(data []byte) ([]db.StoredBlueprint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return decodeJSON(trimmed)
	}

	bps, err := blueprint.Parse(string(data))
	if err != nil {
		return nil, err
	}

	stored := make([]db.StoredBlueprint, len(bps))
	for i, bp := range bps {
		stored[i] = db.StoredBlueprint{Blueprint: bp, SourceText: blueprint.Format(bp)}
	}
	return stored, nil
}

// decodeJSON accepts a single object or an array of objects of the form
//
//	{"id": 1, "robots": {"ore": {"ore": 4}, "obsidian": {"ore": 3, "clay": 14}, ...}}
//
// "number" is accepted for "id" and "costs" for "robots". An object may
// instead carry the record text under "text".
func decodeJSON(data []byte) ([]db.StoredBlueprint, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed document", ErrInvalidJSON)
	}

	root := gjson.ParseBytes(data)
	items := []gjson.Result{root}
	if root.IsArray() {
		items = root.Array()
	}

	var out []db.StoredBlueprint
	for i, item := range items {
		bp, err := decodeJSONBlueprint(item)
		if err != nil {
			return nil, fmt.Errorf("blueprint %d: %w", i+1, err)
		}
		out = append(out, db.StoredBlueprint{Blueprint: bp, SourceText: blueprint.Format(bp)})
	}
	return out, nil
}

func decodeJSONBlueprint(item gjson.Result) (planner.Blueprint, error) {
	if !item.IsObject() {
		return planner.Blueprint{}, fmt.Errorf("%w: expected object, got %s", ErrInvalidJSON, item.Type)
	}

	if text := item.Get("text"); text.Exists() {
		return blueprint.ParseLine(text.String())
	}

	var bp planner.Blueprint
	id := item.Get("id")
	if !id.Exists() {
		id = item.Get("number")
	}
	if id.Type != gjson.Number {
		return bp, fmt.Errorf("%w: missing numeric id", ErrInvalidJSON)
	}
	if !isWholeInRange(id, math.MaxInt32) {
		return bp, fmt.Errorf("%w: bad id %s", ErrInvalidJSON, id.Raw)
	}
	bp.ID = int(id.Int())

	robots := item.Get("robots")
	if !robots.Exists() {
		robots = item.Get("costs")
	}
	if !robots.IsObject() {
		return bp, fmt.Errorf("%w: missing robots object", ErrInvalidJSON)
	}

	var decodeErr error
	robots.ForEach(func(robotKey, cost gjson.Result) bool {
		robot, err := planner.ParseResource(robotKey.String())
		if err != nil {
			decodeErr = fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			return false
		}
		cost.ForEach(func(inputKey, qty gjson.Result) bool {
			input, err := planner.ParseResource(inputKey.String())
			if err != nil {
				decodeErr = fmt.Errorf("%w: %s robot: %v", ErrInvalidJSON, robot, err)
				return false
			}
			if qty.Type != gjson.Number || !isWholeInRange(qty, planner.MaxQuantity) {
				decodeErr = fmt.Errorf("%w: %s robot: bad %s quantity %s", ErrInvalidJSON, robot, input, qty.Raw)
				return false
			}
			bp.Costs[robot][input] = qty.Int()
			return true
		})
		return decodeErr == nil
	})
	if decodeErr != nil {
		return bp, decodeErr
	}

	return bp, nil
}

// isWholeInRange reports whether a JSON number is an integer in [0, limit].
func isWholeInRange(v gjson.Result, limit int64) bool {
	if v.Num < 0 || v.Num > float64(limit) {
		return false
	}
	return v.Num == float64(v.Int())
}
