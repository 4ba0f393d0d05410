// Package engine contains the production search and the query logic built
// on top of it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rsned/geode-planner/internal/planner/blueprint"
	"github.com/rsned/geode-planner/internal/planner/config"
	"github.com/rsned/geode-planner/internal/planner/db"
	"github.com/rsned/geode-planner/pkg/planner"
)

var (
	// ErrInvalidHorizon is returned for negative horizons or horizons above
	// the configured maximum.
	ErrInvalidHorizon = errors.New("invalid horizon")
	// ErrBlueprintNotFound is returned when a requested blueprint is not stored.
	ErrBlueprintNotFound = errors.New("blueprint not found")
	// ErrNoBlueprints is returned when a run has nothing to evaluate.
	ErrNoBlueprints = errors.New("no blueprints to evaluate")
	// ErrRunNotFound is returned when a requested evaluation run is not stored.
	ErrRunNotFound = errors.New("evaluation run not found")
)

// Engine is the main query engine for planning operations.
type Engine struct {
	blueprints  *db.BlueprintStore
	evaluations *db.EvaluationStore
	cfg         config.Config
	logger      *slog.Logger
	cache       *lru.Cache[cacheKey, Result]
}

// Results depend only on the costs and the horizon, not on the blueprint id.
type cacheKey struct {
	costs   [planner.NumResources]planner.Cost
	horizon int
}

// New creates a new Engine with the given database stores.
func New(database *db.DB, logger *slog.Logger, cfg config.Config) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	defaults := config.Default()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaults.CacheSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	// lru.New only fails for a non-positive size
	cache, _ := lru.New[cacheKey, Result](cfg.CacheSize)

	return &Engine{
		blueprints:  db.NewBlueprintStore(database),
		evaluations: db.NewEvaluationStore(database),
		cfg:         cfg,
		logger:      logger,
		cache:       cache,
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// validateHorizon checks a horizon against the configured limits.
func (e *Engine) validateHorizon(horizon int) error {
	if horizon < 0 || horizon > e.cfg.MaxHorizon {
		return fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidHorizon, horizon, e.cfg.MaxHorizon)
	}
	return nil
}

// solve searches one blueprint, consulting the result cache first.
func (e *Engine) solve(bp planner.Blueprint, horizon int) planner.BlueprintYield {
	key := cacheKey{costs: bp.Costs, horizon: horizon}

	res, cached := e.cache.Get(key)
	if !cached {
		start := time.Now()
		res = Search(blueprint.NewTable(bp), horizon, Options{})
		e.cache.Add(key, res)

		e.logger.Debug("blueprint solved",
			"blueprint", bp.ID,
			"horizon", horizon,
			"yield", res.Yield,
			"nodes", res.Nodes,
			"pruned", res.Pruned,
			"elapsed", time.Since(start),
		)
	}

	return planner.BlueprintYield{
		BlueprintID: bp.ID,
		Horizon:     horizon,
		Yield:       res.Yield,
		Plan:        append([]planner.Build(nil), res.Plan...),
		Nodes:       res.Nodes,
		Pruned:      res.Pruned,
		Cached:      cached,
	}
}

// solveAll searches independent blueprints concurrently. Results keep the
// order of blueprints.
func (e *Engine) solveAll(ctx context.Context, blueprints []planner.Blueprint, horizon int) ([]planner.BlueprintYield, error) {
	results := make([]planner.BlueprintYield, len(blueprints))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := range blueprints {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.solve(blueprints[i], horizon)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// runStats summarizes solved results.
func runStats(runID string, results []planner.BlueprintYield, elapsed time.Duration) planner.RunStats {
	stats := planner.RunStats{
		RunID:            runID,
		BlueprintsSolved: len(results),
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
	for _, r := range results {
		if r.Cached {
			stats.CacheHits++
		} else {
			stats.NodesVisited += r.Nodes
		}
	}
	return stats
}

// loadBlueprints fetches the given ids, or every stored blueprint when ids is empty.
func (e *Engine) loadBlueprints(ctx context.Context, ids []int) ([]planner.Blueprint, error) {
	if len(ids) == 0 {
		all, err := e.blueprints.ListBlueprints(ctx)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, ErrNoBlueprints
		}
		return all, nil
	}

	blueprints := make([]planner.Blueprint, 0, len(ids))
	for _, id := range ids {
		bp, err := e.blueprints.GetBlueprint(ctx, id)
		if err != nil {
			return nil, err
		}
		if bp == nil {
			return nil, fmt.Errorf("%w: %d", ErrBlueprintNotFound, id)
		}
		blueprints = append(blueprints, *bp)
	}
	return blueprints, nil
}

// record stores a finished run and logs it.
func (e *Engine) record(ctx context.Context, mode string, horizon int, score int64,
	results []planner.BlueprintYield, elapsed time.Duration) (string, error) {
	runID, err := e.evaluations.RecordRun(ctx, db.Run{
		Mode:     mode,
		Horizon:  horizon,
		Score:    score,
		Duration: elapsed,
		Results:  results,
	})
	if err != nil {
		return "", fmt.Errorf("recording %s run: %w", mode, err)
	}

	e.logger.Info("evaluation run recorded",
		"run", runID,
		"mode", mode,
		"horizon", horizon,
		"blueprints", len(results),
		"score", score,
	)
	return runID, nil
}
