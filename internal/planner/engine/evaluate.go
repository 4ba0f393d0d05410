package engine

import (
	"context"
	"time"

	"github.com/rsned/geode-planner/pkg/planner"
)

// TopProductSelection states which blueprints TopProduct multiplies.
const TopProductSelection = "lowest stored blueprint ids, not import order; a repeated id keeps only its latest record"

// Run modes recorded with each evaluation run.
const (
	ModeEvaluate = "evaluate"
	ModeQuality  = "quality"
	ModeProduct  = "product"
)

// Evaluate executes the evaluate_blueprints tool logic. The recorded score
// is the sum of yields.
func (e *Engine) Evaluate(ctx context.Context, req planner.EvaluateRequest) (*planner.EvaluateResponse, error) {
	startTime := time.Now()

	if err := e.validateHorizon(req.Horizon); err != nil {
		return nil, err
	}
	if req.Mode == "" {
		req.Mode = ModeEvaluate
	}

	blueprints, err := e.loadBlueprints(ctx, req.BlueprintIDs)
	if err != nil {
		return nil, err
	}

	results, err := e.solveAll(ctx, blueprints, req.Horizon)
	if err != nil {
		return nil, err
	}

	var score int64
	for _, r := range results {
		score += r.Yield
	}

	elapsed := time.Since(startTime)
	runID, err := e.record(ctx, req.Mode, req.Horizon, score, results, elapsed)
	if err != nil {
		return nil, err
	}

	return &planner.EvaluateResponse{
		Results: results,
		Stats:   runStats(runID, results, elapsed),
	}, nil
}

// QualityLevel executes the quality_level tool logic: the sum of
// id * yield over every stored blueprint. A zero horizon selects the
// configured default.
func (e *Engine) QualityLevel(ctx context.Context, req planner.QualityLevelRequest) (*planner.QualityLevelResponse, error) {
	startTime := time.Now()

	if req.Horizon == 0 {
		req.Horizon = e.cfg.QualityHorizon
	}
	if err := e.validateHorizon(req.Horizon); err != nil {
		return nil, err
	}

	blueprints, err := e.loadBlueprints(ctx, nil)
	if err != nil {
		return nil, err
	}

	results, err := e.solveAll(ctx, blueprints, req.Horizon)
	if err != nil {
		return nil, err
	}
	total := QualitySum(results)

	elapsed := time.Since(startTime)
	runID, err := e.record(ctx, ModeQuality, req.Horizon, total, results, elapsed)
	if err != nil {
		return nil, err
	}

	return &planner.QualityLevelResponse{
		Horizon: req.Horizon,
		Total:   total,
		Results: results,
		Stats:   runStats(runID, results, elapsed),
	}, nil
}

// TopProduct executes the top_product tool logic: the product of yields of
// the lowest-numbered blueprints. Zero fields select configured defaults.
func (e *Engine) TopProduct(ctx context.Context, req planner.TopProductRequest) (*planner.TopProductResponse, error) {
	startTime := time.Now()

	if req.Horizon == 0 {
		req.Horizon = e.cfg.ProductHorizon
	}
	if req.Count <= 0 {
		req.Count = e.cfg.ProductCount
	}
	if err := e.validateHorizon(req.Horizon); err != nil {
		return nil, err
	}

	blueprints, err := e.loadBlueprints(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(blueprints) > req.Count {
		blueprints = blueprints[:req.Count]
	}

	results, err := e.solveAll(ctx, blueprints, req.Horizon)
	if err != nil {
		return nil, err
	}
	product := Product(results)

	elapsed := time.Since(startTime)
	runID, err := e.record(ctx, ModeProduct, req.Horizon, product, results, elapsed)
	if err != nil {
		return nil, err
	}

	return &planner.TopProductResponse{
		Horizon:   req.Horizon,
		Count:     len(results),
		Selection: TopProductSelection,
		Product:   product,
		Results:   results,
		Stats:     runStats(runID, results, elapsed),
	}, nil
}
