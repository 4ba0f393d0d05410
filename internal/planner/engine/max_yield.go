package engine

import (
	"context"
	"fmt"

	"github.com/rsned/geode-planner/internal/planner/blueprint"
	"github.com/rsned/geode-planner/pkg/planner"
)

// MaxYield executes the max_yield tool logic for one stored or inline blueprint.
func (e *Engine) MaxYield(ctx context.Context, req planner.MaxYieldRequest) (*planner.MaxYieldResponse, error) {
	if err := e.validateHorizon(req.Horizon); err != nil {
		return nil, err
	}

	var bp planner.Blueprint
	if req.Blueprint != "" {
		parsed, err := blueprint.ParseLine(req.Blueprint)
		if err != nil {
			return nil, err
		}
		bp = parsed
	} else {
		stored, err := e.blueprints.GetBlueprint(ctx, req.BlueprintID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, fmt.Errorf("%w: %d", ErrBlueprintNotFound, req.BlueprintID)
		}
		bp = *stored
	}

	return &planner.MaxYieldResponse{Result: e.solve(bp, req.Horizon)}, nil
}
