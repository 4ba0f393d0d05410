package engine

import (
	"context"

	"github.com/rsned/geode-planner/internal/planner/blueprint"
	"github.com/rsned/geode-planner/pkg/planner"
)

// BlueprintLookup executes the blueprint_lookup tool logic.
func (e *Engine) BlueprintLookup(ctx context.Context, req planner.BlueprintLookupRequest) (*planner.BlueprintLookupResponse, error) {
	resp := &planner.BlueprintLookupResponse{}

	bp, err := e.blueprints.GetBlueprint(ctx, req.BlueprintID)
	if err != nil {
		return nil, err
	}
	if bp == nil {
		return resp, nil
	}
	resp.Blueprint = bp

	resp.SourceText, err = e.blueprints.GetSourceText(ctx, bp.ID)
	if err != nil {
		return nil, err
	}

	table := blueprint.NewTable(*bp)
	resp.Recipes = make(map[string]string, planner.NumResources)
	resp.MaxDemand = make(map[string]int64, planner.NumResources)
	for _, kind := range planner.AllResources() {
		resp.Recipes[kind.String()] = table.Cost(kind).String()
		if kind != planner.Target {
			resp.MaxDemand[kind.String()] = table.MaxDemand(kind)
		}
	}

	// Previous runs that included this blueprint
	evals, err := e.evaluations.ListResults(ctx, bp.ID)
	if err != nil {
		return nil, err
	}
	resp.Evaluations = evals

	return resp, nil
}
