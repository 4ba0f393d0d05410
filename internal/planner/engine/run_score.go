package engine

import (
	"context"
	"fmt"

	"github.com/rsned/geode-planner/pkg/planner"
)

// RunScore returns the aggregate score recorded for an earlier run.
func (e *Engine) RunScore(ctx context.Context, req planner.RunScoreRequest) (*planner.RunScoreResponse, error) {
	score, ok, err := e.evaluations.GetRunScore(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, req.RunID)
	}
	return &planner.RunScoreResponse{RunID: req.RunID, Score: score}, nil
}
