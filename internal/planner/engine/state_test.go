package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/geode-planner/internal/planner/engine"
	"github.com/rsned/geode-planner/pkg/planner"
)

func TestNewState(t *testing.T) {
	s := engine.NewState()
	assert.Equal(t, int64(1), s.Rate[planner.Base])
	assert.Zero(t, s.Elapsed)
	assert.Equal(t, [planner.NumResources]int64{}, s.Stock)
}

func TestTicksUntilAffordable(t *testing.T) {
	s := engine.NewState()

	w, ok := s.TicksUntilAffordable(planner.Cost{4, 0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, 4, w)

	w, ok = s.TicksUntilAffordable(planner.Cost{})
	require.True(t, ok)
	assert.Zero(t, w)

	// Clay is short and nothing produces it.
	_, ok = s.TicksUntilAffordable(planner.Cost{3, 14, 0, 0})
	assert.False(t, ok)

	s.Rate[planner.Clay] = 3
	s.Stock[planner.Clay] = 2
	s.Stock[planner.Ore] = 10
	w, ok = s.TicksUntilAffordable(planner.Cost{3, 14, 0, 0})
	require.True(t, ok)
	assert.Equal(t, 4, w, "ceil((14-2)/3)")

	// Enough stock needs no production, even at zero rate.
	s.Stock[planner.Obsidian] = 7
	w, ok = s.TicksUntilAffordable(planner.Cost{2, 0, 7, 0})
	require.True(t, ok)
	assert.Zero(t, w)
	assert.True(t, s.StockSufficientFor(planner.Cost{2, 0, 7, 0}))
	assert.False(t, s.StockSufficientFor(planner.Cost{2, 0, 8, 0}))
}

func TestAdvanceAndCommitAreValues(t *testing.T) {
	s := engine.NewState()

	next := s.Advance(3)
	assert.Equal(t, int64(3), next.Stock[planner.Ore])
	assert.Equal(t, 3, next.Elapsed)
	assert.Zero(t, s.Stock[planner.Ore], "Advance must not mutate the receiver")

	built := next.CommitBuild(planner.Clay, planner.Cost{2, 0, 0, 0})
	assert.Equal(t, int64(1), built.Stock[planner.Ore])
	assert.Equal(t, int64(1), built.Rate[planner.Clay])
	assert.Zero(t, next.Rate[planner.Clay], "CommitBuild must not mutate the receiver")
}

func TestTargetYieldAtHorizon(t *testing.T) {
	s := engine.NewState()
	s.Elapsed = 20
	s.Stock[planner.Target] = 5
	s.Rate[planner.Target] = 2

	assert.Equal(t, int64(13), s.TargetYieldAtHorizon(24))
	assert.Equal(t, int64(5), s.TargetYieldAtHorizon(20))
	assert.Equal(t, int64(5), s.TargetYieldAtHorizon(10))
}

// A build completing in tick n only produces from tick n+1.
func TestBuildTickTiming(t *testing.T) {
	s := engine.NewState()
	s.Stock[planner.Ore] = 2

	// Build a clay producer in tick 1.
	s = s.Advance(1).CommitBuild(planner.Clay, planner.Cost{2, 0, 0, 0})
	assert.Zero(t, s.Stock[planner.Clay], "no clay from the build tick itself")
	assert.Equal(t, int64(1), s.Stock[planner.Ore])

	s = s.Advance(1)
	assert.Equal(t, int64(1), s.Stock[planner.Clay])
}

func TestTicksUntilAffordableHugeCost(t *testing.T) {
	s := engine.NewState()
	s.Rate[planner.Ore] = 3

	w, ok := s.TicksUntilAffordable(planner.Cost{math.MaxInt64, 0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, int(math.MaxInt64/3+1), w, "ceil(MaxInt64/3) without wrapping")

	s.Stock[planner.Ore] = 5
	w, ok = s.TicksUntilAffordable(planner.Cost{math.MaxInt64, 0, 0, 0})
	require.True(t, ok)
	assert.Positive(t, w)

	w, ok = s.TicksUntilAffordable(planner.Cost{6, 0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, 1, w)
}
