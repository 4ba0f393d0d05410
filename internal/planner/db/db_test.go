package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rsned/geode-planner/internal/planner/db"
	"github.com/rsned/geode-planner/pkg/planner"
)

// StoreSuite runs the store tests against a fresh in-memory database.
type StoreSuite struct {
	suite.Suite
	ctx context.Context
	db  *db.DB
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	database, err := db.OpenAndInit(s.ctx, ":memory:")
	require.NoError(s.T(), err)
	s.db = database
}

func (s *StoreSuite) TearDownTest() {
	_ = s.db.Close()
}

func exampleBlueprints() []db.StoredBlueprint {
	var one, two planner.Blueprint
	one.ID = 1
	one.Costs[planner.Ore] = planner.Cost{4, 0, 0, 0}
	one.Costs[planner.Clay] = planner.Cost{2, 0, 0, 0}
	one.Costs[planner.Obsidian] = planner.Cost{3, 14, 0, 0}
	one.Costs[planner.Geode] = planner.Cost{2, 0, 7, 0}

	two.ID = 2
	two.Costs[planner.Ore] = planner.Cost{2, 0, 0, 0}
	two.Costs[planner.Clay] = planner.Cost{3, 0, 0, 0}
	two.Costs[planner.Obsidian] = planner.Cost{3, 8, 0, 0}
	two.Costs[planner.Geode] = planner.Cost{3, 0, 12, 0}

	return []db.StoredBlueprint{
		{Blueprint: two, SourceText: "two"},
		{Blueprint: one, SourceText: "one"},
	}
}

// TestBlueprintRoundTrip: inserted blueprints come back intact and ordered by id.
func (s *StoreSuite) TestBlueprintRoundTrip() {
	store := db.NewBlueprintStore(s.db)
	input := exampleBlueprints()
	require.NoError(s.T(), store.BulkInsertBlueprints(s.ctx, input))

	n, err := store.CountBlueprints(s.ctx)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, n)

	all, err := store.ListBlueprints(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 2)
	require.Equal(s.T(), input[1].Blueprint, all[0])
	require.Equal(s.T(), input[0].Blueprint, all[1])

	bp, err := store.GetBlueprint(s.ctx, 2)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), bp)
	require.Equal(s.T(), input[0].Blueprint, *bp)

	text, err := store.GetSourceText(s.ctx, 1)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "one", text)
}

// TestBlueprintMissing returns nil without an error.
func (s *StoreSuite) TestBlueprintMissing() {
	bp, err := db.NewBlueprintStore(s.db).GetBlueprint(s.ctx, 99)
	require.NoError(s.T(), err)
	require.Nil(s.T(), bp)
}

// TestBlueprintReplace drops cost rows that the new version no longer has.
func (s *StoreSuite) TestBlueprintReplace() {
	store := db.NewBlueprintStore(s.db)
	require.NoError(s.T(), store.BulkInsertBlueprints(s.ctx, exampleBlueprints()))

	var changed planner.Blueprint
	changed.ID = 1
	changed.Costs[planner.Ore] = planner.Cost{1, 0, 0, 0}
	require.NoError(s.T(), store.BulkInsertBlueprints(s.ctx, []db.StoredBlueprint{{Blueprint: changed}}))

	bp, err := store.GetBlueprint(s.ctx, 1)
	require.NoError(s.T(), err)
	require.Equal(s.T(), changed, *bp)

	require.NoError(s.T(), store.ClearBlueprints(s.ctx))
	n, err := store.CountBlueprints(s.ctx)
	require.NoError(s.T(), err)
	require.Zero(s.T(), n)
}

// TestRecordRun assigns an id and makes results visible per blueprint.
func (s *StoreSuite) TestRecordRun() {
	store := db.NewEvaluationStore(s.db)

	id, err := store.RecordRun(s.ctx, db.Run{
		Mode:     "quality",
		Horizon:  24,
		Score:    33,
		Duration: 15 * time.Millisecond,
		Results: []planner.BlueprintYield{
			{BlueprintID: 1, Horizon: 24, Yield: 9, Plan: []planner.Build{{Kind: planner.Clay, Tick: 3}}},
			{BlueprintID: 2, Horizon: 24, Yield: 12},
		},
	})
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), id)

	score, ok, err := store.GetRunScore(s.ctx, id)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	require.Equal(s.T(), int64(33), score)

	recs, err := store.ListResults(s.ctx, 2)
	require.NoError(s.T(), err)
	require.Len(s.T(), recs, 1)
	require.Equal(s.T(), id, recs[0].RunID)
	require.Equal(s.T(), "quality", recs[0].Mode)
	require.Equal(s.T(), int64(12), recs[0].Yield)

	require.NoError(s.T(), store.ClearEvaluations(s.ctx))
	_, ok, err = store.GetRunScore(s.ctx, id)
	require.NoError(s.T(), err)
	require.False(s.T(), ok)
}

// TestSyncMetadata upserts values.
func (s *StoreSuite) TestSyncMetadata() {
	v, err := s.db.GetSyncMetadata(s.ctx, "missing")
	require.NoError(s.T(), err)
	require.Empty(s.T(), v)

	require.NoError(s.T(), s.db.SetSyncMetadata(s.ctx, "k", "a"))
	require.NoError(s.T(), s.db.SetSyncMetadata(s.ctx, "k", "b"))
	v, err = s.db.GetSyncMetadata(s.ctx, "k")
	require.NoError(s.T(), err)
	require.Equal(s.T(), "b", v)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}
