package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/geode-planner/internal/planner/db"
	"github.com/rsned/geode-planner/internal/planner/engine"
	"github.com/rsned/geode-planner/pkg/planner"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 3, 1,2 ")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, ids)

	ids, err = parseIDs("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseIDs("1,x")
	require.Error(t, err)
}

func TestReportTable(t *testing.T) {
	results := []planner.BlueprintYield{
		{BlueprintID: 1, Horizon: 24, Yield: 9, Nodes: 12345, Pruned: 1000},
		{BlueprintID: 2, Horizon: 24, Yield: 12, Cached: true},
	}

	var out bytes.Buffer
	require.NoError(t, report(&out, false, nil, results, "quality level", 33))
	text := out.String()
	assert.Contains(t, text, "12,345")
	assert.Contains(t, text, "cached")
	assert.Contains(t, text, "quality level: 33")

	out.Reset()
	require.NoError(t, report(&out, false, nil, nil, "run abc score", 108))
	assert.Equal(t, "run abc score: 108\n", out.String())
}

func TestRunImportAndQuality(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(input, []byte(
		"Blueprint 1: Each ore robot costs 4 ore. Each clay robot costs 2 ore. Each obsidian robot costs 3 ore and 14 clay. Each geode robot costs 2 ore and 7 obsidian.\n"), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(context.Background(), logger, options{
		dbPath:     filepath.Join(dir, "planner.db"),
		importFile: input,
		mode:       "quality",
		workers:    1,
		maxHorizon: 40,
		asJSON:     true,
	})
	require.NoError(t, err)

	// The recorded run can be read back by id.
	database, err := db.OpenAndInit(context.Background(), filepath.Join(dir, "planner.db"))
	require.NoError(t, err)
	recs, err := db.NewEvaluationStore(database).ListResults(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, database.Close())
	require.Len(t, recs, 1)

	err = run(context.Background(), logger, options{
		dbPath:     filepath.Join(dir, "planner.db"),
		mode:       "score",
		runID:      recs[0].RunID,
		workers:    1,
		maxHorizon: 40,
	})
	require.NoError(t, err)

	// Replacing the blueprints drops the run.
	err = run(context.Background(), logger, options{
		dbPath:     filepath.Join(dir, "planner.db"),
		importFile: input,
		replace:    true,
		mode:       "score",
		runID:      recs[0].RunID,
		workers:    1,
		maxHorizon: 40,
	})
	require.ErrorIs(t, err, engine.ErrRunNotFound)

	err = run(context.Background(), logger, options{
		dbPath:     filepath.Join(dir, "planner.db"),
		mode:       "bogus",
		workers:    1,
		maxHorizon: 40,
	})
	require.Error(t, err)
}
