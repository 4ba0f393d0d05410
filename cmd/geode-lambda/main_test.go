package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/geode-planner/internal/planner/blueprint"
	"github.com/rsned/geode-planner/internal/planner/engine"
	"github.com/rsned/geode-planner/internal/planner/sync"
	"github.com/rsned/geode-planner/pkg/planner"
)

const exampleInput = "Blueprint 1: Each ore robot costs 4 ore. Each clay robot costs 2 ore. Each obsidian robot costs 3 ore and 14 clay. Each geode robot costs 2 ore and 7 obsidian.\n" +
	"Blueprint 2: Each ore robot costs 2 ore. Each clay robot costs 3 ore. Each obsidian robot costs 3 ore and 8 clay. Each geode robot costs 3 ore and 12 obsidian."

func invoke(t *testing.T, body string, b64 bool) events.LambdaFunctionURLResponse {
	t.Helper()
	if b64 {
		body = base64.StdEncoding.EncodeToString([]byte(body))
	}
	resp, err := handler(context.Background(), events.LambdaFunctionURLRequest{Body: body, IsBase64Encoded: b64})
	require.NoError(t, err)
	return resp
}

func TestHandlerQuality(t *testing.T) {
	body, err := json.Marshal(planRequest{Blueprints: exampleInput})
	require.NoError(t, err)

	resp := invoke(t, string(body), true)
	require.Equal(t, 200, resp.StatusCode, resp.Body)

	var got planner.QualityLevelResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &got))
	assert.Equal(t, int64(33), got.Total)
}

func TestHandlerProduct(t *testing.T) {
	body, err := json.Marshal(planRequest{Blueprints: exampleInput, Mode: "product", Horizon: 24, Count: 2})
	require.NoError(t, err)

	resp := invoke(t, string(body), false)
	require.Equal(t, 200, resp.StatusCode, resp.Body)

	var got planner.TopProductResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &got))
	assert.Equal(t, int64(9*12), got.Product)
	assert.Contains(t, got.Selection, "lowest")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, statusFor(fmt.Errorf("decoding: %w", sync.ErrInvalidJSON)))
	assert.Equal(t, 400, statusFor(&blueprint.ParseError{Record: 1, Err: blueprint.ErrMalformedBlueprint}))
	assert.Equal(t, 400, statusFor(engine.ErrInvalidHorizon))
	assert.Equal(t, 500, statusFor(fmt.Errorf("inserting blueprints: %w", errors.New("database is locked"))))

	resp, err := failure(errors.New("disk I/O error"))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.NotContains(t, resp.Body, "disk")
}

func TestHandlerBadRequests(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"missing blueprint": `{"mode":"quality"}`,
		"malformed":         `{"blueprints":"Blueprint 1: nope"}`,
		"unknown mode":      `{"blueprints":"` + "Blueprint 1: Each ore robot costs 4 ore. Each clay robot costs 2 ore. Each obsidian robot costs 3 ore and 14 clay. Each geode robot costs 2 ore and 7 obsidian." + `","mode":"fastest"}`,
		"horizon too large": `{"blueprints":"` + "Blueprint 1: Each ore robot costs 4 ore. Each clay robot costs 2 ore. Each obsidian robot costs 3 ore and 14 clay. Each geode robot costs 2 ore and 7 obsidian." + `","horizon":1000}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := invoke(t, body, false)
			assert.Equal(t, 400, resp.StatusCode, resp.Body)
			assert.Contains(t, resp.Body, `"error"`)
		})
	}
}
