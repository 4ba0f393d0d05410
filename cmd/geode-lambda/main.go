// Geode Planner as an AWS Lambda function URL handler
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/rsned/geode-planner/internal/planner/blueprint"
	"github.com/rsned/geode-planner/internal/planner/config"
	"github.com/rsned/geode-planner/internal/planner/db"
	"github.com/rsned/geode-planner/internal/planner/engine"
	"github.com/rsned/geode-planner/internal/planner/sync"
	"github.com/rsned/geode-planner/pkg/planner"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type planRequest struct {
	Blueprints string `json:"blueprints"`
	Mode       string `json:"mode"`
	Horizon    int    `json:"horizon"`
	Count      int    `json:"count"`
}

var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req planRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}
	if req.Blueprints == "" {
		return errResp(400, "missing blueprints field")
	}

	// Each invocation gets its own store
	database, err := db.OpenAndInit(ctx, ":memory:")
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return errResp(500, "internal error")
	}
	defer func() { _ = database.Close() }()

	if _, err := sync.NewSyncer(database).ImportBlueprints(ctx, []byte(req.Blueprints)); err != nil {
		return failure(err)
	}

	cfg := config.Default()
	eng := engine.New(database, logger, cfg)

	var resp any
	switch req.Mode {
	case "", "quality":
		resp, err = eng.QualityLevel(ctx, planner.QualityLevelRequest{Horizon: req.Horizon})
	case "product":
		resp, err = eng.TopProduct(ctx, planner.TopProductRequest{Horizon: req.Horizon, Count: req.Count})
	default:
		return errResp(400, fmt.Sprintf("unknown mode %q", req.Mode))
	}
	if err != nil {
		return failure(err)
	}

	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

// failure reports caller mistakes as 400 and hides everything else behind 500.
func failure(err error) (events.LambdaFunctionURLResponse, error) {
	code := statusFor(err)
	if code == 500 {
		logger.Error("request failed", "error", err)
		return errResp(code, "internal error")
	}
	return errResp(code, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, blueprint.ErrMalformedBlueprint),
		errors.Is(err, sync.ErrInvalidJSON),
		errors.Is(err, engine.ErrInvalidHorizon),
		errors.Is(err, engine.ErrNoBlueprints):
		return 400
	default:
		return 500
	}
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
