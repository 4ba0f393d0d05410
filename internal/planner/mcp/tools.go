package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rsned/geode-planner/internal/planner/engine"
	"github.com/rsned/geode-planner/pkg/planner"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Default     any       `json:"default,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Minimum     *float64  `json:"minimum,omitempty"`
	Maximum     *float64  `json:"maximum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// GetToolDefinitions returns all tool definitions. maxHorizon bounds the
// advertised horizon parameters.
func GetToolDefinitions(maxHorizon int) []ToolDefinition {
	return []ToolDefinition{
		maxYieldTool(maxHorizon),
		qualityLevelTool(maxHorizon),
		topProductTool(maxHorizon),
		evaluateBlueprintsTool(maxHorizon),
		blueprintLookupTool(),
		importBlueprintsTool(),
		runScoreTool(),
	}
}

func horizonProperty(maxHorizon int, description string) Property {
	minH := 0.0
	maxH := float64(maxHorizon)
	return Property{
		Type:        "integer",
		Description: description,
		Minimum:     &minH,
		Maximum:     &maxH,
	}
}

func maxYieldTool(maxHorizon int) ToolDefinition {
	return ToolDefinition{
		Name:        "max_yield",
		Description: "Find the most geodes one blueprint can crack within a horizon. Returns the yield and one optimal build plan.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"blueprint_id": {
					Type:        "integer",
					Description: "ID of a stored blueprint",
				},
				"blueprint": {
					Type:        "string",
					Description: "Inline blueprint record text (alternative to blueprint_id)",
				},
				"horizon": horizonProperty(maxHorizon, "Number of minutes to simulate"),
			},
			Required: []string{"horizon"},
		},
	}
}

func (s *Server) toolMaxYield(ctx context.Context, args json.RawMessage) (any, error) {
	var req planner.MaxYieldRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.MaxYield(ctx, req)
}

func qualityLevelTool(maxHorizon int) ToolDefinition {
	return ToolDefinition{
		Name:        "quality_level",
		Description: "Sum blueprint id times best geode yield over every stored blueprint.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"horizon": horizonProperty(maxHorizon, "Number of minutes to simulate (default 24)"),
			},
		},
	}
}

func (s *Server) toolQualityLevel(ctx context.Context, args json.RawMessage) (any, error) {
	var req planner.QualityLevelRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.QualityLevel(ctx, req)
}

func topProductTool(maxHorizon int) ToolDefinition {
	minCount := 1.0

	return ToolDefinition{
		Name:        "top_product",
		Description: "Multiply the best geode yields of the stored blueprints with the lowest IDs. Selection is by ID, not by import order, and a repeated ID keeps only its latest record.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"horizon": horizonProperty(maxHorizon, "Number of minutes to simulate (default 32)"),
				"count": {
					Type:        "integer",
					Description: "How many blueprints to include",
					Default:     3,
					Minimum:     &minCount,
				},
			},
		},
	}
}

func (s *Server) toolTopProduct(ctx context.Context, args json.RawMessage) (any, error) {
	var req planner.TopProductRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.TopProduct(ctx, req)
}

func evaluateBlueprintsTool(maxHorizon int) ToolDefinition {
	return ToolDefinition{
		Name:        "evaluate_blueprints",
		Description: "Compute the best geode yield for each listed blueprint (all stored blueprints when none are listed) and record the run.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"blueprint_ids": {
					Type:        "array",
					Description: "Blueprint IDs to evaluate",
					Items:       &Property{Type: "integer"},
				},
				"horizon": horizonProperty(maxHorizon, "Number of minutes to simulate"),
				"mode": {
					Type:        "string",
					Description: "Label stored with the run",
					Default:     engine.ModeEvaluate,
				},
			},
			Required: []string{"horizon"},
		},
	}
}

func (s *Server) toolEvaluateBlueprints(ctx context.Context, args json.RawMessage) (any, error) {
	var req planner.EvaluateRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.Evaluate(ctx, req)
}

func blueprintLookupTool() ToolDefinition {
	return ToolDefinition{
		Name:        "blueprint_lookup",
		Description: "Look up a stored blueprint. Returns its recipes, the most of each resource any recipe consumes, and earlier evaluation results.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"blueprint_id": {
					Type:        "integer",
					Description: "Blueprint ID to look up",
				},
			},
			Required: []string{"blueprint_id"},
		},
	}
}

func (s *Server) toolBlueprintLookup(ctx context.Context, args json.RawMessage) (any, error) {
	var req planner.BlueprintLookupRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.BlueprintLookup(ctx, req)
}

func importBlueprintsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "import_blueprints",
		Description: "Store blueprints given as record text or JSON. Blueprints with existing IDs are replaced.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"text": {
					Type:        "string",
					Description: "Blueprint records, one or more",
				},
				"replace": {
					Type:        "boolean",
					Description: "Drop all stored blueprints and evaluation runs first",
					Default:     false,
				},
			},
			Required: []string{"text"},
		},
	}
}

func (s *Server) toolImportBlueprints(ctx context.Context, args json.RawMessage) (any, error) {
	if s.syncer == nil {
		return nil, errors.New("imports are disabled on this server")
	}

	var req planner.ImportBlueprintsRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}

	importFn := s.syncer.ImportBlueprints
	if req.Replace {
		importFn = s.syncer.ReplaceBlueprints
	}
	ids, err := importFn(ctx, []byte(req.Text))
	if err != nil {
		return nil, fmt.Errorf("importing blueprints: %w", err)
	}
	return planner.ImportBlueprintsResponse{Imported: len(ids), BlueprintIDs: ids}, nil
}

func runScoreTool() ToolDefinition {
	return ToolDefinition{
		Name:        "run_score",
		Description: "Return the aggregate score recorded for an earlier evaluation run.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"run_id": {
					Type:        "string",
					Description: "Run ID from a previous result's stats",
				},
			},
			Required: []string{"run_id"},
		},
	}
}

func (s *Server) toolRunScore(ctx context.Context, args json.RawMessage) (any, error) {
	var req planner.RunScoreRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.RunScore(ctx, req)
}
