// Package planner contains the core types for the blueprint production planner.
package planner

import (
	"fmt"
	"strings"
)

// ============================================
// RESOURCE TYPES
// ============================================

// Resource is one kind of resource in the economy. Kinds are ordered by
// dependency tier: the base kind first, the target kind last.
type Resource int

const (
	Ore Resource = iota
	Clay
	Obsidian
	Geode

	NumResources = 4
)

// Base is produced by the starting producer. Target is the kind whose
// stock at the horizon is maximized.
const (
	Base   = Ore
	Target = Geode
)

var resourceNames = [NumResources]string{"ore", "clay", "obsidian", "geode"}

// AllResources returns every resource kind in tier order.
func AllResources() []Resource {
	return []Resource{Ore, Clay, Obsidian, Geode}
}

// String returns the lowercase name used in blueprint text.
func (r Resource) String() string {
	if r < 0 || int(r) >= NumResources {
		return fmt.Sprintf("resource(%d)", int(r))
	}
	return resourceNames[r]
}

// ParseResource converts a resource name (case-insensitive) to its kind.
func ParseResource(s string) (Resource, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range resourceNames {
		if s == name {
			return Resource(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Resource) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resource) UnmarshalText(b []byte) error {
	v, err := ParseResource(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ============================================
// BLUEPRINT TYPES
// ============================================

// Cost is the quantity of each prerequisite kind consumed to build one
// producer.
type Cost [NumResources]int64

// MaxQuantity is the largest accepted cost entry or blueprint id.
const MaxQuantity = 1<<32 - 1

// String renders the non-zero entries, e.g. "3 ore and 14 clay".
func (c Cost) String() string {
	var parts []string
	for i, q := range c {
		if q > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", q, Resource(i)))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, " and ")
}

// Blueprint is one recipe table: the cost of a producer of every kind.
type Blueprint struct {
	ID    int                `json:"id"`
	Costs [NumResources]Cost `json:"costs"`
}

// Cost returns the cost of building one producer of kind.
func (b Blueprint) Cost(kind Resource) Cost {
	return b.Costs[kind]
}

// Build is one committed producer build. Tick is the 1-based tick in which
// the build completes; the producer yields from Tick+1 on.
type Build struct {
	Kind Resource `json:"kind"`
	Tick int      `json:"tick"`
}

// ============================================
// QUERY RESULT TYPES
// ============================================

// BlueprintYield is the best target yield found for one blueprint.
type BlueprintYield struct {
	BlueprintID int     `json:"blueprint_id"`
	Horizon     int     `json:"horizon"`
	Yield       int64   `json:"yield"`
	Plan        []Build `json:"plan,omitempty"`
	Nodes       int64   `json:"nodes"`
	Pruned      int64   `json:"pruned"`
	Cached      bool    `json:"cached,omitempty"`
}

// EvaluationRecord is a stored per-blueprint result of an earlier run.
type EvaluationRecord struct {
	RunID       string `json:"run_id"`
	Mode        string `json:"mode"`
	BlueprintID int    `json:"blueprint_id"`
	Horizon     int    `json:"horizon"`
	Yield       int64  `json:"yield"`
	CreatedAt   string `json:"created_at"`
}

// RunStats contains metadata about an evaluation run.
type RunStats struct {
	RunID            string `json:"run_id"`
	BlueprintsSolved int    `json:"blueprints_solved"`
	CacheHits        int    `json:"cache_hits"`
	NodesVisited     int64  `json:"nodes_visited"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// ============================================
// TOOL REQUEST/RESPONSE TYPES
// ============================================

// MaxYieldRequest is the input for the max_yield tool. Either BlueprintID
// names a stored blueprint or Blueprint holds inline blueprint text.
type MaxYieldRequest struct {
	BlueprintID int    `json:"blueprint_id,omitempty"`
	Blueprint   string `json:"blueprint,omitempty"`
	Horizon     int    `json:"horizon"`
}

// MaxYieldResponse is the output for the max_yield tool.
type MaxYieldResponse struct {
	Result BlueprintYield `json:"result"`
}

// EvaluateRequest is the input for the evaluate_blueprints tool.
// An empty BlueprintIDs evaluates every stored blueprint.
type EvaluateRequest struct {
	BlueprintIDs []int  `json:"blueprint_ids,omitempty"`
	Horizon      int    `json:"horizon"`
	Mode         string `json:"mode,omitempty"`
}

// EvaluateResponse is the output for the evaluate_blueprints tool.
type EvaluateResponse struct {
	Results []BlueprintYield `json:"results"`
	Stats   RunStats         `json:"stats"`
}

// QualityLevelRequest is the input for the quality_level tool.
type QualityLevelRequest struct {
	Horizon int `json:"horizon,omitempty"`
}

// QualityLevelResponse is the sum of id*yield over all blueprints.
type QualityLevelResponse struct {
	Horizon int              `json:"horizon"`
	Total   int64            `json:"total"`
	Results []BlueprintYield `json:"results"`
	Stats   RunStats         `json:"stats"`
}

// TopProductRequest is the input for the top_product tool.
type TopProductRequest struct {
	Horizon int `json:"horizon,omitempty"`
	Count   int `json:"count,omitempty"`
}

// TopProductResponse is the product of yields of the first Count blueprints.
// Selection describes how those blueprints were chosen.
type TopProductResponse struct {
	Horizon   int              `json:"horizon"`
	Count     int              `json:"count"`
	Selection string           `json:"selection"`
	Product   int64            `json:"product"`
	Results   []BlueprintYield `json:"results"`
	Stats     RunStats         `json:"stats"`
}

// BlueprintLookupRequest is the input for the blueprint_lookup tool.
type BlueprintLookupRequest struct {
	BlueprintID int `json:"blueprint_id"`
}

// BlueprintLookupResponse is the output for the blueprint_lookup tool.
type BlueprintLookupResponse struct {
	Blueprint   *Blueprint         `json:"blueprint,omitempty"`
	SourceText  string             `json:"source_text,omitempty"`
	Recipes     map[string]string  `json:"recipes,omitempty"`
	MaxDemand   map[string]int64   `json:"max_demand,omitempty"`
	Evaluations []EvaluationRecord `json:"evaluations,omitempty"`
}

// ImportBlueprintsRequest is the input for the import_blueprints tool.
// Replace drops every stored blueprint and evaluation run first.
type ImportBlueprintsRequest struct {
	Text    string `json:"text"`
	Replace bool   `json:"replace,omitempty"`
}

// RunScoreRequest is the input for the run_score tool.
type RunScoreRequest struct {
	RunID string `json:"run_id"`
}

// RunScoreResponse is the recorded aggregate score of one run.
type RunScoreResponse struct {
	RunID string `json:"run_id"`
	Score int64  `json:"score"`
}

// ImportBlueprintsResponse is the output for the import_blueprints tool.
type ImportBlueprintsResponse struct {
	Imported     int   `json:"imported"`
	BlueprintIDs []int `json:"blueprint_ids"`
}
