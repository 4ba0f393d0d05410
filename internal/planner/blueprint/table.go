package blueprint

import (
	"github.com/rsned/geode-planner/pkg/planner"
)

// Table is the immutable recipe table for one blueprint. The per-kind
// maximum demand is computed once here and shared by every search branch.
type Table struct {
	bp        planner.Blueprint
	maxDemand [planner.NumResources]int64
}

// NewTable derives the recipe table for bp.
func NewTable(bp planner.Blueprint) *Table {
	t := &Table{bp: bp}
	for _, cost := range bp.Costs {
		for kind, q := range cost {
			if q > t.maxDemand[kind] {
				t.maxDemand[kind] = q
			}
		}
	}
	return t
}

// ID returns the blueprint id.
func (t *Table) ID() int { return t.bp.ID }

// Blueprint returns a copy of the underlying blueprint.
func (t *Table) Blueprint() planner.Blueprint { return t.bp }

// Cost returns the cost of one producer of kind.
func (t *Table) Cost(kind planner.Resource) planner.Cost { return t.bp.Costs[kind] }

// MaxDemand is the largest quantity of kind any single recipe consumes.
// No tick can spend more than this, since at most one producer completes
// per tick.
func (t *Table) MaxDemand(kind planner.Resource) int64 { return t.maxDemand[kind] }

// Reachable reports whether every prerequisite of kind already has a
// producer. A kind whose inputs are not produced can never be afforded.
func (t *Table) Reachable(kind planner.Resource, rates [planner.NumResources]int64) bool {
	for input, q := range t.bp.Costs[kind] {
		if q > 0 && rates[input] == 0 {
			return false
		}
	}
	return true
}

// Saturated reports whether another producer of kind can no longer help:
// its rate already meets the maximum per-tick demand and the stock covers
// one more tick of that demand. The target kind is never saturated.
//
// This bound is only sound while every recipe draws on at most one
// non-base input besides the base kind.
func (t *Table) Saturated(kind planner.Resource, rate, stock int64) bool {
	if kind == planner.Target {
		return false
	}
	demand := t.maxDemand[kind]
	return rate >= demand && stock >= demand
}
