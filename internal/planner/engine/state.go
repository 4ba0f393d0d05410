package engine

import (
	"fmt"
	"math"

	"github.com/rsned/geode-planner/pkg/planner"
)

// State is one point in the search space. It is a flat value: every branch
// works on its own copy and the methods below return new values.
type State struct {
	Stock   [planner.NumResources]int64
	Rate    [planner.NumResources]int64
	Elapsed int
}

// NewState returns the starting economy: one base producer, nothing in
// stock, no time elapsed.
func NewState() State {
	var s State
	s.Rate[planner.Base] = 1
	return s
}

// StockSufficientFor reports whether the current stock covers cost.
func (s State) StockSufficientFor(cost planner.Cost) bool {
	for kind, q := range cost {
		if s.Stock[kind] < q {
			return false
		}
	}
	return true
}

// TicksUntilAffordable returns the smallest number of ticks of production
// at the current rates after which cost is covered. ok is false when some
// input is short and not being produced at all. The result saturates at
// math.MaxInt instead of overflowing.
func (s State) TicksUntilAffordable(cost planner.Cost) (ticks int, ok bool) {
	var wait int64
	for kind, q := range cost {
		short := q - s.Stock[kind]
		if short <= 0 {
			continue
		}
		rate := s.Rate[kind]
		if rate == 0 {
			return 0, false
		}
		if w := (short-1)/rate + 1; w > wait {
			wait = w
		}
	}
	if wait > math.MaxInt {
		wait = math.MaxInt
	}
	return int(wait), true
}

// Advance runs ticks of production at the current rates.
func (s State) Advance(ticks int) State {
	for kind := range s.Stock {
		s.Stock[kind] += s.Rate[kind] * int64(ticks)
	}
	s.Elapsed += ticks
	return s
}

// CommitBuild pays cost and adds one producer of kind. Callers advance
// through the build tick first, so the new producer only counts from the
// following tick.
func (s State) CommitBuild(kind planner.Resource, cost planner.Cost) State {
	for input, q := range cost {
		s.Stock[input] -= q
	}
	s.Rate[kind]++
	return s
}

// TargetYieldAtHorizon is the target stock after idling from the current
// time up to horizon.
func (s State) TargetYieldAtHorizon(horizon int) int64 {
	remaining := int64(horizon - s.Elapsed)
	if remaining < 0 {
		remaining = 0
	}
	return s.Stock[planner.Target] + s.Rate[planner.Target]*remaining
}

// String renders the state for debug logging.
func (s State) String() string {
	return fmt.Sprintf("t=%d stock=%v rate=%v", s.Elapsed, s.Stock, s.Rate)
}
