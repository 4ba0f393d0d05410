package engine

import (
	"github.com/rsned/geode-planner/internal/planner/blueprint"
	"github.com/rsned/geode-planner/pkg/planner"
)

// Options tunes a single search. The zero value runs the full
// branch-and-bound.
type Options struct {
	// DisableSaturation keeps building producers of kinds whose demand is
	// already met.
	DisableSaturation bool

	// DisableBound turns off optimistic-bound pruning.
	DisableBound bool

	// OnCommit, if set, is called for every build a branch commits, with
	// the state the build was chosen from.
	OnCommit func(from State, kind planner.Resource)
}

// Result is the outcome of a search.
type Result struct {
	Yield  int64
	Plan   []planner.Build // builds of one optimal branch
	Nodes  int64
	Pruned int64
}

// MaxTargetYield returns the largest target stock reachable from the
// starting economy within horizon ticks.
func MaxTargetYield(table *blueprint.Table, horizon int) int64 {
	return Search(table, horizon, Options{}).Yield
}

// Search runs the branch-and-bound enumeration for table over horizon ticks.
func Search(table *blueprint.Table, horizon int, opts Options) Result {
	start := NewState()
	if horizon <= 0 {
		return Result{Yield: start.Stock[planner.Target]}
	}

	s := &searcher{
		table:   table,
		horizon: horizon,
		opts:    opts,
		best:    -1,
	}
	yield := s.search(start)

	return Result{
		Yield:  yield,
		Plan:   s.bestPlan,
		Nodes:  s.nodes,
		Pruned: s.pruned,
	}
}

// searcher carries the best-so-far bound for one blueprint. It is not
// shared between goroutines.
type searcher struct {
	table   *blueprint.Table
	horizon int
	opts    Options

	best     int64
	bestPlan []planner.Build
	path     []planner.Build

	nodes  int64
	pruned int64
}

func (s *searcher) search(st State) int64 {
	s.nodes++

	if st.Elapsed >= s.horizon {
		return s.leaf(st)
	}

	if !s.opts.DisableBound && optimisticBound(st, s.horizon) <= s.best {
		s.pruned++
		return st.TargetYieldAtHorizon(s.horizon)
	}

	best := int64(-1)
	for i := planner.NumResources - 1; i >= 0; i-- {
		kind := planner.Resource(i)

		if !s.table.Reachable(kind, st.Rate) {
			continue
		}
		if !s.opts.DisableSaturation && s.table.Saturated(kind, st.Rate[kind], st.Stock[kind]) {
			continue
		}

		cost := s.table.Cost(kind)
		wait, ok := st.TicksUntilAffordable(cost)
		// The build must complete by the horizon: wait ticks plus the build tick.
		if !ok || wait >= s.horizon-st.Elapsed {
			continue
		}

		if s.opts.OnCommit != nil {
			s.opts.OnCommit(st, kind)
		}

		// Production during the build tick still runs at the old rates.
		next := st.Advance(wait + 1).CommitBuild(kind, cost)

		s.path = append(s.path, planner.Build{Kind: kind, Tick: next.Elapsed})
		if y := s.search(next); y > best {
			best = y
		}
		s.path = s.path[:len(s.path)-1]
	}

	if best < 0 {
		return s.leaf(st)
	}
	return best
}

// leaf scores a branch that idles to the horizon and remembers its plan if
// it is the best so far. Ties go to the shorter plan.
func (s *searcher) leaf(st State) int64 {
	y := st.TargetYieldAtHorizon(s.horizon)
	if y > s.best || (y == s.best && len(s.path) < len(s.bestPlan)) {
		s.best = y
		s.bestPlan = append([]planner.Build(nil), s.path...)
	}
	return y
}

// optimisticBound assumes a new target producer completes in every
// remaining tick. No branch below st can exceed it.
func optimisticBound(st State, horizon int) int64 {
	r := int64(horizon - st.Elapsed)
	return st.Stock[planner.Target] + st.Rate[planner.Target]*r + r*(r-1)/2
}
