// Package alt implements Component C: the ALT (A*, Landmark,
// Triangle-inequality) admissible heuristic consumed by the incremental A*
// router (package router). It evaluates h(node, goal) from a precomputed
// landmark.Table without running any search itself.
package alt

import "github.com/redlane-ems/altroute/landmark"

// AdjustHook post-processes a raw heuristic value for a given (node, goal)
// pair. A caller-supplied hook MUST NOT decrease the value and MUST NOT
// exceed the true optimal remaining cost from node to goal — this contract
// is documented, not enforced. The zero value of Heuristic uses Identity.
type AdjustHook func(node, goal string, raw float64) float64

// Identity is the default AdjustHook: it returns raw unchanged. No
// non-trivial adjustment is defined here; hosts that wire a learned
// adjustment must honor the AdjustHook contract themselves.
func Identity(_, _ string, raw float64) float64 { return raw }

// Heuristic evaluates the ALT lower bound on remaining travel time using a
// landmark.Table. It holds no mutable state and is safe for concurrent use
// by multiple router searches sharing one Table.
type Heuristic struct {
	table  *landmark.Table
	adjust AdjustHook
}

// New returns a Heuristic backed by table. A nil adjust hook is replaced by
// Identity.
func New(table *landmark.Table, adjust AdjustHook) *Heuristic {
	if adjust == nil {
		adjust = Identity
	}
	return &Heuristic{table: table, adjust: adjust}
}

// Evaluate returns max over landmarks ℓ of |d_ℓ(goal) - d_ℓ(node)|, skipping
// any landmark for which either distance is missing (treated as +Inf, i.e.
// "skip this landmark"). If no landmark contributes a finite value, it
// returns 0 — an admissible fallback under which the search degrades to
// plain Dijkstra.
func (h *Heuristic) Evaluate(node, goal string) float64 {
	adjust := h.adjust
	if adjust == nil {
		adjust = Identity
	}
	if h.table == nil {
		return adjust(node, goal, 0)
	}

	best := 0.0
	contributed := false
	for _, lm := range h.table.Landmarks {
		dGoal, okGoal := h.table.Dist(lm, goal)
		if !okGoal {
			continue
		}
		dNode, okNode := h.table.Dist(lm, node)
		if !okNode {
			continue
		}

		diff := dGoal - dNode
		if diff < 0 {
			diff = -diff
		}
		if !contributed || diff > best {
			best = diff
			contributed = true
		}
	}

	if !contributed {
		best = 0
	}

	return adjust(node, goal, best)
}
