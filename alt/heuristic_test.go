package alt_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/redlane-ems/altroute/alt"
	"github.com/redlane-ems/altroute/landmark"
	"github.com/redlane-ems/altroute/network"
)

func chainTable() *landmark.Table {
	// Mirrors a two-way A-B-C road chain (base times 5s, 7s each
	// direction) with the landmark placed at C.
	return &landmark.Table{
		Landmarks: []string{"C"},
		Distances: map[string]map[string]float64{
			"C": {"C": 0, "B": 7, "A": 12},
		},
	}
}

func TestHeuristic_PerfectOnChain(t *testing.T) {
	h := alt.New(chainTable(), nil)
	assert.Equal(t, 12.0, h.Evaluate("A", "C"))
}

func TestHeuristic_TightBoundWhenLandmarkReachesBoth(t *testing.T) {
	// A landmark whose single-source table covers both node and goal
	// produces the textbook ALT bound.
	tbl := &landmark.Table{
		Landmarks: []string{"L"},
		Distances: map[string]map[string]float64{
			"L": {"L": 0, "A": 12, "C": 0},
		},
	}
	h := alt.New(tbl, nil)
	assert.Equal(t, 12.0, h.Evaluate("A", "C"))
	assert.Equal(t, 12.0, h.Evaluate("C", "A"), "heuristic is symmetric in the absolute difference")
}

func TestHeuristic_SkipsLandmarksMissingEitherSide(t *testing.T) {
	tbl := &landmark.Table{
		Landmarks: []string{"L1", "L2"},
		Distances: map[string]map[string]float64{
			"L1": {"node": 4}, // missing "goal": skipped
			"L2": {"node": 10, "goal": 2},
		},
	}
	h := alt.New(tbl, nil)
	assert.Equal(t, 8.0, h.Evaluate("node", "goal"))
}

func TestHeuristic_NoContributionReturnsZero(t *testing.T) {
	tbl := &landmark.Table{
		Landmarks: []string{"L"},
		Distances: map[string]map[string]float64{"L": {}},
	}
	h := alt.New(tbl, nil)
	assert.Equal(t, 0.0, h.Evaluate("x", "y"))
}

func TestHeuristic_NilTableIsAdmissibleZero(t *testing.T) {
	h := alt.New(nil, nil)
	assert.Equal(t, 0.0, h.Evaluate("x", "y"))
}

func TestHeuristic_AdjustHookApplied(t *testing.T) {
	tbl := &landmark.Table{
		Landmarks: []string{"L"},
		Distances: map[string]map[string]float64{"L": {"node": 0, "goal": 12}},
	}
	called := false
	h := alt.New(tbl, func(node, goal string, raw float64) float64 {
		called = true
		assert.Equal(t, 12.0, raw)
		return raw // identity-equivalent, just observing the call
	})
	assert.Equal(t, 12.0, h.Evaluate("node", "goal"))
	assert.True(t, called)
}

func TestIdentity_ReturnsRawUnchanged(t *testing.T) {
	assert.Equal(t, 3.5, alt.Identity("a", "b", 3.5))
}

// TestHeuristic_AdmissibleAgainstRandomGraphs is the generative form of
// spec.md §8's heuristic-admissibility property: for any (node, goal) and
// any landmark table whose distances come from real single-source
// Dijkstra runs over the graph's weights, h(node, goal) must never exceed
// the true optimal remaining cost, and h(goal, goal) must always be zero.
// Graphs, edge weights, and the landmark set are all generated by rapid;
// true-optimal distances are recomputed independently via
// landmark.SingleSourceTimes rather than reused from the table under test.
func TestHeuristic_AdmissibleAgainstRandomGraphs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(t, "n")
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("n%d", i)
		}

		g := network.NewGraph()
		for _, id := range ids {
			require.NoError(t, g.AddNode(id, 0, 0))
		}

		edgeSeq := 0
		for i, u := range ids {
			for j, v := range ids {
				if i == j {
					continue
				}
				if rapid.Bool().Draw(t, fmt.Sprintf("edge-%d-%d", i, j)) {
					w := float64(rapid.IntRange(1, 50).Draw(t, fmt.Sprintf("w-%d-%d", i, j)))
					edgeSeq++
					require.NoError(t, g.AddEdge(fmt.Sprintf("e%d", edgeSeq), u, v, w, 1))
				}
			}
		}

		numLandmarks := rapid.IntRange(1, n).Draw(t, "num_landmarks")
		landmarks := ids[:numLandmarks]

		distances := make(map[string]map[string]float64, len(landmarks))
		for _, lm := range landmarks {
			distances[lm] = landmark.SingleSourceTimes(g, lm)
		}
		table := &landmark.Table{Landmarks: landmarks, Distances: distances}
		h := alt.New(table, nil)

		for _, goal := range ids {
			if h.Evaluate(goal, goal) != 0 {
				t.Fatalf("h(goal, goal) = %v, want 0", h.Evaluate(goal, goal))
			}
		}

		for _, node := range ids {
			trueDist := landmark.SingleSourceTimes(g, node)
			for _, goal := range ids {
				optimal, reachable := trueDist[goal]
				if !reachable {
					continue
				}
				if got := h.Evaluate(node, goal); got > optimal+1e-9 {
					t.Fatalf("h(%s, %s) = %v exceeds true optimal %v", node, goal, got, optimal)
				}
			}
		}
	})
}
