// Package landmark implements Component B: selecting K
// landmark nodes and running a single-source shortest-time search from each,
// producing the tables the ALT heuristic (package alt) consumes.
//
// The single-source search here (SingleSourceTimes/timePQ in dijkstra.go)
// is a heap-based Dijkstra over network.Graph.BaseTime, adapted from
// lvlath's dijkstra package (github.com/katalvlaran/lvlath/dijkstra) — same
// lazy-decrease-key heap strategy, re-keyed from int64 weights to float64
// seconds because travel times are fractional. It does not scan for
// negative weights.
package landmark

import "errors"

// Sentinel errors for landmark precomputation.
var (
	// ErrEmptyGraph indicates the graph has no nodes; landmark selection
	// cannot proceed; precompute.go/select.go require a non-empty graph.
	ErrEmptyGraph = errors.New("landmark: graph has no nodes")

	// ErrNoLandmarksSelected indicates landmark selection produced zero
	// candidates despite a non-empty graph.
	ErrNoLandmarksSelected = errors.New("landmark: no landmarks could be selected")
)

// Table holds the precomputed single-source shortest-time distances from
// each selected landmark, plus the metadata persisted alongside them.
type Table struct {
	Meta      Meta                          `json:"meta"`
	Landmarks []string                      `json:"landmarks"`
	Distances map[string]map[string]float64 `json:"tables"`
}

// Meta is the persisted summary describing the graph a Table was built from.
type Meta struct {
	Network      string `json:"network"`
	NumNodes     int    `json:"num_nodes"`
	NumEdges     int    `json:"num_edges"`
	NumLandmarks int    `json:"num_landmarks"`
}

// Dist returns the precomputed distance from landmark lm to node, and
// whether it is finite. A missing (lm, node) pair — e.g. because the
// persisted JSON omits unreachable destinations — is treated as +Inf,
// not found.
func (t *Table) Dist(lm, node string) (float64, bool) {
	row, ok := t.Distances[lm]
	if !ok {
		return 0, false
	}
	d, ok := row[node]
	if !ok {
		return 0, false
	}

	return d, true
}
