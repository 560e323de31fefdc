// File: methods.go
// Role: Node/edge lifecycle (AddNode/AddEdge), adjacency queries (Neighbors,
//       Predecessors), and the reachability/geometry helpers original_source's
//       online/router.py exposes (NearestNode, ReachableTo).
// Determinism:
//   - Nodes()/Edges() return IDs sorted lexicographically ascending.
//   - Neighbors(u) returns edges sorted by Edge.ID ascending.

package network

import "sort"

// AddNode inserts a node if missing. Re-adding the same ID with identical
// coordinates is a no-op; re-adding with different coordinates is a
// programmer error surfaced as ErrDuplicateNode (the loader never does
// this — each junction appears once in the topology file).
func (g *Graph) AddNode(id string, x, y float64) error {
	if id == "" {
		return ErrEmptyNodeID
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.nodes[id]; ok {
		if existing.X != x || existing.Y != y {
			return ErrDuplicateNode
		}
		return nil
	}
	g.nodes[id] = &Node{ID: id, X: x, Y: y}
	g.out[id] = make(map[string]*Edge)
	g.in_[id] = make(map[string]struct{})

	return nil
}

// HasNode reports whether id is a known node.
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]

	return ok
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}

	return n, nil
}

// Nodes returns all node IDs, sorted ascending.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// AddEdge inserts a directed edge. Both endpoints must already exist via
// AddNode; a dangling edge returns ErrDanglingEdge and is not inserted (the
// loader checks endpoints with HasNode before calling AddEdge, so the
// dangling edges it drops silently never reach this check).
func (g *Graph) AddEdge(id, from, to string, avgLength, avgSpeed float64) error {
	if avgSpeed < MinAvgSpeed {
		avgSpeed = MinAvgSpeed
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[from]; !ok {
		return ErrDanglingEdge
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrDanglingEdge
	}

	e := &Edge{
		ID:        id,
		From:      from,
		To:        to,
		AvgLength: avgLength,
		AvgSpeed:  avgSpeed,
		BaseTime:  avgLength / avgSpeed,
	}
	g.edges[id] = e
	g.out[from][id] = e
	g.in_[to][from] = struct{}{}
	g.endpoints[[2]string{from, to}] = id

	return nil
}

// HasEdge reports whether id is a known edge.
func (g *Graph) HasEdge(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edges[id]

	return ok
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id string) (*Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.edges[id]
	if !ok {
		return nil, ErrEdgeNotFound
	}

	return e, nil
}

// Edges returns all edges, sorted by ID ascending.
func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// EdgeBetween returns the last-seen edge ID between from and to, per the
// (u,v)->edge invariant documented on Graph.
func (g *Graph) EdgeBetween(from, to string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.endpoints[[2]string{from, to}]

	return id, ok
}

// Neighbors returns the outgoing edges from u, sorted by Edge.ID ascending.
// Returns ErrNodeNotFound if u is unknown.
func (g *Graph) Neighbors(u string) ([]*Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	bucket, ok := g.out[u]
	if !ok {
		return nil, ErrNodeNotFound
	}

	out := make([]*Edge, 0, len(bucket))
	for _, e := range bucket {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// Predecessors returns the node IDs with at least one edge into v, sorted
// ascending. Used by ReachableTo for backward traversal.
func (g *Graph) Predecessors(v string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	bucket := g.in_[v]
	out := make([]string, 0, len(bucket))
	for u := range bucket {
		out = append(out, u)
	}
	sort.Strings(out)

	return out
}

// ReachableTo returns the set of node IDs (including goal itself) from which
// goal is reachable, computed by a backward traversal over the reverse
// adjacency. Grounded on original_source/src/online/router.py's
// nodes_reaching: the router defines "unreachable" in terms of this
// set ("iff no path exists in the reverse-reachability set of goal").
func (g *Graph) ReachableTo(goal string) map[string]struct{} {
	seen := map[string]struct{}{}
	if !g.HasNode(goal) {
		return seen
	}

	seen[goal] = struct{}{}
	stack := []string{goal}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, u := range g.Predecessors(v) {
			if _, ok := seen[u]; !ok {
				seen[u] = struct{}{}
				stack = append(stack, u)
			}
		}
	}

	return seen
}

// NearestNode returns the node ID whose planar coordinates are closest to
// (x, y), breaking ties by the lexicographically smaller ID. Returns false
// if the graph has no nodes. Grounded on
// original_source/src/online/router.py's nearest_node.
func (g *Graph) NearestNode(x, y float64) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var (
		bestID    string
		bestDist  float64
		haveFirst bool
	)
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := g.nodes[id]
		dx, dy := n.X-x, n.Y-y
		d := dx*dx + dy*dy
		if !haveFirst || d < bestDist {
			bestDist = d
			bestID = id
			haveFirst = true
		}
	}

	return bestID, haveFirst
}

// Stats is an O(V+E) read-only summary, grounded on core.Graph.Stats.
type Stats struct {
	NodeCount int
	EdgeCount int
}

// Stats produces a size summary of the graph.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Stats{NodeCount: len(g.nodes), EdgeCount: len(g.edges)}
}
