package router

import "container/heap"

// openItem is one entry in the binary heap: a candidate node to expand,
// keyed by f = g + h. g is carried alongside f so a popped item can be
// checked for staleness without re-evaluating the heuristic. Seq breaks
// ties by insertion order, since re-insertion (no decrease-key) can leave
// several live entries for the same node.
type openItem struct {
	node string
	g    float64
	f    float64
	seq  int
}

type openHeap []*openItem

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x interface{}) { *h = append(*h, x.(*openItem)) }
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Handle identifies one in-progress cooperative search. Obtained from
// BeginIncremental; must be passed to Step or Abort on the same Router.
type Handle struct {
	start, goal string

	open    openHeap
	nextSeq int
	gScore  map[string]float64
	parent  map[string]string

	liveFactor  LiveFactorFunc
	signalDelay SignalDelayFunc

	finished  bool
	aborted   bool
	reachable bool

	lastStepExpansions int
}

// Plan runs a blocking search from start to goal and returns the full
// result. Equivalent to BeginIncremental followed by Step calls until the
// search completes, suited to offline or cold-start use where yielding to
// a host loop is unnecessary.
func (r *Router) Plan(start, goal string, snap Snapshot, delay SignalDelayFunc) (Result, error) {
	h := r.BeginIncremental(start, goal, snap, delay)
	for {
		status, res := r.Step(h, 1<<30)
		switch status {
		case Done:
			return res, nil
		case Unreachable:
			return Result{}, ErrUnreachable
		}
	}
}

// BeginIncremental starts a cooperative A* search from start to goal. snap
// is captured by value into a closure and never re-read; subsequent calls
// to Step see a fixed cost landscape for the lifetime of this Handle. A nil
// delay is treated as ZeroDelay.
func (r *Router) BeginIncremental(start, goal string, snap Snapshot, delay SignalDelayFunc) *Handle {
	if delay == nil {
		delay = ZeroDelay
	}

	frozen := make(Snapshot, len(snap))
	for id, s := range snap {
		frozen[id] = s
	}

	h := &Handle{
		start:       start,
		goal:        goal,
		gScore:      map[string]float64{start: 0},
		parent:      map[string]string{},
		liveFactor:  liveFactorFromSnapshot(r.graph, frozen),
		signalDelay: delay,
	}

	if !r.graph.HasNode(start) || !r.graph.HasNode(goal) {
		h.finished = true
		return h
	}

	heap.Init(&h.open)
	heap.Push(&h.open, &openItem{node: start, g: 0, f: r.heuristic.Evaluate(start, goal), seq: h.nextSeq})
	h.nextSeq++

	return h
}

// Step expands at most maxExpansions nodes from the frontier and returns.
// The expansion counter increments once per popped node, including stale
// pops, matching "pop (f,u) ... expansion counter increments once per
// popped node".
func (r *Router) Step(h *Handle, maxExpansions int) (Status, Result) {
	if h == nil || h.aborted {
		return Unreachable, Result{}
	}
	if h.finished {
		return h.finishedStatus()
	}

	expansions := 0
	for h.open.Len() > 0 && expansions < maxExpansions {
		item := heap.Pop(&h.open).(*openItem)
		expansions++

		u := item.node
		if best, ok := h.gScore[u]; !ok || item.g > best+1e-9 {
			continue // stale entry: a better g_score was already found
		}

		if u == h.goal {
			h.finished = true
			h.reachable = true
			h.lastStepExpansions = expansions
			path, _ := reconstruct(h, h.goal)
			return Done, Result{TotalTime: h.gScore[u], Path: path}
		}

		neighbors, err := r.graph.Neighbors(u)
		if err != nil {
			continue
		}
		for _, e := range neighbors {
			factor := h.liveFactor(e.ID)
			delay := h.signalDelay(e.To)
			candG := h.gScore[u] + edgeCost(e.BaseTime, factor, delay)

			if best, ok := h.gScore[e.To]; !ok || candG < best {
				h.gScore[e.To] = candG
				h.parent[e.To] = u
				f := candG + r.heuristic.Evaluate(e.To, h.goal)
				heap.Push(&h.open, &openItem{node: e.To, g: candG, f: f, seq: h.nextSeq})
				h.nextSeq++
			}
		}
	}

	h.lastStepExpansions = expansions

	if h.open.Len() == 0 {
		h.finished = true
		h.reachable = false
		return Unreachable, Result{}
	}

	return Running, Result{}
}

// LastStepExpansions reports how many nodes the most recent Step call
// popped from the frontier, including stale pops. A host wires this into
// a metrics histogram (SPEC_FULL.md §11) without Step's own signature
// needing to change.
func (h *Handle) LastStepExpansions() int { return h.lastStepExpansions }

// finishedStatus re-reports the terminal status of a Handle whose search
// already concluded, so a repeated Step call after Done/Unreachable is
// idempotent rather than undefined.
func (h *Handle) finishedStatus() (Status, Result) {
	if !h.reachable {
		return Unreachable, Result{}
	}
	path, ok := reconstruct(h, h.goal)
	if !ok {
		return Unreachable, Result{}
	}
	return Done, Result{TotalTime: h.gScore[h.goal], Path: path}
}

// Abort discards a handle's state; subsequent Step calls on it report
// Unreachable. Safe to call on an already-finished handle.
func (r *Router) Abort(h *Handle) {
	if h == nil {
		return
	}
	h.aborted = true
}

// reconstruct walks the parent map from goal back to the search's start.
func reconstruct(h *Handle, goal string) ([]string, bool) {
	path := []string{goal}
	cur := goal
	for cur != h.start {
		p, ok := h.parent[cur]
		if !ok {
			return nil, false
		}
		path = append(path, p)
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}
