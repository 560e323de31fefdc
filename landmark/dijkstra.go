// File: dijkstra.go
// Role: single-source shortest-time search over network.Graph.BaseTime,
// used once per selected landmark. Adapted from lvlath's
// github.com/katalvlaran/lvlath/dijkstra: same lazy-decrease-key heap
// ("push duplicates, ignore stale pops via a visited set") and the same
// pop-check-relax loop shape, re-keyed to float64 seconds and to
// network.Graph's adjacency instead of core.Graph's.
package landmark

import (
	"container/heap"
	"math"

	"github.com/redlane-ems/altroute/network"
)

// SingleSourceTimes runs Dijkstra from source over g's BaseTime weights and
// returns the shortest travel time (seconds) to every reachable node.
// Unreachable nodes are simply absent from the result, representing +Inf.
func SingleSourceTimes(g *network.Graph, source string) map[string]float64 {
	dist := make(map[string]float64)
	if !g.HasNode(source) {
		return dist
	}

	visited := make(map[string]bool)
	pq := make(timePQ, 0, 64)
	heap.Init(&pq)

	dist[source] = 0
	heap.Push(&pq, &timeItem{id: source, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*timeItem)
		u, d := item.id, item.dist

		if visited[u] {
			continue
		}
		visited[u] = true

		// Stale entry: a better distance was already found and relaxed.
		if best, ok := dist[u]; ok && d > best {
			continue
		}

		neighbors, err := g.Neighbors(u)
		if err != nil {
			continue
		}
		for _, e := range neighbors {
			cand := d + e.BaseTime
			if best, ok := dist[e.To]; !ok || cand < best {
				dist[e.To] = cand
				heap.Push(&pq, &timeItem{id: e.To, dist: cand})
			}
		}
	}

	return dist
}

// timeItem is a (node, distance) pair stored in the priority queue.
type timeItem struct {
	id   string
	dist float64
}

// timePQ is a min-heap of *timeItem ordered by dist ascending, using the
// same lazy-decrease-key approach as lvlath/dijkstra.nodePQ: stale entries
// are pushed over rather than removed, and ignored on pop via the visited
// set in SingleSourceTimes.
type timePQ []*timeItem

func (pq timePQ) Len() int            { return len(pq) }
func (pq timePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq timePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *timePQ) Push(x interface{}) { *pq = append(*pq, x.(*timeItem)) }
func (pq *timePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}

// infinity is an explicit sentinel for "not reached". Nothing in this
// module references it: SingleSourceTimes and Table.Dist treat a missing
// map entry as +Inf.
const infinity = math.MaxFloat64
