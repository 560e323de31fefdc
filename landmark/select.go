// File: select.go
// Role: landmark selection — top-3K by degree, seeded shuffle, first K
// distinct. Grounded on original_source/src/offline/landmarks.py's
// _choose_landmarks (same degree-then-shuffle strategy; the Python original
// uses stdlib random.seed/random.shuffle, this uses math/rand's seeded
// PRNG via rand.New(rand.NewSource(seed)) for the same reproducibility
// contract: runs with the same seed must be repeatable.

package landmark

import (
	"math/rand"
	"sort"

	"github.com/redlane-ems/altroute/network"
)

// SelectLandmarks picks K landmark node IDs from g using the degree-based
// strategy:
//  1. Compute degree (in+out) for every node.
//  2. Take the top 3K by degree.
//  3. Shuffle that band with a seeded PRNG.
//  4. Take the first K distinct IDs.
//
// If fewer than K distinct candidates exist, it pads from the remaining
// nodes. Returns ErrEmptyGraph if g has no nodes.
//
// Known limitation: degree centrality is a weaker proxy for ALT bound
// tightness than farthest-point or avoidance-based landmark selection.
// Retained for simplicity and determinism.
func SelectLandmarks(g *network.Graph, k int, seed int64) ([]string, error) {
	if k < 1 {
		k = 1
	}

	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	degree := make(map[string]int, len(nodes))
	for _, id := range nodes {
		degree[id] = 0
	}
	for _, e := range g.Edges() {
		degree[e.From]++
		degree[e.To]++
	}

	sort.Slice(nodes, func(i, j int) bool {
		if degree[nodes[i]] != degree[nodes[j]] {
			return degree[nodes[i]] > degree[nodes[j]]
		}
		// Break degree ties lexicographically so the pre-shuffle ordering
		// (and therefore the post-shuffle result, for a fixed seed) is
		// fully deterministic regardless of map iteration order.
		return nodes[i] < nodes[j]
	})

	bandSize := k * 3
	if bandSize < k {
		bandSize = k
	}
	if bandSize > len(nodes) {
		bandSize = len(nodes)
	}
	candidates := append([]string(nil), nodes[:bandSize]...)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	selected := make([]string, 0, k)
	seen := make(map[string]struct{}, k)
	for _, id := range candidates {
		if _, dup := seen[id]; dup {
			continue
		}
		selected = append(selected, id)
		seen[id] = struct{}{}
		if len(selected) >= k {
			break
		}
	}

	// Pad from remaining nodes (outside the top band) if the band itself
	// didn't yield K distinct candidates.
	if len(selected) < k {
		for _, id := range nodes {
			if _, dup := seen[id]; dup {
				continue
			}
			selected = append(selected, id)
			seen[id] = struct{}{}
			if len(selected) >= k {
				break
			}
		}
	}

	if len(selected) == 0 {
		return nil, ErrNoLandmarksSelected
	}

	return selected, nil
}
