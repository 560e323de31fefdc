// File: precompute.go
// Role: orchestrates selection + per-landmark Dijkstra into a persistable
// Table. Grounded on original_source/src/offline/landmarks.py's
// compute_and_save.

package landmark

import (
	"path/filepath"

	"github.com/redlane-ems/altroute/network"
)

// Precompute selects K landmarks from g (seeded for reproducibility) and
// runs a single-source search from each, returning the resulting Table.
// networkName is recorded in Table.Meta.Network (typically the basename of
// the topology file that produced g) and is purely informational.
//
// Complexity: O(K * (E + N log N)).
func Precompute(g *network.Graph, k int, seed int64, networkName string) (*Table, error) {
	landmarks, err := SelectLandmarks(g, k, seed)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]map[string]float64, len(landmarks))
	for _, lm := range landmarks {
		tables[lm] = SingleSourceTimes(g, lm)
	}

	stats := g.Stats()
	t := &Table{
		Meta: Meta{
			Network:      filepath.Base(networkName),
			NumNodes:     stats.NodeCount,
			NumEdges:     stats.EdgeCount,
			NumLandmarks: len(landmarks),
		},
		Landmarks: landmarks,
		Distances: tables,
	}

	return t, nil
}
