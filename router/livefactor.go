package router

import "github.com/redlane-ems/altroute/network"

// clampRange bounds x to [lo, hi].
func clampRange(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// LiveFactorFunc returns the congestion multiplier for an edge id.
type LiveFactorFunc func(edgeID string) float64

// liveFactorFromSnapshot closes over a Snapshot captured once at
// BeginIncremental time, and over the graph (for each edge's free-flow
// speed). Edges absent from snap use factor 1.0.
//
// factor = clamp(0.5*congestion + 0.5*load, 1.0, 5.0)
//
//	congestion = clamp(v_free / max(1, v_mean), 0, 3)
//	load       = 1 + min(2, vehicle_count/20)
func liveFactorFromSnapshot(g *network.Graph, snap Snapshot) LiveFactorFunc {
	return func(edgeID string) float64 {
		stats, ok := snap[edgeID]
		if !ok {
			return 1.0
		}

		vFree := 1.0
		if e, err := g.Edge(edgeID); err == nil {
			vFree = e.AvgSpeed
		}

		vMean := stats.MeanSpeed
		if vMean < 1 {
			vMean = 1
		}
		congestion := clampRange(vFree/vMean, 0, 3)
		load := 1 + minOf(float64(stats.VehicleCount)/20, 2)

		return clampRange(0.5*congestion+0.5*load, 1.0, 5.0)
	}
}

// minOf returns the smaller of a and b.
func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
