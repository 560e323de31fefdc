package preempt

import (
	"math"

	"github.com/redlane-ems/altroute/network"
	"github.com/redlane-ems/altroute/sim"
)

// laneGapMetres is the per-vehicle gap-and-length estimate spec.md §4.E
// uses to turn a lane's vehicle count into a queue length in metres.
const laneGapMetres = 7.5

// Approach is one ambulance's per-step situation relative to a candidate
// traffic light, the input to Controller.Step (spec.md §4.E "Inputs per
// step").
type Approach struct {
	AmbulanceID string
	CurrentEdge string
	CurrentLane string
	X, Y        float64
	Speed       float64

	// LightID is the candidate light: the simulator-reported next
	// controlled light on the ambulance's route, or, if the simulator
	// offers none, the first light whose controlled input lanes include
	// CurrentEdge (spec.md §4.E). Empty means no candidate this step.
	LightID string

	// IsNextControlled reports whether LightID is the simulator's
	// reported next-controlled-light for this ambulance (as opposed to a
	// fallback match by controlled input lane). Used by Controller.Step's
	// release test (spec.md §4.E "Maintenance").
	IsNextControlled bool
}

// Features are the fuzzified inputs to the trigger and extend rule banks
// (spec.md §4.E). AngleCos carries original_source/src/controllers/
// traffic_light.py's approach-heading-alignment feature; spec.md's default
// fuzzy sets don't define labels for it, but a custom model document may
// reference it (SPEC_FULL.md §12).
type Features struct {
	DistToTLS      float64
	AmbulanceSpeed float64
	QueueLength    float64
	ETASeconds     float64
	PhaseIndex     float64
	PhaseRemaining float64
	AngleCos       float64
}

// AsMap flattens Features into the map[string]float64 shape fuzzy.Model's
// rule evaluation reads, keyed to match spec.md §4.E's variable names.
func (f Features) AsMap() map[string]float64 {
	return map[string]float64{
		"dist_to_tls":     f.DistToTLS,
		"ambulance_speed": f.AmbulanceSpeed,
		"queue_length":    f.QueueLength,
		"eta_seconds":     f.ETASeconds,
		"phase_index":     f.PhaseIndex,
		"phase_remaining": f.PhaseRemaining,
		"angle_cos":       f.AngleCos,
	}
}

// extractFeatures computes Features for one Approach against one light,
// reading distance from the simulator's next-TLS report when available and
// falling back to planar distance otherwise (spec.md §4.E "dist_to_tls").
func extractFeatures(g *network.Graph, a sim.Adapter, ap Approach, now float64) Features {
	dist := planarDistToLight(g, ap)
	for _, n := range a.VehicleNextTLS(ap.AmbulanceID) {
		if n.LightID == ap.LightID {
			dist = n.Dist
			break
		}
	}

	speed := ap.Speed
	eta := dist / math.Max(0.5, speed)

	queue := 0.0
	countedLanes := make(map[string]struct{})
	for _, link := range a.ControlledLinks(ap.LightID) {
		if _, dup := countedLanes[link.InLane]; dup {
			continue
		}
		countedLanes[link.InLane] = struct{}{}
		queue += float64(a.LaneVehicleCount(link.InLane)) * laneGapMetres
	}

	phaseIdx := float64(a.PhaseIndex(ap.LightID))
	phaseRemaining := math.Max(0, a.NextSwitch(ap.LightID)-now)

	return Features{
		DistToTLS:      dist,
		AmbulanceSpeed: speed,
		QueueLength:    queue,
		ETASeconds:     eta,
		PhaseIndex:     phaseIdx,
		PhaseRemaining: phaseRemaining,
	}
}

// planarDistToLight falls back to straight-line distance between the
// ambulance and the light's junction position when the simulator reports
// no network distance (spec.md §4.E "else planar distance"). A light id
// with no matching graph node (e.g. a test stub) yields +Inf, a safe
// "treat as far away" default.
func planarDistToLight(g *network.Graph, ap Approach) float64 {
	if g == nil {
		return math.Inf(1)
	}
	node, err := g.Node(ap.LightID)
	if err != nil {
		return math.Inf(1)
	}
	dx, dy := node.X-ap.X, node.Y-ap.Y
	return math.Hypot(dx, dy)
}
