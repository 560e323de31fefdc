// File: statesynth.go
// Role: maps a traffic light's controlled links to the approaching
// ambulance's current edge/lane, and synthesises the state string that
// favours it. Grounded on
// original_source/src/controllers/traffic_light.py's _build_green_state
// (lane-id-encodes-edge-id convention inherited from SUMO: a lane id is
// "<edgeID>_<index>", so the edge a controlled link serves is recovered
// from its input lane id without an extra adapter round trip).

package preempt

import (
	"strings"

	"github.com/redlane-ems/altroute/sim"
)

// edgeIDFromLane recovers the edge id a lane belongs to from its id, using
// the "<edgeID>_<index>" convention. A lane id with no underscore is
// returned unchanged (already an edge-shaped id, e.g. in test fixtures).
func edgeIDFromLane(laneID string) string {
	i := strings.LastIndexByte(laneID, '_')
	if i < 0 {
		return laneID
	}
	return laneID[:i]
}

// prefixBeforeHash returns the portion of s before the first '#', or s
// unchanged if it contains none. Edge ids for split/internal movements are
// sometimes suffixed "#0", "#1", ... for the same parent edge.
func prefixBeforeHash(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

// linkServesApproach reports whether link's input movement serves ap's
// approach, per spec.md §4.E "State synthesis": the input lane equals the
// ambulance's current lane, or its edge equals the approach edge, or its
// edge shares a prefix (before '#') with the approach edge.
func linkServesApproach(link sim.ControlledLink, ap Approach) bool {
	if ap.CurrentLane != "" && link.InLane == ap.CurrentLane {
		return true
	}
	if ap.CurrentEdge == "" {
		return false
	}

	laneEdge := edgeIDFromLane(link.InLane)
	if laneEdge == ap.CurrentEdge {
		return true
	}

	a, b := prefixBeforeHash(laneEdge), prefixBeforeHash(ap.CurrentEdge)
	return a != "" && a == b
}

// synthesizeState builds the state string to impose on a light with the
// given controlled links: 'G' for every link serving ap's approach, 'r'
// for all others. The result's length always equals len(links), satisfying
// spec.md §8's "synthesised state string's length equals the light's
// controlled-link count" property regardless of the light's previous
// (possibly mis-sized) state string.
func synthesizeState(links []sim.ControlledLink, ap Approach) string {
	out := make([]byte, len(links))
	for i, link := range links {
		if linkServesApproach(link, ap) {
			out[i] = 'G'
		} else {
			out[i] = 'r'
		}
	}
	return sanitizeState(string(out))
}

// CandidateLight resolves the traffic light a host should build an
// Approach against for one ambulance, per spec.md §4.E "Inputs per step":
// the simulator-reported next controlled light on the ambulance's route,
// or, absent that, the first light (in adapter.TrafficLightIDs order)
// whose controlled input lanes include the ambulance's current edge. The
// returned bool reports whether the light came from the simulator's
// next-controlled-light report, matching Approach.IsNextControlled.
func CandidateLight(a sim.Adapter, ambulanceID, currentEdge, currentLane string) (lightID string, isNext bool) {
	if next := a.VehicleNextTLS(ambulanceID); len(next) > 0 {
		return next[0].LightID, true
	}

	probe := Approach{CurrentEdge: currentEdge, CurrentLane: currentLane}
	for _, tl := range a.TrafficLightIDs() {
		for _, link := range a.ControlledLinks(tl) {
			if linkServesApproach(link, probe) {
				return tl, false
			}
		}
	}

	return "", false
}
