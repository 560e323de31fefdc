// Package preempt implements Component E: a per-traffic-light state
// machine that evaluates the fuzzy trigger (package fuzzy), synthesises a
// state string favouring an approaching ambulance, and maintains/releases
// that preemption over subsequent steps. Grounded on
// original_source/src/controllers/traffic_light.py's TrafficLightController,
// restructured around the sim.Adapter interface so it never imports a
// simulator binding directly.
package preempt

import (
	"errors"
	"strings"
)

// Sentinel errors for preemption bookkeeping.
var (
	// ErrUnknownLight indicates an operation referenced a light id the
	// controller has no record for.
	ErrUnknownLight = errors.New("preempt: unknown light id")
)

// State is a traffic light's preemption lifecycle state.
type State int

const (
	// Inactive means no ambulance currently holds a preemption on the light.
	Inactive State = iota
	// Active means the light's state string is currently overridden for
	// one ambulance.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Record is a traffic light's preemption bookkeeping: which ambulance is
// being served, the state string currently imposed, and the program id to
// restore on release. At most one Record exists per light at any time
// (spec.md §3 invariant).
type Record struct {
	State          State
	AmbulanceID    string
	ImposedState   string
	OriginalProgID string
	HasOriginalID  bool // false when the light's program was unknown at capture time (spec.md §7)
}

// validStateChars are the only characters a synthesised or preserved
// traffic-light state string may contain; anything else is coerced to 'r'.
const validStateChars = "GgYyRr"

// sanitizeState coerces every character outside validStateChars to 'r',
// per spec.md §4.E "Preserve only characters in {G,g,Y,y,R,r}; coerce
// anything else to r."
func sanitizeState(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		if strings.ContainsRune(validStateChars, ch) {
			b.WriteRune(ch)
		} else {
			b.WriteRune('r')
		}
	}
	return b.String()
}
