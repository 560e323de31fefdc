// Package sim declares the narrow capability set the engine consumes from
// a traffic simulator: vehicle telemetry, traffic-light state, and
// per-edge live metrics (spec.md §6, "Simulator adapter contract"). The
// simulator itself, the XML network-file producer, random-trip route
// generation, and any learner integration are out of scope (spec.md §1) —
// this package only names the boundary.
//
// Grounded on original_source/src/adapters/sumo_adapter.py's SumoAdapter:
// every method here has a direct counterpart there, trimmed to what the
// router and preemption controller actually read. All calls are
// synchronous; the engine never assumes the adapter runs on its own
// goroutine (spec.md §5).
package sim

// ControlledLink is one input-to-output lane movement at a signalised
// junction; each character of a traffic light's state string controls
// exactly one of these, in index order.
type ControlledLink struct {
	InLane  string
	OutLane string
}

// EdgeStats is the live per-edge sample the router's Snapshot is built
// from: vehicle_count and mean_speed, per spec.md §4.D.
type EdgeStats struct {
	VehicleCount int
	MeanSpeed    float64
}

// NextTLS describes the next controlled traffic light ahead of a vehicle
// along its current route, as reported by the simulator.
type NextTLS struct {
	LightID string
	Dist    float64 // metres, network distance along the route
}

// VehicleAdapter is the subset of the contract concerning vehicles:
// position, speed, current edge/lane, and the next controlled light.
type VehicleAdapter interface {
	VehicleIDs() []string
	VehicleExists(id string) bool
	VehiclePosition(id string) (x, y float64)
	VehicleSpeed(id string) float64
	VehicleEdge(id string) string
	VehicleLane(id string) string
	// VehicleNextTLS returns the next controlled light(s) ahead of id in
	// route order; an empty slice means none is known.
	VehicleNextTLS(id string) []NextTLS
}

// TrafficLightAdapter is the subset of the contract concerning traffic
// lights: state string, phase duration, program id, and controlled links.
type TrafficLightAdapter interface {
	TrafficLightIDs() []string
	StateString(lightID string) string
	SetStateString(lightID, state string) error
	SetPhaseDuration(lightID string, seconds float64) error
	Program(lightID string) (string, bool)
	SetProgram(lightID, programID string) error
	ControlledLinks(lightID string) []ControlledLink
	// PhaseIndex returns the light's current phase ordinal.
	PhaseIndex(lightID string) int
	// NextSwitch returns the simulation time (seconds) at which the
	// light's current phase is scheduled to end.
	NextSwitch(lightID string) float64
}

// EdgeStatsAdapter reports live per-edge congestion metrics, the source of
// a router.Snapshot.
type EdgeStatsAdapter interface {
	// EdgeStats returns live metrics for the requested edge ids only
	// (spec.md §4.D "snapshot scoping" — the host may restrict this to a
	// BFS-local neighbourhood). Edges with no current sample are simply
	// absent from the result.
	EdgeStats(edgeIDs []string) map[string]EdgeStats
}

// LaneAdapter reports per-lane occupancy, the basis of the preemption
// controller's queue_length feature (spec.md §4.E: "sum over controlled
// input lanes of vehicle_count * 7.5").
type LaneAdapter interface {
	LaneVehicleCount(laneID string) int
	// LaneEdge returns the edge id a lane belongs to, or "" if unknown.
	LaneEdge(laneID string) string
}

// StepAdapter advances the simulation and reports timing.
type StepAdapter interface {
	Step()
	SimTime() float64
	StepLength() float64
}

// Adapter is the complete simulator capability set the engine depends on.
// A host wires a concrete implementation (e.g. a TraCI/SUMO client) once
// at startup; the engine and preempt packages accept only this interface,
// so tests can supply a deterministic in-memory stub.
type Adapter interface {
	VehicleAdapter
	TrafficLightAdapter
	EdgeStatsAdapter
	LaneAdapter
	StepAdapter
}
