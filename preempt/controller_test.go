package preempt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlane-ems/altroute/fuzzy"
	"github.com/redlane-ems/altroute/network"
	"github.com/redlane-ems/altroute/preempt"
	"github.com/redlane-ems/altroute/sim"
)

// fakeAdapter is a minimal, fully in-memory sim.Adapter stub for testing
// the preemption controller without any real simulator.
type fakeAdapter struct {
	vehicles    map[string]bool
	pos         map[string][2]float64
	speed       map[string]float64
	edge        map[string]string
	lane        map[string]string
	nextTLS     map[string][]sim.NextTLS
	states      map[string]string
	programs    map[string]string
	hasProgram  map[string]bool
	links       map[string][]sim.ControlledLink
	phaseIdx    map[string]int
	nextSwitch  map[string]float64
	laneCounts  map[string]int
	setStateErr error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		vehicles:   map[string]bool{},
		pos:        map[string][2]float64{},
		speed:      map[string]float64{},
		edge:       map[string]string{},
		lane:       map[string]string{},
		nextTLS:    map[string][]sim.NextTLS{},
		states:     map[string]string{},
		programs:   map[string]string{},
		hasProgram: map[string]bool{},
		links:      map[string][]sim.ControlledLink{},
		phaseIdx:   map[string]int{},
		nextSwitch: map[string]float64{},
		laneCounts: map[string]int{},
	}
}

func (f *fakeAdapter) VehicleIDs() []string {
	ids := make([]string, 0, len(f.vehicles))
	for id := range f.vehicles {
		ids = append(ids, id)
	}
	return ids
}
func (f *fakeAdapter) VehicleExists(id string) bool        { return f.vehicles[id] }
func (f *fakeAdapter) VehiclePosition(id string) (float64, float64) {
	p := f.pos[id]
	return p[0], p[1]
}
func (f *fakeAdapter) VehicleSpeed(id string) float64       { return f.speed[id] }
func (f *fakeAdapter) VehicleEdge(id string) string         { return f.edge[id] }
func (f *fakeAdapter) VehicleLane(id string) string         { return f.lane[id] }
func (f *fakeAdapter) VehicleNextTLS(id string) []sim.NextTLS { return f.nextTLS[id] }

func (f *fakeAdapter) TrafficLightIDs() []string {
	ids := make([]string, 0, len(f.links))
	for id := range f.links {
		ids = append(ids, id)
	}
	return ids
}
func (f *fakeAdapter) StateString(lightID string) string { return f.states[lightID] }
func (f *fakeAdapter) SetStateString(lightID, state string) error {
	f.states[lightID] = state
	return f.setStateErr
}
func (f *fakeAdapter) SetPhaseDuration(lightID string, seconds float64) error { return nil }
func (f *fakeAdapter) Program(lightID string) (string, bool) {
	return f.programs[lightID], f.hasProgram[lightID]
}
func (f *fakeAdapter) SetProgram(lightID, programID string) error {
	f.programs[lightID] = programID
	return nil
}
func (f *fakeAdapter) ControlledLinks(lightID string) []sim.ControlledLink { return f.links[lightID] }
func (f *fakeAdapter) PhaseIndex(lightID string) int                       { return f.phaseIdx[lightID] }
func (f *fakeAdapter) NextSwitch(lightID string) float64                   { return f.nextSwitch[lightID] }

func (f *fakeAdapter) EdgeStats(edgeIDs []string) map[string]sim.EdgeStats {
	return map[string]sim.EdgeStats{}
}

func (f *fakeAdapter) LaneVehicleCount(laneID string) int { return f.laneCounts[laneID] }
func (f *fakeAdapter) LaneEdge(laneID string) string      { return "" }

func (f *fakeAdapter) Step()                 {}
func (f *fakeAdapter) SimTime() float64      { return 0 }
func (f *fakeAdapter) StepLength() float64   { return 0.1 }

func buildGraphWithLight(t *testing.T) *network.Graph {
	t.Helper()
	g := network.NewGraph()
	require.NoError(t, g.AddNode("A", 0, 0))
	require.NoError(t, g.AddNode("TLS1", 100, 0))
	require.NoError(t, g.AddEdge("e_in", "A", "TLS1", 100, 10))
	return g
}

// Scenario 5: fuzzy trigger border — at 30 m and 7 m/s (eta 30/7 s) the
// near + soon rule fires at about 0.93, above the 0.5 threshold, and 30 m is
// also inside the 200 m near-force distance, so the light goes ACTIVE.
func TestController_Trigger_ActivatesOnStrongFire(t *testing.T) {
	g := buildGraphWithLight(t)
	a := newFakeAdapter()
	a.vehicles["amb1"] = true
	a.links["TLS1"] = []sim.ControlledLink{{InLane: "e_in_0"}, {InLane: "other_0"}}
	a.states["TLS1"] = "rr"
	a.hasProgram["TLS1"] = true
	a.programs["TLS1"] = "0"

	c := preempt.NewController(g, a, fuzzy.DefaultModel(), nil, nil)

	ap := preempt.Approach{
		AmbulanceID:      "amb1",
		CurrentEdge:      "e_in",
		CurrentLane:      "e_in_0",
		X:                70, Y: 0,
		Speed:            7,
		LightID:          "TLS1",
		IsNextControlled: true,
	}
	c.Trigger([]preempt.Approach{ap}, 0)

	rec, ok := c.Record("TLS1")
	require.True(t, ok)
	assert.Equal(t, preempt.Active, rec.State)
	assert.Equal(t, "amb1", rec.AmbulanceID)
	assert.Equal(t, "G", string(a.states["TLS1"][0]))
	assert.Equal(t, "r", string(a.states["TLS1"][1]))
}

// No light is ever ACTIVE for two distinct ambulances simultaneously.
func TestController_Trigger_SecondAmbulanceDoesNotStealLight(t *testing.T) {
	g := buildGraphWithLight(t)
	a := newFakeAdapter()
	a.vehicles["amb1"] = true
	a.vehicles["amb2"] = true
	a.links["TLS1"] = []sim.ControlledLink{{InLane: "e_in_0"}}
	a.hasProgram["TLS1"] = true

	c := preempt.NewController(g, a, fuzzy.DefaultModel(), nil, nil)

	ap1 := preempt.Approach{AmbulanceID: "amb1", CurrentEdge: "e_in", CurrentLane: "e_in_0", X: 70, Speed: 7, LightID: "TLS1", IsNextControlled: true}
	ap2 := preempt.Approach{AmbulanceID: "amb2", CurrentEdge: "e_in", CurrentLane: "e_in_0", X: 70, Speed: 7, LightID: "TLS1", IsNextControlled: true}

	c.Trigger([]preempt.Approach{ap1}, 0)
	c.Trigger([]preempt.Approach{ap2}, 0)

	rec, ok := c.Record("TLS1")
	require.True(t, ok)
	assert.Equal(t, "amb1", rec.AmbulanceID)
	assert.Equal(t, 1, c.ActiveCount())
}

// Scenario 6: release when beyond release_distance_m and no longer next-controlled.
func TestController_Maintain_ReleasesBeyondDistance(t *testing.T) {
	g := buildGraphWithLight(t)
	a := newFakeAdapter()
	a.vehicles["amb1"] = true
	a.links["TLS1"] = []sim.ControlledLink{{InLane: "e_in_0"}}
	a.hasProgram["TLS1"] = true
	a.programs["TLS1"] = "prog-0"

	c := preempt.NewController(g, a, fuzzy.DefaultModel(), nil, nil)

	triggerAp := preempt.Approach{AmbulanceID: "amb1", CurrentEdge: "e_in", CurrentLane: "e_in_0", X: 70, LightID: "TLS1", IsNextControlled: true, Speed: 10}
	c.Trigger([]preempt.Approach{triggerAp}, 0)
	_, ok := c.Record("TLS1")
	require.True(t, ok)

	// Node TLS1 is at (100, 0); place the ambulance 60m away (default
	// release_distance_m is 50), and report it no longer approaching TLS1.
	farAp := preempt.Approach{AmbulanceID: "amb1", X: 40, Y: 0, LightID: "", IsNextControlled: false}
	c.Maintain(map[string]preempt.Approach{"amb1": farAp})

	_, stillActive := c.Record("TLS1")
	assert.False(t, stillActive)
	assert.Equal(t, "prog-0", a.programs["TLS1"])
}

func TestController_Maintain_ReassertsWhileApproaching(t *testing.T) {
	g := buildGraphWithLight(t)
	a := newFakeAdapter()
	a.vehicles["amb1"] = true
	a.links["TLS1"] = []sim.ControlledLink{{InLane: "e_in_0"}}
	a.hasProgram["TLS1"] = true

	c := preempt.NewController(g, a, fuzzy.DefaultModel(), nil, nil)
	ap := preempt.Approach{AmbulanceID: "amb1", CurrentEdge: "e_in", CurrentLane: "e_in_0", X: 70, LightID: "TLS1", IsNextControlled: true, Speed: 10}
	c.Trigger([]preempt.Approach{ap}, 0)

	imposed := a.states["TLS1"]
	a.states["TLS1"] = "rr" // simulate the simulator's own timer reverting it

	c.Maintain(map[string]preempt.Approach{"amb1": ap})
	assert.Equal(t, imposed, a.states["TLS1"])
	_, ok := c.Record("TLS1")
	assert.True(t, ok)
}

func TestController_Maintain_ReleasesOnVanish(t *testing.T) {
	g := buildGraphWithLight(t)
	a := newFakeAdapter()
	a.vehicles["amb1"] = true
	a.links["TLS1"] = []sim.ControlledLink{{InLane: "e_in_0"}}
	a.hasProgram["TLS1"] = true
	a.programs["TLS1"] = "orig"

	c := preempt.NewController(g, a, fuzzy.DefaultModel(), nil, nil)
	ap := preempt.Approach{AmbulanceID: "amb1", CurrentEdge: "e_in", CurrentLane: "e_in_0", X: 70, LightID: "TLS1", IsNextControlled: true, Speed: 10}
	c.Trigger([]preempt.Approach{ap}, 0)

	a.vehicles["amb1"] = false // ambulance vanished
	c.Maintain(map[string]preempt.Approach{})

	_, ok := c.Record("TLS1")
	assert.False(t, ok)
	assert.Equal(t, "orig", a.programs["TLS1"])
}
