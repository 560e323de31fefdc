package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlane-ems/altroute/alt"
	"github.com/redlane-ems/altroute/engine"
	"github.com/redlane-ems/altroute/fuzzy"
	"github.com/redlane-ems/altroute/landmark"
	"github.com/redlane-ems/altroute/network"
	"github.com/redlane-ems/altroute/sim"
)

// fakeAdapter is a minimal in-memory sim.Adapter for exercising the
// engine's host loop without a real simulator.
type fakeAdapter struct {
	simTime    float64
	vehicles   []string
	pos        map[string][2]float64
	edge       map[string]string
	lane       map[string]string
	speed      map[string]float64
	lights     []string
	links      map[string][]sim.ControlledLink
	states     map[string]string
	programs   map[string]string
	laneCounts map[string]int
}

func (f *fakeAdapter) VehicleIDs() []string                  { return f.vehicles }
func (f *fakeAdapter) VehicleExists(id string) bool {
	for _, v := range f.vehicles {
		if v == id {
			return true
		}
	}
	return false
}
func (f *fakeAdapter) VehiclePosition(id string) (float64, float64) {
	p := f.pos[id]
	return p[0], p[1]
}
func (f *fakeAdapter) VehicleSpeed(id string) float64         { return f.speed[id] }
func (f *fakeAdapter) VehicleEdge(id string) string           { return f.edge[id] }
func (f *fakeAdapter) VehicleLane(id string) string           { return f.lane[id] }
func (f *fakeAdapter) VehicleNextTLS(id string) []sim.NextTLS { return nil }

func (f *fakeAdapter) TrafficLightIDs() []string                           { return f.lights }
func (f *fakeAdapter) StateString(lightID string) string                  { return f.states[lightID] }
func (f *fakeAdapter) SetStateString(lightID, state string) error         { f.states[lightID] = state; return nil }
func (f *fakeAdapter) SetPhaseDuration(string, float64) error             { return nil }
func (f *fakeAdapter) Program(lightID string) (string, bool)              { p, ok := f.programs[lightID]; return p, ok }
func (f *fakeAdapter) SetProgram(lightID, programID string) error         { f.programs[lightID] = programID; return nil }
func (f *fakeAdapter) ControlledLinks(lightID string) []sim.ControlledLink { return f.links[lightID] }
func (f *fakeAdapter) PhaseIndex(string) int                              { return 0 }
func (f *fakeAdapter) NextSwitch(string) float64                          { return 0 }

func (f *fakeAdapter) EdgeStats(edgeIDs []string) map[string]sim.EdgeStats {
	return map[string]sim.EdgeStats{}
}

func (f *fakeAdapter) LaneVehicleCount(laneID string) int { return f.laneCounts[laneID] }
func (f *fakeAdapter) LaneEdge(string) string             { return "" }

func (f *fakeAdapter) Step()               { f.simTime += 1 }
func (f *fakeAdapter) SimTime() float64    { return f.simTime }
func (f *fakeAdapter) StepLength() float64 { return 1 }

func buildChainGraph(t *testing.T) *network.Graph {
	t.Helper()
	g := network.NewGraph()
	require.NoError(t, g.AddNode("A", 0, 0))
	require.NoError(t, g.AddNode("B", 50, 0))
	require.NoError(t, g.AddNode("C", 100, 0))
	require.NoError(t, g.AddEdge("AB", "A", "B", 50, 10))
	require.NoError(t, g.AddEdge("BC", "B", "C", 50, 10))
	return g
}

func TestEngine_Step_ProducesRoute(t *testing.T) {
	g := buildChainGraph(t)
	table, err := landmark.Precompute(g, 1, 1, "test")
	require.NoError(t, err)
	h := alt.New(table, nil)

	a := &fakeAdapter{
		vehicles: []string{"amb1"},
		pos:      map[string][2]float64{"amb1": {0, 0}},
		edge:     map[string]string{"amb1": "AB"},
		lane:     map[string]string{"amb1": "AB_0"},
		speed:    map[string]float64{"amb1": 10},
		links:    map[string][]sim.ControlledLink{},
		states:   map[string]string{},
		programs: map[string]string{},
	}

	eng := engine.New(engine.Config{
		Graph:     g,
		Heuristic: h,
		Adapter:   a,
		Model:     fuzzy.DefaultModel(),
		Goal:      "C",
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		eng.Step(ctx)
	}

	route, ok := eng.RouteOf("amb1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, route)
}
