// Package engine wires the five components (network, landmark/alt,
// router, preempt) and a sim.Adapter into the host simulation loop
// described by spec.md §5: within one step, call the simulator, run
// preemption maintenance, advance every ambulance's incremental router
// search, then evaluate/apply the preemption trigger. Grounded on
// original_source/src/main.py's cmd_run loop (the Python orchestrator's
// `while adapter.connected: adapter.step(); tlc.maintain_active_priorities();
// ...; incr_search.step(max_expansions=50)`), restructured as a reusable
// Go type instead of one long function so it can be driven by a host CLI
// (cmd/altroute) or by a test harness.
package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/redlane-ems/altroute/alt"
	"github.com/redlane-ems/altroute/fuzzy"
	"github.com/redlane-ems/altroute/network"
	"github.com/redlane-ems/altroute/preempt"
	"github.com/redlane-ems/altroute/router"
	"github.com/redlane-ems/altroute/sim"
)

// Recorder is the metrics surface the engine and its preempt.Controller
// report to. *metrics.Recorder satisfies this; a nil Recorder disables
// observation (see noopRecorder).
type Recorder interface {
	preempt.Recorder
	ReplanStarted()
	Unreachable()
	ExpansionsObserved(n int)
}

type noopRecorder struct{}

func (noopRecorder) PreemptionTriggered(string)  {}
func (noopRecorder) PreemptionReleased(string)   {}
func (noopRecorder) ReplanStarted()              {}
func (noopRecorder) Unreachable()                {}
func (noopRecorder) ExpansionsObserved(int)       {}

// SpawnFunc is called once per step with the current simulation time and
// may spawn a new ambulance via whatever out-of-band capability the host
// wires (spec.md §6 scopes the simulator adapter contract narrowly and
// does not include vehicle creation; spawning is therefore left as a
// pluggable hook rather than forced into sim.Adapter). A nil SpawnFunc
// disables spawning.
type SpawnFunc func(ctx context.Context, now float64)

// Config configures one Engine instance.
type Config struct {
	Graph     *network.Graph
	Heuristic *alt.Heuristic
	Adapter   sim.Adapter
	// Model supplies the fuzzy model the preempt.Controller evaluates each
	// step. A plain *fuzzy.Model works (it satisfies fuzzy.Source via its
	// own Current method); pass a *fuzzy.Watcher instead to pick up model
	// file edits from a parameter learner without restarting the engine.
	Model fuzzy.Source

	Goal string

	// ReplanInterval is the simulated seconds between router cold starts
	// per ambulance (spec.md §5 "replan_interval", default 10).
	ReplanInterval float64
	// MaxExpansions bounds each router.Step call (spec.md §5, default 50).
	MaxExpansions int
	// SnapshotMaxDepth/SnapshotMaxEdges bound the BFS-local neighbourhood
	// used to build each replan's live-edge Snapshot (spec.md §4.D
	// "Snapshot scoping", defaults 2 and 200, grounded on
	// original_source/src/main.py's collect_local_edges).
	SnapshotMaxDepth int
	SnapshotMaxEdges int

	Spawn    SpawnFunc
	Recorder Recorder
	Log      *slog.Logger
}

type ambulanceState struct {
	handle     *router.Handle
	lastReplan float64
	haveRoute  bool
	route      []string
}

// Engine drives the per-step host loop over any number of ambulances
// reported by the sim.Adapter.
type Engine struct {
	graph     *network.Graph
	heuristic *alt.Heuristic
	adapter   sim.Adapter
	rtr       *router.Router
	ctl       *preempt.Controller
	rec       Recorder
	log       *slog.Logger

	goal             string
	replanInterval   float64
	maxExpansions    int
	snapshotMaxDepth int
	snapshotMaxEdges int
	spawn            SpawnFunc

	states map[string]*ambulanceState
}

// New constructs an Engine from cfg, filling in spec.md §5/§6 defaults for
// any zero-valued tunable.
func New(cfg Config) *Engine {
	if cfg.ReplanInterval <= 0 {
		cfg.ReplanInterval = 10
	}
	if cfg.MaxExpansions <= 0 {
		cfg.MaxExpansions = 50
	}
	if cfg.SnapshotMaxDepth <= 0 {
		cfg.SnapshotMaxDepth = 2
	}
	if cfg.SnapshotMaxEdges <= 0 {
		cfg.SnapshotMaxEdges = 200
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	return &Engine{
		graph:            cfg.Graph,
		heuristic:         cfg.Heuristic,
		adapter:          cfg.Adapter,
		rtr:              router.New(cfg.Graph, cfg.Heuristic),
		ctl:              preempt.NewController(cfg.Graph, cfg.Adapter, cfg.Model, cfg.Log, cfg.Recorder),
		rec:              cfg.Recorder,
		log:              cfg.Log,
		goal:             cfg.Goal,
		replanInterval:   cfg.ReplanInterval,
		maxExpansions:    cfg.MaxExpansions,
		snapshotMaxDepth: cfg.SnapshotMaxDepth,
		snapshotMaxEdges: cfg.SnapshotMaxEdges,
		spawn:            cfg.Spawn,
		states:           make(map[string]*ambulanceState),
	}
}

// RouteOf returns the most recently completed route for an ambulance, and
// whether one exists yet. While a replan is in flight this is the
// previous (possibly stale) route, per spec.md §7 "unreachable from
// router: ambulance retains previous route or none".
func (e *Engine) RouteOf(ambulanceID string) ([]string, bool) {
	st, ok := e.states[ambulanceID]
	if !ok || !st.haveRoute {
		return nil, false
	}
	return st.route, true
}

// Preempt exposes the engine's preempt.Controller, e.g. for a status
// endpoint or tests that want to inspect active Records directly.
func (e *Engine) Preempt() *preempt.Controller { return e.ctl }

// Step runs exactly one host-loop iteration: advance the simulator, run
// preemption maintenance, advance every ambulance's router search,
// evaluate/apply the preemption trigger, and optionally spawn. This is
// spec.md §5's ordering.
func (e *Engine) Step(ctx context.Context) {
	e.adapter.Step()
	now := e.adapter.SimTime()

	approaches := e.buildApproaches()
	byAmbulance := make(map[string]preempt.Approach, len(approaches))
	for _, ap := range approaches {
		byAmbulance[ap.AmbulanceID] = ap
	}
	e.ctl.Maintain(byAmbulance)

	e.advanceRouters(approaches, now)

	e.ctl.Trigger(approaches, now)

	if e.spawn != nil {
		e.spawn(ctx, now)
	}
}

// advanceRouters advances every ambulance's router search for this step.
// Each ambulance's state is looked up (and created on first sight)
// sequentially here, since the states map itself is not safe for
// concurrent writes; the actual search work in advanceRouter writes only
// that ambulance's own *ambulanceState and otherwise reads the graph and,
// on a replan, calls the adapter's VehiclePosition and EdgeStats, so those
// adapter calls run concurrently across ambulances. It is fanned out with
// errgroup (spec.md §5 "any number of concurrent searches could read them
// safely"), one goroutine per ambulance with no concurrency limit. A
// router.Step panic or error never occurs here (advanceRouter has no error
// return), so errgroup's role is purely fan-out, not error aggregation.
func (e *Engine) advanceRouters(approaches []preempt.Approach, now float64) {
	states := make([]*ambulanceState, len(approaches))
	for i, ap := range approaches {
		states[i] = e.stateFor(ap.AmbulanceID)
	}

	var g errgroup.Group
	for i, ap := range approaches {
		i, ap := i, ap
		g.Go(func() error {
			e.advanceRouter(states[i], ap.AmbulanceID, now)
			return nil
		})
	}
	_ = g.Wait()
}

// stateFor returns ambulanceID's router state, creating it on first sight.
func (e *Engine) stateFor(ambulanceID string) *ambulanceState {
	st, ok := e.states[ambulanceID]
	if !ok {
		st = &ambulanceState{lastReplan: -1}
		e.states[ambulanceID] = st
	}
	return st
}

// Run calls Step repeatedly until ctx is cancelled or, if maxSimTime is
// positive, until the adapter's reported sim time reaches it.
func (e *Engine) Run(ctx context.Context, maxSimTime float64) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e.Step(ctx)

		if maxSimTime > 0 && e.adapter.SimTime() >= maxSimTime {
			return
		}
	}
}

// buildApproaches constructs one preempt.Approach per currently known
// vehicle, resolving each ambulance's candidate traffic light via
// preempt.CandidateLight (spec.md §4.E "Inputs per step").
func (e *Engine) buildApproaches() []preempt.Approach {
	ids := e.adapter.VehicleIDs()
	out := make([]preempt.Approach, 0, len(ids))

	for _, id := range ids {
		x, y := e.adapter.VehiclePosition(id)
		edge := e.adapter.VehicleEdge(id)
		lane := e.adapter.VehicleLane(id)
		lightID, isNext := preempt.CandidateLight(e.adapter, id, edge, lane)

		out = append(out, preempt.Approach{
			AmbulanceID:      id,
			CurrentEdge:      edge,
			CurrentLane:      lane,
			X:                x,
			Y:                y,
			Speed:            e.adapter.VehicleSpeed(id),
			LightID:          lightID,
			IsNextControlled: isNext,
		})
	}

	return out
}

// advanceRouter cold-starts or resumes ambulanceID's router search,
// replanning from its current nearest node every ReplanInterval seconds
// (spec.md §5 "replan_interval bounds staleness") and advancing it by at
// most MaxExpansions nodes every step (spec.md §5 "max_expansions typical
// 50").
func (e *Engine) advanceRouter(st *ambulanceState, ambulanceID string, now float64) {
	if st.handle == nil || now-st.lastReplan >= e.replanInterval {
		x, y := e.adapter.VehiclePosition(ambulanceID)
		start, ok := e.graph.NearestNode(x, y)
		if !ok {
			return
		}

		if st.handle != nil {
			e.rtr.Abort(st.handle)
		}

		snap := e.buildSnapshot(start)
		st.handle = e.rtr.BeginIncremental(start, e.goal, snap, router.ZeroDelay)
		st.lastReplan = now
		e.rec.ReplanStarted()
		e.log.Debug("engine: replan started", "ambulance", ambulanceID, "start", start, "goal", e.goal)
	}

	status, res := e.rtr.Step(st.handle, e.maxExpansions)
	e.rec.ExpansionsObserved(st.handle.LastStepExpansions())

	switch status {
	case router.Done:
		st.route = res.Path
		st.haveRoute = true
		e.log.Debug("engine: route ready", "ambulance", ambulanceID, "total_time_s", res.TotalTime, "nodes", len(res.Path))
	case router.Unreachable:
		e.rec.Unreachable()
		e.log.Info("engine: route unreachable, keeping previous route", "ambulance", ambulanceID)
	case router.Running:
		// still expanding; previous route (if any) remains current.
	}
}

// buildSnapshot captures live edge stats for the BFS-local neighbourhood
// around start (spec.md §4.D "Snapshot scoping"), grounded on
// original_source/src/main.py's collect_local_edges.
func (e *Engine) buildSnapshot(start string) router.Snapshot {
	edgeIDs := e.localEdgeIDs(start)
	if len(edgeIDs) == 0 {
		return nil
	}

	stats := e.adapter.EdgeStats(edgeIDs)
	snap := make(router.Snapshot, len(stats))
	for id, s := range stats {
		snap[id] = router.EdgeStats{VehicleCount: s.VehicleCount, MeanSpeed: s.MeanSpeed}
	}
	return snap
}

// localEdgeIDs performs a breadth-first traversal from start out to
// SnapshotMaxDepth hops, collecting up to SnapshotMaxEdges outgoing edge
// ids.
func (e *Engine) localEdgeIDs(start string) []string {
	type frontierNode struct {
		id    string
		depth int
	}

	seen := map[string]struct{}{start: {}}
	queue := []frontierNode{{id: start, depth: 0}}
	edges := make([]string, 0, e.snapshotMaxEdges)

	for len(queue) > 0 && len(edges) < e.snapshotMaxEdges {
		n := queue[0]
		queue = queue[1:]

		neighbors, err := e.graph.Neighbors(n.id)
		if err != nil {
			continue
		}
		for _, edge := range neighbors {
			edges = append(edges, edge.ID)
			if len(edges) >= e.snapshotMaxEdges {
				break
			}
			if n.depth < e.snapshotMaxDepth {
				if _, dup := seen[edge.To]; !dup {
					seen[edge.To] = struct{}{}
					queue = append(queue, frontierNode{id: edge.To, depth: n.depth + 1})
				}
			}
		}
	}

	return edges
}
