// File: controller.go
// Role: the per-light preemption state machine itself — trigger
// evaluation, state synthesis and apply, and the maintain/release loop the
// host calls once per simulation step (spec.md §4.E, §5). Grounded on
// original_source/src/controllers/traffic_light.py's
// TrafficLightController.update, split into Trigger and Maintain so the
// host loop can interleave them with the router's incremental step exactly
// as spec.md §5 orders: simulator.step(), preemption maintenance, router
// step, trigger evaluation/application.
package preempt

import (
	"log/slog"

	"github.com/redlane-ems/altroute/fuzzy"
	"github.com/redlane-ems/altroute/network"
	"github.com/redlane-ems/altroute/sim"
)

// keepGreenSeconds is the small refresh duration re-asserted on every
// maintenance step for an already-active light, so the simulator's
// internal phase timer doesn't revert the override before the next step
// (spec.md §4.E "Maintenance": "a small 'keep-green' ~= 1.5 s").
const keepGreenSeconds = 1.5

// Recorder observes preemption lifecycle transitions for metrics. Both
// methods are called synchronously from the host loop's goroutine; a nil
// Recorder passed to NewController is replaced by a no-op implementation,
// so callers that don't care about metrics never need to branch.
type Recorder interface {
	PreemptionTriggered(lightID string)
	PreemptionReleased(lightID string)
}

type noopRecorder struct{}

func (noopRecorder) PreemptionTriggered(string) {}
func (noopRecorder) PreemptionReleased(string)  {}

// Controller owns every traffic light's preemption Record and evaluates
// the fuzzy trigger/extend banks against live Approach features. It is
// touched only from the host loop (spec.md §5 "Preemption records are
// owned by the controller and touched only from the host loop"); no
// internal locking is needed under that single-threaded contract.
type Controller struct {
	graph   *network.Graph
	adapter sim.Adapter
	model   fuzzy.Source
	log     *slog.Logger
	rec     Recorder

	records map[string]*Record // lightID -> active Record
}

// NewController returns a Controller over g/a/model. model is a
// fuzzy.Source rather than a bare *fuzzy.Model so a *fuzzy.Watcher can be
// passed directly for hot-reloading deployments; a plain *fuzzy.Model
// (which satisfies fuzzy.Source via its own Current method) works just as
// well when no reload is wanted. A nil logger defaults to slog.Default();
// a nil recorder disables metrics observation.
func NewController(g *network.Graph, a sim.Adapter, model fuzzy.Source, log *slog.Logger, rec Recorder) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = noopRecorder{}
	}
	return &Controller{
		graph:   g,
		adapter: a,
		model:   model,
		log:     log,
		rec:     rec,
		records: make(map[string]*Record),
	}
}

// Record returns the active Record for lightID, if any, and whether one
// exists. Exposed for tests and for a host that wants to surface current
// preemption state (e.g. a status endpoint).
func (c *Controller) Record(lightID string) (Record, bool) {
	r, ok := c.records[lightID]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// ActiveCount reports how many lights currently carry a preemption Record.
func (c *Controller) ActiveCount() int {
	return len(c.records)
}

// Maintain runs one step of the maintenance pass over every active record
// (spec.md §4.E "Maintenance"). approaches is keyed by ambulance id, one
// entry per ambulance the host still considers live this step (an
// ambulance with no entry, or for which sim.Adapter.VehicleExists reports
// false, is treated as vanished).
//
// For each active record: release if the ambulance no longer exists, or if
// the light is no longer its upcoming controlled light AND the ambulance's
// planar distance to the light exceeds release_distance_m. Otherwise
// re-assert the imposed state string and refresh the keep-green duration,
// per spec.md §7 "Simulator call failure mid-loop: swallowed for that
// step; state machine retries next step."
func (c *Controller) Maintain(approaches map[string]Approach) {
	model := c.model.Current()
	for lightID, rec := range c.records {
		ap, tracked := approaches[rec.AmbulanceID]
		ambulanceLive := tracked && c.adapter.VehicleExists(rec.AmbulanceID)
		if !ambulanceLive {
			c.release(lightID)
			continue
		}

		stillUpcoming := ap.LightID == lightID && ap.IsNextControlled
		if !stillUpcoming {
			dist := planarDistToLight(c.graph, Approach{LightID: lightID, X: ap.X, Y: ap.Y})
			if dist > model.Params.ReleaseDistanceM {
				c.release(lightID)
				continue
			}
		}

		_ = c.adapter.SetStateString(lightID, rec.ImposedState)
		_ = c.adapter.SetPhaseDuration(lightID, keepGreenSeconds)
	}
}

// Step runs one full host-loop cycle for the controller: Maintain over the
// existing records, then Trigger over this step's approaches, matching
// spec.md §5's ordering of "preemption maintenance" before "trigger
// evaluation and application" within a single simulation step.
func (c *Controller) Step(approaches []Approach, now float64) {
	byAmbulance := make(map[string]Approach, len(approaches))
	for _, ap := range approaches {
		byAmbulance[ap.AmbulanceID] = ap
	}

	c.Maintain(byAmbulance)
	c.Trigger(approaches, now)
}

// Trigger evaluates the fuzzy trigger bank for every Approach that names a
// candidate light and, where a light has no existing Record, decides
// whether to activate preemption on it (spec.md §4.E "Trigger decision").
// An Approach naming a light already held by a different ambulance is
// skipped outright, preserving the "at most one preemption per light"
// invariant (spec.md §3, §8). An Approach naming a light already held by
// the same ambulance is left to Maintain, which re-asserts it.
func (c *Controller) Trigger(approaches []Approach, now float64) {
	model := c.model.Current()
	for _, ap := range approaches {
		if ap.LightID == "" {
			continue
		}
		if existing, ok := c.records[ap.LightID]; ok {
			if existing.AmbulanceID != ap.AmbulanceID {
				continue // invariant: one ambulance per light at a time
			}
			continue // already active for this ambulance; Maintain handles it
		}

		feats := extractFeatures(c.graph, c.adapter, ap, now)
		fm := feats.AsMap()
		p := model.PredictTriggerProb(fm)

		if p > model.Params.TriggerThreshold || feats.DistToTLS <= model.Params.NearForceDistanceM {
			c.activate(ap, feats)
		}
	}
}

// activate synthesises the favouring state string for ap's light,
// captures the light's original program id (if unknown, recorded with
// HasOriginalID=false per spec.md §7 "Preemption on a light with unknown
// program: apply state without recording restore target"), and pushes the
// state and extended green duration to the simulator.
func (c *Controller) activate(ap Approach, feats Features) {
	links := c.adapter.ControlledLinks(ap.LightID)
	state := synthesizeState(links, ap)
	green := c.model.Current().PredictExtendSeconds(feats.AsMap())

	rec := &Record{
		State:       Active,
		AmbulanceID: ap.AmbulanceID,
	}
	if progID, ok := c.adapter.Program(ap.LightID); ok {
		rec.OriginalProgID = progID
		rec.HasOriginalID = true
	}
	rec.ImposedState = state
	c.records[ap.LightID] = rec

	if err := c.adapter.SetStateString(ap.LightID, state); err != nil {
		c.log.Debug("preempt: set state string failed, will retry", "light", ap.LightID, "err", err)
	}
	if err := c.adapter.SetPhaseDuration(ap.LightID, green); err != nil {
		c.log.Debug("preempt: set phase duration failed, will retry", "light", ap.LightID, "err", err)
	}

	c.log.Info("preempt: triggered", "light", ap.LightID, "ambulance", ap.AmbulanceID, "state", state, "green_s", green)
	c.rec.PreemptionTriggered(ap.LightID)
}

// release restores lightID's original program (if one was captured) and
// deletes its Record. A failed SetProgram call is swallowed per spec.md
// §7; the record is still removed — re-triggering the light on some future
// step starts a fresh Record rather than retrying a stale restore.
func (c *Controller) release(lightID string) {
	rec, ok := c.records[lightID]
	if !ok {
		return
	}

	if rec.HasOriginalID {
		if err := c.adapter.SetProgram(lightID, rec.OriginalProgID); err != nil {
			c.log.Debug("preempt: restore program failed", "light", lightID, "err", err)
		}
	}

	delete(c.records, lightID)
	c.log.Info("preempt: released", "light", lightID, "ambulance", rec.AmbulanceID)
	c.rec.PreemptionReleased(lightID)
}
