package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redlane-ems/altroute/alt"
	"github.com/redlane-ems/altroute/fuzzy"
	"github.com/redlane-ems/altroute/landmark"
	"github.com/redlane-ems/altroute/metrics"
	"github.com/redlane-ems/altroute/network"
	"github.com/redlane-ems/altroute/router"
)

// RunRun loads the topology, landmark table, and fuzzy model, computes an
// initial route, and (absent a simulator to drive) reports it — matching
// original_source/src/main.py's cmd_run, which always computes the A*
// route first and only attempts the optional SUMO integration afterward,
// swallowing a connection failure into a warning rather than exiting.
//
// This package ships no sim.Adapter implementation: the traffic simulator
// is an external collaborator (spec.md §1), so driving engine.Engine
// against a live simulation is a job for a host program that embeds this
// module and supplies its own sim.Adapter. RunRun's CLI surface therefore
// always runs in the "dry-run" mode original_source calls --dry-run; a
// live run additionally needs a binary wired to that simulator.
func RunRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	netPath := fs.String("net", "", "path to the SUMO .net.xml topology (overrides --config)")
	landmarkPath := fs.String("landmarks", "", "path to the landmark JSON table (overrides --config)")
	anfisModel := fs.String("anfis-model", "", "path to the fuzzy model JSON document (overrides --config)")
	configPath := fs.String("config", "", "optional YAML file supplying defaults for the flags below")
	startNode := fs.String("start-node", "", "starting junction id (default: first node in the graph)")
	goalNode := fs.String("goal-node", "", "goal (hospital) junction id")
	spawnPeriod := fs.Float64("spawn-period", 0, "ambulance spawn period, seconds")
	replanInterval := fs.Float64("replan-interval", 0, "router replan period, seconds")
	maxSimTime := fs.Float64("max-sim-time", 0, "stop after this many simulated seconds (0: unbounded)")
	metricsAddr := fs.String("metrics-addr", "", "if set, serve Prometheus metrics at this address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := defaultRunConfig()
	if err := loadRunConfigFile(*configPath, &cfg); err != nil {
		return err
	}
	applyRunFlags(&cfg, fs, *netPath, *landmarkPath, *anfisModel, *startNode, *goalNode, *spawnPeriod, *replanInterval, *maxSimTime, *metricsAddr)

	log := slog.Default()

	if cfg.MetricsAddr != "" {
		if err := metrics.Setup(metrics.Config{Addr: cfg.MetricsAddr}); err != nil {
			return fmt.Errorf("setup metrics: %w", err)
		}
		log.Info("run: metrics server started", "addr", cfg.MetricsAddr)
	}

	log.Info("run: loading network", "net", cfg.NetworkPath)
	netRes, err := network.LoadTopology(cfg.NetworkPath)
	if err != nil {
		return fmt.Errorf("load network: %w", err)
	}
	if netRes.Skipped > 0 {
		log.Debug("run: skipped malformed topology records", "count", netRes.Skipped)
	}
	stats := netRes.Graph.Stats()
	log.Info("run: network loaded", "nodes", stats.NodeCount, "edges", stats.EdgeCount)

	log.Info("run: loading landmark table", "path", cfg.LandmarkPath)
	table, err := landmark.Load(cfg.LandmarkPath)
	if err != nil {
		return fmt.Errorf("load landmark table: %w", err)
	}
	heuristic := alt.New(table, alt.Identity)

	// WatchModel loads cfg.AnfisModel and keeps it fresh across fsnotify
	// events, so a host embedding engine.New with this Source picks up a
	// learner's edits to the model file without restarting (spec.md §9:
	// the learner is an external collaborator this engine only needs to
	// coordinate with, not invoke). Missing/unreadable model files fall
	// back to fuzzy.DefaultModel, matching original_source's
	// anfis_model_path-or-None behavior.
	var model fuzzy.Source = fuzzy.DefaultModel()
	if cfg.AnfisModel != "" {
		watcher, err := fuzzy.WatchModel(cfg.AnfisModel)
		if err != nil {
			log.Warn("run: fuzzy model unavailable, using defaults", "path", cfg.AnfisModel, "error", err)
		} else {
			defer watcher.Close()
			model = watcher
			log.Info("run: watching fuzzy model for changes", "path", cfg.AnfisModel)
		}
	}
	current := model.Current()
	log.Info("run: fuzzy model ready", "min_green_s", current.MinGreen, "max_green_s", current.MaxGreen,
		"trigger_rules", len(current.RulesTrigger), "extend_rules", len(current.RulesExtend))

	start := cfg.StartNode
	goal := cfg.GoalNode
	if start == "" || goal == "" {
		nodes := netRes.Graph.Nodes()
		if len(nodes) < 2 {
			return fmt.Errorf("network too small: need at least 2 nodes, found %d", len(nodes))
		}
		if start == "" {
			start = nodes[0]
		}
		if goal == "" {
			goal = nodes[len(nodes)-1]
		}
	}

	log.Info("run: computing initial route", "start", start, "goal", goal)
	rtr := router.New(netRes.Graph, heuristic)
	result, err := rtr.Plan(start, goal, nil, router.ZeroDelay)
	if err != nil {
		log.Error("run: no route found", "start", start, "goal", goal, "error", err)
		return fmt.Errorf("plan %s -> %s: %w", start, goal, err)
	}

	log.Info("run: route computed", "total_time_s", result.TotalTime, "nodes", len(result.Path))
	preview := result.Path
	truncated := false
	if len(preview) > 10 {
		preview = preview[:10]
		truncated = true
	}
	sample := strings.Join(preview, " -> ")
	if truncated {
		sample += " -> ..."
	}
	log.Info("run: route preview", "path", sample)

	log.Warn("run: no simulator adapter wired; route computed but not driven",
		"hint", "embed engine.New with a sim.Adapter implementation to run a live simulation",
		"spawn_period_s", cfg.SpawnPeriod, "replan_interval_s", cfg.ReplanInterval, "max_sim_time_s", cfg.MaxSimTime)

	return nil
}

// applyRunFlags overwrites cfg's fields with any flag the caller actually
// set on the command line, so an explicit flag always outranks the config
// file (mirroring mpisat-qumo/internal/cli/relay.go's "config first, flags
// layered on top").
func applyRunFlags(cfg *RunConfig, fs *flag.FlagSet, netPath, landmarkPath, anfisModel, startNode, goalNode string, spawnPeriod, replanInterval, maxSimTime float64, metricsAddr string) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["net"] {
		cfg.NetworkPath = netPath
	}
	if set["landmarks"] {
		cfg.LandmarkPath = landmarkPath
	}
	if set["anfis-model"] {
		cfg.AnfisModel = anfisModel
	}
	if set["start-node"] {
		cfg.StartNode = startNode
	}
	if set["goal-node"] {
		cfg.GoalNode = goalNode
	}
	if set["spawn-period"] {
		cfg.SpawnPeriod = spawnPeriod
	}
	if set["replan-interval"] {
		cfg.ReplanInterval = replanInterval
	}
	if set["max-sim-time"] {
		cfg.MaxSimTime = maxSimTime
	}
	if set["metrics-addr"] {
		cfg.MetricsAddr = metricsAddr
	}
}
