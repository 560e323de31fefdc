package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig holds the run subcommand's tunables. An optional --config YAML
// file supplies values that become each flag's default; flags passed on
// the command line still win, mirroring mpisat-qumo/internal/cli/relay.go's
// loadConfig (config file first, flags layered on top).
type RunConfig struct {
	NetworkPath    string  `yaml:"network_path"`
	LandmarkPath   string  `yaml:"landmark_path"`
	AnfisModel     string  `yaml:"anfis_model"`
	StartNode      string  `yaml:"start_node"`
	GoalNode       string  `yaml:"goal_node"`
	SpawnPeriod    float64 `yaml:"spawn_period"`
	ReplanInterval float64 `yaml:"replan_interval"`
	MaxSimTime     float64 `yaml:"max_sim_time"`
	MetricsAddr    string  `yaml:"metrics_addr"`
}

// defaultRunConfig mirrors original_source/src/main.py's argparse defaults
// for the run subcommand.
func defaultRunConfig() RunConfig {
	return RunConfig{
		NetworkPath:    "config/network_with_tl.net.xml",
		LandmarkPath:   "data/landmarks.json",
		AnfisModel:     "models/anfis.json",
		GoalNode:       "cluster_6762197026_6762197027_6762197028_6762197029",
		SpawnPeriod:    60.0,
		ReplanInterval: 10.0,
	}
}

// loadRunConfigFile overrides cfg's fields with whatever keys are present
// in the YAML file at path. A blank path is a no-op, not an error.
func loadRunConfigFile(path string, cfg *RunConfig) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}
