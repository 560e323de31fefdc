package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redlane-ems/altroute/landmark"
	"github.com/redlane-ems/altroute/network"
)

// RunPrepLandmarks builds a landmark.Table from a SUMO .net.xml topology
// and persists it to disk, matching original_source/src/main.py's
// cmd_prep_landmarks flag surface exactly.
func RunPrepLandmarks(args []string) error {
	fs := flag.NewFlagSet("prep-landmarks", flag.ExitOnError)
	net := fs.String("net", "config/network_with_tl.net.xml", "path to the SUMO .net.xml topology")
	output := fs.String("output", "data/landmarks.json", "output landmark table path")
	numLandmarks := fs.Int("num-landmarks", 8, "number of landmarks to select (6-10 recommended)")
	seed := fs.Int64("seed", 42, "random seed for landmark selection reproducibility")
	fs.Parse(args)

	log := slog.Default()
	log.Info("prep-landmarks: loading network", "net", *net)

	res, err := network.LoadTopology(*net)
	if err != nil {
		return fmt.Errorf("load network: %w", err)
	}
	if res.Skipped > 0 {
		log.Debug("prep-landmarks: skipped malformed topology records", "count", res.Skipped)
	}

	table, err := landmark.Precompute(res.Graph, *numLandmarks, *seed, *net)
	if err != nil {
		return fmt.Errorf("precompute landmarks: %w", err)
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := table.Save(*output); err != nil {
		return fmt.Errorf("save landmark table: %w", err)
	}

	log.Info("prep-landmarks: landmark table written", "path", *output, "landmarks", len(table.Landmarks))
	return nil
}
