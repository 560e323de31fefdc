package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const runTestNet = `<?xml version="1.0"?>
<net>
  <junction id="A" x="0" y="0" type="priority"/>
  <junction id="B" x="100" y="0" type="priority"/>
  <edge id="AB" from="A" to="B" function="normal">
    <lane length="100" speed="10"/>
  </edge>
</net>`

const runTestLandmarks = `{
  "meta": {"network": "test", "num_nodes": 2, "num_edges": 1, "num_landmarks": 1},
  "landmarks": ["A"],
  "tables": {"A": {"A": 0, "B": 10}}
}`

func writeRunFixtures(t *testing.T) (netPath, landmarkPath string) {
	t.Helper()
	dir := t.TempDir()
	netPath = filepath.Join(dir, "net.xml")
	landmarkPath = filepath.Join(dir, "landmarks.json")
	require.NoError(t, os.WriteFile(netPath, []byte(runTestNet), 0o644))
	require.NoError(t, os.WriteFile(landmarkPath, []byte(runTestLandmarks), 0o644))
	return netPath, landmarkPath
}

// TestRunRun_ComputesRouteWithoutAdapter exercises scenario 1 of spec.md
// §8 through the CLI surface: no sim.Adapter is wired (none ships in this
// repo, see DESIGN.md), so RunRun must still load its inputs, compute the
// initial route, log it, and return a nil error rather than failing.
func TestRunRun_ComputesRouteWithoutAdapter(t *testing.T) {
	netPath, landmarkPath := writeRunFixtures(t)

	err := RunRun([]string{
		"--net", netPath,
		"--landmarks", landmarkPath,
		"--start-node", "A",
		"--goal-node", "B",
	})
	require.NoError(t, err)
}

// TestRunRun_UnreachableGoalReturnsError covers spec.md §8 scenario 1's
// mirror case (plan(B, A) is unreachable): the CLI should surface that as
// a non-nil error so the process can exit non-zero, per spec.md §6 "Exit
// code 0 on success, non-zero on startup failure".
func TestRunRun_UnreachableGoalReturnsError(t *testing.T) {
	netPath, landmarkPath := writeRunFixtures(t)

	err := RunRun([]string{
		"--net", netPath,
		"--landmarks", landmarkPath,
		"--start-node", "B",
		"--goal-node", "A",
	})
	require.Error(t, err)
}

// TestRunRun_MissingNetworkFileFails covers spec.md §7's "missing
// topology file at startup: fatal" policy.
func TestRunRun_MissingNetworkFileFails(t *testing.T) {
	_, landmarkPath := writeRunFixtures(t)

	err := RunRun([]string{
		"--net", filepath.Join(t.TempDir(), "missing.net.xml"),
		"--landmarks", landmarkPath,
		"--start-node", "A",
		"--goal-node", "B",
	})
	require.Error(t, err)
}
