// Command altroute is the orchestrator binary: it exposes the two
// subcommands original_source/src/main.py defines, prep-landmarks and run,
// dispatched the way mpisat-qumo/main.go dispatches to its own cli package
// (flag.FlagSet per subcommand, RunXxx(args []string) error).
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "prep-landmarks":
		err = RunPrepLandmarks(os.Args[2:])
	case "run":
		err = RunRun(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "altroute: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "altroute:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: altroute <command> [flags]

commands:
  prep-landmarks   build landmark-based ALT tables from a network topology
  run              run the online A* + fuzzy preemption engine`)
}
