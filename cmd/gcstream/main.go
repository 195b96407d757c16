// Command gcstream is the streaming-garbled-circuits research
// toolkit's CLI: a single binary dispatching subcommands over the
// modified Bristol Fashion gate stream, in the style of the lineage's
// own flag.NewFlagSet-per-subcommand tools (apps/garbled, apps/circuit).
package main

import (
	"fmt"
	"os"
)

func usage() {
	fmt.Fprint(os.Stderr, `usage: gcstream <command> [arguments]

Commands:
  count             <circuit>
  wire-analysis     <circuit> [-o out]
  memory-simulation <circuit> -w wire_analysis -o csv
  garble            <circuit> -w wire_analysis [-s seed] [-o dir]
  ot-simulate       -w labels.json [-s seed2] -o ot.json
  evaluate          <circuit> -w wire_analysis -t ot.json -g garbled [-o eval.json]

garble and ot-simulate draw and persist a fresh seed when -s is omitted.
All commands accept -q (suppress progress bar) and -v (print a timing report).
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "count":
		err = runCount(os.Args[2:])
	case "wire-analysis":
		err = runWireAnalysis(os.Args[2:])
	case "memory-simulation":
		err = runMemorySimulation(os.Args[2:])
	case "garble":
		err = runGarble(os.Args[2:])
	case "ot-simulate":
		err = runOTSimulate(os.Args[2:])
	case "evaluate":
		err = runEvaluate(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "gcstream: unknown command %q\n", os.Args[1])
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "gcstream %s: %s\n", os.Args[1], err)
		os.Exit(1)
	}
}
