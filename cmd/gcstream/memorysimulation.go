package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/memsim"
	"github.com/alpenlabs/garbled-circuits/report"
)

func runMemorySimulation(args []string) error {
	fs := flag.NewFlagSet("memory-simulation", flag.ExitOnError)
	wirePath := fs.String("w", "", "wire-analysis artifact (required)")
	out := fs.String("o", "", "output CSV path (required)")
	quiet := fs.Bool("q", false, "suppress progress bar")
	verbose := fs.Bool("v", false, "print a timing report")
	fs.Parse(args)

	if fs.NArg() != 1 || *wirePath == "" || *out == "" {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)

	t := report.NewTiming()

	wa, err := liveness.Load(*wirePath)
	if err != nil {
		return err
	}
	t.Step("load wire analysis")

	f, bar, err := openCircuit(path, *quiet, "simulating")
	if err != nil {
		return err
	}
	defer f.Close()
	defer bar.Close()

	tmp, err := createArtifact(*out)
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	result, err := memsim.Run(context.Background(), f, wa, tmp, bar.Set)
	if err != nil {
		tmp.Close()
		return err
	}
	t.Step("simulate")

	if err := finishArtifact(tmp, *out); err != nil {
		return err
	}
	t.Step("write csv")

	if err := wa.Save(*wirePath); err != nil {
		return err
	}
	t.Step("write back peak residency")

	report.Memsim(os.Stdout, result)
	log.Printf("wrote %s, updated %s", *out, *wirePath)
	if *verbose {
		t.Print(os.Stdout)
	}
	return nil
}
