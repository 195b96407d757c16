package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/alpenlabs/garbled-circuits/evaluate"
	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/otsim"
	"github.com/alpenlabs/garbled-circuits/report"
)

func runEvaluate(args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	wirePath := fs.String("w", "", "wire-analysis artifact (required)")
	otPath := fs.String("t", "", "ot.json from ot-simulate (required)")
	garbledPath := fs.String("g", "", "garbled blob from garble (required)")
	out := fs.String("o", "", "output path (default: eval.json)")
	quiet := fs.Bool("q", false, "suppress progress bar")
	verbose := fs.Bool("v", false, "print a timing report")
	fs.Parse(args)

	if fs.NArg() != 1 || *wirePath == "" || *otPath == "" || *garbledPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)
	outPath := *out
	if outPath == "" {
		outPath = "eval.json"
	}

	t := report.NewTiming()

	wa, err := liveness.Load(*wirePath)
	if err != nil {
		return err
	}
	selections, err := otsim.LoadJSON(*otPath)
	if err != nil {
		return err
	}
	garbled, err := os.Open(*garbledPath)
	if err != nil {
		return err
	}
	defer garbled.Close()
	t.Step("load inputs")

	f, bar, err := openCircuit(path, *quiet, "evaluating")
	if err != nil {
		return err
	}
	defer f.Close()
	defer bar.Close()

	results, err := evaluate.Run(context.Background(), f, wa, selections, garbled, bar.Set)
	if err != nil {
		return err
	}
	t.Step("evaluate")

	tmp, err := createArtifact(outPath)
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := writeEvalJSON(tmp, results); err != nil {
		tmp.Close()
		return err
	}
	if err := finishArtifact(tmp, outPath); err != nil {
		return err
	}
	t.Step("write eval.json")

	report.Evaluate(os.Stdout, results)
	log.Printf("wrote %s", outPath)
	if *verbose {
		t.Print(os.Stdout)
	}
	return nil
}
