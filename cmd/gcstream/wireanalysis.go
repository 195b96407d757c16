package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/report"
)

func runWireAnalysis(args []string) error {
	fs := flag.NewFlagSet("wire-analysis", flag.ExitOnError)
	out := fs.String("o", "", "output path (default: <circuit without extension>.wire_analysis)")
	quiet := fs.Bool("q", false, "suppress progress bar")
	verbose := fs.Bool("v", false, "print a timing report")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)
	outPath := *out
	if outPath == "" {
		outPath = stem(path) + ".wire_analysis"
	}

	t := report.NewTiming()

	f, bar, err := openCircuit(path, *quiet, "analyzing")
	if err != nil {
		return err
	}
	defer f.Close()
	defer bar.Close()

	r, err := liveness.Analyze(context.Background(), withProgress(f, bar))
	if err != nil {
		return err
	}
	t.Step("analyze")

	if err := r.Save(outPath); err != nil {
		return err
	}
	t.Step("write artifact")

	report.Liveness(os.Stdout, r)
	log.Printf("wrote %s", outPath)
	if *verbose {
		t.Print(os.Stdout)
	}
	return nil
}
