package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/alpenlabs/garbled-circuits/garble"
	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/report"
)

func runGarble(args []string) error {
	fs := flag.NewFlagSet("garble", flag.ExitOnError)
	wirePath := fs.String("w", "", "wire-analysis artifact (required)")
	seedPath := fs.String("s", "", "32-byte seed file (omit to draw and persist a fresh one)")
	outDir := fs.String("o", ".", "output directory for labels.json and garbled")
	quiet := fs.Bool("q", false, "suppress progress bar")
	verbose := fs.Bool("v", false, "print a timing report")
	fs.Parse(args)

	if fs.NArg() != 1 || *wirePath == "" {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)

	t := report.NewTiming()

	wa, err := liveness.Load(*wirePath)
	if err != nil {
		return err
	}
	seed, seedWrittenTo, err := loadOrDrawSeed(*seedPath, filepath.Join(*outDir, "seed"))
	if err != nil {
		return err
	}
	t.Step("load inputs")

	f, bar, err := openCircuit(path, *quiet, "garbling")
	if err != nil {
		return err
	}
	defer f.Close()
	defer bar.Close()

	labelsPath := filepath.Join(*outDir, "labels.json")
	garbledPath := filepath.Join(*outDir, "garbled")

	labelsTmp, err := createArtifact(labelsPath)
	if err != nil {
		return err
	}
	defer os.Remove(labelsTmp.Name())
	garbledTmp, err := createArtifact(garbledPath)
	if err != nil {
		return err
	}
	defer os.Remove(garbledTmp.Name())

	stats, err := garble.Run(context.Background(), f, wa, seed, labelsTmp, garbledTmp, bar.Set)
	if err != nil {
		return err
	}
	t.Step("garble")

	if err := finishArtifact(labelsTmp, labelsPath); err != nil {
		return err
	}
	if err := finishArtifact(garbledTmp, garbledPath); err != nil {
		return err
	}
	t.Step("write artifacts")

	report.Garble(os.Stdout, stats)
	if seedWrittenTo != "" {
		log.Printf("wrote %s, %s, %s (fresh seed)", labelsPath, garbledPath, seedWrittenTo)
	} else {
		log.Printf("wrote %s, %s", labelsPath, garbledPath)
	}
	if *verbose {
		t.Print(os.Stdout)
	}
	return nil
}
