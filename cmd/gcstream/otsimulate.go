package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/alpenlabs/garbled-circuits/garble"
	"github.com/alpenlabs/garbled-circuits/otsim"
	"github.com/alpenlabs/garbled-circuits/report"
)

func runOTSimulate(args []string) error {
	fs := flag.NewFlagSet("ot-simulate", flag.ExitOnError)
	labelsPath := fs.String("w", "", "labels.json from garble (required)")
	seedPath := fs.String("s", "", "32-byte seed2 file (omit to draw and persist a fresh one)")
	out := fs.String("o", "", "output ot.json path (required)")
	fs.Bool("q", false, "suppress progress bar (accepted; ot-simulate shows none)")
	verbose := fs.Bool("v", false, "print a timing report")
	fs.Parse(args)

	if *labelsPath == "" || *out == "" {
		fs.Usage()
		os.Exit(2)
	}

	t := report.NewTiming()

	inputLabels, err := garble.LoadLabelsFile(*labelsPath)
	if err != nil {
		return err
	}
	seed2, seedWrittenTo, err := loadOrDrawSeed(*seedPath, filepath.Join(filepath.Dir(*out), "seed2"))
	if err != nil {
		return err
	}
	t.Step("load inputs")

	selections, err := otsim.Run(context.Background(), inputLabels, seed2)
	if err != nil {
		return err
	}
	t.Step("select")

	tmp, err := createArtifact(*out)
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := otsim.WriteJSON(tmp, selections); err != nil {
		tmp.Close()
		return err
	}
	if err := finishArtifact(tmp, *out); err != nil {
		return err
	}
	t.Step("write ot.json")

	if seedWrittenTo != "" {
		log.Printf("wrote %s (%d selections), %s (fresh seed)", *out, len(selections), seedWrittenTo)
	} else {
		log.Printf("wrote %s (%d selections)", *out, len(selections))
	}
	if *verbose {
		t.Print(os.Stdout)
	}
	return nil
}
