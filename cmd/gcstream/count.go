package main

import (
	"context"
	"flag"
	"os"

	"github.com/alpenlabs/garbled-circuits/count"
	"github.com/alpenlabs/garbled-circuits/report"
)

func runCount(args []string) error {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	quiet := fs.Bool("q", false, "suppress progress bar")
	verbose := fs.Bool("v", false, "print a timing report")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)

	t := report.NewTiming()

	f, bar, err := openCircuit(path, *quiet, "counting")
	if err != nil {
		return err
	}
	defer f.Close()
	defer bar.Close()

	res, err := count.Run(context.Background(), withProgress(f, bar))
	if err != nil {
		return err
	}
	t.Step("count")

	report.Count(os.Stdout, res)
	if *verbose {
		t.Print(os.Stdout)
	}
	return nil
}
