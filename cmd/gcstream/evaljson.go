package main

import (
	"encoding/json"
	"io"

	"github.com/alpenlabs/garbled-circuits/evaluate"
	"github.com/alpenlabs/garbled-circuits/gcerr"
)

func writeEvalJSON(w io.Writer, results []evaluate.OutputResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "writing eval.json")
	}
	return nil
}
