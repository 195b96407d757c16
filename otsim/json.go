package otsim

import (
	"encoding/json"
	"io"
	"os"

	"github.com/alpenlabs/garbled-circuits/gcerr"
)

// WriteJSON writes selections to w as ot.json.
func WriteJSON(w io.Writer, selections []Selection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(selections); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "writing ot.json")
	}
	return nil
}

// LoadJSON reads a previously written ot.json artifact.
func LoadJSON(path string) ([]Selection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "opening ot selection file %s", path)
	}
	defer f.Close()

	var selections []Selection
	if err := json.NewDecoder(f).Decode(&selections); err != nil {
		return nil, gcerr.Wrap(gcerr.Parse, err, "decoding ot selection file %s", path)
	}
	return selections, nil
}
