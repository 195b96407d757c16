package garble

import (
	"encoding/json"
	"io"
	"os"

	"github.com/alpenlabs/garbled-circuits/gcerr"
)

func writeLabelsJSON(w io.Writer, labels []InputLabels) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(labels); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "writing labels.json")
	}
	return nil
}

// LoadLabelsFile reads a labels.json artifact previously written by
// Run, used by the OT simulator.
func LoadLabelsFile(path string) ([]InputLabels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "opening labels file %s", path)
	}
	defer f.Close()

	var labels []InputLabels
	if err := json.NewDecoder(f).Decode(&labels); err != nil {
		return nil, gcerr.Wrap(gcerr.Parse, err, "decoding labels file %s", path)
	}
	return labels, nil
}
