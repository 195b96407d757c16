package evaluate

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alpenlabs/garbled-circuits/garble"
	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/otsim"
)

func TestEmptyCircuitSucceedsWithNoOutputs(t *testing.T) {
	// 0 gates: every wire is unreferenced, so the liveness analyzer
	// reports them as missing rather than inventing primary
	// inputs/outputs the circuit never declared.
	src := "0 2\n"
	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if report.MissingWires != 2 || report.PrimaryInputs != 0 || report.PrimaryOutputs != 0 {
		t.Fatalf("unexpected classification: %+v", report)
	}

	var labelsBuf, garbledBuf bytes.Buffer
	stats, err := garble.Run(context.Background(), strings.NewReader(src), report, seed1, &labelsBuf, &garbledBuf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Gates != 0 || garbledBuf.Len() != 0 {
		t.Fatalf("expected a no-op garbling pass, got stats=%+v garbled_len=%d", stats, garbledBuf.Len())
	}

	results, err := Run(context.Background(), strings.NewReader(src), report, []otsim.Selection{}, bytes.NewReader(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d output results, want 0", len(results))
	}
}
