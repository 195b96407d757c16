package memsim

import (
	"context"
	"strings"
	"testing"

	"github.com/alpenlabs/garbled-circuits/liveness"
)

func TestRunTracksLiveWireCount(t *testing.T) {
	// 2 primary inputs; gate 1 consumes both, producing an intermediate
	// wire; gate 2 consumes that intermediate and input 1 again,
	// producing the primary output. Peak live set is {0,1} at start (2),
	// then {2,1} (2), then {3} (1).
	src := "2 4\n2 1 0 1 2 XOR\n2 1 2 1 3 AND\n"
	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	var gatesSeen []uint64
	var csvOut strings.Builder
	result, err := Run(context.Background(), strings.NewReader(src), report, &csvOut, func(g uint64) {
		gatesSeen = append(gatesSeen, g)
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.MaxLiveWires != 2 {
		t.Errorf("MaxLiveWires = %d, want 2", result.MaxLiveWires)
	}
	if result.FinalLiveWires != 1 {
		t.Errorf("FinalLiveWires = %d, want 1", result.FinalLiveWires)
	}
	if result.TotalGatesProcessed != 2 {
		t.Errorf("TotalGatesProcessed = %d, want 2", result.TotalGatesProcessed)
	}
	if result.ANDGates != 1 {
		t.Errorf("ANDGates = %d, want 1", result.ANDGates)
	}
	if len(gatesSeen) != 2 || gatesSeen[0] != 1 || gatesSeen[1] != 2 {
		t.Errorf("onGate calls = %v, want [1 2]", gatesSeen)
	}
	if report.PeakResidency != result.MaxLiveWires {
		t.Errorf("report.PeakResidency = %d, not updated to match MaxLiveWires %d",
			report.PeakResidency, result.MaxLiveWires)
	}
}

func TestRunDoesNotMutateSharedWireUsageCounts(t *testing.T) {
	src := "1 3\n2 1 0 1 2 XOR\n"
	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	before := append([]uint8(nil), report.WireUsageCounts...)

	var csvOut strings.Builder
	if _, err := Run(context.Background(), strings.NewReader(src), report, &csvOut, nil); err != nil {
		t.Fatal(err)
	}
	for i, v := range report.WireUsageCounts {
		if v != before[i] {
			t.Fatalf("Run mutated shared WireUsageCounts[%d]: %d != %d", i, v, before[i])
		}
	}
}

func TestRunWritesOneCSVRowPerGate(t *testing.T) {
	src := "3 5\n2 1 0 1 2 XOR\n2 1 0 1 3 AND\n2 1 2 3 4 AND\n"
	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	var csvOut strings.Builder
	if _, err := Run(context.Background(), strings.NewReader(src), report, &csvOut, nil); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(csvOut.String(), "\n"), "\n")
	if lines[0] != "gate_index,live_wire_count,and_gate_cumulative" {
		t.Fatalf("unexpected CSV header: %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("got %d CSV lines (header+rows), want 4 (header + one row per gate)", len(lines))
	}
	// Gate 0 is XOR: live set grows to {0,1,2}, and_gate_cumulative stays 0.
	if lines[1] != "0,3,0" {
		t.Fatalf("row for gate 0 = %q, want %q", lines[1], "0,3,0")
	}
	// Gate 1 is the first AND: and_gate_cumulative becomes 1.
	if lines[2] != "1,2,1" {
		t.Fatalf("row for gate 1 = %q, want %q", lines[2], "1,2,1")
	}
	// Gate 2 is the second AND: and_gate_cumulative becomes 2.
	if lines[3] != "2,1,2" {
		t.Fatalf("row for gate 2 = %q, want %q", lines[3], "2,1,2")
	}
}
