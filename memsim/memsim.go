// Package memsim implements the memory simulator: a streaming replay
// of a circuit's gates against its wire-liveness report, counting live
// wires and cumulative AND gates only (no label storage), emitting one
// CSV row per gate as it goes so memory use stays bounded regardless
// of circuit size.
package memsim

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/alpenlabs/garbled-circuits/bristol"
	"github.com/alpenlabs/garbled-circuits/liveness"
)

// SnapshotInterval is how often (in gates processed) a summary
// snapshot is recorded for the stdout report, matching the original's
// PROGRESS_UPDATE_INTERVAL. It has no bearing on the CSV artifact,
// which carries one row per gate.
const SnapshotInterval = 10000

// Snapshot is one live-wire-count sample, used only for the stdout
// summary report.
type Snapshot struct {
	GateNumber    uint64
	LiveWireCount uint64
}

// Report is the full memory simulation result.
type Report struct {
	MaxLiveWires        uint64
	FinalLiveWires      uint64
	TotalGatesProcessed uint64
	ANDGates            uint64
	Snapshots           []Snapshot
}

// Run replays r's gate stream against report, tracking a live-wire set
// seeded with report's primary inputs and releasing wires per the
// shared wire-usage-count discipline. For every gate it writes a CSV
// row (gate_index, live_wire_count, and_gate_cumulative) to csvOut.
// onGate, if non-nil, is called after every gate is processed (for
// progress reporting). ctx is checked between gates so an embedding
// caller can cancel a long run; the CLI itself always passes
// context.Background().
func Run(ctx context.Context, r io.Reader, report *liveness.Report, csvOut io.Writer, onGate func(gate uint64)) (*Report, error) {
	p, err := bristol.NewParser(r)
	if err != nil {
		return nil, err
	}

	live := make(map[uint32]struct{}, len(report.PrimaryInputWires))
	for _, w := range report.PrimaryInputWires {
		live[w] = struct{}{}
	}
	counts := report.WorkingCounts()

	result := &Report{MaxLiveWires: uint64(len(live))}

	cw := csv.NewWriter(csvOut)
	if err := cw.Write([]string{"gate_index", "live_wire_count", "and_gate_cumulative"}); err != nil {
		return nil, err
	}

	var gateNumber uint64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		for _, in := range g.Inputs {
			if liveness.Release(counts, in) && !report.IsPrimaryOutput(in) {
				delete(live, in)
			}
		}
		live[g.Output] = struct{}{}

		if g.Op == bristol.AND {
			result.ANDGates++
		}

		gateNumber++
		if uint64(len(live)) > result.MaxLiveWires {
			result.MaxLiveWires = uint64(len(live))
		}

		row := []string{
			strconv.FormatUint(g.Index, 10),
			strconv.FormatUint(uint64(len(live)), 10),
			strconv.FormatUint(result.ANDGates, 10),
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}

		if gateNumber%SnapshotInterval == 0 {
			result.Snapshots = append(result.Snapshots, Snapshot{
				GateNumber:    gateNumber,
				LiveWireCount: uint64(len(live)),
			})
		}
		if onGate != nil {
			onGate(gateNumber)
		}
	}

	if len(result.Snapshots) == 0 || result.Snapshots[len(result.Snapshots)-1].GateNumber != gateNumber {
		result.Snapshots = append(result.Snapshots, Snapshot{
			GateNumber:    gateNumber,
			LiveWireCount: uint64(len(live)),
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	result.FinalLiveWires = uint64(len(live))
	result.TotalGatesProcessed = gateNumber
	report.PeakResidency = result.MaxLiveWires

	return result, nil
}
