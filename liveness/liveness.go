// Package liveness implements the wire-liveness analyzer: a streaming
// pass over a Bristol gate stream that classifies every wire as a
// primary input, primary output, intermediate, or missing wire, and
// records a saturating per-wire usage count driving the garbler's and
// evaluator's label-release schedule.
package liveness

import (
	"context"
	"io"
	"sort"

	"github.com/alpenlabs/garbled-circuits/bristol"
)

// maxUsageCount is the saturation point for WireUsageCounts. Wires
// whose true usage count reaches this are treated as permanent
// (never released before end-of-run) — an intentional approximation
// for circuits with extreme wire fan-out, documented in SPEC_FULL.md.
const maxUsageCount = 255

// Report is the wire-liveness analysis artifact.
type Report struct {
	TotalWires        uint64
	TotalGates        uint64
	PrimaryInputs     uint64
	IntermediateWires uint64
	PrimaryOutputs    uint64
	MissingWires      uint64
	PeakResidency     uint64

	// WireUsageCounts holds, per wire id, the number of gates that
	// still consume it (a saturating byte counter). Index = wire id.
	WireUsageCounts []uint8

	// PrimaryInputWires and PrimaryOutputWires are sorted ascending
	// wire-id lists.
	PrimaryInputWires  []uint32
	PrimaryOutputWires []uint32

	// GateHistogram counts gates by kind.
	GateHistogram bristol.Histogram
}

// Analyze streams r's gate records once, producing a Report. It
// consults bristol.NewParser for header parsing and per-gate
// structural validation, so a malformed circuit fails here exactly as
// it would under the count/garble/evaluate subcommands. ctx is checked
// between gates so an embedding caller can cancel a long analysis; the
// CLI itself always passes context.Background().
func Analyze(ctx context.Context, r io.Reader) (*Report, error) {
	p, err := bristol.NewParser(r)
	if err != nil {
		return nil, err
	}

	numWires := p.Header.NumWires
	usage := make([]uint8, numWires)
	hasProducer := make([]bool, numWires)
	histogram := make(bristol.Histogram)

	var gates uint64
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
		gates++
		histogram[g.Op]++
		for _, in := range g.Inputs {
			if usage[in] < maxUsageCount {
				usage[in]++
			}
		}
		hasProducer[g.Output] = true
	}

	report := &Report{
		TotalWires:      numWires,
		TotalGates:      gates,
		WireUsageCounts: usage,
		GateHistogram:   histogram,
	}

	for w := uint64(0); w < numWires; w++ {
		u := usage[w]
		producer := hasProducer[w]
		switch {
		case u == 0 && !producer:
			report.MissingWires++
		case !producer:
			report.PrimaryInputs++
			report.PrimaryInputWires = append(report.PrimaryInputWires, uint32(w))
		case u == 0:
			report.PrimaryOutputs++
			report.PrimaryOutputWires = append(report.PrimaryOutputWires, uint32(w))
		default:
			report.IntermediateWires++
		}
	}
	sort.Slice(report.PrimaryInputWires, func(i, j int) bool {
		return report.PrimaryInputWires[i] < report.PrimaryInputWires[j]
	})
	sort.Slice(report.PrimaryOutputWires, func(i, j int) bool {
		return report.PrimaryOutputWires[i] < report.PrimaryOutputWires[j]
	})

	return report, nil
}

// WorkingCounts returns a private copy of the report's usage counts,
// safe for a consumer (memsim, garbler, evaluator) to decrement as it
// streams without corrupting the shared, on-disk artifact data that
// other consumers of the same Report still need.
func (r *Report) WorkingCounts() []uint8 {
	counts := make([]uint8, len(r.WireUsageCounts))
	copy(counts, r.WireUsageCounts)
	return counts
}

// Release decrements counts[w] and reports whether w is now safe to
// remove from a live map (its count has reached zero). Primary outputs
// start with usage count 0, so they are never removed by this rule
// alone; callers must additionally hold outputs until end-of-run
// regardless of what Release reports.
func Release(counts []uint8, w uint32) bool {
	if counts[w] == 0 {
		return false
	}
	if counts[w] < maxUsageCount {
		counts[w]--
	}
	return counts[w] == 0
}

// IsPrimaryOutput reports whether w is a primary output wire.
func (r *Report) IsPrimaryOutput(w uint32) bool {
	i := sort.Search(len(r.PrimaryOutputWires), func(i int) bool {
		return r.PrimaryOutputWires[i] >= w
	})
	return i < len(r.PrimaryOutputWires) && r.PrimaryOutputWires[i] == w
}
