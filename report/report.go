// Package report renders the tabular summaries each subcommand prints
// to standard output on completion, in the teacher's tabulate style
// (see circuit/timing.go): a light-Unicode box table with
// right-aligned numeric columns.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/markkurossi/tabulate"

	"github.com/alpenlabs/garbled-circuits/bristol"
	"github.com/alpenlabs/garbled-circuits/count"
	"github.com/alpenlabs/garbled-circuits/evaluate"
	"github.com/alpenlabs/garbled-circuits/garble"
	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/memsim"
)

func histogramRows(tab *tabulate.Tabulate, h bristol.Histogram, total uint64) {
	ops := make([]bristol.Operation, 0, len(h))
	for op := range h {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	for _, op := range ops {
		row := tab.Row()
		row.Column(op.String())
		row.Column(fmt.Sprintf("%d", h[op]))
		if total > 0 {
			row.Column(fmt.Sprintf("%.2f%%", float64(h[op])/float64(total)*100))
		} else {
			row.Column("")
		}
	}
}

// Count renders a count.Result.
func Count(w io.Writer, res *count.Result) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Gate").SetAlign(tabulate.ML)
	tab.Header("Count").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	histogramRows(tab, res.Histogram, res.Gates)

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", res.Gates)).SetFormat(tabulate.FmtBold)
	row.Column("100.00%").SetFormat(tabulate.FmtBold)

	tab.Print(w)

	fmt.Fprintf(w, "wires: %d\n", res.Header.NumWires)
}

// Liveness renders a liveness.Report.
func Liveness(w io.Writer, r *liveness.Report) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Metric").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)

	rows := []struct {
		label string
		value uint64
	}{
		{"Total wires", r.TotalWires},
		{"Total gates", r.TotalGates},
		{"Primary inputs", r.PrimaryInputs},
		{"Primary outputs", r.PrimaryOutputs},
		{"Intermediate wires", r.IntermediateWires},
		{"Missing wires", r.MissingWires},
	}
	for _, rr := range rows {
		row := tab.Row()
		row.Column(rr.label)
		row.Column(fmt.Sprintf("%d", rr.value))
	}
	tab.Print(w)
}

// Memsim renders a memsim.Report.
func Memsim(w io.Writer, r *memsim.Report) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Metric").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)

	rows := []struct {
		label string
		value uint64
	}{
		{"Gates processed", r.TotalGatesProcessed},
		{"AND gates", r.ANDGates},
		{"Peak live wires", r.MaxLiveWires},
		{"Final live wires", r.FinalLiveWires},
		{"Snapshots taken", uint64(len(r.Snapshots))},
	}
	for _, rr := range rows {
		row := tab.Row()
		row.Column(rr.label)
		row.Column(fmt.Sprintf("%d", rr.value))
	}
	tab.Print(w)
}

// Garble renders a garble.Stats.
func Garble(w io.Writer, s *garble.Stats) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Metric").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column("Gates garbled")
	row.Column(fmt.Sprintf("%d", s.Gates))

	row = tab.Row()
	row.Column("AND gates (garbled tables)")
	row.Column(fmt.Sprintf("%d", s.ANDGates))

	row = tab.Row()
	row.Column("Garbled table bytes")
	row.Column(fmt.Sprintf("%d", s.ANDGates*4*16))

	tab.Print(w)
}

// Evaluate renders the primary-output results of an evaluation run.
func Evaluate(w io.Writer, results []evaluate.OutputResult) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Wire").SetAlign(tabulate.MR)
	tab.Header("Bit").SetAlign(tabulate.MR)
	tab.Header("Label").SetAlign(tabulate.ML)

	for _, res := range results {
		row := tab.Row()
		row.Column(fmt.Sprintf("%d", res.Wire))
		if res.Bit {
			row.Column("1")
		} else {
			row.Column("0")
		}
		row.Column(res.Label)
	}
	tab.Print(w)
}
