package report

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"
)

// Timing records per-stage timing samples for a subcommand's -v
// report, generalizing circuit/timing.go's Timing (there, stages were
// P2P round trips; here, stages are streaming-pipeline phases such as
// "parse header", "stream gates", "write artifact").
type Timing struct {
	Start   time.Time
	Samples []Sample
}

// Sample is one named timing interval.
type Sample struct {
	Label string
	Start time.Time
	End   time.Time
}

// NewTiming starts a new Timing with Start set to now.
func NewTiming() *Timing {
	return &Timing{Start: time.Now()}
}

// Step records a sample running from the end of the previous sample
// (or Start, for the first) to now, and returns the elapsed duration.
func (t *Timing) Step(label string) time.Duration {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	end := time.Now()
	t.Samples = append(t.Samples, Sample{Label: label, Start: start, End: end})
	return end.Sub(start)
}

// Print renders the recorded stages as a tabulated report to w.
func (t *Timing) Print(w io.Writer) {
	if len(t.Samples) == 0 {
		return
	}

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Stage").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)

	total := t.Samples[len(t.Samples)-1].End.Sub(t.Start)
	for _, s := range t.Samples {
		d := s.End.Sub(s.Start)
		row := tab.Row()
		row.Column(s.Label)
		row.Column(d.String())
		row.Column(fmt.Sprintf("%.2f%%", float64(d)/float64(total)*100))
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("100.00%").SetFormat(tabulate.FmtBold)

	tab.Print(w)
}
