// Package progress wraps github.com/schollz/progressbar/v3 for the
// long streaming passes (count, wire-analysis, memory-simulation,
// garble, evaluate) that this toolkit drives over
// billion-gate circuits. It is a thin adapter: its only job is to
// make every subcommand's progress output look the same and to be a
// silent no-op when the CLI runs with -q.
package progress

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Bar reports progress of a bounded streaming pass.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a bar for a pass of total gates (or another unit named
// by description), writing to w. If total is 0 the bar renders as a
// spinner instead of a percentage, since the gate count of a circuit
// is not always known in advance (e.g. counting while parsing).
func New(w io.Writer, total int64, description string) *Bar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("gate"),
		progressbar.OptionThrottle(100 * 1e6), // 100ms
	}
	if total <= 0 {
		opts = append(opts, progressbar.OptionSpinnerType(14))
		return &Bar{bar: progressbar.NewOptions64(-1, opts...)}
	}
	return &Bar{bar: progressbar.NewOptions64(total, opts...)}
}

// Quiet returns a bar that discards all rendering, for -q runs, so
// callers don't need an `if quiet` branch around every progress call.
func Quiet() *Bar {
	return &Bar{bar: progressbar.NewOptions64(-1, progressbar.OptionSetWriter(io.Discard))}
}

// Set reports the absolute position (e.g. gates processed so far).
func (b *Bar) Set(n uint64) {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Set64(int64(n))
}

// Close finalizes the bar, clearing the line.
func (b *Bar) Close() {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Close()
}
