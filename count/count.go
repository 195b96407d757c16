// Package count implements the gate-count & structural validator: a
// single streaming pass that aggregates a gate-kind histogram and
// exercises the bristol parser's structural checks without requiring a
// prior wire-liveness pass.
package count

import (
	"context"
	"io"

	"github.com/alpenlabs/garbled-circuits/bristol"
)

// Result is the aggregate gate-count report for a circuit.
type Result struct {
	Header    bristol.Header
	Gates     uint64
	Histogram bristol.Histogram
}

// Run streams r's gates once, validating structure as it goes (via
// bristol.Parser) and accumulating a gate-kind histogram. ctx is
// checked between gates so a caller embedding this in a larger program
// can cancel a long run; the CLI itself always passes
// context.Background().
func Run(ctx context.Context, r io.Reader) (*Result, error) {
	p, err := bristol.NewParser(r)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Header:    p.Header,
		Histogram: make(bristol.Histogram),
	}
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
		res.Gates++
		res.Histogram[g.Op]++
	}
	return res, nil
}
