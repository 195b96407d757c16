// Package evaluate implements the streaming evaluator: a one-pass
// mirror of the garbler that consumes the gate stream, the wire
// liveness schedule, the OT-selected input labels, and the garbled
// table blob, producing the active label and recovered bit for every
// primary output wire.
package evaluate

import (
	"context"
	"io"

	"github.com/alpenlabs/garbled-circuits/bristol"
	"github.com/alpenlabs/garbled-circuits/gcerr"
	"github.com/alpenlabs/garbled-circuits/label"
	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/otsim"
)

// OutputResult is one primary-output wire's active label and
// recovered bit, as persisted in eval.json.
type OutputResult struct {
	Wire  uint32 `json:"wire"`
	Label string `json:"label"`
	Bit   bool   `json:"bit"`
}

// active pairs a wire's active label with its known bit value. The bit
// is tracked independently of the label, seeded from the OT
// simulator's published bits and propagated through each gate's public
// Boolean function; the sentinel-verified decryption (section 4.6.1)
// only ever needs to recover the correct active LABEL for an AND-gate
// output, never the bit.
type active struct {
	Label label.Label
	Bit   bool
}

// Run streams circuit r's gates against report and the garbled table
// blob garbled, seeding the live map from the OT-selected input
// labels, and returns the active label and recovered bit for every
// primary output wire, in ascending wire-id order. ctx is checked
// between gates so an embedding caller can cancel a long run; the CLI
// itself always passes context.Background().
func Run(
	ctx context.Context,
	r io.Reader,
	report *liveness.Report,
	selections []otsim.Selection,
	garbled io.Reader,
	onGate func(gate uint64),
) ([]OutputResult, error) {
	p, err := bristol.NewParser(r)
	if err != nil {
		return nil, err
	}
	cipher, err := label.NewCipher()
	if err != nil {
		return nil, err
	}

	live := make(map[uint32]active, len(selections))
	for _, sel := range selections {
		l, err := label.FromHex(sel.Label)
		if err != nil {
			return nil, gcerr.AtWire(gcerr.Wrap(gcerr.Parse, err, "decoding OT-selected label"), uint64(sel.Wire))
		}
		live[sel.Wire] = active{Label: l, Bit: sel.Bit}
	}

	counts := report.WorkingCounts()
	var rowBuf [label.Size]byte

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

		a, ok := live[g.Inputs[0]]
		if !ok {
			return nil, gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
				"input wire not live"), uint64(g.Inputs[0])), g.Index)
		}

		var out active
		switch g.Op {
		case bristol.XOR:
			b, ok := live[g.Inputs[1]]
			if !ok {
				return nil, gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
					"input wire not live"), uint64(g.Inputs[1])), g.Index)
			}
			out = active{Label: a.Label.Xor(b.Label), Bit: a.Bit != b.Bit}

		case bristol.INV:
			// Free-XOR: the garbler's L0_out = L0_a xor Delta means the
			// evaluator's active label carries straight through
			// unchanged; only the bit it represents flips.
			out = active{Label: a.Label, Bit: !a.Bit}

		case bristol.AND:
			b, ok := live[g.Inputs[1]]
			if !ok {
				return nil, gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
					"input wire not live"), uint64(g.Inputs[1])), g.Index)
			}

			var rows [4]label.Label
			for i := range rows {
				if _, err := io.ReadFull(garbled, rowBuf[:]); err != nil {
					return nil, gcerr.AtGate(gcerr.Wrap(gcerr.IO, err,
						"reading garbled table row %d", i), g.Index)
				}
				rows[i].SetBytes(rowBuf)
			}

			tweak := label.Tweak(g.Index)
			var foundLabel label.Label
			var found int
			for _, ct := range rows {
				candidate := cipher.Decrypt(a.Label, b.Label, true, tweak, ct)
				if label.SentinelClear(candidate) {
					foundLabel = candidate
					found++
				}
			}
			if found != 1 {
				return nil, gcerr.AtGate(gcerr.New(gcerr.EvalInconsistency,
					"%d garbled rows decrypted consistently, want 1", found), g.Index)
			}
			out = active{Label: foundLabel, Bit: a.Bit && b.Bit}

		case bristol.EQ, bristol.EQW:
			return nil, gcerr.AtGate(gcerr.New(gcerr.Structural,
				"%s is not implemented by the evaluator", g.Op), g.Index)

		default:
			return nil, gcerr.AtGate(gcerr.New(gcerr.Structural,
				"unsupported gate kind %s", g.Op), g.Index)
		}

		live[g.Output] = out
		for _, in := range g.Inputs {
			if liveness.Release(counts, in) && !report.IsPrimaryOutput(in) {
				delete(live, in)
			}
		}
		if onGate != nil {
			onGate(g.Index + 1)
		}
	}

	results := make([]OutputResult, 0, len(report.PrimaryOutputWires))
	for _, w := range report.PrimaryOutputWires {
		a, ok := live[w]
		if !ok {
			return nil, gcerr.AtWire(gcerr.New(gcerr.Structural,
				"primary output wire missing from final live map"), uint64(w))
		}
		results = append(results, OutputResult{
			Wire:  w,
			Label: a.Label.Hex(),
			Bit:   a.Bit,
		})
	}
	return results, nil
}
