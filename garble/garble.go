// Package garble implements the streaming garbler: one pass over a
// circuit's gates producing, under Free-XOR, a pair of labels for
// every primary-input wire and a 4-row garbled table for every AND
// gate, honoring the wire-liveness schedule to bound resident labels.
package garble

import (
	"context"
	"io"

	"github.com/alpenlabs/garbled-circuits/bristol"
	"github.com/alpenlabs/garbled-circuits/gcerr"
	"github.com/alpenlabs/garbled-circuits/label"
	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/prng"
)

// InputLabels is one primary-input wire's label pair, as persisted in
// labels.json.
type InputLabels struct {
	Wire uint32 `json:"wire"`
	L0   string `json:"l0"`
	L1   string `json:"l1"`
}

// Stats summarizes a completed garbling run, reported by the CLI.
type Stats struct {
	Gates    uint64
	ANDGates uint64
}

// Run streams circuit r's gates, writing primary-input label pairs to
// labelsOut (JSON) and AND-gate garbled tables to garbledOut (a flat
// binary blob of 16-byte ciphertexts, 4 per AND gate, in gate
// topological order). onGate, if non-nil, is invoked after each gate.
// ctx is checked between gates so an embedding caller can cancel a
// long run; the CLI itself always passes context.Background().
func Run(
	ctx context.Context,
	r io.Reader,
	report *liveness.Report,
	seed []byte,
	labelsOut, garbledOut io.Writer,
	onGate func(gate uint64),
) (*Stats, error) {
	p, err := bristol.NewParser(r)
	if err != nil {
		return nil, err
	}

	stream, err := prng.New(seed)
	if err != nil {
		return nil, err
	}
	cipher, err := label.NewCipher()
	if err != nil {
		return nil, err
	}

	delta, err := label.Delta(stream)
	if err != nil {
		return nil, gcerr.Wrap(gcerr.Crypto, err, "drawing delta")
	}

	live := make(map[uint32]label.Label, len(report.PrimaryInputWires))
	inputLabels := make([]InputLabels, 0, len(report.PrimaryInputWires))
	for _, w := range report.PrimaryInputWires {
		l0, err := label.Random(stream)
		if err != nil {
			return nil, gcerr.Wrap(gcerr.Crypto, err, "drawing label for wire %d", w)
		}
		live[w] = l0
		l1 := l0.Xor(delta)
		inputLabels = append(inputLabels, InputLabels{
			Wire: w,
			L0:   l0.Hex(),
			L1:   l1.Hex(),
		})
	}

	if err := writeLabelsJSON(labelsOut, inputLabels); err != nil {
		return nil, err
	}

	counts := report.WorkingCounts()
	stats := &Stats{}

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
		stats.Gates++

		a, ok := live[g.Inputs[0]]
		if !ok {
			return nil, gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
				"input wire not live"), uint64(g.Inputs[0])), g.Index)
		}

		var out label.Label
		switch g.Op {
		case bristol.XOR:
			b, ok := live[g.Inputs[1]]
			if !ok {
				return nil, gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
					"input wire not live"), uint64(g.Inputs[1])), g.Index)
			}
			out = a.Xor(b)

		case bristol.INV:
			out = a.Xor(delta)

		case bristol.AND:
			b, ok := live[g.Inputs[1]]
			if !ok {
				return nil, gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
					"input wire not live"), uint64(g.Inputs[1])), g.Index)
			}
			stats.ANDGates++

			l0out, err := label.Random(stream)
			if err != nil {
				return nil, gcerr.AtGate(gcerr.Wrap(gcerr.Crypto, err, "drawing output label"), g.Index)
			}
			l1out := l0out.Xor(delta)
			out = l0out

			a1 := a.Xor(delta)
			b1 := b.Xor(delta)
			tweak := label.Tweak(g.Index)

			rows := [4]label.Label{
				cipher.Encrypt(a, b, true, tweak, l0out),
				cipher.Encrypt(a, b1, true, tweak, l0out),
				cipher.Encrypt(a1, b, true, tweak, l0out),
				cipher.Encrypt(a1, b1, true, tweak, l1out),
			}
			for _, row := range rows {
				rowBuf = row.GetBytes()
				if _, err := garbledOut.Write(rowBuf[:]); err != nil {
					return nil, gcerr.AtGate(gcerr.Wrap(gcerr.IO, err, "writing garbled table"), g.Index)
				}
			}

		case bristol.EQ, bristol.EQW:
			return nil, gcerr.AtGate(gcerr.New(gcerr.Structural,
				"%s is not implemented by the garbler", g.Op), g.Index)

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

	return stats, nil
}
