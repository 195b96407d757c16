// Package otsim implements the OT simulator: a non-hiding stand-in for
// oblivious transfer that, given the garbler's primary-input label
// pairs and a second seed, selects one label per input wire by a
// PRNG-driven bit vector. It does not hide the chosen bit from whoever
// holds labels.json; a real deployment must substitute a cryptographic
// OT protocol between separate parties.
package otsim

import (
	"context"
	"sort"

	"github.com/alpenlabs/garbled-circuits/gcerr"
	"github.com/alpenlabs/garbled-circuits/garble"
	"github.com/alpenlabs/garbled-circuits/label"
	"github.com/alpenlabs/garbled-circuits/prng"
)

// Selection is one primary-input wire's OT-selected label and the bit
// it represents, as persisted in ot.json.
type Selection struct {
	Wire  uint32 `json:"wire"`
	Label string `json:"label"`
	Bit   bool   `json:"bit"`
}

// Run draws one bit per primary-input wire in inputLabels from a
// seed2-keyed CSPRNG, in ascending wire-id order (unlike a
// hash-map-ordered draw, this makes the result deterministic for a
// given seed2 independent of input ordering), and selects L0 or L1
// accordingly. ctx is checked between wires so an embedding caller can
// cancel a long run; the CLI itself always passes context.Background().
func Run(ctx context.Context, inputLabels []garble.InputLabels, seed2 []byte) ([]Selection, error) {
	stream, err := prng.New(seed2)
	if err != nil {
		return nil, err
	}

	sorted := make([]garble.InputLabels, len(inputLabels))
	copy(sorted, inputLabels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Wire < sorted[j].Wire })

	selections := make([]Selection, 0, len(sorted))
	for _, il := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l0, err := label.FromHex(il.L0)
		if err != nil {
			return nil, gcerr.AtWire(gcerr.Wrap(gcerr.Parse, err, "decoding L0"), uint64(il.Wire))
		}
		l1, err := label.FromHex(il.L1)
		if err != nil {
			return nil, gcerr.AtWire(gcerr.Wrap(gcerr.Parse, err, "decoding L1"), uint64(il.Wire))
		}

		var b [1]byte
		if _, err := stream.Read(b[:]); err != nil {
			return nil, gcerr.AtWire(gcerr.Wrap(gcerr.Crypto, err, "drawing OT bit"), uint64(il.Wire))
		}
		bit := b[0]&1 == 1

		chosen := l0
		if bit {
			chosen = l1
		}
		selections = append(selections, Selection{
			Wire:  il.Wire,
			Label: chosen.Hex(),
			Bit:   bit,
		})
	}
	return selections, nil
}
