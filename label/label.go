// Package label implements the 128-bit wire label algebra used by the
// garbler and evaluator, and the fixed-key dual-key cipher that
// encrypts AND-gate garbled table rows under the Free-XOR construction.
package label

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// Size is the width of a Label in bytes (L = 128 bits).
const Size = 16

// sentinelMask covers the top 16 bits of D0: the region forced to zero
// in every freshly drawn label and in Delta, so that the sentinel tag
// used for AND-row identification (see SentinelClear) survives
// L1 = L0 xor Delta unchanged.
const sentinelMask = 0xffff000000000000

// Label is a 128 bit wire label, stored as two big-endian halves to
// match the byte order used on disk.
type Label struct {
	D0 uint64
	D1 uint64
}

// Bytes is a label serialized as 16 raw bytes.
type Bytes [Size]byte

func (l Label) String() string {
	return fmt.Sprintf("%016x%016x", l.D0, l.D1)
}

// Equal reports whether two labels are identical.
func (l Label) Equal(o Label) bool {
	return l.D0 == o.D0 && l.D1 == o.D1
}

// Random draws a fresh label from r, masking the sentinel region to
// zero (see sentinelMask).
func Random(r io.Reader) (Label, error) {
	var buf Bytes
	var l Label
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return l, err
	}
	l.SetBytes(buf)
	l.D0 &^= sentinelMask
	return l, nil
}

// Tweak builds a Label carrying a gate-index tweak in its low 64 bits,
// used as the T operand of the dual-key cipher.
func Tweak(gate uint64) Label {
	return Label{D1: gate}
}

// Xor returns l XOR o.
func (l Label) Xor(o Label) Label {
	return Label{D0: l.D0 ^ o.D0, D1: l.D1 ^ o.D1}
}

// SetBytes loads a label from its 16-byte big-endian encoding.
func (l *Label) SetBytes(b Bytes) {
	l.D0 = binary.BigEndian.Uint64(b[0:8])
	l.D1 = binary.BigEndian.Uint64(b[8:16])
}

// GetBytes returns the label's 16-byte big-endian encoding.
func (l Label) GetBytes() Bytes {
	var b Bytes
	binary.BigEndian.PutUint64(b[0:8], l.D0)
	binary.BigEndian.PutUint64(b[8:16], l.D1)
	return b
}

// Delta is the global Free-XOR offset for a garbling session. Its low
// bit is forced to 1 (so L1 = L0 xor Delta always differs from L0 in
// the permute bit) and its sentinel region is forced to zero, matching
// every wire label's own masking.
func Delta(r io.Reader) (Label, error) {
	d, err := Random(r)
	if err != nil {
		return d, err
	}
	d.D1 |= 1
	return d, nil
}

// SentinelClear reports whether l's sentinel region is all-zero, i.e.
// l is consistent with having been produced by Random/Delta rather than
// by decrypting an unrelated ciphertext.
func SentinelClear(l Label) bool {
	return l.D0&sentinelMask == 0
}

// Hex returns l's 16-byte big-endian encoding as a hex string, the
// wire format used by labels.json, ot.json and eval.json.
func (l Label) Hex() string {
	b := l.GetBytes()
	return hex.EncodeToString(b[:])
}

// FromHex parses a label previously encoded by Hex.
func FromHex(s string) (Label, error) {
	var l Label
	raw, err := hex.DecodeString(s)
	if err != nil {
		return l, fmt.Errorf("invalid label hex %q: %w", s, err)
	}
	if len(raw) != Size {
		return l, fmt.Errorf("label hex %q decodes to %d bytes, want %d", s, len(raw), Size)
	}
	var b Bytes
	copy(b[:], raw)
	l.SetBytes(b)
	return l, nil
}
