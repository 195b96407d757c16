package label

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/alpenlabs/garbled-circuits/gcerr"
)

// fixedKey is the published, fixed AES-128 key behind the pi
// permutation used by the dual-key cipher. It carries no secrecy
// requirement of its own; only Delta must stay secret.
var fixedKey = [16]byte{
	0x67, 0x61, 0x72, 0x62, 0x6c, 0x65, 0x64, 0x2d,
	0x63, 0x69, 0x72, 0x63, 0x75, 0x69, 0x74, 0x00,
}

// Cipher wraps the fixed-key AES-128 block cipher used as pi in the
// dual-key encryption construction of section 4.1: E(A,B,T,m) =
// pi(K) xor m xor K, with K = 2A xor 4B xor T (see makeK). Doubling A
// and quadrupling B keeps the (A0,B1) and (A1,B0) rows on distinct keys,
// which a plain A xor B xor T would not under Free-XOR.
type Cipher struct {
	block cipher.Block
}

// NewCipher constructs the fixed-key AES cipher instance.
func NewCipher() (*Cipher, error) {
	block, err := aes.NewCipher(fixedKey[:])
	if err != nil {
		return nil, gcerr.Wrap(gcerr.Crypto, err, "initializing fixed-key AES")
	}
	return &Cipher{block: block}, nil
}

// mul2 doubles a label under the same bit-shift construction the
// lineage uses for its GF(2^128)-style key-derivation multiply.
func mul2(l Label) Label {
	carry := l.D1 >> 63
	return Label{
		D0: (l.D0 << 1) | carry,
		D1: l.D1 << 1,
	}
}

// mul4 quadruples a label (two mul2 applications folded into one shift).
func mul4(l Label) Label {
	carry := l.D1 >> 62
	return Label{
		D0: (l.D0 << 2) | carry,
		D1: l.D1 << 2,
	}
}

// makeK derives the dual-key cipher's key from the two input labels
// and the gate tweak. For a single-input row the caller passes
// hasB=false so b never contributes to K.
func makeK(a Label, b Label, hasB bool, tweak Label) Label {
	k := mul2(a)
	if hasB {
		k = k.Xor(mul4(b))
	}
	return k.Xor(tweak)
}

// pi applies the fixed-key AES permutation to a label.
func (c *Cipher) pi(k Label) Label {
	buf := k.GetBytes()
	var out Bytes
	c.block.Encrypt(out[:], buf[:])
	var result Label
	result.SetBytes(out)
	return result
}

// Encrypt computes one row of a garbled table: E(a, b, tweak, m). Pass
// hasB=false for a single-input row. The garbler only calls it for AND
// gates; INV gates are handled by Free-XOR and emit no row.
func (c *Cipher) Encrypt(a, b Label, hasB bool, tweak Label, m Label) Label {
	k := makeK(a, b, hasB, tweak)
	return c.pi(k).Xor(m).Xor(k)
}

// Decrypt inverts Encrypt: given the same (a, b, tweak) and a
// ciphertext row, recovers the row's plaintext. Decrypt is its own
// inverse because Encrypt is an XOR cipher around pi(k).
func (c *Cipher) Decrypt(a, b Label, hasB bool, tweak Label, ct Label) Label {
	return c.Encrypt(a, b, hasB, tweak, ct)
}
