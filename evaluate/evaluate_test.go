package evaluate

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/alpenlabs/garbled-circuits/garble"
	"github.com/alpenlabs/garbled-circuits/liveness"
	"github.com/alpenlabs/garbled-circuits/otsim"
)

var (
	seed1 = bytes.Repeat([]byte{0x11}, 32)
	seed2 = bytes.Repeat([]byte{0x22}, 32)
)

// runPipeline garbles, OT-simulates, and evaluates src end to end,
// returning the primary-output results and the chosen input bits, in
// ascending primary-input wire-id order.
func runPipeline(t *testing.T, src string, s1, s2 []byte) ([]OutputResult, []bool) {
	t.Helper()

	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var labelsBuf, garbledBuf bytes.Buffer
	if _, err := garble.Run(context.Background(), strings.NewReader(src), report, s1, &labelsBuf, &garbledBuf, nil); err != nil {
		t.Fatalf("garble.Run: %v", err)
	}

	inputLabels, err := garble.LoadLabelsFile(writeTemp(t, labelsBuf.Bytes()))
	if err != nil {
		t.Fatalf("LoadLabelsFile: %v", err)
	}

	selections, err := otsim.Run(context.Background(), inputLabels, s2)
	if err != nil {
		t.Fatalf("otsim.Run: %v", err)
	}

	results, err := Run(context.Background(), strings.NewReader(src), report, selections, bytes.NewReader(garbledBuf.Bytes()), nil)
	if err != nil {
		t.Fatalf("evaluate.Run: %v", err)
	}

	bits := make([]bool, len(selections))
	for i, sel := range selections {
		bits[i] = sel.Bit
	}
	return results, bits
}

// evalWithBits garbles and evaluates src, but picks each primary
// input's label directly from a caller-supplied bit assignment rather
// than letting otsim.Run draw bits from a PRNG — so a test can exercise
// specific, explicit input combinations.
func evalWithBits(t *testing.T, src string, wireBits map[uint32]bool) []OutputResult {
	t.Helper()

	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var labelsBuf, garbledBuf bytes.Buffer
	if _, err := garble.Run(context.Background(), strings.NewReader(src), report, seed1, &labelsBuf, &garbledBuf, nil); err != nil {
		t.Fatalf("garble.Run: %v", err)
	}

	inputLabels, err := garble.LoadLabelsFile(writeTemp(t, labelsBuf.Bytes()))
	if err != nil {
		t.Fatalf("LoadLabelsFile: %v", err)
	}

	selections := make([]otsim.Selection, 0, len(inputLabels))
	for _, il := range inputLabels {
		bit, ok := wireBits[il.Wire]
		if !ok {
			t.Fatalf("no bit assignment given for primary input wire %d", il.Wire)
		}
		chosen := il.L0
		if bit {
			chosen = il.L1
		}
		selections = append(selections, otsim.Selection{Wire: il.Wire, Label: chosen, Bit: bit})
	}

	results, err := Run(context.Background(), strings.NewReader(src), report, selections, bytes.NewReader(garbledBuf.Bytes()), nil)
	if err != nil {
		t.Fatalf("evaluate.Run: %v", err)
	}
	return results
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := t.TempDir() + "/labels.json"
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestXORCircuitNoGarbledTable(t *testing.T) {
	src := "1 3\n2 1 0 1 2 XOR\n"
	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	var labelsBuf, garbledBuf bytes.Buffer
	if _, err := garble.Run(context.Background(), strings.NewReader(src), report, seed1, &labelsBuf, &garbledBuf, nil); err != nil {
		t.Fatal(err)
	}
	if garbledBuf.Len() != 0 {
		t.Fatalf("garbled blob length = %d, want 0 for an AND-free circuit", garbledBuf.Len())
	}
}

func TestANDTruthTable(t *testing.T) {
	src := "1 3\n2 1 0 1 2 AND\n"
	cases := []struct{ bit0, bit1, want bool }{
		{false, false, false},
		{false, true, false},
		{true, false, false},
		{true, true, true},
	}
	for _, c := range cases {
		results := evalWithBits(t, src, map[uint32]bool{0: c.bit0, 1: c.bit1})
		if len(results) != 1 {
			t.Fatalf("AND(%v,%v): got %d output results, want 1", c.bit0, c.bit1, len(results))
		}
		if results[0].Bit != c.want {
			t.Errorf("AND(%v,%v) = %v, want %v", c.bit0, c.bit1, results[0].Bit, c.want)
		}
	}
}

func TestXORTruthTable(t *testing.T) {
	src := "1 3\n2 1 0 1 2 XOR\n"
	cases := []struct{ bit0, bit1, want bool }{
		{false, false, false},
		{false, true, true},
		{true, false, true},
		{true, true, false},
	}
	for _, c := range cases {
		results := evalWithBits(t, src, map[uint32]bool{0: c.bit0, 1: c.bit1})
		if len(results) != 1 {
			t.Fatalf("XOR(%v,%v): got %d output results, want 1", c.bit0, c.bit1, len(results))
		}
		if results[0].Bit != c.want {
			t.Errorf("XOR(%v,%v) = %v, want %v", c.bit0, c.bit1, results[0].Bit, c.want)
		}
	}
}

func TestNANDThroughINV(t *testing.T) {
	// wire2 = AND(0,1); wire3 = INV(wire2) = NAND(0,1).
	src := "2 4\n2 1 0 1 2 AND\n1 1 2 3 INV\n"
	results, bits := runPipeline(t, src, seed1, seed2)
	want := !(bits[0] && bits[1])
	if results[0].Bit != want {
		t.Errorf("NAND(%v,%v) = %v, want %v", bits[0], bits[1], results[0].Bit, want)
	}
}

func TestHalfAdder(t *testing.T) {
	// sum = a XOR b (wire2), carry = a AND b (wire3); both outputs.
	src := "2 4\n2 1 0 1 2 XOR\n2 1 0 1 3 AND\n"
	results, bits := runPipeline(t, src, seed1, seed2)
	byWire := map[uint32]OutputResult{}
	for _, r := range results {
		byWire[r.Wire] = r
	}
	wantSum := bits[0] != bits[1]
	wantCarry := bits[0] && bits[1]
	if byWire[2].Bit != wantSum {
		t.Errorf("sum = %v, want %v", byWire[2].Bit, wantSum)
	}
	if byWire[3].Bit != wantCarry {
		t.Errorf("carry = %v, want %v", byWire[3].Bit, wantCarry)
	}
}

func TestLongXORChainEmptyGarbledTable(t *testing.T) {
	const chain = 1000
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(chain))
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(chain + 2))
	sb.WriteString("\n")
	prev := uint32(0)
	for i := 0; i < chain; i++ {
		out := uint32(2 + i)
		sb.WriteString("2 1 ")
		sb.WriteString(strconv.Itoa(int(prev)))
		sb.WriteString(" 1 ")
		sb.WriteString(strconv.Itoa(int(out)))
		sb.WriteString(" XOR\n")
		prev = out
	}
	src := sb.String()

	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	var labelsBuf, garbledBuf bytes.Buffer
	if _, err := garble.Run(context.Background(), strings.NewReader(src), report, seed1, &labelsBuf, &garbledBuf, nil); err != nil {
		t.Fatal(err)
	}
	if garbledBuf.Len() != 0 {
		t.Fatalf("garbled blob length = %d, want 0", garbledBuf.Len())
	}

	results, bits := runPipeline(t, src, seed1, seed2)
	wantBit := simulateXORChain(bits[0], bits[1], chain)
	if results[0].Bit != wantBit {
		t.Errorf("1000-gate XOR chain result = %v, want %v", results[0].Bit, wantBit)
	}
}

func simulateXORChain(a, b bool, chain int) bool {
	cur := a
	for i := 0; i < chain; i++ {
		cur = cur != b
	}
	return cur
}

func TestEvaluationInconsistencyOnCorruptedGarbledTable(t *testing.T) {
	src := "1 3\n2 1 0 1 2 AND\n"
	report, err := liveness.Analyze(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	var labelsBuf, garbledBuf bytes.Buffer
	if _, err := garble.Run(context.Background(), strings.NewReader(src), report, seed1, &labelsBuf, &garbledBuf, nil); err != nil {
		t.Fatal(err)
	}

	inputLabels, err := garble.LoadLabelsFile(writeTemp(t, labelsBuf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	selections, err := otsim.Run(context.Background(), inputLabels, seed2)
	if err != nil {
		t.Fatal(err)
	}

	// Corrupt the first byte of every row so whichever row the
	// evaluator's actual input bits select is broken too, regardless of
	// which of the 4 rows that happens to be.
	corrupted := garbledBuf.Bytes()
	const rowSize = 16
	for row := 0; row*rowSize < len(corrupted); row++ {
		corrupted[row*rowSize] ^= 0xff
	}

	if _, err := Run(context.Background(), strings.NewReader(src), report, selections, bytes.NewReader(corrupted), nil); err == nil {
		t.Fatal("expected EvaluationInconsistency after corrupting the garbled table")
	}
}

// circuitBuilder accumulates Bristol gate lines and hands out fresh
// wire ids, for constructing arithmetic circuits too large to write
// out by hand.
type circuitBuilder struct {
	lines []string
	next  uint32
}

func (cb *circuitBuilder) gate2(op string, x, y uint32) uint32 {
	out := cb.next
	cb.next++
	cb.lines = append(cb.lines, fmt.Sprintf("2 1 %d %d %d %s\n", x, y, out, op))
	return out
}

func (cb *circuitBuilder) gate1(op string, x uint32) uint32 {
	out := cb.next
	cb.next++
	cb.lines = append(cb.lines, fmt.Sprintf("1 1 %d %d %s\n", x, out, op))
	return out
}

// or computes x OR y via De Morgan's law, since the dialect has no
// native OR gate.
func (cb *circuitBuilder) or(x, y uint32) uint32 {
	nx := cb.gate1("INV", x)
	ny := cb.gate1("INV", y)
	andn := cb.gate2("AND", nx, ny)
	return cb.gate1("INV", andn)
}

func (cb *circuitBuilder) halfAdder(x, y uint32) (sum, carry uint32) {
	sum = cb.gate2("XOR", x, y)
	carry = cb.gate2("AND", x, y)
	return
}

func (cb *circuitBuilder) fullAdder(x, y, cin uint32) (sum, carry uint32) {
	t1 := cb.gate2("XOR", x, y)
	sum = cb.gate2("XOR", t1, cin)
	t2 := cb.gate2("AND", x, y)
	t3 := cb.gate2("AND", t1, cin)
	carry = cb.or(t2, t3)
	return
}

// rippleAdd adds two equal-length bit vectors (LSB first) with a
// carry-in of 0, returning the sum bits. The final carry out is
// discarded, matching a fixed-width adder that wraps on overflow.
func (cb *circuitBuilder) rippleAdd(xs, ys []uint32) []uint32 {
	n := len(xs)
	sums := make([]uint32, n)
	var carry uint32
	for i := 0; i < n; i++ {
		if i == 0 {
			sums[0], carry = cb.halfAdder(xs[0], ys[0])
		} else {
			sums[i], carry = cb.fullAdder(xs[i], ys[i], carry)
		}
	}
	return sums
}

// build64Adder wires a and b through a single 64-bit ripple-carry
// adder, discarding the final carry out.
func build64Adder(cb *circuitBuilder, a, b []uint32) []uint32 {
	return cb.rippleAdd(a, b)
}

// build64Multiplier wires a and b through a shift-and-add multiplier:
// round i forms the partial product a<<i AND-ed with bit i of b, then
// ripple-adds it into the running accumulator at bit position i and
// above. Bit k of the accumulator reaches its final value during round
// k and is never touched again, so the result is the low 64 bits of
// a*b; anything that would carry past bit 63 is discarded.
func build64Multiplier(cb *circuitBuilder, a, b []uint32) []uint32 {
	n := len(a)
	acc := make([]uint32, n)
	for i := 0; i < n; i++ {
		width := n - i
		partial := make([]uint32, width)
		for j := 0; j < width; j++ {
			partial[j] = cb.gate2("AND", a[j], b[i])
		}
		if i == 0 {
			copy(acc, partial)
			continue
		}
		sums := cb.rippleAdd(acc[i:], partial)
		copy(acc[i:], sums)
	}
	return acc
}

// buildCircuit lays out two 64-bit primary inputs at wires 0..63 (a)
// and 64..127 (b), runs buildFn to wire up the rest of the circuit, and
// renders the result as Bristol source alongside the output wire ids
// buildFn returned (LSB first).
func buildCircuit(buildFn func(cb *circuitBuilder, a, b []uint32) []uint32) (string, []uint32) {
	const n = 64
	a := make([]uint32, n)
	b := make([]uint32, n)
	for i := 0; i < n; i++ {
		a[i] = uint32(i)
		b[i] = uint32(n + i)
	}
	cb := &circuitBuilder{next: uint32(2 * n)}
	out := buildFn(cb, a, b)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d\n", len(cb.lines), cb.next)
	for _, line := range cb.lines {
		sb.WriteString(line)
	}
	return sb.String(), out
}

func uint64ToBits(v uint64) []bool {
	bits := make([]bool, 64)
	for i := range bits {
		bits[i] = (v>>uint(i))&1 == 1
	}
	return bits
}

func bitsToUint64(bits []bool) uint64 {
	var v uint64
	for i, bit := range bits {
		if bit {
			v |= uint64(1) << uint(i)
		}
	}
	return v
}

// inputBits assigns a's bits to wires 0..63 and b's bits to wires
// 64..127, matching buildCircuit's wire layout.
func inputBits(a, b uint64) map[uint32]bool {
	wireBits := make(map[uint32]bool, 128)
	abits, bbits := uint64ToBits(a), uint64ToBits(b)
	for i := 0; i < 64; i++ {
		wireBits[uint32(i)] = abits[i]
		wireBits[uint32(64+i)] = bbits[i]
	}
	return wireBits
}

func outputValue(t *testing.T, results []OutputResult, outWires []uint32) uint64 {
	t.Helper()
	byWire := make(map[uint32]bool, len(results))
	for _, r := range results {
		byWire[r.Wire] = r.Bit
	}
	bits := make([]bool, len(outWires))
	for i, w := range outWires {
		bit, ok := byWire[w]
		if !ok {
			t.Fatalf("output wire %d missing from evaluation results", w)
		}
		bits[i] = bit
	}
	return bitsToUint64(bits)
}

func TestRippleCarryAdder64BitScenario(t *testing.T) {
	src, sumWires := buildCircuit(build64Adder)
	a, b := uint64(1), uint64(2)

	results := evalWithBits(t, src, inputBits(a, b))
	got := outputValue(t, results, sumWires)
	if want := a + b; got != want {
		t.Fatalf("adder64: %#x + %#x = %#x, want %#x", a, b, got, want)
	}
}

func TestShiftAddMultiplier64BitScenario(t *testing.T) {
	src, productWires := buildCircuit(build64Multiplier)
	a, b := uint64(3), uint64(5)

	results := evalWithBits(t, src, inputBits(a, b))
	got := outputValue(t, results, productWires)
	if want := a * b; got != want {
		t.Fatalf("mult64: %#x * %#x = %#x, want %#x", a, b, got, want)
	}
}
