package bristol

import (
	"io"
	"strconv"
	"strings"

	"github.com/alpenlabs/garbled-circuits/gcerr"
)

// definedSet tracks, per wire id, whether a gate has already produced
// it. This is O(W) memory (one bit per wire), the same cost the
// wire-liveness analyzer itself pays for its own producer-tracking
// vector; it is the one exception to "O(1) memory beyond the current
// gate" the parser makes, and only for topology validation.
type definedSet struct {
	bits []uint64
}

func newDefinedSet(numWires uint64) *definedSet {
	return &definedSet{bits: make([]uint64, (numWires+63)/64)}
}

func (d *definedSet) get(w uint32) bool {
	idx := uint64(w) / 64
	if idx >= uint64(len(d.bits)) {
		return false
	}
	return d.bits[idx]&(1<<(uint64(w)%64)) != 0
}

func (d *definedSet) set(w uint32) {
	idx := uint64(w) / 64
	d.bits[idx] |= 1 << (uint64(w) % 64)
}

// Parser is a lazy, non-restartable iterator over gate records in a
// Bristol circuit file.
type Parser struct {
	Header  Header
	r       *lineReader
	defined *definedSet
	next    uint64
	done    bool
}

// NewParser reads and validates the header line from r and returns a
// Parser ready to stream gates via Next.
func NewParser(r io.Reader) (*Parser, error) {
	lr := newLineReader(r)
	line, err := lr.next()
	if err != nil {
		if err == io.EOF {
			return nil, gcerr.New(gcerr.Parse, "missing header line")
		}
		return nil, gcerr.Wrap(gcerr.IO, err, "reading header line")
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return nil, gcerr.New(gcerr.Parse,
			"invalid header %q: expected '<num_gates> <num_wires>'", line)
	}
	numGates, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, gcerr.New(gcerr.Parse, "invalid num_gates %q", fields[0])
	}
	numWires, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil, gcerr.New(gcerr.Parse, "invalid num_wires %q", fields[1])
	}
	return &Parser{
		Header:  Header{NumGates: numGates, NumWires: numWires},
		r:       lr,
		defined: newDefinedSet(numWires),
	}, nil
}

// Next returns the next gate in topological order, or io.EOF once the
// stream is exhausted. It fails with a gcerr-wrapped ParseError or
// StructuralError on any malformed or non-topological gate.
func (p *Parser) Next() (Gate, error) {
	if p.done {
		return Gate{}, io.EOF
	}
	line, err := p.r.next()
	if err != nil {
		if err == io.EOF {
			p.done = true
			if p.next != p.Header.NumGates {
				return Gate{}, gcerr.New(gcerr.Structural,
					"header declares %d gates, stream contained %d",
					p.Header.NumGates, p.next)
			}
			return Gate{}, io.EOF
		}
		return Gate{}, gcerr.AtGate(gcerr.Wrap(gcerr.IO, err, "reading gate line"), p.next)
	}

	gate, err := p.parseGateLine(line)
	if err != nil {
		return Gate{}, err
	}
	gate.Index = p.next
	p.next++

	if err := p.validate(gate); err != nil {
		return Gate{}, err
	}
	p.defined.set(gate.Output)
	return gate, nil
}

func (p *Parser) parseGateLine(line string) (Gate, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Gate{}, gcerr.AtGate(gcerr.New(gcerr.Parse, "too few fields: %q", line), p.next)
	}
	inArity, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Gate{}, gcerr.AtGate(gcerr.New(gcerr.Parse, "invalid in_arity %q", fields[0]), p.next)
	}
	outArity, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Gate{}, gcerr.AtGate(gcerr.New(gcerr.Parse, "invalid out_arity %q", fields[1]), p.next)
	}
	if outArity != 1 {
		return Gate{}, gcerr.AtGate(gcerr.New(gcerr.Structural,
			"out_arity must be 1, got %d", outArity), p.next)
	}
	wantFields := 2 + int(inArity) + int(outArity) + 1
	if len(fields) != wantFields {
		return Gate{}, gcerr.AtGate(gcerr.New(gcerr.Parse,
			"expected %d fields for arity (%d,%d), got %d: %q",
			wantFields, inArity, outArity, len(fields), line), p.next)
	}

	inputs := make([]uint32, inArity)
	for i := range inputs {
		v, err := strconv.ParseUint(fields[2+i], 10, 32)
		if err != nil {
			return Gate{}, gcerr.AtGate(gcerr.New(gcerr.Parse,
				"invalid input wire %q", fields[2+i]), p.next)
		}
		inputs[i] = uint32(v)
	}
	outField := fields[2+inArity]
	out, err := strconv.ParseUint(outField, 10, 32)
	if err != nil {
		return Gate{}, gcerr.AtGate(gcerr.New(gcerr.Parse,
			"invalid output wire %q", outField), p.next)
	}

	op, ok := parseOperation(fields[len(fields)-1])
	if !ok {
		return Gate{}, gcerr.AtGate(gcerr.New(gcerr.Parse,
			"unrecognized gate kind %q", fields[len(fields)-1]), p.next)
	}

	return Gate{Inputs: inputs, Output: uint32(out), Op: op}, nil
}

func (p *Parser) validate(g Gate) error {
	w := p.Header.NumWires
	if uint64(g.Output) >= w {
		return gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
			"output wire out of range [0,%d)", w), uint64(g.Output)), g.Index)
	}
	if p.defined.get(g.Output) {
		return gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
			"output wire already defined"), uint64(g.Output)), g.Index)
	}
	for _, in := range g.Inputs {
		if uint64(in) >= w {
			return gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
				"input wire out of range [0,%d)", w), uint64(in)), g.Index)
		}
		if in >= g.Output && !p.defined.get(in) {
			return gcerr.AtGate(gcerr.AtWire(gcerr.New(gcerr.Structural,
				"input wire used before definition (topology violation)"), uint64(in)), g.Index)
		}
	}
	switch g.Op {
	case XOR, AND:
		if len(g.Inputs) != 2 {
			return gcerr.AtGate(gcerr.New(gcerr.Structural,
				"%s requires 2 inputs, got %d", g.Op, len(g.Inputs)), g.Index)
		}
	case INV:
		if len(g.Inputs) != 1 {
			return gcerr.AtGate(gcerr.New(gcerr.Structural,
				"INV requires 1 input, got %d", len(g.Inputs)), g.Index)
		}
	case EQ, EQW:
		if len(g.Inputs) != 1 {
			return gcerr.AtGate(gcerr.New(gcerr.Structural,
				"%s requires 1 input, got %d", g.Op, len(g.Inputs)), g.Index)
		}
	}
	return nil
}
