package liveness

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/alpenlabs/garbled-circuits/bristol"
	"github.com/alpenlabs/garbled-circuits/gcerr"
)

// magic identifies the wire-analysis artifact format, mirroring the
// lineage's own 4-byte MAGIC constant widened to a 16-byte
// magic+version header as SPEC_FULL.md requires.
const magic uint64 = 0x6763737472656100 // "gcstrea\x00"

// version is the current wire-analysis artifact format version.
const version uint32 = 1

var bo = binary.BigEndian

// Save writes the report to path using a temp-file-then-rename
// discipline so a failed write never leaves a partial artifact behind.
func (r *Report) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wire_analysis-*.tmp")
	if err != nil {
		return gcerr.Wrap(gcerr.IO, err, "creating temp artifact in %s", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := r.Marshal(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "closing temp artifact %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "renaming %s to %s", tmpPath, path)
	}
	return nil
}

// Marshal writes the versioned binary encoding of the report to w.
func (r *Report) Marshal(w io.Writer) error {
	fields := []interface{}{
		magic,
		version,
		uint32(0), // reserved, completes the 16-byte header
		r.TotalWires,
		r.TotalGates,
		r.PrimaryInputs,
		r.IntermediateWires,
		r.PrimaryOutputs,
		r.MissingWires,
		r.PeakResidency,
	}
	for _, f := range fields {
		if err := binary.Write(w, bo, f); err != nil {
			return gcerr.Wrap(gcerr.IO, err, "writing wire-analysis header")
		}
	}

	if err := binary.Write(w, bo, uint32(len(r.GateHistogram))); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "writing histogram length")
	}
	ops := make([]bristol.Operation, 0, len(r.GateHistogram))
	for op := range r.GateHistogram {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	for _, op := range ops {
		count := r.GateHistogram[op]
		if err := binary.Write(w, bo, byte(op)); err != nil {
			return gcerr.Wrap(gcerr.IO, err, "writing histogram entry")
		}
		if err := binary.Write(w, bo, count); err != nil {
			return gcerr.Wrap(gcerr.IO, err, "writing histogram entry")
		}
	}

	if err := writeWireList(w, r.PrimaryInputWires); err != nil {
		return err
	}
	if err := writeWireList(w, r.PrimaryOutputWires); err != nil {
		return err
	}

	if err := binary.Write(w, bo, uint64(len(r.WireUsageCounts))); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "writing usage-count length")
	}
	if _, err := w.Write(r.WireUsageCounts); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "writing usage counts")
	}
	return nil
}

func writeWireList(w io.Writer, wires []uint32) error {
	if err := binary.Write(w, bo, uint32(len(wires))); err != nil {
		return gcerr.Wrap(gcerr.IO, err, "writing wire-list length")
	}
	for _, id := range wires {
		if err := binary.Write(w, bo, id); err != nil {
			return gcerr.Wrap(gcerr.IO, err, "writing wire id")
		}
	}
	return nil
}

// Load reads a wire-analysis artifact previously written by Save.
func Load(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "opening wire-analysis artifact %s", path)
	}
	defer f.Close()
	return Unmarshal(f)
}

// Unmarshal reads the versioned binary encoding of a report from r.
func Unmarshal(r io.Reader) (*Report, error) {
	var gotMagic uint64
	var gotVersion, reserved uint32
	if err := binary.Read(r, bo, &gotMagic); err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "reading artifact magic")
	}
	if gotMagic != magic {
		return nil, gcerr.New(gcerr.VersionMismatch,
			"not a wire-analysis artifact (bad magic %#x)", gotMagic)
	}
	if err := binary.Read(r, bo, &gotVersion); err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "reading artifact version")
	}
	if gotVersion != version {
		return nil, gcerr.New(gcerr.VersionMismatch,
			"wire-analysis artifact version %d, expected %d", gotVersion, version)
	}
	if err := binary.Read(r, bo, &reserved); err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "reading artifact header padding")
	}

	report := &Report{GateHistogram: make(bristol.Histogram)}
	fields := []interface{}{
		&report.TotalWires,
		&report.TotalGates,
		&report.PrimaryInputs,
		&report.IntermediateWires,
		&report.PrimaryOutputs,
		&report.MissingWires,
		&report.PeakResidency,
	}
	for _, f := range fields {
		if err := binary.Read(r, bo, f); err != nil {
			return nil, gcerr.Wrap(gcerr.IO, err, "reading wire-analysis header")
		}
	}

	var histLen uint32
	if err := binary.Read(r, bo, &histLen); err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "reading histogram length")
	}
	for i := uint32(0); i < histLen; i++ {
		var opByte byte
		var count uint64
		if err := binary.Read(r, bo, &opByte); err != nil {
			return nil, gcerr.Wrap(gcerr.IO, err, "reading histogram entry")
		}
		if err := binary.Read(r, bo, &count); err != nil {
			return nil, gcerr.Wrap(gcerr.IO, err, "reading histogram entry")
		}
		report.GateHistogram[bristol.Operation(opByte)] = count
	}

	var err error
	report.PrimaryInputWires, err = readWireList(r)
	if err != nil {
		return nil, err
	}
	report.PrimaryOutputWires, err = readWireList(r)
	if err != nil {
		return nil, err
	}

	var usageLen uint64
	if err := binary.Read(r, bo, &usageLen); err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "reading usage-count length")
	}
	report.WireUsageCounts = make([]uint8, usageLen)
	if _, err := io.ReadFull(r, report.WireUsageCounts); err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "reading usage counts")
	}

	return report, nil
}

func readWireList(r io.Reader) ([]uint32, error) {
	var n uint32
	if err := binary.Read(r, bo, &n); err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "reading wire-list length")
	}
	wires := make([]uint32, n)
	for i := range wires {
		if err := binary.Read(r, bo, &wires[i]); err != nil {
			return nil, gcerr.Wrap(gcerr.IO, err, "reading wire id")
		}
	}
	return wires, nil
}
