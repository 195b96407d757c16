package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alpenlabs/garbled-circuits/env"
	"github.com/alpenlabs/garbled-circuits/gcerr"
	"github.com/alpenlabs/garbled-circuits/progress"
	"github.com/alpenlabs/garbled-circuits/prng"
)

// peekGateCount reads circuit f's header line to size a progress bar,
// then rewinds f to the start so the subcommand's own pass sees the
// whole stream from offset 0.
func peekGateCount(f *os.File) (int64, error) {
	br := bufio.NewReader(f)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, gcerr.Wrap(gcerr.IO, err, "peeking header line of %s", f.Name())
	}
	fields := strings.Fields(line)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, gcerr.Wrap(gcerr.IO, err, "rewinding %s", f.Name())
	}
	if len(fields) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// openCircuit opens path and returns it with a progress bar sized to
// its declared gate count (or a spinner, under -q a no-op bar).
func openCircuit(path string, quiet bool, description string) (*os.File, *progress.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, gcerr.Wrap(gcerr.IO, err, "opening circuit %s", path)
	}
	if quiet {
		return f, progress.Quiet(), nil
	}
	total, err := peekGateCount(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, progress.New(os.Stderr, total, description), nil
}

// progressReader wraps an io.Reader, counting newlines seen (one per
// gate, since every gate is one line) and reporting them to bar. Used
// by subcommands (count, wire-analysis) whose entry point takes a bare io.Reader
// with no onGate hook.
type progressReader struct {
	r     io.Reader
	bar   *progress.Bar
	lines uint64
}

func withProgress(r io.Reader, bar *progress.Bar) io.Reader {
	return &progressReader{r: r, bar: bar}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	for _, b := range buf[:n] {
		if b == '\n' {
			p.lines++
		}
	}
	p.bar.Set(p.lines)
	return n, err
}

// stem returns path with its extension removed, for default output
// filenames (e.g. circuit.txt -> circuit.wire_analysis).
func stem(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext)
}

// createArtifact creates a temp file in the same directory as path,
// for the temp-file-then-rename discipline every artifact writer uses.
func createArtifact(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".gcstream-*.tmp")
	if err != nil {
		return nil, gcerr.Wrap(gcerr.IO, err, "creating temp artifact in %s", dir)
	}
	return f, nil
}

// finishArtifact closes tmp and renames it to path, or removes it on
// failure so no partial artifact is left behind.
func finishArtifact(tmp *os.File, path string) error {
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return gcerr.Wrap(gcerr.IO, err, "closing temp artifact %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return gcerr.Wrap(gcerr.IO, err, "renaming %s to %s", tmpPath, path)
	}
	return nil
}

// loadOrDrawSeed reads a seed from seedPath if given, otherwise draws a
// fresh one from the default entropy source (env.Config) and persists
// it to freshPath so the run stays reproducible. Returns the path the
// fresh seed was written to, or "" if an existing seed file was used.
func loadOrDrawSeed(seedPath, freshPath string) ([]byte, string, error) {
	if seedPath != "" {
		seed, err := prng.ReadSeedFile(seedPath)
		return seed, "", err
	}
	var c env.Config
	seed, err := c.NewSeed()
	if err != nil {
		return nil, "", err
	}
	if err := prng.WriteSeedFile(freshPath, seed); err != nil {
		return nil, "", err
	}
	return seed, freshPath, nil
}
