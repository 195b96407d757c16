// Package env implements the toolkit's single entropy-injection point:
// every subcommand that needs a fresh random seed (as opposed to one
// supplied via -s for a reproducible run) draws it through a
// Config, so tests can substitute a deterministic reader instead of
// crypto/rand without threading an io.Reader through every package.
package env

import (
	"crypto/rand"
	"io"

	"github.com/alpenlabs/garbled-circuits/gcerr"
	"github.com/alpenlabs/garbled-circuits/prng"
)

// Config holds the toolkit's global entropy configuration. Config must
// not be modified after being passed to any toolkit package; it is
// safe for concurrent use since no package mutates it.
type Config struct {
	Rand io.Reader
}

// GetRandom returns the configured source of entropy, defaulting to
// crypto/rand.Reader.
func (c *Config) GetRandom() io.Reader {
	if c != nil && c.Rand != nil {
		return c.Rand
	}
	return rand.Reader
}

// NewSeed draws a fresh prng.SeedSize-byte seed from c's entropy
// source, for subcommands invoked without -s.
func (c *Config) NewSeed() ([]byte, error) {
	seed := make([]byte, prng.SeedSize)
	if _, err := io.ReadFull(c.GetRandom(), seed); err != nil {
		return nil, gcerr.Wrap(gcerr.Crypto, err, "drawing fresh seed")
	}
	return seed, nil
}
