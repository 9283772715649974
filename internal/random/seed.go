// Package random builds the pseudo-random sources used for dealing cards.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// New returns a generator seeded from crypto/rand. If the system source is
// unavailable it falls back to the runtime-seeded global generator's output.
func New() *rand.Rand {
	seed, err := NewSeed()
	if err != nil {
		seed = rand.Uint64()
	}
	return Seeded(seed)
}

// Seeded returns a deterministic generator for the given seed.
func Seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
