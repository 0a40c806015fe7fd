package gacha

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source yields uniform values in [0, 1) for the engine's probability
// rolls.
type Source interface {
	Float64() float64
}

// DefaultSource returns the crypto-backed source. It keeps no state, so a
// single value can serve any number of goroutines.
func DefaultSource() Source { return cryptoSource{} }

type cryptoSource struct{}

// Float64 builds the value from 53 random bits so every representable
// mantissa step is equally likely.
func (cryptoSource) Float64() float64 {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		// entropy pool unavailable; degrade to math/rand
		return rand.Float64()
	}
	return float64(binary.LittleEndian.Uint64(b[:])>>11) / (1 << 53)
}

// NewSeededSource returns a PCG-backed source replaying the same value
// stream for the same seed. Each concurrent consumer needs its own.
func NewSeededSource(seed uint64) Source {
	return seededSource{rand.New(rand.NewPCG(seed, seed))}
}

type seededSource struct{ *rand.Rand }

// intn maps one roll to an index in [0, n).
func intn(rng Source, n int) int {
	if n <= 0 {
		return 0
	}
	if i := int(rng.Float64() * float64(n)); i < n {
		return i
	}
	return n - 1
}
