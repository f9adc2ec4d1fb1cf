// Package rng derives the deterministic random streams used by world generation.
//
// Every stream is a PCG generator from math/rand/v2 seeded from the 32-bit world seed, so a
// given seed always reproduces the same terrain, bases, sites and rewards.
package rng

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/zeebo/xxh3"
)

// pcgIncrement is the fixed second PCG word; streams differ only by their first word.
const pcgIncrement = 0xda3e39cb94b95bdb

// New returns a PCG-backed generator for the given 64-bit stream seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgIncrement))
}

// Pack combines the world seed into a 64-bit stream seed by placing it in both halves.
func Pack(seed uint32) uint64 {
	return uint64(seed)<<32 | uint64(seed)
}

// Hashed derives a sub-seed from the xxh3 hash of the seed's little-endian bytes.
func Hashed(seed uint32) uint64 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], seed)
	return xxh3.Hash(b[:])
}

// HashID hashes a stable integer identity; used for deterministic tie-breaks.
func HashID(id uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], id)
	return xxh3.Hash(b[:])
}

// IntRange returns a uniform integer in [lo, hi). hi <= lo yields lo.
func IntRange(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo)
}

// Bool returns true with probability p.
func Bool(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// Poisson draws from a Poisson distribution with the given mean (Knuth's multiplication method;
// adequate for the small means used by reward generation).
func Poisson(r *rand.Rand, mean float64) float64 {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k := 0.0
	p := 1.0
	for {
		p *= r.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
