package strtab

import "github.com/cespare/xxhash/v2"

const (
	djb2Basis  uint32 = 5381
	djb2Mult   uint32 = 33
	poly31Mult uint32 = 31
)

// Hasher produces the two independent hashes that seed a key's probe
// sequence. Implementations must be pure functions of the key bytes.
type Hasher interface {
	Hash(key string) (h1, h2 uint32)
}

// DefaultHasher pairs the djb2 accumulator with a polynomial base-31
// accumulator. It is the hasher used when Options.Hasher is nil.
type DefaultHasher struct{}

// Hash implements Hasher.
func (DefaultHasher) Hash(key string) (uint32, uint32) {
	return djb2(key), poly31(key)
}

// djb2 computes h = h*33 + b over the key bytes, starting from 5381.
func djb2(key string) uint32 {
	h := djb2Basis
	for i := 0; i < len(key); i++ {
		h = h*djb2Mult + uint32(key[i])
	}
	return h
}

// poly31 computes h = h*31 + b over the key bytes, starting from 0.
func poly31(key string) uint32 {
	var h uint32
	for i := 0; i < len(key); i++ {
		h = h*poly31Mult + uint32(key[i])
	}
	return h
}

// XXHasher splits a 64-bit xxhash digest into the two probe hashes.
// Prefer it over DefaultHasher when keys share long common prefixes or are
// chosen by an untrusted party; djb2 clusters badly on both.
type XXHasher struct{}

// Hash implements Hasher.
func (XXHasher) Hash(key string) (uint32, uint32) {
	sum := xxhash.Sum64String(key)
	return uint32(sum), uint32(sum >> 32)
}

// fingerprintKey is hashed to identify a hasher inside snapshot headers.
const fingerprintKey = "strtab/snapshot/v1"

// fingerprint folds both hashes of a fixed key into one word. Two hashers
// that disagree on it would place keys in different slots.
func fingerprint(h Hasher) uint32 {
	h1, h2 := h.Hash(fingerprintKey)
	return h1 ^ (h2*poly31Mult + 1)
}
