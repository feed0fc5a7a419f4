package strtab

// probe walks a key's slot sequence lazily. The start offset depends on both
// hashes and each attempt advances by one slot, so allocated consecutive
// attempts visit every slot exactly once.
type probe struct {
	base      uint64
	allocated uint64
	attempt   uint64
}

func newProbe(h1, h2 uint32, allocated int) probe {
	return probe{
		base:      uint64(h1) + uint64(h2) + 1,
		allocated: uint64(allocated),
	}
}

// next returns the slot index for the current attempt and advances. ok is
// false once allocated attempts have been made.
func (p *probe) next() (idx int, ok bool) {
	if p.attempt >= p.allocated {
		return 0, false
	}
	idx = int((p.base + p.attempt) % p.allocated)
	p.attempt++
	return idx, true
}

// ProbeIndex returns the slot visited on the given attempt for key in a
// table of allocated slots. Intended for diagnostics; the table itself walks
// the sequence incrementally.
func ProbeIndex(h Hasher, key string, attempt, allocated int) int {
	if allocated <= 0 || attempt < 0 {
		return -1
	}
	h1, h2 := h.Hash(key)
	return int((uint64(h1) + uint64(attempt) + uint64(h2) + 1) % uint64(allocated))
}
