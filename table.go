package strtab

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
)

// Table is a fixed-capacity open-addressing map from string keys to values
// of type V. It never grows: size it for peak occupancy up front.
//
// A Table is not safe for concurrent use.
type Table[V any] struct {
	slots      []slot[V]
	capacity   int
	count      int
	tombstones int
	destroyed  bool

	hasher    Hasher
	onRelease ReleaseFunc[V]
	log       *slog.Logger
}

// New creates a table that accepts up to capacity distinct keys, using
// DefaultOptions.
func New[V any](capacity int) (*Table[V], error) {
	return NewWithOptions(capacity, DefaultOptions[V]())
}

// NewWithOptions creates a table that accepts up to capacity distinct keys.
func NewWithOptions[V any](capacity int, opts Options[V]) (*Table[V], error) {
	opts = opts.withDefaults()

	allocated, err := slotsFor(capacity, opts.Headroom)
	if err != nil {
		return nil, err
	}

	t := newTable(capacity, allocated, opts)
	opts.Logger.Debug("strtab: table created",
		"capacity", capacity, "allocated", allocated, "headroom", opts.Headroom)
	return t, nil
}

func newTable[V any](capacity, allocated int, opts Options[V]) *Table[V] {
	return &Table[V]{
		slots:     make([]slot[V], allocated),
		capacity:  capacity,
		hasher:    opts.Hasher,
		onRelease: opts.OnRelease,
		log:       opts.Logger,
	}
}

// slotsFor returns ceil(capacity * (1 + headroom)), forced above capacity.
func slotsFor(capacity int, headroom float64) (int, error) {
	if capacity <= 0 {
		return 0, fmt.Errorf("capacity %d must be greater than zero: %w", capacity, ErrInvalidCapacity)
	}
	if headroom < 0 || math.IsNaN(headroom) || math.IsInf(headroom, 0) {
		return 0, fmt.Errorf("headroom %v must be a finite non-negative fraction: %w", headroom, ErrInvalidCapacity)
	}

	want := math.Ceil(float64(capacity) * (1 + headroom))
	if want >= math.MaxInt32 {
		return 0, fmt.Errorf("capacity %d with headroom %v needs too many slots: %w", capacity, headroom, ErrInvalidCapacity)
	}

	allocated := int(want)
	if allocated <= capacity {
		allocated = capacity + 1
	}
	return allocated, nil
}

// Insert stores value under key and returns the slot it occupies.
//
// An existing key is updated in place; the previous value is handed to
// OnRelease. A new key is placed in the first tombstone or empty slot on its
// probe sequence, but only after the sequence has been searched far enough to
// rule out an existing copy of the key further along. Inserting a new key
// into a table holding capacity entries returns ErrTableFull and changes
// nothing.
func (t *Table[V]) Insert(key string, value V) (int, error) {
	if t.destroyed {
		return -1, ErrDestroyed
	}

	h1, h2 := t.hasher.Hash(key)
	p := newProbe(h1, h2, len(t.slots))
	free := -1
	seen := 0

walk:
	for {
		idx, ok := p.next()
		if !ok {
			break
		}

		s := &t.slots[idx]
		switch s.state {
		case slotEmpty:
			if free < 0 {
				free = idx
			}
			break walk
		case slotTombstone:
			if free < 0 {
				free = idx
			}
		case slotOccupied:
			if s.key == key {
				old := s.value
				s.value = value
				t.release(key, old)
				return idx, nil
			}
			seen++
		}

		// Once every live entry has been compared the key cannot appear later.
		if free >= 0 && seen >= t.count {
			break
		}
	}

	if t.count >= t.capacity {
		t.log.Debug("strtab: insert rejected, table full",
			"key", key, "count", t.count, "capacity", t.capacity)
		return -1, ErrTableFull
	}
	if free < 0 {
		// Unreachable while allocated > capacity.
		return -1, ErrTableFull
	}

	s := &t.slots[free]
	if s.state == slotTombstone {
		t.tombstones--
	}
	s.state = slotOccupied
	s.key = key
	s.value = value
	t.count++
	return free, nil
}

// lookup returns the slot holding key, or -1.
//
// The walk stops at the first empty slot, after comparing against count
// occupied slots, or after visiting every slot, whichever comes first. The
// last bound keeps absent-key lookups finite in tables where deletes have
// replaced every empty slot with a tombstone.
func (t *Table[V]) lookup(key string) int {
	if t.destroyed || t.count == 0 {
		return -1
	}

	h1, h2 := t.hasher.Hash(key)
	p := newProbe(h1, h2, len(t.slots))
	seen := 0
	for {
		idx, ok := p.next()
		if !ok {
			return -1
		}

		s := &t.slots[idx]
		switch s.state {
		case slotEmpty:
			return -1
		case slotOccupied:
			if s.key == key {
				return idx
			}
			seen++
			if seen >= t.count {
				return -1
			}
		}
	}
}

// Get returns the value stored under key.
func (t *Table[V]) Get(key string) (V, error) {
	var zero V
	if t.destroyed {
		return zero, ErrDestroyed
	}
	idx := t.lookup(key)
	if idx < 0 {
		return zero, ErrNotFound
	}
	return t.slots[idx].value, nil
}

// Find returns the entry stored under key.
func (t *Table[V]) Find(key string) (Entry[V], error) {
	e, _, err := t.GetItem(key)
	return e, err
}

// GetItem returns the entry stored under key together with its slot
// position, which remains valid for ItemAt until the key is deleted.
func (t *Table[V]) GetItem(key string) (Entry[V], int, error) {
	if t.destroyed {
		return Entry[V]{}, -1, ErrDestroyed
	}
	idx := t.lookup(key)
	if idx < 0 {
		return Entry[V]{}, -1, ErrNotFound
	}
	s := &t.slots[idx]
	return Entry[V]{Key: s.key, Value: s.value}, idx, nil
}

// Contains reports whether key is stored in the table.
func (t *Table[V]) Contains(key string) bool {
	return t.lookup(key) >= 0
}

// ItemAt returns the entry in slot pos without hashing. Empty slots,
// tombstones and positions outside [0, Allocated()) yield ErrNoItem.
func (t *Table[V]) ItemAt(pos int) (Entry[V], error) {
	if t.destroyed {
		return Entry[V]{}, ErrDestroyed
	}
	if pos < 0 || pos >= len(t.slots) {
		return Entry[V]{}, ErrNoItem
	}
	s := &t.slots[pos]
	if s.state != slotOccupied {
		return Entry[V]{}, ErrNoItem
	}
	return Entry[V]{Key: s.key, Value: s.value}, nil
}

// Delete removes key, leaving a tombstone in its slot.
func (t *Table[V]) Delete(key string) error {
	if t.destroyed {
		return ErrDestroyed
	}
	idx := t.lookup(key)
	if idx < 0 {
		return ErrNotFound
	}

	s := &t.slots[idx]
	old := s.value
	s.bury()
	t.count--
	t.tombstones++
	t.release(key, old)
	return nil
}

// Destroy releases every stored value through OnRelease and drops the slot
// array. Destroying twice returns ErrDestroyed and releases nothing.
func (t *Table[V]) Destroy() error {
	if t.destroyed {
		t.log.Warn("strtab: destroy called on destroyed table")
		return ErrDestroyed
	}

	for i := range t.slots {
		s := &t.slots[i]
		if s.state != slotOccupied {
			continue
		}
		t.release(s.key, s.value)
	}

	t.slots = nil
	t.count = 0
	t.tombstones = 0
	t.destroyed = true
	return nil
}

func (t *Table[V]) release(key string, value V) {
	if t.onRelease != nil {
		t.onRelease(key, value)
	}
}

// Size returns the table's capacity: the most distinct keys it accepts.
func (t *Table[V]) Size() int { return t.capacity }

// Count returns the number of stored keys.
func (t *Table[V]) Count() int { return t.count }

// Empty reports whether the table holds no keys.
func (t *Table[V]) Empty() bool { return t.count == 0 }

// Allocated returns the number of physical slots.
func (t *Table[V]) Allocated() int { return len(t.slots) }

// Next returns the first occupied slot at or after pos. ok is false when no
// such slot exists.
func (t *Table[V]) Next(pos int) (e Entry[V], idx int, ok bool) {
	if pos < 0 {
		pos = 0
	}
	for i := pos; i < len(t.slots); i++ {
		s := &t.slots[i]
		if s.state == slotOccupied {
			return Entry[V]{Key: s.key, Value: s.value}, i, true
		}
	}
	return Entry[V]{}, -1, false
}

// All yields every stored entry in slot order. The table must not be
// modified while the sequence is being ranged over.
func (t *Table[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for pos := 0; ; pos++ {
			e, idx, ok := t.Next(pos)
			if !ok || !yield(e.Key, e.Value) {
				return
			}
			pos = idx
		}
	}
}

// Iterator returns a cursor positioned before the first slot.
func (t *Table[V]) Iterator() *Iterator[V] {
	return &Iterator[V]{t: t, cur: -1}
}

// Iterator walks a table's entries in slot order.
//
//	it := t.Iterator()
//	for it.Next() {
//	    e := it.Entry()
//	    ...
//	}
type Iterator[V any] struct {
	t     *Table[V]
	pos   int // next slot to inspect
	cur   int // slot of the current entry, -1 before the first Next
	entry Entry[V]
}

// Next advances to the next entry and reports whether there was one.
func (it *Iterator[V]) Next() bool {
	e, idx, ok := it.t.Next(it.pos)
	if !ok {
		it.pos = it.t.Allocated()
		it.cur = -1
		it.entry = Entry[V]{}
		return false
	}
	it.entry = e
	it.cur = idx
	it.pos = idx + 1
	return true
}

// Entry returns the entry the iterator is positioned on.
func (it *Iterator[V]) Entry() Entry[V] { return it.entry }

// Position returns the slot of the current entry, or -1.
func (it *Iterator[V]) Position() int { return it.cur }

// Reset rewinds the iterator to the first slot.
func (it *Iterator[V]) Reset() {
	it.pos = 0
	it.cur = -1
	it.entry = Entry[V]{}
}

// Stats reports slot usage.
type Stats struct {
	Capacity   int     `json:"capacity"`
	Allocated  int     `json:"allocated"`
	Count      int     `json:"count"`
	Tombstones int     `json:"tombstones"`
	Free       int     `json:"free"` // never-written slots
	LoadFactor float64 `json:"load_factor"`
}

// Stats returns a snapshot of the table's slot usage.
func (t *Table[V]) Stats() Stats {
	allocated := len(t.slots)
	st := Stats{
		Capacity:   t.capacity,
		Allocated:  allocated,
		Count:      t.count,
		Tombstones: t.tombstones,
		Free:       allocated - t.count - t.tombstones,
	}
	if allocated > 0 {
		st.LoadFactor = float64(t.count+t.tombstones) / float64(allocated)
	}
	return st
}
