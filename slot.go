package strtab

// slotState tags a slot. The zero value is empty so a freshly allocated slot
// array needs no initialization.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

func (s slotState) String() string {
	switch s {
	case slotEmpty:
		return "empty"
	case slotOccupied:
		return "occupied"
	case slotTombstone:
		return "tombstone"
	default:
		return "invalid"
	}
}

type slot[V any] struct {
	state slotState
	key   string
	value V
}

// bury drops the slot's key and value so the garbage collector can reclaim
// them, then marks it as a tombstone.
func (s *slot[V]) bury() {
	var zero V
	s.key = ""
	s.value = zero
	s.state = slotTombstone
}

// Entry is a key and its stored value.
type Entry[V any] struct {
	Key   string
	Value V
}
