package strtab

import (
	"io"
	"log/slog"
	"math"
)

// DefaultHeadroom is the fraction of extra slots allocated above capacity.
const DefaultHeadroom = 0.25

// MinHeadroom requests the smallest table possible: capacity+1 slots.
// Use it where a literal zero would select DefaultHeadroom.
const MinHeadroom = math.SmallestNonzeroFloat64

// ReleaseFunc is called once for every value the table stops holding: the
// old value on an update, the value of a deleted key, and every remaining
// value on Destroy. The table never releases what a value refers to; this
// hook is where the owner of that referent is told to let go.
type ReleaseFunc[V any] func(key string, value V)

// Options configures a table. Zero fields take their defaults.
type Options[V any] struct {
	// Headroom is the extra fraction of physical slots over capacity.
	// Zero selects DefaultHeadroom; use MinHeadroom for no extra slots
	// beyond the one always added. Negative values are rejected.
	Headroom float64

	// Hasher seeds probe sequences. Default: DefaultHasher.
	Hasher Hasher

	// OnRelease, if set, is notified of every value the table drops.
	OnRelease ReleaseFunc[V]

	// Logger receives rare diagnostic events. Default: discards output.
	Logger *slog.Logger
}

// DefaultOptions returns the options New uses.
func DefaultOptions[V any]() Options[V] {
	return Options[V]{
		Headroom: DefaultHeadroom,
		Hasher:   DefaultHasher{},
		Logger:   discardLogger,
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (o Options[V]) withDefaults() Options[V] {
	if o.Headroom == 0 {
		o.Headroom = DefaultHeadroom
	}
	if o.Hasher == nil {
		o.Hasher = DefaultHasher{}
	}
	if o.Logger == nil {
		o.Logger = discardLogger
	}
	return o
}
