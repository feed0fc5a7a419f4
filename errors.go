package strtab

import "errors"

var (
	// ErrInvalidCapacity is returned when a table is constructed with a
	// non-positive capacity or an unusable headroom fraction.
	ErrInvalidCapacity = errors.New("strtab: invalid capacity")

	// ErrTableFull is returned when inserting a new distinct key into a table
	// whose count already equals its capacity. The table is left unchanged.
	ErrTableFull = errors.New("strtab: table full")

	// ErrNotFound is returned by keyed lookups and deletes that miss.
	ErrNotFound = errors.New("strtab: key not found")

	// ErrNoItem is returned by positional access to an empty, deleted or
	// out-of-range slot.
	ErrNoItem = errors.New("strtab: no item at position")

	// ErrDestroyed is returned by any operation on a destroyed table.
	ErrDestroyed = errors.New("strtab: table destroyed")

	// ErrBadSnapshot indicates a snapshot file that is truncated, has the
	// wrong magic number or version, or whose contents disagree with its header.
	ErrBadSnapshot = errors.New("strtab: malformed snapshot")

	// ErrSnapshotHasher indicates that a snapshot was written with a different
	// hasher than the one configured for reading it back.
	ErrSnapshotHasher = errors.New("strtab: snapshot hasher mismatch")
)
