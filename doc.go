/*
Package strtab provides a fixed-capacity hash table from string keys to
fixed-width values, using open addressing with tombstone deletion.

A Table is sized once, at construction, for the largest number of distinct
keys it will ever hold. It never grows or rehashes: inserting a new key into a
full table returns ErrTableFull and leaves the table untouched, while updates
to keys already present keep working.

Basic usage:

	import "github.com/theflywheel/strtab"

	t, err := strtab.New[uint64](1024)
	if err != nil {
		log.Fatal(err)
	}
	defer t.Destroy()

	pos, err := t.Insert("answer", 42)
	if errors.Is(err, strtab.ErrTableFull) {
		// size the table larger
	}

	v, err := t.Get("answer")
	if err == nil {
		fmt.Println("Value:", v, "in slot", pos)
	}

	for k, v := range t.All() {
		fmt.Println(k, v)
	}

Features:

  - Fixed capacity with 25% slot headroom by default (Options.Headroom)
  - Generic values; the table copies the value, never what it points to
  - Release callback fired exactly once per dropped value (Options.OnRelease)
  - Positional access (ItemAt, Next, Iterator) without re-hashing
  - Optional xxhash-based probe seeding (XXHasher)
  - Snapshots that preserve slot positions (WriteSnapshot, ReadSnapshot)

Implementation Details:

The table allocates ceil(capacity * (1 + headroom)) slots, always at least
capacity+1. Each slot is empty, occupied or a tombstone. Two hashes of the key
bytes, h1 (djb2: h = h*33 + b from 5381) and h2 (h = h*31 + b from 0), fix the
start of a key's probe sequence:

	probe(key, attempt) = (h1 + attempt + h2 + 1) mod allocated

The step is one slot, so a full cycle of attempts visits every slot once.

Lookups and deletes stop at the first empty slot, after comparing against as
many occupied slots as the table holds, or after a full cycle. Inserts search
the same way before placing a new key in the earliest tombstone or empty slot
seen, so a key never occupies two slots. Deletes leave a tombstone; slots
never return to the empty state, which means long-lived tables with heavy
churn should be rebuilt from their entries rather than resized.

A Table is not safe for concurrent use; callers sharing one must lock around it.
*/
package strtab
