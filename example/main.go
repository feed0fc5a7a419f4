package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/theflywheel/strtab"
)

func main() {
	// Clean up previous example
	os.Remove("example.stb")

	released := 0
	t, err := strtab.NewWithOptions(10, strtab.Options[uint64]{
		OnRelease: func(string, uint64) { released++ },
	})
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}

	fmt.Printf("Table created: size=%d allocated=%d empty=%v\n", t.Size(), t.Allocated(), t.Empty())

	// Insert some data
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("key_%d", i)
		pos, err := t.Insert(key, uint64(i*100))
		if err != nil {
			log.Fatalf("Failed to insert %s: %v", key, err)
		}
		fmt.Printf("Inserted %s at slot %d\n", key, pos)
	}

	// The table is now full
	if _, err := t.Insert("one_more", 1); errors.Is(err, strtab.ErrTableFull) {
		fmt.Println("Insert of an 11th key rejected: table full")
	}

	// Retrieve and display some values
	for i := 0; i < 15; i += 2 {
		key := fmt.Sprintf("key_%d", i)
		value, err := t.Get(key)
		if err == nil {
			fmt.Printf("%s => %d\n", key, value)
		} else {
			fmt.Printf("%s not found\n", key)
		}
	}

	// Update a value in place
	if _, err := t.Insert("key_2", 999); err != nil {
		log.Fatalf("Failed to update key: %v", err)
	}
	if e, err := t.Find("key_2"); err == nil {
		fmt.Printf("Updated %s => %d\n", e.Key, e.Value)
	}

	// Delete and walk what is left in slot order
	if err := t.Delete("key_5"); err != nil {
		log.Fatalf("Failed to delete key: %v", err)
	}
	for k, v := range t.All() {
		fmt.Printf("  %s = %d\n", k, v)
	}

	// Save, reload and compare
	if err := strtab.WriteSnapshot("example.stb", t, strtab.Uint64Codec{}); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}
	loaded, err := strtab.ReadSnapshot("example.stb", strtab.Uint64Codec{}, strtab.Options[uint64]{})
	if err != nil {
		log.Fatalf("Failed to read snapshot: %v", err)
	}
	fmt.Printf("Reloaded %d of %d entries\n", loaded.Count(), loaded.Size())

	if err := t.Destroy(); err != nil {
		log.Fatalf("Failed to destroy table: %v", err)
	}
	fmt.Printf("Destroyed table, released %d values\n", released)

	os.Remove("example.stb")
	fmt.Println("Example completed successfully")
}
