package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theflywheel/strtab"
)

var demoKeys int

func init() {
	cmd := newDemoCmd()
	cmd.Flags().IntVar(&demoKeys, "keys", 10000, "Number of keys in the bulk scenario")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in walkthrough scenarios",
		Long: `The demo command exercises a table end to end: a single insert into a
small table, a bulk load followed by deletes, and lookups that miss.

Example:
  strtab demo
  strtab demo --keys 100000 -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

func runDemo() error {
	if demoKeys < 35 {
		return fmt.Errorf("--keys must be at least 35, got %d", demoKeys)
	}
	if err := demoSingle(); err != nil {
		return err
	}
	if err := demoBulk(demoKeys); err != nil {
		return err
	}
	return demoMisses()
}

func demoSingle() error {
	t, err := strtab.New[uint64](6)
	if err != nil {
		return err
	}
	defer t.Destroy()

	printInfo("== single insert\n")
	printInfo("size=%d count=%d empty=%v\n", t.Size(), t.Count(), t.Empty())

	pos, err := t.Insert("key1", 15)
	if err != nil {
		return err
	}
	v, err := t.Get("key1")
	if err != nil {
		return err
	}
	printInfo("insert key1=15 -> slot %d, count=%d, get key1 = %d\n", pos, t.Count(), v)
	return nil
}

func demoBulk(n int) error {
	t, err := strtab.NewWithOptions(n, strtab.Options[uint64]{Logger: newLogger()})
	if err != nil {
		return err
	}
	defer t.Destroy()

	printInfo("== bulk load of %d keys\n", n)
	for i := 1; i <= n; i++ {
		if _, err := t.Insert(fmt.Sprintf("key_%d", i), uint64(i)); err != nil {
			return fmt.Errorf("insert key_%d: %w", i, err)
		}
	}
	printInfo("count=%d\n", t.Count())

	probe := fmt.Sprintf("key_%d", n-1)
	e, err := t.Find(probe)
	if err != nil {
		return err
	}
	printInfo("find %s = %d\n", e.Key, e.Value)

	for i := 1; i <= 34; i++ {
		if err := t.Delete(fmt.Sprintf("key_%d", i)); err != nil {
			return fmt.Errorf("delete key_%d: %w", i, err)
		}
		printVerbose("delete key_%d -> count=%d\n", i, t.Count())
	}
	printInfo("deleted key_1..key_34, count=%d\n", t.Count())

	refilled := 0
	for {
		_, err := t.Insert(fmt.Sprintf("refill_%d", refilled), 0)
		if errors.Is(err, strtab.ErrTableFull) {
			break
		}
		if err != nil {
			return err
		}
		refilled++
	}
	printInfo("refilled %d keys before the table was full, count=%d\n", refilled, t.Count())

	st := t.Stats()
	printInfo("slots=%d tombstones=%d load=%.2f\n", st.Allocated, st.Tombstones, st.LoadFactor)
	return nil
}

func demoMisses() error {
	t, err := strtab.New[uint64](2)
	if err != nil {
		return err
	}
	defer t.Destroy()

	printInfo("== misses\n")
	if _, _, err := t.GetItem("key_67823"); err != nil {
		printInfo("get_item key_67823: %v\n", err)
	}
	if _, err := t.ItemAt(67823); err != nil {
		printInfo("item_at 67823: %v\n", err)
	}
	return nil
}
