package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newAtCmd())
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <snapshot> <key>",
		Aliases: []string{"find"},
		Short:   "Look up a key in a snapshot",
		Long: `The get command prints the value stored under a key and the slot holding it.

Example:
  strtab get words.stb apple
  strtab find words.stb apple -v
  strtab get words.stb apple --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	return cmd
}

func runGet(args []string) error {
	t, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer t.Destroy()

	e, pos, err := t.GetItem(args[1])
	if err != nil {
		return fmt.Errorf("failed to get %q: %w", args[1], err)
	}

	if jsonOut {
		return printJSON(entryJSON{Slot: pos, Key: e.Key, Value: e.Value})
	}
	printInfo("%d\n", e.Value)
	printVerbose("slot: %d\n", pos)
	return nil
}

func newAtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "at <snapshot> <slot>",
		Short: "Show the entry in a slot",
		Long: `The at command prints the entry stored in a slot without hashing.

Example:
  strtab at words.stb 17`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAt(args)
		},
	}
	return cmd
}

func runAt(args []string) error {
	var pos int
	if _, err := fmt.Sscan(args[1], &pos); err != nil {
		return fmt.Errorf("invalid slot %q: %w", args[1], err)
	}

	t, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer t.Destroy()

	e, err := t.ItemAt(pos)
	if err != nil {
		return fmt.Errorf("slot %d: %w", pos, err)
	}

	if jsonOut {
		return printJSON(entryJSON{Slot: pos, Key: e.Key, Value: e.Value})
	}
	printInfo("%s\t%d\n", e.Key, e.Value)
	return nil
}
