package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theflywheel/strtab"
)

var deleteMissingOK bool

func init() {
	cmd := newDeleteCmd()
	cmd.Flags().BoolVar(&deleteMissingOK, "missing-ok", false, "Do not fail on keys that are not present")
	rootCmd.AddCommand(cmd)
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <snapshot> <key>...",
		Short: "Delete keys from a snapshot",
		Long: `The delete command removes keys and rewrites the snapshot in place.
Deleted slots become tombstones; other entries keep their slots.

Example:
  strtab delete words.stb apple banana
  strtab delete words.stb maybe --missing-ok`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args)
		},
	}
	return cmd
}

func runDelete(args []string) error {
	path := args[0]

	t, err := openSnapshot(path)
	if err != nil {
		return err
	}
	defer t.Destroy()

	deleted := 0
	for _, key := range args[1:] {
		if err := t.Delete(key); err != nil {
			if errors.Is(err, strtab.ErrNotFound) && deleteMissingOK {
				printVerbose("not found: %s\n", key)
				continue
			}
			return fmt.Errorf("failed to delete %q: %w", key, err)
		}
		deleted++
	}

	if err := saveSnapshot(path, t); err != nil {
		return err
	}
	printInfo("Deleted %d key(s), %d remaining\n", deleted, t.Count())
	return nil
}
