package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <snapshot>",
		Short: "Print every entry in slot order",
		Long: `The dump command prints each stored entry as "slot key value", in slot order.

Example:
  strtab dump words.stb
  strtab dump words.stb --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	t, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer t.Destroy()

	entries := make([]entryJSON, 0, t.Count())
	it := t.Iterator()
	for it.Next() {
		e := it.Entry()
		entries = append(entries, entryJSON{Slot: it.Position(), Key: e.Key, Value: e.Value})
	}

	if jsonOut {
		return printJSON(entries)
	}
	for _, e := range entries {
		printInfo("%d\t%s\t%d\n", e.Slot, e.Key, e.Value)
	}
	return nil
}
