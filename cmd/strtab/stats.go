package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theflywheel/strtab"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <snapshot>",
		Short: "Show slot usage of a snapshot",
		Long: `The stats command reports capacity, slot count, live entries,
tombstones and load factor of a snapshot.

Example:
  strtab stats words.stb
  strtab stats words.stb --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

type snapshotStats struct {
	Path     string `json:"path"`
	FileSize int64  `json:"file_size"`
	strtab.Stats
}

func runStats(args []string) error {
	path := args[0]

	fileInfo, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	t, err := openSnapshot(path)
	if err != nil {
		return err
	}
	defer t.Destroy()

	stats := snapshotStats{Path: path, FileSize: fileInfo.Size(), Stats: t.Stats()}
	if jsonOut {
		return printJSON(stats)
	}

	printInfo("Snapshot:    %s (%d bytes)\n", stats.Path, stats.FileSize)
	printInfo("Capacity:    %d\n", stats.Capacity)
	printInfo("Slots:       %d\n", stats.Allocated)
	printInfo("Entries:     %d\n", stats.Count)
	printInfo("Tombstones:  %d\n", stats.Tombstones)
	printInfo("Free slots:  %d\n", stats.Free)
	printInfo("Load factor: %.2f\n", stats.LoadFactor)
	return nil
}
