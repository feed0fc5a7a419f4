package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/theflywheel/strtab"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "strtab",
	Short: "Build and inspect fixed-capacity string tables",
	Long: `strtab loads key/value lines into a fixed-capacity open-addressing
table, saves it as a snapshot file, and answers lookups against snapshots.
Snapshots keep every entry in its original slot.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// newLogger returns the logger handed to tables. Table events are debug
// level, so they only show with --verbose.
func newLogger() *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// hasherByName maps --hasher values to hashers.
func hasherByName(name string) (strtab.Hasher, error) {
	switch name {
	case "", "default", "djb2":
		return strtab.DefaultHasher{}, nil
	case "xx", "xxhash":
		return strtab.XXHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hasher %q (want default or xx)", name)
	}
}

// openSnapshot reads a snapshot written with any of the built-in hashers.
func openSnapshot(path string) (*strtab.Table[uint64], error) {
	printVerbose("Opening snapshot: %s\n", path)

	var lastErr error
	for _, h := range []strtab.Hasher{strtab.DefaultHasher{}, strtab.XXHasher{}} {
		t, err := strtab.ReadSnapshot(path, strtab.Uint64Codec{}, strtab.Options[uint64]{
			Hasher: h,
			Logger: newLogger(),
		})
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, strtab.ErrSnapshotHasher) {
			return nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to open snapshot: %w", lastErr)
}

// saveSnapshot writes t to path, keeping the hasher it was built with.
func saveSnapshot(path string, t *strtab.Table[uint64]) error {
	printVerbose("Writing snapshot: %s\n", path)
	if err := strtab.WriteSnapshot(path, t, strtab.Uint64Codec{}); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// entryJSON is the JSON shape of one table entry.
type entryJSON struct {
	Slot  int    `json:"slot"`
	Key   string `json:"key"`
	Value uint64 `json:"value"`
}
