package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/theflywheel/strtab"
)

var (
	loadCapacity int
	loadHeadroom float64
	loadEncoding string
	loadHasher   string
	loadOut      string
)

func init() {
	cmd := newLoadCmd()
	cmd.Flags().IntVar(&loadCapacity, "capacity", 0, "Table capacity (default: number of input lines)")
	cmd.Flags().Float64Var(&loadHeadroom, "headroom", strtab.DefaultHeadroom, "Extra slot fraction above capacity (0 allocates capacity+1 slots)")
	cmd.Flags().StringVar(&loadEncoding, "encoding", "utf8", "Input encoding: utf8, latin1, windows1252")
	cmd.Flags().StringVar(&loadHasher, "hasher", "default", "Probe hasher: default or xx")
	cmd.Flags().StringVarP(&loadOut, "out", "o", "", "Write the table to this snapshot file")
	rootCmd.AddCommand(cmd)
}

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load key/value lines into a table",
		Long: `The load command reads one entry per line and inserts it into a new table.

Lines are "key=value" or "key<TAB>value" with an unsigned integer value, or a
bare key, which is stored with its line number. Blank lines and lines
starting with # are skipped. Later lines update earlier ones with the same key.

Example:
  strtab load words.txt --out words.stb
  strtab load legacy.txt --encoding latin1 --capacity 50000 -o legacy.stb
  strtab load words.txt --hasher xx --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(args)
		},
	}
	return cmd
}

type loadLine struct {
	num   int
	key   string
	value uint64
}

func runLoad(args []string) error {
	inputPath := args[0]

	hasher, err := hasherByName(loadHasher)
	if err != nil {
		return err
	}

	printVerbose("Reading input: %s (%s)\n", inputPath, loadEncoding)
	lines, err := readLines(inputPath, loadEncoding)
	if err != nil {
		return err
	}

	capacity := loadCapacity
	if capacity <= 0 {
		capacity = max(len(lines), 1)
	}

	// The flag defaults to DefaultHeadroom, so a zero here was asked for.
	headroom := loadHeadroom
	if headroom == 0 {
		headroom = strtab.MinHeadroom
	}

	t, err := strtab.NewWithOptions(capacity, strtab.Options[uint64]{
		Headroom: headroom,
		Hasher:   hasher,
		Logger:   newLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	defer t.Destroy()

	rejected := 0
	for _, l := range lines {
		if _, err := t.Insert(l.key, l.value); err != nil {
			if errors.Is(err, strtab.ErrTableFull) {
				rejected++
				printVerbose("line %d: table full, skipped %q\n", l.num, l.key)
				continue
			}
			return fmt.Errorf("line %d: %w", l.num, err)
		}
	}

	if loadOut != "" {
		if err := saveSnapshot(loadOut, t); err != nil {
			return err
		}
	}

	stats := t.Stats()
	if jsonOut {
		return printJSON(struct {
			strtab.Stats
			Lines    int `json:"lines"`
			Rejected int `json:"rejected"`
		}{stats, len(lines), rejected})
	}

	printInfo("Loaded %d lines: %d keys in %d/%d slots", len(lines), stats.Count, stats.Count, stats.Allocated)
	if rejected > 0 {
		printInfo(", %d rejected (table full)", rejected)
	}
	printInfo("\n")
	if loadOut != "" {
		printInfo("Snapshot written to %s\n", loadOut)
	}
	return nil
}

// readLines decodes path from the named encoding and parses its entries.
func readLines(path, encoding string) ([]loadLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	r, err := decodingReader(f, encoding)
	if err != nil {
		return nil, err
	}

	var lines []loadLine
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	num := 0
	for sc.Scan() {
		num++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l, err := parseLine(num, line)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

func decodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows1252", "cp1252", "windows-1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func parseLine(num int, line string) (loadLine, error) {
	sep := strings.IndexAny(line, "=\t")
	if sep < 0 {
		return loadLine{num: num, key: line, value: uint64(num)}, nil
	}

	key := line[:sep]
	raw := strings.TrimSpace(line[sep+1:])
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return loadLine{}, fmt.Errorf("line %d: invalid value %q: %w", num, raw, err)
	}
	return loadLine{num: num, key: key, value: value}, nil
}
