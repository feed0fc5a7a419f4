package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theflywheel/strtab"
)

// loadSnapshot loads lines into a snapshot next to the input and returns its path.
func loadSnapshot(t *testing.T, lines ...string) string {
	t.Helper()
	input := writeInput(t, lines...)
	loadOut = filepath.Join(filepath.Dir(input), "table.stb")
	_, err := captureOutput(t, func() error { return runLoad([]string{input}) })
	require.NoError(t, err)
	out := loadOut
	loadOut = ""
	return out
}

func TestLoadAndGet(t *testing.T) {
	resetFlags(t)
	snap := loadSnapshot(t,
		"# fruit prices",
		"apple=3",
		"banana\t7",
		"",
		"cherry",
		"apple=4",
	)

	out, err := captureOutput(t, func() error { return runGet([]string{snap, "apple"}) })
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	// Bare keys take their line number.
	out, err = captureOutput(t, func() error { return runGet([]string{snap, "cherry"}) })
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	_, err = captureOutput(t, func() error { return runGet([]string{snap, "durian"}) })
	require.ErrorIs(t, err, strtab.ErrNotFound)
}

func TestLoad_JSONStats(t *testing.T) {
	resetFlags(t)
	input := writeInput(t, "a=1", "b=2", "c=3", "d=4")
	loadCapacity = 2
	jsonOut = true

	out, err := captureOutput(t, func() error { return runLoad([]string{input}) })
	require.NoError(t, err)

	var got struct {
		Count     int `json:"count"`
		Capacity  int `json:"capacity"`
		Allocated int `json:"allocated"`
		Lines     int `json:"lines"`
		Rejected  int `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 2, got.Capacity)
	assert.Equal(t, 3, got.Allocated)
	assert.Equal(t, 4, got.Lines)
	assert.Equal(t, 2, got.Rejected)
}

func TestLoad_InvalidValue(t *testing.T) {
	resetFlags(t)
	input := writeInput(t, "a=1", "b=not-a-number")

	_, err := captureOutput(t, func() error { return runLoad([]string{input}) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoad_Latin1(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "latin1.txt")
	require.NoError(t, os.WriteFile(input, []byte("caf\xe9=12\nna\xefve=13\n"), 0o644))

	loadEncoding = "latin1"
	loadOut = filepath.Join(dir, "latin1.stb")
	_, err := captureOutput(t, func() error { return runLoad([]string{input}) })
	require.NoError(t, err)
	snap := loadOut
	loadOut = ""

	out, err := captureOutput(t, func() error { return runGet([]string{snap, "café"}) })
	require.NoError(t, err)
	assert.Equal(t, "12\n", out)

	out, err = captureOutput(t, func() error { return runGet([]string{snap, "naïve"}) })
	require.NoError(t, err)
	assert.Equal(t, "13\n", out)
}

func TestLoad_UnknownEncodingAndHasher(t *testing.T) {
	resetFlags(t)
	input := writeInput(t, "a=1")

	loadEncoding = "ebcdic"
	_, err := captureOutput(t, func() error { return runLoad([]string{input}) })
	require.Error(t, err)

	loadEncoding = "utf8"
	loadHasher = "md5"
	_, err = captureOutput(t, func() error { return runLoad([]string{input}) })
	require.Error(t, err)
}

func TestXXHasherSnapshot(t *testing.T) {
	resetFlags(t)
	loadHasher = "xx"
	snap := loadSnapshot(t, "one=1", "two=2")

	out, err := captureOutput(t, func() error { return runGet([]string{snap, "two"}) })
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestDumpAndAt(t *testing.T) {
	resetFlags(t)
	snap := loadSnapshot(t, "x=10", "y=20", "z=30")

	jsonOut = true
	out, err := captureOutput(t, func() error { return runDump([]string{snap}) })
	require.NoError(t, err)

	var entries []entryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Slot, entries[i].Slot, "dump must follow slot order")
	}

	jsonOut = false
	for _, e := range entries {
		out, err := captureOutput(t, func() error {
			return runAt([]string{snap, strconv.Itoa(e.Slot)})
		})
		require.NoError(t, err)
		assert.Equal(t, e.Key+"\t"+strconv.FormatUint(e.Value, 10)+"\n", out)
	}

	_, err = captureOutput(t, func() error { return runAt([]string{snap, "9999"}) })
	require.ErrorIs(t, err, strtab.ErrNoItem)
}

func TestDeleteAndStats(t *testing.T) {
	resetFlags(t)
	snap := loadSnapshot(t, "a=1", "b=2", "c=3", "d=4")

	out, err := captureOutput(t, func() error { return runDelete([]string{snap, "a", "c"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 key(s), 2 remaining")

	_, err = captureOutput(t, func() error { return runDelete([]string{snap, "zzz"}) })
	require.ErrorIs(t, err, strtab.ErrNotFound)

	deleteMissingOK = true
	out, err = captureOutput(t, func() error { return runDelete([]string{snap, "zzz", "b"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 key(s), 1 remaining")

	jsonOut = true
	out, err = captureOutput(t, func() error { return runStats([]string{snap}) })
	require.NoError(t, err)

	var st snapshotStats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, 3, st.Tombstones)
	assert.Equal(t, 4, st.Capacity)
	assert.Equal(t, 5, st.Allocated)
	assert.Positive(t, st.FileSize)
}

func TestQuietSuppressesOutput(t *testing.T) {
	resetFlags(t)
	snap := loadSnapshot(t, "a=1")

	quiet = true
	out, err := captureOutput(t, func() error { return runStats([]string{snap}) })
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDemo(t *testing.T) {
	resetFlags(t)
	demoKeys = 200

	out, err := captureOutput(t, runDemo)
	require.NoError(t, err)
	for _, want := range []string{
		"size=6 count=0 empty=true",
		"get key1 = 15",
		"count=200",
		"find key_199 = 199",
		"deleted key_1..key_34, count=166",
		"refilled 34 keys before the table was full, count=200",
		"get_item key_67823: strtab: key not found",
		"item_at 67823: strtab: no item at position",
	} {
		assert.Contains(t, out, want)
	}

	demoKeys = 10
	_, err = captureOutput(t, runDemo)
	require.Error(t, err)
}

func TestRootCommand_FindAlias(t *testing.T) {
	resetFlags(t)
	snap := loadSnapshot(t, "apple=3")

	rootCmd.SetArgs([]string{"find", snap, "apple", "--json"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	out, err := captureOutput(t, rootCmd.Execute)
	require.NoError(t, err)

	var e entryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, "apple", e.Key)
	assert.Equal(t, uint64(3), e.Value)
}

func TestLoad_ZeroHeadroom(t *testing.T) {
	resetFlags(t)
	input := writeInput(t, "a=1", "b=2", "c=3", "d=4")
	loadCapacity = 10
	loadHeadroom = 0
	jsonOut = true

	out, err := captureOutput(t, func() error { return runLoad([]string{input}) })
	require.NoError(t, err)

	var got strtab.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 10, got.Capacity)
	assert.Equal(t, 11, got.Allocated, "default headroom would give 13")
	assert.Equal(t, 4, got.Count)
}
