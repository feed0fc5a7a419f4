package strtab

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/theflywheel/strtab/internal/mmfile"
)

const (
	snapshotMagic   uint32 = 0x5354424C // "STBL"
	snapshotVersion uint32 = 1
	headerSize             = 8 * 4 // 8 uint32 fields
)

// WriteSnapshot saves t to path, preserving the slot position of every entry
// and tombstone so positional access behaves identically after ReadSnapshot.
// The file is written to a temporary sibling and renamed into place.
func WriteSnapshot[V any](path string, t *Table[V], codec ValueCodec[V]) error {
	if t.destroyed {
		return ErrDestroyed
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	if err := writeSlots(f, t, codec); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	t.log.Debug("strtab: snapshot written", "path", path, "count", t.count, "allocated", len(t.slots))
	return nil
}

func writeSlots[V any](f *os.File, t *Table[V], codec ValueCodec[V]) error {
	w := bufio.NewWriter(f)

	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header[0:4], snapshotMagic)
	binary.BigEndian.PutUint32(header[4:8], snapshotVersion)
	binary.BigEndian.PutUint32(header[8:12], uint32(t.capacity))
	binary.BigEndian.PutUint32(header[12:16], uint32(len(t.slots)))
	binary.BigEndian.PutUint32(header[16:20], uint32(t.count))
	binary.BigEndian.PutUint32(header[20:24], uint32(t.tombstones))
	binary.BigEndian.PutUint32(header[24:28], uint32(codec.Size()))
	binary.BigEndian.PutUint32(header[28:32], fingerprint(t.hasher))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var lenBuf [4]byte
	val := make([]byte, codec.Size())
	for i := range t.slots {
		s := &t.slots[i]
		if err := w.WriteByte(byte(s.state)); err != nil {
			return fmt.Errorf("failed to write slot %d: %w", i, err)
		}
		if s.state != slotOccupied {
			continue
		}

		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s.key)))
		codec.Encode(val, s.value)
		if _, err := w.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("failed to write slot %d: %w", i, err)
		}
		if _, err := w.WriteString(s.key); err != nil {
			return fmt.Errorf("failed to write slot %d: %w", i, err)
		}
		if _, err := w.Write(val); err != nil {
			return fmt.Errorf("failed to write slot %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// SnapshotHeader describes a snapshot file.
type SnapshotHeader struct {
	Capacity    int    `json:"capacity"`
	Allocated   int    `json:"allocated"`
	Count       int    `json:"count"`
	Tombstones  int    `json:"tombstones"`
	ValueSize   int    `json:"value_size"`
	Fingerprint uint32 `json:"fingerprint"`
}

func parseHeader(data []byte) (SnapshotHeader, error) {
	if len(data) < headerSize {
		return SnapshotHeader{}, fmt.Errorf("file is %d bytes, shorter than header: %w", len(data), ErrBadSnapshot)
	}
	if magic := binary.BigEndian.Uint32(data[0:4]); magic != snapshotMagic {
		return SnapshotHeader{}, fmt.Errorf("invalid magic number %#x: %w", magic, ErrBadSnapshot)
	}
	if v := binary.BigEndian.Uint32(data[4:8]); v != snapshotVersion {
		return SnapshotHeader{}, fmt.Errorf("unsupported version %d: %w", v, ErrBadSnapshot)
	}

	h := SnapshotHeader{
		Capacity:    int(binary.BigEndian.Uint32(data[8:12])),
		Allocated:   int(binary.BigEndian.Uint32(data[12:16])),
		Count:       int(binary.BigEndian.Uint32(data[16:20])),
		Tombstones:  int(binary.BigEndian.Uint32(data[20:24])),
		ValueSize:   int(binary.BigEndian.Uint32(data[24:28])),
		Fingerprint: binary.BigEndian.Uint32(data[28:32]),
	}
	if h.Capacity <= 0 || h.Allocated <= h.Capacity || h.Count > h.Capacity ||
		h.Count+h.Tombstones > h.Allocated {
		return SnapshotHeader{}, fmt.Errorf("inconsistent header %+v: %w", h, ErrBadSnapshot)
	}
	return h, nil
}

// ReadSnapshotHeader returns the header of the snapshot at path without
// decoding its slots.
func ReadSnapshotHeader(path string) (SnapshotHeader, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return SnapshotHeader{}, fmt.Errorf("failed to map snapshot: %w", err)
	}
	defer cleanup()
	return parseHeader(data)
}

// ReadSnapshot rebuilds a table from the snapshot at path. opts must name a
// hasher that places keys exactly as the writer's did; Headroom is ignored
// because the slot count comes from the file.
func ReadSnapshot[V any](path string, codec ValueCodec[V], opts Options[V]) (t *Table[V], err error) {
	opts = opts.withDefaults()

	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("failed to map snapshot: %w", err)
	}
	defer func() {
		if cerr := cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to unmap snapshot: %w", cerr)
		}
	}()

	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.ValueSize != codec.Size() {
		return nil, fmt.Errorf("value size %d, codec expects %d: %w", h.ValueSize, codec.Size(), ErrBadSnapshot)
	}
	if fp := fingerprint(opts.Hasher); fp != h.Fingerprint {
		return nil, fmt.Errorf("snapshot fingerprint %#x, hasher gives %#x: %w", h.Fingerprint, fp, ErrSnapshotHasher)
	}

	// Every slot record has a state byte and every occupied one a key length
	// and a value, so the file bounds the slot array before it is allocated.
	minBody := uint64(h.Allocated) + uint64(h.Count)*uint64(4+h.ValueSize)
	if body := uint64(len(data) - headerSize); minBody > body {
		return nil, fmt.Errorf("header needs at least %d bytes of slots, file has %d: %w",
			minBody, body, ErrBadSnapshot)
	}

	t = newTable(h.Capacity, h.Allocated, opts)
	if err := t.decodeSlots(data[headerSize:], codec); err != nil {
		return nil, err
	}
	if t.count != h.Count || t.tombstones != h.Tombstones {
		return nil, fmt.Errorf("header counts %d/%d, slots hold %d/%d: %w",
			h.Count, h.Tombstones, t.count, t.tombstones, ErrBadSnapshot)
	}
	if err := t.checkPlacement(); err != nil {
		return nil, err
	}

	opts.Logger.Debug("strtab: snapshot loaded", "path", path, "count", t.count, "allocated", h.Allocated)
	return t, nil
}

var errShortSlot = errors.New("slot record runs past end of file")

func (t *Table[V]) decodeSlots(data []byte, codec ValueCodec[V]) error {
	size := codec.Size()
	off := 0
	for i := range t.slots {
		if off >= len(data) {
			return fmt.Errorf("slot %d: %w: %w", i, errShortSlot, ErrBadSnapshot)
		}
		state := slotState(data[off])
		off++

		switch state {
		case slotEmpty:
			continue
		case slotTombstone:
			t.slots[i].state = slotTombstone
			t.tombstones++
			continue
		case slotOccupied:
		default:
			return fmt.Errorf("slot %d has unknown state %d: %w", i, state, ErrBadSnapshot)
		}

		if off+4 > len(data) {
			return fmt.Errorf("slot %d: %w: %w", i, errShortSlot, ErrBadSnapshot)
		}
		keyLen := int(binary.BigEndian.Uint32(data[off : off+4]))
		off += 4
		if keyLen < 0 || off+keyLen+size > len(data) {
			return fmt.Errorf("slot %d: %w: %w", i, errShortSlot, ErrBadSnapshot)
		}

		// Copy out of the mapping; it is unmapped before ReadSnapshot returns.
		s := &t.slots[i]
		s.state = slotOccupied
		s.key = string(data[off : off+keyLen])
		off += keyLen
		s.value = codec.Decode(data[off : off+size])
		off += size
		t.count++
	}
	if off != len(data) {
		return fmt.Errorf("%d trailing bytes after slots: %w", len(data)-off, ErrBadSnapshot)
	}
	return nil
}

// checkPlacement verifies that every stored key is found in its own slot by a
// normal lookup. This rejects duplicate keys and keys a writer placed off
// their probe sequence.
func (t *Table[V]) checkPlacement() error {
	for i := range t.slots {
		s := &t.slots[i]
		if s.state != slotOccupied {
			continue
		}
		if at := t.lookup(s.key); at != i {
			return fmt.Errorf("key %q in slot %d resolves to slot %d: %w", s.key, i, at, ErrBadSnapshot)
		}
	}
	return nil
}
