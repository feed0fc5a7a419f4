package strtab

import "encoding/binary"

// ValueCodec converts values to and from a fixed number of bytes for
// snapshots.
type ValueCodec[V any] interface {
	// Size is the encoded width of every value.
	Size() int
	// Encode writes v into dst, which is exactly Size() bytes long.
	Encode(dst []byte, v V)
	// Decode reads a value from src, which is exactly Size() bytes long.
	// src may be memory-mapped and must not be retained.
	Decode(src []byte) V
}

// Uint64Codec stores uint64 values as 8 big-endian bytes.
type Uint64Codec struct{}

func (Uint64Codec) Size() int                   { return 8 }
func (Uint64Codec) Encode(dst []byte, v uint64) { binary.BigEndian.PutUint64(dst, v) }
func (Uint64Codec) Decode(src []byte) uint64    { return binary.BigEndian.Uint64(src) }

// Int64Codec stores int64 values as 8 big-endian bytes.
type Int64Codec struct{}

func (Int64Codec) Size() int                  { return 8 }
func (Int64Codec) Encode(dst []byte, v int64) { binary.BigEndian.PutUint64(dst, uint64(v)) }
func (Int64Codec) Decode(src []byte) int64    { return int64(binary.BigEndian.Uint64(src)) }
