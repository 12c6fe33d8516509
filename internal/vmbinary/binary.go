// Package vmbinary provides the fixed-width big-endian read/write
// primitives used by the front-end to persist a compiled program and
// reload it. The on-disk format is intentionally position-dependent
// and not self-describing.
package vmbinary

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// ErrReading is returned when a read would advance the cursor past the
// end of the buffer.
var ErrReading = errors.New("vmbinary: reading error, cursor past end of buffer")

const stringXOR = 0b01011010

// WriteUint16 appends a big-endian uint16.
func WriteUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

// WriteUint32 appends a big-endian uint32.
func WriteUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// WriteUint64 appends a big-endian uint64.
func WriteUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

// WriteByte appends a single byte.
func WriteByte(buf *bytes.Buffer, v byte) {
	buf.WriteByte(v)
}

// WriteBool appends a single byte, 0xFF for true and 0x00 for false.
func WriteBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(0xFF)
	} else {
		buf.WriteByte(0x00)
	}
}

// WriteString appends s XOR-obfuscated byte by byte and zero
// terminated (the terminator is itself XOR'd).
func WriteString(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		buf.WriteByte(s[i] ^ stringXOR)
	}
	buf.WriteByte(0x00 ^ stringXOR)
}

// Reader walks a byte buffer with a cursor, mirroring the source's
// Serialiser::read family.
type Reader struct {
	buf   []byte
	index int
}

// NewReader wraps buf for sequential reads starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) Byte() (byte, error) {
	if r.index >= len(r.buf) {
		return 0, ErrReading
	}
	b := r.buf[r.index]
	r.index++
	return b, nil
}

func (r *Reader) Bool() (bool, error) {
	b, err := r.Byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (r *Reader) Uint16() (uint16, error) {
	if r.index+2 > len(r.buf) {
		return 0, ErrReading
	}
	v := binary.BigEndian.Uint16(r.buf[r.index:])
	r.index += 2
	return v, nil
}

func (r *Reader) Uint32() (uint32, error) {
	if r.index+4 > len(r.buf) {
		return 0, ErrReading
	}
	v := binary.BigEndian.Uint32(r.buf[r.index:])
	r.index += 4
	return v, nil
}

func (r *Reader) Uint64() (uint64, error) {
	if r.index+8 > len(r.buf) {
		return 0, ErrReading
	}
	v := binary.BigEndian.Uint64(r.buf[r.index:])
	r.index += 8
	return v, nil
}

// String reads bytes until a XOR'd null terminator or end of buffer,
// de-obfuscating each byte.
func (r *Reader) String() (string, error) {
	var out []byte
	for r.index < len(r.buf) {
		c := r.buf[r.index] ^ stringXOR
		r.index++
		if c == 0x00 {
			return string(out), nil
		}
		out = append(out, c)
	}
	return string(out), nil
}
