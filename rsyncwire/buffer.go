// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package rsyncwire implements the byte-buffer and wire-codec primitives
// used by the rsync protocol: a growable, positionally-unpacked byte
// container plus rsync's catalog of integer and string encodings. The
// buffer owns no socket and performs no I/O of its own; callers Append
// inbound bytes and write out outbound ones (Bytes, then Clear) on
// whatever transport they like.
package rsyncwire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortRead is returned (wrapped) by every Unpack* method when the
// buffer does not yet hold enough bytes to satisfy the request. It is
// always recoverable: the read cursor is left unchanged, and the same
// call will succeed once more bytes have been Appended.
var ErrShortRead = errors.New("rsyncwire: short read")

// Buffer is a growable byte sequence with a read cursor. Writes always
// append at the end; unpacking reads forward from the cursor and advances
// it on success, leaving it untouched on failure.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append concatenates more bytes onto the buffer. It never moves the read
// cursor, so in-flight Unpack calls are unaffected.
func (b *Buffer) Append(p ...byte) {
	b.data = append(b.data, p...)
}

// Write implements io.Writer by Appending p, so callers may plug a Buffer
// directly into anything that copies bytes into an io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p...)
	return len(p), nil
}

// Len returns the total number of bytes held by the buffer, including
// already-consumed bytes before the read cursor.
func (b *Buffer) Len() int { return len(b.data) }

// Remaining returns the number of unread bytes (Len minus Pos).
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// Pos returns the current read cursor.
func (b *Buffer) Pos() int { return b.pos }

// SetPos repositions the read cursor. It panics if n is out of [0, Len()];
// callers only ever move it backwards for re-parsing, a programmer error
// otherwise.
func (b *Buffer) SetPos(n int) {
	if n < 0 || n > len(b.data) {
		panic(fmt.Sprintf("rsyncwire: SetPos(%d) out of range [0,%d]", n, len(b.data)))
	}
	b.pos = n
}

// Bytes returns the unread tail of the buffer. The caller must not
// retain it across further Append calls, which may reallocate.
func (b *Buffer) Bytes() []byte { return b.data[b.pos:] }

// Discard drops the already-consumed prefix [0, Pos) and resets Pos to 0.
// Call it after fully parsing a message so the buffer doesn't grow
// unboundedly across a long-lived connection.
func (b *Buffer) Discard() {
	b.data = append(b.data[:0], b.data[b.pos:]...)
	b.pos = 0
}

// Clear resets the buffer to empty.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.pos = 0
}

func (b *Buffer) need(n int) error {
	if b.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortRead, n, b.Remaining())
	}
	return nil
}

// PackU8 appends an unsigned 8-bit integer.
func (b *Buffer) PackU8(v uint8) { b.Append(v) }

// UnpackU8 consumes an unsigned 8-bit integer.
func (b *Buffer) UnpackU8() (uint8, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

// PackU16 appends an unsigned 16-bit little-endian integer.
func (b *Buffer) PackU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.Append(tmp[:]...)
}

// UnpackU16 consumes an unsigned 16-bit little-endian integer.
func (b *Buffer) UnpackU16() (uint16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(b.data[b.pos:])
	b.pos += 2
	return v, nil
}

// PackS32 appends a signed 32-bit little-endian integer.
func (b *Buffer) PackS32(v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	b.Append(tmp[:]...)
}

// UnpackS32 consumes a signed 32-bit little-endian integer.
func (b *Buffer) UnpackS32() (int32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(b.data[b.pos:]))
	b.pos += 4
	return v, nil
}

// PackS64 appends a signed 64-bit integer using rsync's escape-hatch
// encoding: values representable in 31 bits are written as a plain
// 32-bit little-endian integer; everything else is preceded by the
// literal sentinel 0xFFFFFFFF and followed by the full 64-bit value.
func (b *Buffer) PackS64(v int64) {
	if v >= 0 && v < (1<<31)-1 {
		b.PackS32(int32(v))
		return
	}
	b.Append(0xFF, 0xFF, 0xFF, 0xFF)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	b.Append(tmp[:]...)
}

// UnpackS64 consumes a value packed with PackS64.
func (b *Buffer) UnpackS64() (int64, error) {
	startPos := b.pos
	v32, err := b.UnpackS32()
	if err != nil {
		return 0, err
	}
	if uint32(v32) != 0xFFFFFFFF {
		return int64(v32), nil
	}
	if err := b.need(8); err != nil {
		b.pos = startPos
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(b.data[b.pos:]))
	b.pos += 8
	return v, nil
}

// PackLine appends s followed by a newline, adding the newline if the
// caller's string doesn't already end with one.
func (b *Buffer) PackLine(s string) {
	b.Append([]byte(s)...)
	if len(s) == 0 || s[len(s)-1] != '\n' {
		b.Append('\n')
	}
}

// UnpackLine consumes bytes up to and including the next newline,
// returning the line without its terminator. It fails (without
// consuming anything) if no newline is present yet.
func (b *Buffer) UnpackLine() (string, error) {
	rest := b.data[b.pos:]
	idx := -1
	for i, c := range rest {
		if c == '\n' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("%w: no newline in buffered input", ErrShortRead)
	}
	line := string(rest[:idx])
	b.pos += idx + 1
	return line, nil
}
