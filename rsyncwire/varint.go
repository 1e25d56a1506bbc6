// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncwire

import (
	"encoding/binary"
	"fmt"
)

// v32LeadingOnesBoundary[k] is the smallest header byte value whose top
// bits are k consecutive ones (a UTF-8-style prefix length marker): a
// byte b belongs to bucket k when boundary[k] <= b < boundary[k+1].
var v32LeadingOnesBoundary = [6]int{0x00, 0x80, 0xC0, 0xE0, 0xF0, 0x100}

// PackV32 appends v using rsync's variable-length 32-bit encoding: at
// most 5 bytes, where the header byte's leading run of one-bits counts
// the number of following little-endian payload bytes and the remaining
// low bits of the header hold the top bits of the value.
func (b *Buffer) PackV32(v int32) {
	u := uint32(v)

	for k := 0; k <= 3; k++ {
		dataBits := 7 - k
		if u < uint32(1)<<uint(7*(k+1)) {
			high := u >> uint(8*k)
			prefix := byte(v32LeadingOnesBoundary[k+1] - (1 << uint(dataBits)))
			b.Append(prefix | byte(high))
			var extra [4]byte
			binary.LittleEndian.PutUint32(extra[:], u)
			b.Append(extra[:k]...)
			return
		}
	}

	// 5-byte form: the 4 low bits of the header are a documented quirk
	// of the reference implementation and are always ignored on decode,
	// so the 4 payload bytes alone carry the full 32-bit value.
	b.Append(0xF0)
	var extra [4]byte
	binary.LittleEndian.PutUint32(extra[:], u)
	b.Append(extra[:]...)
}

// UnpackV32 consumes a value packed with PackV32.
func (b *Buffer) UnpackV32() (int32, error) {
	startPos := b.pos
	h, err := b.UnpackU8()
	if err != nil {
		return 0, err
	}

	k := 0
	for k = 0; k <= 4; k++ {
		if int(h) < v32LeadingOnesBoundary[k+1] {
			break
		}
	}

	if err := b.need(k); err != nil {
		b.pos = startPos
		return 0, err
	}

	var extra [4]byte
	copy(extra[:], b.data[b.pos:b.pos+k])
	b.pos += k

	low := binary.LittleEndian.Uint32(extra[:])

	var headerData uint32
	if k < 4 {
		dataBits := uint(7 - k)
		headerData = uint32(h) & ((1 << dataBits) - 1)
	}
	// k == 4: header's data bits are the documented quirk, always ignored.

	v := headerData<<uint(8*k) | low
	return int32(v), nil
}

// v64LeadingOnesBoundary is the v32LeadingOnesBoundary scheme extended
// out to 7 buckets (k in 0..6), used by PackV64/UnpackV64 for the bytes of
// header-scheme extension beyond MinBytes. PackV64 writes at most 5 of
// them (minBytes+6 bytes with the header); UnpackV64 also accepts k = 6.
var v64LeadingOnesBoundary = [8]int{0x00, 0x80, 0xC0, 0xE0, 0xF0, 0xF8, 0xFC, 0xFE}

// PackV64 appends v using rsync's variable-length 64-bit encoding, which
// always writes at least minBytes bytes of payload. minBytes must be at
// least 3 to represent the full 64-bit domain; encoding a value that
// does not fit in minBytes+6 bytes with a too-small minBytes is an error.
func (b *Buffer) PackV64(v int64, minBytes int) error {
	u := uint64(v)

	natLen := 1
	for n := u; n>>8 != 0; n >>= 8 {
		natLen++
	}

	if natLen <= minBytes {
		b.Append(0x00)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], u)
		b.Append(tmp[:minBytes]...)
		return nil
	}

	for k := 0; k <= 5; k++ {
		extraLen := minBytes + k
		if extraLen > 8 {
			break
		}
		dataBits := 7 - k
		capacity := uint(8*extraLen + dataBits)
		if capacity >= 64 || u < uint64(1)<<uint(min(capacity, 63)) {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], u)

			high := u >> uint(8*extraLen)
			prefix := byte(v64LeadingOnesBoundary[k+1] - (1 << uint(dataBits)))
			b.Append(prefix | byte(high))
			b.Append(tmp[:extraLen]...)
			return nil
		}
	}

	return fmt.Errorf("rsyncwire: value %d does not fit in min_bytes=%d (+6 extension bytes)", v, minBytes)
}

func min(a, b uint) uint {
	if a < b {
		return a
	}
	return b
}

// UnpackV64 consumes a value packed with PackV64 for the given minBytes.
func (b *Buffer) UnpackV64(minBytes int) (int64, error) {
	startPos := b.pos
	h, err := b.UnpackU8()
	if err != nil {
		return 0, err
	}

	if h == 0x00 {
		if err := b.need(minBytes); err != nil {
			b.pos = startPos
			return 0, err
		}
		var tmp [8]byte
		copy(tmp[:], b.data[b.pos:b.pos+minBytes])
		b.pos += minBytes
		return int64(binary.LittleEndian.Uint64(tmp[:])), nil
	}

	k := 0
	for k = 0; k <= 6; k++ {
		if int(h) < v64LeadingOnesBoundary[k+1] {
			break
		}
	}

	extraLen := minBytes + k
	if err := b.need(extraLen); err != nil {
		b.pos = startPos
		return 0, err
	}

	var tmp [8]byte
	copy(tmp[:], b.data[b.pos:b.pos+extraLen])
	b.pos += extraLen

	low := binary.LittleEndian.Uint64(tmp[:])

	dataBits := uint(7 - k)
	headerData := uint64(h) & ((1 << dataBits) - 1)

	shift := uint(8 * extraLen)
	var v uint64
	if shift >= 64 {
		v = low
	} else {
		v = headerData<<shift | low
	}
	return int64(v), nil
}

// PackVString appends s as a length-prefixed string: a 1-byte length for
// strings shorter than 128 bytes, otherwise a 2-byte big-endian length
// with the top bit set. Strings of 0x8000 bytes or longer are rejected.
func (b *Buffer) PackVString(s string) error {
	n := len(s)
	switch {
	case n < 128:
		b.Append(byte(n))
	case n < 0x8000:
		b.Append(byte(n>>8)|0x80, byte(n))
	default:
		return fmt.Errorf("rsyncwire: string of length %d too long for vstring", n)
	}
	b.Append([]byte(s)...)
	return nil
}

// UnpackVString consumes a value packed with PackVString.
func (b *Buffer) UnpackVString() (string, error) {
	startPos := b.pos
	h, err := b.UnpackU8()
	if err != nil {
		return "", err
	}

	var n int
	if h&0x80 != 0 {
		lo, err := b.UnpackU8()
		if err != nil {
			b.pos = startPos
			return "", err
		}
		n = int(h&0x7F)<<8 | int(lo)
	} else {
		n = int(h)
	}

	if err := b.need(n); err != nil {
		b.pos = startPos
		return "", err
	}
	s := string(b.data[b.pos : b.pos+n])
	b.pos += n
	return s, nil
}
