// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncwire

import (
	"errors"
	"testing"
)

func TestPackUnpackU8(t *testing.T) {
	for _, v := range []uint8{0, 1, 0x7F, 0x80, 0xFF} {
		b := NewBuffer()
		b.PackU8(v)
		got, err := b.UnpackU8()
		if err != nil {
			t.Fatalf("UnpackU8(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("UnpackU8: got %d, want %d", got, v)
		}
	}
}

func TestPackUnpackU16(t *testing.T) {
	for _, v := range []uint16{0, 1, 0xFF, 0x100, 0xFFFF} {
		b := NewBuffer()
		b.PackU16(v)
		got, err := b.UnpackU16()
		if err != nil || got != v {
			t.Errorf("UnpackU16(%d) = %d, %v", v, got, err)
		}
	}
}

func TestPackUnpackS32(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 1 << 30, -(1 << 30), 1<<31 - 1, -(1 << 31)} {
		b := NewBuffer()
		b.PackS32(v)
		got, err := b.UnpackS32()
		if err != nil || got != v {
			t.Errorf("UnpackS32(%d) = %d, %v", v, got, err)
		}
	}
}

func TestPackUnpackS64(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 40), 1<<63 - 1, -(1 << 63), (1 << 31) - 2} {
		b := NewBuffer()
		b.PackS64(v)
		got, err := b.UnpackS64()
		if err != nil || got != v {
			t.Errorf("UnpackS64(%d) = %d, %v", v, got, err)
		}
	}
}

func TestS64SmallUsesFourBytes(t *testing.T) {
	b := NewBuffer()
	b.PackS64(42)
	if b.Len() != 4 {
		t.Fatalf("expected small s64 to pack as 4 bytes, got %d", b.Len())
	}
}

func TestS64LargeUsesEscapeHatch(t *testing.T) {
	b := NewBuffer()
	b.PackS64(1 << 40)
	if b.Len() != 12 {
		t.Fatalf("expected large s64 to pack as 12 bytes (4 sentinel + 8 value), got %d", b.Len())
	}
}

func TestPackUnpackV32(t *testing.T) {
	values := []int32{0, 1, 126, 127, 128, 16383, 16384, 2097151, 2097152,
		268435455, 268435456, 1<<31 - 1, -1, -2, -1000}
	for _, v := range values {
		b := NewBuffer()
		b.PackV32(v)
		got, err := b.UnpackV32()
		if err != nil {
			t.Fatalf("UnpackV32(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("UnpackV32(%d) = %d", v, got)
		}
	}
}

func TestV32LengthGrowsWithMagnitude(t *testing.T) {
	cases := []struct {
		v    int32
		want int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{16384, 3},
		{2097152, 4},
		{268435456, 5},
		{-1, 5},
	}
	for _, c := range cases {
		b := NewBuffer()
		b.PackV32(c.v)
		if b.Len() != c.want {
			t.Errorf("PackV32(%d): got %d bytes, want %d", c.v, b.Len(), c.want)
		}
	}
}

func TestPackUnpackV64(t *testing.T) {
	for _, minBytes := range []int{3, 4, 5} {
		values := []int64{0, 1, 1000, 1 << 20, 1 << 32, 1 << 40, 1<<63 - 1}
		for _, v := range values {
			b := NewBuffer()
			if err := b.PackV64(v, minBytes); err != nil {
				t.Fatalf("PackV64(%d, %d): %v", v, minBytes, err)
			}
			got, err := b.UnpackV64(minBytes)
			if err != nil {
				t.Fatalf("UnpackV64(%d, %d): %v", v, minBytes, err)
			}
			if got != v {
				t.Errorf("v64 round trip minBytes=%d: got %d, want %d", minBytes, got, v)
			}
		}
	}
}

func TestV64TooSmallMinBytesFails(t *testing.T) {
	b := NewBuffer()
	err := b.PackV64(1<<62, 2)
	if err == nil {
		t.Fatal("expected error encoding a full 64-bit value with min_bytes=2")
	}
}

func TestPackUnpackVString(t *testing.T) {
	short := "hello"
	long := make([]byte, 200)
	for i := range long {
		long[i] = byte('a' + i%26)
	}

	for _, s := range []string{"", short, string(long)} {
		b := NewBuffer()
		if err := b.PackVString(s); err != nil {
			t.Fatalf("PackVString(len=%d): %v", len(s), err)
		}
		got, err := b.UnpackVString()
		if err != nil || got != s {
			t.Errorf("vstring round trip failed for len=%d: got len %d, err %v", len(s), len(got), err)
		}
	}
}

func TestVStringTooLongFails(t *testing.T) {
	b := NewBuffer()
	long := make([]byte, 0x8000)
	if err := b.PackVString(string(long)); err == nil {
		t.Fatal("expected error for oversized vstring")
	}
}

func TestPackUnpackLine(t *testing.T) {
	b := NewBuffer()
	b.PackLine("@RSYNCD: 30.0")
	got, err := b.UnpackLine()
	if err != nil || got != "@RSYNCD: 30.0" {
		t.Errorf("UnpackLine() = %q, %v", got, err)
	}
}

func TestUnpackLineNeedsMoreData(t *testing.T) {
	b := NewBuffer()
	b.Append([]byte("partial")...)
	if _, err := b.UnpackLine(); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
	if b.Pos() != 0 {
		t.Fatalf("UnpackLine must not move the cursor on failure, pos=%d", b.Pos())
	}
}

func TestResumability(t *testing.T) {
	b := NewBuffer()
	full := NewBuffer()
	full.PackU8(1)
	full.PackU16(0x1234)
	full.PackS32(-99)
	full.PackV32(123456)
	want := append([]byte(nil), full.Bytes()...)

	// append the stream one byte at a time, then unpack every field from
	// the incrementally built buffer
	for _, c := range want {
		b.Append(c)
	}

	u8, err := b.UnpackU8()
	if err != nil || u8 != 1 {
		t.Fatalf("u8: %v %v", u8, err)
	}
	u16, err := b.UnpackU16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("u16: %v %v", u16, err)
	}
	s32, err := b.UnpackS32()
	if err != nil || s32 != -99 {
		t.Fatalf("s32: %v %v", s32, err)
	}
	v32, err := b.UnpackV32()
	if err != nil || v32 != 123456 {
		t.Fatalf("v32: %v %v", v32, err)
	}
}

func TestDiscardResetsCursor(t *testing.T) {
	b := NewBuffer()
	b.Append([]byte("hello world")...)
	line, err := b.UnpackLine()
	_ = line
	if err == nil {
		t.Fatal("expected short read, no newline present")
	}

	b.Append('\n')
	line, err = b.UnpackLine()
	if err != nil || line != "hello world" {
		t.Fatalf("UnpackLine() = %q, %v", line, err)
	}
	b.Discard()
	if b.Pos() != 0 || b.Len() != 0 {
		t.Fatalf("Discard did not reset buffer: pos=%d len=%d", b.Pos(), b.Len())
	}
}

func TestPackUnpackMsg(t *testing.T) {
	b := NewBuffer()
	payload := []byte("hello, error channel")
	if err := b.PackMsg(MsgError, payload); err != nil {
		t.Fatal(err)
	}
	code, got, err := b.UnpackMsg()
	if err != nil {
		t.Fatal(err)
	}
	if code != MsgError {
		t.Errorf("code = %d, want %d", code, MsgError)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestUnpackMsgNeedsMoreData(t *testing.T) {
	b := NewBuffer()
	if err := b.PackMsg(MsgData, []byte("0123456789")); err != nil {
		t.Fatal(err)
	}
	full := append([]byte(nil), b.Bytes()...)

	partial := NewBuffer()
	partial.Append(full[:6]...)
	if _, _, err := partial.UnpackMsg(); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead on partial frame, got %v", err)
	}
	if partial.Pos() != 0 {
		t.Fatalf("UnpackMsg must not consume on short read, pos=%d", partial.Pos())
	}

	partial.Append(full[6:]...)
	code, payload, err := partial.UnpackMsg()
	if err != nil || code != MsgData || string(payload) != "0123456789" {
		t.Fatalf("UnpackMsg after completing frame: %v %q %v", code, payload, err)
	}
}
