// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncwire

import (
	"encoding/binary"
	"fmt"
)

// MsgCode identifies the channel of a multiplexed out-of-band frame (the
// rest of the protocol calls this a "tag"; code 0 carries ordinary data).
type MsgCode uint8

const (
	MsgData  MsgCode = 0
	MsgError MsgCode = 1
)

// PackMsg appends a multiplex frame: a 32-bit little-endian header
// encoding (7+code)<<24 | len(payload), followed by the payload bytes.
// This is the framing rsync switches to immediately after a daemon
// handshake completes, interleaving bulk data with out-of-band messages
// on a single stream.
func (b *Buffer) PackMsg(code MsgCode, payload []byte) error {
	if len(payload) > 0xFFFFFF {
		return fmt.Errorf("rsyncwire: multiplex payload of %d bytes exceeds 24-bit length field", len(payload))
	}
	header := uint32(7+code)<<24 | uint32(len(payload))
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], header)
	b.Append(tmp[:]...)
	b.Append(payload...)
	return nil
}

// UnpackMsg consumes a multiplex frame packed with PackMsg, failing
// (without consuming anything) if the full frame isn't buffered yet.
func (b *Buffer) UnpackMsg() (MsgCode, []byte, error) {
	startPos := b.pos
	if err := b.need(4); err != nil {
		return 0, nil, err
	}
	header := binary.LittleEndian.Uint32(b.data[b.pos:])
	b.pos += 4

	code := MsgCode(header>>24) - 7
	length := int(header & 0x00FFFFFF)

	if err := b.need(length); err != nil {
		b.pos = startPos
		return 0, nil, err
	}
	payload := make([]byte, length)
	copy(payload, b.data[b.pos:b.pos+length])
	b.pos += length

	return code, payload, nil
}
