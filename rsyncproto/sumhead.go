// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncproto

import "github.com/nrdvana/go-rsync-protocol/rsyncwire"

// SumHead is the rolling-checksum block-signature header rsync sends
// ahead of a file's delta transfer. The block-matching algorithm it
// describes is out of scope (spec.md's Non-goals stub the rolling
// checksum transfer entirely), but every SumHead this engine relays
// between a sender and a receiver must still round-trip correctly, so
// its wire encoding is implemented here as pure pack/unpack, grounded on
// the reference daemon's sumHead{ChecksumCount, BlockLength,
// ChecksumLength, RemainderLength} shape.
type SumHead struct {
	ChecksumCount  int32
	BlockLength    int32
	ChecksumLength int32
	RemainderLength int32
}

// Pack appends h to b in wire order: four s32 fields.
func (h SumHead) Pack(b *rsyncwire.Buffer) {
	b.PackS32(h.ChecksumCount)
	b.PackS32(h.BlockLength)
	b.PackS32(h.ChecksumLength)
	b.PackS32(h.RemainderLength)
}

// UnpackSumHead consumes a SumHead packed with Pack.
func UnpackSumHead(b *rsyncwire.Buffer) (SumHead, error) {
	var h SumHead
	var err error
	if h.ChecksumCount, err = b.UnpackS32(); err != nil {
		return SumHead{}, err
	}
	if h.BlockLength, err = b.UnpackS32(); err != nil {
		return SumHead{}, err
	}
	if h.ChecksumLength, err = b.UnpackS32(); err != nil {
		return SumHead{}, err
	}
	if h.RemainderLength, err = b.UnpackS32(); err != nil {
		return SumHead{}, err
	}
	return h, nil
}

// sumSizesSqroot picks a block length for a file of the given size, the
// same square-root heuristic the reference implementation uses so a
// NullGenerator's header at least carries plausible values even though it
// never computes real block signatures.
func sumSizesSqroot(size int64) int32 {
	const blockSizeMin = 700
	if size <= 0 {
		return blockSizeMin
	}
	var blockLen int32 = blockSizeMin
	for blockLen*blockLen < int32(size) && blockLen < 1<<17 {
		blockLen *= 2
	}
	return blockLen
}

// Generator produces the SumHead for a file about to be transferred. The
// Session never calls it (it has no file-transfer phase); callers that
// relay a transfer use it directly. Per-block checksums are out of scope
// here.
type Generator interface {
	Generate(size int64) SumHead
}

// NullGenerator is the documented no-op default: it emits a SumHead with
// zero blocks, which tells the sender side "send the whole file", the
// only behavior obtainable without doing the rolling-checksum work this
// engine stubs out.
type NullGenerator struct{}

// Generate implements Generator by always requesting a whole-file send.
func (NullGenerator) Generate(size int64) SumHead {
	return SumHead{
		ChecksumCount:   0,
		BlockLength:     sumSizesSqroot(size),
		ChecksumLength:  0,
		RemainderLength: 0,
	}
}
