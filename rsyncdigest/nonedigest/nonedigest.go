// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package nonedigest registers the degenerate "none" checksum under that
// name: its Sum is always a single zero byte, the placeholder the
// reference protocol uses when checksumming is disabled but a digest-sized
// field must still be emitted on the wire.
package nonedigest

import (
	"io"

	"github.com/nrdvana/go-rsync-protocol/rsyncdigest"
)

func init() {
	rsyncdigest.Register("none", Digest{})
}

// Digest is a no-op checksum: it ignores everything added to it.
type Digest struct{}

// New returns a Digest (stateless, so this is just itself).
func (Digest) New() rsyncdigest.Digest { return Digest{} }

// Add is a no-op.
func (d Digest) Add(p []byte) rsyncdigest.Digest { return d }

// AddFile discards r without reading it meaningfully; callers that still
// want to exhaust the stream can rely on this doing so via io.Copy to
// io.Discard.
func (d Digest) AddFile(r io.Reader) (rsyncdigest.Digest, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return d, err
	}
	return d, nil
}

// Sum always returns a single zero byte.
func (Digest) Sum() []byte { return []byte{0} }
