// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package md4digest registers an rsyncdigest.Digest backed by
// golang.org/x/crypto/md4 under the name "md4".
package md4digest

import (
	"io"

	"golang.org/x/crypto/md4"

	"github.com/nrdvana/go-rsync-protocol/rsyncdigest"
)

func init() {
	rsyncdigest.Register("md4", &Digest{h: md4.New()})
}

// Digest wraps md4.New()'s hash.Hash to satisfy rsyncdigest.Digest.
type Digest struct {
	h interface {
		io.Writer
		Sum(b []byte) []byte
		Reset()
	}
}

// New returns a freshly-reset MD4 digest.
func (d *Digest) New() rsyncdigest.Digest {
	return &Digest{h: md4.New()}
}

// Add feeds p into the running hash and returns the receiver for chaining.
func (d *Digest) Add(p []byte) rsyncdigest.Digest {
	d.h.Write(p)
	return d
}

// AddFile streams r into the running hash.
func (d *Digest) AddFile(r io.Reader) (rsyncdigest.Digest, error) {
	if _, err := io.Copy(d.h, r); err != nil {
		return d, err
	}
	return d, nil
}

// Sum returns the 16-byte MD4 digest accumulated so far.
func (d *Digest) Sum() []byte {
	return d.h.Sum(nil)
}
