// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package md5digest registers an rsyncdigest.Digest backed by the
// standard library's crypto/md5 under the name "md5". No third-party MD5
// implementation in the example corpus improves on the standard library's,
// which is why this plug-in, unlike md4digest, is stdlib-backed.
package md5digest

import (
	"crypto/md5"
	"hash"
	"io"

	"github.com/nrdvana/go-rsync-protocol/rsyncdigest"
)

func init() {
	rsyncdigest.Register("md5", &Digest{h: md5.New()})
}

// Digest wraps crypto/md5's hash.Hash to satisfy rsyncdigest.Digest.
type Digest struct {
	h hash.Hash
}

// New returns a freshly-reset MD5 digest.
func (d *Digest) New() rsyncdigest.Digest {
	return &Digest{h: md5.New()}
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

// Sum returns the 16-byte MD5 digest accumulated so far.
func (d *Digest) Sum() []byte {
	return d.h.Sum(nil)
}
