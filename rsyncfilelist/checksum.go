// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncfilelist

import "github.com/nrdvana/go-rsync-protocol/rsyncdigest"

// FillChecksums computes and caches the whole-file digest for every entry
// in entries that doesn't already carry one, using d as the algorithm and
// opener to resolve entries that only carry a filesystem path. It is the
// glue a sender uses before calling Encoder.Encode with AlwaysChecksum
// set: the codec itself only ever transmits a pre-cached digest, it never
// computes one.
func FillChecksums(entries []*Entry, d rsyncdigest.Digest, opener rsyncdigest.FileOpener) error {
	for _, e := range entries {
		if _, ok := e.CachedDigest(); ok {
			continue
		}
		sum, err := rsyncdigest.FilelistChecksum(d, e, opener)
		if err != nil {
			return err
		}
		if len(sum) == 16 {
			e.CachedMD5 = sum
		} else {
			e.CachedMD4 = sum
		}
	}
	return nil
}
