// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package rsyncdigest defines the checksum and name-lookup collaborator
// interfaces the protocol engine calls out to, plus a small registry for
// selecting a checksum implementation by name and protocol version. The
// engine never hashes anything itself; it only ever holds a Digest value
// handed to it through these interfaces.
package rsyncdigest

import (
	"fmt"
	"io"
)

// Digest is a single checksum computation in progress. New returns a
// fresh instance of the same kind (so a Digest value also doubles as its
// own factory, mirroring the class-method/instance split the wire
// protocol expects of "new() -> D, D.add(bytes) -> D, ...").
type Digest interface {
	New() Digest
	Add(p []byte) Digest
	AddFile(r io.Reader) (Digest, error)
	Sum() []byte
}

// NameLookup resolves numeric owner/group IDs to names for file-list
// entries that carry them by name rather than by number.
type NameLookup interface {
	UIDToName(uid int) (string, bool)
	GIDToName(gid int) (string, bool)
}

var registry = map[string]Digest{}

// Register adds a named Digest prototype to the selection registry. Built-in
// plug-ins (md4, md5, none) register themselves from their own packages'
// init functions so that importing rsyncdigest alone pulls in none of them;
// a caller who only needs MD5 need not link MD4.
func Register(name string, proto Digest) {
	registry[name] = proto
}

// lookup returns a fresh instance of the named digest, or ok=false if no
// plug-in was registered under that name.
func lookup(name string) (Digest, bool) {
	proto, ok := registry[name]
	if !ok {
		return nil, false
	}
	return proto.New(), true
}

// SelectClass resolves the checksum_choice configuration value ("auto",
// "md4", "md5", "none", or unset) against the negotiated protocol version,
// per the reference selection table:
//
//	unset / "auto": md5 if version >= 30, else md4 if version >= 27, else fatal
//	"md4":          md4 if version >= 27, else fatal
//	"md5":          md5 unconditionally
//	"none":         the none digest, unconditionally
func SelectClass(choice string, protocolVersion int) (Digest, error) {
	switch choice {
	case "", "auto":
		if protocolVersion >= 30 {
			if d, ok := lookup("md5"); ok {
				return d, nil
			}
		}
		if protocolVersion >= 27 {
			if d, ok := lookup("md4"); ok {
				return d, nil
			}
		}
		return nil, fmt.Errorf("rsyncdigest: no checksum backend available for protocol version %d", protocolVersion)
	case "md4":
		if protocolVersion < 27 {
			return nil, fmt.Errorf("rsyncdigest: md4 checksum requires protocol version >= 27, got %d", protocolVersion)
		}
		d, ok := lookup("md4")
		if !ok {
			return nil, fmt.Errorf("rsyncdigest: md4 backend not registered")
		}
		return d, nil
	case "md5":
		d, ok := lookup("md5")
		if !ok {
			return nil, fmt.Errorf("rsyncdigest: md5 backend not registered")
		}
		return d, nil
	case "none":
		d, ok := lookup("none")
		if !ok {
			return nil, fmt.Errorf("rsyncdigest: none backend not registered")
		}
		return d, nil
	default:
		return nil, fmt.Errorf("rsyncdigest: unknown checksum_choice %q", choice)
	}
}

// ChecksumSource is the subset of a file-list entry that FilelistChecksum
// needs: a possibly pre-cached digest, possibly in-memory data, a
// possibly-open stream, or a path to open. rsyncfilelist.Entry implements
// this interface; it lives here (rather than being imported from there) so
// that rsyncdigest does not depend on rsyncfilelist.
type ChecksumSource interface {
	CachedDigest() (sum []byte, ok bool)
	Data() (p []byte, ok bool)
	Handle() (r io.Reader, ok bool)
	Path() (path string, ok bool)
}

// FileOpener opens a path for binary reading, the last resort
// FilelistChecksum falls back to when an entry carries none of a cached
// digest, in-memory data, or an already-open stream. Callers that never
// exercise that fallback (e.g. digesting purely in-memory entries) may
// pass a nil opener.
type FileOpener interface {
	Open(path string) (io.ReadCloser, error)
}

// FilelistChecksum computes the checksum for a file-list entry using d as
// the hash algorithm, per the reference's resolution order: a pre-cached
// digest wins outright (no hashing occurs), then in-memory data, then an
// already-open stream, then opening path. A source offering none of the
// four is a fatal error, not a zero-length digest.
func FilelistChecksum(d Digest, src ChecksumSource, opener FileOpener) ([]byte, error) {
	if sum, ok := src.CachedDigest(); ok {
		return sum, nil
	}
	if data, ok := src.Data(); ok {
		return d.New().Add(data).Sum(), nil
	}
	if r, ok := src.Handle(); ok {
		out, err := d.New().AddFile(r)
		if err != nil {
			return nil, fmt.Errorf("rsyncdigest: hashing stream: %w", err)
		}
		return out.Sum(), nil
	}
	if path, ok := src.Path(); ok {
		if opener == nil {
			return nil, fmt.Errorf("rsyncdigest: entry has only a path (%q) but no FileOpener was supplied", path)
		}
		f, err := opener.Open(path)
		if err != nil {
			return nil, fmt.Errorf("rsyncdigest: opening %q: %w", path, err)
		}
		defer f.Close()
		out, err := d.New().AddFile(f)
		if err != nil {
			return nil, fmt.Errorf("rsyncdigest: hashing %q: %w", path, err)
		}
		return out.Sum(), nil
	}
	return nil, fmt.Errorf("rsyncdigest: file-list entry has no cached digest, data, handle, or path")
}
