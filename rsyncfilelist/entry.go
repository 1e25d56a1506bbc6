// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package rsyncfilelist implements the delta-coded, version- and
// option-conditional binary encoding of rsync file-list entries: the
// heaviest of the three core subsystems (spec.md §2 puts it at roughly
// 35% of the engine). An Encoder/Decoder pair holds the per-session delta
// cursor as fields and branches on the negotiated protocol version and
// Options for each entry, replacing the reference implementation's
// dynamically generated per-call encoder closures.
package rsyncfilelist

import "io"

// Flag is the bitmask carried on each entry, covering both the
// structural bits (TopDir, ContentDir, ImpliedDir, Duplicate, hardlink
// bookkeeping) set by list construction/duplicate resolution and the
// delta/SAME_* bits the Encoder computes as it writes.
type Flag uint16

const (
	FlagTopDir Flag = 1 << iota
	FlagContentDir
	FlagImpliedDir
	FlagDuplicate
	FlagHlinked
	FlagHlinkFirst
	FlagSameName
	// FlagExtended sits in the low byte, which is transmitted first, so a
	// decoder can tell from that byte alone whether a second one follows.
	FlagExtended
	FlagLongName
	FlagSameTime
	FlagModNsec
	FlagSameMode
	FlagSameUID
	FlagUserNameFollows
	FlagSameGID
	FlagGroupNameFollows
)

// Entry is one file-list record: spec.md §3's data model realized as a
// Go struct. Exactly one of CachedMD5/CachedMD4, DataBytes, HandleStream,
// or FSPath is expected to be populated when a checksum must be computed
// for it (rsyncdigest.FilelistChecksum resolves them in that order).
type Entry struct {
	Dir  string
	Name string

	Mode uint32
	UID  int32
	GID  int32

	// UIDName/GIDName are populated (on encode, consulted via Options'
	// NameLookup; on decode, from a USER_NAME_FOLLOWS/GROUP_NAME_FOLLOWS
	// field or an earlier entry with the same numeric id) when name-based
	// id transmission is in play. Empty means unknown or not preserved.
	UIDName string
	GIDName string

	Mtime        int64
	MtimeNsec    int32
	HasMtimeNsec bool

	Size int64

	RdevMajor int32
	RdevMinor int32
	HasRdev   bool

	Symlink    string
	HasSymlink bool

	Dev       int64
	Ino       int64
	HasDevIno bool

	CachedMD5    []byte
	CachedMD4    []byte
	DataBytes    []byte
	HandleStream io.Reader
	FSPath       string

	Flags Flag
	IsDir bool

	// Index is the entry's position in the unsorted list, the index
	// value the wire format references for hard-link back-pointers.
	Index int
}

// CachedDigest implements rsyncdigest.ChecksumSource.
func (e *Entry) CachedDigest() ([]byte, bool) {
	if len(e.CachedMD5) > 0 {
		return e.CachedMD5, true
	}
	if len(e.CachedMD4) > 0 {
		return e.CachedMD4, true
	}
	return nil, false
}

// Data implements rsyncdigest.ChecksumSource.
func (e *Entry) Data() ([]byte, bool) { return e.DataBytes, e.DataBytes != nil }

// Handle implements rsyncdigest.ChecksumSource.
func (e *Entry) Handle() (io.Reader, bool) { return e.HandleStream, e.HandleStream != nil }

// Path implements rsyncdigest.ChecksumSource.
func (e *Entry) Path() (string, bool) { return e.FSPath, e.FSPath != "" }
