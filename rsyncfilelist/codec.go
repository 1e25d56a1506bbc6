// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncfilelist

import (
	"fmt"
	"strings"

	"github.com/nrdvana/go-rsync-protocol/rsyncdigest"
	"github.com/nrdvana/go-rsync-protocol/rsyncwire"
)

// Options controls which optional per-entry fields the codec reads and
// writes, mirroring the negotiated --owner/--group/--links/--devices/
// --hard-links state a session otherwise carries in rsyncopts.Options.
type Options struct {
	ProtocolVersion int
	PreserveUID     bool
	PreserveGID     bool
	PreserveLinks   bool
	PreserveDevices bool
	PreserveHLinks  bool
	AlwaysChecksum  bool
	ChecksumLength  int

	// StartIndex is the global index (Entry.Index numbering) of the first
	// entry this Encoder/Decoder will produce/consume. A hard-link
	// back-reference whose target index falls below StartIndex refers to
	// an entry transmitted in an earlier, already-processed file-list
	// segment rather than one this Encoder/Decoder ever sees.
	StartIndex int

	// NameLookup resolves uid/gid to names for USER_NAME_FOLLOWS/
	// GROUP_NAME_FOLLOWS transmission. Nil disables name transmission on
	// encode; decode always honors whatever the peer sent.
	NameLookup rsyncdigest.NameLookup
}

// hlinkKey identifies a hard-link group by device and inode.
type hlinkKey struct{ dev, ino int64 }

// hlinksSupported reports whether this protocol version uses the v32
// global-index hard-link back-reference scheme spec.md §4.5 item 4
// describes. Earlier versions used a different dev/ino-based encoding
// that this codec does not implement (see DESIGN.md).
func hlinksSupported(version int) bool { return version >= 30 }

// Encoder holds the delta-compression cursor the reference sender keeps
// as locals across a send_file_list loop: the previous entry's full
// name, mode, uid, gid and mtime, reused to omit fields unchanged from
// one entry to the next, plus the dev/ino-to-first-index table that
// turns repeated hard-link targets into back references.
type Encoder struct {
	opts Options

	havePrev  bool
	prevName  string
	prevMode  uint32
	prevUID   int32
	prevGID   int32
	prevMtime int64

	hlinks map[hlinkKey]int

	sentUIDName map[int32]bool
	sentGIDName map[int32]bool
}

// NewEncoder returns an Encoder with a fresh delta cursor.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts, hlinks: map[hlinkKey]int{}}
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	if i > 255 {
		i = 255
	}
	return i
}

func fullName(e *Entry) string {
	if e.Dir == "" {
		return e.Name
	}
	return e.Dir + "/" + e.Name
}

// packLengthPrefixed writes a v32 byte-count followed by the raw bytes of
// s, the shape spec.md §4.5 uses for LONG_NAME suffixes and symlink
// targets alike (distinct from rsyncwire.PackVString's 1-/2-byte length
// prefix, which this codec does not use).
func packLengthPrefixed(buf *rsyncwire.Buffer, s string) {
	buf.PackV32(int32(len(s)))
	buf.Append([]byte(s)...)
}

func unpackLengthPrefixed(buf *rsyncwire.Buffer) (string, error) {
	n, err := buf.UnpackV32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("rsyncfilelist: negative length-prefixed string length %d", n)
	}
	if err := requireRemaining(buf, int(n)); err != nil {
		return "", err
	}
	raw := make([]byte, n)
	for i := range raw {
		b, _ := buf.UnpackU8()
		raw[i] = b
	}
	return string(raw), nil
}

// packRdev writes a device's major/minor pair per spec.md §4.5's
// version-dependent table. SAME_RDEV_MAJOR compression (omitting the
// major when it matches the previous device entry) is not implemented;
// see DESIGN.md.
func packRdev(buf *rsyncwire.Buffer, version int, major, minor int32) {
	switch {
	case version < 28:
		buf.PackS32(major<<8 | (minor & 0xff))
	case version < 30:
		buf.PackV32(major)
		buf.PackS32(minor)
	default:
		buf.PackV32(major)
		buf.PackV32(minor)
	}
}

func unpackRdev(buf *rsyncwire.Buffer, version int) (major, minor int32, err error) {
	switch {
	case version < 28:
		v, err := buf.UnpackS32()
		if err != nil {
			return 0, 0, err
		}
		return v >> 8, v & 0xff, nil
	case version < 30:
		major, err = buf.UnpackV32()
		if err != nil {
			return 0, 0, err
		}
		minor, err = buf.UnpackS32()
		if err != nil {
			return 0, 0, err
		}
		return major, minor, nil
	default:
		major, err = buf.UnpackV32()
		if err != nil {
			return 0, 0, err
		}
		minor, err = buf.UnpackV32()
		if err != nil {
			return 0, 0, err
		}
		return major, minor, nil
	}
}

// Encode appends one entry's wire encoding to buf. Entries must be
// passed in final transmission order: the delta cursor and hard-link
// table are both order-dependent.
func (enc *Encoder) Encode(buf *rsyncwire.Buffer, e *Entry) error {
	name := fullName(e)
	flags := e.Flags
	v30 := enc.opts.ProtocolVersion >= 30

	same := 0
	if enc.havePrev {
		same = commonPrefixLen(enc.prevName, name)
	}
	suffix := name[same:]
	if same > 0 {
		flags |= FlagSameName
	}
	if len(suffix) > 255 {
		flags |= FlagLongName
	}
	if enc.havePrev && e.Mode == enc.prevMode {
		flags |= FlagSameMode
	}
	sameUID := enc.opts.PreserveUID && enc.havePrev && e.UID == enc.prevUID
	if sameUID {
		flags |= FlagSameUID
	}
	sameGID := enc.opts.PreserveGID && enc.havePrev && e.GID == enc.prevGID
	if sameGID {
		flags |= FlagSameGID
	}
	if enc.havePrev && e.Mtime == enc.prevMtime {
		flags |= FlagSameTime
	}
	if e.HasMtimeNsec && enc.opts.ProtocolVersion >= 31 {
		flags |= FlagModNsec
	}

	sendUIDName := false
	if enc.opts.PreserveUID && !sameUID && enc.opts.NameLookup != nil {
		if !enc.sentUIDName[e.UID] {
			if _, ok := enc.opts.NameLookup.UIDToName(int(e.UID)); ok {
				sendUIDName = true
				flags |= FlagUserNameFollows
			}
		}
	}
	sendGIDName := false
	if enc.opts.PreserveGID && !sameGID && enc.opts.NameLookup != nil {
		if !enc.sentGIDName[e.GID] {
			if _, ok := enc.opts.NameLookup.GIDToName(int(e.GID)); ok {
				sendGIDName = true
				flags |= FlagGroupNameFollows
			}
		}
	}

	if flags&0xFF00 != 0 {
		flags |= FlagExtended
	}

	if flags&FlagExtended != 0 {
		buf.PackU16(uint16(flags))
	} else {
		buf.PackU8(byte(flags))
	}

	if flags&FlagSameName != 0 {
		buf.PackU8(byte(same))
	}
	if flags&FlagLongName != 0 {
		packLengthPrefixed(buf, suffix)
	} else {
		buf.PackU8(byte(len(suffix)))
		buf.Append([]byte(suffix)...)
	}

	if enc.opts.PreserveHLinks && hlinksSupported(enc.opts.ProtocolVersion) && e.HasDevIno {
		key := hlinkKey{e.Dev, e.Ino}
		if first, ok := enc.hlinks[key]; ok {
			buf.PackV32(int32(first))
			if first < enc.opts.StartIndex {
				// The target lives in an earlier, already-transmitted
				// file-list segment this Encoder never saw: nothing more
				// to say about this entry.
				enc.advanceCursorSkipped(name)
				return nil
			}
		} else {
			enc.hlinks[key] = e.Index
			buf.PackV32(-1)
		}
	}

	if err := buf.PackV64(e.Size, 3); err != nil {
		return fmt.Errorf("rsyncfilelist: encoding size of %q: %w", name, err)
	}

	if flags&FlagSameTime == 0 {
		if v30 {
			if err := buf.PackV64(e.Mtime, 4); err != nil {
				return fmt.Errorf("rsyncfilelist: encoding mtime of %q: %w", name, err)
			}
		} else {
			buf.PackS32(int32(e.Mtime))
		}
	}
	if flags&FlagModNsec != 0 {
		buf.PackV32(e.MtimeNsec)
	}

	if flags&FlagSameMode == 0 {
		buf.PackS32(int32(e.Mode))
	}

	if enc.opts.PreserveUID && flags&FlagSameUID == 0 {
		if v30 {
			buf.PackV32(e.UID)
		} else {
			buf.PackS32(e.UID)
		}
		if sendUIDName {
			name, _ := enc.opts.NameLookup.UIDToName(int(e.UID))
			buf.PackU8(byte(len(name)))
			buf.Append([]byte(name)...)
			if enc.sentUIDName == nil {
				enc.sentUIDName = map[int32]bool{}
			}
			enc.sentUIDName[e.UID] = true
		}
	}
	if enc.opts.PreserveGID && flags&FlagSameGID == 0 {
		if v30 {
			buf.PackV32(e.GID)
		} else {
			buf.PackS32(e.GID)
		}
		if sendGIDName {
			name, _ := enc.opts.NameLookup.GIDToName(int(e.GID))
			buf.PackU8(byte(len(name)))
			buf.Append([]byte(name)...)
			if enc.sentGIDName == nil {
				enc.sentGIDName = map[int32]bool{}
			}
			enc.sentGIDName[e.GID] = true
		}
	}

	if enc.opts.PreserveDevices && isDevice(e.Mode) {
		packRdev(buf, enc.opts.ProtocolVersion, e.RdevMajor, e.RdevMinor)
	}

	if enc.opts.PreserveLinks && isLink(e.Mode) {
		packLengthPrefixed(buf, e.Symlink)
	}

	if enc.opts.AlwaysChecksum {
		sum, ok := e.CachedDigest()
		if !ok {
			return fmt.Errorf("rsyncfilelist: entry %q carries no precomputed checksum to transmit", name)
		}
		if len(sum) < enc.opts.ChecksumLength {
			return fmt.Errorf("rsyncfilelist: entry %q checksum shorter than the configured %d bytes", name, enc.opts.ChecksumLength)
		}
		buf.Append(sum[:enc.opts.ChecksumLength]...)
	}

	enc.havePrev = true
	enc.prevName = name
	enc.prevMode = e.Mode
	enc.prevUID = e.UID
	enc.prevGID = e.GID
	enc.prevMtime = e.Mtime
	return nil
}

// advanceCursorSkipped updates only the name half of the delta cursor
// after a short-circuited hard-link entry: the encoder never transmitted
// mode/uid/gid/mtime for this entry, so the decoder's cursor cannot have
// moved past those fields either, and later SAME_* comparisons must be
// made against the same reference both sides still agree on.
func (enc *Encoder) advanceCursorSkipped(name string) {
	enc.havePrev = true
	enc.prevName = name
}

// Decoder is Encoder's mirror image, replaying the same delta cursor to
// reconstruct entries a peer's Encoder produced.
type Decoder struct {
	opts Options

	havePrev  bool
	prevName  string
	prevMode  uint32
	prevUID   int32
	prevGID   int32
	prevMtime int64

	byIndex []*Entry

	uidNames map[int32]string
	gidNames map[int32]string
}

// NewDecoder returns a Decoder with a fresh delta cursor.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// Decode consumes one entry from buf, or returns rsyncwire.ErrShortRead
// (wrapped) if buf does not yet hold a complete entry, leaving buf's read
// cursor unchanged so the caller can retry once more bytes arrive.
func (dec *Decoder) Decode(buf *rsyncwire.Buffer) (*Entry, error) {
	startPos := buf.Pos()
	fail := func(err error) (*Entry, error) {
		buf.SetPos(startPos)
		return nil, err
	}
	v30 := dec.opts.ProtocolVersion >= 30

	h, err := buf.UnpackU8()
	if err != nil {
		return fail(err)
	}
	flags := Flag(h)
	if flags&FlagExtended != 0 {
		lo, err := buf.UnpackU8()
		if err != nil {
			return fail(err)
		}
		flags = Flag(h) | Flag(lo)<<8
	}

	same := 0
	if flags&FlagSameName != 0 {
		if !dec.havePrev {
			return fail(fmt.Errorf("rsyncfilelist: SAME_NAME flag with no previous entry"))
		}
		n, err := buf.UnpackU8()
		if err != nil {
			return fail(err)
		}
		same = int(n)
	}

	var suffix string
	if flags&FlagLongName != 0 {
		suffix, err = unpackLengthPrefixed(buf)
		if err != nil {
			return fail(err)
		}
	} else {
		n, err := buf.UnpackU8()
		if err != nil {
			return fail(err)
		}
		if err := requireRemaining(buf, int(n)); err != nil {
			return fail(err)
		}
		raw := make([]byte, n)
		for i := range raw {
			b, _ := buf.UnpackU8()
			raw[i] = b
		}
		suffix = string(raw)
	}

	var name string
	if flags&FlagSameName != 0 {
		prefixLen := same
		if prefixLen > len(dec.prevName) {
			prefixLen = len(dec.prevName)
		}
		name = dec.prevName[:prefixLen] + suffix
	} else {
		name = suffix
	}

	globalIndex := dec.opts.StartIndex + len(dec.byIndex)

	if dec.opts.PreserveHLinks && hlinksSupported(dec.opts.ProtocolVersion) {
		firstIndex, err := buf.UnpackV32()
		if err != nil {
			return fail(err)
		}
		structuralFlags := flags &^ (FlagSameName | FlagLongName | FlagSameMode | FlagSameUID | FlagUserNameFollows | FlagSameGID | FlagGroupNameFollows | FlagSameTime | FlagModNsec | FlagExtended)
		if firstIndex >= 0 {
			e := &Entry{Index: globalIndex, Flags: FlagHlinked | structuralFlags}
			if int(firstIndex) < dec.opts.StartIndex {
				// Target lives in an earlier segment this Decoder never
				// saw; nothing further was transmitted for this entry.
				if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
					e.Dir, e.Name = name[:idx], name[idx+1:]
				} else {
					e.Name = name
				}
				dec.havePrev = true
				dec.prevName = name
				dec.byIndex = append(dec.byIndex, e)
				return e, nil
			}
			local := int(firstIndex) - dec.opts.StartIndex
			if local >= 0 && local < len(dec.byIndex) && dec.byIndex[local] != nil {
				target := dec.byIndex[local]
				e.Dev, e.Ino, e.HasDevIno = target.Dev, target.Ino, true
			}
			// A resolvable back-reference still carries the rest of the
			// regular field sequence: spec.md §4.5 item 4 only
			// short-circuits when the target is below StartIndex.
			return dec.decodeFieldsInto(buf, fail, e, flags, v30, name)
		}
		// firstIndex < 0: first occurrence of this hard-link group; fall
		// through to the regular field sequence, marked below.
		e := &Entry{Index: globalIndex, Flags: FlagHlinked | FlagHlinkFirst}
		return dec.decodeFieldsInto(buf, fail, e, flags, v30, name)
	}

	e := &Entry{Index: globalIndex}
	return dec.decodeFieldsInto(buf, fail, e, flags, v30, name)
}

// decodeFieldsInto reads size through the checksum into e (everything
// after the name and hard-link back-reference), used both for a normal
// entry and a resolvable hard-link entry, which still carries this full
// sequence.
func (dec *Decoder) decodeFieldsInto(buf *rsyncwire.Buffer, fail func(error) (*Entry, error), e *Entry, flags Flag, v30 bool, name string) (*Entry, error) {
	size, err := buf.UnpackV64(3)
	if err != nil {
		return fail(err)
	}
	e.Size = size

	mtime := dec.prevMtime
	if flags&FlagSameTime == 0 {
		if v30 {
			mtime, err = buf.UnpackV64(4)
		} else {
			var m32 int32
			m32, err = buf.UnpackS32()
			mtime = int64(m32)
		}
		if err != nil {
			return fail(err)
		}
	}
	e.Mtime = mtime

	if flags&FlagModNsec != 0 {
		n, err := buf.UnpackV32()
		if err != nil {
			return fail(err)
		}
		e.MtimeNsec = n
		e.HasMtimeNsec = true
	}

	mode := dec.prevMode
	if flags&FlagSameMode == 0 {
		m, err := buf.UnpackS32()
		if err != nil {
			return fail(err)
		}
		mode = uint32(m)
	}
	e.Mode = mode

	uid := dec.prevUID
	if dec.opts.PreserveUID && flags&FlagSameUID == 0 {
		if v30 {
			uid, err = buf.UnpackV32()
		} else {
			uid, err = buf.UnpackS32()
		}
		if err != nil {
			return fail(err)
		}
		if flags&FlagUserNameFollows != 0 {
			n, err := buf.UnpackU8()
			if err != nil {
				return fail(err)
			}
			if err := requireRemaining(buf, int(n)); err != nil {
				return fail(err)
			}
			raw := make([]byte, n)
			for i := range raw {
				b, _ := buf.UnpackU8()
				raw[i] = b
			}
			if dec.uidNames == nil {
				dec.uidNames = map[int32]string{}
			}
			dec.uidNames[uid] = string(raw)
		}
	}
	e.UID = uid
	if name, ok := dec.uidNames[uid]; ok {
		e.UIDName = name
	}

	gid := dec.prevGID
	if dec.opts.PreserveGID && flags&FlagSameGID == 0 {
		if v30 {
			gid, err = buf.UnpackV32()
		} else {
			gid, err = buf.UnpackS32()
		}
		if err != nil {
			return fail(err)
		}
		if flags&FlagGroupNameFollows != 0 {
			n, err := buf.UnpackU8()
			if err != nil {
				return fail(err)
			}
			if err := requireRemaining(buf, int(n)); err != nil {
				return fail(err)
			}
			raw := make([]byte, n)
			for i := range raw {
				b, _ := buf.UnpackU8()
				raw[i] = b
			}
			if dec.gidNames == nil {
				dec.gidNames = map[int32]string{}
			}
			dec.gidNames[gid] = string(raw)
		}
	}
	e.GID = gid
	if name, ok := dec.gidNames[gid]; ok {
		e.GIDName = name
	}

	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		e.Dir, e.Name = name[:idx], name[idx+1:]
	} else {
		e.Name = name
	}
	e.IsDir = isDir(mode)
	e.Flags |= flags &^ (FlagSameName | FlagLongName | FlagSameMode | FlagSameUID | FlagUserNameFollows | FlagSameGID | FlagGroupNameFollows | FlagSameTime | FlagModNsec | FlagExtended)

	if dec.opts.PreserveDevices && isDevice(mode) {
		major, minor, err := unpackRdev(buf, dec.opts.ProtocolVersion)
		if err != nil {
			return fail(err)
		}
		e.RdevMajor, e.RdevMinor, e.HasRdev = major, minor, true
	}

	if dec.opts.PreserveLinks && isLink(mode) {
		e.Symlink, err = unpackLengthPrefixed(buf)
		if err != nil {
			return fail(err)
		}
		e.HasSymlink = true
	}

	if dec.opts.AlwaysChecksum {
		if err := requireRemaining(buf, dec.opts.ChecksumLength); err != nil {
			return fail(err)
		}
		sum := make([]byte, dec.opts.ChecksumLength)
		for i := range sum {
			b, _ := buf.UnpackU8()
			sum[i] = b
		}
		if dec.opts.ChecksumLength == 16 {
			e.CachedMD5 = sum
		} else {
			e.CachedMD4 = sum
		}
	}

	dec.byIndex = append(dec.byIndex, e)

	dec.havePrev = true
	dec.prevName = name
	dec.prevMode = mode
	dec.prevUID = uid
	dec.prevGID = gid
	dec.prevMtime = mtime

	return e, nil
}

func requireRemaining(buf *rsyncwire.Buffer, n int) error {
	if buf.Remaining() < n {
		return rsyncwire.ErrShortRead
	}
	return nil
}
