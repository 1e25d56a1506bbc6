// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncfilelist

// The Unix S_IFMT file-type bits the codec inspects to decide which
// optional fields (rdev, symlink target) an entry's mode implies. These
// are POSIX-standard values, not rsync-specific, kept local so this
// package has no platform dependency.
const (
	sIFMT  uint32 = 0o170000
	sIFDIR uint32 = 0o040000
	sIFCHR uint32 = 0o020000
	sIFBLK uint32 = 0o060000
	sIFREG uint32 = 0o100000
	sIFLNK uint32 = 0o120000
)

func isDir(mode uint32) bool  { return mode&sIFMT == sIFDIR }
func isLink(mode uint32) bool { return mode&sIFMT == sIFLNK }
func isDevice(mode uint32) bool {
	t := mode & sIFMT
	return t == sIFCHR || t == sIFBLK
}
