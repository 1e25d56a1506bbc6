// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncfilelist

import "sort"

// SortKey returns the string rsync orders file-list entries by before
// transmission. Versions before 29 sort by the plain full path; 29 and
// later sort directories as if their name carried a trailing slash, so a
// directory always sorts immediately before any of its own children and
// after any sibling file whose name is a strict prefix of the directory's.
func SortKey(e *Entry, protocolVersion int) string {
	name := fullName(e)
	if protocolVersion >= 29 && e.IsDir && name != "" {
		return name + "/"
	}
	return name
}

// Sort orders entries in place using SortKey, the order an Encoder must
// see them in for delta compression and hard-link back-references to
// match what a real rsync peer expects.
func Sort(entries []*Entry, protocolVersion int) {
	sort.SliceStable(entries, func(i, j int) bool {
		return SortKey(entries[i], protocolVersion) < SortKey(entries[j], protocolVersion)
	})
}

// ResolveDuplicates walks entries (already sorted by Sort) and marks
// consecutive same-path duplicates per the reference rules: the sending
// side keeps every duplicate but flags all but the first FlagDuplicate so
// a receiver can fold them back into one, while a non-sending side (a
// receiver merging two file lists, or a server re-deriving its own view)
// simply drops the later duplicates outright, keeping the first.
func ResolveDuplicates(entries []*Entry, protocolVersion int, isSender bool) []*Entry {
	if len(entries) == 0 {
		return entries
	}
	out := entries[:0:0]
	var prevKey string
	havePrev := false
	for _, e := range entries {
		key := SortKey(e, protocolVersion)
		if havePrev && key == prevKey {
			if isSender {
				e.Flags |= FlagDuplicate
				out = append(out, e)
			}
			continue
		}
		out = append(out, e)
		prevKey = key
		havePrev = true
	}
	return out
}

// AssignDirFlags sets FlagTopDir on every entry passed as one of the
// transfer's command-line source arguments and FlagContentDir on every
// directory entry that is not itself one of those arguments, matching the
// reference distinction between a directory named directly on the
// command line and one discovered by recursion into it.
func AssignDirFlags(entries []*Entry, topLevelNames map[string]bool) {
	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		if topLevelNames[fullName(e)] {
			e.Flags |= FlagTopDir
		} else {
			e.Flags |= FlagContentDir
		}
	}
}
