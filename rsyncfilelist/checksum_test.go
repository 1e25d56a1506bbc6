// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncfilelist

import (
	"testing"

	_ "github.com/nrdvana/go-rsync-protocol/rsyncdigest/md5digest"

	"github.com/nrdvana/go-rsync-protocol/rsyncdigest"
)

func TestFillChecksumsFromInMemoryData(t *testing.T) {
	d, err := rsyncdigest.SelectClass("md5", 31)
	if err != nil {
		t.Fatal(err)
	}
	entries := []*Entry{
		{Name: "a", Mode: sIFREG, DataBytes: []byte("abc")},
	}
	if err := FillChecksums(entries, d, nil); err != nil {
		t.Fatal(err)
	}
	if len(entries[0].CachedMD5) != 16 {
		t.Fatalf("expected a cached 16-byte MD5 sum, got %v", entries[0].CachedMD5)
	}
}

func TestFillChecksumsSkipsAlreadyCached(t *testing.T) {
	d, err := rsyncdigest.SelectClass("md5", 31)
	if err != nil {
		t.Fatal(err)
	}
	precomputed := []byte("0123456789abcdef")
	entries := []*Entry{
		{Name: "a", Mode: sIFREG, CachedMD5: precomputed},
	}
	if err := FillChecksums(entries, d, nil); err != nil {
		t.Fatal(err)
	}
	if string(entries[0].CachedMD5) != string(precomputed) {
		t.Fatalf("cached digest should not be recomputed: %v", entries[0].CachedMD5)
	}
}
