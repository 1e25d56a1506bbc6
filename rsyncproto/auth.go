// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncproto

import (
	"encoding/base64"
	"strings"

	"github.com/nrdvana/go-rsync-protocol/rsyncdigest"
)

// authDigestChoice returns the checksum_choice name the auth handshake
// uses for a given protocol version: MD5 from version 30 on, MD4 below.
func authDigestChoice(protocolVersion int) string {
	if protocolVersion >= 30 {
		return "md5"
	}
	return "md4"
}

// computePasshash implements spec.md §4.4's auth digest:
// base64(digest.add(password).add(challenge).digest()) with trailing '='
// padding stripped.
func computePasshash(protocolVersion int, password, challenge string) (string, error) {
	d, err := rsyncdigest.SelectClass(authDigestChoice(protocolVersion), protocolVersion)
	if err != nil {
		return "", err
	}
	sum := d.New().Add([]byte(password)).Add([]byte(challenge)).Sum()
	return strings.TrimRight(base64.StdEncoding.EncodeToString(sum), "="), nil
}
