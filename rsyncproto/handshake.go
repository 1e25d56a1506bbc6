// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncproto

import (
	"fmt"
	"regexp"
	"strconv"
)

var bannerPattern = regexp.MustCompile(`^@RSYNCD: ([0-9]+)\.(-?[0-9]+)$`)

// parseBanner decodes a handshake line "@RSYNCD: MAJOR.MINOR", returning
// the effective remote protocol version. A non-zero MINOR marks a
// pre-release build and the effective version is MAJOR-1, per spec.md
// §4.4.
func parseBanner(line string) (int, error) {
	m := bannerPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, fmt.Errorf("unparsable handshake line %q", line)
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("unparsable handshake line %q: %w", line, err)
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("unparsable handshake line %q: %w", line, err)
	}
	if minor != 0 {
		return major - 1, nil
	}
	return major, nil
}

func formatBanner(version int) string {
	return fmt.Sprintf("@RSYNCD: %d.0", version)
}

// negotiateVersion applies min(local, effective remote) and fails the
// session if the result is below MinSupportedVersion.
func (s *Session) negotiateVersion(remoteText string) (int, error) {
	s.RemoteVersionText = remoteText
	remoteEffective, err := parseBanner(remoteText)
	if err != nil {
		return 0, err
	}
	v := LocalVersion
	if remoteEffective < v {
		v = remoteEffective
	}
	if v < MinSupportedVersion {
		return 0, fmt.Errorf("negotiated protocol version %d is below the minimum supported version %d", v, MinSupportedVersion)
	}
	return v, nil
}
