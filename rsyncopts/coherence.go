// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncopts

import "fmt"

// MakeCoherent runs the post-argv validation and implication pass:
// checksum_choice must be one of auto/md4/md5/none (or unset), and
// selecting "none" forces whole_file transfers.
func MakeCoherent(o *Options) error {
	switch o.strs["checksum_choice"] {
	case "", "auto", "md4", "md5":
	case "none":
		o.values["whole_file"] = 1
	default:
		return fmt.Errorf("rsyncopts: invalid checksum_choice %q", o.strs["checksum_choice"])
	}
	return nil
}
