// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Command rsyncprobe is a thin demonstration client that drives the
// sans-I/O rsyncproto engine over a real net.Conn, the way a caller of
// this module is expected to: it owns the socket and the read/write
// loop, and only ever hands the engine bytes.
package main

import "github.com/nrdvana/go-rsync-protocol/cmd/rsyncprobe/cmd"

func main() {
	cmd.Execute()
}
