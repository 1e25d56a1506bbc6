// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncproto

import "fmt"

// Parse consumes as much of ReadBuf as forms one complete message for the
// session's current state and returns the resulting event, per spec.md
// §4.4's contract: a call against a buffer holding an incomplete message
// returns EventNone without moving the read cursor, so the same call
// succeeds once more bytes are appended.
func (s *Session) Parse() (Event, error) {
	if err := s.checkNotFatal(); err != nil {
		return noEvent(), err
	}

	switch s.state {
	case StateClientReadProtocol:
		return s.parseClientReadProtocol()
	case StateClientLogin:
		return s.parseClientLogin()
	case StateDaemonReadVersion:
		return s.parseDaemonReadVersion()
	case StateDaemonServerReadModule:
		return s.parseDaemonServerReadModule()
	case StateDaemonServerCheckAuth:
		return s.parseDaemonServerCheckAuth()
	case StateDaemonServerReadCommand:
		return s.parseDaemonServerReadCommand()
	default:
		return noEvent(), fmt.Errorf("rsyncproto: Parse is not valid in state %s", s.state)
	}
}
