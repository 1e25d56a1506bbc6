// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncproto

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/nrdvana/go-rsync-protocol/rsyncopts"
	"github.com/nrdvana/go-rsync-protocol/rsyncwire"
)

// StartDaemonServer writes the server's opening handshake banner and
// returns a Session positioned to read the client's reply.
func StartDaemonServer(opts *rsyncopts.Options) *Session {
	s := New(opts)
	s.WriteBuf.PackLine(formatBanner(LocalVersion))
	s.state = StateDaemonReadVersion
	return s
}

func (s *Session) parseDaemonReadVersion() (Event, error) {
	line, err := s.ReadBuf.UnpackLine()
	if err != nil {
		if errors.Is(err, rsyncwire.ErrShortRead) {
			return noEvent(), nil
		}
		return noEvent(), s.fail("reading handshake banner: %v", err)
	}
	s.ReadBuf.Discard()

	version, err := s.negotiateVersion(line)
	if err != nil {
		return errorEvent(err.Error()), s.fail("%s", err.Error())
	}
	s.ProtocolVersion = version
	s.state = StateDaemonServerReadModule
	return protocolEvent(version), nil
}

func (s *Session) parseDaemonServerReadModule() (Event, error) {
	line, err := s.ReadBuf.UnpackLine()
	if err != nil {
		if errors.Is(err, rsyncwire.ErrShortRead) {
			return noEvent(), nil
		}
		return noEvent(), s.fail("reading module name: %v", err)
	}
	s.ReadBuf.Discard()

	s.DaemonModule = line
	s.state = StateDaemonServerNegotiateModule
	return moduleEvent(line), nil
}

// SendMotd queues each line of a message-of-the-day. A line that begins
// with '@' is given a leading space first, so the client's line-parser
// (which treats any unrecognized '@'-line as a protocol marker) can never
// mistake it for one.
func (s *Session) SendMotd(lines []string) {
	for _, line := range lines {
		if strings.HasPrefix(line, "@") {
			line = " " + line
		}
		s.WriteBuf.PackLine(line)
	}
}

// SendModuleList queues one module name per line, terminated the way the
// reference daemon ends a module listing.
func (s *Session) SendModuleList(modules []string) {
	for _, m := range modules {
		s.WriteBuf.PackLine(m)
	}
	s.WriteBuf.PackLine("@RSYNCD: EXIT")
}

// SendAuthChallenge queues an AUTHREQD challenge and nests into
// DaemonServerCheckAuth; the next Parse call reads the "user passhash"
// reply and pops back to DaemonServerNegotiateModule. salt must not
// contain a newline.
func (s *Session) SendAuthChallenge(salt string) error {
	if strings.Contains(salt, "\n") {
		return s.fail("auth salt must not contain a newline")
	}
	s.WriteBuf.PackLine("@RSYNCD: AUTHREQD " + salt)
	s.DaemonChallenge = salt
	s.pushState(StateDaemonServerCheckAuth)
	return nil
}

func (s *Session) parseDaemonServerCheckAuth() (Event, error) {
	line, err := s.ReadBuf.UnpackLine()
	if err != nil {
		if errors.Is(err, rsyncwire.ErrShortRead) {
			return noEvent(), nil
		}
		return noEvent(), s.fail("reading auth response: %v", err)
	}
	s.ReadBuf.Discard()

	user, passhash, ok := strings.Cut(line, " ")
	if !ok {
		ev := errorEvent("malformed auth line")
		return ev, s.fail("malformed auth line %q", line)
	}
	s.Username = user
	s.Passhash = passhash

	if err := s.popState(); err != nil {
		return noEvent(), err
	}
	return Event{ID: EventAuth, Str: user, Strs: []string{passhash}}, nil
}

// SendOK queues the terminal "OK" reply and transitions to
// DaemonServerReadCommand to receive the client's argv.
func (s *Session) SendOK() {
	s.WriteBuf.PackLine("@RSYNCD: OK")
	s.state = StateDaemonServerReadCommand
}

// SendError queues a terminal "@ERROR: message" reply. The caller is
// expected to drop the session afterward; Send* is the last action a
// rejected negotiation performs.
func (s *Session) SendError(message string) {
	s.WriteBuf.PackLine("@ERROR: " + message)
}

// SendExit queues a terminal "@RSYNCD: EXIT" reply.
func (s *Session) SendExit() {
	s.WriteBuf.PackLine("@RSYNCD: EXIT")
}

func doubledSepIndex(data []byte, sep byte) int {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == sep && data[i+1] == sep {
			return i
		}
	}
	return -1
}

func (s *Session) parseDaemonServerReadCommand() (Event, error) {
	sep := byte('\n')
	if s.ProtocolVersion >= 30 {
		sep = 0
	}

	data := s.ReadBuf.Bytes()
	idx := doubledSepIndex(data, sep)
	if idx < 0 {
		return noEvent(), nil
	}

	content := data[:idx]
	var argv []string
	if len(content) > 0 {
		for _, part := range bytes.Split(content, []byte{sep}) {
			argv = append(argv, string(part))
		}
	}
	s.ReadBuf.SetPos(s.ReadBuf.Pos() + idx + 2)
	s.ReadBuf.Discard()

	if err := rsyncopts.Apply(s.Options, argv); err != nil {
		msg := fmt.Sprintf("Client sent invalid command: %v", err)
		return errorEvent(msg), s.fail("%s", msg)
	}

	s.state = StateDaemonServerRun
	return commandEvent(argv), nil
}
