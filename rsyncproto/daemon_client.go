// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncproto

import (
	"errors"
	"strings"

	"github.com/nrdvana/go-rsync-protocol/rsyncopts"
	"github.com/nrdvana/go-rsync-protocol/rsyncwire"
)

// StartDaemonClient applies argv through the options processor and
// returns a Session positioned to read the daemon's opening handshake
// banner. module is the module name to request once the banner is
// negotiated; username/password may be empty and supplied later via
// SetCredentials before an AUTHREQD challenge arrives.
func StartDaemonClient(argv []string, module, username, password string) (*Session, error) {
	opts := rsyncopts.New()
	if err := rsyncopts.Apply(opts, argv); err != nil {
		return nil, err
	}
	s := New(opts)
	s.DaemonModule = module
	s.Username = username
	s.Password = password
	s.state = StateClientReadProtocol
	return s, nil
}

// SetCredentials supplies (or replaces) the username/password a future
// AUTHREQD challenge should answer with.
func (s *Session) SetCredentials(username, password string) {
	s.Username = username
	s.Password = password
}

// AnswerAuth answers an already-received AUTHREQD challenge (the one
// reported as the most recent EventAuthReqd's salt) with username and
// password, for callers that collect credentials interactively only
// after seeing the challenge rather than supplying them up front via
// StartDaemonClient/SetCredentials. It is an error to call this without
// a pending challenge.
func (s *Session) AnswerAuth(username, password string) error {
	if err := s.checkNotFatal(); err != nil {
		return err
	}
	if s.DaemonChallenge == "" {
		return s.fail("AnswerAuth called with no pending AUTHREQD challenge")
	}
	passhash, err := computePasshash(s.ProtocolVersion, password, s.DaemonChallenge)
	if err != nil {
		return s.fail("%s", err.Error())
	}
	s.Username, s.Password, s.Passhash = username, password, passhash
	s.WriteBuf.PackLine(username + " " + passhash)
	return nil
}

func (s *Session) parseClientReadProtocol() (Event, error) {
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

	s.WriteBuf.PackLine(formatBanner(version))
	s.WriteBuf.PackLine(s.DaemonModule)
	s.state = StateClientLogin

	return protocolEvent(version), nil
}

func (s *Session) parseClientLogin() (Event, error) {
	line, err := s.ReadBuf.UnpackLine()
	if err != nil {
		if errors.Is(err, rsyncwire.ErrShortRead) {
			return noEvent(), nil
		}
		return noEvent(), s.fail("reading login line: %v", err)
	}
	s.ReadBuf.Discard()

	switch {
	case strings.HasPrefix(line, "@RSYNCD: AUTHREQD "):
		salt := strings.TrimPrefix(line, "@RSYNCD: AUTHREQD ")
		s.DaemonChallenge = salt
		if s.Username != "" && s.Password != "" {
			passhash, err := computePasshash(s.ProtocolVersion, s.Password, salt)
			if err != nil {
				return errorEvent(err.Error()), s.fail("%s", err.Error())
			}
			s.Passhash = passhash
			s.WriteBuf.PackLine(s.Username + " " + passhash)
			// Answered without an event: go on to the next login line.
			return s.parseClientLogin()
		}
		return authReqdEvent(salt), nil

	case line == "@RSYNCD: OK":
		s.state = StateReceiver
		return okEvent(), nil

	case line == "@RSYNCD: EXIT":
		return exitEvent(), nil

	case strings.HasPrefix(line, "@ERROR: "):
		msg := strings.TrimPrefix(line, "@ERROR: ")
		ev := errorEvent("Protocol error during login: " + msg)
		return ev, s.fail("protocol error during login: %s", msg)

	default:
		return infoEvent(line), nil
	}
}

// StartRemoteSender implements the client's command-handoff action: cmd's
// first element (the command name) is discarded and the rest is written
// NUL-separated (version >= 30) or newline-separated (older), terminated
// by a double separator. It also flips on incoming multiplex framing for
// version <= 22, preserved for compatibility though outside this engine's
// supported version range.
func (s *Session) StartRemoteSender(cmd []string) error {
	if err := s.checkNotFatal(); err != nil {
		return err
	}
	if len(cmd) == 0 {
		return s.fail("start_remote_sender: empty command")
	}

	sep := byte('\n')
	if s.ProtocolVersion >= 30 {
		sep = 0
	}

	for _, arg := range cmd[1:] {
		s.WriteBuf.Append([]byte(arg)...)
		s.WriteBuf.Append(sep)
	}
	s.WriteBuf.Append(sep)

	if s.ProtocolVersion <= 22 {
		s.MultiplexEnabled = true
	}
	return nil
}
