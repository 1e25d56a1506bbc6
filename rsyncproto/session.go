// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package rsyncproto implements the rsync daemon-wire handshake, auth,
// and command-transfer state machine as a sans-I/O engine: a Session owns
// a read buffer and a write buffer and nothing else. Callers Append
// inbound bytes, call Parse in a loop, act on the Event it returns, call
// Session's action methods to queue outbound bytes, and flush the write
// buffer on whatever transport they like.
package rsyncproto

import (
	"fmt"

	"github.com/nrdvana/go-rsync-protocol/rsyncdigest"
	"github.com/nrdvana/go-rsync-protocol/rsyncopts"
	"github.com/nrdvana/go-rsync-protocol/rsyncwire"
)

// ErrSessionFatal wraps the error that drove a session into StateFatal;
// callers can test for it with errors.As, but in practice checking
// Session.IsFatal() after any operation is equivalent and usually more
// convenient.
type ErrSessionFatal struct {
	Err error
}

func (e *ErrSessionFatal) Error() string { return "rsyncproto: session fatal: " + e.Err.Error() }
func (e *ErrSessionFatal) Unwrap() error { return e.Err }

// LocalVersion is the highest protocol version this engine speaks.
const LocalVersion = 31

// MinSupportedVersion is the lowest negotiated version this engine
// accepts; spec.md's Non-goals exclude emulating anything older.
const MinSupportedVersion = 29

// Session is the sans-I/O protocol engine. It owns no socket; ReadBuf and
// WriteBuf are the only channel to the outside world.
type Session struct {
	ReadBuf  *rsyncwire.Buffer
	WriteBuf *rsyncwire.Buffer

	Options *rsyncopts.Options

	ProtocolVersion   int
	RemoteVersionText string

	state stateTag
	stack []stateTag

	// Auth scratch fields.
	DaemonModule    string
	Username        string
	Password        string
	Passhash        string
	DaemonChallenge string

	// NameLookup resolves uid/gid to names for file-list entries that
	// need them; nil is fine if numeric_ids is in effect.
	NameLookup rsyncdigest.NameLookup

	// MultiplexEnabled is set by StartRemoteSender when the negotiated
	// version is <= 22, per spec.md §4.4's preserved-for-compatibility
	// note; no supported version (>= 29) ever sets it.
	MultiplexEnabled bool

	fatalErr error
}

// New returns a Session in its initial state, with fresh empty buffers.
func New(opts *rsyncopts.Options) *Session {
	if opts == nil {
		opts = rsyncopts.New()
	}
	return &Session{
		ReadBuf:  rsyncwire.NewBuffer(),
		WriteBuf: rsyncwire.NewBuffer(),
		Options:  opts,
		state:    StateInitial,
	}
}

// State returns the session's current state tag (exported as a String()
// for diagnostics; callers should not switch on its exact representation
// since it carries no stability guarantee across versions).
func (s *Session) State() string { return s.state.String() }

// IsFatal reports whether the session has entered the terminal Fatal
// state. Once it is true, Parse, AnswerAuth and StartRemoteSender return
// an error; the Send* methods do not check the state and still queue
// their bytes.
func (s *Session) IsFatal() bool { return s.state == StateFatal }

func (s *Session) fail(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	s.state = StateFatal
	s.fatalErr = err
	return &ErrSessionFatal{Err: err}
}

func (s *Session) checkNotFatal() error {
	if s.state == StateFatal {
		return &ErrSessionFatal{Err: s.fatalErr}
	}
	return nil
}
