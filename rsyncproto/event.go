// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncproto

// EventID identifies the kind of tagged tuple a Parse call emits.
type EventID string

const (
	// EventNone is the zero value: no complete message was available yet.
	EventNone      EventID = ""
	EventProtocol  EventID = "PROTOCOL"
	EventModule    EventID = "MODULE"
	EventAuth      EventID = "AUTH"
	EventAuthReqd  EventID = "AUTHREQD"
	EventOK        EventID = "OK"
	EventExit      EventID = "EXIT"
	EventInfo      EventID = "INFO"
	EventCommand   EventID = "COMMAND"
	EventError     EventID = "ERROR"
)

// Event is the ephemeral tagged tuple a Parse call returns: an identifier
// plus whichever payload fields apply to it. Events are never retained by
// the Session; a caller that needs history must save the ones it cares
// about itself.
type Event struct {
	ID EventID

	// Int carries PROTOCOL's negotiated version number.
	Int int

	// Str carries MODULE's name, AUTH's username, AUTHREQD's salt, INFO's
	// line and ERROR's message (including the daemon server's
	// invalid-command text).
	Str string

	// Strs carries COMMAND's parsed argv on the daemon server side, and
	// AUTH's passhash as its single element.
	Strs []string
}

func noEvent() Event { return Event{} }

func protocolEvent(version int) Event { return Event{ID: EventProtocol, Int: version} }
func moduleEvent(name string) Event   { return Event{ID: EventModule, Str: name} }
func authReqdEvent(salt string) Event { return Event{ID: EventAuthReqd, Str: salt} }
func okEvent() Event                  { return Event{ID: EventOK} }
func exitEvent() Event                { return Event{ID: EventExit} }
func infoEvent(line string) Event     { return Event{ID: EventInfo, Str: line} }
func errorEvent(msg string) Event     { return Event{ID: EventError, Str: msg} }
func commandEvent(argv []string) Event { return Event{ID: EventCommand, Strs: argv} }
