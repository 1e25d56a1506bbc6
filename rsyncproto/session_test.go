// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncproto

import (
	"testing"

	_ "github.com/nrdvana/go-rsync-protocol/rsyncdigest/md5digest"
	"github.com/nrdvana/go-rsync-protocol/rsyncwire"
)

func feed(s *Session, data string) {
	s.ReadBuf.Append([]byte(data)...)
}

func TestDaemonClientHandshakeScenario(t *testing.T) {
	s, err := StartDaemonClient(nil, "AllTheData", "", "")
	if err != nil {
		t.Fatal(err)
	}

	feed(s, "@RSYNCD: 30.0\n@RSYNCD: OK\n")

	ev, err := s.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID != EventProtocol || ev.Int != 30 {
		t.Fatalf("first event = %+v, want PROTOCOL 30", ev)
	}

	ev, err = s.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID != EventOK {
		t.Fatalf("second event = %+v, want OK", ev)
	}

	got := string(s.WriteBuf.Bytes())
	want := "@RSYNCD: 30.0\nAllTheData\n"
	if got != want {
		t.Fatalf("write buffer = %q, want %q", got, want)
	}
}

func TestDaemonClientAuthScenario(t *testing.T) {
	s, err := StartDaemonClient(nil, "AllTheData", "user", "pass")
	if err != nil {
		t.Fatal(err)
	}

	feed(s, "@RSYNCD: 30.0\n@RSYNCD: AUTHREQD qwerty12345\n@RSYNCD: OK\n")

	var events []Event
	for {
		ev, err := s.Parse()
		if err != nil {
			t.Fatal(err)
		}
		if ev.ID == EventNone {
			break
		}
		events = append(events, ev)
		// OK hands the session to the binary phase, where Parse is not valid.
		if ev.ID == EventOK {
			break
		}
	}

	if len(events) != 2 || events[0].ID != EventProtocol || events[0].Int != 30 || events[1].ID != EventOK {
		t.Fatalf("events = %+v, want [PROTOCOL 30, OK]", events)
	}

	got := string(s.WriteBuf.Bytes())
	want := "@RSYNCD: 30.0\nAllTheData\nuser Zp77fT8TRrZ+9A9JFNT/UA\n"
	if got != want {
		t.Fatalf("write buffer = %q, want %q", got, want)
	}
}

func TestDaemonClientMotdAndRejectScenario(t *testing.T) {
	s, err := StartDaemonClient(nil, "AllTheData", "", "")
	if err != nil {
		t.Fatal(err)
	}
	feed(s, "@RSYNCD: 30.0\n")
	if _, err := s.Parse(); err != nil {
		t.Fatal(err)
	}

	feed(s, "Welcome to the module.\nPlease behave.\nHave a nice day.\n@RSYNCD: EXIT\n")

	var events []Event
	for {
		ev, err := s.Parse()
		if err != nil {
			t.Fatal(err)
		}
		if ev.ID == EventNone {
			break
		}
		events = append(events, ev)
	}

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4: %+v", len(events), events)
	}
	for _, ev := range events[:3] {
		if ev.ID != EventInfo {
			t.Errorf("event %+v: want INFO", ev)
		}
	}
	if events[3].ID != EventExit {
		t.Errorf("last event %+v: want EXIT", events[3])
	}
}

func TestDaemonClientHandshakeRejectsOldVersion(t *testing.T) {
	s, err := StartDaemonClient(nil, "mod", "", "")
	if err != nil {
		t.Fatal(err)
	}
	feed(s, "@RSYNCD: 28.0\n")

	ev, err := s.Parse()
	if err == nil {
		t.Fatal("expected error for negotiated version below minimum")
	}
	if ev.ID != EventError {
		t.Fatalf("got event %+v, want ERROR", ev)
	}
	if !s.IsFatal() {
		t.Fatal("session should be Fatal after a below-minimum version negotiation")
	}
}

func TestDaemonServerFullNegotiation(t *testing.T) {
	s := StartDaemonServer(nil)

	if got := string(s.WriteBuf.Bytes()); got != "@RSYNCD: 31.0\n" {
		t.Fatalf("initial banner = %q", got)
	}
	s.WriteBuf.Discard()

	feed(s, "@RSYNCD: 30.0\n")
	ev, err := s.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID != EventProtocol || ev.Int != 30 {
		t.Fatalf("got %+v", ev)
	}

	feed(s, "AllTheData\n")
	ev, err = s.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID != EventModule || ev.Str != "AllTheData" {
		t.Fatalf("got %+v", ev)
	}

	if err := s.SendAuthChallenge("qwerty12345"); err != nil {
		t.Fatal(err)
	}
	feed(s, "user Zp77fT8TRrZ+9A9JFNT/UA\n")
	ev, err = s.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID != EventAuth || ev.Str != "user" {
		t.Fatalf("got %+v", ev)
	}
	if s.state != StateDaemonServerNegotiateModule {
		t.Fatalf("expected pop back to NegotiateModule, got %s", s.state)
	}

	s.SendOK()

	feed(s, "--server\x00-vlogDtpr\x00.\x00/dest\x00\x00")
	ev, err = s.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID != EventCommand {
		t.Fatalf("got %+v", ev)
	}
	if !s.Options.GetBool("links") || !s.Options.GetBool("owner") {
		t.Fatalf("options not applied from command argv: %+v", s.Options)
	}
}

func TestDaemonServerCheckAuthEmptyPopIsFatal(t *testing.T) {
	s := StartDaemonServer(nil)
	if err := s.popState(); err == nil {
		t.Fatal("expected error popping an empty state stack")
	}
	if !s.IsFatal() {
		t.Fatal("empty pop should be fatal")
	}
}

func TestSumHeadRoundTrip(t *testing.T) {
	h := NullGenerator{}.Generate(123456)
	buf := rsyncwire.NewBuffer()
	h.Pack(buf)
	got, err := UnpackSumHead(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}
