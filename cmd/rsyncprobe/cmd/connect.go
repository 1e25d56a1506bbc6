// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package cmd

import (
	"fmt"
	"net"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	_ "github.com/nrdvana/go-rsync-protocol/rsyncdigest/md4digest"
	_ "github.com/nrdvana/go-rsync-protocol/rsyncdigest/md5digest"
	"github.com/nrdvana/go-rsync-protocol/rsynclog"
	"github.com/nrdvana/go-rsync-protocol/rsyncproto"
)

var (
	connectModule   string
	connectUser     string
	connectPassword string
	connectTimeout  time.Duration
)

var connectCmd = &cobra.Command{
	Use:   "connect host:port",
	Short: "negotiate an rsync daemon handshake against host:port and print the events",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnect,
}

func init() {
	connectCmd.Flags().StringVarP(&connectModule, "module", "m", "", "module name to request")
	connectCmd.Flags().StringVarP(&connectUser, "user", "u", "", "username for AUTHREQD challenges")
	connectCmd.Flags().StringVarP(&connectPassword, "password", "p", "", "password for AUTHREQD challenges (prompted interactively if omitted)")
	connectCmd.Flags().DurationVar(&connectTimeout, "timeout", 10*time.Second, "dial timeout")
	connectCmd.MarkFlagRequired("module")
}

// runConnect owns the socket and the read/write pump: it is the only
// place in this command that performs I/O. Everything it decides is
// driven by events the sans-I/O rsyncproto.Session hands back.
func runConnect(cmd *cobra.Command, args []string) error {
	addr := args[0]

	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer conn.Close()

	password := connectPassword
	if connectUser != "" && password == "" {
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	sess, err := rsyncproto.StartDaemonClient(nil, connectModule, connectUser, password)
	if err != nil {
		return fmt.Errorf("starting client session: %w", err)
	}

	readBuf := make([]byte, 4096)
	for {
		if n := sess.WriteBuf.Remaining(); n > 0 {
			if _, err := conn.Write(sess.WriteBuf.Bytes()); err != nil {
				return fmt.Errorf("writing to %s: %w", addr, err)
			}
			sess.WriteBuf.Clear()
		}

		ev, parseErr := sess.Parse()
		for ev.ID != rsyncproto.EventNone {
			if done, err := handleEvent(sess, ev); done {
				return err
			}
			ev, parseErr = sess.Parse()
		}
		if parseErr != nil {
			return fmt.Errorf("protocol error: %w", parseErr)
		}
		if sess.IsFatal() {
			return fmt.Errorf("session entered a fatal state")
		}

		n, err := conn.Read(readBuf)
		if n > 0 {
			sess.ReadBuf.Append(readBuf[:n]...)
		}
		if err != nil {
			return fmt.Errorf("reading from %s: %w", addr, err)
		}
	}
}

// handleEvent reacts to one Event, returning done=true once the
// handshake has reached a terminal outcome.
func handleEvent(sess *rsyncproto.Session, ev rsyncproto.Event) (bool, error) {
	switch ev.ID {
	case rsyncproto.EventProtocol:
		rsynclog.Info("negotiated protocol version %d", ev.Int)
	case rsyncproto.EventAuthReqd:
		password, err := promptPassword()
		if err != nil {
			return true, err
		}
		if err := sess.AnswerAuth(connectUser, password); err != nil {
			return true, fmt.Errorf("answering auth challenge: %w", err)
		}
		rsynclog.Debug("answered auth challenge after interactive password prompt")
	case rsyncproto.EventOK:
		fmt.Println("OK: module accepted, ready to start a transfer")
		return true, nil
	case rsyncproto.EventExit:
		fmt.Println("daemon closed the session (EXIT)")
		return true, nil
	case rsyncproto.EventError:
		return true, fmt.Errorf("daemon error: %s", ev.Str)
	case rsyncproto.EventInfo:
		fmt.Println(ev.Str)
	}
	return false, nil
}

func promptPassword() (string, error) {
	input := liner.NewLiner()
	defer input.Close()
	input.SetCtrlCAborts(true)

	pw, err := input.PasswordPrompt("Password: ")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return pw, nil
}
