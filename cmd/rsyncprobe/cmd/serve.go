// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package cmd

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/nrdvana/go-rsync-protocol/rsynclog"
	"github.com/nrdvana/go-rsync-protocol/rsyncproto"
)

var (
	serveListen string
	serveModule string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "accept one connection and negotiate the daemon-server side of the handshake",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8730", "address to listen on")
	serveCmd.Flags().StringVar(&serveModule, "module", "probe", "the single module name this toy daemon offers")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ln, err := net.Listen("tcp", serveListen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", serveListen, err)
	}
	defer ln.Close()
	rsynclog.Info("listening on %s, module %q", serveListen, serveModule)

	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accepting connection: %w", err)
	}
	defer conn.Close()

	sess := rsyncproto.StartDaemonServer(nil)

	readBuf := make([]byte, 4096)
	for {
		if n := sess.WriteBuf.Remaining(); n > 0 {
			if _, err := conn.Write(sess.WriteBuf.Bytes()); err != nil {
				return fmt.Errorf("writing to client: %w", err)
			}
			sess.WriteBuf.Clear()
		}

		ev, parseErr := sess.Parse()
		for ev.ID != rsyncproto.EventNone {
			done, err := handleServerEvent(sess, ev)
			if done {
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
			return fmt.Errorf("reading from client: %w", err)
		}
	}
}

func handleServerEvent(sess *rsyncproto.Session, ev rsyncproto.Event) (bool, error) {
	switch ev.ID {
	case rsyncproto.EventProtocol:
		rsynclog.Info("client offered protocol version %d", ev.Int)
	case rsyncproto.EventModule:
		rsynclog.Info("client requested module %q", ev.Str)
		if ev.Str != serveModule {
			sess.SendError(fmt.Sprintf("unknown module %q", ev.Str))
			return true, fmt.Errorf("client requested unknown module %q", ev.Str)
		}
		sess.SendOK()
	case rsyncproto.EventCommand:
		rsynclog.Info("client command: %v", ev.Strs)
		fmt.Printf("session ready to relay a transfer (argv=%v)\n", ev.Strs)
		return true, nil
	}
	return false, nil
}
