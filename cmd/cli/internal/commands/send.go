package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/classtide/classtide/internal/realtime"
)

type SendCmd struct {
	Room    string        `arg:"" help:"Room ID"`
	Message string        `arg:"" help:"Message content"`
	Type    string        `help:"Message type" default:"text"`
	Wait    time.Duration `help:"How long to wait for the connection" default:"10s"`
}

func (s *SendCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(globals)
	if err != nil {
		return err
	}

	if !rt.sess.CheckAuth(ctx) {
		return fmt.Errorf("not logged in")
	}

	transport := realtime.NewWebsocketTransport(rt.cfg.Server.RealtimeURL)
	conn := realtime.NewManager(transport, realtime.IdentityFromSession(rt.sess), nil, rt.cfg.Realtime)
	defer conn.Disconnect()

	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	deadline := time.Now().Add(s.Wait)
	for !conn.IsConnected() {
		if time.Now().After(deadline) {
			return fmt.Errorf("connection not established within %s", s.Wait)
		}
		time.Sleep(100 * time.Millisecond)
	}

	conn.JoinRoom(s.Room)
	conn.SendMessage(s.Room, s.Message, s.Type)

	fmt.Printf("Message sent to %s\n", s.Room)

	return nil
}
