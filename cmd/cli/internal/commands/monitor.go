package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/classtide/classtide/internal/notify"
	"github.com/classtide/classtide/internal/realtime"
)

type MonitorCmd struct {
	Rooms []string `help:"Rooms to join on connect"`
}

func (m *MonitorCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(globals)
	if err != nil {
		return err
	}

	if !rt.sess.CheckAuth(ctx) {
		return fmt.Errorf("not logged in")
	}

	user := rt.sess.CurrentUser()
	fmt.Printf("Watching notifications as %s (%s)\n", user.DisplayName(), user.Role)

	transport := realtime.NewWebsocketTransport(rt.cfg.Server.RealtimeURL)
	conn := realtime.NewManager(transport, realtime.IdentityFromSession(rt.sess), nil, rt.cfg.Realtime)
	conn.OnAlert(func(a realtime.Alert) {
		fmt.Printf("[%s] %s\n", a.Level, a.Message)
	})

	relay := notify.NewRelay(notify.NewStore(),
		func() bool { return rt.cfg.InAppAlerts },
		func(title, message string) {
			fmt.Printf("%s: %s\n", title, message)
		})
	detach := relay.Attach(conn)
	defer detach()

	unbind := realtime.Bind(rt.sess, conn, true)
	defer unbind()

	for _, room := range m.Rooms {
		conn.JoinRoom(room)
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("Received interrupt signal, shutting down...")
		cancel()
	}()

	<-ctx.Done()

	fmt.Printf("%d notifications received (%d unread)\n",
		len(relay.Store().All()), relay.Store().UnreadCount())

	return nil
}
