package commands

import (
	"context"
	"fmt"
)

type StatusCmd struct{}

func (s *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(globals)
	if err != nil {
		return err
	}

	if !rt.sess.CheckAuth(ctx) {
		fmt.Println("Not logged in")
		return nil
	}

	user := rt.sess.CurrentUser()
	fmt.Printf("Logged in as %s (%s)\n", user.DisplayName(), user.Role)
	fmt.Printf("Session expires at %s\n", rt.sess.Expiry().Local().Format("2006-01-02 15:04:05"))
	if rt.sess.RequiresReauth() {
		fmt.Println("Idle for too long: sensitive actions will require re-authentication")
	}

	return nil
}
