package commands

import (
	"context"
	"fmt"
)

type RefreshCmd struct{}

func (r *RefreshCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(globals)
	if err != nil {
		return err
	}

	if !rt.sess.CheckAuth(ctx) {
		return fmt.Errorf("not logged in")
	}

	if err := rt.sess.RefreshSession(ctx); err != nil {
		return err
	}

	fmt.Printf("Session refreshed, expires at %s\n", rt.sess.Expiry().Local().Format("2006-01-02 15:04:05"))

	return nil
}
