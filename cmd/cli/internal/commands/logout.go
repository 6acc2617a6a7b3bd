package commands

import (
	"context"
	"fmt"
)

type LogoutCmd struct {
	All bool `help:"Also invalidate sessions on every other device"`
}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(globals)
	if err != nil {
		return err
	}

	rt.sess.Logout(ctx, l.All)
	fmt.Println("Logged out")

	return nil
}
