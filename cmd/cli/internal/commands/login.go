package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

type LoginCmd struct {
	Email    string `arg:"" help:"Account email address"`
	Password string `help:"Password (prompted when omitted)" env:"CLASSTIDE_PASSWORD"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(globals)
	if err != nil {
		return err
	}

	password := l.Password
	if password == "" {
		fmt.Print("Password: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	if err := rt.sess.Login(ctx, l.Email, password); err != nil {
		return err
	}

	user := rt.sess.CurrentUser()
	fmt.Printf("Logged in as %s (%s)\n", user.DisplayName(), user.Role)
	fmt.Printf("Session expires at %s\n", rt.sess.Expiry().Local().Format("15:04:05"))

	return nil
}
