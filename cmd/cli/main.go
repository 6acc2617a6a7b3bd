package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/classtide/classtide/cmd/cli/internal/commands"
	"github.com/classtide/classtide/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Login   commands.LoginCmd   `cmd:"" help:"Log in with email and password"`
		Status  commands.StatusCmd  `cmd:"" help:"Show session status"`
		Refresh commands.RefreshCmd `cmd:"" help:"Refresh the session token"`
		Logout  commands.LogoutCmd  `cmd:"" help:"Log out"`
		Monitor commands.MonitorCmd `cmd:"" help:"Watch realtime notifications"`
		Send    commands.SendCmd    `cmd:"" help:"Send a message to a room"`
		Debug   bool                `help:"Enable debug mode."`
		Config  string              `help:"Path to config file" type:"path"`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	logger.Setup(cli.Debug)
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Config: cli.Config, Version: version})
	cmd.FatalIfErrorf(err)
}
