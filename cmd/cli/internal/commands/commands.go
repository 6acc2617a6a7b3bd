package commands

import (
	"fmt"

	"github.com/classtide/classtide/internal/api"
	"github.com/classtide/classtide/internal/config"
	"github.com/classtide/classtide/internal/session"
	"github.com/classtide/classtide/internal/tokenstore"
)

type Globals struct {
	Debug   bool
	Config  string
	Version string
}

// runtime wires the shared client stack used by every command.
type runtime struct {
	cfg    config.Config
	tokens *tokenstore.FileStore
	sess   *session.Manager
}

func newRuntime(globals *Globals) (*runtime, error) {
	path := globals.Config
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	tokens, err := tokenstore.NewFileStore("")
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	client := api.New(api.Config{BaseURL: cfg.Server.BaseURL})
	sess := session.NewManager(client, tokens, nil, cfg.Session)

	return &runtime{cfg: cfg, tokens: tokens, sess: sess}, nil
}
