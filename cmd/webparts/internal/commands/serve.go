package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/assets"
	"github.com/wolfeidau/webparts/internal/devserver"
	"github.com/wolfeidau/webparts/internal/logger"
)

type ServeCmd struct {
	LifecycleFlags `embed:""`
	Template       string `help:"path to a custom index page template" default:"" type:"path"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	logger.SetupGlobal(globals.Debug)

	sel, err := selectConfig(globals, c.LifecycleFlags)
	if err != nil {
		return err
	}

	if !sel.config.DevServer.Configured() {
		log.Warn().Stringer("lifecycle", sel.lifecycle).Msg("Lifecycle has no dev server section, using defaults")
	}

	config := assets.DefaultConfig(sel.paths.Root)
	config.Template = c.Template

	srv, err := devserver.New(config, sel.config)
	if err != nil {
		return fmt.Errorf("failed to create dev server: %w", err)
	}

	return srv.Run(ctx)
}
