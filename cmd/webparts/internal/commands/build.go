package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/assets"
	"github.com/wolfeidau/webparts/internal/logger"
	"github.com/wolfeidau/webparts/internal/selector"
)

type BuildCmd struct {
	LifecycleFlags `embed:""`
	Template       string `help:"path to a custom index page template" default:"" type:"path"`
	Analyze        bool   `help:"print a bundle size report, always on for the stats lifecycle" default:"false"`
}

func (c *BuildCmd) Run(globals *Globals) error {
	logger.SetupGlobal(globals.Debug)

	sel, err := selectConfig(globals, c.LifecycleFlags)
	if err != nil {
		return err
	}

	log.Info().Str("version", globals.Version).Stringer("lifecycle", sel.lifecycle).Msg("Building")

	config := assets.DefaultConfig(sel.paths.Root)
	config.Template = c.Template
	config.Analyze = c.Analyze || sel.lifecycle == selector.Stats
	config.Stats = os.Stdout

	pipeline, err := assets.New(config, sel.config)
	if err != nil {
		return fmt.Errorf("failed to load assets pipeline: %w", err)
	}
	if err := pipeline.Build(); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	return nil
}
