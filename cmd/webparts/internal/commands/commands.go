package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/env"
	"github.com/wolfeidau/webparts/internal/fragment"
	"github.com/wolfeidau/webparts/internal/project"
	"github.com/wolfeidau/webparts/internal/selector"
)

type Globals struct {
	Debug   bool
	Version string
	Root    string
	Config  string
}

// LifecycleFlags lets a command override the lifecycle read from the environment
type LifecycleFlags struct {
	Lifecycle string `help:"lifecycle to build for (build, stats or anything else for dev), overrides npm_lifecycle_event" default:""`
	Verbose   bool   `help:"log configuration warnings" default:"false"`
}

type selection struct {
	lifecycle selector.Lifecycle
	paths     project.Paths
	config    fragment.Config
}

// selectConfig captures the environment once and runs the selector with it
func selectConfig(globals *Globals, flags LifecycleFlags) (*selection, error) {
	environment, err := env.Capture()
	if err != nil {
		return nil, err
	}

	signal := environment.Signal()
	if flags.Lifecycle != "" {
		signal = flags.Lifecycle
	}
	lc := selector.ParseLifecycle(signal)

	configPath := globals.Config
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(globals.Root, configPath)
	}
	layout, err := project.LoadLayout(configPath, true)
	if err != nil {
		return nil, err
	}

	paths, err := project.ResolvePaths(globals.Root, layout)
	if err != nil {
		return nil, err
	}

	var deps []string
	if lc.Production() {
		deps, err = project.ReadDependencies(paths.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to read vendor dependencies: %w", err)
		}
	}

	log.Debug().
		Str("signal", signal).
		Stringer("lifecycle", lc).
		Str("root", paths.Root).
		Strs("vendor", deps).
		Msg("Selecting configuration")

	var port int
	if lc == selector.Dev {
		port, err = environment.PortNumber()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := selector.Select(lc, selector.Params{
		Paths:        paths,
		Title:        layout.Title,
		Dependencies: deps,
		Host:         environment.Host,
		Port:         port,
		Quiet:        !flags.Verbose,
	})
	if err != nil {
		return nil, err
	}

	return &selection{lifecycle: lc, paths: paths, config: cfg}, nil
}
