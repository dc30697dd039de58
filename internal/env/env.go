// Package env captures the process environment the build reads, once, at the
// entry point.
package env

import (
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"
)

// Environment is the subset of the process environment used by the build.
type Environment struct {
	// LifecycleEvent is set by npm to the name of the running script.
	LifecycleEvent string `env:"npm_lifecycle_event"`
	// Lifecycle overrides LifecycleEvent when set.
	Lifecycle string `env:"WEBPARTS_LIFECYCLE"`
	Host      string `env:"HOST"`
	// Port is kept as text; only the dev server reads it.
	Port string `env:"PORT"`
}

// Signal returns the lifecycle name, preferring the explicit override.
func (e Environment) Signal() string {
	if e.Lifecycle != "" {
		return e.Lifecycle
	}
	return e.LifecycleEvent
}

// PortNumber parses Port, returning zero when it is unset.
func (e Environment) PortNumber() (int, error) {
	if e.Port == "" {
		return 0, nil
	}
	port, err := strconv.Atoi(e.Port)
	if err != nil {
		return 0, fmt.Errorf("invalid PORT %q: %w", e.Port, err)
	}
	return port, nil
}

// Capture reads the environment.
func Capture() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("error reading environment: %w", err)
	}
	return e, nil
}
