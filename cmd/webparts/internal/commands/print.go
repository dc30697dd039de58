package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/webparts/internal/logger"
	"gopkg.in/yaml.v3"
)

type PrintCmd struct {
	LifecycleFlags `embed:""`
	Format         string `help:"output format" default:"json" enum:"json,yaml"`

	out io.Writer
}

func (c *PrintCmd) Run(globals *Globals) error {
	logger.SetupGlobal(globals.Debug)

	sel, err := selectConfig(globals, c.LifecycleFlags)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	switch c.Format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(sel.config); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sel.config); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return nil
	}
}
