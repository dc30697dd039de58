package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/webparts/cmd/webparts/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool   `help:"Enable debug mode."`
		Root    string `help:"Project root directory." default:"." type:"existingdir" env:"WEBPARTS_ROOT"`
		Config  string `help:"Project file, relative to the root." default:"webparts.yaml" env:"WEBPARTS_CONFIG"`
		Version kong.VersionFlag
		Print   commands.PrintCmd `cmd:"" help:"Print the merged configuration"`
		Build   commands.BuildCmd `cmd:"" help:"Build assets for the current lifecycle"`
		Serve   commands.ServeCmd `cmd:"" help:"Start the dev server"`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:   cli.Debug,
		Version: version,
		Root:    cli.Root,
		Config:  cli.Config,
	})
	cmd.FatalIfErrorf(err)
}
