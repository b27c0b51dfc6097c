package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/swbatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file and initializes the history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if _, err := os.Stat(path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.writePlain("Wrote %s\n", path)

	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	r.config = config

	store, err := r.openHistory()
	if err != nil {
		return fmt.Errorf("failed to initialize history database: %w", err)
	}
	if store != nil {
		store.Close()
		r.writePlain("Initialized history database at %s\n", config.Database.Path)
	}

	r.writePlain("\nEdit %s to adjust formats and SolidWorks settings.\n", path)
	return nil
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter config file and history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path for the config file",
				Value:   configFile,
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: r.Setup,
	}
}
