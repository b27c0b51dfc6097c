package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/swbatch/internal/shared"
	"github.com/desertthunder/swbatch/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI starts the interactive terminal interface. Logs are redirected to a
// file so they do not corrupt the alternate screen.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logPath := cmd.String("log-file")
	logger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	r.SetLogger(logger)

	engine := r.newEngine(r.config.SolidWorks.Visible)
	model := ui.NewModel(ctx, engine, r.config, configFile)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI exited with error: %w", err)
	}
	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive conversion interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Path for log output while the TUI is running",
				Value: "swbatch.log",
			},
		},
		Action: r.TUI,
	}
}
