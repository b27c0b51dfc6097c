package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/swbatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recent conversion runs.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("%w: no database path configured", shared.ErrMissingConfig)
	}
	defer store.Close()

	runs, err := store.ListRuns(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		r.writePlain("No recorded runs.\n")
		return nil
	}

	r.writePlainHeader("Conversion History")
	for _, run := range runs {
		r.writePlain("%s  %s\n", run.ID, run.StartedAt.Format("2006-01-02 15:04"))
		r.writePlain("  %s -> %s (%s)\n", run.InputDir, run.OutputDir, run.Formats)
		r.writePlain("  success: %d, skipped: %d, failed: %d\n", run.Success, run.Skipped, run.Failed)
	}
	return nil
}

// HistoryShow prints one run and its per-task results.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.Args().First()
	if runID == "" {
		return fmt.Errorf("%w: usage: swbatch history show RUN_ID", shared.ErrMissingArgument)
	}

	store, err := r.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("%w: no database path configured", shared.ErrMissingConfig)
	}
	defer store.Close()

	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	records, err := store.RunResults(runID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"run": run, "results": records}, true)
	}

	r.writePlainHeader("Run " + run.ID)
	r.writePlain("Input:    %s\n", run.InputDir)
	r.writePlain("Output:   %s\n", run.OutputDir)
	r.writePlain("Formats:  %s\n", run.Formats)
	r.writePlain("Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	r.writePlain("Finished: %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	r.writePlain("Totals:   success: %d, skipped: %d, failed: %d\n", run.Success, run.Skipped, run.Failed)

	if len(records) > 0 {
		r.writePlain("\nResults:\n")
		for _, record := range records {
			line := fmt.Sprintf("  [%s] %s", record.Status, record.SourcePath)
			if record.Message != "" {
				line += " - " + record.Message
			}
			r.writePlain("%s\n", line)
		}
	}
	return nil
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded conversion runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Maximum number of runs to show",
						Value:   10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit runs as JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:      "show",
				Usage:     "Show one run with its per-task results",
				ArgsUsage: "RUN_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the run as JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}
