package main

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swbatch/internal/converter"
	"github.com/desertthunder/swbatch/internal/formats"
	"github.com/desertthunder/swbatch/internal/formatter"
	"github.com/desertthunder/swbatch/internal/history"
	"github.com/desertthunder/swbatch/internal/scanner"
	"github.com/desertthunder/swbatch/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Convert runs a batch conversion over an input tree.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	inputDir := cmd.Args().Get(0)
	outputDir := cmd.Args().Get(1)
	if inputDir == "" || outputDir == "" {
		return fmt.Errorf("%w: usage: swbatch convert INPUT_DIR OUTPUT_DIR", shared.ErrMissingArgument)
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	inputDir, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if err := shared.ValidatePaths(inputDir, outputDir); err != nil {
		return err
	}

	// The convert command takes an explicit format list; the "all" wildcard
	// is rejected here.
	exportFormats, err := formats.ParseFormats(cmd.String("format"), false)
	if err != nil {
		return err
	}
	inputExtensions, err := formats.ParseSourceExtensions(cmd.String("input-format"))
	if err != nil {
		return err
	}

	r.logger.Info("starting batch conversion", "input", inputDir, "output", outputDir)
	r.writePlain("Input:   %s\n", inputDir)
	r.writePlain("Output:  %s\n", outputDir)
	r.writePlain("Formats: %s\n\n", formatList(exportFormats))

	s := scanner.New(scanner.Opts{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		Formats:         exportFormats,
		Flatten:         cmd.Bool("flat"),
		InputExtensions: inputExtensions,
	})

	pending, skippable, err := s.ScanPending()
	if err != nil {
		return err
	}

	r.writePlain("Pending conversion: %d\n", len(pending))
	r.writePlain("Already up to date: %d\n", len(skippable))

	force := cmd.Bool("force")
	tasks := pending
	if force {
		tasks = append(append([]scanner.Task{}, pending...), skippable...)
	}

	if len(tasks) == 0 {
		r.writePlain("\nNothing to convert.\n")
		return nil
	}

	if cmd.Bool("dry-run") {
		r.writePlain("\nTasks:\n")
		for _, task := range tasks {
			r.writePlain("  %s -> %s\n", task.RelativeSource(), task.RelativeOutput())
		}
		return nil
	}

	if !cmd.Bool("yes") {
		if !r.confirm(fmt.Sprintf("Convert %d files?", len(tasks))) {
			r.writePlain("Cancelled.\n")
			return nil
		}
	}

	var throttle *rate.Limiter
	if rps := cmd.Float("throttle"); rps > 0 {
		throttle = rate.NewLimiter(rate.Limit(rps), 1)
	} else if r.config.SolidWorks.ThrottleRPS > 0 {
		throttle = rate.NewLimiter(rate.Limit(r.config.SolidWorks.ThrottleRPS), 1)
	}

	engine := r.newEngine(cmd.Bool("visible") || r.config.SolidWorks.Visible)

	started := time.Now()
	results, err := engine.ConvertBatch(ctx, tasks, converter.Opts{
		SkipExisting: !force,
		OnProgress:   r.printProgress,
		Throttle:     throttle,
	})
	if err != nil {
		r.writePlain("\nError: %v\n", err)
		r.writePlain("Confirm that SolidWorks is installed and can be started.\n")
		return err
	}
	elapsed := time.Since(started)

	stats := converter.Summarize(results)
	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete")
	r.writePlain("Success: %d\n", stats.Success)
	r.writePlain("Skipped: %d\n", stats.Skipped)
	r.writePlain("Failed:  %d\n", stats.Failed)
	r.writePlain("Elapsed: %.1fs\n", elapsed.Seconds())

	if stats.Failed > 0 {
		r.writePlain("\nFailed tasks:\n")
		for _, result := range results {
			if result.Status == converter.StatusFailed || result.Status == converter.StatusOpenFailed {
				r.writePlain("  - %s: %s\n", result.Task.RelativeSource(), result.Message)
			}
		}
	}

	if reportPath := cmd.String("report"); reportPath != "" {
		report := formatter.NewReport(inputDir, outputDir, results)
		if err := formatter.WriteReport(report, reportPath); err != nil {
			r.logger.Error("failed to write report", "path", reportPath, "err", err)
		} else {
			r.writePlain("\nReport written to %s\n", reportPath)
		}
	}

	r.recordRun(inputDir, outputDir, formatList(exportFormats), started, results)

	return nil
}

// printProgress writes per-task progress lines for the CLI.
func (r *Runner) printProgress(current, total int, task scanner.Task, status *converter.Status) {
	if status == nil {
		r.writePlain("[%d/%d] %s -> %s ...\n", current, total, task.RelativeSource(), strings.ToUpper(string(task.Format)))
		return
	}
	switch *status {
	case converter.StatusSuccess:
		r.writePlain("[%d/%d] ✓ %s\n", current, total, task.RelativeOutput())
	case converter.StatusSkipped:
		r.writePlain("[%d/%d] - %s (up to date)\n", current, total, task.RelativeOutput())
	case converter.StatusOpenFailed:
		r.writePlain("[%d/%d] ✗ %s (open failed)\n", current, total, task.RelativeSource())
	default:
		r.writePlain("[%d/%d] ✗ %s\n", current, total, task.RelativeSource())
	}
}

// confirm prompts for a y/N answer on the runner's input.
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s [y/N] ", prompt)
	reader := bufio.NewReader(r.input)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// recordRun persists the batch to the history store when one is configured.
// Best effort; history failures never fail a completed conversion.
func (r *Runner) recordRun(inputDir, outputDir, formatSpec string, started time.Time, results []converter.Result) {
	store, err := r.openHistory()
	if err != nil {
		r.logger.Warn("failed to open history store", "err", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	runID, err := store.RecordRun(history.Run{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Formats:    formatSpec,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, results)
	if err != nil {
		r.logger.Warn("failed to record run", "err", err)
		return
	}
	r.logger.Debug("recorded run", "id", runID)
}

func formatList(list []formats.ExportFormat) string {
	tokens := make([]string, 0, len(list))
	for _, f := range list {
		tokens = append(tokens, string(f))
	}
	return strings.Join(tokens, ",")
}

func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Batch convert SolidWorks documents",
		ArgsUsage: "INPUT_DIR OUTPUT_DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output formats, comma separated: stl, 3mf",
				Value:   "stl",
			},
			&cli.StringFlag{
				Name:  "input-format",
				Usage: "Source documents to scan: sldprt, sldasm or all",
				Value: "sldprt",
			},
			&cli.BoolFlag{
				Name:  "flat",
				Usage: "Discard the directory structure, write all outputs to one directory",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"F"},
				Usage:   "Reconvert even when the target is up to date",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Preview the tasks without converting",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
			&cli.BoolFlag{
				Name:  "visible",
				Usage: "Show the SolidWorks window during conversion",
			},
			&cli.FloatFlag{
				Name:  "throttle",
				Usage: "Document opens per second, 0 disables pacing",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a report to this path (.json, .csv or text)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: r.Convert,
	}
}
