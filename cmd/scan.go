package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/swbatch/internal/formats"
	"github.com/desertthunder/swbatch/internal/scanner"
	"github.com/desertthunder/swbatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// scanEntry is the JSON shape for a single scanned task.
type scanEntry struct {
	Source  string `json:"source"`
	Output  string `json:"output"`
	Format  string `json:"format"`
	Pending bool   `json:"pending"`
}

// Scan walks an input tree and reports what a conversion would do,
// without touching SolidWorks.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	inputDir := cmd.Args().Get(0)
	if inputDir == "" {
		return fmt.Errorf("%w: usage: swbatch scan INPUT_DIR [OUTPUT_DIR]", shared.ErrMissingArgument)
	}
	outputDir := cmd.Args().Get(1)
	if outputDir == "" {
		outputDir = inputDir
	}

	inputDir, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if err := shared.ValidateInputDir(inputDir); err != nil {
		return err
	}

	// Scanning is read-only, so the "all" wildcard is allowed here.
	exportFormats, err := formats.ParseFormats(cmd.String("format"), true)
	if err != nil {
		return err
	}
	inputExtensions, err := formats.ParseSourceExtensions(cmd.String("input-format"))
	if err != nil {
		return err
	}

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

	if cmd.Bool("json") {
		entries := make([]scanEntry, 0, len(pending)+len(skippable))
		for _, task := range pending {
			entries = append(entries, scanEntry{
				Source:  task.SourcePath,
				Output:  task.OutputPath(),
				Format:  string(task.Format),
				Pending: true,
			})
		}
		for _, task := range skippable {
			entries = append(entries, scanEntry{
				Source:  task.SourcePath,
				Output:  task.OutputPath(),
				Format:  string(task.Format),
				Pending: false,
			})
		}
		return r.writeJSON(entries, true)
	}

	r.writePlainHeader("Scan: " + inputDir)
	r.writePlain("Formats: %s\n\n", formatList(exportFormats))

	if len(pending) == 0 && len(skippable) == 0 {
		r.writePlain("No SolidWorks documents found.\n")
		return nil
	}

	if len(pending) > 0 {
		r.writePlain("Pending (%d):\n", len(pending))
		for _, task := range pending {
			r.writePlain("  %s -> %s\n", task.RelativeSource(), task.RelativeOutput())
		}
	}
	if len(skippable) > 0 {
		r.writePlain("\nUp to date (%d):\n", len(skippable))
		for _, task := range skippable {
			r.writePlain("  %s\n", task.RelativeOutput())
		}
	}

	return nil
}

func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Preview conversion tasks for an input tree",
		ArgsUsage: "INPUT_DIR [OUTPUT_DIR]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output formats, comma separated: stl, 3mf or all",
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
				Name:  "json",
				Usage: "Emit the task list as JSON",
			},
		},
		Action: r.Scan,
	}
}
