package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swbatch/internal/converter"
	"github.com/desertthunder/swbatch/internal/history"
	"github.com/desertthunder/swbatch/internal/shared"
	"github.com/desertthunder/swbatch/internal/solidworks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config        *shared.Config
	logger        *log.Logger
	output        io.Writer
	input         io.Reader
	newAutomation func() converter.Automation
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config        *shared.Config
	Logger        *log.Logger
	Output        io.Writer
	Input         io.Reader
	NewAutomation func() converter.Automation
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.NewAutomation == nil {
		opts.NewAutomation = func() converter.Automation { return solidworks.NewClient() }
	}

	return &Runner{
		config:        opts.Config,
		logger:        opts.Logger,
		output:        opts.Output,
		input:         opts.Input,
		newAutomation: opts.NewAutomation,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		convertCommand, scanCommand, historyCommand, tuiCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger, used by the TUI to redirect logs to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// newEngine builds a conversion engine over a fresh automation client.
func (r *Runner) newEngine(visible bool) *converter.Engine {
	session := converter.NewSession(r.newAutomation(), r.logger, visible)
	return converter.NewEngine(session, r.logger)
}

// openHistory opens the history store when one is configured. Returns nil
// without error when history is disabled.
func (r *Runner) openHistory() (*history.Store, error) {
	if r.config.Database.Path == "" {
		return nil, nil
	}
	return history.Open(r.config.Database.Path)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
