package converter

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swbatch/internal/scanner"
	"github.com/desertthunder/swbatch/internal/shared"
	"golang.org/x/time/rate"
)

// Opts configures a batch conversion run.
type Opts struct {
	// SkipExisting skips tasks whose target is already newer than the source
	// without touching the session.
	SkipExisting bool

	// OnProgress, when set, is invoked before and after each task.
	OnProgress ProgressFunc

	// Throttle, when set, paces document opens. Skipped tasks are not
	// throttled.
	Throttle *rate.Limiter
}

// Engine sequences tasks through a single conversion session.
//
// Tasks run strictly sequentially, in input order, on the calling goroutine:
// the automation interface underneath is single-threaded-affine, so the whole
// batch must be driven from one thread of control. Front ends that want a
// responsive UI run ConvertBatch on a worker goroutine and bridge progress
// back over a channel.
type Engine struct {
	session *Session
	logger  *log.Logger
}

// NewEngine creates an Engine over the given session.
func NewEngine(session *Session, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{session: session, logger: logger}
}

// ConvertBatch converts tasks in order over one shared session.
//
// The session is connected once for the whole batch and released on every
// exit path; connecting per task would be prohibitively slow. A connection
// failure aborts before any task runs and produces no partial results.
// Per-task open and save failures are recorded in that task's result and the
// batch continues. Results come back in input order. Cancelling ctx stops
// the batch between tasks; a conversion in progress cannot be safely aborted.
func (e *Engine) ConvertBatch(ctx context.Context, tasks []scanner.Task, opts Opts) ([]Result, error) {
	if err := e.session.Connect(ctx); err != nil {
		return nil, err
	}
	defer e.session.Disconnect()

	total := len(tasks)
	results := make([]Result, 0, total)
	e.logger.Info("starting batch", "tasks", total, "skip_existing", opts.SkipExisting)

	for i, task := range tasks {
		current := i + 1

		if opts.SkipExisting && !task.NeedsConversion() {
			result := Result{Task: task, Status: StatusSkipped, Message: "output is up to date"}
			results = append(results, result)
			e.notify(opts.OnProgress, current, total, task, &result.Status)
			continue
		}

		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("batch interrupted: %w", err)
		}

		e.notify(opts.OnProgress, current, total, task, nil)

		if opts.Throttle != nil {
			if err := opts.Throttle.Wait(ctx); err != nil {
				return results, fmt.Errorf("batch interrupted: %w", err)
			}
		}

		result := e.session.ConvertSingle(task)
		results = append(results, result)
		e.notify(opts.OnProgress, current, total, task, &result.Status)
	}

	return results, nil
}

func (e *Engine) notify(fn ProgressFunc, current, total int, task scanner.Task, status *Status) {
	if fn == nil {
		return
	}
	fn(current, total, task, status)
}
