package converter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swbatch/internal/formats"
	"github.com/desertthunder/swbatch/internal/scanner"
	"github.com/desertthunder/swbatch/internal/shared"
)

// DocumentHandle identifies an open document in the external application.
type DocumentHandle interface {
	// Title returns the document's window title, which the automation API
	// uses to close it.
	Title() string
}

// SaveOutcome is the structured result of the rich save-as call.
type SaveOutcome struct {
	Success  bool
	Errors   int
	Warnings int
}

// Automation is the boundary to the SolidWorks application.
//
// Open returns a nil handle with a nil error when the application refuses the
// document (corrupt file, incompatible version, locked file); that is an
// expected per-task failure, not an error. SaveAsRich fails with
// [shared.ErrRichSaveUnavailable] on installations that predate the
// structured save API; callers fall back to SaveAsLegacy, which only reports
// a boolean. Implementations are single-threaded-affine: every call after
// Connect must come from the goroutine that connected.
type Automation interface {
	Connect(ctx context.Context, visible bool) error
	Open(path string, docType formats.DocType) (DocumentHandle, error)
	SaveAsRich(handle DocumentHandle, path string) (SaveOutcome, error)
	SaveAsLegacy(handle DocumentHandle, path string) (bool, error)
	Close(handle DocumentHandle) error
	Disconnect() error
}

// Session owns at most one live connection to the SolidWorks application.
// Lifecycle is CLOSED -> Connect -> OPEN -> Disconnect -> CLOSED. Sessions
// are not safe for concurrent use; the automation interface must be driven
// from one goroutine for its whole lifetime.
type Session struct {
	automation Automation
	logger     *log.Logger
	visible    bool
	connected  bool
}

// NewSession creates a Session over the given automation boundary.
func NewSession(automation Automation, logger *log.Logger, visible bool) *Session {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Session{automation: automation, logger: logger, visible: visible}
}

// Connect launches or attaches to the SolidWorks application. Failure wraps
// [shared.ErrSessionUnavailable]. Connecting an already-open session is a
// no-op.
func (s *Session) Connect(ctx context.Context) error {
	if s.connected {
		return nil
	}
	if err := s.automation.Connect(ctx, s.visible); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSessionUnavailable, err)
	}
	s.connected = true
	s.logger.Info("connected to SolidWorks", "visible", s.visible)
	return nil
}

// Connected reports whether the session currently holds a live connection.
func (s *Session) Connected() bool {
	return s.connected
}

// Disconnect releases the application connection. Errors are logged, not
// returned: disconnect runs on cleanup paths where an earlier outcome must
// not be overridden.
func (s *Session) Disconnect() {
	if !s.connected {
		return
	}
	if err := s.automation.Disconnect(); err != nil {
		s.logger.Warn("error disconnecting from SolidWorks", "err", err)
	}
	s.connected = false
	s.logger.Info("disconnected from SolidWorks")
}

// ConvertSingle opens a task's source document, exports it to the target
// format, and closes the document again. The document is always closed once
// a handle was returned, and a close failure never overrides the conversion
// outcome already determined.
func (s *Session) ConvertSingle(task scanner.Task) Result {
	if !s.connected {
		return Result{Task: task, Status: StatusFailed, Message: "session not connected"}
	}

	s.logger.Debug("converting", "source", task.RelativeSource(), "format", task.Format)

	if err := os.MkdirAll(task.OutputDir, 0755); err != nil {
		return Result{Task: task, Status: StatusFailed, Message: fmt.Sprintf("failed to create output directory: %v", err)}
	}

	docType, err := formats.DocTypeForPath(task.SourcePath)
	if err != nil {
		return Result{Task: task, Status: StatusOpenFailed, Message: err.Error()}
	}

	handle, err := s.automation.Open(task.SourcePath, docType)
	if err != nil || handle == nil {
		message := fmt.Sprintf("failed to open %s", task.SourcePath)
		if err != nil {
			message = fmt.Sprintf("%s: %v", message, err)
		}
		s.logger.Error("open failed", "source", task.RelativeSource())
		return Result{Task: task, Status: StatusOpenFailed, Message: message}
	}

	defer func() {
		if err := s.automation.Close(handle); err != nil {
			s.logger.Warn("error closing document", "source", task.RelativeSource(), "err", err)
		}
	}()

	return s.export(handle, task)
}

// export runs the rich save-as call, falling back to the legacy boolean API
// on older installations. With the legacy API there is no way to tell why a
// save failed; the diagnostic message notes the degraded path.
func (s *Session) export(handle DocumentHandle, task scanner.Task) Result {
	outputPath := task.OutputPath()

	outcome, err := s.automation.SaveAsRich(handle, outputPath)
	if err != nil {
		if !errors.Is(err, shared.ErrRichSaveUnavailable) {
			s.logger.Error("save failed", "source", task.RelativeSource(), "err", err)
			return Result{Task: task, Status: StatusFailed, Message: fmt.Sprintf("save failed: %v", err)}
		}

		s.logger.Warn("rich save API unavailable, using legacy save", "source", task.RelativeSource())
		ok, legacyErr := s.automation.SaveAsLegacy(handle, outputPath)
		if legacyErr != nil {
			return Result{Task: task, Status: StatusFailed, Message: fmt.Sprintf("legacy save failed: %v", legacyErr)}
		}
		if !ok {
			return Result{Task: task, Status: StatusFailed, Message: "conversion failed (legacy save API reports no detail)"}
		}
		return Result{Task: task, Status: StatusSuccess, Message: "converted via legacy save API"}
	}

	if !outcome.Success {
		s.logger.Error("conversion failed", "source", task.RelativeSource(), "errors", outcome.Errors, "warnings", outcome.Warnings)
		return Result{
			Task:        task,
			Status:      StatusFailed,
			Message:     fmt.Sprintf("conversion failed (error: %d, warning: %d)", outcome.Errors, outcome.Warnings),
			ErrorCode:   outcome.Errors,
			WarningCode: outcome.Warnings,
		}
	}

	s.logger.Info("converted", "source", task.RelativeSource(), "output", task.RelativeOutput())
	return Result{
		Task:        task,
		Status:      StatusSuccess,
		Message:     "converted",
		ErrorCode:   outcome.Errors,
		WarningCode: outcome.Warnings,
	}
}
