// package converter drives a single SolidWorks automation session to convert
// scanned tasks into exchange formats.
//
// The [Engine] sequences tasks through one [Session] per batch and reports
// progress through a caller-supplied [ProgressFunc]. The session boundary is
// the [Automation] interface; the COM-backed implementation lives in
// internal/solidworks and fakes stand in for it in tests.
package converter

import (
	"fmt"

	"github.com/desertthunder/swbatch/internal/scanner"
)

// Status is the outcome of a single conversion task.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"

	// StatusOpenFailed marks failures that happened before any save was
	// attempted. Kept separate from StatusFailed so "document won't open"
	// problems are diagnosable apart from save problems.
	StatusOpenFailed Status = "open_failed"
)

// Result pairs a task with its outcome and an optional diagnostic message.
type Result struct {
	Task        scanner.Task
	Status      Status
	Message     string
	ErrorCode   int
	WarningCode int
}

// Stats aggregates result counts. Failed includes both save failures and open
// failures.
type Stats struct {
	Success int
	Skipped int
	Failed  int
}

// Summarize reduces a result list into aggregate counts. Pure fold; the
// result is independent of ordering and an empty input yields all zeros.
func Summarize(results []Result) Stats {
	var stats Stats
	for _, result := range results {
		switch result.Status {
		case StatusSuccess:
			stats.Success++
		case StatusSkipped:
			stats.Skipped++
		default:
			stats.Failed++
		}
	}
	return stats
}

// Total returns the number of results summarized.
func (s Stats) Total() int {
	return s.Success + s.Skipped + s.Failed
}

// Summary formats the counts for display.
func (s Stats) Summary() string {
	return fmt.Sprintf("success: %d, skipped: %d, failed: %d", s.Success, s.Skipped, s.Failed)
}

// ProgressFunc receives a notification around each task. A nil status means
// the task is about to start; a concrete status means it finished with that
// outcome. The engine never blocks on anything beyond the callback's own
// execution, and has no awareness of what consumes the updates.
type ProgressFunc func(current, total int, task scanner.Task, status *Status)
