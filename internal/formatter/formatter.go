// package formatter writes batch conversion reports in JSON, CSV and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/swbatch/internal/converter"
)

// Report is a serializable summary of one batch conversion.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	InputDir    string        `json:"input_dir"`
	OutputDir   string        `json:"output_dir"`
	Stats       ReportStats   `json:"stats"`
	Results     []ReportEntry `json:"results"`
}

// ReportStats mirrors converter.Stats with JSON tags.
type ReportStats struct {
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ReportEntry is one task's outcome within a report.
type ReportEntry struct {
	Source  string `json:"source"`
	Output  string `json:"output"`
	Format  string `json:"format"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewReport builds a Report from a batch's results.
func NewReport(inputDir, outputDir string, results []converter.Result) Report {
	stats := converter.Summarize(results)
	report := Report{
		GeneratedAt: time.Now(),
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Stats:       ReportStats{Success: stats.Success, Skipped: stats.Skipped, Failed: stats.Failed},
		Results:     make([]ReportEntry, 0, len(results)),
	}
	for _, result := range results {
		report.Results = append(report.Results, ReportEntry{
			Source:  result.Task.RelativeSource(),
			Output:  result.Task.RelativeOutput(),
			Format:  string(result.Task.Format),
			Status:  string(result.Status),
			Message: result.Message,
		})
	}
	return report
}

// ToJSON renders the report as indented JSON.
func (r Report) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// ToCSV renders the report's results as CSV with columns: Source, Output, Format, Status, Message.
func (r Report) ToCSV() ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Source", "Output", "Format", "Status", "Message"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range r.Results {
		record := []string{entry.Source, entry.Output, entry.Format, entry.Status, entry.Message}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToText renders the report as a plain text summary.
func (r Report) ToText() []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Conversion report - %s\n", r.GeneratedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("Input:  %s\n", r.InputDir))
	buf.WriteString(fmt.Sprintf("Output: %s\n", r.OutputDir))
	buf.WriteString(fmt.Sprintf("Success: %d, Skipped: %d, Failed: %d\n\n", r.Stats.Success, r.Stats.Skipped, r.Stats.Failed))

	for i, entry := range r.Results {
		line := fmt.Sprintf("%d. [%s] %s -> %s", i+1, entry.Status, entry.Source, entry.Output)
		if entry.Message != "" {
			line += fmt.Sprintf(" (%s)", entry.Message)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes()
}

// WriteReport writes the report to path, choosing the encoding by the path's
// extension: .json, .csv, or anything else as plain text.
func WriteReport(r Report, path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = r.ToJSON()
	case ".csv":
		data, err = r.ToCSV()
	default:
		data = r.ToText()
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
