// package scanner walks an input tree and produces one conversion task per
// (source document, output format) pair.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/swbatch/internal/formats"
)

// lockFilePrefix marks transient SolidWorks lock artifacts. They must never be
// treated as source documents.
const lockFilePrefix = "~$"

// Task is one unit of conversion work.
type Task struct {
	SourcePath    string               // absolute path to the source document
	OutputDir     string               // directory the target file is written to
	Format        formats.ExportFormat // requested output format
	InputDir      string               // scan root, used for relative display paths
	BaseOutputDir string               // output root, used for relative display paths
}

// OutputPath returns the target file path: the source stem under OutputDir
// with the format's extension.
func (t Task) OutputPath() string {
	base := filepath.Base(t.SourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(t.OutputDir, stem+t.Format.Extension())
}

// NeedsConversion reports whether the target file is missing or strictly
// older than the source. Each (document, format) pair is evaluated on its own.
func (t Task) NeedsConversion() bool {
	out, err := os.Stat(t.OutputPath())
	if err != nil {
		return true
	}
	src, err := os.Stat(t.SourcePath)
	if err != nil {
		return true
	}
	return src.ModTime().After(out.ModTime())
}

// RelativeSource returns the source path relative to the scan root, for display.
func (t Task) RelativeSource() string {
	if t.InputDir != "" {
		if rel, err := filepath.Rel(t.InputDir, t.SourcePath); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Base(t.SourcePath)
}

// RelativeOutput returns the target path relative to the output root, for display.
func (t Task) RelativeOutput() string {
	if t.BaseOutputDir != "" {
		if rel, err := filepath.Rel(t.BaseOutputDir, t.OutputPath()); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Base(t.OutputPath())
}

func (t Task) String() string {
	state := "pending"
	if !t.NeedsConversion() {
		state = "up to date"
	}
	return fmt.Sprintf("[%s] %s -> %s", state, filepath.Base(t.SourcePath), strings.ToUpper(string(t.Format)))
}

// Opts configures a [Scanner].
type Opts struct {
	InputDir        string
	OutputDir       string
	Formats         []formats.ExportFormat // defaults to STL
	Flatten         bool                   // discard the source directory hierarchy
	InputExtensions map[string]bool        // defaults to parts only
}

// Scanner enumerates source documents under an input directory.
type Scanner struct {
	opts Opts
}

// New creates a Scanner, applying defaults for unset options.
func New(opts Opts) *Scanner {
	if len(opts.Formats) == 0 {
		opts.Formats = []formats.ExportFormat{formats.STL}
	}
	if len(opts.InputExtensions) == 0 {
		opts.InputExtensions = map[string]bool{formats.ExtPart: true}
	}
	return &Scanner{opts: opts}
}

// Scan walks the input directory in lexicographic order and returns every
// conversion task, whether or not its target is up to date. Lock artifacts
// (names starting with "~$") are skipped. When flattening, outputs from
// different subdirectories can collide on the same target path; the
// later-enumerated task wins. That is a documented caveat of flat output,
// not something the scanner papers over.
func (s *Scanner) Scan() ([]Task, error) {
	info, err := os.Stat(s.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory does not exist: %s", s.opts.InputDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", s.opts.InputDir)
	}

	var tasks []Task
	err = filepath.WalkDir(s.opts.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, lockFilePrefix) {
			return nil
		}
		if !s.opts.InputExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		outputDir := s.opts.OutputDir
		if !s.opts.Flatten {
			rel, err := filepath.Rel(s.opts.InputDir, filepath.Dir(path))
			if err != nil {
				return err
			}
			outputDir = filepath.Join(s.opts.OutputDir, rel)
		}

		for _, format := range s.opts.Formats {
			tasks = append(tasks, Task{
				SourcePath:    path,
				OutputDir:     outputDir,
				Format:        format,
				InputDir:      s.opts.InputDir,
				BaseOutputDir: s.opts.OutputDir,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	return tasks, nil
}

// ScanPending partitions the scan result into tasks that need conversion and
// tasks whose targets are already up to date, without converting anything.
func (s *Scanner) ScanPending() (pending []Task, skippable []Task, err error) {
	tasks, err := s.Scan()
	if err != nil {
		return nil, nil, err
	}
	for _, task := range tasks {
		if task.NeedsConversion() {
			pending = append(pending, task)
		} else {
			skippable = append(skippable, task)
		}
	}
	return pending, skippable, nil
}
