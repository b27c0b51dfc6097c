package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/swbatch/internal/formats"
)

// writeFile creates a file with parent directories as needed.
func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestScan(t *testing.T) {
	t.Run("parts only by default, lock files skipped", func(t *testing.T) {
		input := t.TempDir()
		output := t.TempDir()
		writeFile(t, filepath.Join(input, "a.sldprt"))
		writeFile(t, filepath.Join(input, "b.sldasm"))
		writeFile(t, filepath.Join(input, "~$a.sldprt"))
		writeFile(t, filepath.Join(input, "notes.txt"))

		s := New(Opts{InputDir: input, OutputDir: output})
		tasks, err := s.Scan()
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		if len(tasks) != 1 {
			t.Fatalf("expected 1 task, got %d", len(tasks))
		}
		if filepath.Base(tasks[0].SourcePath) != "a.sldprt" {
			t.Errorf("expected a.sldprt, got %s", tasks[0].SourcePath)
		}
	})

	t.Run("one task per document and format", func(t *testing.T) {
		input := t.TempDir()
		output := t.TempDir()
		writeFile(t, filepath.Join(input, "a.sldprt"))
		writeFile(t, filepath.Join(input, "b.sldprt"))

		s := New(Opts{
			InputDir:  input,
			OutputDir: output,
			Formats:   []formats.ExportFormat{formats.STL, formats.ThreeMF},
		})
		tasks, err := s.Scan()
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		if len(tasks) != 4 {
			t.Fatalf("expected 4 tasks, got %d", len(tasks))
		}
		// Formats for one document are adjacent, documents in walk order.
		if tasks[0].Format != formats.STL || tasks[1].Format != formats.ThreeMF {
			t.Errorf("expected stl then 3mf for first document, got %v %v", tasks[0].Format, tasks[1].Format)
		}
	})

	t.Run("assemblies included when requested", func(t *testing.T) {
		input := t.TempDir()
		output := t.TempDir()
		writeFile(t, filepath.Join(input, "a.sldprt"))
		writeFile(t, filepath.Join(input, "b.sldasm"))

		s := New(Opts{
			InputDir:        input,
			OutputDir:       output,
			InputExtensions: formats.SourceExtensions(),
		})
		tasks, err := s.Scan()
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
	})

	t.Run("output mirrors the source tree", func(t *testing.T) {
		input := t.TempDir()
		output := t.TempDir()
		writeFile(t, filepath.Join(input, "sub", "deep", "part.sldprt"))

		s := New(Opts{InputDir: input, OutputDir: output})
		tasks, err := s.Scan()
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if len(tasks) != 1 {
			t.Fatalf("expected 1 task, got %d", len(tasks))
		}

		want := filepath.Join(output, "sub", "deep", "part.stl")
		if tasks[0].OutputPath() != want {
			t.Errorf("expected %s, got %s", want, tasks[0].OutputPath())
		}
	})

	t.Run("flatten collapses subdirectories", func(t *testing.T) {
		input := t.TempDir()
		output := t.TempDir()
		writeFile(t, filepath.Join(input, "sub", "part.sldprt"))

		s := New(Opts{InputDir: input, OutputDir: output, Flatten: true})
		tasks, err := s.Scan()
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		want := filepath.Join(output, "part.stl")
		if tasks[0].OutputPath() != want {
			t.Errorf("expected %s, got %s", want, tasks[0].OutputPath())
		}
	})

	t.Run("flatten collisions map to the same target", func(t *testing.T) {
		input := t.TempDir()
		output := t.TempDir()
		writeFile(t, filepath.Join(input, "one", "part.sldprt"))
		writeFile(t, filepath.Join(input, "two", "part.sldprt"))

		s := New(Opts{InputDir: input, OutputDir: output, Flatten: true})
		tasks, err := s.Scan()
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
		if tasks[0].OutputPath() != tasks[1].OutputPath() {
			t.Errorf("expected colliding targets, got %s and %s", tasks[0].OutputPath(), tasks[1].OutputPath())
		}
	})

	t.Run("deterministic lexicographic order", func(t *testing.T) {
		input := t.TempDir()
		output := t.TempDir()
		writeFile(t, filepath.Join(input, "zz.sldprt"))
		writeFile(t, filepath.Join(input, "aa.sldprt"))
		writeFile(t, filepath.Join(input, "mm.sldprt"))

		s := New(Opts{InputDir: input, OutputDir: output})
		tasks, err := s.Scan()
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		names := []string{}
		for _, task := range tasks {
			names = append(names, filepath.Base(task.SourcePath))
		}
		want := []string{"aa.sldprt", "mm.sldprt", "zz.sldprt"}
		for i := range want {
			if names[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, names)
			}
		}
	})

	t.Run("missing input directory errors", func(t *testing.T) {
		s := New(Opts{InputDir: filepath.Join(t.TempDir(), "absent"), OutputDir: t.TempDir()})
		if _, err := s.Scan(); err == nil {
			t.Fatal("expected error for missing input directory")
		}
	})
}

func TestNeedsConversion(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()
	src := filepath.Join(input, "part.sldprt")
	writeFile(t, src)

	task := Task{
		SourcePath:    src,
		OutputDir:     output,
		Format:        formats.STL,
		InputDir:      input,
		BaseOutputDir: output,
	}

	t.Run("missing target needs conversion", func(t *testing.T) {
		if !task.NeedsConversion() {
			t.Error("expected conversion needed when target is missing")
		}
	})

	writeFile(t, task.OutputPath())
	base := time.Now().Add(-time.Hour)

	t.Run("newer target skips", func(t *testing.T) {
		os.Chtimes(src, base, base)
		os.Chtimes(task.OutputPath(), base.Add(time.Minute), base.Add(time.Minute))
		if task.NeedsConversion() {
			t.Error("expected skip when target is newer than source")
		}
	})

	t.Run("equal mtimes skip", func(t *testing.T) {
		os.Chtimes(src, base, base)
		os.Chtimes(task.OutputPath(), base, base)
		if task.NeedsConversion() {
			t.Error("expected skip when mtimes are equal")
		}
	})

	t.Run("newer source needs conversion", func(t *testing.T) {
		os.Chtimes(src, base.Add(time.Minute), base.Add(time.Minute))
		os.Chtimes(task.OutputPath(), base, base)
		if !task.NeedsConversion() {
			t.Error("expected conversion needed when source is newer")
		}
	})
}

func TestScanPending(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()
	writeFile(t, filepath.Join(input, "fresh.sldprt"))
	writeFile(t, filepath.Join(input, "stale.sldprt"))

	// Give stale.sldprt an up-to-date target.
	writeFile(t, filepath.Join(output, "stale.stl"))
	old := time.Now().Add(-time.Hour)
	os.Chtimes(filepath.Join(input, "stale.sldprt"), old, old)

	s := New(Opts{InputDir: input, OutputDir: output})
	pending, skippable, err := s.ScanPending()
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(pending) != 1 || filepath.Base(pending[0].SourcePath) != "fresh.sldprt" {
		t.Errorf("expected fresh.sldprt pending, got %v", pending)
	}
	if len(skippable) != 1 || filepath.Base(skippable[0].SourcePath) != "stale.sldprt" {
		t.Errorf("expected stale.sldprt skippable, got %v", skippable)
	}
}

func TestRelativePaths(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()
	src := filepath.Join(input, "sub", "part.sldprt")
	writeFile(t, src)

	task := Task{
		SourcePath:    src,
		OutputDir:     filepath.Join(output, "sub"),
		Format:        formats.STL,
		InputDir:      input,
		BaseOutputDir: output,
	}

	if task.RelativeSource() != filepath.Join("sub", "part.sldprt") {
		t.Errorf("unexpected relative source: %s", task.RelativeSource())
	}
	if task.RelativeOutput() != filepath.Join("sub", "part.stl") {
		t.Errorf("unexpected relative output: %s", task.RelativeOutput())
	}

	t.Run("falls back to base name outside the root", func(t *testing.T) {
		outside := Task{SourcePath: src, OutputDir: output, Format: formats.STL, InputDir: t.TempDir(), BaseOutputDir: output}
		if outside.RelativeSource() != "part.sldprt" {
			t.Errorf("expected base name, got %s", outside.RelativeSource())
		}
	})
}
