package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Run("ValidateInputDir", func(t *testing.T) {
		if err := ValidateInputDir(t.TempDir()); err != nil {
			t.Errorf("existing directory should validate: %v", err)
		}

		if err := ValidateInputDir(""); !errors.Is(err, ErrMissingArgument) {
			t.Errorf("empty path should report missing argument, got %v", err)
		}

		if err := ValidateInputDir(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("missing directory should report invalid argument, got %v", err)
		}

		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if err := ValidateInputDir(file); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("regular file should report invalid argument, got %v", err)
		}
	})

	t.Run("ValidateOutputDir", func(t *testing.T) {
		// A missing output directory is fine, it gets created later.
		if err := ValidateOutputDir(filepath.Join(t.TempDir(), "new")); err != nil {
			t.Errorf("missing output directory should validate: %v", err)
		}

		if err := ValidateOutputDir(""); !errors.Is(err, ErrMissingArgument) {
			t.Errorf("empty path should report missing argument, got %v", err)
		}

		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if err := ValidateOutputDir(file); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("regular file should report invalid argument, got %v", err)
		}
	})

	t.Run("ValidatePaths rejects identical roots", func(t *testing.T) {
		dir := t.TempDir()
		if err := ValidatePaths(dir, dir); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("identical input and output should be rejected, got %v", err)
		}

		if err := ValidatePaths(dir, filepath.Join(dir, "out")); err != nil {
			t.Errorf("distinct directories should validate: %v", err)
		}
	})
}
