package shared

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateInputDir checks that path names an existing directory.
func ValidateInputDir(path string) error {
	if path == "" {
		return fmt.Errorf("%w: input directory is required", ErrMissingArgument)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: input directory does not exist: %s", ErrInvalidArgument, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: path is not a directory: %s", ErrInvalidArgument, path)
	}
	return nil
}

// ValidateOutputDir checks that path is usable as an output directory. The
// directory does not need to exist; it is created before conversion.
func ValidateOutputDir(path string) error {
	if path == "" {
		return fmt.Errorf("%w: output directory is required", ErrMissingArgument)
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: path exists but is not a directory: %s", ErrInvalidArgument, path)
	}
	return nil
}

// ValidatePaths validates an input/output directory pair. The output directory
// must be distinct from the input root: the tool never writes over source trees.
func ValidatePaths(inputDir, outputDir string) error {
	if err := ValidateInputDir(inputDir); err != nil {
		return err
	}
	if err := ValidateOutputDir(outputDir); err != nil {
		return err
	}
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if in == out {
		return fmt.Errorf("%w: output directory must differ from the input directory", ErrInvalidArgument)
	}
	return nil
}
