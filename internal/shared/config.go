package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Conversion ConversionConfig `toml:"conversion"`
	SolidWorks SolidWorksConfig `toml:"solidworks"`
	Database   DatabaseConfig   `toml:"database"`
	UI         UIConfig         `toml:"ui"`
}

// ConversionConfig contains default conversion behavior.
type ConversionConfig struct {
	Formats           string `toml:"formats"`            // default output format spec, e.g. "stl" or "stl,3mf"
	InputFormats      string `toml:"input_formats"`      // source document spec: "sldprt", "sldasm" or "all"
	SkipExisting      bool   `toml:"skip_existing"`      // skip targets newer than their source
	PreserveStructure bool   `toml:"preserve_structure"` // mirror the input tree under the output directory
}

// SolidWorksConfig contains settings for the automation session.
type SolidWorksConfig struct {
	Visible     bool    `toml:"visible"`      // show the SolidWorks window during conversion
	ThrottleRPS float64 `toml:"throttle_rps"` // document opens per second, 0 disables pacing
}

// DatabaseConfig contains the history database settings.
type DatabaseConfig struct {
	Path string `toml:"path"` // empty disables run history
}

// UIConfig contains state persisted by the terminal UI.
type UIConfig struct {
	LastInputDir  string `toml:"last_input_dir"`
	LastOutputDir string `toml:"last_output_dir"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to disk. The TUI uses this to
// persist last-used directories between sessions.
func SaveConfig(config *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
