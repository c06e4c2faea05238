// Package config loads, normalizes, and validates scribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// WHISPER_MODEL and WHISPER_LANGUAGE. Obtain settings through this package so
// downstream code receives sanitized paths, canonical enum values, and clear
// validation errors before any engine is launched.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Output controls the serializer and the paragraph grouping thresholds.
type Output struct {
	Format              string  `toml:"format"`
	Grouping            string  `toml:"grouping"`
	Timestamps          string  `toml:"timestamps"`
	MaxGapSeconds       float64 `toml:"max_gap_seconds"`
	MaxParagraphSeconds float64 `toml:"max_paragraph_seconds"`
	MinParagraphChars   int     `toml:"min_paragraph_chars"`
}

// Whisper mirrors the transcription engine's decode options.
type Whisper struct {
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	Device      string `toml:"device"`
	ComputeType string `toml:"compute_type"`
	Task        string `toml:"task"`
	BeamSize    int    `toml:"beam_size"`
	VAD         bool   `toml:"vad"`
}

// Diarization controls the optional speaker stage.
type Diarization struct {
	Enabled     bool    `toml:"enabled"`
	Model       string  `toml:"model"`
	NumSpeakers int     `toml:"num_speakers"`
	Progress    string  `toml:"progress"` // off, elapsed, estimate
	RTFOverride float64 `toml:"rtf_override"`
}

// Progress controls status reporting on the side channel.
type Progress struct {
	Enabled         bool    `toml:"enabled"`
	IntervalSeconds float64 `toml:"interval_seconds"`
	ForcePlain      bool    `toml:"force_plain"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scribe.
type Config struct {
	Output      Output      `toml:"output"`
	Whisper     Whisper     `toml:"whisper"`
	Diarization Diarization `toml:"diarization"`
	Progress    Progress    `toml:"progress"`
	Paths       Paths       `toml:"paths"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the default config location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and enum fields canonicalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("scribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory used by the history store.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.DataDir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
