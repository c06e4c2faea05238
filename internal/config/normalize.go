package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// normalize expands paths, applies environment fallbacks, and canonicalizes
// enum and language values. It runs before Validate so validation sees final
// values.
func (c *Config) normalize() error {
	dataDir, err := expandPath(strings.TrimSpace(c.Paths.DataDir))
	if err != nil {
		return err
	}
	c.Paths.DataDir = dataDir

	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Output.Grouping = strings.ToLower(strings.TrimSpace(c.Output.Grouping))
	c.Output.Timestamps = strings.ToLower(strings.TrimSpace(c.Output.Timestamps))
	c.Diarization.Progress = strings.ToLower(strings.TrimSpace(c.Diarization.Progress))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	// Environment fallbacks the original tooling honoured.
	if env := strings.TrimSpace(os.Getenv("WHISPER_MODEL")); env != "" && c.Whisper.Model == defaultWhisperModel {
		c.Whisper.Model = env
	}
	if env := strings.TrimSpace(os.Getenv("WHISPER_LANGUAGE")); env != "" && c.Whisper.Language == "" {
		c.Whisper.Language = env
	}

	if lang := strings.TrimSpace(c.Whisper.Language); lang != "" {
		normalized, err := NormalizeLanguage(lang)
		if err != nil {
			return err
		}
		c.Whisper.Language = normalized
	}

	c.Whisper.Task = strings.ToLower(strings.TrimSpace(c.Whisper.Task))
	c.Whisper.Device = strings.ToLower(strings.TrimSpace(c.Whisper.Device))
	c.Whisper.ComputeType = strings.ToLower(strings.TrimSpace(c.Whisper.ComputeType))
	return nil
}

// NormalizeLanguage canonicalizes a user-supplied language code to its
// primary subtag ("en-US" becomes "en"), which is the form the transcription
// engine expects.
func NormalizeLanguage(value string) (string, error) {
	tag, err := language.Parse(value)
	if err != nil {
		return "", fmt.Errorf("whisper.language: unrecognized language code %q", value)
	}
	base, _ := tag.Base()
	return base.String(), nil
}
