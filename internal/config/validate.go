package config

import (
	"errors"
	"fmt"

	"scribe/internal/render"
)

// Validate ensures the configuration is usable. Conflicts between settings
// are rejected here, before any engine starts.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateDiarization(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if _, err := render.ParseGrouping(c.Output.Grouping); err != nil {
		return fmt.Errorf("output.grouping: %w", err)
	}
	if _, err := render.ParseTimestampMode(c.Output.Timestamps); err != nil {
		return fmt.Errorf("output.timestamps: %w", err)
	}
	if c.Output.MaxGapSeconds <= 0 {
		return errors.New("output.max_gap_seconds must be positive")
	}
	if c.Output.MaxParagraphSeconds <= 0 {
		return errors.New("output.max_paragraph_seconds must be positive")
	}
	if c.Output.MinParagraphChars < 0 {
		return errors.New("output.min_paragraph_chars must be >= 0")
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if c.Whisper.Model == "" {
		return errors.New("whisper.model must be set")
	}
	switch c.Whisper.Task {
	case "transcribe", "translate":
	default:
		return fmt.Errorf("whisper.task must be transcribe or translate, got %q", c.Whisper.Task)
	}
	if c.Whisper.BeamSize <= 0 {
		return errors.New("whisper.beam_size must be positive")
	}
	return nil
}

func (c *Config) validateDiarization() error {
	switch c.Diarization.Progress {
	case "off", "elapsed", "estimate":
	default:
		return fmt.Errorf("diarization.progress must be off, elapsed, or estimate, got %q", c.Diarization.Progress)
	}
	if c.Diarization.RTFOverride < 0 {
		return errors.New("diarization.rtf_override must be >= 0")
	}
	if c.Diarization.RTFOverride > 0 && c.Diarization.Progress != "estimate" {
		return fmt.Errorf("diarization.rtf_override is only used by diarization.progress = \"estimate\" (progress is %q)", c.Diarization.Progress)
	}
	if c.Diarization.NumSpeakers < 0 {
		return errors.New("diarization.num_speakers must be >= 0")
	}
	if c.Diarization.Enabled && c.Diarization.Model == "" {
		return errors.New("diarization.model must be set when diarization.enabled is true")
	}
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.IntervalSeconds <= 0 {
		return errors.New("progress.interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
