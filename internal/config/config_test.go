package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to be reported")
	}
	if cfg.Output.Format != "text" || cfg.Output.Grouping != "paragraphs" {
		t.Fatalf("unexpected defaults: %+v", cfg.Output)
	}
	if !cfg.Progress.Enabled || cfg.Progress.IntervalSeconds != 5.0 {
		t.Fatalf("unexpected progress defaults: %+v", cfg.Progress)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[output]
format = "SRT"
grouping = "segments"

[whisper]
language = "en-US"
`)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("expected config file to be found")
	}
	if cfg.Output.Format != "srt" {
		t.Fatalf("expected lowercased format, got %q", cfg.Output.Format)
	}
	if cfg.Whisper.Language != "en" {
		t.Fatalf("expected language normalized to primary subtag, got %q", cfg.Whisper.Language)
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := writeConfig(t, `
[output]
format = "yaml"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRejectsBadLanguage(t *testing.T) {
	path := writeConfig(t, `
[whisper]
language = "not-a-language-code!"
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for unparseable language")
	}
	if !strings.Contains(err.Error(), "whisper.language") {
		t.Fatalf("expected language error, got %v", err)
	}
}

func TestLoadRejectsBadThresholds(t *testing.T) {
	path := writeConfig(t, `
[output]
max_gap_seconds = -1.0
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for negative max_gap_seconds")
	}
}

func TestLoadRejectsBadDiarizationProgress(t *testing.T) {
	path := writeConfig(t, `
[diarization]
progress = "spinner"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown diarization progress mode")
	}
}

func TestLoadRejectsRTFOverrideWithoutEstimate(t *testing.T) {
	path := writeConfig(t, `
[diarization]
progress = "elapsed"
rtf_override = 0.5
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected rejection of rtf_override outside estimate mode")
	}
	if !strings.Contains(err.Error(), "rtf_override") {
		t.Fatalf("expected rtf_override conflict error, got %v", err)
	}
}

func TestLoadAcceptsRTFOverrideWithEstimate(t *testing.T) {
	path := writeConfig(t, `
[diarization]
progress = "estimate"
rtf_override = 0.5
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Diarization.RTFOverride != 0.5 {
		t.Fatalf("unexpected override: %v", cfg.Diarization.RTFOverride)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"en-US", "en"},
		{"RU", "ru"},
		{"de-DE", "de"},
	}
	for _, tc := range cases {
		got, err := config.NormalizeLanguage(tc.in)
		if err != nil {
			t.Fatalf("NormalizeLanguage(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := config.NormalizeLanguage("zz-!!"); err == nil {
		t.Fatal("expected error for invalid tag")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Whisper.Model != "small" {
		t.Fatalf("unexpected sample model: %q", cfg.Whisper.Model)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	path := writeConfig(t, "[paths]\ndata_dir = \""+dir+"\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected data dir created: %v", err)
	}
}
