// Package diarize adapts the speaker diarization engine as a streaming
// subprocess.
//
// The helper script emits speaker turns as JSON lines in time order. The
// engine exposes no native progress signal, so callers report elapsed time
// per received turn unless they hold an RTF hint. Absence of diarization is
// modeled upstream by never constructing a client.
package diarize

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"scribe/internal/timeline"
)

//go:embed assets/diarize_stream.py
var helperScript []byte

var commandContext = exec.CommandContext

// Options configure the diarization engine.
type Options struct {
	Model       string
	NumSpeakers int // 0 lets the engine decide
}

// Client defines diarization engine behaviour.
type Client interface {
	Diarize(ctx context.Context, audioPath string, opts Options, onTurn func(timeline.SpeakerTurn)) ([]timeline.SpeakerTurn, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithPython overrides the python interpreter used to run the helper.
func WithPython(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.python = binary
		}
	}
}

// CLI runs the embedded diarization helper script.
type CLI struct {
	python string
}

// NewCLI constructs a client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{python: "python3"}
	if env := strings.TrimSpace(os.Getenv("SCRIBE_PYTHON")); env != "" {
		cli.python = env
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

type streamLine struct {
	Type    string  `json:"type"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Diarize launches the helper and drains its turn stream. Turn validation is
// the aligner's job; this adapter only carries what the engine said.
func (c *CLI) Diarize(ctx context.Context, audioPath string, opts Options, onTurn func(timeline.SpeakerTurn)) ([]timeline.SpeakerTurn, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, errors.New("audio path required")
	}

	scriptPath, cleanup, err := materializeHelper()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	args := []string{scriptPath, "--audio", audioPath}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if opts.NumSpeakers > 0 {
		args = append(args, "--num-speakers", strconv.Itoa(opts.NumSpeakers))
	}

	cmd := commandContext(ctx, c.python, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start diarization engine: %w", err)
	}

	var turns []timeline.SpeakerTurn
	sawDone := false
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line streamLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		switch line.Type {
		case "turn":
			turn := timeline.SpeakerTurn{Start: line.Start, End: line.End, Speaker: line.Speaker}
			turns = append(turns, turn)
			if onTurn != nil {
				onTurn(turn)
			}
		case "done":
			sawDone = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read engine output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("diarization engine failed: %s", lastLine(detail))
		}
		return nil, fmt.Errorf("diarization engine failed: %w", err)
	}
	if !sawDone {
		return nil, errors.New("diarization engine stream ended without completion marker")
	}
	return turns, nil
}

func materializeHelper() (string, func(), error) {
	dir, err := os.MkdirTemp("", "scribe-diarize-")
	if err != nil {
		return "", nil, fmt.Errorf("create helper dir: %w", err)
	}
	path := filepath.Join(dir, "diarize_stream.py")
	if err := os.WriteFile(path, helperScript, 0o755); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, fmt.Errorf("write helper script: %w", err)
	}
	return path, func() { _ = os.RemoveAll(dir) }, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Client = (*CLI)(nil)
