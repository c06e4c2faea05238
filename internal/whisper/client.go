// Package whisper adapts the faster-whisper transcription engine as a
// streaming subprocess.
//
// The engine is a black box behind a helper script that emits JSON lines on
// stdout: one metadata object, then segments in time order, then a done
// marker. Requesting the next line may block for model-inference-bound time;
// that blocking read is the pipeline's only suspension point.
package whisper

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

//go:embed assets/transcribe_stream.py
var helperScript []byte

var commandContext = exec.CommandContext

// Options mirror the engine's decode knobs.
type Options struct {
	Model       string
	Language    string
	Device      string
	ComputeType string
	Task        string
	BeamSize    int
	VAD         bool
}

// Metadata describes the stream before segments arrive.
type Metadata struct {
	Language string
	Duration float64 // total audio seconds; 0 when the engine cannot tell
}

// Result is the fully drained stream.
type Result struct {
	Metadata Metadata
	Segments []timeline.Segment
}

// Client defines transcription engine behaviour.
type Client interface {
	Transcribe(ctx context.Context, audioPath string, opts Options, onMetadata func(Metadata), onSegment func(timeline.Segment)) (*Result, error)
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

// CLI runs the embedded faster-whisper helper script.
type CLI struct {
	python string
}

// NewCLI constructs a client using defaults. SCRIBE_PYTHON overrides the
// interpreter without code changes.
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
	Type     string  `json:"type"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
	Message  string  `json:"message"`
}

// Transcribe launches the helper and drains its segment stream. Callbacks
// fire in arrival order on the caller's goroutine. A mid-stream engine
// failure is fatal: the partial result is discarded and an error returned.
func (c *CLI) Transcribe(ctx context.Context, audioPath string, opts Options, onMetadata func(Metadata), onSegment func(timeline.Segment)) (*Result, error) {
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
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	if opts.Device != "" {
		args = append(args, "--device", opts.Device)
	}
	if opts.ComputeType != "" {
		args = append(args, "--compute-type", opts.ComputeType)
	}
	if opts.Task != "" {
		args = append(args, "--task", opts.Task)
	}
	if opts.BeamSize > 0 {
		args = append(args, "--beam-size", strconv.Itoa(opts.BeamSize))
	}
	if opts.VAD {
		args = append(args, "--vad")
	}

	cmd := commandContext(ctx, c.python, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start transcription engine: %w", err)
	}

	result := &Result{}
	sawDone := false
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line streamLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		switch line.Type {
		case "metadata":
			result.Metadata = Metadata{Language: line.Language, Duration: line.Duration}
			if onMetadata != nil {
				onMetadata(result.Metadata)
			}
		case "segment":
			seg := timeline.Segment{Start: line.Start, End: line.End, Text: strings.TrimSpace(line.Text)}
			result.Segments = append(result.Segments, seg)
			if onSegment != nil {
				onSegment(seg)
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
			return nil, fmt.Errorf("transcription engine failed: %s", lastLine(detail))
		}
		return nil, fmt.Errorf("transcription engine failed: %w", err)
	}
	if !sawDone {
		return nil, errors.New("transcription engine stream ended without completion marker")
	}
	return result, nil
}

func materializeHelper() (string, func(), error) {
	dir, err := os.MkdirTemp("", "scribe-whisper-")
	if err != nil {
		return "", nil, fmt.Errorf("create helper dir: %w", err)
	}
	path := filepath.Join(dir, "transcribe_stream.py")
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
