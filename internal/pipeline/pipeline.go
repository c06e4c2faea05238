// Package pipeline orchestrates a transcription run from audio file to
// rendered transcript.
//
// Stages run sequentially on the caller's goroutine: transcribe, optionally
// diarize, align, group, render. Progress is observed inline as engine events
// arrive and written to a side channel, never to the transcript sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"scribe/internal/align"
	"scribe/internal/config"
	"scribe/internal/diarize"
	"scribe/internal/logging"
	"scribe/internal/paragraph"
	"scribe/internal/progress"
	"scribe/internal/render"
	"scribe/internal/timeline"
	"scribe/internal/whisper"
)

// Report summarizes a completed run for the caller and the history store.
type Report struct {
	InputPath    string
	Language     string
	Model        string
	Format       string
	Segments     int
	Speakers     int
	AudioSeconds float64
	WallSeconds  float64
	RTF          float64 // realized wall seconds per audio second
}

// Pipeline executes transcription runs using the configured engines.
type Pipeline struct {
	cfg         *config.Config
	logger      *slog.Logger
	transcriber whisper.Client
	diarizer    diarize.Client
	progressOut io.Writer
	clock       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTranscriber overrides the transcription engine client.
func WithTranscriber(client whisper.Client) Option {
	return func(p *Pipeline) {
		p.transcriber = client
	}
}

// WithDiarizer overrides the diarization engine client.
func WithDiarizer(client diarize.Client) Option {
	return func(p *Pipeline) {
		p.diarizer = client
	}
}

// WithProgressWriter redirects side-channel progress output.
func WithProgressWriter(w io.Writer) Option {
	return func(p *Pipeline) {
		p.progressOut = w
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.clock = now
	}
}

// New constructs a pipeline from validated configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:         cfg,
		logger:      logging.WithComponent(logger, "pipeline"),
		transcriber: whisper.NewCLI(),
		progressOut: os.Stderr,
		clock:       time.Now,
	}
	if cfg.Diarization.Enabled {
		p.diarizer = diarize.NewCLI()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run transcribes one audio file and writes the rendered transcript to out.
// Engine failures are fatal; partial transcripts are never written.
func (p *Pipeline) Run(ctx context.Context, inputPath string, out io.Writer) (*Report, error) {
	if err := p.preflight(inputPath); err != nil {
		return nil, err
	}

	startedAt := p.clock()
	result, err := p.transcribe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	segments := result.Segments
	speakers := 0
	if p.cfg.Diarization.Enabled {
		turns, err := p.runDiarization(ctx, inputPath, result.Metadata.Duration)
		if err != nil {
			return nil, err
		}
		aligner := align.New(p.logger)
		segments = aligner.Assign(segments, turns)
		speakers = countSpeakers(segments)
	}

	if len(segments) == 0 {
		p.logger.Warn("engine produced no segments", logging.String(logging.FieldInput, inputPath))
	}

	doc := render.Document{
		Segments: segments,
		Language: result.Metadata.Language,
		Model:    p.cfg.Whisper.Model,
		Duration: audioSeconds(result),
	}
	opts, err := p.renderOptions()
	if err != nil {
		return nil, err
	}
	if opts.Format == render.FormatText && opts.Grouping == render.GroupParagraphs {
		doc.Paragraphs = paragraph.Group(segments, paragraph.Thresholds{
			MaxGap:     p.cfg.Output.MaxGapSeconds,
			MaxSeconds: p.cfg.Output.MaxParagraphSeconds,
			MinChars:   p.cfg.Output.MinParagraphChars,
		})
	}
	if err := render.Write(out, doc, opts); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}

	wall := p.clock().Sub(startedAt).Seconds()
	report := &Report{
		InputPath:    inputPath,
		Language:     result.Metadata.Language,
		Model:        p.cfg.Whisper.Model,
		Format:       p.cfg.Output.Format,
		Segments:     len(segments),
		Speakers:     speakers,
		AudioSeconds: doc.Duration,
		WallSeconds:  wall,
	}
	if report.AudioSeconds > 0 && wall > 0 {
		report.RTF = wall / report.AudioSeconds
	}
	p.logger.Info("run complete",
		logging.String(logging.FieldInput, inputPath),
		logging.Int("segments", report.Segments),
		logging.Int("speakers", report.Speakers),
		logging.Float64("audio_seconds", report.AudioSeconds),
		logging.Float64("wall_seconds", report.WallSeconds),
	)
	return report, nil
}

// preflight rejects configuration conflicts and missing inputs before any
// engine starts.
func (p *Pipeline) preflight(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input file %q is a directory", inputPath)
	}
	if p.cfg.Diarization.Enabled {
		if p.diarizer == nil {
			return errors.New("diarization enabled but no diarization engine available")
		}
		if p.cfg.Diarization.Progress == "estimate" && p.cfg.Diarization.RTFOverride <= 0 {
			return errors.New("diarization.progress=estimate requires diarization.rtf_override")
		}
	}
	if _, err := p.renderOptions(); err != nil {
		return err
	}
	return nil
}

func (p *Pipeline) renderOptions() (render.Options, error) {
	format, err := render.ParseFormat(p.cfg.Output.Format)
	if err != nil {
		return render.Options{}, err
	}
	grouping, err := render.ParseGrouping(p.cfg.Output.Grouping)
	if err != nil {
		return render.Options{}, err
	}
	timestamps, err := render.ParseTimestampMode(p.cfg.Output.Timestamps)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{Format: format, Grouping: grouping, Timestamps: timestamps}, nil
}

func (p *Pipeline) transcribe(ctx context.Context, inputPath string) (*whisper.Result, error) {
	p.logger.Info("transcription started",
		logging.String(logging.FieldStage, "transcribe"),
		logging.String(logging.FieldInput, inputPath),
		logging.String("model", p.cfg.Whisper.Model),
	)

	renderer, interval := p.progressSink()
	var tracker *progress.Tracker

	onMetadata := func(meta whisper.Metadata) {
		p.logger.Info("audio metadata received",
			logging.String("language", meta.Language),
			logging.Float64("duration", meta.Duration),
		)
		if renderer != nil {
			tracker = progress.NewTracker("transcribe", interval,
				progress.WithTotal(meta.Duration),
				progress.WithClock(p.clock),
			)
		}
	}
	onSegment := func(seg timeline.Segment) {
		if renderer == nil {
			return
		}
		if tracker == nil {
			tracker = progress.NewTracker("transcribe", interval, progress.WithClock(p.clock))
		}
		if status, ok := tracker.Observe(seg.End); ok {
			renderer.Render(status)
		}
	}

	result, err := p.transcriber.Transcribe(ctx, inputPath, whisper.Options{
		Model:       p.cfg.Whisper.Model,
		Language:    p.cfg.Whisper.Language,
		Device:      p.cfg.Whisper.Device,
		ComputeType: p.cfg.Whisper.ComputeType,
		Task:        p.cfg.Whisper.Task,
		BeamSize:    p.cfg.Whisper.BeamSize,
		VAD:         p.cfg.Whisper.VAD,
	}, onMetadata, onSegment)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if renderer != nil && tracker != nil {
		renderer.Finish(tracker.Final())
	}

	p.logger.Info("transcription finished",
		logging.String(logging.FieldStage, "transcribe"),
		logging.Int("segments", len(result.Segments)),
	)
	return result, nil
}

// runDiarization drives the speaker stage. The engine has no native progress
// signal, so the tracker is advanced from received turns: elapsed mode
// reports wall clock only, estimate mode projects an ETA from the configured
// real-time factor.
func (p *Pipeline) runDiarization(ctx context.Context, inputPath string, duration float64) ([]timeline.SpeakerTurn, error) {
	p.logger.Info("diarization started",
		logging.String(logging.FieldStage, "diarize"),
		logging.String("model", p.cfg.Diarization.Model),
	)

	renderer, interval := p.progressSink()
	if p.cfg.Diarization.Progress == "off" {
		renderer = nil
	}

	var tracker *progress.Tracker
	if renderer != nil {
		opts := []progress.Option{progress.WithClock(p.clock)}
		if p.cfg.Diarization.Progress == "estimate" {
			opts = append(opts,
				progress.WithTotal(duration),
				progress.WithRTF(p.cfg.Diarization.RTFOverride),
			)
		}
		tracker = progress.NewTracker("diarize", interval, opts...)
	}

	onTurn := func(turn timeline.SpeakerTurn) {
		if tracker == nil {
			return
		}
		var status progress.Status
		var ok bool
		if p.cfg.Diarization.Progress == "estimate" {
			status, ok = tracker.Observe(turn.End)
		} else {
			status, ok = tracker.Tick()
		}
		if ok {
			renderer.Render(status)
		}
	}

	turns, err := p.diarizer.Diarize(ctx, inputPath, diarize.Options{
		Model:       p.cfg.Diarization.Model,
		NumSpeakers: p.cfg.Diarization.NumSpeakers,
	}, onTurn)
	if err != nil {
		return nil, fmt.Errorf("diarize: %w", err)
	}
	if tracker != nil {
		renderer.Finish(tracker.Final())
	}

	p.logger.Info("diarization finished",
		logging.String(logging.FieldStage, "diarize"),
		logging.Int("turns", len(turns)),
	)
	return turns, nil
}

func (p *Pipeline) progressSink() (progress.Renderer, time.Duration) {
	if !p.cfg.Progress.Enabled || p.progressOut == nil {
		return nil, 0
	}
	interval := time.Duration(p.cfg.Progress.IntervalSeconds * float64(time.Second))
	return progress.NewRenderer(p.progressOut, p.cfg.Progress.ForcePlain), interval
}

func countSpeakers(segments []timeline.Segment) int {
	seen := make(map[string]struct{})
	for _, seg := range segments {
		if seg.Speaker != "" {
			seen[seg.Speaker] = struct{}{}
		}
	}
	return len(seen)
}

func audioSeconds(result *whisper.Result) float64 {
	if result.Metadata.Duration > 0 {
		return result.Metadata.Duration
	}
	if n := len(result.Segments); n > 0 {
		return result.Segments[n-1].End
	}
	return 0
}
