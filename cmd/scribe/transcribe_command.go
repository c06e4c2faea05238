package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/history"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
)

// Seam for tests; production code always builds the real pipeline.
var newPipeline = pipeline.New

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath       string
		format           string
		languageFlag     string
		model            string
		device           string
		computeType      string
		task             string
		beamSize         int
		vad              bool
		diarizeFlag      bool
		diarizationModel string
		numSpeakers      int
		diarizeProgress  string
		diarizeRTF       float64
		grouping         string
		timestamps       string
		noProgress       bool
		plainProgress    bool
		progressInterval float64
		noHistory        bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Long: `Transcribe an audio file and write the assembled transcript to stdout
or to --output. Progress and logs go to stderr so redirected output stays
clean. With --diarize each segment is attributed to a speaker.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// Flags override the file config for this run only.
			cfg := *base
			flags := cmd.Flags()
			if flags.Changed("format") {
				cfg.Output.Format = strings.ToLower(strings.TrimSpace(format))
			}
			if flags.Changed("group") {
				cfg.Output.Grouping = strings.ToLower(strings.TrimSpace(grouping))
			}
			if flags.Changed("timestamps") {
				cfg.Output.Timestamps = strings.ToLower(strings.TrimSpace(timestamps))
			}
			if flags.Changed("language") {
				normalized, err := config.NormalizeLanguage(languageFlag)
				if err != nil {
					return err
				}
				cfg.Whisper.Language = normalized
			}
			if flags.Changed("model") {
				cfg.Whisper.Model = strings.TrimSpace(model)
			}
			if flags.Changed("device") {
				cfg.Whisper.Device = strings.ToLower(strings.TrimSpace(device))
			}
			if flags.Changed("compute-type") {
				cfg.Whisper.ComputeType = strings.ToLower(strings.TrimSpace(computeType))
			}
			if flags.Changed("task") {
				cfg.Whisper.Task = strings.ToLower(strings.TrimSpace(task))
			}
			if flags.Changed("beam-size") {
				cfg.Whisper.BeamSize = beamSize
			}
			if flags.Changed("vad") {
				cfg.Whisper.VAD = vad
			}
			if flags.Changed("diarize") {
				cfg.Diarization.Enabled = diarizeFlag
			}
			if flags.Changed("diarization-model") {
				cfg.Diarization.Model = strings.TrimSpace(diarizationModel)
			}
			if flags.Changed("num-speakers") {
				cfg.Diarization.NumSpeakers = numSpeakers
			}
			if flags.Changed("diarization-progress") {
				cfg.Diarization.Progress = strings.ToLower(strings.TrimSpace(diarizeProgress))
			}
			if flags.Changed("diarization-rtf") {
				cfg.Diarization.RTFOverride = diarizeRTF
			}
			if noProgress {
				cfg.Progress.Enabled = false
			}
			if plainProgress {
				cfg.Progress.ForcePlain = true
			}
			if flags.Changed("progress-interval") {
				cfg.Progress.IntervalSeconds = progressInterval
			}
			if cfg.Output.Format != "text" && (flags.Changed("group") || flags.Changed("timestamps")) {
				return fmt.Errorf("--group and --timestamps apply only to text output (format is %q)", cfg.Output.Format)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			errOut := cmd.ErrOrStderr()
			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: errOut,
			})
			if err != nil {
				return err
			}

			inputPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			sink := cmd.OutOrStdout()
			target := strings.TrimSpace(outputPath)
			var outFile *os.File
			if target != "" && target != "-" {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return err
				}
				outFile, err = os.Create(expanded)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer outFile.Close()
				sink = outFile
				target = expanded
			} else {
				target = ""
			}

			p := newPipeline(&cfg, logger, pipeline.WithProgressWriter(errOut))
			report, err := p.Run(cmd.Context(), inputPath, sink)
			if err != nil {
				// Already-flushed sink content stays in place; the non-zero
				// exit marks the run as failed.
				if outFile != nil {
					outFile.Close()
				}
				return err
			}
			if outFile != nil {
				if err := outFile.Close(); err != nil {
					return fmt.Errorf("close output file: %w", err)
				}
			}

			if !noHistory {
				recordHistory(cmd.Context(), &cfg, logger, report, target)
			}

			fmt.Fprintln(errOut, summarize(report, target))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript to this file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, srt, vtt, or json")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Spoken language code (default: auto-detect)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Whisper model size or name")
	cmd.Flags().StringVar(&device, "device", "", "Inference device (cpu, cuda, auto)")
	cmd.Flags().StringVar(&computeType, "compute-type", "", "Model compute type (int8, float16, ...)")
	cmd.Flags().StringVar(&task, "task", "", "transcribe or translate")
	cmd.Flags().IntVar(&beamSize, "beam-size", 0, "Decoder beam size")
	cmd.Flags().BoolVar(&vad, "vad", false, "Filter non-speech with voice activity detection")
	cmd.Flags().BoolVar(&diarizeFlag, "diarize", false, "Attribute segments to speakers")
	cmd.Flags().StringVar(&diarizationModel, "diarization-model", "", "Diarization model name")
	cmd.Flags().IntVar(&numSpeakers, "num-speakers", 0, "Expected speaker count (0 = auto)")
	cmd.Flags().StringVar(&diarizeProgress, "diarization-progress", "", "Diarization progress style: off, elapsed, or estimate")
	cmd.Flags().Float64Var(&diarizeRTF, "diarization-rtf", 0, "Wall seconds per audio second, for estimate progress")
	cmd.Flags().StringVar(&grouping, "group", "", "Text grouping: paragraphs, segments, or none")
	cmd.Flags().StringVar(&timestamps, "timestamps", "", "Text timestamp prefix: off, start, or range")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress reporting")
	cmd.Flags().BoolVar(&plainProgress, "plain-progress", false, "Emit self-contained progress lines even on a terminal")
	cmd.Flags().Float64Var(&progressInterval, "progress-interval", 0, "Seconds between progress updates")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording this run in the history database")

	return cmd
}

// recordHistory is best effort: a failed insert never fails the run.
func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, report *pipeline.Report, outputPath string) {
	store, err := history.Open(cfg.Paths.DataDir)
	if err != nil {
		logger.Warn("history unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	_, err = store.Record(ctx, history.Run{
		InputPath:    report.InputPath,
		OutputPath:   outputPath,
		Format:       report.Format,
		Model:        report.Model,
		Language:     report.Language,
		AudioSeconds: report.AudioSeconds,
		WallSeconds:  report.WallSeconds,
		RTF:          report.RTF,
		Speakers:     report.Speakers,
	})
	if err != nil {
		logger.Warn("history record failed", logging.Error(err))
	}
}

func summarize(report *pipeline.Report, outputPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transcribed %s: %d segments", report.InputPath, report.Segments)
	if report.Speakers > 0 {
		fmt.Fprintf(&b, ", %d speakers", report.Speakers)
	}
	fmt.Fprintf(&b, ", %s audio in %s", formatSeconds(report.AudioSeconds), formatSeconds(report.WallSeconds))
	if report.RTF > 0 {
		fmt.Fprintf(&b, " (%.2fx RTF)", report.RTF)
	}
	if outputPath != "" {
		fmt.Fprintf(&b, "\nWrote transcript to %s", outputPath)
	}
	return b.String()
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
