package config

const (
	defaultDataDir             = "~/.local/share/scribe"
	defaultFormat              = "text"
	defaultGrouping            = "paragraphs"
	defaultTimestamps          = "off"
	defaultMaxGapSeconds       = 1.25
	defaultMaxParagraphSeconds = 30.0
	defaultMinParagraphChars   = 80
	defaultWhisperModel        = "small"
	defaultWhisperDevice       = "cpu"
	defaultWhisperCompute      = "int8"
	defaultWhisperTask         = "transcribe"
	defaultWhisperBeamSize     = 5
	defaultDiarizationModel    = "pyannote/speaker-diarization-3.1"
	defaultDiarizationProgress = "elapsed"
	defaultProgressInterval    = 5.0
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Output: Output{
			Format:              defaultFormat,
			Grouping:            defaultGrouping,
			Timestamps:          defaultTimestamps,
			MaxGapSeconds:       defaultMaxGapSeconds,
			MaxParagraphSeconds: defaultMaxParagraphSeconds,
			MinParagraphChars:   defaultMinParagraphChars,
		},
		Whisper: Whisper{
			Model:       defaultWhisperModel,
			Device:      defaultWhisperDevice,
			ComputeType: defaultWhisperCompute,
			Task:        defaultWhisperTask,
			BeamSize:    defaultWhisperBeamSize,
		},
		Diarization: Diarization{
			Model:    defaultDiarizationModel,
			Progress: defaultDiarizationProgress,
		},
		Progress: Progress{
			Enabled:         true,
			IntervalSeconds: defaultProgressInterval,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
