// Package progress observes streaming stage activity and decides when a
// status line is worth emitting.
//
// One Tracker exists per stage invocation. It is driven synchronously from
// "element received" events, never by its own timer, so cadence is bounded by
// the engine's emission rate. What to print is the Tracker's job; how to print
// it (self-contained lines vs a single overwritten line) belongs to the
// renderers, which write to the side channel and never touch transcript data.
package progress

import (
	"time"
)

// Status is one structured progress observation ready for rendering.
type Status struct {
	Stage     string
	Elapsed   time.Duration
	Processed float64 // seconds of audio handled so far
	Total     float64 // seconds of audio overall; <= 0 when unknown
	RTF       float64 // wall-clock seconds per audio second; 0 when unknown
	ETA       time.Duration
	HasETA    bool
}

// Fraction returns completion in [0, 1], or -1 when the total is unknown.
func (s Status) Fraction() float64 {
	if s.Total <= 0 {
		return -1
	}
	f := s.Processed / s.Total
	if f > 1 {
		f = 1
	}
	return f
}

// Tracker estimates progress for a single stage.
type Tracker struct {
	stage       string
	total       float64
	interval    time.Duration
	rtfOverride float64
	now         func() time.Time

	startedAt time.Time
	processed float64
	lastEmit  time.Time
	started   bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTotal supplies the known total audio duration in seconds. Without it
// the tracker reports elapsed time only and never fabricates an ETA.
func WithTotal(seconds float64) Option {
	return func(t *Tracker) {
		t.total = seconds
	}
}

// WithRTF supplies a manual real-time-factor override; the measured ratio is
// ignored and ETA uses the override directly.
func WithRTF(rtf float64) Option {
	return func(t *Tracker) {
		if rtf > 0 {
			t.rtfOverride = rtf
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker constructs a tracker for one stage invocation. Interval gates
// emission: Observe reports at most one status per interval of wall clock.
func NewTracker(stage string, interval time.Duration, opts ...Option) *Tracker {
	t := &Tracker{
		stage:    stage,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe records that the stage has processed up to the given audio position
// (seconds). It returns a Status and true when enough wall clock has passed
// since the previous emission; otherwise ok is false and nothing should be
// printed. Processed never regresses even if positions arrive out of order.
func (t *Tracker) Observe(processed float64) (Status, bool) {
	now := t.ensureStarted()
	if processed > t.processed {
		t.processed = processed
	}
	if !t.lastEmit.IsZero() && now.Sub(t.lastEmit) < t.interval {
		return Status{}, false
	}
	t.lastEmit = now
	return t.status(now), true
}

// Tick is Observe without a position update, for stages that only have
// elapsed time to report (diarization without a progress signal).
func (t *Tracker) Tick() (Status, bool) {
	return t.Observe(t.processed)
}

// Final returns a terminal status regardless of the emission interval, with
// processed forced to the total when it is known.
func (t *Tracker) Final() Status {
	now := t.ensureStarted()
	if t.total > 0 && t.processed < t.total {
		t.processed = t.total
	}
	return t.status(now)
}

func (t *Tracker) ensureStarted() time.Time {
	now := t.now()
	if !t.started {
		t.started = true
		t.startedAt = now
	}
	return now
}

func (t *Tracker) status(now time.Time) Status {
	elapsed := now.Sub(t.startedAt)
	status := Status{
		Stage:     t.stage,
		Elapsed:   elapsed,
		Processed: t.processed,
		Total:     t.total,
	}

	// RTF from cumulative elapsed/processed, not the latest burst, so the
	// estimate does not jitter.
	rtf := t.rtfOverride
	if rtf <= 0 && t.processed > 0 && elapsed > 0 {
		rtf = elapsed.Seconds() / t.processed
	}
	status.RTF = rtf

	if t.total > 0 && rtf > 0 {
		remaining := t.total - t.processed
		if remaining < 0 {
			remaining = 0
		}
		status.ETA = time.Duration(remaining * rtf * float64(time.Second))
		status.HasETA = true
	}
	return status
}
