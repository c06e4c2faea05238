// Package paragraph folds speaker-tagged segments into coherent paragraphs.
//
// Only the paragraphs sub-mode of text output uses this; every other format
// renders segments directly. The grouper is a single-accumulator state
// machine: each incoming segment either extends the open paragraph or flushes
// it and seeds the next one.
package paragraph

import (
	"strings"
	"unicode/utf8"

	"scribe/internal/timeline"
)

// Thresholds configures the flush heuristics.
type Thresholds struct {
	// MaxGap flushes when the silence before the next segment exceeds this
	// many seconds.
	MaxGap float64
	// MaxSeconds caps a paragraph's span, but only once it has accumulated
	// MinChars of text; shorter paragraphs stay open past the cap so the
	// output never degenerates into fragments.
	MaxSeconds float64
	// MinChars is the minimum accumulated text length, in characters, before
	// the duration cap applies.
	MinChars int
}

// Grouper accumulates segments into paragraphs under the configured
// thresholds. Zero value is not usable; construct with New.
type Grouper struct {
	thresholds Thresholds

	open     bool
	start    float64
	end      float64
	speaker  string
	builder  strings.Builder
	chars    int // accumulated text length in runes, not bytes
	finished []timeline.Paragraph
}

// New constructs a grouper with the given thresholds.
func New(thresholds Thresholds) *Grouper {
	return &Grouper{thresholds: thresholds}
}

// Group runs the full fold over an ordered segment sequence. Concatenated
// paragraph text always equals the concatenated input text in order; grouping
// never drops or reorders anything.
func Group(segments []timeline.Segment, thresholds Thresholds) []timeline.Paragraph {
	g := New(thresholds)
	for _, seg := range segments {
		g.Add(seg)
	}
	return g.Finish()
}

// Add feeds the next segment into the accumulator.
func (g *Grouper) Add(seg timeline.Segment) {
	if !g.open {
		g.seed(seg)
		return
	}
	if g.shouldFlush(seg) {
		g.flush()
		g.seed(seg)
		return
	}
	g.end = seg.End
	text := strings.TrimSpace(seg.Text)
	if text != "" {
		if g.builder.Len() > 0 {
			g.builder.WriteByte(' ')
			g.chars++
		}
		g.builder.WriteString(text)
		g.chars += utf8.RuneCountInString(text)
	}
}

// Finish flushes any open paragraph and returns the accumulated sequence.
// A trailing paragraph is emitted even when it is under MinChars.
func (g *Grouper) Finish() []timeline.Paragraph {
	if g.open {
		g.flush()
	}
	out := g.finished
	g.finished = nil
	return out
}

func (g *Grouper) shouldFlush(next timeline.Segment) bool {
	// A speaker change always splits; paragraphs never mix speakers.
	if next.Speaker != g.speaker {
		return true
	}
	if next.Start-g.end > g.thresholds.MaxGap {
		return true
	}
	if next.End-g.start > g.thresholds.MaxSeconds && g.chars >= g.thresholds.MinChars {
		return true
	}
	return false
}

func (g *Grouper) seed(seg timeline.Segment) {
	g.open = true
	g.start = seg.Start
	g.end = seg.End
	g.speaker = seg.Speaker
	g.builder.Reset()
	text := strings.TrimSpace(seg.Text)
	g.builder.WriteString(text)
	g.chars = utf8.RuneCountInString(text)
}

func (g *Grouper) flush() {
	g.finished = append(g.finished, timeline.Paragraph{
		Start:   g.start,
		End:     g.end,
		Speaker: g.speaker,
		Text:    g.builder.String(),
	})
	g.open = false
	g.builder.Reset()
	g.chars = 0
}
