// Package render serializes the assembled transcript as plain text, SRT, VTT,
// or JSON.
//
// All four serializers share one internal model, one timestamp primitive set,
// and one whitespace rule (collapse internal runs, trim edges). Cues and
// paragraphs are written with a single Write each so an interrupted run leaves
// only complete units behind.
package render

import (
	"fmt"
	"io"
	"strings"

	"scribe/internal/timeline"
)

// Format selects the output serializer.
type Format string

const (
	FormatText Format = "text"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatJSON Format = "json"
)

// Grouping selects the plain-text sub-mode.
type Grouping string

const (
	GroupParagraphs Grouping = "paragraphs"
	GroupSegments   Grouping = "segments"
	GroupNone       Grouping = "none"
)

// TimestampMode controls the text prefix on paragraphs and segment lines.
type TimestampMode string

const (
	TimestampsOff   TimestampMode = "off"
	TimestampsStart TimestampMode = "start"
	TimestampsRange TimestampMode = "range"
)

// ParseFormat validates a format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText:
		return FormatText, nil
	case FormatSRT:
		return FormatSRT, nil
	case FormatVTT:
		return FormatVTT, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected text, srt, vtt, or json)", value)
	}
}

// ParseGrouping validates a text grouping name.
func ParseGrouping(value string) (Grouping, error) {
	switch Grouping(strings.ToLower(strings.TrimSpace(value))) {
	case GroupParagraphs:
		return GroupParagraphs, nil
	case GroupSegments:
		return GroupSegments, nil
	case GroupNone:
		return GroupNone, nil
	default:
		return "", fmt.Errorf("unsupported text grouping %q (expected paragraphs, segments, or none)", value)
	}
}

// ParseTimestampMode validates a timestamp mode name.
func ParseTimestampMode(value string) (TimestampMode, error) {
	switch TimestampMode(strings.ToLower(strings.TrimSpace(value))) {
	case TimestampsOff:
		return TimestampsOff, nil
	case TimestampsStart:
		return TimestampsStart, nil
	case TimestampsRange:
		return TimestampsRange, nil
	default:
		return "", fmt.Errorf("unsupported timestamp mode %q (expected off, start, or range)", value)
	}
}

// Document is the assembled transcript handed to a serializer.
type Document struct {
	Segments   []timeline.Segment
	Paragraphs []timeline.Paragraph
	Language   string
	Model      string
	Duration   float64
}

// Options selects serializer and text sub-modes.
type Options struct {
	Format     Format
	Grouping   Grouping
	Timestamps TimestampMode
}

// Write serializes the document in the selected format.
func Write(w io.Writer, doc Document, opts Options) error {
	switch opts.Format {
	case FormatText:
		return writeText(w, doc, opts)
	case FormatSRT:
		return writeSRT(w, doc.Segments)
	case FormatVTT:
		return writeVTT(w, doc.Segments)
	case FormatJSON:
		return writeJSON(w, doc)
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

// cleanText collapses internal whitespace runs and trims the edges.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
