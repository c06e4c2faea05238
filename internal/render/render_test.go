package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"scribe/internal/render"
	"scribe/internal/timeline"
)

func TestTimestampRoundTrip(t *testing.T) {
	if got := render.SRTTimestamp(125.4); got != "00:02:05,400" {
		t.Fatalf("SRT timestamp: got %q", got)
	}
	if got := render.VTTTimestamp(125.4); got != "00:02:05.400" {
		t.Fatalf("VTT timestamp: got %q", got)
	}
	if got := render.ShortTimestamp(125.4); got != "02:05" {
		t.Fatalf("short timestamp: got %q", got)
	}
}

func TestTimestampMillisecondCarry(t *testing.T) {
	// 1.9996s rounds to 2000ms; the carry must land in the seconds column,
	// never render as ,1000.
	if got := render.SRTTimestamp(1.9996); got != "00:00:02,000" {
		t.Fatalf("expected carry into seconds, got %q", got)
	}
	if got := render.SRTTimestamp(-3); got != "00:00:00,000" {
		t.Fatalf("expected negative clamp, got %q", got)
	}
	if got := render.VTTTimestamp(3661.5); got != "01:01:01.500" {
		t.Fatalf("unexpected hour timestamp: %q", got)
	}
}

func TestShortTimestampHourForm(t *testing.T) {
	if got := render.ShortTimestamp(3725); got != "1:02:05" {
		t.Fatalf("expected hour rollover, got %q", got)
	}
}

func TestWriteSRT(t *testing.T) {
	segments := []timeline.Segment{
		{Start: 0, End: 2.5, Text: " hello  there "},
		{Start: 3, End: 4, Text: "   "},
		{Start: 4, End: 6, Text: "again", Speaker: "SPEAKER_01"},
	}
	var buf bytes.Buffer
	err := render.Write(&buf, render.Document{Segments: segments}, render.Options{Format: render.FormatSRT})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:02,500\nhello there\n\n" +
		"2\n00:00:04,000 --> 00:00:06,000\nSPEAKER_01: again\n"
	if buf.String() != want {
		t.Fatalf("unexpected SRT output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteVTT(t *testing.T) {
	segments := []timeline.Segment{
		{Start: 0, End: 1.25, Text: "one"},
		{Start: 1.25, End: 2, Text: "two", Speaker: "SPEAKER_00"},
	}
	var buf bytes.Buffer
	err := render.Write(&buf, render.Document{Segments: segments}, render.Options{Format: render.FormatVTT})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := "WEBVTT\n\n" +
		"00:00:00.000 --> 00:00:01.250\none\n\n" +
		"00:00:01.250 --> 00:00:02.000\nSPEAKER_00: two\n"
	if buf.String() != want {
		t.Fatalf("unexpected VTT output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestSubtitleOutputEndsWithSingleNewline(t *testing.T) {
	segments := []timeline.Segment{{Start: 0, End: 1, Text: "only cue"}}
	for _, format := range []render.Format{render.FormatSRT, render.FormatVTT} {
		var buf bytes.Buffer
		if err := render.Write(&buf, render.Document{Segments: segments}, render.Options{Format: format}); err != nil {
			t.Fatalf("Write %s failed: %v", format, err)
		}
		out := buf.String()
		if !strings.HasSuffix(out, "only cue\n") || strings.HasSuffix(out, "\n\n") {
			t.Fatalf("%s output must end with exactly one newline: %q", format, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	doc := render.Document{
		Segments: []timeline.Segment{
			{Start: 0, End: 2, Text: "hello", Speaker: "SPEAKER_00"},
			{Start: 2, End: 4, Text: "world"},
			{Start: 4, End: 5, Text: "  "},
		},
		Language: "en",
		Model:    "small",
		Duration: 5,
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, doc, render.Options{Format: render.FormatJSON}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var parsed struct {
		Language string  `json:"language"`
		Model    string  `json:"model"`
		Duration float64 `json:"duration"`
		Segments []struct {
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Speaker string  `json:"speaker"`
			Text    string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if parsed.Language != "en" || parsed.Model != "small" || parsed.Duration != 5 {
		t.Fatalf("unexpected metadata: %+v", parsed)
	}
	if len(parsed.Segments) != 2 {
		t.Fatalf("expected blank segment filtered, got %d segments", len(parsed.Segments))
	}
	if parsed.Segments[0].Speaker != "SPEAKER_00" || parsed.Segments[1].Speaker != "" {
		t.Fatalf("unexpected speakers: %+v", parsed.Segments)
	}
	if strings.Contains(buf.String(), `"speaker": ""`) {
		t.Fatalf("expected empty speaker omitted from JSON: %s", buf.String())
	}
}

func TestWriteTextParagraphs(t *testing.T) {
	doc := render.Document{
		Paragraphs: []timeline.Paragraph{
			{Start: 0, End: 24, Speaker: "Alice", Text: "first  paragraph"},
			{Start: 26, End: 40, Speaker: "", Text: "second paragraph"},
		},
	}

	var buf bytes.Buffer
	opts := render.Options{Format: render.FormatText, Grouping: render.GroupParagraphs, Timestamps: render.TimestampsStart}
	if err := render.Write(&buf, doc, opts); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "[00:00] Alice: first paragraph\n\n[00:26] second paragraph\n"
	if buf.String() != want {
		t.Fatalf("unexpected text output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteTextRangeTimestamps(t *testing.T) {
	doc := render.Document{
		Paragraphs: []timeline.Paragraph{{Start: 0, End: 125.4, Text: "block"}},
	}
	var buf bytes.Buffer
	opts := render.Options{Format: render.FormatText, Grouping: render.GroupParagraphs, Timestamps: render.TimestampsRange}
	if err := render.Write(&buf, doc, opts); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != "[00:00–02:05] block\n" {
		t.Fatalf("unexpected range output: %q", buf.String())
	}
}

func TestWriteTextSegmentsUnsetSpeakerHasNoPrefix(t *testing.T) {
	doc := render.Document{
		Segments: []timeline.Segment{
			{Start: 0, End: 1, Text: "tagged", Speaker: "SPEAKER_00"},
			{Start: 1, End: 2, Text: "untagged"},
		},
	}
	var buf bytes.Buffer
	opts := render.Options{Format: render.FormatText, Grouping: render.GroupSegments, Timestamps: render.TimestampsOff}
	if err := render.Write(&buf, doc, opts); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != "SPEAKER_00: tagged\nuntagged\n" {
		t.Fatalf("unexpected segment lines: %q", buf.String())
	}
}

func TestWriteTextNone(t *testing.T) {
	doc := render.Document{
		Segments: []timeline.Segment{
			{Start: 0, End: 1, Text: " one ", Speaker: "A"},
			{Start: 1, End: 2, Text: "two"},
		},
	}
	var buf bytes.Buffer
	opts := render.Options{Format: render.FormatText, Grouping: render.GroupNone, Timestamps: render.TimestampsRange}
	if err := render.Write(&buf, doc, opts); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != "one two\n" {
		t.Fatalf("expected single flat line without labels, got %q", buf.String())
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := render.ParseFormat("yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if got, err := render.ParseFormat(" SRT "); err != nil || got != render.FormatSRT {
		t.Fatalf("expected srt parse, got %v / %v", got, err)
	}
	if _, err := render.ParseGrouping("lines"); err == nil {
		t.Fatal("expected error for unknown grouping")
	}
	if _, err := render.ParseTimestampMode("both"); err == nil {
		t.Fatal("expected error for unknown timestamp mode")
	}
}
