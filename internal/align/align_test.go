package align_test

import (
	"bytes"
	"strings"
	"testing"

	"scribe/internal/align"
	"scribe/internal/logging"
	"scribe/internal/timeline"
)

func segs(spans ...[2]float64) []timeline.Segment {
	out := make([]timeline.Segment, len(spans))
	for i, span := range spans {
		out[i] = timeline.Segment{Start: span[0], End: span[1], Text: "t"}
	}
	return out
}

func TestAssignPicksDominantTurn(t *testing.T) {
	aligner := align.New(nil)
	segments := segs([2]float64{0, 4}, [2]float64{4, 8}, [2]float64{8, 12})
	turns := []timeline.SpeakerTurn{
		{Start: 0, End: 5, Speaker: "SPEAKER_00"},
		{Start: 5, End: 12, Speaker: "SPEAKER_01"},
	}

	got := aligner.Assign(segments, turns)
	if len(got) != len(segments) {
		t.Fatalf("expected %d segments, got %d", len(segments), len(got))
	}
	want := []string{"SPEAKER_00", "SPEAKER_01", "SPEAKER_01"}
	for i, speaker := range want {
		if got[i].Speaker != speaker {
			t.Errorf("segment %d: expected speaker %q, got %q", i, speaker, got[i].Speaker)
		}
	}
}

func TestAssignTieBreakPrefersEarlierStart(t *testing.T) {
	aligner := align.New(nil)
	segments := segs([2]float64{2, 6})
	// Both turns overlap the segment by exactly 2 seconds.
	turns := []timeline.SpeakerTurn{
		{Start: 0, End: 4, Speaker: "EARLY"},
		{Start: 4, End: 8, Speaker: "LATE"},
	}

	got := aligner.Assign(segments, turns)
	if got[0].Speaker != "EARLY" {
		t.Fatalf("expected tie to go to earlier turn, got %q", got[0].Speaker)
	}
}

func TestAssignLeavesGapsUntagged(t *testing.T) {
	aligner := align.New(nil)
	segments := segs([2]float64{0, 2}, [2]float64{10, 12})
	turns := []timeline.SpeakerTurn{{Start: 0, End: 2, Speaker: "SPEAKER_00"}}

	got := aligner.Assign(segments, turns)
	if got[0].Speaker != "SPEAKER_00" {
		t.Fatalf("expected first segment tagged, got %q", got[0].Speaker)
	}
	if got[1].Speaker != "" {
		t.Fatalf("expected silence-gap segment untagged, got %q", got[1].Speaker)
	}
}

func TestAssignEmptyTurnsLeavesAllUntagged(t *testing.T) {
	aligner := align.New(nil)
	segments := segs([2]float64{0, 2}, [2]float64{2, 4})

	got := aligner.Assign(segments, nil)
	for i, seg := range got {
		if seg.Speaker != "" {
			t.Fatalf("segment %d: expected untagged, got %q", i, seg.Speaker)
		}
	}
}

func TestAssignDoesNotMutateInput(t *testing.T) {
	aligner := align.New(nil)
	segments := segs([2]float64{0, 2})
	turns := []timeline.SpeakerTurn{{Start: 0, End: 2, Speaker: "SPEAKER_00"}}

	_ = aligner.Assign(segments, turns)
	if segments[0].Speaker != "" {
		t.Fatalf("expected input segments untouched, got %q", segments[0].Speaker)
	}
}

func TestAssignDropsMalformedTurns(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}
	aligner := align.New(logger)

	segments := segs([2]float64{0, 4})
	turns := []timeline.SpeakerTurn{
		{Start: 3, End: 3, Speaker: "DEGENERATE"},
		{Start: 2, End: 6, Speaker: "GOOD"},
		{Start: 1, End: 4, Speaker: "OUT_OF_ORDER"},
	}

	got := aligner.Assign(segments, turns)
	if got[0].Speaker != "GOOD" {
		t.Fatalf("expected surviving turn to win, got %q", got[0].Speaker)
	}
	warnings := buf.String()
	if !strings.Contains(warnings, "degenerate") || !strings.Contains(warnings, "out-of-order") {
		t.Fatalf("expected both drop warnings, got %q", warnings)
	}
}

func TestAssignLongInterleave(t *testing.T) {
	aligner := align.New(nil)
	var segments []timeline.Segment
	var turns []timeline.SpeakerTurn
	for i := 0; i < 50; i++ {
		start := float64(i) * 2
		segments = append(segments, timeline.Segment{Start: start, End: start + 2, Text: "x"})
		speaker := "A"
		if i%2 == 1 {
			speaker = "B"
		}
		turns = append(turns, timeline.SpeakerTurn{Start: start, End: start + 2, Speaker: speaker})
	}

	got := aligner.Assign(segments, turns)
	for i, seg := range got {
		want := "A"
		if i%2 == 1 {
			want = "B"
		}
		if seg.Speaker != want {
			t.Fatalf("segment %d: expected %q, got %q", i, want, seg.Speaker)
		}
	}
}
