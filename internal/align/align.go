// Package align merges diarization turns onto transcription segments by
// temporal overlap.
//
// Both inputs are time-ordered, so a single monotonic cursor into the turn
// list gives amortized O(segments + turns) assignment. Malformed turns are a
// quality problem, not a pipeline problem: they are dropped with a warning and
// the run continues with degraded alignment.
package align

import (
	"log/slog"

	"scribe/internal/logging"
	"scribe/internal/timeline"
)

// Aligner assigns speaker labels to segments from diarization turns.
type Aligner struct {
	logger *slog.Logger
}

// New constructs an aligner. A nil logger suppresses malformed-turn warnings.
func New(logger *slog.Logger) *Aligner {
	return &Aligner{logger: logging.WithComponent(logger, "aligner")}
}

// Assign returns a new segment slice of identical length and order, each
// segment tagged with the speaker whose turn maximizes temporal overlap.
// Ties go to the earlier-starting turn. Segments overlapping no turn keep an
// empty speaker; an empty turn list leaves every segment untagged.
func (a *Aligner) Assign(segments []timeline.Segment, turns []timeline.SpeakerTurn) []timeline.Segment {
	turns = a.sanitize(turns)

	out := make([]timeline.Segment, len(segments))
	cursor := 0
	for i, seg := range segments {
		// Turns ending at or before this segment can never overlap it or
		// any later segment.
		for cursor < len(turns) && turns[cursor].End <= seg.Start {
			cursor++
		}

		best := ""
		bestOverlap := 0.0
		for j := cursor; j < len(turns) && turns[j].Start < seg.End; j++ {
			overlap := seg.Overlap(turns[j].Start, turns[j].End)
			if overlap > bestOverlap {
				bestOverlap = overlap
				best = turns[j].Speaker
			}
		}

		if best != "" {
			out[i] = seg.WithSpeaker(best)
		} else {
			out[i] = seg
		}
	}
	return out
}

// sanitize drops degenerate or out-of-order turns so the sweep's ordering
// assumptions hold. Overlapping but well-ordered turns are kept; the
// max-overlap scan already resolves them.
func (a *Aligner) sanitize(turns []timeline.SpeakerTurn) []timeline.SpeakerTurn {
	kept := make([]timeline.SpeakerTurn, 0, len(turns))
	lastStart := -1.0
	for _, turn := range turns {
		if turn.End <= turn.Start {
			a.logger.Warn("dropping degenerate diarization turn",
				logging.Args(
					logging.Float64("start", turn.Start),
					logging.Float64("end", turn.End),
					logging.String("speaker", turn.Speaker),
				)...)
			continue
		}
		if turn.Start < lastStart {
			a.logger.Warn("dropping out-of-order diarization turn",
				logging.Args(
					logging.Float64("start", turn.Start),
					logging.Float64("previous_start", lastStart),
					logging.String("speaker", turn.Speaker),
				)...)
			continue
		}
		lastStart = turn.Start
		kept = append(kept, turn)
	}
	return kept
}
