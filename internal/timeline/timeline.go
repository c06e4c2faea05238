// Package timeline defines the transcript data model shared by every stage of
// the assembly pipeline.
//
// Segments arrive from the transcription engine, SpeakerTurns from the
// diarization engine, and Paragraphs are produced by grouping. All three are
// plain values; stages hand them off by copy and never mutate in place, which
// keeps the pipeline race-free while progress reporting runs alongside it.
package timeline

// Segment is one transcribed span of audio. Speaker is empty until the
// aligner tags it; an empty speaker is a valid terminal state (diarization
// disabled or no overlapping turn), not an error.
type Segment struct {
	Start   float64
	End     float64
	Text    string
	Speaker string
}

// Duration returns the segment span in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Overlap returns the length in seconds of the intersection between the
// segment and the interval [start, end), never negative.
func (s Segment) Overlap(start, end float64) float64 {
	lo := s.Start
	if start > lo {
		lo = start
	}
	hi := s.End
	if end < hi {
		hi = end
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// WithSpeaker returns a copy of the segment tagged with the given speaker.
func (s Segment) WithSpeaker(speaker string) Segment {
	s.Speaker = speaker
	return s
}

// SpeakerTurn is one diarization span attributing [Start, End) to a speaker.
type SpeakerTurn struct {
	Start   float64
	End     float64
	Speaker string
}

// Duration returns the turn span in seconds.
func (t SpeakerTurn) Duration() float64 {
	return t.End - t.Start
}

// Paragraph is a contiguous run of segments rendered as one text block.
// Speaker is set only when every constituent segment agrees on one speaker.
type Paragraph struct {
	Start   float64
	End     float64
	Speaker string
	Text    string
}
