package render

import (
	"fmt"
	"io"
	"strings"

	"scribe/internal/timeline"
)

// writeSRT renders sequential 1-based cues separated by blank lines, with no
// trailing blank line after the last cue. Empty-text segments are skipped
// without consuming a cue number. Each cue is written whole, separator
// included.
func writeSRT(w io.Writer, segments []timeline.Segment) error {
	index := 1
	for _, seg := range segments {
		text := cleanText(seg.Text)
		if text == "" {
			continue
		}
		var cue strings.Builder
		if index > 1 {
			cue.WriteByte('\n')
		}
		fmt.Fprintf(&cue, "%d\n%s --> %s\n%s\n",
			index,
			SRTTimestamp(seg.Start),
			SRTTimestamp(seg.End),
			cueText(seg.Speaker, text),
		)
		if _, err := io.WriteString(w, cue.String()); err != nil {
			return err
		}
		index++
	}
	return nil
}

// writeVTT renders the WEBVTT header followed by unnumbered cues with a dot
// millisecond separator. A blank line precedes every cue, so the file never
// ends with one.
func writeVTT(w io.Writer, segments []timeline.Segment) error {
	if _, err := io.WriteString(w, "WEBVTT\n"); err != nil {
		return err
	}
	for _, seg := range segments {
		text := cleanText(seg.Text)
		if text == "" {
			continue
		}
		cue := fmt.Sprintf("\n%s --> %s\n%s\n",
			VTTTimestamp(seg.Start),
			VTTTimestamp(seg.End),
			cueText(seg.Speaker, text),
		)
		if _, err := io.WriteString(w, cue); err != nil {
			return err
		}
	}
	return nil
}

func cueText(speaker, text string) string {
	if speaker == "" {
		return text
	}
	var b strings.Builder
	b.WriteString(speaker)
	b.WriteString(": ")
	b.WriteString(text)
	return b.String()
}
