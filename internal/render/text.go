package render

import (
	"fmt"
	"io"
	"strings"

	"scribe/internal/timeline"
)

func writeText(w io.Writer, doc Document, opts Options) error {
	switch opts.Grouping {
	case GroupParagraphs:
		return writeTextParagraphs(w, doc.Paragraphs, opts.Timestamps)
	case GroupSegments:
		return writeTextSegments(w, doc.Segments, opts.Timestamps)
	case GroupNone:
		return writeTextFlat(w, doc.Segments)
	default:
		return fmt.Errorf("unsupported text grouping %q", opts.Grouping)
	}
}

func writeTextParagraphs(w io.Writer, paragraphs []timeline.Paragraph, mode TimestampMode) error {
	emitted := 0
	for _, para := range paragraphs {
		text := cleanText(para.Text)
		if text == "" {
			continue
		}
		var block strings.Builder
		if emitted > 0 {
			block.WriteByte('\n')
		}
		emitted++
		block.WriteString(textPrefix(para.Start, para.End, para.Speaker, mode))
		block.WriteString(text)
		block.WriteByte('\n')
		if _, err := io.WriteString(w, block.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeTextSegments(w io.Writer, segments []timeline.Segment, mode TimestampMode) error {
	for _, seg := range segments {
		text := cleanText(seg.Text)
		if text == "" {
			continue
		}
		line := textPrefix(seg.Start, seg.End, seg.Speaker, mode) + text + "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeTextFlat concatenates every segment into a single line with no
// timestamps and no speaker labels.
func writeTextFlat(w io.Writer, segments []timeline.Segment) error {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := cleanText(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(parts, " ")+"\n")
	return err
}

func textPrefix(start, end float64, speaker string, mode TimestampMode) string {
	var b strings.Builder
	switch mode {
	case TimestampsStart:
		fmt.Fprintf(&b, "[%s] ", ShortTimestamp(start))
	case TimestampsRange:
		fmt.Fprintf(&b, "[%s–%s] ", ShortTimestamp(start), ShortTimestamp(end))
	}
	if speaker != "" {
		b.WriteString(speaker)
		b.WriteString(": ")
	}
	return b.String()
}
