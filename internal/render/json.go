package render

import (
	"encoding/json"
	"io"
)

// jsonDocument is the only format that exposes per-segment structure; JSON
// consumers do their own downstream grouping, so paragraphs are not included.
type jsonDocument struct {
	Language string        `json:"language,omitempty"`
	Model    string        `json:"model,omitempty"`
	Duration float64       `json:"duration"`
	Segments []jsonSegment `json:"segments"`
}

type jsonSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
}

func writeJSON(w io.Writer, doc Document) error {
	out := jsonDocument{
		Language: doc.Language,
		Model:    doc.Model,
		Duration: doc.Duration,
		Segments: make([]jsonSegment, 0, len(doc.Segments)),
	}
	for _, seg := range doc.Segments {
		text := cleanText(seg.Text)
		if text == "" {
			continue
		}
		out.Segments = append(out.Segments, jsonSegment{
			Start:   seg.Start,
			End:     seg.End,
			Speaker: seg.Speaker,
			Text:    text,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
