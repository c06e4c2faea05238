package render

import (
	"fmt"
	"math"
)

// Timestamp formatting shared by every serializer. Rounding happens on total
// milliseconds before the H/M/S split so a cue can never render a ",1000"
// millisecond column.
func splitMillis(seconds float64) (h, m, s, ms int) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Round(seconds * 1000))
	ms = total % 1000
	total /= 1000
	h = total / 3600
	m = (total % 3600) / 60
	s = total % 60
	return h, m, s, ms
}

// SRTTimestamp renders HH:MM:SS,mmm with a comma millisecond separator.
func SRTTimestamp(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// VTTTimestamp renders HH:MM:SS.mmm with a dot millisecond separator.
func VTTTimestamp(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// ShortTimestamp renders mm:ss for text prefixes, rolling into H:MM:SS at an
// hour or more.
func ShortTimestamp(seconds float64) string {
	h, m, s, _ := splitMillis(seconds)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
