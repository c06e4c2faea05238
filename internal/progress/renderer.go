package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// Renderer turns structured Status values into side-channel output.
type Renderer interface {
	// Render writes one status observation.
	Render(status Status)
	// Finish marks the end of a stage so the next write starts clean.
	Finish(status Status)
}

// NewRenderer picks the single-line renderer when the side channel is an
// interactive terminal and plain self-contained lines otherwise. forcePlain
// disables the terminal detection (logs piped through a TTY wrapper).
func NewRenderer(w io.Writer, forcePlain bool) Renderer {
	if !forcePlain && writerIsTerminal(w) {
		return NewSingleLine(w)
	}
	return NewPeriodic(w)
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Periodic emits one self-contained line per observation, suitable for
// non-interactive sinks such as redirected stderr or CI logs.
type Periodic struct {
	w io.Writer
}

// NewPeriodic constructs a plain line renderer.
func NewPeriodic(w io.Writer) *Periodic {
	return &Periodic{w: w}
}

func (p *Periodic) Render(status Status) {
	fmt.Fprintln(p.w, FormatStatus(status))
}

func (p *Periodic) Finish(status Status) {
	fmt.Fprintln(p.w, FormatStatus(status))
}

// SingleLine overwrites one terminal line in place using a carriage return.
type SingleLine struct {
	w         io.Writer
	lastWidth int
}

// NewSingleLine constructs an in-place line renderer.
func NewSingleLine(w io.Writer) *SingleLine {
	return &SingleLine{w: w}
}

func (s *SingleLine) Render(status Status) {
	line := FormatStatus(status)
	padding := ""
	if pad := s.lastWidth - len(line); pad > 0 {
		padding = strings.Repeat(" ", pad)
	}
	fmt.Fprintf(s.w, "\r%s%s", line, padding)
	s.lastWidth = len(line)
}

func (s *SingleLine) Finish(status Status) {
	s.Render(status)
	fmt.Fprintln(s.w)
	s.lastWidth = 0
}

// FormatStatus renders one status as a human-readable line.
//
//	transcribe 02:10 elapsed 43.1% (ETA 2m50s, 0.31x RTF)
//	diarize 00:45 elapsed
func FormatStatus(status Status) string {
	var b strings.Builder
	stage := strings.TrimSpace(status.Stage)
	if stage == "" {
		stage = "progress"
	}
	b.WriteString(stage)
	b.WriteByte(' ')
	b.WriteString(formatClock(status.Elapsed))
	b.WriteString(" elapsed")

	if fraction := status.Fraction(); fraction >= 0 {
		fmt.Fprintf(&b, " %.1f%%", fraction*100)
	}

	extras := make([]string, 0, 2)
	if status.HasETA {
		if eta := formatETA(status.ETA); eta != "" {
			extras = append(extras, "ETA "+eta)
		}
	}
	if status.RTF > 0 {
		extras = append(extras, fmt.Sprintf("%.2fx RTF", status.RTF))
	}
	if len(extras) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(extras, ", "))
	}
	return b.String()
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, "")
}
