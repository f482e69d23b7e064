package display

import (
	"fmt"
	"io"
)

// ProgressIndicator manages multi-step progress display
type ProgressIndicator struct {
	writer  io.Writer
	title   string
	total   int
	current int
	colors  palette
}

// NewProgressIndicator creates a new progress indicator over total steps
func NewProgressIndicator(w io.Writer, title string, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		title:  title,
		total:  total,
		colors: newPalette(colorEnabled(w)),
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "%s:\n", p.title)
}

// Step displays progress for the current item: [N/Total] name
func (p *ProgressIndicator) Step(name string) {
	p.current++
	p.colors.progress.Fprintf(p.writer, "  [%d/%d] %s\n", p.current, p.total, name)
}

// Complete displays the final summary line
func (p *ProgressIndicator) Complete(summary string) {
	p.colors.success.Fprint(p.writer, "✓")
	fmt.Fprintf(p.writer, " %s\n", summary)
}
