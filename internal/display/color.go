package display

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// palette holds the colours used by Show. Every colour is disabled when
// output is not a terminal.
type palette struct {
	caseName *color.Color
	expName  *color.Color
	label    *color.Color
	warning  *color.Color
	success  *color.Color
	progress *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		caseName: color.New(color.Bold),
		expName:  color.New(color.FgCyan, color.Bold),
		label:    color.New(color.FgHiBlack),
		warning:  color.New(color.FgYellow),
		success:  color.New(color.FgGreen),
		progress: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.caseName, p.expName, p.label, p.warning, p.success, p.progress} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// colorEnabled reports whether w is a terminal that accepts colour.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return !color.NoColor
}
