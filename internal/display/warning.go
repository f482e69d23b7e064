package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Affected cases or experiments (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning, in yellow on a terminal
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	for i, item := range w.Items {
		b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, item))
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	newPalette(colorEnabled(out)).warning.Fprint(out, b.String())
}

// WarnMissingCases creates a warning for requested cases without definition
func WarnMissingCases(root string, names []string) Warning {
	return Warning{
		Title:      "Could not find cases",
		Message:    fmt.Sprintf("No meta.yaml below %s for:", root),
		Items:      names,
		Suggestion: "run 'dcmdb list' to see the available cases",
	}
}

// WarnMissingExperiments creates a warning for selected experiments a case
// does not define
func WarnMissingExperiments(caseName string, names []string) Warning {
	return Warning{
		Title: fmt.Sprintf("Could not find experiments in case %s", caseName),
		Items: names,
	}
}

// WarnUnavailable creates a warning for experiments without a path template
// for the current host
func WarnUnavailable(caseName, host string, names []string) Warning {
	return Warning{
		Title:      fmt.Sprintf("Experiments of case %s not available on %s", caseName, host),
		Items:      names,
		Suggestion: "add a '" + host + ": {path_template: ...}' entry or select another --host",
	}
}
