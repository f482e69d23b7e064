package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for different metric types.
// Green: found data
// Red: errors
// Yellow: nothing found
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme for metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single metric with colorized label and value.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), scheme.value.Sprintf("%v", value))
}

// formatColorizedScanMetrics formats a scan summary with color coding.
// Format: "templates: N, dates: N, files: N, errors: N"
func formatColorizedScanMetrics(s ScanSummary) string {
	scheme := newColorScheme()
	var parts []string

	if !s.Signal {
		parts = append(parts, scheme.warn.Sprint("no data found"))
	} else {
		parts = append(parts, formatColorizedMetric("templates", s.Templates, scheme))
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.success.Sprint("dates"), scheme.value.Sprintf("%d", s.Timestamps)))
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.success.Sprint("files"), scheme.value.Sprintf("%d", s.Files)))
	}

	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.fail.Sprint("errors"), scheme.fail.Sprintf("%d", s.Errors)))
	}

	return strings.Join(parts, ", ")
}
