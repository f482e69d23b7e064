package template

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidLeadtime is returned for leadtime input that is not a
// non-negative number of hours.
var ErrInvalidLeadtime = errors.New("invalid leadtime")

// ErrInvalidTimestamp is returned for timestamp input in none of the accepted
// layouts.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// timestampLayouts are accepted by ParseTimestamp, canonical first.
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006010215",
	"20060102",
}

// Substitute replaces the placeholders of tmpl with fields of ts and with the
// leadtime given in seconds, rendered as whole hours. Wildcards and stray '%'
// characters are left untouched.
func Substitute(tmpl string, ts time.Time, leadtime int64) string {
	tokens, _ := tokenize(tmpl, false)
	ts = ts.UTC()
	hours := int(leadtime / 3600)

	var b strings.Builder
	for _, t := range tokens {
		switch t.placeholder {
		case "":
			b.WriteString(t.literal)
		case Year:
			b.WriteString(Year.pad(ts.Year()))
		case Month:
			b.WriteString(Month.pad(int(ts.Month())))
		case Day:
			b.WriteString(Day.pad(ts.Day()))
		case Hour:
			b.WriteString(Hour.pad(ts.Hour()))
		case Minute:
			b.WriteString(Minute.pad(ts.Minute()))
		case Second:
			b.WriteString(Second.pad(ts.Second()))
		case LeadtimeLong, LeadtimeShort:
			b.WriteString(t.placeholder.pad(hours))
		default:
			b.WriteString(string(t.placeholder))
		}
	}
	return b.String()
}

// ParseTimestamp parses user input in the canonical layout or one of a few
// compact variants. The result is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q: expected %q", ErrInvalidTimestamp, s, TimestampLayout)
}

// ParseLeadtimeHours parses a leadtime given in hours, integral or not.
func ParseLeadtimeHours(s string) (time.Duration, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || h < 0 || math.IsInf(h, 0) || math.IsNaN(h) {
		return 0, fmt.Errorf("%w %q: want a non-negative number of hours", ErrInvalidLeadtime, s)
	}
	return time.Duration(math.Round(h * float64(time.Hour))), nil
}

// SplitPathTemplate splits a path template at its first '%' into the literal
// base directory and the templated remainder.
func SplitPathTemplate(pathTemplate string) (base, rest string) {
	i := strings.IndexByte(pathTemplate, '%')
	if i < 0 {
		return pathTemplate, ""
	}
	return pathTemplate[:i], pathTemplate[i:]
}

// Join appends a file template to a (possibly empty) directory template.
func Join(dir, file string) string {
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir + file
	}
	return dir + "/" + file
}
