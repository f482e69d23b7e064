package template

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInconsistentMatch is returned when a placeholder that occurs more than
// once in a template captured different values.
var ErrInconsistentMatch = errors.New("inconsistent placeholder values")

// TimestampLayout is the canonical textual form of a timestamp, used as the
// index key.
const TimestampLayout = "2006-01-02 15:04:05"

// Match holds the values captured from one path.
type Match struct {
	pattern *Pattern
	path    string
	values  []string
}

// Path returns the matched path.
func (m *Match) Path() string {
	return m.path
}

// value returns the value captured by the first occurrence of ph.
func (m *Match) value(ph Placeholder) (string, bool) {
	for i, g := range m.pattern.groups {
		if g == ph {
			return m.values[i], true
		}
	}
	return "", false
}

// field returns the integer captured for ph, checking that every occurrence
// agrees. Absent placeholders return def.
func (m *Match) field(ph Placeholder, def int) (int, error) {
	found := false
	var val int
	for i, g := range m.pattern.groups {
		if g != ph {
			continue
		}
		n, err := strconv.Atoi(m.values[i])
		if err != nil {
			return 0, fmt.Errorf("%s value %q: %w", ph, m.values[i], err)
		}
		if found && n != val {
			return 0, fmt.Errorf("%w: %s captured %d and %d in %q", ErrInconsistentMatch, ph, val, n, m.path)
		}
		found, val = true, n
	}
	if !found {
		return def, nil
	}
	return val, nil
}

// Timestamp derives the canonical timestamp from the captured date and time
// fields. Missing year, hour, minute and second fields are zero; missing month
// and day fields are 1 so that the result is still a calendar date. Values
// that do not form a valid date-time (day 32, hour 24) are an error.
func (m *Match) Timestamp() (time.Time, error) {
	var f [len(dateFields)]int
	for i, ph := range dateFields {
		def := 0
		if ph == Month || ph == Day {
			def = 1
		}
		v, err := m.field(ph, def)
		if err != nil {
			return time.Time{}, err
		}
		f[i] = v
	}

	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", f[0], f[1], f[2], f[3], f[4], f[5])
	ts, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time in %q: %w", m.path, err)
	}
	return ts, nil
}

// Leadtime returns the leadtime in seconds captured by the first leadtime
// placeholder, and false when the template has none.
func (m *Match) Leadtime() (int64, bool) {
	for i, g := range m.pattern.groups {
		if !g.IsLeadtime() {
			continue
		}
		hours, err := strconv.ParseInt(m.values[i], 10, 64)
		if err != nil {
			return 0, false
		}
		return 3600 * hours, true
	}
	return 0, false
}

// FormatTimestamp renders t in the canonical layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
