package template

import "fmt"

// Placeholder is one of the fixed-width tokens a template may carry.
type Placeholder string

// Placeholders understood in path and file templates
const (
	Year          Placeholder = "%Y"
	Month         Placeholder = "%m"
	Day           Placeholder = "%d"
	Hour          Placeholder = "%H"
	Minute        Placeholder = "%M"
	Second        Placeholder = "%S"
	LeadtimeLong  Placeholder = "%LLLL"
	LeadtimeShort Placeholder = "%LLL"
	Wildcard      Placeholder = "*"
)

// vocabulary is tried in order at every template position, so longer tokens
// sharing a prefix must come first.
var vocabulary = [...]Placeholder{
	LeadtimeLong,
	LeadtimeShort,
	Year,
	Month,
	Day,
	Hour,
	Minute,
	Second,
	Wildcard,
}

// dateFields lists the placeholders making up a canonical timestamp, most
// significant first.
var dateFields = [...]Placeholder{Year, Month, Day, Hour, Minute, Second}

// Width returns the number of digits the placeholder stands for. The
// wildcard has no fixed width and returns 0.
func (p Placeholder) Width() int {
	switch p {
	case Year, LeadtimeLong:
		return 4
	case LeadtimeShort:
		return 3
	case Month, Day, Hour, Minute, Second:
		return 2
	default:
		return 0
	}
}

// IsLeadtime reports whether p encodes a forecast leadtime in hours.
func (p Placeholder) IsLeadtime() bool {
	return p == LeadtimeLong || p == LeadtimeShort
}

// expr returns the capturing group replacing p in a compiled pattern.
func (p Placeholder) expr() string {
	if p == Wildcard {
		return "(.*)"
	}
	return fmt.Sprintf(`(\d{%d})`, p.Width())
}

// pad formats v zero-padded to the placeholder width.
func (p Placeholder) pad(v int) string {
	return fmt.Sprintf("%0*d", p.Width(), v)
}

// placeholderAt returns the placeholder starting at byte offset i of s, if any.
func placeholderAt(s string, i int) (Placeholder, bool) {
	for _, p := range vocabulary {
		if len(s)-i >= len(p) && s[i:i+len(p)] == string(p) {
			return p, true
		}
	}
	return "", false
}
