// Package template compiles path and file templates carrying date, time and
// leadtime placeholders into anchored regular expressions, extracts canonical
// timestamps and leadtimes from matched paths, and substitutes concrete values
// back into templates.
//
// Template syntax is literal text plus the tokens %Y %m %d %H %M %S %LLLL
// %LLL and *. Literal text is matched verbatim, including characters that are
// special in regular expressions. There is no escape for the tokens
// themselves.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrMalformedTemplate is returned when a template uses a '%' that does not
// start a known placeholder.
var ErrMalformedTemplate = errors.New("malformed template")

// Position records the first byte offset of a placeholder in a template.
type Position struct {
	Placeholder Placeholder
	Offset      int
}

// Pattern is the compiled, read-only form of a template.
type Pattern struct {
	template  string
	re        *regexp.Regexp
	groups    []Placeholder // placeholder behind each capture group, in order
	positions []Position    // first occurrence of each placeholder, by offset
}

// token is either a placeholder or a run of literal text.
type token struct {
	placeholder Placeholder
	literal     string
	offset      int
}

// tokenize splits a template into literal runs and placeholders. In strict
// mode a stray '%' is an error; otherwise it is kept as literal text.
func tokenize(tmpl string, strict bool) ([]token, error) {
	var tokens []token
	var lit strings.Builder
	litStart := 0

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{literal: lit.String(), offset: litStart})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); {
		if p, ok := placeholderAt(tmpl, i); ok {
			flush()
			tokens = append(tokens, token{placeholder: p, offset: i})
			i += len(p)
			litStart = i
			continue
		}
		if strict && tmpl[i] == '%' {
			return nil, fmt.Errorf("%w %q: unknown placeholder at offset %d", ErrMalformedTemplate, tmpl, i)
		}
		if lit.Len() == 0 {
			litStart = i
		}
		lit.WriteByte(tmpl[i])
		i++
	}
	flush()

	return tokens, nil
}

// Compile turns a template into an anchored pattern. Every placeholder
// occurrence becomes one capture group, so group order follows the template
// left to right.
func Compile(tmpl string) (*Pattern, error) {
	tokens, err := tokenize(tmpl, true)
	if err != nil {
		return nil, err
	}

	var expr strings.Builder
	expr.WriteString("^")
	p := &Pattern{template: tmpl}
	seen := make(map[Placeholder]bool)

	for _, t := range tokens {
		if t.placeholder == "" {
			expr.WriteString(regexp.QuoteMeta(t.literal))
			continue
		}
		expr.WriteString(t.placeholder.expr())
		p.groups = append(p.groups, t.placeholder)
		if !seen[t.placeholder] {
			seen[t.placeholder] = true
			p.positions = append(p.positions, Position{Placeholder: t.placeholder, Offset: t.offset})
		}
	}
	expr.WriteString("$")

	// Tokens are visited in offset order already; the sort keeps the
	// contract explicit.
	sort.SliceStable(p.positions, func(i, j int) bool {
		return p.positions[i].Offset < p.positions[j].Offset
	})

	p.re, err = regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformedTemplate, tmpl, err)
	}

	return p, nil
}

// Template returns the source template.
func (p *Pattern) Template() string {
	return p.template
}

// String returns the regular expression the template compiled to.
func (p *Pattern) String() string {
	return p.re.String()
}

// Placeholders returns the placeholders present in the template together with
// their first offset, sorted by offset.
func (p *Pattern) Placeholders() []Position {
	out := make([]Position, len(p.positions))
	copy(out, p.positions)
	return out
}

// MatchString reports whether s matches the template end to end.
func (p *Pattern) MatchString(s string) bool {
	return p.re.MatchString(s)
}

// Match matches s end to end and returns the captured placeholder values.
func (p *Pattern) Match(s string) (*Match, bool) {
	sub := p.re.FindStringSubmatch(s)
	if sub == nil {
		return nil, false
	}
	return &Match{pattern: p, path: s, values: sub[1:]}, true
}
