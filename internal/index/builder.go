package index

import (
	"context"
	"fmt"

	"github.com/draelsaid/dcmdb/internal/enumerate"
	"github.com/draelsaid/dcmdb/internal/logger"
	"github.com/draelsaid/dcmdb/internal/template"
)

// Report is the outcome of one scan.
type Report struct {
	Index Index
	// Signal is true when at least one file template matched something
	Signal bool
	// Candidates is the number of enumerated paths
	Candidates int
	// Skipped counts matched candidates rejected for invalid date values
	Skipped int
	// Errors are the non-fatal enumeration errors
	Errors []error
}

// Builder scans the location described by a path template and indexes the
// files matching its file templates.
type Builder struct {
	Options enumerate.Options
	Logger  logger.Logger

	// enumerator overrides the enumerator chosen from Options
	enumerator func(base string) enumerate.Enumerator
}

// NewBuilder returns a Builder enumerating with opts.
func NewBuilder(opts enumerate.Options, log logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.Logger == nil {
		opts.Logger = log
	}
	return &Builder{Options: opts, Logger: log}
}

// WithEnumerator returns a copy of b that enumerates through e regardless of
// the base directory.
func (b *Builder) WithEnumerator(e enumerate.Enumerator) *Builder {
	c := *b
	c.enumerator = func(string) enumerate.Enumerator { return e }
	return &c
}

func (b *Builder) log() logger.Logger {
	if b.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return b.Logger
}

// Scan enumerates the base directory of pathTemplate once and indexes the
// candidates against every file template. The returned index holds every
// requested template, and the signal reports whether any of them matched.
func (b *Builder) Scan(ctx context.Context, pathTemplate string, fileTemplates []string) (Index, bool, error) {
	report, err := b.ScanReport(ctx, pathTemplate, fileTemplates)
	if err != nil {
		return nil, false, err
	}
	return report.Index, report.Signal, nil
}

// ScanReport is Scan with enumeration statistics.
func (b *Builder) ScanReport(ctx context.Context, pathTemplate string, fileTemplates []string) (*Report, error) {
	base, rest := template.SplitPathTemplate(pathTemplate)

	patterns := make([]*template.Pattern, len(fileTemplates))
	for i, ft := range fileTemplates {
		p, err := template.Compile(template.Join(rest, ft))
		if err != nil {
			return nil, fmt.Errorf("file template %q: %w", ft, err)
		}
		patterns[i] = p
	}

	var e enumerate.Enumerator
	if b.enumerator != nil {
		e = b.enumerator(base)
	} else {
		e = enumerate.For(base, b.Options)
	}

	b.log().LogDebug(fmt.Sprintf("searching for %v in %s", fileTemplates, pathTemplate))
	listing := e.Enumerate(ctx, base, rest)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan of %s interrupted: %w", pathTemplate, err)
	}

	report := &Report{
		Index:      New(fileTemplates...),
		Candidates: len(listing.Paths),
		Errors:     listing.Errors,
	}

	for i, ft := range fileTemplates {
		for _, candidate := range listing.Paths {
			m, ok := patterns[i].Match(candidate)
			if !ok {
				continue
			}
			ts, err := m.Timestamp()
			if err != nil {
				report.Skipped++
				b.log().LogDebug(fmt.Sprintf("skipping %s: %v", candidate, err))
				continue
			}
			if lt, ok := m.Leadtime(); ok {
				report.Index.Add(ft, ts, lt)
			} else {
				report.Index.Add(ft, ts)
			}
		}
		b.log().LogTrace(fmt.Sprintf("%s: %d timestamp(s)", patterns[i].Template(), len(report.Index[ft])))
		if len(report.Index[ft]) > 0 {
			report.Signal = true
		}
	}

	return report, nil
}
