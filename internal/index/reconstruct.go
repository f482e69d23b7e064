package index

import (
	"regexp"
	"time"

	"github.com/draelsaid/dcmdb/internal/template"
)

// Filter narrows a reconstruction. Zero fields select everything recorded.
type Filter struct {
	// FileTemplate replaces the experiment's file templates. It selects the
	// index key equal to it or, failing that, every key it matches as a
	// regular expression.
	FileTemplate string
	Timestamps   []time.Time
	Leadtimes    []time.Duration
}

// Reconstruct returns the literal paths of the indexed files selected by f.
// Only combinations present in idx are produced: a requested timestamp or
// leadtime that was never recorded yields nothing. Paths are ordered by file
// template, then timestamp, then leadtime.
//
// The path template and file template are joined with template.Join, which
// inserts a '/' when the path template lacks one. Scanning joins them the same
// way, so a reconstructed path is always one the scan could have matched.
func Reconstruct(pathTemplate string, fileTemplates []string, idx Index, f Filter) []string {
	requested := fileTemplates
	if f.FileTemplate != "" {
		requested = []string{f.FileTemplate}
	}

	leadFilter := make([]int64, 0, len(f.Leadtimes))
	for _, d := range f.Leadtimes {
		leadFilter = append(leadFilter, int64(d/time.Second))
	}

	paths := make([]string, 0)
	for _, ft := range selectTemplates(requested, idx) {
		full := template.Join(pathTemplate, ft)

		var stamps []string
		if len(f.Timestamps) > 0 {
			for _, ts := range f.Timestamps {
				stamps = append(stamps, template.FormatTimestamp(ts))
			}
		} else {
			stamps = idx.Timestamps(ft)
		}

		for _, key := range stamps {
			if !idx.Has(ft, key) {
				continue
			}
			ts, err := time.Parse(template.TimestampLayout, key)
			if err != nil {
				continue
			}
			recorded := idx.Leadtimes(ft, key)
			if len(recorded) == 0 {
				if len(leadFilter) == 0 {
					paths = append(paths, template.Substitute(full, ts, 0))
				}
				continue
			}
			for _, lt := range selectLeadtimes(recorded, leadFilter) {
				paths = append(paths, template.Substitute(full, ts, lt))
			}
		}
	}

	return paths
}

// selectTemplates resolves requested templates against the index keys. An
// exact key wins; otherwise the request is used as a regular expression that
// must match a whole key. The result has no duplicates.
func selectTemplates(requested []string, idx Index) []string {
	keys := idx.Templates()
	seen := make(map[string]bool)
	out := make([]string, 0, len(requested))
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}

	for _, req := range requested {
		if _, ok := idx[req]; ok {
			add(req)
			continue
		}
		re, err := regexp.Compile(`^(?:` + req + `)$`)
		if err != nil {
			continue
		}
		for _, k := range keys {
			if re.MatchString(k) {
				add(k)
			}
		}
	}
	return out
}

// selectLeadtimes returns the recorded leadtimes that pass the filter, in
// filter order when one is given.
func selectLeadtimes(recorded, filter []int64) []int64 {
	if len(filter) == 0 {
		return recorded
	}
	out := make([]int64, 0, len(filter))
	for _, lt := range filter {
		for _, r := range recorded {
			if r == lt {
				out = append(out, lt)
				break
			}
		}
	}
	return out
}
