// Package index builds and queries the catalog of which (timestamp, leadtime)
// combinations exist for a set of file templates, and reconstructs literal
// paths from it.
package index

import (
	"encoding/json"
	"slices"
	"sort"
	"time"

	"github.com/draelsaid/dcmdb/internal/template"
)

// Index maps file template -> canonical timestamp -> ascending, unique
// leadtimes in seconds. A template with an empty timestamp map had no
// matches. A timestamp with an empty leadtime list belongs to a template
// without leadtime placeholder.
type Index map[string]map[string][]int64

// Stats summarises an index.
type Stats struct {
	Templates  int // templates with at least one match
	Timestamps int // distinct timestamps over all templates
	Files      int // (template, timestamp, leadtime) entries
}

// New returns an index holding the given templates without matches.
func New(fileTemplates ...string) Index {
	idx := make(Index, len(fileTemplates))
	for _, ft := range fileTemplates {
		idx.Ensure(ft)
	}
	return idx
}

// Ensure makes fileTemplate present in the index.
func (idx Index) Ensure(fileTemplate string) {
	if _, ok := idx[fileTemplate]; !ok {
		idx[fileTemplate] = make(map[string][]int64)
	}
}

// Add records a match of fileTemplate at ts. Without leadtimes only the
// timestamp entry is created. Leadtimes are inserted in order and duplicates
// are ignored.
func (idx Index) Add(fileTemplate string, ts time.Time, leadtimes ...int64) {
	idx.addKey(fileTemplate, template.FormatTimestamp(ts), leadtimes...)
}

func (idx Index) addKey(fileTemplate, key string, leadtimes ...int64) {
	idx.Ensure(fileTemplate)
	list, ok := idx[fileTemplate][key]
	if !ok {
		list = make([]int64, 0, len(leadtimes))
	}
	for _, lt := range leadtimes {
		i := sort.Search(len(list), func(i int) bool { return list[i] >= lt })
		if i < len(list) && list[i] == lt {
			continue
		}
		list = append(list, 0)
		copy(list[i+1:], list[i:])
		list[i] = lt
	}
	idx[fileTemplate][key] = list
}

// Templates returns the file templates of the index, sorted.
func (idx Index) Templates() []string {
	out := make([]string, 0, len(idx))
	for ft := range idx {
		out = append(out, ft)
	}
	sort.Strings(out)
	return out
}

// Timestamps returns the canonical timestamps recorded for fileTemplate in
// ascending order. The canonical layout sorts chronologically as text.
func (idx Index) Timestamps(fileTemplate string) []string {
	out := make([]string, 0, len(idx[fileTemplate]))
	for ts := range idx[fileTemplate] {
		out = append(out, ts)
	}
	sort.Strings(out)
	return out
}

// Leadtimes returns the leadtimes recorded for fileTemplate at the canonical
// timestamp ts, or nil when the timestamp is unknown.
func (idx Index) Leadtimes(fileTemplate, ts string) []int64 {
	return idx[fileTemplate][ts]
}

// Has reports whether the index holds fileTemplate at ts.
func (idx Index) Has(fileTemplate, ts string) bool {
	_, ok := idx[fileTemplate][ts]
	return ok
}

// Empty reports whether no template has any match.
func (idx Index) Empty() bool {
	for _, byTS := range idx {
		if len(byTS) > 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both indexes record the same templates, timestamps
// and leadtimes.
func (idx Index) Equal(other Index) bool {
	if len(idx) != len(other) {
		return false
	}
	for ft, byTS := range idx {
		theirs, ok := other[ft]
		if !ok || len(theirs) != len(byTS) {
			return false
		}
		for ts, lts := range byTS {
			if olts, ok := theirs[ts]; !ok || !slices.Equal(lts, olts) {
				return false
			}
		}
	}
	return true
}

// Stats counts the entries of the index.
func (idx Index) Stats() Stats {
	var s Stats
	seen := make(map[string]bool)
	for _, byTS := range idx {
		if len(byTS) > 0 {
			s.Templates++
		}
		for ts, lts := range byTS {
			seen[ts] = true
			if len(lts) == 0 {
				s.Files++
			}
			s.Files += len(lts)
		}
	}
	s.Timestamps = len(seen)
	return s
}

// UnmarshalJSON reads the persisted form. Leadtime lists written for
// templates without leadtime placeholder may hold nulls, which are dropped.
// Lists are normalised to ascending unique order.
func (idx *Index) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string][]*int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Index, len(raw))
	for ft, byTS := range raw {
		out.Ensure(ft)
		for ts, lts := range byTS {
			values := make([]int64, 0, len(lts))
			for _, lt := range lts {
				if lt != nil {
					values = append(values, *lt)
				}
			}
			out.addKey(ft, ts, values...)
		}
	}
	*idx = out
	return nil
}
