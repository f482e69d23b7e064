// Package enumerate produces the candidate file paths below the literal base
// directory of a path template, either by walking a local filesystem or by
// descending a remote archive through an external listing command.
package enumerate

import (
	"context"
	"strings"

	"github.com/draelsaid/dcmdb/internal/logger"
)

// DefaultPrefixes mark a base directory as living in the remote archive.
var DefaultPrefixes = []string{"ec:", "ectmp:"}

// Result holds the candidates of one enumeration. Paths are relative to the
// base directory and slash separated. Errors collects failures that cut a
// branch short without aborting the enumeration.
type Result struct {
	Paths  []string
	Errors []error
}

// Enumerator lists candidate files for a split path template. Every call
// performs a fresh traversal.
type Enumerator interface {
	Enumerate(ctx context.Context, base, rest string) *Result
}

// Options selects and configures an Enumerator.
type Options struct {
	// Prefixes recognised as remote archive locations; DefaultPrefixes when empty
	Prefixes []string
	// Lister used for archive locations; a CommandLister running "els" when nil
	Lister Lister
	Logger logger.Logger
}

// IsRemote reports whether base starts with one of the archive prefixes.
func IsRemote(base string, prefixes []string) bool {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}

// For returns the enumerator serving base.
func For(base string, opts Options) Enumerator {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if IsRemote(base, opts.Prefixes) {
		lister := opts.Lister
		if lister == nil {
			lister = NewCommandLister(nil, 0)
		}
		return &Archive{Lister: lister, Logger: log}
	}
	return &Local{Logger: log}
}

// splitBase separates a base directory that ends inside a path component
// ("/data/fc" before "%Y...") into the directory to traverse and the partial
// component every first-level entry must start with. seps lists the bytes
// that end a directory. A base without templated remainder is a directory on
// its own.
func splitBase(base, rest, seps string) (dir, prefix string) {
	if rest == "" {
		return base, ""
	}
	i := strings.LastIndexAny(base, seps)
	return base[:i+1], base[i+1:]
}
