package enumerate

import (
	"context"
	"fmt"
	"strings"

	"github.com/draelsaid/dcmdb/internal/logger"
	"github.com/draelsaid/dcmdb/internal/template"
)

// Archive enumerates a remote archive one directory level at a time. Each
// segment of the templated remainder is compiled on its own and only the
// listed entries matching it are descended into, so the traversal never
// lists directories the template cannot reach.
type Archive struct {
	Lister Lister
	Logger logger.Logger
}

// Enumerate lists the leaf directories selected by rest and yields their
// entries relative to base.
func (a *Archive) Enumerate(ctx context.Context, base, rest string) *Result {
	result := &Result{Paths: make([]string, 0)}

	segments := strings.Split(rest, "/")
	if rest == "" {
		segments = nil
	} else if segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}

	patterns := make([]*template.Pattern, len(segments))
	for i, seg := range segments {
		p, err := template.Compile(seg)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return result
		}
		patterns[i] = p
	}

	dir, prefix := splitBase(base, rest, "/:")
	a.walk(ctx, dir, prefix, "", patterns, result)

	return result
}

// walk lists dir+rel and either descends into the entries matching the next
// segment or, once all segments are consumed, yields the listed entries. At
// the first level only names starting with the partial prefix are kept and
// the prefix is stripped before matching.
func (a *Archive) walk(ctx context.Context, dir, prefix, rel string, patterns []*template.Pattern, result *Result) {
	if err := ctx.Err(); err != nil {
		result.Errors = append(result.Errors, err)
		return
	}

	path := dir + rel
	entries, err := a.Lister.List(ctx, path)
	if err != nil {
		a.logger().LogWarn(fmt.Sprintf("listing %s failed, skipping branch: %v", path, err))
		result.Errors = append(result.Errors, err)
		return
	}
	a.logger().LogTrace(fmt.Sprintf("listed %d entries in %s", len(entries), path))

	for _, name := range entries {
		component := name
		if rel == "" {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			component = name[len(prefix):]
		}
		candidate := strings.TrimPrefix(rel, prefix) + component

		if len(patterns) == 0 {
			result.Paths = append(result.Paths, candidate)
			continue
		}
		if !patterns[0].MatchString(component) {
			continue
		}
		a.walk(ctx, dir, prefix, rel+name+"/", patterns[1:], result)
		if ctx.Err() != nil {
			return
		}
	}
}

func (a *Archive) logger() logger.Logger {
	if a.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return a.Logger
}
