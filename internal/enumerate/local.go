package enumerate

import (
	"context"
	"fmt"
	"strings"

	"github.com/draelsaid/dcmdb/internal/fileutil"
	"github.com/draelsaid/dcmdb/internal/logger"
)

// Local enumerates every non-hidden file below a local base directory.
type Local struct {
	Logger logger.Logger
}

// Enumerate walks base recursively. The templated remainder only matters
// when base ends inside a path component; it is otherwise left to the
// matcher.
func (l *Local) Enumerate(ctx context.Context, base, rest string) *Result {
	result := &Result{Paths: make([]string, 0)}
	if err := ctx.Err(); err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	dir, prefix := splitBase(base, rest, "/")
	root := dir
	if root == "" {
		root = "."
	}

	scan, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{Recursive: true})
	if err != nil {
		l.logger().LogWarn(fmt.Sprintf("cannot scan %s: %v", root, err))
		result.Errors = append(result.Errors, err)
		return result
	}
	for _, scanErr := range scan.Errors {
		l.logger().LogWarn(scanErr.Error())
	}
	result.Errors = append(result.Errors, scan.Errors...)

	for _, file := range scan.Files {
		if !strings.HasPrefix(file, prefix) {
			continue
		}
		result.Paths = append(result.Paths, file[len(prefix):])
	}
	l.logger().LogDebug(fmt.Sprintf("found %d files below %s", len(result.Paths), root))

	return result
}

func (l *Local) logger() logger.Logger {
	if l.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return l.Logger
}
