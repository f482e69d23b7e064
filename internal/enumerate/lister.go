package enumerate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// Listing failure kinds. CommandLister wraps every failure in one of them.
var (
	ErrToolNotFound = errors.New("listing tool not found")
	ErrListTimeout  = errors.New("listing timed out")
	ErrListFailed   = errors.New("listing failed")
)

// DefaultListCommand is the archive listing tool.
var DefaultListCommand = []string{"els"}

// DefaultListTimeout bounds a single listing call.
const DefaultListTimeout = 2 * time.Minute

// Lister returns the entry names of one remote directory.
type Lister interface {
	List(ctx context.Context, path string) ([]string, error)
}

// CommandLister lists a directory by running an external command with the
// directory appended as last argument. Standard output is read one entry per
// line.
type CommandLister struct {
	Command []string
	Timeout time.Duration
}

// NewCommandLister returns a CommandLister. An empty command falls back to
// DefaultListCommand and a non-positive timeout to DefaultListTimeout.
func NewCommandLister(command []string, timeout time.Duration) *CommandLister {
	if len(command) == 0 {
		command = DefaultListCommand
	}
	if timeout <= 0 {
		timeout = DefaultListTimeout
	}
	return &CommandLister{Command: command, Timeout: timeout}
}

// List runs the listing command for path.
func (l *CommandLister) List(ctx context.Context, path string) ([]string, error) {
	if len(l.Command) == 0 {
		return nil, fmt.Errorf("%w: no command configured", ErrToolNotFound)
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, l.Command[1:]...), path)
	cmd := exec.CommandContext(ctx, l.Command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, l.Command[0], err)
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w after %s: %s %s", ErrListTimeout, l.Timeout, l.Command[0], path)
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%s %s: %w", l.Command[0], path, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s %s: %s", ErrListFailed, l.Command[0], path, msg)
	}

	return parseListing(stdout.String()), nil
}

// parseListing splits command output into entry names. Blank lines are
// dropped and a trailing '/' marking directories is removed.
func parseListing(out string) []string {
	entries := make([]string, 0)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimSuffix(line, "/")
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}
