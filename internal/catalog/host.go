package catalog

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
)

// ErrUnknownHost is returned when no host is configured and the hostname
// matches none of the host patterns.
var ErrUnknownHost = errors.New("unknown host")

// DetectHost returns the first host, in name order, whose pattern matches
// hostname. Invalid patterns never match.
func DetectHost(patterns map[string]string, hostname string) (string, bool) {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		re, err := regexp.Compile(patterns[name])
		if err != nil {
			continue
		}
		if re.MatchString(hostname) {
			return name, true
		}
	}
	return "", false
}

// ResolveHost returns configured when set, otherwise the host detected from
// the machine hostname.
func ResolveHost(configured string, patterns map[string]string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to read hostname: %w", err)
	}
	if host, ok := DetectHost(patterns, hostname); ok {
		return host, nil
	}
	return "", fmt.Errorf("%w: hostname %q matches no configured host, set --host", ErrUnknownHost, hostname)
}
