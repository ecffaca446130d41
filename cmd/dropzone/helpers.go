package main

import (
	"fmt"
	"os"
	"strings"

	"dropzone/internal/config"
)

// expandSources resolves and validates the source paths given on the command
// line. Every path must exist.
func expandSources(args []string) ([]string, error) {
	sources := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", arg, err)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("inspect %q: %w", arg, err)
		}
		sources = append(sources, path)
	}
	return sources, nil
}

// summarizeSourceList joins source paths for the history record, truncated so
// a huge drop doesn't bloat the database row.
func summarizeSourceList(sources []string) string {
	const maxLen = 512
	joined := strings.Join(sources, ", ")
	if len(joined) > maxLen {
		return fmt.Sprintf("%s… (%d items)", joined[:maxLen], len(sources))
	}
	return joined
}
