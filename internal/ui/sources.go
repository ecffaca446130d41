package ui

import (
	"fmt"
	"os"
	"strings"
)

// SourceSummary describes what is about to be copied.
type SourceSummary struct {
	Files   int
	Dirs    int
	Display []string
}

// Counts renders the file/directory tally, e.g. "3 files, 1 directory".
func (s SourceSummary) Counts() string {
	parts := make([]string, 0, 2)
	if s.Files > 0 || s.Dirs == 0 {
		parts = append(parts, pluralize(s.Files, "file"))
	}
	if s.Dirs > 0 {
		parts = append(parts, pluralize(s.Dirs, "directory", "directories"))
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, singular string, plural ...string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	if len(plural) > 0 {
		return fmt.Sprintf("%d %s", n, plural[0])
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

// SummarizeSources stats each path and produces the display list shown at the
// top of the copy dialog. Paths under home are abbreviated with "~". Paths
// that cannot be stat'd count as files.
func SummarizeSources(paths []string, home string) SourceSummary {
	summary := SourceSummary{Display: make([]string, 0, len(paths))}
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			summary.Dirs++
		} else {
			summary.Files++
		}
		summary.Display = append(summary.Display, AbbreviateHome(path, home))
	}
	return summary
}

// AbbreviateHome rewrites a path under home to its "~" shorthand.
func AbbreviateHome(path, home string) string {
	if home == "" || !strings.HasPrefix(path, home) {
		return path
	}
	rest := path[len(home):]
	if rest != "" && !strings.HasPrefix(rest, "/") {
		return path
	}
	return "~" + rest
}
