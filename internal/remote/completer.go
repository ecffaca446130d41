package remote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultListLimit caps the number of candidates per listing.
	DefaultListLimit = 20
	// DefaultListTimeout bounds the remote listing round trip.
	DefaultListTimeout = 10 * time.Second
	// DefaultHomeTimeout bounds the one-time home-directory resolution.
	DefaultHomeTimeout = 5 * time.Second
)

// Query is the directory to list and the name prefix to match, derived from
// the raw text in the destination field.
type Query struct {
	Dir    string
	Prefix string
}

// ParseQuery splits raw input at its last separator. Text without a
// separator is completed against the remote home directory.
func ParseQuery(text string) Query {
	if i := strings.LastIndex(text, "/"); i >= 0 {
		return Query{Dir: text[:i+1], Prefix: text[i+1:]}
	}
	return Query{Dir: "~/", Prefix: text}
}

// Completer produces remote directory candidates for partial destination
// paths. Completion is advisory: every failure mode collapses to an empty
// candidate list.
type Completer struct {
	runner  Runner
	limit   int
	timeout time.Duration
	logger  *slog.Logger
}

// CompleterOption configures a Completer.
type CompleterOption func(*Completer)

// WithListLimit overrides the candidate cap (clamped to 1..100).
func WithListLimit(limit int) CompleterOption {
	return func(c *Completer) {
		if limit > 0 {
			if limit > 100 {
				limit = 100
			}
			c.limit = limit
		}
	}
}

// WithTimeout overrides the listing round-trip timeout.
func WithTimeout(timeout time.Duration) CompleterOption {
	return func(c *Completer) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger *slog.Logger) CompleterOption {
	return func(c *Completer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCompleter builds a completer over the given command channel.
func NewCompleter(runner Runner, opts ...CompleterOption) *Completer {
	c := &Completer{
		runner:  runner,
		limit:   DefaultListLimit,
		timeout: DefaultListTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete lists remote directories matching the raw query text and returns
// normalized candidates in listing order. home is the cached remote home
// directory ("" when unknown); it is rewritten to "~" only when the query
// itself was expressed relative to home. Failures are logged and yield nil.
func (c *Completer) Complete(ctx context.Context, home, text string) []string {
	query := ParseQuery(text)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// -p suffixes directories with a separator and the */ pattern restricts
	// the glob to directories. Glob characters must stay unquoted.
	command := fmt.Sprintf("ls -1dp %s%s*/ 2>/dev/null | head -%d", query.Dir, query.Prefix, c.limit)

	output, err := c.runner.Run(ctx, command)
	if err != nil {
		c.logger.Debug("remote listing failed", "dir", query.Dir, "prefix", query.Prefix, "error", err)
		return nil
	}
	if strings.TrimSpace(output) == "" {
		return nil
	}

	homeRelative := strings.HasPrefix(text, "~")
	var candidates []string
	for _, line := range strings.Split(output, "\n") {
		candidate := normalizeCandidate(line, home, homeRelative)
		if candidate != "" {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// ResolveHome fetches the remote home directory once per session. It returns
// "" on any failure; the caller records that as HomeUnresolved.
func (c *Completer) ResolveHome(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, DefaultHomeTimeout)
	defer cancel()

	output, err := c.runner.Run(ctx, "echo $HOME")
	if err != nil {
		c.logger.Debug("remote home resolution failed", "error", err)
		return ""
	}
	return strings.TrimSpace(output)
}

// normalizeCandidate strips trailing separator repetition, applies the home
// shorthand when applicable, and re-appends exactly one separator. It
// returns "" for lines that normalize to nothing.
func normalizeCandidate(raw, home string, homeRelative bool) string {
	path := strings.TrimSpace(raw)
	path = strings.TrimRight(path, "/")
	if path == "" {
		return ""
	}
	if homeRelative && home != "" && !strings.HasPrefix(path, "~") && strings.HasPrefix(path, home) {
		path = "~" + path[len(home):]
	}
	return path + "/"
}
