package remote

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	output  string
	err     error
	delay   time.Duration
	command string
}

func (f *fakeRunner) Run(ctx context.Context, command string) (string, error) {
	f.command = command
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func TestParseQuery(t *testing.T) {
	cases := []struct {
		text   string
		dir    string
		prefix string
	}{
		{"~/pro", "~/", "pro"},
		{"/var/lo", "/var/", "lo"},
		{"/var/log/", "/var/log/", ""},
		{"docs", "~/", "docs"},
		{"", "~/", ""},
	}
	for _, tc := range cases {
		got := ParseQuery(tc.text)
		if got.Dir != tc.dir || got.Prefix != tc.prefix {
			t.Errorf("ParseQuery(%q) = %+v, want dir=%q prefix=%q", tc.text, got, tc.dir, tc.prefix)
		}
	}
}

func TestCompleteRewritesHomePaths(t *testing.T) {
	runner := &fakeRunner{output: "/home/alice/docs/\n/home/alice/pics/"}
	c := NewCompleter(runner)

	got := c.Complete(context.Background(), "/home/alice", "~/")

	want := []string{"~/docs/", "~/pics/"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCompleteKeepsAbsolutePathsForAbsoluteQueries(t *testing.T) {
	runner := &fakeRunner{output: "/home/alice/docs/"}
	c := NewCompleter(runner)

	got := c.Complete(context.Background(), "/home/alice", "/home/alice/d")

	if len(got) != 1 || got[0] != "/home/alice/docs/" {
		t.Fatalf("got %v, want [/home/alice/docs/]", got)
	}
}

func TestCompleteNoRewriteWithoutHome(t *testing.T) {
	runner := &fakeRunner{output: "/home/alice/docs/"}
	c := NewCompleter(runner)

	got := c.Complete(context.Background(), "", "~/d")

	if len(got) != 1 || got[0] != "/home/alice/docs/" {
		t.Fatalf("got %v, want untouched absolute path", got)
	}
}

func TestCompleteCollapsesTrailingSeparators(t *testing.T) {
	runner := &fakeRunner{output: "/tmp/x//"}
	c := NewCompleter(runner)

	got := c.Complete(context.Background(), "", "/tmp/x")

	if len(got) != 1 || got[0] != "/tmp/x/" {
		t.Fatalf("got %v, want [/tmp/x/]", got)
	}
}

func TestCompleteLeavesShorthandCandidatesAlone(t *testing.T) {
	runner := &fakeRunner{output: "~/already/"}
	c := NewCompleter(runner)

	got := c.Complete(context.Background(), "/home/alice", "~/a")

	if len(got) != 1 || got[0] != "~/already/" {
		t.Fatalf("got %v, want [~/already/]", got)
	}
}

func TestCompleteDropsEmptyLines(t *testing.T) {
	runner := &fakeRunner{output: "/a/\n\n///\n/b/"}
	c := NewCompleter(runner)

	got := c.Complete(context.Background(), "", "/")

	want := []string{"/a/", "/b/"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompleteSwallowsFailures(t *testing.T) {
	runner := &fakeRunner{err: errors.New("connection refused")}
	c := NewCompleter(runner)

	if got := c.Complete(context.Background(), "", "~/x"); got != nil {
		t.Fatalf("got %v, want nil on failure", got)
	}
}

func TestCompleteTimesOutToEmpty(t *testing.T) {
	runner := &fakeRunner{output: "/slow/", delay: 200 * time.Millisecond}
	c := NewCompleter(runner, WithTimeout(10*time.Millisecond))

	if got := c.Complete(context.Background(), "", "/s"); got != nil {
		t.Fatalf("got %v, want nil on timeout", got)
	}
}

func TestCompleteCommandShape(t *testing.T) {
	runner := &fakeRunner{output: "/var/log/"}
	c := NewCompleter(runner, WithListLimit(30))

	c.Complete(context.Background(), "", "/var/lo")

	want := "ls -1dp /var/lo*/ 2>/dev/null | head -30"
	if runner.command != want {
		t.Fatalf("command = %q, want %q", runner.command, want)
	}
}

func TestCompleteEmptyOutput(t *testing.T) {
	runner := &fakeRunner{output: "  \n"}
	c := NewCompleter(runner)

	if got := c.Complete(context.Background(), "", "~/nope"); got != nil {
		t.Fatalf("got %v, want nil for empty output", got)
	}
}

func TestResolveHome(t *testing.T) {
	runner := &fakeRunner{output: "/home/alice\n"}
	c := NewCompleter(runner)

	if got := c.ResolveHome(context.Background()); got != "/home/alice" {
		t.Fatalf("home = %q, want /home/alice", got)
	}
	if !strings.Contains(runner.command, "echo $HOME") {
		t.Fatalf("command = %q", runner.command)
	}
}

func TestResolveHomeFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 255")}
	c := NewCompleter(runner)

	if got := c.ResolveHome(context.Background()); got != "" {
		t.Fatalf("home = %q, want empty on failure", got)
	}
}
