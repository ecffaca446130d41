// Package tags writes audio metadata by remuxing through ffmpeg.
package tags

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"dropzone/internal/media"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			// ffmpeg reports everything on stderr; keep the tail.
			lines := strings.Split(detail, "\n")
			if len(lines) > 4 {
				lines = lines[len(lines)-4:]
			}
			return fmt.Errorf("%w: %s", err, strings.Join(lines, " "))
		}
		return err
	}
	return nil
}

// Option configures the writer.
type Option func(*Writer)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(w *Writer) {
		if exec != nil {
			w.exec = exec
		}
	}
}

// Writer rewrites file tags with ffmpeg stream copies.
type Writer struct {
	binary string
	exec   Executor
}

// New constructs a tag writer.
func New(binary string, opts ...Option) (*Writer, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	writer := &Writer{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(writer)
	}
	return writer, nil
}

// Write applies the metadata to the file in place. Streams are copied, not
// re-encoded; the tagged copy replaces the original atomically. Empty fields
// are left out so existing tags survive.
func (w *Writer) Write(ctx context.Context, path string, meta media.Metadata) error {
	if !media.SupportedExtension(path) {
		return fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if meta.IsZero() {
		return nil
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	tmp, err := os.CreateTemp(dir, ".dropzone-*"+ext)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := Args(path, tmpPath, meta)
	if err := w.exec.Run(ctx, w.binary, args); err != nil {
		return fmt.Errorf("ffmpeg tag %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace tagged file: %w", err)
	}
	return nil
}

// Args builds the ffmpeg argument list for a tagging pass. Values are
// NFC-normalized; macOS drag-and-drop paths and dialog input arrive NFD.
func Args(src, dst string, meta media.Metadata) []string {
	args := []string{"-y", "-i", src, "-map", "0", "-codec", "copy"}
	for _, field := range []struct {
		key   string
		value string
	}{
		{"title", meta.Title},
		{"artist", meta.Artist},
		{"album", meta.Album},
		{"date", meta.Date},
	} {
		if field.value == "" {
			continue
		}
		args = append(args, "-metadata", field.key+"="+norm.NFC.String(field.value))
	}
	return append(args, dst)
}
