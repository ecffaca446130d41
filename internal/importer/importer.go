// Package importer places tagged audio files into the Apple Music
// auto-import directory.
package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"dropzone/internal/fileutil"
)

// Importer moves files into the auto-import directory. Apple Music watches
// that directory and ingests anything that appears in it.
type Importer struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// New constructs an importer targeting dir. lockPath serializes concurrent
// invocations so duplicate-name suffixes are assigned race-free.
func New(dir, lockPath string, logger *slog.Logger) (*Importer, error) {
	if dir == "" {
		return nil, errors.New("import directory required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	imp := &Importer{dir: dir, logger: logger}
	if lockPath != "" {
		imp.lock = flock.New(lockPath)
	}
	return imp, nil
}

// Dir returns the destination directory.
func (i *Importer) Dir() string {
	return i.dir
}

// Place moves path into the import directory and returns the destination.
// Name collisions get a numeric suffix rather than overwriting a pending
// import.
func (i *Importer) Place(path string) (string, error) {
	if err := i.acquire(); err != nil {
		return "", err
	}
	defer i.release()

	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return "", fmt.Errorf("create import directory: %w", err)
	}

	dest := fileutil.UniquePath(filepath.Join(i.dir, filepath.Base(path)))
	if err := fileutil.MoveFile(path, dest); err != nil {
		return "", fmt.Errorf("move into import directory: %w", err)
	}

	i.logger.Info("moved file for import", "source", path, "destination", dest)
	return dest, nil
}

func (i *Importer) acquire() error {
	if i.lock == nil {
		return nil
	}
	// Blocking lock: a parallel Automator invocation should wait its turn,
	// not fail.
	if err := i.lock.Lock(); err != nil {
		return fmt.Errorf("acquire import lock: %w", err)
	}
	return nil
}

func (i *Importer) release() {
	if i.lock == nil {
		return
	}
	if err := i.lock.Unlock(); err != nil {
		i.logger.Warn("release import lock", "error", err)
	}
}
