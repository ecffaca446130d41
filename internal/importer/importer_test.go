package importer

import (
	"os"
	"path/filepath"
	"testing"

	"dropzone/internal/testsupport"
)

func newTestImporter(t *testing.T) (*Importer, string) {
	t.Helper()
	base := t.TempDir()
	dir := filepath.Join(base, "import")
	imp, err := New(dir, filepath.Join(base, "import.lock"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return imp, dir
}

func TestPlaceMovesFile(t *testing.T) {
	imp, dir := newTestImporter(t)

	src := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest, err := imp.Place(src)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if dest != filepath.Join(dir, "song.mp3") {
		t.Fatalf("dest = %q", dest)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source still exists")
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio" {
		t.Fatalf("content = %q", data)
	}
}

func TestPlaceSuffixesDuplicates(t *testing.T) {
	imp, dir := newTestImporter(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "song.mp3"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest, err := imp.Place(src)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if dest != filepath.Join(dir, "song_1.mp3") {
		t.Fatalf("dest = %q", dest)
	}
	old, _ := os.ReadFile(filepath.Join(dir, "song.mp3"))
	if string(old) != "old" {
		t.Fatal("existing file overwritten")
	}
}

func TestPlaceMovesLargeFile(t *testing.T) {
	imp, dir := newTestImporter(t)

	src := filepath.Join(t.TempDir(), "album.flac")
	testsupport.WriteFile(t, src, 256*1024)

	dest, err := imp.Place(src)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 256*1024 {
		t.Fatalf("size = %d", info.Size())
	}
	if dest != filepath.Join(dir, "album.flac") {
		t.Fatalf("dest = %q", dest)
	}
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New("", "", nil); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
