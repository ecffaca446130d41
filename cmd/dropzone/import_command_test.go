package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dropzone/internal/acoustid"
	"dropzone/internal/fingerprint"
	"dropzone/internal/history"
	"dropzone/internal/importer"
	"dropzone/internal/media"
	"dropzone/internal/musicbrainz"
	"dropzone/internal/notifications"
	"dropzone/internal/tags"
	"dropzone/internal/testsupport"
)

type fpcalcStub struct{}

func (fpcalcStub) Output(_ context.Context, _ string, _ []string) ([]byte, error) {
	return []byte(`{"fingerprint":"AQADtest","duration":213.5}`), nil
}

type ffmpegStub struct{}

func (ffmpegStub) Run(context.Context, string, []string) error { return nil }

func newTestPipeline(t *testing.T, out *bytes.Buffer) (*importPipeline, *history.Store, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)

	acoustidServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"results": [{
				"score": 0.92,
				"recordings": [{"id": "rec-1", "title": "Song", "artists": [{"name": "Artist"}]}]
			}]
		}`))
	}))
	t.Cleanup(acoustidServer.Close)

	mbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"title": "Song",
			"artist-credit": [{"name": "Artist", "joinphrase": ""}],
			"releases": [{"title": "Album", "date": "2001-05-01"}]
		}`))
	}))
	t.Cleanup(mbServer.Close)

	fingerprints, err := fingerprint.New("fpcalc", fingerprint.WithExecutor(fpcalcStub{}))
	if err != nil {
		t.Fatalf("fingerprint.New: %v", err)
	}
	lookups, err := acoustid.New("key", acoustidServer.URL)
	if err != nil {
		t.Fatalf("acoustid.New: %v", err)
	}
	recordings, err := musicbrainz.New(mbServer.URL, "dropzone-test/1.0", 1)
	if err != nil {
		t.Fatalf("musicbrainz.New: %v", err)
	}
	tagger, err := tags.New("ffmpeg", tags.WithExecutor(ffmpegStub{}))
	if err != nil {
		t.Fatalf("tags.New: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelError}))
	library, err := importer.New(cfg.Paths.ImportDir, filepath.Join(base, "import.lock"), logger)
	if err != nil {
		t.Fatalf("importer.New: %v", err)
	}

	store := testsupport.MustOpenStore(t, cfg)

	pipeline := &importPipeline{
		minScore:     0.5,
		logger:       logger,
		out:          out,
		fingerprints: fingerprints,
		lookups:      lookups,
		recordings:   recordings,
		tagger:       tagger,
		library:      library,
		store:        store,
		notifier:     notifications.NewService(cfg),
		assumeYes:    true,
	}
	return pipeline, store, base
}

func writeAudioFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("write audio file: %v", err)
	}
	return path
}

func TestImportPipelineEndToEnd(t *testing.T) {
	var out bytes.Buffer
	pipeline, store, base := newTestPipeline(t, &out)

	src := writeAudioFile(t, base, "song.mp3")
	if err := pipeline.run(context.Background(), []string{src}); err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	dest := filepath.Join(base, "import", "song.mp3")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("imported file missing: %v", err)
	}

	runs, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.Status != history.StatusCompleted || run.Title != "Song" || run.Album != "Album" {
		t.Fatalf("run = %+v", run)
	}
	if run.FingerprintSHA == "" {
		t.Fatal("fingerprint hash not recorded")
	}
}

func TestImportPipelineSkipsDuplicates(t *testing.T) {
	var out bytes.Buffer
	pipeline, store, base := newTestPipeline(t, &out)

	first := writeAudioFile(t, base, "song.mp3")
	if err := pipeline.run(context.Background(), []string{first}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	second := writeAudioFile(t, base, "song-copy.mp3")
	if err := pipeline.run(context.Background(), []string{second}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out.String(), "already imported") {
		t.Fatalf("output = %q", out.String())
	}
	if _, err := os.Stat(second); err != nil {
		t.Fatalf("skipped file must stay in place: %v", err)
	}

	runs, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 || runs[0].Status != history.StatusSkipped {
		t.Fatalf("runs = %+v", runs)
	}
}

func TestImportPipelineForceOverridesDuplicate(t *testing.T) {
	var out bytes.Buffer
	pipeline, _, base := newTestPipeline(t, &out)

	first := writeAudioFile(t, base, "song.mp3")
	if err := pipeline.run(context.Background(), []string{first}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	pipeline.force = true
	second := writeAudioFile(t, base, "song-copy.mp3")
	if err := pipeline.run(context.Background(), []string{second}); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "import", "song-copy.mp3")); err != nil {
		t.Fatalf("forced import missing: %v", err)
	}
}

func TestImportPipelineSkipsUnsupported(t *testing.T) {
	var out bytes.Buffer
	pipeline, _, base := newTestPipeline(t, &out)

	src := writeAudioFile(t, base, "notes.txt")
	if err := pipeline.run(context.Background(), []string{src}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "unsupported file type") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestImportPipelineDialogCancelSkips(t *testing.T) {
	var out bytes.Buffer
	pipeline, store, base := newTestPipeline(t, &out)
	pipeline.assumeYes = false
	pipeline.editMetadata = func(_ string, initial media.Metadata) (media.Metadata, bool, error) {
		if initial.Title != "Song" {
			t.Fatalf("dialog prefill = %+v", initial)
		}
		return media.Metadata{}, false, nil
	}

	src := writeAudioFile(t, base, "song.mp3")
	if err := pipeline.run(context.Background(), []string{src}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("cancelled file must stay in place: %v", err)
	}
	runs, _ := store.Recent(context.Background(), 5)
	if len(runs) != 0 {
		t.Fatalf("cancel must not be recorded, got %+v", runs)
	}
}

func TestImportPipelineDialogEditsApplied(t *testing.T) {
	var out bytes.Buffer
	pipeline, store, base := newTestPipeline(t, &out)
	pipeline.assumeYes = false
	pipeline.editMetadata = func(_ string, initial media.Metadata) (media.Metadata, bool, error) {
		edited := initial
		edited.Title = "Renamed"
		return edited, true, nil
	}

	src := writeAudioFile(t, base, "song.mp3")
	if err := pipeline.run(context.Background(), []string{src}); err != nil {
		t.Fatalf("run: %v", err)
	}
	runs, _ := store.Recent(context.Background(), 5)
	if len(runs) != 1 || runs[0].Title != "Renamed" {
		t.Fatalf("runs = %+v", runs)
	}
}
