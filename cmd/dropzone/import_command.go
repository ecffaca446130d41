package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"dropzone/internal/acoustid"
	"dropzone/internal/config"
	"dropzone/internal/fingerprint"
	"dropzone/internal/history"
	"dropzone/internal/importer"
	"dropzone/internal/media"
	"dropzone/internal/musicbrainz"
	"dropzone/internal/notifications"
	"dropzone/internal/tags"
	"dropzone/internal/ui"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool
	var force bool

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Tag audio files and move them into the Music import folder",
		Long: "Fingerprints each file with Chromaprint, looks the recording up on " +
			"AcoustID and MusicBrainz, lets you confirm or edit the tags, then " +
			"writes them with ffmpeg and moves the file into the Apple Music " +
			"auto-import folder.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireAcoustIDKey(); err != nil {
				return err
			}

			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			pipeline, err := newImportPipeline(cfg, ctx.ensureLogger(), store, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			pipeline.assumeYes = assumeYes
			pipeline.force = force

			return pipeline.run(cmd.Context(), args)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Import with the looked-up tags without showing the edit dialog")
	cmd.Flags().BoolVar(&force, "force", false, "Import even when the fingerprint matches a previous import")
	return cmd
}

type importOutcome int

const (
	outcomeImported importOutcome = iota
	outcomeSkipped
	outcomeFailed
)

type importPipeline struct {
	minScore     float64
	logger       *slog.Logger
	out          io.Writer
	fingerprints *fingerprint.Client
	lookups      *acoustid.Client
	recordings   *musicbrainz.Client
	tagger       *tags.Writer
	library      *importer.Importer
	store        *history.Store
	notifier     notifications.Service
	assumeYes    bool
	force        bool

	// editMetadata is the interactive confirmation step; swapped in tests.
	editMetadata func(source string, initial media.Metadata) (media.Metadata, bool, error)
}

func newImportPipeline(cfg *config.Config, logger *slog.Logger, store *history.Store, out io.Writer) (*importPipeline, error) {
	fingerprints, err := fingerprint.New(cfg.Tools.FPCalc)
	if err != nil {
		return nil, err
	}
	lookups, err := acoustid.New(cfg.AcoustID.APIKey, cfg.AcoustID.BaseURL)
	if err != nil {
		return nil, err
	}
	recordings, err := musicbrainz.New(cfg.MusicBrainz.BaseURL, cfg.MusicBrainz.UserAgent, cfg.MusicBrainz.MaxRetries)
	if err != nil {
		return nil, err
	}
	tagger, err := tags.New(cfg.Tools.FFmpeg)
	if err != nil {
		return nil, err
	}
	library, err := importer.New(cfg.Paths.ImportDir, cfg.LockPath(), logger)
	if err != nil {
		return nil, err
	}

	return &importPipeline{
		minScore:     cfg.AcoustID.MinScore,
		logger:       logger,
		out:          out,
		fingerprints: fingerprints,
		lookups:      lookups,
		recordings:   recordings,
		tagger:       tagger,
		library:      library,
		store:        store,
		notifier:     notifications.NewService(cfg),
		editMetadata: ui.RunMetadataDialog,
	}, nil
}

func (p *importPipeline) run(ctx context.Context, args []string) error {
	var imported, skipped, failed int
	for _, arg := range args {
		switch p.importFile(ctx, arg) {
		case outcomeImported:
			imported++
		case outcomeSkipped:
			skipped++
		case outcomeFailed:
			failed++
		}
	}

	if len(args) > 1 {
		fmt.Fprintf(p.out, "done: %d imported, %d skipped, %d failed\n", imported, skipped, failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func (p *importPipeline) importFile(ctx context.Context, arg string) importOutcome {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return p.fail(ctx, arg, "", err)
	}
	if !media.SupportedExtension(path) {
		fmt.Fprintf(p.out, "skipping %s: unsupported file type\n", filepath.Base(path))
		return outcomeSkipped
	}

	fp, err := p.fingerprints.Calculate(ctx, path)
	if err != nil {
		return p.fail(ctx, path, "", err)
	}
	sha := history.FingerprintSHA(fp.Fingerprint)

	if !p.force {
		prev, err := p.store.FindImportByFingerprint(ctx, sha)
		if err != nil {
			p.logger.Warn("history lookup failed", "file", path, "error", err)
		}
		if prev != nil {
			fmt.Fprintf(p.out, "skipping %s: already imported on %s (use --force to import anyway)\n",
				filepath.Base(path), prev.CreatedAt.Format("2006-01-02"))
			p.record(ctx, path, "", media.Metadata{}, sha, history.StatusSkipped, "duplicate fingerprint")
			return outcomeSkipped
		}
	}

	meta := p.lookupMetadata(ctx, fp)

	if p.assumeYes {
		if meta.IsZero() {
			meta = media.Unknown()
		}
	} else {
		edited, confirmed, err := p.editMetadata(path, meta)
		if err != nil {
			return p.fail(ctx, path, sha, err)
		}
		if !confirmed {
			fmt.Fprintf(p.out, "cancelled %s\n", filepath.Base(path))
			return outcomeSkipped
		}
		meta = edited
	}

	if err := p.tagger.Write(ctx, path, meta); err != nil {
		return p.fail(ctx, path, sha, err)
	}

	dest, err := p.library.Place(path)
	if err != nil {
		return p.fail(ctx, path, sha, err)
	}

	p.record(ctx, path, dest, meta, sha, history.StatusCompleted, "")
	if err := p.notifier.NotifyImportCompleted(ctx, meta.Title, meta.Artist); err != nil {
		p.logger.Warn("import notification failed", "error", err)
	}
	fmt.Fprintf(p.out, "imported %s -> %s\n", filepath.Base(path), dest)
	return outcomeImported
}

// lookupMetadata resolves tags from the fingerprint. Lookup failures are not
// fatal; the dialog opens with whatever was found, possibly nothing.
func (p *importPipeline) lookupMetadata(ctx context.Context, fp *fingerprint.Result) media.Metadata {
	matches, err := p.lookups.Lookup(ctx, fp.Fingerprint, fp.Duration)
	if err != nil {
		p.logger.Warn("acoustid lookup failed", "error", err)
		return media.Metadata{}
	}

	for _, match := range matches {
		if match.Score < p.minScore {
			continue
		}
		meta := media.Metadata{Title: match.Title, Artist: match.Artist}
		full, err := p.recordings.GetRecording(ctx, match.RecordingID)
		if err != nil {
			p.logger.Warn("musicbrainz lookup failed", "recording", match.RecordingID, "error", err)
			// Fall back to a text search; the recording endpoint is the one
			// that tends to 503 under load.
			if found, searchErr := p.recordings.SearchRecording(ctx, meta); searchErr == nil {
				return meta.Merge(found)
			}
			return meta
		}
		return meta.Merge(full)
	}
	return media.Metadata{}
}

func (p *importPipeline) fail(ctx context.Context, path, sha string, err error) importOutcome {
	p.logger.Error("import failed", "file", path, "error", err)
	fmt.Fprintf(p.out, "failed %s: %v\n", filepath.Base(path), err)
	p.record(ctx, path, "", media.Metadata{}, sha, history.StatusFailed, err.Error())
	if notifyErr := p.notifier.NotifyError(ctx, err, "import"); notifyErr != nil {
		p.logger.Warn("error notification failed", "error", notifyErr)
	}
	return outcomeFailed
}

func (p *importPipeline) record(ctx context.Context, source, dest string, meta media.Metadata, sha, status, message string) {
	run := &history.Run{
		Kind:           history.KindImport,
		Source:         source,
		Destination:    dest,
		Title:          meta.Title,
		Artist:         meta.Artist,
		Album:          meta.Album,
		Date:           meta.Date,
		FingerprintSHA: sha,
		Status:         status,
		ErrorMessage:   message,
	}
	if err := p.store.Record(ctx, run); err != nil {
		p.logger.Warn("history record failed", "file", source, "error", err)
	}
}
