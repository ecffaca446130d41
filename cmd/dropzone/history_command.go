package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dropzone/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent import and transfer runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "history is disabled in the configuration")
				return nil
			}

			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}

			if jsonOutput {
				return writeJSON(cmd, historyViews(runs))
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					string(run.Kind),
					runSubject(run),
					run.Status,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Kind", "Subject", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

// runSubject condenses a run into one table cell: what was handled and where
// it went.
func runSubject(run history.Run) string {
	switch run.Kind {
	case history.KindImport:
		if run.Title != "" {
			subject := run.Title
			if run.Artist != "" {
				subject = run.Artist + " - " + run.Title
			}
			return subject
		}
		return run.Source
	case history.KindTransfer:
		return fmt.Sprintf("%s -> %s", truncate(run.Source, 40), run.Destination)
	}
	return run.Source
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "…"
}

type historyView struct {
	UUID        string    `json:"uuid"`
	Kind        string    `json:"kind"`
	Source      string    `json:"source"`
	Destination string    `json:"destination,omitempty"`
	Title       string    `json:"title,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	Album       string    `json:"album,omitempty"`
	Date        string    `json:"date,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func historyViews(runs []history.Run) []historyView {
	views := make([]historyView, 0, len(runs))
	for _, run := range runs {
		views = append(views, historyView{
			UUID:        run.UUID,
			Kind:        string(run.Kind),
			Source:      run.Source,
			Destination: run.Destination,
			Title:       run.Title,
			Artist:      run.Artist,
			Album:       run.Album,
			Date:        run.Date,
			Status:      run.Status,
			Error:       run.ErrorMessage,
			CreatedAt:   run.CreatedAt,
		})
	}
	return views
}
