package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dropzone/internal/config"
	"dropzone/internal/history"
	"dropzone/internal/notifications"
	"dropzone/internal/remote"
	"dropzone/internal/scp"
	"dropzone/internal/sshconfig"
	"dropzone/internal/ui"
)

func newCopyCommand(ctx *commandContext) *cobra.Command {
	var hostFlag string
	var destFlag string
	var createDest bool

	cmd := &cobra.Command{
		Use:   "copy FILE...",
		Short: "Copy files to a remote host over scp",
		Long: "Opens a dialog to pick a host from ~/.ssh/config and a destination " +
			"directory with remote path completion, then copies the files with scp. " +
			"Pass --host and --dest to skip the dialog.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			sources, err := expandSources(args)
			if err != nil {
				return err
			}

			hosts, err := ctx.hosts()
			if err != nil {
				return fmt.Errorf("read ssh config: %w", err)
			}
			if len(hosts) == 0 {
				return fmt.Errorf("no hosts found in %s", cfg.SSH.ConfigPath)
			}

			var result ui.CopyResult
			if hostFlag != "" && destFlag != "" {
				host, ok := sshconfig.Find(hosts, hostFlag)
				if !ok {
					return fmt.Errorf("host %q not found in %s", hostFlag, cfg.SSH.ConfigPath)
				}
				if !host.HasIdentityFile() {
					return fmt.Errorf("host %q has no identity file; use the interactive dialog for password authentication", hostFlag)
				}
				result = ui.CopyResult{
					Host:              host,
					Destination:       destFlag,
					CreateDestination: createDest,
					Confirmed:         true,
				}
			} else {
				home, _ := os.UserHomeDir()
				result, err = ui.RunCopyDialog(ui.CopyParams{
					Hosts:        hosts,
					Sources:      sources,
					LocalHome:    home,
					NewCompleter: completerFactory(cfg, logger),
				})
				if err != nil {
					return err
				}
				if !result.Confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "copy cancelled")
					return nil
				}
				if createDest {
					result.CreateDestination = true
				}
			}

			return runTransfer(ctx, cmd, sources, result)
		},
	}

	cmd.Flags().StringVar(&hostFlag, "host", "", "Host alias from ssh config (skips the dialog with --dest)")
	cmd.Flags().StringVar(&destFlag, "dest", "", "Remote destination directory (skips the dialog with --host)")
	cmd.Flags().BoolVar(&createDest, "create-dest", false, "Create the destination directory before copying")
	return cmd
}

// completerFactory builds per-host completers for the copy dialog using the
// configured ssh binary and timeouts.
func completerFactory(cfg *config.Config, logger *slog.Logger) func(sshconfig.Host) *remote.Completer {
	return func(host sshconfig.Host) *remote.Completer {
		runner := remote.NewSSHRunner(cfg.Tools.SSH, host, cfg.SSH.ConnectTimeout)
		return remote.NewCompleter(runner,
			remote.WithListLimit(cfg.SSH.ListLimit),
			remote.WithTimeout(time.Duration(cfg.SSH.ListTimeout)*time.Second),
			remote.WithLogger(logger),
		)
	}
}

func runTransfer(ctx *commandContext, cmd *cobra.Command, sources []string, result ui.CopyResult) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger := ctx.ensureLogger()

	client, err := scp.New(cfg.Tools.SCP, cfg.Tools.SSH, cfg.Tools.SSHPass, cfg.SSH.CopyTimeout)
	if err != nil {
		return err
	}

	store, err := ctx.openHistory(cmd.Context())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)

	run := &history.Run{
		UUID:        uuid.NewString(),
		Kind:        history.KindTransfer,
		Source:      summarizeSourceList(sources),
		Destination: result.Host.Name + ":" + result.Destination,
		Status:      history.StatusCompleted,
	}

	logger.Info("transfer starting",
		"transfer", run.UUID,
		"host", result.Host.Name,
		"destination", result.Destination,
		"files", len(sources),
		"create_destination", result.CreateDestination)

	copyErr := client.Copy(cmd.Context(), scp.Request{
		Host:              result.Host,
		Files:             sources,
		Destination:       result.Destination,
		Password:          result.Password,
		CreateDestination: result.CreateDestination,
	})
	if copyErr != nil {
		run.Status = history.StatusFailed
		run.ErrorMessage = copyErr.Error()
		logger.Error("transfer failed", "transfer", run.UUID, "error", copyErr)
		if err := notifier.NotifyError(cmd.Context(), copyErr, "transfer"); err != nil {
			logger.Warn("error notification failed", "error", err)
		}
	} else {
		logger.Info("transfer completed", "transfer", run.UUID)
		if err := notifier.NotifyTransferCompleted(cmd.Context(), result.Host.Name, result.Destination, len(sources)); err != nil {
			logger.Warn("transfer notification failed", "error", err)
		}
	}

	if err := store.Record(cmd.Context(), run); err != nil {
		logger.Warn("history record failed", "transfer", run.UUID, "error", err)
	}

	if copyErr != nil {
		return copyErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "copied %d item(s) to %s:%s\n", len(sources), result.Host.Name, result.Destination)
	return nil
}
