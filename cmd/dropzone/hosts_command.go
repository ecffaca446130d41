package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHostsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "List hosts parsed from the ssh config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			hosts, err := ctx.hosts()
			if err != nil {
				return fmt.Errorf("read ssh config: %w", err)
			}

			if jsonOutput {
				type hostView struct {
					Name         string `json:"name"`
					Address      string `json:"address"`
					IdentityFile string `json:"identity_file,omitempty"`
				}
				views := make([]hostView, 0, len(hosts))
				for _, host := range hosts {
					views = append(views, hostView{
						Name:         host.Name,
						Address:      host.Address(),
						IdentityFile: host.IdentityFile,
					})
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(hosts) == 0 {
				fmt.Fprintf(out, "no hosts found in %s\n", cfg.SSH.ConfigPath)
				return nil
			}

			rows := make([][]string, 0, len(hosts))
			for _, host := range hosts {
				rows = append(rows, []string{host.Name, host.Address(), yesNo(host.HasIdentityFile())})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Host", "Address", "Key"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
