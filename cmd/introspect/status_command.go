package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"introspect/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check external dependencies and service reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pinger, err := preflight.NewPinger(cfg)
			if err != nil {
				return err
			}

			checks := preflight.Run(cmd.Context(), cfg, pinger)
			if jsonFlag {
				return writeJSON(cmd, checks)
			}

			rows := make([][]string, 0, len(checks))
			for _, check := range checks {
				state := "ok"
				if !check.OK {
					state = "missing"
					if check.Optional {
						state = "missing (optional)"
					}
				}
				rows = append(rows, []string{check.Name, state, check.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Dependency", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if !preflight.AllRequired(checks) {
				return fmt.Errorf("required dependencies are missing")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the checks as JSON")
	return cmd
}
