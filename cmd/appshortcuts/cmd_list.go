package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the shortcuts of every package",
		Long: `Scan every package below the packages directory concurrently.

A package that cannot be scanned is reported and does not stop the others.`,
		Example: `  appshortcuts list
  appshortcuts list --packages-dir /data/app -o json
  appshortcuts list --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.newGateway(a.cfg.PackagesDir)
			if err != nil {
				return err
			}

			report, runErr := a.newEnumerationOrchestrator(g).EnumerateAll(cmd.Context())
			if report != nil {
				if err := a.printReport(report); err != nil {
					return err
				}
				if runErr == nil && strict && len(report.Failures) > 0 {
					return fmt.Errorf("%s failed", plural(len(report.Failures), "package"))
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when any package fails")
	return cmd
}
