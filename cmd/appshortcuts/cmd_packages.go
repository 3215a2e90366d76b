package main

import (
	"github.com/spf13/cobra"
)

func newPackagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List the packages found in the packages directory",
		Example: `  appshortcuts packages
  appshortcuts packages -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.newGateway(a.cfg.PackagesDir)
			if err != nil {
				return err
			}
			sources, err := g.ListPackages(cmd.Context())
			if err != nil {
				return err
			}

			views := make([]sourceView, 0, len(sources))
			for _, s := range sources {
				views = append(views, sourceView{Package: s.Name, Type: s.Type, Path: s.Path})
			}
			if a.cfg.Output.Format == "json" {
				return writeJSON(a.stdout, views)
			}
			renderSources(a.stdout, views)
			return nil
		},
	}
}
