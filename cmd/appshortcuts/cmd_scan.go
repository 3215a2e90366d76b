package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <package|path>",
		Short: "List the shortcuts of one package",
		Long: `Scan one package and print the shortcuts its activities declare.

The argument is either a package name found below the packages directory,
or the path of an .apk file or unpacked package directory.`,
		Example: `  appshortcuts scan com.example.mail
  appshortcuts scan ./dist/mail.apk -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd.Context(), args[0])
		},
	}
}

func (a *app) runScan(ctx context.Context, target string) error {
	root, name := a.cfg.PackagesDir, target
	if _, err := os.Stat(target); err == nil {
		root, name = target, ""
	}

	g, err := a.newGateway(root)
	if err != nil {
		return err
	}
	if name == "" {
		sources, err := g.ListPackages(ctx)
		if err != nil {
			return err
		}
		if len(sources) != 1 {
			return fmt.Errorf("%s holds %s; pass a package name", target, plural(len(sources), "package"))
		}
		name = sources[0].Name
	}

	shortcuts, err := a.newShortcutOrchestrator(g).GetShortcuts(ctx, name)
	if err != nil {
		return err
	}

	view := newPackageView(name, shortcuts)
	if a.cfg.Output.Format == "json" {
		return writeJSON(a.stdout, view)
	}
	renderPackage(a.stdout, view)
	return nil
}
