package main

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	adapters "github.com/ochairo/appshortcuts/internal/domain-adapters/gateways"
	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
	"github.com/ochairo/appshortcuts/internal/watch"
)

// sidecarSuffixes map integrity files back onto the package they describe
var sidecarSuffixes = []string{adapters.ChecksumSuffix, ".asc", ".sig"}

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-scan packages as they change",
		Long: `Scan every package once, then watch the packages directory and
re-scan the packages whose files change.`,
		Example: `  appshortcuts watch --packages-dir /data/app`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			g, err := a.newGateway(a.cfg.PackagesDir)
			if err != nil {
				return err
			}
			enumerator := a.newEnumerationOrchestrator(g)

			report, err := enumerator.EnumerateAll(ctx)
			if err != nil {
				return err
			}
			if err := a.printReport(report); err != nil {
				return err
			}

			w, err := watch.New(watch.Config{
				Root:     a.cfg.PackagesDir,
				Debounce: debounce,
				Logger:   a.logger,
				OnChange: func(ctx context.Context, changed []string) error {
					if err := g.Refresh(ctx); err != nil {
						return err
					}
					sources, err := g.ListPackages(ctx)
					if err != nil {
						return err
					}
					affected := affectedPackages(a.cfg.PackagesDir, sources, changed)
					a.logger.Info("Packages changed",
						interfaces.F("paths", changed),
						interfaces.F("packages", affected))
					if len(affected) == 0 {
						return nil
					}

					report, err := enumerator.Enumerate(ctx, affected)
					if report != nil {
						if printErr := a.printReport(report); printErr != nil {
							return printErr
						}
					}
					return err
				},
			})
			if err != nil {
				return err
			}
			a.logger.Info("Watching packages", interfaces.F("dir", a.cfg.PackagesDir))
			return w.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-scanning")
	return cmd
}

func (a *app) printReport(report *entities.EnumerationReport) error {
	view := newReportView(report)
	if a.cfg.Output.Format == "json" {
		return writeJSON(a.stdout, view)
	}
	renderReport(a.stdout, view)
	return nil
}

// affectedPackages returns the packages owning any of the changed paths,
// which are relative to root
func affectedPackages(root string, sources []entities.PackageSource, changed []string) []string {
	var names []string
	for _, src := range sources {
		rel, err := filepath.Rel(root, src.Path)
		if err != nil {
			continue
		}
		if slices.ContainsFunc(changed, func(path string) bool { return owns(rel, path) }) {
			names = append(names, src.Name)
		}
	}
	return names
}

func owns(pkgPath, changed string) bool {
	if pkgPath == "." {
		return true
	}
	for _, suffix := range sidecarSuffixes {
		changed = strings.TrimSuffix(changed, suffix)
	}
	return changed == pkgPath || strings.HasPrefix(changed, pkgPath+string(filepath.Separator))
}
