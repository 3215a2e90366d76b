// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// DefaultWorkers bounds concurrent package scans when no limit is configured
const DefaultWorkers = 4

// ShortcutProvider returns the exported shortcuts of one package
type ShortcutProvider interface {
	GetShortcuts(ctx context.Context, packageName string) ([]entities.Shortcut, error)
}

// EnumerationOrchestrator scans many packages concurrently, isolating
// failures per package
type EnumerationOrchestrator struct {
	shortcuts  ShortcutProvider
	enumerator gateways.PackageEnumerator
	workers    int
	logger     interfaces.Logger
}

// EnumerationOrchestratorConfig holds configuration for the orchestrator
type EnumerationOrchestratorConfig struct {
	Workers int
}

// NewEnumerationOrchestrator creates a new enumeration orchestrator
func NewEnumerationOrchestrator(
	shortcuts ShortcutProvider,
	enumerator gateways.PackageEnumerator,
	config EnumerationOrchestratorConfig,
	logger interfaces.Logger,
) *EnumerationOrchestrator {
	workers := config.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &EnumerationOrchestrator{
		shortcuts:  shortcuts,
		enumerator: enumerator,
		workers:    workers,
		logger:     interfaces.OrNoOp(logger),
	}
}

type packageResult struct {
	shortcuts []entities.Shortcut
	err       error
	skipped   bool
}

// Enumerate scans the given packages. Results keep the input order. A
// package that fails is reported in Failures and contributes no shortcuts.
// The returned error is non-nil only when ctx ends before every package
// was scanned; the partial report is still returned.
func (o *EnumerationOrchestrator) Enumerate(ctx context.Context, packages []string) (*entities.EnumerationReport, error) {
	start := time.Now()
	report := &entities.EnumerationReport{RunID: uuid.NewString()}
	log := o.logger.With(interfaces.F("run_id", report.RunID))

	results := make([]packageResult, len(packages))

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, pkg := range packages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].err = err
				results[i].skipped = true
				return nil
			}
			results[i].shortcuts, results[i].err = o.shortcuts.GetShortcuts(ctx, pkg)
			return nil
		})
	}
	_ = g.Wait()

	skipped := 0
	for i, pkg := range packages {
		r := results[i]
		if r.skipped {
			skipped++
		}
		if r.err != nil {
			kind := entities.ClassifyError(r.err)
			log.Warn("Package scan failed",
				interfaces.F("package", pkg),
				interfaces.F("kind", string(kind)),
				interfaces.F("error", r.err))
			report.Failures = append(report.Failures, entities.PackageFailure{Package: pkg, Kind: kind, Err: r.err})
			continue
		}
		report.Packages = append(report.Packages, entities.PackageShortcuts{Package: pkg, Shortcuts: r.shortcuts})
	}

	report.Duration = time.Since(start)
	log.Info("Enumeration finished",
		interfaces.F("packages", len(packages)),
		interfaces.F("failures", len(report.Failures)),
		interfaces.F("shortcuts", report.ShortcutCount()),
		interfaces.F("duration", report.Duration))

	if skipped > 0 {
		return report, fmt.Errorf("enumeration interrupted, %d packages not scanned: %w", skipped, ctx.Err())
	}
	return report, nil
}

// EnumerateAll lists every installed package and scans them
func (o *EnumerationOrchestrator) EnumerateAll(ctx context.Context) (*entities.EnumerationReport, error) {
	if o.enumerator == nil {
		return nil, fmt.Errorf("no package enumerator configured")
	}

	sources, err := o.enumerator.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name)
	}
	return o.Enumerate(ctx, names)
}
