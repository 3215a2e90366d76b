package orchestrators

import (
	"context"
	"fmt"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/services"
)

// ShortcutOrchestrator coordinates shortcut discovery for a single package:
// manifest scan, shortcut definition scan, then the export gate
type ShortcutOrchestrator struct {
	gateway         gateways.PackageGateway
	shortcutService services.ShortcutService
	logger          interfaces.Logger
}

// NewShortcutOrchestrator creates a new shortcut orchestrator
func NewShortcutOrchestrator(
	gateway gateways.PackageGateway,
	shortcutService services.ShortcutService,
	logger interfaces.Logger,
) *ShortcutOrchestrator {
	return &ShortcutOrchestrator{
		gateway:         gateway,
		shortcutService: shortcutService,
		logger:          interfaces.OrNoOp(logger),
	}
}

// GetShortcuts returns the exported shortcuts a package declares, ordered by
// declaring component and then document order. Any failure aborts the whole
// package.
func (o *ShortcutOrchestrator) GetShortcuts(ctx context.Context, packageName string) ([]entities.Shortcut, error) {
	log := o.logger.With(interfaces.F("package", packageName))

	meta, err := o.gateway.GetPackageMetadata(ctx, packageName)
	if err != nil {
		return nil, fmt.Errorf("failed to load package metadata for %s: %w", packageName, err)
	}

	resolver, err := o.gateway.OpenResources(ctx, packageName)
	if err != nil {
		return nil, fmt.Errorf("failed to open resources of %s: %w", packageName, err)
	}
	defer closeQuietly(log, "resources", resolver)

	index, err := o.scanManifest(ctx, packageName)
	if err != nil {
		return nil, err
	}
	log.Debug("Manifest scanned", interfaces.F("components", index.Len()))

	var shortcuts []entities.Shortcut
	for component, resource := range index.All() {
		accepted, err := o.scanComponent(resolver, meta, packageName, component, resource)
		if err != nil {
			return nil, err
		}
		if dropped := accepted.declared - len(accepted.shortcuts); dropped > 0 {
			log.Debug("Dropped shortcuts targeting unexported components",
				interfaces.F("activity", component.FlattenToString()),
				interfaces.F("dropped", dropped))
		}
		shortcuts = append(shortcuts, accepted.shortcuts...)
	}

	log.Info("Shortcuts discovered", interfaces.F("count", len(shortcuts)))
	return shortcuts, nil
}

func (o *ShortcutOrchestrator) scanManifest(ctx context.Context, packageName string) (*entities.ManifestIndex, error) {
	manifest, err := o.gateway.OpenManifest(ctx, packageName)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest of %s: %w", packageName, err)
	}
	defer closeQuietly(o.logger, "manifest", manifest)

	index, err := o.shortcutService.ScanManifest(manifest, packageName)
	if err != nil {
		return nil, fmt.Errorf("failed to scan manifest of %s: %w", packageName, err)
	}
	return index, nil
}

type componentShortcuts struct {
	declared  int
	shortcuts []entities.Shortcut
}

func (o *ShortcutOrchestrator) scanComponent(
	resolver gateways.ResourceResolver,
	meta *entities.PackageMetadata,
	packageName string,
	component entities.ComponentName,
	resource entities.ResourceID,
) (componentShortcuts, error) {
	var result componentShortcuts

	parser, err := resolver.OpenXMLResource(resource)
	if err != nil {
		return result, fmt.Errorf("failed to open shortcuts resource %s of %s: %w", resource, component, err)
	}
	defer closeQuietly(o.logger, "shortcuts resource", parser)

	for shortcut, err := range o.shortcutService.ScanShortcuts(parser, resolver, packageName, component) {
		if err != nil {
			return result, fmt.Errorf("failed to scan shortcuts of %s: %w", component, err)
		}
		result.declared++
		if o.shortcutService.Accept(shortcut, meta) {
			result.shortcuts = append(result.shortcuts, shortcut)
		}
	}
	return result, nil
}

type closer interface {
	Close() error
}

func closeQuietly(log interfaces.Logger, what string, c closer) {
	if err := c.Close(); err != nil {
		log.Warn("Failed to close "+what, interfaces.F("error", err))
	}
}
