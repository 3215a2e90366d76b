// Package services defines interfaces for domain service contracts.
package services

import (
	"iter"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// ShortcutService defines the parsing and policy operations of shortcut discovery
type ShortcutService interface {
	// ScanManifest indexes the components that declare a shortcuts resource
	ScanManifest(p gateways.XMLParser, packageName string) (*entities.ManifestIndex, error)

	// ScanShortcuts lazily yields the shortcuts declared by one component
	ScanShortcuts(p gateways.XMLParser, resolver gateways.ResourceResolver, packageName string, declaring entities.ComponentName) iter.Seq2[entities.Shortcut, error]

	// IsExported reports whether a component may be invoked by other packages
	IsExported(component entities.ComponentName, meta *entities.PackageMetadata) bool

	// Accept applies the export gate to a shortcut
	Accept(shortcut entities.Shortcut, meta *entities.PackageMetadata) bool
}
