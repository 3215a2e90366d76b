// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
)

// ResourceResolver resolves resource ids of one package
type ResourceResolver interface {
	// ResolveString returns the string value of a resource
	ResolveString(id entities.ResourceID) (string, error)

	// ResolveDrawable returns a handle on a drawable resource
	ResolveDrawable(id entities.ResourceID) (entities.Icon, error)

	// OpenXMLResource opens an XML resource as an event stream
	OpenXMLResource(id entities.ResourceID) (XMLParser, error)

	// Close releases the package handle
	Close() error
}

// ManifestProvider opens a package's compiled manifest
type ManifestProvider interface {
	OpenManifest(ctx context.Context, packageName string) (XMLParser, error)
}

// ResourceProvider binds a ResourceResolver to a package
type ResourceProvider interface {
	OpenResources(ctx context.Context, packageName string) (ResourceResolver, error)
}

// PackageMetadataProvider reports the export flags of a package's components
type PackageMetadataProvider interface {
	GetPackageMetadata(ctx context.Context, packageName string) (*entities.PackageMetadata, error)
}

// PackageEnumerator lists installed packages
type PackageEnumerator interface {
	ListPackages(ctx context.Context) ([]entities.PackageSource, error)
}

// PackageGateway defines everything the shortcut workflow needs from the host
type PackageGateway interface {
	ManifestProvider
	ResourceProvider
	PackageMetadataProvider
	PackageEnumerator
}

// PackageVerifier checks the integrity of a package file before it is read
type PackageVerifier interface {
	VerifyPackage(ctx context.Context, source entities.PackageSource) error
}
