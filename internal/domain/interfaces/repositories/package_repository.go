// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
)

// PackageDescriptorRepository defines access to unpacked package descriptors
type PackageDescriptorRepository interface {
	// GetDescriptor retrieves the descriptor of an unpacked package by package name
	GetDescriptor(ctx context.Context, packageName string) (*entities.PackageDescriptor, error)

	// ListDescriptors returns all unpacked package descriptors
	ListDescriptors(ctx context.Context) ([]*entities.PackageDescriptor, error)
}
