package yaml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
)

// PackageRepository implements repositories.PackageDescriptorRepository over
// a directory tree of unpacked packages
type PackageRepository struct {
	packagesDir string
	parser      *DescriptorParser
	logger      interfaces.Logger
}

// NewPackageRepository creates a new YAML-based descriptor repository
func NewPackageRepository(packagesDir string, logger interfaces.Logger) *PackageRepository {
	return &PackageRepository{
		packagesDir: packagesDir,
		parser:      NewDescriptorParser(),
		logger:      interfaces.OrNoOp(logger),
	}
}

// GetDescriptor retrieves a package descriptor by package name. A directory
// named after the package is tried first, then the whole tree.
func (r *PackageRepository) GetDescriptor(ctx context.Context, packageName string) (*entities.PackageDescriptor, error) {
	direct := filepath.Join(r.packagesDir, packageName, DescriptorFile)
	if _, err := os.Stat(direct); err == nil {
		desc, err := r.parser.ParseFile(direct)
		if err == nil && desc.Name == packageName {
			return desc, nil
		}
	}

	all, err := r.ListDescriptors(ctx)
	if err != nil {
		return nil, err
	}
	for _, desc := range all {
		if desc.Name == packageName {
			return desc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", entities.ErrPackageNotFound, packageName)
}

// ListDescriptors returns all unpacked package descriptors below the packages directory
func (r *PackageRepository) ListDescriptors(ctx context.Context) ([]*entities.PackageDescriptor, error) {
	descriptors := make([]*entities.PackageDescriptor, 0)

	err := filepath.WalkDir(r.packagesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || d.Name() != DescriptorFile {
			return nil
		}

		desc, err := r.parser.ParseFile(path)
		if err != nil {
			// Log warning but continue with the other packages
			r.logger.Warn("Skipping unreadable package descriptor",
				interfaces.F("path", path),
				interfaces.F("error", err))
			return nil
		}
		descriptors = append(descriptors, desc)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("packages directory %s does not exist: %w", r.packagesDir, err)
		}
		return nil, fmt.Errorf("failed to read packages directory: %w", err)
	}

	return descriptors, nil
}
