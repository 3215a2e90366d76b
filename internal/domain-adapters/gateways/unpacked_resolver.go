package gateways

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
	"github.com/ochairo/appshortcuts/internal/external-adapters/textxml"
)

// unpackedResolver resolves resources from a package.yml resource table
type unpackedResolver struct {
	desc *entities.PackageDescriptor
}

func newUnpackedResolver(desc *entities.PackageDescriptor) *unpackedResolver {
	return &unpackedResolver{desc: desc}
}

func (r *unpackedResolver) ResolveString(id entities.ResourceID) (string, error) {
	s, ok := r.desc.Strings[id]
	if !ok {
		return "", fmt.Errorf("%w: string %s in %s", entities.ErrResourceNotFound, id, r.desc.Name)
	}
	return s, nil
}

func (r *unpackedResolver) ResolveDrawable(id entities.ResourceID) (entities.Icon, error) {
	path, ok := r.desc.Drawables[id]
	if !ok {
		return entities.Icon{}, fmt.Errorf("%w: drawable %s in %s", entities.ErrResourceNotFound, id, r.desc.Name)
	}
	return entities.Icon{ResourceID: id, Path: filepath.Join(r.desc.Dir, path)}, nil
}

func (r *unpackedResolver) OpenXMLResource(id entities.ResourceID) (gateways.XMLParser, error) {
	path, ok := r.desc.XML[id]
	if !ok {
		return nil, fmt.Errorf("%w: xml %s in %s", entities.ErrResourceNotFound, id, r.desc.Name)
	}
	//nolint:gosec // G304: path comes from the package descriptor
	f, err := os.Open(filepath.Join(r.desc.Dir, path))
	if err != nil {
		return nil, fmt.Errorf("%w: xml %s: %w", entities.ErrResourceNotFound, id, err)
	}
	return textxml.NewParser(f, textxml.WithNameResolver(symbolicNames(r.desc))), nil
}

func (r *unpackedResolver) Close() error {
	return nil
}

// symbolicNames resolves "type/name" references against a descriptor
func symbolicNames(desc *entities.PackageDescriptor) textxml.NameResolver {
	return func(ref string) (entities.ResourceID, bool) {
		id, ok := desc.Names[ref]
		return id, ok
	}
}
