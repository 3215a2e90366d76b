package apk

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// DefaultStringCacheSize is the per-resolver string cache size used when none is configured
const DefaultStringCacheSize = 256

// Resolver resolves the resources of one archive
type Resolver struct {
	archive *Archive
	table   *Table
	strings *lru.Cache[entities.ResourceID, string]
}

// NewResolver binds a resource table to its archive. Closing the resolver
// closes the archive.
func NewResolver(archive *Archive, table *Table, stringCacheSize int) (*Resolver, error) {
	if stringCacheSize <= 0 {
		stringCacheSize = DefaultStringCacheSize
	}
	cache, err := lru.New[entities.ResourceID, string](stringCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create string cache: %w", err)
	}
	return &Resolver{archive: archive, table: table, strings: cache}, nil
}

// ResolveString implements gateways.ResourceResolver
func (r *Resolver) ResolveString(id entities.ResourceID) (string, error) {
	if s, ok := r.strings.Get(id); ok {
		return s, nil
	}
	s, err := r.table.ResolveString(id)
	if err != nil {
		return "", err
	}
	r.strings.Add(id, s)
	return s, nil
}

// ResolveDrawable implements gateways.ResourceResolver. File drawables
// resolve to their archive path, color drawables to their "#aarrggbb" form.
func (r *Resolver) ResolveDrawable(id entities.ResourceID) (entities.Icon, error) {
	v, err := r.table.lookup(id)
	if err != nil {
		return entities.Icon{}, err
	}
	switch v := v.(type) {
	case string:
		return entities.Icon{ResourceID: id, Path: v}, nil
	case uint32:
		return entities.Icon{ResourceID: id, Path: fmt.Sprintf("#%08x", v)}, nil
	case nil:
		return entities.Icon{}, fmt.Errorf("%w: drawable %s is null", entities.ErrResourceNotFound, id)
	default:
		return entities.Icon{}, fmt.Errorf("%w: drawable %s has unexpected value %T", entities.ErrResourceNotFound, id, v)
	}
}

// OpenXMLResource implements gateways.ResourceResolver
func (r *Resolver) OpenXMLResource(id entities.ResourceID) (gateways.XMLParser, error) {
	path, err := r.ResolveString(id)
	if err != nil {
		return nil, err
	}
	data, err := r.archive.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: xml %s (%s): %w", entities.ErrResourceNotFound, id, path, err)
	}
	p, err := decodeXML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: xml %s (%s): %w", entities.ErrMalformedShortcutsDocument, id, path, err)
	}
	return p, nil
}

// Close implements gateways.ResourceResolver
func (r *Resolver) Close() error {
	r.strings.Purge()
	return r.archive.Close()
}
