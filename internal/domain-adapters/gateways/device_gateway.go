package gateways

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/repositories"
	"github.com/ochairo/appshortcuts/internal/domain/services"
	"github.com/ochairo/appshortcuts/internal/external-adapters/apk"
	"github.com/ochairo/appshortcuts/internal/external-adapters/textxml"
	"github.com/ochairo/appshortcuts/internal/external-adapters/yaml"
)

// DefaultTableCacheSize is the number of parsed resource tables kept when none is configured
const DefaultTableCacheSize = 32

// Package file extensions
const (
	apkExt    = ".apk"
	bundleExt = ".aab"
)

// DeviceGatewayConfig configures NewDeviceGateway
type DeviceGatewayConfig struct {
	// Root is a packages directory, or a single .apk/.aab file or unpacked package directory
	Root            string
	Verifier        gateways.PackageVerifier
	Logger          interfaces.Logger
	TableCacheSize  int
	StringCacheSize int
}

type tableKey struct {
	path    string
	size    int64
	modTime int64
}

// deviceGateway implements gateways.PackageGateway over packages stored on disk
type deviceGateway struct {
	root            string
	descriptors     repositories.PackageDescriptorRepository
	verifier        gateways.PackageVerifier
	logger          interfaces.Logger
	tables          *lru.Cache[tableKey, *apk.Table]
	stringCacheSize int

	mu       sync.Mutex
	indexed  bool
	sources  map[string]entities.PackageSource
	unpacked map[string]*entities.PackageDescriptor
	verified map[string]error
}

// NewDeviceGateway creates a gateway over the packages below cfg.Root
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewDeviceGateway(cfg DeviceGatewayConfig) (*deviceGateway, error) {
	if cfg.Root == "" {
		return nil, errors.New("packages root is required")
	}
	size := cfg.TableCacheSize
	if size <= 0 {
		size = DefaultTableCacheSize
	}
	tables, err := lru.New[tableKey, *apk.Table](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create table cache: %w", err)
	}

	logger := interfaces.OrNoOp(cfg.Logger)
	return &deviceGateway{
		root:            cfg.Root,
		descriptors:     yaml.NewPackageRepository(cfg.Root, logger),
		verifier:        cfg.Verifier,
		logger:          logger,
		tables:          tables,
		stringCacheSize: cfg.StringCacheSize,
		verified:        make(map[string]error),
	}, nil
}

// ListPackages implements gateways.PackageEnumerator. Packages are sorted by name.
func (g *deviceGateway) ListPackages(ctx context.Context) ([]entities.PackageSource, error) {
	if err := g.ensureIndex(ctx); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]entities.PackageSource, 0, len(g.sources))
	for _, src := range g.sources {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Refresh drops the package index and verification results so the next
// call re-reads the packages directory
func (g *deviceGateway) Refresh(ctx context.Context) error {
	g.mu.Lock()
	g.indexed = false
	g.verified = make(map[string]error)
	g.mu.Unlock()
	return g.ensureIndex(ctx)
}

// OpenManifest implements gateways.ManifestProvider
func (g *deviceGateway) OpenManifest(ctx context.Context, packageName string) (gateways.XMLParser, error) {
	src, err := g.open(ctx, packageName)
	if err != nil {
		return nil, err
	}

	if src.Type == entities.SourceUnpacked {
		desc := g.descriptor(packageName)
		//nolint:gosec // G304: manifest path comes from the package descriptor
		f, err := os.Open(filepath.Join(desc.Dir, desc.Manifest))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", entities.ErrAssetOpenFailure, err)
		}
		return textxml.NewParser(f, textxml.WithNameResolver(symbolicNames(desc))), nil
	}

	a, err := apk.Open(src.Path)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // the manifest parser holds its own copy of the document
	defer a.Close()
	p, err := a.OpenManifest()
	if err != nil {
		return nil, err
	}
	return p, nil
}

// OpenResources implements gateways.ResourceProvider
func (g *deviceGateway) OpenResources(ctx context.Context, packageName string) (gateways.ResourceResolver, error) {
	src, err := g.open(ctx, packageName)
	if err != nil {
		return nil, err
	}
	if src.Type == entities.SourceUnpacked {
		return newUnpackedResolver(g.descriptor(packageName)), nil
	}

	a, err := apk.Open(src.Path)
	if err != nil {
		return nil, err
	}
	table, err := g.table(a)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	r, err := apk.NewResolver(a, table, g.stringCacheSize)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return r, nil
}

// GetPackageMetadata implements gateways.PackageMetadataProvider. Unpacked
// packages may list their activities; otherwise the manifest is scanned.
func (g *deviceGateway) GetPackageMetadata(ctx context.Context, packageName string) (*entities.PackageMetadata, error) {
	src, err := g.open(ctx, packageName)
	if err != nil {
		return nil, err
	}
	if src.Type == entities.SourceUnpacked {
		if desc := g.descriptor(packageName); len(desc.Activities) > 0 {
			return &entities.PackageMetadata{
				PackageName: packageName,
				Activities:  append([]entities.ActivityInfo(nil), desc.Activities...),
			}, nil
		}
	}

	p, err := g.OpenManifest(ctx, packageName)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // read-only parser
	defer p.Close()
	return services.ScanComponents(p, packageName)
}

// open looks a package up and verifies it once
func (g *deviceGateway) open(ctx context.Context, packageName string) (entities.PackageSource, error) {
	if err := ctx.Err(); err != nil {
		return entities.PackageSource{}, err
	}
	if err := g.ensureIndex(ctx); err != nil {
		return entities.PackageSource{}, err
	}

	g.mu.Lock()
	src, ok := g.sources[packageName]
	g.mu.Unlock()
	if !ok {
		return src, fmt.Errorf("%w: %s", entities.ErrPackageNotFound, packageName)
	}
	if src.Type == entities.SourceBundle {
		return src, fmt.Errorf("%w: %s is an app bundle", entities.ErrUnsupportedPlatform, src.Path)
	}
	if err := g.verify(ctx, src); err != nil {
		return src, err
	}
	return src, nil
}

func (g *deviceGateway) verify(ctx context.Context, src entities.PackageSource) error {
	if g.verifier == nil {
		return nil
	}

	g.mu.Lock()
	err, done := g.verified[src.Path]
	g.mu.Unlock()
	if done {
		return err
	}

	err = g.verifier.VerifyPackage(ctx, src)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		g.logger.Warn("Package failed verification",
			interfaces.F("package", src.Name),
			interfaces.F("path", src.Path),
			interfaces.F("error", err))
	}

	g.mu.Lock()
	g.verified[src.Path] = err
	g.mu.Unlock()
	return err
}

func (g *deviceGateway) descriptor(packageName string) *entities.PackageDescriptor {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unpacked[packageName]
}

// table returns the archive's resource table, parsing it at most once per file version
func (g *deviceGateway) table(a *apk.Archive) (*apk.Table, error) {
	info, err := os.Stat(a.Path())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrAssetOpenFailure, err)
	}
	key := tableKey{path: a.Path(), size: info.Size(), modTime: info.ModTime().UnixNano()}
	if t, ok := g.tables.Get(key); ok {
		return t, nil
	}

	t, err := a.Table()
	if err != nil {
		return nil, err
	}
	g.tables.Add(key, t)
	return t, nil
}

func (g *deviceGateway) ensureIndex(ctx context.Context) error {
	g.mu.Lock()
	indexed := g.indexed
	g.mu.Unlock()
	if indexed {
		return nil
	}

	sources, unpacked, err := g.buildIndex(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.sources = sources
	g.unpacked = unpacked
	g.indexed = true
	g.mu.Unlock()

	g.logger.Debug("Indexed packages",
		interfaces.F("root", g.root),
		interfaces.F("count", len(sources)))
	return nil
}

func (g *deviceGateway) buildIndex(ctx context.Context) (map[string]entities.PackageSource, map[string]*entities.PackageDescriptor, error) {
	info, err := os.Stat(g.root)
	if err != nil {
		return nil, nil, fmt.Errorf("packages root %s: %w", g.root, err)
	}

	sources := make(map[string]entities.PackageSource)
	unpacked := make(map[string]*entities.PackageDescriptor)
	add := func(src entities.PackageSource) bool {
		if prev, dup := sources[src.Name]; dup {
			g.logger.Warn("Duplicate package ignored",
				interfaces.F("package", src.Name),
				interfaces.F("path", src.Path),
				interfaces.F("kept", prev.Path))
			return false
		}
		sources[src.Name] = src
		return true
	}

	if info.Mode().IsRegular() {
		src, err := g.classify(g.root)
		if err != nil {
			return nil, nil, err
		}
		add(src)
		return sources, unpacked, nil
	}

	err = filepath.WalkDir(g.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isPackageFile(path) {
			return nil
		}
		src, err := g.classify(path)
		if err != nil {
			g.logger.Warn("Skipping unreadable package",
				interfaces.F("path", path),
				interfaces.F("error", err))
			return nil
		}
		add(src)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to index packages: %w", err)
	}

	descriptors, err := g.descriptors.ListDescriptors(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, desc := range descriptors {
		if add(entities.PackageSource{Name: desc.Name, Path: desc.Dir, Type: entities.SourceUnpacked}) {
			unpacked[desc.Name] = desc
		}
	}
	return sources, unpacked, nil
}

// classify reads the package name of an archive
func (g *deviceGateway) classify(path string) (entities.PackageSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case apkExt:
		a, err := apk.Open(path)
		if err != nil {
			return entities.PackageSource{}, err
		}
		//nolint:errcheck // Defer close on read-only archive
		defer a.Close()
		return entities.PackageSource{Name: a.PackageName(), Path: path, Type: entities.SourceAPK}, nil
	case bundleExt:
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return entities.PackageSource{Name: name, Path: path, Type: entities.SourceBundle}, nil
	default:
		return entities.PackageSource{}, fmt.Errorf("%w: %s is not a package file", entities.ErrAssetOpenFailure, path)
	}
}

func isPackageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == apkExt || ext == bundleExt
}
