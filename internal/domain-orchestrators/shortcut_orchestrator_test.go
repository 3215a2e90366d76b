package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
	"github.com/ochairo/appshortcuts/internal/domain/services"
	"github.com/ochairo/appshortcuts/internal/testutil/fakexml"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockPackageGateway serves in-memory packages
type mockPackageGateway struct {
	mu        sync.Mutex
	manifests map[string]fakexml.Node
	resolvers map[string]*fakexml.Resolver
	metadata  map[string]*entities.PackageMetadata

	metadataErr error
	resourceErr error
	opened      []*fakexml.Parser
}

func newMockGateway() *mockPackageGateway {
	return &mockPackageGateway{
		manifests: map[string]fakexml.Node{},
		resolvers: map[string]*fakexml.Resolver{},
		metadata:  map[string]*entities.PackageMetadata{},
	}
}

func (m *mockPackageGateway) OpenManifest(_ context.Context, pkg string) (gateways.XMLParser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, ok := m.manifests[pkg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrPackageNotFound, pkg)
	}
	p := fakexml.NewParser(root)
	m.opened = append(m.opened, p)
	return p, nil
}

func (m *mockPackageGateway) OpenResources(_ context.Context, pkg string) (gateways.ResourceResolver, error) {
	if m.resourceErr != nil {
		return nil, m.resourceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resolvers[pkg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrPackageNotFound, pkg)
	}
	return r, nil
}

func (m *mockPackageGateway) GetPackageMetadata(_ context.Context, pkg string) (*entities.PackageMetadata, error) {
	if m.metadataErr != nil {
		return nil, m.metadataErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.metadata[pkg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrPackageNotFound, pkg)
	}
	return meta, nil
}

func (m *mockPackageGateway) ListPackages(_ context.Context) ([]entities.PackageSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.PackageSource
	for name := range m.manifests {
		out = append(out, entities.PackageSource{Name: name, Type: entities.SourceUnpacked})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func shortcutsMeta(resource string) fakexml.Node {
	return fakexml.E("meta-data", fakexml.A("name", "android.app.shortcuts", "resource", resource))
}

// addComposePackage registers the single-activity com.x package
func addComposePackage(gw *mockPackageGateway) {
	gw.manifests["com.x"] = fakexml.E("manifest", fakexml.A("package", "com.x"),
		fakexml.E("application", nil,
			fakexml.E("activity", fakexml.A("name", ".Main", "exported", "true"), shortcutsMeta("@77")),
		),
	)
	gw.resolvers["com.x"] = &fakexml.Resolver{
		Drawables: map[entities.ResourceID]string{88: "res/drawable/ic_open.xml"},
		XML: map[entities.ResourceID]fakexml.Node{
			77: fakexml.E("shortcuts", nil,
				fakexml.E("shortcut", fakexml.A("shortcutId", "s1", "shortcutShortLabel", "Open", "icon", "@88"),
					fakexml.E("intent", fakexml.A(
						"action", "android.intent.action.VIEW",
						"targetClass", ".Main",
						"targetPackage", "com.x",
					)),
				),
			),
		},
	}
	gw.metadata["com.x"] = &entities.PackageMetadata{
		PackageName: "com.x",
		Activities:  []entities.ActivityInfo{{Name: ".Main", Exported: true}},
	}
}

func newOrchestrator(gw *mockPackageGateway) *ShortcutOrchestrator {
	return NewShortcutOrchestrator(gw, services.NewShortcutService(nil), nil)
}

func TestShortcutOrchestrator_GetShortcuts_EndToEnd(t *testing.T) {
	gw := newMockGateway()
	addComposePackage(gw)

	got, err := newOrchestrator(gw).GetShortcuts(context.Background(), "com.x")
	require.NoError(t, err)
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "Open", s.ShortLabel)
	assert.Equal(t, "", s.LongLabel)
	assert.Equal(t, "", s.DisabledMessage)
	assert.Equal(t, "android.intent.action.VIEW", s.Intent.Action)
	assert.Equal(t, entities.NewComponentName("com.x", ".Main"), s.Intent.Component)
	assert.Equal(t, entities.NewComponentName("com.x", ".Main"), s.Activity)
	assert.Equal(t, entities.ResourceID(88), s.Icon.ResourceID)
}

func TestShortcutOrchestrator_GetShortcuts_Idempotent(t *testing.T) {
	gw := newMockGateway()
	addComposePackage(gw)
	orch := newOrchestrator(gw)

	first, err := orch.GetShortcuts(context.Background(), "com.x")
	require.NoError(t, err)
	second, err := orch.GetShortcuts(context.Background(), "com.x")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestShortcutOrchestrator_GetShortcuts_ClosesEverything(t *testing.T) {
	gw := newMockGateway()
	addComposePackage(gw)

	_, err := newOrchestrator(gw).GetShortcuts(context.Background(), "com.x")
	require.NoError(t, err)

	resolver := gw.resolvers["com.x"]
	assert.True(t, resolver.Closed())
	require.Len(t, resolver.Opened, 1)
	assert.True(t, resolver.Opened[0].Closed())
	require.Len(t, gw.opened, 1)
	assert.True(t, gw.opened[0].Closed())
}

func TestShortcutOrchestrator_GetShortcuts_AppliesExportGate(t *testing.T) {
	gw := newMockGateway()
	gw.manifests["com.x"] = fakexml.E("manifest", nil,
		fakexml.E("application", nil,
			fakexml.E("activity", fakexml.A("name", ".Main"), shortcutsMeta("@77")),
			fakexml.E("activity", fakexml.A("name", ".Hidden"), shortcutsMeta("@78")),
		),
	)
	shortcut := func(id, target string) fakexml.Node {
		return fakexml.E("shortcut", fakexml.A("shortcutId", id, "icon", "@88"),
			fakexml.E("intent", fakexml.A("targetPackage", "com.x", "targetClass", target)))
	}
	gw.resolvers["com.x"] = &fakexml.Resolver{
		Drawables: map[entities.ResourceID]string{88: "res/drawable/ic.xml"},
		XML: map[entities.ResourceID]fakexml.Node{
			77: fakexml.E("shortcuts", nil,
				shortcut("to-main", ".Main"),
				shortcut("to-settings", ".Settings"),
				shortcut("to-other-package", "com.y.Main"),
			),
			78: fakexml.E("shortcuts", nil, shortcut("from-hidden", ".Main")),
		},
	}
	gw.metadata["com.x"] = &entities.PackageMetadata{
		PackageName: "com.x",
		Activities: []entities.ActivityInfo{
			{Name: ".Main", Exported: true},
			{Name: ".Hidden", Exported: false},
			{Name: ".Settings", Exported: false},
		},
	}

	got, err := newOrchestrator(gw).GetShortcuts(context.Background(), "com.x")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "to-main", got[0].ID)
}

func TestShortcutOrchestrator_GetShortcuts_OrdersByComponent(t *testing.T) {
	gw := newMockGateway()
	gw.manifests["com.x"] = fakexml.E("manifest", nil,
		fakexml.E("application", nil,
			fakexml.E("activity", fakexml.A("name", ".Zeta"), shortcutsMeta("@2")),
			fakexml.E("activity-alias", fakexml.A("name", ".Alpha"), shortcutsMeta("@1")),
		),
	)
	gw.resolvers["com.x"] = &fakexml.Resolver{
		Drawables: map[entities.ResourceID]string{88: "res/drawable/ic.xml"},
		XML: map[entities.ResourceID]fakexml.Node{
			1: fakexml.E("shortcuts", nil, fakexml.E("shortcut", fakexml.A("shortcutId", "a", "icon", "@88"), fakexml.E("intent", nil))),
			2: fakexml.E("shortcuts", nil, fakexml.E("shortcut", fakexml.A("shortcutId", "z", "icon", "@88"), fakexml.E("intent", nil))),
		},
	}
	gw.metadata["com.x"] = &entities.PackageMetadata{
		PackageName: "com.x",
		Activities: []entities.ActivityInfo{
			{Name: ".Zeta", Exported: true},
			{Name: ".Alpha", Exported: true, Alias: true},
		},
	}

	got, err := newOrchestrator(gw).GetShortcuts(context.Background(), "com.x")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "z", got[1].ID)
}

func TestShortcutOrchestrator_GetShortcuts_NoShortcuts(t *testing.T) {
	gw := newMockGateway()
	gw.manifests["com.x"] = fakexml.E("manifest", nil, fakexml.E("application", nil, fakexml.E("activity", fakexml.A("name", ".Main"))))
	gw.resolvers["com.x"] = &fakexml.Resolver{}
	gw.metadata["com.x"] = &entities.PackageMetadata{PackageName: "com.x"}

	got, err := newOrchestrator(gw).GetShortcuts(context.Background(), "com.x")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestShortcutOrchestrator_GetShortcuts_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(gw *mockPackageGateway)
		pkg   string
		want  error
	}{
		{
			name:  "unknown package",
			setup: func(_ *mockPackageGateway) {},
			pkg:   "com.missing",
			want:  entities.ErrPackageNotFound,
		},
		{
			name: "metadata failure",
			setup: func(gw *mockPackageGateway) {
				addComposePackage(gw)
				gw.metadataErr = entities.ErrPackageNotFound
			},
			pkg:  "com.x",
			want: entities.ErrPackageNotFound,
		},
		{
			name: "resources unavailable",
			setup: func(gw *mockPackageGateway) {
				addComposePackage(gw)
				gw.resourceErr = entities.ErrAssetOpenFailure
			},
			pkg:  "com.x",
			want: entities.ErrAssetOpenFailure,
		},
		{
			name: "malformed manifest",
			setup: func(gw *mockPackageGateway) {
				addComposePackage(gw)
				gw.manifests["com.x"] = fakexml.E("shortcuts", nil)
			},
			pkg:  "com.x",
			want: entities.ErrMalformedManifest,
		},
		{
			name: "missing shortcuts resource",
			setup: func(gw *mockPackageGateway) {
				addComposePackage(gw)
				delete(gw.resolvers["com.x"].XML, 77)
			},
			pkg:  "com.x",
			want: entities.ErrResourceNotFound,
		},
		{
			name: "unresolvable icon",
			setup: func(gw *mockPackageGateway) {
				addComposePackage(gw)
				gw.resolvers["com.x"].Drawables = nil
			},
			pkg:  "com.x",
			want: entities.ErrResourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newMockGateway()
			tt.setup(gw)

			got, err := newOrchestrator(gw).GetShortcuts(context.Background(), tt.pkg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Nil(t, got)

			for _, p := range gw.opened {
				assert.True(t, p.Closed(), "manifest parser left open")
			}
			if r, ok := gw.resolvers[tt.pkg]; ok && gw.resourceErr == nil && gw.metadataErr == nil {
				assert.True(t, r.Closed(), "resolver left open")
				for _, p := range r.Opened {
					assert.True(t, p.Closed(), "shortcuts parser left open")
				}
			}
		})
	}
}
