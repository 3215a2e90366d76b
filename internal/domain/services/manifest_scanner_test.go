package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/testutil/fakexml"
)

func shortcutsMeta(resource string) fakexml.Node {
	return fakexml.E("meta-data", fakexml.A("name", MetaAppShortcuts, "resource", resource))
}

func manifest(children ...fakexml.Node) fakexml.Node {
	return fakexml.E("manifest", nil, children...)
}

func application(children ...fakexml.Node) fakexml.Node {
	return fakexml.E("application", fakexml.A("label", "App"), children...)
}

func TestScanManifest_IndexesActivitiesAndAliases(t *testing.T) {
	svc := NewShortcutService(nil)
	p := fakexml.NewParser(manifest(
		fakexml.E("uses-permission", fakexml.A("name", "android.permission.INTERNET")),
		application(
			fakexml.E("activity", fakexml.A("name", ".Main"),
				fakexml.E("intent-filter", nil,
					fakexml.E("action", fakexml.A("name", "android.intent.action.MAIN")),
				),
				shortcutsMeta("@77"),
			),
			fakexml.E("activity-alias", fakexml.A("name", ".Alias", "targetActivity", ".Main"),
				shortcutsMeta("@2131755008"),
			),
			fakexml.E("service", fakexml.A("name", ".Sync"), shortcutsMeta("@99")),
			fakexml.E("activity", fakexml.A("name", ".Settings")),
		),
	))

	index, err := svc.ScanManifest(p, "com.x")
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len())

	id, ok := index.Lookup(entities.NewComponentName("com.x", ".Main"))
	require.True(t, ok)
	assert.Equal(t, entities.ResourceID(77), id)

	id, ok = index.Lookup(entities.NewComponentName("com.x", ".Alias"))
	require.True(t, ok)
	assert.Equal(t, entities.ResourceID(2131755008), id)

	_, ok = index.Lookup(entities.NewComponentName("com.x", ".Sync"))
	assert.False(t, ok, "services are not shortcut hosts")
}

func TestScanManifest_SkipsElementsBeforeApplication(t *testing.T) {
	svc := NewShortcutService(nil)
	p := fakexml.NewParser(manifest(
		fakexml.T("\n  "),
		fakexml.E("uses-sdk", fakexml.A("minSdkVersion", "21")),
		fakexml.E("queries", nil,
			fakexml.E("intent", nil, fakexml.E("action", fakexml.A("name", "android.intent.action.SEND"))),
			fakexml.E("activity", fakexml.A("name", ".Decoy"), shortcutsMeta("@5")),
		),
		fakexml.T("\n  "),
		application(fakexml.E("activity", fakexml.A("name", ".Main"), fakexml.T("\n"), shortcutsMeta("@7"))),
	))

	index, err := svc.ScanManifest(p, "com.x")
	require.NoError(t, err)
	assert.Equal(t, 1, index.Len())
	_, ok := index.Lookup(entities.NewComponentName("com.x", ".Decoy"))
	assert.False(t, ok)
}

func TestScanManifest_MalformedRoot(t *testing.T) {
	svc := NewShortcutService(nil)
	_, err := svc.ScanManifest(fakexml.NewParser(fakexml.E("shortcuts", nil)), "com.x")
	assert.ErrorIs(t, err, entities.ErrMalformedManifest)
}

func TestScanManifest_MissingApplication(t *testing.T) {
	svc := NewShortcutService(nil)
	p := fakexml.NewParser(manifest(fakexml.E("uses-sdk", fakexml.A("minSdkVersion", "21"))))

	_, err := svc.ScanManifest(p, "com.x")
	assert.ErrorIs(t, err, entities.ErrMissingApplicationElement)
	assert.NotErrorIs(t, err, entities.ErrMalformedManifest)
}

func TestScanManifest_ComponentWithoutNameIsSkipped(t *testing.T) {
	svc := NewShortcutService(nil)
	p := fakexml.NewParser(manifest(application(
		fakexml.E("activity", nil, shortcutsMeta("@5")),
		fakexml.E("activity", fakexml.A("name", ""), shortcutsMeta("@6")),
		fakexml.E("activity", fakexml.A("name", ".Main"), shortcutsMeta("@7")),
	)))

	index, err := svc.ScanManifest(p, "com.x")
	require.NoError(t, err)
	assert.Equal(t, 1, index.Len())
	id, _ := index.Lookup(entities.NewComponentName("com.x", ".Main"))
	assert.Equal(t, entities.ResourceID(7), id)
}

func TestScanManifest_MalformedResourceIsIgnored(t *testing.T) {
	tests := []struct {
		name string
		meta fakexml.Node
	}{
		{name: "non numeric", meta: shortcutsMeta("@xml/shortcuts")},
		{name: "bare at sign", meta: shortcutsMeta("@")},
		{name: "null reference", meta: shortcutsMeta("@0")},
		{name: "negative", meta: shortcutsMeta("@-12")},
		{name: "overflow", meta: shortcutsMeta("@99999999999")},
		{name: "literal", meta: shortcutsMeta("77")},
		{name: "missing resource", meta: fakexml.E("meta-data", fakexml.A("name", MetaAppShortcuts))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewShortcutService(nil)
			p := fakexml.NewParser(manifest(application(
				fakexml.E("activity", fakexml.A("name", ".Broken"), tt.meta),
				fakexml.E("activity", fakexml.A("name", ".Main"), shortcutsMeta("@7")),
			)))

			index, err := svc.ScanManifest(p, "com.x")
			require.NoError(t, err)
			assert.Equal(t, 1, index.Len())
			_, ok := index.Lookup(entities.NewComponentName("com.x", ".Broken"))
			assert.False(t, ok)
		})
	}
}

func TestScanManifest_FirstMatchWins(t *testing.T) {
	svc := NewShortcutService(nil)
	p := fakexml.NewParser(manifest(application(
		fakexml.E("activity", fakexml.A("name", ".Main"),
			fakexml.E("meta-data", fakexml.A("name", "com.x.other", "resource", "@1")),
			shortcutsMeta("@bad"),
			shortcutsMeta("@10"),
			shortcutsMeta("@11"),
		),
	)))

	index, err := svc.ScanManifest(p, "com.x")
	require.NoError(t, err)
	id, ok := index.Lookup(entities.NewComponentName("com.x", ".Main"))
	require.True(t, ok)
	assert.Equal(t, entities.ResourceID(10), id)
}

func TestScanManifest_DepthBalancedSkip(t *testing.T) {
	svc := NewShortcutService(nil)
	p := fakexml.NewParser(manifest(application(
		fakexml.E("activity", fakexml.A("name", ".First"),
			fakexml.E("intent-filter", nil,
				fakexml.E("action", fakexml.A("name", "android.intent.action.VIEW")),
				fakexml.E("data", nil,
					fakexml.E("meta-data", nil, shortcutsMeta("@5")),
				),
				shortcutsMeta("@6"),
			),
		),
		fakexml.E("activity", fakexml.A("name", ".Second"),
			fakexml.E("intent-filter", nil, fakexml.E("category", fakexml.A("name", "android.intent.category.DEFAULT"))),
			shortcutsMeta("@8"),
		),
	)))

	index, err := svc.ScanManifest(p, "com.x")
	require.NoError(t, err)
	assert.Equal(t, 1, index.Len())

	_, ok := index.Lookup(entities.NewComponentName("com.x", ".First"))
	assert.False(t, ok, "meta-data nested in an intent-filter belongs to no component")
	id, ok := index.Lookup(entities.NewComponentName("com.x", ".Second"))
	require.True(t, ok)
	assert.Equal(t, entities.ResourceID(8), id)
}

func TestScanManifest_TruncatedDocument(t *testing.T) {
	root := manifest(application(
		fakexml.E("activity", fakexml.A("name", ".Main"),
			fakexml.E("intent-filter", nil, fakexml.E("action", fakexml.A("name", "android.intent.action.MAIN"))),
			shortcutsMeta("@7"),
		),
	))

	for n := 3; n < 8; n++ {
		svc := NewShortcutService(nil)
		_, err := svc.ScanManifest(fakexml.Truncated(root, n), "com.x")
		assert.ErrorIs(t, err, entities.ErrMalformedManifest, "truncated after %d events", n)
	}
}

func TestScanManifest_ReadFailureIsStructural(t *testing.T) {
	svc := NewShortcutService(nil)
	p := fakexml.NewParser(manifest(application(fakexml.E("activity", fakexml.A("name", ".Main"), shortcutsMeta("@7")))))
	p.FailAt = 4

	_, err := svc.ScanManifest(p, "com.x")
	assert.ErrorIs(t, err, entities.ErrMalformedManifest)
}

func TestScanManifest_EmptyApplication(t *testing.T) {
	svc := NewShortcutService(nil)
	index, err := svc.ScanManifest(fakexml.NewParser(manifest(application())), "com.x")
	require.NoError(t, err)
	assert.Equal(t, 0, index.Len())
}
