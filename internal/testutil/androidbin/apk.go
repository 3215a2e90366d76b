package androidbin

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/ochairo/appshortcuts/internal/testutil/fakexml"
)

// Shortcut resource ids used by the sample package
const (
	SampleShortLabel   = 0x7f100000
	SampleLongLabel    = 0x7f100001
	SampleIcon         = 0x7f080000
	SampleShortcuts    = 0x7f130000
	SampleAppName      = 0x7f100002
	SampleShortcutsRef = "@2131951616" // SampleShortcuts
)

// WriteZip writes files into a new zip archive at path
func WriteZip(t testing.TB, path string, files map[string][]byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	//nolint:gosec // test fixture path
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for _, name := range sortedKeys(files) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

// SampleManifest is the manifest of the sample package: an exported
// launcher activity declaring shortcuts and an unexported settings activity
func SampleManifest(pkg string) fakexml.Node {
	return fakexml.E("manifest", fakexml.A("package", pkg),
		fakexml.E("uses-sdk", fakexml.A("minSdkVersion", "25")),
		fakexml.E("application", fakexml.A("label", "@2131755010"),
			fakexml.E("activity", fakexml.A("name", ".Main"),
				fakexml.E("intent-filter", nil,
					fakexml.E("action", fakexml.A("name", "android.intent.action.MAIN")),
					fakexml.E("category", fakexml.A("name", "android.intent.category.LAUNCHER")),
				),
				fakexml.E("meta-data", fakexml.A("name", "android.app.shortcuts", "resource", SampleShortcutsRef)),
			),
			fakexml.E("activity", fakexml.A("name", ".Compose", "exported", "true")),
			fakexml.E("activity", fakexml.A("name", ".Settings", "exported", "false")),
		),
	)
}

// SampleShortcutsXML declares one shortcut into .Compose and one into the
// unexported .Settings activity
func SampleShortcutsXML(pkg string) fakexml.Node {
	return fakexml.E("shortcuts", nil,
		fakexml.E("shortcut", fakexml.A(
			"shortcutId", "compose",
			"icon", "@2131230720",
			"shortcutShortLabel", "@2131755008",
			"shortcutLongLabel", "@2131755009",
		),
			fakexml.E("intent", fakexml.A(
				"action", "android.intent.action.VIEW",
				"targetPackage", pkg,
				"targetClass", pkg+".Compose",
			)),
		),
		fakexml.E("shortcut", fakexml.A("shortcutId", "settings", "icon", "@2131230720"),
			fakexml.E("intent", fakexml.A("targetPackage", pkg, "targetClass", pkg+".Settings")),
		),
	)
}

// SampleTable is the resource table of the sample package
func SampleTable(pkg string, opts TableOptions) []byte {
	opts.PackageName = pkg
	return EncodeTable(opts, []TableEntry{
		{ID: SampleShortLabel, Type: "string", Key: "compose_short", String: "Compose"},
		{ID: SampleLongLabel, Type: "string", Key: "compose_long", String: "Compose a new message"},
		{ID: SampleAppName, Type: "string", Key: "app_name", String: "Mail"},
		{ID: SampleIcon, Type: "drawable", Key: "ic_compose", String: "res/drawable/ic_compose.xml"},
		{ID: SampleShortcuts, Type: "xml", Key: "shortcuts", String: "res/xml/shortcuts.xml"},
	})
}

// WriteSampleAPK writes the sample package as an APK
func WriteSampleAPK(t testing.TB, path, pkg string) {
	t.Helper()
	WriteZip(t, path, map[string][]byte{
		"AndroidManifest.xml":         EncodeXML(SampleManifest(pkg), XMLOptions{}),
		"resources.arsc":              SampleTable(pkg, TableOptions{}),
		"res/xml/shortcuts.xml":       EncodeXML(SampleShortcutsXML(pkg), XMLOptions{UTF8: true}),
		"res/drawable/ic_compose.xml": EncodeXML(fakexml.E("vector", nil), XMLOptions{}),
		"classes.dex":                 []byte("dex\n035\x00"),
	})
}
