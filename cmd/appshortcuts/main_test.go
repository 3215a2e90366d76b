package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/testutil/androidbin"
)

// run executes the root command with an isolated configuration
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd(&out, &out)
	cmd.SetArgs(append(args, "--config", writeTestConfig(t)))
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appshortcuts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600))
	return path
}

func packagesFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	androidbin.WriteSampleAPK(t, filepath.Join(dir, "mail.apk"), "com.example.mail")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com.example.photos.aab"), []byte("PK"), 0o600))
	return dir
}

func TestScan_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail.apk")
	androidbin.WriteSampleAPK(t, path, "com.example.mail")

	out, err := run(t, "scan", path, "-o", "json")
	require.NoError(t, err)

	var got packageView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "com.example.mail", got.Package)
	require.Len(t, got.Shortcuts, 1)
	assert.Equal(t, shortcutView{
		ID:         "compose",
		Activity:   "com.example.mail/.Main",
		Target:     "com.example.mail/com.example.mail.Compose",
		Action:     "android.intent.action.VIEW",
		Flags:      "0x1000c000",
		ShortLabel: "Compose",
		LongLabel:  "Compose a new message",
		Icon:       iconView{ResourceID: "0x7f080000", Path: "res/drawable/ic_compose.xml"},
	}, got.Shortcuts[0])
}

func TestScan_PackageName(t *testing.T) {
	out, err := run(t, "scan", "com.example.mail", "--packages-dir", packagesFixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.mail")
	assert.Contains(t, out, "1 shortcut")
	assert.Contains(t, out, "Compose a new message")

	_, err = run(t, "scan", "com.example.photos", "--packages-dir", packagesFixture(t))
	assert.ErrorIs(t, err, entities.ErrUnsupportedPlatform)
}

func TestList(t *testing.T) {
	out, err := run(t, "list", "--packages-dir", packagesFixture(t), "-o", "json")
	require.NoError(t, err)

	var got reportView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, 1, got.ShortcutCount)
	require.Len(t, got.Packages, 1)
	assert.Equal(t, "com.example.mail", got.Packages[0].Package)
	require.Len(t, got.Failures, 1)
	assert.Equal(t, "com.example.photos", got.Failures[0].Package)
	assert.Equal(t, string(entities.ErrorKindPackage), got.Failures[0].Kind)

	_, err = run(t, "list", "--packages-dir", packagesFixture(t), "--strict")
	assert.ErrorContains(t, err, "1 package failed")
}

func TestPackages(t *testing.T) {
	dir := packagesFixture(t)
	out, err := run(t, "packages", "--packages-dir", dir, "-o", "json")
	require.NoError(t, err)

	var got []sourceView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []sourceView{
		{Package: "com.example.mail", Type: entities.SourceAPK, Path: filepath.Join(dir, "mail.apk")},
		{Package: "com.example.photos", Type: entities.SourceBundle, Path: filepath.Join(dir, "com.example.photos.aab")},
	}, got)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mail.apk")
	androidbin.WriteSampleAPK(t, path, "com.example.mail")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	require.NoError(t, os.WriteFile(path+".sha256", []byte(digest+"  mail.apk\n"), 0o600))

	out, err := run(t, "verify", path, "-o", "json")
	require.NoError(t, err)
	var got integrityView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, digest, got.SHA256)
	assert.True(t, got.ChecksumVerified)
	assert.False(t, got.SignatureVerified)

	require.NoError(t, os.WriteFile(path+".sha256", []byte(digest[:63]+"x"), 0o600))
	_, err = run(t, "verify", path)
	assert.ErrorIs(t, err, entities.ErrSignatureVerification)

	_, err = run(t, "verify", path, "--require-signature")
	assert.ErrorContains(t, err, "security.keyring")
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := run(t, "packages", "--packages-dir", t.TempDir(), "-o", "yaml")
	assert.ErrorContains(t, err, "output.format")
}

func TestAffectedPackages(t *testing.T) {
	root := filepath.FromSlash("/data/app")
	sources := []entities.PackageSource{
		{Name: "com.example.mail", Path: filepath.Join(root, "mail.apk")},
		{Name: "com.example.notes", Path: filepath.Join(root, "notes")},
		{Name: "com.example.photos", Path: filepath.Join(root, "photos.aab")},
	}

	tests := []struct {
		name    string
		changed []string
		want    []string
	}{
		{name: "archive", changed: []string{"mail.apk"}, want: []string{"com.example.mail"}},
		{name: "sidecar", changed: []string{"mail.apk.sha256", "photos.aab.asc"}, want: []string{"com.example.mail", "com.example.photos"}},
		{name: "unpacked file", changed: []string{filepath.Join("notes", "res", "xml", "shortcuts.xml")}, want: []string{"com.example.notes"}},
		{name: "prefix is not ownership", changed: []string{"notes-old"}},
		{name: "unrelated", changed: []string{"README"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, affectedPackages(root, sources, tt.changed))
		})
	}
}
