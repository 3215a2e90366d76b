package gpg

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSigner(t *testing.T) *openpgp.Entity {
	t.Helper()
	e, err := openpgp.NewEntity("Release Key", "", "release@example.com", nil)
	require.NoError(t, err)
	return e
}

func writePublicKey(t *testing.T, dir string, e *openpgp.Entity, armored bool) string {
	t.Helper()
	var buf bytes.Buffer
	if armored {
		w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
		require.NoError(t, err)
		require.NoError(t, e.Serialize(w))
		require.NoError(t, w.Close())
	} else {
		require.NoError(t, e.Serialize(&buf))
	}
	path := filepath.Join(dir, "keyring.asc")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func writeSigned(t *testing.T, dir string, e *openpgp.Entity, armored bool) (string, string) {
	t.Helper()
	data := []byte("PK\x03\x04 package bytes")
	path := filepath.Join(dir, "mail.apk")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var sig bytes.Buffer
	if armored {
		require.NoError(t, openpgp.ArmoredDetachSign(&sig, e, bytes.NewReader(data), nil))
	} else {
		require.NoError(t, openpgp.DetachSign(&sig, e, bytes.NewReader(data), nil))
	}
	sigPath := path + ".sig"
	require.NoError(t, os.WriteFile(sigPath, sig.Bytes(), 0o600))
	return path, sigPath
}

func TestVerifier_VerifySignatureFromFile(t *testing.T) {
	signer := newSigner(t)

	for _, armored := range []bool{true, false} {
		dir := t.TempDir()
		v := NewVerifier()
		require.NoError(t, v.ImportKeyFromFile(writePublicKey(t, dir, signer, armored)))
		assert.Equal(t, 1, v.KeyringSize())

		path, sigPath := writeSigned(t, dir, signer, armored)
		who, err := v.VerifySignatureFromFile(path, sigPath)
		require.NoError(t, err, "armored=%v", armored)
		assert.Contains(t, who, "release@example.com")
	}
}

func TestVerifier_RejectsTamperedFile(t *testing.T) {
	signer := newSigner(t)
	dir := t.TempDir()
	v := NewVerifier()
	require.NoError(t, v.ImportKeyFromFile(writePublicKey(t, dir, signer, true)))

	path, sigPath := writeSigned(t, dir, signer, true)
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o600))

	_, err := v.VerifySignatureFromFile(path, sigPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature verification failed")
}

func TestVerifier_RejectsUnknownSigner(t *testing.T) {
	dir := t.TempDir()
	v := NewVerifier()
	require.NoError(t, v.ImportKeyFromFile(writePublicKey(t, dir, newSigner(t), true)))

	path, sigPath := writeSigned(t, dir, newSigner(t), false)
	_, err := v.VerifySignatureFromFile(path, sigPath)
	assert.Error(t, err)
}

func TestVerifier_NoKeysImported(t *testing.T) {
	_, err := NewVerifier().VerifySignatureFromFile("/tmp/file", "/tmp/file.sig")
	assert.ErrorIs(t, err, ErrNoKeys)
}

func TestVerifier_ImportKeyFromFile_Errors(t *testing.T) {
	v := NewVerifier()

	err := v.ImportKeyFromFile("/nonexistent/key.asc")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to open key file"))

	path := filepath.Join(t.TempDir(), "junk.asc")
	require.NoError(t, os.WriteFile(path, []byte("not a gpg key"), 0o600))
	assert.Error(t, v.ImportKeyFromFile(path))
	assert.Equal(t, 0, v.KeyringSize())
}

func TestVerifier_OversizedSignature(t *testing.T) {
	signer := newSigner(t)
	dir := t.TempDir()
	v := NewVerifier()
	require.NoError(t, v.ImportKeyFromFile(writePublicKey(t, dir, signer, true)))

	path, sigPath := writeSigned(t, dir, signer, false)
	require.NoError(t, os.WriteFile(sigPath, bytes.Repeat([]byte{0x89}, maxSignatureSize+10), 0o600))

	_, err := v.VerifySignatureFromFile(path, sigPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than")
}
