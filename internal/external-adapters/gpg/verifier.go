// Package gpg provides OpenPGP detached signature verification for package archives.
package gpg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// maxSignatureSize bounds detached signature files; real ones are well under 1KB
const maxSignatureSize = 64 * 1024

const armorPrefix = "-----BEGIN PGP"

// ErrNoKeys is returned when verification is attempted with an empty keyring
var ErrNoKeys = errors.New("no OpenPGP keys loaded")

// Verifier checks detached signatures against a local keyring. It uses
// ProtonMail's go-crypto, the maintained fork of x/crypto/openpgp, and lives
// in external-adapters to isolate that dependency.
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier with an empty keyring
func NewVerifier() *Verifier {
	return &Verifier{keyring: make(openpgp.EntityList, 0)}
}

// ImportKeyFromFile adds the keys of an armored or binary keyring file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath comes from configuration
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}
	if err := v.ImportKeys(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%s: %w", keyPath, err)
	}
	return nil
}

// ImportKeys adds the keys read from r, armored or binary
func (v *Verifier) ImportKeys(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	var keys openpgp.EntityList
	if isArmored(data) {
		keys, err = openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	} else {
		keys, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no keys found")
	}

	v.keyring = append(v.keyring, keys...)
	return nil
}

// VerifySignatureFromFile verifies sigPath as a detached signature of
// filePath and returns the identity of the signing key
func (v *Verifier) VerifySignatureFromFile(filePath, sigPath string) (string, error) {
	if len(v.keyring) == 0 {
		return "", ErrNoKeys
	}

	//nolint:gosec // G304: sigPath sits next to a package in the packages directory
	sigFile, err := os.Open(sigPath)
	if err != nil {
		return "", fmt.Errorf("failed to open signature file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer sigFile.Close()

	sig, err := io.ReadAll(io.LimitReader(sigFile, maxSignatureSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read signature: %w", err)
	}
	if len(sig) > maxSignatureSize {
		return "", fmt.Errorf("signature file %s is larger than %d bytes", sigPath, maxSignatureSize)
	}

	//nolint:gosec // G304: filePath is a package in the packages directory
	dataFile, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open data file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer dataFile.Close()

	var signer *openpgp.Entity
	if isArmored(sig) {
		signer, err = openpgp.CheckArmoredDetachedSignature(v.keyring, dataFile, bytes.NewReader(sig), nil)
	} else {
		signer, err = openpgp.CheckDetachedSignature(v.keyring, dataFile, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}

	return identity(signer), nil
}

// KeyringSize returns the number of keys in the keyring
func (v *Verifier) KeyringSize() int {
	return len(v.keyring)
}

func isArmored(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte(armorPrefix))
}

func identity(e *openpgp.Entity) string {
	if e == nil {
		return ""
	}
	for name := range e.Identities {
		return name
	}
	return fmt.Sprintf("%X", e.PrimaryKey.Fingerprint)
}
