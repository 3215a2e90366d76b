package gateways

import (
	"fmt"
	"os"

	"github.com/ochairo/appshortcuts/internal/external-adapters/gpg"
)

// signatureSuffixes are tried in order next to a package file
var signatureSuffixes = []string{".asc", ".sig"}

// gpgVerifier wraps the external GPG adapter with the package signature conventions
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a GPG verifier gateway trusting the keys in keyringPath
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier(keyringPath string) (*gpgVerifier, error) {
	g := &gpgVerifier{verifier: gpg.NewVerifier()}
	if err := g.verifier.ImportKeyFromFile(keyringPath); err != nil {
		return nil, fmt.Errorf("failed to import GPG keyring: %w", err)
	}
	return g, nil
}

// SignatureFile returns the detached signature stored next to filePath
func (g *gpgVerifier) SignatureFile(filePath string) (string, bool) {
	for _, suffix := range signatureSuffixes {
		path := filePath + suffix
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// VerifyGPGSignatureFromFile verifies a detached signature and returns the signer
func (g *gpgVerifier) VerifyGPGSignatureFromFile(filePath, sigPath string) (string, error) {
	signer, err := g.verifier.VerifySignatureFromFile(filePath, sigPath)
	if err != nil {
		return "", fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return signer, nil
}

// GetKeyringSize returns the number of keys loaded
func (g *gpgVerifier) GetKeyringSize() int {
	return g.verifier.KeyringSize()
}
