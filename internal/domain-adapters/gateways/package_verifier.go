package gateways

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
)

// PackageVerifierConfig configures NewPackageVerifier
type PackageVerifierConfig struct {
	// KeyringPath is an OpenPGP public keyring, armored or binary. Signatures
	// are not checked without one.
	KeyringPath      string
	RequireSignature bool
	VerifyChecksums  bool
	Logger           interfaces.Logger
}

// packageVerifier composes the checksum and signature checks run on a
// package file before it is read
type packageVerifier struct {
	checksums        *checksumVerifier
	gpg              *gpgVerifier
	requireSignature bool
	verifyChecksums  bool
	logger           interfaces.Logger
}

// NewPackageVerifier creates a package verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewPackageVerifier(cfg PackageVerifierConfig) (*packageVerifier, error) {
	v := &packageVerifier{
		checksums:        NewChecksumVerifier(),
		requireSignature: cfg.RequireSignature,
		verifyChecksums:  cfg.VerifyChecksums,
		logger:           interfaces.OrNoOp(cfg.Logger),
	}
	if cfg.KeyringPath == "" {
		if cfg.RequireSignature {
			return nil, errors.New("signatures are required but no keyring is configured")
		}
		return v, nil
	}

	g, err := NewGPGVerifier(cfg.KeyringPath)
	if err != nil {
		return nil, err
	}
	v.gpg = g
	return v, nil
}

// VerifyPackage implements gateways.PackageVerifier. Unpacked packages have
// no single file to check and always pass.
func (v *packageVerifier) VerifyPackage(ctx context.Context, source entities.PackageSource) error {
	if source.Type == entities.SourceUnpacked {
		return nil
	}
	_, err := v.Verify(ctx, source.Path)
	return err
}

// Verify runs every configured check on a package file
func (v *packageVerifier) Verify(ctx context.Context, path string) (*entities.IntegrityReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrAssetOpenFailure, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", entities.ErrAssetOpenFailure, path)
	}

	report := &entities.IntegrityReport{Path: path}
	if report.Checksum, err = v.checksums.CalculateChecksum(path); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrAssetOpenFailure, err)
	}

	if v.verifyChecksums {
		sidecar, err := v.checksums.VerifySidecar(ctx, path)
		switch {
		case errors.Is(err, errNoSidecar):
			v.logger.Debug("No checksum sidecar", interfaces.F("path", path))
		case err != nil:
			return report, fmt.Errorf("%w: %s: %w", entities.ErrSignatureVerification, path, err)
		default:
			report.ChecksumFile = sidecar
			report.ChecksumVerified = true
		}
	}

	if err := v.verifySignature(path, report); err != nil {
		return report, err
	}

	v.logger.Debug("Package verified",
		interfaces.F("path", path),
		interfaces.F("checksum_verified", report.ChecksumVerified),
		interfaces.F("signature_verified", report.SignatureVerified))
	return report, nil
}

func (v *packageVerifier) verifySignature(path string, report *entities.IntegrityReport) error {
	if v.gpg == nil {
		return nil
	}

	sigPath, ok := v.gpg.SignatureFile(path)
	if !ok {
		if v.requireSignature {
			return fmt.Errorf("%w: %s: no detached signature", entities.ErrSignatureVerification, path)
		}
		v.logger.Debug("No detached signature", interfaces.F("path", path))
		return nil
	}

	report.SignatureFile = sigPath
	signer, err := v.gpg.VerifyGPGSignatureFromFile(path, sigPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", entities.ErrSignatureVerification, path, err)
	}
	report.Signer = signer
	report.SignatureVerified = true
	return nil
}
