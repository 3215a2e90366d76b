package gateways

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ChecksumSuffix is appended to a package path to find its checksum sidecar
const ChecksumSuffix = ".sha256"

// maxSidecarSize bounds the sidecar files read into memory
const maxSidecarSize = 64 << 10

// errNoSidecar reports a package without a checksum sidecar
var errNoSidecar = errors.New("no checksum sidecar")

// checksumVerifier checks package files against SHA-256 sidecars
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyChecksum compares a file's SHA-256 with expectedSum
func (v *checksumVerifier) VerifyChecksum(ctx context.Context, filePath, expectedSum string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	actualSum, err := v.CalculateChecksum(filePath)
	if err != nil {
		return err
	}
	if !strings.EqualFold(actualSum, expectedSum) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actualSum)
	}
	return nil
}

// VerifySidecar checks filePath against <filePath>.sha256 and returns the
// sidecar path. errNoSidecar is returned when there is none.
func (v *checksumVerifier) VerifySidecar(ctx context.Context, filePath string) (string, error) {
	sidecar := filePath + ChecksumSuffix
	//nolint:gosec // G304: sidecar path derived from the package path
	f, err := os.Open(sidecar)
	if errors.Is(err, fs.ErrNotExist) {
		return "", errNoSidecar
	}
	if err != nil {
		return "", fmt.Errorf("failed to open checksum file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSidecarSize))
	if err != nil {
		return "", fmt.Errorf("failed to read checksum file: %w", err)
	}
	expected, err := parseChecksumFile(data, filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("%s: %w", sidecar, err)
	}
	if err := v.VerifyChecksum(ctx, filePath, expected); err != nil {
		return "", err
	}
	return sidecar, nil
}

// CalculateChecksum calculates the SHA256 checksum of a file
func (v *checksumVerifier) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// parseChecksumFile accepts a bare digest or sha256sum output. With several
// lines, the one naming fileName is used.
func parseChecksumFile(data []byte, fileName string) (string, error) {
	var first string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		sum := fields[0]
		if !isSHA256Hex(sum) {
			return "", fmt.Errorf("invalid checksum %q", sum)
		}
		if len(fields) == 1 {
			return sum, nil
		}
		name := strings.TrimPrefix(fields[len(fields)-1], "*")
		if filepath.Base(name) == fileName {
			return sum, nil
		}
		if first == "" {
			first = sum
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if first == "" {
		return "", errors.New("checksum file is empty")
	}
	return "", fmt.Errorf("checksum file has no entry for %s", fileName)
}

func isSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
