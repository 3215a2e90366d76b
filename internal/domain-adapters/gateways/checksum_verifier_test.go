package gateways

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const helloSum = "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f" // "Hello, World!"

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// TestVerifyChecksum tests SHA256 checksum verification
func TestVerifyChecksum(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "mail.apk")
	writeFile(t, testFile, "Hello, World!")

	verifier := NewChecksumVerifier()

	t.Run("valid checksum", func(t *testing.T) {
		if err := verifier.VerifyChecksum(context.Background(), testFile, helloSum); err != nil {
			t.Errorf("VerifyChecksum() with valid checksum error = %v", err)
		}
	})

	t.Run("upper case checksum", func(t *testing.T) {
		if err := verifier.VerifyChecksum(context.Background(), testFile, strings.ToUpper(helloSum)); err != nil {
			t.Errorf("VerifyChecksum() with upper case checksum error = %v", err)
		}
	})

	t.Run("invalid checksum", func(t *testing.T) {
		err := verifier.VerifyChecksum(context.Background(), testFile, strings.Repeat("0", 64))
		if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
			t.Errorf("VerifyChecksum() error = %v, want checksum mismatch", err)
		}
	})

	t.Run("non-existent file", func(t *testing.T) {
		if err := verifier.VerifyChecksum(context.Background(), "/nonexistent/file.apk", helloSum); err == nil {
			t.Error("VerifyChecksum() with non-existent file should return error")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := verifier.VerifyChecksum(ctx, testFile, helloSum); !errors.Is(err, context.Canceled) {
			t.Errorf("VerifyChecksum() error = %v, want context.Canceled", err)
		}
	})
}

// TestCalculateChecksum tests SHA256 checksum calculation
func TestCalculateChecksum(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantChecksum string
	}{
		{
			name:         "empty file",
			content:      "",
			wantChecksum: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:         "simple content",
			content:      "Hello, World!",
			wantChecksum: helloSum,
		},
	}

	verifier := NewChecksumVerifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "file")
			writeFile(t, path, tt.content)

			got, err := verifier.CalculateChecksum(path)
			if err != nil {
				t.Fatalf("CalculateChecksum() error = %v", err)
			}
			if got != tt.wantChecksum {
				t.Errorf("CalculateChecksum() = %s, want %s", got, tt.wantChecksum)
			}
		})
	}
}

func TestVerifySidecar(t *testing.T) {
	tests := []struct {
		name    string
		sidecar string // empty: no sidecar file
		wantErr string
	}{
		{name: "bare digest", sidecar: helloSum + "\n"},
		{name: "sha256sum line", sidecar: helloSum + "  mail.apk\n"},
		{name: "binary mode marker", sidecar: helloSum + " *mail.apk\n"},
		{name: "several files", sidecar: strings.Repeat("1", 64) + "  other.apk\n" + helloSum + "  dist/mail.apk\n"},
		{name: "no sidecar", wantErr: "no checksum sidecar"},
		{name: "mismatch", sidecar: strings.Repeat("a", 64), wantErr: "checksum mismatch"},
		{name: "not hex", sidecar: "xyz  mail.apk", wantErr: "invalid checksum"},
		{name: "empty", sidecar: "\n# comment\n", wantErr: "empty"},
		{name: "other file only", sidecar: helloSum + "  other.apk\n", wantErr: "no entry for mail.apk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mail.apk")
			writeFile(t, path, "Hello, World!")
			if tt.sidecar != "" {
				writeFile(t, path+ChecksumSuffix, tt.sidecar)
			}

			sidecar, err := NewChecksumVerifier().VerifySidecar(context.Background(), path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("VerifySidecar() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifySidecar() error = %v", err)
			}
			if sidecar != path+ChecksumSuffix {
				t.Errorf("VerifySidecar() = %s, want %s", sidecar, path+ChecksumSuffix)
			}
		})
	}
}
