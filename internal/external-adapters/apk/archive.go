// Package apk reads Android package archives: the compiled manifest, the
// resource table and the files under res/.
package apk

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/shogo82148/androidbinary"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
	"github.com/ochairo/appshortcuts/internal/external-adapters/textxml"
)

// Well-known archive entries
const (
	ManifestEntry  = "AndroidManifest.xml"
	ResourcesEntry = "resources.arsc"
)

// maxEntrySize bounds the entries read into memory
const maxEntrySize = 64 << 20

// xmlChunkType is the leading chunk type of a compiled XML document
const xmlChunkType = 0x0003

// Archive is an open APK file
type Archive struct {
	path string
	zr   *zip.ReadCloser
	name string
}

// Open opens an APK and reads its package name from the compiled manifest
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entities.ErrAssetOpenFailure, path, err)
	}

	a := &Archive{path: path, zr: zr}
	name, err := a.readPackageName()
	if err != nil {
		_ = zr.Close()
		return nil, err
	}
	a.name = name
	return a, nil
}

// Path returns the file the archive was opened from
func (a *Archive) Path() string {
	return a.path
}

// PackageName returns the manifest's package attribute
func (a *Archive) PackageName() string {
	return a.name
}

func (a *Archive) readPackageName() (string, error) {
	p, err := a.OpenManifest()
	if err != nil {
		return "", err
	}
	//nolint:errcheck // in-memory parser
	defer p.Close()

	if _, err := gateways.NextTag(p); err != nil {
		return "", fmt.Errorf("%w: %s: %w", entities.ErrMalformedManifest, a.path, err)
	}
	if err := gateways.Require(p, gateways.StartTag, "manifest"); err != nil {
		return "", fmt.Errorf("%w: %s: %w", entities.ErrMalformedManifest, a.path, err)
	}
	name, ok := p.RawAttribute("", "package")
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %s: manifest has no package attribute", entities.ErrMalformedManifest, a.path)
	}
	return name, nil
}

// OpenManifest decodes AndroidManifest.xml
func (a *Archive) OpenManifest() (*textxml.Parser, error) {
	data, err := a.ReadFile(ManifestEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entities.ErrAssetOpenFailure, a.path, err)
	}
	p, err := decodeXML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entities.ErrMalformedManifest, a.path, err)
	}
	return p, nil
}

// Table decodes resources.arsc. Archives without one yield an empty table.
func (a *Archive) Table() (*Table, error) {
	data, err := a.ReadFile(ResourcesEntry)
	if errors.Is(err, fs.ErrNotExist) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entities.ErrAssetOpenFailure, a.path, err)
	}
	f, err := androidbinary.NewTableFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: resource table: %w", entities.ErrAssetOpenFailure, a.path, err)
	}
	return &Table{file: f}, nil
}

// decodeXML renders a compiled XML document as text and wraps it in a
// parser. References come out as "@0x7F130000", which the parser
// normalizes to the decimal form.
func decodeXML(data []byte) (*textxml.Parser, error) {
	if len(data) < 8 || binary.LittleEndian.Uint16(data) != xmlChunkType {
		return nil, errors.New("not a compiled XML document")
	}
	f, err := androidbinary.NewXMLFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode compiled XML: %w", err)
	}
	return textxml.NewParser(f.Reader()), nil
}

// ReadFile reads an archive entry into memory
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, err := a.zr.Open(name)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on read-only entry
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("entry %s is larger than %d bytes", name, maxEntrySize)
	}
	return data, nil
}

// Close closes the archive
func (a *Archive) Close() error {
	return a.zr.Close()
}
