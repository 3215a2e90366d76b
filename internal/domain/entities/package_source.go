package entities

// Package source types
const (
	SourceAPK      = "apk"
	SourceUnpacked = "unpacked"
	SourceBundle   = "bundle"
)

// PackageSource describes where an installed package lives on disk
type PackageSource struct {
	Name string // package name, e.g. com.example.app
	Path string
	Type string // "apk", "unpacked", "bundle"
}
