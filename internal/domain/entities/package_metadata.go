package entities

// ActivityInfo describes one activity or activity-alias declared by a package
type ActivityInfo struct {
	Name     string
	Exported bool
	Alias    bool
}

// PackageMetadata holds the component export flags of a package
type PackageMetadata struct {
	PackageName string
	Activities  []ActivityInfo
}
