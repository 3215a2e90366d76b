package entities

import "time"

// PackageShortcuts holds the accepted shortcuts of one package
type PackageShortcuts struct {
	Package   string
	Shortcuts []Shortcut
}

// PackageFailure records why a package contributed no shortcuts
type PackageFailure struct {
	Package string
	Kind    ErrorKind
	Err     error
}

// EnumerationReport is the result of scanning many packages
type EnumerationReport struct {
	RunID    string
	Packages []PackageShortcuts
	Failures []PackageFailure
	Duration time.Duration
}

// ShortcutCount returns the number of shortcuts across all packages
func (r *EnumerationReport) ShortcutCount() int {
	n := 0
	for _, p := range r.Packages {
		n += len(p.Shortcuts)
	}
	return n
}
