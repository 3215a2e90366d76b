// Package entities defines core domain models and data structures.
package entities

import "strings"

// ComponentName identifies an activity or activity-alias within a package
type ComponentName struct {
	Package string
	Class   string
}

// NewComponentName creates a component name
func NewComponentName(pkg, class string) ComponentName {
	return ComponentName{Package: pkg, Class: class}
}

// FlattenToString returns the "package/class" form
func (c ComponentName) FlattenToString() string {
	return c.Package + "/" + c.Class
}

// String returns the host's textual form, e.g. "ComponentInfo{com.x/.Main}"
func (c ComponentName) String() string {
	return "ComponentInfo{" + c.FlattenToString() + "}"
}

// QualifiedClass expands relative class names (".Main" or "Main") against the package
func (c ComponentName) QualifiedClass() string {
	return QualifyClassName(c.Package, c.Class)
}

// IsZero reports whether the component name is unset
func (c ComponentName) IsZero() bool {
	return c.Package == "" && c.Class == ""
}

// QualifyClassName expands a manifest class name against its package.
// Names starting with '.' are appended to the package; names without any
// '.' are treated as living directly in the package.
func QualifyClassName(pkg, class string) string {
	switch {
	case class == "":
		return ""
	case strings.HasPrefix(class, "."):
		return pkg + class
	case !strings.Contains(class, "."):
		return pkg + "." + class
	default:
		return class
	}
}
