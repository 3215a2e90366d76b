package entities

// PackageDescriptor describes an unpacked package: a directory holding a
// plain-text manifest, XML resources and a resource table
type PackageDescriptor struct {
	Name       string
	Dir        string
	Manifest   string // path relative to Dir
	Strings    map[ResourceID]string
	Drawables  map[ResourceID]string
	XML        map[ResourceID]string // paths relative to Dir
	Names      map[string]ResourceID // "type/name" symbolic references
	Activities []ActivityInfo        // explicit export flags; derived from the manifest when empty
}

// Resource types an unpacked package may declare
const (
	ResourceTypeString   = "string"
	ResourceTypeDrawable = "drawable"
	ResourceTypeXML      = "xml"
)
