package entities

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// ManifestIndex maps components declaring shortcuts to their shortcuts XML
// resource. It is frozen on construction.
type ManifestIndex struct {
	entries map[ComponentName]ResourceID
}

// NewManifestIndex freezes the given entries into an index
func NewManifestIndex(entries map[ComponentName]ResourceID) *ManifestIndex {
	return &ManifestIndex{entries: maps.Clone(entries)}
}

// Lookup returns the resource id recorded for a component
func (m *ManifestIndex) Lookup(component ComponentName) (ResourceID, bool) {
	if m == nil {
		return 0, false
	}
	id, ok := m.entries[component]
	return id, ok
}

// Len returns the number of indexed components
func (m *ManifestIndex) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// All iterates the index ordered by flattened component name
func (m *ManifestIndex) All() iter.Seq2[ComponentName, ResourceID] {
	return func(yield func(ComponentName, ResourceID) bool) {
		if m == nil {
			return
		}
		keys := slices.SortedFunc(maps.Keys(m.entries), func(a, b ComponentName) int {
			return strings.Compare(a.FlattenToString(), b.FlattenToString())
		})
		for _, k := range keys {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}
