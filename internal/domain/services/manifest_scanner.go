package services

import (
	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// ScanManifest indexes the activities and activity-aliases of a manifest
// that carry an android.app.shortcuts meta-data entry
func (s *shortcutService) ScanManifest(p gateways.XMLParser, packageName string) (*entities.ManifestIndex, error) {
	if err := enterApplication(p, packageName); err != nil {
		return nil, err
	}

	entries := make(map[entities.ComponentName]entities.ResourceID)
	for {
		kind, err := gateways.NextTag(p)
		if err != nil {
			return nil, malformedManifest(err)
		}
		if kind == gateways.EndDocument {
			return nil, malformedManifest(entities.ErrUnexpectedEndOfDocument)
		}
		if kind != gateways.StartTag {
			break
		}

		switch p.Name() {
		case tagActivity, tagActivityAlias:
			if err := s.scanComponent(p, packageName, entries); err != nil {
				return nil, err
			}
		default:
			if err := gateways.Skip(p); err != nil {
				return nil, malformedManifest(err)
			}
		}
	}

	return entities.NewManifestIndex(entries), nil
}

// scanComponent inspects the direct meta-data children of one component.
// The parser is left on the component's end tag.
func (s *shortcutService) scanComponent(p gateways.XMLParser, packageName string, entries map[entities.ComponentName]entities.ResourceID) error {
	name, ok := p.Attribute(attrName)
	if !ok || name == "" {
		s.logger.Debug("Skipping component without a name",
			interfaces.F("package", packageName),
			interfaces.F("tag", p.Name()))
		if err := gateways.Skip(p); err != nil {
			return malformedManifest(err)
		}
		return nil
	}

	component := entities.NewComponentName(packageName, name)
	_, matched := entries[component]
	for {
		kind, err := gateways.NextTag(p)
		if err != nil {
			return malformedManifest(err)
		}
		switch kind {
		case gateways.EndDocument:
			return malformedManifest(entities.ErrUnexpectedEndOfDocument)
		case gateways.EndTag:
			return nil
		case gateways.StartTag:
			if !matched && p.Name() == tagMetaData {
				if id, ok := s.shortcutsResource(p, component); ok {
					entries[component] = id
					matched = true
				}
			}
			if err := gateways.Skip(p); err != nil {
				return malformedManifest(err)
			}
		}
	}
}

// shortcutsResource reads the resource id of a shortcuts meta-data entry.
// Malformed references are dropped: third-party meta-data is untrusted.
func (s *shortcutService) shortcutsResource(p gateways.XMLParser, component entities.ComponentName) (entities.ResourceID, bool) {
	if name, _ := p.Attribute(attrName); name != MetaAppShortcuts {
		return 0, false
	}

	value, ok := p.Attribute(attrResource)
	if !ok {
		s.logger.Debug("Ignoring shortcuts meta-data without resource",
			interfaces.F("component", component.FlattenToString()))
		return 0, false
	}

	id, err := parseResourceID(value)
	if err != nil || !id.Valid() {
		s.logger.Debug("Ignoring malformed shortcuts meta-data",
			interfaces.F("component", component.FlattenToString()),
			interfaces.F("resource", value))
		return 0, false
	}

	return id, true
}
