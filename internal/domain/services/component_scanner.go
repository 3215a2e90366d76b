package services

import (
	"strconv"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// ScanComponents derives the export flags of every activity and
// activity-alias declared by a manifest. An explicit android:exported wins;
// otherwise a component is exported when it declares an intent-filter.
func ScanComponents(p gateways.XMLParser, packageName string) (*entities.PackageMetadata, error) {
	if err := enterApplication(p, packageName); err != nil {
		return nil, err
	}

	meta := &entities.PackageMetadata{PackageName: packageName}
	for {
		kind, err := gateways.NextTag(p)
		if err != nil {
			return nil, malformedManifest(err)
		}
		if kind == gateways.EndDocument {
			return nil, malformedManifest(entities.ErrUnexpectedEndOfDocument)
		}
		if kind != gateways.StartTag {
			return meta, nil
		}

		tag := p.Name()
		name, hasName := p.Attribute(attrName)
		if (tag != tagActivity && tag != tagActivityAlias) || !hasName || name == "" {
			if err := gateways.Skip(p); err != nil {
				return nil, malformedManifest(err)
			}
			continue
		}

		exported, explicit := parseBoolAttribute(p, attrExported)
		hasFilter, err := hasDirectChild(p, tagIntentFilter)
		if err != nil {
			return nil, malformedManifest(err)
		}
		if !explicit {
			exported = hasFilter
		}

		meta.Activities = append(meta.Activities, entities.ActivityInfo{
			Name:     name,
			Exported: exported,
			Alias:    tag == tagActivityAlias,
		})
	}
}

func parseBoolAttribute(p gateways.XMLParser, attr string) (value, ok bool) {
	raw, present := p.Attribute(attr)
	if !present {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// hasDirectChild consumes the current element and reports whether one of its
// direct children has the given tag
func hasDirectChild(p gateways.XMLParser, tag string) (bool, error) {
	found := false
	for {
		kind, err := gateways.NextTag(p)
		if err != nil {
			return false, err
		}
		switch kind {
		case gateways.EndDocument:
			return false, entities.ErrUnexpectedEndOfDocument
		case gateways.EndTag:
			return found, nil
		case gateways.StartTag:
			if p.Name() == tag {
				found = true
			}
			if err := gateways.Skip(p); err != nil {
				return false, err
			}
		}
	}
}
