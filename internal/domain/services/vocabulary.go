package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// MetaAppShortcuts is the meta-data name whose resource points at a shortcuts XML
const MetaAppShortcuts = "android.app.shortcuts"

const (
	tagManifest      = "manifest"
	tagApplication   = "application"
	tagActivity      = "activity"
	tagActivityAlias = "activity-alias"
	tagMetaData      = "meta-data"
	tagIntentFilter  = "intent-filter"
	tagShortcuts     = "shortcuts"
	tagShortcut      = "shortcut"
	tagIntent        = "intent"

	attrName     = "name"
	attrResource = "resource"
	attrExported = "exported"

	attrShortcutID              = "shortcutId"
	attrShortcutShortLabel      = "shortcutShortLabel"
	attrShortcutLongLabel       = "shortcutLongLabel"
	attrShortcutDisabledMessage = "shortcutDisabledMessage"
	attrIcon                    = "icon"

	attrAction        = "action"
	attrData          = "data"
	attrTargetClass   = "targetClass"
	attrTargetPackage = "targetPackage"
)

// parseResourceID parses an "@<decimal>" reference. "@0" (the compiled
// form of @null) parses to the zero id.
func parseResourceID(value string) (entities.ResourceID, error) {
	if !strings.HasPrefix(value, "@") {
		return 0, fmt.Errorf("%q is not a resource reference", value)
	}
	n, err := strconv.ParseUint(value[1:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid resource reference %q: %w", value, err)
	}
	return entities.ResourceID(n), nil
}

// resourceRef inspects an attribute that holds either a literal or a resource reference
func resourceRef(p gateways.XMLParser, attr string) (entities.ResourceRef, error) {
	value, ok := p.Attribute(attr)
	if !ok {
		return entities.AbsentRef(), nil
	}
	if !strings.HasPrefix(value, "@") {
		return entities.LiteralRef(value), nil
	}
	id, err := parseResourceID(value)
	if err != nil {
		return entities.ResourceRef{}, err
	}
	if !id.Valid() {
		return entities.AbsentRef(), nil
	}
	return entities.ResourceIDRef(id), nil
}

func malformedManifest(err error) error {
	return fmt.Errorf("%w: %w", entities.ErrMalformedManifest, err)
}

func malformedShortcuts(err error) error {
	return fmt.Errorf("%w: %w", entities.ErrMalformedShortcutsDocument, err)
}

// enterApplication positions the parser on the manifest's application element
func enterApplication(p gateways.XMLParser, packageName string) error {
	if _, err := gateways.NextTag(p); err != nil {
		return malformedManifest(err)
	}
	if err := gateways.Require(p, gateways.StartTag, tagManifest); err != nil {
		return malformedManifest(err)
	}
	for {
		kind, err := gateways.NextTag(p)
		if err != nil {
			return malformedManifest(err)
		}
		if kind != gateways.StartTag {
			return fmt.Errorf("%w: package %s", entities.ErrMissingApplicationElement, packageName)
		}
		if p.Name() == tagApplication {
			return nil
		}
		// ignore any tag before <application>
		if err := gateways.Skip(p); err != nil {
			return malformedManifest(err)
		}
	}
}
