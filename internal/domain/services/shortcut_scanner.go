package services

import (
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// ScanShortcuts lazily yields the shortcuts of a shortcuts XML resource
// declared by one component. The sequence is single-use: it consumes p.
// Records are not filtered by the export gate.
func (s *shortcutService) ScanShortcuts(
	p gateways.XMLParser,
	resolver gateways.ResourceResolver,
	packageName string,
	declaring entities.ComponentName,
) iter.Seq2[entities.Shortcut, error] {
	return func(yield func(entities.Shortcut, error) bool) {
		if _, err := gateways.NextTag(p); err != nil {
			yield(entities.Shortcut{}, malformedShortcuts(err))
			return
		}
		if err := gateways.Require(p, gateways.StartTag, tagShortcuts); err != nil {
			yield(entities.Shortcut{}, malformedShortcuts(err))
			return
		}

		ordinal := 0
		for {
			kind, err := gateways.NextTag(p)
			if err != nil {
				yield(entities.Shortcut{}, malformedShortcuts(err))
				return
			}
			if kind == gateways.EndDocument {
				yield(entities.Shortcut{}, malformedShortcuts(entities.ErrUnexpectedEndOfDocument))
				return
			}
			if kind != gateways.StartTag {
				return
			}

			if p.Name() != tagShortcut {
				if err := gateways.Skip(p); err != nil {
					yield(entities.Shortcut{}, malformedShortcuts(err))
					return
				}
				continue
			}

			shortcut, ok, err := s.scanShortcut(p, resolver, declaring, ordinal)
			if err != nil {
				yield(entities.Shortcut{}, err)
				return
			}
			if !ok {
				s.logger.Debug("Discarding shortcut without intent",
					interfaces.F("package", packageName),
					interfaces.F("activity", declaring.FlattenToString()))
				continue
			}

			ordinal++
			if !yield(shortcut, nil) {
				return
			}
		}
	}
}

// scanShortcut reads one shortcut element and its subtree. It reports false
// when the element declares no intent.
func (s *shortcutService) scanShortcut(
	p gateways.XMLParser,
	resolver gateways.ResourceResolver,
	declaring entities.ComponentName,
	ordinal int,
) (entities.Shortcut, bool, error) {
	id, _ := p.Attribute(attrShortcutID)

	shortLabel, err := label(p, resolver, attrShortcutShortLabel)
	if err != nil {
		return entities.Shortcut{}, false, err
	}
	longLabel, err := label(p, resolver, attrShortcutLongLabel)
	if err != nil {
		return entities.Shortcut{}, false, err
	}
	disabledMessage, err := label(p, resolver, attrShortcutDisabledMessage)
	if err != nil {
		return entities.Shortcut{}, false, err
	}
	icon, err := drawable(p, resolver)
	if err != nil {
		return entities.Shortcut{}, false, err
	}

	// first <intent> at any depth wins
	var intent *entities.Intent
	depth := 1
	for depth != 0 {
		kind, err := gateways.NextTag(p)
		if err != nil {
			return entities.Shortcut{}, false, malformedShortcuts(err)
		}
		switch kind {
		case gateways.EndDocument:
			return entities.Shortcut{}, false, malformedShortcuts(entities.ErrUnexpectedEndOfDocument)
		case gateways.EndTag:
			depth--
		case gateways.StartTag:
			switch {
			case intent == nil && p.Name() == tagIntent:
				parsed, err := parseIntent(p, declaring)
				if err != nil {
					return entities.Shortcut{}, false, err
				}
				intent = &parsed
				if err := gateways.Skip(p); err != nil {
					return entities.Shortcut{}, false, malformedShortcuts(err)
				}
			case intent != nil:
				if err := gateways.Skip(p); err != nil {
					return entities.Shortcut{}, false, malformedShortcuts(err)
				}
			default:
				depth++
			}
		}
	}

	if intent == nil {
		return entities.Shortcut{}, false, nil
	}

	if id == "" {
		id = intent.Component.String() + "_shortcut" + strconv.Itoa(ordinal)
	}

	return entities.Shortcut{
		ID:              id,
		Intent:          *intent,
		Activity:        declaring,
		ShortLabel:      shortLabel,
		LongLabel:       longLabel,
		DisabledMessage: disabledMessage,
		Icon:            icon,
	}, true, nil
}

// label resolves a label attribute; absent labels are empty
func label(p gateways.XMLParser, resolver gateways.ResourceResolver, attr string) (string, error) {
	ref, err := resourceRef(p, attr)
	if err != nil {
		return "", malformedShortcuts(fmt.Errorf("attribute %s: %w", attr, err))
	}

	switch ref.Kind {
	case entities.RefLiteral:
		return ref.Literal, nil
	case entities.RefResource:
		value, err := resolver.ResolveString(ref.ID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s %s: %w", attr, ref.ID, err)
		}
		return value, nil
	default:
		return "", nil
	}
}

// drawable resolves the icon attribute, which has no default
func drawable(p gateways.XMLParser, resolver gateways.ResourceResolver) (entities.Icon, error) {
	ref, err := resourceRef(p, attrIcon)
	if err != nil || ref.Kind != entities.RefResource {
		value, _ := p.Attribute(attrIcon)
		return entities.Icon{}, fmt.Errorf("%w: shortcut icon %q is not a drawable reference",
			entities.ErrResourceNotFound, value)
	}

	icon, err := resolver.ResolveDrawable(ref.ID)
	if err != nil {
		return entities.Icon{}, fmt.Errorf("failed to resolve icon %s: %w", ref.ID, err)
	}
	return icon, nil
}

// parseIntent builds the activation intent from an <intent> element
func parseIntent(p gateways.XMLParser, declaring entities.ComponentName) (entities.Intent, error) {
	intent := entities.Intent{
		Component: declaring,
		Action:    entities.ActionMain,
		Flags:     entities.ShortcutIntentFlags,
	}

	targetClass, hasClass := p.Attribute(attrTargetClass)
	targetPackage, hasPackage := p.Attribute(attrTargetPackage)
	if hasClass && hasPackage {
		intent.Component = entities.NewComponentName(targetPackage, targetClass)
	}

	if action, ok := p.Attribute(attrAction); ok {
		intent.Action = action
	}

	if data, ok := p.Attribute(attrData); ok {
		u, err := url.Parse(data)
		if err != nil {
			return entities.Intent{}, malformedShortcuts(fmt.Errorf("intent data %q: %w", data, err))
		}
		intent.Data = u
	}

	return intent, nil
}
