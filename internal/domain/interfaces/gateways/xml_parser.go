package gateways

import (
	"fmt"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
)

// AndroidNamespace is the namespace attribute lookups are scoped to
const AndroidNamespace = "http://schemas.android.com/apk/res/android"

// EventKind is the kind of structural event produced by an XMLParser
type EventKind int

// Event kinds
const (
	StartDocument EventKind = iota
	StartTag
	EndTag
	Text
	EndDocument
)

func (k EventKind) String() string {
	switch k {
	case StartDocument:
		return "START_DOCUMENT"
	case StartTag:
		return "START_TAG"
	case EndTag:
		return "END_TAG"
	case Text:
		return "TEXT"
	case EndDocument:
		return "END_DOCUMENT"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// XMLParser is a forward-only pull parser over an XML document, compiled or
// plain text. A fresh parser is positioned on StartDocument.
type XMLParser interface {
	// Next advances to the next event. After EndDocument it keeps returning EndDocument.
	Next() (EventKind, error)

	// Event returns the current event kind
	Event() EventKind

	// Name returns the tag name of the current StartTag or EndTag event
	Name() string

	// Attribute looks up an attribute of the current StartTag in the Android namespace
	Attribute(name string) (string, bool)

	// Close releases the underlying stream
	Close() error
}

// NextTag advances past text events to the next StartTag, EndTag or EndDocument
func NextTag(p XMLParser) (EventKind, error) {
	for {
		kind, err := p.Next()
		if err != nil {
			return kind, err
		}
		switch kind {
		case StartTag, EndTag, EndDocument:
			return kind, nil
		}
	}
}

// Require checks that the current event has the given kind and, when name is
// not empty, the given tag name
func Require(p XMLParser, kind EventKind, name string) error {
	if p.Event() != kind {
		return fmt.Errorf("expected %s <%s>, got %s", kind, name, p.Event())
	}
	if name != "" && p.Name() != name {
		return fmt.Errorf("expected %s <%s>, got <%s>", kind, name, p.Name())
	}
	return nil
}

// Skip consumes the element the parser is positioned on, including all of
// its descendants, leaving the parser on the matching EndTag
func Skip(p XMLParser) error {
	if p.Event() != StartTag {
		return fmt.Errorf("skip called on %s", p.Event())
	}
	depth := 1
	for depth != 0 {
		kind, err := p.Next()
		if err != nil {
			return err
		}
		switch kind {
		case StartTag:
			depth++
		case EndTag:
			depth--
		case EndDocument:
			return entities.ErrUnexpectedEndOfDocument
		}
	}
	return nil
}
