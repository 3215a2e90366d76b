// Package textxml adapts plain-text XML documents to the XMLParser event stream.
package textxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// androidPrefix is accepted in place of the namespace URI when a document
// uses the android: prefix without declaring it
const androidPrefix = "android"

// NameResolver maps a symbolic "type/name" reference onto a resource id
type NameResolver func(ref string) (entities.ResourceID, bool)

// Parser is a pull parser over a text XML document
type Parser struct {
	dec      *xml.Decoder
	closer   io.Closer
	resolve  NameResolver
	event    gateways.EventKind
	name     string
	attrs    []xml.Attr
	depth    int
	finished bool
}

// Option configures a Parser
type Option func(*Parser)

// WithNameResolver rewrites symbolic "@type/name" attribute values into
// the "@<decimal id>" form compiled documents carry
func WithNameResolver(resolve NameResolver) Option {
	return func(p *Parser) {
		p.resolve = resolve
	}
}

// NewParser creates a parser reading from r. When r is an io.Closer, Close closes it.
func NewParser(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		dec:   xml.NewDecoder(r),
		event: gateways.StartDocument,
	}
	if c, ok := r.(io.Closer); ok {
		p.closer = c
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next implements gateways.XMLParser
func (p *Parser) Next() (gateways.EventKind, error) {
	if p.finished {
		return gateways.EndDocument, nil
	}

	for {
		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			if p.depth > 0 {
				return p.event, fmt.Errorf("document ends inside <%s>: %w", p.name, entities.ErrUnexpectedEndOfDocument)
			}
			p.finished = true
			p.set(gateways.EndDocument, "", nil)
			return p.event, nil
		}
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) && syntaxErr.Msg == "unexpected EOF" {
			return p.event, fmt.Errorf("document ends inside <%s>: %w", p.name, entities.ErrUnexpectedEndOfDocument)
		}
		if err != nil {
			return p.event, fmt.Errorf("failed to read XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.depth++
			p.set(gateways.StartTag, t.Name.Local, t.Attr)
			return p.event, nil
		case xml.EndElement:
			p.depth--
			p.set(gateways.EndTag, t.Name.Local, nil)
			return p.event, nil
		case xml.CharData:
			p.set(gateways.Text, "", nil)
			return p.event, nil
		}
		// comments, processing instructions and directives carry no events
	}
}

func (p *Parser) set(kind gateways.EventKind, name string, attrs []xml.Attr) {
	p.event = kind
	p.name = name
	p.attrs = attrs
}

// Event implements gateways.XMLParser
func (p *Parser) Event() gateways.EventKind {
	return p.event
}

// Name implements gateways.XMLParser
func (p *Parser) Name() string {
	return p.name
}

// Attribute implements gateways.XMLParser
func (p *Parser) Attribute(name string) (string, bool) {
	if p.event != gateways.StartTag {
		return "", false
	}
	for _, a := range p.attrs {
		if a.Name.Local != name {
			continue
		}
		if a.Name.Space != gateways.AndroidNamespace && a.Name.Space != androidPrefix {
			continue
		}
		return p.rewrite(a.Value), true
	}
	return "", false
}

// RawAttribute looks up an attribute by namespace and local name without any rewriting
func (p *Parser) RawAttribute(namespace, name string) (string, bool) {
	if p.event != gateways.StartTag {
		return "", false
	}
	for _, a := range p.attrs {
		if a.Name.Space == namespace && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// rewrite normalizes resource references to "@<decimal id>": hexadecimal
// "@0x7F130000" as rendered from compiled documents, and symbolic
// "@type/name" through the name resolver
func (p *Parser) rewrite(value string) string {
	if hex, ok := strings.CutPrefix(value, "@0x"); ok {
		if id, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return "@" + strconv.FormatUint(id, 10)
		}
		return value
	}
	if p.resolve == nil || !strings.HasPrefix(value, "@") || !strings.Contains(value, "/") {
		return value
	}
	ref := strings.TrimPrefix(value[1:], "+")
	if id, ok := p.resolve(ref); ok {
		return fmt.Sprintf("@%d", uint32(id))
	}
	return value
}

// Close implements gateways.XMLParser
func (p *Parser) Close() error {
	p.finished = true
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}
