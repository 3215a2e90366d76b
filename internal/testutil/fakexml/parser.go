// Package fakexml provides in-memory XML event streams and resource
// resolvers for tests.
package fakexml

import (
	"fmt"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/gateways"
)

// Node is an element (Name set) or a text node (Name empty)
type Node struct {
	Name     string
	Attrs    map[string]string // Android-namespace attributes by local name
	Children []Node
	Text     string
}

// E builds an element node
func E(name string, attrs map[string]string, children ...Node) Node {
	return Node{Name: name, Attrs: attrs, Children: children}
}

// T builds a text node
func T(text string) Node {
	return Node{Text: text}
}

// A builds an attribute map from alternating keys and values
func A(kv ...string) map[string]string {
	if len(kv)%2 != 0 {
		panic("fakexml.A: odd number of arguments")
	}
	m := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

type event struct {
	kind  gateways.EventKind
	name  string
	attrs map[string]string
}

// Parser replays the events of a node tree
type Parser struct {
	events []event
	pos    int
	closed bool
	// FailAt makes Next return an error when it would produce the event at this index (1-based); 0 disables
	FailAt int
}

// NewParser flattens root into an event stream
func NewParser(root Node) *Parser {
	p := &Parser{events: []event{{kind: gateways.StartDocument}}}
	p.flatten(root)
	p.events = append(p.events, event{kind: gateways.EndDocument})
	return p
}

// Truncated returns a parser over root whose stream stops after n events
// (not counting StartDocument) and then reports EndDocument
func Truncated(root Node, n int) *Parser {
	p := NewParser(root)
	if n+1 < len(p.events)-1 {
		p.events = append(p.events[:n+1:n+1], event{kind: gateways.EndDocument})
	}
	return p
}

func (p *Parser) flatten(n Node) {
	if n.Name == "" {
		p.events = append(p.events, event{kind: gateways.Text, name: n.Text})
		return
	}
	p.events = append(p.events, event{kind: gateways.StartTag, name: n.Name, attrs: n.Attrs})
	for _, c := range n.Children {
		p.flatten(c)
	}
	p.events = append(p.events, event{kind: gateways.EndTag, name: n.Name})
}

// Next implements gateways.XMLParser
func (p *Parser) Next() (gateways.EventKind, error) {
	if p.closed {
		return gateways.EndDocument, fmt.Errorf("parser closed")
	}
	if p.pos < len(p.events)-1 {
		if p.FailAt > 0 && p.pos+1 == p.FailAt {
			return p.events[p.pos].kind, fmt.Errorf("injected read failure at event %d", p.FailAt)
		}
		p.pos++
	}
	return p.events[p.pos].kind, nil
}

// Event implements gateways.XMLParser
func (p *Parser) Event() gateways.EventKind {
	return p.events[p.pos].kind
}

// Name implements gateways.XMLParser
func (p *Parser) Name() string {
	switch p.events[p.pos].kind {
	case gateways.StartTag, gateways.EndTag:
		return p.events[p.pos].name
	default:
		return ""
	}
}

// Attribute implements gateways.XMLParser
func (p *Parser) Attribute(name string) (string, bool) {
	e := p.events[p.pos]
	if e.kind != gateways.StartTag {
		return "", false
	}
	v, ok := e.attrs[name]
	return v, ok
}

// Close implements gateways.XMLParser
func (p *Parser) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called
func (p *Parser) Closed() bool {
	return p.closed
}

// Resolver is an in-memory ResourceResolver
type Resolver struct {
	Strings   map[entities.ResourceID]string
	Drawables map[entities.ResourceID]string
	XML       map[entities.ResourceID]Node

	Opened []*Parser
	closed bool
}

// ResolveString implements gateways.ResourceResolver
func (r *Resolver) ResolveString(id entities.ResourceID) (string, error) {
	s, ok := r.Strings[id]
	if !ok {
		return "", fmt.Errorf("%w: string %s", entities.ErrResourceNotFound, id)
	}
	return s, nil
}

// ResolveDrawable implements gateways.ResourceResolver
func (r *Resolver) ResolveDrawable(id entities.ResourceID) (entities.Icon, error) {
	path, ok := r.Drawables[id]
	if !ok {
		return entities.Icon{}, fmt.Errorf("%w: drawable %s", entities.ErrResourceNotFound, id)
	}
	return entities.Icon{ResourceID: id, Path: path}, nil
}

// OpenXMLResource implements gateways.ResourceResolver
func (r *Resolver) OpenXMLResource(id entities.ResourceID) (gateways.XMLParser, error) {
	root, ok := r.XML[id]
	if !ok {
		return nil, fmt.Errorf("%w: xml %s", entities.ErrResourceNotFound, id)
	}
	p := NewParser(root)
	r.Opened = append(r.Opened, p)
	return p, nil
}

// Close implements gateways.ResourceResolver
func (r *Resolver) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close was called
func (r *Resolver) Closed() bool {
	return r.closed
}
