package entities

import "fmt"

// ResourceID is a compiled resource identifier (0xPPTTEEEE)
type ResourceID uint32

// Valid reports whether the id can address a resource
func (id ResourceID) Valid() bool {
	return id >= 1
}

// Package returns the package byte of the id
func (id ResourceID) Package() uint8 {
	return uint8(id >> 24)
}

// Type returns the type byte of the id
func (id ResourceID) Type() uint8 {
	return uint8(id >> 16)
}

// Entry returns the entry index of the id
func (id ResourceID) Entry() uint16 {
	return uint16(id)
}

func (id ResourceID) String() string {
	return fmt.Sprintf("0x%08x", uint32(id))
}

// RefKind tags the shape of an attribute value
type RefKind int

const (
	// RefAbsent means the attribute was not present
	RefAbsent RefKind = iota
	// RefLiteral means the attribute holds an inline string
	RefLiteral
	// RefResource means the attribute points at a resource ("@<id>")
	RefResource
)

func (k RefKind) String() string {
	switch k {
	case RefAbsent:
		return "absent"
	case RefLiteral:
		return "literal"
	case RefResource:
		return "resource"
	default:
		return "unknown"
	}
}

// ResourceRef is the result of inspecting an attribute that may hold a
// literal value or an indirection into the package's resource table
type ResourceRef struct {
	Kind    RefKind
	Literal string
	ID      ResourceID
}

// AbsentRef returns the "absent" reference
func AbsentRef() ResourceRef {
	return ResourceRef{Kind: RefAbsent}
}

// LiteralRef returns a literal reference
func LiteralRef(value string) ResourceRef {
	return ResourceRef{Kind: RefLiteral, Literal: value}
}

// ResourceIDRef returns a reference to a resource id
func ResourceIDRef(id ResourceID) ResourceRef {
	return ResourceRef{Kind: RefResource, ID: id}
}
