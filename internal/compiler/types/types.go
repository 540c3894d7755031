package types

import (
	"fmt"
	"strings"
)

// Type is the closed set of types the checker can assign to expressions.
// Equality is structural except for Error and Any, which compare equal to
// everything so one root-cause mistake doesn't cascade into a pile of
// spurious diagnostics.
type Type interface {
	typeNode()
	String() string
	// Size is the entity's storage size in TAM words.
	Size() int
}

// --- Basic types ---

type basicKind int

const (
	kindInt basicKind = iota
	kindChar
	kindBool
	kindAny
	kindError
)

type Basic struct {
	kind basicKind
	name string
}

func (b *Basic) typeNode()      {}
func (b *Basic) String() string { return b.name }
func (b *Basic) Size() int      { return 1 }

var (
	Int   = &Basic{kind: kindInt, name: "Integer"}
	Char  = &Basic{kind: kindChar, name: "Char"}
	Bool  = &Basic{kind: kindBool, name: "Boolean"}
	Any   = &Basic{kind: kindAny, name: "any"}
	Error = &Basic{kind: kindError, name: "error"}
)

// --- Array types ---

type Array struct {
	Elem Type
	Len  int
}

func (a *Array) typeNode()      {}
func (a *Array) String() string { return fmt.Sprintf("array %d of %s", a.Len, a.Elem) }
func (a *Array) Size() int      { return a.Len * a.Elem.Size() }

// --- Record types ---

type Field struct {
	Name string
	Type Type
}

type Record struct {
	Fields []Field
}

func (r *Record) typeNode() {}
func (r *Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "record " + strings.Join(parts, ", ") + " end"
}

func (r *Record) Size() int {
	size := 0
	for _, f := range r.Fields {
		size += f.Type.Size()
	}
	return size
}

// FieldOffset returns the word offset of the named field within the
// record, and whether the field exists.
func (r *Record) FieldOffset(name string) (int, bool) {
	offset := 0
	for _, f := range r.Fields {
		if f.Name == name {
			return offset, true
		}
		offset += f.Type.Size()
	}
	return 0, false
}

// Lookup returns the type of the named field, if present.
func (r *Record) Lookup(name string) (Type, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Equal reports structural equivalence. Error and Any are compatible with
// any type.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	if ab, ok := a.(*Basic); ok && (ab.kind == kindError || ab.kind == kindAny) {
		return true
	}
	if bb, ok := b.(*Basic); ok && (bb.kind == kindError || bb.kind == kindAny) {
		return true
	}
	switch at := a.(type) {
	case *Basic:
		bt, ok := b.(*Basic)
		return ok && at.kind == bt.kind
	case *Array:
		bt, ok := b.(*Array)
		return ok && at.Len == bt.Len && Equal(at.Elem, bt.Elem)
	case *Record:
		bt, ok := b.(*Record)
		if !ok || len(at.Fields) != len(bt.Fields) {
			return false
		}
		for i := range at.Fields {
			if at.Fields[i].Name != bt.Fields[i].Name || !Equal(at.Fields[i].Type, bt.Fields[i].Type) {
				return false
			}
		}
		return true
	}
	return false
}

// IsError reports whether t is the error type.
func IsError(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.kind == kindError
}
