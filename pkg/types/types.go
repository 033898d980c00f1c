// Package types holds the cross-referencer's resolved symbol space: the
// Type/VariableType representation that replaces parse-level type
// literals, and the Identifiable tagged variants that the program symbol
// table maps names to.
package types

import "github.com/aaalang/aaac/pkg/token"

// TypeKind distinguishes the three kinds a declared Type can be.
type TypeKind int

const (
	Struct TypeKind = iota
	Enum
	Builtin
)

// Field is one resolved struct field.
type Field struct {
	Name string
	Type *VariableType
}

// Variant is one resolved enum variant; AssociatedTypes is empty for a
// variant with no associated data.
type Variant struct {
	Name            string
	AssociatedTypes []*VariableType
}

// Type is a resolved struct, enum, or builtin primitive declaration: the
// Identifiable payload for anything that can appear in a VariableType.
type Type struct {
	Kind       TypeKind
	Name       string
	File       string
	Position   token.Position
	Arity      int      // number of its own declared type parameters
	ParamNames []string // the declaration's own generic parameter names, e.g. ["A", "B"]

	Fields   []Field   // Kind == Struct
	Variants []Variant // Kind == Enum
}

// VariantByName returns the variant named name, or nil if Kind != Enum or
// no variant has that name.
func (t *Type) VariantByName(name string) *Variant {
	for i := range t.Variants {
		if t.Variants[i].Name == name {
			return &t.Variants[i]
		}
	}
	return nil
}

// FieldByName returns the field named name, or nil if Kind != Struct or
// no field has that name.
func (t *Type) FieldByName(name string) *Field {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}

// Instantiation returns the substitution binding t's own generic
// parameter names to the concrete arguments of one instance's Params, so
// a field or variant's placeholder-bearing type can be made concrete.
func (t *Type) Instantiation(params []*VariableType) map[string]*VariableType {
	if len(t.ParamNames) == 0 {
		return nil
	}
	subst := make(map[string]*VariableType, len(t.ParamNames))
	for i, name := range t.ParamNames {
		if i < len(params) {
			subst[name] = params[i]
		}
	}
	return subst
}

// VariableType is the resolved form of a type literal: either a named
// type (possibly parameterized, possibly a generic placeholder, possibly
// const) or a function-pointer type. A named type sets Type, a
// function-pointer type sets FnPtr, and a placeholder sets neither.
type VariableType struct {
	Type   *Type
	Params []*VariableType

	IsPlaceholder   bool
	PlaceholderName string // the generic parameter name, when IsPlaceholder

	IsConst bool

	FnPtr *FunctionPointerType // non-nil for a function-pointer type
}

// FunctionPointerType is the resolved shape of a callable value's type.
type FunctionPointerType struct {
	Arguments    []*VariableType
	Returns      []*VariableType
	ReturnsNever bool
}

// Equal reports whether v and other describe the same resolved type,
// structurally: two placeholders are equal iff they share a name, two
// named types iff their Type and Params match recursively.
func (v *VariableType) Equal(other *VariableType) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.IsPlaceholder || other.IsPlaceholder {
		return v.IsPlaceholder && other.IsPlaceholder && v.PlaceholderName == other.PlaceholderName
	}
	if v.FnPtr != nil || other.FnPtr != nil {
		return fnPtrEqual(v.FnPtr, other.FnPtr)
	}
	if v.Type != other.Type || len(v.Params) != len(other.Params) {
		return false
	}
	for i := range v.Params {
		if !v.Params[i].Equal(other.Params[i]) {
			return false
		}
	}
	return true
}

func fnPtrEqual(a, b *FunctionPointerType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ReturnsNever != b.ReturnsNever || len(a.Arguments) != len(b.Arguments) || len(a.Returns) != len(b.Returns) {
		return false
	}
	for i := range a.Arguments {
		if !a.Arguments[i].Equal(b.Arguments[i]) {
			return false
		}
	}
	for i := range a.Returns {
		if !a.Returns[i].Equal(b.Returns[i]) {
			return false
		}
	}
	return true
}

// String renders a VariableType for diagnostic messages.
func (v *VariableType) String() string {
	if v == nil {
		return "<nil>"
	}
	if v.IsPlaceholder {
		return v.PlaceholderName
	}
	prefix := ""
	if v.IsConst {
		prefix = "const "
	}
	if v.FnPtr != nil {
		return prefix + fnPtrString(v.FnPtr)
	}
	name := v.Type.Name
	if len(v.Params) == 0 {
		return prefix + name
	}
	s := prefix + name + "["
	for i, p := range v.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + "]"
}

func fnPtrString(f *FunctionPointerType) string {
	s := "fn["
	for i, a := range f.Arguments {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	s += "]["
	if f.ReturnsNever {
		s += "never"
	} else {
		for i, r := range f.Returns {
			if i > 0 {
				s += ", "
			}
			s += r.String()
		}
	}
	return s + "]"
}
