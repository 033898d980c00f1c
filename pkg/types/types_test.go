package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariableTypeEqual(t *testing.T) {
	intType := &Type{Kind: Builtin, Name: "int"}
	vecType := &Type{Kind: Struct, Name: "vec", Arity: 1}

	a := &VariableType{Type: vecType, Params: []*VariableType{{Type: intType}}}
	b := &VariableType{Type: vecType, Params: []*VariableType{{Type: intType}}}
	assert.True(t, a.Equal(b))

	c := &VariableType{IsPlaceholder: true, PlaceholderName: "A"}
	d := &VariableType{IsPlaceholder: true, PlaceholderName: "A"}
	e := &VariableType{IsPlaceholder: true, PlaceholderName: "B"}
	assert.True(t, c.Equal(d))
	assert.False(t, c.Equal(e))
	assert.False(t, a.Equal(c))
}

func TestVariableTypeString(t *testing.T) {
	intType := &Type{Kind: Builtin, Name: "int"}
	v := &VariableType{Type: intType}
	assert.Equal(t, "int", v.String())

	vecType := &Type{Kind: Struct, Name: "vec", Arity: 1}
	v2 := &VariableType{Type: vecType, Params: []*VariableType{{Type: intType}}, IsConst: true}
	assert.Equal(t, "const vec[int]", v2.String())

	fn := &VariableType{FnPtr: &FunctionPointerType{
		Arguments: []*VariableType{{Type: intType}},
		Returns:   []*VariableType{{Type: intType}},
	}}
	assert.Equal(t, "fn[int][int]", fn.String())
}

func TestTypeFieldAndVariantLookup(t *testing.T) {
	intType := &Type{Kind: Builtin, Name: "int"}
	pair := &Type{
		Kind:   Struct,
		Name:   "pair",
		Fields: []Field{{Name: "first", Type: &VariableType{Type: intType}}},
	}
	f := pair.FieldByName("first")
	assert.NotNil(t, f)
	assert.Nil(t, pair.FieldByName("missing"))

	e := &Type{Kind: Enum, Name: "E", Variants: []Variant{{Name: "A"}}}
	assert.NotNil(t, e.VariantByName("A"))
	assert.Nil(t, e.VariantByName("Z"))
}

func TestTableInsertCollision(t *testing.T) {
	tbl := NewTable()
	intType := &TypeIdentifiable{Type: &Type{Name: "int"}}
	key := Key{File: "f.aaa", Name: "int"}
	assert.True(t, tbl.Insert(key, intType))
	assert.False(t, tbl.Insert(key, intType))

	got, ok := tbl.Lookup("f.aaa", "int")
	assert.True(t, ok)
	assert.Same(t, intType, got)

	assert.Equal(t, []Key{key}, tbl.Keys())
}
