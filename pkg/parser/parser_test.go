package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/tokenizer"
)

func mustParse(t *testing.T, code string) *ast.SourceFile {
	t.Helper()
	tokens, err := tokenizer.Run("test.aaa", code)
	require.NoError(t, err)
	sf, errs := ParseFile("test.aaa", tokens, 0)
	require.Empty(t, errs, "%v", errs)
	require.NotNil(t, sf)
	return sf
}

func TestParseHelloSum(t *testing.T) {
	sf := mustParse(t, `fn main { 2 3 + . }`)
	require.Len(t, sf.Functions, 1)
	fn := sf.Functions[0]
	assert.Equal(t, "main", fn.Name())
	require.NotNil(t, fn.Body)
	require.Len(t, fn.Body.Items, 4)

	assert.IsType(t, &ast.Integer{}, fn.Body.Items[0])
	assert.IsType(t, &ast.Integer{}, fn.Body.Items[1])
	call, ok := fn.Body.Items[2].(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "+", call.Name())
}

func TestParseStructWithFields(t *testing.T) {
	sf := mustParse(t, `struct pair[A, B] { first as A, second as B }`)
	require.Len(t, sf.Structs, 1)
	s := sf.Structs[0]
	assert.Equal(t, "pair", s.Name())
	assert.Equal(t, []string{"A", "B"}, s.Declaration.Literal.Params)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "first", s.Fields[0].Name)
	assert.Equal(t, "second", s.Fields[1].Name)
}

func TestParseEnumWithAssociatedData(t *testing.T) {
	sf := mustParse(t, `enum E { A, B as int }`)
	require.Len(t, sf.Enums, 1)
	e := sf.Enums[0]
	assert.Equal(t, "E", e.Name())
	require.Len(t, e.Variants, 2)
	assert.Equal(t, "A", e.Variants[0].Name)
	assert.Empty(t, e.Variants[0].AssociatedTypes)
	assert.Equal(t, "B", e.Variants[1].Name)
	require.Len(t, e.Variants[1].AssociatedTypes, 1)
}

func TestParseMemberFunctionWithGenericsAndReturn(t *testing.T) {
	sf := mustParse(t, `fn vec[A]:push args v as vec[A], item as A return vec[A] { v }`)
	require.Len(t, sf.Functions, 1)
	fn := sf.Functions[0]
	assert.Equal(t, "vec:push", fn.Name())
	assert.Equal(t, []string{"A"}, fn.Declaration.Name.Params)
	require.Len(t, fn.Declaration.Arguments, 2)
	require.Len(t, fn.Declaration.ReturnTypes, 1)
}

func TestParseBuiltinFunctionAndStructHaveNoBody(t *testing.T) {
	sf := mustParse(t, "builtin struct int\nbuiltin fn +\nargs a as int, b as int\nreturn int\n")
	require.Len(t, sf.Structs, 1)
	require.Len(t, sf.Functions, 1)
	assert.True(t, sf.Structs[0].IsBuiltin)
	assert.Nil(t, sf.Structs[0].Fields)
	assert.True(t, sf.Functions[0].IsBuiltin)
	assert.Nil(t, sf.Functions[0].Body)
}

func TestParseFunctionPointerType(t *testing.T) {
	sf := mustParse(t, `fn apply args f as fn[int, int][int] { }`)
	arg := sf.Functions[0].Declaration.Arguments[0]
	fnPtr, ok := arg.Type.(*ast.FunctionPointerType)
	require.True(t, ok)
	assert.Len(t, fnPtr.ArgumentTypes, 2)
	assert.Len(t, fnPtr.ReturnTypes, 1)
	assert.False(t, fnPtr.ReturnsNever)
}

func TestParseNeverReturn(t *testing.T) {
	sf := mustParse(t, `fn die return never { }`)
	assert.True(t, sf.Functions[0].Declaration.ReturnsNever)
}

func TestParseImportWithAlias(t *testing.T) {
	sf := mustParse(t, `from "foo.bar" import baz, qux as quux`)
	require.Len(t, sf.Imports, 1)
	imp := sf.Imports[0]
	assert.Equal(t, "foo.bar", imp.Source)
	require.Len(t, imp.Items, 2)
	assert.Equal(t, "baz", imp.Items[0].Original)
	assert.Equal(t, "baz", imp.Items[0].Imported)
	assert.Equal(t, "qux", imp.Items[1].Original)
	assert.Equal(t, "quux", imp.Items[1].Imported)
}

func TestParseMatchWithDefault(t *testing.T) {
	sf := mustParse(t, `fn main { match { case E:A { 0 } case E:B as n { n } default { 0 } } }`)
	body := sf.Functions[0].Body.Items
	require.Len(t, body, 1)
	m, ok := body[0].(*ast.MatchBlock)
	require.True(t, ok)
	require.Len(t, m.Cases, 2)
	assert.Equal(t, "E", m.Cases[0].Label.EnumName)
	assert.Equal(t, "A", m.Cases[0].Label.VariantName)
	assert.Equal(t, []string{"n"}, m.Cases[1].Label.Variables)
	assert.NotNil(t, m.DefaultBody)
}

func TestParseFieldQueryAndUpdate(t *testing.T) {
	sf := mustParse(t, `fn main { "x" ? drop "y" { 1 } ! drop }`)
	items := sf.Functions[0].Body.Items
	require.Len(t, items, 4)
	q, ok := items[0].(*ast.StructFieldQuery)
	require.True(t, ok)
	assert.Equal(t, "x", q.FieldName)

	u, ok := items[2].(*ast.StructFieldUpdate)
	require.True(t, ok)
	assert.Equal(t, "y", u.FieldName)
	require.Len(t, u.NewValue.Items, 1)
}

func TestParseUseAndAssignment(t *testing.T) {
	sf := mustParse(t, `fn main { use a, b { a } a, b <- { 1 2 } }`)
	items := sf.Functions[0].Body.Items
	require.Len(t, items, 2)

	use, ok := items[0].(*ast.UseBlock)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, use.Variables)

	assign, ok := items[1].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, assign.Variables)
}

func TestParseGetFunctionPointerAndIndirectCall(t *testing.T) {
	sf := mustParse(t, `fn main { "helper" fn call drop }`)
	items := sf.Functions[0].Body.Items
	require.Len(t, items, 3)
	ptr, ok := items[0].(*ast.GetFunctionPointer)
	require.True(t, ok)
	assert.Equal(t, "helper", ptr.FunctionName)
	assert.IsType(t, &ast.IndirectCall{}, items[1])
}

func TestParseErrorUnhandledTopLevelToken(t *testing.T) {
	tokens, err := tokenizer.Run("test.aaa", `} fn main { }`)
	require.NoError(t, err)
	sf, errs := ParseFile("test.aaa", tokens, 0)
	assert.Nil(t, sf)
	require.NotEmpty(t, errs)
}

func TestParseErrorUnexpectedEOF(t *testing.T) {
	tokens, err := tokenizer.Run("test.aaa", `fn main {`)
	require.NoError(t, err)
	sf, errs := ParseFile("test.aaa", tokens, 0)
	assert.Nil(t, sf)
	require.NotEmpty(t, errs)
}

func TestTrailingCommasAccepted(t *testing.T) {
	sf := mustParse(t, `struct pair[A, B,] { first as A, second as B, }`)
	require.Len(t, sf.Structs, 1)
	assert.Len(t, sf.Structs[0].Fields, 2)

	sf = mustParse(t, `fn main args a as int, return int, { 0 }`)
	require.Len(t, sf.Functions[0].Declaration.Arguments, 1)
	require.Len(t, sf.Functions[0].Declaration.ReturnTypes, 1)
}
