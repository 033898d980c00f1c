package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/parser"
	"github.com/aaalang/aaac/pkg/tokenizer"
	"github.com/aaalang/aaac/pkg/xref"
)

const builtins = `
builtin struct int
builtin struct str
builtin struct bool

builtin fn +
args a as int, b as int
return int

builtin fn .
args a as int
return never
`

func parseFixture(t *testing.T, path, code string) *ast.SourceFile {
	t.Helper()
	tokens, err := tokenizer.Run(path, code)
	require.NoError(t, err)
	sf, errs := parser.ParseFile(path, tokens, 0)
	require.Empty(t, errs, "%v", errs)
	require.NotNil(t, sf)
	return sf
}

func runTypecheck(t *testing.T, entrySource string) Result {
	t.Helper()
	program := ast.NewProgram("main.aaa", "builtins.aaa")
	program.Add(parseFixture(t, "main.aaa", entrySource))
	program.Add(parseFixture(t, "builtins.aaa", builtins))

	xr := xref.Run(program)
	require.Empty(t, xr.Diags, "%v", xr.Diags)
	return Run(xr.Table, program.BuiltinsPath)
}

func TestTypecheckHelloSum(t *testing.T) {
	res := runTypecheck(t, `fn main { 2 3 + . }`)
	assert.Empty(t, res.Diags, "%v", res.Diags)
}

func TestTypecheckBranchMismatchReported(t *testing.T) {
	res := runTypecheck(t, `
fn f args c as bool {
	if c {
		1
	} else {
		"x"
	}
}
`)
	require.NotEmpty(t, res.Diags)
	assert.Equal(t, "BranchTypeError", string(res.Diags[0].Code))
}

func TestTypecheckBranchMatchingArmsOK(t *testing.T) {
	res := runTypecheck(t, `
fn f args c as bool return int {
	if c {
		1
	} else {
		2
	}
}
`)
	assert.Empty(t, res.Diags, "%v", res.Diags)
}

func TestTypecheckGenericIdentityUnifies(t *testing.T) {
	res := runTypecheck(t, `
fn identity[T] args x as T return T { x }

fn main { 1 identity . }
`)
	assert.Empty(t, res.Diags, "%v", res.Diags)
}

func TestTypecheckGenericIdentityMismatchReported(t *testing.T) {
	res := runTypecheck(t, `
fn identity[T] args x as T return T { x }

fn main { "oops" identity 1 + . }
`)
	require.NotEmpty(t, res.Diags)
	assert.Equal(t, "StackTypesError", string(res.Diags[0].Code))
}

func TestTypecheckMatchExhaustivenessRequired(t *testing.T) {
	res := runTypecheck(t, `
enum Color { Red, Green, Blue }

fn f args c as Color return int {
	c match {
		case Color:Red { 1 }
		case Color:Green { 1 }
	}
}
`)
	require.NotEmpty(t, res.Diags)
	assert.Equal(t, "BranchTypeError", string(res.Diags[0].Code))
}

func TestTypecheckMatchExhaustiveOK(t *testing.T) {
	res := runTypecheck(t, `
enum Color { Red, Green, Blue }

fn f args c as Color return int {
	c match {
		case Color:Red { 1 }
		case Color:Green { 2 }
		case Color:Blue { 3 }
	}
}
`)
	assert.Empty(t, res.Diags, "%v", res.Diags)
}

func TestTypecheckMainInvalidSignatureReported(t *testing.T) {
	res := runTypecheck(t, `fn main return str { "oops" }`)
	require.NotEmpty(t, res.Diags)
	assert.Equal(t, "InvalidMainSignuture", string(res.Diags[0].Code))
}

func TestTypecheckMemberFunctionOwnerMustBeSameFileImport(t *testing.T) {
	program := ast.NewProgram("b.aaa", "builtins.aaa")
	program.Add(parseFixture(t, "a.aaa", `struct Point { x as int }`))
	program.Add(parseFixture(t, "b.aaa", `
from "a.aaa" import Point

fn Point:make args p as Point return Point { p }

fn main { }
`))
	program.Add(parseFixture(t, "builtins.aaa", builtins))

	xr := xref.Run(program)
	require.Empty(t, xr.Diags, "%v", xr.Diags)

	res := Run(xr.Table, program.BuiltinsPath)
	require.NotEmpty(t, res.Diags)
	assert.Equal(t, "InvalidMemberFunctionSignature", string(res.Diags[0].Code))
}

func TestTypecheckStackUnderflowReported(t *testing.T) {
	res := runTypecheck(t, `fn main { 1 + . }`)
	require.NotEmpty(t, res.Diags)
	assert.Equal(t, "StackTypesError", string(res.Diags[0].Code))
}
