package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBuiltins = `
builtin struct int
builtin struct str
builtin struct bool

builtin fn +
args a as int, b as int
return int

builtin fn .
args a as int
return never

builtin fn nop

builtin fn dup[A]
args a as A
return A, A

builtin fn drop[A]
args a as A
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runFixture(t *testing.T, source string) Result {
	t.Helper()
	dir := t.TempDir()
	entry := writeFixture(t, dir, "main.aaa", source)
	builtins := writeFixture(t, dir, "builtins.aaa", testBuiltins)
	return Run(entry, builtins, 0)
}

// Scenario 1: Hello sum.
func TestScenarioHelloSum(t *testing.T) {
	res := runFixture(t, `fn main { 2 3 + . }`)
	assert.True(t, res.OK(), "%v", res.Diags)
}

// Scenario 2: Branch mismatch.
func TestScenarioBranchMismatch(t *testing.T) {
	res := runFixture(t, `fn main { if true { 3 } else { "" } }`)
	require.False(t, res.OK())
	errs := res.Diags.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "BranchTypeError", string(errs[0].Code))
}

// Scenario 3: Name collision.
func TestScenarioNameCollision(t *testing.T) {
	dir := t.TempDir()
	entry := writeFixture(t, dir, "main.aaa", `
fn foo { nop }
fn foo { nop }

fn main { }
`)
	builtins := writeFixture(t, dir, "builtins.aaa", testBuiltins)
	res := Run(entry, builtins, 0)

	errs := res.Diags.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "CollidingIdentifier", string(errs[0].Code))
}

// Scenario 4: Indirect import.
func TestScenarioIndirectImport(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "b.aaa", `fn x { nop }`)
	writeFixture(t, dir, "a.aaa", `from "b" import x
fn useA { x }`)
	entry := writeFixture(t, dir, "c.aaa", `from "a" import x
fn main { x }`)
	builtins := writeFixture(t, dir, "builtins.aaa", testBuiltins)

	res := Run(entry, builtins, 0)
	errs := res.Diags.Errors()
	require.NotEmpty(t, errs)
	found := false
	for _, d := range errs {
		if string(d.Code) == "IndirectImportException" {
			found = true
		}
	}
	assert.True(t, found, "%v", errs)
}

// Scenario 5: Generic vec push, both the type-checking and mismatch variants.
const vecFixture = `
struct vec[T] { }

fn vec[T]:push args v as vec[T], item as T return vec[T] { v }

fn main { vec[int] dup %s vec:push drop drop }
`

func TestScenarioGenericVecPushOK(t *testing.T) {
	res := runFixture(t, sprintfVec("5"))
	assert.True(t, res.OK(), "%v", res.Diags)
}

func TestScenarioGenericVecPushMismatch(t *testing.T) {
	res := runFixture(t, sprintfVec(`"five"`))
	require.False(t, res.OK())
	errs := res.Diags.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, "StackTypesError", string(errs[0].Code))
}

func sprintfVec(item string) string {
	return fmt.Sprintf(vecFixture, item)
}

// Scenario 6: Match exhaustiveness shape.
func TestScenarioMatchExhaustiveShape(t *testing.T) {
	res := runFixture(t, `
enum E { A, B as int }

fn f args e as E return int {
	e match {
		case E:A { 0 }
		case E:B as n { n }
	}
}

fn main { }
`)
	assert.True(t, res.OK(), "%v", res.Diags)
}

func TestScenarioMatchNonExhaustiveIsError(t *testing.T) {
	res := runFixture(t, `
enum E { A, B as int }

fn f args e as E return int {
	e match {
		case E:A { 0 }
	}
}

fn main { }
`)
	require.False(t, res.OK())
	errs := res.Diags.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, "BranchTypeError", string(errs[0].Code))
}
