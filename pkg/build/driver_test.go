package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaalang/aaac/pkg/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveImportPath(t *testing.T) {
	assert.Equal(t, "lib/helpers.aaa", ResolveImportPath("lib/helpers.aaa", "unused"))
	assert.Equal(t, filepath.Join("/pkg", "x", "y", "z.aaa"), ResolveImportPath("x.y.z", "/pkg"))
}

func TestDriverLoadResolvesTransitiveImports(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.aaa", `from "helper" import greet
fn main { "world" greet . }`)
	writeFile(t, dir, "helper.aaa", `fn greet args name as str return str { name }`)
	builtins := writeFile(t, dir, "builtins.aaa", `builtin struct str
builtin fn .
args a as str, b as str
return str
`)

	d := New(0)
	program, diags := d.Load(entry, builtins)
	require.Empty(t, diags, "%v", diags)

	_, ok := program.Get(entry)
	assert.True(t, ok)
	_, ok = program.Get(filepath.Join(dir, "helper.aaa"))
	assert.True(t, ok)
	_, ok = program.Builtins()
	assert.True(t, ok)
}

func TestDriverLoadRecordsFileReadError(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "missing.aaa")
	builtins := writeFile(t, dir, "builtins.aaa", "")

	d := New(0)
	program, diags := d.Load(entry, builtins)
	require.True(t, diags.HasErrors())
	_, ok := program.Get(entry)
	assert.False(t, ok)
}

func TestDriverLoadRecordsParseErrorAndContinues(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.aaa", `fn main { `)
	builtins := writeFile(t, dir, "builtins.aaa", "")

	d := New(parser.Mode(0))
	program, diags := d.Load(entry, builtins)
	require.True(t, diags.HasErrors())
	_, ok := program.Get(entry)
	assert.False(t, ok)
}
