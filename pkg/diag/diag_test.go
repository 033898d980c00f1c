package diag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaalang/aaac/pkg/token"
)

func TestListHasErrors(t *testing.T) {
	var l List
	assert.False(t, l.HasErrors())

	l.Add(Diagnostic{Severity: Warning, Code: CodeInvalidType, Message: "hmm"})
	assert.False(t, l.HasErrors())

	l.Errorf(CodeUnknownIdentifier, token.Position{File: "a.aaa", Line: 1, Column: 1}, "unknown %q", "foo")
	assert.True(t, l.HasErrors())
	assert.Len(t, l.Errors(), 1)
}

func TestDiagnosticRender(t *testing.T) {
	ClearSourceCache()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.aaa")
	require.NoError(t, os.WriteFile(path, []byte("fn main {\n  1 2 + drop\n}\n"), 0o644))

	d := Diagnostic{
		Severity: Error,
		Code:     CodeUnknownIdentifier,
		Pos:      token.Position{File: path, Line: 2, Column: 3},
		Message:  "unknown identifier \"x\"",
	}

	out := d.Render()
	assert.Contains(t, out, "unknown identifier")
	assert.Contains(t, out, "1 2 + drop")
	assert.Contains(t, out, "^")
}

func TestDiagnosticRenderColorContainsMessage(t *testing.T) {
	ClearSourceCache()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.aaa")
	require.NoError(t, os.WriteFile(path, []byte("fn main {\n  1 2 + drop\n}\n"), 0o644))

	d := Diagnostic{
		Severity: Warning,
		Code:     CodeInvalidType,
		Pos:      token.Position{File: path, Line: 2, Column: 3},
		Message:  "suspicious stack shape",
	}

	out := d.RenderColor()
	assert.Contains(t, out, "suspicious stack shape")
	assert.Contains(t, out, "1 2 + drop")
}

func TestDiagnosticRenderMissingFileIsSilentSnippet(t *testing.T) {
	ClearSourceCache()
	d := Diagnostic{
		Severity: Error,
		Code:     CodeFileReadError,
		Pos:      token.Position{File: "/does/not/exist.aaa", Line: 1, Column: 1},
		Message:  "cannot read file",
	}
	out := d.Render()
	assert.Contains(t, out, "cannot read file")
}
