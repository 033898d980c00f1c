// Package build drives the parser over a whole program: starting from the
// entry point and the builtins file, it tokenizes and parses every
// transitively imported file exactly once and assembles the results into
// an ast.Program.
package build

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/parser"
	"github.com/aaalang/aaac/pkg/token"
	"github.com/aaalang/aaac/pkg/tokenizer"
)

// Driver parses a whole program into a map of path to SourceFile. A Driver
// is not safe for concurrent use; spec'd as single-threaded, stage by
// stage, with no parallelism between files.
type Driver struct {
	mode parser.Mode
}

// New creates a Driver. mode is forwarded to the parser for every file
// (e.g. parser.Trace for debugging).
func New(mode parser.Mode) *Driver {
	return &Driver{mode: mode}
}

// Load parses entrypoint and builtinsPath, and transitively every file
// they import, returning the assembled program and every diagnostic
// collected along the way. A file that cannot be tokenized or parsed
// contributes its errors but is simply absent from the resulting
// program; a file that cannot be opened contributes a FileReadError.
func (d *Driver) Load(entrypoint, builtinsPath string) (*ast.Program, diag.List) {
	var diags diag.List
	program := ast.NewProgram(entrypoint, builtinsPath)

	queued := map[string]bool{entrypoint: true, builtinsPath: true}
	queue := []string{entrypoint, builtinsPath}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		sf, ok := d.loadFile(path, &diags)
		if !ok {
			continue
		}
		program.Add(sf)

		dir := filepath.Dir(path)
		for _, imp := range sf.Imports {
			depPath := ResolveImportPath(imp.Source, dir)
			if queued[depPath] {
				continue
			}
			queued[depPath] = true
			queue = append(queue, depPath)
		}
	}

	return program, diags
}

// loadFile reads, tokenizes, and parses one file, appending any errors to
// diags. ok is false when the file contributes nothing to the program
// (unreadable, or failed to tokenize/parse).
func (d *Driver) loadFile(path string, diags *diag.List) (sf *ast.SourceFile, ok bool) {
	src, err := os.ReadFile(path)
	if err != nil {
		diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeFileReadError,
			Pos:      token.Position{File: path, Line: 1, Column: 1},
			Message:  "cannot read file: " + err.Error(),
		})
		return nil, false
	}

	tokens, terr := tokenizer.Run(path, string(src))
	if terr != nil {
		var tokErr *tokenizer.Error
		pos := token.Position{File: path, Line: 1, Column: 1}
		msg := terr.Error()
		code := diag.CodeInvalidCharacter
		if errors.As(terr, &tokErr) {
			pos = tokErr.Pos
			msg = tokErr.Message
			code = tokErr.Code
		}
		diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     code,
			Pos:      pos,
			Message:  msg,
		})
		return nil, false
	}

	file, perrs := parser.ParseFile(path, tokens, d.mode)
	for _, pe := range perrs {
		diags.Add(pe)
	}
	if file == nil {
		return nil, false
	}
	return file, true
}

// ResolveImportPath implements spec's module resolution rule: a source
// string ending in ".aaa" is a literal path relative to the current
// working directory; anything else is a dotted module path
// ("x.y.z" -> "<dir>/x/y/z.aaa") resolved relative to the importing
// file's own directory.
func ResolveImportPath(source, importingFileDir string) string {
	if strings.HasSuffix(source, ".aaa") {
		return source
	}
	rel := filepath.Join(strings.Split(source, ".")...) + ".aaa"
	return filepath.Join(importingFileDir, rel)
}
