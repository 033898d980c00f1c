// Package xref is the cross-referencer: it turns a parsed ast.Program
// into a resolved symbol table (pkg/types.Table) plus resolved function
// bodies, in three phases — harvest, resolve declarations, resolve
// bodies — each tolerant of errors from the others.
package xref

import (
	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/build"
	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/types"
)

// Result is the cross-referencer's output: the resolved symbol table and
// every diagnostic accumulated across all three phases.
type Result struct {
	Table *types.Table
	Diags diag.List
}

type resolver struct {
	program *ast.Program
	table   *types.Table
	diags   diag.List

	structAST map[*types.Type]*ast.Struct
	enumAST   map[*types.Type]*ast.Enum
	fnAST     map[*types.FunctionIdentifiable]*ast.Function

	// removed holds keys dropped by a Phase B error, so Phase C skips them.
	removed map[types.Key]bool
}

// Run cross-references program: harvest, then resolve declarations, then
// resolve function bodies.
func Run(program *ast.Program) Result {
	r := &resolver{
		program:   program,
		table:     types.NewTable(),
		structAST: make(map[*types.Type]*ast.Struct),
		enumAST:   make(map[*types.Type]*ast.Enum),
		fnAST:     make(map[*types.FunctionIdentifiable]*ast.Function),
		removed:   make(map[types.Key]bool),
	}

	r.harvest()
	r.resolveImports()
	r.resolveStructFields()
	r.resolveEnumVariants()
	r.resolveFunctionSignatures()
	r.resolveBodies()

	return Result{Table: r.table, Diags: r.diags}
}

// resolveImportSource resolves an Import's source string to the path of the
// file it names: a source ending in ".aaa" is used as written (relative to
// the working directory), and a dotted module path is resolved against
// fileDir.
func resolveImportSource(imp *ast.Import, fileDir string) string {
	return build.ResolveImportPath(imp.Source, fileDir)
}

// lookupAugmented looks up name declared directly in file, falling back
// to the builtins file when file itself isn't the builtins file. An
// Import is followed exactly one hop to its resolved Target.
func (r *resolver) lookupAugmented(file, name string) (types.Identifiable, bool) {
	if id, ok := r.table.Lookup(file, name); ok {
		if imp, ok := id.(*types.ImportIdentifiable); ok {
			if imp.Target == nil {
				return nil, false
			}
			return imp.Target, true
		}
		return id, true
	}
	if file != r.program.BuiltinsPath {
		if id, ok := r.table.Lookup(r.program.BuiltinsPath, name); ok {
			if imp, ok := id.(*types.ImportIdentifiable); ok {
				if imp.Target == nil {
					return nil, false
				}
				return imp.Target, true
			}
			return id, true
		}
	}
	return nil, false
}
