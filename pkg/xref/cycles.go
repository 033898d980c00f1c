package xref

import (
	"path/filepath"
	"strings"

	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/build"
	"github.com/aaalang/aaac/pkg/token"
)

// buildDependencyGraph builds the whole program's file-level import
// graph, reusing pkg/build's cycle-detection machinery.
func (r *resolver) buildDependencyGraph() *build.DependencyGraph {
	return build.BuildDependencyGraph(r.program, func(sf *ast.SourceFile, imp *ast.Import) string {
		return resolveImportSource(imp, filepath.Dir(sf.Path))
	})
}

func (r *resolver) cycleStartPos(cycle []string) token.Position {
	if len(cycle) == 0 {
		return token.Position{}
	}
	return token.Position{File: cycle[0], Line: 1, Column: 1}
}

func joinCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}
