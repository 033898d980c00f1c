package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaalang/aaac/pkg/ast"
)

func sourceFile(path string, imports ...string) *ast.SourceFile {
	sf := &ast.SourceFile{Path: path}
	for _, src := range imports {
		sf.Imports = append(sf.Imports, &ast.Import{Source: src})
	}
	return sf
}

func identityResolve(_ *ast.SourceFile, imp *ast.Import) string { return imp.Source }

func TestBuildDependencyGraphAndTopologicalSort(t *testing.T) {
	program := ast.NewProgram("a", "builtins")
	program.Add(sourceFile("a", "b", "c"))
	program.Add(sourceFile("b", "c"))
	program.Add(sourceFile("c"))
	program.Add(sourceFile("builtins"))

	graph := BuildDependencyGraph(program, identityResolve)
	require.Contains(t, graph.Nodes, "a")
	assert.ElementsMatch(t, []string{"b", "c"}, graph.Nodes["a"].Dependencies)
	assert.Empty(t, graph.DetectCycles())

	order := graph.TopologicalSort()
	indexOf := func(s string) int {
		for i, v := range order {
			if v == s {
				return i
			}
		}
		return -1
	}
	assert.Less(t, indexOf("c"), indexOf("b"))
	assert.Less(t, indexOf("b"), indexOf("a"))
}

func TestDetectCyclesReportsFullCyclePath(t *testing.T) {
	program := ast.NewProgram("a", "a")
	program.Add(sourceFile("a", "b"))
	program.Add(sourceFile("b", "c"))
	program.Add(sourceFile("c", "a"))

	graph := BuildDependencyGraph(program, identityResolve)
	cycles := graph.DetectCycles()
	require.Len(t, cycles, 1)
	cycle := cycles[0]
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
	assert.Contains(t, cycle, "a")
	assert.Contains(t, cycle, "b")
	assert.Contains(t, cycle, "c")
}

func TestDetectCyclesEmptyForAcyclicGraph(t *testing.T) {
	program := ast.NewProgram("a", "a")
	program.Add(sourceFile("a", "b"))
	program.Add(sourceFile("b"))

	graph := BuildDependencyGraph(program, identityResolve)
	assert.Empty(t, graph.DetectCycles())
}
