package build

import (
	"sort"

	"github.com/aaalang/aaac/pkg/ast"
)

// GraphNode is one file in the import dependency graph.
type GraphNode struct {
	Path         string
	Dependencies []string // files this file imports
	Dependents   []string // files that import this file
}

// DependencyGraph is the whole program's file-level import graph, built by
// BuildDependencyGraph from a loaded program's resolved Import edges.
type DependencyGraph struct {
	Nodes map[string]*GraphNode
}

// BuildDependencyGraph walks every file in program and records its
// resolved import edges. resolve turns one Import into an absolute path,
// typically ResolveImportPath bound to that file's directory.
func BuildDependencyGraph(program *ast.Program, resolve func(sf *ast.SourceFile, imp *ast.Import) string) *DependencyGraph {
	graph := &DependencyGraph{Nodes: make(map[string]*GraphNode)}

	node := func(path string) *GraphNode {
		n, ok := graph.Nodes[path]
		if !ok {
			n = &GraphNode{Path: path}
			graph.Nodes[path] = n
		}
		return n
	}

	for _, path := range program.Paths() {
		sf, _ := program.Get(path)
		self := node(path)
		for _, imp := range sf.Imports {
			depPath := resolve(sf, imp)
			self.Dependencies = append(self.Dependencies, depPath)
			node(depPath).Dependents = append(node(depPath).Dependents, path)
		}
	}

	return graph
}

// sortedPaths returns the graph's node paths in a fixed, deterministic
// order, so that cycle reports and topological order don't depend on Go's
// randomized map iteration.
func (g *DependencyGraph) sortedPaths() []string {
	paths := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// DetectCycles returns every import cycle in the graph, each as the
// ordered list of file paths that form it (the first and last entries are
// the same path, closing the loop). A graph with no cycles returns nil.
func (g *DependencyGraph) DetectCycles() [][]string {
	var cycles [][]string

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var visit func(node string)
	visit = func(n string) {
		visited[n] = true
		onStack[n] = true
		path = append(path, n)

		if gn, ok := g.Nodes[n]; ok {
			for _, dep := range gn.Dependencies {
				if !visited[dep] {
					visit(dep)
					continue
				}
				if onStack[dep] {
					start := 0
					for i, p := range path {
						if p == dep {
							start = i
							break
						}
					}
					cycle := append([]string{}, path[start:]...)
					cycle = append(cycle, dep)
					cycles = append(cycles, cycle)
				}
			}
		}

		path = path[:len(path)-1]
		onStack[n] = false
	}

	for _, n := range g.sortedPaths() {
		if !visited[n] {
			visit(n)
		}
	}

	return cycles
}

// TopologicalSort returns the graph's files in dependency order (a file's
// imports precede it). A cyclic graph yields a best-effort order with the
// cyclic remainder appended rather than requiring a total order to exist.
func (g *DependencyGraph) TopologicalSort() []string {
	inDegree := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, ok := inDegree[n.Path]; !ok {
			inDegree[n.Path] = 0
		}
	}
	for _, n := range g.Nodes {
		inDegree[n.Path] += len(n.Dependencies)
	}

	var queue []string
	for _, p := range g.sortedPaths() {
		if inDegree[p] == 0 {
			queue = append(queue, p)
		}
	}

	result := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		result = append(result, cur)

		if n, ok := g.Nodes[cur]; ok {
			dependents := append([]string{}, n.Dependents...)
			sort.Strings(dependents)
			for _, dependent := range dependents {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					queue = append(queue, dependent)
				}
			}
		}
	}

	if len(result) != len(g.Nodes) {
		done := make(map[string]bool, len(result))
		for _, p := range result {
			done[p] = true
		}
		for _, p := range g.sortedPaths() {
			if !done[p] {
				result = append(result, p)
			}
		}
	}

	return result
}
