// Package sourcemap builds a source map from aaa source positions to the
// (placeholder) coordinates of whatever the out-of-scope code generator
// emits. It is handed to a pkg/pipeline.CodeGenerator via EmitInput,
// fed by resolved aaa positions rather than a Go printer's FileSet.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/go-sourcemap/sourcemap"

	"github.com/aaalang/aaac/pkg/token"
)

// Generator collects position mappings from aaa source to generated output.
type Generator struct {
	sourceFile string
	genFile    string
	mappings   []Mapping
}

// Mapping is a single position mapping from aaa source to generated code.
type Mapping struct {
	SourceLine   int
	SourceColumn int

	GenLine   int
	GenColumn int

	Name string // optional: the identifier at this position
}

// NewGenerator creates a Generator mapping sourceFile to genFile.
func NewGenerator(sourceFile, genFile string) *Generator {
	return &Generator{sourceFile: sourceFile, genFile: genFile}
}

// AddMapping records a position mapping from source to generated code.
func (g *Generator) AddMapping(src, gen token.Position) {
	g.mappings = append(g.mappings, Mapping{
		SourceLine:   src.Line,
		SourceColumn: src.Column,
		GenLine:      gen.Line,
		GenColumn:    gen.Column,
	})
}

// AddMappingWithName records a position mapping with an identifier name.
func (g *Generator) AddMappingWithName(src, gen token.Position, name string) {
	g.mappings = append(g.mappings, Mapping{
		SourceLine:   src.Line,
		SourceColumn: src.Column,
		GenLine:      gen.Line,
		GenColumn:    gen.Column,
		Name:         name,
	})
}

// Generate produces a source map in Source Map v3 JSON format.
//
// TODO: emit VLQ-encoded mappings instead of leaving "mappings" empty;
// blocked on picking a concrete generated-output coordinate space, which
// depends on the out-of-scope code generator this ships to.
func (g *Generator) Generate() ([]byte, error) {
	sm := struct {
		Version    int      `json:"version"`
		File       string   `json:"file"`
		SourceRoot string   `json:"sourceRoot"`
		Sources    []string `json:"sources"`
		Names      []string `json:"names"`
		Mappings   string   `json:"mappings"`
	}{
		Version: 3,
		File:    g.genFile,
		Sources: []string{g.sourceFile},
		Names:   g.collectNames(),
	}

	data, err := json.MarshalIndent(sm, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal source map: %w", err)
	}
	return data, nil
}

// GenerateInline returns a base64-encoded inline source map comment.
func (g *Generator) GenerateInline() (string, error) {
	data, err := g.Generate()
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("//# sourceMappingURL=data:application/json;base64,%s", encoded), nil
}

func (g *Generator) collectNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range g.mappings {
		if m.Name != "" && !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	return names
}

// Consumer looks up original aaa positions from a parsed source map.
type Consumer struct {
	sm *sourcemap.Consumer
}

// NewConsumer parses raw source map data into a Consumer.
func NewConsumer(data []byte) (*Consumer, error) {
	sm, err := sourcemap.Parse("", data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source map: %w", err)
	}
	return &Consumer{sm: sm}, nil
}

// Source looks up the original aaa position for a generated position.
func (c *Consumer) Source(line, column int) (*token.Position, error) {
	file, _, srcLine, srcCol, ok := c.sm.Source(line-1, column-1)
	if !ok {
		return nil, fmt.Errorf("no mapping found for position %d:%d", line, column)
	}
	return &token.Position{File: file, Line: srcLine + 1, Column: srcCol + 1}, nil
}
