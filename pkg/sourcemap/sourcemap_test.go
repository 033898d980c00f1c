package sourcemap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aaalang/aaac/pkg/token"
)

func TestNewGenerator(t *testing.T) {
	gen := NewGenerator("main.aaa", "main.out")

	if gen.sourceFile != "main.aaa" {
		t.Errorf("Expected sourceFile 'main.aaa', got %q", gen.sourceFile)
	}
	if gen.genFile != "main.out" {
		t.Errorf("Expected genFile 'main.out', got %q", gen.genFile)
	}
	if len(gen.mappings) != 0 {
		t.Errorf("Expected empty mappings, got %d", len(gen.mappings))
	}
}

func TestAddMapping(t *testing.T) {
	gen := NewGenerator("test.aaa", "test.out")

	src := token.Position{Line: 10, Column: 5}
	dst := token.Position{Line: 15, Column: 8}
	gen.AddMapping(src, dst)

	if len(gen.mappings) != 1 {
		t.Fatalf("Expected 1 mapping, got %d", len(gen.mappings))
	}
	m := gen.mappings[0]
	if m.SourceLine != 10 || m.SourceColumn != 5 {
		t.Errorf("Expected source 10:5, got %d:%d", m.SourceLine, m.SourceColumn)
	}
	if m.GenLine != 15 || m.GenColumn != 8 {
		t.Errorf("Expected gen 15:8, got %d:%d", m.GenLine, m.GenColumn)
	}
	if m.Name != "" {
		t.Errorf("Expected no name, got %q", m.Name)
	}
}

func TestAddMappingWithName(t *testing.T) {
	gen := NewGenerator("test.aaa", "test.out")

	gen.AddMappingWithName(token.Position{Line: 5, Column: 10}, token.Position{Line: 7, Column: 12}, "push")

	if len(gen.mappings) != 1 {
		t.Fatalf("Expected 1 mapping, got %d", len(gen.mappings))
	}
	if gen.mappings[0].Name != "push" {
		t.Errorf("Expected name 'push', got %q", gen.mappings[0].Name)
	}
}

func TestCollectNames(t *testing.T) {
	gen := NewGenerator("test.aaa", "test.out")

	gen.AddMappingWithName(token.Position{Line: 1, Column: 1}, token.Position{Line: 1, Column: 1}, "push")
	gen.AddMappingWithName(token.Position{Line: 2, Column: 1}, token.Position{Line: 2, Column: 1}, "pop")
	gen.AddMappingWithName(token.Position{Line: 3, Column: 1}, token.Position{Line: 3, Column: 1}, "push") // duplicate
	gen.AddMapping(token.Position{Line: 4, Column: 1}, token.Position{Line: 4, Column: 1})                 // no name

	names := gen.collectNames()
	if len(names) != 2 {
		t.Errorf("Expected 2 unique names, got %d: %v", len(names), names)
	}
}

func TestGenerateSourceMap(t *testing.T) {
	gen := NewGenerator("main.aaa", "main.out")
	gen.AddMapping(token.Position{Line: 1, Column: 1}, token.Position{Line: 1, Column: 1})
	gen.AddMappingWithName(token.Position{Line: 5, Column: 10}, token.Position{Line: 8, Column: 5}, "push")

	data, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var sm map[string]any
	if err := json.Unmarshal(data, &sm); err != nil {
		t.Fatalf("Failed to parse generated source map JSON: %v", err)
	}
	if version, ok := sm["version"].(float64); !ok || version != 3 {
		t.Errorf("Expected version 3, got %v", sm["version"])
	}
	if file, ok := sm["file"].(string); !ok || file != "main.out" {
		t.Errorf("Expected file 'main.out', got %v", sm["file"])
	}
	sources, ok := sm["sources"].([]any)
	if !ok || len(sources) != 1 || sources[0].(string) != "main.aaa" {
		t.Errorf("Expected 1 source 'main.aaa', got %v", sm["sources"])
	}
	names, ok := sm["names"].([]any)
	if !ok || len(names) != 1 || names[0].(string) != "push" {
		t.Errorf("Expected 1 name 'push', got %v", sm["names"])
	}
}

func TestGenerateInline(t *testing.T) {
	gen := NewGenerator("test.aaa", "test.out")
	gen.AddMapping(token.Position{Line: 1, Column: 1}, token.Position{Line: 1, Column: 1})

	inline, err := gen.GenerateInline()
	if err != nil {
		t.Fatalf("GenerateInline() error = %v", err)
	}
	if !strings.HasPrefix(inline, "//# sourceMappingURL=data:application/json;base64,") {
		t.Errorf("Expected inline source map comment, got %q", inline[:50])
	}
}

func TestGenerateEmpty(t *testing.T) {
	gen := NewGenerator("empty.aaa", "empty.out")

	data, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	var sm map[string]any
	if err := json.Unmarshal(data, &sm); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	names, ok := sm["names"].([]any)
	if !ok || len(names) != 0 {
		t.Errorf("Expected empty names array, got %v", sm["names"])
	}
}

func TestConsumerInvalidJSON(t *testing.T) {
	_, err := NewConsumer([]byte(`{invalid json`))
	if err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
}
