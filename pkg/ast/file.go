package ast

// Program is the result of parsing an entire module: every source file
// reachable from the entrypoint, keyed by its resolved path, plus the
// stdlib's builtins file.
type Program struct {
	Files        map[string]*SourceFile
	Entrypoint   string
	BuiltinsPath string
	order        []string // Add call order: entrypoint/builtins first, then imports as enqueued
}

// NewProgram creates an empty Program rooted at entrypoint.
func NewProgram(entrypoint, builtinsPath string) *Program {
	return &Program{
		Files:        make(map[string]*SourceFile),
		Entrypoint:   entrypoint,
		BuiltinsPath: builtinsPath,
	}
}

// Add registers a parsed file under its own path.
func (p *Program) Add(f *SourceFile) {
	if _, exists := p.Files[f.Path]; !exists {
		p.order = append(p.order, f.Path)
	}
	p.Files[f.Path] = f
}

// Get returns the parsed file at path, if one was added.
func (p *Program) Get(path string) (*SourceFile, bool) {
	f, ok := p.Files[path]
	return f, ok
}

// Builtins returns the parsed builtins file.
func (p *Program) Builtins() (*SourceFile, bool) {
	return p.Get(p.BuiltinsPath)
}

// Paths returns every file path in the order it was Added: the entry
// point and builtins file first (the driver's seed order), then every
// transitively imported file in the order its import was first seen.
func (p *Program) Paths() []string {
	return p.order
}
