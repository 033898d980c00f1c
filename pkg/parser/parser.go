// Package parser implements the hand-written recursive-descent parser
// for a single aaa source file, and the interface convenience functions
// around it.
package parser

import (
	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/token"
)

// Mode controls parser behavior.
type Mode uint

const (
	// Trace makes the parser write one line per production entered to
	// the configured trace sink; used only for debugging the parser
	// itself, never by the driver in normal operation.
	Trace Mode = 1 << iota
)

// Parser parses one token stream into a SourceFile. A Parser instance is
// not safe for concurrent use; the driver constructs one per file.
type Parser interface {
	ParseFile(path string, tokens []token.Token) (*ast.SourceFile, diag.List)
}

// New creates a parser with the given mode.
func New(mode Mode) Parser {
	return &recursiveDescent{mode: mode}
}

// ParseFile is a convenience function equivalent to New(mode).ParseFile.
func ParseFile(path string, tokens []token.Token, mode Mode) (*ast.SourceFile, diag.List) {
	return New(mode).ParseFile(path, tokens)
}
