// Package diag defines the single shared diagnostic taxonomy every
// pipeline stage appends to: a positioned, coded message with optional
// rustc-style source-snippet rendering.
package diag

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/aaalang/aaac/pkg/token"
	"github.com/aaalang/aaac/pkg/ui"
)

// Severity distinguishes a hard failure from an advisory note.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Code is a stable identifier for one kind of diagnostic, one of the
// identifiers listed in spec.md §7.
type Code string

const (
	// Tokenizer
	CodeInvalidCharacter  Code = "InvalidCharacter"
	CodeUnterminatedString Code = "UnterminatedString"
	CodeInvalidEscape     Code = "InvalidEscape"

	// Parser
	CodeUnexpectedToken       Code = "UnexpectedToken"
	CodeUnexpectedEOF         Code = "UnexpectedEOF"
	CodeUnhandledTopLevelToken Code = "UnhandledTopLevelToken"
	CodeFileReadError         Code = "FileReadError"

	// Cross-referencer
	CodeCollidingIdentifier          Code = "CollidingIdentifier"
	CodeCollidingEnumVariant         Code = "CollidingEnumVariant"
	CodeImportedItemNotFound         Code = "ImportedItemNotFound"
	CodeIndirectImportException     Code = "IndirectImportException"
	CodeCircularDependencyError     Code = "CircularDependencyError"
	CodeUnknownIdentifier            Code = "UnknownIdentifier"
	CodeInvalidType                  Code = "InvalidType"
	CodeInvalidEnumType              Code = "InvalidEnumType"
	CodeInvalidEnumVariant           Code = "InvalidEnumVariant"
	CodeInvalidArgument              Code = "InvalidArgument"
	CodeInvalidReturnType            Code = "InvalidReturnType"
	CodeUnexpectedTypeParameterCount Code = "UnexpectedTypeParameterCount"
	CodeUnboundReturnPlaceholder     Code = "UnboundReturnPlaceholder"

	// Type checker
	CodeFunctionTypeError            Code = "FunctionTypeError"
	CodeStackTypesError              Code = "StackTypesError"
	CodeConditionTypeError           Code = "ConditionTypeError"
	CodeBranchTypeError              Code = "BranchTypeError"
	CodeLoopTypeError                Code = "LoopTypeError"
	CodeInvalidMainSignuture         Code = "InvalidMainSignuture"
	CodeInvalidMemberFunctionSignature Code = "InvalidMemberFunctionSignature"
	CodeUnknownField                 Code = "UnknownField"
	CodeStructUpdateStackError       Code = "StructUpdateStackError"
	CodeStructUpdateTypeError        Code = "StructUpdateTypeError"
)

// Diagnostic is one positioned message. Secondary carries additional
// positions relevant to the same diagnostic (e.g. both declaration sites
// of a CollidingIdentifier), rendered as extra snippets.
type Diagnostic struct {
	Severity   Severity
	Code       Code
	Pos        token.Position
	Message    string
	Secondary  []SecondaryPos
	Annotation string
}

// SecondaryPos labels an additional position related to a Diagnostic.
type SecondaryPos struct {
	Pos   token.Position
	Label string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Error implements the error interface so a Diagnostic can be returned
// or wrapped wherever Go code expects one.
func (d Diagnostic) Error() string { return d.String() }

// List accumulates diagnostics across a pipeline stage. The zero value
// is ready to use.
type List []Diagnostic

// Add appends one diagnostic.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// Errorf appends an Error-severity diagnostic built from a format string.
func (l *List) Errorf(code Code, pos token.Position, format string, args ...any) {
	l.Add(Diagnostic{Severity: Error, Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostic in the list is Error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the Error-severity diagnostics.
func (l List) Errors() List {
	out := make(List, 0, len(l))
	for _, d := range l {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// sourceCache caches file contents for snippet rendering, bounded to avoid
// unbounded growth when rendering diagnostics for large programs. When
// full it evicts the earliest-inserted file; lookups do not refresh an entry.
var (
	sourceCacheMu    sync.RWMutex
	sourceCache      = make(map[string][]string)
	sourceCacheOrder []string
	sourceCacheLimit = 100
)

func sourceLines(filename string) ([]string, error) {
	sourceCacheMu.RLock()
	lines, ok := sourceCache[filename]
	sourceCacheMu.RUnlock()
	if ok {
		return lines, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	normalized := strings.ReplaceAll(string(content), "\r\n", "\n")
	lines = strings.Split(normalized, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	sourceCacheMu.Lock()
	addToSourceCache(filename, lines)
	sourceCacheMu.Unlock()

	return lines, nil
}

func addToSourceCache(filename string, lines []string) {
	if _, ok := sourceCache[filename]; !ok {
		if len(sourceCacheOrder) >= sourceCacheLimit {
			oldest := sourceCacheOrder[0]
			sourceCacheOrder = sourceCacheOrder[1:]
			delete(sourceCache, oldest)
		}
		sourceCacheOrder = append(sourceCacheOrder, filename)
	}
	sourceCache[filename] = lines
}

// Render produces a rustc-style block: position header, one line of
// source context around Pos, a caret underline, and any secondary spans.
func (d Diagnostic) Render() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s:%d:%d: %s: %s\n", d.Pos.File, d.Pos.Line, d.Pos.Column, d.Severity, d.Message)

	renderSnippet(&buf, d.Pos, "")
	for _, sec := range d.Secondary {
		renderSnippet(&buf, sec.Pos, sec.Label)
	}

	if d.Annotation != "" {
		fmt.Fprintf(&buf, "  = %s\n", d.Annotation)
	}

	return buf.String()
}

func renderSnippet(buf *strings.Builder, pos token.Position, label string) {
	lines, err := sourceLines(pos.File)
	if err != nil || pos.Line < 1 || pos.Line > len(lines) {
		return
	}

	line := lines[pos.Line-1]
	fmt.Fprintf(buf, "  %4d | %s\n", pos.Line, line)

	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	if col > utf8.RuneCountInString(line) {
		col = utf8.RuneCountInString(line)
	}
	fmt.Fprintf(buf, "       | %s^", strings.Repeat(" ", col))
	if label != "" {
		fmt.Fprintf(buf, " %s", label)
	}
	buf.WriteString("\n")
}

var (
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorError)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning)
	stylePath    = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorHighlight)
	styleCaret   = lipgloss.NewStyle().Foreground(ui.ColorError)
)

// RenderColor produces the same block as Render, but with the severity
// label, file path, and caret lipgloss-styled by severity (errors in
// ColorError, warnings in ColorWarning) for terminal output.
func (d Diagnostic) RenderColor() string {
	sevStyle := styleWarning
	if d.Severity == Error {
		sevStyle = styleError
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "%s: %s: %s\n",
		stylePath.Render(fmt.Sprintf("%s:%d:%d", d.Pos.File, d.Pos.Line, d.Pos.Column)),
		sevStyle.Render(d.Severity.String()),
		d.Message)

	renderSnippetColor(&buf, d.Pos, "")
	for _, sec := range d.Secondary {
		renderSnippetColor(&buf, sec.Pos, sec.Label)
	}

	if d.Annotation != "" {
		fmt.Fprintf(&buf, "  = %s\n", d.Annotation)
	}

	return buf.String()
}

func renderSnippetColor(buf *strings.Builder, pos token.Position, label string) {
	lines, err := sourceLines(pos.File)
	if err != nil || pos.Line < 1 || pos.Line > len(lines) {
		return
	}

	line := lines[pos.Line-1]
	fmt.Fprintf(buf, "  %4d | %s\n", pos.Line, line)

	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	if col > utf8.RuneCountInString(line) {
		col = utf8.RuneCountInString(line)
	}
	caret := styleCaret.Render(strings.Repeat(" ", col) + "^")
	fmt.Fprintf(buf, "       | %s", caret)
	if label != "" {
		fmt.Fprintf(buf, " %s", label)
	}
	buf.WriteString("\n")
}

// ClearSourceCache empties the snippet cache; used between independent
// compiler invocations in the same process (e.g. in tests).
func ClearSourceCache() {
	sourceCacheMu.Lock()
	defer sourceCacheMu.Unlock()
	sourceCache = make(map[string][]string)
	sourceCacheOrder = nil
}
