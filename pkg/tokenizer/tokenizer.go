// Package tokenizer turns aaa source text into a stream of positioned
// tokens. It supports both an unfiltered mode, which retains whitespace
// and comments for tools like the (external) formatter, and a filtered
// mode, which drops them for the parser.
package tokenizer

import (
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/token"
)

// Error is a positioned tokenizer failure. Tokenization halts at the
// first Error: the lexical surface is too local to usefully recover.
// Code identifies which of the tokenizer's diagnostic kinds this is, so
// callers can report it as the right diag.Code instead of collapsing
// every tokenizer failure into one.
type Error struct {
	Pos     token.Position
	Message string
	Code    diag.Code
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// fixedToken is one entry of the pre-sorted literal table: structural
// punctuation, keywords, and the symbolic operators, which tokenize as
// plain identifiers (they are resolved later as ordinary builtin function
// calls named "+", "-", "=", and so on).
type fixedToken struct {
	literal string
	kind    token.Kind
}

var fixedTokens = sortedFixedTokens([]fixedToken{
	{",", token.Comma},
	{":", token.Colon},
	{"!", token.SetField},
	{"?", token.GetField},
	{"[", token.TypeParamBeg},
	{"]", token.TypeParamEnd},
	{"{", token.Begin},
	{"}", token.End},
	{"<-", token.Assign},

	// Symbolic operators: ordinary identifiers by design (see SPEC_FULL.md
	// §4, "operator-call via plain identifiers"). They are never a
	// distinct Kind, so the parser and cross-referencer treat them
	// exactly like any other call to a builtin function.
	{"+", token.Identifier},
	{"-", token.Identifier},
	{"*", token.Identifier},
	{"/", token.Identifier},
	{"%", token.Identifier},
	{"<", token.Identifier},
	{"<=", token.Identifier},
	{">", token.Identifier},
	{">=", token.Identifier},
	{"=", token.Identifier},
	{"!=", token.Identifier},
	{".", token.Identifier},

	// Keywords
	{"fn", token.KwFn},
	{"struct", token.KwStruct},
	{"enum", token.KwEnum},
	{"if", token.KwIf},
	{"else", token.KwElse},
	{"while", token.KwWhile},
	{"foreach", token.KwForeach},
	{"match", token.KwMatch},
	{"case", token.KwCase},
	{"default", token.KwDefault},
	{"use", token.KwUse},
	{"return", token.KwReturn},
	{"args", token.KwArgs},
	{"as", token.KwAs},
	{"from", token.KwFrom},
	{"import", token.KwImport},
	{"true", token.KwTrue},
	{"false", token.KwFalse},
	{"const", token.KwConst},
	{"never", token.KwNever},
	{"builtin", token.KwBuiltin},
	{"call", token.KwCall},
})

// sortedFixedTokens orders entries longest-literal-first, so that e.g.
// "<=" is tried before "<" and "false" is tried before any shorter
// alphabetic prefix of it.
func sortedFixedTokens(in []fixedToken) []fixedToken {
	out := make([]fixedToken, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].literal) > len(out[j].literal)
	})
	return out
}

var stringEscapes = map[rune]rune{
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'/':  '/',
	'0':  0,
	'b':  '\b',
	'e':  0x1b,
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// Tokenizer scans one source file's content into tokens.
type Tokenizer struct {
	file   string
	code   []rune
	offset int
}

// New creates a Tokenizer over code, a complete file's UTF-8 text, for
// diagnostics attributed to file.
func New(file, code string) *Tokenizer {
	return &Tokenizer{file: file, code: []rune(code)}
}

// Run tokenizes the whole file and drops WHITESPACE/COMMENT, the stream
// the parser consumes.
func Run(file, code string) ([]token.Token, error) {
	all, err := RunUnfiltered(file, code)
	if err != nil {
		return nil, err
	}
	filtered := make([]token.Token, 0, len(all))
	for _, t := range all {
		if t.Kind == token.Whitespace || t.Kind == token.Comment {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

// RunUnfiltered tokenizes the whole file, retaining comments and
// whitespace for tools such as the (external) formatter.
func RunUnfiltered(file, code string) ([]token.Token, error) {
	t := New(file, code)
	var tokens []token.Token

	for t.offset < len(t.code) {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		t.offset += utf8.RuneCountInString(tok.Literal)
	}

	return tokens, nil
}

func (t *Tokenizer) next() (token.Token, error) {
	if tok, ok := t.tokenizeWhitespace(); ok {
		return tok, nil
	}
	if tok, ok := t.tokenizeComment(); ok {
		return tok, nil
	}
	if t.offset == 0 {
		if tok, ok := t.tokenizeShebang(); ok {
			return tok, nil
		}
	}
	if tok, ok := t.tokenizeFixed(); ok {
		return tok, nil
	}
	if tok, ok := t.tokenizeInteger(); ok {
		return tok, nil
	}
	if tok, ok, err := t.tokenizeString(); err != nil {
		return token.Token{}, err
	} else if ok {
		return tok, nil
	}
	if tok, ok := t.tokenizeIdentifier(); ok {
		return tok, nil
	}

	return token.Token{}, &Error{
		Pos:     t.position(t.offset),
		Message: fmt.Sprintf("unexpected character %q", string(t.rest(20))),
		Code:    diag.CodeInvalidCharacter,
	}
}

func (t *Tokenizer) rest(maxLen int) []rune {
	end := t.offset + maxLen
	if end > len(t.code) {
		end = len(t.code)
	}
	return t.code[t.offset:end]
}

// position computes (line, column) by counting newlines up to offset,
// mirroring the original tokenizer's "count newlines then find last one"
// approach, but operating on runes so columns are scalar-character based.
func (t *Tokenizer) position(offset int) token.Position {
	line := 1
	col := 1
	for i := 0; i < offset; i++ {
		if t.code[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return token.Position{File: t.file, Line: line, Column: col}
}

func (t *Tokenizer) makeToken(kind token.Kind, start, end int) token.Token {
	return token.Token{
		Kind:    kind,
		Literal: string(t.code[start:end]),
		Pos:     t.position(start),
	}
}

func (t *Tokenizer) tokenizeWhitespace() (token.Token, bool) {
	n := 0
	for t.offset+n < len(t.code) && unicode.IsSpace(t.code[t.offset+n]) {
		n++
	}
	if n == 0 {
		return token.Token{}, false
	}
	return t.makeToken(token.Whitespace, t.offset, t.offset+n), true
}

func (t *Tokenizer) tokenizeComment() (token.Token, bool) {
	if !t.hasPrefix("//") {
		return token.Token{}, false
	}
	n := 2
	for t.offset+n < len(t.code) && t.code[t.offset+n] != '\n' {
		n++
	}
	return t.makeToken(token.Comment, t.offset, t.offset+n), true
}

func (t *Tokenizer) tokenizeShebang() (token.Token, bool) {
	if !t.hasPrefix("#!") {
		return token.Token{}, false
	}
	n := 2
	for t.offset+n < len(t.code) && t.code[t.offset+n] != '\n' {
		n++
	}
	return t.makeToken(token.Shebang, t.offset, t.offset+n), true
}

func (t *Tokenizer) hasPrefix(s string) bool {
	runes := []rune(s)
	if t.offset+len(runes) > len(t.code) {
		return false
	}
	return string(t.code[t.offset:t.offset+len(runes)]) == s
}

// tokenizeFixed tries every literal in fixedTokens (longest first) and
// keeps the longest match, enforcing that an alphabetic literal ("and")
// is only a keyword when followed by whitespace or a non-alphabetic
// character (so "and_foo" tokenizes as one identifier).
func (t *Tokenizer) tokenizeFixed() (token.Token, bool) {
	var best *fixedToken
	var bestLen int

	for i := range fixedTokens {
		ft := &fixedTokens[i]
		litRunes := []rune(ft.literal)
		if t.offset+len(litRunes) > len(t.code) {
			continue
		}
		if string(t.code[t.offset:t.offset+len(litRunes)]) != ft.literal {
			continue
		}

		isAlpha := isAlphabetic(ft.literal)
		end := t.offset + len(litRunes)
		if isAlpha {
			if end < len(t.code) && !unicode.IsSpace(t.code[end]) && isAlphaNumRune(t.code[end]) {
				continue
			}
		}

		if len(litRunes) > bestLen {
			best = ft
			bestLen = len(litRunes)
		}
	}

	if best == nil {
		return token.Token{}, false
	}
	return t.makeToken(best.kind, t.offset, t.offset+bestLen), true
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}

func isAlphaNumRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (t *Tokenizer) tokenizeInteger() (token.Token, bool) {
	n := 0
	if t.offset+n < len(t.code) && t.code[t.offset+n] == '-' {
		n++
	}
	digits := 0
	for t.offset+n < len(t.code) && unicode.IsDigit(t.code[t.offset+n]) {
		n++
		digits++
	}
	if digits == 0 {
		return token.Token{}, false
	}
	return t.makeToken(token.Integer, t.offset, t.offset+n), true
}

func (t *Tokenizer) tokenizeIdentifier() (token.Token, bool) {
	if t.offset >= len(t.code) {
		return token.Token{}, false
	}
	first := t.code[t.offset]
	if !(unicode.IsLetter(first) || first == '_') {
		return token.Token{}, false
	}
	n := 1
	for t.offset+n < len(t.code) && (unicode.IsLetter(t.code[t.offset+n]) || unicode.IsDigit(t.code[t.offset+n]) || t.code[t.offset+n] == '_') {
		n++
	}
	return t.makeToken(token.Identifier, t.offset, t.offset+n), true
}

// tokenizeString scans a double-quoted string literal, validating escape
// sequences eagerly (spec.md §6): any other backslash sequence or a raw
// non-printable character (including a literal newline) is a tokenizer
// error at the string's starting column.
func (t *Tokenizer) tokenizeString() (token.Token, bool, error) {
	if t.offset >= len(t.code) || t.code[t.offset] != '"' {
		return token.Token{}, false, nil
	}

	start := t.offset
	i := start + 1

	for {
		if i >= len(t.code) {
			return token.Token{}, false, &Error{
				Pos:     t.position(start),
				Message: "unterminated string literal",
				Code:    diag.CodeUnterminatedString,
			}
		}

		c := t.code[i]

		if c == '"' {
			return t.makeToken(token.String, start, i+1), true, nil
		}

		if c == '\\' {
			if i+1 >= len(t.code) {
				return token.Token{}, false, &Error{
					Pos:     t.position(start),
					Message: "unterminated escape sequence in string literal",
					Code:    diag.CodeUnterminatedString,
				}
			}
			esc := t.code[i+1]

			switch esc {
			case 'u':
				if !t.hasHexRun(i+2, 4) {
					return token.Token{}, false, &Error{
						Pos:     t.position(start),
						Message: `invalid \u escape sequence in string literal`,
						Code:    diag.CodeInvalidEscape,
					}
				}
				i += 2 + 4
				continue
			case 'U':
				if !t.hasHexRun(i+2, 8) {
					return token.Token{}, false, &Error{
						Pos:     t.position(start),
						Message: `invalid \U escape sequence in string literal`,
						Code:    diag.CodeInvalidEscape,
					}
				}
				i += 2 + 8
				continue
			default:
				if _, ok := stringEscapes[esc]; !ok {
					return token.Token{}, false, &Error{
						Pos:     t.position(start),
						Message: fmt.Sprintf("invalid escape sequence \\%c in string literal", esc),
						Code:    diag.CodeInvalidEscape,
					}
				}
				i += 2
				continue
			}
		}

		if !isPrintable(c) {
			return token.Token{}, false, &Error{
				Pos:     t.position(start),
				Message: "unprintable character in string literal",
				Code:    diag.CodeInvalidCharacter,
			}
		}

		i++
	}
}

func (t *Tokenizer) hasHexRun(offset, length int) bool {
	if offset+length > len(t.code) {
		return false
	}
	for i := 0; i < length; i++ {
		c := t.code[offset+i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func isPrintable(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	return unicode.IsPrint(r)
}
