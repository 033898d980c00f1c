// Package token defines source positions and lexical tokens for aaa.
package token

import "fmt"

// Position identifies a location in a source file. Line and Column are
// 1-based and Column counts scalar characters, not bytes.
type Position struct {
	File   string
	Line   int
	Column int
}

// String renders a position the way every aaa diagnostic is prefixed:
// "<file>:<line>:<column>".
func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Less reports whether p sorts before other in (line, column) order,
// used to check the position-monotonicity invariant over a token stream.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Invalid Kind = iota

	// Open classes
	Identifier
	Integer
	String
	Comment
	Whitespace
	Shebang

	// Structural punctuation
	Comma        // ,
	Colon        // :
	Assign       // <-
	GetField     // ?
	SetField     // !
	TypeParamBeg // [
	TypeParamEnd // ]
	Begin        // {
	End          // }

	// Keywords
	KwFn
	KwStruct
	KwEnum
	KwIf
	KwElse
	KwWhile
	KwForeach
	KwMatch
	KwCase
	KwDefault
	KwUse
	KwReturn
	KwArgs
	KwAs
	KwFrom
	KwImport
	KwTrue
	KwFalse
	KwConst
	KwNever
	KwBuiltin
	KwCall
)

var kindNames = map[Kind]string{
	Invalid:      "INVALID",
	Identifier:   "IDENTIFIER",
	Integer:      "INTEGER",
	String:       "STRING",
	Comment:      "COMMENT",
	Whitespace:   "WHITESPACE",
	Shebang:      "SHEBANG",
	Comma:        ",",
	Colon:        ":",
	Assign:       "<-",
	GetField:     "?",
	SetField:     "!",
	TypeParamBeg: "[",
	TypeParamEnd: "]",
	Begin:        "{",
	End:          "}",
	KwFn:         "fn",
	KwStruct:     "struct",
	KwEnum:       "enum",
	KwIf:         "if",
	KwElse:       "else",
	KwWhile:      "while",
	KwForeach:    "foreach",
	KwMatch:      "match",
	KwCase:       "case",
	KwDefault:    "default",
	KwUse:        "use",
	KwReturn:     "return",
	KwArgs:       "args",
	KwAs:         "as",
	KwFrom:       "from",
	KwImport:     "import",
	KwTrue:       "true",
	KwFalse:      "false",
	KwConst:      "const",
	KwNever:      "never",
	KwBuiltin:    "builtin",
	KwCall:       "call",
}

// String returns the human-readable name of a token kind, used to build
// the "expected one of {...}" parser error messages.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit: its kind, literal text, and position.
type Token struct {
	Kind    Kind
	Literal string
	Pos     Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Kind, t.Literal, t.Pos)
}

// IsKeyword reports whether k is one of the reserved-word kinds, as
// opposed to punctuation or an open class like Identifier.
func (k Kind) IsKeyword() bool {
	return k >= KwFn && k <= KwCall
}
