package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/token"
)

func TestRunUnfiltered_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"hello world", "fn main args vec:str { 0 drop }\n"},
		{"comment and shebang", "#!/usr/bin/env aaa\n// a comment\nfn foo { }\n"},
		{"string literal", `"hello\nworldA"`},
		{"operators", "1 2 + 3 * 4 <= true"},
		{"negative integer", "-42 drop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := RunUnfiltered("test.aaa", tt.code)
			require.NoError(t, err)

			var sb strings.Builder
			for _, tok := range tokens {
				sb.WriteString(tok.Literal)
			}
			assert.Equal(t, tt.code, sb.String())
		})
	}
}

func TestRunUnfiltered_PositionsMonotonic(t *testing.T) {
	code := "fn main args vec:str {\n  1 2 + drop\n}\n"
	tokens, err := RunUnfiltered("test.aaa", code)
	require.NoError(t, err)

	for i := 1; i < len(tokens); i++ {
		prev, cur := tokens[i-1].Pos, tokens[i].Pos
		assert.False(t, cur.Less(prev), "token %d (%q) position %s should not precede %s", i, tokens[i].Literal, cur, prev)
	}
}

func TestRun_DropsWhitespaceAndComments(t *testing.T) {
	code := "// leading comment\nfn main args vec:str { 0 drop }\n"
	tokens, err := Run("test.aaa", code)
	require.NoError(t, err)

	for _, tok := range tokens {
		assert.NotEqual(t, token.Whitespace, tok.Kind)
		assert.NotEqual(t, token.Comment, tok.Kind)
	}
	require.NotEmpty(t, tokens)
	assert.Equal(t, token.KwFn, tokens[0].Kind)
}

func TestOperatorsTokenizeAsIdentifier(t *testing.T) {
	for _, op := range []string{"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "=", "!=", "."} {
		t.Run(op, func(t *testing.T) {
			tokens, err := Run("test.aaa", op+" drop")
			require.NoError(t, err)
			require.NotEmpty(t, tokens)
			assert.Equal(t, token.Identifier, tokens[0].Kind)
			assert.Equal(t, op, tokens[0].Literal)
		})
	}
}

func TestKeywordVsIdentifierBoundary(t *testing.T) {
	tokens, err := Run("test.aaa", "if_ok drop")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	assert.Equal(t, token.Identifier, tokens[0].Kind)
	assert.Equal(t, "if_ok", tokens[0].Literal)
}

func TestLongestFixedTokenWins(t *testing.T) {
	tokens, err := Run("test.aaa", "<= <")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "<=", tokens[0].Literal)
	assert.Equal(t, "<", tokens[1].Literal)
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid simple escapes", `"a\nb\tc\"d"`, false},
		{"valid short unicode escape", `"\u0041"`, false},
		{"valid long unicode escape", `"\U00000041"`, false},
		{"invalid escape", `"\q"`, true},
		{"unterminated string", `"abc`, true},
		{"literal newline", "\"abc\ndef\"", true},
		{"short unicode escape", `"\u41"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run("test.aaa", tt.code)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnterminatedEscapeAtEOF(t *testing.T) {
	_, err := Run("test.aaa", `"abc\`)
	assert.Error(t, err)
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := Run("test.aaa", "fn main { \x01 }")
	var tokErr *Error
	require.Error(t, err)
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, 1, tokErr.Pos.Line)
	assert.Equal(t, diag.CodeInvalidCharacter, tokErr.Code)
}

func TestErrorCodesByFailureKind(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantCode diag.Code
	}{
		{"unterminated string", `"abc`, diag.CodeUnterminatedString},
		{"unterminated escape at EOF", `"abc\`, diag.CodeUnterminatedString},
		{"invalid escape", `"\q"`, diag.CodeInvalidEscape},
		{"invalid short unicode escape", `"\u41"`, diag.CodeInvalidEscape},
		{"unexpected character", "\x01", diag.CodeInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run("test.aaa", tt.code)
			var tokErr *Error
			require.Error(t, err)
			require.ErrorAs(t, err, &tokErr)
			assert.Equal(t, tt.wantCode, tokErr.Code)
		})
	}
}
