package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/token"
)

// parseError unwinds the recursive descent to ParseFile on the first
// syntax error: the grammar is LL(2) and never backtracks, so there is
// nothing useful to resume once a production's prefix has committed.
type parseError struct {
	pos     token.Position
	message string
}

// recursiveDescent is the sole Parser implementation. One instance
// parses exactly one file.
type recursiveDescent struct {
	mode   Mode
	path   string
	toks   []token.Token
	pos    int
	depth  int
}

func (p *recursiveDescent) ParseFile(path string, tokens []token.Token) (sf *ast.SourceFile, errs diag.List) {
	p.path = path
	p.toks = tokens
	p.pos = 0

	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			errs.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeUnexpectedToken,
				Pos:      pe.pos,
				Message:  pe.message,
			})
			sf = nil
		}
	}()

	sf = p.parseSourceFile()
	return sf, errs
}

func (p *recursiveDescent) trace(production string) {
	if p.mode&Trace == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s%s at %s\n", strings.Repeat("  ", p.depth), production, p.curPos())
}

func (p *recursiveDescent) enter(production string) func() {
	p.trace(production)
	p.depth++
	return func() { p.depth-- }
}

// --- token-stream primitives -------------------------------------------------

func (p *recursiveDescent) atEnd() bool {
	return p.pos >= len(p.toks)
}

func (p *recursiveDescent) cur() token.Token {
	if p.atEnd() {
		return token.Token{Kind: token.Invalid, Pos: p.curPos()}
	}
	return p.toks[p.pos]
}

func (p *recursiveDescent) curPos() token.Position {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].Pos
	}
	if len(p.toks) > 0 {
		return p.toks[len(p.toks)-1].Pos
	}
	return token.Position{File: p.path, Line: 1, Column: 1}
}

// peek returns the token n positions ahead of the cursor (peek(0) ==
// cur()); the grammar never needs more than two tokens of lookahead.
func (p *recursiveDescent) peek(n int) token.Token {
	idx := p.pos + n
	if idx < 0 || idx >= len(p.toks) {
		return token.Token{Kind: token.Invalid, Pos: p.curPos()}
	}
	return p.toks[idx]
}

func (p *recursiveDescent) at(kind token.Kind) bool {
	return p.cur().Kind == kind
}

func (p *recursiveDescent) advance() token.Token {
	t := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *recursiveDescent) fail(pos token.Position, format string, args ...any) {
	panic(parseError{pos: pos, message: fmt.Sprintf(format, args...)})
}

func (p *recursiveDescent) expect(kind token.Kind) token.Token {
	if p.atEnd() {
		p.fail(p.curPos(), "unexpected end of file, expected %s", kind)
	}
	if p.cur().Kind != kind {
		p.fail(p.curPos(), "unexpected token %q, expected %s", p.cur().Literal, kind)
	}
	return p.advance()
}

func (p *recursiveDescent) expectIdent() token.Token {
	return p.expect(token.Identifier)
}

// --- top level ---------------------------------------------------------------

func (p *recursiveDescent) parseSourceFile() *ast.SourceFile {
	defer p.enter("SourceFile")()

	pos := token.Position{File: p.path, Line: 1, Column: 1}
	if len(p.toks) > 0 {
		pos = p.toks[0].Pos
	}

	sf := &ast.SourceFile{Position: pos, Path: p.path}

	// A leading "#!" line reaches the parser as a Shebang token and is skipped.
	if p.at(token.Shebang) {
		p.advance()
	}

	for !p.atEnd() {
		switch {
		case p.at(token.KwFrom):
			sf.Imports = append(sf.Imports, p.parseImport())
		case p.at(token.KwStruct):
			sf.Structs = append(sf.Structs, p.parseStruct(false))
		case p.at(token.KwEnum):
			sf.Enums = append(sf.Enums, p.parseEnum())
		case p.at(token.KwFn):
			sf.Functions = append(sf.Functions, p.parseFunction(false))
		case p.at(token.KwBuiltin):
			switch p.peek(1).Kind {
			case token.KwStruct:
				p.advance()
				sf.Structs = append(sf.Structs, p.parseStruct(true))
			case token.KwFn:
				p.advance()
				sf.Functions = append(sf.Functions, p.parseFunction(true))
			default:
				p.fail(p.curPos(), "expected struct or fn after builtin, found %q", p.peek(1).Literal)
			}
		default:
			p.fail(p.curPos(), "unhandled top-level token %q", p.cur().Literal)
		}
	}

	return sf
}

// --- import --------------------------------------------------------------

func (p *recursiveDescent) parseImport() *ast.Import {
	defer p.enter("Import")()

	fromTok := p.expect(token.KwFrom)
	source := p.expect(token.String)
	p.expect(token.KwImport)

	items := []ast.ImportItem{p.parseImportItem()}
	for p.at(token.Comma) {
		p.advance()
		if p.cur().Kind != token.Identifier {
			break // trailing comma
		}
		items = append(items, p.parseImportItem())
	}

	return &ast.Import{
		Position: fromTok.Pos,
		Source:   unquoteStringLiteral(source.Literal),
		Items:    items,
	}
}

func (p *recursiveDescent) parseImportItem() ast.ImportItem {
	defer p.enter("ImportItem")()

	original := p.expectIdent()
	imported := original

	if p.at(token.KwAs) {
		p.advance()
		imported = p.expectIdent()
	}

	return ast.ImportItem{
		Position: original.Pos,
		Original: original.Literal,
		Imported: imported.Literal,
	}
}

// --- struct ----------------------------------------------------------------

func (p *recursiveDescent) parseStruct(isBuiltin bool) *ast.Struct {
	defer p.enter("Struct")()

	structTok := p.expect(token.KwStruct)
	flat := p.parseFlatTypeLiteral()
	decl := ast.StructDeclaration{Position: structTok.Pos, Literal: flat}

	s := &ast.Struct{IsBuiltin: isBuiltin, Declaration: decl}
	if isBuiltin {
		return s
	}

	p.expect(token.Begin)
	var fields []ast.StructField
	for !p.at(token.End) {
		fields = append(fields, p.parseStructField())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.End)

	s.Fields = fields
	return s
}

func (p *recursiveDescent) parseStructField() ast.StructField {
	defer p.enter("Field")()

	name := p.expectIdent()
	p.expectAsKeyword()
	typ := p.parseTypeOrFnPtr()

	return ast.StructField{Position: name.Pos, Name: name.Literal, Type: typ}
}

// --- enum --------------------------------------------------------------------

func (p *recursiveDescent) parseEnum() *ast.Enum {
	defer p.enter("Enum")()

	enumTok := p.expect(token.KwEnum)
	name := p.expectIdent()
	decl := ast.EnumDeclaration{Position: enumTok.Pos, Name: name.Literal}

	p.expect(token.Begin)
	var variants []ast.EnumVariant
	for !p.at(token.End) {
		variants = append(variants, p.parseEnumVariant())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.End)

	return &ast.Enum{Declaration: decl, Variants: variants}
}

func (p *recursiveDescent) parseEnumVariant() ast.EnumVariant {
	defer p.enter("EnumVariant")()

	name := p.expectIdent()
	v := ast.EnumVariant{Position: name.Pos, Name: name.Literal}

	if p.at(token.KwAs) {
		p.advance()
		if p.at(token.Begin) {
			p.advance()
			v.AssociatedTypes = append(v.AssociatedTypes, p.parseTypeOrFnPtr())
			for p.at(token.Comma) {
				p.advance()
				if p.at(token.End) {
					break
				}
				v.AssociatedTypes = append(v.AssociatedTypes, p.parseTypeOrFnPtr())
			}
			p.expect(token.End)
		} else {
			v.AssociatedTypes = append(v.AssociatedTypes, p.parseTypeOrFnPtr())
		}
	}

	return v
}

// --- function ----------------------------------------------------------------

func (p *recursiveDescent) parseFunction(isBuiltin bool) *ast.Function {
	defer p.enter("Function")()

	fnTok := p.expect(token.KwFn)
	name := p.parseFunctionName()

	decl := ast.FunctionDeclaration{Position: fnTok.Pos, Name: name}

	if p.at(token.KwArgs) {
		p.advance()
		decl.Arguments = p.parseArgList()
	}

	if p.at(token.KwReturn) {
		p.advance()
		if p.at(token.KwNever) {
			p.advance()
			decl.ReturnsNever = true
		} else {
			decl.ReturnTypes = p.parseRetList()
		}
	}

	fn := &ast.Function{IsBuiltin: isBuiltin, Declaration: decl}
	if isBuiltin {
		return fn
	}

	body, end := p.parseFunctionBodyBlock()
	fn.Body = body
	fn.EndPosition = end
	return fn
}

func (p *recursiveDescent) parseFunctionName() ast.FunctionName {
	defer p.enter("FnName")()

	flat := p.parseFlatTypeLiteral()
	name := ast.FunctionName{Position: flat.Position, Params: flat.Params, FuncName: flat.Name}

	if p.at(token.Colon) {
		p.advance()
		funcName := p.expectIdent()
		name.TypeName = flat.Name
		name.FuncName = funcName.Literal
	}

	return name
}

func (p *recursiveDescent) parseArgList() []ast.Argument {
	defer p.enter("ArgList")()

	args := []ast.Argument{p.parseArgument()}
	for p.at(token.Comma) {
		p.advance()
		if p.cur().Kind != token.Identifier {
			break
		}
		args = append(args, p.parseArgument())
	}
	return args
}

func (p *recursiveDescent) parseArgument() ast.Argument {
	defer p.enter("Arg")()

	name := p.expectIdent()
	p.expectAsKeyword()
	typ := p.parseTypeOrFnPtr()

	return ast.Argument{Position: name.Pos, Name: name.Literal, Type: typ}
}

func (p *recursiveDescent) parseRetList() []ast.TypeLiteral {
	defer p.enter("RetList")()

	types := []ast.TypeLiteral{p.parseTypeOrFnPtr()}
	for p.at(token.Comma) {
		p.advance()
		// A trailing comma is followed by the function body's "{", or
		// (for a builtin function) the next top-level declaration; only
		// a plain/const type name unambiguously continues the list, since
		// "fn" here would be indistinguishable from the next builtin
		// function declaration.
		if !p.at(token.Identifier) && !p.at(token.KwConst) {
			break
		}
		types = append(types, p.parseTypeOrFnPtr())
	}
	return types
}

// --- types ---------------------------------------------------------------

func (p *recursiveDescent) parseTypeOrFnPtr() ast.TypeLiteral {
	if p.at(token.KwFn) {
		return p.parseFnPtrLiteral()
	}
	return p.parseTypeLiteral()
}

func (p *recursiveDescent) parseTypeLiteral() *ast.NamedType {
	defer p.enter("TypeLit")()

	start := p.curPos()
	isConst := false
	if p.at(token.KwConst) {
		p.advance()
		isConst = true
	}

	name := p.expectIdent()
	nt := &ast.NamedType{Position: start, Name: name.Literal, Const: isConst}

	if p.at(token.TypeParamBeg) {
		nt.Params = p.parseTypeList()
	}

	return nt
}

func (p *recursiveDescent) parseTypeList() []ast.TypeLiteral {
	defer p.enter("TypeList")()

	p.expect(token.TypeParamBeg)
	var types []ast.TypeLiteral
	for !p.at(token.TypeParamEnd) {
		types = append(types, p.parseTypeOrFnPtr())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.TypeParamEnd)
	return types
}

// parseFnPtrLiteral parses "fn" "[" TypeList? "]" "[" ("never" | TypeList)? "]".
func (p *recursiveDescent) parseFnPtrLiteral() *ast.FunctionPointerType {
	defer p.enter("FnPtrLit")()

	fnTok := p.expect(token.KwFn)
	lit := &ast.FunctionPointerType{Position: fnTok.Pos}

	p.expect(token.TypeParamBeg)
	if !p.at(token.TypeParamEnd) {
		lit.ArgumentTypes = append(lit.ArgumentTypes, p.parseTypeOrFnPtr())
		for p.at(token.Comma) {
			p.advance()
			if p.at(token.TypeParamEnd) {
				break
			}
			lit.ArgumentTypes = append(lit.ArgumentTypes, p.parseTypeOrFnPtr())
		}
	}
	p.expect(token.TypeParamEnd)

	p.expect(token.TypeParamBeg)
	if p.at(token.KwNever) {
		p.advance()
		lit.ReturnsNever = true
	} else if !p.at(token.TypeParamEnd) {
		lit.ReturnTypes = append(lit.ReturnTypes, p.parseTypeOrFnPtr())
		for p.at(token.Comma) {
			p.advance()
			if p.at(token.TypeParamEnd) {
				break
			}
			lit.ReturnTypes = append(lit.ReturnTypes, p.parseTypeOrFnPtr())
		}
	}
	p.expect(token.TypeParamEnd)

	return lit
}

// parseFlatTypeLiteral parses IDENT ("[" IDENT ("," IDENT)* ","? "]")? —
// the bare, unparameterized-by-type-literals form used in declarations
// ("struct vec[A]", "fn foo[A]").
func (p *recursiveDescent) parseFlatTypeLiteral() ast.FlatTypeLiteral {
	defer p.enter("FlatTypeLit")()

	name := p.expectIdent()
	flat := ast.FlatTypeLiteral{Position: name.Pos, Name: name.Literal}

	if p.at(token.TypeParamBeg) {
		p.advance()
		for !p.at(token.TypeParamEnd) {
			param := p.expectIdent()
			flat.Params = append(flat.Params, param.Literal)
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.TypeParamEnd)
	}

	return flat
}

// expectAsKeyword consumes the contextual "as" keyword, which tokenizes
// as KwAs.
func (p *recursiveDescent) expectAsKeyword() token.Token {
	return p.expect(token.KwAs)
}

// --- function body ------------------------------------------------------

func (p *recursiveDescent) parseFunctionBodyBlock() (*ast.FunctionBody, token.Position) {
	defer p.enter("Body")()

	start := p.expect(token.Begin)
	body := p.parseFunctionBody(start.Pos)
	end := p.expect(token.End)
	return body, end.Pos
}

func (p *recursiveDescent) parseFunctionBody(pos token.Position) *ast.FunctionBody {
	body := &ast.FunctionBody{Position: pos}
	for !p.at(token.End) && !p.atEnd() {
		body.Items = append(body.Items, p.parseBodyItem())
	}
	return body
}

func (p *recursiveDescent) parseBodyItem() ast.Expr {
	c := p.cur()

	switch c.Kind {
	case token.Integer:
		p.advance()
		v, err := strconv.ParseInt(c.Literal, 10, 64)
		if err != nil {
			p.fail(c.Pos, "invalid integer literal %q", c.Literal)
		}
		return &ast.Integer{Position: c.Pos, Value: v}

	case token.String:
		return p.parseStringLedItem()

	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Boolean{Position: c.Pos, Value: c.Kind == token.KwTrue}

	case token.KwIf:
		return p.parseBranch()

	case token.KwWhile:
		return p.parseWhileLoop()

	case token.KwForeach:
		return p.parseForeachLoop()

	case token.KwMatch:
		return p.parseMatchBlock()

	case token.KwUse:
		return p.parseUseBlock()

	case token.KwReturn:
		p.advance()
		return &ast.Return{Position: c.Pos}

	case token.KwCall:
		p.advance()
		return &ast.IndirectCall{Position: c.Pos}

	case token.Identifier:
		return p.parseIdentifierLedItem()

	default:
		p.fail(c.Pos, "unexpected token %q in function body", c.Literal)
		panic("unreachable")
	}
}

// parseStringLedItem disambiguates a bare string literal from a
// field-query ('"f" ?') and a field-update ('"f" { body } !') by
// peeking one token past the STRING.
func (p *recursiveDescent) parseStringLedItem() ast.Expr {
	str := p.advance()
	value := unquoteStringLiteral(str.Literal)

	switch p.cur().Kind {
	case token.GetField:
		p.advance()
		return &ast.StructFieldQuery{FieldName: value, OperatorPosition: str.Pos}
	case token.Begin:
		p.advance()
		newValue := p.parseFunctionBody(p.curPos())
		p.expect(token.End)
		p.expect(token.SetField)
		return &ast.StructFieldUpdate{FieldName: value, NewValue: newValue, OperatorPosition: str.Pos}
	case token.KwFn:
		p.advance()
		return &ast.GetFunctionPointer{Position: str.Pos, FunctionName: value}
	default:
		return &ast.String{Position: str.Pos, Value: value}
	}
}

// parseIdentifierLedItem disambiguates a plain variable reference, a
// free/member function call, an assignment, and a use-block's variable
// list by peeking up to two tokens past the IDENT.
func (p *recursiveDescent) parseIdentifierLedItem() ast.Expr {
	first := p.advance()

	// Assignment: IDENT ("," IDENT)* "<-" "{" Body "}"
	if p.at(token.Comma) || p.at(token.Assign) {
		vars := []string{first.Literal}
		for p.at(token.Comma) {
			p.advance()
			id := p.expectIdent()
			vars = append(vars, id.Literal)
		}
		p.expect(token.Assign)
		body, _ := p.parseFunctionBodyBlock()
		return &ast.Assignment{Position: first.Pos, Variables: vars, Body: body}
	}

	call := &ast.FunctionCall{Position: first.Pos, FuncName: first.Literal}

	if p.at(token.Colon) {
		p.advance()
		funcName := p.expectIdent()
		call.StructName = first.Literal
		call.FuncName = funcName.Literal
	}

	if p.at(token.TypeParamBeg) {
		call.TypeParams = p.parseTypeList()
	}

	return call
}

func (p *recursiveDescent) parseBranch() ast.Expr {
	defer p.enter("If")()

	ifTok := p.expect(token.KwIf)
	cond := p.parseCondBody(ifTok.Pos)
	ifBody, _ := p.parseFunctionBodyBlock()

	branch := &ast.Branch{Position: ifTok.Pos, Cond: cond, IfBody: ifBody}

	if p.at(token.KwElse) {
		p.advance()
		elseBody, _ := p.parseFunctionBodyBlock()
		branch.ElseBody = elseBody
	}

	return branch
}

func (p *recursiveDescent) parseWhileLoop() ast.Expr {
	defer p.enter("While")()

	whileTok := p.expect(token.KwWhile)
	cond := p.parseCondBody(whileTok.Pos)
	body, _ := p.parseFunctionBodyBlock()
	return &ast.WhileLoop{Position: whileTok.Pos, Cond: cond, Body: body}
}

// parseCondBody parses an if/while condition: a brace-less body that
// runs until the next token can't start one, which in practice means up
// to the "{" opening the following body block.
func (p *recursiveDescent) parseCondBody(pos token.Position) *ast.FunctionBody {
	body := &ast.FunctionBody{Position: pos}
	for p.startsBodyItem() {
		body.Items = append(body.Items, p.parseBodyItem())
	}
	return body
}

// startsBodyItem reports whether the current token can begin a function
// body item, mirroring parseBodyItem's own switch.
func (p *recursiveDescent) startsBodyItem() bool {
	switch p.cur().Kind {
	case token.Integer, token.String, token.KwTrue, token.KwFalse,
		token.KwIf, token.KwWhile, token.KwForeach, token.KwMatch,
		token.KwUse, token.KwReturn, token.KwCall, token.Identifier:
		return true
	default:
		return false
	}
}

func (p *recursiveDescent) parseForeachLoop() ast.Expr {
	defer p.enter("Foreach")()

	foreachTok := p.expect(token.KwForeach)
	body, _ := p.parseFunctionBodyBlock()
	return &ast.ForeachLoop{Position: foreachTok.Pos, Body: body}
}

func (p *recursiveDescent) parseUseBlock() ast.Expr {
	defer p.enter("Use")()

	useTok := p.expect(token.KwUse)
	vars := []string{p.expectIdent().Literal}
	for p.at(token.Comma) {
		p.advance()
		vars = append(vars, p.expectIdent().Literal)
	}
	body, _ := p.parseFunctionBodyBlock()
	return &ast.UseBlock{Position: useTok.Pos, Variables: vars, Body: body}
}

func (p *recursiveDescent) parseMatchBlock() ast.Expr {
	defer p.enter("Match")()

	matchTok := p.expect(token.KwMatch)
	p.expect(token.Begin)

	match := &ast.MatchBlock{Position: matchTok.Pos}
	for p.at(token.KwCase) || p.at(token.KwDefault) {
		if p.at(token.KwCase) {
			match.Cases = append(match.Cases, p.parseCaseBlock())
		} else {
			p.expect(token.KwDefault)
			body, _ := p.parseFunctionBodyBlock()
			match.DefaultBody = body
		}
	}

	p.expect(token.End)
	return match
}

func (p *recursiveDescent) parseCaseBlock() ast.CaseBlock {
	defer p.enter("CaseBlock")()

	caseTok := p.expect(token.KwCase)
	label := p.parseCaseLabel(caseTok.Pos)
	body, _ := p.parseFunctionBodyBlock()
	return ast.CaseBlock{Position: caseTok.Pos, Label: label, Body: body}
}

func (p *recursiveDescent) parseCaseLabel(pos token.Position) ast.CaseLabel {
	defer p.enter("CaseLabel")()

	enumName := p.expectIdent()
	p.expect(token.Colon)
	variantName := p.expectIdent()

	label := ast.CaseLabel{Position: pos, EnumName: enumName.Literal, VariantName: variantName.Literal}

	if p.at(token.KwAs) {
		p.advance()
		label.Variables = append(label.Variables, p.expectIdent().Literal)
		for p.at(token.Comma) {
			p.advance()
			label.Variables = append(label.Variables, p.expectIdent().Literal)
		}
	}

	return label
}

// unquoteStringLiteral strips the surrounding quotes and decodes the
// escape sequences validated by the tokenizer.
func unquoteStringLiteral(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	inner := lit[1 : len(lit)-1]

	var sb strings.Builder
	runes := []rune(inner)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			sb.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'n':
			sb.WriteRune('\n')
		case 'r':
			sb.WriteRune('\r')
		case 't':
			sb.WriteRune('\t')
		case 'b':
			sb.WriteRune('\b')
		case 'f':
			sb.WriteRune('\f')
		case 'e':
			sb.WriteRune(0x1b)
		case '0':
			sb.WriteRune(0)
		case '\\', '"', '\'', '/':
			sb.WriteRune(runes[i])
		case 'u':
			code := parseHexRunes(runes[i+1 : i+5])
			sb.WriteRune(rune(code))
			i += 4
		case 'U':
			code := parseHexRunes(runes[i+1 : i+9])
			sb.WriteRune(rune(code))
			i += 8
		default:
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}

func parseHexRunes(runes []rune) int64 {
	v, _ := strconv.ParseInt(string(runes), 16, 64)
	return v
}
