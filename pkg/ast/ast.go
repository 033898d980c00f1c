// Package ast defines the syntax tree produced by pkg/parser: one node
// type per grammar production, grouped into small tagged-variant
// interfaces (Expr, TypeLiteral) rather than a class hierarchy.
package ast

import "github.com/aaalang/aaac/pkg/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Expr is a single item inside a function body: a literal push, a call,
// a control-flow construct, or a struct-field operation. The concrete
// types below are the closed set of variants; a type switch over Expr
// is the idiomatic way to walk a body.
type Expr interface {
	Node
	exprNode()
}

// TypeLiteral is either a named type (possibly with type parameters and
// a const qualifier) or a function-pointer type.
type TypeLiteral interface {
	Node
	typeLiteralNode()
}

// Integer is a literal integer push, e.g. "42". Source text "-1" does not
// produce one: the fixed identifier "-" is matched before integers, so it
// tokenizes as the identifier "-" followed by the integer 1.
type Integer struct {
	Position token.Position
	Value    int64
}

func (n *Integer) Pos() token.Position { return n.Position }
func (*Integer) exprNode()             {}

// String is a literal string push. Value holds the unescaped text.
type String struct {
	Position token.Position
	Value    string
}

func (n *String) Pos() token.Position { return n.Position }
func (*String) exprNode()             {}

// Boolean is a literal "true"/"false" push.
type Boolean struct {
	Position token.Position
	Value    bool
}

func (n *Boolean) Pos() token.Position { return n.Position }
func (*Boolean) exprNode()             {}

// Char is a literal single-character push.
type Char struct {
	Position token.Position
	Value    rune
}

func (n *Char) Pos() token.Position { return n.Position }
func (*Char) exprNode()             {}

// Identifier is a bare name: a local variable or argument reference
// inside a function body.
type Identifier struct {
	Position token.Position
	Name     string
}

func (n *Identifier) Pos() token.Position { return n.Position }
func (*Identifier) exprNode()             {}

// FunctionCall calls a free function, or a member function
// "StructName:FuncName" when StructName is non-empty. TypeParams
// instantiates a generic callee explicitly, e.g. "vec[int]:push".
type FunctionCall struct {
	Position   token.Position
	StructName string // empty for a free function call
	FuncName   string
	TypeParams []TypeLiteral
}

func (n *FunctionCall) Pos() token.Position { return n.Position }
func (*FunctionCall) exprNode()             {}

// Name returns the fully qualified call target, "Struct:func" or "func".
func (n *FunctionCall) Name() string {
	if n.StructName == "" {
		return n.FuncName
	}
	return n.StructName + ":" + n.FuncName
}

// GetFunctionPointer pushes a pointer to a named free function.
type GetFunctionPointer struct {
	Position     token.Position
	FunctionName string
}

func (n *GetFunctionPointer) Pos() token.Position { return n.Position }
func (*GetFunctionPointer) exprNode()             {}

// StructFieldQuery reads a field off the struct on top of the stack,
// written '"field" ?'.
type StructFieldQuery struct {
	FieldName        string
	OperatorPosition token.Position
}

func (n *StructFieldQuery) Pos() token.Position { return n.OperatorPosition }
func (*StructFieldQuery) exprNode()             {}

// StructFieldUpdate writes a field on the struct on top of the stack,
// written '"field" { ... } !'; NewValue computes the replacement value.
type StructFieldUpdate struct {
	FieldName        string
	NewValue         *FunctionBody
	OperatorPosition token.Position
}

func (n *StructFieldUpdate) Pos() token.Position { return n.OperatorPosition }
func (*StructFieldUpdate) exprNode()             {}

// Return exits the enclosing function immediately.
type Return struct {
	Position token.Position
}

func (n *Return) Pos() token.Position { return n.Position }
func (*Return) exprNode()             {}

// IndirectCall is the literal "call" keyword: pops a function-pointer
// value off the stack and applies its signature.
type IndirectCall struct {
	Position token.Position
}

func (n *IndirectCall) Pos() token.Position { return n.Position }
func (*IndirectCall) exprNode()             {}

// Branch is "if COND { ... } [else { ... }]".
type Branch struct {
	Position token.Position
	Cond     *FunctionBody
	IfBody   *FunctionBody
	ElseBody *FunctionBody // nil when there is no else block
}

func (n *Branch) Pos() token.Position { return n.Position }
func (*Branch) exprNode()             {}

// WhileLoop is "while COND { ... }".
type WhileLoop struct {
	Position token.Position
	Cond     *FunctionBody
	Body     *FunctionBody
}

func (n *WhileLoop) Pos() token.Position { return n.Position }
func (*WhileLoop) exprNode()             {}

// ForeachLoop is "foreach { ... }": it repeatedly calls the iterable's
// iterator, feeding each yielded value through Body, until exhausted.
type ForeachLoop struct {
	Position token.Position
	Body     *FunctionBody
}

func (n *ForeachLoop) Pos() token.Position { return n.Position }
func (*ForeachLoop) exprNode()             {}

// UseBlock pops len(Variables) values into named locals visible only
// inside Body: "use a, b { ... }".
type UseBlock struct {
	Position  token.Position
	Variables []string
	Body      *FunctionBody
}

func (n *UseBlock) Pos() token.Position { return n.Position }
func (*UseBlock) exprNode()             {}

// Assignment pops len(Variables) values and rebinds existing locals:
// "a, b <- { ... }".
type Assignment struct {
	Position  token.Position
	Variables []string
	Body      *FunctionBody
}

func (n *Assignment) Pos() token.Position { return n.Position }
func (*Assignment) exprNode()             {}

// CaseLabel matches one enum variant in a MatchBlock, optionally binding
// its associated data to Variables.
type CaseLabel struct {
	Position    token.Position
	EnumName    string
	VariantName string
	Variables   []string
}

// CaseBlock is one "case Enum:variant [as a, b] { ... }" arm.
type CaseBlock struct {
	Position token.Position
	Label    CaseLabel
	Body     *FunctionBody
}

// MatchBlock inspects the enum on top of the stack and runs the
// matching CaseBlock's body, or DefaultBody when no case matches and one
// is present.
type MatchBlock struct {
	Position    token.Position
	Cases       []CaseBlock
	DefaultBody *FunctionBody // nil when there is no default block
}

func (n *MatchBlock) Pos() token.Position { return n.Position }
func (*MatchBlock) exprNode()             {}

// FunctionBody is a straight-line sequence of body items: a function
// body, a branch arm, a loop body, and so on all parse to one of these.
type FunctionBody struct {
	Position token.Position
	Items    []Expr
}

func (n *FunctionBody) Pos() token.Position { return n.Position }

// NamedType is a type name, optionally parameterized and/or const
// qualified, e.g. "vec[int]" or "const map[str, int]".
type NamedType struct {
	Position token.Position
	Name     string
	Params   []TypeLiteral
	Const    bool
}

func (n *NamedType) Pos() token.Position { return n.Position }
func (*NamedType) typeLiteralNode()      {}

// FunctionPointerType is a type literal for a callable value, e.g.
// "fn[int, int][bool]". ReturnTypes is empty when ReturnsNever is true.
type FunctionPointerType struct {
	Position      token.Position
	ArgumentTypes []TypeLiteral
	ReturnTypes   []TypeLiteral
	ReturnsNever  bool
}

func (n *FunctionPointerType) Pos() token.Position { return n.Position }
func (*FunctionPointerType) typeLiteralNode()       {}

// FlatTypeLiteral names a struct or enum declaration's own type, with
// its own type parameters, e.g. the "vec[A]" in "struct vec[A] { ... }".
type FlatTypeLiteral struct {
	Position token.Position
	Name     string
	Params   []string
}

func (n *FlatTypeLiteral) Pos() token.Position { return n.Position }

// Argument is one "name as Type" function parameter.
type Argument struct {
	Position token.Position
	Name     string
	Type     TypeLiteral
}

// FunctionName is the declared name of a function: either a free
// function "name[params]" or a member function "Type[params]:name".
type FunctionName struct {
	Position token.Position
	TypeName string // empty for a free function
	Params   []string
	FuncName string
}

// Qualified returns "TypeName:FuncName", or just "FuncName" when there
// is no owning type.
func (n *FunctionName) Qualified() string {
	if n.TypeName == "" {
		return n.FuncName
	}
	return n.TypeName + ":" + n.FuncName
}

// FunctionDeclaration is a function's signature: name, arguments, and
// return types, without a body.
type FunctionDeclaration struct {
	Position     token.Position
	Name         FunctionName
	Arguments    []Argument
	ReturnTypes  []TypeLiteral
	ReturnsNever bool
}

func (n *FunctionDeclaration) Pos() token.Position { return n.Position }

// Function is a complete "fn ... { ... }" or "builtin fn ..." top-level
// declaration. Body is nil exactly when IsBuiltin is true.
type Function struct {
	IsBuiltin   bool
	Declaration FunctionDeclaration
	Body        *FunctionBody
	EndPosition token.Position // position of the body's closing "}"
}

func (n *Function) Pos() token.Position { return n.Declaration.Position }

// Name returns the function's fully qualified declared name.
func (n *Function) Name() string { return n.Declaration.Name.Qualified() }

// ImportItem is one "original [as imported]" entry in an import list.
type ImportItem struct {
	Position token.Position
	Original string
	Imported string
}

// Import is a complete "from \"source\" import a, b as c" declaration.
type Import struct {
	Position token.Position
	Source   string
	Items    []ImportItem
}

func (n *Import) Pos() token.Position { return n.Position }

// StructField is one "name as Type" field inside a struct declaration.
type StructField struct {
	Position token.Position
	Name     string
	Type     TypeLiteral
}

// StructDeclaration is a struct's own (possibly generic) type literal,
// e.g. the "vec[A]" in "struct vec[A] { ... }".
type StructDeclaration struct {
	Position token.Position
	Literal  FlatTypeLiteral
}

// Struct is a complete "struct ... { ... }" or "builtin struct ..."
// top-level declaration. Fields is nil exactly when IsBuiltin is true.
type Struct struct {
	IsBuiltin   bool
	Declaration StructDeclaration
	Fields      []StructField
}

func (n *Struct) Pos() token.Position { return n.Declaration.Position }

// Name returns the struct's declared name.
func (n *Struct) Name() string { return n.Declaration.Literal.Name }

// EnumVariant is one "name [as Type | as { Type, ... }]" arm of an enum
// declaration.
type EnumVariant struct {
	Position        token.Position
	Name            string
	AssociatedTypes []TypeLiteral
}

// EnumDeclaration is an enum's declared name.
type EnumDeclaration struct {
	Position token.Position
	Name     string
}

// Enum is a complete "enum Name { variant, variant as Type, ... }"
// top-level declaration.
type Enum struct {
	Declaration EnumDeclaration
	Variants    []EnumVariant
}

func (n *Enum) Pos() token.Position { return n.Declaration.Position }

// Name returns the enum's declared name.
func (n *Enum) Name() string { return n.Declaration.Name }

// SourceFile is everything parsed from one ".aaa" file.
type SourceFile struct {
	Position  token.Position
	Path      string
	Functions []*Function
	Imports   []*Import
	Structs   []*Struct
	Enums     []*Enum
}

func (n *SourceFile) Pos() token.Position { return n.Position }

// Dependencies returns the set of source file paths this file imports,
// resolved against resolve (typically pkg/build.ResolveImportPath).
func (n *SourceFile) Dependencies(resolve func(*Import) string) []string {
	deps := make([]string, 0, len(n.Imports))
	for _, imp := range n.Imports {
		deps = append(deps, resolve(imp))
	}
	return deps
}
