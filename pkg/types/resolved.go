package types

import "github.com/aaalang/aaac/pkg/token"

// ResolvedItem is one item in a function body after Phase C: the
// cross-referencer's parallel tree over ast.Expr, with every name
// reference replaced by a discriminated, already-looked-up target.
type ResolvedItem interface {
	Pos() token.Position
	resolvedNode()
}

// ResolvedBody is a resolved function body, branch arm, or loop body.
type ResolvedBody struct {
	Position token.Position
	Items    []ResolvedItem
}

// Literal items pass through unchanged in shape, just re-hosted in the
// resolved tree.
type (
	Integer struct {
		Position token.Position
		Value    int64
	}
	String struct {
		Position token.Position
		Value    string
	}
	Boolean struct {
		Position token.Position
		Value    bool
	}
	Char struct {
		Position token.Position
		Value    rune
	}
)

func (n *Integer) Pos() token.Position { return n.Position }
func (*Integer) resolvedNode()         {}
func (n *String) Pos() token.Position  { return n.Position }
func (*String) resolvedNode()          {}
func (n *Boolean) Pos() token.Position { return n.Position }
func (*Boolean) resolvedNode()         {}
func (n *Char) Pos() token.Position    { return n.Position }
func (*Char) resolvedNode()            {}

// CallFunction invokes a resolved Function, instantiated with TypeParams
// when the callee is generic and the call site supplied an explicit
// "[...]" parameter list.
type CallFunction struct {
	Position   token.Position
	Fn         *FunctionIdentifiable
	TypeParams []*VariableType
}

func (n *CallFunction) Pos() token.Position { return n.Position }
func (*CallFunction) resolvedNode()         {}

// CallType pushes the zero value of a resolved Type, instantiated with
// Params when Type is generic.
type CallType struct {
	Position token.Position
	Type     *Type
	Params   []*VariableType
}

func (n *CallType) Pos() token.Position { return n.Position }
func (*CallType) resolvedNode()         {}

// CallArgument reads the current function's named argument.
type CallArgument struct {
	Position token.Position
	Name     string
}

func (n *CallArgument) Pos() token.Position { return n.Position }
func (*CallArgument) resolvedNode()         {}

// CallLocalVariable reads a name bound by an enclosing use/assignment
// scope.
type CallLocalVariable struct {
	Position token.Position
	Name     string
}

func (n *CallLocalVariable) Pos() token.Position { return n.Position }
func (*CallLocalVariable) resolvedNode()         {}

// CallEnumConstructor pushes a value of the named enum variant, qualified
// "Enum:variant" at parse time.
type CallEnumConstructor struct {
	Position    token.Position
	EnumType    *Type
	VariantName string
}

func (n *CallEnumConstructor) Pos() token.Position { return n.Position }
func (*CallEnumConstructor) resolvedNode()         {}

// GetFunctionPointer pushes a pointer to a resolved free function.
type GetFunctionPointer struct {
	Position token.Position
	Fn       *FunctionIdentifiable
}

func (n *GetFunctionPointer) Pos() token.Position { return n.Position }
func (*GetFunctionPointer) resolvedNode()         {}

// StructFieldQuery and StructFieldUpdate keep the field name unresolved
// (as a string); it is validated against the struct's actual fields at
// type-check time, once the receiver's type is known.
type StructFieldQuery struct {
	Position  token.Position
	FieldName string
}

func (n *StructFieldQuery) Pos() token.Position { return n.Position }
func (*StructFieldQuery) resolvedNode()         {}

type StructFieldUpdate struct {
	Position  token.Position
	FieldName string
	NewValue  *ResolvedBody
}

func (n *StructFieldUpdate) Pos() token.Position { return n.Position }
func (*StructFieldUpdate) resolvedNode()         {}

type Return struct{ Position token.Position }

func (n *Return) Pos() token.Position { return n.Position }
func (*Return) resolvedNode()         {}

type IndirectCall struct{ Position token.Position }

func (n *IndirectCall) Pos() token.Position { return n.Position }
func (*IndirectCall) resolvedNode()         {}

type Branch struct {
	Position token.Position
	Cond     *ResolvedBody
	IfBody   *ResolvedBody
	ElseBody *ResolvedBody
}

func (n *Branch) Pos() token.Position { return n.Position }
func (*Branch) resolvedNode()         {}

type WhileLoop struct {
	Position token.Position
	Cond     *ResolvedBody
	Body     *ResolvedBody
}

func (n *WhileLoop) Pos() token.Position { return n.Position }
func (*WhileLoop) resolvedNode()         {}

type ForeachLoop struct {
	Position token.Position
	Body     *ResolvedBody
}

func (n *ForeachLoop) Pos() token.Position { return n.Position }
func (*ForeachLoop) resolvedNode()         {}

type UseBlock struct {
	Position  token.Position
	Variables []string
	Body      *ResolvedBody
}

func (n *UseBlock) Pos() token.Position { return n.Position }
func (*UseBlock) resolvedNode()         {}

type Assignment struct {
	Position  token.Position
	Variables []string
	Body      *ResolvedBody
}

func (n *Assignment) Pos() token.Position { return n.Position }
func (*Assignment) resolvedNode()         {}

// CaseBlock is one resolved "case Enum:variant [as a, b]" match arm.
type CaseBlock struct {
	Position    token.Position
	EnumType    *Type
	VariantName string
	Variables   []string
	Body        *ResolvedBody
}

type MatchBlock struct {
	Position    token.Position
	Cases       []CaseBlock
	DefaultBody *ResolvedBody
}

func (n *MatchBlock) Pos() token.Position { return n.Position }
func (*MatchBlock) resolvedNode()         {}
