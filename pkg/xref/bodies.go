package xref

import (
	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/token"
	"github.com/aaalang/aaac/pkg/types"
)

// bodyScope tracks which names are visible while resolving one function
// body: the function's own arguments, plus a stack of use/assignment
// scopes (innermost last) that close when their body finishes.
type bodyScope struct {
	file      string
	arguments map[string]bool
	locals    [][]string
}

func (s *bodyScope) isArgument(name string) bool { return s.arguments[name] }

func (s *bodyScope) isLocal(name string) bool {
	for i := len(s.locals) - 1; i >= 0; i-- {
		for _, n := range s.locals[i] {
			if n == name {
				return true
			}
		}
	}
	return false
}

func (s *bodyScope) push(names []string) { s.locals = append(s.locals, names) }
func (s *bodyScope) pop()                { s.locals = s.locals[:len(s.locals)-1] }

// resolveBodies is Phase C: walk every resolved function's parsed body,
// producing a parallel resolved tree.
func (r *resolver) resolveBodies() {
	for _, key := range r.table.Keys() {
		id, ok := r.table.Get(key)
		if !ok || r.removed[key] {
			continue
		}
		fi, ok := id.(*types.FunctionIdentifiable)
		if !ok {
			continue
		}
		fn, ok := r.fnAST[fi]
		if !ok || fn.Body == nil {
			continue
		}

		scope := &bodyScope{file: key.File, arguments: make(map[string]bool, len(fi.Arguments))}
		for _, a := range fi.Arguments {
			scope.arguments[a.Name] = true
		}
		fi.Body = r.resolveBody(fn.Body, scope)
	}
}

func (r *resolver) resolveBody(body *ast.FunctionBody, scope *bodyScope) *types.ResolvedBody {
	out := &types.ResolvedBody{Position: body.Pos()}
	for _, item := range body.Items {
		if ri := r.resolveItem(item, scope); ri != nil {
			out.Items = append(out.Items, ri)
		}
	}
	return out
}

func (r *resolver) resolveItem(item ast.Expr, scope *bodyScope) types.ResolvedItem {
	switch n := item.(type) {
	case *ast.Integer:
		return &types.Integer{Position: n.Position, Value: n.Value}
	case *ast.String:
		return &types.String{Position: n.Position, Value: n.Value}
	case *ast.Boolean:
		return &types.Boolean{Position: n.Position, Value: n.Value}
	case *ast.Char:
		return &types.Char{Position: n.Position, Value: n.Value}

	case *ast.FunctionCall:
		return r.resolveCall(n, scope)

	case *ast.GetFunctionPointer:
		id, ok := r.lookupAugmented(scope.file, n.FunctionName)
		fi, isFn := id.(*types.FunctionIdentifiable)
		if !ok || !isFn {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeUnknownIdentifier,
				Pos:      n.Position,
				Message:  "unknown function \"" + n.FunctionName + "\"",
			})
			return nil
		}
		return &types.GetFunctionPointer{Position: n.Position, Fn: fi}

	case *ast.StructFieldQuery:
		return &types.StructFieldQuery{Position: n.Pos(), FieldName: n.FieldName}

	case *ast.StructFieldUpdate:
		return &types.StructFieldUpdate{
			Position:  n.Pos(),
			FieldName: n.FieldName,
			NewValue:  r.resolveBody(n.NewValue, scope),
		}

	case *ast.Return:
		return &types.Return{Position: n.Position}

	case *ast.IndirectCall:
		return &types.IndirectCall{Position: n.Position}

	case *ast.Branch:
		return &types.Branch{
			Position: n.Position,
			Cond:     r.resolveBody(n.Cond, scope),
			IfBody:   r.resolveBody(n.IfBody, scope),
			ElseBody: r.resolveOptionalBody(n.ElseBody, scope),
		}

	case *ast.WhileLoop:
		return &types.WhileLoop{
			Position: n.Position,
			Cond:     r.resolveBody(n.Cond, scope),
			Body:     r.resolveBody(n.Body, scope),
		}

	case *ast.ForeachLoop:
		return &types.ForeachLoop{Position: n.Position, Body: r.resolveBody(n.Body, scope)}

	case *ast.UseBlock:
		r.checkBoundNames(n.Position, n.Variables, scope)
		scope.push(n.Variables)
		body := r.resolveBody(n.Body, scope)
		scope.pop()
		return &types.UseBlock{Position: n.Position, Variables: n.Variables, Body: body}

	case *ast.Assignment:
		r.checkBoundNames(n.Position, n.Variables, scope)
		scope.push(n.Variables)
		body := r.resolveBody(n.Body, scope)
		scope.pop()
		return &types.Assignment{Position: n.Position, Variables: n.Variables, Body: body}

	case *ast.MatchBlock:
		return r.resolveMatch(n, scope)
	}
	return nil
}

func (r *resolver) resolveOptionalBody(body *ast.FunctionBody, scope *bodyScope) *types.ResolvedBody {
	if body == nil {
		return nil
	}
	return r.resolveBody(body, scope)
}

// checkBoundNames reports a CollidingIdentifier for each name in names
// that shadows a file-scope symbol, an argument, or a variable bound by
// a still-open enclosing use/assignment scope. Called before the names
// are pushed onto scope, so scope.isLocal only sees already-open scopes.
func (r *resolver) checkBoundNames(pos token.Position, names []string, scope *bodyScope) {
	for _, name := range names {
		switch {
		case scope.isArgument(name):
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeCollidingIdentifier,
				Pos:      pos,
				Message:  "\"" + name + "\" collides with a function argument of the same name",
			})
		case scope.isLocal(name):
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeCollidingIdentifier,
				Pos:      pos,
				Message:  "\"" + name + "\" collides with a variable of the same name in an enclosing scope",
			})
		default:
			if _, collides := r.table.Lookup(scope.file, name); collides {
				r.diags.Add(diag.Diagnostic{
					Severity: diag.Error,
					Code:     diag.CodeCollidingIdentifier,
					Pos:      pos,
					Message:  "\"" + name + "\" collides with a file-scope symbol of the same name",
				})
			}
		}
	}
}

// resolveCall resolves one parse-level FunctionCall to the discriminated
// ResolvedItem its name actually refers to: a current argument, a
// locally-scoped variable, a function, a type's zero-value constructor,
// or an enum variant constructor.
func (r *resolver) resolveCall(n *ast.FunctionCall, scope *bodyScope) types.ResolvedItem {
	if n.StructName == "" && len(n.TypeParams) == 0 {
		if scope.isArgument(n.FuncName) {
			return &types.CallArgument{Position: n.Position, Name: n.FuncName}
		}
		if scope.isLocal(n.FuncName) {
			return &types.CallLocalVariable{Position: n.Position, Name: n.FuncName}
		}
	}

	key := n.FuncName
	if n.StructName != "" {
		key = n.StructName + ":" + n.FuncName
	}
	if id, ok := r.lookupAugmented(scope.file, key); ok {
		if fi, ok := id.(*types.FunctionIdentifiable); ok {
			params, ok := r.resolveTypeParamList(n.TypeParams, scope.file, diag.CodeInvalidType)
			if !ok {
				return nil
			}
			return &types.CallFunction{Position: n.Position, Fn: fi, TypeParams: params}
		}
	}

	if n.StructName == "" {
		if id, ok := r.lookupAugmented(scope.file, n.FuncName); ok {
			if ti, ok := id.(*types.TypeIdentifiable); ok {
				params, ok := r.resolveTypeParamList(n.TypeParams, scope.file, diag.CodeInvalidType)
				if !ok {
					return nil
				}
				return &types.CallType{Position: n.Position, Type: ti.Type, Params: params}
			}
		}
	} else {
		if id, ok := r.lookupAugmented(scope.file, n.StructName); ok {
			if ti, ok := id.(*types.TypeIdentifiable); ok && ti.Kind == types.Enum {
				if ti.VariantByName(n.FuncName) != nil {
					return &types.CallEnumConstructor{Position: n.Position, EnumType: ti.Type, VariantName: n.FuncName}
				}
				r.diags.Add(diag.Diagnostic{
					Severity: diag.Error,
					Code:     diag.CodeInvalidEnumVariant,
					Pos:      n.Position,
					Message:  "enum \"" + n.StructName + "\" has no variant \"" + n.FuncName + "\"",
				})
				return nil
			}
		}
	}

	r.diags.Add(diag.Diagnostic{
		Severity: diag.Error,
		Code:     diag.CodeUnknownIdentifier,
		Pos:      n.Position,
		Message:  "unknown identifier \"" + n.Name() + "\"",
	})
	return nil
}

func (r *resolver) resolveTypeParamList(lits []ast.TypeLiteral, file string, badCode diag.Code) ([]*types.VariableType, bool) {
	if len(lits) == 0 {
		return nil, true
	}
	out := make([]*types.VariableType, 0, len(lits))
	for _, lit := range lits {
		vt, ok := r.resolveTypeLiteral(lit, file, nil, badCode)
		if !ok {
			return nil, false
		}
		out = append(out, vt)
	}
	return out, true
}

func (r *resolver) resolveMatch(n *ast.MatchBlock, scope *bodyScope) types.ResolvedItem {
	out := &types.MatchBlock{Position: n.Position}
	for _, c := range n.Cases {
		id, ok := r.lookupAugmented(scope.file, c.Label.EnumName)
		if !ok {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeInvalidEnumType,
				Pos:      c.Label.Position,
				Message:  "unknown enum \"" + c.Label.EnumName + "\"",
			})
			continue
		}
		ti, ok := id.(*types.TypeIdentifiable)
		if !ok || ti.Kind != types.Enum {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeInvalidEnumType,
				Pos:      c.Label.Position,
				Message:  "\"" + c.Label.EnumName + "\" is not an enum",
			})
			continue
		}
		variant := ti.VariantByName(c.Label.VariantName)
		if variant == nil {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeInvalidEnumVariant,
				Pos:      c.Label.Position,
				Message:  "enum \"" + c.Label.EnumName + "\" has no variant \"" + c.Label.VariantName + "\"",
			})
			continue
		}

		r.checkBoundNames(c.Label.Position, c.Label.Variables, scope)
		scope.push(c.Label.Variables)
		body := r.resolveBody(c.Body, scope)
		scope.pop()

		out.Cases = append(out.Cases, types.CaseBlock{
			Position:    c.Position,
			EnumType:    ti.Type,
			VariantName: c.Label.VariantName,
			Variables:   c.Label.Variables,
			Body:        body,
		})
	}
	out.DefaultBody = r.resolveOptionalBody(n.DefaultBody, scope)
	return out
}
