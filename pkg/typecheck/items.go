package typecheck

import (
	"strconv"

	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/token"
	"github.com/aaalang/aaac/pkg/types"
)

// checkBody walks every item in body in order, threading the abstract
// stack through each one. It returns the final stack and whether the
// walk completed without a fatal stack-shape error (a fatal error
// still lets sibling items in the function continue checking, but
// stops the enclosing construct from being compared further).
func (c *checker) checkBody(body *types.ResolvedBody, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	ok := true
	for _, item := range body.Items {
		var itemOK bool
		stack, itemOK = c.checkItem(item, stack, scope, fi)
		ok = ok && itemOK
	}
	return stack, ok
}

func (c *checker) checkItem(item types.ResolvedItem, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	switch n := item.(type) {
	case *types.Integer:
		return append(stack, c.builtinVarType("int")), true
	case *types.String:
		return append(stack, c.builtinVarType("str")), true
	case *types.Boolean:
		return append(stack, c.builtinVarType("bool")), true
	case *types.Char:
		return append(stack, c.builtinVarType("char")), true

	case *types.CallArgument:
		vt, ok := scope.lookup(n.Name)
		if !ok {
			vt = fi.ArgumentType(n.Name)
		}
		return append(stack, vt), true

	case *types.CallLocalVariable:
		vt, _ := scope.lookup(n.Name)
		return append(stack, vt), true

	case *types.CallType:
		return append(stack, &types.VariableType{Type: n.Type, Params: n.Params}), true

	case *types.CallEnumConstructor:
		return append(stack, &types.VariableType{Type: n.EnumType}), true

	case *types.GetFunctionPointer:
		fnPtr := &types.FunctionPointerType{
			ReturnsNever: n.Fn.ReturnsNever,
		}
		for _, a := range n.Fn.Arguments {
			fnPtr.Arguments = append(fnPtr.Arguments, a.Type)
		}
		fnPtr.Returns = append(fnPtr.Returns, n.Fn.Returns...)
		return append(stack, &types.VariableType{FnPtr: fnPtr}), true

	case *types.CallFunction:
		args := make([]*types.VariableType, len(n.Fn.Arguments))
		for i, a := range n.Fn.Arguments {
			args[i] = a.Type
		}
		result, ok := c.applySignature(n.Position, n.Fn.Name, n.Fn.Placeholders, n.TypeParams, args, n.Fn.Returns, stack)
		return result, ok

	case *types.IndirectCall:
		return c.checkIndirectCall(n, stack)

	case *types.Return:
		return c.checkReturn(n, stack, fi)

	case *types.Branch:
		return c.checkBranch(n, stack, scope, fi)

	case *types.WhileLoop:
		return c.checkWhile(n, stack, scope, fi)

	case *types.ForeachLoop:
		return c.checkForeach(n, stack, scope, fi)

	case *types.UseBlock:
		return c.checkUse(n, stack, scope, fi)

	case *types.Assignment:
		return c.checkAssignment(n, stack, scope, fi)

	case *types.StructFieldQuery:
		return c.checkFieldQuery(n, stack)

	case *types.StructFieldUpdate:
		return c.checkFieldUpdate(n, stack, scope, fi)

	case *types.MatchBlock:
		return c.checkMatch(n, stack, scope, fi)
	}
	return stack, true
}

func (c *checker) checkIndirectCall(n *types.IndirectCall, stack []*types.VariableType) ([]*types.VariableType, bool) {
	if len(stack) == 0 || stack[len(stack)-1].FnPtr == nil {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStackTypesError,
			Pos:      n.Position,
			Message:  "\"call\" requires a function pointer on top of the stack, found " + stackString(stack),
		})
		return stack, false
	}
	fnPtr := stack[len(stack)-1].FnPtr
	rest := stack[:len(stack)-1]
	return c.applySignature(n.Position, "call", nil, nil, fnPtr.Arguments, fnPtr.Returns, rest)
}

func (c *checker) checkReturn(n *types.Return, stack []*types.VariableType, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	expected := fi.Returns
	if fi.ReturnsNever {
		expected = nil
	}
	if !equalStacks(stack, expected) {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeFunctionTypeError,
			Pos:      n.Position,
			Message:  "\"return\" expects " + stackString(expected) + " but stack is " + stackString(stack),
		})
		return stack, false
	}
	return stack, true
}

func (c *checker) checkCondition(pos token.Position, cond *types.ResolvedBody, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	condStack, ok := c.checkBody(cond, stack, scope, fi)
	if !ok {
		return stack, false
	}
	if len(condStack) != len(stack)+1 || !equalStacks(condStack[:len(stack)], stack) || !c.isBuiltin(condStack[len(condStack)-1], "bool") {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeConditionTypeError,
			Pos:      pos,
			Message:  "condition must push exactly one bool onto " + stackString(stack) + ", found " + stackString(condStack),
		})
		return stack, false
	}
	return stack, true
}

func (c *checker) checkBranch(n *types.Branch, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	stack, ok := c.checkCondition(n.Position, n.Cond, stack, scope, fi)
	if !ok {
		return stack, false
	}
	ifStack, ifOK := c.checkBody(n.IfBody, stack, scope, fi)
	elseStack := stack
	elseOK := true
	if n.ElseBody != nil {
		elseStack, elseOK = c.checkBody(n.ElseBody, stack, scope, fi)
	}
	if !ifOK || !elseOK {
		return stack, false
	}
	if !equalStacks(ifStack, elseStack) {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeBranchTypeError,
			Pos:      n.Position,
			Message:  "if/else branches produce different stacks: " + stackString(ifStack) + " vs " + stackString(elseStack),
		})
		return stack, false
	}
	return ifStack, true
}

func (c *checker) checkWhile(n *types.WhileLoop, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	stack, ok := c.checkCondition(n.Position, n.Cond, stack, scope, fi)
	if !ok {
		return stack, false
	}
	bodyStack, bodyOK := c.checkBody(n.Body, stack, scope, fi)
	if !bodyOK {
		return stack, false
	}
	if !equalStacks(bodyStack, stack) {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeLoopTypeError,
			Pos:      n.Position,
			Message:  "loop body must leave the stack as " + stackString(stack) + ", produced " + stackString(bodyStack),
		})
		return stack, false
	}
	return stack, true
}

// checkForeach requires the iterable on top of stack, resolves its
// iter/const_iter member to get an iterator type, resolves that
// iterator's next member to get the per-iteration bindings, and checks
// the body against the stack with those bindings pushed.
func (c *checker) checkForeach(n *types.ForeachLoop, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	if len(stack) == 0 || stack[len(stack)-1].Type == nil {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStackTypesError,
			Pos:      n.Position,
			Message:  "\"foreach\" requires an iterable on top of the stack, found " + stackString(stack),
		})
		return stack, false
	}
	iterable := stack[len(stack)-1]
	rest := stack[:len(stack)-1]

	iterMember := "iter"
	if iterable.IsConst {
		iterMember = "const_iter"
	}
	iterFn, ok := c.memberFunction(iterable.Type, iterMember)
	if !ok || len(iterFn.Returns) != 1 {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStackTypesError,
			Pos:      n.Position,
			Message:  "type \"" + iterable.Type.Name + "\" has no \"" + iterMember + "\" member producing an iterator",
		})
		return stack, false
	}
	subst := iterable.Type.Instantiation(iterable.Params)
	iteratorType := substitute(iterFn.Returns[0], subst)

	nextFn, ok := c.memberFunction(iteratorType.Type, "next")
	if !ok || len(nextFn.Returns) == 0 || !c.isBuiltin(nextFn.Returns[0], "bool") {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStackTypesError,
			Pos:      n.Position,
			Message:  "iterator type \"" + iteratorType.Type.Name + "\" has no valid \"next\" member",
		})
		return stack, false
	}
	nextSubst := iteratorType.Type.Instantiation(iteratorType.Params)
	bindings := rest
	for _, rt := range nextFn.Returns[1:] {
		bindings = append(bindings, substitute(rt, nextSubst))
	}

	bodyStack, bodyOK := c.checkBody(n.Body, bindings, scope, fi)
	if !bodyOK {
		return stack, false
	}
	if !equalStacks(bodyStack, bindings) {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeLoopTypeError,
			Pos:      n.Position,
			Message:  "foreach body must leave the stack as " + stackString(bindings) + ", produced " + stackString(bodyStack),
		})
		return stack, false
	}
	return rest, true
}

func (c *checker) memberFunction(owner *types.Type, name string) (*types.FunctionIdentifiable, bool) {
	id, ok := c.table.Lookup(owner.File, owner.Name+":"+name)
	if !ok {
		return nil, false
	}
	fi, ok := id.(*types.FunctionIdentifiable)
	return fi, ok
}

func (c *checker) checkUse(n *types.UseBlock, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	if len(stack) < len(n.Variables) {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStackTypesError,
			Pos:      n.Position,
			Message:  "\"use\" binds " + strconv.Itoa(len(n.Variables)) + " names but stack only has " + stackString(stack),
		})
		return stack, false
	}
	split := len(stack) - len(n.Variables)
	top := stack[split:]
	frame := make([]frameBinding, len(n.Variables))
	for i, name := range n.Variables {
		frame[i] = frameBinding{name: name, typ: top[i]}
	}
	scope.push(frame)
	bodyStack, ok := c.checkBody(n.Body, stack[:split], scope, fi)
	scope.pop()
	return bodyStack, ok
}

// checkAssignment checks the body against the full current stack, then
// requires it added exactly N new values on top of the unchanged
// prefix (StructUpdateStackError style), then checks each new value's
// type against the already-bound variable's recorded type
// (StructUpdateTypeError). The net stack is unchanged.
func (c *checker) checkAssignment(n *types.Assignment, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	bodyStack, ok := c.checkBody(n.Body, stack, scope, fi)
	if !ok {
		return stack, false
	}
	if len(bodyStack) != len(stack)+len(n.Variables) || !equalStacks(bodyStack[:len(stack)], stack) {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStructUpdateStackError,
			Pos:      n.Position,
			Message:  "assignment body must push exactly " + strconv.Itoa(len(n.Variables)) + " new value(s) onto " + stackString(stack) + ", produced " + stackString(bodyStack),
		})
		return stack, false
	}
	newValues := bodyStack[len(stack):]
	for i, name := range n.Variables {
		existing, ok := scope.lookup(name)
		if !ok {
			existing = fi.ArgumentType(name)
		}
		if existing != nil && !existing.Equal(newValues[i]) {
			c.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeStructUpdateTypeError,
				Pos:      n.Position,
				Message:  "cannot assign " + newValues[i].String() + " to \"" + name + "\" of type " + existing.String(),
			})
			return stack, false
		}
	}
	return stack, true
}

func (c *checker) checkFieldQuery(n *types.StructFieldQuery, stack []*types.VariableType) ([]*types.VariableType, bool) {
	if len(stack) == 0 || stack[len(stack)-1].Type == nil || stack[len(stack)-1].Type.Kind != types.Struct {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeUnknownField,
			Pos:      n.Position,
			Message:  "\"" + n.FieldName + "\" queried on a non-struct stack top " + stackString(stack),
		})
		return stack, false
	}
	recv := stack[len(stack)-1]
	field := recv.Type.FieldByName(n.FieldName)
	if field == nil {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeUnknownField,
			Pos:      n.Position,
			Message:  "type \"" + recv.Type.Name + "\" has no field \"" + n.FieldName + "\"",
		})
		return stack, false
	}
	subst := recv.Type.Instantiation(recv.Params)
	result := append(stack[:len(stack)-1], substitute(field.Type, subst))
	return result, true
}

func (c *checker) checkFieldUpdate(n *types.StructFieldUpdate, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	if len(stack) == 0 || stack[len(stack)-1].Type == nil || stack[len(stack)-1].Type.Kind != types.Struct {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeUnknownField,
			Pos:      n.Position,
			Message:  "\"" + n.FieldName + "\" updated on a non-struct stack top " + stackString(stack),
		})
		return stack, false
	}
	recv := stack[len(stack)-1]
	field := recv.Type.FieldByName(n.FieldName)
	if field == nil {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeUnknownField,
			Pos:      n.Position,
			Message:  "type \"" + recv.Type.Name + "\" has no field \"" + n.FieldName + "\"",
		})
		return stack, false
	}
	bodyStack, ok := c.checkBody(n.NewValue, stack[:len(stack)-1], scope, fi)
	if !ok {
		return stack, false
	}
	subst := recv.Type.Instantiation(recv.Params)
	wantType := substitute(field.Type, subst)
	if len(bodyStack) != len(stack) || !wantType.Equal(bodyStack[len(bodyStack)-1]) {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStructUpdateTypeError,
			Pos:      n.Position,
			Message:  "field \"" + n.FieldName + "\" update must push exactly one " + wantType.String() + ", produced " + stackString(bodyStack[len(stack)-1:]),
		})
		return stack, false
	}
	return stack, true
}

// checkMatch requires an enum on top of stack, pops it, and checks each
// case body (with its variant's associated types pushed as bindings)
// and the optional default body all produce identical stacks. A match
// with no default that omits a variant is reported the same way as an
// arm-stack mismatch: both mean the set of branches does not agree.
func (c *checker) checkMatch(n *types.MatchBlock, stack []*types.VariableType, scope *localScope, fi *types.FunctionIdentifiable) ([]*types.VariableType, bool) {
	if len(stack) == 0 || stack[len(stack)-1].Type == nil || stack[len(stack)-1].Type.Kind != types.Enum {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStackTypesError,
			Pos:      n.Position,
			Message:  "\"match\" requires an enum on top of the stack, found " + stackString(stack),
		})
		return stack, false
	}
	enumType := stack[len(stack)-1].Type
	rest := stack[:len(stack)-1]

	var resultStack []*types.VariableType
	haveResult := false
	allOK := true

	for _, arm := range n.Cases {
		variant := enumType.VariantByName(arm.VariantName)
		frame := make([]frameBinding, len(arm.Variables))
		for i, name := range arm.Variables {
			var vt *types.VariableType
			if variant != nil && i < len(variant.AssociatedTypes) {
				vt = variant.AssociatedTypes[i]
			}
			frame[i] = frameBinding{name: name, typ: vt}
		}
		scope.push(frame)
		armStack, ok := c.checkBody(arm.Body, rest, scope, fi)
		scope.pop()
		if !ok {
			allOK = false
			continue
		}
		if !haveResult {
			resultStack = armStack
			haveResult = true
		} else if !equalStacks(resultStack, armStack) {
			allOK = false
		}
	}

	if n.DefaultBody != nil {
		defStack, ok := c.checkBody(n.DefaultBody, rest, scope, fi)
		if !ok {
			allOK = false
		} else if !haveResult {
			resultStack = defStack
			haveResult = true
		} else if !equalStacks(resultStack, defStack) {
			allOK = false
		}
	} else if len(n.Cases) < len(enumType.Variants) {
		allOK = false
	}

	if !allOK {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeBranchTypeError,
			Pos:      n.Position,
			Message:  "\"match\" arms on \"" + enumType.Name + "\" must cover every variant and produce identical stacks",
		})
		return stack, false
	}
	return resultStack, true
}

