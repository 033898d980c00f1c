package typecheck

import (
	"strings"

	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/token"
	"github.com/aaalang/aaac/pkg/types"
)

func equalStacks(a, b []*types.VariableType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func stackString(s []*types.VariableType) string {
	if len(s) == 0 {
		return "[]"
	}
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// applySignature pops len(args) items off stack, unifies them against
// args (accumulating a placeholder substitution seeded from explicit),
// and pushes the substituted return types. On failure it emits
// diag.CodeStackTypesError at pos and returns (stack, false) unchanged.
func (c *checker) applySignature(pos token.Position, calleeName string, placeholders []string, explicit []*types.VariableType, args []*types.VariableType, returns []*types.VariableType, stack []*types.VariableType) ([]*types.VariableType, bool) {
	n := len(args)
	if len(stack) < n {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeStackTypesError,
			Pos:      pos,
			Message:  "call to \"" + calleeName + "\" expects " + stackString(args) + " but stack is only " + stackString(stack),
		})
		return stack, false
	}

	subst := make(map[string]*types.VariableType, len(placeholders))
	for i, ph := range placeholders {
		if i < len(explicit) {
			subst[ph] = explicit[i]
		}
	}

	top := stack[len(stack)-n:]
	for i := range args {
		if !unify(args[i], top[i], subst) {
			c.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeStackTypesError,
				Pos:      pos,
				Message: "call to \"" + calleeName + "\" expects " + stackString(args) +
					" but found " + stackString(top),
			})
			return stack, false
		}
	}

	result := append([]*types.VariableType{}, stack[:len(stack)-n]...)
	for _, rt := range returns {
		result = append(result, substitute(rt, subst))
	}
	return result, true
}

// unify matches expected (possibly containing placeholders) against the
// concrete actual type, recording/checking placeholder bindings in subst.
func unify(expected, actual *types.VariableType, subst map[string]*types.VariableType) bool {
	if expected == nil || actual == nil {
		return expected == actual
	}
	if expected.IsPlaceholder {
		if bound, ok := subst[expected.PlaceholderName]; ok {
			return bound.Equal(actual)
		}
		subst[expected.PlaceholderName] = actual
		return true
	}
	if expected.FnPtr != nil || actual.FnPtr != nil {
		if expected.FnPtr == nil || actual.FnPtr == nil {
			return false
		}
		return unifyFnPtr(expected.FnPtr, actual.FnPtr, subst)
	}
	if expected.Type != actual.Type || len(expected.Params) != len(actual.Params) {
		return false
	}
	for i := range expected.Params {
		if !unify(expected.Params[i], actual.Params[i], subst) {
			return false
		}
	}
	return true
}

func unifyFnPtr(expected, actual *types.FunctionPointerType, subst map[string]*types.VariableType) bool {
	if expected.ReturnsNever != actual.ReturnsNever ||
		len(expected.Arguments) != len(actual.Arguments) ||
		len(expected.Returns) != len(actual.Returns) {
		return false
	}
	for i := range expected.Arguments {
		if !unify(expected.Arguments[i], actual.Arguments[i], subst) {
			return false
		}
	}
	for i := range expected.Returns {
		if !unify(expected.Returns[i], actual.Returns[i], subst) {
			return false
		}
	}
	return true
}

// substitute applies subst to every placeholder reachable from vt,
// producing a fully concrete VariableType.
func substitute(vt *types.VariableType, subst map[string]*types.VariableType) *types.VariableType {
	if vt == nil {
		return nil
	}
	if vt.IsPlaceholder {
		if bound, ok := subst[vt.PlaceholderName]; ok {
			return bound
		}
		return vt
	}
	if vt.FnPtr != nil {
		args := make([]*types.VariableType, len(vt.FnPtr.Arguments))
		for i, a := range vt.FnPtr.Arguments {
			args[i] = substitute(a, subst)
		}
		var rets []*types.VariableType
		for _, r := range vt.FnPtr.Returns {
			rets = append(rets, substitute(r, subst))
		}
		return &types.VariableType{FnPtr: &types.FunctionPointerType{Arguments: args, Returns: rets, ReturnsNever: vt.FnPtr.ReturnsNever}}
	}
	if len(vt.Params) == 0 {
		return vt
	}
	params := make([]*types.VariableType, len(vt.Params))
	for i, p := range vt.Params {
		params[i] = substitute(p, subst)
	}
	return &types.VariableType{Type: vt.Type, Params: params, IsConst: vt.IsConst}
}
