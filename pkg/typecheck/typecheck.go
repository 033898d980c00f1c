// Package typecheck is the type checker: for each resolved function it
// walks an abstract type stack through the body, applying each item's
// stack effect, and requires the final stack match the declared return
// types.
package typecheck

import (
	"strings"

	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/types"
)

// Result is the type checker's output: every diagnostic accumulated
// across every function.
type Result struct {
	Diags diag.List
}

type checker struct {
	table        *types.Table
	builtinsPath string
	diags        diag.List
}

// Run type-checks every non-builtin function in table.
func Run(table *types.Table, builtinsPath string) Result {
	c := &checker{table: table, builtinsPath: builtinsPath}
	for _, key := range table.Keys() {
		id, ok := table.Get(key)
		if !ok {
			continue
		}
		fi, ok := id.(*types.FunctionIdentifiable)
		if !ok || fi.IsBuiltin || fi.Body == nil {
			continue
		}
		c.checkFunction(fi)
	}
	return Result{Diags: c.diags}
}

func (c *checker) checkFunction(fi *types.FunctionIdentifiable) {
	if fi.Name == "main" {
		c.checkMainSignature(fi)
	}
	if owner, ok := c.memberOwner(fi); ok {
		c.checkMemberSignature(fi, owner)
	}

	scope := &localScope{arguments: make(map[string]*types.VariableType, len(fi.Arguments))}
	for _, a := range fi.Arguments {
		scope.arguments[a.Name] = a.Type
	}

	final, ok := c.checkBody(fi.Body, nil, scope, fi)
	if !ok {
		return
	}

	expected := fi.Returns
	if fi.ReturnsNever {
		expected = nil
	}
	if !equalStacks(final, expected) {
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeFunctionTypeError,
			Pos:      fi.Position,
			Message: "function \"" + fi.Name + "\" declares return types " + stackString(expected) +
				" but its body produces " + stackString(final),
		})
	}
}

// memberOwner returns the Type identifiable fi is declared against, when
// fi's qualified name is "Type:func". A qualified name whose prefix
// resolves (directly, or via an import) to a type declared in a
// different file is rejected with a diagnostic instead of being
// silently treated as a plain function: the key of a member function
// "T:f" must be defined in the same file as T.
func (c *checker) memberOwner(fi *types.FunctionIdentifiable) (*types.TypeIdentifiable, bool) {
	idx := strings.IndexByte(fi.Name, ':')
	if idx < 0 {
		return nil, false
	}
	typeName := fi.Name[:idx]
	id, ok := c.table.Lookup(fi.File, typeName)
	if !ok {
		return nil, false
	}

	if imp, ok := id.(*types.ImportIdentifiable); ok {
		ti, ok := imp.Target.(*types.TypeIdentifiable)
		if !ok {
			return nil, false
		}
		c.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeInvalidMemberFunctionSignature,
			Pos:      fi.Position,
			Message: "member function \"" + fi.Name + "\" must be declared in the same file as \"" +
				typeName + "\" (imported from \"" + ti.File + "\")",
		})
		return nil, false
	}

	ti, ok := id.(*types.TypeIdentifiable)
	if !ok {
		return nil, false
	}
	return ti, true
}

func (c *checker) checkMemberSignature(fi *types.FunctionIdentifiable, owner *types.TypeIdentifiable) {
	ok := len(fi.Arguments) > 0 && fi.Arguments[0].Type.Type == owner.Type &&
		len(fi.Returns) > 0 && fi.Returns[0].Type == owner.Type
	if ok {
		return
	}
	c.diags.Add(diag.Diagnostic{
		Severity: diag.Error,
		Code:     diag.CodeInvalidMemberFunctionSignature,
		Pos:      fi.Position,
		Message:  "member function \"" + fi.Name + "\" must take and return \"" + owner.Name + "\" as its first argument and first return value",
	})
}

func (c *checker) checkMainSignature(fi *types.FunctionIdentifiable) {
	argsOK := len(fi.Arguments) == 0 || (len(fi.Arguments) == 1 && c.isVecOfStr(fi.Arguments[0].Type))
	returnsOK := len(fi.Returns) == 0 || (len(fi.Returns) == 1 && c.isBuiltin(fi.Returns[0], "int"))
	if argsOK && returnsOK {
		return
	}
	c.diags.Add(diag.Diagnostic{
		Severity: diag.Error,
		Code:     diag.CodeInvalidMainSignuture,
		Pos:      fi.Position,
		Message:  "\"main\" must take no arguments (or a single vec[str]) and return nothing (or a single int)",
	})
}

func (c *checker) isVecOfStr(vt *types.VariableType) bool {
	return vt.Type != nil && vt.Type.Name == "vec" && len(vt.Params) == 1 && c.isBuiltin(vt.Params[0], "str")
}

func (c *checker) isBuiltin(vt *types.VariableType, name string) bool {
	return vt.Type != nil && vt.Type.Name == name
}

// builtinVarType resolves a primitive type by name in the builtins file.
func (c *checker) builtinVarType(name string) *types.VariableType {
	id, ok := c.table.Lookup(c.builtinsPath, name)
	if !ok {
		return nil
	}
	ti, ok := id.(*types.TypeIdentifiable)
	if !ok {
		return nil
	}
	return &types.VariableType{Type: ti.Type}
}
