package xref

import (
	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/types"
)

// resolveImports is Phase B sub-pass 1: follow every Import to its
// target symbol, and detect file-level import cycles via pkg/build's
// DependencyGraph.
func (r *resolver) resolveImports() {
	for _, cycle := range r.buildDependencyGraph().DetectCycles() {
		r.diags.Add(diag.Diagnostic{
			Severity: diag.Error,
			Code:     diag.CodeCircularDependencyError,
			Pos:      r.cycleStartPos(cycle),
			Message:  "import cycle: " + joinCycle(cycle),
		})
	}

	for _, key := range r.table.Keys() {
		id, ok := r.table.Get(key)
		if !ok || r.removed[key] {
			continue
		}
		imp, ok := id.(*types.ImportIdentifiable)
		if !ok {
			continue
		}

		target, ok := r.table.Lookup(imp.SourceFile, imp.OriginalName)
		if !ok {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeImportedItemNotFound,
				Pos:      imp.Position,
				Message:  "no symbol named \"" + imp.OriginalName + "\" in \"" + imp.SourceFile + "\"",
			})
			r.removed[key] = true
			continue
		}
		if _, ok := target.(*types.ImportIdentifiable); ok {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeIndirectImportException,
				Pos:      imp.Position,
				Message:  "\"" + imp.OriginalName + "\" is itself imported in \"" + imp.SourceFile + "\"; imports may not chain",
			})
			r.removed[key] = true
			continue
		}
		imp.Target = target
	}
}

// resolveStructFields is Phase B sub-pass 2. Iterates via symbol-table
// keys (not the structAST map directly) so that diagnostics come out in
// deterministic, source-ordered sequence.
func (r *resolver) resolveStructFields() {
	for _, key := range r.table.Keys() {
		id, ok := r.table.Get(key)
		if !ok || r.removed[key] {
			continue
		}
		ti, ok := id.(*types.TypeIdentifiable)
		if !ok || ti.Kind != types.Struct {
			continue
		}
		s, ok := r.structAST[ti.Type]
		if !ok {
			continue
		}
		placeholders := stringSet(s.Declaration.Literal.Params)
		for _, field := range s.Fields {
			vt, ok := r.resolveTypeLiteral(field.Type, key.File, placeholders, diag.CodeInvalidType)
			if !ok {
				continue
			}
			ti.Fields = append(ti.Fields, types.Field{Name: field.Name, Type: vt})
		}
	}
}

// resolveEnumVariants is Phase B sub-pass 3.
func (r *resolver) resolveEnumVariants() {
	for _, key := range r.table.Keys() {
		id, ok := r.table.Get(key)
		if !ok || r.removed[key] {
			continue
		}
		ti, ok := id.(*types.TypeIdentifiable)
		if !ok || ti.Kind != types.Enum {
			continue
		}
		e, ok := r.enumAST[ti.Type]
		if !ok {
			continue
		}

		seen := make(map[string]ast.EnumVariant)
		for _, v := range e.Variants {
			if prior, dup := seen[v.Name]; dup {
				r.diags.Add(diag.Diagnostic{
					Severity: diag.Error,
					Code:     diag.CodeCollidingEnumVariant,
					Pos:      v.Position,
					Message:  "variant \"" + v.Name + "\" is already defined in enum \"" + e.Name() + "\"",
					Secondary: []diag.SecondaryPos{
						{Pos: prior.Position, Label: "also defined here"},
					},
				})
				continue
			}
			seen[v.Name] = v

			var assoc []*types.VariableType
			ok := true
			for _, lit := range v.AssociatedTypes {
				vt, resolved := r.resolveTypeLiteral(lit, key.File, nil, diag.CodeInvalidEnumType)
				if !resolved {
					ok = false
					break
				}
				assoc = append(assoc, vt)
			}
			if !ok {
				continue
			}
			ti.Variants = append(ti.Variants, types.Variant{Name: v.Name, AssociatedTypes: assoc})
		}
	}
}

// resolveFunctionSignatures is Phase B sub-pass 4.
func (r *resolver) resolveFunctionSignatures() {
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
		if !ok {
			continue
		}

		placeholders := stringSet(fn.Declaration.Name.Params)
		fi.Placeholders = fn.Declaration.Name.Params
		for _, p := range fn.Declaration.Name.Params {
			if _, collides := r.table.Lookup(key.File, p); collides {
				r.diags.Add(diag.Diagnostic{
					Severity: diag.Error,
					Code:     diag.CodeCollidingIdentifier,
					Pos:      fn.Pos(),
					Message:  "generic parameter \"" + p + "\" collides with a file-scope symbol of the same name",
				})
			}
		}

		seenArgs := make(map[string]ast.Argument)
		for _, arg := range fn.Declaration.Arguments {
			if prior, dup := seenArgs[arg.Name]; dup {
				r.diags.Add(diag.Diagnostic{
					Severity: diag.Error,
					Code:     diag.CodeCollidingIdentifier,
					Pos:      arg.Position,
					Message:  "argument \"" + arg.Name + "\" is already declared",
					Secondary: []diag.SecondaryPos{
						{Pos: prior.Position, Label: "also declared here"},
					},
				})
				continue
			}
			seenArgs[arg.Name] = arg
			if _, collides := r.table.Lookup(key.File, arg.Name); collides {
				r.diags.Add(diag.Diagnostic{
					Severity: diag.Error,
					Code:     diag.CodeCollidingIdentifier,
					Pos:      arg.Position,
					Message:  "argument \"" + arg.Name + "\" collides with a file-scope symbol of the same name",
				})
			}
			vt, ok := r.resolveTypeLiteral(arg.Type, key.File, placeholders, diag.CodeInvalidArgument)
			if !ok {
				continue
			}
			fi.Arguments = append(fi.Arguments, types.Field{Name: arg.Name, Type: vt})
		}

		if fn.Declaration.ReturnsNever {
			fi.ReturnsNever = true
			continue
		}

		argPlaceholders := make(map[string]bool)
		for _, arg := range fi.Arguments {
			collectPlaceholders(arg.Type, argPlaceholders)
		}

		reported := make(map[string]bool)
		for _, lit := range fn.Declaration.ReturnTypes {
			vt, ok := r.resolveTypeLiteral(lit, key.File, placeholders, diag.CodeInvalidReturnType)
			if !ok {
				continue
			}
			fi.Returns = append(fi.Returns, vt)

			used := make(map[string]bool)
			collectPlaceholders(vt, used)
			for name := range used {
				if argPlaceholders[name] || reported[name] {
					continue
				}
				reported[name] = true
				r.diags.Add(diag.Diagnostic{
					Severity: diag.Error,
					Code:     diag.CodeUnboundReturnPlaceholder,
					Pos:      lit.Pos(),
					Message:  "generic parameter \"" + name + "\" appears in the return type of \"" + fi.Name + "\" but not in any argument's type",
				})
			}
		}
	}
}

// collectPlaceholders walks vt and records every generic placeholder
// name it references, including placeholders nested inside type
// parameters or a function-pointer's argument/return types.
func collectPlaceholders(vt *types.VariableType, set map[string]bool) {
	if vt == nil {
		return
	}
	if vt.IsPlaceholder {
		set[vt.PlaceholderName] = true
	}
	for _, p := range vt.Params {
		collectPlaceholders(p, set)
	}
	if vt.FnPtr != nil {
		for _, a := range vt.FnPtr.Arguments {
			collectPlaceholders(a, set)
		}
		for _, rtn := range vt.FnPtr.Returns {
			collectPlaceholders(rtn, set)
		}
	}
}

// resolveTypeLiteral resolves a parsed type literal to a VariableType.
// placeholders names the generic parameters in scope (nil for none).
// badCode is the diagnostic code to emit when lit's base name does not
// resolve to a Type (callers use a different code per declaration kind:
// InvalidType for fields, InvalidArgument/InvalidReturnType for
// signatures, InvalidEnumType for enum associated data).
func (r *resolver) resolveTypeLiteral(lit ast.TypeLiteral, file string, placeholders map[string]bool, badCode diag.Code) (*types.VariableType, bool) {
	switch n := lit.(type) {
	case *ast.NamedType:
		if placeholders[n.Name] {
			if len(n.Params) > 0 {
				r.diags.Add(diag.Diagnostic{
					Severity: diag.Error,
					Code:     diag.CodeUnexpectedTypeParameterCount,
					Pos:      n.Pos(),
					Message:  "generic parameter \"" + n.Name + "\" cannot itself be parameterized",
				})
				return nil, false
			}
			return &types.VariableType{IsPlaceholder: true, PlaceholderName: n.Name, IsConst: n.Const}, true
		}

		id, ok := r.lookupAugmented(file, n.Name)
		if !ok {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     badCode,
				Pos:      n.Pos(),
				Message:  "unknown type \"" + n.Name + "\"",
			})
			return nil, false
		}
		ti, ok := id.(*types.TypeIdentifiable)
		if !ok {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     badCode,
				Pos:      n.Pos(),
				Message:  "\"" + n.Name + "\" is not a type",
			})
			return nil, false
		}
		if ti.Arity != len(n.Params) {
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeUnexpectedTypeParameterCount,
				Pos:      n.Pos(),
				Message:  "\"" + n.Name + "\" expects a different number of type parameters",
			})
			return nil, false
		}
		params := make([]*types.VariableType, 0, len(n.Params))
		for _, p := range n.Params {
			pv, ok := r.resolveTypeLiteral(p, file, placeholders, badCode)
			if !ok {
				return nil, false
			}
			params = append(params, pv)
		}
		return &types.VariableType{Type: ti.Type, Params: params, IsConst: n.Const}, true

	case *ast.FunctionPointerType:
		args := make([]*types.VariableType, 0, len(n.ArgumentTypes))
		for _, a := range n.ArgumentTypes {
			av, ok := r.resolveTypeLiteral(a, file, placeholders, badCode)
			if !ok {
				return nil, false
			}
			args = append(args, av)
		}
		fp := &types.FunctionPointerType{Arguments: args, ReturnsNever: n.ReturnsNever}
		if !n.ReturnsNever {
			for _, rt := range n.ReturnTypes {
				rv, ok := r.resolveTypeLiteral(rt, file, placeholders, badCode)
				if !ok {
					return nil, false
				}
				fp.Returns = append(fp.Returns, rv)
			}
		}
		return &types.VariableType{FnPtr: fp}, true
	}
	return nil, false
}

func stringSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}
