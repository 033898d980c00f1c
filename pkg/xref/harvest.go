package xref

import (
	"path/filepath"
	"sort"

	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/token"
	"github.com/aaalang/aaac/pkg/types"
)

type harvestItem struct {
	pos token.Position
	key types.Key
	id  types.Identifiable
}

// harvest walks every parsed file, building one Identifiable per
// top-level declaration (and one Import entry per imported item), and
// inserts them into the symbol table in source-position order so that
// collisions are reported in the order they appear on screen regardless
// of which declaration kind comes first in the grammar.
func (r *resolver) harvest() {
	for _, path := range r.program.Paths() {
		sf, ok := r.program.Get(path)
		if !ok {
			continue
		}
		r.harvestFile(sf)
	}
}

func (r *resolver) harvestFile(sf *ast.SourceFile) {
	var items []harvestItem

	for _, s := range sf.Structs {
		kind := types.Struct
		if s.IsBuiltin {
			kind = types.Builtin
		}
		t := &types.Type{
			Kind:       kind,
			Name:       s.Name(),
			File:       sf.Path,
			Position:   s.Pos(),
			Arity:      len(s.Declaration.Literal.Params),
			ParamNames: s.Declaration.Literal.Params,
		}
		r.structAST[t] = s
		items = append(items, harvestItem{
			pos: s.Pos(),
			key: types.Key{File: sf.Path, Name: s.Name()},
			id:  &types.TypeIdentifiable{Type: t},
		})
	}

	for _, e := range sf.Enums {
		t := &types.Type{
			Kind:     types.Enum,
			Name:     e.Name(),
			File:     sf.Path,
			Position: e.Pos(),
		}
		r.enumAST[t] = e
		items = append(items, harvestItem{
			pos: e.Pos(),
			key: types.Key{File: sf.Path, Name: e.Name()},
			id:  &types.TypeIdentifiable{Type: t},
		})
	}

	for _, fn := range sf.Functions {
		fi := &types.FunctionIdentifiable{
			Name:      fn.Name(),
			File:      sf.Path,
			Position:  fn.Pos(),
			IsBuiltin: fn.IsBuiltin,
		}
		r.fnAST[fi] = fn
		items = append(items, harvestItem{
			pos: fn.Pos(),
			key: types.Key{File: sf.Path, Name: fn.Name()},
			id:  fi,
		})
	}

	for _, imp := range sf.Imports {
		sourcePath := resolveImportSource(imp, filepath.Dir(sf.Path))
		for _, item := range imp.Items {
			ii := &types.ImportIdentifiable{
				Position:     item.Position,
				SourceFile:   sourcePath,
				OriginalName: item.Original,
			}
			items = append(items, harvestItem{
				pos: item.Position,
				key: types.Key{File: sf.Path, Name: item.Imported},
				id:  ii,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].pos, items[j].pos
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	for _, it := range items {
		if !r.table.Insert(it.key, it.id) {
			existing, _ := r.table.Get(it.key)
			r.diags.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.CodeCollidingIdentifier,
				Pos:      it.pos,
				Message:  "\"" + it.key.Name + "\" is already defined in this file",
				Secondary: []diag.SecondaryPos{
					{Pos: existing.Pos(), Label: "also defined here"},
				},
			})
		}
	}
}
