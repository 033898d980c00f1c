package typecheck

import "github.com/aaalang/aaac/pkg/types"

type frameBinding struct {
	name string
	typ  *types.VariableType
}

// localScope tracks the types of the current function's arguments and its
// stack of open use/assignment scopes, innermost last.
type localScope struct {
	arguments map[string]*types.VariableType
	frames    [][]frameBinding
}

func (s *localScope) lookup(name string) (*types.VariableType, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		frame := s.frames[i]
		for j := len(frame) - 1; j >= 0; j-- {
			if frame[j].name == name {
				return frame[j].typ, true
			}
		}
	}
	t, ok := s.arguments[name]
	return t, ok
}

func (s *localScope) push(bindings []frameBinding) { s.frames = append(s.frames, bindings) }
func (s *localScope) pop()                         { s.frames = s.frames[:len(s.frames)-1] }
