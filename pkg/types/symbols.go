package types

import "github.com/aaalang/aaac/pkg/token"

// Identifiable is anything that can be named at file scope: a Type, a
// Function, or an Import. The concrete variants below are the closed
// set; a type switch is the idiomatic way to inspect one.
type Identifiable interface {
	Pos() token.Position
	identifiableNode()
}

// TypeIdentifiable is a struct, enum, or builtin primitive declaration.
type TypeIdentifiable struct {
	*Type
}

func (t *TypeIdentifiable) Pos() token.Position { return t.Position }
func (*TypeIdentifiable) identifiableNode()     {}

// FunctionIdentifiable is a resolved function declaration. Body is filled
// in during Phase C; it is nil for a builtin function and during Phase B
// while only the signature has been resolved.
type FunctionIdentifiable struct {
	Name         string // qualified: "Type:func" or "func"
	File         string
	Position     token.Position
	IsBuiltin    bool
	Placeholders []string // this function's own generic parameter names
	Arguments    []Field
	Returns      []*VariableType
	ReturnsNever bool
	Body         *ResolvedBody
}

func (f *FunctionIdentifiable) Pos() token.Position { return f.Position }
func (*FunctionIdentifiable) identifiableNode()     {}

// ArgumentType returns the VariableType of the argument named name, or
// nil if there is none.
func (f *FunctionIdentifiable) ArgumentType(name string) *VariableType {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a.Type
		}
	}
	return nil
}

// ImportIdentifiable is one imported name; Target is the Identifiable it
// resolved to in its defining file (never another ImportIdentifiable).
type ImportIdentifiable struct {
	Position     token.Position
	SourceFile   string
	OriginalName string
	Target       Identifiable
}

func (i *ImportIdentifiable) Pos() token.Position { return i.Position }
func (*ImportIdentifiable) identifiableNode()     {}

// Key identifies one symbol-table entry: the file it was declared in and
// its local name (a member function's local name is "Type:func").
type Key struct {
	File string
	Name string
}

// Table is the program symbol table: map<(file, name) -> Identifiable>.
type Table struct {
	entries map[Key]Identifiable
	order   []Key // insertion order, for deterministic iteration
}

// NewTable creates an empty symbol table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]Identifiable)}
}

// Insert adds id under key. It reports false (without modifying the
// table) when the key is already occupied: the cross-referencer reports
// a CollidingIdentifier and drops the second declaration.
func (t *Table) Insert(key Key, id Identifiable) bool {
	if _, exists := t.entries[key]; exists {
		return false
	}
	t.entries[key] = id
	t.order = append(t.order, key)
	return true
}

// Lookup finds the Identifiable declared as name in file.
func (t *Table) Lookup(file, name string) (Identifiable, bool) {
	id, ok := t.entries[Key{File: file, Name: name}]
	return id, ok
}

// Keys returns every key in insertion order.
func (t *Table) Keys() []Key {
	return t.order
}

// Get resolves a key directly.
func (t *Table) Get(key Key) (Identifiable, bool) {
	id, ok := t.entries[key]
	return id, ok
}
