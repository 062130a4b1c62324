package runtime

import (
	"sort"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/types"
)

// Symbol is a named entity bound in a Scope: a *Variable, *Function or *Namespace.
type Symbol interface {
	SymbolKind() string
	isSymbol()
}

// Variable is a mutable value cell. Captured scopes share the same cell.
type Variable struct {
	Name  string
	Scope *Scope
	Type  types.DataType
	Value Value
}

func (*Variable) SymbolKind() string { return "variable" }
func (*Variable) isSymbol()          {}

// Function is a (possibly anonymous) function closed over the scope it was
// defined in.
type Function struct {
	Scope      *Scope
	Name       string
	Params     []*ast.Parameter
	ReturnType types.DataType
	Body       *ast.BlockExpression
}

func (*Function) SymbolKind() string { return "function" }
func (*Function) isSymbol()          {}

// DisplayName is the quoted name used in messages, or <anonymous>.
func (f *Function) DisplayName() string {
	if f.Name == "" {
		return "<anonymous>"
	}
	return f.Name
}

// Type returns the lambda type of the function.
func (f *Function) Type() types.Function {
	params := make([]types.DataType, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return types.Function{Params: params, Returns: f.ReturnType}
}

// Namespace binds another module's root scope under a name.
type Namespace struct {
	Name  string
	Scope *Scope
}

func (*Namespace) SymbolKind() string { return "namespace" }
func (*Namespace) isSymbol()          {}

// RecordField is one declared field of a record type.
type RecordField struct {
	Name string
	Type types.DataType
}

// RecordType is a user-defined complex type.
type RecordType struct {
	Name   string
	Fields []RecordField
	Line   int
}

// Field returns the declared field with the given name.
func (r *RecordType) Field(name string) (RecordField, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return RecordField{}, false
}

// Scope provides lexical scoping for Avo symbols and record types.
type Scope struct {
	symbols map[string]Symbol
	records map[string]*RecordType
	parent  *Scope
}

// NewScope creates a new scope, optionally nested under a parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		symbols: make(map[string]Symbol),
		records: make(map[string]*RecordType),
		parent:  parent,
	}
}

// Parent exposes the lexical parent (nil at the root).
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Has reports whether name is bound in this scope, ignoring parents.
func (s *Scope) Has(name string) bool {
	_, ok := s.symbols[name]
	return ok
}

// Local returns the symbol bound to name in this scope only.
func (s *Scope) Local(name string) (Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Names returns this scope's own symbol names in sorted order.
func (s *Scope) Names() []string {
	keys := make([]string, 0, len(s.symbols))
	for k := range s.symbols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeclareVariable creates a variable in this scope. Redeclaring a name bound in
// this scope fails; shadowing a parent binding is allowed.
func (s *Scope) DeclareVariable(name string, dataType types.DataType, value Value, line int) (*Variable, error) {
	if s.Has(name) {
		return nil, Errorf(DuplicateIdentifier, line, "Duplicate identifier: %s", name)
	}
	v := &Variable{Name: name, Scope: s, Type: dataType, Value: value}
	s.symbols[name] = v
	return v, nil
}

// AssignVariable updates the value of the nearest variable named name.
func (s *Scope) AssignVariable(name string, value Value, line int) error {
	for scope := s; scope != nil; scope = scope.parent {
		sym, ok := scope.symbols[name]
		if !ok {
			continue
		}
		v, ok := sym.(*Variable)
		if !ok {
			return Errorf(NotAVariable, line, "Symbol is not a variable: %s", name)
		}
		v.Value = value
		return nil
	}
	return Errorf(UndefinedReference, line, "Undefined variable: %s", name)
}

// Symbol resolves name through the scope chain.
func (s *Scope) Symbol(name string, line int) (Symbol, error) {
	for scope := s; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, nil
		}
	}
	return nil, Errorf(UndefinedReference, line, "Undefined symbol: %s", name)
}

// DefineFunction validates a signature and binds a function closed over a
// capture of this scope. Named functions are bound before the capture is taken
// so the body can refer to itself. Anonymous functions are not bound.
func (s *Scope) DefineFunction(name string, params []*ast.Parameter, returnType types.DataType, body *ast.BlockExpression, line int) (*Function, error) {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if _, dup := seen[p.Name]; dup {
			return nil, Errorf(DuplicateIdentifier, line, "Duplicate parameter \"%s\" in function %s", p.Name, displayName(name))
		}
		seen[p.Name] = struct{}{}
		if err := s.checkRecordRefs(p.Type, "", line); err != nil {
			return nil, err
		}
	}
	if err := s.checkRecordRefs(returnType, "", line); err != nil {
		return nil, err
	}

	fn := &Function{Name: name, Params: params, ReturnType: returnType, Body: body}
	if name == "" {
		fn.Scope = NewScope(s.Capture())
		return fn, nil
	}
	if s.Has(name) {
		return nil, Errorf(DuplicateIdentifier, line, "Duplicate function with identifier %s", name)
	}
	s.symbols[name] = fn
	fn.Scope = NewScope(s.Capture())
	return fn, nil
}

// DeclareNamespace binds a module scope under name.
func (s *Scope) DeclareNamespace(name string, scope *Scope, line int) (*Namespace, error) {
	if s.Has(name) {
		return nil, Errorf(DuplicateIdentifier, line, "Duplicate identifier: %s", name)
	}
	ns := &Namespace{Name: name, Scope: scope}
	s.symbols[name] = ns
	return ns, nil
}

// DefineRecordType declares a record type in this scope.
func (s *Scope) DefineRecordType(name string, fields []RecordField, line int) (*RecordType, error) {
	if _, exists := s.records[name]; exists {
		return nil, Errorf(DuplicateIdentifier, line, "Duplicate complex type: %s", name)
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return nil, Errorf(DuplicateIdentifier, line, "Duplicate field \"%s\" in complex type %s", f.Name, name)
		}
		seen[f.Name] = struct{}{}
		if err := s.checkRecordRefs(f.Type, name, line); err != nil {
			return nil, err
		}
	}
	record := &RecordType{Name: name, Fields: fields, Line: line}
	s.records[name] = record
	return record, nil
}

// RecordType resolves a record type through the scope chain.
func (s *Scope) RecordType(name string, line int) (*RecordType, error) {
	for scope := s; scope != nil; scope = scope.parent {
		if rt, ok := scope.records[name]; ok {
			return rt, nil
		}
	}
	return nil, Errorf(UndefinedReference, line, "Undefined complex type: %s", name)
}

// Capture copies the scope chain's spine. Every level gets its own maps, but
// the symbols in them are the same pointers, so variable cells stay shared.
func (s *Scope) Capture() *Scope {
	var parent *Scope
	if s.parent != nil {
		parent = s.parent.Capture()
	}
	copy := NewScope(parent)
	for name, sym := range s.symbols {
		copy.symbols[name] = sym
	}
	for name, rt := range s.records {
		copy.records[name] = rt
	}
	return copy
}

func (s *Scope) checkRecordRefs(dt types.DataType, self string, line int) error {
	for _, name := range types.RecordNames(dt) {
		if name == self {
			continue
		}
		if _, err := s.RecordType(name, line); err != nil {
			return err
		}
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return "\"" + name + "\""
}
