// Package symtable implements the driver's phase-1 symbol tables
// (spec.md §3, §4.8): global variables and functions, keyed by their
// mangled assembly symbol, pre-populated with the `_read`/`_write`
// intrinsics, iterated in insertion order (spec.md §5).
package symtable

import (
	"cc32/pkg/ast"
	"cc32/pkg/diag"
	"cc32/pkg/token"
	"cc32/pkg/types"
)

// GlobalVariable is one entry in the globals table.
type GlobalVariable struct {
	Location         token.Location
	Symbol           string
	Type             types.Integer
	InitialValueText string // textual FASM initializer, e.g. "42" or "-1"
}

// FunctionArg describes one declared parameter of a function.
type FunctionArg struct {
	Location token.Location
	Type     types.Integer
	Name     string
}

// Function is one entry in the functions table.
type Function struct {
	Location   token.Location
	Symbol     string
	ReturnType *types.Integer // nil means void
	Args       []FunctionArg
	Body       []ast.Stmt // nil for intrinsics
	Intrinsic  bool
}

// mangle prefixes a source name with "_" to avoid collisions with assembler
// reserved words (spec.md §4.7).
func mangle(name string) string { return "_" + name }

// Table holds the two phase-1 symbol tables plus their insertion order.
type Table struct {
	globals     map[string]*GlobalVariable
	globalOrder []string
	functions   map[string]*Function
	funcOrder   []string
}

// New returns a Table pre-populated with the _read/_write intrinsics
// (spec.md §3).
func New() *Table {
	t := &Table{
		globals:   make(map[string]*GlobalVariable),
		functions: make(map[string]*Function),
	}
	i32 := types.I32
	t.functions["_read"] = &Function{Symbol: "_read", ReturnType: &i32, Intrinsic: true}
	t.funcOrder = append(t.funcOrder, "_read")
	t.functions["_write"] = &Function{Symbol: "_write", Args: []FunctionArg{{Type: types.I32, Name: "value"}}, Intrinsic: true}
	t.funcOrder = append(t.funcOrder, "_write")
	return t
}

// RegisterVariable adds a global variable declaration. Fails DuplicateSymbol
// if its mangled symbol collides with an existing global or function.
func (t *Table) RegisterVariable(loc token.Location, name string, typ types.Integer, initialValueText string) error {
	sym := mangle(name)
	if err := t.checkFree(loc, sym); err != nil {
		return err
	}
	t.globals[sym] = &GlobalVariable{Location: loc, Symbol: sym, Type: typ, InitialValueText: initialValueText}
	t.globalOrder = append(t.globalOrder, sym)
	return nil
}

// RegisterFunction adds a function declaration. Fails DuplicateSymbol if its
// mangled symbol collides with an existing global or function (including an
// intrinsic).
func (t *Table) RegisterFunction(loc token.Location, name string, returnType *types.Integer, args []FunctionArg, body []ast.Stmt) error {
	sym := mangle(name)
	if err := t.checkFree(loc, sym); err != nil {
		return err
	}
	t.functions[sym] = &Function{Location: loc, Symbol: sym, ReturnType: returnType, Args: args, Body: body}
	t.funcOrder = append(t.funcOrder, sym)
	return nil
}

func (t *Table) checkFree(loc token.Location, sym string) error {
	if _, ok := t.globals[sym]; ok {
		return diag.New(diag.DuplicateSymbol, loc, "symbol %q already declared", sym)
	}
	if _, ok := t.functions[sym]; ok {
		return diag.New(diag.DuplicateSymbol, loc, "symbol %q already declared", sym)
	}
	return nil
}

// LookupVariable finds a global by its unmangled source name.
func (t *Table) LookupVariable(name string) (*GlobalVariable, bool) {
	v, ok := t.globals[mangle(name)]
	return v, ok
}

// LookupFunction finds a function by its unmangled source name.
func (t *Table) LookupFunction(name string) (*Function, bool) {
	f, ok := t.functions[mangle(name)]
	return f, ok
}

// Variables returns the globals in insertion order.
func (t *Table) Variables() []*GlobalVariable {
	out := make([]*GlobalVariable, 0, len(t.globalOrder))
	for _, sym := range t.globalOrder {
		out = append(out, t.globals[sym])
	}
	return out
}

// Functions returns the functions in insertion order, intrinsics included.
func (t *Table) Functions() []*Function {
	out := make([]*Function, 0, len(t.funcOrder))
	for _, sym := range t.funcOrder {
		out = append(out, t.functions[sym])
	}
	return out
}
