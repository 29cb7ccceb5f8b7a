// Package value implements the code generator's runtime vocabulary
// (spec.md §3): a Value is a sum of where a computed result currently
// lives — a compile-time integer constant, a memory operand, or a live
// register allocation.
package value

import (
	"cc32/pkg/regalloc"
	"cc32/pkg/types"
)

// Value is implemented by Integer, Symbol, and Register.
type Value interface {
	// Type returns the value's resolved type, or nil for an Integer whose
	// type has not yet been bound to a consumer. All other variants always
	// return a non-nil Type (spec.md §3 invariant).
	Type() types.Type
}

// Integer is a compile-time constant. It is the only Value whose Type may
// be nil (spec.md §3 invariant).
type Integer struct {
	IntType *types.Integer // nil until a consumer supplies one
	Literal int64
}

func (v Integer) Type() types.Type {
	if v.IntType == nil {
		return nil
	}
	return *v.IntType
}

// Symbol is a memory operand `[symbol + offset]`. Name is either an
// assembly label or a base register name ("ebp" for locals/args, "esp" for
// outgoing call arguments). A Symbol naming a function carries a
// types.Pointer instead of a types.Integer (spec.md §4.4 find_symbol case 3).
type Symbol struct {
	SymType types.Type // types.Integer, or types.Pointer for a function name
	Name    string
	Offset  int
}

func (v Symbol) Type() types.Type { return v.SymType }

// IntegerType returns the Symbol's type as a types.Integer. Callers must
// only call this when they know (from context) that the symbol is not a
// function pointer; it panics otherwise, mirroring spec.md §9's
// "strong_type() only callable on non-Integer variants" guidance applied to
// the Pointer/Integer split.
func (v Symbol) IntegerType() types.Integer {
	return v.SymType.(types.Integer)
}

// FunctionPointer returns (pointer, true) when this Symbol names a function.
func (v Symbol) FunctionPointer() (types.Pointer, bool) {
	p, ok := v.SymType.(types.Pointer)
	return p, ok
}

// Alias reports whether two Symbols denote the same memory location
// (spec.md §3: "Two SymbolValues alias iff (symbol, offset) are equal").
func (v Symbol) Alias(other Symbol) bool {
	return v.Name == other.Name && v.Offset == other.Offset
}

// WithType returns a copy of v retyped to t.
func (v Symbol) WithType(t types.Integer) Symbol {
	v.SymType = t
	return v
}

// Register is a live allocation in the register file. The concrete register
// name is recovered from the allocation at the value's current width, so
// narrowing/widening is a matter of re-formatting, not reallocating.
type Register struct {
	RegType types.Integer
	Alloc   regalloc.Allocation
}

func (v Register) Type() types.Type { return v.RegType }

// Alias reports whether two Registers denote the same register, regardless
// of width (spec.md §3 invariant).
func (v Register) Alias(other Register) bool {
	return v.Alloc.Id() == other.Alloc.Id()
}

// WithType returns a copy of v retyped to t, used after a conversion that
// does not change where the value lives (e.g. narrowing a Register to a
// lower-width alias of the same allocation).
func (v Register) WithType(t types.Integer) Register {
	v.RegType = t
	return v
}
