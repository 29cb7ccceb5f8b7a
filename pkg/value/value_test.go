package value

import (
	"testing"

	"github.com/nalgeon/be"
	"cc32/pkg/regalloc"
	"cc32/pkg/token"
	"cc32/pkg/types"
)

var testLoc = token.Location{File: "t.cc"}

func TestIntegerTypeNilUntilBound(t *testing.T) {
	v := Integer{Literal: 5}
	be.True(t, v.Type() == nil)

	i32 := types.I32
	v.IntType = &i32
	be.Equal(t, v.Type(), types.Type(types.I32))
}

func TestSymbolAlias(t *testing.T) {
	a := Symbol{Name: "ebp", Offset: -4, SymType: types.I32}
	b := Symbol{Name: "ebp", Offset: -4, SymType: types.U8}
	c := Symbol{Name: "ebp", Offset: -8, SymType: types.I32}
	be.True(t, a.Alias(b))
	be.True(t, !a.Alias(c))
}

func TestSymbolWithType(t *testing.T) {
	s := Symbol{Name: "_a", SymType: types.I32}
	narrowed := s.WithType(types.U8)
	be.Equal(t, narrowed.IntegerType(), types.U8)
	be.Equal(t, s.IntegerType(), types.I32)
}

func TestSymbolFunctionPointer(t *testing.T) {
	fn := &types.Function{Symbol: "_sum", ReturnType: nil}
	s := Symbol{Name: "_sum", SymType: types.Pointer{Function: fn}}
	p, ok := s.FunctionPointer()
	be.True(t, ok)
	be.Equal(t, p.Function.Symbol, "_sum")
}

func TestRegisterAlias(t *testing.T) {
	m := regalloc.NewManager()
	a, err := m.Allocate(testLoc)
	be.Err(t, err, nil)
	r1 := Register{RegType: types.I32, Alloc: a}
	r2 := Register{RegType: types.U8, Alloc: a}
	be.True(t, r1.Alias(r2))
}

func TestRegisterWithType(t *testing.T) {
	m := regalloc.NewManager()
	a, err := m.Allocate(testLoc)
	be.Err(t, err, nil)
	r := Register{RegType: types.I32, Alloc: a}
	narrowed := r.WithType(types.U8)
	be.Equal(t, narrowed.RegType, types.U8)
	be.Equal(t, r.RegType, types.I32)
}
