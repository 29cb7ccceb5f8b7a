package asmgen

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"cc32/pkg/regalloc"
	"cc32/pkg/token"
	"cc32/pkg/types"
	"cc32/pkg/value"
)

var loc = token.Location{File: "t.cc"}

func TestFormatOperandInteger(t *testing.T) {
	s, err := FormatOperand(value.Integer{Literal: 42}, loc)
	be.Err(t, err, nil)
	be.Equal(t, s, "42")
}

func TestFormatOperandRegister(t *testing.T) {
	m := regalloc.NewManager()
	a, err := m.Allocate(loc)
	be.Err(t, err, nil)
	s, err := FormatOperand(value.Register{RegType: types.I32, Alloc: a}, loc)
	be.Err(t, err, nil)
	be.Equal(t, s, "eax")
}

func TestFormatOperandSymbolWithOffset(t *testing.T) {
	s, err := FormatOperand(value.Symbol{Name: "ebp", Offset: 8, SymType: types.I32}, loc)
	be.Err(t, err, nil)
	be.Equal(t, s, "dword [ebp+8]")

	s, err = FormatOperand(value.Symbol{Name: "ebp", Offset: -4, SymType: types.U8}, loc)
	be.Err(t, err, nil)
	be.Equal(t, s, "byte [ebp-4]")

	s, err = FormatOperand(value.Symbol{Name: "_a", Offset: 0, SymType: types.I32}, loc)
	be.Err(t, err, nil)
	be.Equal(t, s, "dword [_a]")
}

func TestFormatOperandFunctionSymbolIsBareLabel(t *testing.T) {
	fn := &types.Function{Symbol: "_sum"}
	s, err := FormatOperand(value.Symbol{Name: "_sum", SymType: types.Pointer{Function: fn}}, loc)
	be.Err(t, err, nil)
	be.Equal(t, s, "_sum")
}

func TestCodeAndInsertFunctionCode(t *testing.T) {
	g := New()
	g.Text("_main:")
	g.Code("mov eax, 1")
	g.Code("ret")
	g.InsertFunctionCode()
	be.True(t, strings.Contains(g.Link(), "mov eax, 1"))
	be.Equal(t, g.CodeText(), "")
}

func TestResetCodeClearsScratchWithoutSplicing(t *testing.T) {
	g := New()
	g.Code("mov eax, 1")
	g.ResetCode()
	be.Equal(t, g.CodeText(), "")
	be.True(t, !strings.Contains(g.Link(), "mov eax, 1"))
}

func TestLinkContainsFixedBoilerplate(t *testing.T) {
	g := New()
	g.DataLine("_a", "dd", "42")
	out := g.Link()
	be.True(t, strings.Contains(out, "format PE console"))
	be.True(t, strings.Contains(out, "_a dd 42"))
	be.True(t, strings.Contains(out, "scanf_format"))
	be.True(t, strings.Contains(out, "printf_format"))
	be.True(t, strings.Contains(out, "ExitProcess"))
}
