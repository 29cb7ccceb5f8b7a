package optimize

import (
	"testing"

	"github.com/nalgeon/be"
	"cc32/pkg/ast"
	"cc32/pkg/diag"
	"cc32/pkg/token"
)

var loc = token.Location{File: "t.cc"}

func TestFoldsConstantArithmetic(t *testing.T) {
	// 5 + 3 * 2
	e := ast.NewBinary(loc, ast.Add,
		ast.NewInteger(loc, 5),
		ast.NewBinary(loc, ast.Mul, ast.NewInteger(loc, 3), ast.NewInteger(loc, 2)))

	got, err := Expr(e)
	be.Err(t, err, nil)
	lit, ok := got.(*ast.Integer)
	be.True(t, ok)
	be.Equal(t, lit.Value, int64(11))
}

func TestFoldsNegation(t *testing.T) {
	e := ast.NewNegation(loc, ast.NewInteger(loc, 7))
	got, err := Expr(e)
	be.Err(t, err, nil)
	lit, ok := got.(*ast.Integer)
	be.True(t, ok)
	be.Equal(t, lit.Value, int64(-7))
}

func TestDivisionByZeroFails(t *testing.T) {
	e := ast.NewBinary(loc, ast.Div, ast.NewInteger(loc, 1), ast.NewInteger(loc, 0))
	_, err := Expr(e)
	cerr, ok := err.(*diag.CompileError)
	be.True(t, ok)
	be.Equal(t, cerr.Kind, diag.DivisionByZero)
}

func TestTypeCastNeverCollapses(t *testing.T) {
	e := ast.NewTypeCast(loc, ast.NewInteger(loc, 300), ast.NewIdentifier(loc, "u8"))
	got, err := Expr(e)
	be.Err(t, err, nil)
	_, ok := got.(*ast.TypeCast)
	be.True(t, ok)
}

func TestIdempotent(t *testing.T) {
	e := ast.NewBinary(loc, ast.Sub, ast.NewInteger(loc, 10), ast.NewInteger(loc, 4))
	once, err := Expr(e)
	be.Err(t, err, nil)
	twice, err := Expr(once)
	be.Err(t, err, nil)
	be.Equal(t, once.(*ast.Integer).Value, twice.(*ast.Integer).Value)
}

func TestPassesThroughIdentifiers(t *testing.T) {
	e := ast.NewIdentifier(loc, "x")
	got, err := Expr(e)
	be.Err(t, err, nil)
	be.Equal(t, got, ast.Expr(e))
}
