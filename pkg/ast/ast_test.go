package ast

import (
	"testing"

	"github.com/nalgeon/be"
	"cc32/pkg/token"
)

var loc = token.Location{File: "t.cc"}

func TestBinaryOpString(t *testing.T) {
	be.Equal(t, Add.String(), "+")
	be.Equal(t, Sub.String(), "-")
	be.Equal(t, Mul.String(), "*")
	be.Equal(t, Div.String(), "/")
}

func TestExprStringers(t *testing.T) {
	bin := NewBinary(loc, Add, NewIdentifier(loc, "a"), NewInteger(loc, 2))
	be.Equal(t, bin.String(), "(a + 2)")

	neg := NewNegation(loc, NewInteger(loc, 5))
	be.Equal(t, neg.String(), "(-5)")

	cast := NewTypeCast(loc, NewInteger(loc, 300), NewIdentifier(loc, "u8"))
	be.Equal(t, cast.String(), "(300:u8)")
}

func TestStmtStringers(t *testing.T) {
	assign := NewAssignment(loc, NewIdentifier(loc, "a"), NewInteger(loc, 1))
	be.Equal(t, assign.String(), "a = 1")

	be.Equal(t, NewReturn(loc, nil).String(), "return")
	be.Equal(t, NewReturn(loc, NewInteger(loc, 0)).String(), "return 0")

	decl := NewVariableDeclaration(loc, NewIdentifier(loc, "i32"), "a", NewInteger(loc, 1))
	be.Equal(t, decl.String(), "i32 a = 1")
}

func TestNodeLocPropagates(t *testing.T) {
	id := NewIdentifier(loc, "x")
	be.Equal(t, id.Loc(), loc)
}
