package parser

import (
	"testing"

	"github.com/nalgeon/be"
	"cc32/pkg/ast"
	"cc32/pkg/lexer"
)

func parseAll(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	decls, err := ParseFile(lexer.New(src, "t.cc"))
	be.Err(t, err, nil)
	return decls
}

func TestTopLevelVariableWithType(t *testing.T) {
	decls := parseAll(t, "i32 a = 42;")
	be.Equal(t, len(decls), 1)
	v, ok := decls[0].(*ast.VariableDeclaration)
	be.True(t, ok)
	be.Equal(t, v.TypeExpr.Name, "i32")
	be.Equal(t, v.Name, "a")
}

func TestFunctionDeclarationWithArgs(t *testing.T) {
	decls := parseAll(t, "i32 sum(i32 a, i32 b) { return a + b; }")
	fn, ok := decls[0].(*ast.FunctionDeclaration)
	be.True(t, ok)
	be.Equal(t, fn.Name, "sum")
	be.Equal(t, len(fn.Args), 2)
	be.Equal(t, fn.Args[0].Name, "a")
	be.Equal(t, len(fn.Body), 1)
}

func TestOperatorPrecedence(t *testing.T) {
	decls := parseAll(t, "i32 main() { return 1 + 2 * 3; }")
	fn := decls[0].(*ast.FunctionDeclaration)
	ret := fn.Body[0].(*ast.Return)
	bin, ok := ret.Inner.(*ast.Binary)
	be.True(t, ok)
	be.Equal(t, bin.Op, ast.Add)
	rhs, ok := bin.Right.(*ast.Binary)
	be.True(t, ok)
	be.Equal(t, rhs.Op, ast.Mul)
}

func TestPostfixCastThenCall(t *testing.T) {
	decls := parseAll(t, "i32 main() { return f(a):i32(b); }")
	fn := decls[0].(*ast.FunctionDeclaration)
	ret := fn.Body[0].(*ast.Return)
	// f(a):i32 (b)  ==  ((f(a)):i32)(b)
	outer, ok := ret.Inner.(*ast.FunctionCall)
	be.True(t, ok)
	cast, ok := outer.Callee.(*ast.TypeCast)
	be.True(t, ok)
	be.Equal(t, cast.TargetTypeExpr.Name, "i32")
}

func TestAssignmentStatement(t *testing.T) {
	decls := parseAll(t, "i32 a = 1; i32 main() { a = a + 2; return 0; }")
	fn := decls[1].(*ast.FunctionDeclaration)
	assign, ok := fn.Body[0].(*ast.Assignment)
	be.True(t, ok)
	_, ok = assign.Lhs.(*ast.Identifier)
	be.True(t, ok)
}

func TestBareCallStatement(t *testing.T) {
	decls := parseAll(t, "i32 main() { _write(1); return 0; }")
	fn := decls[0].(*ast.FunctionDeclaration)
	_, ok := fn.Body[0].(*ast.ExprStmt)
	be.True(t, ok)
}

func TestLocalDeclaration(t *testing.T) {
	decls := parseAll(t, "i32 main() { i32 x = 5 + 3 * 2; return x; }")
	fn := decls[0].(*ast.FunctionDeclaration)
	decl, ok := fn.Body[0].(*ast.VariableDeclaration)
	be.True(t, ok)
	be.Equal(t, decl.TypeExpr.Name, "i32")
	be.Equal(t, decl.Name, "x")
}

func TestNegationBindsTighterThanBinary(t *testing.T) {
	decls := parseAll(t, "i32 main() { return -1 + 2; }")
	fn := decls[0].(*ast.FunctionDeclaration)
	ret := fn.Body[0].(*ast.Return)
	bin, ok := ret.Inner.(*ast.Binary)
	be.True(t, ok)
	_, ok = bin.Left.(*ast.Negation)
	be.True(t, ok)
}

func TestBareReturn(t *testing.T) {
	decls := parseAll(t, "main() { return; }")
	fn := decls[0].(*ast.FunctionDeclaration)
	be.True(t, fn.ReturnTypeExpr == nil)
	ret := fn.Body[0].(*ast.Return)
	be.True(t, ret.Inner == nil)
}
