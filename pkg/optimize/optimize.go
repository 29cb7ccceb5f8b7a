// Package optimize implements the sole optimization pass of spec.md §4.3: a
// pure, bottom-up constant folder over an expression subtree. It is invoked
// once per assignment right-hand side and once per function-call argument
// expression; non-integer subtrees pass through unchanged.
package optimize

import (
	"cc32/pkg/ast"
	"cc32/pkg/diag"
)

// Expr folds constant arithmetic in e, returning a new tree. It is
// idempotent: Expr(Expr(e)) == Expr(e) for any e (spec.md §8).
func Expr(e ast.Expr) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.Identifier:
		return n, nil

	case *ast.Integer:
		return n, nil

	case *ast.Negation:
		inner, err := Expr(n.Inner)
		if err != nil {
			return nil, err
		}
		if lit, ok := inner.(*ast.Integer); ok {
			return ast.NewInteger(n.Loc(), -lit.Value), nil
		}
		return ast.NewNegation(n.Loc(), inner), nil

	case *ast.TypeCast:
		inner, err := Expr(n.Inner)
		if err != nil {
			return nil, err
		}
		// A cast over a literal is kept, not collapsed: it still carries the
		// target type that generate_assignment and compile_value need to see
		// (spec.md §8: "optimize(e) is a single Integer or
		// TypeCast(Integer,...) node").
		return ast.NewTypeCast(n.Loc(), inner, n.TargetTypeExpr), nil

	case *ast.Binary:
		left, err := Expr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := Expr(n.Right)
		if err != nil {
			return nil, err
		}
		leftLit, leftOk := left.(*ast.Integer)
		rightLit, rightOk := right.(*ast.Integer)
		if leftOk && rightOk {
			v, err := foldBinary(n, leftLit.Value, rightLit.Value)
			if err != nil {
				return nil, err
			}
			return ast.NewInteger(n.Loc(), v), nil
		}
		return ast.NewBinary(n.Loc(), n.Op, left, right), nil

	case *ast.FunctionCall:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			folded, err := Expr(a)
			if err != nil {
				return nil, err
			}
			args[i] = folded
		}
		return ast.NewFunctionCall(n.Loc(), n.Callee, args), nil

	default:
		return e, nil
	}
}

// foldBinary applies op to a and b with two's-complement 64-bit intermediate
// semantics (Go's int64 arithmetic wraps the same way). Division by zero is
// rejected; overflow silently wraps (spec.md §4.3).
func foldBinary(n *ast.Binary, a, b int64) (int64, error) {
	switch n.Op {
	case ast.Add:
		return a + b, nil
	case ast.Sub:
		return a - b, nil
	case ast.Mul:
		return a * b, nil
	case ast.Div:
		if b == 0 {
			return 0, diag.New(diag.DivisionByZero, n.Loc(), "division by zero")
		}
		return a / b, nil
	default:
		return 0, diag.New(diag.NotImplemented, n.Loc(), "unknown binary operator %v", n.Op)
	}
}
