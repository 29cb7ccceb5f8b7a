// Package ast defines the flat syntax tree produced by the parser
// (spec.md §3): a handful of expression, statement, and top-level
// declaration node kinds, each carrying the token.Location of its first
// token for diagnostics.
package ast

import (
	"fmt"

	"cc32/pkg/token"
)

// BinaryOp enumerates the four arithmetic binary operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

// Node is implemented by every expression and statement node.
type Node interface {
	Loc() token.Location
}

// Expr is implemented by nodes that produce a value.
type Expr interface {
	Node
	exprNode()
}

type base struct {
	Location token.Location
}

func (b base) Loc() token.Location { return b.Location }

type Identifier struct {
	base
	Name string
}

func (*Identifier) exprNode() {}

// Integer is an integer literal; its type is unresolved until a consumer
// supplies a target type (spec.md §9).
type Integer struct {
	base
	Value int64
}

func (*Integer) exprNode() {}

type Negation struct {
	base
	Inner Expr
}

func (*Negation) exprNode() {}

type TypeCast struct {
	base
	Inner          Expr
	TargetTypeExpr *Identifier
}

func (*TypeCast) exprNode() {}

type Binary struct {
	base
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

type FunctionCall struct {
	base
	Callee Expr
	Args   []Expr
}

func (*FunctionCall) exprNode() {}

// Stmt is implemented by nodes that do not themselves produce a value.
type Stmt interface {
	Node
	stmtNode()
}

type Assignment struct {
	base
	Lhs Expr
	Rhs Expr
}

func (*Assignment) stmtNode() {}

// Return is `return;` or `return Inner;`.
type Return struct {
	base
	Inner Expr // nil for bare `return;`
}

func (*Return) stmtNode() {}

type ExprStmt struct {
	base
	Call *FunctionCall
}

func (*ExprStmt) stmtNode() {}

// VariableDeclaration is `TypeExpr Name = Initializer;`, valid at top level
// and, where the driver permits it, inside a function body.
type VariableDeclaration struct {
	base
	TypeExpr    *Identifier
	Name        string
	Initializer Expr
}

func (*VariableDeclaration) stmtNode() {}

type FunctionArgumentDeclaration struct {
	base
	TypeExpr *Identifier
	Name     string
}

// FunctionDeclaration is `ReturnTypeExpr? Name(Args...) { Body }`.
type FunctionDeclaration struct {
	base
	ReturnTypeExpr *Identifier // nil means void
	Name           string
	Args           []*FunctionArgumentDeclaration
	Body           []Stmt
}

func (*FunctionDeclaration) stmtNode() {}

func NewIdentifier(loc token.Location, name string) *Identifier {
	return &Identifier{base: base{loc}, Name: name}
}

func NewInteger(loc token.Location, v int64) *Integer {
	return &Integer{base: base{loc}, Value: v}
}

func NewNegation(loc token.Location, inner Expr) *Negation {
	return &Negation{base: base{loc}, Inner: inner}
}

func NewTypeCast(loc token.Location, inner Expr, target *Identifier) *TypeCast {
	return &TypeCast{base: base{loc}, Inner: inner, TargetTypeExpr: target}
}

func NewBinary(loc token.Location, op BinaryOp, left, right Expr) *Binary {
	return &Binary{base: base{loc}, Op: op, Left: left, Right: right}
}

func NewFunctionCall(loc token.Location, callee Expr, args []Expr) *FunctionCall {
	return &FunctionCall{base: base{loc}, Callee: callee, Args: args}
}

func NewAssignment(loc token.Location, lhs, rhs Expr) *Assignment {
	return &Assignment{base: base{loc}, Lhs: lhs, Rhs: rhs}
}

func NewReturn(loc token.Location, inner Expr) *Return {
	return &Return{base: base{loc}, Inner: inner}
}

func NewExprStmt(loc token.Location, call *FunctionCall) *ExprStmt {
	return &ExprStmt{base: base{loc}, Call: call}
}

func NewVariableDeclaration(loc token.Location, typeExpr *Identifier, name string, init Expr) *VariableDeclaration {
	return &VariableDeclaration{base: base{loc}, TypeExpr: typeExpr, Name: name, Initializer: init}
}

func NewFunctionArgumentDeclaration(loc token.Location, typeExpr *Identifier, name string) *FunctionArgumentDeclaration {
	return &FunctionArgumentDeclaration{base: base{loc}, TypeExpr: typeExpr, Name: name}
}

func NewFunctionDeclaration(loc token.Location, retType *Identifier, name string, args []*FunctionArgumentDeclaration, body []Stmt) *FunctionDeclaration {
	return &FunctionDeclaration{base: base{loc}, ReturnTypeExpr: retType, Name: name, Args: args, Body: body}
}

func (i *Identifier) String() string { return i.Name }
func (i *Integer) String() string    { return fmt.Sprintf("%d", i.Value) }
func (n *Negation) String() string   { return fmt.Sprintf("(-%v)", n.Inner) }
func (c *TypeCast) String() string   { return fmt.Sprintf("(%v:%v)", c.Inner, c.TargetTypeExpr) }
func (b *Binary) String() string     { return fmt.Sprintf("(%v %s %v)", b.Left, b.Op, b.Right) }
func (c *FunctionCall) String() string {
	return fmt.Sprintf("%v(%v)", c.Callee, c.Args)
}
func (a *Assignment) String() string { return fmt.Sprintf("%v = %v", a.Lhs, a.Rhs) }
func (r *Return) String() string {
	if r.Inner == nil {
		return "return"
	}
	return fmt.Sprintf("return %v", r.Inner)
}
func (e *ExprStmt) String() string { return e.Call.String() }
func (d *VariableDeclaration) String() string {
	return fmt.Sprintf("%v %s = %v", d.TypeExpr, d.Name, d.Initializer)
}
func (a *FunctionArgumentDeclaration) String() string {
	return fmt.Sprintf("%v %s", a.TypeExpr, a.Name)
}
func (f *FunctionDeclaration) String() string {
	return fmt.Sprintf("%v %s(%v) {...}", f.ReturnTypeExpr, f.Name, f.Args)
}
