// Package codegen implements the code generator and two-phase compiler
// driver of spec.md §4.4–§4.8: symbol registration, expression and statement
// lowering, and final assembly linking.
package codegen

import (
	"fmt"

	"cc32/pkg/asmgen"
	"cc32/pkg/ast"
	"cc32/pkg/diag"
	"cc32/pkg/optimize"
	"cc32/pkg/regalloc"
	"cc32/pkg/symtable"
	"cc32/pkg/token"
	"cc32/pkg/types"
	"cc32/pkg/value"
)

// Driver owns the symbol tables, register manager, and assembly buffers for
// the lifetime of a single compilation. There is no re-entry (spec.md §5).
type Driver struct {
	table *symtable.Table
	reg   *regalloc.Manager
	asm   *asmgen.Generator

	currentFunction  *symtable.Function
	needsEndingLabel bool
	locals           map[string]value.Symbol
	localsSize       int
}

// NewDriver returns a Driver with a fresh symbol table pre-populated with
// the _read/_write intrinsics.
func NewDriver() *Driver {
	return &Driver{
		table: symtable.New(),
		reg:   regalloc.NewManager(),
		asm:   asmgen.New(),
	}
}

// Compile runs both driver phases over decls and returns the linked FASM
// listing.
func (d *Driver) Compile(decls []ast.Stmt) (string, error) {
	if err := d.register(decls); err != nil {
		return "", err
	}

	d.emitEntryStub()
	d.emitGlobals()

	for _, fn := range d.table.Functions() {
		if fn.Intrinsic {
			continue
		}
		if err := d.compileFunction(fn); err != nil {
			return "", err
		}
	}

	d.emitIntrinsics()

	return d.asm.Link(), nil
}

// --- Phase 1: registration ---------------------------------------------

func (d *Driver) register(decls []ast.Stmt) error {
	for _, decl := range decls {
		switch n := decl.(type) {
		case *ast.VariableDeclaration:
			if err := d.registerVariable(n); err != nil {
				return err
			}
		case *ast.FunctionDeclaration:
			if err := d.registerFunction(n); err != nil {
				return err
			}
		default:
			return diag.New(diag.UnexpectedSyntaxNode, decl.Loc(), "top-level declaration must be a variable or function, got %T", decl)
		}
	}
	return nil
}

func (d *Driver) registerVariable(v *ast.VariableDeclaration) error {
	folded, err := optimize.Expr(v.Initializer)
	if err != nil {
		return err
	}
	literal, litType, ok := constantOf(folded)
	if !ok {
		return diag.New(diag.NotImplemented, v.Loc(), "global initializer must be a constant expression")
	}

	var typ types.Integer
	switch {
	case v.TypeExpr != nil:
		t, err := d.resolveType(v.TypeExpr)
		if err != nil {
			return err
		}
		typ = t
	case litType != nil:
		typ = *litType
	default:
		typ = types.I32
	}

	adjusted, err := convertInteger(v.Loc(), value.Integer{IntType: litType, Literal: literal}, typ, false)
	if err != nil {
		return err
	}

	return d.table.RegisterVariable(v.Loc(), v.Name, typ, fmt.Sprintf("%d", adjusted.Literal))
}

// constantOf extracts the literal (and, if present, its cast-bound type)
// from a folded global initializer that is a single Integer or
// TypeCast(Integer,...) node. Anything else, such as an initializer naming an
// identifier or arithmetic on a cast literal (which optimize.Expr leaves
// unfolded), reports ok=false.
func constantOf(folded ast.Expr) (int64, *types.Integer, bool) {
	switch n := folded.(type) {
	case *ast.Integer:
		return n.Value, nil, true
	case *ast.TypeCast:
		inner, ok := n.Inner.(*ast.Integer)
		if !ok {
			return 0, nil, false
		}
		t, ok := types.Lookup(n.TargetTypeExpr.Name)
		if !ok {
			return 0, nil, false
		}
		return inner.Value, &t, true
	default:
		return 0, nil, false
	}
}

func (d *Driver) registerFunction(f *ast.FunctionDeclaration) error {
	var ret *types.Integer
	if f.ReturnTypeExpr != nil {
		t, err := d.resolveType(f.ReturnTypeExpr)
		if err != nil {
			return err
		}
		ret = &t
	}

	args := make([]symtable.FunctionArg, len(f.Args))
	for i, a := range f.Args {
		t, err := d.resolveType(a.TypeExpr)
		if err != nil {
			return err
		}
		args[i] = symtable.FunctionArg{Location: a.Loc(), Type: t, Name: a.Name}
	}

	return d.table.RegisterFunction(f.Loc(), f.Name, ret, args, f.Body)
}

func (d *Driver) resolveType(ident *ast.Identifier) (types.Integer, error) {
	t, ok := types.Lookup(ident.Name)
	if !ok {
		return types.Integer{}, diag.New(diag.UnknownIdentifier, ident.Loc(), "unknown type %q", ident.Name)
	}
	return t, nil
}

// --- Linked-output scaffolding -------------------------------------------

func (d *Driver) emitGlobals() {
	for _, v := range d.table.Variables() {
		d.asm.DataLine(v.Symbol, v.Type.DataDirective(), v.InitialValueText)
	}
}

func (d *Driver) emitEntryStub() {
	d.asm.Text("start:")
	d.asm.Text("  call _main")
	d.asm.Text("  push eax")
	d.asm.Text("  call [ExitProcess]")
	d.asm.Text("")
}

// emitIntrinsics writes the hand-written bodies of _read and _write
// (spec.md §4.8 step 3): _read scans a decimal integer into a stack slot and
// returns it in eax; _write prints its single argument followed by a
// newline.
func (d *Driver) emitIntrinsics() {
	d.asm.Text("_read:")
	d.asm.Text("  push ebp")
	d.asm.Text("  mov ebp, esp")
	d.asm.Text("  sub esp, 4")
	d.asm.Text("  lea eax, [ebp-4]")
	d.asm.Text("  push eax")
	d.asm.Text("  push scanf_format")
	d.asm.Text("  call [scanf]")
	d.asm.Text("  add esp, 8")
	d.asm.Text("  mov eax, dword [ebp-4]")
	d.asm.Text("  leave")
	d.asm.Text("  ret")
	d.asm.Text("")

	d.asm.Text("_write:")
	d.asm.Text("  push ebp")
	d.asm.Text("  mov ebp, esp")
	d.asm.Text("  push dword [ebp+8]")
	d.asm.Text("  push printf_format")
	d.asm.Text("  call [printf]")
	d.asm.Text("  add esp, 8")
	d.asm.Text("  leave")
	d.asm.Text("  ret")
	d.asm.Text("")
}

// --- Phase 2: per-function code generation -------------------------------

func (d *Driver) compileFunction(fn *symtable.Function) error {
	d.currentFunction = fn
	d.reg.ResetUsed()
	d.asm.ResetCode()
	d.needsEndingLabel = false
	d.locals = make(map[string]value.Symbol)
	d.localsSize = 0

	for i, stmt := range fn.Body {
		isLast := i == len(fn.Body)-1
		if err := d.compileStatement(stmt, isLast); err != nil {
			return err
		}
	}

	used := d.reg.UsedCalleeSaved()

	d.asm.Text("%s:", fn.Symbol)
	d.asm.Text("  push ebp")
	d.asm.Text("  mov ebp, esp")
	if d.localsSize > 0 {
		d.asm.Text("  sub esp, %d", d.localsSize)
	}
	for _, id := range used {
		name, err := regalloc.Name(id, 4, fn.Location)
		if err != nil {
			return err
		}
		d.asm.Text("  push %s", name)
	}

	d.asm.InsertFunctionCode()

	if d.needsEndingLabel {
		d.asm.Text("end%s:", fn.Symbol)
	}

	for i := len(used) - 1; i >= 0; i-- {
		name, err := regalloc.Name(used[i], 4, fn.Location)
		if err != nil {
			return err
		}
		d.asm.Text("  pop %s", name)
	}
	d.asm.Text("  leave")
	d.asm.Text("  ret")
	d.asm.Text("")

	return nil
}

func (d *Driver) compileStatement(stmt ast.Stmt, isLast bool) error {
	switch n := stmt.(type) {
	case *ast.Assignment:
		lhsVal, err := d.compileValue(n.Lhs, nil)
		if err != nil {
			return err
		}
		sym, ok := lhsVal.(value.Symbol)
		if !ok {
			return diag.New(diag.NotLValue, n.Loc(), "assignment target is not an lvalue")
		}
		if _, isFunc := sym.FunctionPointer(); isFunc {
			return diag.New(diag.NotLValue, n.Loc(), "cannot assign to function %q", sym.Name)
		}
		return d.generateAssignment(n.Loc(), n.Rhs, sym)

	case *ast.Return:
		return d.compileReturn(n, isLast)

	case *ast.ExprStmt:
		_, err := d.compileCall(n.Call, false)
		return err

	case *ast.VariableDeclaration:
		return d.compileLocalDeclaration(n)

	default:
		return diag.New(diag.UnexpectedSyntaxNode, stmt.Loc(), "unexpected statement node %T", stmt)
	}
}

func (d *Driver) compileReturn(n *ast.Return, isLast bool) error {
	hasValue := n.Inner != nil
	wantsValue := d.currentFunction.ReturnType != nil
	if hasValue != wantsValue {
		return diag.New(diag.MismatchingReturn, n.Loc(), "return presence does not match function's declared return type")
	}

	if hasValue {
		retType := *d.currentFunction.ReturnType
		folded, err := optimize.Expr(n.Inner)
		if err != nil {
			return err
		}

		var result value.Value
		explicit := false
		if tc, ok := folded.(*ast.TypeCast); ok {
			if castType, err2 := d.resolveType(tc.TargetTypeExpr); err2 == nil && castType.Equal(retType) {
				inner, err3 := d.compileValue(tc.Inner, nil)
				if err3 != nil {
					return err3
				}
				result, explicit = inner, true
			}
		}
		if result == nil {
			v, err := d.compileValue(folded, &retType)
			if err != nil {
				return err
			}
			result = v
		}

		// If result already lives in the return register (e.g. it was just
		// computed there, or is itself a prior call's result), reusing its
		// own allocation avoids displacing the very value we're about to
		// return into a scratch register for no reason.
		var alloc regalloc.Allocation
		if reg, ok := result.(value.Register); ok && reg.Alloc.Id() == regalloc.ReturnRegister {
			alloc = reg.Alloc
		} else {
			a, displaced, err := d.reg.GetReturnRegister(n.Loc())
			if err != nil {
				return err
			}
			if displaced >= 0 {
				oldName, err := regalloc.Name(regalloc.ReturnRegister, 4, n.Loc())
				if err != nil {
					return err
				}
				newName, err := regalloc.Name(displaced, 4, n.Loc())
				if err != nil {
					return err
				}
				d.asm.Code("mov %s, %s", newName, oldName)
			}
			alloc = a
		}

		dst := value.Register{RegType: retType, Alloc: alloc}
		if err := d.generateMov(n.Loc(), dst, result, explicit); err != nil {
			return err
		}
		d.reg.Free(alloc)
	}

	if !isLast {
		d.asm.Code("jmp end%s", d.currentFunction.Symbol)
		d.needsEndingLabel = true
	}
	return nil
}

// compileLocalDeclaration implements a local variable as a 4-byte
// ebp-relative slot. Local declarations are not part of the grammar in
// spec.md §4.2 but are invited by spec.md §8 scenario 3; they reuse the
// same declaration-ambiguity lookahead as top-level declarations.
func (d *Driver) compileLocalDeclaration(n *ast.VariableDeclaration) error {
	if _, exists := d.locals[n.Name]; exists {
		return diag.New(diag.DuplicateSymbol, n.Loc(), "local %q already declared", n.Name)
	}

	var typ types.Integer
	if n.TypeExpr != nil {
		t, err := d.resolveType(n.TypeExpr)
		if err != nil {
			return err
		}
		typ = t
	} else {
		folded, err := optimize.Expr(n.Initializer)
		if err != nil {
			return err
		}
		inferred, err := d.evaluateType(folded)
		if err != nil {
			return err
		}
		if inferred != nil {
			typ = *inferred
		} else {
			typ = types.I32
		}
	}

	d.localsSize += 4
	sym := value.Symbol{SymType: typ, Name: "ebp", Offset: -d.localsSize}
	d.locals[n.Name] = sym

	return d.generateAssignment(n.Loc(), n.Initializer, sym)
}

// --- Symbol resolution and type evaluation --------------------------------

func (d *Driver) findSymbol(ident *ast.Identifier) (value.Value, error) {
	if sym, ok := d.locals[ident.Name]; ok {
		return sym, nil
	}
	if d.currentFunction != nil {
		for i, arg := range d.currentFunction.Args {
			if arg.Name == ident.Name {
				return value.Symbol{SymType: arg.Type, Name: "ebp", Offset: (i + 2) * 4}, nil
			}
		}
	}
	if g, ok := d.table.LookupVariable(ident.Name); ok {
		return value.Symbol{SymType: g.Type, Name: g.Symbol, Offset: 0}, nil
	}
	if f, ok := d.table.LookupFunction(ident.Name); ok {
		fn := &types.Function{Symbol: f.Symbol, ReturnType: f.ReturnType, ArgTypes: argTypes(f.Args)}
		return value.Symbol{SymType: types.Pointer{Function: fn}, Name: f.Symbol, Offset: 0}, nil
	}
	return nil, diag.New(diag.UnknownIdentifier, ident.Loc(), "unknown identifier %q", ident.Name)
}

func argTypes(args []symtable.FunctionArg) []types.Integer {
	out := make([]types.Integer, len(args))
	for i, a := range args {
		out[i] = a.Type
	}
	return out
}

func (d *Driver) resolveCallee(expr ast.Expr) (*types.Function, error) {
	ident, ok := expr.(*ast.Identifier)
	if !ok {
		return nil, diag.New(diag.NotCallableType, expr.Loc(), "callee must be an identifier")
	}
	v, err := d.findSymbol(ident)
	if err != nil {
		return nil, err
	}
	sym, ok := v.(value.Symbol)
	if !ok {
		return nil, diag.New(diag.NotCallableType, expr.Loc(), "callee is not callable")
	}
	ptr, ok := sym.FunctionPointer()
	if !ok {
		return nil, diag.New(diag.NotCallableType, expr.Loc(), "callee is not a function")
	}
	return ptr.Function, nil
}

// evaluateType recurses over expr without emitting code, matching
// spec.md §4.4's evaluate_type.
func (d *Driver) evaluateType(expr ast.Expr) (*types.Integer, error) {
	switch n := expr.(type) {
	case *ast.Integer:
		return nil, nil

	case *ast.Identifier:
		v, err := d.findSymbol(n)
		if err != nil {
			return nil, err
		}
		t, ok := asInteger(v)
		if !ok {
			return nil, diag.New(diag.NotCallableType, n.Loc(), "identifier %q does not have an integer type", n.Name)
		}
		return &t, nil

	case *ast.TypeCast:
		t, err := d.resolveType(n.TargetTypeExpr)
		if err != nil {
			return nil, err
		}
		return &t, nil

	case *ast.Negation:
		inner, err := d.evaluateType(n.Inner)
		if err != nil {
			return nil, err
		}
		if inner != nil && !inner.IsSigned {
			return nil, diag.New(diag.UnsignedType, n.Loc(), "cannot negate unsigned value")
		}
		return inner, nil

	case *ast.Binary:
		lt, err := d.evaluateType(n.Left)
		if err != nil {
			return nil, err
		}
		rt, err := d.evaluateType(n.Right)
		if err != nil {
			return nil, err
		}
		if lt != nil && rt != nil {
			if lt.IsSigned != rt.IsSigned {
				return nil, diag.New(diag.InvalidTypeCast, n.Loc(), "operands have mismatched signedness")
			}
			larger := types.Larger(*lt, *rt)
			return &larger, nil
		}
		if lt != nil {
			return lt, nil
		}
		return rt, nil

	case *ast.FunctionCall:
		fn, err := d.resolveCallee(n.Callee)
		if err != nil {
			return nil, err
		}
		return fn.ReturnType, nil

	default:
		return nil, diag.New(diag.UnexpectedSyntaxNode, expr.Loc(), "cannot evaluate type of %T", expr)
	}
}

// --- Expression code generation -------------------------------------------

// compileValue implements spec.md §4.4's compile_value.
func (d *Driver) compileValue(expr ast.Expr, targetType *types.Integer) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.Identifier:
		return d.findSymbol(n)

	case *ast.Integer:
		if targetType != nil {
			if n.Value < targetType.Min() || n.Value > targetType.Max() {
				return nil, diag.New(diag.InvalidTypeCast, n.Loc(), "possible value loss converting %d to %s", n.Value, targetType.Name)
			}
			t := *targetType
			return value.Integer{IntType: &t, Literal: n.Value}, nil
		}
		return value.Integer{Literal: n.Value}, nil

	case *ast.TypeCast:
		castType, err := d.resolveType(n.TargetTypeExpr)
		if err != nil {
			return nil, err
		}
		inner, err := d.compileValue(n.Inner, &castType)
		if err != nil {
			return nil, err
		}
		return d.generateTypeCast(n.Loc(), inner, castType, true)

	case *ast.Negation:
		inner, err := d.compileValue(n.Inner, targetType)
		if err != nil {
			return nil, err
		}
		if it, ok := asInteger(inner); ok && !it.IsSigned {
			return nil, diag.New(diag.UnsignedType, n.Loc(), "cannot negate unsigned value")
		}
		reg, err := d.ensureRegister(n.Loc(), inner)
		if err != nil {
			return nil, err
		}
		name, err := regalloc.Name(reg.Alloc.Id(), reg.RegType.SizeBytes, n.Loc())
		if err != nil {
			return nil, err
		}
		d.asm.Code("neg %s", name)
		return reg, nil

	case *ast.FunctionCall:
		return d.compileCall(n, true)

	case *ast.Binary:
		return d.compileBinary(n, targetType)

	default:
		return nil, diag.New(diag.UnexpectedSyntaxNode, expr.Loc(), "unexpected expression node %T", expr)
	}
}

func (d *Driver) compileBinary(n *ast.Binary, targetType *types.Integer) (value.Value, error) {
	resultType, err := d.evaluateType(n)
	if err != nil {
		return nil, err
	}
	if resultType == nil {
		resultType = targetType
	}

	left, err := d.compileValue(n.Left, resultType)
	if err != nil {
		return nil, err
	}
	right, err := d.compileValue(n.Right, resultType)
	if err != nil {
		return nil, err
	}

	leftType, leftKnown := asInteger(left)
	rightType, rightKnown := asInteger(right)
	if leftKnown && rightKnown && leftType.IsSigned != rightType.IsSigned {
		return nil, diag.New(diag.InvalidTypeCast, n.Loc(), "operands have mismatched signedness")
	}

	if _, ok := left.(value.Register); !ok {
		if n.Op == ast.Add {
			if _, ok := right.(value.Register); ok {
				left, right = right, left
			}
		}
		if _, ok := left.(value.Register); !ok {
			regType := types.I32
			switch {
			case resultType != nil:
				regType = *resultType
			case leftKnown:
				regType = leftType
			}
			alloc, err := d.reg.Allocate(n.Loc())
			if err != nil {
				return nil, err
			}
			reg := value.Register{RegType: regType, Alloc: alloc}
			if err := d.generateMov(n.Loc(), reg, left, false); err != nil {
				return nil, err
			}
			left = reg
		}
	}

	if resultType != nil {
		casted, err := d.generateTypeCast(n.Loc(), right, *resultType, false)
		if err != nil {
			return nil, err
		}
		right = casted
	}

	leftReg := left.(value.Register)
	leftName, err := regalloc.Name(leftReg.Alloc.Id(), leftReg.RegType.SizeBytes, n.Loc())
	if err != nil {
		return nil, err
	}
	rightOperand, err := asmgen.FormatOperand(right, n.Loc())
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.Add:
		d.asm.Code("add %s, %s", leftName, rightOperand)
	case ast.Sub:
		d.asm.Code("sub %s, %s", leftName, rightOperand)
	default:
		return nil, diag.New(diag.NotImplemented, n.Loc(), "operator %v is not implemented", n.Op)
	}

	d.freeValue(right)
	return leftReg, nil
}

// compileCall implements spec.md §4.5. needValue controls whether the call
// is in expression context (a return value is required) or statement
// context (any return value is discarded).
func (d *Driver) compileCall(n *ast.FunctionCall, needValue bool) (value.Value, error) {
	fn, err := d.resolveCallee(n.Callee)
	if err != nil {
		return nil, err
	}
	if len(n.Args) != len(fn.ArgTypes) {
		return nil, diag.New(diag.UnexpectedSyntaxNode, n.Loc(), "%q expects %d argument(s), got %d", fn.Symbol, len(fn.ArgTypes), len(n.Args))
	}

	stackSize := 4 * len(n.Args)
	if stackSize > 0 {
		d.asm.Code("sub esp, %d", stackSize)
	}
	for i, argExpr := range n.Args {
		dst := value.Symbol{SymType: fn.ArgTypes[i], Name: "esp", Offset: 4 * i}
		if err := d.generateAssignment(argExpr.Loc(), argExpr, dst); err != nil {
			return nil, err
		}
	}

	if needValue && fn.ReturnType == nil {
		return nil, diag.New(diag.NoReturnValue, n.Loc(), "%q does not return a value", fn.Symbol)
	}

	var result value.Value
	if needValue {
		alloc, displaced, err := d.reg.GetReturnRegister(n.Loc())
		if err != nil {
			return nil, err
		}
		if displaced >= 0 {
			oldName, err := regalloc.Name(regalloc.ReturnRegister, 4, n.Loc())
			if err != nil {
				return nil, err
			}
			newName, err := regalloc.Name(displaced, 4, n.Loc())
			if err != nil {
				return nil, err
			}
			d.asm.Code("mov %s, %s", newName, oldName)
		}
		result = value.Register{RegType: *fn.ReturnType, Alloc: alloc}
	}

	d.asm.Code("call %s", fn.Symbol)
	if stackSize > 0 {
		d.asm.Code("add esp, %d", stackSize)
	}

	return result, nil
}

// --- Type & value operations (spec.md §4.4) -------------------------------

func asInteger(v value.Value) (types.Integer, bool) {
	t := v.Type()
	it, ok := t.(types.Integer)
	return it, ok
}

// convertInteger implements convert_integer.
func convertInteger(loc token.Location, v value.Integer, target types.Integer, explicit bool) (value.Integer, error) {
	if v.IntType != nil && v.IntType.IsSigned != target.IsSigned && v.Literal < 0 {
		return value.Integer{}, diag.New(diag.InvalidTypeCast, loc, "cannot change type's signedness")
	}

	lit := v.Literal
	if lit < target.Min() || lit > target.Max() {
		if !explicit {
			return value.Integer{}, diag.New(diag.InvalidTypeCast, loc, "possible value loss")
		}
		lit &= target.Mask()
		if target.IsSigned && lit > target.Max() {
			lit -= 2*target.Max() + 2
		}
	}

	t := target
	return value.Integer{IntType: &t, Literal: lit}, nil
}

// generateTypeCast implements generate_type_cast.
func (d *Driver) generateTypeCast(loc token.Location, v value.Value, target types.Integer, explicit bool) (value.Value, error) {
	srcType, known := asInteger(v)
	if known && srcType.Equal(target) {
		return v, nil
	}

	if intVal, ok := v.(value.Integer); ok {
		converted, err := convertInteger(loc, intVal, target, explicit)
		if err != nil {
			return nil, err
		}
		return converted, nil
	}

	if !known {
		return nil, diag.New(diag.UnexpectedSyntaxNode, loc, "cannot cast value of unresolved type")
	}

	if srcType.IsSigned != target.IsSigned && !explicit {
		return nil, diag.New(diag.InvalidTypeCast, loc, "cannot change type's signedness")
	}

	switch {
	case srcType.SizeBytes > target.SizeBytes: // narrowing
		if !explicit {
			return nil, diag.New(diag.InvalidTypeCast, loc, "possible value loss")
		}
		return reinterpretAtWidth(v, target)

	case srcType.SizeBytes < target.SizeBytes: // widening
		switch vv := v.(type) {
		case value.Register:
			wide := vv.WithType(target)
			wideName, err := regalloc.Name(wide.Alloc.Id(), target.SizeBytes, loc)
			if err != nil {
				return nil, err
			}
			if srcType.IsSigned {
				narrowName, err := regalloc.Name(vv.Alloc.Id(), srcType.SizeBytes, loc)
				if err != nil {
					return nil, err
				}
				d.asm.Code("movsx %s, %s", wideName, narrowName)
			} else {
				d.asm.Code("and %s, %d", wideName, srcType.Mask())
			}
			return wide, nil

		case value.Symbol:
			alloc, err := d.reg.Allocate(loc)
			if err != nil {
				return nil, err
			}
			reg := value.Register{RegType: target, Alloc: alloc}
			regName, err := regalloc.Name(alloc.Id(), target.SizeBytes, loc)
			if err != nil {
				return nil, err
			}
			srcOperand, err := asmgen.FormatOperand(vv, loc)
			if err != nil {
				return nil, err
			}
			op := "movzx"
			if srcType.IsSigned {
				op = "movsx"
			}
			d.asm.Code("%s %s, %s", op, regName, srcOperand)
			return reg, nil

		default:
			return nil, diag.New(diag.UnexpectedSyntaxNode, loc, "cannot widen value of type %T", v)
		}

	default: // same size, signedness already validated above
		return reinterpretAtWidth(v, target)
	}
}

func reinterpretAtWidth(v value.Value, t types.Integer) (value.Value, error) {
	switch vv := v.(type) {
	case value.Register:
		return vv.WithType(t), nil
	case value.Symbol:
		return vv.WithType(t), nil
	default:
		return nil, fmt.Errorf("codegen: cannot reinterpret value of type %T", v)
	}
}

func sameLocation(a, b value.Value) bool {
	if ra, ok := a.(value.Register); ok {
		if rb, ok := b.(value.Register); ok {
			return ra.Alias(rb)
		}
		return false
	}
	if sa, ok := a.(value.Symbol); ok {
		if sb, ok := b.(value.Symbol); ok {
			return sa.Alias(sb)
		}
	}
	return false
}

func (d *Driver) freeValue(v value.Value) {
	if r, ok := v.(value.Register); ok {
		d.reg.Free(r.Alloc)
	}
}

func (d *Driver) ensureRegister(loc token.Location, v value.Value) (value.Register, error) {
	if r, ok := v.(value.Register); ok {
		return r, nil
	}
	t, ok := asInteger(v)
	if !ok {
		t = types.I32
	}
	alloc, err := d.reg.Allocate(loc)
	if err != nil {
		return value.Register{}, err
	}
	reg := value.Register{RegType: t, Alloc: alloc}
	if err := d.generateMov(loc, reg, v, false); err != nil {
		return value.Register{}, err
	}
	return reg, nil
}

// generateMov implements generate_mov. dst must be a Register or a Symbol
// (spec.md §4.4: "Destination is strongly typed").
func (d *Driver) generateMov(loc token.Location, dst value.Value, src value.Value, explicit bool) error {
	dstType, ok := asInteger(dst)
	if !ok {
		return diag.New(diag.UnexpectedSyntaxNode, loc, "move destination must be strongly typed")
	}

	if srcType, ok := asInteger(src); ok && !explicit {
		if srcType.IsSigned != dstType.IsSigned {
			return diag.New(diag.InvalidTypeCast, loc, "cannot change type's signedness")
		}
		if dstType.SizeBytes < srcType.SizeBytes {
			return diag.New(diag.InvalidTypeCast, loc, "possible value loss")
		}
	}

	if sameLocation(dst, src) {
		d.freeValue(src)
		return nil
	}

	if _, dstIsSym := dst.(value.Symbol); dstIsSym {
		if srcSym, srcIsSym := src.(value.Symbol); srcIsSym {
			scratchType := srcSym.IntegerType()
			scratchAlloc, err := d.reg.Allocate(loc)
			if err != nil {
				return err
			}
			scratch := value.Register{RegType: scratchType, Alloc: scratchAlloc}
			scratchName, err := regalloc.Name(scratch.Alloc.Id(), scratchType.SizeBytes, loc)
			if err != nil {
				return err
			}
			srcOperand, err := asmgen.FormatOperand(srcSym, loc)
			if err != nil {
				return err
			}
			d.asm.Code("mov %s, %s", scratchName, srcOperand)
			src = scratch
		}
	}

	if intVal, ok := src.(value.Integer); ok {
		converted, err := convertInteger(loc, intVal, dstType, explicit)
		if err != nil {
			return err
		}
		dstOperand, err := asmgen.FormatOperand(dst, loc)
		if err != nil {
			return err
		}
		d.asm.Code("mov %s, %d", dstOperand, converted.Literal)
		d.freeValue(src)
		return nil
	}

	srcType, _ := asInteger(src)
	dstOperand, err := asmgen.FormatOperand(dst, loc)
	if err != nil {
		return err
	}

	switch {
	case dstType.SizeBytes == srcType.SizeBytes:
		srcOperand, err := asmgen.FormatOperand(src, loc)
		if err != nil {
			return err
		}
		d.asm.Code("mov %s, %s", dstOperand, srcOperand)

	case dstType.SizeBytes > srcType.SizeBytes:
		srcOperand, err := asmgen.FormatOperand(src, loc)
		if err != nil {
			return err
		}
		op := "movzx"
		if srcType.IsSigned {
			op = "movsx"
		}
		d.asm.Code("%s %s, %s", op, dstOperand, srcOperand)

	default:
		narrowed, err := reinterpretAtWidth(src, dstType)
		if err != nil {
			return err
		}
		srcOperand, err := asmgen.FormatOperand(narrowed, loc)
		if err != nil {
			return err
		}
		d.asm.Code("mov %s, %s", dstOperand, srcOperand)
	}

	d.freeValue(src)
	return nil
}

// generateAssignment implements spec.md §4.4's generate_assignment. It is
// shared by Assignment statements, local declarations, and argument-passing,
// all of which are "assign an expression into a strongly typed destination"
// under the hood. compileReturn applies the same cast rule inline instead of
// calling it.
func (d *Driver) generateAssignment(loc token.Location, rhs ast.Expr, dst value.Value) error {
	dstType, ok := asInteger(dst)
	if !ok {
		return diag.New(diag.NotLValue, loc, "assignment target does not have an integer type")
	}

	folded, err := optimize.Expr(rhs)
	if err != nil {
		return err
	}

	if tc, ok := folded.(*ast.TypeCast); ok {
		if castType, err := d.resolveType(tc.TargetTypeExpr); err == nil && castType.Equal(dstType) {
			inner, err := d.compileValue(tc.Inner, nil)
			if err != nil {
				return err
			}
			return d.generateMov(tc.Loc(), dst, inner, true)
		}
	}

	v, err := d.compileValue(folded, &dstType)
	if err != nil {
		return err
	}
	return d.generateMov(loc, dst, v, false)
}
