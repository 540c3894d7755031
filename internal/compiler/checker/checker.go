package checker

import (
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/report"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/scope"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/token"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/types"
)

// Checker is the contextual analyzer: a single depth-first walk that
// resolves every identifier against the scope chain, synthesizes a type
// for every expression bottom-up, and records semantic errors in the
// shared reporter. It never aborts: unresolved names and ill-typed
// expressions are annotated with the error type so one mistake doesn't
// cascade into a pile of follow-on diagnostics.
type Checker struct {
	reporter *report.Reporter
	scope    *scope.Scope
}

// Check analyzes the program in place. After it returns with zero errors
// recorded, every identifier is bound and every expression is typed.
func Check(prog *ast.Program, reporter *report.Reporter) {
	c := &Checker{
		reporter: reporter,
		scope:    scope.NewScope(StdEnv()),
	}
	c.checkCommand(prog.Command)
}

func (c *Checker) errorAt(tok token.Token, format string, args ...any) {
	c.reporter.Error(tok.Line, tok.Column, format, args...)
}

func (c *Checker) pushScope() {
	c.scope = scope.NewScope(c.scope)
}

func (c *Checker) popScope() {
	c.scope = c.scope.Outer
}

// define declares a name in the current scope. A repeat declaration at
// the same level is reported; the first declaration stays visible.
func (c *Checker) define(name *ast.Identifier, decl ast.Declaration) {
	if err := c.scope.Define(name.Value, decl); err != nil {
		c.errorAt(name.Token, "%v", err)
	}
}

// --- Commands ---

func (c *Checker) checkCommand(cmd ast.Command) {
	switch cmd := cmd.(type) {
	case *ast.AssignCommand:
		vType := c.checkVname(cmd.V)
		eType := c.checkExpr(cmd.Expr)
		if !c.assignable(cmd.V) {
			c.errorAt(cmd.V.GetToken(), "%s is not an assignable variable", cmd.V)
		}
		if !types.Equal(eType, vType) {
			c.errorAt(cmd.Token, "cannot assign %s to a variable of type %s", eType, vType)
		}

	case *ast.CallCommand:
		c.checkCall(cmd.Name, cmd.Args, false)

	case *ast.SequentialCommand:
		for _, sub := range cmd.Commands {
			c.checkCommand(sub)
		}

	case *ast.EmptyCommand:
		// nothing to check

	case *ast.LetCommand:
		c.pushScope()
		c.checkDecls(cmd.Decls)
		c.checkCommand(cmd.Body)
		c.popScope()

	case *ast.IfCommand:
		c.checkCondition(cmd.Cond)
		c.checkCommand(cmd.Then)
		c.checkCommand(cmd.Else)

	case *ast.WhileCommand:
		c.checkCondition(cmd.Cond)
		c.checkCommand(cmd.Body)

	default:
		panic("checker: unhandled command node")
	}
}

func (c *Checker) checkCondition(cond ast.Expression) {
	t := c.checkExpr(cond)
	if !types.Equal(t, types.Bool) {
		c.errorAt(cond.GetToken(), "condition must be Boolean, found %s", t)
	}
}

// --- Declarations ---

func (c *Checker) checkDecls(decls []ast.Declaration) {
	for _, d := range decls {
		c.checkDecl(d)
	}
}

func (c *Checker) checkDecl(decl ast.Declaration) {
	switch decl := decl.(type) {
	case *ast.ConstDecl:
		decl.Type = c.checkExpr(decl.Value)
		if !types.IsError(decl.Type) {
			if _, ok := c.constValue(decl.Value); !ok {
				c.errorAt(decl.Name.Token, "initializer of constant %q is not a constant expression", decl.Name.Value)
			}
		}
		c.define(decl.Name, decl)

	case *ast.VarDecl:
		decl.Type = c.resolveDenoter(decl.Denoter)
		c.define(decl.Name, decl)

	case *ast.ProcDecl:
		// Declared before the body is checked, so the procedure can call
		// itself.
		c.define(decl.Name, decl)
		c.pushScope()
		c.declareParams(decl.Params)
		c.checkCommand(decl.Body)
		c.popScope()

	case *ast.FuncDecl:
		decl.ReturnType = c.resolveDenoter(decl.ReturnDenoter)
		c.define(decl.Name, decl)
		c.pushScope()
		c.declareParams(decl.Params)
		result := c.checkExpr(decl.Expr)
		if !types.Equal(result, decl.ReturnType) {
			c.errorAt(decl.Name.Token, "function %q returns %s, body has type %s",
				decl.Name.Value, decl.ReturnType, result)
		}
		c.popScope()

	case *ast.TypeDecl:
		decl.Type = c.resolveDenoter(decl.Denoter)
		c.define(decl.Name, decl)

	default:
		panic("checker: unhandled declaration node")
	}
}

func (c *Checker) declareParams(params []*ast.FormalParam) {
	for _, p := range params {
		p.Type = c.resolveDenoter(p.Denoter)
		c.define(p.Name, p)
	}
}

// --- Expressions ---

func (c *Checker) checkExpr(expr ast.Expression) types.Type {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		return types.Int

	case *ast.CharLiteral:
		return types.Char

	case *ast.VnameExpr:
		return c.checkVname(expr.V)

	case *ast.CallExpr:
		expr.Type = c.checkCall(expr.Name, expr.Args, true)
		return expr.Type

	case *ast.UnaryExpr:
		operand := c.checkExpr(expr.Operand)
		sig, known := unaryOps[expr.Op]
		switch {
		case !known:
			c.errorAt(expr.Token, "unknown operator %q", expr.Op)
			expr.Type = types.Error
		case types.IsError(operand):
			// Already reported further down the tree.
			expr.Type = types.Error
		case !types.Equal(operand, sig.left):
			c.errorAt(expr.Token, "operator %q expects %s, found %s", expr.Op, sig.left, operand)
			expr.Type = types.Error
		default:
			expr.Type = sig.result
		}
		return expr.Type

	case *ast.BinaryExpr:
		left := c.checkExpr(expr.Left)
		right := c.checkExpr(expr.Right)
		expr.Type = c.binaryType(expr, left, right)
		return expr.Type

	case *ast.IfExpr:
		c.checkCondition(expr.Cond)
		thenType := c.checkExpr(expr.Then)
		elseType := c.checkExpr(expr.Else)
		if !types.Equal(thenType, elseType) {
			c.errorAt(expr.Token, "if branches disagree: %s vs %s", thenType, elseType)
			expr.Type = types.Error
		} else {
			expr.Type = thenType
		}
		return expr.Type

	case *ast.LetExpr:
		c.pushScope()
		c.checkDecls(expr.Decls)
		expr.Type = c.checkExpr(expr.Expr)
		c.popScope()
		return expr.Type

	case *ast.ArrayExpr:
		if len(expr.Elems) == 0 {
			c.errorAt(expr.Token, "array aggregate must have at least one element")
			expr.Type = types.Error
			return expr.Type
		}
		elemType := c.checkExpr(expr.Elems[0])
		for _, e := range expr.Elems[1:] {
			t := c.checkExpr(e)
			if !types.Equal(t, elemType) {
				c.errorAt(e.GetToken(), "array elements must share one type: %s vs %s", elemType, t)
			}
		}
		expr.Type = &types.Array{Elem: elemType, Len: len(expr.Elems)}
		return expr.Type

	case *ast.RecordExpr:
		fields := make([]types.Field, 0, len(expr.Fields))
		seen := make(map[string]bool)
		for _, f := range expr.Fields {
			if seen[f.Name.Value] {
				c.errorAt(f.Name.Token, "duplicate field %q in record aggregate", f.Name.Value)
			}
			seen[f.Name.Value] = true
			fields = append(fields, types.Field{Name: f.Name.Value, Type: c.checkExpr(f.Value)})
		}
		expr.Type = &types.Record{Fields: fields}
		return expr.Type

	default:
		panic("checker: unhandled expression node")
	}
}

// binaryType applies the operator signature table. An error type on
// either side suppresses further reporting: the root cause has already
// been diagnosed.
func (c *Checker) binaryType(expr *ast.BinaryExpr, left, right types.Type) types.Type {
	sig, known := binaryOps[expr.Op]
	if !known {
		c.errorAt(expr.Token, "unknown operator %q", expr.Op)
		return types.Error
	}
	if types.IsError(left) || types.IsError(right) {
		return types.Error
	}
	if sig.left == types.Any {
		// Polymorphic equality: both operands must have the same type.
		if !types.Equal(left, right) {
			c.errorAt(expr.Token, "operator %q expects equal operand types, found %s and %s", expr.Op, left, right)
			return types.Error
		}
		return sig.result
	}
	if !types.Equal(left, sig.left) || !types.Equal(right, sig.right) {
		c.errorAt(expr.Token, "operator %q expects (%s, %s), found (%s, %s)",
			expr.Op, sig.left, sig.right, left, right)
		return types.Error
	}
	return sig.result
}

// --- Vnames ---

func (c *Checker) checkVname(v ast.Vname) types.Type {
	switch v := v.(type) {
	case *ast.SimpleVname:
		decl, ok := c.scope.Lookup(v.Name.Value)
		if !ok {
			c.errorAt(v.Name.Token, "undeclared identifier %q", v.Name.Value)
			v.Type = types.Error
			return v.Type
		}
		v.Name.Decl = decl
		switch decl := decl.(type) {
		case *ast.ConstDecl:
			v.Type = decl.Type
		case *ast.VarDecl:
			v.Type = decl.Type
		case *ast.FormalParam:
			v.Type = decl.Type
		case *ast.PrimitiveDecl:
			if decl.Kind != ast.PrimitiveConst {
				c.errorAt(v.Name.Token, "%q is not a value", v.Name.Value)
				v.Type = types.Error
			} else {
				v.Type = decl.Type
			}
		default:
			c.errorAt(v.Name.Token, "%q is not a value", v.Name.Value)
			v.Type = types.Error
		}
		return v.Type

	case *ast.DotVname:
		baseType := c.checkVname(v.Base)
		if types.IsError(baseType) {
			v.Type = types.Error
			return v.Type
		}
		record, ok := baseType.(*types.Record)
		if !ok {
			c.errorAt(v.Token, "%s is not a record", v.Base)
			v.Type = types.Error
			return v.Type
		}
		fieldType, ok := record.Lookup(v.Field.Value)
		if !ok {
			c.errorAt(v.Field.Token, "no field %q in %s", v.Field.Value, record)
			v.Type = types.Error
			return v.Type
		}
		v.Type = fieldType
		return v.Type

	case *ast.SubscriptVname:
		baseType := c.checkVname(v.Base)
		indexType := c.checkExpr(v.Index)
		if !types.Equal(indexType, types.Int) {
			c.errorAt(v.Index.GetToken(), "array index must be Integer, found %s", indexType)
		}
		if types.IsError(baseType) {
			v.Type = types.Error
			return v.Type
		}
		array, ok := baseType.(*types.Array)
		if !ok {
			c.errorAt(v.Token, "%s is not an array", v.Base)
			v.Type = types.Error
			return v.Type
		}
		v.Type = array.Elem
		return v.Type

	default:
		panic("checker: unhandled vname node")
	}
}

// assignable reports whether v names storage that may be written:
// variables and var parameters, possibly through field or subscript
// selectors. Constants and value parameters are read-only.
func (c *Checker) assignable(v ast.Vname) bool {
	switch v := v.(type) {
	case *ast.SimpleVname:
		switch decl := v.Name.Decl.(type) {
		case *ast.VarDecl:
			return true
		case *ast.FormalParam:
			return decl.ByRef
		case nil:
			return true // undeclared; already reported
		default:
			return false
		}
	case *ast.DotVname:
		return c.assignable(v.Base)
	case *ast.SubscriptVname:
		return c.assignable(v.Base)
	}
	return false
}

// --- Calls ---

// checkCall resolves a procedure or function call, checks arity and
// per-argument compatibility, and returns the result type (nil for
// procedures). wantValue selects between the two call forms: expression
// calls need a function, command calls need a procedure.
func (c *Checker) checkCall(name *ast.Identifier, args []ast.Expression, wantValue bool) types.Type {
	// Arguments are always checked so their annotations are filled in,
	// whatever happens with the callee.
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = c.checkExpr(a)
	}

	decl, ok := c.scope.Lookup(name.Value)
	if !ok {
		c.errorAt(name.Token, "undeclared identifier %q", name.Value)
		return types.Error
	}
	name.Decl = decl

	var (
		paramTypes []types.Type
		paramByRef []bool
		result     types.Type
		isFunc     bool
	)
	switch decl := decl.(type) {
	case *ast.ProcDecl:
		paramTypes, paramByRef = formalSignature(decl.Params)
	case *ast.FuncDecl:
		paramTypes, paramByRef = formalSignature(decl.Params)
		result = decl.ReturnType
		isFunc = true
	case *ast.PrimitiveDecl:
		switch decl.Kind {
		case ast.PrimitiveProc:
			paramTypes, paramByRef = decl.Params, decl.ByRef
		case ast.PrimitiveFunc:
			paramTypes, paramByRef = decl.Params, decl.ByRef
			result = decl.Type
			isFunc = true
		default:
			c.errorAt(name.Token, "%q cannot be called", name.Value)
			return types.Error
		}
	default:
		c.errorAt(name.Token, "%q cannot be called", name.Value)
		return types.Error
	}

	if wantValue && !isFunc {
		c.errorAt(name.Token, "%q is a procedure, not a function", name.Value)
		return types.Error
	}
	if !wantValue && isFunc {
		c.errorAt(name.Token, "%q is a function, not a procedure", name.Value)
		return types.Error
	}

	if len(args) != len(paramTypes) {
		c.errorAt(name.Token, "%q expects %d argument(s), got %d", name.Value, len(paramTypes), len(args))
		return orError(result)
	}

	for i, a := range args {
		if !types.Equal(argTypes[i], paramTypes[i]) {
			c.errorAt(a.GetToken(), "argument %d of %q must be %s, found %s",
				i+1, name.Value, paramTypes[i], argTypes[i])
		}
		if len(paramByRef) > i && paramByRef[i] {
			ve, isVname := a.(*ast.VnameExpr)
			if !isVname || !c.assignable(ve.V) {
				c.errorAt(a.GetToken(), "argument %d of %q must be a variable", i+1, name.Value)
			}
		}
	}
	return orError(result)
}

func formalSignature(params []*ast.FormalParam) ([]types.Type, []bool) {
	ts := make([]types.Type, len(params))
	refs := make([]bool, len(params))
	for i, p := range params {
		ts[i] = p.Type
		refs[i] = p.ByRef
	}
	return ts, refs
}

func orError(t types.Type) types.Type {
	if t == nil {
		return types.Error
	}
	return t
}

// --- Type denoters ---

func (c *Checker) resolveDenoter(d ast.TypeDenoter) types.Type {
	switch d := d.(type) {
	case *ast.NamedTypeDenoter:
		decl, ok := c.scope.Lookup(d.Name.Value)
		if !ok {
			c.errorAt(d.Name.Token, "undeclared type %q", d.Name.Value)
			return types.Error
		}
		d.Name.Decl = decl
		switch decl := decl.(type) {
		case *ast.TypeDecl:
			return decl.Type
		case *ast.PrimitiveDecl:
			if decl.Kind == ast.PrimitiveType {
				return decl.Type
			}
		}
		c.errorAt(d.Name.Token, "%q is not a type", d.Name.Value)
		return types.Error

	case *ast.ArrayTypeDenoter:
		elem := c.resolveDenoter(d.Elem)
		length, ok := c.constValue(d.Len)
		if !ok {
			c.errorAt(d.Len.GetToken(), "array length is not a constant expression")
			return types.Error
		}
		if length <= 0 {
			c.errorAt(d.Len.GetToken(), "array length must be positive, found %d", length)
			return types.Error
		}
		if types.IsError(elem) {
			return types.Error
		}
		return &types.Array{Elem: elem, Len: length}

	case *ast.RecordTypeDenoter:
		fields := make([]types.Field, 0, len(d.Fields))
		seen := make(map[string]bool)
		for _, f := range d.Fields {
			if seen[f.Name.Value] {
				c.errorAt(f.Name.Token, "duplicate field %q in record type", f.Name.Value)
			}
			seen[f.Name.Value] = true
			fields = append(fields, types.Field{Name: f.Name.Value, Type: c.resolveDenoter(f.Denoter)})
		}
		return &types.Record{Fields: fields}

	default:
		panic("checker: unhandled type denoter node")
	}
}

// --- Compile-time evaluation ---

// constValue reduces an expression to a compile-time value. Used for
// const initializers and array lengths.
func (c *Checker) constValue(expr ast.Expression) (int, bool) {
	return ConstValue(expr)
}

// ConstValue reduces an annotated expression to a compile-time value:
// literals, references to constants with known values, and the pure
// integer and boolean operators over such operands. Booleans evaluate as
// 0 and 1. Identifier resolution must already have happened; the encoder
// reuses this to elaborate constant declarations.
func ConstValue(expr ast.Expression) (int, bool) {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		return expr.Value, true

	case *ast.CharLiteral:
		return int(expr.Value), true

	case *ast.VnameExpr:
		sv, ok := expr.V.(*ast.SimpleVname)
		if !ok {
			return 0, false
		}
		switch decl := sv.Name.Decl.(type) {
		case *ast.ConstDecl:
			return ConstValue(decl.Value)
		case *ast.PrimitiveDecl:
			if decl.Kind == ast.PrimitiveConst {
				return decl.Value, true
			}
		}
		return 0, false

	case *ast.UnaryExpr:
		v, ok := ConstValue(expr.Operand)
		if !ok {
			return 0, false
		}
		switch expr.Op {
		case "-":
			return -v, true
		case `\`:
			if v == 0 {
				return 1, true
			}
			return 0, true
		}
		return 0, false

	case *ast.BinaryExpr:
		left, okL := ConstValue(expr.Left)
		right, okR := ConstValue(expr.Right)
		if !okL || !okR {
			return 0, false
		}
		return EvalBinary(expr.Op, left, right)

	default:
		return 0, false
	}
}

// EvalBinary evaluates a binary operator over compile-time operand
// values. It is shared with the constant folder, so folding and the
// checker's constant contexts agree on semantics. Division by zero is
// not evaluable.
func EvalBinary(op string, left, right int) (int, bool) {
	switch op {
	case "+":
		return left + right, true
	case "-":
		return left - right, true
	case "*":
		return left * right, true
	case "/":
		if right == 0 {
			return 0, false
		}
		return left / right, true
	case "//":
		if right == 0 {
			return 0, false
		}
		return left % right, true
	case "<":
		return boolToInt(left < right), true
	case "<=":
		return boolToInt(left <= right), true
	case ">":
		return boolToInt(left > right), true
	case ">=":
		return boolToInt(left >= right), true
	case "=":
		return boolToInt(left == right), true
	case `\=`:
		return boolToInt(left != right), true
	case `/\`:
		return boolToInt(left != 0 && right != 0), true
	case `\/`:
		return boolToInt(left != 0 || right != 0), true
	}
	return 0, false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
