// Package folder implements the optional constant-folding rewrite: a
// bottom-up pass that replaces compile-time-evaluable operator
// applications over literal operands with the literal result. The
// rewrite is semantics-preserving and idempotent, and it never touches a
// subtree the checker annotated with the error type.
package folder

import (
	"strconv"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/checker"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/token"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/types"
)

// Fold rewrites the program in place. It must run after contextual
// analysis: folding decisions consult the checker's type annotations.
func Fold(prog *ast.Program) {
	foldCommand(prog.Command)
}

func foldCommand(cmd ast.Command) {
	switch cmd := cmd.(type) {
	case *ast.AssignCommand:
		foldVname(cmd.V)
		cmd.Expr = foldExpr(cmd.Expr)
	case *ast.CallCommand:
		foldArgs(cmd.Args)
	case *ast.SequentialCommand:
		for _, sub := range cmd.Commands {
			foldCommand(sub)
		}
	case *ast.EmptyCommand:
	case *ast.LetCommand:
		foldDecls(cmd.Decls)
		foldCommand(cmd.Body)
	case *ast.IfCommand:
		cmd.Cond = foldExpr(cmd.Cond)
		foldCommand(cmd.Then)
		foldCommand(cmd.Else)
	case *ast.WhileCommand:
		cmd.Cond = foldExpr(cmd.Cond)
		foldCommand(cmd.Body)
	default:
		panic("folder: unhandled command node")
	}
}

func foldDecls(decls []ast.Declaration) {
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.ConstDecl:
			d.Value = foldExpr(d.Value)
		case *ast.VarDecl, *ast.TypeDecl, *ast.PrimitiveDecl:
		case *ast.ProcDecl:
			foldCommand(d.Body)
		case *ast.FuncDecl:
			d.Expr = foldExpr(d.Expr)
		default:
			panic("folder: unhandled declaration node")
		}
	}
}

func foldVname(v ast.Vname) {
	switch v := v.(type) {
	case *ast.SimpleVname:
	case *ast.DotVname:
		foldVname(v.Base)
	case *ast.SubscriptVname:
		foldVname(v.Base)
		v.Index = foldExpr(v.Index)
	default:
		panic("folder: unhandled vname node")
	}
}

func foldArgs(args []ast.Expression) {
	for i, a := range args {
		args[i] = foldExpr(a)
	}
}

func foldExpr(expr ast.Expression) ast.Expression {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral, *ast.CharLiteral:
		return expr

	case *ast.VnameExpr:
		foldVname(expr.V)
		return expr

	case *ast.CallExpr:
		foldArgs(expr.Args)
		return expr

	case *ast.UnaryExpr:
		expr.Operand = foldExpr(expr.Operand)
		if types.IsError(expr.ExprType()) {
			return expr
		}
		v, ok := constOperand(expr.Operand)
		if !ok {
			return expr
		}
		switch expr.Op {
		case "-":
			return intLiteral(expr.Token, -v)
		case `\`:
			return boolLiteral(expr.Token, v == 0)
		}
		return expr

	case *ast.BinaryExpr:
		expr.Left = foldExpr(expr.Left)
		expr.Right = foldExpr(expr.Right)
		if types.IsError(expr.ExprType()) {
			// Never fold past a type mismatch.
			return expr
		}
		left, okL := constOperand(expr.Left)
		right, okR := constOperand(expr.Right)
		if !okL || !okR {
			return expr
		}
		value, ok := checker.EvalBinary(expr.Op, left, right)
		if !ok {
			// Division by zero stays in the tree; it faults at runtime.
			return expr
		}
		if types.Equal(expr.ExprType(), types.Bool) {
			return boolLiteral(expr.Token, value != 0)
		}
		return intLiteral(expr.Token, value)

	case *ast.IfExpr:
		expr.Cond = foldExpr(expr.Cond)
		expr.Then = foldExpr(expr.Then)
		expr.Else = foldExpr(expr.Else)
		return expr

	case *ast.LetExpr:
		foldDecls(expr.Decls)
		expr.Expr = foldExpr(expr.Expr)
		return expr

	case *ast.ArrayExpr:
		foldArgs(expr.Elems)
		return expr

	case *ast.RecordExpr:
		for _, f := range expr.Fields {
			f.Value = foldExpr(f.Value)
		}
		return expr

	default:
		panic("folder: unhandled expression node")
	}
}

// constOperand recognizes the operands folding may consume: integer and
// character literals and references to constants whose values are known
// at compile time, standard-environment or declared.
func constOperand(expr ast.Expression) (int, bool) {
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
		case *ast.PrimitiveDecl:
			if decl.Kind == ast.PrimitiveConst {
				return decl.Value, true
			}
		case *ast.ConstDecl:
			return checker.ConstValue(decl.Value)
		}
	}
	return 0, false
}

func intLiteral(at token.Token, value int) *ast.IntegerLiteral {
	lit := strconv.Itoa(value)
	return &ast.IntegerLiteral{
		Token: token.Token{Type: token.TokenInt, Literal: lit, Line: at.Line, Column: at.Column},
		Value: value,
	}
}

// boolLiteral builds a reference to the standard environment's true or
// false constant. Triangle has no boolean literal token, so a folded
// boolean is expressed the way source programs express one.
func boolLiteral(at token.Token, value bool) *ast.VnameExpr {
	decl := checker.FalseDecl
	if value {
		decl = checker.TrueDecl
	}
	ident := &ast.Identifier{
		Token: token.Token{Type: token.TokenIdent, Literal: decl.Name, Line: at.Line, Column: at.Column},
		Value: decl.Name,
		Decl:  decl,
	}
	return &ast.VnameExpr{
		Token: ident.Token,
		V:     &ast.SimpleVname{Token: ident.Token, Name: ident, Type: types.Bool},
	}
}
