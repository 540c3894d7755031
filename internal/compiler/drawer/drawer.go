// Package drawer renders an AST as an indented textual tree for
// inspection. It only reads the tree; annotations filled in by the
// checker are shown when present.
package drawer

import (
	"fmt"
	"io"
	"strings"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
)

type Drawer struct {
	w io.Writer
}

func NewDrawer(w io.Writer) *Drawer {
	return &Drawer{w: w}
}

// Draw writes the whole program tree, one node per line.
func (d *Drawer) Draw(prog *ast.Program) {
	d.line(0, "Program")
	d.drawCommand(prog.Command, 1)
}

func (d *Drawer) line(depth int, format string, args ...any) {
	fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *Drawer) drawCommand(cmd ast.Command, depth int) {
	switch cmd := cmd.(type) {
	case *ast.AssignCommand:
		d.line(depth, "AssignCommand")
		d.drawVname(cmd.V, depth+1)
		d.drawExpr(cmd.Expr, depth+1)
	case *ast.CallCommand:
		d.line(depth, "CallCommand %s", cmd.Name.Value)
		for _, a := range cmd.Args {
			d.drawExpr(a, depth+1)
		}
	case *ast.SequentialCommand:
		d.line(depth, "SequentialCommand")
		for _, sub := range cmd.Commands {
			d.drawCommand(sub, depth+1)
		}
	case *ast.EmptyCommand:
		d.line(depth, "EmptyCommand")
	case *ast.LetCommand:
		d.line(depth, "LetCommand")
		for _, decl := range cmd.Decls {
			d.drawDecl(decl, depth+1)
		}
		d.drawCommand(cmd.Body, depth+1)
	case *ast.IfCommand:
		d.line(depth, "IfCommand")
		d.drawExpr(cmd.Cond, depth+1)
		d.drawCommand(cmd.Then, depth+1)
		d.drawCommand(cmd.Else, depth+1)
	case *ast.WhileCommand:
		d.line(depth, "WhileCommand")
		d.drawExpr(cmd.Cond, depth+1)
		d.drawCommand(cmd.Body, depth+1)
	default:
		panic("drawer: unhandled command node")
	}
}

func (d *Drawer) drawDecl(decl ast.Declaration, depth int) {
	switch decl := decl.(type) {
	case *ast.ConstDecl:
		d.line(depth, "ConstDecl %s", decl.Name.Value)
		d.drawExpr(decl.Value, depth+1)
	case *ast.VarDecl:
		d.line(depth, "VarDecl %s : %s", decl.Name.Value, decl.Denoter)
	case *ast.ProcDecl:
		d.line(depth, "ProcDecl %s(%s)", decl.Name.Value, paramList(decl.Params))
		d.drawCommand(decl.Body, depth+1)
	case *ast.FuncDecl:
		d.line(depth, "FuncDecl %s(%s) : %s", decl.Name.Value, paramList(decl.Params), decl.ReturnDenoter)
		d.drawExpr(decl.Expr, depth+1)
	case *ast.TypeDecl:
		d.line(depth, "TypeDecl %s ~ %s", decl.Name.Value, decl.Denoter)
	case *ast.PrimitiveDecl:
		d.line(depth, "PrimitiveDecl %s", decl.Name)
	default:
		panic("drawer: unhandled declaration node")
	}
}

func (d *Drawer) drawExpr(expr ast.Expression, depth int) {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		d.line(depth, "IntegerLiteral %d", expr.Value)
	case *ast.CharLiteral:
		d.line(depth, "CharLiteral %q", string(expr.Value))
	case *ast.VnameExpr:
		d.line(depth, "VnameExpr : %s", expr.ExprType())
		d.drawVname(expr.V, depth+1)
	case *ast.CallExpr:
		d.line(depth, "CallExpr %s : %s", expr.Name.Value, expr.ExprType())
		for _, a := range expr.Args {
			d.drawExpr(a, depth+1)
		}
	case *ast.UnaryExpr:
		d.line(depth, "UnaryExpr %s : %s", expr.Op, expr.ExprType())
		d.drawExpr(expr.Operand, depth+1)
	case *ast.BinaryExpr:
		d.line(depth, "BinaryExpr %s : %s", expr.Op, expr.ExprType())
		d.drawExpr(expr.Left, depth+1)
		d.drawExpr(expr.Right, depth+1)
	case *ast.IfExpr:
		d.line(depth, "IfExpr : %s", expr.ExprType())
		d.drawExpr(expr.Cond, depth+1)
		d.drawExpr(expr.Then, depth+1)
		d.drawExpr(expr.Else, depth+1)
	case *ast.LetExpr:
		d.line(depth, "LetExpr : %s", expr.ExprType())
		for _, decl := range expr.Decls {
			d.drawDecl(decl, depth+1)
		}
		d.drawExpr(expr.Expr, depth+1)
	case *ast.ArrayExpr:
		d.line(depth, "ArrayExpr : %s", expr.ExprType())
		for _, elem := range expr.Elems {
			d.drawExpr(elem, depth+1)
		}
	case *ast.RecordExpr:
		d.line(depth, "RecordExpr : %s", expr.ExprType())
		for _, f := range expr.Fields {
			d.line(depth+1, "Field %s", f.Name.Value)
			d.drawExpr(f.Value, depth+2)
		}
	default:
		panic("drawer: unhandled expression node")
	}
}

func (d *Drawer) drawVname(v ast.Vname, depth int) {
	switch v := v.(type) {
	case *ast.SimpleVname:
		d.line(depth, "SimpleVname %s : %s", v.Name.Value, v.VnameType())
	case *ast.DotVname:
		d.line(depth, "DotVname .%s : %s", v.Field.Value, v.VnameType())
		d.drawVname(v.Base, depth+1)
	case *ast.SubscriptVname:
		d.line(depth, "SubscriptVname : %s", v.VnameType())
		d.drawVname(v.Base, depth+1)
		d.drawExpr(v.Index, depth+1)
	default:
		panic("drawer: unhandled vname node")
	}
}

func paramList(params []*ast.FormalParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
