// Package stats counts AST node kinds and produces a printable summary,
// the compiler's show-stats collaborator. It only reads the tree.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
)

type Counter struct {
	counts map[string]int
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Count tallies every node in the program by kind.
func Count(prog *ast.Program) *Counter {
	c := NewCounter()
	c.countCommand(prog.Command)
	return c
}

// Of returns the tally for one node kind, e.g. "BinaryExpr".
func (c *Counter) Of(kind string) int {
	return c.counts[kind]
}

// Total returns the number of nodes counted.
func (c *Counter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Summary renders the tallies sorted by kind name.
func (c *Counter) Summary() string {
	kinds := make([]string, 0, len(c.counts))
	for k := range c.counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	var b strings.Builder
	b.WriteString("Node summary:\n")
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %-18s %d\n", k, c.counts[k])
	}
	fmt.Fprintf(&b, "  %-18s %d\n", "total", c.Total())
	return b.String()
}

func (c *Counter) add(kind string) {
	c.counts[kind]++
}

func (c *Counter) countCommand(cmd ast.Command) {
	switch cmd := cmd.(type) {
	case *ast.AssignCommand:
		c.add("AssignCommand")
		c.countVname(cmd.V)
		c.countExpr(cmd.Expr)
	case *ast.CallCommand:
		c.add("CallCommand")
		for _, a := range cmd.Args {
			c.countExpr(a)
		}
	case *ast.SequentialCommand:
		c.add("SequentialCommand")
		for _, sub := range cmd.Commands {
			c.countCommand(sub)
		}
	case *ast.EmptyCommand:
		c.add("EmptyCommand")
	case *ast.LetCommand:
		c.add("LetCommand")
		c.countDecls(cmd.Decls)
		c.countCommand(cmd.Body)
	case *ast.IfCommand:
		c.add("IfCommand")
		c.countExpr(cmd.Cond)
		c.countCommand(cmd.Then)
		c.countCommand(cmd.Else)
	case *ast.WhileCommand:
		c.add("WhileCommand")
		c.countExpr(cmd.Cond)
		c.countCommand(cmd.Body)
	default:
		panic("stats: unhandled command node")
	}
}

func (c *Counter) countDecls(decls []ast.Declaration) {
	for _, decl := range decls {
		switch decl := decl.(type) {
		case *ast.ConstDecl:
			c.add("ConstDecl")
			c.countExpr(decl.Value)
		case *ast.VarDecl:
			c.add("VarDecl")
		case *ast.ProcDecl:
			c.add("ProcDecl")
			c.countCommand(decl.Body)
		case *ast.FuncDecl:
			c.add("FuncDecl")
			c.countExpr(decl.Expr)
		case *ast.TypeDecl:
			c.add("TypeDecl")
		case *ast.PrimitiveDecl:
			c.add("PrimitiveDecl")
		default:
			panic("stats: unhandled declaration node")
		}
	}
}

func (c *Counter) countExpr(expr ast.Expression) {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		c.add("IntegerLiteral")
	case *ast.CharLiteral:
		c.add("CharLiteral")
	case *ast.VnameExpr:
		c.add("VnameExpr")
		c.countVname(expr.V)
	case *ast.CallExpr:
		c.add("CallExpr")
		for _, a := range expr.Args {
			c.countExpr(a)
		}
	case *ast.UnaryExpr:
		c.add("UnaryExpr")
		c.countExpr(expr.Operand)
	case *ast.BinaryExpr:
		c.add("BinaryExpr")
		c.countExpr(expr.Left)
		c.countExpr(expr.Right)
	case *ast.IfExpr:
		c.add("IfExpr")
		c.countExpr(expr.Cond)
		c.countExpr(expr.Then)
		c.countExpr(expr.Else)
	case *ast.LetExpr:
		c.add("LetExpr")
		c.countDecls(expr.Decls)
		c.countExpr(expr.Expr)
	case *ast.ArrayExpr:
		c.add("ArrayExpr")
		for _, elem := range expr.Elems {
			c.countExpr(elem)
		}
	case *ast.RecordExpr:
		c.add("RecordExpr")
		for _, f := range expr.Fields {
			c.countExpr(f.Value)
		}
	default:
		panic("stats: unhandled expression node")
	}
}

func (c *Counter) countVname(v ast.Vname) {
	switch v := v.(type) {
	case *ast.SimpleVname:
		c.add("SimpleVname")
	case *ast.DotVname:
		c.add("DotVname")
		c.countVname(v.Base)
	case *ast.SubscriptVname:
		c.add("SubscriptVname")
		c.countVname(v.Base)
		c.countExpr(v.Index)
	default:
		panic("stats: unhandled vname node")
	}
}
