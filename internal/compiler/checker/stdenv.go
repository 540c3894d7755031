package checker

import (
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/scope"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/tam"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/types"
)

// The standard environment: the declarations visible in the outermost
// scope of every program. The decl values are shared between runs but
// never written after package init.

var (
	FalseDecl  = &ast.PrimitiveDecl{Name: "false", Kind: ast.PrimitiveConst, Type: types.Bool, Value: tam.FalseValue}
	TrueDecl   = &ast.PrimitiveDecl{Name: "true", Kind: ast.PrimitiveConst, Type: types.Bool, Value: tam.TrueValue}
	maxintDecl = &ast.PrimitiveDecl{Name: "maxint", Kind: ast.PrimitiveConst, Type: types.Int, Value: tam.MaxintValue}
)

var stdDecls = []*ast.PrimitiveDecl{
	{Name: "Integer", Kind: ast.PrimitiveType, Type: types.Int},
	{Name: "Char", Kind: ast.PrimitiveType, Type: types.Char},
	{Name: "Boolean", Kind: ast.PrimitiveType, Type: types.Bool},

	FalseDecl,
	TrueDecl,
	maxintDecl,

	{Name: "get", Kind: ast.PrimitiveProc, Params: []types.Type{types.Char}, ByRef: []bool{true}, Displ: tam.GetDispl},
	{Name: "put", Kind: ast.PrimitiveProc, Params: []types.Type{types.Char}, ByRef: []bool{false}, Displ: tam.PutDispl},
	{Name: "getint", Kind: ast.PrimitiveProc, Params: []types.Type{types.Int}, ByRef: []bool{true}, Displ: tam.GetintDispl},
	{Name: "putint", Kind: ast.PrimitiveProc, Params: []types.Type{types.Int}, ByRef: []bool{false}, Displ: tam.PutintDispl},
	{Name: "geteol", Kind: ast.PrimitiveProc, Displ: tam.GeteolDispl},
	{Name: "puteol", Kind: ast.PrimitiveProc, Displ: tam.PuteolDispl},

	{Name: "chr", Kind: ast.PrimitiveFunc, Params: []types.Type{types.Int}, ByRef: []bool{false}, Type: types.Char, Displ: tam.IDDispl},
	{Name: "ord", Kind: ast.PrimitiveFunc, Params: []types.Type{types.Char}, ByRef: []bool{false}, Type: types.Int, Displ: tam.IDDispl},
	{Name: "eol", Kind: ast.PrimitiveFunc, Type: types.Bool, Displ: tam.EolDispl},
	{Name: "eof", Kind: ast.PrimitiveFunc, Type: types.Bool, Displ: tam.EofDispl},
}

// StdEnv builds a fresh scope chain whose outermost level holds the
// standard environment.
func StdEnv() *scope.Scope {
	std := scope.NewScope(nil)
	for _, d := range stdDecls {
		// Names are unique by construction; Define cannot fail here.
		_ = std.Define(d.Name, d)
	}
	return std
}

// opSig is one row of the operator signature table: the required operand
// types and the synthesized result type. Any as an operand type means the
// two operands must merely agree with each other.
type opSig struct {
	left   types.Type
	right  types.Type
	result types.Type
}

var binaryOps = map[string]opSig{
	"+":  {types.Int, types.Int, types.Int},
	"-":  {types.Int, types.Int, types.Int},
	"*":  {types.Int, types.Int, types.Int},
	"/":  {types.Int, types.Int, types.Int},
	"//": {types.Int, types.Int, types.Int},
	"<":  {types.Int, types.Int, types.Bool},
	"<=": {types.Int, types.Int, types.Bool},
	">":  {types.Int, types.Int, types.Bool},
	">=": {types.Int, types.Int, types.Bool},
	"=":  {types.Any, types.Any, types.Bool},
	`\=`: {types.Any, types.Any, types.Bool},
	`/\`: {types.Bool, types.Bool, types.Bool},
	`\/`: {types.Bool, types.Bool, types.Bool},
}

var unaryOps = map[string]opSig{
	"-": {left: types.Int, result: types.Int},
	`\`: {left: types.Bool, result: types.Bool},
}
