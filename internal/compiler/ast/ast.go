package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/token"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/types"
)

// The node set is closed: every pass over the tree (checker, folder,
// encoder, drawer, stats) does exhaustive case analysis over these
// variants. Annotation slots (Decl on identifiers, Type on expressions
// and vnames, Entity on declarations) start nil and are written at most
// once, by the checker and the encoder respectively.

// --- Interfaces ---

type Node interface {
	TokenLiteral() string
	String() string
}

type Command interface {
	Node
	commandNode()
}

type Declaration interface {
	Node
	declarationNode()
	DeclName() string
}

type Expression interface {
	Node
	expressionNode()
	ExprType() types.Type
	GetToken() token.Token
}

type Vname interface {
	Node
	vnameNode()
	VnameType() types.Type
	GetToken() token.Token
}

type TypeDenoter interface {
	Node
	typeDenoterNode()
}

// --- Program ---

type Program struct {
	Command Command
}

func (p *Program) TokenLiteral() string {
	if p.Command != nil {
		return p.Command.TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	if p.Command != nil {
		return p.Command.String()
	}
	return ""
}

// --- Commands ---

// AssignCommand -> v := e
type AssignCommand struct {
	Token token.Token // :=
	V     Vname
	Expr  Expression
}

func (ac *AssignCommand) commandNode()         {}
func (ac *AssignCommand) TokenLiteral() string { return ac.Token.Literal }
func (ac *AssignCommand) String() string {
	return ac.V.String() + " := " + ac.Expr.String()
}

// CallCommand -> name(args)
type CallCommand struct {
	Token token.Token // the identifier
	Name  *Identifier
	Args  []Expression
}

func (cc *CallCommand) commandNode()         {}
func (cc *CallCommand) TokenLiteral() string { return cc.Token.Literal }
func (cc *CallCommand) String() string {
	args := make([]string, len(cc.Args))
	for i, a := range cc.Args {
		args[i] = a.String()
	}
	return cc.Name.String() + "(" + strings.Join(args, ", ") + ")"
}

// SequentialCommand -> begin c1; c2; ... end
type SequentialCommand struct {
	Token    token.Token // begin
	Commands []Command
}

func (sc *SequentialCommand) commandNode()         {}
func (sc *SequentialCommand) TokenLiteral() string { return sc.Token.Literal }
func (sc *SequentialCommand) String() string {
	var out bytes.Buffer
	out.WriteString("begin ")
	for i, c := range sc.Commands {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(c.String())
	}
	out.WriteString(" end")
	return out.String()
}

// EmptyCommand -> (nothing)
type EmptyCommand struct {
	Token token.Token
}

func (ec *EmptyCommand) commandNode()         {}
func (ec *EmptyCommand) TokenLiteral() string { return ec.Token.Literal }
func (ec *EmptyCommand) String() string       { return "" }

// LetCommand -> let decls in c
type LetCommand struct {
	Token token.Token // let
	Decls []Declaration
	Body  Command
}

func (lc *LetCommand) commandNode()         {}
func (lc *LetCommand) TokenLiteral() string { return lc.Token.Literal }
func (lc *LetCommand) String() string {
	return "let " + declsString(lc.Decls) + " in " + lc.Body.String()
}

// IfCommand -> if e then c1 else c2
type IfCommand struct {
	Token token.Token // if
	Cond  Expression
	Then  Command
	Else  Command
}

func (ic *IfCommand) commandNode()         {}
func (ic *IfCommand) TokenLiteral() string { return ic.Token.Literal }
func (ic *IfCommand) String() string {
	return "if " + ic.Cond.String() + " then " + ic.Then.String() + " else " + ic.Else.String()
}

// WhileCommand -> while e do c
type WhileCommand struct {
	Token token.Token // while
	Cond  Expression
	Body  Command
}

func (wc *WhileCommand) commandNode()         {}
func (wc *WhileCommand) TokenLiteral() string { return wc.Token.Literal }
func (wc *WhileCommand) String() string {
	return "while " + wc.Cond.String() + " do " + wc.Body.String()
}

// --- Declarations ---

func declsString(decls []Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}

// ConstDecl -> const name ~ e
type ConstDecl struct {
	Token token.Token // const
	Name  *Identifier
	Value Expression

	Type   types.Type // written by the checker
	Entity any        // written by the encoder
}

func (cd *ConstDecl) declarationNode()     {}
func (cd *ConstDecl) DeclName() string     { return cd.Name.Value }
func (cd *ConstDecl) TokenLiteral() string { return cd.Token.Literal }
func (cd *ConstDecl) String() string {
	return "const " + cd.Name.String() + " ~ " + cd.Value.String()
}

// VarDecl -> var name : T
type VarDecl struct {
	Token   token.Token // var
	Name    *Identifier
	Denoter TypeDenoter

	Type   types.Type
	Entity any
}

func (vd *VarDecl) declarationNode()     {}
func (vd *VarDecl) DeclName() string     { return vd.Name.Value }
func (vd *VarDecl) TokenLiteral() string { return vd.Token.Literal }
func (vd *VarDecl) String() string {
	return "var " + vd.Name.String() + ": " + vd.Denoter.String()
}

// ProcDecl -> proc name(params) ~ c
type ProcDecl struct {
	Token  token.Token // proc
	Name   *Identifier
	Params []*FormalParam
	Body   Command

	Entity any
}

func (pd *ProcDecl) declarationNode()     {}
func (pd *ProcDecl) DeclName() string     { return pd.Name.Value }
func (pd *ProcDecl) TokenLiteral() string { return pd.Token.Literal }
func (pd *ProcDecl) String() string {
	return "proc " + pd.Name.String() + "(" + paramsString(pd.Params) + ") ~ " + pd.Body.String()
}

// FuncDecl -> func name(params) : T ~ e
type FuncDecl struct {
	Token         token.Token // func
	Name          *Identifier
	Params        []*FormalParam
	ReturnDenoter TypeDenoter
	Expr          Expression

	ReturnType types.Type
	Entity     any
}

func (fd *FuncDecl) declarationNode()     {}
func (fd *FuncDecl) DeclName() string     { return fd.Name.Value }
func (fd *FuncDecl) TokenLiteral() string { return fd.Token.Literal }
func (fd *FuncDecl) String() string {
	return "func " + fd.Name.String() + "(" + paramsString(fd.Params) + "): " +
		fd.ReturnDenoter.String() + " ~ " + fd.Expr.String()
}

// TypeDecl -> type name ~ T
type TypeDecl struct {
	Token   token.Token // type
	Name    *Identifier
	Denoter TypeDenoter

	Type types.Type
}

func (td *TypeDecl) declarationNode()     {}
func (td *TypeDecl) DeclName() string     { return td.Name.Value }
func (td *TypeDecl) TokenLiteral() string { return td.Token.Literal }
func (td *TypeDecl) String() string {
	return "type " + td.Name.String() + " ~ " + td.Denoter.String()
}

// FormalParam -> name : T or var name : T. A formal parameter is itself a
// declaration: identifier resolution inside the routine body points at it.
type FormalParam struct {
	Token   token.Token // the parameter name, or 'var'
	Name    *Identifier
	Denoter TypeDenoter
	ByRef   bool // var parameter

	Type   types.Type
	Entity any
}

func (fp *FormalParam) declarationNode()     {}
func (fp *FormalParam) DeclName() string     { return fp.Name.Value }
func (fp *FormalParam) TokenLiteral() string { return fp.Token.Literal }
func (fp *FormalParam) String() string {
	s := fp.Name.String() + ": " + fp.Denoter.String()
	if fp.ByRef {
		s = "var " + s
	}
	return s
}

func paramsString(params []*FormalParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// PrimitiveKind classifies standard-environment declarations.
type PrimitiveKind int

const (
	PrimitiveConst PrimitiveKind = iota
	PrimitiveType
	PrimitiveProc
	PrimitiveFunc
)

// PrimitiveDecl is a standard-environment entry: a pre-declared type,
// constant, or routine backed by a TAM primitive. These sit in the
// outermost scope; they have no source position.
type PrimitiveDecl struct {
	Name   string
	Kind   PrimitiveKind
	Type   types.Type   // const: its type; type: the denoted type; func: result type
	Params []types.Type // proc/func parameter types
	ByRef  []bool       // parallel to Params; true for var parameters
	Value  int          // const: the runtime value
	Displ  int          // proc/func: TAM primitive displacement
}

func (pd *PrimitiveDecl) declarationNode()     {}
func (pd *PrimitiveDecl) DeclName() string     { return pd.Name }
func (pd *PrimitiveDecl) TokenLiteral() string { return pd.Name }
func (pd *PrimitiveDecl) String() string       { return pd.Name }

// --- Expressions ---

// Identifier -> a name occurrence. Decl is filled in by the checker with
// the declaration the name resolves to.
type Identifier struct {
	Token token.Token
	Value string

	Decl Declaration
}

func (i *Identifier) TokenLiteral() string  { return i.Token.Literal }
func (i *Identifier) String() string        { return i.Value }
func (i *Identifier) GetToken() token.Token { return i.Token }

// IntegerLiteral -> 42
type IntegerLiteral struct {
	Token token.Token
	Value int
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Literal }
func (il *IntegerLiteral) ExprType() types.Type  { return types.Int }
func (il *IntegerLiteral) String() string        { return fmt.Sprintf("%d", il.Value) }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }

// CharLiteral -> 'a'
type CharLiteral struct {
	Token token.Token
	Value byte
}

func (cl *CharLiteral) expressionNode()       {}
func (cl *CharLiteral) TokenLiteral() string  { return cl.Token.Literal }
func (cl *CharLiteral) ExprType() types.Type  { return types.Char }
func (cl *CharLiteral) String() string        { return "'" + string(cl.Value) + "'" }
func (cl *CharLiteral) GetToken() token.Token { return cl.Token }

// VnameExpr -> a value-yielding occurrence of a vname
type VnameExpr struct {
	Token token.Token
	V     Vname
}

func (ve *VnameExpr) expressionNode()      {}
func (ve *VnameExpr) TokenLiteral() string { return ve.Token.Literal }
func (ve *VnameExpr) ExprType() types.Type {
	if ve.V == nil {
		return types.Error
	}
	return ve.V.VnameType()
}
func (ve *VnameExpr) String() string        { return ve.V.String() }
func (ve *VnameExpr) GetToken() token.Token { return ve.Token }

// CallExpr -> f(args)
type CallExpr struct {
	Token token.Token
	Name  *Identifier
	Args  []Expression

	Type types.Type
}

func (ce *CallExpr) expressionNode()      {}
func (ce *CallExpr) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpr) ExprType() types.Type { return orError(ce.Type) }
func (ce *CallExpr) String() string {
	args := make([]string, len(ce.Args))
	for i, a := range ce.Args {
		args[i] = a.String()
	}
	return ce.Name.String() + "(" + strings.Join(args, ", ") + ")"
}
func (ce *CallExpr) GetToken() token.Token { return ce.Token }

// UnaryExpr -> op e
type UnaryExpr struct {
	Token   token.Token // the operator
	Op      string
	Operand Expression

	Type types.Type
}

func (ue *UnaryExpr) expressionNode()       {}
func (ue *UnaryExpr) TokenLiteral() string  { return ue.Token.Literal }
func (ue *UnaryExpr) ExprType() types.Type  { return orError(ue.Type) }
func (ue *UnaryExpr) String() string        { return ue.Op + ue.Operand.String() }
func (ue *UnaryExpr) GetToken() token.Token { return ue.Token }

// BinaryExpr -> e1 op e2
type BinaryExpr struct {
	Token token.Token // the operator
	Op    string
	Left  Expression
	Right Expression

	Type types.Type
}

func (be *BinaryExpr) expressionNode()      {}
func (be *BinaryExpr) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpr) ExprType() types.Type { return orError(be.Type) }
func (be *BinaryExpr) String() string {
	return "(" + be.Left.String() + " " + be.Op + " " + be.Right.String() + ")"
}
func (be *BinaryExpr) GetToken() token.Token { return be.Token }

// IfExpr -> if e1 then e2 else e3
type IfExpr struct {
	Token token.Token // if
	Cond  Expression
	Then  Expression
	Else  Expression

	Type types.Type
}

func (ie *IfExpr) expressionNode()      {}
func (ie *IfExpr) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpr) ExprType() types.Type { return orError(ie.Type) }
func (ie *IfExpr) String() string {
	return "if " + ie.Cond.String() + " then " + ie.Then.String() + " else " + ie.Else.String()
}
func (ie *IfExpr) GetToken() token.Token { return ie.Token }

// LetExpr -> let decls in e
type LetExpr struct {
	Token token.Token // let
	Decls []Declaration
	Expr  Expression

	Type types.Type
}

func (le *LetExpr) expressionNode()      {}
func (le *LetExpr) TokenLiteral() string { return le.Token.Literal }
func (le *LetExpr) ExprType() types.Type { return orError(le.Type) }
func (le *LetExpr) String() string {
	return "let " + declsString(le.Decls) + " in " + le.Expr.String()
}
func (le *LetExpr) GetToken() token.Token { return le.Token }

// ArrayExpr -> [e1, e2, ...]
type ArrayExpr struct {
	Token token.Token // [
	Elems []Expression

	Type types.Type
}

func (ae *ArrayExpr) expressionNode()      {}
func (ae *ArrayExpr) TokenLiteral() string { return ae.Token.Literal }
func (ae *ArrayExpr) ExprType() types.Type { return orError(ae.Type) }
func (ae *ArrayExpr) String() string {
	parts := make([]string, len(ae.Elems))
	for i, e := range ae.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (ae *ArrayExpr) GetToken() token.Token { return ae.Token }

// RecordField -> name ~ e inside a record aggregate
type RecordField struct {
	Name  *Identifier
	Value Expression
}

func (rf *RecordField) String() string { return rf.Name.String() + " ~ " + rf.Value.String() }

// RecordExpr -> {a ~ e1, b ~ e2}
type RecordExpr struct {
	Token  token.Token // {
	Fields []*RecordField

	Type types.Type
}

func (re *RecordExpr) expressionNode()      {}
func (re *RecordExpr) TokenLiteral() string { return re.Token.Literal }
func (re *RecordExpr) ExprType() types.Type { return orError(re.Type) }
func (re *RecordExpr) String() string {
	parts := make([]string, len(re.Fields))
	for i, f := range re.Fields {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (re *RecordExpr) GetToken() token.Token { return re.Token }

// --- Vnames ---

// SimpleVname -> x
type SimpleVname struct {
	Token token.Token
	Name  *Identifier

	Type types.Type
}

func (sv *SimpleVname) vnameNode()            {}
func (sv *SimpleVname) TokenLiteral() string  { return sv.Token.Literal }
func (sv *SimpleVname) VnameType() types.Type { return orError(sv.Type) }
func (sv *SimpleVname) String() string        { return sv.Name.String() }
func (sv *SimpleVname) GetToken() token.Token { return sv.Token }

// DotVname -> v.field
type DotVname struct {
	Token token.Token // .
	Base  Vname
	Field *Identifier

	Type types.Type
}

func (dv *DotVname) vnameNode()            {}
func (dv *DotVname) TokenLiteral() string  { return dv.Token.Literal }
func (dv *DotVname) VnameType() types.Type { return orError(dv.Type) }
func (dv *DotVname) String() string        { return dv.Base.String() + "." + dv.Field.String() }
func (dv *DotVname) GetToken() token.Token { return dv.Token }

// SubscriptVname -> v[e]
type SubscriptVname struct {
	Token token.Token // [
	Base  Vname
	Index Expression

	Type types.Type
}

func (sv *SubscriptVname) vnameNode()            {}
func (sv *SubscriptVname) TokenLiteral() string  { return sv.Token.Literal }
func (sv *SubscriptVname) VnameType() types.Type { return orError(sv.Type) }
func (sv *SubscriptVname) String() string        { return sv.Base.String() + "[" + sv.Index.String() + "]" }
func (sv *SubscriptVname) GetToken() token.Token { return sv.Token }

// --- Type denoters ---

// NamedTypeDenoter -> Integer, Boolean, a declared type name
type NamedTypeDenoter struct {
	Token token.Token
	Name  *Identifier
}

func (nt *NamedTypeDenoter) typeDenoterNode()     {}
func (nt *NamedTypeDenoter) TokenLiteral() string { return nt.Token.Literal }
func (nt *NamedTypeDenoter) String() string       { return nt.Name.String() }

// ArrayTypeDenoter -> array 10 of T. The length must reduce to a
// compile-time constant; the checker enforces that.
type ArrayTypeDenoter struct {
	Token token.Token // array
	Len   Expression
	Elem  TypeDenoter
}

func (at *ArrayTypeDenoter) typeDenoterNode()     {}
func (at *ArrayTypeDenoter) TokenLiteral() string { return at.Token.Literal }
func (at *ArrayTypeDenoter) String() string {
	return "array " + at.Len.String() + " of " + at.Elem.String()
}

// FieldDecl -> name : T inside a record type denoter
type FieldDecl struct {
	Name    *Identifier
	Denoter TypeDenoter
}

func (fd *FieldDecl) String() string { return fd.Name.String() + ": " + fd.Denoter.String() }

// RecordTypeDenoter -> record a: T1, b: T2 end
type RecordTypeDenoter struct {
	Token  token.Token // record
	Fields []*FieldDecl
}

func (rt *RecordTypeDenoter) typeDenoterNode()     {}
func (rt *RecordTypeDenoter) TokenLiteral() string { return rt.Token.Literal }
func (rt *RecordTypeDenoter) String() string {
	parts := make([]string, len(rt.Fields))
	for i, f := range rt.Fields {
		parts[i] = f.String()
	}
	return "record " + strings.Join(parts, ", ") + " end"
}

// orError keeps passes running over trees the checker rejected: an
// unannotated node reads back as the error type instead of nil.
func orError(t types.Type) types.Type {
	if t == nil {
		return types.Error
	}
	return t
}
