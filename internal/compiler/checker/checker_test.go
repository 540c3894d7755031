package checker

import (
	"strings"
	"testing"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/lexer"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/parser"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/report"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/types"
)

// --- Test Helper Functions ---

func checkSource(t *testing.T, input string) (*ast.Program, *report.Reporter) {
	t.Helper()
	reporter := report.NewReporter()
	l := lexer.NewLexer(input, reporter)
	prog := parser.ParseProgram(l, reporter)
	if prog == nil || reporter.ErrorCount() > 0 {
		t.Fatalf("unexpected parse errors: %v", reporter.Diagnostics())
	}
	Check(prog, reporter)
	return prog, reporter
}

func expectErrors(t *testing.T, reporter *report.Reporter, count int, substr string) {
	t.Helper()
	if reporter.ErrorCount() != count {
		t.Fatalf("expected %d error(s), got %d: %v", count, reporter.ErrorCount(), reporter.Diagnostics())
	}
	if substr == "" {
		return
	}
	for _, d := range reporter.Diagnostics() {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Fatalf("no diagnostic mentions %q: %v", substr, reporter.Diagnostics())
}

// --- Test Cases ---

func TestValidProgramChecksClean(t *testing.T) {
	_, reporter := checkSource(t, `
let
  const limit ~ 10;
  var n: Integer;
  var c: Char
in
  begin
    n := limit * 2;
    c := 'x';
    if n > limit /\ true then putint(n) else puteol();
    while n > 0 do n := n - 1
  end`)

	expectErrors(t, reporter, 0, "")
}

func TestUndeclaredIdentifier(t *testing.T) {
	_, reporter := checkSource(t, `putint(nowhere)`)
	expectErrors(t, reporter, 1, "undeclared identifier")
}

// One error per distinct unresolved reference; the error type suppresses
// knock-on complaints about expressions using the bad reference.
func TestUndeclaredIdentifierNoCascade(t *testing.T) {
	_, reporter := checkSource(t, `
let var n: Integer in
  n := missing + 1`)

	expectErrors(t, reporter, 1, "undeclared identifier")
}

func TestDuplicateDeclaration(t *testing.T) {
	prog, reporter := checkSource(t, `
let
  var n: Integer;
  var n: Char
in
  n := 1`)

	expectErrors(t, reporter, 1, "already declared")

	// The first declaration stays visible: n is Integer, so n := 1 is
	// not a second error.
	letCmd := prog.Command.(*ast.LetCommand)
	assign := letCmd.Body.(*ast.AssignCommand)
	sv := assign.V.(*ast.SimpleVname)
	if decl, ok := sv.Name.Decl.(*ast.VarDecl); !ok || !types.Equal(decl.Type, types.Int) {
		t.Fatalf("expected n to resolve to the Integer declaration, got %T", sv.Name.Decl)
	}
}

func TestShadowingResolvesInnermost(t *testing.T) {
	prog, reporter := checkSource(t, `
let var n: Integer in
  let var n: Char in
    n := 'a'`)

	expectErrors(t, reporter, 0, "")

	outer := prog.Command.(*ast.LetCommand)
	inner := outer.Body.(*ast.LetCommand)
	assign := inner.Body.(*ast.AssignCommand)
	sv := assign.V.(*ast.SimpleVname)
	if sv.Name.Decl != inner.Decls[0] {
		t.Fatalf("expected n to resolve to the innermost declaration")
	}
	if !types.Equal(sv.VnameType(), types.Char) {
		t.Errorf("expected shadowing Char type, got %s", sv.VnameType())
	}
}

// An operator applied to an incompatible operand reports exactly one
// error; the expression is annotated with the error type so enclosing
// expressions stay quiet.
func TestTypeMismatchNoCascade(t *testing.T) {
	prog, reporter := checkSource(t, `
let var n: Integer in
  n := (1 + 'a') * 2`)

	expectErrors(t, reporter, 1, "operator")

	letCmd := prog.Command.(*ast.LetCommand)
	assign := letCmd.Body.(*ast.AssignCommand)
	product := assign.Expr.(*ast.BinaryExpr)
	if !types.IsError(product.ExprType()) {
		t.Errorf("expected the enclosing expression to carry the error type, got %s", product.ExprType())
	}
	sum := product.Left.(*ast.BinaryExpr)
	if !types.IsError(sum.ExprType()) {
		t.Errorf("expected the mismatched expression to carry the error type, got %s", sum.ExprType())
	}
}

func TestCallArityMismatch(t *testing.T) {
	_, reporter := checkSource(t, `
let
  proc pair(a: Integer, b: Integer) ~ putint(a + b)
in
  pair(1, 2, 3)`)

	expectErrors(t, reporter, 1, "expects 2 argument(s), got 3")
}

func TestCallArgumentType(t *testing.T) {
	_, reporter := checkSource(t, `putint('a')`)
	expectErrors(t, reporter, 1, "argument 1")
}

func TestVarParamNeedsVariable(t *testing.T) {
	_, reporter := checkSource(t, `getint(42)`)
	expectErrors(t, reporter, 1, "must be a variable")
}

func TestAssignToConstant(t *testing.T) {
	_, reporter := checkSource(t, `
let const k ~ 5 in
  k := 6`)

	expectErrors(t, reporter, 1, "not an assignable variable")
}

func TestAssignToValueParameter(t *testing.T) {
	_, reporter := checkSource(t, `
let proc p(n: Integer) ~ n := 0 in p(1)`)

	expectErrors(t, reporter, 1, "not an assignable variable")
}

func TestConditionMustBeBoolean(t *testing.T) {
	_, reporter := checkSource(t, `while 1 do puteol()`)
	expectErrors(t, reporter, 1, "condition must be Boolean")
}

func TestNonConstantArrayLength(t *testing.T) {
	_, reporter := checkSource(t, `
let
  var n: Integer;
  var a: array n of Integer
in
  n := 0`)

	expectErrors(t, reporter, 1, "not a constant expression")
}

func TestConstantArrayLengthFromConstDecl(t *testing.T) {
	_, reporter := checkSource(t, `
let
  const size ~ 2 + 3;
  var a: array size of Integer
in
  a[0] := 1`)

	expectErrors(t, reporter, 0, "")
}

func TestNonConstantInitializer(t *testing.T) {
	_, reporter := checkSource(t, `
let
  var n: Integer;
  const k ~ n + 1
in
  n := k`)

	expectErrors(t, reporter, 1, "not a constant expression")
}

func TestRecordAndArrayAggregates(t *testing.T) {
	_, reporter := checkSource(t, `
let
  type Point ~ record x: Integer, y: Integer end;
  var p: Point;
  var a: array 3 of Integer
in
  begin
    p := {x ~ 1, y ~ 2};
    a := [1, 2, 3];
    p.x := a[1]
  end`)

	expectErrors(t, reporter, 0, "")
}

func TestAggregateShapeMismatch(t *testing.T) {
	_, reporter := checkSource(t, `
let var a: array 3 of Integer in
  a := [1, 2]`)

	expectErrors(t, reporter, 1, "cannot assign")
}

func TestEqualityNeedsMatchingOperands(t *testing.T) {
	_, reporter := checkSource(t, `
let var b: Boolean in
  b := 1 = 'a'`)

	expectErrors(t, reporter, 1, "equal operand types")
}

func TestFunctionReturnTypeChecked(t *testing.T) {
	_, reporter := checkSource(t, `
let func f(n: Integer): Boolean ~ n + 1 in putint(1)`)

	expectErrors(t, reporter, 1, "returns Boolean")
}

func TestRecursiveFunction(t *testing.T) {
	_, reporter := checkSource(t, `
let
  func fact(n: Integer): Integer ~
    if n <= 1 then 1 else n * fact(n - 1)
in
  putint(fact(5))`)

	expectErrors(t, reporter, 0, "")
}

func TestProcedureAsExpressionRejected(t *testing.T) {
	_, reporter := checkSource(t, `
let var n: Integer in
  n := puteol()`)

	expectErrors(t, reporter, 1, "not a function")
}
