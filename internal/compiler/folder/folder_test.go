package folder

import (
	"testing"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/checker"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/lexer"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/parser"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/report"
)

// --- Test Helper Functions ---

func checkedProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	reporter := report.NewReporter()
	l := lexer.NewLexer(input, reporter)
	prog := parser.ParseProgram(l, reporter)
	if prog == nil || reporter.ErrorCount() > 0 {
		t.Fatalf("unexpected parse errors: %v", reporter.Diagnostics())
	}
	checker.Check(prog, reporter)
	if reporter.ErrorCount() > 0 {
		t.Fatalf("unexpected check errors: %v", reporter.Diagnostics())
	}
	return prog
}

// --- Test Cases ---

// let const x ~ 2 + 3 in putint(x * 4): folding reduces the addition to
// 5 and the multiplication to 20.
func TestFoldConstLet(t *testing.T) {
	prog := checkedProgram(t, `let const x ~ 2 + 3 in putint(x * 4)`)
	Fold(prog)

	letCmd := prog.Command.(*ast.LetCommand)

	constDecl := letCmd.Decls[0].(*ast.ConstDecl)
	sum, ok := constDecl.Value.(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("const initializer not folded: %T", constDecl.Value)
	}
	if sum.Value != 5 {
		t.Errorf("expected folded initializer 5, got %d", sum.Value)
	}

	call := letCmd.Body.(*ast.CallCommand)
	product, ok := call.Args[0].(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("argument not folded: %T", call.Args[0])
	}
	if product.Value != 20 {
		t.Errorf("expected folded argument 20, got %d", product.Value)
	}
}

func TestFoldNestedArithmetic(t *testing.T) {
	prog := checkedProgram(t, `
let var n: Integer in
  n := (1 + 2) * (10 - 4)`)
	Fold(prog)

	assign := prog.Command.(*ast.LetCommand).Body.(*ast.AssignCommand)
	lit, ok := assign.Expr.(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("expression not folded: %T", assign.Expr)
	}
	if lit.Value != 18 {
		t.Errorf("expected 18, got %d", lit.Value)
	}
}

// Comparison and logical operators over constants fold to the standard
// true/false constants.
func TestFoldBooleanOperators(t *testing.T) {
	prog := checkedProgram(t, `
let var b: Boolean in
  b := 1 < 2 /\ \false`)
	Fold(prog)

	assign := prog.Command.(*ast.LetCommand).Body.(*ast.AssignCommand)
	ve, ok := assign.Expr.(*ast.VnameExpr)
	if !ok {
		t.Fatalf("expression not folded: %T", assign.Expr)
	}
	sv := ve.V.(*ast.SimpleVname)
	if sv.Name.Decl != checker.TrueDecl {
		t.Errorf("expected the true constant, got %q", sv.Name.Value)
	}
}

// A non-constant operand stops folding at that node, but constant
// subtrees below it still fold.
func TestFoldStopsAtNonConstant(t *testing.T) {
	prog := checkedProgram(t, `
let var n: Integer in
  n := n + (2 * 3)`)
	Fold(prog)

	assign := prog.Command.(*ast.LetCommand).Body.(*ast.AssignCommand)
	sum, ok := assign.Expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected the addition to survive, got %T", assign.Expr)
	}
	lit, ok := sum.Right.(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("expected folded right operand, got %T", sum.Right)
	}
	if lit.Value != 6 {
		t.Errorf("expected 6, got %d", lit.Value)
	}
}

// Division by zero is never folded; the instruction stays for the
// runtime to fault on.
func TestFoldSkipsDivisionByZero(t *testing.T) {
	prog := checkedProgram(t, `
let var n: Integer in
  n := 1 / 0`)
	Fold(prog)

	assign := prog.Command.(*ast.LetCommand).Body.(*ast.AssignCommand)
	if _, ok := assign.Expr.(*ast.BinaryExpr); !ok {
		t.Fatalf("division by zero must not fold, got %T", assign.Expr)
	}
}

// Re-running the folder on its own output is a no-op.
func TestFoldIdempotent(t *testing.T) {
	prog := checkedProgram(t, `
let
  const x ~ 2 + 3;
  var n: Integer;
  var b: Boolean
in
  begin
    n := x * 4 + n;
    b := x > 2 \/ b;
    while n > 0 do n := n - (1 + 1)
  end`)

	Fold(prog)
	once := prog.String()
	Fold(prog)
	twice := prog.String()

	if once != twice {
		t.Errorf("folding is not idempotent:\nonce:  %s\ntwice: %s", once, twice)
	}
}

func TestFoldUnary(t *testing.T) {
	prog := checkedProgram(t, `
let var n: Integer in
  n := -(2 + 3)`)
	Fold(prog)

	assign := prog.Command.(*ast.LetCommand).Body.(*ast.AssignCommand)
	lit, ok := assign.Expr.(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("expected folded literal, got %T", assign.Expr)
	}
	if lit.Value != -5 {
		t.Errorf("expected -5, got %d", lit.Value)
	}
}
