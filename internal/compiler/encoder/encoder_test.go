package encoder

import (
	"testing"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/checker"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/folder"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/lexer"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/parser"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/report"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/tam"
)

// --- Test Helper Functions ---

func encodeSource(t *testing.T, input string, fold bool) []tam.Instruction {
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
	if fold {
		folder.Fold(prog)
	}
	code := Encode(prog, reporter)
	if reporter.ErrorCount() > 0 {
		t.Fatalf("unexpected encode errors: %v", reporter.Diagnostics())
	}
	return code
}

func expectInstr(t *testing.T, code []tam.Instruction, i int, want tam.Instruction) {
	t.Helper()
	if i >= len(code) {
		t.Fatalf("instruction %d out of range, code has %d instructions", i, len(code))
	}
	if code[i] != want {
		t.Errorf("instruction %d: expected %s, got %s", i, want.String(), code[i].String())
	}
}

// --- Test Cases ---

func TestEncodePrimitiveCall(t *testing.T) {
	code := encodeSource(t, `putint(42)`, false)

	if len(code) != 3 {
		t.Fatalf("expected 3 instructions, got %d:\n%v", len(code), code)
	}
	expectInstr(t, code, 0, tam.Instruction{Op: tam.LOADLop, D: 42})
	expectInstr(t, code, 1, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.PutintDispl})
	expectInstr(t, code, 2, tam.Instruction{Op: tam.HALTop})
}

func TestEncodeVariableStore(t *testing.T) {
	code := encodeSource(t, `let var x: Integer in x := 7`, false)

	expectInstr(t, code, 0, tam.Instruction{Op: tam.PUSHop, D: 1})
	expectInstr(t, code, 1, tam.Instruction{Op: tam.LOADLop, D: 7})
	expectInstr(t, code, 2, tam.Instruction{Op: tam.STOREop, N: 1, R: tam.SBr, D: 0})
	expectInstr(t, code, 3, tam.Instruction{Op: tam.POPop, D: 1})
	expectInstr(t, code, 4, tam.Instruction{Op: tam.HALTop})
}

// A constant declaration generates no code: uses load the known value as
// a literal.
func TestEncodeKnownConstant(t *testing.T) {
	code := encodeSource(t, `let const k ~ 9 in putint(k)`, false)

	if len(code) != 3 {
		t.Fatalf("expected 3 instructions, got %d:\n%v", len(code), code)
	}
	expectInstr(t, code, 0, tam.Instruction{Op: tam.LOADLop, D: 9})
}

// The while loop jumps forward to its condition, evaluates it after the
// body, and jumps back on true; both targets are patched.
func TestEncodeWhileLoopShape(t *testing.T) {
	code := encodeSource(t, `
let var n: Integer in
  while n > 0 do n := n - 1`, false)

	// 0 PUSH 1
	// 1 JUMP cond        (patched to 6)
	// 2 LOAD n           loop body
	// 3 LOADL 1
	// 4 CALL sub
	// 5 STORE n
	// 6 LOAD n           condition
	// 7 LOADL 0
	// 8 CALL gt
	// 9 JUMPIF(1) 2
	expectInstr(t, code, 1, tam.Instruction{Op: tam.JUMPop, R: tam.CBr, D: 6})
	expectInstr(t, code, 4, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.SubDispl})
	expectInstr(t, code, 8, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.GtDispl})
	expectInstr(t, code, 9, tam.Instruction{Op: tam.JUMPIFop, N: tam.TrueValue, R: tam.CBr, D: 2})
	expectInstr(t, code, 10, tam.Instruction{Op: tam.POPop, D: 1})
	expectInstr(t, code, 11, tam.Instruction{Op: tam.HALTop})
}

// The if command jumps over the then branch on false and over the else
// branch at the end of then.
func TestEncodeIfPatching(t *testing.T) {
	code := encodeSource(t, `if 1 < 2 then puteol() else puteol()`, false)

	// 0 LOADL 1
	// 1 LOADL 2
	// 2 CALL lt
	// 3 JUMPIF(0) 6
	// 4 CALL puteol     then
	// 5 JUMP 7
	// 6 CALL puteol     else
	// 7 HALT
	expectInstr(t, code, 3, tam.Instruction{Op: tam.JUMPIFop, N: tam.FalseValue, R: tam.CBr, D: 6})
	expectInstr(t, code, 5, tam.Instruction{Op: tam.JUMPop, R: tam.CBr, D: 7})
	expectInstr(t, code, 7, tam.Instruction{Op: tam.HALTop})
}

func TestEncodeFunctionCall(t *testing.T) {
	code := encodeSource(t, `
let func square(n: Integer): Integer ~ n * n in
  putint(square(3))`, false)

	// 0 JUMP 5           skip the routine body
	// 1 LOAD(1) -1[LB]   n
	// 2 LOAD(1) -1[LB]   n
	// 3 CALL mult
	// 4 RETURN(1) 1
	// 5 LOADL 3
	// 6 CALL(SB) 1[CB]
	// 7 CALL putint
	// 8 HALT
	expectInstr(t, code, 0, tam.Instruction{Op: tam.JUMPop, R: tam.CBr, D: 5})
	expectInstr(t, code, 1, tam.Instruction{Op: tam.LOADop, N: 1, R: tam.LBr, D: -1})
	expectInstr(t, code, 4, tam.Instruction{Op: tam.RETURNop, N: 1, D: 1})
	expectInstr(t, code, 6, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.CBr, D: 1})
	expectInstr(t, code, 7, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.PutintDispl})
}

// A var parameter receives the argument's address; inside the routine
// the parameter's slot is dereferenced on use.
func TestEncodeVarParameter(t *testing.T) {
	code := encodeSource(t, `
let
  proc double(var n: Integer) ~ n := n * 2
in
  let var a: Integer in
    double(a)`, false)

	// 0 JUMP 8
	// 1 LOAD(1) -1[LB]   address held in the parameter slot
	// 2 LOADI(1)         n's value
	// 3 LOADL 2
	// 4 CALL mult
	// 5 LOAD(1) -1[LB]
	// 6 STOREI(1)
	// 7 RETURN(0) 1
	// 8 PUSH 1           var a
	// 9 LOADA 0[SB]      a's address as the argument
	// 10 CALL(SB) 1[CB]
	// 11 POP 1
	// 12 HALT
	expectInstr(t, code, 1, tam.Instruction{Op: tam.LOADop, N: 1, R: tam.LBr, D: -1})
	expectInstr(t, code, 2, tam.Instruction{Op: tam.LOADIop, N: 1})
	expectInstr(t, code, 6, tam.Instruction{Op: tam.STOREIop, N: 1})
	expectInstr(t, code, 7, tam.Instruction{Op: tam.RETURNop, N: 0, D: 1})
	expectInstr(t, code, 9, tam.Instruction{Op: tam.LOADAop, R: tam.SBr, D: 0})
	expectInstr(t, code, 10, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.CBr, D: 1})
}

func TestEncodeRecordFieldOffset(t *testing.T) {
	code := encodeSource(t, `
let
  type Point ~ record x: Integer, y: Integer end;
  var p: Point
in
  p.y := 3`, false)

	// 0 PUSH 2
	// 1 LOADL 3
	// 2 LOADA 0[SB]
	// 3 LOADL 1          offset of y
	// 4 CALL add
	// 5 STOREI(1)
	expectInstr(t, code, 0, tam.Instruction{Op: tam.PUSHop, D: 2})
	expectInstr(t, code, 3, tam.Instruction{Op: tam.LOADLop, D: 1})
	expectInstr(t, code, 4, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.AddDispl})
	expectInstr(t, code, 5, tam.Instruction{Op: tam.STOREIop, N: 1})
}

// A literal subscript folds into a static offset; a computed subscript
// is scaled and added at runtime.
func TestEncodeSubscripts(t *testing.T) {
	static := encodeSource(t, `
let var a: array 3 of Integer in
  a[2] := 1`, false)

	// 0 PUSH 3; 1 LOADL 1; 2 LOADA 0[SB]; 3 LOADL 2; 4 CALL add; 5 STOREI(1)
	expectInstr(t, static, 3, tam.Instruction{Op: tam.LOADLop, D: 2})
	expectInstr(t, static, 4, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.AddDispl})

	dynamic := encodeSource(t, `
let
  var a: array 3 of Integer;
  var i: Integer
in
  a[i] := 1`, false)

	// 0 PUSH 3; 1 PUSH 1; 2 LOADL 1; 3 LOADA 0[SB]; 4 LOAD i; 5 CALL add; 6 STOREI(1)
	expectInstr(t, dynamic, 4, tam.Instruction{Op: tam.LOADop, N: 1, R: tam.SBr, D: 3})
	expectInstr(t, dynamic, 5, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.AddDispl})
}

// Folding shortens the code for constant expressions: the classic
// let const x ~ 2 + 3 in putint(x * 4) compiles to a single LOADL 20
// argument after folding.
func TestEncodeFoldedVersusUnfolded(t *testing.T) {
	src := `let const x ~ 2 + 3 in putint(x * 4)`

	unfolded := encodeSource(t, src, false)
	folded := encodeSource(t, src, true)

	if len(folded) >= len(unfolded) {
		t.Errorf("expected folding to shorten the code: %d vs %d instructions", len(folded), len(unfolded))
	}
	expectInstr(t, folded, 0, tam.Instruction{Op: tam.LOADLop, D: 20})
	expectInstr(t, unfolded, 2, tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.MultDispl})
}

func TestInstructionListing(t *testing.T) {
	tests := []struct {
		instr    tam.Instruction
		expected string
	}{
		{tam.Instruction{Op: tam.LOADLop, D: 42}, "LOADL 42"},
		{tam.Instruction{Op: tam.LOADop, N: 1, R: tam.LBr, D: 2}, "LOAD(1) 2[LB]"},
		{tam.Instruction{Op: tam.CALLop, N: tam.SBr, R: tam.PBr, D: tam.PutintDispl}, "CALL(SB) 26[PB]"},
		{tam.Instruction{Op: tam.JUMPIFop, N: 1, R: tam.CBr, D: 7}, "JUMPIF(1) 7[CB]"},
		{tam.Instruction{Op: tam.HALTop}, "HALT"},
	}
	for _, tt := range tests {
		if got := tt.instr.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
