package compiler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- Test Helper Functions ---

func writeSource(t *testing.T, contents string) (srcPath, objPath string) {
	t.Helper()
	dir := t.TempDir()
	srcPath = filepath.Join(dir, "prog.tri")
	if err := os.WriteFile(srcPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	return srcPath, filepath.Join(dir, "prog.tam")
}

// --- Test Cases ---

func TestCompileWritesObjectFile(t *testing.T) {
	src, obj := writeSource(t, `let const x ~ 2 + 3 in putint(x * 4)`)

	var out bytes.Buffer
	reporter, err := Compile(src, Options{ObjectName: obj}, &out)
	if err != nil {
		t.Fatalf("Compile() returned error: %v", err)
	}
	if reporter.ErrorCount() != 0 {
		t.Fatalf("expected no errors, got %d: %v", reporter.ErrorCount(), reporter.Diagnostics())
	}

	info, err := os.Stat(obj)
	if err != nil {
		t.Fatalf("object file not written: %v", err)
	}
	// Four big-endian int32 words per instruction.
	if info.Size() == 0 || info.Size()%16 != 0 {
		t.Errorf("object file size %d is not a whole number of instructions", info.Size())
	}

	for _, banner := range []string{"Syntactic Analysis", "Contextual Analysis", "Code Generation"} {
		if !strings.Contains(out.String(), banner) {
			t.Errorf("output missing %q banner:\n%s", banner, out.String())
		}
	}
}

func TestCompileSemanticErrorSkipsGeneration(t *testing.T) {
	src, obj := writeSource(t, `putint(nowhere)`)

	var out bytes.Buffer
	reporter, err := Compile(src, Options{ObjectName: obj}, &out)
	if err != nil {
		t.Fatalf("Compile() returned error: %v", err)
	}
	if reporter.ErrorCount() != 1 {
		t.Fatalf("expected 1 error, got %d: %v", reporter.ErrorCount(), reporter.Diagnostics())
	}

	if _, err := os.Stat(obj); !os.IsNotExist(err) {
		t.Errorf("object file must not be written for an erroneous program")
	}
	if strings.Contains(out.String(), "Code Generation") {
		t.Errorf("code generation must not run on an erroneous tree:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "undeclared identifier") {
		t.Errorf("diagnostics not written to output:\n%s", out.String())
	}
}

func TestCompileSyntaxErrorStopsEarly(t *testing.T) {
	src, obj := writeSource(t, `begin x := ; end`)

	var out bytes.Buffer
	reporter, err := Compile(src, Options{ObjectName: obj}, &out)
	if err != nil {
		t.Fatalf("Compile() returned error: %v", err)
	}
	if reporter.ErrorCount() != 1 {
		t.Fatalf("expected 1 syntax error, got %d: %v", reporter.ErrorCount(), reporter.Diagnostics())
	}
	if strings.Contains(out.String(), "Contextual Analysis") {
		t.Errorf("contextual analysis must not run after a syntax error:\n%s", out.String())
	}
}

func TestCompileMissingSource(t *testing.T) {
	var out bytes.Buffer
	_, err := Compile(filepath.Join(t.TempDir(), "absent.tri"), Options{}, &out)
	if err == nil {
		t.Fatalf("expected an error for a missing source file")
	}
	if !strings.Contains(err.Error(), "can't access source file") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestCompileListingAndStats(t *testing.T) {
	src, obj := writeSource(t, `let var n: Integer in n := 1 + 2`)

	var out bytes.Buffer
	reporter, err := Compile(src, Options{
		ObjectName:  obj,
		ShowStats:   true,
		ShowListing: true,
	}, &out)
	if err != nil {
		t.Fatalf("Compile() returned error: %v", err)
	}
	if reporter.ErrorCount() != 0 {
		t.Fatalf("expected no errors, got %v", reporter.Diagnostics())
	}

	if !strings.Contains(out.String(), "Node summary:") {
		t.Errorf("output missing node summary:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "HALT") {
		t.Errorf("output missing listing:\n%s", out.String())
	}
}

// With folding enabled the same program produces a smaller object file.
func TestCompileFoldingShrinksObject(t *testing.T) {
	const program = `let const x ~ 2 + 3 in putint(x * 4)`

	src1, obj1 := writeSource(t, program)
	var out bytes.Buffer
	if _, err := Compile(src1, Options{ObjectName: obj1}, &out); err != nil {
		t.Fatalf("Compile() returned error: %v", err)
	}

	src2, obj2 := writeSource(t, program)
	if _, err := Compile(src2, Options{ObjectName: obj2, Folding: true}, &out); err != nil {
		t.Fatalf("Compile() returned error: %v", err)
	}

	plain, err := os.Stat(obj1)
	if err != nil {
		t.Fatal(err)
	}
	folded, err := os.Stat(obj2)
	if err != nil {
		t.Fatal(err)
	}
	if folded.Size() >= plain.Size() {
		t.Errorf("expected folding to shrink the object file: %d vs %d bytes", folded.Size(), plain.Size())
	}
}
