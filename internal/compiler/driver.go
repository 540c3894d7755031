package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/checker"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/drawer"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/emitter"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/encoder"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/folder"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/lexer"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/parser"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/report"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/stats"
)

// DefaultObjectName is where the object program goes unless -o says
// otherwise.
const DefaultObjectName = "obj.tam"

// Options are the flags a compilation run honors. They are read once,
// before the run starts.
type Options struct {
	ObjectName    string // output path for the object program
	ShowTree      bool   // draw the AST after contextual analysis
	Folding       bool   // run the constant folder before code generation
	ShowTreeAfter bool   // draw the AST again after folding/generation
	ShowStats     bool   // print the node-kind summary
	ShowListing   bool   // print a disassembly of the generated code
}

// Compile runs the whole pipeline on one source file: lexing, parsing,
// contextual analysis, optional folding, code generation, object write.
// Stage banners and diagnostics go to out. Each call builds its own
// lexer, parser, checker, encoder, and reporter, so independent runs can
// proceed in parallel.
//
// The returned error covers infrastructure failures (unreadable source,
// unwritable object file). Compile-time errors are not Go errors: they
// are in the returned reporter, and the run failed if its count is
// nonzero.
func Compile(srcPath string, opts Options, out io.Writer) (*report.Reporter, error) {
	if opts.ObjectName == "" {
		opts.ObjectName = DefaultObjectName
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("can't access source file %s: %w", srcPath, err)
	}

	reporter := report.NewReporter()

	fmt.Fprintln(out, "Syntactic Analysis ...")
	l := lexer.NewLexer(string(src), reporter)
	prog := parser.ParseProgram(l, reporter)

	if prog != nil && reporter.ErrorCount() == 0 {
		fmt.Fprintln(out, "Contextual Analysis ...")
		checker.Check(prog, reporter)

		if opts.ShowTree {
			drawer.NewDrawer(out).Draw(prog)
		}
		if opts.Folding {
			folder.Fold(prog)
		}
		if opts.ShowStats {
			fmt.Fprint(out, stats.Count(prog).Summary())
		}

		// Generation runs only on an error-free tree.
		if reporter.ErrorCount() == 0 {
			fmt.Fprintln(out, "Code Generation ...")
			code := encoder.Encode(prog, reporter)

			if opts.ShowListing {
				for addr, instr := range code {
					fmt.Fprintf(out, "%4d:  %s\n", addr, instr)
				}
			}
			if reporter.ErrorCount() == 0 {
				if err := emitter.WriteObjectFile(opts.ObjectName, code); err != nil {
					return reporter, err
				}
				if opts.ShowTreeAfter {
					drawer.NewDrawer(out).Draw(prog)
				}
			}
		}
	}

	reporter.Write(out)
	return reporter, nil
}
