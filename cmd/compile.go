package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler"
)

var compileOpts compiler.Options

// compile: Triangle source -> TAM object program
var CompileCmd = &cobra.Command{
	Use:   "compile <source.tri>",
	Short: "Compile a Triangle source file into a TAM object file",
	Args:  cobra.ExactArgs(1),
	RunE:  compileRun,
}

func init() {
	CompileCmd.Flags().StringVarP(&compileOpts.ObjectName, "object", "o", compiler.DefaultObjectName, "object file name")
	CompileCmd.Flags().BoolVar(&compileOpts.ShowTree, "tree", false, "draw the AST after contextual analysis")
	CompileCmd.Flags().BoolVar(&compileOpts.Folding, "folding", false, "fold constant expressions before code generation")
	CompileCmd.Flags().BoolVar(&compileOpts.ShowTreeAfter, "tree-after", false, "draw the AST again after folding")
	CompileCmd.Flags().BoolVar(&compileOpts.ShowStats, "stats", false, "print a summary of AST node counts")
	CompileCmd.Flags().BoolVar(&compileOpts.ShowListing, "listing", false, "print a disassembly of the generated code")
}

func compileRun(cmd *cobra.Command, args []string) error {
	src := args[0]

	fmt.Println("********** Triangle Compiler **********")

	reporter, err := compiler.Compile(src, compileOpts, os.Stdout)
	if err != nil {
		return err
	}

	if n := reporter.ErrorCount(); n > 0 {
		color.Red("Compilation failed with %d error(s).", n)
		return fmt.Errorf("compilation failed")
	}

	color.Green("Compilation was successful.")
	return nil
}
