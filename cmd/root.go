package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "triangle",
	Short: "Compile Triangle source to TAM object code",
	Long: `Triangle is a compiler for the Triangle teaching language, targeting
the Triangle Abstract Machine (TAM).

Commands:
  compile  Compile a (.tri) Triangle source file into a (.tam) object file
`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(CompileCmd)
}
