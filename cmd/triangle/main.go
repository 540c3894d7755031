package main

import (
	"os"

	"github.com/Sivdeg/a5-triangle-tools/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
