package main

import (
	"os"

	"github.com/aleksa11010/HarnessInputSetReconciler/cmd"
	"github.com/fatih/color"
)

func main() {
	if err := cmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
