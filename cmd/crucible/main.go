// Command crucible is the toolchain front end: it assembles, runs,
// disassembles, and single-steps bytecode programs.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var forceColour bool
var forceNoColour bool

func stylingEnabled() bool {
	if forceNoColour {
		return false
	}
	if forceColour {
		return true
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func main() {
	root := &cobra.Command{
		Use:   "crucible",
		Short: "Assemble, run, and inspect stack-machine bytecode programs",
	}
	root.PersistentFlags().BoolVar(&forceColour, "color", false, "force ANSI styled output")
	root.PersistentFlags().BoolVar(&forceNoColour, "no-color", false, "disable ANSI styled output")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newDebugCmd())
	root.AddCommand(newDisasmCmd())
	root.AddCommand(newFoldCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
