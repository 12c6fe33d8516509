package main

import (
	"os"

	"github.com/spf13/cobra"

	"crucible/internal/vmdecompile"
)

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file>",
		Short: "Disassemble a program to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			return vmdecompile.Decompile(os.Stdout, program, stylingEnabled())
		},
	}
}
