package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"crucible/internal/compiler"
	"crucible/internal/vm"
)

func newFoldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fold <instr>...",
		Short: "Assemble and evaluate a short instruction sequence, printing the resulting value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, _, err := compiler.Assemble(args)
			if err != nil {
				return errors.Wrap(err, "assembling fold sequence")
			}
			proc := vm.NewProcessor()
			result, err := proc.Fold(program.Instructions)
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", result)
			return nil
		},
	}
}
