package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"crucible/internal/compiler"
	"crucible/internal/vmprogram"
	"crucible/internal/vmsource"
	"crucible/internal/wings"
)

func newBuildCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build <source.csm>",
		Short: "Assemble a text source file into the binary bytecode format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = args[0] + ".cbc"
			}
			program, err := assembleFile(args[0])
			if err != nil {
				return err
			}
			data := vmsource.EncodeProgram(program)
			if err := vmsource.WriteBinaryFile(out, data); err != nil {
				return errors.Wrap(err, "writing binary")
			}
			fmt.Printf("wrote %s (%d instructions)\n", out, program.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default: <source>.cbc)")
	return cmd
}

// assembleFile resolves imports, tokenizes, and assembles a text
// source file into a Program, shared by the build, run, debug, and
// disasm subcommands.
func assembleFile(path string) (*vmprogram.Program, error) {
	lines, err := wings.Resolve(path, vmsource.ReadSourceFile)
	if err != nil {
		return nil, errors.Wrap(err, "resolving imports")
	}
	program, _, err := compiler.Assemble(lines)
	if err != nil {
		return nil, errors.Wrap(err, "assembling source")
	}
	return program, nil
}
