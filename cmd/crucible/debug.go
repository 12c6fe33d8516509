package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"crucible/internal/vm"
	"crucible/internal/vmdecompile"
	"crucible/internal/vmprogram"
)

func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <file>",
		Short: "Single-step a program with breakpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			runDebugREPL(program, stylingEnabled())
			return nil
		},
	}
}

func printCurrentState(proc *vm.Processor, program *vmprogram.Program, styled bool) {
	pc := proc.PC()
	if pc < uint64(len(program.Instructions)) {
		fmt.Printf("-> next instruction %#04x:\n", pc)
		vmdecompile.DecompileOne(os.Stdout, program.Instructions[pc], styled)
	}
	fmt.Println("-> stack>", proc.StackValues())
}

func runDebugREPL(program *vmprogram.Program, styled bool) {
	fmt.Print("Commands:\n\tn or next: execute next instruction\n\tr or run: run program\n\tb or break <addr>: toggle breakpoint\n\n")

	proc := vm.NewProcessor()
	printCurrentState(proc, program, styled)

	reader := bufio.NewReader(os.Stdin)
	waitForInput := true
	breakpoints := make(map[uint64]struct{})
	lastBreak := uint64(1<<64 - 1)

	for {
		line := ""
		if waitForInput {
			fmt.Print("\n->")
			line, _ = reader.ReadString('\n')
			line = strings.ToLower(strings.TrimSpace(line))
		} else {
			pc := proc.PC()
			if _, hit := breakpoints[pc]; hit && lastBreak != pc {
				fmt.Println("breakpoint")
				printCurrentState(proc, program, styled)
				waitForInput = true
				lastBreak = pc
				continue
			}
		}

		switch {
		case !waitForInput || line == "n" || line == "next":
			lastBreak = 1<<64 - 1
			halted, err := proc.Step(program)
			if waitForInput {
				if !halted {
					printCurrentState(proc, program, styled)
				}
			}
			if err != nil {
				fmt.Println(err)
				return
			}
			if halted {
				fmt.Println("halted")
				return
			}
		case line == "program":
			vmdecompile.Decompile(os.Stdout, program, styled)
		case line == "r" || line == "run":
			waitForInput = false
		case strings.HasPrefix(line, "b"):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				fmt.Println("usage: break <addr>")
				continue
			}
			addr, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				fmt.Println("unknown address:", err)
				continue
			}
			if _, ok := breakpoints[addr]; ok {
				delete(breakpoints, addr)
			} else {
				breakpoints[addr] = struct{}{}
			}
		}
	}
}
