package vmdecompile

import (
	"bytes"
	"strings"
	"testing"

	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestDecompileOneUnstyledHasNoEscapeCodes(t *testing.T) {
	instr := vmprogram.Instruction{
		Op: vmprogram.ADD,
		Operand: vmprogram.Operand{
			TypePair: vmvalue.ComposeTypePair(vmvalue.Integer, vmvalue.Integer),
		},
	}
	var buf bytes.Buffer
	err := DecompileOne(&buf, instr, false)
	assert(t, err == nil, "unexpected error: %v", err)
	out := buf.String()
	assert(t, !strings.Contains(out, "\x1B["), "unstyled output must not contain ANSI escapes: %q", out)
	assert(t, strings.Contains(out, "ADD"), "expected mnemonic in output: %q", out)
	assert(t, strings.Contains(out, "INT"), "expected decoded type codes in output: %q", out)
}

func TestDecompileOneStyledAddsEscapeCodes(t *testing.T) {
	instr := vmprogram.Instruction{Op: vmprogram.HLT}
	var buf bytes.Buffer
	err := DecompileOne(&buf, instr, true)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, strings.Contains(buf.String(), "\x1B["), "styled output should contain ANSI escapes")
}

func TestDecompileIsIdempotentAndDoesNotMutateProgram(t *testing.T) {
	program := &vmprogram.Program{
		Instructions: []vmprogram.Instruction{
			{Op: vmprogram.PSH, Operand: vmprogram.Operand{Value: vmvalue.IntValue(2)}},
			{Op: vmprogram.HLT},
		},
	}
	snapshot := append([]vmprogram.Instruction(nil), program.Instructions...)

	var first, second bytes.Buffer
	assert(t, Decompile(&first, program, false) == nil, "first decompile failed")
	assert(t, Decompile(&second, program, false) == nil, "second decompile failed")

	assert(t, first.String() == second.String(), "decompile output should be idempotent")
	for i := range snapshot {
		assert(t, snapshot[i] == program.Instructions[i], "program instructions mutated by Decompile")
	}
}
