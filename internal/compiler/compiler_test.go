package compiler

import (
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

func TestAssembleSimpleArithmetic(t *testing.T) {
	program, _, err := Assemble([]string{
		"PSH Integer 2",
		"PSH Integer 40",
		"ADD (Integer,Integer)",
		"HLT",
	})
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(program.Instructions) == 4, "expected 4 instructions, got %d", len(program.Instructions))
	assert(t, program.Instructions[0].Op == vmprogram.PSH, "expected PSH")
	assert(t, program.Instructions[0].Operand.Value.Integer == 2, "expected operand 2")
	left, right := program.Instructions[2].Operand.TypePair.Split()
	assert(t, left == vmvalue.Integer && right == vmvalue.Integer, "expected (Integer,Integer) type pair")
}

func TestAssembleForwardAndBackwardLabels(t *testing.T) {
	program, _, err := Assemble([]string{
		"JMP forward",
		"back:",
		"PSH Integer 1",
		"JMP back",
		"forward:",
		"HLT",
	})
	assert(t, err == nil, "unexpected error: %v", err)
	// forward: resolves to the HLT instruction, which lands at index 3
	// once the two label-definition lines are stripped.
	assert(t, program.Instructions[0].Op == vmprogram.JMP, "expected JMP first")
	assert(t, program.Instructions[0].Operand.Index == 3, "forward label should resolve to index 3, got %d", program.Instructions[0].Operand.Index)
	assert(t, program.Instructions[2].Op == vmprogram.JMP, "expected second JMP")
	assert(t, program.Instructions[2].Operand.Index == 1, "back label should resolve to index 1, got %d", program.Instructions[2].Operand.Index)
}

func TestAssembleUndefinedLabelErrors(t *testing.T) {
	_, _, err := Assemble([]string{"JMP nowhere", "HLT"})
	assert(t, err != nil, "expected an error for undefined label")
}

func TestAssembleUnknownMnemonicErrors(t *testing.T) {
	_, _, err := Assemble([]string{"FROB"})
	assert(t, err != nil, "expected an error for unknown mnemonic")
}

func TestAssemblePushLiteralsAcrossTypes(t *testing.T) {
	program, _, err := Assemble([]string{
		"PSH Boolean true",
		"PSH Byte 65",
		"PSH Natural 7",
		"PSH Integer -3",
		"PSH Real 1.5",
		"PSH Imaginary 2.5",
		"HLT",
	})
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, program.Instructions[0].Operand.Value.Boolean, "expected true")
	assert(t, program.Instructions[1].Operand.Value.Byte == 65, "expected byte 65")
	assert(t, program.Instructions[2].Operand.Value.Integer == 7, "expected natural 7")
	assert(t, program.Instructions[3].Operand.Value.Integer == -3, "expected integer -3")
	assert(t, program.Instructions[4].Operand.Value.Real == 1.5, "expected real 1.5")
	assert(t, program.Instructions[5].Operand.Value.Real == 2.5, "expected imaginary 2.5")
}

func TestAssembleStringLiteralInternsIntoPool(t *testing.T) {
	program, _, err := Assemble([]string{
		`STR "ab"`,
		`STR "cd"`,
		"HLT",
	})
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(program.Strings) == 2, "expected 2 pooled strings, got %d", len(program.Strings))
	assert(t, program.Strings[program.Instructions[0].Operand.Index] == "ab", "expected first STR to intern \"ab\"")
	assert(t, program.Strings[program.Instructions[1].Operand.Index] == "cd", "expected second STR to intern \"cd\"")
}

func TestAssembleMalformedTypePairErrors(t *testing.T) {
	_, _, err := Assemble([]string{"ADD Integer", "HLT"})
	assert(t, err != nil, "expected an error for a malformed type pair")
}

func TestAssembleInterruptNameResolvesToCode(t *testing.T) {
	program, _, err := Assemble([]string{"INT writeln", "HLT"})
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, program.Instructions[0].Operand.Index == uint64(vmprogram.IntWriteln), "expected IntWriteln code")
}

func TestAssembleDebugSymbolsTrackSourceLines(t *testing.T) {
	_, debug, err := Assemble([]string{
		"  PSH Integer 1  ",
		"HLT",
	})
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, debug[0] == "PSH Integer 1", "expected trimmed source line, got %q", debug[0])
}
