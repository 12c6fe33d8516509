package vmsource

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

func TestEncodeDecodeRoundTripsAllPushLiteralKinds(t *testing.T) {
	program := &vmprogram.Program{
		Strings: []string{"hi"},
		Instructions: []vmprogram.Instruction{
			{Op: vmprogram.PSH, Operand: vmprogram.Operand{Value: vmvalue.BoolValue(true)}},
			{Op: vmprogram.PSH, Operand: vmprogram.Operand{Value: vmvalue.ByteValue(65)}},
			{Op: vmprogram.PSH, Operand: vmprogram.Operand{Value: vmvalue.RealValue(3.14)}},
			{Op: vmprogram.PSH, Operand: vmprogram.Operand{Value: vmvalue.NaturalValue(7)}},
			{Op: vmprogram.PSH, Operand: vmprogram.Operand{Value: vmvalue.IntValue(-9)}},
			{Op: vmprogram.STR, Operand: vmprogram.Operand{Index: 0}},
			{Op: vmprogram.ADD, Operand: vmprogram.Operand{TypePair: vmvalue.ComposeTypePair(vmvalue.Integer, vmvalue.Real)}},
			{Op: vmprogram.HLT},
		},
	}

	data := EncodeProgram(program)
	got, err := DecodeProgram(data)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(got.Instructions) == len(program.Instructions), "instruction count mismatch")

	assert(t, got.Instructions[0].Operand.Value.Boolean, "expected Boolean literal true to round-trip")
	assert(t, got.Instructions[1].Operand.Value.Byte == 65, "expected Byte literal 65 to round-trip, got %d", got.Instructions[1].Operand.Value.Byte)
	assert(t, got.Instructions[2].Operand.Value.Real == 3.14, "expected Real literal 3.14 to round-trip, got %v", got.Instructions[2].Operand.Value.Real)
	assert(t, got.Instructions[3].Operand.Value.Integer == 7, "expected Natural literal 7 to round-trip, got %d", got.Instructions[3].Operand.Value.Integer)
	assert(t, got.Instructions[4].Operand.Value.Integer == -9, "expected Integer literal -9 to round-trip, got %d", got.Instructions[4].Operand.Value.Integer)

	left, right := got.Instructions[6].Operand.TypePair.Split()
	assert(t, left == vmvalue.Integer && right == vmvalue.Real, "expected type pair to round-trip")
	assert(t, got.Strings[0] == "hi", "expected pooled string to round-trip, got %q", got.Strings[0])
}

func TestEncodeDecodeRoundTripsLiterals(t *testing.T) {
	program := &vmprogram.Program{
		Literals: []vmvalue.Value{
			vmvalue.RealValue(2.5),
			vmvalue.BoolValue(true),
			vmvalue.ByteValue(9),
		},
	}
	data := EncodeProgram(program)
	got, err := DecodeProgram(data)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, got.Literals[0].Real == 2.5, "expected literal 0 to round-trip as 2.5, got %v", got.Literals[0].Real)
	assert(t, got.Literals[1].Boolean, "expected literal 1 to round-trip as true")
	assert(t, got.Literals[2].Byte == 9, "expected literal 2 to round-trip as byte 9, got %d", got.Literals[2].Byte)
}
