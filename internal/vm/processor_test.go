package vm

import (
	"testing"

	"crucible/internal/compiler"
	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func assemble(t *testing.T, lines ...string) *vmprogram.Program {
	t.Helper()
	program, _, err := compiler.Assemble(lines)
	assert(t, err == nil, "assemble failed: %v", err)
	return program
}

func TestIntegerAddition(t *testing.T) {
	program := assemble(t,
		"PSH Integer 2",
		"PSH Integer 40",
		"ADD (Integer,Integer)",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Integer == 42, "expected 42, got %d", result.Integer)
}

func TestRealMultiplication(t *testing.T) {
	program := assemble(t,
		"PSH Real 1.5",
		"PSH Real 2.5",
		"MUL (Real,Real)",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Real == 3.75, "expected 3.75, got %v", result.Real)
}

func TestIntegerPlusImaginaryYieldsComplex(t *testing.T) {
	program := assemble(t,
		"PSH Integer 3",
		"PSH Imaginary 4.0",
		"ADD (Integer,Imaginary)",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Pointer != nil && result.Pointer.Type == vmvalue.Complex, "expected a Complex result")
	c := *result.Pointer.Data.(*vmvalue.Complex)
	assert(t, c == (vmvalue.Complex{A: 3, B: 4}), "expected 3+4i, got %v", c)
}

func TestStringConcatenation(t *testing.T) {
	program := assemble(t,
		`STR "ab"`,
		`STR "cd"`,
		"ADD (String,String)",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	s := result.Pointer.Data.(*vmvalue.StringObj).Value
	assert(t, s == "abcd", "expected abcd, got %q", s)
}

func TestIntegerDivisionByZeroCrashes(t *testing.T) {
	program := assemble(t,
		"PSH Integer 10",
		"PSH Integer 0",
		"DIV (Integer,Integer)",
		"HLT",
	)
	_, err := NewProcessor().Evaluate(program)
	assert(t, err != nil, "expected a crash evaluating 10 DIV 0")
	crash, ok := err.(Crash)
	assert(t, ok, "expected a Crash, got %T", err)
	assert(t, crash.Instruction.Op == vmprogram.DIV, "expected the crash to record the DIV instruction")
}

func TestArrayPushAndGet(t *testing.T) {
	program := assemble(t,
		"PSH Integer 10",
		"PSH Integer 20",
		"PSH Integer 30",
		"PSA 3",
		"PSH Natural 1",
		"AGS",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Integer == 20, "expected element 20, got %d", result.Integer)
}

func TestArraySetAutoExtendFillsGapWithStoredValue(t *testing.T) {
	program := assemble(t,
		"PSH Integer 1",
		"PSH Integer 2",
		"PSA 2",
		"DHD",
		"PSH Natural 5",
		"PSH Integer 99",
		"ASS",
		"PSH Natural 2",
		"AGS",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Integer == 99, "expected gap slot 2 to hold the stored value 99, got %d", result.Integer)
}

func TestArraySetAutoExtendFillsTargetIndex(t *testing.T) {
	program := assemble(t,
		"PSH Integer 1",
		"PSH Integer 2",
		"PSA 2",
		"DHD",
		"PSH Natural 5",
		"PSH Integer 99",
		"ASS",
		"PSH Natural 5",
		"AGS",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Integer == 99, "expected target index 5 to hold 99, got %d", result.Integer)
}

func TestBooleanOrderingComparisons(t *testing.T) {
	greater := assemble(t, "PSH Boolean true", "PSH Boolean false", "GRT (Boolean,Boolean)", "HLT")
	result, err := NewProcessor().Evaluate(greater)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Boolean, "expected true GRT false to be true")

	less := assemble(t, "PSH Boolean false", "PSH Boolean true", "LSS (Boolean,Boolean)", "HLT")
	result, err = NewProcessor().Evaluate(less)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Boolean, "expected false LSS true to be true")

	geq := assemble(t, "PSH Boolean true", "PSH Boolean true", "GEQ (Boolean,Boolean)", "HLT")
	result, err = NewProcessor().Evaluate(geq)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Boolean, "expected true GEQ true to be true")

	notLess := assemble(t, "PSH Boolean true", "PSH Boolean false", "LEQ (Boolean,Boolean)", "HLT")
	result, err = NewProcessor().Evaluate(notLess)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, !result.Boolean, "expected true LEQ false to be false")
}

func TestBitwiseXorOnBooleansCrashes(t *testing.T) {
	program := assemble(t, "PSH Boolean true", "PSH Boolean false", "BWX (Boolean,Boolean)", "HLT")
	_, err := NewProcessor().Evaluate(program)
	assert(t, err != nil, "expected BWX on two Booleans to crash, it is not a defined operation")
}

func TestStackIsBalancedAfterCallReturn(t *testing.T) {
	program := assemble(t,
		"JMP main",
		"routine:",
		"PSH Integer 1",
		"RET",
		"main:",
		"CAL routine",
		"POP",
		"PSH Integer 99",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Integer == 99, "expected 99 on top after call/return discipline, got %d", result.Integer)
}

func TestRetWithoutCallCrashes(t *testing.T) {
	program := assemble(t, "RET", "HLT")
	_, err := NewProcessor().Evaluate(program)
	assert(t, err != nil, "expected a crash returning with an empty call stack")
}

func TestImaginaryTimesImaginaryDoesNotFlipSign(t *testing.T) {
	// Documented quirk, preserved deliberately: Imaginary x Imaginary
	// MUL yields a.Real*b.Real with no i*i sign flip, unlike true
	// complex multiplication which would give a negative product.
	program := assemble(t,
		"PSH Imaginary 2.0",
		"PSH Imaginary 3.0",
		"MUL (Imaginary,Imaginary)",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Real == 6, "expected the unflipped product 6, got %v", result.Real)
}

func TestAdditionIsCommutativeForIntegers(t *testing.T) {
	forward := assemble(t, "PSH Integer 7", "PSH Integer 35", "ADD (Integer,Integer)", "HLT")
	backward := assemble(t, "PSH Integer 35", "PSH Integer 7", "ADD (Integer,Integer)", "HLT")

	a, err := NewProcessor().Evaluate(forward)
	assert(t, err == nil, "unexpected crash: %v", err)
	b, err := NewProcessor().Evaluate(backward)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, a.Integer == b.Integer, "addition should be commutative: %d vs %d", a.Integer, b.Integer)
}

func TestEvaluateIsDeterministicAcrossRuns(t *testing.T) {
	program := assemble(t,
		"PSH Integer 6",
		"PSH Integer 7",
		"MUL (Integer,Integer)",
		"HLT",
	)
	first, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	second, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, first.Integer == second.Integer, "evaluating the same program twice should agree: %d vs %d", first.Integer, second.Integer)
}

func TestStepMatchesRunResult(t *testing.T) {
	program := assemble(t,
		"PSH Integer 2",
		"PSH Integer 3",
		"ADD (Integer,Integer)",
		"HLT",
	)
	p := NewProcessor()
	for {
		halted, err := p.Step(program)
		assert(t, err == nil, "unexpected crash during Step: %v", err)
		if halted {
			break
		}
	}
	vals := p.StackValues()
	assert(t, len(vals) == 1, "expected exactly one value on the stack, got %d", len(vals))
	assert(t, vals[0].Integer == 5, "expected 5, got %d", vals[0].Integer)
}

func TestCastIntegerToReal(t *testing.T) {
	program := assemble(t,
		"PSH Integer 9",
		"CST (Integer,Real)",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Real == 9, "expected 9.0, got %v", result.Real)
}

// TestThreePlusFourImaginaryViaCastReproducesSpecScenario mirrors the
// scenario exactly: a Real is bit-reinterpreted to Imaginary via CST
// before the ADD, rather than pushed directly as an Imaginary literal.
func TestThreePlusFourImaginaryViaCastReproducesSpecScenario(t *testing.T) {
	program := assemble(t,
		"PSH Integer 3",
		"PSH Real 4.0",
		"CST (Real,Imaginary)",
		"ADD (Integer,Imaginary)",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	c := *result.Pointer.Data.(*vmvalue.Complex)
	assert(t, c == (vmvalue.Complex{A: 3, B: 4}), "expected 3+4i, got %v", c)
}

func TestCastRoundTripIntegralWideningIsIdentity(t *testing.T) {
	program := assemble(t,
		"PSH Byte 200",
		"CST (Byte,Natural)",
		"CST (Natural,Byte)",
		"HLT",
	)
	result, err := NewProcessor().Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, result.Byte == 200, "expected round-trip to preserve 200, got %d", result.Byte)
}

func TestObjectSweepTotalityAfterRun(t *testing.T) {
	program := assemble(t,
		`STR "ab"`,
		`STR "cd"`,
		"ADD (String,String)",
		"HLT",
	)
	p := NewProcessor()
	_, err := p.Evaluate(program)
	assert(t, err == nil, "unexpected crash: %v", err)
	assert(t, p.objects.Len() == 0, "expected the registry to be empty after a normal run, got %d entries", p.objects.Len())
}

func TestObjectSweepTotalityAfterCrash(t *testing.T) {
	program := assemble(t,
		`STR "ab"`,
		"PSH Integer 10",
		"PSH Integer 0",
		"DIV (Integer,Integer)",
		"HLT",
	)
	p := NewProcessor()
	_, err := p.Evaluate(program)
	assert(t, err != nil, "expected a crash")
	assert(t, p.objects.Len() == 0, "expected the registry to be empty after a crashed run too, got %d entries", p.objects.Len())
}

func TestStackBalanceForBinaryArithmetic(t *testing.T) {
	program := assemble(t,
		"PSH Integer 1",
		"PSH Integer 2",
		"PSH Integer 3",
		"ADD (Integer,Integer)",
		"HLT",
	)
	p := NewProcessor()
	for {
		halted, err := p.Step(program)
		assert(t, err == nil, "unexpected crash: %v", err)
		if halted {
			break
		}
		if p.PC() == 4 {
			// just executed the ADD at index 3: two operands popped,
			// one result pushed, net -1.
			assert(t, p.stack.Size() == 2, "expected stack size 2 after a binary op consumed two operands and pushed one, got %d", p.stack.Size())
		}
	}
}
