package vm

import (
	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

type numCategory int

const (
	catIntegral numCategory = iota
	catReal
	catImaginary
	catComplex
	catString
	catBoolean
	catOther
)

func categoryOf(t vmvalue.Type) numCategory {
	switch {
	case t.IsIntegral():
		return catIntegral
	case t == vmvalue.Real:
		return catReal
	case t == vmvalue.Imaginary:
		return catImaginary
	case t == vmvalue.Complex:
		return catComplex
	case t == vmvalue.String:
		return catString
	case t == vmvalue.Boolean:
		return catBoolean
	default:
		return catOther
	}
}

func intSigned(t vmvalue.Type, v vmvalue.Value) int64 {
	if t == vmvalue.Character || t == vmvalue.Byte {
		return int64(v.Byte)
	}
	return v.Integer
}

func uintOf(t vmvalue.Type, v vmvalue.Value) uint64 {
	if t == vmvalue.Character || t == vmvalue.Byte {
		return uint64(v.Byte)
	}
	return v.Natural()
}

func floatOf(t vmvalue.Type, v vmvalue.Value) float64 {
	switch t {
	case vmvalue.Character, vmvalue.Byte:
		return float64(v.Byte)
	case vmvalue.Natural:
		return float64(v.Natural())
	case vmvalue.Real, vmvalue.Imaginary:
		return v.Real
	default:
		return float64(v.Integer)
	}
}

func stringOf(t vmvalue.Type, v vmvalue.Value) string {
	if t == vmvalue.Character {
		return string(rune(v.Byte))
	}
	return v.Pointer.Data.(*vmvalue.StringObj).Value
}

func complexOf(t vmvalue.Type, v vmvalue.Value) vmvalue.Complex {
	switch {
	case t == vmvalue.Complex:
		return *v.Pointer.Data.(*vmvalue.Complex)
	case t == vmvalue.Imaginary:
		return vmvalue.Complex{A: 0, B: v.Real}
	default:
		return vmvalue.Complex{A: floatOf(t, v), B: 0}
	}
}

// execArithmetic handles ADD, SUB, MUL, DIV, MOD. Operands are popped
// right then left; the result is pushed.
func (p *Processor) execArithmetic(pc uint64, instr vmprogram.Instruction) {
	right := p.pop(pc, instr)
	left := p.pop(pc, instr)
	leftT, rightT := instr.Operand.TypePair.Split()
	p.push(p.arithmetic(pc, instr, instr.Op, leftT, left, rightT, right))
}

func (p *Processor) arithmetic(pc uint64, instr vmprogram.Instruction, op vmprogram.OPCode, leftT vmvalue.Type, left vmvalue.Value, rightT vmvalue.Type, right vmvalue.Value) vmvalue.Value {
	lc, rc := categoryOf(leftT), categoryOf(rightT)

	// String concatenation: ADD only, operand order preserved.
	if (lc == catString || leftT == vmvalue.Character) && (rc == catString || rightT == vmvalue.Character) &&
		(lc == catString || rc == catString) {
		if op != vmprogram.ADD {
			p.crash(pc, instr)
		}
		obj := p.objects.NewString(stringOf(leftT, left) + stringOf(rightT, right))
		return vmvalue.PointerValue(obj)
	}

	// Any operand that is a heap Complex, or any mix of Complex results
	// from the cases below, is handled uniformly: convert each operand
	// into a Complex (scalars become (s,0), pure imaginaries become
	// (0,s)) and apply the closed-form op. This reproduces the spec's
	// scalar componentwise rules and the imaginary-scalar rotation
	// identically, since (0+si)(a+bi) = (-sb, sa).
	if lc == catComplex || rc == catComplex {
		lcx, rcx := complexOf(leftT, left), complexOf(rightT, right)
		return vmvalue.PointerValue(p.objects.NewComplex(applyComplex(pc, instr, op, lcx, rcx)))
	}

	// Imaginary combined with a real-valued scalar (Real or integral):
	// ADD/SUB allocate a Complex; MUL/DIV demote to Real.
	if (lc == catImaginary && (rc == catReal || rc == catIntegral)) ||
		(rc == catImaginary && (lc == catReal || lc == catIntegral)) {
		switch op {
		case vmprogram.ADD, vmprogram.SUB:
			lcx, rcx := complexOf(leftT, left), complexOf(rightT, right)
			return vmvalue.PointerValue(p.objects.NewComplex(applyComplex(pc, instr, op, lcx, rcx)))
		case vmprogram.MUL, vmprogram.DIV:
			lf, rf := floatOf(leftT, left), floatOf(rightT, right)
			return vmvalue.RealValue(applyFloat(pc, instr, op, lf, rf))
		default:
			p.crash(pc, instr)
		}
	}

	// Real x Real and Imaginary x Imaginary: plain float op, yields
	// Real. This is also what produces the documented MUL quirk for
	// Imaginary x Imaginary (no i*i sign flip).
	if (lc == catReal && rc == catReal) || (lc == catImaginary && rc == catImaginary) {
		if op == vmprogram.MOD {
			p.crash(pc, instr)
		}
		return vmvalue.RealValue(applyFloat(pc, instr, op, floatOf(leftT, left), floatOf(rightT, right)))
	}

	// Integral combined with Real: promote integral, yield Real.
	if (lc == catIntegral && rc == catReal) || (lc == catReal && rc == catIntegral) {
		if op == vmprogram.MOD {
			p.crash(pc, instr)
		}
		return vmvalue.RealValue(applyFloat(pc, instr, op, floatOf(leftT, left), floatOf(rightT, right)))
	}

	// Integral x integral: Natural,Natural uses unsigned semantics;
	// any signed operand uses signed semantics. Result is Integer.
	if lc == catIntegral && rc == catIntegral {
		if leftT == vmvalue.Natural && rightT == vmvalue.Natural {
			return vmvalue.NaturalValue(applyUint(pc, instr, op, uintOf(leftT, left), uintOf(rightT, right)))
		}
		return vmvalue.IntValue(applyInt(pc, instr, op, intSigned(leftT, left), intSigned(rightT, right)))
	}

	p.crash(pc, instr)
	return vmvalue.Value{}
}

func applyComplex(pc uint64, instr vmprogram.Instruction, op vmprogram.OPCode, l, r vmvalue.Complex) vmvalue.Complex {
	switch op {
	case vmprogram.ADD:
		return l.Add(r)
	case vmprogram.SUB:
		return l.Sub(r)
	case vmprogram.MUL:
		return l.Mul(r)
	case vmprogram.DIV:
		return l.Div(r)
	default:
		panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
	}
}

func applyFloat(pc uint64, instr vmprogram.Instruction, op vmprogram.OPCode, l, r float64) float64 {
	switch op {
	case vmprogram.ADD:
		return l + r
	case vmprogram.SUB:
		return l - r
	case vmprogram.MUL:
		return l * r
	case vmprogram.DIV:
		return l / r
	default:
		panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
	}
}

func applyInt(pc uint64, instr vmprogram.Instruction, op vmprogram.OPCode, l, r int64) int64 {
	switch op {
	case vmprogram.ADD:
		return l + r
	case vmprogram.SUB:
		return l - r
	case vmprogram.MUL:
		return l * r
	case vmprogram.DIV:
		if r == 0 {
			panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
		}
		return l / r
	case vmprogram.MOD:
		if r == 0 {
			panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
		}
		return l % r
	default:
		panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
	}
}

func applyUint(pc uint64, instr vmprogram.Instruction, op vmprogram.OPCode, l, r uint64) uint64 {
	switch op {
	case vmprogram.ADD:
		return l + r
	case vmprogram.SUB:
		return l - r
	case vmprogram.MUL:
		return l * r
	case vmprogram.DIV:
		if r == 0 {
			panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
		}
		return l / r
	case vmprogram.MOD:
		if r == 0 {
			panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
		}
		return l % r
	default:
		panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
	}
}

// execShiftRotate handles BSL, BSR, BRL, BRR. Each dispatches on a
// single operand Type (not a type-pair, per the reference
// implementation); the shift amount is popped from the top, the value
// beneath it second. Each case is independent; Go's switch does not
// fall through.
func (p *Processor) execShiftRotate(pc uint64, instr vmprogram.Instruction) {
	amount := p.pop(pc, instr)
	val := p.pop(pc, instr)
	t := instr.Operand.Type
	if !t.IsIntegral() {
		p.crash(pc, instr)
	}
	shift := uint(uintOf(vmvalue.Natural, amount) & 63)
	bits := uintOf(t, val)
	var result uint64
	switch instr.Op {
	case vmprogram.BSL:
		result = bits << shift
	case vmprogram.BSR:
		result = bits >> shift
	case vmprogram.BRL:
		result = bits<<shift | bits>>(64-shift)
		if shift == 0 {
			result = bits
		}
	case vmprogram.BRR:
		result = bits>>shift | bits<<(64-shift)
		if shift == 0 {
			result = bits
		}
	default:
		p.crash(pc, instr)
	}
	p.push(reinterpretIntegral(t, result))
}

func reinterpretIntegral(t vmvalue.Type, bits uint64) vmvalue.Value {
	switch t {
	case vmvalue.Character, vmvalue.Byte:
		return vmvalue.ByteValue(byte(bits))
	case vmvalue.Natural:
		return vmvalue.NaturalValue(bits)
	default:
		return vmvalue.IntValue(int64(bits))
	}
}

// execBitwise handles BWA, BWO, BWX: bitwise and/or/xor on integer/byte
// types, and logical and/or (not xor — undefined for Boolean) when both
// operands are Boolean.
func (p *Processor) execBitwise(pc uint64, instr vmprogram.Instruction) {
	right := p.pop(pc, instr)
	left := p.pop(pc, instr)
	leftT, rightT := instr.Operand.TypePair.Split()

	if leftT == vmvalue.Boolean && rightT == vmvalue.Boolean {
		switch instr.Op {
		case vmprogram.BWA:
			p.push(vmvalue.BoolValue(left.Boolean && right.Boolean))
		case vmprogram.BWO:
			p.push(vmvalue.BoolValue(left.Boolean || right.Boolean))
		default:
			p.crash(pc, instr)
		}
		return
	}

	if !leftT.IsIntegral() || !rightT.IsIntegral() {
		p.crash(pc, instr)
	}
	l, r := uintOf(leftT, left), uintOf(rightT, right)
	var result uint64
	switch instr.Op {
	case vmprogram.BWA:
		result = l & r
	case vmprogram.BWO:
		result = l | r
	case vmprogram.BWX:
		result = l ^ r
	default:
		p.crash(pc, instr)
	}
	p.push(reinterpretIntegral(leftT, result))
}

// execInvert handles INV: bitwise complement. Each type's arm is
// independent.
func (p *Processor) execInvert(pc uint64, instr vmprogram.Instruction) {
	v := p.pop(pc, instr)
	t := instr.Operand.Type
	if !t.IsIntegral() {
		p.crash(pc, instr)
	}
	p.push(reinterpretIntegral(t, ^uintOf(t, v)))
}

// execNegate handles NEG: sign flip across numeric types; Complex
// allocates a new negated Complex.
func (p *Processor) execNegate(pc uint64, instr vmprogram.Instruction) {
	v := p.pop(pc, instr)
	t := instr.Operand.Type
	switch categoryOf(t) {
	case catIntegral:
		p.push(reinterpretIntegral(t, uint64(-intSigned(t, v))))
	case catReal, catImaginary:
		p.push(vmvalue.RealValue(-v.Real))
	case catComplex:
		c := *v.Pointer.Data.(*vmvalue.Complex)
		obj := p.objects.NewComplex(vmvalue.Complex{A: -c.A, B: -c.B})
		p.push(vmvalue.PointerValue(obj))
	default:
		p.crash(pc, instr)
	}
}

// execComparison handles EQL, NEQ, GRT, GEQ, LSS, LEQ, dispatched on
// the instruction's type-pair, pushing a Boolean.
func (p *Processor) execComparison(pc uint64, instr vmprogram.Instruction) {
	right := p.pop(pc, instr)
	left := p.pop(pc, instr)
	leftT, rightT := instr.Operand.TypePair.Split()
	lc, rc := categoryOf(leftT), categoryOf(rightT)
	equalOnly := instr.Op == vmprogram.EQL || instr.Op == vmprogram.NEQ

	switch {
	case lc == catBoolean && rc == catBoolean:
		p.push(vmvalue.BoolValue(compareResult(instr.Op, boolCmp(left.Boolean, right.Boolean))))
	case lc == catString && rc == catString:
		cmp := 0
		ls, rs := stringOf(leftT, left), stringOf(rightT, right)
		switch {
		case ls < rs:
			cmp = -1
		case ls > rs:
			cmp = 1
		}
		p.push(vmvalue.BoolValue(compareResult(instr.Op, cmp)))
	case lc == catComplex || rc == catComplex:
		if !equalOnly {
			p.crash(pc, instr)
		}
		lcx, rcx := complexOf(leftT, left), complexOf(rightT, right)
		cmp := 1
		if lcx == rcx {
			cmp = 0
		}
		p.push(vmvalue.BoolValue(compareResult(instr.Op, cmp)))
	case lc == catIntegral && rc == catIntegral:
		if leftT == vmvalue.Natural && rightT == vmvalue.Natural {
			p.push(vmvalue.BoolValue(compareResult(instr.Op, uintCmp(uintOf(leftT, left), uintOf(rightT, right)))))
		} else {
			p.push(vmvalue.BoolValue(compareResult(instr.Op, intCmp(intSigned(leftT, left), intSigned(rightT, right)))))
		}
	case (lc == catIntegral || lc == catReal || lc == catImaginary) &&
		(rc == catIntegral || rc == catReal || rc == catImaginary):
		lf, rf := floatOf(leftT, left), floatOf(rightT, right)
		p.push(vmvalue.BoolValue(compareResult(instr.Op, floatCmp(lf, rf))))
	default:
		p.crash(pc, instr)
	}
}

// boolCmp orders false before true, matching the original's treatment
// of Boolean as 0/1 for GRT/GEQ/LSS/LEQ.
func boolCmp(a, b bool) int {
	ai, bi := 0, 0
	if a {
		ai = 1
	}
	if b {
		bi = 1
	}
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

func intCmp(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func uintCmp(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func floatCmp(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareResult(op vmprogram.OPCode, cmp int) bool {
	switch op {
	case vmprogram.EQL:
		return cmp == 0
	case vmprogram.NEQ:
		return cmp != 0
	case vmprogram.GRT:
		return cmp > 0
	case vmprogram.GEQ:
		return cmp >= 0
	case vmprogram.LSS:
		return cmp < 0
	case vmprogram.LEQ:
		return cmp <= 0
	default:
		return false
	}
}
