package vm

import (
	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

// execCast handles CST: the type-pair encodes (from, to).
func (p *Processor) execCast(pc uint64, instr vmprogram.Instruction) {
	v := p.pop(pc, instr)
	from, to := instr.Operand.TypePair.Split()
	p.push(p.cast(pc, instr, from, v, to))
}

func (p *Processor) cast(pc uint64, instr vmprogram.Instruction, from vmvalue.Type, v vmvalue.Value, to vmvalue.Type) vmvalue.Value {
	switch {
	case from == to:
		return v

	case from.IsIntegral() && to.IsIntegral():
		return reinterpretIntegral(to, uintOf(from, v))

	case from.IsIntegral() && to == vmvalue.Real:
		return vmvalue.RealValue(floatOf(from, v))

	case from == vmvalue.Real && to.IsIntegral():
		return reinterpretIntegral(to, uint64(int64(v.Real)))

	case from == vmvalue.Real && to == vmvalue.Imaginary, from == vmvalue.Imaginary && to == vmvalue.Real:
		// Bit-identical: both are stored in the Real field, only the
		// static tag changes.
		return v

	case (from.IsIntegral() || from == vmvalue.Real) && to == vmvalue.Complex:
		obj := p.objects.NewComplex(vmvalue.Complex{A: floatOf(from, v), B: 0})
		return vmvalue.PointerValue(obj)
	case from == vmvalue.Imaginary && to == vmvalue.Complex:
		obj := p.objects.NewComplex(vmvalue.Complex{A: 0, B: v.Real})
		return vmvalue.PointerValue(obj)

	case from == vmvalue.Complex && to == vmvalue.Real:
		return vmvalue.RealValue(v.Pointer.Data.(*vmvalue.Complex).A)
	case from == vmvalue.Complex && to == vmvalue.Imaginary:
		return vmvalue.RealValue(v.Pointer.Data.(*vmvalue.Complex).B)
	case from == vmvalue.Complex && to.IsIntegral():
		return reinterpretIntegral(to, uint64(int64(v.Pointer.Data.(*vmvalue.Complex).A)))

	case from == vmvalue.Character && to == vmvalue.String:
		obj := p.objects.NewString(string(rune(v.Byte)))
		return vmvalue.PointerValue(obj)

	default:
		p.crash(pc, instr)
		return vmvalue.Value{}
	}
}
