package vm

import (
	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

// execNativeCall handles CLL: invokes a built-in identified by a
// type-pair/native-code id. The only specified built-in is
// Boolean -> String; every other code crashes, and the table is kept
// as a flat switch so new built-ins are cheap to add.
func (p *Processor) execNativeCall(pc uint64, instr vmprogram.Instruction) {
	from, to := instr.Operand.TypePair.Split()
	switch {
	case from == vmvalue.Boolean && to == vmvalue.String:
		v := p.pop(pc, instr)
		text := "false"
		if v.Boolean {
			text = "true"
		}
		obj := p.objects.NewString(text)
		p.push(vmvalue.PointerValue(obj))
	default:
		p.crash(pc, instr)
	}
}
