package vm

import (
	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

func (p *Processor) stringObj(pc uint64, instr vmprogram.Instruction, v vmvalue.Value) *vmvalue.StringObj {
	if v.Pointer == nil || v.Pointer.Type != vmvalue.String {
		p.crash(pc, instr)
	}
	return v.Pointer.Data.(*vmvalue.StringObj)
}

func (p *Processor) arrayObj(pc uint64, instr vmprogram.Instruction, v vmvalue.Value) *vmvalue.ArrayObj {
	if v.Pointer == nil || v.Pointer.Type != vmvalue.Array {
		p.crash(pc, instr)
	}
	return v.Pointer.Data.(*vmvalue.ArrayObj)
}

// execStringGet handles SGS: pop index, pop string, push the byte at
// that index.
func (p *Processor) execStringGet(pc uint64, instr vmprogram.Instruction) {
	idx := p.popIndex(pc, instr)
	s := p.stringObj(pc, instr, p.pop(pc, instr))
	if idx >= uint64(len(s.Value)) {
		p.crash(pc, instr)
	}
	p.push(vmvalue.ByteValue(s.Value[idx]))
}

// execStringSet handles SSS: pop value, pop index, pop string,
// allocate a new string with the byte at that index replaced, push the
// new string. Strings are immutable; mutation is functional, matching
// the spec's note that repeated "mutation" of a string produces a
// fresh registered object.
func (p *Processor) execStringSet(pc uint64, instr vmprogram.Instruction) {
	val := p.pop(pc, instr)
	idx := p.popIndex(pc, instr)
	s := p.stringObj(pc, instr, p.pop(pc, instr))
	if idx >= uint64(len(s.Value)) {
		p.crash(pc, instr)
	}
	bytes := []byte(s.Value)
	bytes[idx] = val.Byte
	obj := p.objects.NewString(string(bytes))
	p.push(vmvalue.PointerValue(obj))
}

// execArrayGet handles AGS: pop index, pop array, push the element.
func (p *Processor) execArrayGet(pc uint64, instr vmprogram.Instruction) {
	idx := p.popIndex(pc, instr)
	a := p.arrayObj(pc, instr, p.pop(pc, instr))
	if idx >= uint64(len(a.Elements)) {
		p.crash(pc, instr)
	}
	p.push(a.Elements[idx])
}

// execArraySet handles ASS: pop value, pop index, pop array; writes
// in place, auto-extending the backing slice when idx is beyond the
// current length (unlike strings, arrays mutate their existing
// registered object). Every newly created slot, not just the target
// index, is filled with the value being stored.
func (p *Processor) execArraySet(pc uint64, instr vmprogram.Instruction) {
	val := p.pop(pc, instr)
	idx := p.popIndex(pc, instr)
	a := p.arrayObj(pc, instr, p.pop(pc, instr))
	for uint64(len(a.Elements)) <= idx {
		a.Elements = append(a.Elements, val)
	}
	a.Elements[idx] = val
}

// execStringLen handles SCN.
func (p *Processor) execStringLen(pc uint64, instr vmprogram.Instruction) {
	s := p.stringObj(pc, instr, p.pop(pc, instr))
	p.push(vmvalue.IntValue(int64(len(s.Value))))
}

// execArrayLen handles ACN.
func (p *Processor) execArrayLen(pc uint64, instr vmprogram.Instruction) {
	a := p.arrayObj(pc, instr, p.pop(pc, instr))
	p.push(vmvalue.IntValue(int64(len(a.Elements))))
}

// execComplexConjugate handles CCJ: pop a Complex, allocate and push
// its conjugate.
func (p *Processor) execComplexConjugate(pc uint64, instr vmprogram.Instruction) {
	v := p.pop(pc, instr)
	if v.Pointer == nil || v.Pointer.Type != vmvalue.Complex {
		p.crash(pc, instr)
	}
	c := *v.Pointer.Data.(*vmvalue.Complex)
	obj := p.objects.NewComplex(c.Conjugate())
	p.push(vmvalue.PointerValue(obj))
}
