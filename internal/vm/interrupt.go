package vm

import (
	"fmt"
	"time"

	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

// execInterrupt handles INT k, the VM's syscall-like operations.
func (p *Processor) execInterrupt(pc uint64, instr vmprogram.Instruction) {
	switch vmprogram.Interrupt(instr.Operand.Index) {
	case vmprogram.IntWrite:
		p.write(pc, instr, false)
	case vmprogram.IntWriteln:
		p.write(pc, instr, true)
	case vmprogram.IntRead:
		p.read(pc, instr, false)
	case vmprogram.IntReadln:
		p.read(pc, instr, true)
	case vmprogram.IntSleep:
		ms := p.pop(pc, instr).Integer
		time.Sleep(time.Duration(ms) * time.Millisecond)
	case vmprogram.IntClock:
		p.push(vmvalue.IntValue(time.Now().UnixMilli()))
	case vmprogram.IntNoise:
		p.push(vmvalue.IntValue(p.rng.Int63()))
	default:
		p.crash(pc, instr)
	}
}

// write formats the value beneath the top-of-stack type tag and writes
// it to standard output, per the tag's declared type.
func (p *Processor) write(pc uint64, instr vmprogram.Instruction, newline bool) {
	tag := p.pop(pc, instr)
	v := p.pop(pc, instr)
	t := vmvalue.Type(tag.Integer)

	var text string
	switch t {
	case vmvalue.Boolean:
		text = fmt.Sprintf("%t", v.Boolean)
	case vmvalue.Character:
		text = string(rune(v.Byte))
	case vmvalue.Byte:
		text = fmt.Sprintf("%#02x", v.Byte)
	case vmvalue.Natural:
		text = fmt.Sprintf("%d", v.Natural())
	case vmvalue.Integer:
		text = fmt.Sprintf("%d", v.Integer)
	case vmvalue.Real:
		text = vmvalue.FormatReal(v.Real)
	case vmvalue.Imaginary:
		text = vmvalue.FormatImaginary(v.Real)
	case vmvalue.Complex:
		text = v.Pointer.Data.(*vmvalue.Complex).String()
	case vmvalue.String:
		text = v.Pointer.Data.(*vmvalue.StringObj).Value
	default:
		p.crash(pc, instr)
	}

	if newline {
		fmt.Fprintln(p.Stdout, text)
	} else {
		fmt.Fprint(p.Stdout, text)
	}
}

// read pulls a whitespace-delimited token (read) or a full line
// (readln) from standard input, registers a new string, and pushes it.
func (p *Processor) read(pc uint64, instr vmprogram.Instruction, line bool) {
	var text string
	var err error
	if line {
		text, err = p.Stdin.ReadString('\n')
	} else {
		_, scanErr := fmt.Fscan(p.Stdin, &text)
		err = scanErr
	}
	if err != nil && text == "" {
		p.crash(pc, instr)
	}
	obj := p.objects.NewString(trimLineEnding(text))
	p.push(vmvalue.PointerValue(obj))
}

func trimLineEnding(s string) string {
	n := len(s)
	for n > 0 && (s[n-1] == '\n' || s[n-1] == '\r') {
		n--
	}
	return s[:n]
}
