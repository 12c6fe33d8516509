// Package vm implements the interpreter core: the main dispatch loop
// over opcodes, the typed-arithmetic combinations, comparisons, bit
// operations, string/array element access, casts, jumps, calls,
// returns, and interrupts.
package vm

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	mathrand "math/rand"
	"os"

	"crucible/internal/vmprogram"
	"crucible/internal/vmstack"
	"crucible/internal/vmvalue"
)

// Crash is raised when an opcode's preconditions are violated: unknown
// type-pair, unknown opcode, integral division/modulus by zero,
// string/array index out of range, or an invalid routine address. It
// carries the offending program counter and instruction record.
type Crash struct {
	Address     uint64
	Instruction vmprogram.Instruction
}

func (c Crash) Error() string {
	return fmt.Sprintf("evl: crash at %#04x executing %s", c.Address, c.Instruction.Op)
}

// crashSignal is panicked internally and recovered at the top of
// Run/Evaluate/Fold, the same "exception during evaluation, recovered
// at the boundary" shape the reference interpreter and this project's
// teacher both use for unrecoverable runtime errors.
type crashSignal struct {
	crash Crash
}

// Processor is one VM instance. It owns its stacks, its heap registry,
// and its PRNG — no package-level state — so more than one Processor
// can run in the same process without interference. It is not safe for
// concurrent use from multiple goroutines.
type Processor struct {
	stack vmstack.Stack[vmvalue.Value]
	call  vmstack.Stack[uint64]
	frame vmstack.Stack[uint64]
	base  uint64

	accL vmvalue.Value // LLA/ULA/LAM hidden accumulator
	accC vmvalue.Value // CTP/LTP hidden accumulator

	objects *vmvalue.Arena
	rng     *mathrand.Rand

	pc      uint64
	halted  bool

	Stdout *bufio.Writer
	Stdin  *bufio.Reader
}

// NewProcessor returns a ready-to-run Processor with its own heap
// registry, reading from os.Stdin and writing to os.Stdout by default.
func NewProcessor() *Processor {
	return &Processor{
		objects: vmvalue.NewArena(),
		rng:     mathrand.New(mathrand.NewSource(seed())),
		Stdout:  bufio.NewWriter(os.Stdout),
		Stdin:   bufio.NewReader(os.Stdin),
	}
}

// seed draws a 64-bit seed from a hardware source when available,
// falling back to a fixed seed rather than a time-derived one so tests
// stay hermetic; production callers that need real entropy per run get
// it from crypto/rand here.
func seed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return int64(binary.BigEndian.Uint64(b[:]))
	}
	return 0
}

// SetStreams overrides the default stdio pair, wrapping out and in in
// fresh buffered writers/readers.
func (p *Processor) SetStreams(out io.Writer, in io.Reader) {
	p.Stdout = bufio.NewWriter(out)
	p.Stdin = bufio.NewReader(in)
}

// Run evaluates program and discards the final stack top.
func (p *Processor) Run(program *vmprogram.Program) error {
	_, err := p.Evaluate(program)
	return err
}

// Evaluate runs program to completion and returns the final stack top.
func (p *Processor) Evaluate(program *vmprogram.Program) (result vmvalue.Value, err error) {
	defer p.objects.Sweep()
	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(crashSignal)
			if !ok {
				panic(r)
			}
			err = sig.crash
		}
	}()
	result = p.run(program)
	if err := p.Stdout.Flush(); err != nil {
		return result, err
	}
	return result, nil
}

// Fold wraps an instruction sequence in a disposable Program and
// evaluates it, returning the final stack top. The CLI's fold command
// is its caller.
func (p *Processor) Fold(code []vmprogram.Instruction) (vmvalue.Value, error) {
	return p.Evaluate(&vmprogram.Program{Instructions: code})
}

// PC returns the address of the next instruction to execute, for the
// CLI's debug REPL.
func (p *Processor) PC() uint64 { return p.pc }

// Halted reports whether the processor has executed HLT or run past
// the end of the program.
func (p *Processor) Halted() bool { return p.halted }

// StackValues returns a snapshot of the value stack, bottom first, for
// the CLI's debug REPL to display.
func (p *Processor) StackValues() []vmvalue.Value {
	vals := make([]vmvalue.Value, p.stack.Size())
	for i := range vals {
		vals[i] = p.stack.At(uint64(i))
	}
	return vals
}

// Reset rewinds the program counter to the start of program and clears
// the halted flag, without touching the stacks or heap.
func (p *Processor) Reset() {
	p.pc = 0
	p.halted = false
}

// Step executes exactly one instruction of program at the current PC
// and advances it, returning true once the processor has halted. Any
// precondition violation is returned as a Crash, recovered from the
// same panic/recover boundary Evaluate uses.
func (p *Processor) Step(program *vmprogram.Program) (halted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(crashSignal)
			if !ok {
				panic(r)
			}
			err = sig.crash
		}
	}()
	if p.halted || p.pc >= uint64(len(program.Instructions)) {
		p.halted = true
		return true, nil
	}
	next, halt := p.step(program, p.pc, program.Instructions[p.pc])
	p.pc = next
	p.halted = halt
	return halt, nil
}

// run is the main dispatch loop. It panics a crashSignal on any
// precondition violation; callers recover at the Evaluate boundary.
func (p *Processor) run(program *vmprogram.Program) vmvalue.Value {
	pc := uint64(0)
	for pc < uint64(len(program.Instructions)) {
		next, halt := p.step(program, pc, program.Instructions[pc])
		if halt {
			return p.finalValue()
		}
		pc = next
	}
	return p.finalValue()
}

// step executes a single instruction and reports the next program
// counter plus whether HLT was reached. It is the shared body behind
// both the full-speed run loop and the debug REPL's single-stepping.
func (p *Processor) step(program *vmprogram.Program, pc uint64, instr vmprogram.Instruction) (next uint64, halted bool) {
	next = pc + 1
	switch instr.Op {
	case vmprogram.RST:
			// no-op marker

		case vmprogram.PSH:
			p.push(instr.Operand.Value)
		case vmprogram.TYP:
			p.push(vmvalue.IntValue(int64(instr.Operand.Type)))
		case vmprogram.STR:
			idx := instr.Operand.Index
			if idx >= uint64(len(program.Strings)) {
				p.crash(pc, instr)
			}
			obj := p.objects.NewString(program.Strings[idx])
			p.push(vmvalue.PointerValue(obj))

		case vmprogram.LLA:
			p.accL = p.pop(pc, instr)
		case vmprogram.ULA:
			p.push(p.accL)
		case vmprogram.LAM:
			if p.accL.Integer == 0 {
				p.crash(pc, instr)
			}
			p.call.Push(next)
			p.frame.Push(p.base)
			next = uint64(p.accL.Integer)
		case vmprogram.CTP:
			p.accC = p.pop(pc, instr)
		case vmprogram.LTP:
			p.push(p.accC)

		case vmprogram.GET:
			p.checkIndex(pc, instr, instr.Operand.Index, p.stack.Size())
			p.push(p.stack.At(instr.Operand.Index))
		case vmprogram.SET:
			p.checkIndex(pc, instr, instr.Operand.Index, p.stack.Size())
			p.stack.Edit(instr.Operand.Index, p.pop(pc, instr))
		case vmprogram.SWP:
			i := p.popIndex(pc, instr)
			j := p.popIndex(pc, instr)
			p.checkIndex(pc, instr, i, p.stack.Size())
			p.checkIndex(pc, instr, j, p.stack.Size())
			vi, vj := p.stack.At(i), p.stack.At(j)
			p.stack.Edit(i, vj)
			p.stack.Edit(j, vi)

		case vmprogram.SSF:
			n := instr.Operand.Index
			if n > p.stack.Size() {
				p.crash(pc, instr)
			}
			p.frame.Push(p.base)
			p.base = p.stack.Size() - n
		case vmprogram.GLF:
			idx := p.base + instr.Operand.Index
			p.checkIndex(pc, instr, idx, p.stack.Size())
			p.push(p.stack.At(idx))
		case vmprogram.SLF:
			idx := p.base + instr.Operand.Index
			p.checkIndex(pc, instr, idx, p.stack.Size())
			p.stack.Edit(idx, p.pop(pc, instr))

		case vmprogram.ADD, vmprogram.SUB, vmprogram.MUL, vmprogram.DIV, vmprogram.MOD:
			p.execArithmetic(pc, instr)

		case vmprogram.BSL, vmprogram.BSR, vmprogram.BRL, vmprogram.BRR:
			p.execShiftRotate(pc, instr)
		case vmprogram.BWA, vmprogram.BWO, vmprogram.BWX:
			p.execBitwise(pc, instr)
		case vmprogram.INV:
			p.execInvert(pc, instr)
		case vmprogram.NEG:
			p.execNegate(pc, instr)

		case vmprogram.SGS:
			p.execStringGet(pc, instr)
		case vmprogram.SSS:
			p.execStringSet(pc, instr)
		case vmprogram.AGS:
			p.execArrayGet(pc, instr)
		case vmprogram.ASS:
			p.execArraySet(pc, instr)
		case vmprogram.SCN:
			p.execStringLen(pc, instr)
		case vmprogram.ACN:
			p.execArrayLen(pc, instr)

		case vmprogram.CCJ:
			p.execComplexConjugate(pc, instr)
		case vmprogram.VCJ, vmprogram.MCJ:
			p.crash(pc, instr)

		case vmprogram.PST:
			p.push(vmvalue.BoolValue(true))
		case vmprogram.PSF:
			p.push(vmvalue.BoolValue(false))
		case vmprogram.PSI:
			p.push(vmvalue.RealValue(positiveInfinity))
		case vmprogram.PSU:
			p.push(vmvalue.RealValue(undefinedReal))
		case vmprogram.PEC:
			obj := p.objects.NewComplex(vmvalue.Complex{})
			p.push(vmvalue.PointerValue(obj))
		case vmprogram.PES:
			obj := p.objects.NewString("")
			p.push(vmvalue.PointerValue(obj))
		case vmprogram.PSA:
			n := instr.Operand.Index
			if n > p.stack.Size() {
				p.crash(pc, instr)
			}
			elems := make([]vmvalue.Value, n)
			for i := n; i > 0; i-- {
				elems[i-1] = p.pop(pc, instr)
			}
			obj := p.objects.NewArray(elems)
			p.push(vmvalue.PointerValue(obj))
		case vmprogram.PEA:
			obj := p.objects.NewArray(nil)
			p.push(vmvalue.PointerValue(obj))

		case vmprogram.POP:
			p.pop(pc, instr)
		case vmprogram.DHD:
			if p.stack.Size() == 0 {
				p.crash(pc, instr)
			}
			p.push(p.stack.Top())
		case vmprogram.DSK:
			n := instr.Operand.Index
			if n > p.stack.Size() {
				p.crash(pc, instr)
			}
			p.stack.Decrease(n)

		case vmprogram.JMP:
			next = instr.Operand.Index
		case vmprogram.JIF:
			if !p.pop(pc, instr).Boolean {
				next = instr.Operand.Index
			}
		case vmprogram.JIT:
			if p.pop(pc, instr).Boolean {
				next = instr.Operand.Index
			}
		case vmprogram.JAF:
			if p.stack.Size() == 0 {
				p.crash(pc, instr)
			}
			if !p.stack.Top().Boolean {
				next = instr.Operand.Index
			}
		case vmprogram.JAT:
			if p.stack.Size() == 0 {
				p.crash(pc, instr)
			}
			if p.stack.Top().Boolean {
				next = instr.Operand.Index
			}

		case vmprogram.EQL, vmprogram.NEQ, vmprogram.GRT, vmprogram.GEQ, vmprogram.LSS, vmprogram.LEQ:
			p.execComparison(pc, instr)

		case vmprogram.NOT:
			v := p.pop(pc, instr)
			p.push(vmvalue.BoolValue(!v.Boolean))

		case vmprogram.CLL:
			p.execNativeCall(pc, instr)

		case vmprogram.CAL:
			p.call.Push(next)
			p.frame.Push(p.base)
			next = instr.Operand.Index
		case vmprogram.RET:
			if p.call.Size() == 0 || p.frame.Size() == 0 {
				p.crash(pc, instr)
			}
			next = p.call.Pop()
			p.base = p.frame.Pop()

		case vmprogram.CST:
			p.execCast(pc, instr)

		case vmprogram.INT:
			p.execInterrupt(pc, instr)

		case vmprogram.HLT:
			return next, true

		default:
			p.crash(pc, instr)
		}
	return next, false
}

func (p *Processor) finalValue() vmvalue.Value {
	if p.stack.Size() == 0 {
		return vmvalue.Value{}
	}
	return p.stack.Top()
}

func (p *Processor) push(v vmvalue.Value) {
	p.stack.Push(v)
}

func (p *Processor) pop(pc uint64, instr vmprogram.Instruction) vmvalue.Value {
	if p.stack.Size() == 0 {
		p.crash(pc, instr)
	}
	return p.stack.Pop()
}

func (p *Processor) popIndex(pc uint64, instr vmprogram.Instruction) uint64 {
	return uint64(p.pop(pc, instr).Integer)
}

func (p *Processor) checkIndex(pc uint64, instr vmprogram.Instruction, idx, limit uint64) {
	if idx >= limit {
		p.crash(pc, instr)
	}
}

// crash unwinds the interpreter loop via panic, recovered at Evaluate's
// boundary and turned into a returned Crash error.
func (p *Processor) crash(pc uint64, instr vmprogram.Instruction) {
	panic(crashSignal{crash: Crash{Address: pc, Instruction: instr}})
}
