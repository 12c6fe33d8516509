// Package vmdecompile formats a Program as one line per instruction:
// mnemonic, decoded operand, and a short human-readable gloss. The
// structural formatter is independent of ANSI styling so it stays unit
// testable without scraping escape codes.
package vmdecompile

import (
	"fmt"
	"io"

	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

type colour string

const reset = "\x1B[0m"

const (
	colourRed    colour = "\x1B[38;5;160m"
	colourYellow colour = "\x1B[38;5;220m"
	colourOrange colour = "\x1B[38;5;202m"
	colourBlue   colour = "\x1B[38;5;33m"
	colourPurple colour = "\x1B[38;5;164m"
	colourPink   colour = "\x1B[38;5;207m"
	colourGray   colour = "\x1B[38;5;250m"
	colourAcqua  colour = "\x1B[38;5;30m"
)

var familyColour = map[vmprogram.OPCode]colour{
	vmprogram.RST: colourYellow,
	vmprogram.PSH: colourYellow, vmprogram.TYP: colourYellow, vmprogram.STR: colourBlue,
	vmprogram.LLA: colourYellow, vmprogram.ULA: colourYellow, vmprogram.LAM: colourRed,
	vmprogram.GET: colourBlue, vmprogram.SET: colourBlue, vmprogram.SWP: colourYellow,
	vmprogram.SSF: colourBlue, vmprogram.GLF: colourBlue, vmprogram.SLF: colourBlue,
	vmprogram.CTP: colourYellow, vmprogram.LTP: colourYellow,
	vmprogram.ADD: colourBlue, vmprogram.SUB: colourBlue, vmprogram.MUL: colourBlue,
	vmprogram.DIV: colourBlue, vmprogram.MOD: colourBlue,
	vmprogram.BSL: colourBlue, vmprogram.BSR: colourBlue, vmprogram.BRL: colourBlue, vmprogram.BRR: colourBlue,
	vmprogram.BWA: colourBlue, vmprogram.BWO: colourBlue, vmprogram.BWX: colourBlue,
	vmprogram.INV: colourPurple, vmprogram.NEG: colourPurple,
	vmprogram.SGS: colourPink, vmprogram.SSS: colourPink, vmprogram.AGS: colourPink, vmprogram.ASS: colourPink,
	vmprogram.SCN: colourPink, vmprogram.ACN: colourPink,
	vmprogram.CCJ: colourPurple, vmprogram.VCJ: colourPurple, vmprogram.MCJ: colourPurple,
	vmprogram.PST: colourYellow, vmprogram.PSF: colourYellow, vmprogram.PSI: colourYellow, vmprogram.PSU: colourYellow,
	vmprogram.PEC: colourYellow, vmprogram.PES: colourYellow, vmprogram.PSA: colourYellow, vmprogram.PEA: colourYellow,
	vmprogram.POP: colourYellow, vmprogram.DHD: colourYellow, vmprogram.DSK: colourYellow,
	vmprogram.JMP: colourRed, vmprogram.JIF: colourRed, vmprogram.JIT: colourRed, vmprogram.JAF: colourRed, vmprogram.JAT: colourRed,
	vmprogram.EQL: colourOrange, vmprogram.NEQ: colourOrange, vmprogram.GRT: colourOrange,
	vmprogram.GEQ: colourOrange, vmprogram.LSS: colourOrange, vmprogram.LEQ: colourOrange,
	vmprogram.NOT: colourYellow,
	vmprogram.CLL: colourPink, vmprogram.CAL: colourRed, vmprogram.RET: colourRed,
	vmprogram.CST: colourOrange, vmprogram.INT: colourPink, vmprogram.HLT: colourRed,
}

var gloss = map[vmprogram.OPCode]string{
	vmprogram.RST: "rest",
	vmprogram.PSH: "push constant", vmprogram.TYP: "push type", vmprogram.STR: "push string literal",
	vmprogram.LLA: "load accumulator", vmprogram.ULA: "unload accumulator", vmprogram.LAM: "call via accumulator",
	vmprogram.GET: "get slot", vmprogram.SET: "set slot", vmprogram.SWP: "swap slots",
	vmprogram.SSF: "set frame", vmprogram.GLF: "get local", vmprogram.SLF: "set local",
	vmprogram.CTP: "load scratch", vmprogram.LTP: "unload scratch",
	vmprogram.ADD: "addition", vmprogram.SUB: "subtraction", vmprogram.MUL: "multiplication",
	vmprogram.DIV: "division", vmprogram.MOD: "modulus",
	vmprogram.BSL: "shift left", vmprogram.BSR: "shift right", vmprogram.BRL: "rotate left", vmprogram.BRR: "rotate right",
	vmprogram.BWA: "bitwise and", vmprogram.BWO: "bitwise or", vmprogram.BWX: "bitwise xor",
	vmprogram.INV: "inversion", vmprogram.NEG: "negation",
	vmprogram.SGS: "string get", vmprogram.SSS: "string set", vmprogram.AGS: "array get", vmprogram.ASS: "array set",
	vmprogram.SCN: "string length", vmprogram.ACN: "array length",
	vmprogram.CCJ: "complex conjugate", vmprogram.VCJ: "vector conjugate", vmprogram.MCJ: "matrix conjugate",
	vmprogram.PST: "push true", vmprogram.PSF: "push false", vmprogram.PSI: "push infinity", vmprogram.PSU: "push undefined",
	vmprogram.PEC: "push empty complex", vmprogram.PES: "push empty string",
	vmprogram.PSA: "push array", vmprogram.PEA: "push empty array",
	vmprogram.POP: "pop", vmprogram.DHD: "duplicate", vmprogram.DSK: "drop",
	vmprogram.JMP: "jump", vmprogram.JIF: "jump if false", vmprogram.JIT: "jump if true",
	vmprogram.JAF: "jump if false (peek)", vmprogram.JAT: "jump if true (peek)",
	vmprogram.EQL: "equal", vmprogram.NEQ: "not equal", vmprogram.GRT: "greater", vmprogram.GEQ: "greater equal",
	vmprogram.LSS: "less", vmprogram.LEQ: "less equal",
	vmprogram.NOT: "logic not",
	vmprogram.CLL: "library call", vmprogram.CAL: "call", vmprogram.RET: "return",
	vmprogram.CST: "cast", vmprogram.INT: "interrupt", vmprogram.HLT: "halt",
}

func style(c colour, styled bool, s string) string {
	if !styled {
		return s
	}
	return string(c) + s + reset
}

func typeColour(t vmvalue.Type) colour {
	if t <= vmvalue.Imaginary {
		return colourOrange
	}
	return colourPink
}

// DecompileOne writes a single formatted line for instr.
func DecompileOne(w io.Writer, instr vmprogram.Instruction, styled bool) error {
	op := instr.Op
	c := familyColour[op]
	mnemonic := style(c, styled, op.String())
	g := gloss[op]

	var operand string
	switch op.OperandArity() {
	case vmprogram.NoOperand:
		_, err := fmt.Fprintf(w, "    %s\t\t\t\t! %s\n", mnemonic, style(colourGray, styled, g))
		return err
	case vmprogram.IndexOperand:
		operand = style(colourAcqua, styled, fmt.Sprintf("%#04x", instr.Operand.Index))
	case vmprogram.ValueOperand:
		operand = style(colourAcqua, styled, fmt.Sprintf("%#v", instr.Operand.Value))
	case vmprogram.TypeOperand:
		t := instr.Operand.Type
		operand = style(typeColour(t), styled, t.Code())
	case vmprogram.TypePairOperand:
		left, right := instr.Operand.TypePair.Split()
		operand = style(typeColour(left), styled, left.Code()) + ", " + style(typeColour(right), styled, right.Code())
	}
	_, err := fmt.Fprintf(w, "    %s\t%s\t! %s\n", mnemonic, operand, style(colourGray, styled, g))
	return err
}

// Decompile writes one formatted line per instruction in program, in
// program order. It is idempotent and has no side effect on program.
func Decompile(w io.Writer, program *vmprogram.Program, styled bool) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, instr := range program.Instructions {
		if err := DecompileOne(w, instr, styled); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
