// Package compiler assembles a textual, line-oriented instruction
// listing (mnemonics, operands, labels, string/char literals) into a
// vmprogram.Program. It is deliberately a thin assembler, not a
// full expression-language compiler: internal/wings and internal/lexer
// feed it pre-processed, tokenized source lines.
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"crucible/internal/lexer"
	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

type sourceLine struct {
	lineNo int
	tokens []lexer.Token
}

// Assemble turns preprocessed source lines into a Program. It also
// returns a map from instruction index to the originating (trimmed)
// source line, the same map stored in Program.DebugSymbols.
func Assemble(lines []string) (*vmprogram.Program, map[int]string, error) {
	labels := make(map[string]uint64)
	var logical []sourceLine

	for i, raw := range lines {
		tokens, err := lexer.Tokenize(raw)
		if err != nil {
			return nil, nil, annotateLine(err, i+1)
		}
		if tokens == nil {
			continue
		}
		if tokens[0].Kind == lexer.TokenLabelDef {
			labels[tokens[0].Text] = uint64(len(logical))
			continue
		}
		logical = append(logical, sourceLine{lineNo: i + 1, tokens: tokens})
	}

	asm := &assembler{labels: labels, debug: make(map[int]string)}
	instructions := make([]vmprogram.Instruction, len(logical))
	for idx, sl := range logical {
		instr, err := asm.assembleLine(sl.tokens)
		if err != nil {
			return nil, nil, annotateLine(err, sl.lineNo)
		}
		instructions[idx] = instr
		asm.debug[idx] = strings.TrimSpace(lines[sl.lineNo-1])
	}

	return &vmprogram.Program{
		Instructions: instructions,
		Strings:      asm.strings,
		DebugSymbols: asm.debug,
	}, asm.debug, nil
}

func annotateLine(err error, line int) error {
	if perr, ok := err.(vmprogram.Error); ok {
		perr.Line = line
		return perr
	}
	return err
}

type assembler struct {
	labels  map[string]uint64
	strings []string
	debug   map[int]string
}

func (a *assembler) internString(s string) uint64 {
	a.strings = append(a.strings, s)
	return uint64(len(a.strings) - 1)
}

func (a *assembler) assembleLine(tokens []lexer.Token) (vmprogram.Instruction, error) {
	mnemonic := tokens[0].Text
	op, ok := vmprogram.LookupMnemonic(mnemonic)
	if !ok {
		return vmprogram.Instruction{}, vmprogram.Error{
			Message: fmt.Sprintf("unknown mnemonic %q", mnemonic),
			Kind:    vmprogram.KindSyntax,
		}
	}
	operandTokens := tokens[1:]
	instr := vmprogram.Instruction{Op: op}

	switch op.OperandArity() {
	case vmprogram.NoOperand:
		// nothing to parse

	case vmprogram.IndexOperand:
		idx, err := a.parseIndex(op, operandTokens)
		if err != nil {
			return instr, err
		}
		instr.Operand.Index = idx

	case vmprogram.ValueOperand:
		v, err := a.parseValue(operandTokens)
		if err != nil {
			return instr, err
		}
		instr.Operand.Value = v

	case vmprogram.TypeOperand:
		t, err := a.parseType(joinOperand(operandTokens))
		if err != nil {
			return instr, err
		}
		instr.Operand.Type = t

	case vmprogram.TypePairOperand:
		left, right, err := a.parseTypePair(joinOperand(operandTokens))
		if err != nil {
			return instr, err
		}
		instr.Operand.TypePair = vmvalue.ComposeTypePair(left, right)
	}

	return instr, nil
}

func joinOperand(tokens []lexer.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

func (a *assembler) parseIndex(op vmprogram.OPCode, tokens []lexer.Token) (uint64, error) {
	if len(tokens) == 0 {
		return 0, vmprogram.Error{Message: fmt.Sprintf("%s requires an operand", op), Kind: vmprogram.KindSyntax}
	}
	text := tokens[0].Text

	if op == vmprogram.INT {
		if it, ok := vmprogram.LookupInterrupt(text); ok {
			return uint64(it), nil
		}
	}

	if (op == vmprogram.JMP || op == vmprogram.JIF || op == vmprogram.JIT ||
		op == vmprogram.JAF || op == vmprogram.JAT || op == vmprogram.CAL) && !isNumeric(text) {
		if addr, ok := a.labels[text]; ok {
			return addr, nil
		}
		return 0, vmprogram.Error{Message: fmt.Sprintf("undefined label %q", text), Kind: vmprogram.KindSyntax}
	}

	if op == vmprogram.STR && tokens[0].Kind == lexer.TokenString {
		return a.internString(text), nil
	}

	return parseUint(text)
}

func (a *assembler) parseValue(tokens []lexer.Token) (vmvalue.Value, error) {
	if len(tokens) == 0 {
		return vmvalue.Value{}, vmprogram.Error{Message: "PSH requires a type and a literal", Kind: vmprogram.KindSyntax}
	}
	typeName := tokens[0].Text
	t, ok := lookupType(typeName)
	if !ok {
		return vmvalue.Value{}, vmprogram.Error{Message: fmt.Sprintf("unknown type %q", typeName), Kind: vmprogram.KindSyntax}
	}
	if len(tokens) < 2 {
		return vmvalue.Value{}, vmprogram.Error{Message: "PSH requires a literal", Kind: vmprogram.KindSyntax}
	}
	lit := strings.Trim(strings.Join(tokenTexts(tokens[1:]), " "), `'"`)

	switch t {
	case vmvalue.Boolean:
		return vmvalue.BoolValue(lit == "true"), nil
	case vmvalue.Character, vmvalue.Byte:
		if n, err := parseUint(lit); err == nil {
			return vmvalue.ByteValue(byte(n)), nil
		}
		if len(lit) == 0 {
			return vmvalue.Value{}, vmprogram.Error{Message: "empty character literal", Kind: vmprogram.KindSyntax}
		}
		return vmvalue.ByteValue(lit[0]), nil
	case vmvalue.Natural:
		n, err := parseUint(lit)
		if err != nil {
			return vmvalue.Value{}, err
		}
		return vmvalue.NaturalValue(n), nil
	case vmvalue.Integer:
		n, err := strconv.ParseInt(lit, 0, 64)
		if err != nil {
			return vmvalue.Value{}, vmprogram.Error{Message: err.Error(), Kind: vmprogram.KindSyntax}
		}
		return vmvalue.IntValue(n), nil
	case vmvalue.Real, vmvalue.Imaginary:
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return vmvalue.Value{}, vmprogram.Error{Message: err.Error(), Kind: vmprogram.KindSyntax}
		}
		return vmvalue.RealValue(f), nil
	default:
		return vmvalue.Value{}, vmprogram.Error{Message: fmt.Sprintf("PSH does not support type %q", typeName), Kind: vmprogram.KindSyntax}
	}
}

func (a *assembler) parseType(text string) (vmvalue.Type, error) {
	text = strings.TrimSpace(text)
	t, ok := lookupType(text)
	if !ok {
		return 0, vmprogram.Error{Message: fmt.Sprintf("unknown type %q", text), Kind: vmprogram.KindSyntax}
	}
	return t, nil
}

func (a *assembler) parseTypePair(text string) (left, right vmvalue.Type, err error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return 0, 0, vmprogram.Error{Message: fmt.Sprintf("expected a type pair, got %q", text), Kind: vmprogram.KindSyntax}
	}
	left, ok := lookupType(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, 0, vmprogram.Error{Message: fmt.Sprintf("unknown type %q", parts[0]), Kind: vmprogram.KindSyntax}
	}
	right, ok = lookupType(strings.TrimSpace(parts[1]))
	if !ok {
		return 0, 0, vmprogram.Error{Message: fmt.Sprintf("unknown type %q", parts[1]), Kind: vmprogram.KindSyntax}
	}
	return left, right, nil
}

func tokenTexts(tokens []lexer.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func isNumeric(s string) bool {
	_, err := parseUint(s)
	return err == nil
}

func parseUint(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), hexOrDec(s), 64)
	if err != nil {
		return 0, vmprogram.Error{Message: err.Error(), Kind: vmprogram.KindSyntax}
	}
	return n, nil
}

func hexOrDec(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	return 10
}
