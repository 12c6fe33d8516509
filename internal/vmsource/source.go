// Package vmsource is the file-manager collaborator: it reads source
// text and raw byte buffers from disk, and persists/reloads a compiled
// Program through internal/vmbinary's fixed-width encoding.
package vmsource

import (
	"bytes"
	"math"
	"os"

	"crucible/internal/vmbinary"
	"crucible/internal/vmprogram"
	"crucible/internal/vmvalue"
)

// ReadSourceFile reads a text source file whole.
func ReadSourceFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", vmprogram.Error{File: path, Message: err.Error(), Kind: vmprogram.KindFileManager}
	}
	return string(data), nil
}

// ReadBinaryFile reads a compiled program's raw bytes.
func ReadBinaryFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vmprogram.Error{File: path, Message: err.Error(), Kind: vmprogram.KindFileManager}
	}
	return data, nil
}

// WriteBinaryFile writes raw bytes to path.
func WriteBinaryFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return vmprogram.Error{File: path, Message: err.Error(), Kind: vmprogram.KindFileManager}
	}
	return nil
}

// writeValue persists every primitive field of a Value rather than just
// Integer, since a PSH literal's live field depends on its static type
// (Boolean, Byte/Character, Real/Imaginary, or Integer/Natural) and the
// binary format carries no type tag of its own to disambiguate.
func writeValue(buf *bytes.Buffer, v vmvalue.Value) {
	vmbinary.WriteUint64(buf, uint64(v.Integer))
	vmbinary.WriteUint64(buf, math.Float64bits(v.Real))
	vmbinary.WriteByte(buf, v.Byte)
	vmbinary.WriteBool(buf, v.Boolean)
}

func readValue(r *vmbinary.Reader) (vmvalue.Value, error) {
	i, err := r.Uint64()
	if err != nil {
		return vmvalue.Value{}, err
	}
	f, err := r.Uint64()
	if err != nil {
		return vmvalue.Value{}, err
	}
	b, err := r.Byte()
	if err != nil {
		return vmvalue.Value{}, err
	}
	boolean, err := r.Bool()
	if err != nil {
		return vmvalue.Value{}, err
	}
	return vmvalue.Value{Integer: int64(i), Real: math.Float64frombits(f), Byte: b, Boolean: boolean}, nil
}

// EncodeProgram serialises a Program to the fixed-width binary format.
func EncodeProgram(program *vmprogram.Program) []byte {
	var buf bytes.Buffer

	vmbinary.WriteUint64(&buf, uint64(len(program.Strings)))
	for _, s := range program.Strings {
		vmbinary.WriteString(&buf, s)
	}

	vmbinary.WriteUint64(&buf, uint64(len(program.Literals)))
	for _, v := range program.Literals {
		writeValue(&buf, v)
	}

	vmbinary.WriteUint64(&buf, uint64(len(program.Instructions)))
	for _, instr := range program.Instructions {
		vmbinary.WriteByte(&buf, byte(instr.Op))
		switch instr.Op.OperandArity() {
		case vmprogram.IndexOperand:
			vmbinary.WriteUint64(&buf, instr.Operand.Index)
		case vmprogram.ValueOperand:
			writeValue(&buf, instr.Operand.Value)
		case vmprogram.TypeOperand:
			vmbinary.WriteByte(&buf, byte(instr.Operand.Type))
		case vmprogram.TypePairOperand:
			vmbinary.WriteUint16(&buf, uint16(instr.Operand.TypePair))
		}
	}

	return buf.Bytes()
}

// DecodeProgram reverses EncodeProgram.
func DecodeProgram(data []byte) (*vmprogram.Program, error) {
	r := vmbinary.NewReader(data)

	numStrings, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	strs := make([]string, numStrings)
	for i := range strs {
		s, err := r.String()
		if err != nil {
			return nil, err
		}
		strs[i] = s
	}

	numLiterals, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	literals := make([]vmvalue.Value, numLiterals)
	for i := range literals {
		v, err := readValue(r)
		if err != nil {
			return nil, err
		}
		literals[i] = v
	}

	numInstr, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	instrs := make([]vmprogram.Instruction, numInstr)
	for i := range instrs {
		opByte, err := r.Byte()
		if err != nil {
			return nil, err
		}
		op := vmprogram.OPCode(opByte)
		instr := vmprogram.Instruction{Op: op}
		switch op.OperandArity() {
		case vmprogram.IndexOperand:
			v, err := r.Uint64()
			if err != nil {
				return nil, err
			}
			instr.Operand.Index = v
		case vmprogram.ValueOperand:
			v, err := readValue(r)
			if err != nil {
				return nil, err
			}
			instr.Operand.Value = v
		case vmprogram.TypeOperand:
			v, err := r.Byte()
			if err != nil {
				return nil, err
			}
			instr.Operand.Type = vmvalue.Type(v)
		case vmprogram.TypePairOperand:
			v, err := r.Uint16()
			if err != nil {
				return nil, err
			}
			instr.Operand.TypePair = vmvalue.TypePair(v)
		}
		instrs[i] = instr
	}

	return &vmprogram.Program{Instructions: instrs, Strings: strs, Literals: literals}, nil
}
