package compiler

import "crucible/internal/vmvalue"

var typeByName = map[string]vmvalue.Type{
	"Boolean": vmvalue.Boolean, "bool": vmvalue.Boolean,
	"Character": vmvalue.Character, "char": vmvalue.Character,
	"Byte": vmvalue.Byte, "byte": vmvalue.Byte,
	"Natural": vmvalue.Natural, "nat": vmvalue.Natural,
	"Integer": vmvalue.Integer, "int": vmvalue.Integer,
	"Real": vmvalue.Real, "real": vmvalue.Real,
	"Imaginary": vmvalue.Imaginary, "img": vmvalue.Imaginary,
	"Complex": vmvalue.Complex, "cpx": vmvalue.Complex,
	"String": vmvalue.String, "str": vmvalue.String,
	"Array": vmvalue.Array, "arr": vmvalue.Array,
	"Vector": vmvalue.Vector, "vec": vmvalue.Vector,
	"Routine": vmvalue.Routine, "rtn": vmvalue.Routine,
	"Class": vmvalue.Class, "def": vmvalue.Class,
	"Instance": vmvalue.Instance, "ins": vmvalue.Instance,
	"Void": vmvalue.Void, "void": vmvalue.Void,
}

func lookupType(name string) (vmvalue.Type, bool) {
	t, ok := typeByName[name]
	return t, ok
}
