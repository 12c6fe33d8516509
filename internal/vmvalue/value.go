package vmvalue

// Value is the runtime word. Go has no untagged union, so each variant
// gets its own field; the opcode executing against a Value always knows
// which field is live, exactly as the bytecode's static type carries
// that knowledge rather than the Value itself.
type Value struct {
	Integer int64
	Real    float64
	Byte    byte
	Boolean bool
	Pointer *Object
}

// IntValue builds a Value carrying a signed integer.
func IntValue(i int64) Value { return Value{Integer: i} }

// NaturalValue builds a Value carrying an unsigned integer stored in the
// same 64-bit slot as Integer.
func NaturalValue(u uint64) Value { return Value{Integer: int64(u)} }

// Natural reinterprets the Integer field as unsigned, the way the
// Natural type tag does throughout the arithmetic dispatch.
func (v Value) Natural() uint64 { return uint64(v.Integer) }

// RealValue builds a Value carrying a double.
func RealValue(r float64) Value { return Value{Real: r} }

// ByteValue builds a Value carrying a single byte (also used for
// Character).
func ByteValue(b byte) Value { return Value{Byte: b} }

// BoolValue builds a Value carrying a boolean.
func BoolValue(b bool) Value { return Value{Boolean: b} }

// PointerValue builds a Value referencing a registered heap object.
func PointerValue(o *Object) Value { return Value{Pointer: o} }

// Object is a heap-allocated value registered in an Arena. Data holds
// the concrete payload: *Complex, *StringObj, or *ArrayObj.
type Object struct {
	Type Type
	Data any
}

// StringObj is the heap representation of a String value.
type StringObj struct {
	Value string
}

// ArrayObj is the heap representation of an Array value.
type ArrayObj struct {
	Elements []Value
}

// Arena is the per-Processor heap object registry (spec: "Object
// registry"). It is a field of Processor, not module-level state, so
// multiple interpreters can run in the same process without sharing
// heaps.
type Arena struct {
	objects []*Object
}

// NewArena returns an empty registry.
func NewArena() *Arena {
	return &Arena{}
}

// Register appends a newly allocated object to the registry and returns
// it, mirroring register_object(pointer, type) from the spec.
func (a *Arena) Register(o *Object) *Object {
	a.objects = append(a.objects, o)
	return o
}

// NewComplex allocates and registers a Complex object.
func (a *Arena) NewComplex(c Complex) *Object {
	return a.Register(&Object{Type: Complex, Data: &c})
}

// NewString allocates and registers a String object.
func (a *Arena) NewString(s string) *Object {
	return a.Register(&Object{Type: String, Data: &StringObj{Value: s}})
}

// NewArray allocates and registers an Array object.
func (a *Arena) NewArray(elems []Value) *Object {
	return a.Register(&Object{Type: Array, Data: &ArrayObj{Elements: elems}})
}

// Len reports the number of objects currently registered.
func (a *Arena) Len() int { return len(a.objects) }

// Sweep releases every registered object. In a garbage-collected
// runtime there is nothing to individually free; truncating the slice
// drops the arena's references so the Go collector can reclaim them,
// which is the natural reading of "bulk free at halt" here.
func (a *Arena) Sweep() {
	a.objects = a.objects[:0]
}
