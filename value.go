// value.go — the runtime value model.
//
// Value is a tagged union in the style of a small dynamic runtime: the Tag
// discriminant says which Go type Data holds. Lists, struct instances,
// functions, and modules are held behind pointers, so storing a Value in a
// variable or passing it as an argument shares the underlying object —
// mutation through one binding is visible through every other.
package edl

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNil      ValueTag = iota // nil (no payload)
	VTBool                     // bool
	VTNum                      // float64
	VTStr                      // string
	VTList                     // *ListObject
	VTType                     // *StructType
	VTInstance                 // *StructInstance
	VTFun                      // *Fun (user-defined closure)
	VTNative                   // *Native (host callback)
	VTModule                   // *Module (imported namespace)
)

func (t ValueTag) String() string {
	switch t {
	case VTNil:
		return "nil"
	case VTBool:
		return "bool"
	case VTNum:
		return "number"
	case VTStr:
		return "string"
	case VTList:
		return "list"
	case VTType:
		return "type"
	case VTInstance:
		return "struct"
	case VTFun:
		return "function"
	case VTNative:
		return "native function"
	case VTModule:
		return "module"
	default:
		return "unknown"
	}
}

// Value is the universal runtime carrier used by the evaluator.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Nil is the singleton nil Value.
var Nil = Value{Tag: VTNil}

// Primitive constructors.
func Bool(b bool) Value   { return Value{Tag: VTBool, Data: b} }
func Num(f float64) Value { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value  { return Value{Tag: VTStr, Data: s} }

// ListObject is the shared storage behind a VTList value.
type ListObject struct {
	Elems []Value
}

// List wraps elems into a fresh VTList value.
func List(elems []Value) Value { return Value{Tag: VTList, Data: &ListObject{Elems: elems}} }

// StructType is a named record schema: ordered fields with default values
// (evaluated once, at declaration) and a flat method map. There is no
// inheritance; method lookup is a single map access.
type StructType struct {
	Name    string
	Fields  []StructField
	Methods map[string]*Fun
}

// StructField pairs a declared field name with its default value.
type StructField struct {
	Name    string
	Default Value
}

// HasField reports whether name is a declared field of the type.
func (st *StructType) HasField(name string) bool {
	for _, f := range st.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// StructInstance is a mutable record referencing its StructType.
type StructInstance struct {
	Type   *StructType
	Fields map[string]Value
}

// Fun is a user-defined function or closure: parameter names, a body, and the
// environment captured at the definition site. The captured environment keeps
// the whole parent chain alive for as long as the closure itself lives.
type Fun struct {
	Name   string // "" for anonymous literals
	Params []string
	Body   *BlockStmt
	Env    *Env
}

// FunVal wraps f into a VTFun value.
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }

// NativeImpl is the implementation signature for host/native functions.
// Arguments arrive already evaluated; the return value flows back to the
// script. Implementations signal failures through the interpreter's fail
// helpers.
type NativeImpl func(ip *Interp, args []Value) Value

// Native is a host-implemented function with a declared arity.
type Native struct {
	Name  string
	Arity int
	Impl  NativeImpl
}

// Module is the namespace exported by an evaluated file: its top-level
// bindings, keyed by name, with Keys kept sorted for deterministic display.
type Module struct {
	Path    string // canonical absolute path
	Exports map[string]Value
	Keys    []string
}

// Get returns the exported binding named key and whether it exists.
func (m *Module) Get(key string) (Value, bool) {
	v, ok := m.Exports[key]
	return v, ok
}

// isIntegral reports whether f is an exact integer value.
func isIntegral(f float64) bool { return f == float64(int64(f)) }
