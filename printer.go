// printer.go — value display.
//
// FormatValue is the print()/script-facing form: strings are bare at the top
// level but quoted once nested inside lists or structs. FormatValueREPL is
// the repl echo form, where top-level strings stay quoted so `"5"` and `5`
// are distinguishable.
package edl

import (
	"math"
	"strconv"
	"strings"
)

// FormatValue renders v for print(): numbers without a trailing ".0" when
// integral, bare top-level strings, lists and structs with quoted inner
// strings.
func FormatValue(v Value) string {
	if v.Tag == VTStr {
		return v.Data.(string)
	}
	return formatNested(v)
}

// FormatValueREPL renders v for repl echo: like FormatValue, but top-level
// strings keep their quotes.
func FormatValueREPL(v Value) string {
	return formatNested(v)
}

// formatNum prints integral values in plain notation while they are exactly
// representable (|f| < 2^53), so large counters never come out as 1e+06.
// Everything else uses the shortest round-trip form.
func formatNum(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatNested(v Value) string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTNum:
		return formatNum(v.Data.(float64))
	case VTStr:
		return strconv.Quote(v.Data.(string))
	case VTList:
		lst := v.Data.(*ListObject)
		parts := make([]string, len(lst.Elems))
		for i, e := range lst.Elems {
			parts[i] = formatNested(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTType:
		return "<type " + v.Data.(*StructType).Name + ">"
	case VTInstance:
		inst := v.Data.(*StructInstance)
		parts := make([]string, 0, len(inst.Type.Fields))
		for _, f := range inst.Type.Fields {
			parts = append(parts, f.Name+": "+formatNested(inst.Fields[f.Name]))
		}
		return inst.Type.Name + "{" + strings.Join(parts, ", ") + "}"
	case VTFun:
		fn := v.Data.(*Fun)
		if fn.Name == "" {
			return "<fn>"
		}
		return "<fn " + fn.Name + ">"
	case VTNative:
		return "<native fn " + v.Data.(*Native).Name + ">"
	case VTModule:
		return "<module " + v.Data.(*Module).Name() + ">"
	default:
		return "<unknown>"
	}
}
