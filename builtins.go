// builtins.go — native functions registered into the Core environment.
//
// Core is the parent of Global, so scripts may shadow any of these with their
// own definitions without removing the native.
package edl

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// RegisterNative installs a host function under name in the Core environment.
func (ip *Interp) RegisterNative(name string, arity int, impl NativeImpl) {
	ip.Core.Define(name, Value{Tag: VTNative, Data: &Native{Name: name, Arity: arity, Impl: impl}})
}

// failNative raises a runtime error positioned at the active native call site.
func (ip *Interp) failNative(kind ErrorKind, format string, args ...interface{}) {
	ip.failAt(kind, ip.callLine, ip.callCol, format, args...)
}

func (ip *Interp) readLine() (string, bool) {
	if ip.stdinRd == nil {
		ip.stdinRd = bufio.NewReader(ip.Stdin)
	}
	line, err := ip.stdinRd.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func registerBuiltins(ip *Interp) {
	ip.RegisterNative("print", 1, func(ip *Interp, args []Value) Value {
		fmt.Fprintln(ip.Stdout, FormatValue(args[0]))
		return Nil
	})

	// input() reads one line from stdin, without the trailing newline.
	// Returns nil at end of input.
	ip.RegisterNative("input", 0, func(ip *Interp, args []Value) Value {
		line, ok := ip.readLine()
		if !ok {
			return Nil
		}
		return Str(line)
	})

	// to_number parses a string as a number; nil when it does not parse.
	// Numbers pass through unchanged.
	ip.RegisterNative("to_number", 1, func(ip *Interp, args []Value) Value {
		switch args[0].Tag {
		case VTNum:
			return args[0]
		case VTStr:
			f, err := strconv.ParseFloat(strings.TrimSpace(args[0].Data.(string)), 64)
			if err != nil {
				return Nil
			}
			return Num(f)
		default:
			ip.failNative(ErrTypeMismatch, "to_number expects a string or number, got %s", args[0].Tag)
			return Nil
		}
	})

	ip.RegisterNative("to_string", 1, func(ip *Interp, args []Value) Value {
		return Str(FormatValue(args[0]))
	})

	ip.RegisterNative("len", 1, func(ip *Interp, args []Value) Value {
		switch args[0].Tag {
		case VTStr:
			return Num(float64(len(args[0].Data.(string))))
		case VTList:
			return Num(float64(len(args[0].Data.(*ListObject).Elems)))
		default:
			ip.failNative(ErrTypeMismatch, "len expects a string or list, got %s", args[0].Tag)
			return Nil
		}
	})

	// push appends in place and returns the list.
	ip.RegisterNative("push", 2, func(ip *Interp, args []Value) Value {
		if args[0].Tag != VTList {
			ip.failNative(ErrTypeMismatch, "push expects a list, got %s", args[0].Tag)
		}
		lst := args[0].Data.(*ListObject)
		lst.Elems = append(lst.Elems, args[1])
		return args[0]
	})

	// pop removes and returns the last element.
	ip.RegisterNative("pop", 1, func(ip *Interp, args []Value) Value {
		if args[0].Tag != VTList {
			ip.failNative(ErrTypeMismatch, "pop expects a list, got %s", args[0].Tag)
		}
		lst := args[0].Data.(*ListObject)
		if len(lst.Elems) == 0 {
			ip.failNative(ErrIndexOutOfBounds, "pop from empty list")
		}
		last := lst.Elems[len(lst.Elems)-1]
		lst.Elems = lst.Elems[:len(lst.Elems)-1]
		return last
	})

	ip.RegisterNative("type_of", 1, func(ip *Interp, args []Value) Value {
		if args[0].Tag == VTInstance {
			return Str(args[0].Data.(*StructInstance).Type.Name)
		}
		return Str(args[0].Tag.String())
	})
}
