// errors.go — error taxonomy and caret-snippet rendering.
//
// Three error families cross the package boundary:
//
//   - *LexError     — produced by the lexer (unexpected character,
//     unterminated string/comment). 1-based line, 0-based column.
//   - *ParseError   — produced by the parser; always fatal, no recovery.
//   - *RuntimeError — produced by the evaluator, with a Kind discriminant
//     (undefined variable, type mismatch, arity, division by zero, index out
//     of bounds, unknown field/method, module not found, cyclic import).
//
// WrapErrorWithSource turns any of them into a readable, Python-style snippet
// with a caret pointing at the offending column:
//
//	PARSE ERROR in demo.edl at 3:12: expected '}', found ';'
//
//	   2 | let x = {
//	   3 |     y: 1;
//	     |         ^
//	   4 | }
//
// Other error kinds are returned unchanged.
package edl

import (
	"fmt"
	"strings"
)

// LexError is a tokenization failure at a source position.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEX ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// ParseError is a fatal syntax error at a source position. AtEOF marks
// errors raised at end of input, which a repl treats as incomplete input
// rather than a failure.
type ParseError struct {
	Line  int
	Col   int
	Msg   string
	AtEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// ErrorKind classifies runtime failures.
type ErrorKind int

const (
	ErrUndefinedVariable ErrorKind = iota
	ErrTypeMismatch
	ErrArity
	ErrDivisionByZero
	ErrIndexOutOfBounds
	ErrUnknownField
	ErrUnknownMethod
	ErrModuleNotFound
	ErrCyclicImport
	ErrImport // failure inside an imported module (its own lex/parse/runtime error)
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUndefinedVariable:
		return "UndefinedVariable"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrArity:
		return "ArityError"
	case ErrDivisionByZero:
		return "DivisionByZero"
	case ErrIndexOutOfBounds:
		return "IndexOutOfBounds"
	case ErrUnknownField:
		return "UnknownField"
	case ErrUnknownMethod:
		return "UnknownMethod"
	case ErrModuleNotFound:
		return "ModuleNotFound"
	case ErrCyclicImport:
		return "CyclicImport"
	case ErrImport:
		return "ImportError"
	default:
		return "RuntimeError"
	}
}

// RuntimeError is an execution-time failure with a kind and source position.
type RuntimeError struct {
	Kind ErrorKind
	Line int
	Col  int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR (%s) at %d:%d: %s", e.Kind, e.Line, e.Col+1, e.Msg)
}

// IsIncomplete reports whether err indicates input that may become valid
// with more lines: a parse error at end of input, or an unterminated block
// comment.
func IsIncomplete(err error) bool {
	switch e := err.(type) {
	case *ParseError:
		return e.AtEOF
	case *LexError:
		return strings.Contains(e.Msg, "unterminated block comment")
	}
	return false
}

/* ===========================
   Caret snippets
   =========================== */

// WrapErrorWithSource returns an error whose message is a caret-annotated
// snippet of src. Lex/parse/runtime errors are recognized; anything else is
// returned unchanged. name labels the source ("demo.edl", "<repl>", ...).
func WrapErrorWithSource(err error, name, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(src, "LEX ERROR", name, e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", snippet(src, "PARSE ERROR", name, e.Line, e.Col+1, e.Msg))
	case *RuntimeError:
		header := fmt.Sprintf("RUNTIME ERROR (%s)", e.Kind)
		return fmt.Errorf("%s", snippet(src, header, name, e.Line, e.Col+1, e.Msg))
	default:
		return err
	}
}

// snippet builds the header plus up to one line of context on each side, with
// a caret under the 1-based column. Out-of-range coordinates are clamped.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caretPad := col - 1
	if caretPad > len(lineTxt) {
		caretPad = len(lineTxt)
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caretPad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
