// eval.go — the tree-walking evaluator.
//
// The interpreter holds two long-lived environments: Core, where native
// functions live, and Global, a child of Core where user top-level bindings
// go. User code can shadow a native by defining the same name in Global (or
// any inner scope) without destroying the native itself.
//
// Runtime failures are raised internally with panic(rtErr{...}) and converted
// back to a *RuntimeError by the public entry points. Control flow (return,
// break, continue) travels as ordinary result values, never as panics.
package edl

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Interp is an EDL interpreter instance. It is not safe for concurrent use;
// run independent scripts on independent instances.
type Interp struct {
	Core   *Env // native functions
	Global *Env // user top-level scope, child of Core

	modules   map[string]*moduleRec // canonical abs path -> record
	loadStack []string              // import chain, for cycle reporting

	searchPath  []string // EDLPATH entries
	currentFile string   // abs path of the file being evaluated, "" for repl/source

	// position of the call currently dispatching into a native function,
	// so builtins can report errors at the call site
	callLine, callCol int

	Stdout io.Writer
	Stdin  io.Reader

	stdinRd *bufio.Reader // lazy, wraps Stdin for input()
}

// New creates an interpreter with the native functions registered and the
// module search path taken from the EDLPATH environment variable.
func New() *Interp {
	ip := &Interp{
		modules: make(map[string]*moduleRec),
		Stdout:  os.Stdout,
		Stdin:   os.Stdin,
	}
	ip.Core = NewEnv(nil)
	ip.Global = NewEnv(ip.Core)
	ip.searchPath = edlPathEntries()
	registerBuiltins(ip)
	return ip
}

/* ===========================
   Failure plumbing
   =========================== */

// rtErr carries a runtime error up the Go stack to the nearest entry point.
type rtErr struct {
	e *RuntimeError
}

// fail raises a runtime error positioned at node n.
func (ip *Interp) fail(kind ErrorKind, n Node, format string, args ...interface{}) {
	line, col := n.Pos()
	ip.failAt(kind, line, col, format, args...)
}

// failAt raises a runtime error at an explicit position.
func (ip *Interp) failAt(kind ErrorKind, line, col int, format string, args ...interface{}) {
	panic(rtErr{&RuntimeError{Kind: kind, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}})
}

// recoverRt converts an rtErr panic into err; other panics propagate.
func recoverRt(err *error) {
	if r := recover(); r != nil {
		if re, ok := r.(rtErr); ok {
			*err = re.e
			return
		}
		panic(r)
	}
}

/* ===========================
   Control signals
   =========================== */

type ctrlSig int

const (
	ctrlNone ctrlSig = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// result is the outcome of executing a statement: a signal plus the value it
// carries (the expression value for plain statements, the return value for
// ctrlReturn).
type result struct {
	sig ctrlSig
	val Value
}

var resNone = result{sig: ctrlNone, val: Nil}

/* ===========================
   Entry points
   =========================== */

// EvalProgram executes stmts in env and returns the value of the last
// expression statement (Nil when there is none). A top-level `return` stops
// the program and yields its value.
func (ip *Interp) EvalProgram(stmts []Stmt, env *Env) (v Value, err error) {
	defer recoverRt(&err)
	last := Nil
	for _, s := range stmts {
		r := ip.execStmt(s, env)
		switch r.sig {
		case ctrlReturn:
			return r.val, nil
		case ctrlBreak, ctrlContinue:
			// unreachable: the parser rejects break/continue outside loops
			return Nil, nil
		}
		last = r.val
	}
	return last, nil
}

// EvalSource parses and executes src against the global environment.
func (ip *Interp) EvalSource(src string) (Value, error) {
	stmts, err := Parse(src)
	if err != nil {
		return Nil, err
	}
	return ip.EvalProgram(stmts, ip.Global)
}

/* ===========================
   Statements
   =========================== */

func (ip *Interp) execStmt(s Stmt, env *Env) result {
	switch n := s.(type) {
	case *LetStmt:
		env.Define(n.Name, ip.eval(n.Value, env))
		return resNone

	case *ExprStmt:
		return result{sig: ctrlNone, val: ip.eval(n.X, env)}

	case *BlockStmt:
		return ip.execBlock(n, NewEnv(env))

	case *IfStmt:
		if ip.evalCond(n.Cond, env) {
			return ip.execBlock(n.Then, NewEnv(env))
		}
		if n.Else != nil {
			return ip.execStmt(n.Else, env)
		}
		return resNone

	case *WhileStmt:
		for ip.evalCond(n.Cond, env) {
			r := ip.execBlock(n.Body, NewEnv(env))
			switch r.sig {
			case ctrlBreak:
				return resNone
			case ctrlReturn:
				return r
			}
		}
		return resNone

	case *ForInStmt:
		return ip.execForIn(n, env)

	case *FnDecl:
		fn := &Fun{Name: n.Name, Params: n.Fn.Params, Body: n.Fn.Body, Env: env}
		env.Define(n.Name, FunVal(fn))
		return resNone

	case *TypeDecl:
		env.Define(n.Name, ip.evalTypeDecl(n, env))
		return resNone

	case *ReturnStmt:
		v := Nil
		if n.Value != nil {
			v = ip.eval(n.Value, env)
		}
		return result{sig: ctrlReturn, val: v}

	case *BreakStmt:
		return result{sig: ctrlBreak, val: Nil}

	case *ContinueStmt:
		return result{sig: ctrlContinue, val: Nil}

	case *ImportStmt:
		ip.execImport(n, env)
		return resNone

	default:
		ip.fail(ErrTypeMismatch, s, "cannot execute statement %T", s)
		return resNone
	}
}

// execBlock runs the block's statements in env. The caller decides whether
// env is fresh (blocks, loop bodies) or shared (else-if chaining).
func (ip *Interp) execBlock(b *BlockStmt, env *Env) result {
	for _, s := range b.Stmts {
		r := ip.execStmt(s, env)
		if r.sig != ctrlNone {
			return r
		}
	}
	return resNone
}

// execForIn iterates lists eagerly and range expressions lazily, binding the
// loop variable in a fresh scope each iteration.
func (ip *Interp) execForIn(n *ForInStmt, env *Env) result {
	runBody := func(v Value) (result, bool) {
		iter := NewEnv(env)
		iter.Define(n.Var, v)
		r := ip.execBlock(n.Body, iter)
		switch r.sig {
		case ctrlBreak:
			return resNone, false
		case ctrlReturn:
			return r, false
		}
		return resNone, true
	}

	// Range syntax in iterator position never materializes the list.
	if rng, ok := n.Iter.(*RangeExpr); ok {
		start, end := ip.evalRangeBounds(rng, env)
		for i := start; i < end; i++ {
			if r, cont := runBody(Num(float64(i))); !cont {
				return r
			}
		}
		return resNone
	}

	it := ip.eval(n.Iter, env)
	switch it.Tag {
	case VTList:
		lst := it.Data.(*ListObject)
		for i := 0; i < len(lst.Elems); i++ {
			if r, cont := runBody(lst.Elems[i]); !cont {
				return r
			}
		}
		return resNone
	default:
		ip.fail(ErrTypeMismatch, n.Iter, "cannot iterate over %s", it.Tag)
		return resNone
	}
}

// evalTypeDecl builds the StructType: field defaults are evaluated once, now,
// in the declaring scope; methods capture that scope as their closure.
func (ip *Interp) evalTypeDecl(n *TypeDecl, env *Env) Value {
	st := &StructType{
		Name:    n.Name,
		Fields:  make([]StructField, 0, len(n.Fields)),
		Methods: make(map[string]*Fun, len(n.Methods)),
	}
	for _, f := range n.Fields {
		st.Fields = append(st.Fields, StructField{Name: f.Name, Default: ip.eval(f.Default, env)})
	}
	for _, m := range n.Methods {
		st.Methods[m.Name] = &Fun{Name: m.Name, Params: m.Fn.Params, Body: m.Fn.Body, Env: env}
	}
	return Value{Tag: VTType, Data: st}
}

/* ===========================
   Expressions
   =========================== */

func (ip *Interp) eval(e Expr, env *Env) Value {
	switch n := e.(type) {
	case *NumberLit:
		return Num(n.Value)
	case *StringLit:
		return Str(n.Value)
	case *BoolLit:
		return Bool(n.Value)
	case *NilLit:
		return Nil
	case *Ident:
		v, ok := env.Get(n.Name)
		if !ok {
			ip.fail(ErrUndefinedVariable, n, "undefined variable '%s'", n.Name)
		}
		return v
	case *ListLit:
		elems := make([]Value, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = ip.eval(el, env)
		}
		return List(elems)
	case *StructLit:
		return ip.evalStructLit(n, env)
	case *Unary:
		return ip.evalUnary(n, env)
	case *Binary:
		return ip.evalBinary(n, env)
	case *Assign:
		return ip.evalAssign(n, env)
	case *Call:
		return ip.evalCall(n, env)
	case *Index:
		return ip.evalIndex(n, env)
	case *Member:
		return ip.evalMember(n, env)
	case *FnLit:
		return FunVal(&Fun{Params: n.Params, Body: n.Body, Env: env})
	case *RangeExpr:
		return ip.evalRange(n, env)
	default:
		ip.fail(ErrTypeMismatch, e, "cannot evaluate expression %T", e)
		return Nil
	}
}

// evalCond evaluates a condition, which must be exactly Bool.
func (ip *Interp) evalCond(e Expr, env *Env) bool {
	v := ip.eval(e, env)
	if v.Tag != VTBool {
		ip.fail(ErrTypeMismatch, e, "condition must be a bool, got %s", v.Tag)
	}
	return v.Data.(bool)
}
