// eval_ops.go — operators, indexing, member access, calls, instantiation.
package edl

import "math"

/* ===========================
   Unary / binary operators
   =========================== */

func (ip *Interp) evalUnary(n *Unary, env *Env) Value {
	v := ip.eval(n.Right, env)
	switch n.Op {
	case "-":
		if v.Tag != VTNum {
			ip.fail(ErrTypeMismatch, n, "operator '-' requires a number, got %s", v.Tag)
		}
		return Num(-v.Data.(float64))
	case "!":
		if v.Tag != VTBool {
			ip.fail(ErrTypeMismatch, n, "operator '!' requires a bool, got %s", v.Tag)
		}
		return Bool(!v.Data.(bool))
	default:
		ip.fail(ErrTypeMismatch, n, "unknown unary operator '%s'", n.Op)
		return Nil
	}
}

func (ip *Interp) evalBinary(n *Binary, env *Env) Value {
	// Logical operators short-circuit; the right operand is only evaluated
	// when it can decide the outcome, and both operands must be bools.
	if n.Op == "&&" || n.Op == "||" {
		l := ip.eval(n.Left, env)
		if l.Tag != VTBool {
			ip.fail(ErrTypeMismatch, n.Left, "operator '%s' requires bools, got %s", n.Op, l.Tag)
		}
		lb := l.Data.(bool)
		if n.Op == "&&" && !lb {
			return Bool(false)
		}
		if n.Op == "||" && lb {
			return Bool(true)
		}
		r := ip.eval(n.Right, env)
		if r.Tag != VTBool {
			ip.fail(ErrTypeMismatch, n.Right, "operator '%s' requires bools, got %s", n.Op, r.Tag)
		}
		return Bool(r.Data.(bool))
	}

	l := ip.eval(n.Left, env)
	r := ip.eval(n.Right, env)

	switch n.Op {
	case "+":
		if l.Tag == VTNum && r.Tag == VTNum {
			return Num(l.Data.(float64) + r.Data.(float64))
		}
		if l.Tag == VTStr && r.Tag == VTStr {
			return Str(l.Data.(string) + r.Data.(string))
		}
		ip.fail(ErrTypeMismatch, n, "operator '+' requires two numbers or two strings, got %s and %s", l.Tag, r.Tag)
	case "-", "*", "/", "%", "**":
		if l.Tag != VTNum || r.Tag != VTNum {
			ip.fail(ErrTypeMismatch, n, "operator '%s' requires numbers, got %s and %s", n.Op, l.Tag, r.Tag)
		}
		a, b := l.Data.(float64), r.Data.(float64)
		switch n.Op {
		case "-":
			return Num(a - b)
		case "*":
			return Num(a * b)
		case "/":
			if b == 0 {
				ip.fail(ErrDivisionByZero, n, "division by zero")
			}
			return Num(a / b)
		case "%":
			if b == 0 {
				ip.fail(ErrDivisionByZero, n, "modulo by zero")
			}
			return Num(math.Mod(a, b))
		case "**":
			return Num(math.Pow(a, b))
		}
	case "<", "<=", ">", ">=":
		if l.Tag == VTNum && r.Tag == VTNum {
			a, b := l.Data.(float64), r.Data.(float64)
			switch n.Op {
			case "<":
				return Bool(a < b)
			case "<=":
				return Bool(a <= b)
			case ">":
				return Bool(a > b)
			case ">=":
				return Bool(a >= b)
			}
		}
		if l.Tag == VTStr && r.Tag == VTStr {
			a, b := l.Data.(string), r.Data.(string)
			switch n.Op {
			case "<":
				return Bool(a < b)
			case "<=":
				return Bool(a <= b)
			case ">":
				return Bool(a > b)
			case ">=":
				return Bool(a >= b)
			}
		}
		ip.fail(ErrTypeMismatch, n, "operator '%s' requires two numbers or two strings, got %s and %s", n.Op, l.Tag, r.Tag)
	case "==":
		return Bool(ip.equalValues(n, l, r))
	case "!=":
		return Bool(!ip.equalValues(n, l, r))
	}
	ip.fail(ErrTypeMismatch, n, "unknown operator '%s'", n.Op)
	return Nil
}

// equalValues implements `==`. Operands of different tags do not compare;
// that raises a type mismatch rather than silently yielding false. Primitives
// compare by value, lists elementwise, everything else by identity.
func (ip *Interp) equalValues(n Node, l, r Value) bool {
	return ip.eqValues(n, l, r, nil)
}

// listPair is an identity pair of lists under comparison.
type listPair struct {
	a, b *ListObject
}

func (ip *Interp) eqValues(n Node, l, r Value, seen map[listPair]bool) bool {
	if l.Tag != r.Tag {
		ip.fail(ErrTypeMismatch, n, "cannot compare %s with %s", l.Tag, r.Tag)
	}
	switch l.Tag {
	case VTNil:
		return true
	case VTBool:
		return l.Data.(bool) == r.Data.(bool)
	case VTNum:
		return l.Data.(float64) == r.Data.(float64)
	case VTStr:
		return l.Data.(string) == r.Data.(string)
	case VTList:
		a, b := l.Data.(*ListObject), r.Data.(*ListObject)
		if a == b {
			return true
		}
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		// Self-referential lists must terminate: a pair already being
		// compared higher up the recursion is taken as equal.
		pair := listPair{a, b}
		if seen[pair] {
			return true
		}
		if seen == nil {
			seen = make(map[listPair]bool)
		}
		seen[pair] = true
		for i := range a.Elems {
			if !ip.eqValues(n, a.Elems[i], b.Elems[i], seen) {
				return false
			}
		}
		return true
	default:
		// instances, types, functions, natives, modules: identity
		return l.Data == r.Data
	}
}

/* ===========================
   Ranges
   =========================== */

// evalRangeBounds evaluates and validates both bounds of a range: numbers
// with exact integer values.
func (ip *Interp) evalRangeBounds(n *RangeExpr, env *Env) (int64, int64) {
	lo := ip.eval(n.Start, env)
	hi := ip.eval(n.End, env)
	if lo.Tag != VTNum || hi.Tag != VTNum {
		ip.fail(ErrTypeMismatch, n, "range bounds must be numbers, got %s and %s", lo.Tag, hi.Tag)
	}
	a, b := lo.Data.(float64), hi.Data.(float64)
	if !isIntegral(a) || !isIntegral(b) {
		ip.fail(ErrTypeMismatch, n, "range bounds must be whole numbers")
	}
	return int64(a), int64(b)
}

// evalRange materializes `start..end` as a list. An empty or inverted range
// yields the empty list.
func (ip *Interp) evalRange(n *RangeExpr, env *Env) Value {
	start, end := ip.evalRangeBounds(n, env)
	if end <= start {
		return List(nil)
	}
	elems := make([]Value, 0, end-start)
	for i := start; i < end; i++ {
		elems = append(elems, Num(float64(i)))
	}
	return List(elems)
}

/* ===========================
   Indexing
   =========================== */

// listIndex validates idx against lst and returns the integer position.
func (ip *Interp) listIndex(n Node, lst *ListObject, idx Value) int {
	if idx.Tag != VTNum {
		ip.fail(ErrTypeMismatch, n, "list index must be a number, got %s", idx.Tag)
	}
	f := idx.Data.(float64)
	if !isIntegral(f) {
		ip.fail(ErrTypeMismatch, n, "list index must be a whole number, got %v", f)
	}
	i := int(f)
	if i < 0 || i >= len(lst.Elems) {
		ip.fail(ErrIndexOutOfBounds, n, "index %d out of bounds for list of length %d", i, len(lst.Elems))
	}
	return i
}

func (ip *Interp) evalIndex(n *Index, env *Env) Value {
	target := ip.eval(n.Target, env)
	if target.Tag != VTList {
		ip.fail(ErrTypeMismatch, n, "cannot index into %s", target.Tag)
	}
	lst := target.Data.(*ListObject)
	i := ip.listIndex(n, lst, ip.eval(n.Idx, env))
	return lst.Elems[i]
}

/* ===========================
   Member access
   =========================== */

// bindMethod wraps a method as a plain function whose closure already holds
// the receiver under `self`, so a bound method is an ordinary callable value.
func bindMethod(recv Value, m *Fun) Value {
	env := NewEnv(m.Env)
	env.Define("self", recv)
	return FunVal(&Fun{Name: m.Name, Params: m.Params[1:], Body: m.Body, Env: env})
}

func (ip *Interp) evalMember(n *Member, env *Env) Value {
	return ip.memberRead(n, env, false)
}

// memberRead resolves target.name. forCall distinguishes `x.m(...)` from a
// plain read only for error classification on instances: a missing name in
// call position is an unknown method, otherwise an unknown field.
func (ip *Interp) memberRead(n *Member, env *Env, forCall bool) Value {
	target := ip.eval(n.Target, env)
	switch target.Tag {
	case VTInstance:
		inst := target.Data.(*StructInstance)
		if v, ok := inst.Fields[n.Name]; ok {
			return v
		}
		if m, ok := inst.Type.Methods[n.Name]; ok {
			return bindMethod(target, m)
		}
		if forCall {
			ip.fail(ErrUnknownMethod, n, "%s has no method '%s'", inst.Type.Name, n.Name)
		}
		ip.fail(ErrUnknownField, n, "%s has no field '%s'", inst.Type.Name, n.Name)
	case VTModule:
		mod := target.Data.(*Module)
		if v, ok := mod.Get(n.Name); ok {
			return v
		}
		ip.fail(ErrUnknownField, n, "module '%s' has no member '%s'", mod.Name(), n.Name)
	default:
		ip.fail(ErrTypeMismatch, n, "cannot access member '%s' on %s", n.Name, target.Tag)
	}
	return Nil
}

/* ===========================
   Assignment
   =========================== */

func (ip *Interp) evalAssign(n *Assign, env *Env) Value {
	v := ip.eval(n.Value, env)
	switch t := n.Target.(type) {
	case *Ident:
		if !env.Set(t.Name, v) {
			ip.fail(ErrUndefinedVariable, t, "cannot assign to undefined variable '%s'", t.Name)
		}
	case *Index:
		target := ip.eval(t.Target, env)
		if target.Tag != VTList {
			ip.fail(ErrTypeMismatch, t, "cannot index into %s", target.Tag)
		}
		lst := target.Data.(*ListObject)
		i := ip.listIndex(t, lst, ip.eval(t.Idx, env))
		lst.Elems[i] = v
	case *Member:
		target := ip.eval(t.Target, env)
		if target.Tag != VTInstance {
			ip.fail(ErrTypeMismatch, t, "cannot assign to member '%s' on %s", t.Name, target.Tag)
		}
		inst := target.Data.(*StructInstance)
		if _, ok := inst.Fields[t.Name]; !ok {
			ip.fail(ErrUnknownField, t, "%s has no field '%s'", inst.Type.Name, t.Name)
		}
		inst.Fields[t.Name] = v
	default:
		ip.fail(ErrTypeMismatch, n, "invalid assignment target")
	}
	return v
}

/* ===========================
   Struct instantiation
   =========================== */

func (ip *Interp) evalStructLit(n *StructLit, env *Env) Value {
	tv, ok := env.Get(n.TypeName)
	if !ok {
		ip.fail(ErrUndefinedVariable, n, "undefined type '%s'", n.TypeName)
	}
	if tv.Tag != VTType {
		ip.fail(ErrTypeMismatch, n, "'%s' is not a type, it is a %s", n.TypeName, tv.Tag)
	}
	st := tv.Data.(*StructType)

	fields := make(map[string]Value, len(st.Fields))
	for _, f := range st.Fields {
		fields[f.Name] = f.Default
	}
	seen := make(map[string]bool, len(n.Fields))
	for _, init := range n.Fields {
		if !st.HasField(init.Name) {
			ip.fail(ErrUnknownField, &init, "%s has no field '%s'", st.Name, init.Name)
		}
		if seen[init.Name] {
			ip.fail(ErrTypeMismatch, &init, "duplicate field '%s' in %s literal", init.Name, st.Name)
		}
		seen[init.Name] = true
		fields[init.Name] = ip.eval(init.Value, env)
	}
	return Value{Tag: VTInstance, Data: &StructInstance{Type: st, Fields: fields}}
}

/* ===========================
   Calls
   =========================== */

func (ip *Interp) evalCall(n *Call, env *Env) Value {
	var callee Value
	if m, ok := n.Callee.(*Member); ok {
		callee = ip.memberRead(m, env, true)
	} else {
		callee = ip.eval(n.Callee, env)
	}

	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = ip.eval(a, env)
	}

	switch callee.Tag {
	case VTFun:
		return ip.callFun(callee.Data.(*Fun), args, n)
	case VTNative:
		nat := callee.Data.(*Native)
		if len(args) != nat.Arity {
			ip.fail(ErrArity, n, "%s expects %d argument(s), got %d", nat.Name, nat.Arity, len(args))
		}
		line, col := n.Pos()
		ip.callLine, ip.callCol = line, col
		return nat.Impl(ip, args)
	default:
		ip.fail(ErrTypeMismatch, n, "%s is not callable", callee.Tag)
		return Nil
	}
}

// callFun invokes a user function: a fresh environment parented to the
// closure's captured scope, parameters bound positionally.
func (ip *Interp) callFun(fn *Fun, args []Value, site Node) Value {
	if len(args) != len(fn.Params) {
		name := fn.Name
		if name == "" {
			name = "function"
		}
		ip.fail(ErrArity, site, "%s expects %d argument(s), got %d", name, len(fn.Params), len(args))
	}
	env := NewEnv(fn.Env)
	for i, p := range fn.Params {
		env.Define(p, args[i])
	}
	r := ip.execBlock(fn.Body, env)
	if r.sig == ctrlReturn {
		return r.val
	}
	return Nil
}
