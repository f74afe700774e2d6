package edl

import (
	"bytes"
	"strings"
	"testing"
)

// ===== helpers =====

func evalSrc(t *testing.T, src string) Value {
	t.Helper()
	ip := New()
	v, err := ip.EvalSource(src)
	if err != nil {
		t.Fatalf("eval error: %v\nsrc:\n%s", err, src)
	}
	return v
}

// runOutput executes src and returns everything print() wrote, plus the
// evaluation error if any.
func runOutput(t *testing.T, src string) (string, error) {
	t.Helper()
	ip := New()
	var buf bytes.Buffer
	ip.Stdout = &buf
	_, err := ip.EvalSource(src)
	return buf.String(), err
}

func wantOutput(t *testing.T, src, out string) {
	t.Helper()
	got, err := runOutput(t, src)
	if err != nil {
		t.Fatalf("eval error: %v\nsrc:\n%s", err, src)
	}
	if got != out {
		t.Fatalf("want output %q, got %q\nsrc:\n%s", out, got, src)
	}
}

func wantNum(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTNum || v.Data.(float64) != f {
		t.Fatalf("want number %v, got %#v", f, v)
	}
}

func wantStr(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTStr || v.Data.(string) != s {
		t.Fatalf("want string %q, got %#v", s, v)
	}
}

func wantBool(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != VTBool || v.Data.(bool) != b {
		t.Fatalf("want bool %v, got %#v", b, v)
	}
}

func wantNil(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != VTNil {
		t.Fatalf("want nil, got %#v", v)
	}
}

// wantFailKind asserts that src fails with a runtime error of the given kind.
func wantFailKind(t *testing.T, src string, kind ErrorKind) *RuntimeError {
	t.Helper()
	ip := New()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("want %s error, got none\nsrc:\n%s", kind, src)
	}
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("want *RuntimeError, got %T: %v", err, err)
	}
	if re.Kind != kind {
		t.Fatalf("want kind %s, got %s: %v", kind, re.Kind, re)
	}
	return re
}

// ===== literals & operators =====

func Test_Literals(t *testing.T) {
	wantNum(t, evalSrc(t, "42"), 42)
	wantNum(t, evalSrc(t, "3.5"), 3.5)
	wantStr(t, evalSrc(t, `"hi"`), "hi")
	wantStr(t, evalSrc(t, `"a\nb"`), "a\nb")
	wantBool(t, evalSrc(t, "true"), true)
	wantBool(t, evalSrc(t, "false"), false)
	wantNil(t, evalSrc(t, "nil"))
}

func Test_Arithmetic(t *testing.T) {
	wantNum(t, evalSrc(t, "1 + 2 * 3"), 7)
	wantNum(t, evalSrc(t, "(1 + 2) * 3"), 9)
	wantNum(t, evalSrc(t, "10 - 2 - 3"), 5)
	wantNum(t, evalSrc(t, "7 % 3"), 1)
	wantNum(t, evalSrc(t, "2 ** 10"), 1024)
	wantNum(t, evalSrc(t, "2 ** 3 ** 2"), 512) // right-assoc
	wantNum(t, evalSrc(t, "-3 + 5"), 2)
	wantNum(t, evalSrc(t, "9 / 2"), 4.5)
	wantStr(t, evalSrc(t, `"foo" + "bar"`), "foobar")
}

func Test_Arithmetic_TypeErrors(t *testing.T) {
	wantFailKind(t, `1 + "a"`, ErrTypeMismatch)
	wantFailKind(t, `"a" - "b"`, ErrTypeMismatch)
	wantFailKind(t, `-"a"`, ErrTypeMismatch)
	wantFailKind(t, `!1`, ErrTypeMismatch)
}

func Test_DivisionByZero(t *testing.T) {
	wantFailKind(t, "1 / 0", ErrDivisionByZero)
	wantFailKind(t, "1 % 0", ErrDivisionByZero)
}

func Test_Comparisons(t *testing.T) {
	wantBool(t, evalSrc(t, "1 < 2"), true)
	wantBool(t, evalSrc(t, "2 <= 2"), true)
	wantBool(t, evalSrc(t, "3 > 4"), false)
	wantBool(t, evalSrc(t, `"abc" < "abd"`), true)
	wantFailKind(t, `1 < "2"`, ErrTypeMismatch)
}

func Test_Equality(t *testing.T) {
	wantBool(t, evalSrc(t, "1 == 1"), true)
	wantBool(t, evalSrc(t, "1 != 2"), true)
	wantBool(t, evalSrc(t, `"a" == "a"`), true)
	wantBool(t, evalSrc(t, "nil == nil"), true)
	wantBool(t, evalSrc(t, "[1, 2] == [1, 2]"), true)
	wantBool(t, evalSrc(t, "[1, 2] == [1, 3]"), false)
	wantBool(t, evalSrc(t, "[1] == [1, 2]"), false)

	// operands of different kinds do not compare
	wantFailKind(t, `1 == "1"`, ErrTypeMismatch)
	wantFailKind(t, "nil == 0", ErrTypeMismatch)
}

func Test_Equality_SelfReferentialLists(t *testing.T) {
	// comparing two distinct lists that each contain themselves must
	// terminate, not recurse forever
	src := `
let a = [1];
push(a, a);
let b = [1];
push(b, b);
a == b
`
	wantBool(t, evalSrc(t, src), true)

	src = `
let a = [1];
push(a, a);
let b = [2];
push(b, b);
a == b
`
	wantBool(t, evalSrc(t, src), false)
}

func Test_Logic_ShortCircuit(t *testing.T) {
	wantBool(t, evalSrc(t, "true || (1 / 0 == 0)"), true)
	wantBool(t, evalSrc(t, "false && (1 / 0 == 0)"), false)
	wantBool(t, evalSrc(t, "true && false"), false)
	wantFailKind(t, "1 && true", ErrTypeMismatch)
	wantFailKind(t, "true && 1", ErrTypeMismatch)
}

// ===== variables, scope, closures =====

func Test_LetAndAssign(t *testing.T) {
	wantNum(t, evalSrc(t, "let x = 10; x = x + 5; x"), 15)
	wantFailKind(t, "y", ErrUndefinedVariable)
	wantFailKind(t, "q = 1;", ErrUndefinedVariable)
}

func Test_BlockScope_Shadowing(t *testing.T) {
	wantOutput(t, "let x = 1; { let x = 2; print(x); } print(x);", "2\n1\n")
	// assignment without let reaches the outer binding
	wantNum(t, evalSrc(t, "let x = 1; { x = 2; } x"), 2)
}

func Test_Closures_CaptureMutableState(t *testing.T) {
	src := `
fn make_counter() {
    let n = 0;
    return fn() {
        n = n + 1;
        return n;
    };
}
let c = make_counter();
c();
c();
c()
`
	wantNum(t, evalSrc(t, src), 3)
}

func Test_Closures_Independent(t *testing.T) {
	src := `
fn make_counter() {
    let n = 0;
    return fn() { n = n + 1; return n; };
}
let a = make_counter();
let b = make_counter();
a();
a();
b()
`
	wantNum(t, evalSrc(t, src), 1)
}

func Test_Closures_PerIterationCapture(t *testing.T) {
	// each loop iteration binds the loop variable in its own scope, so
	// closures made in different iterations see different values
	src := `
let fns = [];
for i in 0..3 {
    push(fns, fn() { return i; });
}
[fns[0](), fns[1](), fns[2]()]
`
	if got := FormatValue(evalSrc(t, src)); got != "[0, 1, 2]" {
		t.Fatalf("want per-iteration capture [0, 1, 2], got %s", got)
	}
}

func Test_Closures_PerIterationCapture_List(t *testing.T) {
	src := `
let fns = [];
for name in ["a", "b"] {
    push(fns, fn() { return name; });
}
fns[0]() + fns[1]()
`
	wantStr(t, evalSrc(t, src), "ab")
}

// ===== control flow =====

func Test_If_StrictBool(t *testing.T) {
	wantNum(t, evalSrc(t, "let r = 0; if 1 < 2 { r = 1; } else { r = 2; } r"), 1)
	wantNum(t, evalSrc(t, "let r = 0; if false { r = 1; } else if true { r = 3; } r"), 3)
	wantFailKind(t, "if 1 { }", ErrTypeMismatch)
	wantFailKind(t, `while "x" { }`, ErrTypeMismatch)
}

func Test_While_BreakContinue(t *testing.T) {
	src := `
let i = 0;
let total = 0;
while true {
    i = i + 1;
    if i == 5 { break; }
    if i == 2 { continue; }
    total = total + i;
}
total
`
	wantNum(t, evalSrc(t, src), 8) // 1 + 3 + 4
}

func Test_ForIn_List(t *testing.T) {
	wantOutput(t, `for x in ["a", "b"] { print(x); }`, "a\nb\n")
	wantFailKind(t, "for x in 5 { }", ErrTypeMismatch)
}

func Test_ForIn_LoopVarScope(t *testing.T) {
	// the loop variable does not leak
	wantFailKind(t, "for i in 0..3 { } i", ErrUndefinedVariable)
}

func Test_Ranges(t *testing.T) {
	wantOutput(t, "print(0..3);", "[0, 1, 2]\n")
	wantOutput(t, "print(3..0);", "[]\n")
	wantOutput(t, "print(2..2);", "[]\n")
	wantOutput(t, "print(-2..1);", "[-2, -1, 0]\n")
	wantFailKind(t, "0..1.5", ErrTypeMismatch)
	wantFailKind(t, `0.."3"`, ErrTypeMismatch)
}

func Test_Return_TopLevel(t *testing.T) {
	out, err := runOutput(t, "return 7; print(1);")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if out != "" {
		t.Fatalf("want no output after top-level return, got %q", out)
	}
	v := evalSrc(t, "return 7; 1")
	wantNum(t, v, 7)
}

func Test_Functions(t *testing.T) {
	wantNum(t, evalSrc(t, "fn add(a, b) { return a + b; } add(2, 3)"), 5)
	// fall-off returns nil
	wantNil(t, evalSrc(t, "fn f() { let x = 1; } f()"))
	// bare return
	wantNil(t, evalSrc(t, "fn f() { return; } f()"))
	// recursion
	wantNum(t, evalSrc(t, "fn fac(n) { if n <= 1 { return 1; } return n * fac(n - 1); } fac(6)"), 720)
	// first-class
	wantNum(t, evalSrc(t, "fn twice(f, x) { return f(f(x)); } fn inc(n) { return n + 1; } twice(inc, 5)"), 7)
}

func Test_Arity(t *testing.T) {
	wantFailKind(t, "fn f(a) { return a; } f(1, 2)", ErrArity)
	wantFailKind(t, "fn f(a) { return a; } f()", ErrArity)
	wantFailKind(t, "print()", ErrArity)
}

func Test_NotCallable(t *testing.T) {
	wantFailKind(t, "let x = 1; x()", ErrTypeMismatch)
}

// ===== lists =====

func Test_Lists(t *testing.T) {
	wantNum(t, evalSrc(t, "let xs = [1, 2, 3]; xs[0] + xs[2]"), 4)
	wantNum(t, evalSrc(t, "let xs = [1, 2]; xs[1] = 9; xs[1]"), 9)
	wantFailKind(t, "[1, 2][5]", ErrIndexOutOfBounds)
	wantFailKind(t, "[1, 2][-1]", ErrIndexOutOfBounds)
	wantFailKind(t, "[1, 2][0.5]", ErrTypeMismatch)
	wantFailKind(t, `[1]["0"]`, ErrTypeMismatch)
	wantFailKind(t, `"abc"[0]`, ErrTypeMismatch)
}

func Test_Lists_SharedByReference(t *testing.T) {
	src := `
let a = [1, 2];
let b = a;
b[0] = 9;
push(b, 3);
a
`
	v := evalSrc(t, src)
	if got := FormatValue(v); got != "[9, 2, 3]" {
		t.Fatalf("want aliased list [9, 2, 3], got %s", got)
	}
}

// ===== structs =====

const pointSrc = `
type Point {
    x: 0,
    y: 0,
    fn norm(self) {
        return (self.x * self.x + self.y * self.y) ** 0.5;
    }
}
`

func Test_Structs_DefaultsAndFields(t *testing.T) {
	wantNum(t, evalSrc(t, pointSrc+"let p = Point{}; p.x + p.y"), 0)
	wantNum(t, evalSrc(t, pointSrc+"let p = Point{x: 3}; p.x"), 3)
	wantNum(t, evalSrc(t, pointSrc+"let p = Point{}; p.y = 7; p.y"), 7)
}

func Test_Structs_Methods(t *testing.T) {
	wantNum(t, evalSrc(t, pointSrc+"let p = Point{x: 3, y: 4}; p.norm()"), 5)
	// a bound method is an ordinary callable value
	wantNum(t, evalSrc(t, pointSrc+"let p = Point{x: 3, y: 4}; let f = p.norm; f()"), 5)
}

func Test_Structs_MethodsMutateSelf(t *testing.T) {
	src := `
type Counter {
    n: 0,
    fn inc(self) { self.n = self.n + 1; }
}
let c = Counter{};
c.inc();
c.inc();
c.n
`
	wantNum(t, evalSrc(t, src), 2)
}

func Test_Structs_Errors(t *testing.T) {
	wantFailKind(t, pointSrc+"Point{z: 1}", ErrUnknownField)
	wantFailKind(t, pointSrc+"let p = Point{}; p.z", ErrUnknownField)
	wantFailKind(t, pointSrc+"let p = Point{}; p.z = 1;", ErrUnknownField)
	wantFailKind(t, pointSrc+"let p = Point{}; p.flip()", ErrUnknownMethod)
	wantFailKind(t, "Nope{x: 1}", ErrUndefinedVariable)
	wantFailKind(t, "let x = 1; x{y: 2}", ErrTypeMismatch)
}

func Test_Structs_InstancesIndependent(t *testing.T) {
	src := pointSrc + `
let a = Point{};
let b = Point{};
a.x = 5;
b.x
`
	wantNum(t, evalSrc(t, src), 0)
}

// ===== natives =====

func Test_Builtins(t *testing.T) {
	wantNum(t, evalSrc(t, `len("hello")`), 5)
	wantNum(t, evalSrc(t, "len([1, 2, 3])"), 3)
	wantNum(t, evalSrc(t, `to_number("3.5")`), 3.5)
	wantNil(t, evalSrc(t, `to_number("abc")`))
	wantStr(t, evalSrc(t, "to_string(42)"), "42")
	wantStr(t, evalSrc(t, "type_of(1)"), "number")
	wantStr(t, evalSrc(t, `type_of("x")`), "string")
	wantStr(t, evalSrc(t, pointSrc+"type_of(Point{})"), "Point")
	wantNum(t, evalSrc(t, "let xs = [1]; pop(xs)"), 1)
	wantFailKind(t, "pop([])", ErrIndexOutOfBounds)
	wantFailKind(t, "len(1)", ErrTypeMismatch)
}

func Test_Input_ReadsLines(t *testing.T) {
	ip := New()
	ip.Stdin = strings.NewReader("first\nsecond\n")
	var buf bytes.Buffer
	ip.Stdout = &buf
	if _, err := ip.EvalSource("print(input()); print(input()); print(input());"); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got := buf.String(); got != "first\nsecond\nnil\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

// ===== end-to-end scenarios =====

func Test_Scenario_Addition(t *testing.T) {
	wantOutput(t, "let x = 10; let y = 20; print(x + y);", "30\n")
}

func Test_Scenario_FunctionCall(t *testing.T) {
	wantOutput(t, "fn carre(n) { return n * n; } print(carre(5));", "25\n")
}

func Test_Scenario_ListMutation(t *testing.T) {
	wantOutput(t, "let nums = [1, 2, 3]; nums[1] = 42; print(nums);", "[1, 42, 3]\n")
}

func Test_Scenario_StructMethod(t *testing.T) {
	wantOutput(t, pointSrc+"let p = Point{x: 3, y: 4}; print(p.norm());", "5\n")
}

func Test_Scenario_ForRange(t *testing.T) {
	wantOutput(t, "for i in 0..3 { print(i); }", "0\n1\n2\n")
}

func Test_Scenario_DivisionByZeroHalts(t *testing.T) {
	out, err := runOutput(t, "print(1); let a = 1; a = a / 0; print(2);")
	if err == nil {
		t.Fatal("want DivisionByZero error, got none")
	}
	re, ok := err.(*RuntimeError)
	if !ok || re.Kind != ErrDivisionByZero {
		t.Fatalf("want DivisionByZero, got %v", err)
	}
	if out != "1\n" {
		t.Fatalf("statements after the failure must not run; output %q", out)
	}
}
