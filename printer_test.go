package edl

import "testing"

func fmtSrc(t *testing.T, src string) string {
	t.Helper()
	return FormatValue(evalSrc(t, src))
}

func Test_Format_Primitives(t *testing.T) {
	cases := []struct{ src, want string }{
		{"nil", "nil"},
		{"true", "true"},
		{"false", "false"},
		{"5", "5"},
		{"2.5", "2.5"},
		{"10 / 4", "2.5"},
		{"6 / 2", "3"}, // integral results print without a decimal part
		{"1000000", "1000000"},
		{"1000000 * 1000000", "1000000000000"},
		{"-250000", "-250000"},
		{`"hello"`, "hello"},
	}
	for _, c := range cases {
		if got := fmtSrc(t, c.src); got != c.want {
			t.Errorf("FormatValue(%s) = %q, want %q", c.src, got, c.want)
		}
	}
}

func Test_Format_HugeNumbers(t *testing.T) {
	// beyond the exact-integer range, fall back to the short form
	if got := FormatValue(Num(1e21)); got != "1e+21" {
		t.Fatalf("got %q", got)
	}
	if got := FormatValue(Num(0.000001)); got != "1e-06" {
		t.Fatalf("got %q", got)
	}
}

func Test_Format_Lists(t *testing.T) {
	if got := fmtSrc(t, `[1, "two", [true, nil]]`); got != `[1, "two", [true, nil]]` {
		t.Fatalf("got %q", got)
	}
	if got := fmtSrc(t, "[]"); got != "[]" {
		t.Fatalf("got %q", got)
	}
}

func Test_Format_Structs(t *testing.T) {
	// fields render in declaration order, not map order
	got := fmtSrc(t, `
type Point { x: 0, y: 0 }
Point{y: 4, x: 3}
`)
	if got != "Point{x: 3, y: 4}" {
		t.Fatalf("got %q", got)
	}
}

func Test_Format_Callables(t *testing.T) {
	if got := fmtSrc(t, "fn hello() { } hello"); got != "<fn hello>" {
		t.Fatalf("got %q", got)
	}
	if got := fmtSrc(t, "fn() { }"); got != "<fn>" {
		t.Fatalf("got %q", got)
	}
	if got := fmtSrc(t, "print"); got != "<native fn print>" {
		t.Fatalf("got %q", got)
	}
	if got := fmtSrc(t, "type Point { x: 0 } Point"); got != "<type Point>" {
		t.Fatalf("got %q", got)
	}
}

func Test_Format_Module(t *testing.T) {
	m := &Module{Path: "/srv/lib/util.edl"}
	if got := FormatValue(Value{Tag: VTModule, Data: m}); got != "<module util>" {
		t.Fatalf("got %q", got)
	}
}

func Test_Format_REPLQuotesStrings(t *testing.T) {
	if got := FormatValueREPL(Str("hi")); got != `"hi"` {
		t.Fatalf("got %q", got)
	}
	if got := FormatValueREPL(Num(5)); got != "5" {
		t.Fatalf("got %q", got)
	}
}
