package edl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func scanTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	toks, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("scan error: %v\nsrc: %s", err, src)
	}
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func wantTypes(t *testing.T, src string, want []TokenType) {
	t.Helper()
	got := scanTypes(t, src)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token types mismatch for %q (-want +got):\n%s", src, diff)
	}
}

func wantScanError(t *testing.T, src, contains string) {
	t.Helper()
	_, err := NewLexer(src).Scan()
	if err == nil {
		t.Fatalf("want scan error for %q, got none", src)
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("want *LexError, got %T: %v", err, err)
	}
	if contains != "" && !strings.Contains(strings.ToLower(le.Msg), strings.ToLower(contains)) {
		t.Fatalf("want error containing %q, got: %v", contains, err)
	}
}

func Test_Lexer_Punctuation(t *testing.T) {
	wantTypes(t, "( ) [ ] { } : , ; .",
		[]TokenType{LPAREN, RPAREN, LBRACKET, RBRACKET, LBRACE, RBRACE, COLON, COMMA, SEMI, DOT, EOF})
}

func Test_Lexer_Operators(t *testing.T) {
	wantTypes(t, "+ - * / % ** = == != < <= > >= ! && || ..",
		[]TokenType{PLUS, MINUS, STAR, SLASH, PERCENT, POW, ASSIGN, EQ, NEQ,
			LESS, LESS_EQ, GREATER, GREATER_EQ, BANG, AND, OR, DOTDOT, EOF})
}

func Test_Lexer_Keywords(t *testing.T) {
	wantTypes(t, "let fn return if else while for in import type const break continue true false nil",
		[]TokenType{LET, FN, RETURN, IF, ELSE, WHILE, FOR, IN, IMPORT, TYPE,
			CONST, BREAK, CONTINUE, TRUE, FALSE, NIL, EOF})
	// reserved for future use, still tokenized
	wantTypes(t, "match yield", []TokenType{MATCH, YIELD, EOF})
}

func Test_Lexer_Numbers(t *testing.T) {
	toks, err := NewLexer("42 3.5 0").Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	want := []float64{42, 3.5, 0}
	for i, w := range want {
		if toks[i].Type != NUMBER || toks[i].Literal.(float64) != w {
			t.Fatalf("token %d: want number %v, got %#v", i, w, toks[i])
		}
	}
}

func Test_Lexer_RangeVsDecimal(t *testing.T) {
	// the dot joins the number only when a digit follows
	wantTypes(t, "1..3", []TokenType{NUMBER, DOTDOT, NUMBER, EOF})
	wantTypes(t, "1.5..3", []TokenType{NUMBER, DOTDOT, NUMBER, EOF})
	wantTypes(t, "xs.len", []TokenType{IDENT, DOT, IDENT, EOF})
}

func Test_Lexer_Strings(t *testing.T) {
	toks, err := NewLexer(`"a\tb\"c\\d"`).Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if got := toks[0].Literal.(string); got != "a\tb\"c\\d" {
		t.Fatalf("bad string literal: %q", got)
	}
}

func Test_Lexer_Comments(t *testing.T) {
	wantTypes(t, "1 // rest is gone\n2", []TokenType{NUMBER, NUMBER, EOF})
	wantTypes(t, "1 # shell style\n2", []TokenType{NUMBER, NUMBER, EOF})
	wantTypes(t, "1 /* spans\nlines */ 2", []TokenType{NUMBER, NUMBER, EOF})
}

func Test_Lexer_Positions(t *testing.T) {
	toks, err := NewLexer("let x\n  = 1").Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if toks[0].Line != 1 || toks[0].Col != 0 {
		t.Fatalf("let at %d:%d", toks[0].Line, toks[0].Col)
	}
	if toks[2].Line != 2 || toks[2].Col != 2 {
		t.Fatalf("'=' at %d:%d, want 2:2", toks[2].Line, toks[2].Col)
	}
}

func Test_Lexer_Errors(t *testing.T) {
	wantScanError(t, `"open`, "unterminated string")
	wantScanError(t, "\"line\nbreak\"", "unterminated string")
	wantScanError(t, "/* never closed", "unterminated block comment")
	wantScanError(t, "a & b", "did you mean '&&'")
	wantScanError(t, "a | b", "did you mean '||'")
	wantScanError(t, "let @ = 1", "unexpected character")
}
