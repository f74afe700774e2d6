// lexer.go
package edl

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LPAREN   // "("
	RPAREN   // ")"
	LBRACKET // "["
	RBRACKET // "]"
	LBRACE   // "{"
	RBRACE   // "}"
	COLON    // ":"
	COMMA    // ","
	SEMI     // ";"
	DOT      // "."

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	POW    // "**"
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
	BANG   // "!"
	AND    // "&&"
	OR     // "||"
	DOTDOT // ".."

	// Literals & identifiers
	IDENT
	STRING
	NUMBER

	// Keywords
	LET
	FN
	RETURN
	IF
	ELSE
	WHILE
	FOR
	IN
	IMPORT
	TYPE
	CONST
	MATCH
	BREAK
	CONTINUE
	YIELD
	TRUE
	FALSE
	NIL
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int
	Col     int
}

// keywords map
var keywords = map[string]TokenType{
	"let":      LET,
	"fn":       FN,
	"return":   RETURN,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"import":   IMPORT,
	"type":     TYPE,
	"const":    CONST,
	"match":    MATCH,
	"break":    BREAK,
	"continue": CONTINUE,
	"yield":    YIELD,
	"true":     TRUE,
	"false":    FALSE,
	"nil":      NIL,
}

// Lexer scans an EDL source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  0,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	lex := l.src[l.start:l.cur]
	tok := Token{
		Type:    tt,
		Lexeme:  lex,
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.advance()
			l.start = l.cur
		default:
			return
		}
	}
}

// helpers

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}

func (l *Lexer) errAtTokenStart(msg string) error {
	return &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: msg}
}

// ----- scanners -----

// scanString parses a double-quoted string literal. Strings may not span
// lines; escapes are \n \r \t \" \\.
func (l *Lexer) scanString() (string, error) {
	// opening quote already consumed
	var out []byte
	for {
		ch, ok := l.peek()
		if !ok || ch == '\n' {
			return "", l.errAtTokenStart("unterminated string literal")
		}
		l.advance()
		if ch == '"' {
			return string(out), nil
		}
		if ch == '\\' {
			esc, ok := l.peek()
			if !ok || esc == '\n' {
				return "", l.errAtTokenStart("unterminated string literal")
			}
			l.advance()
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				// unknown escapes pass the character through
				out = append(out, esc)
			}
			continue
		}
		out = append(out, ch)
	}
}

// scanNumber parses an integer or decimal literal. A '.' is consumed only
// when followed by a digit, so "1..3" lexes as NUMBER DOTDOT NUMBER.
func (l *Lexer) scanNumber() (float64, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance() // consume '.'
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	lex := l.src[l.start:l.cur]
	v, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		return 0, l.errAtTokenStart(fmt.Sprintf("invalid number literal %q", lex))
	}
	return v, nil
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// ignoreUntilNewline eats until '\n' or EOF.
func (l *Lexer) ignoreUntilNewline() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return
		}
		l.advance()
	}
}

// ignoreBlockComment eats "/* ... */", failing at EOF without a closer.
// The opening "/*" has already been consumed.
func (l *Lexer) ignoreBlockComment() error {
	for {
		b, ok := l.peek()
		if !ok {
			return l.errAtTokenStart("unterminated block comment")
		}
		if b == '*' {
			if b2, ok2 := l.peekN(1); ok2 && b2 == '/' {
				l.advance()
				l.advance()
				return nil
			}
		}
		l.advance()
	}
}

// matchNext consumes the next byte when it equals want.
func (l *Lexer) matchNext(want byte) bool {
	if b, ok := l.peek(); ok && b == want {
		l.advance()
		return true
	}
	return false
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	for {
		l.skipWhitespace()
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		l.start = l.cur

		if l.isAtEnd() {
			return l.addToken(EOF, nil), nil
		}

		ch, _ := l.advance()

		switch ch {
		case '(':
			return l.addToken(LPAREN, nil), nil
		case ')':
			return l.addToken(RPAREN, nil), nil
		case '[':
			return l.addToken(LBRACKET, nil), nil
		case ']':
			return l.addToken(RBRACKET, nil), nil
		case '{':
			return l.addToken(LBRACE, nil), nil
		case '}':
			return l.addToken(RBRACE, nil), nil
		case ':':
			return l.addToken(COLON, nil), nil
		case ',':
			return l.addToken(COMMA, nil), nil
		case ';':
			return l.addToken(SEMI, nil), nil
		case '+':
			return l.addToken(PLUS, nil), nil
		case '-':
			return l.addToken(MINUS, nil), nil
		case '%':
			return l.addToken(PERCENT, nil), nil
		case '*':
			if l.matchNext('*') {
				return l.addToken(POW, nil), nil
			}
			return l.addToken(STAR, nil), nil
		case '/':
			if l.matchNext('/') {
				l.ignoreUntilNewline()
				l.start = l.cur
				continue
			}
			if l.matchNext('*') {
				if err := l.ignoreBlockComment(); err != nil {
					return Token{}, err
				}
				l.start = l.cur
				continue
			}
			return l.addToken(SLASH, nil), nil
		case '#':
			l.ignoreUntilNewline()
			l.start = l.cur
			continue
		case '=':
			if l.matchNext('=') {
				return l.addToken(EQ, nil), nil
			}
			return l.addToken(ASSIGN, nil), nil
		case '!':
			if l.matchNext('=') {
				return l.addToken(NEQ, nil), nil
			}
			return l.addToken(BANG, nil), nil
		case '<':
			if l.matchNext('=') {
				return l.addToken(LESS_EQ, nil), nil
			}
			return l.addToken(LESS, nil), nil
		case '>':
			if l.matchNext('=') {
				return l.addToken(GREATER_EQ, nil), nil
			}
			return l.addToken(GREATER, nil), nil
		case '.':
			if l.matchNext('.') {
				return l.addToken(DOTDOT, nil), nil
			}
			return l.addToken(DOT, nil), nil
		case '&':
			if l.matchNext('&') {
				return l.addToken(AND, nil), nil
			}
			return Token{}, l.errAtTokenStart("unexpected character '&' (did you mean '&&'?)")
		case '|':
			if l.matchNext('|') {
				return l.addToken(OR, nil), nil
			}
			return Token{}, l.errAtTokenStart("unexpected character '|' (did you mean '||'?)")
		case '"':
			text, err := l.scanString()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(STRING, text), nil
		}

		if isDigit(ch) {
			v, err := l.scanNumber()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(NUMBER, v), nil
		}

		if isAlpha(ch) {
			lex := l.scanIdentifier()
			if tt, ok := keywords[lex]; ok {
				switch tt {
				case TRUE:
					return l.addToken(TRUE, true), nil
				case FALSE:
					return l.addToken(FALSE, false), nil
				default:
					return l.addToken(tt, lex), nil
				}
			}
			return l.addToken(IDENT, lex), nil
		}

		return Token{}, l.errAtTokenStart(fmt.Sprintf("unexpected character %q", ch))
	}
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
