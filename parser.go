// parser.go — recursive-descent parser with Pratt expression parsing.
//
// Statements are dispatched on their leading keyword; expressions use an lbp
// (left binding power) table. Precedence, low to high:
//
//	=  <  ||  <  &&  <  == !=  <  < <= > >=  <  ..  <  + -  <  * / %  <  **
//
// with ** right-associative, then unary - and !, then postfix call/index/
// member. Every error is fatal and carries the offending token's position;
// there is no recovery and no multi-error reporting.
//
// Struct literals (`Point{x: 1}`) are suppressed while parsing if/while/for
// header expressions so that `while ok { ... }` reads the brace as the loop
// body, the same way Go treats composite literals in statement headers.
package edl

import "fmt"

// Parse tokenizes and parses a complete source string into a program.
func Parse(src string) ([]Stmt, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []Token
	i    int

	noStructLit bool // inside an if/while/for header
	loopDepth   int  // break/continue validity
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekN(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) match(tt ...TokenType) bool {
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

// need consumes a token of type tt or fails with "expected <what>, found ...".
func (p *parser) need(tt TokenType, what string) (Token, error) {
	if p.match(tt) {
		return p.prev(), nil
	}
	return Token{}, p.errHere(fmt.Sprintf("expected %s, found %s", what, describe(p.peek())))
}

func (p *parser) errHere(msg string) error {
	t := p.peek()
	return &ParseError{Line: t.Line, Col: t.Col, Msg: msg, AtEOF: t.Type == EOF}
}

func (p *parser) errAt(t Token, msg string) error {
	return &ParseError{Line: t.Line, Col: t.Col, Msg: msg, AtEOF: t.Type == EOF}
}

// describe renders a token for error messages.
func describe(t Token) string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING:
		return "string literal"
	case NUMBER:
		return fmt.Sprintf("'%s'", t.Lexeme)
	default:
		return fmt.Sprintf("'%s'", t.Lexeme)
	}
}

func pos(t Token) at { return at{Line: t.Line, Col: t.Col} }

// ───────────────────────── precedence / associativity ──────────────────────

func lbp(t TokenType) (int, bool) {
	switch t {
	case ASSIGN:
		return 10, true
	case OR:
		return 20, true
	case AND:
		return 30, true
	case EQ, NEQ:
		return 40, true
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 50, true
	case DOTDOT:
		return 55, true
	case PLUS, MINUS:
		return 60, true
	case STAR, SLASH, PERCENT:
		return 70, true
	case POW:
		return 80, true
	}
	return 0, false
}

func isRightAssoc(tt TokenType) bool { return tt == ASSIGN || tt == POW }

// ───────────────────────────── program & statements ────────────────────────

func (p *parser) program() ([]Stmt, error) {
	var stmts []Stmt
	for !p.atEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *parser) statement() (Stmt, error) {
	switch p.peek().Type {
	case LET:
		return p.letStmt(false)
	case CONST:
		return p.letStmt(true)
	case FN:
		if p.peekN(1).Type == IDENT {
			return p.fnDecl()
		}
		return p.exprStmt()
	case RETURN:
		return p.returnStmt()
	case IF:
		return p.ifStmt()
	case WHILE:
		return p.whileStmt()
	case FOR:
		return p.forStmt()
	case TYPE:
		return p.typeDecl()
	case IMPORT:
		return p.importStmt()
	case BREAK:
		t := p.peek()
		if p.loopDepth == 0 {
			return nil, p.errAt(t, "'break' outside of a loop")
		}
		p.i++
		p.match(SEMI)
		return &BreakStmt{at: pos(t)}, nil
	case CONTINUE:
		t := p.peek()
		if p.loopDepth == 0 {
			return nil, p.errAt(t, "'continue' outside of a loop")
		}
		p.i++
		p.match(SEMI)
		return &ContinueStmt{at: pos(t)}, nil
	case LBRACE:
		return p.block()
	case MATCH, YIELD:
		return nil, p.errHere(fmt.Sprintf("'%s' is a reserved keyword", p.peek().Lexeme))
	default:
		return p.exprStmt()
	}
}

func (p *parser) letStmt(isConst bool) (Stmt, error) {
	kw := p.peek()
	p.i++
	name, err := p.need(IDENT, "a variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "'='"); err != nil {
		return nil, err
	}
	val, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	p.match(SEMI)
	return &LetStmt{at: pos(kw), Name: name.Lexeme, Value: val, IsConst: isConst}, nil
}

func (p *parser) exprStmt() (Stmt, error) {
	t := p.peek()
	x, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	p.match(SEMI)
	return &ExprStmt{at: pos(t), X: x}, nil
}

func (p *parser) returnStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	var val Expr
	if !p.check(SEMI) && !p.check(RBRACE) && !p.atEnd() {
		var err error
		val, err = p.expression(0)
		if err != nil {
			return nil, err
		}
	}
	p.match(SEMI)
	return &ReturnStmt{at: pos(kw), Value: val}, nil
}

func (p *parser) block() (*BlockStmt, error) {
	open, err := p.need(LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.check(RBRACE) && !p.atEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.need(RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &BlockStmt{at: pos(open), Stmts: stmts}, nil
}

// headerExpr parses a condition/iterable with struct literals suppressed.
func (p *parser) headerExpr() (Expr, error) {
	saved := p.noStructLit
	p.noStructLit = true
	x, err := p.expression(0)
	p.noStructLit = saved
	return x, err
}

// groupedExpr parses an expression inside (), [] or {} where struct literals
// are unambiguous again, even within a statement header.
func (p *parser) groupedExpr() (Expr, error) {
	saved := p.noStructLit
	p.noStructLit = false
	x, err := p.expression(0)
	p.noStructLit = saved
	return x, err
}

func (p *parser) ifStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	cond, err := p.headerExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	var els Stmt
	if p.match(ELSE) {
		if p.check(IF) {
			els, err = p.ifStmt()
		} else {
			els, err = p.block()
		}
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{at: pos(kw), Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) whileStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	cond, err := p.headerExpr()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.block()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &WhileStmt{at: pos(kw), Cond: cond, Body: body}, nil
}

func (p *parser) forStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	name, err := p.need(IDENT, "a loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(IN, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.headerExpr()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.block()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ForInStmt{at: pos(kw), Var: name.Lexeme, Iter: iter, Body: body}, nil
}

func (p *parser) fnDecl() (*FnDecl, error) {
	kw := p.peek()
	p.i++ // 'fn'
	name, err := p.need(IDENT, "a function name")
	if err != nil {
		return nil, err
	}
	fn, err := p.fnRest(kw)
	if err != nil {
		return nil, err
	}
	return &FnDecl{at: pos(kw), Name: name.Lexeme, Fn: fn}, nil
}

// fnRest parses "(params) { body }" after 'fn' (and an optional name).
func (p *parser) fnRest(kw Token) (*FnLit, error) {
	if _, err := p.need(LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(RPAREN) {
		t, err := p.need(IDENT, "a parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, t.Lexeme)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RPAREN, "')'"); err != nil {
		return nil, err
	}
	// break/continue may not cross a function boundary
	savedLoop := p.loopDepth
	p.loopDepth = 0
	body, err := p.block()
	p.loopDepth = savedLoop
	if err != nil {
		return nil, err
	}
	return &FnLit{at: pos(kw), Params: params, Body: body}, nil
}

func (p *parser) typeDecl() (Stmt, error) {
	kw := p.peek()
	p.i++
	name, err := p.need(IDENT, "a type name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var fields []FieldDef
	var methods []*FnDecl
	seen := map[string]bool{}
	for !p.check(RBRACE) && !p.atEnd() {
		if p.check(FN) {
			m, err := p.fnDecl()
			if err != nil {
				return nil, err
			}
			if len(m.Fn.Params) == 0 || m.Fn.Params[0] != "self" {
				return nil, p.errAt(kw, fmt.Sprintf("first parameter of method '%s' must be 'self'", m.Name))
			}
			if seen[m.Name] {
				return nil, p.errAt(kw, fmt.Sprintf("duplicate method '%s' in type '%s'", m.Name, name.Lexeme))
			}
			seen[m.Name] = true
			methods = append(methods, m)
		} else {
			f, err := p.need(IDENT, "a field name or method")
			if err != nil {
				return nil, err
			}
			if _, err := p.need(COLON, "':'"); err != nil {
				return nil, err
			}
			def, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			if seen[f.Lexeme] {
				return nil, p.errAt(f, fmt.Sprintf("duplicate field '%s' in type '%s'", f.Lexeme, name.Lexeme))
			}
			seen[f.Lexeme] = true
			fields = append(fields, FieldDef{at: pos(f), Name: f.Lexeme, Default: def})
		}
		p.match(COMMA)
	}
	if _, err := p.need(RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &TypeDecl{at: pos(kw), Name: name.Lexeme, Fields: fields, Methods: methods}, nil
}

func (p *parser) importStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	path, err := p.need(STRING, "a module path string")
	if err != nil {
		return nil, err
	}
	p.match(SEMI)
	return &ImportStmt{at: pos(kw), Path: path.Literal.(string)}, nil
}

// ───────────────────────────────── expressions ──────────────────────────────

func (p *parser) expression(minBP int) (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		bp, ok := lbp(op.Type)
		if !ok || bp < minBP {
			return left, nil
		}
		p.i++
		nextBP := bp + 1
		if isRightAssoc(op.Type) {
			nextBP = bp
		}
		right, err := p.expression(nextBP)
		if err != nil {
			return nil, err
		}
		switch op.Type {
		case ASSIGN:
			switch left.(type) {
			case *Ident, *Index, *Member:
				left = &Assign{at: pos(op), Target: left, Value: right}
			default:
				return nil, p.errAt(op, "invalid assignment target")
			}
		case DOTDOT:
			left = &RangeExpr{at: pos(op), Start: left, End: right}
		default:
			left = &Binary{at: pos(op), Op: op.Lexeme, Left: left, Right: right}
		}
	}
}

func (p *parser) unary() (Expr, error) {
	if p.check(MINUS) || p.check(BANG) {
		op := p.peek()
		p.i++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{at: pos(op), Op: op.Lexeme, Right: right}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case LPAREN:
			open := p.peek()
			p.i++
			var args []Expr
			for !p.check(RPAREN) {
				a, err := p.groupedExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if !p.match(COMMA) {
					break
				}
			}
			if _, err := p.need(RPAREN, "')'"); err != nil {
				return nil, err
			}
			x = &Call{at: pos(open), Callee: x, Args: args}
		case LBRACKET:
			open := p.peek()
			p.i++
			idx, err := p.groupedExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RBRACKET, "']'"); err != nil {
				return nil, err
			}
			x = &Index{at: pos(open), Target: x, Idx: idx}
		case DOT:
			dot := p.peek()
			p.i++
			name, err := p.need(IDENT, "a field or method name")
			if err != nil {
				return nil, err
			}
			x = &Member{at: pos(dot), Target: x, Name: name.Lexeme}
		default:
			return x, nil
		}
	}
}

// structLitAhead reports whether the upcoming '{' opens a struct literal
// rather than a block: `Name{}` or `Name{field: ...}`.
func (p *parser) structLitAhead() bool {
	if p.noStructLit || !p.check(LBRACE) {
		return false
	}
	if p.peekN(1).Type == RBRACE {
		return true
	}
	return p.peekN(1).Type == IDENT && p.peekN(2).Type == COLON
}

func (p *parser) primary() (Expr, error) {
	t := p.peek()
	switch t.Type {
	case NUMBER:
		p.i++
		return &NumberLit{at: pos(t), Value: t.Literal.(float64)}, nil
	case STRING:
		p.i++
		return &StringLit{at: pos(t), Value: t.Literal.(string)}, nil
	case TRUE, FALSE:
		p.i++
		return &BoolLit{at: pos(t), Value: t.Literal.(bool)}, nil
	case NIL:
		p.i++
		return &NilLit{at: pos(t)}, nil
	case IDENT:
		p.i++
		if p.structLitAhead() {
			return p.structLit(t)
		}
		return &Ident{at: pos(t), Name: t.Lexeme}, nil
	case LPAREN:
		p.i++
		x, err := p.groupedExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RPAREN, "')'"); err != nil {
			return nil, err
		}
		return x, nil
	case LBRACKET:
		p.i++
		var elems []Expr
		for !p.check(RBRACKET) {
			e, err := p.groupedExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.match(COMMA) {
				break
			}
		}
		if _, err := p.need(RBRACKET, "']'"); err != nil {
			return nil, err
		}
		return &ListLit{at: pos(t), Elems: elems}, nil
	case FN:
		p.i++
		return p.fnRest(t)
	case MATCH, YIELD:
		return nil, p.errAt(t, fmt.Sprintf("'%s' is a reserved keyword", t.Lexeme))
	default:
		return nil, p.errAt(t, fmt.Sprintf("unexpected token %s", describe(t)))
	}
}

func (p *parser) structLit(name Token) (Expr, error) {
	if _, err := p.need(LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var fields []FieldInit
	seen := map[string]bool{}
	for !p.check(RBRACE) {
		f, err := p.need(IDENT, "a field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(COLON, "':'"); err != nil {
			return nil, err
		}
		val, err := p.groupedExpr()
		if err != nil {
			return nil, err
		}
		if seen[f.Lexeme] {
			return nil, p.errAt(f, fmt.Sprintf("duplicate field '%s' in literal", f.Lexeme))
		}
		seen[f.Lexeme] = true
		fields = append(fields, FieldInit{at: pos(f), Name: f.Lexeme, Value: val})
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &StructLit{at: pos(name), TypeName: name.Lexeme, Fields: fields}, nil
}
