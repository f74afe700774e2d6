// ast.go — EDL abstract syntax tree.
//
// Two closed node families, monkey-style marker interfaces:
//
//	Expr: NumberLit StringLit BoolLit NilLit Ident ListLit StructLit Unary
//	      Binary Assign Call Index Member FnLit RangeExpr
//	Stmt: LetStmt ExprStmt BlockStmt IfStmt WhileStmt ForInStmt FnDecl
//	      TypeDecl ReturnStmt BreakStmt ContinueStmt ImportStmt
//
// Every node carries the line/column of its first token. String() renders a
// canonical, fully-parenthesized form used by the parser tests.
package edl

import (
	"strconv"
	"strings"
)

// Node is the common interface of all AST nodes.
type Node interface {
	Pos() (line, col int)
	String() string
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// at holds the source position of a node's first token.
type at struct {
	Line, Col int
}

func (a at) Pos() (int, int) { return a.Line, a.Col }

// ----- expressions -----

type NumberLit struct {
	at
	Value float64
}

type StringLit struct {
	at
	Value string
}

type BoolLit struct {
	at
	Value bool
}

type NilLit struct {
	at
}

type Ident struct {
	at
	Name string
}

type ListLit struct {
	at
	Elems []Expr
}

// FieldInit is one "name: expr" entry of a struct literal.
type FieldInit struct {
	at
	Name  string
	Value Expr
}

// StructLit is `TypeName { field: expr, ... }`.
type StructLit struct {
	at
	TypeName string
	Fields   []FieldInit
}

type Unary struct {
	at
	Op    string // "-" or "!"
	Right Expr
}

type Binary struct {
	at
	Op          string
	Left, Right Expr
}

// Assign is `target = value`; Target is an Ident, Index, or Member.
type Assign struct {
	at
	Target Expr
	Value  Expr
}

type Call struct {
	at
	Callee Expr
	Args   []Expr
}

type Index struct {
	at
	Target Expr
	Idx    Expr
}

type Member struct {
	at
	Target Expr
	Name   string
}

// FnLit is an anonymous function literal `fn(a, b) { ... }`. Named
// declarations wrap one in FnDecl.
type FnLit struct {
	at
	Params []string
	Body   *BlockStmt
}

// RangeExpr is the half-open range `start..end`.
type RangeExpr struct {
	at
	Start, End Expr
}

func (*NumberLit) exprNode() {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*NilLit) exprNode()    {}
func (*Ident) exprNode()     {}
func (*ListLit) exprNode()   {}
func (*StructLit) exprNode() {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Assign) exprNode()    {}
func (*Call) exprNode()      {}
func (*Index) exprNode()     {}
func (*Member) exprNode()    {}
func (*FnLit) exprNode()     {}
func (*RangeExpr) exprNode() {}

// ----- statements -----

// LetStmt is `let name = expr;` or `const name = expr;`.
type LetStmt struct {
	at
	Name    string
	Value   Expr
	IsConst bool
}

type ExprStmt struct {
	at
	X Expr
}

type BlockStmt struct {
	at
	Stmts []Stmt
}

// IfStmt chains else-ifs through Else, which is *IfStmt, *BlockStmt, or nil.
type IfStmt struct {
	at
	Cond Expr
	Then *BlockStmt
	Else Stmt
}

type WhileStmt struct {
	at
	Cond Expr
	Body *BlockStmt
}

type ForInStmt struct {
	at
	Var  string
	Iter Expr
	Body *BlockStmt
}

type FnDecl struct {
	at
	Name string
	Fn   *FnLit
}

// FieldDef is one declared field of a struct type with its default expression.
type FieldDef struct {
	at
	Name    string
	Default Expr
}

// TypeDecl is `type Name { field: default, ..., fn m(self, ...) { ... } }`.
type TypeDecl struct {
	at
	Name    string
	Fields  []FieldDef
	Methods []*FnDecl
}

type ReturnStmt struct {
	at
	Value Expr // nil for a bare `return;`
}

type BreakStmt struct {
	at
}

type ContinueStmt struct {
	at
}

type ImportStmt struct {
	at
	Path string
}

func (*LetStmt) stmtNode()      {}
func (*ExprStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()    {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForInStmt) stmtNode()    {}
func (*FnDecl) stmtNode()       {}
func (*TypeDecl) stmtNode()     {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ImportStmt) stmtNode()   {}

// ----- String() forms -----

func (n *NumberLit) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (n *StringLit) String() string { return strconv.Quote(n.Value) }
func (n *BoolLit) String() string   { return strconv.FormatBool(n.Value) }
func (n *NilLit) String() string    { return "nil" }
func (n *Ident) String() string     { return n.Name }

func (n *ListLit) String() string {
	parts := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (n *StructLit) String() string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return n.TypeName + "{" + strings.Join(parts, ", ") + "}"
}

func (n *FieldInit) String() string { return n.Name + ": " + n.Value.String() }
func (n *FieldDef) String() string  { return n.Name + ": " + n.Default.String() }

func (n *Unary) String() string  { return "(" + n.Op + n.Right.String() + ")" }
func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}
func (n *Assign) String() string {
	return "(" + n.Target.String() + " = " + n.Value.String() + ")"
}

func (n *Call) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

func (n *Index) String() string  { return n.Target.String() + "[" + n.Idx.String() + "]" }
func (n *Member) String() string { return n.Target.String() + "." + n.Name }

func (n *FnLit) String() string {
	return "fn(" + strings.Join(n.Params, ", ") + ") " + n.Body.String()
}

func (n *RangeExpr) String() string {
	return "(" + n.Start.String() + " .. " + n.End.String() + ")"
}

func (n *LetStmt) String() string {
	kw := "let"
	if n.IsConst {
		kw = "const"
	}
	return kw + " " + n.Name + " = " + n.Value.String() + ";"
}

func (n *ExprStmt) String() string { return n.X.String() + ";" }

func (n *BlockStmt) String() string {
	parts := make([]string, len(n.Stmts))
	for i, s := range n.Stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func (n *IfStmt) String() string {
	out := "if " + n.Cond.String() + " " + n.Then.String()
	if n.Else != nil {
		out += " else " + n.Else.String()
	}
	return out
}

func (n *WhileStmt) String() string {
	return "while " + n.Cond.String() + " " + n.Body.String()
}

func (n *ForInStmt) String() string {
	return "for " + n.Var + " in " + n.Iter.String() + " " + n.Body.String()
}

func (n *FnDecl) String() string {
	return "fn " + n.Name + "(" + strings.Join(n.Fn.Params, ", ") + ") " + n.Fn.Body.String()
}

func (n *TypeDecl) String() string {
	parts := make([]string, 0, len(n.Fields)+len(n.Methods))
	for _, f := range n.Fields {
		parts = append(parts, f.Name+": "+f.Default.String())
	}
	for _, m := range n.Methods {
		parts = append(parts, m.String())
	}
	return "type " + n.Name + " { " + strings.Join(parts, ", ") + " }"
}

func (n *ReturnStmt) String() string {
	if n.Value == nil {
		return "return;"
	}
	return "return " + n.Value.String() + ";"
}

func (n *BreakStmt) String() string    { return "break;" }
func (n *ContinueStmt) String() string { return "continue;" }
func (n *ImportStmt) String() string   { return "import " + strconv.Quote(n.Path) + ";" }
