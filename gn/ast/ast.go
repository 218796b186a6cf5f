// Copyright 2026 The GN Language Server Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ast declares the types used to represent GN syntax trees: file,
// statement and expression nodes, each carrying the half-open byte [Span]
// it was parsed from (spec.md §3, invariant 5).
package ast

import "github.com/shometownstd7300-pixel/gn-language-server/gn/token"

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() token.Pos
	End() token.Pos
	Span() token.Span
}

// Stmt is implemented by every top-level or block-level statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

func (*BadStmt) stmtNode()       {}
func (*AssignStmt) stmtNode()    {}
func (*ConditionalStmt) stmtNode() {}
func (*CallStmt) stmtNode()      {}
func (*ImportStmt) stmtNode()    {}
func (*TemplateStmt) stmtNode()  {}
func (*BlockStmt) stmtNode()     {}

func (*BadExpr) exprNode()        {}
func (*Ident) exprNode()          {}
func (*IntLit) exprNode()         {}
func (*StringLit) exprNode()      {}
func (*ListExpr) exprNode()       {}
func (*ScopeExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*AccessorExpr) exprNode()   {}
func (*CallExpr) exprNode()       {}

// Comment is a single `#`-introduced comment, preserved as trivia (spec.md
// §3 "Trivia"). The parser collects comments into [File.Comments] only; it
// does not attach them to nodes, so LeadComment/TrailComment stay nil on
// parsed trees.
type Comment struct {
	Slash token.Pos
	Text  string // includes leading '#'
}

func (c *Comment) Pos() token.Pos  { return c.Slash }
func (c *Comment) End() token.Pos  { return c.Slash.Add(len(c.Text)) }
func (c *Comment) Span() token.Span { return token.Span{Start: c.Pos(), End: c.End()} }

// CommentGroup is a run of consecutive comment lines with no blank/code
// line between them.
type CommentGroup struct {
	List []*Comment
}

func (g *CommentGroup) Pos() token.Pos  { return g.List[0].Pos() }
func (g *CommentGroup) End() token.Pos  { return g.List[len(g.List)-1].End() }
func (g *CommentGroup) Span() token.Span { return token.Span{Start: g.Pos(), End: g.End()} }

// commentable is embedded by nodes that can carry leading/trailing trivia.
type commentable struct {
	leadComment  *CommentGroup
	trailComment *CommentGroup
}

func (c *commentable) LeadComment() *CommentGroup  { return c.leadComment }
func (c *commentable) TrailComment() *CommentGroup { return c.trailComment }
func (c *commentable) SetLeadComment(g *CommentGroup)  { c.leadComment = g }
func (c *commentable) SetTrailComment(g *CommentGroup) { c.trailComment = g }

// File is the root of a parsed GN source file.
type File struct {
	Name  string
	Stmts []Stmt
	// Comments holds every comment group encountered, in source order, so
	// outline/folding can walk trivia independently of the statement tree.
	Comments []*CommentGroup

	StartPos token.Pos
	EndPos   token.Pos
}

func (f *File) Pos() token.Pos  { return f.StartPos }
func (f *File) End() token.Pos  { return f.EndPos }
func (f *File) Span() token.Span { return token.Span{Start: f.Pos(), End: f.End()} }

// BadStmt is a placeholder for a statement that could not be parsed; it
// lets the parser recover enough structure to keep analyzing the rest of
// the file (spec.md §4.2 "error-tolerant").
type BadStmt struct {
	commentable
	From, To token.Pos
}

func (s *BadStmt) Pos() token.Pos  { return s.From }
func (s *BadStmt) End() token.Pos  { return s.To }
func (s *BadStmt) Span() token.Span { return token.Span{Start: s.From, End: s.To} }

// BadExpr is the expression-level analogue of [BadStmt].
type BadExpr struct {
	From, To token.Pos
}

func (e *BadExpr) Pos() token.Pos  { return e.From }
func (e *BadExpr) End() token.Pos  { return e.To }
func (e *BadExpr) Span() token.Span { return token.Span{Start: e.From, End: e.To} }

// AssignStmt is `lhs op rhs`, where op is one of `=`, `+=`, `-=`.
type AssignStmt struct {
	commentable
	Lhs         *Ident
	OpPos       token.Pos
	Op          token.Token
	Rhs         Expr
	IsAugmented bool
}

func (s *AssignStmt) Pos() token.Pos { return s.Lhs.Pos() }
func (s *AssignStmt) End() token.Pos { return s.Rhs.End() }
func (s *AssignStmt) Span() token.Span { return token.Span{Start: s.Pos(), End: s.End()} }

// ConditionalStmt is `if (cond) { ... } else if (cond) { ... } else { ... }`.
// Per spec.md §3 invariant / §4.5, all branches are analyzed as equally
// live; Else may itself be another *ConditionalStmt (else-if chaining) or a
// *BlockStmt (the final else), or nil.
type ConditionalStmt struct {
	commentable
	IfPos token.Pos
	Cond  Expr
	Body  *BlockStmt
	Else  Stmt // *ConditionalStmt, *BlockStmt, or nil
	EndPos token.Pos
}

func (s *ConditionalStmt) Pos() token.Pos { return s.IfPos }
func (s *ConditionalStmt) End() token.Pos {
	if s.Else != nil {
		return s.Else.End()
	}
	return s.EndPos
}
func (s *ConditionalStmt) Span() token.Span { return token.Span{Start: s.Pos(), End: s.End()} }

// BlockStmt is a brace-delimited list of statements; it opens a new scope
// (spec.md §4.5 step 2).
type BlockStmt struct {
	Lbrace token.Pos
	List   []Stmt
	Rbrace token.Pos
}

func (b *BlockStmt) Pos() token.Pos  { return b.Lbrace }
func (b *BlockStmt) End() token.Pos  { return b.Rbrace.Add(1) }
func (b *BlockStmt) Span() token.Span { return token.Span{Start: b.Pos(), End: b.End()} }

// CallStmt is a bare function call used as a statement: a target
// declaration (`source_set("lib") { ... }`), a bodyless builtin invocation
// (`import(...)`  is modeled separately as [ImportStmt]; other builtins such
// as `assert(...)`, `print(...)`, `set_defaults(...)`,
// `forward_variables_from(...)` land here), or a template invocation.
type CallStmt struct {
	commentable
	Call *CallExpr
	Body *BlockStmt // non-nil for target/template-invocation bodies
}

func (s *CallStmt) Pos() token.Pos { return s.Call.Pos() }
func (s *CallStmt) End() token.Pos {
	if s.Body != nil {
		return s.Body.End()
	}
	return s.Call.End()
}
func (s *CallStmt) Span() token.Span { return token.Span{Start: s.Pos(), End: s.End()} }

// ImportStmt is `import("path")`.
type ImportStmt struct {
	commentable
	ImportPos token.Pos
	Path      *StringLit
	Rparen    token.Pos
}

func (s *ImportStmt) Pos() token.Pos  { return s.ImportPos }
func (s *ImportStmt) End() token.Pos  { return s.Rparen.Add(1) }
func (s *ImportStmt) Span() token.Span { return token.Span{Start: s.Pos(), End: s.End()} }

// TemplateStmt is `template("name") { ... }`. Per spec.md §3 invariant 3,
// its Body is never descended into during shallow analysis.
type TemplateStmt struct {
	commentable
	TemplatePos token.Pos
	Name        *StringLit
	Body        *BlockStmt
}

func (s *TemplateStmt) Pos() token.Pos  { return s.TemplatePos }
func (s *TemplateStmt) End() token.Pos  { return s.Body.End() }
func (s *TemplateStmt) Span() token.Span { return token.Span{Start: s.Pos(), End: s.End()} }

// Ident is a bare identifier reference or assignment target.
type Ident struct {
	NamePos token.Pos
	Name    string
}

func (i *Ident) Pos() token.Pos  { return i.NamePos }
func (i *Ident) End() token.Pos  { return i.NamePos.Add(len(i.Name)) }
func (i *Ident) Span() token.Span { return token.Span{Start: i.Pos(), End: i.End()} }

// IntLit is an integer literal.
type IntLit struct {
	ValuePos token.Pos
	Value    string
}

func (l *IntLit) Pos() token.Pos  { return l.ValuePos }
func (l *IntLit) End() token.Pos  { return l.ValuePos.Add(len(l.Value)) }
func (l *IntLit) Span() token.Span { return token.Span{Start: l.Pos(), End: l.End()} }

// StringLit is a double-quoted string literal, including its quotes in
// Value. Link discovery (spec.md §4.7) operates on StringLit nodes.
type StringLit struct {
	ValuePos token.Pos
	Value    string
}

func (l *StringLit) Pos() token.Pos  { return l.ValuePos }
func (l *StringLit) End() token.Pos  { return l.ValuePos.Add(len(l.Value)) }
func (l *StringLit) Span() token.Span { return token.Span{Start: l.Pos(), End: l.End()} }

// Unquoted returns the literal's text with surrounding quotes stripped. It
// does not interpret `$var`/`${...}` interpolation; callers needing that
// use links.FindStringSubSpans.
func (l *StringLit) Unquoted() string {
	if len(l.Value) >= 2 && l.Value[0] == '"' {
		return l.Value[1 : len(l.Value)-1]
	}
	return l.Value
}

// ListExpr is `[a, b, c]`.
type ListExpr struct {
	Lbrack token.Pos
	Elems  []Expr
	Rbrack token.Pos
}

func (l *ListExpr) Pos() token.Pos  { return l.Lbrack }
func (l *ListExpr) End() token.Pos  { return l.Rbrack.Add(1) }
func (l *ListExpr) Span() token.Span { return token.Span{Start: l.Pos(), End: l.End()} }

// ScopeExpr is `{ ... }` used as an expression (e.g. the RHS of an
// assignment, as in `config("x") { ... }`-style template argument scopes).
// It opens a new lexical scope (spec.md §4.5 step 2).
type ScopeExpr struct {
	Block *BlockStmt
}

func (s *ScopeExpr) Pos() token.Pos  { return s.Block.Pos() }
func (s *ScopeExpr) End() token.Pos  { return s.Block.End() }
func (s *ScopeExpr) Span() token.Span { return token.Span{Start: s.Pos(), End: s.End()} }

// BinaryExpr is `x op y`.
type BinaryExpr struct {
	X     Expr
	OpPos token.Pos
	Op    token.Token
	Y     Expr
}

func (e *BinaryExpr) Pos() token.Pos  { return e.X.Pos() }
func (e *BinaryExpr) End() token.Pos  { return e.Y.End() }
func (e *BinaryExpr) Span() token.Span { return token.Span{Start: e.Pos(), End: e.End()} }

// UnaryExpr is `!x` or `-x`.
type UnaryExpr struct {
	OpPos token.Pos
	Op    token.Token
	X     Expr
}

func (e *UnaryExpr) Pos() token.Pos  { return e.OpPos }
func (e *UnaryExpr) End() token.Pos  { return e.X.End() }
func (e *UnaryExpr) Span() token.Span { return token.Span{Start: e.Pos(), End: e.End()} }

// AccessorExpr is `x[index]` (GN has no `.field` accessor; scopes are
// accessed only through `x.y` where y is itself a scope variable reference,
// represented here as a dotted identifier chain for simplicity) or an index
// expression into a list/scope.
type AccessorExpr struct {
	X      Expr
	Dot    token.Pos // valid for `x.y`; NoPos for `x[i]`
	Sel    *Ident    // valid for `x.y`
	Lbrack token.Pos // valid for `x[i]`
	Index  Expr
	Rbrack token.Pos
}

func (e *AccessorExpr) Pos() token.Pos { return e.X.Pos() }
func (e *AccessorExpr) End() token.Pos {
	if e.Sel != nil {
		return e.Sel.End()
	}
	return e.Rbrack.Add(1)
}
func (e *AccessorExpr) Span() token.Span { return token.Span{Start: e.Pos(), End: e.End()} }

// CallExpr is `name(args...)`.
type CallExpr struct {
	Fun    *Ident
	Lparen token.Pos
	Args   []Expr
	Rparen token.Pos
}

func (e *CallExpr) Pos() token.Pos  { return e.Fun.Pos() }
func (e *CallExpr) End() token.Pos  { return e.Rparen.Add(1) }
func (e *CallExpr) Span() token.Span { return token.Span{Start: e.Pos(), End: e.End()} }
