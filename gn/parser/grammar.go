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

package parser

import (
	"github.com/shometownstd7300-pixel/gn-language-server/gn/ast"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/token"
)

// parseStmt parses one top-level or block-level statement. It always
// consumes at least one token, so callers can use lack-of-progress as a
// signal to force advancement during recovery.
func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.IF:
		return p.parseIf()
	case token.IDENT:
		return p.parseIdentStmt()
	default:
		from := p.pos
		p.errorf(p.pos, "expected statement, found %s", p.tok)
		p.sync()
		return &ast.BadStmt{From: from, To: p.pos}
	}
}

func (p *parser) parseIf() ast.Stmt {
	ifPos := p.pos
	p.next() // consume 'if'
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	s := &ast.ConditionalStmt{IfPos: ifPos, Cond: cond, Body: body, EndPos: body.End()}
	if p.tok == token.ELSE {
		p.next()
		if p.tok == token.IF {
			s.Else = p.parseIf()
		} else {
			s.Else = p.parseBlock()
		}
	}
	return s
}

func (p *parser) parseBlock() *ast.BlockStmt {
	lbrace := p.expect(token.LBRACE)
	b := &ast.BlockStmt{Lbrace: lbrace}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		start := p.pos
		s := p.parseStmt()
		if s != nil {
			b.List = append(b.List, s)
		}
		if p.pos == start && p.tok != token.RBRACE && p.tok != token.EOF {
			p.next()
		}
	}
	b.Rbrace = p.pos
	p.expect(token.RBRACE)
	return b
}

// parseIdentStmt handles every statement that starts with an identifier:
// assignments, import(...), template(...){...}, and bare/target call
// statements such as `source_set("lib") { ... }` or `assert(cond)`.
func (p *parser) parseIdentStmt() ast.Stmt {
	ident := p.parseIdent()

	switch p.tok {
	case token.EQ, token.ADD_EQ, token.SUB_EQ:
		opPos, op := p.pos, p.tok
		_, augmented := op.AssignOp()
		p.next()
		rhs := p.parseExpr()
		return &ast.AssignStmt{Lhs: ident, OpPos: opPos, Op: op, Rhs: rhs, IsAugmented: augmented}

	case token.LPAREN:
		call := p.parseCallTail(ident)
		if ident.Name == "import" {
			return p.finishImport(call)
		}
		if ident.Name == "template" {
			return p.finishTemplate(call)
		}
		stmt := &ast.CallStmt{Call: call}
		if p.tok == token.LBRACE {
			stmt.Body = p.parseBlock()
		}
		return stmt

	default:
		from := ident.Pos()
		p.errorf(p.pos, "expected '=', '+=', '-=' or '(' after identifier, found %s", p.tok)
		p.sync()
		return &ast.BadStmt{From: from, To: p.pos}
	}
}

func (p *parser) finishImport(call *ast.CallExpr) ast.Stmt {
	var path *ast.StringLit
	if len(call.Args) == 1 {
		if s, ok := call.Args[0].(*ast.StringLit); ok {
			path = s
		}
	}
	if path == nil {
		p.errorf(call.Pos(), "import() requires exactly one string literal argument")
		path = &ast.StringLit{ValuePos: call.Lparen, Value: `""`}
	}
	return &ast.ImportStmt{ImportPos: call.Pos(), Path: path, Rparen: call.Rparen}
}

func (p *parser) finishTemplate(call *ast.CallExpr) ast.Stmt {
	var name *ast.StringLit
	if len(call.Args) == 1 {
		if s, ok := call.Args[0].(*ast.StringLit); ok {
			name = s
		}
	}
	if name == nil {
		p.errorf(call.Pos(), "template() requires exactly one string literal argument")
		name = &ast.StringLit{ValuePos: call.Lparen, Value: `""`}
	}
	body := p.parseBlock()
	return &ast.TemplateStmt{TemplatePos: call.Pos(), Name: name, Body: body}
}

func (p *parser) parseIdent() *ast.Ident {
	pos, name := p.pos, p.lit
	if p.tok != token.IDENT {
		p.errorf(p.pos, "expected identifier, found %s", p.tok)
		name = ""
	} else {
		p.next()
	}
	return &ast.Ident{NamePos: pos, Name: name}
}

// --- Expressions -----------------------------------------------------------
//
// Precedence, low to high: || ; && ; equality/relational ; additive ; unary
// ; postfix (call/index) ; primary. This mirrors the small, fixed operator
// set GN actually defines; there is no need for cue's generic
// token.LowestPrec table since GN has no user-definable operators.

func (p *parser) parseExpr() ast.Expr { return p.parseOr() }

func (p *parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.tok == token.OR {
		opPos, op := p.pos, p.tok
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: p.parseAnd()}
	}
	return x
}

func (p *parser) parseAnd() ast.Expr {
	x := p.parseEquality()
	for p.tok == token.AND {
		opPos, op := p.pos, p.tok
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: p.parseEquality()}
	}
	return x
}

func (p *parser) parseEquality() ast.Expr {
	x := p.parseAdditive()
	for p.tok == token.EQ_EQ || p.tok == token.NOT_EQ || p.tok == token.LSS ||
		p.tok == token.LEQ || p.tok == token.GTR || p.tok == token.GEQ {
		opPos, op := p.pos, p.tok
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: p.parseAdditive()}
	}
	return x
}

func (p *parser) parseAdditive() ast.Expr {
	x := p.parseUnary()
	for p.tok == token.ADD || p.tok == token.SUB {
		opPos, op := p.pos, p.tok
		p.next()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: p.parseUnary()}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	if p.tok == token.NOT || p.tok == token.SUB {
		opPos, op := p.pos, p.tok
		p.next()
		return &ast.UnaryExpr{OpPos: opPos, Op: op, X: p.parseUnary()}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case token.DOT:
			dot := p.pos
			p.next()
			sel := p.parseIdent()
			x = &ast.AccessorExpr{X: x, Dot: dot, Sel: sel}
		case token.LBRACK:
			lbrack := p.pos
			p.next()
			idx := p.parseExpr()
			rbrack := p.expect(token.RBRACK)
			x = &ast.AccessorExpr{X: x, Lbrack: lbrack, Index: idx, Rbrack: rbrack}
		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.tok {
	case token.IDENT:
		name := p.lit
		ident := p.parseIdent()
		if p.tok == token.LPAREN {
			return p.parseCallTail(&ast.Ident{NamePos: ident.Pos(), Name: name})
		}
		return ident
	case token.INT:
		lit := &ast.IntLit{ValuePos: p.pos, Value: p.lit}
		p.next()
		return lit
	case token.STRING:
		lit := &ast.StringLit{ValuePos: p.pos, Value: p.lit}
		p.next()
		return lit
	case token.TRUE, token.FALSE:
		lit := &ast.Ident{NamePos: p.pos, Name: p.lit}
		p.next()
		return lit
	case token.LBRACK:
		return p.parseList()
	case token.LBRACE:
		return &ast.ScopeExpr{Block: p.parseBlock()}
	case token.LPAREN:
		p.next()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x
	default:
		from := p.pos
		p.errorf(p.pos, "expected expression, found %s", p.tok)
		p.next()
		return &ast.BadExpr{From: from, To: p.pos}
	}
}

func (p *parser) parseList() ast.Expr {
	lbrack := p.pos
	p.next()
	l := &ast.ListExpr{Lbrack: lbrack}
	for p.tok != token.RBRACK && p.tok != token.EOF {
		l.Elems = append(l.Elems, p.parseExpr())
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	l.Rbrack = p.expect(token.RBRACK)
	return l
}

// parseCallTail parses the `(args...)` portion of a call whose callee
// identifier has already been consumed.
func (p *parser) parseCallTail(fun *ast.Ident) *ast.CallExpr {
	lparen := p.expect(token.LPAREN)
	c := &ast.CallExpr{Fun: fun, Lparen: lparen}
	for p.tok != token.RPAREN && p.tok != token.EOF {
		c.Args = append(c.Args, p.parseExpr())
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	c.Rparen = p.expect(token.RPAREN)
	return c
}
