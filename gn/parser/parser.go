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

// Package parser implements a recursive-descent, error-tolerant parser for
// GN source, in the structural style of cue/parser: a parser struct holding
// a scanner, one token of lookahead, an accumulated [errors.List], and a
// set of sync-on-error recovery points so a local syntax error does not
// abort analysis of the rest of the file (spec.md §4.2).
package parser

import (
	"fmt"

	"github.com/shometownstd7300-pixel/gn-language-server/gn/ast"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/errors"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/scanner"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/token"
)

// Mode controls optional parser behavior.
type Mode uint

const (
	// ParseComments retains comments as trivia in [ast.File.Comments],
	// grouped by adjacency; they are not attached to individual nodes.
	// Without it, comments are scanned past but discarded, which is cheaper
	// for shallow analysis passes that never need them.
	ParseComments Mode = 1 << iota
)

type parser struct {
	file    *token.File
	scanner scanner.Scanner
	errors  errors.List
	mode    Mode

	pos token.Pos
	tok token.Token
	lit string

	pendingComments []*ast.Comment

	// syncPos/syncCnt bound how much work error recovery does without
	// making scanning progress, mirroring cue/parser's guard against
	// infinite loops during recovery.
	syncPos token.Pos
	syncCnt int
}

// ParseFile parses the GN source text in src, returning the resulting tree
// together with the accumulated parse errors. It never panics: unrecoverable
// input yields an (empty-bodied) *ast.File plus a non-empty error list, per
// spec.md §4.2.
func ParseFile(filename string, src []byte, mode Mode) (result *ast.File, errs errors.List) {
	p := &parser{mode: mode}
	p.file = token.NewFile(filename, len(src))

	var scanMode scanner.Mode
	if mode&ParseComments != 0 {
		scanMode = scanner.ScanComments
	}
	p.scanner.Init(p.file, src, func(pos token.Pos, msg string) {
		p.errors.Add(pos, msg)
	}, scanMode)

	p.next()

	f := &ast.File{Name: filename, StartPos: p.file.Pos(0)}
	defer func() {
		if r := recover(); r != nil {
			p.errors.Addf(p.pos, "internal parser error: %v", r)
			p.errors.Sort()
			result, errs = f, p.errors
		}
	}()

	for p.tok != token.EOF {
		start := p.pos
		s := p.parseStmt()
		if s != nil {
			f.Stmts = append(f.Stmts, s)
		}
		if p.pos == start && p.tok != token.EOF {
			// Safety valve: parseStmt must always make progress.
			p.errorf(p.pos, "unexpected token %s", p.tok)
			p.next()
		}
	}
	f.EndPos = p.pos
	f.Comments = p.flushFileComments(f)

	p.errors.Sort()
	return f, p.errors
}

func (p *parser) flushFileComments(f *ast.File) []*ast.CommentGroup {
	if len(p.pendingComments) == 0 {
		return nil
	}
	groups := groupComments(p.pendingComments)
	p.pendingComments = nil
	return groups
}

// groupComments merges consecutive comments (no blank line between them)
// into CommentGroups, matching the trivia-attachment convention described
// in spec.md §3.
func groupComments(comments []*ast.Comment) []*ast.CommentGroup {
	var groups []*ast.CommentGroup
	var cur []*ast.Comment
	prevLine := -1
	for _, c := range comments {
		line := c.Pos().Position().Line
		if prevLine != -1 && line > prevLine+1 {
			groups = append(groups, &ast.CommentGroup{List: cur})
			cur = nil
		}
		cur = append(cur, c)
		prevLine = c.End().Position().Line
	}
	if len(cur) > 0 {
		groups = append(groups, &ast.CommentGroup{List: cur})
	}
	return groups
}

func (p *parser) next() {
	for {
		pos, tok, lit := p.scanner.Scan()
		if tok == token.COMMENT {
			if p.mode&ParseComments != 0 {
				p.pendingComments = append(p.pendingComments, &ast.Comment{Slash: pos, Text: lit})
			}
			continue
		}
		p.pos, p.tok, p.lit = pos, tok, lit
		return
	}
}

func (p *parser) errorf(pos token.Pos, format string, args ...interface{}) {
	p.errors.Add(pos, fmt.Sprintf(format, args...))
}

// expect consumes the current token if it matches tok, recording an error
// and leaving the cursor in place otherwise (so callers can attempt
// recovery rather than desynchronizing further).
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorf(p.pos, "expected %s, found %s", tok, p.tok)
	} else {
		p.next()
	}
	return pos
}

// sync advances the token stream until it finds a plausible statement
// boundary: the start of a new statement (IDENT, IF) or a block's closing
// brace. It bounds the number of no-progress attempts the way
// cue/parser's syncStmt does, so a malformed construct can't spin forever.
func (p *parser) sync() {
	for p.tok != token.EOF {
		switch p.tok {
		case token.RBRACE, token.IDENT, token.IF:
			return
		}
		if p.pos == p.syncPos {
			p.syncCnt++
			if p.syncCnt > 10 {
				p.next()
				return
			}
		} else {
			p.syncPos = p.pos
			p.syncCnt = 0
		}
		p.next()
	}
}
