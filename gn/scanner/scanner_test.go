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

package scanner_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/shometownstd7300-pixel/gn-language-server/gn/errors"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/scanner"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/token"
)

func scanAll(src string) ([]token.Token, []string) {
	file := token.NewFile("test.gn", len(src))
	var errs errors.List
	var s scanner.Scanner
	s.Init(file, []byte(src), errs.Add, scanner.ScanComments)

	var toks []token.Token
	var lits []string
	for {
		_, tok, lit := s.Scan()
		toks = append(toks, tok)
		lits = append(lits, lit)
		if tok == token.EOF {
			break
		}
	}
	return toks, lits
}

func TestScanIdentAndAssign(t *testing.T) {
	toks, lits := scanAll(`x = 1`)
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{token.IDENT, token.EQ, token.INT, token.EOF}))
	qt.Assert(t, qt.DeepEquals(lits, []string{"x", "", "1", ""}))
}

func TestScanStringLiteral(t *testing.T) {
	toks, lits := scanAll(`"foo.cc"`)
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{token.STRING, token.EOF}))
	qt.Assert(t, qt.Equals(lits[0], `"foo.cc"`))
}

func TestScanTwoCharOperators(t *testing.T) {
	toks, _ := scanAll(`a += b -= c == d != e && f || g <= h >= i`)
	want := []token.Token{
		token.IDENT, token.ADD_EQ, token.IDENT, token.SUB_EQ, token.IDENT,
		token.EQ_EQ, token.IDENT, token.NOT_EQ, token.IDENT, token.AND, token.IDENT,
		token.OR, token.IDENT, token.LEQ, token.IDENT, token.GEQ, token.IDENT, token.EOF,
	}
	qt.Assert(t, qt.DeepEquals(toks, want))
}

func TestScanCommentToEndOfLine(t *testing.T) {
	toks, lits := scanAll("x = 1 # trailing comment\ny = 2")
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{
		token.IDENT, token.EQ, token.INT, token.COMMENT,
		token.IDENT, token.EQ, token.INT, token.EOF,
	}))
	qt.Assert(t, qt.Equals(lits[3], "# trailing comment"))
}

func TestScanIllegalLoneAmpersand(t *testing.T) {
	file := token.NewFile("test.gn", 1)
	var errs errors.List
	var s scanner.Scanner
	s.Init(file, []byte("&"), errs.Add, 0)
	_, tok, _ := s.Scan()
	qt.Assert(t, qt.Equals(tok, token.ILLEGAL))
	qt.Assert(t, qt.Equals(errs.Len(), 1))
}
