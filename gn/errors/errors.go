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

// Package errors defines the shared error types produced while lexing,
// parsing and analyzing GN source. The pivotal type is [Error]; a [List]
// collects zero or more of them in source order.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shometownstd7300-pixel/gn-language-server/gn/token"
)

// Error is satisfied by every error this module produces that can be
// attached to a position in source text.
type Error interface {
	error
	Position() token.Pos
}

// Handler is called by the scanner and parser for each error encountered
// during scanning/parsing. With a nil Handler the scanner reports nothing
// and only increments its ErrorCount.
type Handler func(pos token.Pos, msg string)

// simple is the plain positioned-message error produced by the scanner and
// parser for syntax errors.
type simple struct {
	pos token.Pos
	msg string
}

func (e *simple) Position() token.Pos { return e.pos }
func (e *simple) Error() string {
	if p := e.pos.Position(); p.IsValid() {
		return fmt.Sprintf("%s: %s", p, e.msg)
	}
	return e.msg
}

// New returns an [Error] with the given position and message.
func New(pos token.Pos, msg string) Error {
	return &simple{pos: pos, msg: msg}
}

// Newf is like [New] but formats its message.
func Newf(pos token.Pos, format string, args ...interface{}) Error {
	return &simple{pos: pos, msg: fmt.Sprintf(format, args...)}
}

// List is a list of [Error] values in the order they were added;
// [List.Sort] orders it by position.
type List []Error

// Add appends an error built from pos and msg.
func (l *List) Add(pos token.Pos, msg string) {
	*l = append(*l, &simple{pos: pos, msg: msg})
}

// Addf is like Add but formats its message.
func (l *List) Addf(pos token.Pos, format string, args ...interface{}) {
	*l = append(*l, &simple{pos: pos, msg: fmt.Sprintf(format, args...)})
}

// AddError appends err directly, preserving its concrete type so callers can
// later recover it with a type assertion.
func (l *List) AddError(err Error) {
	*l = append(*l, err)
}

func (l List) Len() int      { return len(l) }
func (l List) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l List) Less(i, j int) bool {
	pi, pj := l[i].Position().Position(), l[j].Position().Position()
	if pi.Filename != pj.Filename {
		return pi.Filename < pj.Filename
	}
	return pi.Offset < pj.Offset
}

// Sort sorts the list in place by source position.
func (l List) Sort() { sort.Sort(l) }

// Err returns nil if l is empty, l itself (as an error) otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (and %d more errors)", l[0].Error(), len(l)-1)
	return b.String()
}
