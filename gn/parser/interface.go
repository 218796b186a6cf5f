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
	"github.com/shometownstd7300-pixel/gn-language-server/gn/errors"
)

// Option configures a single [ParseFile] call, in the functional-options
// style cue/parser uses for its own mode bits.
type Option func(*Mode)

// WithComments enables comment retention (see [ParseComments]).
func WithComments() Option {
	return func(m *Mode) { *m |= ParseComments }
}

// Parse parses filename's contents (src) with the given options and
// returns the resulting tree together with any parse errors. It never
// returns a nil *ast.File, and never panics (spec.md §4.2 "error-tolerant").
func Parse(filename string, src []byte, opts ...Option) (*ast.File, errors.List) {
	var mode Mode
	for _, opt := range opts {
		opt(&mode)
	}
	return ParseFile(filename, src, mode)
}
