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

// Package token defines the token kinds and source-position types shared by
// the GN scanner, parser and analyzer. Positions are half-open byte spans
// into a registered [File], matching the invariant that every semantic node
// must round-trip to the exact source bytes it was parsed from.
package token

import (
	"fmt"
	"sort"
	"sync"
)

// Position is the printable unpacking of a [Pos]: filename, byte offset,
// and 1-based line/column.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// IsValid reports whether the position carries real line information.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		if p.Filename != "" {
			return p.Filename
		}
		return "-"
	}
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Pos is a compact, comparable reference to a byte offset within a
// registered [File]. The zero Pos, [NoPos], carries no file.
type Pos struct {
	file   *File
	offset int
}

// NoPos is the zero value of Pos; [Pos.IsValid] is false for it.
var NoPos = Pos{}

// IsValid reports whether p refers to a real file and offset.
func (p Pos) IsValid() bool { return p.file != nil }

// File returns the file p belongs to, or nil for [NoPos].
func (p Pos) File() *File { return p.file }

// Offset returns the byte offset of p within its file.
func (p Pos) Offset() int {
	if p.file == nil {
		return 0
	}
	return p.offset
}

// Add returns the position n bytes after p, within the same file.
func (p Pos) Add(n int) Pos {
	if p.file == nil {
		return p
	}
	return Pos{file: p.file, offset: p.file.clampOffset(p.offset + n)}
}

// Position unpacks p into a human-readable [Position].
func (p Pos) Position() Position {
	if p.file == nil {
		return Position{}
	}
	return p.file.position(p.offset)
}

func (p Pos) String() string { return p.Position().String() }

// Compare orders two positions: first by filename, then by offset. NoPos
// sorts after every valid position.
func (p Pos) Compare(q Pos) int {
	switch {
	case p == q:
		return 0
	case p.file == nil:
		return 1
	case q.file == nil:
		return -1
	case p.file.name != q.file.name:
		if p.file.name < q.file.name {
			return -1
		}
		return 1
	case p.offset < q.offset:
		return -1
	case p.offset > q.offset:
		return 1
	default:
		return 0
	}
}

// Span is a half-open byte range [Start, End) within a single file. Every
// syntax and semantic node carries one so that source-text[Span] always
// reproduces exactly what was parsed.
type Span struct {
	Start Pos
	End   Pos
}

// IsValid reports whether both ends of the span are valid.
func (s Span) IsValid() bool { return s.Start.IsValid() && s.End.IsValid() }

// Contains reports whether offset (absolute, within the span's file) falls
// within [s.Start, s.End).
func (s Span) Contains(offset int) bool {
	return s.Start.Offset() <= offset && offset < s.End.Offset()
}

// Text returns the exact source bytes covered by s, given the file's full
// content.
func (s Span) Text(content []byte) []byte {
	if !s.IsValid() {
		return nil
	}
	start, end := s.Start.Offset(), s.End.Offset()
	if start < 0 || end > len(content) || start > end {
		return nil
	}
	return content[start:end]
}

// File registers line-offset information for one source file, and converts
// between byte offsets and printable [Position] values.
type File struct {
	mu    sync.RWMutex
	name  string
	size  int
	lines []int // byte offset of the first character of each line; lines[0] == 0
}

// NewFile creates a File for name holding size bytes of content. Line offsets
// are populated by [File.SetLinesForContent] or incrementally via
// [File.AddLine].
func NewFile(name string, size int) *File {
	return &File{name: name, size: size, lines: []int{0}}
}

// Name returns the file name as passed to [NewFile].
func (f *File) Name() string { return f.name }

// Size returns the file's byte length as passed to [NewFile].
func (f *File) Size() int { return f.size }

func (f *File) clampOffset(offset int) int {
	switch {
	case offset < 0:
		return 0
	case offset > f.size:
		return f.size
	default:
		return offset
	}
}

// AddLine records that a new line begins at offset. Offsets must be added in
// increasing order; out-of-order or out-of-range offsets are ignored.
func (f *File) AddLine(offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := len(f.lines); (n == 0 || f.lines[n-1] < offset) && offset < f.size {
		f.lines = append(f.lines, offset)
	}
}

// SetLinesForContent recomputes the full line table from content in one
// pass. Useful when a File is built from already-known bytes rather than
// incrementally during scanning.
func (f *File) SetLinesForContent(content []byte) {
	lines := []int{0}
	for i, b := range content {
		if b == '\n' && i+1 < len(content) {
			lines = append(lines, i+1)
		}
	}
	f.mu.Lock()
	f.lines = lines
	f.mu.Unlock()
}

// Pos returns the position value for the given byte offset within f.
func (f *File) Pos(offset int) Pos {
	return Pos{file: f, offset: f.clampOffset(offset)}
}

// Offset returns the byte offset for p, which must belong to f (or be
// [NoPos]).
func (f *File) Offset(p Pos) int {
	if p.file != f {
		return 0
	}
	return p.offset
}

func (f *File) position(offset int) Position {
	f.mu.RLock()
	defer f.mu.RUnlock()
	offset = f.clampOffset(offset)
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return Position{
		Filename: f.name,
		Offset:   offset,
		Line:     i + 1,
		Column:   offset - f.lines[i] + 1,
	}
}

// LineCount returns the number of lines currently recorded for f.
func (f *File) LineCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.lines)
}
