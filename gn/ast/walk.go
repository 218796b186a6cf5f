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

package ast

// Visitor is implemented by callers of [Walk]. Visit is called with each
// node before its children are visited (pre-order); if it returns nil,
// children are not visited. Walk calls Visit(nil) after visiting a node's
// children, which implementations can use to pop a stack symmetrically with
// cue/ast's own Walk convention.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses the tree rooted at node in depth-first, source order,
// calling v.Visit. It never descends into a [TemplateStmt]'s body itself --
// callers wanting template bodies walk s.Body directly (see
// [WalkTemplateBody]), which mirrors the shallow/full analyzer split
// (spec.md §3 invariant 3).
func Walk(node Node, v Visitor) {
	if node == nil {
		return
	}
	v = v.Visit(node)
	if v == nil {
		return
	}
	defer v.Visit(nil)

	switch n := node.(type) {
	case *File:
		for _, s := range n.Stmts {
			Walk(s, v)
		}
	case *BlockStmt:
		for _, s := range n.List {
			Walk(s, v)
		}
	case *AssignStmt:
		Walk(n.Lhs, v)
		Walk(n.Rhs, v)
	case *ConditionalStmt:
		Walk(n.Cond, v)
		Walk(n.Body, v)
		if n.Else != nil {
			Walk(n.Else, v)
		}
	case *CallStmt:
		Walk(n.Call, v)
		if n.Body != nil {
			Walk(n.Body, v)
		}
	case *ImportStmt:
		Walk(n.Path, v)
	case *TemplateStmt:
		Walk(n.Name, v)
		// Body intentionally not walked here; see doc comment.
	case *ListExpr:
		for _, e := range n.Elems {
			Walk(e, v)
		}
	case *ScopeExpr:
		Walk(n.Block, v)
	case *BinaryExpr:
		Walk(n.X, v)
		Walk(n.Y, v)
	case *UnaryExpr:
		Walk(n.X, v)
	case *AccessorExpr:
		Walk(n.X, v)
		if n.Sel != nil {
			Walk(n.Sel, v)
		}
		if n.Index != nil {
			Walk(n.Index, v)
		}
	case *CallExpr:
		Walk(n.Fun, v)
		for _, a := range n.Args {
			Walk(a, v)
		}
	case *Ident, *IntLit, *StringLit, *BadStmt, *BadExpr:
		// leaves
	}
}

// WalkFunc adapts a plain function to the [Visitor] interface.
type WalkFunc func(Node) bool

func (f WalkFunc) Visit(node Node) Visitor {
	if node == nil {
		return nil
	}
	if f(node) {
		return f
	}
	return nil
}

// Inspect calls f for every node in the tree rooted at node in pre-order,
// skipping a subtree's children whenever f returns false.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, WalkFunc(f))
}

// WalkTemplateBody walks a template's body as if it were encountered during
// full analysis of an invocation: it descends normally, unlike the
// top-level Walk which skips TemplateStmt bodies.
func WalkTemplateBody(body *BlockStmt, v Visitor) {
	Walk(body, v)
}
