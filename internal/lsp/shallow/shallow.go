// Package shallow implements the shallow analyzer (spec.md §4.4): a cheap,
// non-recursive pass over a single file's top-level statements that
// discovers its imports, top-level assignment names, and template headers,
// without ever descending into a template body or following an import to
// analyze the imported file. It is the structural analogue of the
// teacher's own lightweight per-file indexing pass (internal/lsp/cache's
// file-level bookkeeping, kept separate from the full type-checking
// evaluator), cheap enough to run on every file in a workspace during
// background indexing (spec.md §4.8).
package shallow

import (
	"github.com/shometownstd7300-pixel/gn-language-server/gn/ast"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/errors"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/parser"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/token"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/cache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/diag"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/links"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

// Import records one import() statement, whether or not its target could
// be resolved (spec.md §4.4: "unresolved imports are retained as
// diagnostics, never silently dropped").
type Import struct {
	RawPath      string
	ResolvedPath string
	Resolved     bool
	Span         token.Span
}

// Assignment records a top-level (or top-level-within-a-conditional-branch)
// assignment's declared name. Per spec.md §4.5's all-branches-live rule,
// shallow analysis does not attempt to pick a "winning" branch: every
// assignment encountered while walking is recorded, including ones nested
// inside `if`/`else` bodies at the top level.
type Assignment struct {
	Name string
	Op   token.Token
	Span token.Span
}

// TemplateHeader records a template's declared name and span, but nothing
// about its body (spec.md §3 invariant 3).
type TemplateHeader struct {
	Name     string
	NameSpan token.Span
	BodySpan token.Span
}

// Result is the complete output of shallow analysis for one file.
type Result struct {
	Path        string
	Imports     []Import
	Assignments []Assignment
	Templates   []TemplateHeader
	Links       []links.Link
	Diagnostics []diag.Diagnostic
	Freshness   fscache.Freshness
}

// Analyzer computes and memoizes shallow results. Its cache is keyed on
// path with the file's own freshness token as the validity check --
// shallow analysis never depends on any other file's content, so no
// composite freshness is needed (contrast [internal/lsp/full.Analyzer]).
type Analyzer struct {
	store *fscache.Store
	table *cache.Table[string, *Result]
}

// NewAnalyzer creates an Analyzer reading file content through store.
func NewAnalyzer(store *fscache.Store) *Analyzer {
	return &Analyzer{store: store, table: cache.NewTable[string, *Result]()}
}

func freshEq(a, b any) bool {
	fa, aok := a.(fscache.Freshness)
	fb, bok := b.(fscache.Freshness)
	return aok && bok && fa.Equal(fb)
}

// Analyze returns the shallow result for path. Under [cache.RefreshEager]
// it always re-stats path first and reuses the cached result only if the
// freshness token hasn't changed. Under [cache.RefreshLazy] it returns
// whatever is cached, if anything, without paying for the re-stat at all,
// deferring reconciliation to whenever an explicit [Analyzer.Invalidate]
// or the next eager caller forces it (spec.md §4.2, SPEC_FULL.md Open
// Question decision 1).
func (a *Analyzer) Analyze(ws *workspace.Workspace, path string, policy cache.RefreshPolicy) (*Result, error) {
	if policy == cache.RefreshLazy {
		if cached, _, ok := a.table.Peek(path); ok {
			return cached, nil
		}
	}

	content, fresh, err := a.store.Read(path)
	if err != nil {
		return nil, err
	}
	if cached, ok := a.table.Get(path, fresh, freshEq); ok {
		return cached, nil
	}

	result := compute(ws, path, content, fresh)
	a.table.Set(path, fresh, result, cache.StateShallow)
	return result, nil
}

// Invalidate drops path's cached result (e.g. after a watch notification),
// so the next Analyze call recomputes rather than trusting a possibly
// stale entry's freshness comparison alone.
func (a *Analyzer) Invalidate(path string) {
	a.table.Delete(path)
}

func compute(ws *workspace.Workspace, path string, content []byte, fresh fscache.Freshness) *Result {
	file, perrs := parser.Parse(path, content)
	r := &Result{Path: path, Freshness: fresh}
	for _, e := range perrs {
		r.Diagnostics = append(r.Diagnostics, diag.New(diag.CodeParseError, spanOf(e), e.Error()))
	}

	dir := dirOf(path)
	v := &collector{ws: ws, dir: dir, result: r}
	walkTopLevel(file.Stmts, v)
	return r
}

func spanOf(e errors.Error) token.Span {
	return token.Span{Start: e.Position(), End: e.Position()}
}

// dirOf strips path down to its containing directory using the same
// slash-based convention workspace.ResolveImportPath expects.
func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// collector gathers shallow facts. It never descends into a TemplateStmt's
// body and is only ever invoked on top-level statement lists plus the
// bodies of `if`/`else` conditional branches (spec.md §4.4, §4.5).
type collector struct {
	ws     *workspace.Workspace
	dir    string
	result *Result
}

// walkTopLevel recurses into ConditionalStmt bodies (both branches) but
// never into CallStmt/TemplateStmt bodies, matching the shallow pass's
// "top-level + both conditional branches" scope (spec.md §4.4).
func walkTopLevel(stmts []ast.Stmt, c *collector) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ImportStmt:
			c.addImport(n)
		case *ast.AssignStmt:
			c.addAssignment(n)
		case *ast.TemplateStmt:
			c.addTemplate(n)
		case *ast.ConditionalStmt:
			walkConditional(n, c)
		case *ast.CallStmt:
			// Bare calls (target declarations, assert(), etc.) are full-
			// analysis territory; shallow analysis only looks at their
			// string-literal arguments for link discovery.
			for _, arg := range n.Call.Args {
				c.addLink(arg)
			}
		}
	}
}

func walkConditional(n *ast.ConditionalStmt, c *collector) {
	walkTopLevel(n.Body.List, c)
	switch e := n.Else.(type) {
	case *ast.ConditionalStmt:
		walkConditional(e, c)
	case *ast.BlockStmt:
		walkTopLevel(e.List, c)
	}
}

func (c *collector) addImport(n *ast.ImportStmt) {
	raw := n.Path.Unquoted()
	resolved, ok := workspace.ResolveImportPath(c.ws, c.dir, raw)
	span := token.Span{Start: n.Pos(), End: n.End()}
	c.result.Imports = append(c.result.Imports, Import{
		RawPath: raw, ResolvedPath: resolved, Resolved: ok, Span: span,
	})
	if !ok {
		c.result.Diagnostics = append(c.result.Diagnostics,
			diag.Warning(diag.CodeImportResolutionError, span, "cannot resolve import \""+raw+"\""))
	}
}

func (c *collector) addAssignment(n *ast.AssignStmt) {
	c.result.Assignments = append(c.result.Assignments, Assignment{
		Name: n.Lhs.Name,
		Op:   n.Op,
		Span: token.Span{Start: n.Pos(), End: n.End()},
	})
	c.addLink(n.Rhs)
}

func (c *collector) addTemplate(n *ast.TemplateStmt) {
	c.result.Templates = append(c.result.Templates, TemplateHeader{
		Name:     n.Name.Unquoted(),
		NameSpan: token.Span{Start: n.Name.Pos(), End: n.Name.End()},
		BodySpan: token.Span{Start: n.Body.Pos(), End: n.Body.End()},
	})
}

// addLink recognizes string-literal link candidates anywhere reachable
// without descending into nested scopes or template bodies: direct string
// literals and the elements of list literals (the shape every `sources`/
// `deps`/`import` argument takes in practice).
func (c *collector) addLink(e ast.Expr) {
	switch n := e.(type) {
	case *ast.StringLit:
		if link, ok := links.Discover(c.ws, c.dir, n); ok {
			c.result.Links = append(c.result.Links, link)
		}
	case *ast.ListExpr:
		c.result.Links = append(c.result.Links, links.DiscoverAll(c.ws, c.dir, n.Elems)...)
	}
}
