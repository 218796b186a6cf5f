// Package full implements the full analyzer (spec.md §4.5): the complete
// semantic model of one edited file: its scope tree, assignment and
// target records, template bodies (entered per invocation), link graph,
// and the ordered semantic event stream every IDE-facing provider
// consumes. It is grounded on the teacher's internal/lsp evaluator split:
// a cheap per-file summary (here, package shallow) feeding a heavier,
// cross-file model (here, this package), the same two-tier shape
// cue-lang-cue uses to keep incremental re-evaluation affordable.
package full

import (
	"errors"

	"github.com/shometownstd7300-pixel/gn-language-server/gn/ast"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/parser"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/token"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/cache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/diag"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/links"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/shallow"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

// CancelChecker reports whether the in-flight request has been canceled.
// [Analyzer.Analyze] polls it at each statement boundary during the walk,
// the same cooperative-yield-point style the background indexer applies
// to context.Context (spec.md §5 "Cancellation").
type CancelChecker func() bool

// ErrCanceled is returned by [Analyzer.Analyze] when canceled reported
// true before the walk finished. The partial model is dropped rather than
// cached, so the next request for path starts over from scratch.
var ErrCanceled = errors.New("full: analysis canceled")

// builtinTargetKinds enumerates the GN built-in target-declaring functions
// the full analyzer recognizes by name, so a TargetRecord always has a
// concrete Type even before any user template is considered (SPEC_FULL.md
// "Built-in target function recognition").
var builtinTargetKinds = map[string]bool{
	"source_set":     true,
	"executable":     true,
	"static_library": true,
	"shared_library": true,
	"group":          true,
	"action":         true,
	"action_foreach": true,
	"copy":           true,
	"config":         true,
	"bundle_data":    true,
	"generated_file": true,
}

// attributeSlots enumerates the ordinary GN target attributes the full
// analyzer records on a [TargetRecord] (SPEC_FULL.md "Attribute slot
// enumeration").
var attributeSlots = map[string]bool{
	"deps": true, "sources": true, "public_deps": true, "configs": true,
	"data": true, "data_deps": true, "inputs": true, "outputs": true,
	"args": true, "public_configs": true, "visibility": true,
}

// predeclaredGlobals are GN's documented read-only built-in variables,
// always considered bound regardless of enclosing scope (SPEC_FULL.md
// "Undefined-variable diagnostics whitelist", Open Question decision 3).
var predeclaredGlobals = map[string]bool{
	"target_name": true, "target_out_dir": true, "target_gen_dir": true,
	"root_out_dir": true, "root_gen_dir": true, "root_build_dir": true,
	"default_toolchain": true, "current_toolchain": true,
	"current_os": true, "current_cpu": true, "host_os": true, "host_cpu": true,
	"target_os": true, "target_cpu": true, "python_path": true,
}

// ScopeID indexes into a [Model]'s scope arena. Parent links are stored as
// IDs rather than pointers so the tree never owns a cycle (spec.md §9
// Design Notes: "store scopes in an arena indexed by integer id").
type ScopeID int

// NoScope (-1) is the Parent recorded for the root scope, which has none.
const NoScope ScopeID = -1

// ScopeKind distinguishes why a scope was opened.
type ScopeKind int

const (
	ScopeFile ScopeKind = iota
	ScopeTargetBody
	ScopeTemplateBody
	ScopeExplicit
	ScopeConditionalBranch
	ScopeDeclareArgs
)

// Definition is one binding site for an identifier within a [Scope].
type Definition struct {
	Span token.Span
	Op   token.Token
}

// Scope is one lexical region. Identifier -> definition-site list is
// append-only: spec.md invariant 4/§4.5 step 4 requires every collision to
// be retained, never overwritten, since all conditional branches are live.
type Scope struct {
	ID     ScopeID
	Parent ScopeID
	Kind   ScopeKind
	Span   token.Span
	Vars   map[string][]Definition
}

// AssignmentRecord is one assignment or augmented assignment (spec.md §3
// "Assignment records").
type AssignmentRecord struct {
	ScopeID ScopeID
	Name    string
	Op      token.Token
	IsAugmented bool
	Rhs     ast.Expr
	Span    token.Span
}

// TargetRecord is one target (or template-invocation-as-target)
// declaration (spec.md §3 "Target records").
type TargetRecord struct {
	Name         string
	Type         string // builtin kind name, or the invoked template's name
	IsTemplate   bool   // Type names a user template, not a builtin
	DefiningScope ScopeID
	BodySpan     token.Span
	// Attrs maps each observed attribute slot named in attributeSlots to
	// its right-hand expression; other assignments in the body are not
	// recorded here.
	Attrs map[string]ast.Expr
}

// TemplateRecord is one `template("name") { ... }` declaration (spec.md §3
// "Template records"). Params is populated the first time the template is
// invoked and the full analyzer scans its body for free variable reads
// (SPEC_FULL.md Open Question decision 2); it stays nil for a template
// that is declared but never invoked in the analyzed file.
type TemplateRecord struct {
	Name     string
	NameSpan token.Span
	BodySpan token.Span
	Params   []string

	// bodyNode is the template's actual body, kept so a later invocation
	// can walk it without re-parsing; it is intentionally unexported since
	// TemplateRecord is otherwise a plain cross-package value type.
	bodyNode *ast.BlockStmt
}

// EventKind identifies a [Event]'s kind, matching spec.md §3's named
// semantic event stream entries exactly.
type EventKind int

const (
	EventImportResolved EventKind = iota
	EventAssignment
	EventTargetDefined
	EventTemplateDefined
	EventConditional
	EventLinkDiscovered
)

// Event is one entry in the semantic event stream (spec.md §3): the single
// iteration surface outline, folding, and hover providers are meant to
// consume (SPEC_FULL.md "Folding ranges and outline data derive from the
// same semantic event stream").
type Event struct {
	Kind EventKind
	Span token.Span
	// Detail is the kind-specific payload: *AssignmentRecord,
	// *TargetRecord, *TemplateRecord, the imported file's *shallow.Result
	// (for ImportResolved), the conditional's *ast.ConditionalStmt, or
	// links.Link (for LinkDiscovered).
	Detail any
}

// Model is the complete full-analysis result for one primary file.
type Model struct {
	Path      string
	Scopes    []*Scope
	RootScope ScopeID
	Assignments []AssignmentRecord
	Targets     []TargetRecord
	Templates   []TemplateRecord
	Links       []links.Link
	Diagnostics []diag.Diagnostic
	events      []Event

	// CompositeFreshness folds this file's own freshness token with every
	// shallow summary's token consulted while building the model (spec.md
	// §4.5 Cache, §4.6).
	CompositeFreshness CompositeFreshness
}

// Events returns the model's semantic event stream in source order.
func (m *Model) Events() []Event { return m.events }

// Scope looks up a scope by ID, or nil if id is out of range.
func (m *Model) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(m.Scopes) {
		return nil
	}
	return m.Scopes[id]
}

// Lookup walks id's parent chain, returning every [Definition] of name
// found at any ancestor, nearest scope first (spec.md invariant 4: source
// order within a file, then ancestor-to-descendant across scopes. Since
// callers usually want "innermost first", Lookup returns nearest-scope
// results first and lets callers reverse if they want outermost-first).
func (m *Model) Lookup(id ScopeID, name string) []Definition {
	var all []Definition
	for s := m.Scope(id); s != nil; s = m.Scope(s.Parent) {
		if defs, ok := s.Vars[name]; ok {
			all = append(all, defs...)
		}
	}
	return all
}

// CompositeFreshness is the ordered vector of per-file freshness tokens
// observed while building a [Model] (spec.md §9 Design Notes "Freshness
// composition"): the primary file's own token, then one entry per
// transitively imported file consulted, in the order first visited.
type CompositeFreshness []fileFreshness

type fileFreshness struct {
	Path      string
	Freshness fscache.Freshness
}

// Equal reports element-wise equality, per spec.md's freshness-composition
// strategy note ("equality is element-wise; any file's token advance
// invalidates the composite").
func (c CompositeFreshness) Equal(o CompositeFreshness) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i].Path != o[i].Path || !c[i].Freshness.Equal(o[i].Freshness) {
			return false
		}
	}
	return true
}

// Analyzer computes and memoizes full models.
type Analyzer struct {
	store   *fscache.Store
	shallow *shallow.Analyzer
	table   *cache.Table[string, *Model]
	config  cache.Config
}

// NewAnalyzer creates an Analyzer. shallowAnalyzer is used to resolve
// every transitively imported file's summary.
func NewAnalyzer(store *fscache.Store, shallowAnalyzer *shallow.Analyzer, config cache.Config) *Analyzer {
	return &Analyzer{store: store, shallow: shallowAnalyzer, table: cache.NewTable[string, *Model](), config: config}
}

// Analyze produces (or returns a cached) [Model] for path. Under
// [cache.RefreshEager], a cached model is reused only if every file in its
// recorded composite freshness is still at the same freshness now;
// re-stating each one is cheap (the document store itself caches disk
// stats) compared to a full re-parse and re-walk. Under
// [cache.RefreshLazy], any cached model is returned unconditionally
// without re-stating a single file (SPEC_FULL.md Open Question
// decision 1).
//
// canceled, if non-nil, is polled at each statement boundary; if it
// reports true before the walk finishes, Analyze returns [ErrCanceled]
// and does not cache the partial result (spec.md §5 "Cancellation").
func (a *Analyzer) Analyze(ws *workspace.Workspace, path string, policy cache.RefreshPolicy, canceled CancelChecker) (*Model, error) {
	if policy == cache.RefreshLazy {
		if model, _, ok := a.table.Peek(path); ok {
			return model, nil
		}
	} else if cached := a.table.StateOf(path); cached != cache.StateAbsent {
		if model, ok := a.lookupIfCurrent(path); ok {
			return model, nil
		}
	}

	content, fresh, err := a.store.Read(path)
	if err != nil {
		return nil, err
	}

	b := &builder{
		ws:       ws,
		shallow:  a.shallow,
		config:   a.config,
		policy:   policy,
		canceled: canceled,
		visited:  map[string]bool{},
	}
	b.touch(path, fresh)

	model := b.build(path, content, fresh)
	if b.canceledFlag {
		return nil, ErrCanceled
	}
	a.table.Set(path, model.CompositeFreshness, model, cache.StateFull)
	return model, nil
}

// lookupIfCurrent returns the cached model for path if every file recorded
// in its composite freshness still reads at the same freshness.
func (a *Analyzer) lookupIfCurrent(path string) (*Model, bool) {
	cached, _, ok := a.table.Peek(path)
	if !ok || cached == nil {
		return nil, false
	}
	for _, entry := range cached.CompositeFreshness {
		_, fresh, err := a.store.Read(entry.Path)
		if err != nil || !fresh.Equal(entry.Freshness) {
			return nil, false
		}
	}
	return cached, true
}

// Invalidate drops path's cached model.
func (a *Analyzer) Invalidate(path string) {
	a.table.Delete(path)
}

// builder holds the mutable state threaded through one full-analysis pass:
// the scope arena, the path-visited set guarding against import cycles,
// and the running import and template-invocation depths.
type builder struct {
	ws      *workspace.Workspace
	shallow *shallow.Analyzer
	config  cache.Config
	policy  cache.RefreshPolicy

	model   *Model
	visited map[string]bool // import path-visited set (spec.md §4.5 "Cycle safety")
	// importDepth and templateDepth track the two independent recursion
	// limits spec.md §4.6 names (MaxImportDepth, MaxTemplateInvocationDepth);
	// an import chain and a template invocation chain never share a counter.
	importDepth   int
	templateDepth int
	composites []fileFreshness

	canceled     CancelChecker
	canceledFlag bool
}

func (b *builder) composite() CompositeFreshness { return CompositeFreshness(b.composites) }

func (b *builder) touch(path string, fresh fscache.Freshness) {
	b.composites = append(b.composites, fileFreshness{Path: path, Freshness: fresh})
}

func (b *builder) newScope(parent ScopeID, kind ScopeKind, span token.Span) ScopeID {
	id := ScopeID(len(b.model.Scopes))
	b.model.Scopes = append(b.model.Scopes, &Scope{
		ID: id, Parent: parent, Kind: kind, Span: span, Vars: map[string][]Definition{},
	})
	return id
}

func (b *builder) emit(kind EventKind, span token.Span, detail any) {
	b.model.events = append(b.model.events, Event{Kind: kind, Span: span, Detail: detail})
}

func (b *builder) diag(d diag.Diagnostic) {
	b.model.Diagnostics = append(b.model.Diagnostics, d)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

func (b *builder) build(path string, content []byte, fresh fscache.Freshness) *Model {
	file, perrs := parser.Parse(path, content, parser.WithComments())

	b.model = &Model{Path: path}
	for _, e := range perrs {
		b.diag(diag.New(diag.CodeParseError, token.Span{Start: e.Position(), End: e.Position()}, e.Error()))
	}

	root := b.newScope(NoScope, ScopeFile, token.Span{Start: file.Pos(), End: file.End()})
	b.model.RootScope = root

	b.visited[path] = true
	b.walkBlock(file.Stmts, root, dirOf(path))
	delete(b.visited, path)

	b.model.CompositeFreshness = b.composite()
	return b.model
}

// walkBlock processes a list of statements within scope, recursing into
// conditional branches (which merge into the enclosing scope rather than
// opening their own persistent scope). spec.md §4.5 step 2 says
// conditional branches are among the block constructs that open a scope,
// but also says "all branches merge into the enclosing scope"; this is
// reconciled by opening a transient ScopeConditionalBranch scope
// parented at scope purely so its own span is recorded, while resolving
// all lookups through to scope exactly as an ordinary child scope would).
func (b *builder) walkBlock(stmts []ast.Stmt, scope ScopeID, dir string) {
	for _, s := range stmts {
		if b.canceled != nil && b.canceled() {
			b.canceledFlag = true
			return
		}
		b.walkStmt(s, scope, dir)
	}
}

func (b *builder) walkStmt(s ast.Stmt, scope ScopeID, dir string) {
	switch n := s.(type) {
	case *ast.ImportStmt:
		b.handleImport(n, scope, dir)

	case *ast.AssignStmt:
		b.handleAssign(n, scope)

	case *ast.ConditionalStmt:
		span := token.Span{Start: n.Pos(), End: n.End()}
		b.emit(EventConditional, span, n)
		branch := b.newScope(scope, ScopeConditionalBranch, token.Span{Start: n.Body.Pos(), End: n.Body.End()})
		b.model.Scopes[branch].Vars = b.model.Scopes[scope].Vars // merge: share the map
		b.walkBlock(n.Body.List, scope, dir)
		switch e := n.Else.(type) {
		case *ast.ConditionalStmt:
			b.walkStmt(e, scope, dir)
		case *ast.BlockStmt:
			b.walkBlock(e.List, scope, dir)
		}

	case *ast.TemplateStmt:
		tr := TemplateRecord{
			Name:     n.Name.Unquoted(),
			NameSpan: token.Span{Start: n.Name.Pos(), End: n.Name.End()},
			BodySpan: token.Span{Start: n.Body.Pos(), End: n.Body.End()},
			bodyNode: n.Body,
		}
		b.model.Templates = append(b.model.Templates, tr)
		b.emit(EventTemplateDefined, tr.BodySpan, &b.model.Templates[len(b.model.Templates)-1])
		// Body not descended into here; only a later invocation enters it
		// (spec.md §3 invariant 3, §4.5 "Template handling").

	case *ast.CallStmt:
		b.handleCall(n, scope, dir)
	}
}

func (b *builder) handleImport(n *ast.ImportStmt, scope ScopeID, dir string) {
	span := token.Span{Start: n.Pos(), End: n.End()}
	raw := n.Path.Unquoted()
	resolved, ok := workspace.ResolveImportPath(b.ws, dir, raw)
	if !ok {
		b.diag(diag.Warning(diag.CodeImportResolutionError, span, "cannot resolve import \""+raw+"\""))
		return
	}
	b.importFile(raw, resolved, span, scope)
}

// importFile merges resolved's shallow summary into scope and transitively
// follows every import resolved's own file declares, so a cycle anywhere in
// the import graph reachable from the file under analysis is caught, not
// just a direct self-import (spec.md §4.5 "Cycle safety", scenario S3).
// b.visited stays marked for resolved for the full duration of this
// sub-tree walk, exactly as a DFS back-edge check requires.
func (b *builder) importFile(raw, resolved string, span token.Span, scope ScopeID) {
	if resolved == b.currentPrimaryPath() {
		return // self-import is a no-op, spec.md §4.5 "Cycle safety"
	}
	if b.visited[resolved] {
		b.diag(diag.New(diag.CodeCycleDetected, span, "import cycle detected at \""+raw+"\""))
		return
	}
	if b.importDepth >= b.maxImportDepth() {
		b.diag(diag.New(diag.CodeDepthExceeded, span, "import depth limit exceeded at \""+raw+"\""))
		return
	}

	summary, err := b.shallow.Analyze(b.ws, resolved, b.policy)
	if err != nil {
		b.diag(diag.Warning(diag.CodeIoError, span, "cannot read import \""+resolved+"\": "+err.Error()))
		return
	}
	b.touch(resolved, summary.Freshness)

	for _, a := range summary.Assignments {
		b.model.Scopes[scope].Vars[a.Name] = append(b.model.Scopes[scope].Vars[a.Name], Definition{Span: a.Span, Op: a.Op})
	}
	for _, t := range summary.Templates {
		b.model.Scopes[scope].Vars[t.Name] = append(b.model.Scopes[scope].Vars[t.Name], Definition{Span: t.NameSpan})
	}
	b.emit(EventImportResolved, span, summary)

	b.visited[resolved] = true
	b.importDepth++
	for _, sub := range summary.Imports {
		if !sub.Resolved {
			continue
		}
		b.importFile(sub.RawPath, sub.ResolvedPath, sub.Span, scope)
	}
	b.importDepth--
	delete(b.visited, resolved)
}

// currentPrimaryPath returns the path being analyzed: the first entry in
// composites is always the primary file (see build's initial touch call).
func (b *builder) currentPrimaryPath() string {
	if len(b.composites) == 0 {
		return ""
	}
	return b.composites[0].Path
}

func (b *builder) maxImportDepth() int {
	if b.config.MaxImportDepth > 0 {
		return b.config.MaxImportDepth
	}
	return 64
}

func (b *builder) maxTemplateDepth() int {
	if b.config.MaxTemplateInvocationDepth > 0 {
		return b.config.MaxTemplateInvocationDepth
	}
	return 64
}

func (b *builder) handleAssign(n *ast.AssignStmt, scope ScopeID) {
	span := token.Span{Start: n.Pos(), End: n.End()}
	rec := AssignmentRecord{
		ScopeID: scope, Name: n.Lhs.Name, Op: n.Op, IsAugmented: n.IsAugmented, Rhs: n.Rhs, Span: span,
	}
	b.model.Assignments = append(b.model.Assignments, rec)
	b.model.Scopes[scope].Vars[n.Lhs.Name] = append(b.model.Scopes[scope].Vars[n.Lhs.Name], Definition{Span: span, Op: n.Op})
	b.emit(EventAssignment, span, &b.model.Assignments[len(b.model.Assignments)-1])
	b.discoverLinksIn(n.Rhs, scope)
}

// handleCall dispatches a bare call statement: declare_args() blocks,
// builtin target declarations, template invocations, and any other
// function call (assert, print, set_defaults, forward_variables_from --
// SPEC_FULL.md: "recognized as ordinary function-calls, no special
// evaluation").
func (b *builder) handleCall(n *ast.CallStmt, scope ScopeID, dir string) {
	name := n.Call.Fun.Name

	if name == "declare_args" && n.Body != nil {
		inner := b.newScope(scope, ScopeDeclareArgs, token.Span{Start: n.Body.Pos(), End: n.Body.End()})
		b.walkBlock(n.Body.List, inner, dir)
		return
	}

	if n.Body != nil && len(n.Call.Args) >= 1 {
		b.handleTargetOrTemplateCall(n, name, scope, dir)
		return
	}

	for _, arg := range n.Call.Args {
		b.discoverLinksIn(arg, scope)
	}
}

func (b *builder) handleTargetOrTemplateCall(n *ast.CallStmt, name string, scope ScopeID, dir string) {
	targetName := ""
	if s, ok := n.Call.Args[0].(*ast.StringLit); ok {
		targetName = s.Unquoted()
	}

	bodySpan := token.Span{Start: n.Body.Pos(), End: n.Body.End()}
	rec := TargetRecord{
		Name: targetName, Type: name, DefiningScope: scope, BodySpan: bodySpan,
		Attrs: map[string]ast.Expr{},
	}

	inner := b.newScope(scope, ScopeTargetBody, bodySpan)

	if tmplIdx := b.findTemplate(name); tmplIdx >= 0 {
		rec.IsTemplate = true
		b.invokeTemplate(tmplIdx, targetName, n, inner, dir)
	} else if !builtinTargetKinds[name] {
		// Not a recognized builtin and not a declared template: still
		// treat it as a target-shaped call (GN allows templates imported
		// from elsewhere that this file's own shallow scan can't see),
		// walking its body so nested assignments aren't lost.
		b.walkBlock(n.Body.List, inner, dir)
	} else {
		b.walkBlock(n.Body.List, inner, dir)
	}

	for _, s := range n.Body.List {
		if a, ok := s.(*ast.AssignStmt); ok && attributeSlots[a.Lhs.Name] {
			rec.Attrs[a.Lhs.Name] = a.Rhs
		}
	}

	b.model.Targets = append(b.model.Targets, rec)
	b.emit(EventTargetDefined, bodySpan, &b.model.Targets[len(b.model.Targets)-1])
}

func (b *builder) findTemplate(name string) int {
	for i, t := range b.model.Templates {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// invokeTemplate enters a template's body in the scope of the invocation,
// per spec.md §4.5 "Template handling": each invocation is analyzed
// independently. The invocation's call-site body supplies the argument
// bindings; it is walked into parent, the invocation scope, and the
// template body gets its own child scope of parent, so the body's lookups
// reach those bindings through the parent chain.
func (b *builder) invokeTemplate(tmplIdx int, targetName string, call *ast.CallStmt, parent ScopeID, callerDir string) {
	if b.templateDepth >= b.maxTemplateDepth() {
		b.diag(diag.New(diag.CodeDepthExceeded, call.Span(), "template invocation depth limit exceeded"))
		return
	}
	b.templateDepth++
	defer func() { b.templateDepth-- }()

	tmpl := b.model.Templates[tmplIdx]
	tmplScope := b.newScope(parent, ScopeTemplateBody, tmpl.BodySpan)

	if targetName != "" {
		b.model.Scopes[tmplScope].Vars["target_name"] = []Definition{{Span: call.Span()}}
	}

	// Invocation-site assignments (the "arguments") are walked first so
	// they populate the invocation scope before the body reads them.
	for _, s := range call.Body.List {
		b.walkStmt(s, parent, callerDir)
	}

	if b.model.Templates[tmplIdx].Params == nil {
		b.model.Templates[tmplIdx].Params = freeVariables(tmpl)
	}

	if tmpl.bodyNode != nil {
		b.walkBlock(tmpl.bodyNode.List, tmplScope, callerDir)
	}
}

func (b *builder) discoverLinksIn(e ast.Expr, scope ScopeID) {
	switch n := e.(type) {
	case *ast.StringLit:
		if link, ok := links.Discover(b.ws, b.dirForScope(scope), n); ok {
			b.model.Links = append(b.model.Links, link)
			b.emit(EventLinkDiscovered, link.Span, link)
		}
	case *ast.ListExpr:
		for _, el := range n.Elems {
			b.discoverLinksIn(el, scope)
		}
	}
}

func (b *builder) dirForScope(ScopeID) string {
	return dirOf(b.model.Path)
}

// freeVariables scans a template body for identifiers read but not locally
// assigned, the implicit parameter-discovery strategy SPEC_FULL.md records
// as Open Question decision 2.
func freeVariables(tmpl TemplateRecord) []string {
	bound := map[string]bool{"target_name": true}
	var reads []string
	seen := map[string]bool{}

	body := tmpl.bodyNode
	if body == nil {
		return nil
	}

	ast.Inspect(body, func(n ast.Node) bool {
		if a, ok := n.(*ast.AssignStmt); ok {
			bound[a.Lhs.Name] = true
		}
		return true
	})
	ast.Inspect(body, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			if !bound[id.Name] && !predeclaredGlobals[id.Name] && !seen[id.Name] {
				seen[id.Name] = true
				reads = append(reads, id.Name)
			}
		}
		return true
	})
	return reads
}
