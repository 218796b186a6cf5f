// Package gnls is the external interface surface of the GN language
// server's analysis core (spec.md §6). Everything outside this package
// (wire protocol framing, IDE feature providers, the formatter process,
// the editor extension host) is an external collaborator that only ever
// calls through here; none of it is implemented by this module (spec.md
// §1 Non-goals/Out-of-scope).
package gnls

import (
	"context"
	"fmt"

	"github.com/shometownstd7300-pixel/gn-language-server/gn/ast"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/token"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/cache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/diag"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/full"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/indexer"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/requestid"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/shallow"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

// Configuration is the server-wide configuration surface (spec.md §6).
type Configuration struct {
	// WorkspaceRootOverride, if non-empty, pre-empts dot-file auto-detection.
	WorkspaceRootOverride string
	// ExperimentalWorkspaceSymbols is stored on the Server but read by no
	// component; the indexer collects no global symbol index.
	ExperimentalWorkspaceSymbols bool
	// ExperimentalUndefinedVariableAnalysis, if true, has the full analyzer
	// emit diagnostics for reads with no reachable definition.
	ExperimentalUndefinedVariableAnalysis bool
	// BackgroundIndexing disables the workspace walk entirely when false.
	BackgroundIndexing bool
}

// FileEventKind classifies a [Server.NotifyFileEvent] call.
type FileEventKind int

const (
	FileCreated FileEventKind = iota
	FileChanged
	FileDeleted
)

// DocumentEventKind classifies a [Server.NotifyDocumentEvent] call.
type DocumentEventKind int

const (
	DocumentOpen DocumentEventKind = iota
	DocumentChange
	DocumentClose
	DocumentSave
)

// NotAWorkspaceFileError is returned by [Server.GetAnalyzedFile] for a URI
// that does not correspond to a file the store or filesystem can resolve.
type NotAWorkspaceFileError struct{ URI string }

func (e *NotAWorkspaceFileError) Error() string {
	return fmt.Sprintf("not a workspace file: %s", e.URI)
}

// Server ties every analysis-core component together behind the four
// operations spec.md §6 names. It owns no network or protocol state --
// callers (the external wire-protocol layer) own the request/response
// framing and simply call through to these methods.
type Server struct {
	config Configuration

	store    *fscache.Store
	shallow  *shallow.Analyzer
	full     *full.Analyzer
	indexer  *indexer.Indexer
	requests requestid.CancelSet
	gens     requestid.Tracker

	ws *workspace.Workspace
}

// NewServer wires up a Server backed by diskReader (pass nil for the real
// filesystem) and walker (the background indexer's directory enumerator;
// pass nil to disable background indexing regardless of config).
func NewServer(config Configuration, diskReader fscache.DiskReader, walker indexer.WalkFS) *Server {
	cacheConfig := cache.DefaultConfig()
	store := fscache.NewStore(diskReader)
	shallowAnalyzer := shallow.NewAnalyzer(store)
	fullAnalyzer := full.NewAnalyzer(store, shallowAnalyzer, cacheConfig)

	s := &Server{
		config:  config,
		store:   store,
		shallow: shallowAnalyzer,
		full:    fullAnalyzer,
	}
	if walker != nil {
		s.indexer = indexer.New(walker, shallowAnalyzer, fullAnalyzer, cacheConfig, 8)
	}
	return s
}

// resolveWorkspace locates (and caches) the workspace root for path,
// honoring WorkspaceRootOverride. A nil result means single-file mode
// (spec.md §4.3, §7 WorkspaceNotFound, "not fatal").
func (s *Server) resolveWorkspace(path string) *workspace.Workspace {
	if s.ws != nil {
		return s.ws
	}
	if s.config.WorkspaceRootOverride != "" {
		s.ws = &workspace.Workspace{Root: s.config.WorkspaceRootOverride}
		return s.ws
	}
	ws, err := workspace.Locate(s.store, path)
	if err != nil {
		return nil // WorkspaceNotFound: degrade to single-file mode
	}
	s.ws = ws
	return s.ws
}

// GetAnalyzedFile returns the full semantic model for uri, using config to
// decide refresh behavior (spec.md §6 get-analyzed-file). tok identifies
// this request for cancellation purposes: a concurrent [Server.CancelRequest]
// call with the same token causes the in-flight walk to stop early and
// return [full.ErrCanceled] instead of a model (spec.md §5 "cooperative
// preemption"). Callers that don't need cancellation can pass
// [requestid.New]'s result and simply never cancel it.
func (s *Server) GetAnalyzedFile(uri string, tok requestid.Token, config cache.Config) (*full.Model, error) {
	path := uriToPath(uri)
	if path == "" {
		return nil, &NotAWorkspaceFileError{URI: uri}
	}
	ws := s.resolveWorkspace(path)
	defer s.requests.Clear(tok)
	model, err := s.full.Analyze(ws, path, config.RefreshPolicy, func() bool {
		return s.requests.IsCanceled(tok)
	})
	if err != nil {
		return nil, err
	}
	if s.config.ExperimentalUndefinedVariableAnalysis {
		annotateUndefinedReads(model)
	}
	return model, nil
}

// CancelRequest asks the in-flight [Server.GetAnalyzedFile] call identified
// by tok to stop as soon as it reaches its next cooperative yield point.
// Canceling a token with no matching in-flight request, or one that has
// already finished, is a harmless no-op.
func (s *Server) CancelRequest(tok requestid.Token) {
	s.requests.Cancel(tok)
}

// GetShallow returns the shallow summary for path (spec.md §6 get-shallow).
// Under config.RefreshPolicy == [cache.RefreshLazy], a cached summary is
// returned immediately without re-stating path first, if one exists;
// under [cache.RefreshEager], Analyze always reconciles with the current
// freshness token first (SPEC_FULL.md Open Question decision 1).
func (s *Server) GetShallow(path string, config cache.Config) (*shallow.Result, error) {
	ws := s.resolveWorkspace(path)
	return s.shallow.Analyze(ws, path, config.RefreshPolicy)
}

// AwaitIndexing blocks until the background indexer has visited every file
// it will visit for the current generation (spec.md §6 await-indexing).
func (s *Server) AwaitIndexing(ctx context.Context) error {
	if s.indexer == nil || !s.config.BackgroundIndexing {
		return nil
	}
	ws := s.ws
	if ws == nil {
		return nil // single-file mode: nothing to index
	}
	gen := s.gens.Begin()
	err := s.indexer.Run(ctx, ws, func(dir string) bool {
		return workspace.IsBuildOutputDir(s.store, dir)
	})
	s.gens.Complete(gen)
	return err
}

// NotifyFileEvent informs the server of an out-of-band filesystem change
// (spec.md §6 notify-file-event).
func (s *Server) NotifyFileEvent(path string, kind FileEventKind) {
	s.store.WatchNotification(path)
	s.shallow.Invalidate(path)
	s.full.Invalidate(path)
}

// NotifyDocumentEvent informs the server of an editor buffer lifecycle
// event (spec.md §6 notify-document-event).
func (s *Server) NotifyDocumentEvent(uri string, version int64, kind DocumentEventKind, text []byte) {
	path := uriToPath(uri)
	switch kind {
	case DocumentOpen:
		s.store.Open(path, version, text)
	case DocumentChange:
		s.store.Update(path, version, text)
	case DocumentClose:
		s.store.Close(path)
	case DocumentSave:
		// Saving doesn't change the buffer's content tracked by the store;
		// it's a no-op here since SourceBuffer freshness already reflects
		// the live text (spec.md §4.1).
	}
	s.shallow.Invalidate(path)
	s.full.Invalidate(path)
}

// uriToPath strips a "file://" scheme, if present, down to a plain path.
// A richer URI scheme is an external-collaborator concern (spec.md §1); in
// this core, "uri" and "path" are the same string once unwrapped.
func uriToPath(uri string) string {
	const scheme = "file://"
	if len(uri) >= len(scheme) && uri[:len(scheme)] == scheme {
		return uri[len(scheme):]
	}
	return uri
}

// annotateUndefinedReads implements the experimental-undefined-variable-
// analysis configuration flag: every identifier read within model's scopes
// that resolves to no definition and is not one of GN's predeclared
// globals gets a diagnostic (SPEC_FULL.md Open Question decision 3).
//
// This walks the assignment right-hand-sides already recorded on the
// model; a full read-site enumeration would require re-walking every
// expression tree, which the event stream does not retain verbatim, so
// this pass is deliberately conservative rather than exhaustive.
func annotateUndefinedReads(model *full.Model) {
	for _, a := range model.Assignments {
		checkExprForUndefined(model, a.ScopeID, a.Rhs)
	}
}

func checkExprForUndefined(model *full.Model, scope full.ScopeID, e ast.Expr) {
	switch n := e.(type) {
	case *ast.Ident:
		if predeclaredGlobals[n.Name] {
			return
		}
		if len(model.Lookup(scope, n.Name)) == 0 {
			model.Diagnostics = append(model.Diagnostics, diag.Warning(
				diag.Code("UndefinedVariable"),
				token.Span{Start: n.Pos(), End: n.End()},
				"read of undefined variable \""+n.Name+"\"",
			))
		}
	case *ast.ListExpr:
		for _, el := range n.Elems {
			checkExprForUndefined(model, scope, el)
		}
	case *ast.BinaryExpr:
		checkExprForUndefined(model, scope, n.X)
		checkExprForUndefined(model, scope, n.Y)
	case *ast.UnaryExpr:
		checkExprForUndefined(model, scope, n.X)
	case *ast.AccessorExpr:
		checkExprForUndefined(model, scope, n.X)
	}
}

// predeclaredGlobals mirrors the same whitelist internal/lsp/full applies
// to template-parameter discovery (SPEC_FULL.md Open Question decision 3).
var predeclaredGlobals = map[string]bool{
	"target_name": true, "target_out_dir": true, "target_gen_dir": true,
	"root_out_dir": true, "root_gen_dir": true, "root_build_dir": true,
	"default_toolchain": true, "current_toolchain": true,
	"current_os": true, "current_cpu": true, "host_os": true, "host_cpu": true,
	"target_os": true, "target_cpu": true, "python_path": true,
}
