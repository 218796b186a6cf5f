// Package links implements link discovery (spec.md §4.6): recognizing
// file-path and target-label references inside string literals so the full
// analyzer can offer go-to-definition/go-to-file navigation on them. This
// mirrors the teacher's own import-path recognition in cue/ast's import
// spec handling, generalized to GN's richer label grammar (absolute,
// same-directory, and relative forms).
package links

import (
	"strings"

	"github.com/shometownstd7300-pixel/gn-language-server/gn/ast"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/token"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

// Kind classifies a discovered link.
type Kind int

const (
	// KindLabel is a build-target label, "//dir:name", ":name", or
	// "dir:name".
	KindLabel Kind = iota
	// KindPath is a bare file/directory reference with no ':name' suffix.
	KindPath
)

// Link is one recognized reference inside a string literal.
type Link struct {
	Kind Kind
	// Span covers the reference text within the literal, including its
	// surrounding quotes (spec.md §4.6: "spans are reported in source
	// coordinates, not content-relative offsets").
	Span token.Span
	// Text is the unquoted reference text, e.g. "//build/config:foo".
	Text string
	// ResolvedDir is the reference resolved against the workspace root or
	// the current file's directory, when resolvable: for a label, its
	// directory portion; for a path, the whole path. Source-absolute
	// references require a known [workspace.Workspace].
	ResolvedDir string
	// Resolved reports whether ResolvedDir could be computed. An
	// unresolved link is retained as a best-effort candidate rather than
	// discarded (spec.md §4.6, §7 graceful degradation).
	Resolved bool
}

// Discover examines a single string literal and, if its content looks like
// a label or path reference, returns the corresponding [Link]. It returns
// ok == false for literals that are plainly not references (e.g. compiler
// flag strings, arbitrary free text). Heuristically, anything containing
// whitespace or starting with '-' is rejected, matching how GN's own
// visibility/deps/sources lists are always label-or-path-shaped strings
// with no embedded spaces.
func Discover(ws *workspace.Workspace, currentFileDir string, lit *ast.StringLit) (Link, bool) {
	text := lit.Unquoted()
	if text == "" || strings.ContainsAny(text, " \t\n") || strings.HasPrefix(text, "-") {
		return Link{}, false
	}

	span := token.Span{Start: lit.Pos(), End: lit.End()}

	if strings.HasPrefix(text, ":") || strings.Contains(text, ":") {
		lbl := workspace.ParseLabel(text)
		dir, ok := workspace.ResolveLabel(ws, currentFileDir, lbl)
		return Link{Kind: KindLabel, Span: span, Text: text, ResolvedDir: dir, Resolved: ok}, true
	}

	if looksLikePath(text) {
		resolved, ok := workspace.ResolveImportPath(ws, currentFileDir, text)
		return Link{Kind: KindPath, Span: span, Text: text, ResolvedDir: resolved, Resolved: ok}, true
	}

	return Link{}, false
}

// looksLikePath applies the same conservative heuristic cue/ast's import
// path recognizer uses: a reference is path-shaped if it contains a slash
// or ends in a known GN source-file suffix.
func looksLikePath(text string) bool {
	if strings.Contains(text, "/") {
		return true
	}
	for _, suffix := range []string{".gn", ".gni", ".cc", ".h", ".cpp", ".c", ".py"} {
		if strings.HasSuffix(text, suffix) {
			return true
		}
	}
	return false
}

// DiscoverAll walks every string literal within exprs (non-recursively
// into nested scopes; callers pass already-flattened lists such as a
// `sources` or `deps` assignment's list elements) and returns every
// resolvable-or-candidate link found.
func DiscoverAll(ws *workspace.Workspace, currentFileDir string, exprs []ast.Expr) []Link {
	var links []Link
	for _, e := range exprs {
		lit, ok := e.(*ast.StringLit)
		if !ok {
			continue
		}
		if link, ok := Discover(ws, currentFileDir, lit); ok {
			links = append(links, link)
		}
	}
	return links
}
