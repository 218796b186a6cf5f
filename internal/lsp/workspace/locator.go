// Package workspace implements the workspace locator (spec.md §4.3, §6
// "Workspace conventions"): finding the workspace root from any file path,
// reading the build-config entry point named inside its dot-file marker,
// and resolving source-absolute and relative labels/import paths against
// that root. It is a leaf component: it depends only on the parser, the
// same way the teacher's own module/workspace-root detection
// (cache/workspace.go's cue.mod/module.cue walk) depends only on parsing,
// never on the shallow or full analyzer.
package workspace

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/shometownstd7300-pixel/gn-language-server/gn/ast"
	"github.com/shometownstd7300-pixel/gn-language-server/gn/parser"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
)

// DotFileName is the conventional marker file identifying a workspace root
// (spec.md §6: "the nearest ancestor directory containing a file named with
// the build-system's dot marker").
const DotFileName = ".gn"

// BuildArgFileName is the conventional marker identifying a build-output
// directory, which the background indexer must skip (spec.md §4.8, §6).
const BuildArgFileName = "args.gn"

// RootMarkerPrefix begins every source-absolute label (spec.md §6).
const RootMarkerPrefix = "//"

// Workspace holds a located workspace root and its build-config entry
// point. A nil *Workspace (see [ErrNotFound]) means single-file mode:
// cross-file resolution still works for relative imports, but
// source-absolute labels cannot be resolved (spec.md §4.3).
type Workspace struct {
	// Root is the absolute, slash-separated directory containing the
	// dot-file marker.
	Root string
	// BuildConfigPath is the absolute path named by `buildconfig = "..."`
	// in the dot-file, or "" if it could not be determined.
	BuildConfigPath string
	// DotFilePath is the absolute path of the dot-file itself.
	DotFilePath string
}

// ErrNotFound is returned by [Locate] when no ancestor of start contains a
// dot-file marker. Per spec.md §4.3/§7 ("WorkspaceNotFound... not fatal"),
// callers degrade to single-file mode rather than treating this as fatal.
type ErrNotFound struct{ Start string }

func (e *ErrNotFound) Error() string {
	return "no workspace root found as an ancestor of " + e.Start
}

// Locate walks upward from the directory containing filePath looking for a
// DotFileName marker, then parses it (as ordinary GN source; the dot-file
// has the same grammar as any other file) to extract its `buildconfig`
// assignment.
func Locate(store *fscache.Store, filePath string) (*Workspace, error) {
	dir := filepath.ToSlash(filepath.Dir(filePath))
	for {
		dotFile := path.Join(dir, DotFileName)
		content, _, err := store.Read(dotFile)
		if err == nil {
			ws := &Workspace{Root: dir, DotFilePath: dotFile}
			ws.BuildConfigPath = parseBuildConfig(dir, content)
			return ws, nil
		}
		parent := path.Dir(dir)
		if parent == dir {
			return nil, &ErrNotFound{Start: filePath}
		}
		dir = parent
	}
}

// parseBuildConfig extracts the `buildconfig = "..."` assignment from a
// dot-file's content, resolving it against root. A missing or malformed
// assignment yields "".
func parseBuildConfig(root string, content []byte) string {
	file, _ := parser.Parse(DotFileName, content)
	for _, stmt := range file.Stmts {
		assign, ok := stmt.(*ast.AssignStmt)
		if !ok || assign.Lhs.Name != "buildconfig" {
			continue
		}
		lit, ok := assign.Rhs.(*ast.StringLit)
		if !ok {
			continue
		}
		resolved, ok := ResolveSourceAbsolute(root, lit.Unquoted())
		if ok {
			return resolved
		}
	}
	return ""
}

// ResolveSourceAbsolute resolves a "//"-prefixed path (with or without a
// trailing ":name" label suffix. The suffix, if present, is dropped since
// this function resolves files, not labels) against root.
func ResolveSourceAbsolute(root, ref string) (string, bool) {
	if !strings.HasPrefix(ref, RootMarkerPrefix) {
		return "", false
	}
	rel := strings.TrimPrefix(ref, RootMarkerPrefix)
	if i := strings.IndexByte(rel, ':'); i >= 0 {
		rel = rel[:i]
	}
	return path.Join(root, rel), true
}

// ResolveImportPath resolves an import()'s raw reference string to an
// absolute path. A "//"-prefixed reference is source-absolute and resolved
// against ws (if known); otherwise it is resolved relative to
// currentFileDir (spec.md §6).
//
// ws may be nil (single-file / WorkspaceNotFound degradation): in that
// case, source-absolute references cannot be resolved and ok is false.
func ResolveImportPath(ws *Workspace, currentFileDir, ref string) (resolved string, ok bool) {
	if strings.HasPrefix(ref, RootMarkerPrefix) {
		if ws == nil {
			return "", false
		}
		return ResolveSourceAbsolute(ws.Root, ref)
	}
	return path.Join(filepath.ToSlash(currentFileDir), ref), true
}

// Label is a parsed GN label of the form `path:name`, where `:name` may be
// absent, defaulting to the last path segment (spec.md §6).
type Label struct {
	// Dir is the path portion, still in its original form: "//a/b",
	// ":name"-only labels have Dir == "".
	Dir string
	// Name is the target name; if the source omitted ":name", Name is
	// derived from the last segment of Dir.
	Name string
	// NameExplicit records whether ":name" was present in source.
	NameExplicit bool
}

// ParseLabel parses s into a [Label]. It does not resolve Dir to an
// absolute path; call [ResolveLabel] for that.
func ParseLabel(s string) Label {
	dir, name, found := strings.Cut(s, ":")
	lbl := Label{Dir: dir, NameExplicit: found}
	if found {
		lbl.Name = name
	} else {
		lbl.Name = lastSegment(dir)
	}
	return lbl
}

func lastSegment(p string) string {
	p = strings.TrimSuffix(p, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ResolveLabel resolves lbl's directory portion to an absolute directory,
// given the directory of the file the label appeared in. A bare ":name"
// label (Dir == "") resolves to currentFileDir itself.
func ResolveLabel(ws *Workspace, currentFileDir string, lbl Label) (dir string, ok bool) {
	if lbl.Dir == "" {
		return filepath.ToSlash(currentFileDir), true
	}
	if strings.HasPrefix(lbl.Dir, RootMarkerPrefix) {
		if ws == nil {
			return "", false
		}
		return path.Join(ws.Root, strings.TrimPrefix(lbl.Dir, RootMarkerPrefix)), true
	}
	return path.Join(filepath.ToSlash(currentFileDir), lbl.Dir), true
}

// IsBuildOutputDir reports whether dir (identified by the presence of a
// BuildArgFileName at its root) should be excluded from indexing (spec.md
// §4.8, §6).
func IsBuildOutputDir(store *fscache.Store, dir string) bool {
	_, _, err := store.Read(path.Join(dir, BuildArgFileName))
	return err == nil
}
