// Package fixture decodes a txtar archive into an in-memory file tree, for
// use as a [fscache.DiskReader] and [indexer.WalkFS] across this module's
// tests. This mirrors the teacher's own workspace integration tests
// (cmd/cue/cmd/integration/workspace), which encode a whole multi-file
// workspace as a single txtar string rather than writing real files to
// disk for every test case.
package fixture

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/tools/txtar"

	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
)

// Workspace is an in-memory file tree decoded from a txtar archive.
type Workspace struct {
	files map[string][]byte
	// modTime is fixed for every file, since txtar carries no timestamps;
	// freshness comparisons only need it to be stable, not realistic.
	modTime time.Time
}

// Parse decodes archive text into a Workspace. Each txtar file's name is
// used verbatim as its path, matching the convention cue-lang-cue's own
// workspace fixtures use (root-relative, slash-separated, no leading "/").
func Parse(archive string) *Workspace {
	a := txtar.Parse([]byte(archive))
	ws := &Workspace{files: make(map[string][]byte, len(a.Files)), modTime: fixedModTime}
	for _, f := range a.Files {
		ws.files[normalize(f.Name)] = f.Data
	}
	return ws
}

// fixedModTime is an arbitrary, fixed point in time shared by every
// fixture file, so two reads of the same unmodified fixture always compare
// freshness-equal.
var fixedModTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func normalize(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// ReadFile implements [fscache.DiskReader].
func (w *Workspace) ReadFile(p string) ([]byte, time.Time, int64, error) {
	content, ok := w.files[normalize(p)]
	if !ok {
		return nil, time.Time{}, 0, fs.ErrNotExist
	}
	return content, w.modTime, int64(len(content)), nil
}

var _ fscache.DiskReader = (*Workspace)(nil)

// Put adds or overwrites a file, for tests that want to simulate an edit
// after the initial archive was parsed.
func (w *Workspace) Put(p string, content []byte) {
	w.files[normalize(p)] = content
}

// Paths returns every file path in the workspace, sorted.
func (w *Workspace) Paths() []string {
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// WalkDir implements [indexer.WalkFS] over the in-memory tree: it
// synthesizes directory entries for every path prefix so a caller skipping
// "build output" directories (identified by the presence of a marker file)
// still sees directory nodes to inspect.
func (w *Workspace) WalkDir(root string, fn fs.WalkDirFunc) error {
	root = normalize(root)
	dirs := map[string]bool{root: true}
	for _, p := range w.Paths() {
		if root != "" && !strings.HasPrefix(p, root+"/") && p != root {
			continue
		}
		for dir := path.Dir(p); dir != "." && dir != root && strings.HasPrefix(dir, root); dir = path.Dir(dir) {
			dirs[dir] = true
			if dir == "." {
				break
			}
		}
	}

	var all []string
	for d := range dirs {
		all = append(all, d)
	}
	sort.Strings(all)

	visited := map[string]bool{}
	var walk func(dir string) error
	walk = func(dir string) error {
		if visited[dir] {
			return nil
		}
		visited[dir] = true
		if err := fn(dir, dirEntry{name: path.Base(dir), isDir: true}, nil); err != nil {
			if err == fs.SkipDir {
				return nil
			}
			return err
		}
		for _, p := range w.Paths() {
			pdir := path.Dir(p)
			if pdir == "." {
				pdir = "" // top-level entries live under the normalized root ""
			}
			if pdir != dir {
				continue
			}
			if err := fn(p, dirEntry{name: path.Base(p), isDir: false}, nil); err != nil {
				return err
			}
		}
		for _, d := range all {
			ddir := path.Dir(d)
			if ddir == "." {
				ddir = ""
			}
			if ddir == dir && d != dir {
				if err := walk(d); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(root)
}

type dirEntry struct {
	name  string
	isDir bool
}

func (e dirEntry) Name() string               { return e.name }
func (e dirEntry) IsDir() bool                { return e.isDir }
func (e dirEntry) Type() fs.FileMode          { return 0 }
func (e dirEntry) Info() (fs.FileInfo, error) { return nil, fs.ErrInvalid }
