package indexer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-quicktest/qt"

	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/cache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fixture"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/full"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/indexer"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/shallow"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

// countingReader wraps a fixture.Workspace and records every path the store
// actually reads through it, so the test can assert a skipped directory's
// files were never read at all rather than merely absent from the final
// cache (which a lazily-recomputed cache could also produce).
type countingReader struct {
	*fixture.Workspace
	mu    sync.Mutex
	reads map[string]int
}

func newCountingReader(ws *fixture.Workspace) *countingReader {
	return &countingReader{Workspace: ws, reads: map[string]int{}}
}

func (r *countingReader) ReadFile(p string) ([]byte, time.Time, int64, error) {
	r.mu.Lock()
	r.reads[p]++
	r.mu.Unlock()
	return r.Workspace.ReadFile(p)
}

// TestIndexerSkipsBuildOutputDirectory covers spec scenario S6: a directory
// marked by args.gn is never descended into, and none of its files are
// shallow-analyzed.
func TestIndexerSkipsBuildOutputDirectory(t *testing.T) {
	fs := fixture.Parse(`
-- .gn --
buildconfig = "//build/config/BUILDCONFIG.gn"
-- BUILD.gn --
x = 1
-- out/Debug/args.gn --
target_os = "linux"
-- out/Debug/BUILD.gn --
y = 2
`)
	reader := newCountingReader(fs)
	store := fscache.NewStore(reader)
	shallowAnalyzer := shallow.NewAnalyzer(store)
	config := cache.DefaultConfig()
	fullAnalyzer := full.NewAnalyzer(store, shallowAnalyzer, config)
	idx := indexer.New(fs, shallowAnalyzer, fullAnalyzer, config, 4)

	root, err := workspace.Locate(store, "BUILD.gn")
	qt.Assert(t, qt.IsNil(err))

	err = idx.Run(context.Background(), root, func(dir string) bool {
		return workspace.IsBuildOutputDir(store, dir)
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(idx.Ready()))

	indexed, skipped := idx.Stats()
	qt.Assert(t, qt.Equals(indexed, int64(2))) // ".gn" and "BUILD.gn"
	qt.Assert(t, qt.IsTrue(skipped >= 1))

	reader.mu.Lock()
	_, sawSkippedFile := reader.reads["out/Debug/BUILD.gn"]
	reader.mu.Unlock()
	qt.Assert(t, qt.IsTrue(!sawSkippedFile))
}

// TestIndexerShallowForBackgroundFalseWarmsFullCache covers spec.md §4.6's
// ShallowForBackground knob: when it is false, the indexer's pass leaves a
// full model cached too, so a later [full.Analyzer.Analyze] call for the
// same file and policy doesn't need to recompute anything.
func TestIndexerShallowForBackgroundFalseWarmsFullCache(t *testing.T) {
	fs := fixture.Parse(`
-- .gn --
buildconfig = "//build/config/BUILDCONFIG.gn"
-- BUILD.gn --
x = 1
`)
	store := fscache.NewStore(fs)
	shallowAnalyzer := shallow.NewAnalyzer(store)
	config := cache.DefaultConfig()
	config.ShallowForBackground = false
	fullAnalyzer := full.NewAnalyzer(store, shallowAnalyzer, config)
	idx := indexer.New(fs, shallowAnalyzer, fullAnalyzer, config, 4)

	root, err := workspace.Locate(store, "BUILD.gn")
	qt.Assert(t, qt.IsNil(err))

	err = idx.Run(context.Background(), root, func(dir string) bool {
		return workspace.IsBuildOutputDir(store, dir)
	})
	qt.Assert(t, qt.IsNil(err))

	// Change the file on disk: a lazy Analyze only still sees one
	// assignment if the indexer's pass left a full model cached.
	fs.Put("BUILD.gn", []byte("x = 1\ny = 2\n"))
	store.WatchNotification("BUILD.gn")

	model, err := fullAnalyzer.Analyze(root, "BUILD.gn", cache.RefreshLazy, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(len(model.Assignments) == 1))
}
