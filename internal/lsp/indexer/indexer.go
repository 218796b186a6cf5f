// Package indexer implements the background indexer (spec.md §4.8): a
// one-shot walk of the workspace that populates the shallow cache for
// every `.gn`/`.gni` file, skipping build-output directories, so
// workspace-wide queries (find-references, workspace symbols) don't pay
// for a cold cache. Bounded parallelism is provided by
// golang.org/x/sync/semaphore, the same concurrency-limiting primitive the
// teacher's own module-fetch pipeline (internal/mod) uses to cap
// simultaneous network/disk work.
package indexer

import (
	"context"
	"io/fs"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/cache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/full"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/shallow"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

// WalkFS abstracts directory enumeration so tests can substitute an
// in-memory tree (see internal/lsp/fixture) instead of a real filesystem.
// It matches the shape of io/fs.WalkDir's callback-driven API.
type WalkFS interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// Indexer walks a workspace root and shallow-analyzes every GN source file
// found, with up to maxConcurrency files in flight at once. When
// config.ShallowForBackground is false, each file also gets a full analysis
// pass right after its shallow one, so workspace-wide queries that need
// scopes (not just shallow facts) are warm by the time [Indexer.Run]
// returns (spec.md §4.8, §4.6 "ShallowForBackground").
type Indexer struct {
	walker         WalkFS
	shallow        *shallow.Analyzer
	full           *full.Analyzer
	config         cache.Config
	maxConcurrency int64

	mu      sync.RWMutex
	ready   bool
	indexed int64
	skipped int64
}

// New creates an Indexer. maxConcurrency <= 0 defaults to 4.
func New(walker WalkFS, shallowAnalyzer *shallow.Analyzer, fullAnalyzer *full.Analyzer, config cache.Config, maxConcurrency int64) *Indexer {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Indexer{
		walker:         walker,
		shallow:        shallowAnalyzer,
		full:           fullAnalyzer,
		config:         config,
		maxConcurrency: maxConcurrency,
	}
}

// Ready reports whether the most recent [Indexer.Run] has completed.
func (idx *Indexer) Ready() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.ready
}

// Stats returns how many files were indexed and how many directories were
// skipped as build output, from the most recent run.
func (idx *Indexer) Stats() (indexed, skipped int64) {
	return atomic.LoadInt64(&idx.indexed), atomic.LoadInt64(&idx.skipped)
}

// isOutputDirChecker abstracts workspace.IsBuildOutputDir so indexer does
// not need to depend directly on fscache.Store for this one check; callers
// pass workspace.IsBuildOutputDir bound to their Store.
type isOutputDirChecker func(dir string) bool

// Run walks ws.Root (or root, if ws is nil in single-file mode callers
// never invoke Run), shallow-analyzing every *.gn/*.gni file and skipping
// any directory isOutput reports true for. It returns ctx.Err() if ctx is
// canceled mid-walk. The cooperative yield point is the per-file
// semaphore acquisition, checked between every file (spec.md §4.8,
// §5 "cooperative preemption").
func (idx *Indexer) Run(ctx context.Context, ws *workspace.Workspace, isOutput isOutputDirChecker) error {
	idx.mu.Lock()
	idx.ready = false
	idx.mu.Unlock()
	atomic.StoreInt64(&idx.indexed, 0)
	atomic.StoreInt64(&idx.skipped, 0)

	sem := semaphore.NewWeighted(idx.maxConcurrency)
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	walkErr := idx.walker.WalkDir(ws.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if isOutput(p) {
				atomic.AddInt64(&idx.skipped, 1)
				return fs.SkipDir
			}
			return nil
		}
		if !isGNSource(p) {
			return nil
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			defer sem.Release(1)
			if _, err := idx.shallow.Analyze(ws, file, cache.RefreshEager); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			if idx.full != nil && !idx.config.ShallowForBackground {
				if _, err := idx.full.Analyze(ws, file, cache.RefreshEager, nil); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					return
				}
			}
			atomic.AddInt64(&idx.indexed, 1)
		}(p)
		return nil
	})

	wg.Wait()

	idx.mu.Lock()
	idx.ready = true
	idx.mu.Unlock()

	if walkErr != nil {
		return walkErr
	}
	return firstErr
}

func isGNSource(p string) bool {
	base := path.Base(p)
	return strings.HasSuffix(base, ".gn") || strings.HasSuffix(base, ".gni")
}
