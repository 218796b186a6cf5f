package full_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/cache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/diag"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fixture"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/full"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/links"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/shallow"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

func newAnalyzer(ws *fixture.Workspace) (*fscache.Store, *full.Analyzer) {
	store := fscache.NewStore(ws)
	shallowAnalyzer := shallow.NewAnalyzer(store)
	return store, full.NewAnalyzer(store, shallowAnalyzer, cache.DefaultConfig())
}

// TestGotoDefinitionReturnsBothConditionalBranches covers spec scenario S1:
// both branches of an if-statement are live, and a lookup at the enclosing
// scope returns every assignment site, in source order.
func TestGotoDefinitionReturnsBothConditionalBranches(t *testing.T) {
	ws := fixture.Parse(`
-- .gn --
buildconfig = "//build/config/BUILDCONFIG.gn"
-- a/BUILD.gn --
x = 1
if (true) { x = 2 }
`)
	store, analyzer := newAnalyzer(ws)
	root, err := workspace.Locate(store, "a/BUILD.gn")
	qt.Assert(t, qt.IsNil(err))

	model, err := analyzer.Analyze(root, "a/BUILD.gn", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))

	defs := model.Lookup(model.RootScope, "x")
	qt.Assert(t, qt.Equals(len(defs), 2))
	qt.Assert(t, qt.IsTrue(defs[0].Span.Start.Offset() < defs[1].Span.Start.Offset()))
}

// TestImportCycleYieldsDiagnosticAndNonEmptyScope covers spec scenario S3:
// a back-edge import cycle must not hang analysis, must be reported as
// CycleDetected, and the caller's scope must still be populated.
func TestImportCycleYieldsDiagnosticAndNonEmptyScope(t *testing.T) {
	ws := fixture.Parse(`
-- .gn --
buildconfig = "//build/config/BUILDCONFIG.gn"
-- a.gni --
import("//b.gni")
x = 1
-- b.gni --
import("//a.gni")
y = 2
-- c.gni --
import("//a.gni")
`)
	store, analyzer := newAnalyzer(ws)
	root, err := workspace.Locate(store, "c.gni")
	qt.Assert(t, qt.IsNil(err))

	model, err := analyzer.Analyze(root, "c.gni", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))

	found := false
	for _, d := range model.Diagnostics {
		if d.Code == diag.CodeCycleDetected {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
	qt.Assert(t, qt.IsTrue(len(model.Scopes[model.RootScope].Vars) > 0))
}

// TestTargetRecordCollectsAttributesAndLinks covers spec scenario S4.
func TestTargetRecordCollectsAttributesAndLinks(t *testing.T) {
	ws := fixture.Parse(`
-- .gn --
buildconfig = "//build/config/BUILDCONFIG.gn"
-- BUILD.gn --
source_set("lib") {
  sources = ["foo.cc"]
  deps = [":other"]
}
`)
	store, analyzer := newAnalyzer(ws)
	root, err := workspace.Locate(store, "BUILD.gn")
	qt.Assert(t, qt.IsNil(err))

	model, err := analyzer.Analyze(root, "BUILD.gn", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.Equals(len(model.Targets), 1))
	target := model.Targets[0]
	qt.Assert(t, qt.Equals(target.Name, "lib"))
	qt.Assert(t, qt.Equals(target.Type, "source_set"))
	_, hasSources := target.Attrs["sources"]
	_, hasDeps := target.Attrs["deps"]
	qt.Assert(t, qt.IsTrue(hasSources))
	qt.Assert(t, qt.IsTrue(hasDeps))

	var sawFile, sawLabel bool
	for _, l := range model.Links {
		switch l.Text {
		case "foo.cc":
			sawFile = l.Kind == links.KindPath
		case ":other":
			sawLabel = l.Kind == links.KindLabel
		}
	}
	qt.Assert(t, qt.IsTrue(sawFile))
	qt.Assert(t, qt.IsTrue(sawLabel))
}

// TestAnalyzeReusesCachedModelWhenUnchanged covers spec scenario S5's full-
// model half: re-analyzing a path whose composite freshness hasn't changed
// returns the prior model rather than rebuilding.
func TestAnalyzeReusesCachedModelWhenUnchanged(t *testing.T) {
	ws := fixture.Parse(`
-- a.gni --
x = 1
`)
	_, analyzer := newAnalyzer(ws)

	m1, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))
	m2, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(m1, m2))
}

// TestAnalyzeInvalidateForcesRebuild ensures Invalidate drops the cached
// model so a subsequent edit is observed.
func TestAnalyzeInvalidateForcesRebuild(t *testing.T) {
	ws := fixture.Parse(`
-- a.gni --
x = 1
`)
	store, analyzer := newAnalyzer(ws)

	m1, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))
	analyzer.Invalidate("a.gni")
	ws.Put("a.gni", []byte("x = 1\ny = 2\n"))
	store.WatchNotification("a.gni")

	m2, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(len(m2.Assignments) > len(m1.Assignments)))
}

// TestMaxImportDepthTripsIndependentlyOfTemplateDepth covers spec.md §4.6:
// a chain of imports past MaxImportDepth reports DepthExceeded, even though
// no template invocation anywhere in the chain comes close to
// MaxTemplateInvocationDepth: the two limits must use separate counters.
func TestMaxImportDepthTripsIndependentlyOfTemplateDepth(t *testing.T) {
	var b strings.Builder
	b.WriteString("-- .gn --\nbuildconfig = \"//build/config/BUILDCONFIG.gn\"\n")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "-- f%d.gni --\nimport(\"//f%d.gni\")\n", i, i+1)
	}
	fmt.Fprintf(&b, "-- f5.gni --\nx = 1\n")
	ws := fixture.Parse(b.String())

	store := fscache.NewStore(ws)
	shallowAnalyzer := shallow.NewAnalyzer(store)
	config := cache.DefaultConfig()
	config.MaxImportDepth = 2
	config.MaxTemplateInvocationDepth = 64
	analyzer := full.NewAnalyzer(store, shallowAnalyzer, config)

	root, err := workspace.Locate(store, "f0.gni")
	qt.Assert(t, qt.IsNil(err))

	model, err := analyzer.Analyze(root, "f0.gni", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))

	found := false
	for _, d := range model.Diagnostics {
		if d.Code == diag.CodeDepthExceeded {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}

// TestMaxTemplateInvocationDepthTripsIndependentlyOfImportDepth covers
// spec.md §4.6's other half: a template that invokes itself recursively
// past MaxTemplateInvocationDepth reports DepthExceeded even when no
// import() anywhere near MaxImportDepth is involved at all.
func TestMaxTemplateInvocationDepthTripsIndependentlyOfImportDepth(t *testing.T) {
	ws := fixture.Parse(`
-- .gn --
buildconfig = "//build/config/BUILDCONFIG.gn"
-- BUILD.gn --
template("recur") {
  recur(target_name + "_inner") {
  }
}
recur("top") {
}
`)
	store, _ := newAnalyzer(ws)
	shallowAnalyzer := shallow.NewAnalyzer(store)
	config := cache.DefaultConfig()
	config.MaxImportDepth = 64
	config.MaxTemplateInvocationDepth = 2
	analyzer := full.NewAnalyzer(store, shallowAnalyzer, config)

	root, err := workspace.Locate(store, "BUILD.gn")
	qt.Assert(t, qt.IsNil(err))

	model, err := analyzer.Analyze(root, "BUILD.gn", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))

	found := false
	for _, d := range model.Diagnostics {
		if d.Code == diag.CodeDepthExceeded {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}

// TestAnalyzeRefreshLazyReturnsCachedModelWithoutReread covers
// SPEC_FULL.md Open Question decision 1: under RefreshLazy, a second
// Analyze call returns the cached model even though the underlying content
// changed on disk, because lazy mode never re-stats.
func TestAnalyzeRefreshLazyReturnsCachedModelWithoutReread(t *testing.T) {
	ws := fixture.Parse(`
-- a.gni --
x = 1
`)
	_, analyzer := newAnalyzer(ws)

	m1, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))

	ws.Put("a.gni", []byte("x = 1\ny = 2\n"))

	m2, err := analyzer.Analyze(nil, "a.gni", cache.RefreshLazy, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(m1, m2))
	qt.Assert(t, qt.Equals(len(m2.Assignments), 1))
}

// TestAnalyzeCanceledReturnsErrCanceledAndDoesNotCache covers spec.md §5's
// cooperative-cancellation path: a CancelChecker reporting true partway
// through the walk makes Analyze return ErrCanceled and leaves nothing
// cached, so the next call rebuilds from scratch.
func TestAnalyzeCanceledReturnsErrCanceledAndDoesNotCache(t *testing.T) {
	ws := fixture.Parse(`
-- a.gni --
x = 1
y = 2
z = 3
`)
	_, analyzer := newAnalyzer(ws)

	calls := 0
	canceled := func() bool {
		calls++
		return calls > 1
	}

	_, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager, canceled)
	qt.Assert(t, qt.IsTrue(errors.Is(err, full.ErrCanceled)))

	m, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(m.Assignments), 3))
}
