package shallow_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/go-quicktest/qt"

	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/cache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fixture"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/shallow"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

// TestShallowSummaryDoesNotDescendIntoTemplateBody covers spec scenario S2:
// a template's internal import must never appear in the declaring file's
// own shallow summary.
func TestShallowSummaryDoesNotDescendIntoTemplateBody(t *testing.T) {
	ws := fixture.Parse(`
-- .gn --
buildconfig = "//build/config/BUILDCONFIG.gn"
-- a.gni --
import("//b.gni")
template("t") { import("//c.gni") }
`)
	store := fscache.NewStore(ws)
	root, err := workspace.Locate(store, "a.gni")
	qt.Assert(t, qt.IsNil(err))

	analyzer := shallow.NewAnalyzer(store)
	result, err := analyzer.Analyze(root, "a.gni", cache.RefreshEager)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.Equals(len(result.Imports), 1))
	qt.Assert(t, qt.Equals(result.Imports[0].RawPath, "//b.gni"))
	qt.Assert(t, qt.Equals(len(result.Templates), 1))
	qt.Assert(t, qt.Equals(result.Templates[0].Name, "t"))
}

// TestShallowAnalyzeIsRepeatableForUnchangedFreshness covers testable
// property 1: repeated calls with unchanged freshness return structurally
// identical summaries (here, the same cached pointer).
func TestShallowAnalyzeIsRepeatableForUnchangedFreshness(t *testing.T) {
	ws := fixture.Parse(`
-- a.gni --
x = 1
`)
	store := fscache.NewStore(ws)
	analyzer := shallow.NewAnalyzer(store)

	r1, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager)
	qt.Assert(t, qt.IsNil(err))
	r2, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(r1, r2))
}

// TestShallowAssignmentNamesMatchExpected uses cmp.Diff (rather than
// qt.DeepEquals) to compare just the names in source order, ignoring spans,
// the same shape comparison cue/literal's own quote tests use when the raw
// struct has fields irrelevant to the assertion.
func TestShallowAssignmentNamesMatchExpected(t *testing.T) {
	ws := fixture.Parse(`
-- a.gni --
x = 1
y = 2
if (true) {
  z = 3
}
`)
	store := fscache.NewStore(ws)
	analyzer := shallow.NewAnalyzer(store)

	result, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager)
	qt.Assert(t, qt.IsNil(err))

	want := []shallow.Assignment{{Name: "x"}, {Name: "y"}, {Name: "z"}}
	if diff := cmp.Diff(want, result.Assignments, cmpopts.IgnoreFields(shallow.Assignment{}, "Op", "Span")); diff != "" {
		t.Errorf("assignment names mismatch (-want +got):\n%s", diff)
	}
}

// TestShallowAnalyzeRefreshLazyReturnsCachedResultWithoutReread covers
// SPEC_FULL.md Open Question decision 1: under RefreshLazy, Analyze never
// re-stats path, so a result cached under RefreshEager is returned
// unchanged even after the underlying content is edited.
func TestShallowAnalyzeRefreshLazyReturnsCachedResultWithoutReread(t *testing.T) {
	ws := fixture.Parse(`
-- a.gni --
x = 1
`)
	store := fscache.NewStore(ws)
	analyzer := shallow.NewAnalyzer(store)

	r1, err := analyzer.Analyze(nil, "a.gni", cache.RefreshEager)
	qt.Assert(t, qt.IsNil(err))

	ws.Put("a.gni", []byte("x = 1\ny = 2\n"))

	r2, err := analyzer.Analyze(nil, "a.gni", cache.RefreshLazy)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(r1, r2))
	qt.Assert(t, qt.Equals(len(r2.Assignments), 1))
}
