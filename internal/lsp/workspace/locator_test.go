package workspace_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fixture"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/fscache"
	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/workspace"
)

func TestLocateFindsNearestDotFileAndBuildConfig(t *testing.T) {
	ws := fixture.Parse(`
-- .gn --
buildconfig = "//build/config/BUILDCONFIG.gn"
-- a/b/BUILD.gn --
x = 1
`)
	store := fscache.NewStore(ws)
	root, err := workspace.Locate(store, "a/b/BUILD.gn")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(root.Root, "."))
	qt.Assert(t, qt.Equals(root.BuildConfigPath, "build/config/BUILDCONFIG.gn"))
}

func TestLocateReturnsErrNotFoundOutsideAnyWorkspace(t *testing.T) {
	ws := fixture.Parse(`
-- a/BUILD.gn --
x = 1
`)
	store := fscache.NewStore(ws)
	_, err := workspace.Locate(store, "a/BUILD.gn")
	qt.Assert(t, qt.IsTrue(err != nil))
	qt.Assert(t, qt.ErrorAs(err, new(*workspace.ErrNotFound)))
}

func TestResolveImportPathHandlesSourceAbsoluteAndRelative(t *testing.T) {
	ws := &workspace.Workspace{Root: "."}

	resolved, ok := workspace.ResolveImportPath(ws, "a/b", "//c/d.gni")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(resolved, "c/d.gni"))

	resolved, ok = workspace.ResolveImportPath(ws, "a/b", "../d.gni")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(resolved, "a/d.gni"))

	_, ok = workspace.ResolveImportPath(nil, "a/b", "//c/d.gni")
	qt.Assert(t, qt.IsTrue(!ok))
}

func TestParseLabelDefaultsNameToLastSegment(t *testing.T) {
	lbl := workspace.ParseLabel("//a/b/c")
	qt.Assert(t, qt.Equals(lbl.Dir, "//a/b/c"))
	qt.Assert(t, qt.Equals(lbl.Name, "c"))
	qt.Assert(t, qt.IsTrue(!lbl.NameExplicit))

	lbl = workspace.ParseLabel("//a/b:foo")
	qt.Assert(t, qt.Equals(lbl.Dir, "//a/b"))
	qt.Assert(t, qt.Equals(lbl.Name, "foo"))
	qt.Assert(t, qt.IsTrue(lbl.NameExplicit))
}

func TestResolveLabelBareNameUsesCurrentDir(t *testing.T) {
	dir, ok := workspace.ResolveLabel(nil, "a/b", workspace.ParseLabel(":other"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(dir, "a/b"))
}

func TestIsBuildOutputDirDetectsArgsMarker(t *testing.T) {
	ws := fixture.Parse(`
-- out/Debug/args.gn --
target_os = "linux"
`)
	store := fscache.NewStore(ws)
	qt.Assert(t, qt.IsTrue(workspace.IsBuildOutputDir(store, "out/Debug")))
	qt.Assert(t, qt.IsTrue(!workspace.IsBuildOutputDir(store, "out/Release")))
}
