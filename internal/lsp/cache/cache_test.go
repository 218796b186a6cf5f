package cache_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/shometownstd7300-pixel/gn-language-server/internal/lsp/cache"
)

func eqInt(a, b any) bool { return a.(int) == b.(int) }

func TestTableGetMissesOnFreshnessChange(t *testing.T) {
	table := cache.NewTable[string, string]()
	table.Set("a", 1, "v1", cache.StateShallow)

	got, ok := table.Get("a", 1, eqInt)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got, "v1"))

	_, ok = table.Get("a", 2, eqInt)
	qt.Assert(t, qt.IsTrue(!ok))
}

func TestTablePeekIgnoresFreshness(t *testing.T) {
	table := cache.NewTable[string, string]()
	table.Set("a", 1, "v1", cache.StateFull)

	value, freshness, ok := table.Peek("a")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(value, "v1"))
	qt.Assert(t, qt.Equals(freshness.(int), 1))
}

func TestTableMarkStaleKeepsValue(t *testing.T) {
	table := cache.NewTable[string, string]()
	table.Set("a", 1, "v1", cache.StateFull)
	table.MarkStale("a")

	qt.Assert(t, qt.Equals(table.StateOf("a"), cache.StateStale))
	value, _, ok := table.Peek("a")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(value, "v1"))
}

func TestTableDeleteRemovesEntry(t *testing.T) {
	table := cache.NewTable[string, string]()
	table.Set("a", 1, "v1", cache.StateFull)
	table.Delete("a")

	qt.Assert(t, qt.Equals(table.StateOf("a"), cache.StateAbsent))
	qt.Assert(t, qt.Equals(table.Len(), 0))
}

func TestDefaultConfigIsEagerWithFiniteLimits(t *testing.T) {
	cfg := cache.DefaultConfig()
	qt.Assert(t, qt.Equals(cfg.RefreshPolicy, cache.RefreshEager))
	qt.Assert(t, qt.IsTrue(cfg.ShallowForBackground))
	qt.Assert(t, qt.Equals(cfg.MaxImportDepth, 64))
	qt.Assert(t, qt.Equals(cfg.MaxTemplateInvocationDepth, 64))
}
