package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	linuxWithRsync = Capabilities{Platform: PlatformLinux, HasSyncClient: true}
	linuxNoRsync   = Capabilities{Platform: PlatformLinux}
	windowsRsync   = Capabilities{Platform: PlatformWindows, HasSyncClient: true}
)

func leaf(name string, size uint64) *Leaf {
	return NewLeaf(linuxWithRsync, name, "https://example.org/"+name, size, TransportHTTP)
}

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name())
	}
	return out
}

func TestNewGroup_SortsBySizeDescending(t *testing.T) {
	g := NewGroup("g", []Item{leaf("small", 1), leaf("big", 30), leaf("mid", 10)}, false)

	assert.Equal(t, []string{"big", "mid", "small"}, names(g.Children()))
}

func TestNewGroup_StableForEqualSizes(t *testing.T) {
	g := NewGroup("g", []Item{leaf("a", 5), leaf("b", 7), leaf("c", 5), leaf("d", 5)}, false)

	assert.Equal(t, []string{"b", "a", "c", "d"}, names(g.Children()))
}

func TestNewGroup_SortsNestedGroupsByAggregateSize(t *testing.T) {
	nested := NewGroup("nested", []Item{leaf("x", 20), leaf("y", 20)}, false)
	g := NewGroup("g", []Item{leaf("single", 30), nested}, false)

	assert.Equal(t, []string{"nested", "single"}, names(g.Children()))
}

func TestNewGroup_DoesNotAliasInput(t *testing.T) {
	in := []Item{leaf("a", 1), leaf("b", 2)}
	NewGroup("g", in, false)

	assert.Equal(t, []string{"a", "b"}, names(in))
}

func TestNewGroup_ExclusiveKeepsLargestEnabled(t *testing.T) {
	g := NewGroup("g", []Item{leaf("nopic", 10), leaf("maxi", 90), leaf("mini", 5)}, true)

	var enabled []string
	for _, c := range g.Children() {
		if c.Enabled() {
			enabled = append(enabled, c.Name())
		}
	}
	assert.Equal(t, []string{"maxi"}, enabled)
	assert.True(t, g.Exclusive())
	assert.True(t, g.Enabled())
}

func TestNewGroup_ExclusiveDisablesNestedGroupFlagOnly(t *testing.T) {
	inner := NewGroup("inner", []Item{leaf("a", 1)}, false)
	NewGroup("outer", []Item{leaf("big", 100), inner}, true)

	assert.False(t, inner.Enabled())
	assert.True(t, inner.Children()[0].Enabled(), "exclusivity must not cascade")
}

func TestNewGroup_ExclusiveSingleAndEmpty(t *testing.T) {
	one := NewGroup("one", []Item{leaf("a", 1)}, true)
	assert.True(t, one.Children()[0].Enabled())

	empty := NewGroup("empty", nil, true)
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Enabled())
	assert.False(t, empty.CanDownload())
}

func TestNewGroup_EnabledIgnoresChildFlags(t *testing.T) {
	a := leaf("a", 1)
	a.SetEnabled(false)
	g := NewGroup("g", []Item{a}, false)

	assert.True(t, g.Enabled(), "enabled follows downloadability, not selection")
}

func TestLeaf_CapabilityGating(t *testing.T) {
	tests := []struct {
		name      string
		caps      Capabilities
		transport Transport
		want      bool
	}{
		{"http on windows", windowsRsync, TransportHTTP, true},
		{"rsync on windows", windowsRsync, TransportSync, false},
		{"rsync without client", linuxNoRsync, TransportSync, false},
		{"rsync with client", linuxWithRsync, TransportSync, true},
		{"either without client", linuxNoRsync, TransportEither, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLeaf(tt.caps, "doc", "rsync://example.org/doc", 10, tt.transport)
			assert.Equal(t, tt.want, l.Enabled())
			assert.Equal(t, tt.want, l.CanDownload())
			assert.Equal(t, tt.want, l.SetEnabled(true))
		})
	}
}

func TestGroup_CanDownloadRecurses(t *testing.T) {
	blocked := NewLeaf(linuxNoRsync, "sync", "rsync://x", 1, TransportSync)
	inner := NewGroup("inner", []Item{blocked}, false)
	outer := NewGroup("outer", []Item{inner}, false)

	assert.False(t, outer.CanDownload())
	assert.False(t, outer.Enabled())
	assert.False(t, outer.SetEnabled(true))

	outer.Add(leaf("http", 2))
	assert.True(t, outer.CanDownload())
	assert.False(t, outer.Enabled(), "enabled stays frozen after Add")
	assert.True(t, outer.SetEnabled(true))
}

func TestGroup_SetEnabledDoesNotCascade(t *testing.T) {
	a := leaf("a", 1)
	g := NewGroup("g", []Item{a}, false)

	assert.False(t, g.SetEnabled(false))
	assert.True(t, a.Enabled())
}

func TestSize_Additivity(t *testing.T) {
	off := leaf("off", 7)
	off.SetEnabled(false)
	inner := NewGroup("inner", []Item{leaf("a", 3), off}, false)
	g := NewGroup("g", []Item{inner, leaf("b", 11), NewLeaf(linuxNoRsync, "sync", "rsync://x", 100, TransportSync)}, false)

	var sum uint64
	for _, c := range g.Children() {
		sum += c.Size(false)
	}
	assert.Equal(t, sum, g.Size(false))
	assert.Equal(t, uint64(121), g.Size(false))
	assert.Equal(t, uint64(14), g.Size(true))
	assert.LessOrEqual(t, g.Size(true), g.Size(false))
}

func TestAdd_LeavesAreNotDeduplicated(t *testing.T) {
	g := NewGroup("g", nil, false)
	g.Add(leaf("same", 1))
	g.Add(leaf("same", 1))

	assert.Equal(t, 2, g.Len())
}

func TestAdd_EmptyGroupIsNoOp(t *testing.T) {
	g := NewGroup("g", []Item{leaf("a", 1)}, false)
	before := names(g.Children())

	g.Add(NewGroup("empty", nil, false))
	g.Add(NewGroup("A", nil, true))

	assert.Equal(t, before, names(g.Children()))
}

func TestAdd_MergesCaseInsensitively(t *testing.T) {
	root := NewGroup("root", nil, false)
	root.Add(NewGroup("Gentoo", []Item{leaf("gentoo (wiki)", 10)}, false))
	root.Add(NewGroup("GENTOO", []Item{leaf("installgentoo (wiki)", 5)}, false))

	require.Equal(t, 1, root.Len())
	gentoo, ok := root.Find("gentoo")
	require.True(t, ok)
	assert.Equal(t, "Gentoo", gentoo.Name(), "first insertion keeps its name")
	assert.Equal(t, []string{"gentoo (wiki)", "installgentoo (wiki)"}, names(gentoo.Children()))
}

func TestAdd_MergesRecursively(t *testing.T) {
	root := NewGroup("root", nil, false)
	root.Add(NewGroup("a", []Item{NewGroup("b", []Item{leaf("x", 1)}, false)}, false))
	root.Add(NewGroup("A", []Item{NewGroup("B", []Item{leaf("y", 2)}, false), leaf("z", 3)}, false))

	a, _ := root.Find("a")
	b, ok := a.Find("b")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "z"}, names(a.Children()))
	assert.Equal(t, []string{"x", "y"}, names(b.Children()), "merge appends without re-sorting")
}

func TestAdd_DoesNotMergeLeafWithGroupOfSameName(t *testing.T) {
	root := NewGroup("root", []Item{leaf("ted", 1)}, false)
	root.Add(NewGroup("ted", []Item{leaf("talk", 2)}, false))

	assert.Equal(t, []string{"ted", "ted"}, names(root.Children()))
}

func TestAdd_IdempotentForEmptyResidual(t *testing.T) {
	build := func() *Group {
		return NewGroup("Wiki", []Item{leaf("b1", 4), leaf("b2", 2)}, true)
	}
	root := NewGroup("root", []Item{NewGroup("wiki", []Item{leaf("a1", 9)}, true)}, false)
	root.Add(build())
	once := snapshot(root)

	// Re-merging B's children after they were consumed leaves an empty residual.
	root.Add(NewGroup("WIKI", nil, true))
	assert.Empty(t, cmp.Diff(once, snapshot(root)))
}

func TestRebuild_RestoresOrderAndFlag(t *testing.T) {
	g := NewGroup("g", nil, false)
	g.Add(leaf("small", 1))
	g.Add(leaf("big", 10))
	require.False(t, g.Enabled())

	fresh := g.Rebuild()
	assert.Equal(t, []string{"big", "small"}, names(fresh.Children()))
	assert.True(t, fresh.Enabled())
}

func TestWalk_PathsAndSkip(t *testing.T) {
	root := NewGroup("root", []Item{
		NewGroup("a", []Item{leaf("a1", 2), leaf("a2", 1)}, false),
		NewGroup("skip", []Item{leaf("hidden", 1)}, false),
	}, false)

	var visited []string
	err := Walk(root, func(path []string, it Item) error {
		visited = append(visited, joinPath(path, it.Name()))
		if it.Name() == "skip" {
			return SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "root/a", "root/a/a1", "root/a/a2", "root/skip"}, visited)

	boom := errors.New("boom")
	assert.ErrorIs(t, Walk(root, func([]string, Item) error { return boom }), boom)
	assert.Len(t, Leaves(root), 3)
}

func TestEqualFoldASCII(t *testing.T) {
	assert.True(t, EqualFoldASCII("TED", "ted"))
	assert.False(t, EqualFoldASCII("É", "é"))
	assert.True(t, HasPrefixFoldASCII("DevDocs_go", "devdocs"))
	assert.True(t, HasSuffixFoldASCII("Unix.StackExchange.com", ".stackexchange.com"))
	assert.False(t, HasSuffixFoldASCII("com", ".stackexchange.com"))
}

type node struct {
	Name     string
	Enabled  bool
	Size     uint64
	Children []node
}

func snapshot(it Item) node {
	n := node{Name: it.Name(), Enabled: it.Enabled(), Size: it.Size(false)}
	if g, ok := it.(*Group); ok {
		for _, c := range g.Children() {
			n.Children = append(n.Children, snapshot(c))
		}
	}
	return n
}

func joinPath(path []string, name string) string {
	out := ""
	for _, p := range path {
		out += p + "/"
	}
	return out + name
}

func TestRestoreGroup_KeepsOrderAndFlags(t *testing.T) {
	small, big := leaf("small", 1), leaf("big", 100)
	small.SetEnabled(true)
	big.SetEnabled(false)

	g := RestoreGroup("g", []Item{small, big}, true, true)

	assert.Equal(t, []string{"small", "big"}, names(g.Children()))
	assert.True(t, g.Exclusive())
	assert.True(t, g.Enabled())
	assert.True(t, small.Enabled(), "exclusivity is not re-applied")
	assert.False(t, big.Enabled())
}

func TestRestoreGroup_EnabledLimitedByCanDownload(t *testing.T) {
	mirror := NewLeaf(windowsRsync, "mirror", "rsync://example.org/m", 5, TransportSync)

	g := RestoreGroup("g", []Item{mirror}, false, true)
	assert.False(t, g.Enabled())

	empty := RestoreGroup("empty", nil, false, true)
	assert.False(t, empty.Enabled())
	assert.Zero(t, empty.Len())
}
