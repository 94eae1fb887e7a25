package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeshy/zimcatalog/internal/catalog"
)

func fixture() []*catalog.Group {
	caps := catalog.Capabilities{Platform: catalog.PlatformLinux}
	wiki := catalog.NewGroup("wikipedia", []catalog.Item{
		catalog.NewLeaf(caps, "mini", "https://example.org/mini.zim", 1024, catalog.TransportHTTP),
		catalog.NewLeaf(caps, "maxi", "https://example.org/maxi.zim", 3*1024*1024, catalog.TransportHTTP),
	}, true)
	mirror := catalog.NewLeaf(caps, "mirror", "rsync://example.org/m", 10, catalog.TransportSync)
	return []*catalog.Group{catalog.NewGroup("Library", []catalog.Item{wiki, mirror}, false)}
}

func TestFlatten(t *testing.T) {
	entries := Flatten(fixture())

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{
		"Library",
		"Library / wikipedia",
		"Library / wikipedia / maxi",
		"Library / wikipedia / mini",
		"Library / mirror",
	}, paths)

	wiki := entries[1]
	assert.Equal(t, "group", wiki.Kind)
	assert.True(t, wiki.Exclusive)
	assert.Equal(t, uint64(3*1024*1024+1024), wiki.Size)
	assert.Equal(t, uint64(3*1024*1024), wiki.EnabledSize)

	mirror := entries[4]
	assert.Equal(t, "leaf", mirror.Kind)
	assert.False(t, mirror.Enabled, "sync leaves are off without a sync client")
	assert.Equal(t, "rsync://example.org/m", mirror.URL)
}

func TestFilterEntries(t *testing.T) {
	entries := Flatten(fixture())

	got, err := FilterEntries(entries, `wikipedia / m`)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	all, err := FilterEntries(entries, "")
	require.NoError(t, err)
	assert.Len(t, all, len(entries))

	_, err = FilterEntries(entries, "(")
	assert.Error(t, err)
}

func TestTree(t *testing.T) {
	out := Tree(fixture(), Options{})

	assert.Contains(t, out, "[x] Library")
	assert.Contains(t, out, "(one of)")
	assert.Contains(t, out, "[x] maxi 3.0 MiB")
	assert.Contains(t, out, "[ ] mini 1.0 KiB")
	assert.Contains(t, out, "rsync")
	assert.Contains(t, out, "(unavailable)")
	assert.Less(t, strings.Index(out, "maxi"), strings.Index(out, "mini"))
}

func TestTree_EnabledOnly(t *testing.T) {
	out := Tree(fixture(), Options{EnabledOnly: true, ShowURL: true})

	assert.Contains(t, out, "maxi")
	assert.Contains(t, out, "https://example.org/maxi.zim")
	assert.NotContains(t, out, "mini")
	assert.NotContains(t, out, "mirror")
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, Flatten(fixture()), true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "ON"))
	assert.Contains(t, lines[3], "https://example.org/maxi.zim")
}

func TestFlattenEnabled_SkipsDisabledSubtrees(t *testing.T) {
	roots := fixture()
	wiki := roots[0].Children()[0].(*catalog.Group)
	wiki.SetEnabled(false)

	entries := FlattenEnabled(roots)

	require.Len(t, entries, 1)
	assert.Equal(t, "Library", entries[0].Path)
}
