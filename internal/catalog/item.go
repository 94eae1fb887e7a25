// Package catalog implements the catalog tree: downloadable leaves, groups that
// nest them, and the merge, enablement and size rules shared by both.
//
// Groups freeze their sort order and enabled flag when they are constructed.
// Add merges later insertions without re-sorting or re-evaluating those values,
// so callers that need fresh answers use Size and CanDownload, which always
// recompute from the children.
package catalog

import (
	"slices"
)

// Item is a node of the catalog tree. The only implementations are *Leaf and
// *Group.
type Item interface {
	Name() string
	Enabled() bool
	// CanDownload reports whether the item (or any leaf below it) is
	// downloadable on this host, regardless of current enabled flags.
	CanDownload() bool
	// SetEnabled stores value && CanDownload() and returns the stored flag.
	// On a group it does not cascade to the children.
	SetEnabled(value bool) bool
	// Size returns the byte size, counting only enabled leaves when
	// enabledOnly is set.
	Size(enabledOnly bool) uint64

	item()
}

// Leaf is one downloadable catalog entry.
type Leaf struct {
	name      string
	url       string
	size      uint64
	transport Transport
	enabled   bool
	caps      Capabilities
}

// NewLeaf creates a leaf. It starts enabled when caps allows its transport.
func NewLeaf(caps Capabilities, name, url string, size uint64, transport Transport) *Leaf {
	return &Leaf{
		name:      name,
		url:       url,
		size:      size,
		transport: transport,
		enabled:   caps.Allows(transport),
		caps:      caps,
	}
}

func (l *Leaf) item() {}

// Name returns the display name.
func (l *Leaf) Name() string { return l.name }

// URL returns the retrieval URL.
func (l *Leaf) URL() string { return l.url }

// Transport returns the retrieval mechanism.
func (l *Leaf) Transport() Transport { return l.transport }

// Enabled reports whether the leaf is currently selected.
func (l *Leaf) Enabled() bool { return l.enabled }

// CanDownload reports whether the host can fetch this leaf's transport.
func (l *Leaf) CanDownload() bool {
	return l.caps.Allows(l.transport)
}

// SetEnabled selects or deselects the leaf. Undownloadable leaves stay off.
func (l *Leaf) SetEnabled(value bool) bool {
	l.enabled = value && l.CanDownload()
	return l.enabled
}

// Size returns the stored byte size, or zero when enabledOnly is set and the
// leaf is deselected.
func (l *Leaf) Size(enabledOnly bool) uint64 {
	if enabledOnly && !l.enabled {
		return 0
	}
	return l.size
}

// Group is a named, ordered collection of items.
type Group struct {
	name      string
	children  []Item
	exclusive bool
	enabled   bool
}

// NewGroup creates a group from its final children. Children are stably sorted
// by descending size; an exclusive group then deselects every child but the
// first. The group is enabled when any child can be downloaded.
func NewGroup(name string, children []Item, exclusive bool) *Group {
	sorted := slices.Clone(children)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		sa, sb := a.Size(false), b.Size(false)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})

	if exclusive {
		for _, child := range sorted[min(1, len(sorted)):] {
			child.SetEnabled(false)
		}
	}

	g := &Group{
		name:      name,
		children:  sorted,
		exclusive: exclusive,
	}
	g.enabled = g.CanDownload()
	return g
}

// RestoreGroup recreates a group exactly as it was saved: children keep the
// given order and their own flags, and no exclusivity is applied. The group's
// flag is still limited by CanDownload.
func RestoreGroup(name string, children []Item, exclusive, enabled bool) *Group {
	g := &Group{
		name:      name,
		children:  slices.Clone(children),
		exclusive: exclusive,
	}
	g.SetEnabled(enabled)
	return g
}

func (g *Group) item() {}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Enabled returns the flag frozen at construction or set by SetEnabled.
func (g *Group) Enabled() bool { return g.enabled }

// Exclusive reports whether the group was built with single selection.
func (g *Group) Exclusive() bool { return g.exclusive }

// Children returns the child items in their current order. The slice is owned
// by the group.
func (g *Group) Children() []Item { return g.children }

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

// CanDownload reports whether any child can be downloaded.
func (g *Group) CanDownload() bool {
	for _, child := range g.children {
		if child.CanDownload() {
			return true
		}
	}
	return false
}

// SetEnabled sets the group's own flag. Children are left untouched.
func (g *Group) SetEnabled(value bool) bool {
	g.enabled = value && g.CanDownload()
	return g.enabled
}

// Size sums the sizes of all children.
func (g *Group) Size(enabledOnly bool) uint64 {
	var total uint64
	for _, child := range g.children {
		total += child.Size(enabledOnly)
	}
	return total
}

// Find returns the direct child group whose name matches ASCII
// case-insensitively.
func (g *Group) Find(name string) (*Group, bool) {
	for _, child := range g.children {
		if sub, ok := child.(*Group); ok && EqualFoldASCII(sub.name, name) {
			return sub, true
		}
	}
	return nil, false
}

// Add inserts item into the group.
//
// Leaves are always appended. An empty group is ignored. A group whose name
// matches an existing child group is merged into it child by child; otherwise
// it is appended whole. Sort order, exclusivity and the enabled flag are not
// re-evaluated.
func (g *Group) Add(item Item) {
	sub, ok := item.(*Group)
	if !ok {
		g.children = append(g.children, item)
		return
	}
	if len(sub.children) == 0 {
		return
	}
	if existing, found := g.Find(sub.name); found {
		for _, child := range sub.children {
			existing.Add(child)
		}
		return
	}
	g.children = append(g.children, sub)
}

// Rebuild constructs a fresh group from g's current children, re-establishing
// the sort order, exclusivity and enabled flag.
func (g *Group) Rebuild() *Group {
	return NewGroup(g.name, g.children, g.exclusive)
}

// EqualFoldASCII reports whether a and b are equal ignoring ASCII case.
// Non-ASCII bytes must match exactly.
func EqualFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

// HasPrefixFoldASCII reports whether s begins with prefix ignoring ASCII case.
func HasPrefixFoldASCII(s, prefix string) bool {
	return len(s) >= len(prefix) && EqualFoldASCII(s[:len(prefix)], prefix)
}

// HasSuffixFoldASCII reports whether s ends with suffix ignoring ASCII case.
func HasSuffixFoldASCII(s, suffix string) bool {
	return len(s) >= len(suffix) && EqualFoldASCII(s[len(s)-len(suffix):], suffix)
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
