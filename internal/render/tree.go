// Package render turns catalog trees into terminal output.
package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/dustin/go-humanize"

	"github.com/takeshy/zimcatalog/internal/catalog"
)

// Options controls tree rendering.
type Options struct {
	// EnabledOnly hides disabled items and reports enabled sizes.
	EnabledOnly bool
	// ShowURL appends the download URL to leaves.
	ShowURL bool
}

var (
	rootStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	enabledStyle   = lipgloss.NewStyle()
	disabledStyle  = lipgloss.NewStyle().Faint(true)
	sizeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	enumeratorTint = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).MarginRight(1)
)

// Tree renders each root as a lipgloss tree, separated by blank lines.
func Tree(roots []*catalog.Group, opts Options) string {
	var out string
	for i, root := range roots {
		if i > 0 {
			out += "\n\n"
		}
		t := tree.Root(rootStyle.Render(label(root, opts))).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(enumeratorTint)
		addChildren(t, root, opts)
		out += t.String()
	}
	return out
}

func addChildren(t *tree.Tree, g *catalog.Group, opts Options) {
	for _, child := range g.Children() {
		if opts.EnabledOnly && !child.Enabled() {
			continue
		}
		style := enabledStyle
		if !child.Enabled() {
			style = disabledStyle
		}

		sub, ok := child.(*catalog.Group)
		if !ok {
			t.Child(style.Render(label(child, opts)))
			continue
		}
		node := tree.Root(style.Render(label(sub, opts)))
		addChildren(node, sub, opts)
		t.Child(node)
	}
}

func label(item catalog.Item, opts Options) string {
	mark := "[ ]"
	if item.Enabled() {
		mark = "[x]"
	}

	s := fmt.Sprintf("%s %s %s", mark, item.Name(), sizeStyle.Render(FormatSize(item.Size(opts.EnabledOnly))))

	switch it := item.(type) {
	case *catalog.Group:
		if it.Exclusive() {
			s += " " + tagStyle.Render("(one of)")
		}
	case *catalog.Leaf:
		if it.Transport() != catalog.TransportHTTP {
			s += " " + tagStyle.Render(it.Transport().String())
		}
		if !it.CanDownload() {
			s += " " + tagStyle.Render("(unavailable)")
		}
		if opts.ShowURL {
			s += " " + sizeStyle.Render(it.URL())
		}
	}
	return s
}

// FormatSize renders a byte count with IEC units.
func FormatSize(n uint64) string {
	return humanize.IBytes(n)
}
