package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/takeshy/zimcatalog/internal/catalog"
)

// PathSeparator joins path segments in Entry.Path.
const PathSeparator = " / "

// Entry is one row of a flattened catalog.
type Entry struct {
	Path        string `json:"path" yaml:"path"`
	Kind        string `json:"kind" yaml:"kind"`
	Size        uint64 `json:"size_bytes" yaml:"size_bytes"`
	EnabledSize uint64 `json:"enabled_size_bytes" yaml:"enabled_size_bytes"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Exclusive   bool   `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Flatten lists every item under roots in depth-first order.
func Flatten(roots []*catalog.Group) []Entry {
	return flatten(roots, false)
}

// FlattenEnabled is like Flatten but leaves out disabled items and everything
// below a disabled group.
func FlattenEnabled(roots []*catalog.Group) []Entry {
	return flatten(roots, true)
}

func flatten(roots []*catalog.Group, enabledOnly bool) []Entry {
	var entries []Entry
	for _, root := range roots {
		_ = catalog.Walk(root, func(path []string, item catalog.Item) error {
			if enabledOnly && !item.Enabled() {
				return catalog.SkipChildren
			}
			e := Entry{
				Path:        strings.Join(append(path[:len(path):len(path)], item.Name()), PathSeparator),
				Size:        item.Size(false),
				EnabledSize: item.Size(true),
				Enabled:     item.Enabled(),
			}
			switch it := item.(type) {
			case *catalog.Leaf:
				e.Kind = "leaf"
				e.URL = it.URL()
			case *catalog.Group:
				e.Kind = "group"
				e.Exclusive = it.Exclusive()
			}
			entries = append(entries, e)
			return nil
		})
	}
	return entries
}

// FilterEntries keeps entries whose path matches pattern. An empty pattern
// keeps everything.
func FilterEntries(entries []Entry, pattern string) ([]Entry, error) {
	if pattern == "" {
		return entries, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	var filtered []Entry
	for _, e := range entries {
		if re.MatchString(e.Path) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Table writes entries as aligned columns. long adds URL and enabled size.
func Table(w io.Writer, entries []Entry, long bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if long {
		fmt.Fprintln(tw, "ON\tKIND\tSIZE\tSELECTED\tPATH\tURL")
	} else {
		fmt.Fprintln(tw, "ON\tKIND\tSIZE\tPATH")
	}
	for _, e := range entries {
		on := " "
		if e.Enabled {
			on = "x"
		}
		if long {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", on, e.Kind, FormatSize(e.Size), FormatSize(e.EnabledSize), e.Path, e.URL)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", on, e.Kind, FormatSize(e.Size), e.Path)
		}
	}
	return tw.Flush()
}
