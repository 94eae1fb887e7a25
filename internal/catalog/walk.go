package catalog

import "errors"

// SkipChildren is returned by a WalkFunc to skip the children of a group.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every item visited by Walk. path holds the names of
// the item's ancestors, outermost first; it must not be retained.
type WalkFunc func(path []string, item Item) error

// Walk visits item and its descendants depth-first in child order.
func Walk(item Item, fn WalkFunc) error {
	err := walk(nil, item, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(path []string, item Item, fn WalkFunc) error {
	if err := fn(path, item); err != nil {
		return err
	}
	g, ok := item.(*Group)
	if !ok {
		return nil
	}
	path = append(path, g.Name())
	for _, child := range g.Children() {
		if err := walk(path, child, fn); err != nil && !errors.Is(err, SkipChildren) {
			return err
		}
	}
	return nil
}

// Leaves returns every leaf below item in depth-first order.
func Leaves(item Item) []*Leaf {
	var out []*Leaf
	_ = Walk(item, func(_ []string, it Item) error {
		if l, ok := it.(*Leaf); ok {
			out = append(out, l)
		}
		return nil
	})
	return out
}
