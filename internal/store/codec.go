package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/takeshy/zimcatalog/internal/catalog"
)

// Encode converts an item and its descendants into wire nodes
func Encode(item catalog.Item) Node {
	switch it := item.(type) {
	case *catalog.Leaf:
		return Node{
			Kind:      KindLeaf,
			Name:      it.Name(),
			URL:       it.URL(),
			SizeBytes: it.Size(false),
			Transport: it.Transport(),
			Enabled:   it.Enabled(),
		}
	case *catalog.Group:
		children := make([]Node, 0, it.Len())
		for _, child := range it.Children() {
			children = append(children, Encode(child))
		}
		return Node{
			Kind:               KindGroup,
			Name:               it.Name(),
			SizeBytes:          it.Size(false),
			Children:           children,
			ExclusiveSelection: it.Exclusive(),
			Enabled:            it.Enabled(),
		}
	default:
		panic(fmt.Sprintf("store: unexpected catalog item %T", item))
	}
}

// Decode rebuilds a catalog item from a wire node. Groups keep their saved
// child order and the stored enabled flags are re-applied, so flags for
// transports caps cannot download come back disabled.
func Decode(n Node, caps catalog.Capabilities) (catalog.Item, error) {
	switch n.Kind {
	case KindLeaf:
		transport := n.Transport
		if transport == "" {
			transport = catalog.TransportForURL(n.URL)
		} else if _, err := catalog.ParseTransport(string(transport)); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidNode, n.Name, err)
		}
		leaf := catalog.NewLeaf(caps, n.Name, n.URL, n.SizeBytes, transport)
		leaf.SetEnabled(n.Enabled)
		return leaf, nil

	case KindGroup:
		children := make([]catalog.Item, 0, len(n.Children))
		for _, cn := range n.Children {
			child, err := Decode(cn, caps)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		// children carry their saved flags; merged groups are saved unsorted,
		// so the order is kept as written
		return catalog.RestoreGroup(n.Name, children, n.ExclusiveSelection, n.Enabled), nil

	default:
		return nil, fmt.Errorf("%w %q: unknown kind %q", ErrInvalidNode, n.Name, n.Kind)
	}
}

// Write encodes roots to w in the given format
func Write(w io.Writer, roots []*catalog.Group, format Format) error {
	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, root := range roots {
			if err := enc.Encode(Encode(root)); err != nil {
				return fmt.Errorf("failed to encode %q: %w", root.Name(), err)
			}
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, root := range roots {
			if err := enc.Encode(Encode(root)); err != nil {
				return fmt.Errorf("failed to encode %q: %w", root.Name(), err)
			}
		}
		return enc.Close()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Read decodes root groups from r
func Read(r io.Reader, format Format, caps catalog.Capabilities) ([]*catalog.Group, error) {
	type decoder interface{ Decode(v any) error }

	var dec decoder
	switch format {
	case FormatJSONL:
		dec = json.NewDecoder(r)
	case FormatYAML:
		dec = yaml.NewDecoder(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	var roots []*catalog.Group
	for {
		var n Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				return roots, nil
			}
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
		item, err := Decode(n, caps)
		if err != nil {
			return nil, err
		}
		root, ok := item.(*catalog.Group)
		if !ok {
			return nil, fmt.Errorf("%w %q: root must be a group", ErrInvalidNode, n.Name)
		}
		roots = append(roots, root)
	}
}
