package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/takeshy/zimcatalog/internal/catalog"
)

// Kind tags a Node as a leaf or a group
type Kind string

const (
	KindLeaf  Kind = "leaf"
	KindGroup Kind = "group"
)

// Format is an exchange encoding for catalog roots
type Format string

const (
	// FormatJSONL writes one JSON object per root, one per line
	FormatJSONL Format = "jsonl"
	// FormatYAML writes one YAML document per root
	FormatYAML Format = "yaml"
)

var (
	// ErrUnknownFormat is returned for unsupported format names or extensions
	ErrUnknownFormat = errors.New("unknown catalog format")
	// ErrInvalidNode is returned when a decoded node cannot become a catalog item
	ErrInvalidNode = errors.New("invalid catalog node")
)

// Node is the wire form of a catalog item. Leaves carry url, sizeBytes and
// transport; groups carry children, exclusiveSelection and their aggregate
// sizeBytes.
type Node struct {
	Kind               Kind              `json:"kind" yaml:"kind"`
	Name               string            `json:"name" yaml:"name"`
	URL                string            `json:"url,omitempty" yaml:"url,omitempty"`
	SizeBytes          uint64            `json:"sizeBytes" yaml:"sizeBytes"`
	Transport          catalog.Transport `json:"transport,omitempty" yaml:"transport,omitempty"`
	Children           []Node            `json:"children,omitempty" yaml:"children,omitempty"`
	ExclusiveSelection bool              `json:"exclusiveSelection,omitempty" yaml:"exclusiveSelection,omitempty"`
	Enabled            bool              `json:"enabled" yaml:"enabled"`
}

// ParseFormat converts a format name into a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSONL, FormatYAML:
		return f, nil
	case "json", "ndjson":
		return FormatJSONL, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath infers the format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}
