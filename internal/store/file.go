// Package store encodes catalog trees for exchange and saves them to disk.
package store

import (
	"bytes"
	"fmt"
	"os"

	"github.com/takeshy/zimcatalog/internal/catalog"
	"github.com/takeshy/zimcatalog/internal/fileutil"
)

// Save writes roots to path atomically and returns the file checksum.
func Save(path string, roots []*catalog.Group, format Format) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, roots, format); err != nil {
		return "", err
	}

	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to save catalog: %w", err)
	}

	return fileutil.CalculateChecksum(path)
}

// Load reads a saved catalog, inferring the format from the file extension.
func Load(path string, caps catalog.Capabilities) ([]*catalog.Group, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Read(f, format, caps)
}
