package mcp

import (
	"github.com/takeshy/zimcatalog/internal/render"
	"github.com/takeshy/zimcatalog/internal/taxonomy"
)

// BuildCatalogInput represents input for the build_catalog tool
type BuildCatalogInput struct {
	URLs        []string `json:"urls,omitempty" jsonschema:"content page URLs to fetch (default: the configured pages)"`
	EnabledOnly bool     `json:"enabled_only,omitempty" jsonschema:"only list selected items"`
	Pattern     string   `json:"pattern,omitempty" jsonschema:"regex pattern to filter entry paths"`
}

// ClassifyRecordsInput represents input for the classify_records tool
type ClassifyRecordsInput struct {
	Records     []taxonomy.Record `json:"records" jsonschema:"raw catalog records to classify"`
	EnabledOnly bool              `json:"enabled_only,omitempty" jsonschema:"only list selected items"`
}

// CatalogOutput is returned by build_catalog and classify_records. Skipped
// counts page rows dropped for unreadable sizes.
type CatalogOutput struct {
	Entries     []render.Entry `json:"entries"`
	Total       int            `json:"total"`
	TotalSize   uint64         `json:"total_size_bytes"`
	EnabledSize uint64         `json:"enabled_size_bytes"`
	Skipped     int            `json:"skipped,omitempty"`
	JSONL       string         `json:"jsonl"`
}

// CatalogSummaryInput represents input for the catalog_summary tool
type CatalogSummaryInput struct {
	URLs []string `json:"urls,omitempty" jsonschema:"content page URLs to fetch (default: the configured pages)"`
}

// CatalogSummaryOutput represents output from the catalog_summary tool
type CatalogSummaryOutput struct {
	Roots     []RootSummary `json:"roots"`
	SyncReady bool          `json:"sync_ready"`
	Platform  string        `json:"platform"`
}

// RootSummary aggregates one catalog root
type RootSummary struct {
	Name          string `json:"name"`
	Groups        int    `json:"groups"`
	Leaves        int    `json:"leaves"`
	EnabledLeaves int    `json:"enabled_leaves"`
	Size          uint64 `json:"size_bytes"`
	EnabledSize   uint64 `json:"enabled_size_bytes"`
}
