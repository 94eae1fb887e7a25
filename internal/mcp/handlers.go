package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/takeshy/zimcatalog/internal/catalog"
	"github.com/takeshy/zimcatalog/internal/render"
	"github.com/takeshy/zimcatalog/internal/store"
	"github.com/takeshy/zimcatalog/internal/taxonomy"
)

// handleBuildCatalog handles the build_catalog tool
func (s *Server) handleBuildCatalog(ctx context.Context, req *mcp.CallToolRequest, input BuildCatalogInput) (*mcp.CallToolResult, CatalogOutput, error) {
	urls := s.urls(input.URLs)

	res, err := s.source.Collect(ctx, urls)
	if err != nil {
		return nil, CatalogOutput{}, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	records := res.Records

	output, err := s.catalogOutput(records, input.EnabledOnly, input.Pattern)
	if err != nil {
		return nil, output, err
	}
	output.Skipped = len(res.Skipped)

	s.logger.Info("built catalog",
		zap.Strings("urls", urls),
		zap.Int("records", len(records)),
		zap.Int("skipped", output.Skipped),
		zap.Int("entries", output.Total))

	return textResult(fmt.Sprintf("Built catalog from %d records (%d entries, %s selected of %s)",
		len(records), output.Total, render.FormatSize(output.EnabledSize), render.FormatSize(output.TotalSize))), output, nil
}

// handleClassifyRecords handles the classify_records tool
func (s *Server) handleClassifyRecords(ctx context.Context, req *mcp.CallToolRequest, input ClassifyRecordsInput) (*mcp.CallToolResult, CatalogOutput, error) {
	if len(input.Records) == 0 {
		return nil, CatalogOutput{}, fmt.Errorf("records is required")
	}

	output, err := s.catalogOutput(input.Records, input.EnabledOnly, "")
	if err != nil {
		return nil, output, err
	}

	return textResult(fmt.Sprintf("Classified %d records into %d entries", len(input.Records), output.Total)), output, nil
}

// handleCatalogSummary handles the catalog_summary tool
func (s *Server) handleCatalogSummary(ctx context.Context, req *mcp.CallToolRequest, input CatalogSummaryInput) (*mcp.CallToolResult, CatalogSummaryOutput, error) {
	caps := s.classifier.Capabilities()
	output := CatalogSummaryOutput{
		SyncReady: caps.SyncSupported(),
		Platform:  caps.Platform,
	}

	records, err := s.source.Records(ctx, s.urls(input.URLs))
	if err != nil {
		return nil, output, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	var sb strings.Builder
	for _, root := range s.classifier.Classify(records) {
		sum := summarize(root)
		output.Roots = append(output.Roots, sum)
		fmt.Fprintf(&sb, "%s: %d groups, %d/%d leaves selected, %s of %s\n",
			sum.Name, sum.Groups, sum.EnabledLeaves, sum.Leaves,
			render.FormatSize(sum.EnabledSize), render.FormatSize(sum.Size))
	}

	return textResult(sb.String()), output, nil
}

func (s *Server) catalogOutput(records []taxonomy.Record, enabledOnly bool, pattern string) (CatalogOutput, error) {
	roots := s.classifier.Classify(records)

	var sb strings.Builder
	if err := store.Write(&sb, roots, store.FormatJSONL); err != nil {
		return CatalogOutput{}, err
	}

	entries := render.Flatten(roots)
	if enabledOnly {
		entries = render.FlattenEnabled(roots)
	}
	entries, err := render.FilterEntries(entries, pattern)
	if err != nil {
		return CatalogOutput{}, err
	}

	output := CatalogOutput{
		Entries: entries,
		Total:   len(entries),
		JSONL:   sb.String(),
	}
	for _, root := range roots {
		output.TotalSize += root.Size(false)
		output.EnabledSize += root.Size(true)
	}
	return output, nil
}

func summarize(root *catalog.Group) RootSummary {
	sum := RootSummary{
		Name:        root.Name(),
		Size:        root.Size(false),
		EnabledSize: root.Size(true),
	}
	_ = catalog.Walk(root, func(_ []string, item catalog.Item) error {
		switch item.(type) {
		case *catalog.Group:
			sum.Groups++
		case *catalog.Leaf:
			sum.Leaves++
			if item.Enabled() {
				sum.EnabledLeaves++
			}
		}
		return nil
	})
	sum.Groups-- // the root itself
	return sum
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
