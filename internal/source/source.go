// Package source collects raw catalog records: it fetches content pages,
// optionally several in parallel, and extracts the table rows.
package source

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/takeshy/zimcatalog/internal/taxonomy"
)

// DefaultParallelism bounds concurrent page fetches.
const DefaultParallelism = 4

// Source turns content pages into records.
type Source struct {
	client      *Client
	parallelism int
	logger      *zap.Logger
}

// New creates a source. parallelism bounds concurrent page fetches.
func New(client *Client, parallelism int, logger *zap.Logger) *Source {
	if parallelism < 1 {
		parallelism = DefaultParallelism
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		client:      client,
		parallelism: parallelism,
		logger:      logger,
	}
}

// FetchAll fetches every url and returns the bodies in input order. The first
// failure cancels the remaining fetches.
func (s *Source) FetchAll(ctx context.Context, urls []string) ([]string, error) {
	pages := make([]string, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, url := range urls {
		g.Go(func() error {
			page, err := s.client.Fetch(ctx, url)
			if err != nil {
				return err
			}
			pages[i] = page
			s.logger.Debug("fetched page", zap.String("url", url), zap.Int("bytes", len(page)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// Result holds the records extracted from one or more pages together with
// the rows that could not be read.
type Result struct {
	Records []taxonomy.Record
	Skipped []*RowError
}

// Collect fetches urls and extracts their records in page order.
func (s *Source) Collect(ctx context.Context, urls []string) (*Result, error) {
	pages, err := s.FetchAll(ctx, urls)
	if err != nil {
		return nil, err
	}
	return s.parse(pages...)
}

// Records is Collect without the skipped rows.
func (s *Source) Records(ctx context.Context, urls []string) ([]taxonomy.Record, error) {
	res, err := s.Collect(ctx, urls)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// RecordsFromFile extracts records from saved page files.
func (s *Source) RecordsFromFile(paths ...string) ([]taxonomy.Record, error) {
	pages := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read page: %w", err)
		}
		pages = append(pages, string(data))
	}
	res, err := s.parse(pages...)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func (s *Source) parse(pages ...string) (*Result, error) {
	res := &Result{}
	for _, page := range pages {
		recs, skipped := ParsePage(page)
		for _, rowErr := range skipped {
			s.logger.Warn("skipped catalog row",
				zap.Int("row", rowErr.Row),
				zap.String("category", rowErr.Category),
				zap.String("name", rowErr.Name),
				zap.Error(rowErr.Err))
		}
		res.Records = append(res.Records, recs...)
		res.Skipped = append(res.Skipped, skipped...)
	}

	if len(res.Records) == 0 {
		return nil, ErrNoRecords
	}
	s.logger.Info("extracted catalog records",
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("pages", len(pages)))
	return res, nil
}
