package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_value/internal/domain"
)

// ParseFunc turns one listing page into raw hotels in page order.
type ParseFunc func(r io.Reader) ([]domain.RawHotel, error)

// ErrNothingCollected is returned when every search page failed.
var ErrNothingCollected = errors.New("no search page could be collected")

type IngestionService struct {
	src     domain.ListingSource
	parse   ParseFunc
	workers int64
}

func NewIngestionService(src domain.ListingSource, parse ParseFunc, workers int) *IngestionService {
	if workers < 1 {
		workers = 1
	}
	return &IngestionService{src: src, parse: parse, workers: int64(workers)}
}

// Collection is the merged, deduplicated result of one collection pass.
type Collection struct {
	Hotels     []domain.RawHotel
	Duplicates int
	Failed     []string // urls that could not be fetched or parsed
}

type pageResult struct {
	hotels []domain.RawHotel
	err    error
}

// Collect fetches every url, keeps page order when merging and drops repeated ids.
// A failing page is logged and skipped; only a cancelled context or a pass where
// every page failed is an error.
func (s *IngestionService) Collect(ctx context.Context, urls []string) (Collection, error) {
	results := make([]pageResult, len(urls))
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup

	for i, u := range urls {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return Collection{}, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = s.collectPage(ctx, u)
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return Collection{}, err
	}

	var (
		merged []domain.RawHotel
		out    Collection
	)
	for i, r := range results {
		if r.err != nil {
			out.Failed = append(out.Failed, urls[i])
			continue
		}
		merged = append(merged, r.hotels...)
	}
	if len(urls) > 0 && len(out.Failed) == len(urls) {
		return out, fmt.Errorf("%w (%d pages)", ErrNothingCollected, len(urls))
	}

	out.Hotels, out.Duplicates = domain.Dedupe(merged)
	log.Info().
		Int("pages", len(urls)).
		Int("failed", len(out.Failed)).
		Int("hotels", len(out.Hotels)).
		Int("duplicates", out.Duplicates).
		Msg("collection finished")
	return out, nil
}

func (s *IngestionService) collectPage(ctx context.Context, url string) pageResult {
	html, err := s.src.FetchListing(ctx, url)
	if err != nil {
		log.Warn().Str("url", url).Err(err).Msg("fetch listing failed")
		return pageResult{err: err}
	}
	hs, err := s.parse(strings.NewReader(html))
	if err != nil {
		log.Warn().Str("url", url).Err(err).Msg("parse listing failed")
		return pageResult{err: err}
	}
	if len(hs) == 0 {
		log.Warn().Str("url", url).Msg("listing has no hotel cards")
	}
	log.Info().Str("url", url).Int("hotels", len(hs)).Msg("listing collected")
	return pageResult{hotels: hs}
}
