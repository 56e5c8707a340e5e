package domain

import "context"

type RunRepository interface {
	// Write path
	SaveRun(ctx context.Context, run Run, ranked []NormalizedHotel) error

	// Read paths
	LatestRun(ctx context.Context) (Run, error)
	ListRanked(ctx context.Context, runID string, limit int) ([]NormalizedHotel, error)
}

// ListingSource returns the HTML of a search result page.
type ListingSource interface {
	FetchListing(ctx context.Context, url string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
