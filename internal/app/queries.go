package app

import (
	"context"
	"fmt"
	"time"

	"hotel_value/internal/analytics"
	"hotel_value/internal/domain"
)

// TopHotels is the ranked slice of the latest run.
type TopHotels struct {
	Run    domain.Run               `json:"run"`
	Hotels []domain.NormalizedHotel `json:"hotels"`
}

// DashboardView is the analytics payload of the latest run.
type DashboardView struct {
	Run       domain.Run          `json:"run"`
	Dashboard analytics.Dashboard `json:"dashboard"`
}

type QueryService struct {
	repo     domain.RunRepository
	cache    domain.Cache // may be nil
	cacheTTL time.Duration
}

func NewQueryService(r domain.RunRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// TopHotels returns up to n hotels of the latest run. Cache entries are keyed by run id,
// so a new run never serves stale rankings.
func (s *QueryService) TopHotels(ctx context.Context, n int) (TopHotels, error) {
	run, err := s.repo.LatestRun(ctx)
	if err != nil {
		return TopHotels{}, err
	}
	key := fmt.Sprintf("top:%s:%d", run.ID, n)
	var out TopHotels
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	hs, err := s.repo.ListRanked(ctx, run.ID, n)
	if err != nil {
		return TopHotels{}, err
	}
	// copy slice to avoid aliasing the repo's backing array
	out = TopHotels{Run: run, Hotels: copyHotels(hs)}
	s.cacheSet(ctx, key, out)
	return out, nil
}

// Dashboard computes the analytics sections over the top n hotels of the latest run.
func (s *QueryService) Dashboard(ctx context.Context, n int) (DashboardView, error) {
	run, err := s.repo.LatestRun(ctx)
	if err != nil {
		return DashboardView{}, err
	}
	key := fmt.Sprintf("dash:%s:%d", run.ID, n)
	var out DashboardView
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	hs, err := s.repo.ListRanked(ctx, run.ID, n)
	if err != nil {
		return DashboardView{}, err
	}
	out = DashboardView{Run: run, Dashboard: analytics.Build(hs)}
	s.cacheSet(ctx, key, out)
	return out, nil
}

func (s *QueryService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, _ := s.cache.Get(ctx, key, dst)
	return ok
}

func (s *QueryService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
}

func copyHotels(in []domain.NormalizedHotel) []domain.NormalizedHotel {
	out := make([]domain.NormalizedHotel, len(in))
	for i, h := range in {
		out[i] = h
		out[i].RawHotel = h.RawHotel.Clone()
	}
	return out
}
