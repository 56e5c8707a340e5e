package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_value/internal/adapters/observability"
	"hotel_value/internal/domain"
	"hotel_value/internal/normalize"
	"hotel_value/internal/rank"
)

// Report is the outcome of one analysis pass.
type Report struct {
	Run         domain.Run
	Hotels      []domain.NormalizedHotel // ranked, best value first
	ParseMisses map[string]int           // text present but no number could be read
}

type AnalysisService struct {
	repo    domain.RunRepository // nil: runs are not persisted
	workers int

	now   func() time.Time
	newID func() string
}

func NewAnalysisService(repo domain.RunRepository, workers int) *AnalysisService {
	return &AnalysisService{
		repo:    repo,
		workers: workers,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Run dedupes, normalizes and ranks raws, then saves the ranked hotels as a new run.
func (s *AnalysisService) Run(ctx context.Context, raws []domain.RawHotel, topN int, source string) (Report, error) {
	unique, dups := domain.Dedupe(raws)

	normalized, err := normalize.NormalizeAll(ctx, unique, s.workers)
	if err != nil {
		return Report{}, err
	}
	misses := parseMisses(normalized)
	for field, n := range misses {
		observability.ObserveParseMiss(field, n)
	}

	res := rank.Top(normalized, topN)
	run := domain.Run{
		ID:         s.newID(),
		CreatedAt:  s.now().UTC(),
		Source:     source,
		Total:      res.Total,
		Duplicates: dups,
		Eligible:   res.Eligible,
		Excluded:   res.Excluded,
		TopN:       topN,
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run, res.Hotels); err != nil {
			return Report{}, err
		}
	}

	observability.ObservePipeline("ranked", len(res.Hotels))
	observability.ObservePipeline("eligible", res.Eligible)
	observability.ObservePipeline("excluded", res.Excluded)
	observability.ObservePipeline("duplicate", dups)

	log.Info().
		Str("run_id", run.ID).
		Int("total", run.Total).
		Int("ranked", len(res.Hotels)).
		Int("excluded", run.Excluded).
		Int("duplicates", dups).
		Msg("analysis finished")

	return Report{Run: run, Hotels: res.Hotels, ParseMisses: misses}, nil
}

func parseMisses(hs []domain.NormalizedHotel) map[string]int {
	out := map[string]int{}
	count := func(field string, text *string, num *float64) {
		if text != nil && *text != "" && num == nil {
			out[field]++
		}
	}
	for _, h := range hs {
		count(domain.KeyPrice, h.Price, h.NumericPrice)
		count(domain.KeyDailyPrice, h.DailyPrice, h.NumericDailyPrice)
		count(domain.KeyReviewScore, h.ReviewScore, h.NumericReviewScore)
		count(domain.KeyReviewCount, h.ReviewCount, h.NumericReviewCount)
		count(domain.KeyDistanceToCenter, h.DistanceToCenter, h.NumericDistance)
	}
	return out
}
