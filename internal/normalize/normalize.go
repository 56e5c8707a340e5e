package normalize

import (
	"context"

	"golang.org/x/sync/errgroup"

	"hotel_value/internal/domain"
)

// Normalize derives the numeric fields of h. The returned record does not share memory with h.
func Normalize(h domain.RawHotel) domain.NormalizedHotel {
	raw := h.Clone()
	return domain.NormalizedHotel{
		RawHotel:           raw,
		NumericPrice:       ParsePrice(raw.Price),
		NumericDailyPrice:  ParsePrice(raw.DailyPrice),
		NumericReviewScore: ParseNumeric(raw.ReviewScore),
		NumericReviewCount: ParseReviewCount(raw.ReviewCount),
		NumericDistance:    ParseDistance(raw.DistanceToCenter),
		ValueRatio:         ValueRatio(raw),
	}
}

// NormalizeAll normalizes every record with at most workers goroutines and keeps input order.
// It only fails when ctx is cancelled.
func NormalizeAll(ctx context.Context, in []domain.RawHotel, workers int) ([]domain.NormalizedHotel, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]domain.NormalizedHotel, len(in))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range in {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Normalize(in[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
