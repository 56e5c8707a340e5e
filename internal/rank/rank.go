// Package rank orders normalized hotels by value ratio.
package rank

import (
	"sort"

	"hotel_value/internal/domain"
)

// DefaultTopN is used when no TOP_N is configured.
const DefaultTopN = 10

// Result is a ranked slice plus the counts a report needs.
type Result struct {
	Hotels   []domain.NormalizedHotel
	Total    int // records considered
	Eligible int // records with a value ratio
	Excluded int // records without one
}

// Top keeps records with a value ratio, sorts them by ratio descending and returns at most n.
// Ties keep their input order. n <= 0 returns no hotels; the counts are still filled in.
func Top(records []domain.NormalizedHotel, n int) Result {
	eligible := make([]domain.NormalizedHotel, 0, len(records))
	for _, r := range records {
		if r.ValueRatio != nil {
			eligible = append(eligible, r)
		}
	}
	res := Result{
		Hotels:   []domain.NormalizedHotel{},
		Total:    len(records),
		Eligible: len(eligible),
		Excluded: len(records) - len(eligible),
	}
	if n <= 0 || len(eligible) == 0 {
		return res
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return *eligible[i].ValueRatio > *eligible[j].ValueRatio
	})
	if n > len(eligible) {
		n = len(eligible)
	}
	res.Hotels = eligible[:n:n]
	return res
}
