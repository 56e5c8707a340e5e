package analytics

import (
	"sort"

	"hotel_value/internal/domain"
	"hotel_value/internal/normalize"
)

type FeatureCount struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

// FeatureImpact compares hotels that list a feature with those that do not.
// A group with no values averages to 0.
type FeatureImpact struct {
	Feature         string  `json:"feature"`
	With            int     `json:"with"`
	Without         int     `json:"without"`
	ScoreWith       float64 `json:"avg_score_with"`
	ScoreWithout    float64 `json:"avg_score_without"`
	PriceWith       float64 `json:"avg_price_with"`
	PriceWithout    float64 `json:"avg_price_without"`
	ScoreDifference float64 `json:"score_difference"`
	PriceDifference float64 `json:"price_difference"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type DistancePoint struct {
	Name     string   `json:"name"`
	Distance float64  `json:"distance"`
	Price    *float64 `json:"price"`
	Score    *float64 `json:"review_score"`
}

// FeatureFrequency counts every listed feature, most frequent first, ties by name.
func FeatureFrequency(hs []domain.NormalizedHotel) []FeatureCount {
	counts := map[string]int{}
	for _, h := range hs {
		for _, f := range h.Features {
			counts[f]++
		}
	}
	return sortedCounts(counts, func(k string, n int) FeatureCount { return FeatureCount{k, n} })
}

// Impact compares the top k features of freq.
func Impact(hs []domain.NormalizedHotel, freq []FeatureCount, k int) []FeatureImpact {
	if k > len(freq) {
		k = len(freq)
	}
	out := make([]FeatureImpact, 0, k)
	for _, fc := range freq[:k] {
		var withScore, withoutScore, withPrice, withoutPrice []float64
		imp := FeatureImpact{Feature: fc.Feature}
		for _, h := range hs {
			has := hasFeature(h, fc.Feature)
			if has {
				imp.With++
			} else {
				imp.Without++
			}
			if h.NumericReviewScore != nil {
				if has {
					withScore = append(withScore, *h.NumericReviewScore)
				} else {
					withoutScore = append(withoutScore, *h.NumericReviewScore)
				}
			}
			if h.NumericPrice != nil {
				if has {
					withPrice = append(withPrice, *h.NumericPrice)
				} else {
					withoutPrice = append(withoutPrice, *h.NumericPrice)
				}
			}
		}
		imp.ScoreWith = meanOrZero(withScore)
		imp.ScoreWithout = meanOrZero(withoutScore)
		imp.PriceWith = meanOrZero(withPrice)
		imp.PriceWithout = meanOrZero(withoutPrice)
		imp.ScoreDifference = imp.ScoreWith - imp.ScoreWithout
		imp.PriceDifference = imp.PriceWith - imp.PriceWithout
		out = append(out, imp)
	}
	return out
}

func hasFeature(h domain.NormalizedHotel, f string) bool {
	for _, x := range h.Features {
		if x == f {
			return true
		}
	}
	return false
}

// LocationCounts counts hotels per location text; hotels without one are left out.
func LocationCounts(hs []domain.NormalizedHotel) []LocationCount {
	counts := map[string]int{}
	for _, h := range hs {
		if h.Location != nil && *h.Location != "" {
			counts[*h.Location]++
		}
	}
	return sortedCounts(counts, func(k string, n int) LocationCount { return LocationCount{k, n} })
}

// DistanceVsPrice returns a point for every hotel whose distance text holds a number.
func DistanceVsPrice(hs []domain.NormalizedHotel) []DistancePoint {
	out := []DistancePoint{}
	for _, h := range hs {
		d := h.NumericDistance
		if d == nil {
			// records loaded from older exports have no numeric_distance key
			d = normalize.ParseDistance(h.DistanceToCenter)
		}
		if d == nil {
			continue
		}
		out = append(out, DistancePoint{Name: name(h), Distance: *d, Price: h.NumericPrice, Score: h.NumericReviewScore})
	}
	return out
}

func sortedCounts[T any](counts map[string]int, mk func(string, int) T) []T {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	out := make([]T, len(keys))
	for i, k := range keys {
		out[i] = mk(k, counts[k])
	}
	return out
}
