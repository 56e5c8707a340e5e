// Package analytics computes the series behind the hotel value dashboard.
// Every function works on already ranked hotels and skips values that could not be parsed.
package analytics

import (
	"sort"

	"hotel_value/internal/domain"
)

// ImpactFeatures is how many of the most frequent features get a with/without comparison.
const ImpactFeatures = 5

type Summary struct {
	Count      int      `json:"count"`
	MeanPrice  *float64 `json:"mean_price"`
	MeanScore  *float64 `json:"mean_review_score"`
	MeanRatio  *float64 `json:"mean_value_ratio"`
	PriceCount int      `json:"price_count"`
	ScoreCount int      `json:"score_count"`
}

type ValueBar struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Ratio float64 `json:"value_ratio"`
}

type ScatterPoint struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Score       float64  `json:"review_score"`
	Ratio       *float64 `json:"value_ratio"`
	ReviewCount *float64 `json:"review_count"`
}

type Dashboard struct {
	Summary        Summary         `json:"summary"`
	ValueBars      []ValueBar      `json:"value_bars"`
	PriceVsScore   []ScatterPoint  `json:"price_vs_score"`
	PriceHistogram []Bin           `json:"price_histogram"`
	PriceByStars   []BoxStats      `json:"price_by_stars"`
	ScoreHistogram []Bin           `json:"score_histogram"`
	ScoreByStars   []BoxStats      `json:"score_by_stars"`
	Features       []FeatureCount  `json:"features"`
	FeatureImpact  []FeatureImpact `json:"feature_impact"`
	Locations      []LocationCount `json:"locations"`
	Distance       []DistancePoint `json:"distance_vs_price"`
}

// Build computes every dashboard section over hs, which is expected in ranked order.
func Build(hs []domain.NormalizedHotel) Dashboard {
	features := FeatureFrequency(hs)
	return Dashboard{
		Summary:        Summarize(hs),
		ValueBars:      ValueBars(hs),
		PriceVsScore:   PriceVsScore(hs),
		PriceHistogram: histogram(collect(hs, price)),
		PriceByStars:   ByStars(hs, price),
		ScoreHistogram: histogram(collect(hs, score)),
		ScoreByStars:   ByStars(hs, score),
		Features:       features,
		FeatureImpact:  Impact(hs, features, ImpactFeatures),
		Locations:      LocationCounts(hs),
		Distance:       DistanceVsPrice(hs),
	}
}

func Summarize(hs []domain.NormalizedHotel) Summary {
	prices := collect(hs, price)
	scores := collect(hs, score)
	return Summary{
		Count:      len(hs),
		MeanPrice:  mean(prices),
		MeanScore:  mean(scores),
		MeanRatio:  mean(collect(hs, ratio)),
		PriceCount: len(prices),
		ScoreCount: len(scores),
	}
}

// ValueBars lists hotels that have a value ratio, in input order.
func ValueBars(hs []domain.NormalizedHotel) []ValueBar {
	out := []ValueBar{}
	for _, h := range hs {
		if h.ValueRatio == nil {
			continue
		}
		out = append(out, ValueBar{ID: h.ID, Name: name(h), Ratio: *h.ValueRatio})
	}
	return out
}

// PriceVsScore returns one point per hotel with both a price and a review score.
func PriceVsScore(hs []domain.NormalizedHotel) []ScatterPoint {
	out := []ScatterPoint{}
	for _, h := range hs {
		if h.NumericPrice == nil || h.NumericReviewScore == nil {
			continue
		}
		out = append(out, ScatterPoint{
			Name:        name(h),
			Price:       *h.NumericPrice,
			Score:       *h.NumericReviewScore,
			Ratio:       h.ValueRatio,
			ReviewCount: h.NumericReviewCount,
		})
	}
	return out
}

// ByStars groups the values picked by get per star rating, ascending, unrated last.
func ByStars(hs []domain.NormalizedHotel, get func(domain.NormalizedHotel) *float64) []BoxStats {
	groups := map[int][]float64{}
	var unrated []float64
	for _, h := range hs {
		v := get(h)
		if v == nil {
			continue
		}
		if h.StarRating == nil {
			unrated = append(unrated, *v)
			continue
		}
		groups[*h.StarRating] = append(groups[*h.StarRating], *v)
	}

	stars := make([]int, 0, len(groups))
	for s := range groups {
		stars = append(stars, s)
	}
	sort.Ints(stars)

	out := make([]BoxStats, 0, len(stars)+1)
	for _, s := range stars {
		out = append(out, box(&s, groups[s]))
	}
	if len(unrated) > 0 {
		out = append(out, box(nil, unrated))
	}
	return out
}

func price(h domain.NormalizedHotel) *float64 { return h.NumericPrice }
func score(h domain.NormalizedHotel) *float64 { return h.NumericReviewScore }
func ratio(h domain.NormalizedHotel) *float64 { return h.ValueRatio }

func collect(hs []domain.NormalizedHotel, get func(domain.NormalizedHotel) *float64) []float64 {
	out := make([]float64, 0, len(hs))
	for _, h := range hs {
		if v := get(h); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func name(h domain.NormalizedHotel) string {
	if h.Name != nil {
		return *h.Name
	}
	return h.ID
}
