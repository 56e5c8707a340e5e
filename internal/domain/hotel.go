package domain

import (
	"encoding/json"
	"time"
)

// JSON keys of a hotel record. The scraper writes every known key, nulls included.
const (
	KeyID               = "id"
	KeyName             = "name"
	KeyImageURL         = "image_url"
	KeyStarRating       = "star_rating"
	KeyLocation         = "location"
	KeyDistanceToCenter = "distance_to_center"
	KeyFeatures         = "features"
	KeyReviewScore      = "review_score"
	KeyReviewText       = "review_text"
	KeyReviewCount      = "review_count"
	KeyPrice            = "price"
	KeyDailyPrice       = "daily_price"
	KeyNights           = "nights"

	KeyNumericPrice       = "numeric_price"
	KeyNumericDailyPrice  = "numeric_daily_price"
	KeyNumericReviewScore = "numeric_review_score"
	KeyNumericReviewCount = "numeric_review_count"
	KeyNumericDistance    = "numeric_distance"
	KeyValueRatio         = "value_ratio"
)

// RawHotel is one scraped listing with its text fields as they appeared on the page.
type RawHotel struct {
	ID               string
	Name             *string
	ImageURL         *string
	StarRating       *int
	Location         *string
	DistanceToCenter *string
	Features         []string
	ReviewScore      *string
	ReviewText       *string
	ReviewCount      *string
	Price            *string // "17.345,50 TL"
	DailyPrice       *string
	Nights           *string

	// Extra holds keys this package does not know about; they are written back unchanged.
	Extra map[string]json.RawMessage
}

// Clone returns a copy that shares no slices or maps with h.
func (h RawHotel) Clone() RawHotel {
	out := h
	if h.Features != nil {
		out.Features = append([]string(nil), h.Features...)
	}
	if h.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(h.Extra))
		for k, v := range h.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// NormalizedHotel is a RawHotel plus the numbers derived from its text fields.
// A nil pointer means the field could not be parsed.
type NormalizedHotel struct {
	RawHotel
	NumericPrice       *float64
	NumericDailyPrice  *float64
	NumericReviewScore *float64
	NumericReviewCount *float64
	NumericDistance    *float64
	ValueRatio         *float64
}

// DisplayPrice is the text of the price the value ratio was computed from: the daily price
// when it parsed to a positive number, else the total. Without a usable price the scraped
// total (or daily) text is shown as is.
func (h NormalizedHotel) DisplayPrice() string {
	if positive(h.NumericDailyPrice) && h.DailyPrice != nil {
		return *h.DailyPrice
	}
	if positive(h.NumericPrice) && h.Price != nil {
		return *h.Price
	}
	for _, p := range []*string{h.Price, h.DailyPrice} {
		if p != nil && *p != "" {
			return *p
		}
	}
	return ""
}

func positive(p *float64) bool { return p != nil && *p > 0 }

// Run describes one analysis pass over a batch of scraped hotels.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	Total      int       `json:"total"`      // records after dedupe
	Duplicates int       `json:"duplicates"` // records dropped by dedupe
	Eligible   int       `json:"eligible"`   // records with a value ratio
	Excluded   int       `json:"excluded"`   // records without one
	TopN       int       `json:"top_n"`
}
