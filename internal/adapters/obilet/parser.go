package obilet

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hotel_value/internal/domain"
)

// Card is the selector of one hotel on a search result page.
const Card = "li.item.journey.js-hotel-item"

var reviewCountNum = regexp.MustCompile(`\((\d+)`)

// ParseListing extracts every hotel card of a result page in document order.
// Cards without a data-id are skipped; missing elements become nil fields.
func ParseListing(r io.Reader) ([]domain.RawHotel, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var out []domain.RawHotel
	doc.Find(Card).Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("data-id")
		if !ok || strings.TrimSpace(id) == "" {
			return
		}
		out = append(out, parseCard(strings.TrimSpace(id), s))
	})
	return out, nil
}

func parseCard(id string, s *goquery.Selection) domain.RawHotel {
	h := domain.RawHotel{
		ID:               id,
		Location:         text(s, ".hotel-location__address"),
		DistanceToCenter: text(s, ".hotel-location__city-center-distance"),
		ReviewScore:      text(s, ".hotel-review__badge"),
		ReviewText:       text(s, ".hotel-review__text"),
		ReviewCount:      text(s, ".hotel-review__comment"),
		Price:            text(s, ".hotel-price__amount"),
		DailyPrice:       text(s, ".hotel-price__daily-amount"),
		Nights:           text(s, ".hotel-price__night"),
		Features:         []string{},
	}
	if name, ok := s.Attr("data-name"); ok {
		h.Name = &name
	}
	if src, ok := s.Find(".hotel-item__image").First().Attr("src"); ok {
		h.ImageURL = &src
	}

	stars := s.Find(".hotel-item__star .star").Length()
	h.StarRating = &stars

	s.Find(".hotel-features__item span").Each(func(_ int, f *goquery.Selection) {
		if t := clean(f.Text()); t != "" {
			h.Features = append(h.Features, t)
		}
	})

	// "(128 yorum)" is stored as "128"
	if h.ReviewCount != nil {
		if m := reviewCountNum.FindStringSubmatch(*h.ReviewCount); m != nil {
			n := m[1]
			h.ReviewCount = &n
		}
	}
	return h
}

func text(s *goquery.Selection, sel string) *string {
	found := s.Find(sel).First()
	if found.Length() == 0 {
		return nil
	}
	t := clean(found.Text())
	return &t
}

// clean collapses runs of whitespace the way a browser renders text.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
