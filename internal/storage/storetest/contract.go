// Package storetest checks a RunRepository implementation against the behavior the app relies on.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"hotel_value/internal/domain"
)

func pstr(s string) *string     { return &s }
func pint(i int) *int           { return &i }
func pfloat(f float64) *float64 { return &f }

// Hotels returns n ranked hotels with descending value ratios.
func Hotels(n int) []domain.NormalizedHotel {
	out := make([]domain.NormalizedHotel, n)
	for i := range out {
		out[i] = domain.NormalizedHotel{
			RawHotel: domain.RawHotel{
				ID:          fmt.Sprintf("h-%03d", i),
				Name:        pstr(fmt.Sprintf("Otel %d & Spa", i)),
				StarRating:  pint(1 + i%5),
				Location:    pstr("Kadıköy, İstanbul"),
				Features:    []string{"Havuz", "Ücretsiz Wi-Fi"},
				ReviewScore: pstr("8.4"),
				Price:       pstr("1.000,00 TL"),
			},
			NumericPrice:       pfloat(1000),
			NumericReviewScore: pfloat(8.4),
			ValueRatio:         pfloat(float64(100 - i)),
		}
		if i == 0 {
			out[i].Extra = map[string]json.RawMessage{"scraped_at": json.RawMessage(`"2025-03-21"`)}
		}
	}
	return out
}

// RunRepositoryContract saves two runs and reads them back.
func RunRepositoryContract(t *testing.T, repo domain.RunRepository) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.LatestRun(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("LatestRun on empty store: expected ErrNotFound, got %v", err)
	}

	base := time.Date(2025, 3, 21, 9, 0, 0, 0, time.UTC)
	older := domain.Run{ID: "00000000-0000-0000-0000-000000000001", CreatedAt: base, Source: "old.json",
		Total: 3, Eligible: 3, TopN: 3}
	if err := repo.SaveRun(ctx, older, Hotels(3)); err != nil {
		t.Fatalf("SaveRun(older): %v", err)
	}

	ranked := Hotels(12)
	newer := domain.Run{ID: "00000000-0000-0000-0000-000000000002", CreatedAt: base.Add(time.Hour), Source: "hotels_data.json",
		Total: 15, Duplicates: 1, Eligible: 12, Excluded: 3, TopN: 12}
	if err := repo.SaveRun(ctx, newer, ranked); err != nil {
		t.Fatalf("SaveRun(newer): %v", err)
	}

	got, err := repo.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if got.ID != newer.ID || got.Total != 15 || got.Duplicates != 1 || got.Excluded != 3 || got.Source != "hotels_data.json" {
		t.Fatalf("unexpected latest run: %+v", got)
	}
	if !got.CreatedAt.Equal(newer.CreatedAt) {
		t.Fatalf("created_at: got %s want %s", got.CreatedAt, newer.CreatedAt)
	}

	hs, err := repo.ListRanked(ctx, newer.ID, 5)
	if err != nil {
		t.Fatalf("ListRanked: %v", err)
	}
	if len(hs) != 5 {
		t.Fatalf("expected 5 hotels, got %d", len(hs))
	}
	for i, h := range hs {
		if h.ID != ranked[i].ID {
			t.Fatalf("rank %d: got %s want %s", i+1, h.ID, ranked[i].ID)
		}
		if h.ValueRatio == nil || *h.ValueRatio != *ranked[i].ValueRatio {
			t.Fatalf("rank %d: value ratio not preserved", i+1)
		}
	}
	if *hs[0].Name != "Otel 0 & Spa" || hs[0].Features[1] != "Ücretsiz Wi-Fi" || *hs[0].Location != "Kadıköy, İstanbul" {
		t.Fatalf("text fields not preserved: %+v", hs[0].RawHotel)
	}
	if string(hs[0].Extra["scraped_at"]) != `"2025-03-21"` {
		t.Fatalf("extra keys not preserved: %v", hs[0].Extra)
	}

	all, err := repo.ListRanked(ctx, newer.ID, 100)
	if err != nil || len(all) != 12 {
		t.Fatalf("ListRanked(100): %d, %v", len(all), err)
	}
	none, err := repo.ListRanked(ctx, newer.ID, 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("ListRanked(0): %d, %v", len(none), err)
	}
	missing, err := repo.ListRanked(ctx, "no-such-run", 10)
	if err != nil || len(missing) != 0 {
		t.Fatalf("ListRanked(unknown run): %d, %v", len(missing), err)
	}

	// a run id can only be saved once
	if err := repo.SaveRun(ctx, newer, ranked[:1]); err == nil {
		t.Fatalf("expected duplicate run id to fail")
	}
	if got, _ := repo.LatestRun(ctx); got.ID != newer.ID {
		t.Fatalf("failed save must not change the latest run")
	}

	unranked := Hotels(1)
	unranked[0].ValueRatio = nil
	if err := repo.SaveRun(ctx, domain.Run{ID: "bad", CreatedAt: base.Add(2 * time.Hour)}, unranked); err == nil {
		t.Fatalf("expected hotel without value ratio to be rejected")
	}
	if got, _ := repo.LatestRun(ctx); got.ID != newer.ID {
		t.Fatalf("rejected run must be rolled back")
	}
}
