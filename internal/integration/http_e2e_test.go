//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	server "hotel_value/internal/adapters/http_server"
	redisad "hotel_value/internal/adapters/redis"
	"hotel_value/internal/app"
	"hotel_value/internal/domain"
	"hotel_value/internal/storage/sqlite"
)

// hotels_data.json as written by the ingestor
const scraped = `[
  {"id":"101","name":"Deniz Otel","star_rating":4,"location":"Konyaaltı","distance_to_center":"2.5 km",
   "features":["Havuz","Ücretsiz Wi-Fi"],"review_score":"8.5","review_count":"120",
   "price":"900,00 TL","daily_price":"450,00 TL","nights":"2 gece"},
  {"id":"102","name":"Kale Pansiyon","star_rating":2,"location":"Kaleiçi","distance_to_center":"0.4 km",
   "features":["Ücretsiz Wi-Fi"],"review_score":"9.2","price":"1.200,00 TL","daily_price":null},
  {"id":"103","name":"Lara Resort","star_rating":5,"location":"Lara","features":["Havuz","Spa"],
   "review_score":"9.6","price":"17.345,50 TL"},
  {"id":"104","name":"Fiyatsız Otel","review_score":"7.0","price":"Fiyat için arayın"},
  {"id":"101","name":"Deniz Otel (tekrar)","review_score":"1.0","price":"10,00 TL"}
]`

func TestHTTP_EndToEnd_AnalyzeThenServe(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := sqlite.New(db)

	raws, err := domain.DecodeRawHotels(strings.NewReader(scraped))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rep, err := app.NewAnalysisService(repo, 2).Run(ctx, raws, 10, "hotels_data.json")
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if rep.Run.Duplicates != 1 || rep.Run.Excluded != 1 || len(rep.Hotels) != 3 {
		t.Fatalf("unexpected run: %+v", rep.Run)
	}

	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: q, DefaultN: 10})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	res, err := http.Get(fmt.Sprintf("%s/v1/hotels/top?n=2", ts.URL))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	var body struct {
		Run    domain.Run        `json:"run"`
		Hotels []json.RawMessage `json:"hotels"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Run.ID != rep.Run.ID || len(body.Hotels) != 2 {
		t.Fatalf("unexpected body: run=%s hotels=%d", body.Run.ID, len(body.Hotels))
	}

	// 8.5 / 450 beats 9.2 / 1200; the 17k resort is third
	want := []string{"101", "102"}
	for i, raw := range body.Hotels {
		var h domain.NormalizedHotel
		if err := h.UnmarshalJSON(raw); err != nil {
			t.Fatalf("decode hotel %d: %v", i, err)
		}
		if h.ID != want[i] {
			t.Fatalf("rank %d: got %s want %s", i+1, h.ID, want[i])
		}
		if h.ValueRatio == nil {
			t.Fatalf("rank %d: missing value ratio", i+1)
		}
	}

	if !mr.Exists("hotelvalue:top:" + rep.Run.ID + ":2") {
		t.Fatalf("expected the response to be cached in redis")
	}

	dres, err := http.Get(ts.URL + "/v1/dashboard")
	if err != nil {
		t.Fatalf("GET dashboard: %v", err)
	}
	defer dres.Body.Close()
	var dash app.DashboardView
	if err := json.NewDecoder(dres.Body).Decode(&dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.Dashboard.Summary.Count != 3 || len(dash.Dashboard.Distance) != 2 {
		t.Fatalf("unexpected dashboard: %+v", dash.Dashboard.Summary)
	}
	if dash.Dashboard.Features[0].Feature != "Havuz" && dash.Dashboard.Features[0].Feature != "Ücretsiz Wi-Fi" {
		t.Fatalf("unexpected features: %+v", dash.Dashboard.Features)
	}
}
