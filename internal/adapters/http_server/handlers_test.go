package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "hotel_value/internal/adapters/http_server"
	"hotel_value/internal/analytics"
	"hotel_value/internal/app"
	"hotel_value/internal/domain"
)

type fakeQueries struct {
	hotels    []domain.NormalizedHotel
	err       error
	lastN     int
	dashCalls int
}

var testRun = domain.Run{ID: "run-1", CreatedAt: time.Date(2025, 3, 21, 9, 0, 0, 0, time.UTC),
	Total: 3, Eligible: 2, Excluded: 1, TopN: 10}

func (f *fakeQueries) TopHotels(ctx context.Context, n int) (app.TopHotels, error) {
	f.lastN = n
	if f.err != nil {
		return app.TopHotels{}, f.err
	}
	return app.TopHotels{Run: testRun, Hotels: f.hotels}, nil
}

func (f *fakeQueries) Dashboard(ctx context.Context, n int) (app.DashboardView, error) {
	f.lastN = n
	f.dashCalls++
	if f.err != nil {
		return app.DashboardView{}, f.err
	}
	return app.DashboardView{Run: testRun, Dashboard: analytics.Build(f.hotels)}, nil
}

func pstr(s string) *string     { return &s }
func pint(i int) *int           { return &i }
func pfloat(f float64) *float64 { return &f }

func hotels() []domain.NormalizedHotel {
	return []domain.NormalizedHotel{
		{
			RawHotel: domain.RawHotel{ID: "1", Name: pstr("Deniz <Otel>"), StarRating: pint(4), Location: pstr("Konyaaltı"),
				Features: []string{"Havuz"}, DailyPrice: pstr("450,00 TL")},
			NumericPrice: pfloat(900), NumericDailyPrice: pfloat(450), NumericReviewScore: pfloat(8.5), ValueRatio: pfloat(18.8889),
		},
		{
			RawHotel:     domain.RawHotel{ID: "2", Name: pstr("Kale Pansiyon"), Features: []string{}},
			NumericPrice: pfloat(1500), NumericReviewScore: pfloat(9), ValueRatio: pfloat(6),
		},
	}
}

func newServer(q httpserver.Queries) http.Handler {
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: q, DefaultN: 10})
	return srv.Mux()
}

func get(t *testing.T, h http.Handler, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newServer(&fakeQueries{}), "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTopHotels_OK(t *testing.T) {
	q := &fakeQueries{hotels: hotels()}
	rec := get(t, newServer(q), "/v1/hotels/top?n=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("ETag"), `W/"`))
	assert.Equal(t, 2, q.lastN)

	var body struct {
		Run    domain.Run        `json:"run"`
		Hotels []json.RawMessage `json:"hotels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.Run.ID)
	require.Len(t, body.Hotels, 2)

	var first domain.NormalizedHotel
	require.NoError(t, first.UnmarshalJSON(body.Hotels[0]))
	assert.Equal(t, "Deniz <Otel>", *first.Name)
	assert.InDelta(t, 18.8889, *first.ValueRatio, 1e-9)
}

func TestTopHotels_DefaultN(t *testing.T) {
	q := &fakeQueries{hotels: hotels()}
	rec := get(t, newServer(q), "/v1/hotels/top", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, q.lastN)
}

func TestTopHotels_IfNoneMatch(t *testing.T) {
	h := newServer(&fakeQueries{hotels: hotels()})
	first := get(t, h, "/v1/hotels/top", nil)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := get(t, h, "/v1/hotels/top", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Equal(t, etag, second.Header().Get("ETag"))
	assert.Zero(t, second.Body.Len())
}

func TestTopHotels_BadN(t *testing.T) {
	h := newServer(&fakeQueries{})
	for _, n := range []string{"0", "-3", "101", "abc", "2.5"} {
		rec := get(t, h, "/v1/hotels/top?n="+n, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, n)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"), n)
	}
}

func TestQueries_NotFoundAndFailure(t *testing.T) {
	rec := get(t, newServer(&fakeQueries{err: domain.ErrNotFound}), "/v1/dashboard", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var p struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 404, p.Status)

	rec = get(t, newServer(&fakeQueries{err: errors.New("db down")}), "/v1/hotels/top", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboard_JSON(t *testing.T) {
	rec := get(t, newServer(&fakeQueries{hotels: hotels()}), "/v1/dashboard?n=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body app.DashboardView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Dashboard.Summary.Count)
	assert.Len(t, body.Dashboard.ValueBars, 2)
	assert.Equal(t, []analytics.FeatureCount{{Feature: "Havuz", Count: 1}}, body.Dashboard.Features)
}

func TestPage_RendersSections(t *testing.T) {
	rec := get(t, newServer(&fakeQueries{hotels: hotels()}), "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	page := rec.Body.String()
	assert.Contains(t, page, "Deniz &lt;Otel&gt;", "names are escaped")
	assert.Contains(t, page, "450,00 TL")
	assert.Contains(t, page, "18,8889", "decimals use Turkish separators")
	assert.Contains(t, page, "ranked 2 of 3 (1 excluded: no computable value ratio, 0 duplicates dropped)")
	for _, section := range []string{"Price distribution", "Feature impact", "Locations", "Distance to center vs price"} {
		assert.Contains(t, page, section)
	}
}

func TestPage_NoRun(t *testing.T) {
	rec := get(t, newServer(&fakeQueries{err: domain.ErrNotFound}), "/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newServer(&fakeQueries{})

	rec := get(t, h, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodPost, "/v1/hotels/top", nil)
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, http.StatusMethodNotAllowed, out.Code)
}

func TestPage_ReadsOneRun(t *testing.T) {
	q := &fakeQueries{hotels: hotels()}
	rec := get(t, newServer(q), "/?n=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, q.dashCalls, "the page builds its dashboard from the ranked hotels it already read")
	assert.Equal(t, 1, q.lastN)
}
