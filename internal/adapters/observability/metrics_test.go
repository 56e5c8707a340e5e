package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hotel_value/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()
	if again := observability.InitRegistry(); again != reg {
		t.Fatalf("expected the same registry on repeated init")
	}

	// record samples so the vectors have children
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObservePipeline("ranked", 3)
	observability.ObservePipeline("excluded", 0)
	observability.ObserveParseMiss("price", 2)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"hotelvalue_http_requests_total",
		`hotelvalue_pipeline_records_total{outcome="ranked"}`,
		`hotelvalue_parse_misses_total{field="price"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
	if strings.Contains(out, `outcome="excluded"`) {
		t.Fatalf("zero counts should not create a series")
	}
}

func TestNewLogger_Level(t *testing.T) {
	if l := observability.NewLogger("prod", "test", "warn"); l.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %s", l.GetLevel())
	}
	if l := observability.NewLogger("dev", "test", "nonsense"); l.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info fallback, got %s", l.GetLevel())
	}
}
