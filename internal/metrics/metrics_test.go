package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/distr1/archmigrate/internal/tester"
)

func TestHandlerExposesTesterStats(t *testing.T) {
	reg := New()
	stats := tester.NewStats(reg.Registerer())
	stats.CacheHits.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	reg.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(rec.Body.Bytes()) == 0 {
		t.Fatal("expected non-empty metrics output")
	}
}
