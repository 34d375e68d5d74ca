package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware(t *testing.T) {

	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/test", testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status code %d, got %d", http.StatusOK, rec.Code)
	}

	expectedTotal := `
		# HELP loantrack_http_requests_total Total number of HTTP requests.
		# TYPE loantrack_http_requests_total counter
		loantrack_http_requests_total{method="GET",path="/test",status_code="OK"} 1
	`
	if err := testutil.CollectAndCompare(httpRequestsTotal, strings.NewReader(expectedTotal)); err != nil {
		t.Errorf("unexpected metrics for loantrack_http_requests_total: %v", err)
	}
}
