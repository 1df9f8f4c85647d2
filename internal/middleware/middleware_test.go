package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNoCache tests the debug-mode caching headers
func TestNoCache(t *testing.T) {
	handler := NoCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x", nil))

	expected := map[string]string{
		"Cache-Control": "no-cache, no-store, must-revalidate",
		"Expires":       "0",
		"Pragma":        "no-cache",
	}
	for header, value := range expected {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("expected %s: %q, got %q", header, value, got)
		}
	}
}

// TestLoggingMiddleware tests the completion log line
func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Output: &buf})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(LoggingMiddleware(log))
	r.Get("/update", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"missing sw"}`))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/update?ne=1,1", nil))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}

	if entry["level"] != "error" {
		t.Errorf("expected error level for 500, got %v", entry["level"])
	}
	if entry["route"] != "/update" || entry["query"] != "ne=1,1" {
		t.Errorf("unexpected route/query: %v %v", entry["route"], entry["query"])
	}
	if entry["status"] != float64(500) {
		t.Errorf("expected status 500, got %v", entry["status"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("expected request_id field")
	}
	if entry["message"] != "Request completed" {
		t.Errorf("unexpected message %v", entry["message"])
	}
}

// TestLoggingMiddleware_DefaultStatus tests handlers that never call WriteHeader
func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Output: &buf})

	handler := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var entry map[string]interface{}
	json.Unmarshal(buf.Bytes(), &entry)

	if entry["level"] != "info" || entry["status"] != float64(200) {
		t.Errorf("expected info/200, got %v/%v", entry["level"], entry["status"])
	}
	if entry["route"] != "unmatched" {
		t.Errorf("expected unmatched route outside chi, got %v", entry["route"])
	}
}

// TestMetricsMiddleware tests that requests are counted by route pattern
func TestMetricsMiddleware(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	for _, q := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/search?q="+q, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/search", "200")); got != 3 {
		t.Errorf("expected 3 /search requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("expected 1 unmatched 404, got %v", got)
	}
	if got := testutil.CollectAndCount(m.HTTPRequestDuration); got != 2 {
		t.Errorf("expected 2 duration series, got %d", got)
	}
}
