package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestIndexHandler_Index tests that the page carries the map API key
func TestIndexHandler_Index(t *testing.T) {
	handler := NewIndexHandler("test-key-123", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML content type, got %s", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "maps/api/js?key=test-key-123") {
		t.Errorf("expected API key in page, got:\n%s", body)
	}
}

// TestIndexHandler_Index_EscapesKey tests that the key cannot break out of the URL
func TestIndexHandler_Index_EscapesKey(t *testing.T) {
	handler := NewIndexHandler(`key"><script>alert(1)</script>`, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.Index(rec, req)

	if strings.Contains(rec.Body.String(), "<script>alert(1)</script>") {
		t.Error("expected key to be escaped")
	}
}

// TestIndexHandler_Index_MissingKey tests the missing API key error
func TestIndexHandler_Index_MissingKey(t *testing.T) {
	handler := NewIndexHandler("", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.Index(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "API_KEY not set") {
		t.Errorf("expected API_KEY error, got %s", rec.Body.String())
	}
}
