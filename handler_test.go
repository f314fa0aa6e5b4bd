package edm

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	servertiming "github.com/mitchellh/go-server-timing"
)

func TestMetadataHandler(t *testing.T) {
	p := setupProvider(t)
	handler := p.MetadataHandler()

	req := httptest.NewRequest(http.MethodGet, "/$metadata", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Expected application/xml content type, got %q", ct)
	}
	if rec.Header().Get("ETag") != p.MetadataETag() {
		t.Errorf("Expected ETag header %s, got %s", p.MetadataETag(), rec.Header().Get("ETag"))
	}
	if !strings.Contains(rec.Body.String(), "<edmx:Edmx") {
		t.Error("Expected EDMX document in response body")
	}
}

func TestMetadataHandlerNotModified(t *testing.T) {
	p := setupProvider(t)
	handler := p.MetadataHandler()

	req := httptest.NewRequest(http.MethodGet, "/$metadata", nil)
	req.Header.Set("If-None-Match", p.MetadataETag())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotModified {
		t.Fatalf("Expected 304, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body on 304, got %d bytes", rec.Body.Len())
	}

	// A stale tag gets the full document again.
	req = httptest.NewRequest(http.MethodGet, "/$metadata", nil)
	req.Header.Set("If-None-Match", `"0000000000000000"`)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for stale tag, got %d", rec.Code)
	}
}

func TestMetadataHandlerMethodNotAllowed(t *testing.T) {
	p := setupProvider(t)
	handler := p.MetadataHandler()

	req := httptest.NewRequest(http.MethodPost, "/$metadata", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodGet {
		t.Errorf("Expected Allow: GET, got %q", rec.Header().Get("Allow"))
	}
}

func TestMetadataHandlerServerTiming(t *testing.T) {
	p := setupProvider(t)
	handler := servertiming.Middleware(p.MetadataHandler(), nil)

	req := httptest.NewRequest(http.MethodGet, "/$metadata", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Server-Timing"), "edm-metadata") {
		t.Errorf("Expected edm-metadata timing metric, got %q", rec.Header().Get("Server-Timing"))
	}
}
