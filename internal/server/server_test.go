package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hasibx0/ai-blogger-bot/internal/compose"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	post := compose.NewAssembler(compose.Plain).Assemble("AI Evolution", "Body <b>text</b>.", "https://img.example/x.jpg")
	srv, err := New(post, "AI Evolution - Auto Post 2026-10-18")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func TestIndexRoute(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h2>AI Evolution</h2>") {
		t.Error("expected post html in response body")
	}
	if !strings.Contains(body, "Body &lt;b&gt;text&lt;/b&gt;.") {
		t.Error("expected article text to stay escaped")
	}
	if !strings.Contains(body, "Auto Post 2026-10-18") {
		t.Error("expected subject in header")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestPostJSONRoute(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/post.json", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["title"] != "AI Evolution" {
		t.Errorf("unexpected title %q", got["title"])
	}
	if !strings.Contains(got["html"], `<img src="https://img.example/x.jpg"`) {
		t.Errorf("unexpected html %q", got["html"])
	}
	if got["plain"] != "AI Evolution\n\nBody <b>text</b>." {
		t.Errorf("unexpected plain %q", got["plain"])
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for /healthz, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/briefing/2026-02-06", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
