package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"market-card/internal/domain"
	"market-card/internal/provider"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type fakeSnapshots struct {
	snap  domain.MarketSnapshot
	err   error
	calls int
}

func (f *fakeSnapshots) Snapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

type fakeRenderer struct {
	htmlErr error
	pngErr  error
}

func (f *fakeRenderer) HTML(snap domain.MarketSnapshot) ([]byte, error) {
	if f.htmlErr != nil {
		return nil, f.htmlErr
	}
	return []byte("<div id=\"card\">" + snap.Date + "</div>"), nil
}

func (f *fakeRenderer) PNG(snap domain.MarketSnapshot) ([]byte, error) {
	if f.pngErr != nil {
		return nil, f.pngErr
	}
	return []byte("\x89PNG fake"), nil
}

func testSnapshot() domain.MarketSnapshot {
	return domain.MarketSnapshot{
		Date:      "October 16",
		FearGreed: 64,
		AltSeason: 66,
		Coins:     []domain.Coin{{Symbol: "BTC", Name: "Bitcoin", Price: 64000, ChangePct: 0.01}},
	}
}

func newTestRouter(snaps *fakeSnapshots, renderer *fakeRenderer, apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(trace.NewNoopTracerProvider().Tracer("test"), snaps, renderer, apiKey)
	h.RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCardRendersHTML(t *testing.T) {
	snaps := &fakeSnapshots{snap: testSnapshot()}
	r := newTestRouter(snaps, &fakeRenderer{}, "")

	w := doRequest(r, "GET", "/card", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "October 16") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if snaps.calls != 1 {
		t.Fatalf("expected one snapshot per request, got %d", snaps.calls)
	}
}

func TestCardErrors(t *testing.T) {
	cases := []struct {
		name     string
		snaps    *fakeSnapshots
		renderer *fakeRenderer
	}{
		{"snapshot", &fakeSnapshots{err: errors.New("boom")}, &fakeRenderer{}},
		{"render", &fakeSnapshots{snap: testSnapshot()}, &fakeRenderer{htmlErr: errors.New("bad template")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(newTestRouter(tc.snaps, tc.renderer, ""), "GET", "/card", nil)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", w.Code)
			}
			if w.Body.String() != "Card render error" {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestPreviewRedirects(t *testing.T) {
	w := doRequest(newTestRouter(&fakeSnapshots{}, &fakeRenderer{}, ""), "GET", "/preview", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/card" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestPreviewPNG(t *testing.T) {
	w := doRequest(newTestRouter(&fakeSnapshots{snap: testSnapshot()}, &fakeRenderer{}, ""), "GET", "/preview.png", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}

	w = doRequest(newTestRouter(&fakeSnapshots{snap: testSnapshot()}, &fakeRenderer{pngErr: errors.New("encode")}, ""), "GET", "/preview.png", nil)
	if w.Code != http.StatusInternalServerError || w.Body.String() != "PNG render error" {
		t.Fatalf("expected PNG render error, got %d %s", w.Code, w.Body.String())
	}
}

func TestGetMarketJSON(t *testing.T) {
	w := doRequest(newTestRouter(&fakeSnapshots{snap: testSnapshot()}, &fakeRenderer{}, ""), "GET", "/api/market", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["date"] != "October 16" || body["altSeason"] != float64(66) {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["aiAnalysis"]; ok {
		t.Fatalf("empty analysis should be omitted: %v", body)
	}
}

func TestGetMarketUpstreamError(t *testing.T) {
	upstream := &provider.UpstreamError{Op: "CMC quotes", Message: "API key missing."}
	snaps := &fakeSnapshots{err: fmt.Errorf("assemble market snapshot: %w", upstream)}

	w := doRequest(newTestRouter(snaps, &fakeRenderer{}, ""), "GET", "/api/market", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "API key missing.") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	snaps.err = errors.New("unexpected")
	w = doRequest(newTestRouter(snaps, &fakeRenderer{}, ""), "GET", "/api/market", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetMarketRequiresAPIKey(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{snap: testSnapshot()}, &fakeRenderer{}, "secret")

	if w := doRequest(r, "GET", "/api/market", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := doRequest(r, "GET", "/api/market", map[string]string{"X-API-Key": "wrong"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := doRequest(r, "GET", "/api/market", map[string]string{"X-API-Key": "secret"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := doRequest(r, "GET", "/card", nil); w.Code != http.StatusOK {
		t.Fatalf("card should not require an API key, got %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &fakeRenderer{}, "")

	w := doRequest(r, "GET", "/health", nil)
	if id := w.Header().Get(RequestIDHeader); len(id) != 36 {
		t.Fatalf("expected generated uuid, got %q", id)
	}

	w = doRequest(r, "GET", "/health", map[string]string{RequestIDHeader: "abc-123"})
	if id := w.Header().Get(RequestIDHeader); id != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", id)
	}
}

func TestAPICORS(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{snap: testSnapshot()}, &fakeRenderer{}, "")
	w := doRequest(r, "GET", "/api/market", map[string]string{"Origin": "https://example.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard CORS origin, got %q", got)
	}
}
