package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"market-card/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type fakeSource struct {
	err error
}

func (f fakeSource) Snapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	if f.err != nil {
		return domain.MarketSnapshot{}, f.err
	}
	return domain.MarketSnapshot{
		Date:       "October 16",
		FearGreed:  64,
		AltSeason:  66,
		Coins:      []domain.Coin{{Symbol: "BTC", Name: "Bitcoin", Price: 64000, ChangePct: 0.01}},
		AIAnalysis: "Greed is rising.",
	}, nil
}

type fakeRenderer struct{}

func (fakeRenderer) PNG(snap domain.MarketSnapshot) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

func connect(t *testing.T, server *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestOverviewTool(t *testing.T) {
	cs := connect(t, New(testTracer, fakeSource{}, fakeRenderer{}, time.Second))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: OverviewTool, Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	for _, want := range []string{"October 16", "Fear Greed 64 / 100", "BTC", "Greed is rising."} {
		if !strings.Contains(text.Text, want) {
			t.Fatalf("summary missing %q: %s", want, text.Text)
		}
	}
	structured, ok := res.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("expected structured content, got %T", res.StructuredContent)
	}
	if structured["altSeason"] != float64(66) {
		t.Fatalf("unexpected structured content: %v", structured)
	}
}

func TestOverviewToolError(t *testing.T) {
	cs := connect(t, New(testTracer, fakeSource{err: errors.New("CMC quotes HTTP 500")}, nil, time.Second))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: OverviewTool, Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error result")
	}
}

func TestCardTool(t *testing.T) {
	cs := connect(t, New(testTracer, fakeSource{}, fakeRenderer{}, time.Second))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: CardTool, Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	img, ok := res.Content[0].(*mcp.ImageContent)
	if !ok || img.MIMEType != "image/png" || len(img.Data) == 0 {
		t.Fatalf("unexpected card content: %+v", res.Content)
	}
}

func TestCardToolOmittedWithoutRenderer(t *testing.T) {
	cs := connect(t, New(testTracer, fakeSource{}, nil, 0))

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	if len(res.Tools) != 1 || res.Tools[0].Name != OverviewTool {
		t.Fatalf("unexpected tools: %+v", res.Tools)
	}
}

func TestBearerAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := BearerAuth("secret", ok)

	cases := map[string]int{
		"":              http.StatusUnauthorized,
		"Bearer wrong":  http.StatusUnauthorized,
		"secret":        http.StatusUnauthorized,
		"Bearer secret": http.StatusNoContent,
	}
	for header, want := range cases {
		req := httptest.NewRequest("POST", "/mcp", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("header %q: expected %d, got %d", header, want, w.Code)
		}
	}

	w := httptest.NewRecorder()
	BearerAuth("", ok).ServeHTTP(w, httptest.NewRequest("POST", "/mcp", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("empty token should disable auth, got %d", w.Code)
	}
}
