// Package mcpserver exposes the market snapshot as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"market-card/internal/analysis"
	"market-card/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
)

const (
	OverviewTool = "market_overview"
	CardTool     = "market_card_png"

	defaultTimeout = 30 * time.Second
)

type SnapshotSource interface {
	Snapshot(ctx context.Context) (domain.MarketSnapshot, error)
}

type PNGRenderer interface {
	PNG(snap domain.MarketSnapshot) ([]byte, error)
}

// Version is reported to MCP clients during initialization.
var Version = "1.0.0"

type tools struct {
	tracer   trace.Tracer
	source   SnapshotSource
	renderer PNGRenderer
	timeout  time.Duration
}

type OverviewInput struct{}

type CardInput struct{}

// New builds an MCP server with the market tools registered. renderer may be
// nil, in which case only the overview tool is offered.
func New(tracer trace.Tracer, source SnapshotSource, renderer PNGRenderer, timeout time.Duration) *mcp.Server {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	t := &tools{tracer: tracer, source: source, renderer: renderer, timeout: timeout}

	server := mcp.NewServer(&mcp.Implementation{Name: "market-card", Version: Version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        OverviewTool,
		Description: "Current crypto market overview: fear & greed index, alt-season score, total market cap and volume, BTC/ETH dominance, tracked coin quotes and optional AI analysis.",
	}, t.overview)
	if renderer != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        CardTool,
			Description: "Render the current market overview card as a PNG image.",
		}, t.card)
	}
	return server
}

func (t *tools) overview(ctx context.Context, req *mcp.CallToolRequest, _ OverviewInput) (*mcp.CallToolResult, domain.MarketSnapshot, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.market-overview")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	snap, err := t.source.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, domain.MarketSnapshot{}, err
	}

	summary := snap.Date + "\n" + analysis.BuildPromptText(snap)
	if snap.HasAnalysis() {
		summary += "\n\n" + snap.AIAnalysis
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: summary}},
	}, snap, nil
}

func (t *tools) card(ctx context.Context, req *mcp.CallToolRequest, _ CardInput) (*mcp.CallToolResult, any, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.market-card-png")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	snap, err := t.source.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	img, err := t.renderer.PNG(snap)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.ImageContent{Data: img, MIMEType: "image/png"}},
	}, nil, nil
}

// HTTPHandler serves server over the streamable HTTP transport.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

// BearerAuth rejects requests without "Authorization: Bearer <token>".
// An empty token disables the check.
func BearerAuth(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(provided)), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
