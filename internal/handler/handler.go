package handler

import (
	"context"
	"time"

	"market-card/internal/domain"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SnapshotSource assembles a fresh market snapshot per call.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (domain.MarketSnapshot, error)
}

// CardRenderer turns a snapshot into the HTML and PNG card.
type CardRenderer interface {
	HTML(snap domain.MarketSnapshot) ([]byte, error)
	PNG(snap domain.MarketSnapshot) ([]byte, error)
}

type Handler struct {
	tracer    trace.Tracer
	snapshots SnapshotSource
	renderer  CardRenderer
	apiKey    string
}

func New(tracer trace.Tracer, snapshots SnapshotSource, renderer CardRenderer, apiKey string) *Handler {
	return &Handler{
		tracer:    tracer,
		snapshots: snapshots,
		renderer:  renderer,
		apiKey:    apiKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(RequestID())

	r.GET("/health", h.Health)
	r.GET("/card", h.Card)
	r.GET("/preview", h.Preview)
	r.GET("/preview.png", h.PreviewPNG)

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-API-Key"},
		ExposeHeaders:   []string{RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))
	api.Use(APIKeyAuth(h.apiKey))
	api.GET("/market", h.GetMarket)
}
