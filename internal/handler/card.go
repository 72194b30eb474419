package handler

import (
	"errors"
	"log"
	"net/http"

	"market-card/internal/provider"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Card godoc
// @Summary      Market card (HTML)
// @Description  Assembles a fresh snapshot and renders the market overview card as HTML
// @Tags         card
// @Produce      html
// @Success      200  {string}  string  "HTML document"
// @Failure      500  {string}  string  "Card render error"
// @Router       /card [get]
func (h *Handler) Card(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.card")
	defer span.End()

	snap, err := h.snapshots.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		log.Printf("card snapshot failed: %v", err)
		c.String(http.StatusInternalServerError, "Card render error")
		return
	}
	page, err := h.renderer.HTML(snap)
	if err != nil {
		span.RecordError(err)
		log.Printf("card html failed: %v", err)
		c.String(http.StatusInternalServerError, "Card render error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Preview godoc
// @Summary      Card preview
// @Description  Redirects to the HTML card
// @Tags         card
// @Success      302
// @Router       /preview [get]
func (h *Handler) Preview(c *gin.Context) {
	c.Redirect(http.StatusFound, "/card")
}

// PreviewPNG godoc
// @Summary      Market card (PNG)
// @Description  Assembles a fresh snapshot and renders the market overview card as a PNG image
// @Tags         card
// @Produce      png
// @Success      200  {file}    file
// @Failure      500  {string}  string  "PNG render error"
// @Router       /preview.png [get]
func (h *Handler) PreviewPNG(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.preview-png")
	defer span.End()

	snap, err := h.snapshots.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		log.Printf("png snapshot failed: %v", err)
		c.String(http.StatusInternalServerError, "PNG render error")
		return
	}
	img, err := h.renderer.PNG(snap)
	if err != nil {
		span.RecordError(err)
		log.Printf("png render failed: %v", err)
		c.String(http.StatusInternalServerError, "PNG render error")
		return
	}
	span.SetAttributes(attribute.Int("card.png_bytes", len(img)))
	c.Data(http.StatusOK, "image/png", img)
}

// GetMarket godoc
// @Summary      Market snapshot
// @Description  Returns the assembled snapshot used to draw the card
// @Tags         market
// @Produce      json
// @Param        X-API-Key  header  string  false  "API key when API_KEY is configured"
// @Success      200  {object}  domain.MarketSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/market [get]
func (h *Handler) GetMarket(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market")
	defer span.End()

	snap, err := h.snapshots.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		var upstream *provider.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(http.StatusBadGateway, gin.H{"error": upstream.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.Int("market.coins", len(snap.Coins)))
	c.JSON(http.StatusOK, snap)
}
