// Package analysis turns a market snapshot into short analyst commentary: it builds
// the prompt text, asks an analyst backend, and normalizes whatever comes back.
package analysis

import (
	"context"
	"log"
	"strings"
	"time"

	"market-card/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single analysis request.
const DefaultTimeout = 12 * time.Second

// Analyst produces raw analysis text for a prompt.
type Analyst interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Composer never fails: any analyst error or timeout yields an empty analysis.
type Composer struct {
	tracer  trace.Tracer
	analyst Analyst
	timeout time.Duration
}

// NewComposer accepts a nil analyst, in which case Compose always returns "".
func NewComposer(tracer trace.Tracer, analyst Analyst, timeout time.Duration) *Composer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Composer{tracer: tracer, analyst: analyst, timeout: timeout}
}

// Compose returns formatted analysis for snap, or "" when none is available.
func (c *Composer) Compose(ctx context.Context, snap domain.MarketSnapshot) string {
	if c == nil || c.analyst == nil {
		return ""
	}
	ctx, span := c.tracer.Start(ctx, "analysis.compose")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.analyst.Analyze(ctx, BuildPromptText(snap))
	if err != nil {
		log.Printf("analysis unavailable: %v", err)
		return ""
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return FormatAnalysisText(raw)
}

// Backend returns the analyst c was built with, or nil when analysis is off.
func (c *Composer) Backend() Analyst {
	if c == nil {
		return nil
	}
	return c.analyst
}
