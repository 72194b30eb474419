package service

import (
	"context"
	"fmt"
	"time"

	"market-card/internal/domain"
	"market-card/internal/market"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// MarketDataProvider supplies global metrics and per-coin quotes.
type MarketDataProvider interface {
	FetchGlobalMetrics(ctx context.Context) (domain.GlobalMetrics, error)
	FetchQuotes(ctx context.Context, symbols []string) ([]domain.Coin, error)
}

// SentimentProvider never fails; it degrades to a neutral reading.
type SentimentProvider interface {
	FetchIndex(ctx context.Context) int
}

type NarrativeComposer interface {
	Compose(ctx context.Context, snap domain.MarketSnapshot) string
}

// MarketService assembles one MarketSnapshot per call.
type MarketService struct {
	tracer    trace.Tracer
	market    MarketDataProvider
	sentiment SentimentProvider
	composer  NarrativeComposer
	symbols   []string
	now       func() time.Time
}

func NewMarketService(
	tracer trace.Tracer,
	marketData MarketDataProvider,
	sentiment SentimentProvider,
	composer NarrativeComposer,
	symbols []string,
) *MarketService {
	if len(symbols) == 0 {
		symbols = domain.DefaultSymbols
	}
	return &MarketService{
		tracer:    tracer,
		market:    marketData,
		sentiment: sentiment,
		composer:  composer,
		symbols:   append([]string(nil), symbols...),
		now:       time.Now,
	}
}

// Symbols returns the configured asset list in card order.
func (s *MarketService) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// Snapshot fetches metrics, quotes and sentiment concurrently and merges them.
// Upstream failures abort the whole snapshot; sentiment and analysis degrade.
func (s *MarketService) Snapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.snapshot")
	defer span.End()
	span.SetAttributes(attribute.Int("market.symbols", len(s.symbols)))

	var (
		global    domain.GlobalMetrics
		coins     []domain.Coin
		fearGreed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		global, err = s.market.FetchGlobalMetrics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		coins, err = s.market.FetchQuotes(gctx, s.symbols)
		return err
	})
	g.Go(func() error {
		fearGreed = s.sentiment.FetchIndex(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return domain.MarketSnapshot{}, fmt.Errorf("assemble market snapshot: %w", err)
	}
	if len(coins) != len(s.symbols) {
		return domain.MarketSnapshot{}, fmt.Errorf("assemble market snapshot: got %d quotes for %d symbols", len(coins), len(s.symbols))
	}

	snap := domain.MarketSnapshot{
		Date:               s.now().Format(domain.DateLayout),
		FearGreed:          clampIndex(fearGreed),
		AltSeason:          market.AltSeasonScore(global.BTCDominance, global.ETHDominance),
		TotalMarketCap:     market.Finite(global.TotalMarketCap),
		MarketCapChangePct: market.Finite(global.MarketCapChangePct),
		Volume24h:          market.Finite(global.Volume24h),
		VolumeChangePct:    market.Finite(global.VolumeChangePct),
		BTCDom:             market.Finite(global.BTCDominance),
		ETHDom:             market.Finite(global.ETHDominance),
		Coins:              make([]domain.Coin, len(coins)),
	}
	for i, c := range coins {
		c.Price = market.Finite(c.Price)
		c.ChangePct = market.Finite(c.ChangePct)
		snap.Coins[i] = c
	}

	if s.composer != nil {
		snap.AIAnalysis = s.composer.Compose(ctx, snap)
	}
	span.SetAttributes(
		attribute.Int("market.fear_greed", snap.FearGreed),
		attribute.Int("market.alt_season", snap.AltSeason),
		attribute.Bool("market.has_analysis", snap.HasAnalysis()),
	)
	return snap, nil
}

func clampIndex(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
