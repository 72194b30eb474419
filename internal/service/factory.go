package service

import (
	"log"
	"time"

	"market-card/internal/analysis"
	"market-card/internal/config"
	"market-card/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

var newOpenAIClient = analysis.NewOpenAIClient

// NewMarketServiceFromConfig wires the production providers and picks the
// analysis backend: a dedicated endpoint first, then OpenAI, else none.
func NewMarketServiceFromConfig(tracer trace.Tracer, cfg *config.Config) *MarketService {
	cmc := provider.NewCoinMarketCapProvider(tracer, cfg.CMCAPIKey, cfg.CMCBaseURL)
	sentiment := provider.NewFearGreedProvider(tracer, cfg.CMCDataAPIURL, cfg.FearGreedFallbackURL)

	var analyst analysis.Analyst
	switch {
	case cfg.AnalysisURL != "":
		analyst = analysis.NewHTTPAnalyst(tracer, cfg.AnalysisURL)
		log.Println("analysis: using ANALYSIS_URL endpoint")
	case cfg.OpenAIAPIKey != "":
		analyst = analysis.NewOpenAIAnalyst(tracer, newOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
		log.Printf("analysis: using OpenAI model %s", cfg.OpenAIModel)
	default:
		log.Println("analysis: disabled")
	}
	composer := analysis.NewComposer(tracer, analyst, time.Duration(cfg.AnalysisTimeoutSecs)*time.Second)

	return NewMarketService(tracer, cmc, sentiment, composer, cfg.MarketSymbols)
}
