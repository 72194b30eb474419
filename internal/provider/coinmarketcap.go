package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"market-card/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const coinMarketCapBaseURL = "https://pro-api.coinmarketcap.com"

// CoinMarketCapProvider fetches global metrics and quotes from the CoinMarketCap Pro API.
type CoinMarketCapProvider struct {
	http    *resty.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinMarketCapProvider creates a provider limited to the Basic plan's 30 calls per minute.
// An empty baseURL selects the public Pro API.
func NewCoinMarketCapProvider(tracer trace.Tracer, apiKey, baseURL string) *CoinMarketCapProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = coinMarketCapBaseURL
	}
	return &CoinMarketCapProvider{
		http:    resty.New().SetTimeout(20 * time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(30),
	}
}

type cmcStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type cmcGlobalMetricsResponse struct {
	Status cmcStatus `json:"status"`
	Data   struct {
		BTCDominance float64 `json:"btc_dominance"`
		ETHDominance float64 `json:"eth_dominance"`
		Quote        map[string]struct {
			TotalMarketCap                       float64  `json:"total_market_cap"`
			TotalMarketCapYesterdayChangePercent *float64 `json:"total_market_cap_yesterday_percentage_change"`
			TotalVolume24h                       float64  `json:"total_volume_24h"`
			TotalVolume24hYesterdayChangePercent *float64 `json:"total_volume_24h_yesterday_percentage_change"`
		} `json:"quote"`
	} `json:"data"`
}

type cmcQuotesResponse struct {
	Status cmcStatus `json:"status"`
	Data   map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Quote  map[string]struct {
			Price            float64  `json:"price"`
			PercentChange24h *float64 `json:"percent_change_24h"`
		} `json:"quote"`
	} `json:"data"`
}

// FetchGlobalMetrics returns market cap, volume, their daily changes as fractions, and dominance.
func (p *CoinMarketCapProvider) FetchGlobalMetrics(ctx context.Context) (domain.GlobalMetrics, error) {
	ctx, span := p.tracer.Start(ctx, "coinmarketcap.fetch-global-metrics")
	defer span.End()

	const op = "CMC global metrics"
	var payload cmcGlobalMetricsResponse
	if err := p.get(ctx, op, "/v1/global-metrics/quotes/latest", nil, &payload, &payload.Status); err != nil {
		span.RecordError(err)
		return domain.GlobalMetrics{}, err
	}

	usd, ok := payload.Data.Quote["USD"]
	if !ok {
		return domain.GlobalMetrics{}, &UpstreamError{Op: op, Message: "CMC global metrics response has no USD quote"}
	}

	return domain.GlobalMetrics{
		TotalMarketCap:     usd.TotalMarketCap,
		MarketCapChangePct: percentToFraction(usd.TotalMarketCapYesterdayChangePercent),
		Volume24h:          usd.TotalVolume24h,
		VolumeChangePct:    percentToFraction(usd.TotalVolume24hYesterdayChangePercent),
		BTCDominance:       payload.Data.BTCDominance,
		ETHDominance:       payload.Data.ETHDominance,
	}, nil
}

// FetchQuotes returns one coin per requested symbol, in request order. A symbol
// missing from the response fails the whole call.
func (p *CoinMarketCapProvider) FetchQuotes(ctx context.Context, symbols []string) ([]domain.Coin, error) {
	ctx, span := p.tracer.Start(ctx, "coinmarketcap.fetch-quotes")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("symbols", symbols))

	const op = "CMC quotes"
	var payload cmcQuotesResponse
	query := map[string]string{"symbol": strings.Join(symbols, ",")}
	if err := p.get(ctx, op, "/v1/cryptocurrency/quotes/latest", query, &payload, &payload.Status); err != nil {
		span.RecordError(err)
		return nil, err
	}

	coins := make([]domain.Coin, 0, len(symbols))
	for _, sym := range symbols {
		item, ok := payload.Data[sym]
		if !ok {
			return nil, &UpstreamError{Op: op, Message: fmt.Sprintf("CMC quotes response missing symbol %s", sym)}
		}
		usd, ok := item.Quote["USD"]
		if !ok {
			return nil, &UpstreamError{Op: op, Message: fmt.Sprintf("CMC quotes response has no USD quote for %s", sym)}
		}
		coins = append(coins, domain.Coin{
			Symbol:    sym,
			Name:      item.Name,
			Price:     usd.Price,
			ChangePct: percentToFraction(usd.PercentChange24h),
		})
	}
	return coins, nil
}

// get performs one authenticated GET and decodes the body into out. status must
// point into out so the provider's embedded error code can be checked.
func (p *CoinMarketCapProvider) get(ctx context.Context, op, path string, query map[string]string, out any, status *cmcStatus) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("X-CMC_PRO_API_KEY", p.apiKey).
		SetHeader("Accept", "application/json").
		SetQueryParams(query).
		Get(p.baseURL + path)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	if !resp.IsSuccess() {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode()}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if status.ErrorCode != 0 {
		msg := strings.TrimSpace(status.ErrorMessage)
		if msg == "" {
			msg = op + " error"
		}
		return &UpstreamError{Op: op, Message: msg}
	}
	return nil
}

func percentToFraction(pct *float64) float64 {
	if pct == nil {
		return 0
	}
	return *pct / 100
}
