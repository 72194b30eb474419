package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"market-card/internal/market"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	fearGreedChartBaseURL    = "https://api.coinmarketcap.com"
	fearGreedFallbackBaseURL = "https://api.alternative.me"

	// NeutralFearGreed is returned when no sentiment source answers.
	NeutralFearGreed = 50
)

var errNoSentimentValue = errors.New("no usable sentiment value")

// FearGreedProvider reads the fear & greed index from the CoinMarketCap chart
// endpoint, falling back to alternative.me.
type FearGreedProvider struct {
	http        *resty.Client
	chartURL    string
	fallbackURL string
	tracer      trace.Tracer
	now         func() time.Time
}

// NewFearGreedProvider creates a provider; empty URLs select the public endpoints.
func NewFearGreedProvider(tracer trace.Tracer, chartURL, fallbackURL string) *FearGreedProvider {
	if strings.TrimSpace(chartURL) == "" {
		chartURL = fearGreedChartBaseURL
	}
	if strings.TrimSpace(fallbackURL) == "" {
		fallbackURL = fearGreedFallbackBaseURL
	}
	return &FearGreedProvider{
		http:        resty.New().SetTimeout(15 * time.Second),
		chartURL:    strings.TrimRight(chartURL, "/"),
		fallbackURL: strings.TrimRight(fallbackURL, "/"),
		tracer:      tracer,
		now:         time.Now,
	}
}

// FetchIndex never fails: chart value (rounded), then fallback value, then NeutralFearGreed.
func (p *FearGreedProvider) FetchIndex(ctx context.Context) int {
	ctx, span := p.tracer.Start(ctx, "feargreed.fetch-index")
	defer span.End()

	v, err := p.fetchChart(ctx)
	if err == nil {
		span.SetAttributes(attribute.String("feargreed.source", "chart"))
		return int(market.RoundHalfUp(v))
	}
	log.Printf("fear & greed chart unavailable, trying fallback: %v", err)

	v, err = p.fetchLatest(ctx)
	if err == nil {
		span.SetAttributes(attribute.String("feargreed.source", "fallback"))
		return int(v)
	}
	log.Printf("fear & greed fallback unavailable, using neutral value: %v", err)

	span.SetAttributes(attribute.String("feargreed.source", "default"))
	return NeutralFearGreed
}

// fetchChart reads the last point of the 7-day chart. The payload is undocumented,
// so both data.points and data.values with y/value/score are accepted.
func (p *FearGreedProvider) fetchChart(ctx context.Context) (float64, error) {
	end := p.now().Unix()
	start := end - int64(7*24*time.Hour/time.Second)

	body, err := p.getJSON(ctx, p.chartURL+"/data-api/v3/fear-greed/chart", map[string]string{
		"start": strconv.FormatInt(start, 10),
		"end":   strconv.FormatInt(end, 10),
	})
	if err != nil {
		return 0, err
	}

	data := gjson.GetBytes(body, "data")
	points := data.Get("points")
	if !points.Exists() || points.Type == gjson.Null {
		points = data.Get("values")
	}
	if !points.IsArray() {
		return 0, fmt.Errorf("chart payload has no points: %w", errNoSentimentValue)
	}
	rows := points.Array()
	if len(rows) == 0 {
		return 0, fmt.Errorf("chart payload has empty points: %w", errNoSentimentValue)
	}

	latest := rows[len(rows)-1]
	for _, key := range []string{"y", "value", "score"} {
		if field := latest.Get(key); field.Exists() && field.Type != gjson.Null {
			return numericValue(field)
		}
	}
	return 0, fmt.Errorf("chart point has no value: %w", errNoSentimentValue)
}

// fetchLatest reads the single latest value from alternative.me.
func (p *FearGreedProvider) fetchLatest(ctx context.Context) (float64, error) {
	body, err := p.getJSON(ctx, p.fallbackURL+"/fng/", map[string]string{"limit": "1"})
	if err != nil {
		return 0, err
	}
	field := gjson.GetBytes(body, "data.0.value")
	if !field.Exists() {
		return 0, fmt.Errorf("fear & greed response has no rows: %w", errNoSentimentValue)
	}
	return numericValue(field)
}

func (p *FearGreedProvider) getJSON(ctx context.Context, url string, query map[string]string) ([]byte, error) {
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fear & greed API error %d: %s", resp.StatusCode(), resp.String())
	}
	if !gjson.ValidBytes(resp.Body()) {
		return nil, fmt.Errorf("fear & greed API returned invalid JSON")
	}
	return resp.Body(), nil
}

// numericValue accepts JSON numbers and numeric strings, rejecting non-finite results.
func numericValue(field gjson.Result) (float64, error) {
	var v float64
	switch field.Type {
	case gjson.Number:
		v = field.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(field.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("parse sentiment value %q: %w", field.Str, err)
		}
		v = parsed
	default:
		return 0, fmt.Errorf("sentiment value has type %s: %w", field.Type, errNoSentimentValue)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("sentiment value is not finite: %w", errNoSentimentValue)
	}
	return v, nil
}
