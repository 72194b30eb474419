package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoAnalysis means the endpoint answered but nothing usable could be extracted.
var ErrNoAnalysis = errors.New("no analysis in response")

// HTTPAnalyst posts the prompt text as {"data": text} to an analysis endpoint.
type HTTPAnalyst struct {
	http   *resty.Client
	url    string
	tracer trace.Tracer
}

func NewHTTPAnalyst(tracer trace.Tracer, url string) *HTTPAnalyst {
	return &HTTPAnalyst{
		http:   resty.New(),
		url:    url,
		tracer: tracer,
	}
}

// Analyze returns the raw analysis text. Non-2xx responses with a body still
// count as analysis; JSON bodies go through ExtractAnalysisText.
func (a *HTTPAnalyst) Analyze(ctx context.Context, prompt string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "analysis.http-analyze")
	defer span.End()

	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"data": prompt}).
		Post(a.url)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	body := strings.TrimSpace(resp.String())
	if !resp.IsSuccess() {
		if body == "" {
			return "", fmt.Errorf("analysis endpoint error %d", resp.StatusCode())
		}
		log.Printf("analysis endpoint returned %d, using body: %s", resp.StatusCode(), body)
		return body, nil
	}

	if strings.Contains(resp.Header().Get("Content-Type"), "application/json") && gjson.ValidBytes(resp.Body()) {
		if text, ok := ExtractAnalysisText(resp.Body()); ok {
			return text, nil
		}
		return "", ErrNoAnalysis
	}

	if body == "" {
		return "", ErrNoAnalysis
	}
	return body, nil
}
