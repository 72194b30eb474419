// Package render draws a MarketSnapshot as an HTML card or a PNG image.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"market-card/internal/analysis"
	"market-card/internal/domain"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const DefaultScale = 2

// Renderer turns snapshots into card output. It is safe for concurrent use.
type Renderer struct {
	tmpl   *template.Template
	assets string
	scale  int
}

// New parses the embedded card template. assetsPath is the URL prefix the
// HTML card uses for static files; scale multiplies the PNG dimensions.
func New(assetsPath string, scale int) (*Renderer, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	if assetsPath == "" {
		assetsPath = "/assets"
	}
	tmpl, err := template.New("card").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse card template: %w", err)
	}
	return &Renderer{tmpl: tmpl, assets: strings.TrimRight(assetsPath, "/"), scale: scale}, nil
}

type cardView struct {
	Data   domain.MarketSnapshot
	Assets string
}

// HTML renders the full card page. Output is buffered so a template failure
// never produces a partial page.
func (r *Renderer) HTML(snap domain.MarketSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "card.tmpl", cardView{Data: snap, Assets: r.assets}); err != nil {
		return nil, fmt.Errorf("render card html: %w", err)
	}
	return buf.Bytes(), nil
}

var templateFuncs = template.FuncMap{
	"price":     analysis.FormatPrice,
	"pct":       func(v float64, places int) template.HTML { return template.HTML(Percent(v, places)) },
	"cap":       FormatMarketCap,
	"vol":       FormatVolume,
	"dom":       FormatDominance,
	"trend":     trendClass,
	"fearLabel": FearGreedLabel,
	"altLabel":  AltSeasonLabel,
	"lines":     func(s string) []string { return strings.Split(s, "\n") },
}

// Percent formats a fraction as "+1.23%" with the given decimals.
func Percent(frac float64, places int) string {
	v := frac * 100
	return analysis.FmtSign(v) + fixed(v, int32(places)) + "%"
}

// FormatMarketCap renders a USD amount in trillions, e.g. "$2.50T".
func FormatMarketCap(v float64) string {
	return "$" + fixed(v/1e12, 2) + "T"
}

// FormatVolume renders a USD amount in billions, e.g. "$85.3B".
func FormatVolume(v float64) string {
	return "$" + fixed(v/1e9, 1) + "B"
}

func FormatDominance(v float64) string {
	return fixed(v, 1) + "%"
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func trendClass(v float64) string {
	switch {
	case v > 0:
		return "up"
	case v < 0:
		return "down"
	}
	return "flat"
}

// FearGreedLabel names the sentiment band for a 0..100 reading.
func FearGreedLabel(v int) string {
	switch {
	case v < 25:
		return "Extreme Fear"
	case v < 45:
		return "Fear"
	case v <= 55:
		return "Neutral"
	case v < 75:
		return "Greed"
	}
	return "Extreme Greed"
}

// AltSeasonLabel names the alt-season band for a 0..100 score.
func AltSeasonLabel(v int) string {
	switch {
	case v <= 25:
		return "Bitcoin Season"
	case v >= 75:
		return "Altcoin Season"
	}
	return "Mixed Market"
}
