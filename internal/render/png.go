package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"market-card/internal/analysis"
	"market-card/internal/domain"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	fixedpt "golang.org/x/image/math/fixed"
)

// Base card size before scaling; DefaultScale doubles it to 1350x768.
const (
	CardWidth  = 675
	CardHeight = 384

	margin     = 16
	lineHeight = 15
	maxCoins   = 8
)

var (
	colorBackground = color.NRGBA{R: 0x0b, G: 0x0f, B: 0x19, A: 0xff}
	colorPanel      = color.NRGBA{R: 0x16, G: 0x1d, B: 0x2e, A: 0xff}
	colorText       = color.NRGBA{R: 0xe6, G: 0xe9, B: 0xf0, A: 0xff}
	colorMuted      = color.NRGBA{R: 0x8a, G: 0x93, B: 0xa6, A: 0xff}
	colorUp         = color.NRGBA{R: 0x16, G: 0xc7, B: 0x84, A: 0xff}
	colorDown       = color.NRGBA{R: 0xea, G: 0x39, B: 0x43, A: 0xff}
	colorTrack      = color.NRGBA{R: 0x2a, G: 0x33, B: 0x47, A: 0xff}
	colorNeutral    = color.NRGBA{R: 0xf5, G: 0xc5, B: 0x42, A: 0xff}
)

// PNG draws the card and encodes it as PNG at the renderer's scale.
func (r *Renderer) PNG(snap domain.MarketSnapshot) ([]byte, error) {
	canvas := imaging.New(CardWidth, CardHeight, colorBackground)
	c := &cardCanvas{img: canvas}

	c.text(margin, 26, "Market Overview", colorText)
	c.textRight(CardWidth-margin, 26, snap.Date, colorMuted)

	c.gauge(margin, 40, "FEAR & GREED", snap.FearGreed, FearGreedLabel(snap.FearGreed))
	c.gauge(margin, 100, "ALT SEASON", snap.AltSeason, AltSeasonLabel(snap.AltSeason))
	c.totals(margin, 160, snap)

	c.coins(346, 40, snap.Coins)
	c.analysisBox(snap.AIAnalysis)

	img := image.Image(canvas)
	if r.scale > 1 {
		img = imaging.Resize(canvas, CardWidth*r.scale, CardHeight*r.scale, imaging.NearestNeighbor)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode card png: %w", err)
	}
	return buf.Bytes(), nil
}

type cardCanvas struct {
	img draw.Image
}

func (c *cardCanvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *cardCanvas) text(x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixedpt.P(x, y),
	}
	d.DrawString(s)
}

func (c *cardCanvas) textRight(right, y int, s string, col color.Color) {
	c.text(right-textWidth(s), y, s, col)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

func (c *cardCanvas) gauge(x, y int, title string, value int, label string) {
	c.fill(image.Rect(x, y, x+314, y+52), colorPanel)
	c.text(x+10, y+16, title, colorMuted)
	c.textRight(x+304, y+16, strconv.Itoa(value)+"/100", colorText)

	track := image.Rect(x+10, y+24, x+304, y+30)
	c.fill(track, colorTrack)
	filled := track
	filled.Max.X = track.Min.X + track.Dx()*clampPercent(value)/100
	c.fill(filled, gaugeColor(value))

	c.text(x+10, y+45, label, colorText)
}

func (c *cardCanvas) totals(x, y int, snap domain.MarketSnapshot) {
	c.fill(image.Rect(x, y, x+314, y+58), colorPanel)
	rows := []struct {
		title, value string
		change       float64
		places       int
		showChange   bool
	}{
		{"Market Cap", FormatMarketCap(snap.TotalMarketCap), snap.MarketCapChangePct, 1, true},
		{"Volume 24h", FormatVolume(snap.Volume24h), snap.VolumeChangePct, 0, true},
		{"Dominance", "BTC " + FormatDominance(snap.BTCDom) + " ETH " + FormatDominance(snap.ETHDom), 0, 0, false},
	}
	for i, row := range rows {
		ry := y + 16 + i*lineHeight
		c.text(x+10, ry, row.title, colorMuted)
		c.text(x+100, ry, row.value, colorText)
		if row.showChange {
			c.textRight(x+304, ry, Percent(row.change, row.places), trendColor(row.change))
		}
	}
}

func (c *cardCanvas) coins(x, y int, coins []domain.Coin) {
	if len(coins) > maxCoins {
		coins = coins[:maxCoins]
	}
	height := 12 + len(coins)*18
	c.fill(image.Rect(x, y, CardWidth-margin, y+height), colorPanel)
	for i, coin := range coins {
		ry := y + 20 + i*18
		c.text(x+10, ry, coin.Symbol, colorText)
		c.text(x+60, ry, truncate(coin.Name, 12), colorMuted)
		c.textRight(x+230, ry, "$"+analysis.FormatPrice(coin.Price), colorText)
		c.textRight(CardWidth-margin-10, ry, Percent(coin.ChangePct, 2), trendColor(coin.ChangePct))
	}
}

func (c *cardCanvas) analysisBox(text string) {
	if text == "" {
		return
	}
	top := 230
	box := image.Rect(margin, top, CardWidth-margin, CardHeight-margin)
	c.fill(box, colorPanel)
	c.text(box.Min.X+10, top+16, "AI ANALYSIS", colorMuted)

	maxChars := (box.Dx() - 20) / basicfont.Face7x13.Advance
	maxLines := (box.Dy() - 26) / lineHeight
	lines := wrapText(text, maxChars)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		lines[maxLines-1] = truncate(last+"...", maxChars)
	}
	for i, line := range lines {
		c.text(box.Min.X+10, top+32+i*lineHeight, line, colorText)
	}
}

// wrapText breaks each paragraph of s into lines of at most width characters.
func wrapText(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var line string
		for _, word := range strings.Fields(para) {
			for len(word) > width {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, word[:width])
				word = word[width:]
			}
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func gaugeColor(v int) color.Color {
	switch {
	case v < 45:
		return colorDown
	case v <= 55:
		return colorNeutral
	}
	return colorUp
}

func trendColor(v float64) color.Color {
	switch {
	case v > 0:
		return colorUp
	case v < 0:
		return colorDown
	}
	return colorMuted
}
