package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	separatorRun    = regexp.MustCompile(`[;；]+\s*`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]?`)
)

// FmtSign returns "+" for strictly positive values. Negative numbers carry their own minus.
func FmtSign(v float64) string {
	if v > 0 {
		return "+"
	}
	return ""
}

// FormatPrice renders a USD price with en-US grouping: no decimals from 1000 up,
// two decimals from 1, six decimals below 1.
func FormatPrice(v float64) string {
	switch {
	case v >= 1000:
		return groupThousands(fixed(v, 0))
	case v >= 1:
		return groupThousands(fixed(v, 2))
	default:
		return groupThousands(fixed(v, 6))
	}
}

// fixed rounds half away from zero on the shortest decimal form of v.
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return s
	}
	grouped := humanize.Comma(n)
	if hasFrac {
		return grouped + "." + frac
	}
	return grouped
}

// FormatAnalysisText normalizes free-form analysis into one capitalized,
// punctuated sentence per line.
func FormatAnalysisText(raw string) string {
	s := strings.ReplaceAll(raw, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(separatorRun.ReplaceAllString(s, ". "))

	var lines []string
	for _, sentence := range sentencePattern.FindAllString(s, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentence = capitalizeFirst(sentence)
		if !strings.ContainsAny(sentence[len(sentence)-1:], ".!?") {
			sentence += "."
		}
		lines = append(lines, sentence)
	}
	return strings.Join(lines, "\n")
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
