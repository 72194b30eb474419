package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234.5, "1,235"},
		{64321.49, "64,321"},
		{1000, "1,000"},
		{42.1, "42.10"},
		{999.994, "999.99"},
		{1, "1.00"},
		{0.000123, "0.000123"},
		{0.5, "0.500000"},
		{0.1234567, "0.123457"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatPrice(tc.in), "FormatPrice(%v)", tc.in)
	}
}

func TestFmtSign(t *testing.T) {
	assert.Equal(t, "+", FmtSign(0.01))
	assert.Equal(t, "", FmtSign(-0.01))
	assert.Equal(t, "", FmtSign(0))
}

func TestFormatAnalysisTextSplitsOnSemicolons(t *testing.T) {
	assert.Equal(t, "Hello world.\nThis is great.", FormatAnalysisText("hello world; this is great"))
}

func TestFormatAnalysisTextNormalizesWhitespace(t *testing.T) {
	raw := "  btc holds   steady!\n\nalts lag；  volume is thin?  watch 60k"
	assert.Equal(t, "Btc holds steady!\nAlts lag.\nVolume is thin?\nWatch 60k.", FormatAnalysisText(raw))
}

func TestFormatAnalysisTextEmpty(t *testing.T) {
	assert.Equal(t, "", FormatAnalysisText("   "))
}

func TestFormatAnalysisTextIsStable(t *testing.T) {
	once := FormatAnalysisText("market is calm. eth leads; sol lags")
	assert.Equal(t, once, FormatAnalysisText(once))
}
