package domain

// Coin is one row of the card's asset table.
type Coin struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"changePct"`
}

// GlobalMetrics is the normalized market-wide data from the market-data provider.
// Percentage changes are fractions (0.015 = +1.5%); dominance values are percentages.
type GlobalMetrics struct {
	TotalMarketCap     float64
	MarketCapChangePct float64
	Volume24h          float64
	VolumeChangePct    float64
	BTCDominance       float64
	ETHDominance       float64
}

// MarketSnapshot is the fully assembled card data. It is built once per request
// and handed to renderers by value.
type MarketSnapshot struct {
	Date               string  `json:"date"`
	FearGreed          int     `json:"fearGreed"`
	AltSeason          int     `json:"altSeason"`
	TotalMarketCap     float64 `json:"totalMarketCap"`
	MarketCapChangePct float64 `json:"marketCapChangePct"`
	Volume24h          float64 `json:"volume24h"`
	VolumeChangePct    float64 `json:"volumeChangePct"`
	BTCDom             float64 `json:"btcDom"`
	ETHDom             float64 `json:"ethDom"`
	Coins              []Coin  `json:"coins"`
	AIAnalysis         string  `json:"aiAnalysis,omitempty"`
}

// HasAnalysis reports whether the analysis endpoint produced usable text.
func (s MarketSnapshot) HasAnalysis() bool {
	return s.AIAnalysis != ""
}

// CoinList returns a copy of the coin rows so callers cannot alter the snapshot.
func (s MarketSnapshot) CoinList() []Coin {
	out := make([]Coin, len(s.Coins))
	copy(out, s.Coins)
	return out
}

// DefaultSymbols is the fixed asset list shown on the card, in display order.
var DefaultSymbols = []string{"BTC", "ETH", "BNB", "XRP", "SOL", "TRX", "DOGE", "ADA"}

// DateLayout renders dates like "October 16".
const DateLayout = "January 2"
