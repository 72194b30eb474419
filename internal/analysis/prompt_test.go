package analysis

import (
	"strings"
	"testing"

	"market-card/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() domain.MarketSnapshot {
	return domain.MarketSnapshot{
		Date:               "October 16",
		FearGreed:          64,
		AltSeason:          66,
		TotalMarketCap:     2.5e12,
		MarketCapChangePct: 0.015,
		Volume24h:          85.34e9,
		VolumeChangePct:    -0.034,
		BTCDom:             55,
		ETHDom:             12,
		Coins: []domain.Coin{
			{Symbol: "BTC", Name: "Bitcoin", Price: 64321.5, ChangePct: 0.0123},
			{Symbol: "ETH", Name: "Ethereum", Price: 3100.2, ChangePct: -0.005},
			{Symbol: "DOGE", Name: "Dogecoin", Price: 0.1234567, ChangePct: 0},
		},
		AIAnalysis: "must not leak",
	}
}

func TestBuildPromptText(t *testing.T) {
	got := BuildPromptText(sampleSnapshot())
	want := strings.Join([]string{
		"Fear Greed 64 / 100,  Alt Season 66/100",
		"Total Market Cap $2.50T +1.5%",
		"Market Volume 24h 85.3B+ -3%",
		"BTC",
		"Bitcoin",
		"$64,322 +1.23%",
		"ETH",
		"Ethereum",
		"$3,100 -0.50%",
		"DOGE",
		"Dogecoin",
		"$0.123457 0.00%",
	}, "\n")
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "must not leak")
}

func TestBuildPromptTextLimitsCoins(t *testing.T) {
	snap := sampleSnapshot()
	snap.Coins = nil
	for i := 0; i < 10; i++ {
		snap.Coins = append(snap.Coins, domain.Coin{Symbol: "C", Name: "Coin", Price: 2})
	}
	lines := strings.Split(BuildPromptText(snap), "\n")
	require.Len(t, lines, 3+3*8)
}
