package domain

import (
	"testing"
	"time"
)

func TestCoinListReturnsCopy(t *testing.T) {
	snap := MarketSnapshot{Coins: []Coin{{Symbol: "BTC", Price: 1}}}
	coins := snap.CoinList()
	coins[0].Price = 99
	if snap.Coins[0].Price != 1 {
		t.Fatalf("snapshot mutated through CoinList: %+v", snap.Coins[0])
	}
}

func TestHasAnalysis(t *testing.T) {
	if (MarketSnapshot{}).HasAnalysis() {
		t.Fatal("empty analysis should report false")
	}
	if !(MarketSnapshot{AIAnalysis: "Calm."}).HasAnalysis() {
		t.Fatal("expected analysis to be present")
	}
}

func TestDateLayout(t *testing.T) {
	got := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC).Format(DateLayout)
	if got != "October 16" {
		t.Fatalf("unexpected date format: %s", got)
	}
}

func TestDefaultSymbolsOrder(t *testing.T) {
	if len(DefaultSymbols) != 8 || DefaultSymbols[0] != "BTC" || DefaultSymbols[7] != "ADA" {
		t.Fatalf("unexpected default symbols: %v", DefaultSymbols)
	}
}
