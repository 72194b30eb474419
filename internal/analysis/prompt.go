package analysis

import (
	"fmt"
	"strings"

	"market-card/internal/domain"
)

const promptCoinLimit = 8

// BuildPromptText renders the snapshot numbers (never the analysis itself) into the
// fixed plain-text block the analysis endpoint expects.
func BuildPromptText(snap domain.MarketSnapshot) string {
	lines := make([]string, 0, 3+3*promptCoinLimit)
	lines = append(lines, fmt.Sprintf("Fear Greed %d / 100,  Alt Season %d/100", snap.FearGreed, snap.AltSeason))
	lines = append(lines, fmt.Sprintf("Total Market Cap $%sT %s%s%%",
		fixed(snap.TotalMarketCap/1e12, 2),
		FmtSign(snap.MarketCapChangePct), fixed(snap.MarketCapChangePct*100, 1)))
	lines = append(lines, fmt.Sprintf("Market Volume 24h %sB+ %s%s%%",
		fixed(snap.Volume24h/1e9, 1),
		FmtSign(snap.VolumeChangePct), fixed(snap.VolumeChangePct*100, 0)))

	coins := snap.Coins
	if len(coins) > promptCoinLimit {
		coins = coins[:promptCoinLimit]
	}
	for _, c := range coins {
		lines = append(lines,
			c.Symbol,
			c.Name,
			fmt.Sprintf("$%s %s%s%%", FormatPrice(c.Price), FmtSign(c.ChangePct), fixed(c.ChangePct*100, 2)),
		)
	}
	return strings.Join(lines, "\n")
}
