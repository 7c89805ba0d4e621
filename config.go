package marginsdk

import "strings"

// DataUpdate identifies one of the update streams the host can deliver to a
// strategy. Values combine as a bit set.
type DataUpdate uint8

const (
	// UpdateOrderBook requests order book snapshots.
	UpdateOrderBook DataUpdate = 1 << iota

	// UpdateTicker requests tickers.
	UpdateTicker

	// UpdatePublicTradeHistory requests public trade batches.
	UpdatePublicTradeHistory

	// UpdateFunds requests per-currency balance updates.
	UpdateFunds
)

func (d DataUpdate) String() string {
	names := make([]string, 0, 4)

	if d&UpdateOrderBook != 0 {
		names = append(names, "ORDER_BOOK")
	}
	if d&UpdateTicker != 0 {
		names = append(names, "TICKER")
	}
	if d&UpdatePublicTradeHistory != 0 {
		names = append(names, "PUBLIC_TRADE_HISTORY")
	}
	if d&UpdateFunds != 0 {
		names = append(names, "FUNDS")
	}

	return strings.Join(names, "|")
}

// StrategyConfig is the declarative configuration a strategy returns from
// GetStrategyConfig. The engine reads it once, before subscriptions begin,
// and it stays fixed for the lifetime of the session.
type StrategyConfig struct {
	RequiredDataUpdates DataUpdate
}

// Requires reports whether the given update stream was requested.
func (c StrategyConfig) Requires(update DataUpdate) bool {
	return c.RequiredDataUpdates&update != 0
}
