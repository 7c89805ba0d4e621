package marginsdk

import "time"

// OrderBookEntry is a single price level of an order book side.
type OrderBookEntry struct {
	Price  float64
	Amount float64
}

// OrderBook is a snapshot of the visible depth of the session pair.
// Bids are sorted from best (highest) to worst, asks from best (lowest) to worst.
type OrderBook struct {
	Pair string
	Bids []OrderBookEntry
	Asks []OrderBookEntry
	Time time.Time
}

// BestBid returns the top bid level, or a zero entry if the book side is empty.
func (b *OrderBook) BestBid() OrderBookEntry {
	if len(b.Bids) == 0 {
		return OrderBookEntry{}
	}
	return b.Bids[0]
}

// BestAsk returns the top ask level, or a zero entry if the book side is empty.
func (b *OrderBook) BestAsk() OrderBookEntry {
	if len(b.Asks) == 0 {
		return OrderBookEntry{}
	}
	return b.Asks[0]
}

// Ticker is the latest top-of-book quote and last traded price.
type Ticker struct {
	Pair string
	Bid  float64
	Ask  float64
	Last float64
	Time time.Time
}

// PublicTrade is a trade executed on the exchange by any participant.
type PublicTrade struct {
	ID     int64
	Pair   string
	Side   Side
	Amount float64
	Price  float64
	Time   time.Time
}

// FundsEntry is the balance of a single currency.
type FundsEntry struct {
	Currency  string
	Available float64
	Reserved  float64
}

// Total returns available plus reserved funds.
func (f FundsEntry) Total() float64 {
	return f.Available + f.Reserved
}

// Candle is an aggregated OHLCV bar, used for strategy warmup data.
type Candle struct {
	Pair   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Time   time.Time
}

type OrderBookHandler func(book *OrderBook)

type TickerHandler func(ticker *Ticker)

type PublicTradesHandler func(trades []PublicTrade)

type FundsHandler func(funds map[string]FundsEntry)
