package marginsdk

import "time"

// ExchangeClient is the interface used by the engine for communication with an
// exchange. Order methods are fire-and-forget: their outcome arrives through
// the subscribed result handlers, correlated by the given reference ids.
type ExchangeClient interface {
	GetPairInfo(pair string) (*PairInfo, error)
	GetCandles(pair string, timeframe time.Duration, limit int) ([]Candle, error)

	// PlaceLimitOrder submits a limit order. The placeOrderID is echoed back in
	// the PlaceResult so the engine can correlate the outcome.
	PlaceLimitOrder(placeOrderID int64, pair string, side Side, amount, price float64)

	// CancelOrder requests cancellation. The outcome arrives as a CancelResult
	// for the same orderID.
	CancelOrder(pair string, orderID int64)

	SubscribeOrderBooks(pair string, callback OrderBookHandler)
	SubscribeTickers(pair string, callback TickerHandler)
	SubscribePublicTrades(pair string, callback PublicTradesHandler)
	SubscribeFunds(callback FundsHandler)

	SubscribePlaceResults(callback PlaceResultHandler)
	SubscribeCancelResults(callback CancelResultHandler)
	SubscribeOrderUpdates(callback OrderUpdateHandler)
}

// PairInfo describes the trading rules of a currency pair. It is the raw
// material of the TradingCapabilityManager.
type PairInfo struct {
	Pair          string
	BaseCurrency  string
	QuoteCurrency string

	// AmountStep and PriceStep are the smallest increments the exchange
	// accepts for order amount and price.
	AmountStep float64
	PriceStep  float64

	// MinAmount and MaxAmount bound the order amount in base currency.
	MinAmount float64
	MaxAmount float64

	// MinTotal is the minimum order value in quote currency.
	MinTotal float64
}
