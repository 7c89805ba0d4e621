package marginsdk

import "time"

// Strategy is the interface that a strategy plugin must implement in order to be
// driven by the host engine. The engine instantiates the strategy once and invokes
// one call at a time; no two callbacks ever overlap.
//
// Every call must return promptly. The engine enforces a call budget (2 seconds by
// default) and stops the session if a call exceeds it.
type Strategy interface {
	// Init is the first call made after the strategy is handed to a session,
	// before any subscription is active.
	Init()

	// GetStrategyConfig declares which data update streams the strategy needs.
	// It is read once and is fixed for the lifetime of the session.
	GetStrategyConfig() StrategyConfig

	// Start is called when subscriptions become active. From this point on the
	// strategy receives data updates and may place orders.
	Start()

	// Stop is terminal: no further calls are made after it returns. The host
	// takes care of exchange-side orders, so no cleanup of those is required,
	// but any background work the strategy spawned must be finished before
	// returning.
	Stop()

	// Suspend pauses the strategy. Background work must be finished before
	// returning and SaveStrategyState must remain valid afterwards. The session
	// may be persisted, the process restarted and the state restored between
	// Suspend and Unsuspend.
	Suspend()

	// Unsuspend resumes a suspended strategy. Behavior must be equivalent to
	// the state prior to the Suspend call, accounting for a possible
	// save/restore cycle in between.
	Unsuspend()

	// SaveStrategyState returns everything the strategy needs to remember
	// through a restart. It is called regularly and right before the session
	// ends or suspends.
	SaveStrategyState() map[string]string

	// RestoreStrategyState replaces the strategy state with a snapshot
	// previously returned by SaveStrategyState. Called before Start after a
	// restart.
	RestoreStrategyState(state map[string]string)

	// OnNewOrderBook delivers an order book snapshot. Only called when the
	// config contains UpdateOrderBook.
	OnNewOrderBook(book *OrderBook)

	// OnNewTicker delivers a ticker. Only called when the config contains
	// UpdateTicker.
	OnNewTicker(ticker *Ticker)

	// OnNewPublicTrades delivers a batch of public trades. Only called when the
	// config contains UpdatePublicTradeHistory.
	OnNewPublicTrades(trades []PublicTrade)

	// OnNewFunds delivers the per-currency balances. Only called when the
	// config contains UpdateFunds.
	OnNewFunds(funds map[string]FundsEntry)

	// OnOrderUpdate notifies a change to an order placed by this strategy.
	OnOrderUpdate(update *OrderUpdate)

	// OnPlaceOrderSuccess resolves a PlaceLimitOrder call. The placeOrderID is
	// dead after this call; use order.ID from here on.
	OnPlaceOrderSuccess(placeOrderID int64, order *Order)

	// OnPlaceOrderError resolves a PlaceLimitOrder call with the error that
	// occurred. The placeOrderID is dead after this call.
	OnPlaceOrderError(placeOrderID int64, errMsg string)

	// OnCancelOrderSuccess resolves a CancelOrder call and carries the latest
	// state of the canceled order.
	OnCancelOrderSuccess(orderID int64, canceled *Order)

	// OnCancelOrderError resolves a CancelOrder call with the error that
	// occurred while canceling.
	OnCancelOrderError(orderID int64, errMsg string)

	// SetContext hands the strategy its host services before Init is called.
	SetContext(ctx StrategyContext)
}

// StrategyContext is the set of host services a strategy may call back into.
// It is implemented by the session engine.
type StrategyContext interface {
	// PlaceLimitOrder submits a limit order and returns a transient
	// place order id. Exactly one of OnPlaceOrderSuccess or OnPlaceOrderError
	// follows for that id.
	PlaceLimitOrder(side Side, amount, price float64) int64

	// CancelOrder requests cancellation of an order by its durable id. Exactly
	// one of OnCancelOrderSuccess or OnCancelOrderError follows for that id.
	CancelOrder(orderID int64)

	// TradingCapabilityManager exposes the exchange rules used to validate and
	// normalize order parameters before placing them.
	TradingCapabilityManager() *TradingCapabilityManager

	// CurrencyPair returns the pair this session trades.
	CurrencyPair() string

	// BufferedCandles returns up to limit historical candles for the session
	// pair at the given timeframe.
	BufferedCandles(timeframe time.Duration, limit int) []Candle

	// WriteLog writes to the session log, tagged with the strategy pair.
	WriteLog(format string, args ...interface{})

	// Exit voluntarily ends the strategy with the given reason. The optional
	// message is recorded in the session result.
	Exit(reason ExitReason, message ...string)
}

// BaseStrategy provides default implementations for the whole Strategy
// interface so that plugins only override the callbacks they care about.
// It owns the state mapping: created empty, replaced wholesale on restore,
// returned wholesale on save.
type BaseStrategy struct {
	ctx   StrategyContext
	State map[string]string
}

// NewBaseStrategy is the BaseStrategy constructor.
func NewBaseStrategy() BaseStrategy {
	return BaseStrategy{State: make(map[string]string)}
}

// Context returns the host services handed over through SetContext.
func (b *BaseStrategy) Context() StrategyContext {
	return b.ctx
}

func (b *BaseStrategy) SetContext(ctx StrategyContext) {
	b.ctx = ctx
}

func (b *BaseStrategy) Init()      {}
func (b *BaseStrategy) Start()     {}
func (b *BaseStrategy) Stop()      {}
func (b *BaseStrategy) Suspend()   {}
func (b *BaseStrategy) Unsuspend() {}

// GetStrategyConfig subscribes to every stream by default.
func (b *BaseStrategy) GetStrategyConfig() StrategyConfig {
	return StrategyConfig{
		RequiredDataUpdates: UpdateOrderBook | UpdateTicker | UpdatePublicTradeHistory | UpdateFunds,
	}
}

func (b *BaseStrategy) SaveStrategyState() map[string]string {
	if b.State == nil {
		b.State = make(map[string]string)
	}
	return b.State
}

func (b *BaseStrategy) RestoreStrategyState(state map[string]string) {
	b.State = state
}

func (b *BaseStrategy) OnNewOrderBook(book *OrderBook)                       {}
func (b *BaseStrategy) OnNewTicker(ticker *Ticker)                           {}
func (b *BaseStrategy) OnNewPublicTrades(trades []PublicTrade)               {}
func (b *BaseStrategy) OnNewFunds(funds map[string]FundsEntry)               {}
func (b *BaseStrategy) OnOrderUpdate(update *OrderUpdate)                    {}
func (b *BaseStrategy) OnPlaceOrderSuccess(placeOrderID int64, order *Order) {}
func (b *BaseStrategy) OnPlaceOrderError(placeOrderID int64, errMsg string)  {}
func (b *BaseStrategy) OnCancelOrderSuccess(orderID int64, canceled *Order)  {}
func (b *BaseStrategy) OnCancelOrderError(orderID int64, errMsg string)      {}
