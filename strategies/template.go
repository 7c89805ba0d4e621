// Package strategies contains ready-made strategy plugins. Template is the
// starting point for writing a new one: it walks through the whole host
// contract by placing a single order below the market, canceling it after a
// few tickers and ending the session.
package strategies

import (
	"strconv"

	"github.com/openmargin/marginsdk"
	"github.com/openmargin/marginsdk/tools"
)

// Template is a minimal but complete strategy plugin. Copy it, rename it and
// replace the order logic with your own.
type Template struct {
	marginsdk.BaseStrategy

	semaphore *tools.OrderSemaphore

	waitingPlaceID  int64
	waitingCancelID int64

	tickersSeen int
}

// NewTemplate is the Template constructor.
func NewTemplate() *Template {
	return &Template{
		BaseStrategy: marginsdk.NewBaseStrategy(),
		semaphore:    tools.NewOrderSemaphore(),
	}
}

/**************************
*
*	Lifecycle
*
***************************/

func (s *Template) Init() {
	s.Context().WriteLog("template strategy initialized")
}

// GetStrategyConfig subscribes to every data stream so that each callback
// below gets exercised.
func (s *Template) GetStrategyConfig() marginsdk.StrategyConfig {
	return marginsdk.StrategyConfig{
		RequiredDataUpdates: marginsdk.UpdateOrderBook |
			marginsdk.UpdateTicker |
			marginsdk.UpdatePublicTradeHistory |
			marginsdk.UpdateFunds,
	}
}

func (s *Template) Start() {
	s.Context().WriteLog("template strategy started, waiting for the first ticker")
}

func (s *Template) Stop() {
	s.Context().WriteLog("template strategy stopped after %d tickers", s.tickersSeen)
}

func (s *Template) Suspend() {
	s.State["tickers_seen"] = strconv.Itoa(s.tickersSeen)
	s.Context().WriteLog("template strategy suspended")
}

func (s *Template) Unsuspend() {
	if saved, exist := s.State["tickers_seen"]; exist {
		if count, err := strconv.Atoi(saved); err == nil {
			s.tickersSeen = count
		}
	}
	s.Context().WriteLog("template strategy unsuspended")
}

/**************************
*
*	Data Updates
*
***************************/

func (s *Template) OnNewOrderBook(book *marginsdk.OrderBook) {
	s.Context().WriteLog("order book: best bid %f, best ask %f",
		book.BestBid().Price, book.BestAsk().Price)
}

func (s *Template) OnNewTicker(ticker *marginsdk.Ticker) {

	s.tickersSeen++

	if s.tickersSeen == 1 {
		s.placeInitialOrder(ticker)
		return
	}

	// a few tickers after the order went through, cancel it and finish
	if s.tickersSeen >= 5 && s.waitingCancelID != 0 && !s.semaphore.Waiting() {
		s.semaphore.OrderSent()
		s.Context().CancelOrder(s.waitingCancelID)
	}
}

func (s *Template) OnNewPublicTrades(trades []marginsdk.PublicTrade) {
	for _, trade := range trades {
		s.Context().WriteLog("public trade: %s %f @ %f", trade.Side, trade.Amount, trade.Price)
	}
}

func (s *Template) OnNewFunds(funds map[string]marginsdk.FundsEntry) {
	for _, entry := range funds {
		s.Context().WriteLog("funds: %s available %f, reserved %f",
			entry.Currency, entry.Available, entry.Reserved)
	}
}

/**************************
*
*	Order Results
*
***************************/

func (s *Template) OnOrderUpdate(update *marginsdk.OrderUpdate) {

	s.Context().WriteLog("order %d update: %s", update.Updated.ID, update.Status)

	switch update.Status {
	case marginsdk.OrderFilled:
		// nothing left to cancel
		s.waitingCancelID = 0
	case marginsdk.OrderPartiallyFilled:
	case marginsdk.OrderAdapted:
	case marginsdk.OrderAdaptedAndFilled:
	case marginsdk.OrderCanceled:
	case marginsdk.OrderNoChange:
	case marginsdk.OrderReappeared:
	case marginsdk.OrderDisappeared:
	case marginsdk.OrderOtherChange:
	}
}

func (s *Template) OnPlaceOrderSuccess(placeOrderID int64, order *marginsdk.Order) {

	s.semaphore.Notify()

	if s.waitingPlaceID != placeOrderID {
		s.Context().WriteLog("place result for an unexpected id %d", placeOrderID)
		return
	}

	s.waitingPlaceID = 0
	s.waitingCancelID = order.ID
	s.Context().WriteLog("order %d resting at %f", order.ID, order.Price)
}

func (s *Template) OnPlaceOrderError(placeOrderID int64, errMsg string) {
	s.semaphore.Notify()
	s.Context().Exit(marginsdk.ExitError, errMsg)
}

func (s *Template) OnCancelOrderSuccess(orderID int64, canceled *marginsdk.Order) {

	s.semaphore.Notify()

	if s.waitingCancelID == orderID {
		s.waitingCancelID = 0
		s.Context().Exit(marginsdk.ExitFinishedSuccessfully)
	}
}

func (s *Template) OnCancelOrderError(orderID int64, errMsg string) {
	s.semaphore.Notify()
	s.Context().Exit(marginsdk.ExitError, errMsg)
}

/**************************
*
*	Orders
*
***************************/

// placeInitialOrder submits a buy 2% below the current bid, aligned and
// validated through the trading capability manager first.
func (s *Template) placeInitialOrder(ticker *marginsdk.Ticker) {

	tcm := s.Context().TradingCapabilityManager()

	price := tcm.RoundPrice(ticker.Bid*0.98, marginsdk.RoundFloor)
	amount := tcm.RoundAmount(tcm.GetMinBuyAmount(price)*2, marginsdk.RoundCeil)

	if !tcm.IsOrderValid(marginsdk.Buy, amount, price) {
		s.Context().Exit(marginsdk.ExitError, "initial order parameters are not valid")
		return
	}

	s.semaphore.OrderSent()
	s.waitingPlaceID = s.Context().PlaceLimitOrder(marginsdk.Buy, amount, price)
	s.Context().WriteLog("placed buy %f @ %f, place id %d", amount, price, s.waitingPlaceID)
}
