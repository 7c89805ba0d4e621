package tools

import (
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/openmargin/marginsdk"
)

// OrderCondition pairs a ticker predicate with the order to place once it holds.
type OrderCondition struct {
	Condition func(ticker *marginsdk.Ticker) bool
	Amount    float64
	Price     func(ticker *marginsdk.Ticker) float64
	Side      marginsdk.Side
}

// Scheduler places limit orders when ticker conditions are met. Conditions are
// evaluated on every ticker the strategy forwards through Update and are
// dropped once their order has been submitted.
type Scheduler struct {
	orderConditions []OrderCondition
}

// NewScheduler is the Scheduler constructor.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// SellWhen schedules a sell of the given amount once the condition holds.
func (s *Scheduler) SellWhen(amount float64, price func(ticker *marginsdk.Ticker) float64,
	condition func(ticker *marginsdk.Ticker) bool) {

	s.orderConditions = append(
		s.orderConditions,
		OrderCondition{Condition: condition, Amount: amount, Price: price, Side: marginsdk.Sell},
	)
}

// BuyWhen schedules a buy of the given amount once the condition holds.
func (s *Scheduler) BuyWhen(amount float64, price func(ticker *marginsdk.Ticker) float64,
	condition func(ticker *marginsdk.Ticker) bool) {

	s.orderConditions = append(
		s.orderConditions,
		OrderCondition{Condition: condition, Amount: amount, Price: price, Side: marginsdk.Buy},
	)
}

// Pending returns the number of conditions still waiting to trigger.
func (s *Scheduler) Pending() int {
	return len(s.orderConditions)
}

// Update evaluates the scheduled conditions against a new ticker, placing the
// orders whose condition holds. Invalid orders are rejected locally and
// dropped without reaching the exchange.
func (s *Scheduler) Update(ticker *marginsdk.Ticker, ctx marginsdk.StrategyContext) {

	tcm := ctx.TradingCapabilityManager()

	s.orderConditions = lo.Filter(s.orderConditions, func(oc OrderCondition, _ int) bool {
		if !oc.Condition(ticker) {
			return true
		}

		price := tcm.RoundPrice(oc.Price(ticker), marginsdk.RoundNearest)
		amount := tcm.RoundAmount(oc.Amount, marginsdk.RoundNearest)

		if !tcm.IsOrderValid(oc.Side, amount, price) {
			log.Errorf("scheduled %s order of %f @ %f is not valid for %s, dropping",
				oc.Side, amount, price, ctx.CurrencyPair())
			return false
		}

		ctx.PlaceLimitOrder(oc.Side, amount, price)
		return false
	})
}
