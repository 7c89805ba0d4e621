package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openmargin/marginsdk"
)

type placedOrder struct {
	side   marginsdk.Side
	amount float64
	price  float64
}

type fakeContext struct {
	tcm    *marginsdk.TradingCapabilityManager
	placed []placedOrder
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		tcm: marginsdk.NewTradingCapabilityManager(marginsdk.PairInfo{
			Pair:          "BTC/USD",
			BaseCurrency:  "BTC",
			QuoteCurrency: "USD",
			AmountStep:    0.001,
			PriceStep:     0.01,
			MinAmount:     0.001,
			MaxAmount:     100,
		}),
	}
}

func (c *fakeContext) PlaceLimitOrder(side marginsdk.Side, amount, price float64) int64 {
	c.placed = append(c.placed, placedOrder{side: side, amount: amount, price: price})
	return int64(len(c.placed))
}

func (c *fakeContext) CancelOrder(orderID int64) {}

func (c *fakeContext) TradingCapabilityManager() *marginsdk.TradingCapabilityManager {
	return c.tcm
}

func (c *fakeContext) CurrencyPair() string { return "BTC/USD" }

func (c *fakeContext) BufferedCandles(timeframe time.Duration, limit int) []marginsdk.Candle {
	return nil
}

func (c *fakeContext) WriteLog(format string, args ...interface{}) {}

func (c *fakeContext) Exit(reason marginsdk.ExitReason, message ...string) {}

func TestSchedulerPlacesWhenConditionHolds(t *testing.T) {

	ctx := newFakeContext()
	scheduler := NewScheduler()

	scheduler.BuyWhen(0.5,
		func(ticker *marginsdk.Ticker) float64 { return ticker.Bid },
		func(ticker *marginsdk.Ticker) bool { return ticker.Bid < 90 })

	scheduler.SellWhen(0.5,
		func(ticker *marginsdk.Ticker) float64 { return ticker.Ask },
		func(ticker *marginsdk.Ticker) bool { return ticker.Ask > 110 })

	assert.Equal(t, 2, scheduler.Pending())

	// neither condition holds yet
	scheduler.Update(&marginsdk.Ticker{Bid: 100, Ask: 100.5}, ctx)
	assert.Empty(t, ctx.placed)
	assert.Equal(t, 2, scheduler.Pending())

	// the buy triggers and is consumed
	scheduler.Update(&marginsdk.Ticker{Bid: 89, Ask: 89.5}, ctx)
	assert.Len(t, ctx.placed, 1)
	assert.Equal(t, marginsdk.Buy, ctx.placed[0].side)
	assert.Equal(t, 1, scheduler.Pending())

	// it does not trigger twice
	scheduler.Update(&marginsdk.Ticker{Bid: 88, Ask: 88.5}, ctx)
	assert.Len(t, ctx.placed, 1)

	scheduler.Update(&marginsdk.Ticker{Bid: 110.5, Ask: 111}, ctx)
	assert.Len(t, ctx.placed, 2)
	assert.Equal(t, marginsdk.Sell, ctx.placed[1].side)
	assert.Equal(t, 0, scheduler.Pending())
}

func TestSchedulerNormalizesOrderParameters(t *testing.T) {

	ctx := newFakeContext()
	scheduler := NewScheduler()

	scheduler.BuyWhen(0.50049,
		func(ticker *marginsdk.Ticker) float64 { return ticker.Bid * 0.999 },
		func(ticker *marginsdk.Ticker) bool { return true })

	scheduler.Update(&marginsdk.Ticker{Bid: 100, Ask: 100.5}, ctx)

	assert.Len(t, ctx.placed, 1)
	assert.InDelta(t, 0.5, ctx.placed[0].amount, 1e-9)
	assert.InDelta(t, 99.9, ctx.placed[0].price, 1e-9)
}

func TestSchedulerDropsInvalidOrders(t *testing.T) {

	ctx := newFakeContext()
	scheduler := NewScheduler()

	// rounds to an amount below the pair minimum
	scheduler.BuyWhen(0.0001,
		func(ticker *marginsdk.Ticker) float64 { return ticker.Bid },
		func(ticker *marginsdk.Ticker) bool { return true })

	scheduler.Update(&marginsdk.Ticker{Bid: 100, Ask: 100.5}, ctx)

	assert.Empty(t, ctx.placed)
	assert.Equal(t, 0, scheduler.Pending())
}
