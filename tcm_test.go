package marginsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPairInfo() PairInfo {
	return PairInfo{
		Pair:          "BTC/USD",
		BaseCurrency:  "BTC",
		QuoteCurrency: "USD",
		AmountStep:    0.001,
		PriceStep:     0.01,
		MinAmount:     0.002,
		MaxAmount:     100,
		MinTotal:      10,
	}
}

func TestRounding(t *testing.T) {

	tcm := NewTradingCapabilityManager(testPairInfo())

	assert.InDelta(t, 0.123, tcm.RoundAmount(0.1234, RoundNearest), 1e-12)
	assert.InDelta(t, 0.124, tcm.RoundAmount(0.1236, RoundNearest), 1e-12)
	assert.InDelta(t, 0.123, tcm.RoundAmount(0.1239, RoundFloor), 1e-12)
	assert.InDelta(t, 0.124, tcm.RoundAmount(0.1231, RoundCeil), 1e-12)

	assert.InDelta(t, 99.99, tcm.RoundPrice(99.994, RoundNearest), 1e-12)
	assert.InDelta(t, 100.00, tcm.RoundPrice(99.996, RoundNearest), 1e-12)

	// values already on the grid stay put in every mode
	assert.InDelta(t, 0.123, tcm.RoundAmount(0.123, RoundFloor), 1e-12)
	assert.InDelta(t, 0.123, tcm.RoundAmount(0.123, RoundCeil), 1e-12)
}

func TestMinBuyAmountHonorsMinTotal(t *testing.T) {

	tcm := NewTradingCapabilityManager(testPairInfo())

	// at a high price the pair minimum dominates
	assert.InDelta(t, 0.002, tcm.GetMinBuyAmount(100000), 1e-12)

	// at a low price the minimum order value dominates: 10/100 = 0.1
	assert.InDelta(t, 0.1, tcm.GetMinBuyAmount(100), 1e-12)

	// sell minimums follow the same rules
	assert.InDelta(t, 0.1, tcm.GetMinSellAmount(100), 1e-12)
}

func TestMaxBuyAmount(t *testing.T) {

	tcm := NewTradingCapabilityManager(testPairInfo())

	assert.InDelta(t, 100, tcm.GetMaxBuyAmount(100), 1e-12)
}

func TestIsOrderValid(t *testing.T) {

	tcm := NewTradingCapabilityManager(testPairInfo())

	assert.True(t, tcm.IsOrderValid(Buy, 0.5, 100))
	assert.True(t, tcm.IsOrderValid(Sell, 0.5, 100))

	assert.False(t, tcm.IsOrderValid(Buy, 0, 100))
	assert.False(t, tcm.IsOrderValid(Buy, 0.5, 0))
	assert.False(t, tcm.IsOrderValid(Buy, -1, 100))

	// off the amount or price grid
	assert.False(t, tcm.IsOrderValid(Buy, 0.0005, 100))
	assert.False(t, tcm.IsOrderValid(Buy, 0.5, 100.005))

	// below the minimum order value
	assert.False(t, tcm.IsOrderValid(Buy, 0.05, 100))

	// above the pair maximum
	assert.False(t, tcm.IsOrderValid(Buy, 101, 100))
}

func TestZeroStepsDisableAlignment(t *testing.T) {

	info := testPairInfo()
	info.AmountStep = 0
	info.PriceStep = 0
	tcm := NewTradingCapabilityManager(info)

	assert.InDelta(t, 0.1234, tcm.RoundAmount(0.1234, RoundNearest), 1e-12)
	assert.True(t, tcm.IsOrderValid(Buy, 0.1234, 123.456))
}
