package marginsdk

import "math"

// RoundingType selects how an amount or price is aligned to the exchange step.
type RoundingType int

const (
	// RoundNearest rounds to the closest step.
	RoundNearest RoundingType = iota

	// RoundFloor rounds down to the previous step.
	RoundFloor

	// RoundCeil rounds up to the next step.
	RoundCeil
)

// TradingCapabilityManager validates and normalizes order parameters against
// the exchange rules of a single pair. Strategies should run every order
// through it before calling PlaceLimitOrder.
type TradingCapabilityManager struct {
	info PairInfo
}

// NewTradingCapabilityManager is the TradingCapabilityManager constructor.
// Sessions build one from the exchange pair info and hand it to the strategy
// through its context.
func NewTradingCapabilityManager(info PairInfo) *TradingCapabilityManager {
	return &TradingCapabilityManager{info: info}
}

// PairInfo returns the raw trading rules this manager was built from.
func (t *TradingCapabilityManager) PairInfo() PairInfo {
	return t.info
}

// RoundAmount aligns an order amount to the exchange amount step.
func (t *TradingCapabilityManager) RoundAmount(amount float64, rounding RoundingType) float64 {
	return roundStep(amount, t.info.AmountStep, rounding)
}

// RoundPrice aligns an order price to the exchange price step.
func (t *TradingCapabilityManager) RoundPrice(price float64, rounding RoundingType) float64 {
	return roundStep(price, t.info.PriceStep, rounding)
}

// GetMinBuyAmount returns the smallest valid buy amount at the given price,
// honoring both the pair minimum amount and the minimum order value.
func (t *TradingCapabilityManager) GetMinBuyAmount(price float64) float64 {

	min := t.info.MinAmount

	if price > 0 && t.info.MinTotal > 0 {
		byTotal := roundStep(t.info.MinTotal/price, t.info.AmountStep, RoundCeil)
		if byTotal > min {
			min = byTotal
		}
	}

	return min
}

// GetMaxBuyAmount returns the largest valid buy amount at the given price.
func (t *TradingCapabilityManager) GetMaxBuyAmount(price float64) float64 {
	return t.info.MaxAmount
}

// GetMinSellAmount returns the smallest valid sell amount at the given price.
// Exchange rules make no distinction between the sides here.
func (t *TradingCapabilityManager) GetMinSellAmount(price float64) float64 {
	return t.GetMinBuyAmount(price)
}

// IsOrderValid reports whether a limit order with these parameters would be
// accepted by the exchange. It covers the min/max comparisons, so a strategy
// that only needs a yes/no answer can call it alone.
func (t *TradingCapabilityManager) IsOrderValid(side Side, amount, price float64) bool {

	if amount <= 0 || price <= 0 {
		return false
	}

	if !alignedToStep(amount, t.info.AmountStep) || !alignedToStep(price, t.info.PriceStep) {
		return false
	}

	if amount < t.GetMinBuyAmount(price) || amount > t.info.MaxAmount {
		return false
	}

	return true
}

func roundStep(value, step float64, rounding RoundingType) float64 {

	if step <= 0 {
		return value
	}

	steps := value / step

	switch rounding {
	case RoundFloor:
		steps = math.Floor(steps + stepEpsilon)
	case RoundCeil:
		steps = math.Ceil(steps - stepEpsilon)
	default:
		steps = math.Round(steps)
	}

	return steps * step
}

func alignedToStep(value, step float64) bool {

	if step <= 0 {
		return true
	}

	steps := value / step

	return math.Abs(steps-math.Round(steps)) < stepEpsilon
}

// stepEpsilon absorbs float64 noise from dividing by small steps.
const stepEpsilon = 1e-9
