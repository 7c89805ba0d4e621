package marginsdk

import "time"

// Side represents the side of an order, buy or sell.
type Side int

const (
	// Buy bids for the base currency.
	Buy Side = iota

	// Sell offers the base currency.
	Sell
)

func (s Side) String() string {

	names := [...]string{"BUY", "SELL"}

	return names[s]
}

// Order is an exchange-owned order record. ID is the durable identifier used
// for cancellation and order updates, as opposed to the transient place order
// id that only lives until the placement is resolved.
type Order struct {
	ID              int64
	Pair            string
	Side            Side
	Amount          float64
	RemainingAmount float64
	Price           float64
	Time            time.Time
}

// Filled returns the executed part of the order.
func (o *Order) Filled() float64 {
	return o.Amount - o.RemainingAmount
}

// OrderUpdateStatus enumerates what happened to a strategy-placed order.
type OrderUpdateStatus int

const (
	// OrderFilled means the order was completely executed.
	OrderFilled OrderUpdateStatus = iota

	// OrderAdapted means the exchange modified the order (price or amount).
	OrderAdapted

	// OrderCanceled means the order was canceled.
	OrderCanceled

	// OrderNoChange means the order was observed unchanged.
	OrderNoChange

	// OrderReappeared means an order believed gone showed up again.
	OrderReappeared

	// OrderDisappeared means the order is no longer visible on the exchange.
	OrderDisappeared

	// OrderPartiallyFilled means part of the order was executed.
	OrderPartiallyFilled

	// OrderAdaptedAndFilled means the order was modified and then executed.
	OrderAdaptedAndFilled

	// OrderOtherChange covers any change not described by the other statuses.
	OrderOtherChange
)

func (s OrderUpdateStatus) String() string {

	names := [...]string{
		"FILLED",
		"ADAPTED",
		"CANCELED",
		"NO_CHANGE",
		"REAPPEARED",
		"DISAPPEARED",
		"PARTIALLY_FILLED",
		"ADAPTED_AND_FILLED",
		"OTHER_CHANGE",
	}

	if s < 0 || int(s) >= len(names) {
		return "UNKNOWN"
	}

	return names[s]
}

// OrderUpdate describes a change to an order placed by the strategy.
// Original is the order as the strategy last knew it, Updated the order after
// the change, ResultingTrades the executions that caused it, if any.
type OrderUpdate struct {
	Status          OrderUpdateStatus
	Original        *Order
	Updated         *Order
	ResultingTrades []PublicTrade
	Time            time.Time
}

// ExitReason is the reason a strategy gives when voluntarily ending itself.
type ExitReason int

const (
	// ExitError signals the strategy hit an unrecoverable error.
	ExitError ExitReason = iota

	// ExitFinishedSuccessfully signals the strategy completed its job.
	ExitFinishedSuccessfully

	// ExitUserRequested signals the user asked the strategy to finish.
	ExitUserRequested
)

func (r ExitReason) String() string {

	names := [...]string{"ERROR", "FINISHED_SUCCESSFULLY", "USER_REQUESTED"}

	if r < 0 || int(r) >= len(names) {
		return "UNKNOWN"
	}

	return names[r]
}

// PlaceResult resolves an order placement, carrying either the resulting
// order or an error description.
type PlaceResult struct {
	PlaceOrderID int64
	Order        *Order
	Error        string
	Time         time.Time
}

// CancelResult resolves an order cancellation, carrying either the canceled
// order in its latest state or an error description.
type CancelResult struct {
	OrderID int64
	Order   *Order
	Error   string
	Time    time.Time
}

type PlaceResultHandler func(result *PlaceResult)

type CancelResultHandler func(result *CancelResult)

type OrderUpdateHandler func(update *OrderUpdate)
