package paper

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/openmargin/marginsdk"
)

// Option represents a paper client functional option.
type Option func(c *Client)

// Seed fixes the price generator seed, making the session reproducible.
func Seed(seed int64) Option {
	return func(c *Client) {
		c.seed = seed
	}
}

// StartPrice sets the first quote of the simulated pair.
func StartPrice(price float64) Option {
	return func(c *Client) {
		c.startPrice = price
	}
}

// TickInterval sets the wall-clock pace of the simulated feed.
func TickInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.tickInterval = interval
	}
}

// DepthLevels sets how many price levels each order book side carries.
func DepthLevels(levels int) Option {
	return func(c *Client) {
		c.depthLevels = levels
	}
}

// MaxFillPerStep caps how much of a resting order executes on a single feed
// step; larger orders fill partially across several steps.
func MaxFillPerStep(amount float64) Option {
	return func(c *Client) {
		c.maxFillPerStep = amount
	}
}

type fundsAccount struct {
	available *atomic.Float64
	reserved  *atomic.Float64
}

// Client is a simulated exchange: it generates a random-walk market data feed
// for a single pair, keeps a funds ledger and matches resting limit orders
// against the generated quotes.
type Client struct {
	info         marginsdk.PairInfo
	seed         int64
	startPrice   float64
	tickInterval time.Duration
	depthLevels  int

	maxFillPerStep float64

	mutex  sync.Mutex
	funds  map[string]*fundsAccount
	orders *hashmap.HashMap

	orderCounter *atomic.Int64
	tradeCounter *atomic.Int64

	handlersMutex   sync.RWMutex
	onBook          marginsdk.OrderBookHandler
	onTicker        marginsdk.TickerHandler
	onPublicTrades  marginsdk.PublicTradesHandler
	onFunds         marginsdk.FundsHandler
	onPlaceResult   marginsdk.PlaceResultHandler
	onCancelResult  marginsdk.CancelResultHandler
	onOrderUpdate   marginsdk.OrderUpdateHandler

	gen  *priceGenerator
	rand *rand.Rand

	historyMutex sync.Mutex
	history      []marginsdk.Ticker

	feedOnce sync.Once
	quit     chan struct{}
}

// NewClient builds a paper exchange for the given pair, crediting the initial
// funds to the ledger.
func NewClient(info marginsdk.PairInfo, initialFunds map[string]float64, opts ...Option) *Client {

	client := &Client{
		info:           info,
		seed:           time.Now().UnixNano(),
		startPrice:     1.0,
		tickInterval:   100 * time.Millisecond,
		depthLevels:    10,
		maxFillPerStep: info.MaxAmount,
		funds:          make(map[string]*fundsAccount),
		orders:         &hashmap.HashMap{},
		orderCounter:   atomic.NewInt64(0),
		tradeCounter:   atomic.NewInt64(0),
		quit:           make(chan struct{}),
	}

	for _, o := range opts {
		o(client)
	}

	for currency, amount := range initialFunds {
		client.funds[currency] = &fundsAccount{
			available: atomic.NewFloat64(amount),
			reserved:  atomic.NewFloat64(0.0),
		}
	}
	client.ensureAccount(info.BaseCurrency)
	client.ensureAccount(info.QuoteCurrency)

	client.gen = newPriceGenerator(info.Pair, time.Now(), client.startPrice, client.seed)
	client.rand = rand.New(rand.NewSource(client.seed + 1))

	return client
}

// Close stops the simulated feed.
func (c *Client) Close() error {

	select {
	case <-c.quit:
	default:
		close(c.quit)
	}

	return nil
}

func (c *Client) GetPairInfo(pair string) (*marginsdk.PairInfo, error) {

	if pair != c.info.Pair {
		return nil, fmt.Errorf("unknown pair %s", pair)
	}

	info := c.info

	return &info, nil
}

func (c *Client) GetCandles(pair string, timeframe time.Duration, limit int) ([]marginsdk.Candle, error) {

	if pair != c.info.Pair {
		return nil, fmt.Errorf("unknown pair %s", pair)
	}
	if timeframe <= 0 {
		return nil, fmt.Errorf("invalid timeframe %s", timeframe)
	}

	c.historyMutex.Lock()
	history := make([]marginsdk.Ticker, len(c.history))
	copy(history, c.history)
	c.historyMutex.Unlock()

	return aggregateCandles(pair, history, timeframe, limit), nil
}

func (c *Client) PlaceLimitOrder(placeOrderID int64, pair string, side marginsdk.Side, amount, price float64) {

	if errMsg := c.validateOrder(pair, amount, price); errMsg != "" {
		c.emitPlaceResult(&marginsdk.PlaceResult{
			PlaceOrderID: placeOrderID,
			Error:        errMsg,
			Time:         time.Now(),
		})
		return
	}

	c.mutex.Lock()

	var reserveErr string
	if side == marginsdk.Buy {
		reserveErr = c.reserve(c.info.QuoteCurrency, amount*price)
	} else {
		reserveErr = c.reserve(c.info.BaseCurrency, amount)
	}

	if reserveErr != "" {
		c.mutex.Unlock()
		c.emitPlaceResult(&marginsdk.PlaceResult{
			PlaceOrderID: placeOrderID,
			Error:        reserveErr,
			Time:         time.Now(),
		})
		return
	}

	order := &marginsdk.Order{
		ID:              c.orderCounter.Inc(),
		Pair:            pair,
		Side:            side,
		Amount:          amount,
		RemainingAmount: amount,
		Price:           price,
		Time:            time.Now(),
	}
	c.orders.Set(orderKey(order.ID), order)

	c.mutex.Unlock()

	c.emitPlaceResult(&marginsdk.PlaceResult{
		PlaceOrderID: placeOrderID,
		Order:        orderCopy(order),
		Time:         order.Time,
	})
	c.emitFunds()
}

func (c *Client) CancelOrder(pair string, orderID int64) {

	c.mutex.Lock()

	value, exist := c.orders.GetStringKey(orderKey(orderID))
	if !exist {
		c.mutex.Unlock()
		c.emitCancelResult(&marginsdk.CancelResult{
			OrderID: orderID,
			Error:   fmt.Sprintf("unknown order id %d", orderID),
			Time:    time.Now(),
		})
		return
	}

	order := value.(*marginsdk.Order)
	c.orders.Del(orderKey(orderID))

	if order.Side == marginsdk.Buy {
		c.release(c.info.QuoteCurrency, order.RemainingAmount*order.Price)
	} else {
		c.release(c.info.BaseCurrency, order.RemainingAmount)
	}

	c.mutex.Unlock()

	c.emitCancelResult(&marginsdk.CancelResult{
		OrderID: orderID,
		Order:   orderCopy(order),
		Time:    time.Now(),
	})
	c.emitFunds()
}

/**************************
*
*	Subscriptions
*
***************************/

func (c *Client) SubscribeOrderBooks(pair string, callback marginsdk.OrderBookHandler) {
	c.handlersMutex.Lock()
	c.onBook = callback
	c.handlersMutex.Unlock()
}

func (c *Client) SubscribeTickers(pair string, callback marginsdk.TickerHandler) {
	c.handlersMutex.Lock()
	c.onTicker = callback
	c.handlersMutex.Unlock()
}

func (c *Client) SubscribePublicTrades(pair string, callback marginsdk.PublicTradesHandler) {
	c.handlersMutex.Lock()
	c.onPublicTrades = callback
	c.handlersMutex.Unlock()
}

func (c *Client) SubscribeFunds(callback marginsdk.FundsHandler) {
	c.handlersMutex.Lock()
	c.onFunds = callback
	c.handlersMutex.Unlock()

	// deliver the starting balances right away
	callback(c.fundsSnapshot())
}

func (c *Client) SubscribePlaceResults(callback marginsdk.PlaceResultHandler) {
	c.handlersMutex.Lock()
	c.onPlaceResult = callback
	c.handlersMutex.Unlock()
}

func (c *Client) SubscribeCancelResults(callback marginsdk.CancelResultHandler) {
	c.handlersMutex.Lock()
	c.onCancelResult = callback
	c.handlersMutex.Unlock()
}

func (c *Client) SubscribeOrderUpdates(callback marginsdk.OrderUpdateHandler) {
	c.handlersMutex.Lock()
	c.onOrderUpdate = callback
	c.handlersMutex.Unlock()

	// the engine subscribes order updates last, so the feed starts here
	c.feedOnce.Do(func() {
		go c.feed()
	})
}

/**************************
*
*	Feed & Matching
*
***************************/

func (c *Client) feed() {

	for {
		select {
		case <-c.quit:
			return
		default:
		}

		ticker := c.gen.next()

		c.recordHistory(ticker)
		c.emitTicker(ticker)
		c.emitBook(ticker)
		c.maybeEmitBackgroundTrade(ticker)
		c.match(ticker)

		time.Sleep(c.tickInterval)
	}
}

func (c *Client) recordHistory(ticker *marginsdk.Ticker) {
	c.historyMutex.Lock()
	defer c.historyMutex.Unlock()

	c.history = append(c.history, *ticker)
	if len(c.history) > 100000 {
		c.history = c.history[len(c.history)-100000:]
	}
}

// match executes resting limit orders that cross the new quote. An order
// larger than maxFillPerStep fills partially, one slice per step.
func (c *Client) match(ticker *marginsdk.Ticker) {

	type execution struct {
		update *marginsdk.OrderUpdate
		trade  marginsdk.PublicTrade
	}

	var executions []execution

	c.mutex.Lock()

	for kv := range c.orders.Iter() {

		order := kv.Value.(*marginsdk.Order)

		crossed := (order.Side == marginsdk.Buy && ticker.Ask <= order.Price) ||
			(order.Side == marginsdk.Sell && ticker.Bid >= order.Price)
		if !crossed {
			continue
		}

		original := orderCopy(order)

		fill := order.RemainingAmount
		if fill > c.maxFillPerStep {
			fill = c.maxFillPerStep
		}
		order.RemainingAmount -= fill

		if order.Side == marginsdk.Buy {
			c.settle(c.info.QuoteCurrency, fill*order.Price)
			c.credit(c.info.BaseCurrency, fill)
		} else {
			c.settle(c.info.BaseCurrency, fill)
			c.credit(c.info.QuoteCurrency, fill*order.Price)
		}

		status := marginsdk.OrderPartiallyFilled
		if order.RemainingAmount <= 0 {
			status = marginsdk.OrderFilled
			c.orders.Del(orderKey(order.ID))
		}

		trade := marginsdk.PublicTrade{
			ID:     c.tradeCounter.Inc(),
			Pair:   c.info.Pair,
			Side:   order.Side,
			Amount: fill,
			Price:  order.Price,
			Time:   ticker.Time,
		}

		executions = append(executions, execution{
			update: &marginsdk.OrderUpdate{
				Status:          status,
				Original:        original,
				Updated:         orderCopy(order),
				ResultingTrades: []marginsdk.PublicTrade{trade},
				Time:            ticker.Time,
			},
			trade: trade,
		})
	}

	c.mutex.Unlock()

	for _, exec := range executions {
		c.emitOrderUpdate(exec.update)
		c.emitPublicTrades([]marginsdk.PublicTrade{exec.trade})
	}
	if len(executions) > 0 {
		c.emitFunds()
	}
}

func (c *Client) maybeEmitBackgroundTrade(ticker *marginsdk.Ticker) {

	if c.rand.Float64() > 0.3 {
		return
	}

	side := marginsdk.Buy
	price := ticker.Ask
	if c.rand.Float64() < 0.5 {
		side = marginsdk.Sell
		price = ticker.Bid
	}

	c.emitPublicTrades([]marginsdk.PublicTrade{{
		ID:     c.tradeCounter.Inc(),
		Pair:   c.info.Pair,
		Side:   side,
		Amount: c.roundedRandomAmount(),
		Price:  price,
		Time:   ticker.Time,
	}})
}

func (c *Client) roundedRandomAmount() float64 {

	span := c.info.MaxAmount - c.info.MinAmount
	amount := c.info.MinAmount + c.rand.Float64()*span*0.1

	steps := int(amount / c.info.AmountStep)
	if steps < 1 {
		steps = 1
	}

	return float64(steps) * c.info.AmountStep
}

/**************************
*
*	Funds Ledger
*
***************************/

func (c *Client) ensureAccount(currency string) *fundsAccount {

	account, exist := c.funds[currency]
	if !exist {
		account = &fundsAccount{
			available: atomic.NewFloat64(0.0),
			reserved:  atomic.NewFloat64(0.0),
		}
		c.funds[currency] = account
	}

	return account
}

func (c *Client) reserve(currency string, amount float64) string {

	account := c.ensureAccount(currency)

	if account.available.Load() < amount {
		return fmt.Sprintf("insufficient %s funds: %f available, %f required",
			currency, account.available.Load(), amount)
	}

	account.available.Sub(amount)
	account.reserved.Add(amount)

	return ""
}

func (c *Client) release(currency string, amount float64) {
	account := c.ensureAccount(currency)
	account.reserved.Sub(amount)
	account.available.Add(amount)
}

func (c *Client) settle(currency string, amount float64) {
	c.ensureAccount(currency).reserved.Sub(amount)
}

func (c *Client) credit(currency string, amount float64) {
	c.ensureAccount(currency).available.Add(amount)
}

func (c *Client) fundsSnapshot() map[string]marginsdk.FundsEntry {

	c.mutex.Lock()
	defer c.mutex.Unlock()

	snapshot := make(map[string]marginsdk.FundsEntry, len(c.funds))
	for currency, account := range c.funds {
		snapshot[currency] = marginsdk.FundsEntry{
			Currency:  currency,
			Available: account.available.Load(),
			Reserved:  account.reserved.Load(),
		}
	}

	return snapshot
}

/**************************
*
*	Emission
*
***************************/

func (c *Client) emitTicker(ticker *marginsdk.Ticker) {
	c.handlersMutex.RLock()
	callback := c.onTicker
	c.handlersMutex.RUnlock()

	if callback != nil {
		callback(ticker)
	}
}

func (c *Client) emitBook(ticker *marginsdk.Ticker) {
	c.handlersMutex.RLock()
	callback := c.onBook
	c.handlersMutex.RUnlock()

	if callback == nil {
		return
	}

	book := &marginsdk.OrderBook{
		Pair: c.info.Pair,
		Bids: make([]marginsdk.OrderBookEntry, 0, c.depthLevels),
		Asks: make([]marginsdk.OrderBookEntry, 0, c.depthLevels),
		Time: ticker.Time,
	}

	levelStep := c.info.PriceStep
	if levelStep <= 0 {
		levelStep = ticker.Bid * 0.0001
	}

	for i := 0; i < c.depthLevels; i++ {
		book.Bids = append(book.Bids, marginsdk.OrderBookEntry{
			Price:  ticker.Bid - float64(i)*levelStep,
			Amount: c.roundedRandomAmount(),
		})
		book.Asks = append(book.Asks, marginsdk.OrderBookEntry{
			Price:  ticker.Ask + float64(i)*levelStep,
			Amount: c.roundedRandomAmount(),
		})
	}

	callback(book)
}

func (c *Client) emitPublicTrades(trades []marginsdk.PublicTrade) {
	c.handlersMutex.RLock()
	callback := c.onPublicTrades
	c.handlersMutex.RUnlock()

	if callback != nil {
		callback(trades)
	}
}

func (c *Client) emitFunds() {
	c.handlersMutex.RLock()
	callback := c.onFunds
	c.handlersMutex.RUnlock()

	if callback != nil {
		callback(c.fundsSnapshot())
	}
}

func (c *Client) emitPlaceResult(result *marginsdk.PlaceResult) {
	c.handlersMutex.RLock()
	callback := c.onPlaceResult
	c.handlersMutex.RUnlock()

	if callback != nil {
		callback(result)
	} else {
		log.Warn("place result emitted without a subscriber")
	}
}

func (c *Client) emitCancelResult(result *marginsdk.CancelResult) {
	c.handlersMutex.RLock()
	callback := c.onCancelResult
	c.handlersMutex.RUnlock()

	if callback != nil {
		callback(result)
	} else {
		log.Warn("cancel result emitted without a subscriber")
	}
}

func (c *Client) emitOrderUpdate(update *marginsdk.OrderUpdate) {
	c.handlersMutex.RLock()
	callback := c.onOrderUpdate
	c.handlersMutex.RUnlock()

	if callback != nil {
		callback(update)
	}
}

/**************************
*
*	Helpers
*
***************************/

func (c *Client) validateOrder(pair string, amount, price float64) string {

	if pair != c.info.Pair {
		return fmt.Sprintf("unknown pair %s", pair)
	}
	if amount <= 0 || price <= 0 {
		return "order amount and price must be positive"
	}
	if amount < c.info.MinAmount {
		return fmt.Sprintf("amount %f below the exchange minimum %f", amount, c.info.MinAmount)
	}
	if amount > c.info.MaxAmount {
		return fmt.Sprintf("amount %f above the exchange maximum %f", amount, c.info.MaxAmount)
	}
	if c.info.MinTotal > 0 && amount*price < c.info.MinTotal {
		return fmt.Sprintf("order value %f below the exchange minimum %f", amount*price, c.info.MinTotal)
	}

	return ""
}

func orderKey(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

func orderCopy(order *marginsdk.Order) *marginsdk.Order {
	copied := *order

	return &copied
}

func aggregateCandles(pair string, history []marginsdk.Ticker, timeframe time.Duration, limit int) []marginsdk.Candle {

	if len(history) == 0 {
		return nil
	}

	var candles []marginsdk.Candle
	var current *marginsdk.Candle

	for _, ticker := range history {

		bucket := ticker.Time.Truncate(timeframe)

		if current == nil || !current.Time.Equal(bucket) {
			if current != nil {
				candles = append(candles, *current)
			}
			current = &marginsdk.Candle{
				Pair: pair,
				Open: ticker.Last,
				High: ticker.Last,
				Low:  ticker.Last,
				Time: bucket,
			}
		}

		if ticker.Last > current.High {
			current.High = ticker.Last
		}
		if ticker.Last < current.Low {
			current.Low = ticker.Last
		}
		current.Close = ticker.Last
	}
	candles = append(candles, *current)

	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	return candles
}
