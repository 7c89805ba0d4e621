package marginsdk

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	"go.uber.org/atomic"
)

// sessionState is the lifecycle state of a strategy inside a session.
// Transitions are triggered exclusively by host calls, never by the strategy.
type sessionState int32

const (
	stateUninitialized sessionState = iota
	stateInitialized
	stateRunning
	stateSuspended
	stateStopped
)

func (s sessionState) String() string {

	names := [...]string{"UNINITIALIZED", "INITIALIZED", "RUNNING", "SUSPENDED", "STOPPED"}

	return names[s]
}

const (
	defaultCallTimeout  = 2 * time.Second
	defaultSaveInterval = 30 * time.Second
)

type commandAction int

const (
	cmdSuspend commandAction = iota
	cmdUnsuspend
	cmdStop
	cmdSave
)

type command struct {
	action commandAction
	done   chan error
}

type placement struct {
	side   Side
	amount float64
	price  float64
}

type sessionStats struct {
	placed   *atomic.Int64
	filled   *atomic.Int64
	canceled *atomic.Int64
	rejected *atomic.Int64
	volume   *atomic.Float64
}

func newSessionStats() *sessionStats {
	return &sessionStats{
		placed:   atomic.NewInt64(0),
		filled:   atomic.NewInt64(0),
		canceled: atomic.NewInt64(0),
		rejected: atomic.NewInt64(0),
		volume:   atomic.NewFloat64(0.0),
	}
}

/***********************************************************************************************
*
*											Engine
*
************************************************************************************************/

// engine drives a single strategy instance: it serializes every call into the
// strategy, enforces the per-call budget, correlates asynchronous order
// results and persists the strategy state.
type engine struct {
	pair     string
	strategy Strategy
	client   ExchangeClient
	store    *StateStore
	log      Logger

	config   StrategyConfig
	pairInfo *PairInfo
	tcm      *TradingCapabilityManager

	callTimeout  time.Duration
	saveInterval time.Duration

	state *atomic.Int32

	orderBooks    chan *OrderBook
	tickers       chan *Ticker
	publicTrades  chan []PublicTrade
	funds         chan map[string]FundsEntry
	placeResults  chan *PlaceResult
	cancelResults chan *CancelResult
	orderUpdates  chan *OrderUpdate
	commands      chan *command

	pendingPlacements *hashmap.HashMap
	pendingCancels    *hashmap.HashMap
	openOrders        *sortedOrders
	placeCounter      *atomic.Int64

	// held collects correlation callbacks that arrived while suspended, so
	// every in-flight order still resolves exactly once after unsuspend.
	held []func()

	exitCh      chan struct{}
	exitOnce    sync.Once
	exitReason  ExitReason
	exitMessage string
	exited      *atomic.Bool
	stuck       *atomic.Bool

	stats *sessionStats
}

func newEngine(pair string, strategy Strategy, client ExchangeClient, store *StateStore, log Logger) *engine {
	return &engine{
		pair:              pair,
		strategy:          strategy,
		client:            client,
		store:             store,
		log:               log,
		callTimeout:       defaultCallTimeout,
		saveInterval:      defaultSaveInterval,
		state:             atomic.NewInt32(int32(stateUninitialized)),
		orderBooks:        make(chan *OrderBook, 100),
		tickers:           make(chan *Ticker, 100),
		publicTrades:      make(chan []PublicTrade, 100),
		funds:             make(chan map[string]FundsEntry, 100),
		placeResults:      make(chan *PlaceResult, 100),
		cancelResults:     make(chan *CancelResult, 100),
		orderUpdates:      make(chan *OrderUpdate, 100),
		commands:          make(chan *command),
		pendingPlacements: &hashmap.HashMap{},
		pendingCancels:    &hashmap.HashMap{},
		openOrders:        newSortedOrders(),
		placeCounter:      atomic.NewInt64(0),
		exitCh:            make(chan struct{}),
		exited:            atomic.NewBool(false),
		stuck:             atomic.NewBool(false),
		stats:             newSessionStats(),
	}
}

func (e *engine) currentState() sessionState {
	return sessionState(e.state.Load())
}

func (e *engine) setState(s sessionState) {
	e.state.Store(int32(s))
}

func (e *engine) start() error {

	info, err := e.client.GetPairInfo(e.pair)
	if err != nil {
		return fmt.Errorf("retrieving pair info for %s: %w", e.pair, err)
	}
	e.pairInfo = info
	e.tcm = NewTradingCapabilityManager(*info)

	// Initialize strategy
	e.strategy.SetContext(e)

	if !e.invoke("init", e.strategy.Init) || e.exited.Load() {
		return fmt.Errorf("strategy init: %s", e.exitMessage)
	}
	e.setState(stateInitialized)

	// Read the declared configuration once; it is fixed from here on.
	if !e.invoke("get_strategy_config", func() {
		e.config = e.strategy.GetStrategyConfig()
	}) || e.exited.Load() {
		return fmt.Errorf("strategy config: %s", e.exitMessage)
	}

	// Restore a previous snapshot, if one exists for this pair.
	if e.store != nil {
		saved, err := e.store.Load(e.pair)
		if err != nil {
			return fmt.Errorf("loading strategy state: %w", err)
		}
		if saved != nil {
			if !e.invoke("restore_strategy_state", func() {
				e.strategy.RestoreStrategyState(saved)
			}) || e.exited.Load() {
				return fmt.Errorf("strategy restore: %s", e.exitMessage)
			}
			e.log.Infof("[%s] restored strategy state with %d entries", e.pair, len(saved))
		}
	}

	// Subscribe the streams the strategy declared
	if e.config.Requires(UpdateOrderBook) {
		e.client.SubscribeOrderBooks(e.pair, e.onOrderBook)
	}
	if e.config.Requires(UpdateTicker) {
		e.client.SubscribeTickers(e.pair, e.onTicker)
	}
	if e.config.Requires(UpdatePublicTradeHistory) {
		e.client.SubscribePublicTrades(e.pair, e.onPublicTrades)
	}
	if e.config.Requires(UpdateFunds) {
		e.client.SubscribeFunds(e.onFunds)
	}

	// Order results and updates are always subscribed
	e.client.SubscribePlaceResults(e.onPlaceResult)
	e.client.SubscribeCancelResults(e.onCancelResult)
	e.client.SubscribeOrderUpdates(e.onOrderUpdate)

	// Run strategy
	if !e.invoke("start", e.strategy.Start) {
		return fmt.Errorf("strategy start: %s", e.exitMessage)
	}
	e.setState(stateRunning)

	e.run()

	// Stop strategy. A stuck strategy receives no further calls, mirroring a
	// host that discards the execution context.
	if !e.stuck.Load() {
		e.performSave()
		e.invoke("stop", e.strategy.Stop)
	}
	e.setState(stateStopped)

	if e.exitReason == ExitError {
		return fmt.Errorf("strategy exited with error: %s", e.exitMessage)
	}

	return nil
}

/**************************
*
*	Client Callbacks
*
***************************/

func (e *engine) onOrderBook(book *OrderBook) {
	select { // non blocking buffered channel, snapshots may be dropped
	case e.orderBooks <- book:
	default:
	}
}

func (e *engine) onTicker(ticker *Ticker) {
	select {
	case e.tickers <- ticker:
	default:
	}
}

func (e *engine) onPublicTrades(trades []PublicTrade) {
	select {
	case e.publicTrades <- trades:
	default:
	}
}

func (e *engine) onFunds(funds map[string]FundsEntry) {
	select {
	case e.funds <- funds:
	default:
	}
}

func (e *engine) onPlaceResult(result *PlaceResult) {
	e.placeResults <- result
}

func (e *engine) onCancelResult(result *CancelResult) {
	e.cancelResults <- result
}

func (e *engine) onOrderUpdate(update *OrderUpdate) {
	e.orderUpdates <- update
}

/**************************
*
*	Dispatch Loop
*
***************************/

// run delivers one callback at a time until the session ends. Data snapshots
// are delivered only in the running state; correlation results are held
// through a suspension and replayed on unsuspend.
func (e *engine) run() {

	saveTicker := time.NewTicker(e.saveInterval)
	defer saveTicker.Stop()

	for !e.exited.Load() {

		select {

		case book := <-e.orderBooks:
			if e.currentState() == stateRunning {
				e.invoke("on_new_order_book", func() { e.strategy.OnNewOrderBook(book) })
			}

		case ticker := <-e.tickers:
			if e.currentState() == stateRunning {
				e.invoke("on_new_ticker", func() { e.strategy.OnNewTicker(ticker) })
			}

		case trades := <-e.publicTrades:
			if e.currentState() == stateRunning {
				e.invoke("on_new_public_trades", func() { e.strategy.OnNewPublicTrades(trades) })
			}

		case funds := <-e.funds:
			if e.currentState() == stateRunning {
				e.invoke("on_new_funds", func() { e.strategy.OnNewFunds(funds) })
			}

		case result := <-e.placeResults:
			e.handlePlaceResult(result)

		case result := <-e.cancelResults:
			e.handleCancelResult(result)

		case update := <-e.orderUpdates:
			e.handleOrderUpdate(update)

		case cmd := <-e.commands:
			e.handleCommand(cmd)

		case <-saveTicker.C:
			if e.currentState() == stateRunning {
				e.performSave()
			}

		case <-e.exitCh:
		}
	}
}

func (e *engine) handlePlaceResult(result *PlaceResult) {

	key := correlationKey(result.PlaceOrderID)

	if _, pending := e.pendingPlacements.GetStringKey(key); !pending {
		e.log.Warnf("[%s] place result for unknown place order id %d, dropping", e.pair, result.PlaceOrderID)
		return
	}
	e.pendingPlacements.Del(key)

	if result.Error != "" {
		e.stats.rejected.Inc()
		e.deliver("on_place_order_error", func() {
			e.strategy.OnPlaceOrderError(result.PlaceOrderID, result.Error)
		})
		return
	}

	e.openOrders.Append(result.Order.ID)
	e.deliver("on_place_order_success", func() {
		e.strategy.OnPlaceOrderSuccess(result.PlaceOrderID, result.Order)
	})
}

func (e *engine) handleCancelResult(result *CancelResult) {

	key := correlationKey(result.OrderID)

	if _, pending := e.pendingCancels.GetStringKey(key); !pending {
		e.log.Warnf("[%s] cancel result for unknown order id %d, dropping", e.pair, result.OrderID)
		return
	}
	e.pendingCancels.Del(key)

	if result.Error != "" {
		e.deliver("on_cancel_order_error", func() {
			e.strategy.OnCancelOrderError(result.OrderID, result.Error)
		})
		return
	}

	e.openOrders.Delete(result.OrderID)
	e.stats.canceled.Inc()
	e.deliver("on_cancel_order_success", func() {
		e.strategy.OnCancelOrderSuccess(result.OrderID, result.Order)
	})
}

func (e *engine) handleOrderUpdate(update *OrderUpdate) {

	if update.Updated == nil || !e.openOrders.Contains(update.Updated.ID) {
		e.log.Warnf("[%s] order update (%s) for an order this strategy does not own, dropping",
			e.pair, update.Status)
		return
	}

	switch update.Status {
	case OrderFilled, OrderAdaptedAndFilled:
		e.openOrders.Delete(update.Updated.ID)
		e.stats.filled.Inc()
		e.stats.volume.Add(fillVolume(update))
	case OrderPartiallyFilled:
		e.stats.volume.Add(fillVolume(update))
	case OrderCanceled, OrderDisappeared:
		e.openOrders.Delete(update.Updated.ID)
	}

	e.deliver("on_order_update", func() { e.strategy.OnOrderUpdate(update) })
}

// fillVolume returns the quote volume executed by this update alone, so an
// order filling across several updates is counted once.
func fillVolume(update *OrderUpdate) float64 {

	filled := update.Updated.Filled()
	if update.Original != nil {
		filled -= update.Original.Filled()
	}
	if filled < 0 {
		filled = 0
	}

	return filled * update.Updated.Price
}

func (e *engine) handleCommand(cmd *command) {

	var err error

	switch cmd.action {

	case cmdSuspend:
		if e.currentState() != stateRunning {
			err = fmt.Errorf("cannot suspend strategy in state %s", e.currentState())
			break
		}
		e.invoke("suspend", e.strategy.Suspend)
		e.setState(stateSuspended)
		e.performSave()

	case cmdUnsuspend:
		if e.currentState() != stateSuspended {
			err = fmt.Errorf("cannot unsuspend strategy in state %s", e.currentState())
			break
		}
		e.invoke("unsuspend", e.strategy.Unsuspend)
		e.setState(stateRunning)
		e.replayHeld()

	case cmdStop:
		e.recordExit(ExitUserRequested, "stopped by host")

	case cmdSave:
		e.performSave()
	}

	cmd.done <- err
}

// deliver invokes a correlation callback, or holds it for replay when the
// strategy is suspended. These callbacks must reach the strategy exactly once.
func (e *engine) deliver(call string, fn func()) {

	if e.currentState() == stateSuspended {
		e.held = append(e.held, func() { e.invoke(call, fn) })
		return
	}

	e.invoke(call, fn)
}

func (e *engine) replayHeld() {

	held := e.held
	e.held = nil

	for _, fn := range held {
		if e.exited.Load() {
			return
		}
		fn()
	}
}

// invoke runs a single strategy call under the call budget. It blocks until
// the call returns or times out, so calls never overlap. A call that exceeds
// the budget marks the strategy as stuck and ends the session.
func (e *engine) invoke(call string, fn func()) bool {

	done := make(chan struct{})

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Errorf("[%s] strategy panicked in %s: %v", e.pair, call, r)
				e.recordExit(ExitError, fmt.Sprintf("panic in %s: %v", call, r))
			}
			close(done)
		}()
		fn()
	}()

	select {
	case <-done:
		return true
	case <-time.After(e.callTimeout):
		e.log.Errorf("[%s] strategy call %s exceeded the %s budget, treating strategy as stuck",
			e.pair, call, e.callTimeout)
		e.stuck.Store(true)
		e.recordExit(ExitError, fmt.Sprintf("%s exceeded the %s call budget", call, e.callTimeout))
		return false
	}
}

func (e *engine) performSave() {

	if e.stuck.Load() {
		return
	}

	var snapshot map[string]string

	if !e.invoke("save_strategy_state", func() {
		snapshot = e.strategy.SaveStrategyState()
	}) {
		return
	}

	if e.store == nil {
		return
	}

	if err := e.store.Save(e.pair, snapshot); err != nil {
		e.log.Errorf("[%s] saving strategy state: %v", e.pair, err)
	}
}

func (e *engine) recordExit(reason ExitReason, message string) {
	e.exitOnce.Do(func() {
		e.exitReason = reason
		e.exitMessage = message
		e.exited.Store(true)
		close(e.exitCh)
	})
}

func (e *engine) sendCommand(action commandAction) error {

	cmd := &command{action: action, done: make(chan error, 1)}

	select {
	case e.commands <- cmd:
		return <-cmd.done
	case <-e.exitCh:
		return fmt.Errorf("session already ended")
	}
}

func correlationKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

/**************************
*
*	Accessible Methods
*
***************************/

func (e *engine) PlaceLimitOrder(side Side, amount, price float64) int64 {

	placeOrderID := e.placeCounter.Inc()
	e.pendingPlacements.Set(correlationKey(placeOrderID), placement{side: side, amount: amount, price: price})
	e.stats.placed.Inc()

	go e.client.PlaceLimitOrder(placeOrderID, e.pair, side, amount, price)

	return placeOrderID
}

func (e *engine) CancelOrder(orderID int64) {

	e.pendingCancels.Set(correlationKey(orderID), true)

	go e.client.CancelOrder(e.pair, orderID)
}

func (e *engine) TradingCapabilityManager() *TradingCapabilityManager {
	return e.tcm
}

func (e *engine) CurrencyPair() string {
	return e.pair
}

func (e *engine) BufferedCandles(timeframe time.Duration, limit int) []Candle {

	candles, err := e.client.GetCandles(e.pair, timeframe, limit)
	if err != nil {
		e.log.Warnf("[%s] retrieving buffered candles: %v", e.pair, err)
		return nil
	}

	return candles
}

func (e *engine) WriteLog(format string, args ...interface{}) {
	e.log.Infof("["+e.pair+"] "+format, args...)
}

func (e *engine) Exit(reason ExitReason, message ...string) {

	msg := reason.String()
	if len(message) > 0 {
		msg = message[0]
	}

	e.recordExit(reason, msg)
}
