package marginsdk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Option represents a trading session functional option.
type Option func(p *sessionParameters)

// Pair is the functional option to define the currency pair the session trades.
func Pair(pair string) Option {
	return func(p *sessionParameters) {
		p.pair = pair
	}
}

// StateDir is the functional option to define where strategy state snapshots
// are persisted. Without it the session keeps state in memory only.
func StateDir(dir string) Option {
	return func(p *sessionParameters) {
		p.stateDir = &dir
	}
}

// CallTimeout is the functional option to override the per-call budget
// enforced on every strategy call. Defaults to 2 seconds.
func CallTimeout(timeout time.Duration) Option {
	return func(p *sessionParameters) {
		p.callTimeout = timeout
	}
}

// SaveInterval is the functional option to override how often the session
// asks the strategy for a state snapshot. Defaults to 30 seconds.
func SaveInterval(interval time.Duration) Option {
	return func(p *sessionParameters) {
		p.saveInterval = interval
	}
}

// SessionLogger is the functional option to replace the session logger.
func SessionLogger(log Logger) Option {
	return func(p *sessionParameters) {
		p.log = log
	}
}

type sessionParameters struct {
	pair         string
	stateDir     *string
	callTimeout  time.Duration
	saveInterval time.Duration
	log          Logger
}

// Session represents the entrypoint struct of the marginsdk package: one
// strategy driven against one exchange client on one currency pair.
type Session struct {
	strategy   Strategy
	client     ExchangeClient
	parameters *sessionParameters
	engine     *engine
	store      *StateStore
}

// NewSession is the Session constructor.
func NewSession(opts ...Option) *Session {

	params := &sessionParameters{
		callTimeout:  defaultCallTimeout,
		saveInterval: defaultSaveInterval,
	}

	for _, o := range opts {
		o(params)
	}

	if params.log == nil {
		params.log = defaultLogger()
	}

	return &Session{
		parameters: params,
	}
}

// FromSettings builds the session options out of a settings file.
func FromSettings(settings *Settings) ([]Option, error) {

	callTimeout, err := settings.CallTimeoutDuration()
	if err != nil {
		return nil, err
	}

	saveInterval, err := settings.SaveIntervalDuration()
	if err != nil {
		return nil, err
	}

	opts := []Option{
		Pair(settings.Pair),
		CallTimeout(callTimeout),
		SaveInterval(saveInterval),
	}

	if settings.StateDir != "" {
		opts = append(opts, StateDir(settings.StateDir))
	}

	return opts, nil
}

// SetStrategy sets the strategy to drive.
func (s *Session) SetStrategy(strategy Strategy) *Session {
	s.strategy = strategy

	return s
}

// SetClient sets the client that will be used for communication with the
// exchange.
func (s *Session) SetClient(client ExchangeClient) *Session {
	s.client = client

	return s
}

// Run drives the strategy until it exits, the host stops it, or it is
// considered stuck. It blocks and returns a non-nil error only when the
// session ended because of an error.
func (s *Session) Run() error {

	if s.strategy == nil {
		return errors.New("strategy is not defined")
	}
	if s.client == nil {
		return errors.New("client is not defined")
	}
	if s.parameters.pair == "" {
		return errors.New("pair is not defined")
	}

	var err error

	s.store, err = NewStateStore(s.parameters.stateDir)
	if err != nil {
		return err
	}
	defer s.store.Close()

	s.engine = newEngine(s.parameters.pair, s.strategy, s.client, s.store, s.parameters.log)
	s.engine.callTimeout = s.parameters.callTimeout
	s.engine.saveInterval = s.parameters.saveInterval

	err = s.engine.start()

	if closer, ok := s.client.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil {
			s.parameters.log.Warnf("closing exchange client: %v", cerr)
		}
	}

	return err
}

// Suspend pauses the strategy. No strategy call is in flight once it returns.
func (s *Session) Suspend() error {

	if s.engine == nil {
		return errors.New("session is not running")
	}

	return s.engine.sendCommand(cmdSuspend)
}

// Unsuspend resumes a suspended strategy. Order results that arrived during
// the suspension are delivered right after the strategy resumes.
func (s *Session) Unsuspend() error {

	if s.engine == nil {
		return errors.New("session is not running")
	}

	return s.engine.sendCommand(cmdUnsuspend)
}

// Stop gracefully ends the session. The strategy state is saved and the
// strategy receives its final Stop call before Run returns.
func (s *Session) Stop() error {

	if s.engine == nil {
		return errors.New("session is not running")
	}

	return s.engine.sendCommand(cmdStop)
}

// SaveNow forces an immediate state snapshot outside the regular interval.
func (s *Session) SaveNow() error {

	if s.engine == nil {
		return errors.New("session is not running")
	}

	return s.engine.sendCommand(cmdSave)
}

// OpenOrders returns the ids of the orders the strategy placed that are still
// open on the exchange, oldest first.
func (s *Session) OpenOrders() []int64 {

	if s.engine == nil {
		return nil
	}

	ids := make([]int64, 0, s.engine.openOrders.Len())
	for id := range s.engine.openOrders.AscendIter(-1) {
		ids = append(ids, id)
	}

	return ids
}

// ExitStatus returns the reason and message the session ended with.
// Meaningful only after Run has returned.
func (s *Session) ExitStatus() (ExitReason, string) {

	if s.engine == nil {
		return ExitError, "session never ran"
	}

	return s.engine.exitReason, s.engine.exitMessage
}

// Summary displays the order statistics of the session in stdout.
func (s *Session) Summary() {

	if s.engine == nil {
		return
	}

	stats := s.engine.stats

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Pair", "Placed", "Filled", "Canceled", "Rejected", "Open", "Volume"})
	table.Append([]string{
		s.parameters.pair,
		strconv.FormatInt(stats.placed.Load(), 10),
		strconv.FormatInt(stats.filled.Load(), 10),
		strconv.FormatInt(stats.canceled.Load(), 10),
		strconv.FormatInt(stats.rejected.Load(), 10),
		strconv.Itoa(s.engine.openOrders.Len()),
		fmt.Sprintf("%.2f", stats.volume.Load()),
	})
	table.Render()

	fmt.Println(buffer.String())
}
