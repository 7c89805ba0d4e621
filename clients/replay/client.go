package replay

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/openmargin/marginsdk"
)

// Client replays historical candles from a CSV file as a ticker feed. It is a
// data-only exchange: replay sessions never reach a real venue, so order calls
// resolve immediately with an error result.
type Client struct {
	info    marginsdk.PairInfo
	candles []marginsdk.Candle

	progress bool

	onTicker       marginsdk.TickerHandler
	onFunds        marginsdk.FundsHandler
	onPlaceResult  marginsdk.PlaceResultHandler
	onCancelResult marginsdk.CancelResultHandler
}

// Option represents a replay client functional option.
type Option func(c *Client)

// WithProgressBar renders replay progress on the terminal.
func WithProgressBar() Option {
	return func(c *Client) {
		c.progress = true
	}
}

// NewClient loads the candle file and builds a replay exchange for the given
// pair. The file carries one candle per row: unix time, open, high, low,
// close, volume.
func NewClient(info marginsdk.PairInfo, file string, opts ...Option) (*Client, error) {

	candles, err := readCandleFile(info.Pair, file)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("candle file %s is empty", file)
	}

	client := &Client{
		info:    info,
		candles: candles,
	}

	for _, o := range opts {
		o(client)
	}

	return client, nil
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

	candles := c.candles
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	out := make([]marginsdk.Candle, len(candles))
	copy(out, candles)

	return out, nil
}

func (c *Client) PlaceLimitOrder(placeOrderID int64, pair string, side marginsdk.Side, amount, price float64) {

	if c.onPlaceResult != nil {
		c.onPlaceResult(&marginsdk.PlaceResult{
			PlaceOrderID: placeOrderID,
			Error:        "replay sessions do not accept orders",
			Time:         time.Now(),
		})
	}
}

func (c *Client) CancelOrder(pair string, orderID int64) {

	if c.onCancelResult != nil {
		c.onCancelResult(&marginsdk.CancelResult{
			OrderID: orderID,
			Error:   "replay sessions do not accept orders",
			Time:    time.Now(),
		})
	}
}

func (c *Client) SubscribeTickers(pair string, callback marginsdk.TickerHandler) {
	c.onTicker = callback

	go c.replay()
}

func (c *Client) SubscribeFunds(callback marginsdk.FundsHandler) {
	c.onFunds = callback

	callback(map[string]marginsdk.FundsEntry{})
}

func (c *Client) SubscribePlaceResults(callback marginsdk.PlaceResultHandler) {
	c.onPlaceResult = callback
}

func (c *Client) SubscribeCancelResults(callback marginsdk.CancelResultHandler) {
	c.onCancelResult = callback
}

func (c *Client) replay() {

	var bar *progressbar.ProgressBar
	if c.progress {
		bar = progressbar.Default(int64(len(c.candles)), "replaying "+c.info.Pair)
	}

	for _, candle := range c.candles {

		// each bar unfolds into its four reference prices, in the most
		// common intra-bar ordering
		for _, price := range []float64{candle.Open, candle.High, candle.Low, candle.Close} {
			c.onTicker(&marginsdk.Ticker{
				Pair: c.info.Pair,
				Bid:  price,
				Ask:  price,
				Last: price,
				Time: candle.Time,
			})
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				log.Warnf("progress bar error: %s", err)
			}
		}
	}
}

/*******************************************************************************************************************
*
*
*									  Unused Methods (No Depth or Trade Data in Candle Files)
*
*
*******************************************************************************************************************/

func (c *Client) SubscribeOrderBooks(pair string, callback marginsdk.OrderBookHandler) {

}

func (c *Client) SubscribePublicTrades(pair string, callback marginsdk.PublicTradesHandler) {

}

func (c *Client) SubscribeOrderUpdates(callback marginsdk.OrderUpdateHandler) {

}

func readCandleFile(pair, file string) ([]marginsdk.Candle, error) {

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening candle file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 6

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading candle file %s: %w", file, err)
	}

	candles := make([]marginsdk.Candle, 0, len(rows))
	for i, row := range rows {

		// tolerate a header row
		if i == 0 {
			if _, err := strconv.ParseInt(row[0], 10, 64); err != nil {
				continue
			}
		}

		candle, err := parseCandleRow(pair, row)
		if err != nil {
			return nil, fmt.Errorf("candle file %s row %d: %w", file, i+1, err)
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

func parseCandleRow(pair string, row []string) (marginsdk.Candle, error) {

	unix, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return marginsdk.Candle{}, fmt.Errorf("invalid time %q", row[0])
	}

	values := make([]float64, 5)
	for i := 0; i < 5; i++ {
		values[i], err = strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return marginsdk.Candle{}, fmt.Errorf("invalid value %q", row[i+1])
		}
	}

	return marginsdk.Candle{
		Pair:   pair,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
		Time:   time.Unix(unix, 0),
	}, nil
}
