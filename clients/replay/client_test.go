package replay

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmargin/marginsdk"
)

func testInfo() marginsdk.PairInfo {
	return marginsdk.PairInfo{
		Pair:          "BTC/USD",
		BaseCurrency:  "BTC",
		QuoteCurrency: "USD",
	}
}

func writeCandleFile(t *testing.T, content string) string {
	t.Helper()

	file := path.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	return file
}

const sampleCandles = `time,open,high,low,close,volume
1682899200,100,110,95,105,12.5
1682899260,105,107,101,103,8.1
1682899320,103,115,103,114,20.0
`

func TestLoadCandleFile(t *testing.T) {

	client, err := NewClient(testInfo(), writeCandleFile(t, sampleCandles))
	require.NoError(t, err)

	candles, err := client.GetCandles("BTC/USD", time.Minute, 0)
	require.NoError(t, err)
	require.Len(t, candles, 3)

	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 110.0, candles[0].High)
	assert.Equal(t, 95.0, candles[0].Low)
	assert.Equal(t, 105.0, candles[0].Close)
	assert.Equal(t, 12.5, candles[0].Volume)
	assert.Equal(t, time.Unix(1682899200, 0), candles[0].Time)
	assert.Equal(t, "BTC/USD", candles[0].Pair)

	limited, err := client.GetCandles("BTC/USD", time.Minute, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, 103.0, limited[0].Open)
}

func TestLoadCandleFileWithoutHeader(t *testing.T) {

	client, err := NewClient(testInfo(), writeCandleFile(t, "1682899200,100,110,95,105,12.5\n"))
	require.NoError(t, err)

	candles, err := client.GetCandles("BTC/USD", time.Minute, 0)
	require.NoError(t, err)
	assert.Len(t, candles, 1)
}

func TestLoadCandleFileErrors(t *testing.T) {

	_, err := NewClient(testInfo(), path.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = NewClient(testInfo(), writeCandleFile(t, "time,open,high,low,close,volume\n"))
	assert.Error(t, err)

	_, err = NewClient(testInfo(), writeCandleFile(t, "1682899200,100,bad,95,105,12.5\n"))
	assert.Error(t, err)

	_, err = NewClient(testInfo(), writeCandleFile(t, "1682899200,100,110,95\n"))
	assert.Error(t, err)
}

func TestReplayEmitsTickers(t *testing.T) {

	client, err := NewClient(testInfo(), writeCandleFile(t, sampleCandles))
	require.NoError(t, err)

	tickers := make(chan *marginsdk.Ticker, 100)
	client.SubscribeTickers("BTC/USD", func(ticker *marginsdk.Ticker) {
		tickers <- ticker
	})

	// each candle unfolds into open, high, low and close
	collected := make([]*marginsdk.Ticker, 0, 12)
	for len(collected) < 12 {
		select {
		case ticker := <-tickers:
			collected = append(collected, ticker)
		case <-time.After(2 * time.Second):
			t.Fatal("replay did not deliver all tickers")
		}
	}

	assert.Equal(t, 100.0, collected[0].Last)
	assert.Equal(t, 110.0, collected[1].Last)
	assert.Equal(t, 95.0, collected[2].Last)
	assert.Equal(t, 105.0, collected[3].Last)
	assert.Equal(t, 105.0, collected[4].Last)
	assert.Equal(t, time.Unix(1682899200, 0), collected[0].Time)
}

func TestOrdersAreRejected(t *testing.T) {

	client, err := NewClient(testInfo(), writeCandleFile(t, sampleCandles))
	require.NoError(t, err)

	var placeResult *marginsdk.PlaceResult
	client.SubscribePlaceResults(func(r *marginsdk.PlaceResult) { placeResult = r })

	var cancelResult *marginsdk.CancelResult
	client.SubscribeCancelResults(func(r *marginsdk.CancelResult) { cancelResult = r })

	client.PlaceLimitOrder(5, "BTC/USD", marginsdk.Buy, 1, 100)
	require.NotNil(t, placeResult)
	assert.Equal(t, int64(5), placeResult.PlaceOrderID)
	assert.NotEmpty(t, placeResult.Error)

	client.CancelOrder("BTC/USD", 9)
	require.NotNil(t, cancelResult)
	assert.Equal(t, int64(9), cancelResult.OrderID)
	assert.NotEmpty(t, cancelResult.Error)
}
