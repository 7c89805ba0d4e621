package marginsdk

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()

	file := path.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	return file
}

func TestReadSettings(t *testing.T) {

	file := writeSettingsFile(t, `
pair: BTC/USD
state_dir: /tmp/state
call_timeout: 1s500ms
save_interval: 1m
timeframe: 5m
rules:
  amount_step: 0.001
  price_step: 0.5
  min_amount: 0.01
  max_amount: 50
  min_total: 25
paper:
  start_price: 40000
  seed: 7
funds: {BTC: 1.5, USD: 10000}
`)

	settings, err := ReadSettings(file)
	require.NoError(t, err)

	assert.Equal(t, "BTC/USD", settings.Pair)
	assert.Equal(t, "/tmp/state", settings.StateDir)
	assert.Equal(t, int64(7), settings.Paper.Seed)
	assert.Equal(t, 40000.0, settings.Paper.StartPrice)
	assert.Equal(t, 1.5, settings.Funds["BTC"])

	timeout, err := settings.CallTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, timeout)

	interval, err := settings.SaveIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, interval)

	timeframe, err := settings.TimeframeDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, timeframe)

	info, err := settings.PairInfo()
	require.NoError(t, err)
	assert.Equal(t, "BTC", info.BaseCurrency)
	assert.Equal(t, "USD", info.QuoteCurrency)
	assert.Equal(t, 0.5, info.PriceStep)
	assert.Equal(t, 25.0, info.MinTotal)
}

func TestReadSettingsDefaults(t *testing.T) {

	settings, err := ReadSettings(writeSettingsFile(t, "pair: ETH/USD\n"))
	require.NoError(t, err)

	timeout, err := settings.CallTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, defaultCallTimeout, timeout)

	interval, err := settings.SaveIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, defaultSaveInterval, interval)

	info, err := settings.PairInfo()
	require.NoError(t, err)
	assert.Equal(t, "ETH", info.BaseCurrency)
	assert.Greater(t, info.AmountStep, 0.0)
	assert.Greater(t, info.MaxAmount, 0.0)
}

func TestReadSettingsRejectsMissingPair(t *testing.T) {

	_, err := ReadSettings(writeSettingsFile(t, "state_dir: /tmp\n"))
	assert.Error(t, err)
}

func TestReadSettingsInvalidDuration(t *testing.T) {

	settings, err := ReadSettings(writeSettingsFile(t, "pair: BTC/USD\ncall_timeout: nonsense\n"))
	require.NoError(t, err)

	_, err = settings.CallTimeoutDuration()
	assert.Error(t, err)
}

func TestPairInfoRejectsMalformedPair(t *testing.T) {

	settings := &Settings{Pair: "BTCUSD"}
	_, err := settings.PairInfo()
	assert.Error(t, err)

	settings = &Settings{Pair: "BTC/"}
	_, err = settings.PairInfo()
	assert.Error(t, err)
}

func TestFromSettings(t *testing.T) {

	settings, err := ReadSettings(writeSettingsFile(t, "pair: BTC/USD\ncall_timeout: 3s\n"))
	require.NoError(t, err)

	opts, err := FromSettings(settings)
	require.NoError(t, err)

	params := &sessionParameters{}
	for _, o := range opts {
		o(params)
	}

	assert.Equal(t, "BTC/USD", params.pair)
	assert.Equal(t, 3*time.Second, params.callTimeout)
	assert.Nil(t, params.stateDir)
}
