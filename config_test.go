package marginsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategyConfigRequires(t *testing.T) {

	config := StrategyConfig{RequiredDataUpdates: UpdateTicker | UpdateFunds}

	assert.True(t, config.Requires(UpdateTicker))
	assert.True(t, config.Requires(UpdateFunds))
	assert.False(t, config.Requires(UpdateOrderBook))
	assert.False(t, config.Requires(UpdatePublicTradeHistory))

	assert.False(t, StrategyConfig{}.Requires(UpdateTicker))
}

func TestDataUpdateString(t *testing.T) {

	assert.Equal(t, "TICKER", UpdateTicker.String())
	assert.Equal(t, "ORDER_BOOK|FUNDS", (UpdateOrderBook | UpdateFunds).String())
	assert.Equal(t, "", DataUpdate(0).String())
}
