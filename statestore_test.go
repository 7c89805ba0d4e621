package marginsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStoreRoundTrip(t *testing.T) {

	dir := t.TempDir()

	store, err := NewStateStore(&dir)
	require.NoError(t, err)

	state := map[string]string{"counter": "42", "mode": "active"}
	require.NoError(t, store.Save("BTC/USD", state))
	require.NoError(t, store.Close())

	// a fresh handle sees what the previous one persisted
	store, err = NewStateStore(&dir)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load("BTC/USD")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestStateStoreMissingPair(t *testing.T) {

	store, err := NewStateStore(nil)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load("ETH/USD")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStateStoreNilStateSavesEmpty(t *testing.T) {

	store, err := NewStateStore(nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("BTC/USD", nil))

	loaded, err := store.Load("BTC/USD")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestStateStoreDelete(t *testing.T) {

	store, err := NewStateStore(nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("BTC/USD", map[string]string{"k": "v"}))
	require.NoError(t, store.Delete("BTC/USD"))

	loaded, err := store.Load("BTC/USD")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// deleting a pair that was never saved is not an error
	require.NoError(t, store.Delete("ETH/USD"))
}

func TestStateStoreIsolatesPairs(t *testing.T) {

	store, err := NewStateStore(nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("BTC/USD", map[string]string{"k": "btc"}))
	require.NoError(t, store.Save("ETH/USD", map[string]string{"k": "eth"}))

	loaded, err := store.Load("BTC/USD")
	require.NoError(t, err)
	assert.Equal(t, "btc", loaded["k"])
}
