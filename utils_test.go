package marginsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedOrdersKeepPlacementOrder(t *testing.T) {

	orders := newSortedOrders()

	orders.Append(10)
	orders.Append(20)
	orders.Append(30)

	assert.Equal(t, 3, orders.Len())

	ascending := make([]int64, 0, 3)
	for id := range orders.AscendIter(-1) {
		ascending = append(ascending, id)
	}
	assert.Equal(t, []int64{10, 20, 30}, ascending)

	limited := make([]int64, 0, 2)
	for id := range orders.AscendIter(2) {
		limited = append(limited, id)
	}
	assert.Equal(t, []int64{10, 20}, limited)
}

func TestSortedOrdersDelete(t *testing.T) {

	orders := newSortedOrders()

	orders.Append(10)
	orders.Append(20)
	orders.Append(30)

	orders.Delete(20)

	assert.Equal(t, 2, orders.Len())
	assert.False(t, orders.Contains(20))
	assert.True(t, orders.Contains(10))
	assert.True(t, orders.Contains(30))

	remaining := make([]int64, 0, 2)
	for id := range orders.AscendIter(-1) {
		remaining = append(remaining, id)
	}
	assert.Equal(t, []int64{10, 30}, remaining)

	// deleting an unknown id is a no-op
	orders.Delete(99)
	assert.Equal(t, 2, orders.Len())
}
