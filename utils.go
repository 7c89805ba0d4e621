package marginsdk

import (
	"sync"
)

// sortedOrders keeps order ids in placement order, so the engine can expose
// the strategy's open orders oldest-first.
type sortedOrders struct {
	sync.RWMutex
	orderIndex map[int64]int
	indexOrder []int64
	count      int
}

func newSortedOrders() *sortedOrders {
	return &sortedOrders{
		orderIndex: make(map[int64]int),
		indexOrder: make([]int64, 0),
	}
}

func (so *sortedOrders) Append(orderID int64) {
	so.Lock()
	defer so.Unlock()

	so.orderIndex[orderID] = so.count
	so.indexOrder = append(so.indexOrder, orderID)
	so.count++
}

func (so *sortedOrders) AscendIter(maxIterations int) <-chan int64 {
	c := make(chan int64)

	go func() {

		so.RLock()

		ids := make([]int64, 0, len(so.indexOrder))

		if maxIterations == -1 {
			maxIterations = so.count
		}

		for i := 0; (i < len(so.indexOrder)) && (i < maxIterations); i++ {
			ids = append(ids, so.indexOrder[i])
		}

		so.RUnlock()

		for _, id := range ids {
			c <- id
		}

		close(c)
	}()

	return c
}

func (so *sortedOrders) Contains(orderID int64) bool {
	so.RLock()
	defer so.RUnlock()

	_, exist := so.orderIndex[orderID]

	return exist
}

func (so *sortedOrders) Delete(orderID int64) {
	so.Lock()
	defer so.Unlock()

	itemIndex, exist := so.orderIndex[orderID]
	if !exist {
		return
	}

	delete(so.orderIndex, orderID)
	for k, v := range so.orderIndex {
		if v > itemIndex {
			so.orderIndex[k]--
		}
	}
	so.indexOrder = so.indexOrder[:itemIndex+copy(so.indexOrder[itemIndex:], so.indexOrder[itemIndex+1:])]
	so.count--
}

func (so *sortedOrders) Len() int {
	so.RLock()
	defer so.RUnlock()

	return so.count
}
