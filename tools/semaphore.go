package tools

import "sync"

/*
OrderSemaphore is used to prevent multiple order submissions while a previous
place or cancel request is still waiting for its result callback.
*/
type OrderSemaphore struct {
	mutex *sync.RWMutex
	count int
}

// NewOrderSemaphore is the OrderSemaphore constructor.
func NewOrderSemaphore() *OrderSemaphore {
	return &OrderSemaphore{mutex: &sync.RWMutex{}}
}

// OrderSent will make Waiting return true until a result is Notified.
func (s *OrderSemaphore) OrderSent() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.count++
}

// Notify that a place/cancel result callback has been received.
func (s *OrderSemaphore) Notify() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.count > 0 {
		s.count--
	}
}

// Waiting returns true if a request is still in flight, false otherwise.
func (s *OrderSemaphore) Waiting() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.count != 0
}
