package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderSemaphore(t *testing.T) {

	semaphore := NewOrderSemaphore()

	assert.False(t, semaphore.Waiting())

	semaphore.OrderSent()
	assert.True(t, semaphore.Waiting())

	semaphore.OrderSent()
	semaphore.Notify()
	assert.True(t, semaphore.Waiting())

	semaphore.Notify()
	assert.False(t, semaphore.Waiting())

	// stray notifications do not go negative
	semaphore.Notify()
	assert.False(t, semaphore.Waiting())
	semaphore.OrderSent()
	assert.True(t, semaphore.Waiting())
}
