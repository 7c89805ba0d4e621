package tools

import "sync"

// TaskGroup tracks background work spawned by a strategy. The host contract
// requires that nothing the strategy started is still running once Stop or
// Suspend returns; calling Shutdown from those callbacks guarantees it.
type TaskGroup struct {
	mutex  sync.Mutex
	wg     sync.WaitGroup
	quit   chan struct{}
	closed bool
}

// NewTaskGroup is the TaskGroup constructor.
func NewTaskGroup() *TaskGroup {
	return &TaskGroup{quit: make(chan struct{})}
}

// Go runs fn on its own goroutine. The channel passed to fn is closed when the
// group shuts down; fn must return promptly once it is closed. Returns false
// if the group was already shut down and fn was not started.
func (g *TaskGroup) Go(fn func(quit <-chan struct{})) bool {
	g.mutex.Lock()

	if g.closed {
		g.mutex.Unlock()
		return false
	}

	g.wg.Add(1)
	quit := g.quit
	g.mutex.Unlock()

	go func() {
		defer g.wg.Done()
		fn(quit)
	}()

	return true
}

// Shutdown signals every task to finish and blocks until none is left.
func (g *TaskGroup) Shutdown() {
	g.mutex.Lock()

	if !g.closed {
		g.closed = true
		close(g.quit)
	}
	g.mutex.Unlock()

	g.wg.Wait()
}

// Resume re-arms the group after a shutdown, so a strategy can reuse it
// between Suspend and Unsuspend.
func (g *TaskGroup) Resume() {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.closed {
		g.closed = false
		g.quit = make(chan struct{})
	}
}
