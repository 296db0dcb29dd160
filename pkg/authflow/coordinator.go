package authflow

import "sync"

// refreshCoordinator makes sure at most one refresh is in flight per Client.
// Callers that hit 401 during a refresh queue up and all learn its outcome at
// once, in arrival order.
type refreshCoordinator struct {
	mu         sync.Mutex
	refreshing bool
	queue      []chan bool
	// epoch counts settled refreshes; lastOK is the outcome of the latest.
	epoch  uint64
	lastOK bool
}

// current returns the epoch to remember when sending a request.
func (rc *refreshCoordinator) current() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.epoch
}

// begin is called after a 401 for a request sent at epoch seen. The caller
// either leads a refresh (leader is true, wait is nil) or receives an outcome
// on wait. A request sent before the latest settled refresh gets that
// refresh's outcome straight away: it is replayed after a success and keeps
// its 401 after a failure, without refreshing again.
func (rc *refreshCoordinator) begin(seen uint64) (wait <-chan bool, leader bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	ch := make(chan bool, 1)
	switch {
	case rc.refreshing:
		rc.queue = append(rc.queue, ch)
		return ch, false
	case rc.epoch > seen:
		ch <- rc.lastOK
		return ch, false
	}

	rc.refreshing = true
	return nil, true
}

// settle ends the refresh and broadcasts ok to every waiter. The queue is
// swapped out and the flag reset under one lock so no waiter can miss the
// outcome or see a second refresh start first.
func (rc *refreshCoordinator) settle(ok bool) {
	rc.mu.Lock()
	queue := rc.queue
	rc.queue = nil
	rc.refreshing = false
	rc.epoch++
	rc.lastOK = ok
	rc.mu.Unlock()

	for _, ch := range queue {
		ch <- ok
	}
}

func (rc *refreshCoordinator) pending() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.queue)
}

func (rc *refreshCoordinator) inFlight() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.refreshing
}
