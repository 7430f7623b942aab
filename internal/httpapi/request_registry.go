package httpapi

import (
	"sync"
	"sync/atomic"
)

// RequestRegistry tracks in-flight relay requests and supports graceful
// draining. When draining is enabled, new requests are rejected while
// in-flight requests finish naturally.
//
// The mu mutex makes the draining check and wg.Add atomic in Add(), preventing
// a TOCTOU race where StartDraining+Wait could be called between the draining
// check and wg.Add.
type RequestRegistry struct {
	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
	count    atomic.Int64
}

// NewRequestRegistry creates a new RequestRegistry.
func NewRequestRegistry() *RequestRegistry {
	return &RequestRegistry{}
}

// Add registers a new in-flight request. Returns false if the registry is
// draining, meaning no new requests should be accepted. The draining check and
// WaitGroup increment are performed atomically under a mutex.
func (rr *RequestRegistry) Add() bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if rr.draining {
		return false
	}
	rr.wg.Add(1)
	rr.count.Add(1)
	return true
}

// Done marks a request as completed. Must be called exactly once per successful Add.
func (rr *RequestRegistry) Done() {
	rr.count.Add(-1)
	rr.wg.Done()
}

// StartDraining sets the draining flag so that future Add calls return false.
// This is safe to call concurrently with Add — the mutex ensures no Add can
// slip through after StartDraining returns.
func (rr *RequestRegistry) StartDraining() {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.draining = true
}

// IsDraining reports whether the registry is in draining mode.
func (rr *RequestRegistry) IsDraining() bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.draining
}

// ActiveCount returns the number of currently in-flight requests.
func (rr *RequestRegistry) ActiveCount() int64 {
	return rr.count.Load()
}

// Wait blocks until all in-flight requests have completed (all Done calls matched Add calls).
func (rr *RequestRegistry) Wait() {
	rr.wg.Wait()
}
