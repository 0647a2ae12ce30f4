// Package port provides latest-value inputs shared between a producer
// goroutine (a device poller) and the control loop.
// file: port/port.go
package port

import (
	"sync"

	"gamepad-websocket/models"
)

// Port keeps the most recent sample written to it. Read reports whether the
// sample is new since the previous Read.
type Port[T any] struct {
	mu      sync.Mutex
	value   T
	written bool
	fresh   bool
}

// New returns an empty port.
func New[T any]() *Port[T] {
	return &Port[T]{}
}

// Write replaces the stored sample.
func (p *Port[T]) Write(v T) {
	p.mu.Lock()
	p.value = v
	p.written = true
	p.fresh = true
	p.mu.Unlock()
}

// Read returns the stored sample and its freshness. The zero value is
// returned together with NoData when nothing was ever written.
func (p *Port[T]) Read() (T, models.Freshness) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.written {
		var zero T
		return zero, models.NoData
	}
	if p.fresh {
		p.fresh = false
		return p.value, models.NewData
	}
	return p.value, models.OldData
}

// Clear forgets the stored sample.
func (p *Port[T]) Clear() {
	p.mu.Lock()
	var zero T
	p.value = zero
	p.written = false
	p.fresh = false
	p.mu.Unlock()
}
