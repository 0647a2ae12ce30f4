// Package metrics contains the sinks for hub statistics snapshots.
// file: metrics/store.go
package metrics

import (
	"sync"

	"gamepad-websocket/models"
)

// Writer receives statistics snapshots. It is called from the network loop
// and must not block.
type Writer interface {
	WriteStatistics(models.Statistics)
}

// Store keeps the latest snapshot for the HTTP controllers.
type Store struct {
	mu     sync.RWMutex
	latest models.Statistics
	has    bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// WriteStatistics replaces the stored snapshot.
func (s *Store) WriteStatistics(stats models.Statistics) {
	sockets := append([]models.SocketStatistics(nil), stats.Sockets...)
	s.mu.Lock()
	s.latest = models.Statistics{Time: stats.Time, Sockets: sockets}
	s.has = true
	s.mu.Unlock()
}

// Latest returns the most recent snapshot, if one was written.
func (s *Store) Latest() (models.Statistics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.has
}

// Fanout forwards every snapshot to each writer in order.
type Fanout []Writer

// WriteStatistics implements Writer.
func (f Fanout) WriteStatistics(stats models.Statistics) {
	for _, w := range f {
		if w != nil {
			w.WriteStatistics(stats)
		}
	}
}

// totals sums the per-socket counters.
func totals(stats models.Statistics) (sent, received uint64) {
	for _, s := range stats.Sockets {
		sent += s.Sent
		received += s.Received
	}
	return sent, received
}
