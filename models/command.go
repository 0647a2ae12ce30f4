// Package models defines data structures used across the application.
// File: models/command.go
package models

import "time"

// ----------------------- command model -----------------------

// Command is the canonical gamepad-like command broadcast to clients.
type Command struct {
	Time             time.Time `json:"time"`
	Axes             []float64 `json:"axes"`
	Buttons          []uint8   `json:"buttons"`
	DeviceIdentifier string    `json:"deviceIdentifier"`
}

// Clone returns a deep copy so that the slices can cross goroutines safely.
func (c Command) Clone() Command {
	out := c
	if c.Axes != nil {
		out.Axes = append([]float64(nil), c.Axes...)
	}
	if c.Buttons != nil {
		out.Buttons = append([]uint8(nil), c.Buttons...)
	}
	return out
}

// Freshness reports whether an input carries a sample that was not read before.
type Freshness int

const (
	// NoData means nothing was ever written to the input.
	NoData Freshness = iota
	// OldData means the last sample was already read.
	OldData
	// NewData means a sample arrived since the previous read.
	NewData
)

func (f Freshness) String() string {
	switch f {
	case NoData:
		return "NoData"
	case OldData:
		return "OldData"
	case NewData:
		return "NewData"
	}
	return "Unknown"
}

// ---------------------- statistics model ----------------------

// SocketStatistics holds the counters of one client connection.
type SocketStatistics struct {
	LastSent     time.Time `json:"lastSent"`     // time of the last sent message
	LastReceived time.Time `json:"lastReceived"` // time of the last received message
	Received     uint64    `json:"received"`
	Sent         uint64    `json:"sent"`
}

// Statistics is a snapshot of all active connections.
type Statistics struct {
	Time    time.Time          `json:"time"`
	Sockets []SocketStatistics `json:"sockets"`
}

// ------------------------ mapping model -----------------------

// Mapping places the value at Index of the named source into the
// canonical command at every index listed in MappedTo.
type Mapping struct {
	Source   string `json:"source" yaml:"source"`
	Index    int    `json:"index" yaml:"index"`
	MappedTo []int  `json:"mappedTo" yaml:"mapped_to"`
}
