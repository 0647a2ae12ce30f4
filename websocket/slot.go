// file: websocket/slot.go
package websocket

import (
	"sync"

	"gamepad-websocket/models"
)

// Slot is the only state shared between the control loop and the network
// loop. Stored slices are never mutated after Store, so Snapshot can hand
// them out without copying.
type Slot struct {
	mu          sync.Mutex
	command     models.Command
	hasCommand  bool
	deviceID    string
	hasDeviceID bool
}

// SlotSnapshot is a consistent view of the slot.
type SlotSnapshot struct {
	Command          models.Command
	HasCommand       bool
	DeviceIdentifier string
	HasDeviceID      bool
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Store replaces the latest command and records its device identifier.
func (s *Slot) Store(cmd models.Command, deviceIdentifier string) {
	cmd = cmd.Clone()
	s.mu.Lock()
	s.command = cmd
	s.hasCommand = true
	s.deviceID = deviceIdentifier
	s.hasDeviceID = true
	s.mu.Unlock()
}

// Snapshot returns the current contents.
func (s *Slot) Snapshot() SlotSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SlotSnapshot{
		Command:          s.command,
		HasCommand:       s.hasCommand,
		DeviceIdentifier: s.deviceID,
		HasDeviceID:      s.hasDeviceID,
	}
}

// Command returns the latest command, if any.
func (s *Slot) Command() (models.Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.command, s.hasCommand
}

// DeviceIdentifier returns the recorded identifier, if any.
func (s *Slot) DeviceIdentifier() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceID, s.hasDeviceID
}

// Clear empties the slot. Called on session stop.
func (s *Slot) Clear() {
	s.mu.Lock()
	s.command = models.Command{}
	s.hasCommand = false
	s.deviceID = ""
	s.hasDeviceID = false
	s.mu.Unlock()
}
