// file: websocket/slot_test.go
package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gamepad-websocket/models"
)

func TestSlot_StoreSnapshotClear(t *testing.T) {
	s := NewSlot()
	snap := s.Snapshot()
	assert.False(t, snap.HasCommand)
	assert.False(t, snap.HasDeviceID)

	cmd := models.Command{Time: time.Now(), Axes: []float64{0.5}, Buttons: []uint8{1}, DeviceIdentifier: "js0"}
	s.Store(cmd, "js0")

	// later changes to the caller's slices must not leak into the slot
	cmd.Axes[0] = -1

	got, ok := s.Command()
	assert.True(t, ok)
	assert.Equal(t, []float64{0.5}, got.Axes)
	id, ok := s.DeviceIdentifier()
	assert.True(t, ok)
	assert.Equal(t, "js0", id)

	s.Clear()
	_, ok = s.Command()
	assert.False(t, ok)
	_, ok = s.DeviceIdentifier()
	assert.False(t, ok)
}

func TestSlot_ConcurrentAccess(t *testing.T) {
	s := NewSlot()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.Store(models.Command{Axes: []float64{float64(i), float64(i)}}, "js0")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := s.Snapshot()
			if snap.HasCommand {
				// both axes are written together, a torn read would differ
				assert.Equal(t, snap.Command.Axes[0], snap.Command.Axes[1])
			}
		}
	}()
	wg.Wait()
}
