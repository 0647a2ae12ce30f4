// file: websocket/hub_test.go
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamepad-websocket/models"
)

// sendLog records every message in global order, tagged with the connection.
type sendLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *sendLog) add(id ConnID, msg []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf("%d:%s", id, msg))
}

func (l *sendLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type fakeSender struct {
	id   ConnID
	log  *sendLog
	full bool
	msgs [][]byte
}

func (f *fakeSender) Send(msg []byte) bool {
	if f.full {
		return false
	}
	f.msgs = append(f.msgs, msg)
	f.log.add(f.id, msg)
	return true
}

type statsRecorder struct {
	mu    sync.Mutex
	calls int
	last  models.Statistics
}

func (r *statsRecorder) WriteStatistics(s models.Statistics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = s
}

func (r *statsRecorder) snapshot() (int, models.Statistics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.last
}

var hubTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestHub(t *testing.T, transform string) (*Hub, *Slot, *statsRecorder) {
	slot := NewSlot()
	stats := &statsRecorder{}
	hub, err := NewHub(slot, transform, stats)
	require.NoError(t, err)
	hub.now = func() time.Time { return hubTime }
	return hub, slot, stats
}

func sampleCommand() models.Command {
	return models.Command{
		Time:             time.UnixMilli(1714564800123),
		Axes:             []float64{0.25, -1.0},
		Buttons:          []uint8{1, 0},
		DeviceIdentifier: "js0",
	}
}

const sampleJSON = `{"timestamp":1714564800123,"axes":[0.25,-1],"buttons":[{"pressed":true},{"pressed":false}]}`

func TestNewHub_Validation(t *testing.T) {
	_, err := NewHub(nil, "", nil)
	assert.True(t, errors.Is(err, models.ErrConfiguration))

	_, err = NewHub(NewSlot(), "%1%1", nil)
	assert.True(t, errors.Is(err, models.ErrConfiguration))

	hub, err := NewHub(NewSlot(), "", nil)
	require.NoError(t, err)
	hub.Connect(1, &fakeSender{id: 1, log: &sendLog{}})
}

// Scenario: C1 and C2 connect before the identifier is known, C3 after.
func TestHub_PendingPromotedInArrivalOrder(t *testing.T) {
	hub, slot, _ := newTestHub(t, "robot-%1")
	log := &sendLog{}
	c1 := &fakeSender{id: 1, log: log}
	c2 := &fakeSender{id: 2, log: log}
	c3 := &fakeSender{id: 3, log: log}

	hub.Connect(1, c1)
	hub.Connect(2, c2)
	pending, active := hub.Counts()
	assert.Equal(t, 2, pending)
	assert.Equal(t, 0, active)
	assert.Empty(t, log.all())

	slot.Store(sampleCommand(), "js0")
	hub.PublishData()

	identity := `{"id":"robot-js0"}`
	assert.Equal(t, []string{
		"1:" + identity,
		"2:" + identity,
		"1:" + sampleJSON,
		"2:" + sampleJSON,
	}, log.all())

	hub.Connect(3, c3)
	hub.PublishData()
	entries := log.all()
	assert.Equal(t, []string{
		"3:" + identity,
		"1:" + sampleJSON,
		"2:" + sampleJSON,
		"3:" + sampleJSON,
	}, entries[4:])

	// identity exactly once per connection
	for _, c := range []*fakeSender{c1, c2, c3} {
		assert.Equal(t, identity, string(c.msgs[0]))
		for _, m := range c.msgs[1:] {
			assert.NotEqual(t, identity, string(m))
		}
	}
}

func TestHub_ConnectDrainsPendingFirst(t *testing.T) {
	hub, slot, _ := newTestHub(t, "")
	log := &sendLog{}
	hub.Connect(1, &fakeSender{id: 1, log: log})
	slot.Store(sampleCommand(), "js0")

	// no publish in between: the newcomer must still queue behind conn 1
	hub.Connect(2, &fakeSender{id: 2, log: log})
	assert.Equal(t, []string{`1:{"id":"js0"}`, `2:{"id":"js0"}`}, log.all())
	pending, active := hub.Counts()
	assert.Equal(t, 0, pending)
	assert.Equal(t, 2, active)
}

func TestHub_PendingDisconnect(t *testing.T) {
	hub, slot, stats := newTestHub(t, "")
	log := &sendLog{}
	hub.Connect(1, &fakeSender{id: 1, log: log})
	before, _ := stats.snapshot()

	require.NoError(t, hub.Disconnect(1))
	after, _ := stats.snapshot()
	assert.Equal(t, before+1, after, "leaving while pending must write statistics")
	pending, active := hub.Counts()
	assert.Equal(t, 0, pending)
	assert.Equal(t, 0, active)

	slot.Store(sampleCommand(), "js0")
	hub.PublishData()

	assert.Empty(t, log.all())
	_, last := stats.snapshot()
	assert.Empty(t, last.Sockets)
}

func TestHub_UnknownConnectionIsProtocolWarning(t *testing.T) {
	hub, _, _ := newTestHub(t, "")
	assert.True(t, errors.Is(hub.Disconnect(42), models.ErrProtocol))
	assert.True(t, errors.Is(hub.Data(42), models.ErrProtocol))
}

func TestHub_PublishTwiceSendsIdenticalPayload(t *testing.T) {
	hub, slot, stats := newTestHub(t, "")
	log := &sendLog{}
	c1 := &fakeSender{id: 1, log: log}
	c2 := &fakeSender{id: 2, log: log}
	slot.Store(sampleCommand(), "js0")
	hub.Connect(1, c1)
	hub.Connect(2, c2)

	_, before := stats.snapshot()
	hub.PublishData()
	hub.PublishData()
	_, after := stats.snapshot()

	for i := range after.Sockets {
		assert.Equal(t, before.Sockets[i].Sent+2, after.Sockets[i].Sent)
		assert.Equal(t, hubTime, after.Sockets[i].LastSent)
	}
	assert.Equal(t, c1.msgs[1], c1.msgs[2])
	assert.Equal(t, c2.msgs[1], c2.msgs[2])
}

func TestHub_CommandRoundTrip(t *testing.T) {
	hub, slot, _ := newTestHub(t, "")
	c := &fakeSender{id: 1, log: &sendLog{}}
	slot.Store(sampleCommand(), "js0")
	hub.Connect(1, c)
	hub.PublishData()
	require.Len(t, c.msgs, 2)

	var msg CommandMessage
	require.NoError(t, json.Unmarshal(c.msgs[1], &msg))
	assert.Equal(t, uint64(1714564800123), msg.Timestamp)
	assert.Equal(t, []float64{0.25, -1.0}, msg.Axes)
	assert.Equal(t, []ButtonState{{Pressed: true}, {Pressed: false}}, msg.Buttons)
}

func TestHub_PublishWithoutCommandIsNoop(t *testing.T) {
	hub, _, stats := newTestHub(t, "")
	c := &fakeSender{id: 1, log: &sendLog{}}
	hub.Connect(1, c)
	calls, _ := stats.snapshot()

	hub.PublishData()
	assert.Empty(t, c.msgs)
	after, _ := stats.snapshot()
	assert.Equal(t, calls, after)
}

func TestHub_DataUpdatesReceivedCounters(t *testing.T) {
	hub, slot, stats := newTestHub(t, "")
	slot.Store(sampleCommand(), "js0")
	hub.Connect(1, &fakeSender{id: 1, log: &sendLog{}})

	require.NoError(t, hub.Data(1))
	require.NoError(t, hub.Data(1))

	_, last := stats.snapshot()
	require.Len(t, last.Sockets, 1)
	assert.Equal(t, uint64(2), last.Sockets[0].Received)
	assert.Equal(t, hubTime, last.Sockets[0].LastReceived)
	// the identity frame is the only one sent so far
	assert.Equal(t, uint64(1), last.Sockets[0].Sent)
}

func TestHub_FailedSendIsNotCounted(t *testing.T) {
	hub, slot, _ := newTestHub(t, "")
	slot.Store(sampleCommand(), "js0")
	hub.Connect(1, &fakeSender{id: 1, log: &sendLog{}, full: true})
	hub.PublishData()

	stats := hub.Statistics()
	require.Len(t, stats.Sockets, 1)
	assert.Zero(t, stats.Sockets[0].Sent)
}

func TestHub_ActiveDisconnectUpdatesStatistics(t *testing.T) {
	hub, slot, stats := newTestHub(t, "")
	slot.Store(sampleCommand(), "js0")
	hub.Connect(1, &fakeSender{id: 1, log: &sendLog{}})
	hub.Connect(2, &fakeSender{id: 2, log: &sendLog{}})

	require.NoError(t, hub.Disconnect(1))
	_, last := stats.snapshot()
	assert.Len(t, last.Sockets, 1)
	assert.Equal(t, hubTime, last.Time)
}
