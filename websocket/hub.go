// file: websocket/hub.go
package websocket

import (
	"fmt"
	"time"

	"gamepad-websocket/logger"
	"gamepad-websocket/models"
)

// StatsWriter receives a statistics snapshot whenever the hub changes.
type StatsWriter interface {
	WriteStatistics(models.Statistics)
}

type nopStats struct{}

func (nopStats) WriteStatistics(models.Statistics) {}

type client struct {
	id     ConnID
	sender Sender
	stats  models.SocketStatistics
}

// Hub tracks pending and active connections. It is owned by the network
// loop: none of its methods may be called from anywhere else.
//
// A connection is pending until the device identifier is known. Once it is,
// pending connections are promoted in arrival order, each receiving the
// identity message exactly once before any command.
type Hub struct {
	slot      *Slot
	transform string
	stats     StatsWriter
	now       func() time.Time

	pending []*client
	active  []*client
}

// NewHub returns an empty hub reading commands from slot.
func NewHub(slot *Slot, transform string, stats StatsWriter) (*Hub, error) {
	if slot == nil {
		return nil, fmt.Errorf("%w: hub needs a command slot", models.ErrConfiguration)
	}
	if err := ValidateTransform(transform); err != nil {
		return nil, err
	}
	if stats == nil {
		stats = nopStats{}
	}
	return &Hub{slot: slot, transform: transform, stats: stats, now: time.Now}, nil
}

// Connect registers a new client.
func (h *Hub) Connect(id ConnID, sender Sender) {
	c := &client{id: id, sender: sender}
	snap := h.slot.Snapshot()
	if snap.HasDeviceID {
		// earlier arrivals go first
		h.promotePending(snap.DeviceIdentifier)
		h.activate(c, snap.DeviceIdentifier)
	} else {
		h.pending = append(h.pending, c)
		logger.Info.Printf("[Hub.Connect] conn=%d pending, device identifier not known yet", id)
	}
	h.outputStatistics()
}

// Data records an inbound frame.
func (h *Hub) Data(id ConnID) error {
	c := h.find(id)
	if c == nil {
		return fmt.Errorf("%w: data from unknown connection %d", models.ErrProtocol, id)
	}
	c.stats.Received++
	c.stats.LastReceived = h.now()
	h.outputStatistics()
	return nil
}

// Disconnect forgets a client.
func (h *Hub) Disconnect(id ConnID) error {
	if i := indexOf(h.active, id); i >= 0 {
		h.active = append(h.active[:i], h.active[i+1:]...)
		logger.Info.Printf("[Hub.Disconnect] conn=%d active=%d", id, len(h.active))
		h.outputStatistics()
		return nil
	}
	if i := indexOf(h.pending, id); i >= 0 {
		h.pending = append(h.pending[:i], h.pending[i+1:]...)
		logger.Info.Printf("[Hub.Disconnect] conn=%d left while pending", id)
		h.outputStatistics()
		return nil
	}
	return fmt.Errorf("%w: disconnect of unknown connection %d", models.ErrProtocol, id)
}

// PublishData broadcasts the latest command to every active client,
// promoting pending ones first when the identifier has become known.
func (h *Hub) PublishData() {
	snap := h.slot.Snapshot()
	if snap.HasDeviceID && len(h.pending) > 0 {
		h.promotePending(snap.DeviceIdentifier)
		h.outputStatistics()
	}
	if !snap.HasCommand {
		logger.Warn.Println("[Hub.PublishData] no command to publish")
		return
	}
	if len(h.active) == 0 {
		return
	}

	msg, err := encodeCommand(snap.Command)
	if err != nil {
		logger.Error.Printf("[Hub.PublishData] encoding command: %v", err)
		return
	}
	now := h.now()
	for _, c := range h.active {
		h.send(c, msg, now)
	}
	h.outputStatistics()
}

// Statistics returns the current snapshot.
func (h *Hub) Statistics() models.Statistics {
	sockets := make([]models.SocketStatistics, len(h.active))
	for i, c := range h.active {
		sockets[i] = c.stats
	}
	return models.Statistics{Time: h.now(), Sockets: sockets}
}

// Counts returns the number of pending and active clients.
func (h *Hub) Counts() (pending, active int) {
	return len(h.pending), len(h.active)
}

func (h *Hub) promotePending(deviceID string) {
	queued := h.pending
	h.pending = nil
	for _, c := range queued {
		h.activate(c, deviceID)
	}
}

func (h *Hub) activate(c *client, deviceID string) {
	msg, err := encodeIdentity(TransformDeviceID(deviceID, h.transform))
	if err != nil {
		logger.Error.Printf("[Hub.activate] encoding identity: %v", err)
		return
	}
	h.send(c, msg, h.now())
	h.active = append(h.active, c)
	logger.Info.Printf("[Hub.activate] conn=%d active=%d", c.id, len(h.active))
}

func (h *Hub) send(c *client, msg []byte, now time.Time) {
	if !c.sender.Send(msg) {
		return
	}
	c.stats.Sent++
	c.stats.LastSent = now
}

func (h *Hub) find(id ConnID) *client {
	if i := indexOf(h.active, id); i >= 0 {
		return h.active[i]
	}
	if i := indexOf(h.pending, id); i >= 0 {
		return h.pending[i]
	}
	return nil
}

func (h *Hub) outputStatistics() {
	h.stats.WriteStatistics(h.Statistics())
}

func indexOf(clients []*client, id ConnID) int {
	for i, c := range clients {
		if c.id == id {
			return i
		}
	}
	return -1
}
