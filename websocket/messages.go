// file: websocket/messages.go
package websocket

import (
	"encoding/json"

	"gamepad-websocket/models"
)

// IdentityMessage is sent once per connection when it becomes active.
type IdentityMessage struct {
	ID string `json:"id"`
}

// ButtonState is the wire representation of one button.
type ButtonState struct {
	Pressed bool `json:"pressed"`
}

// CommandMessage is broadcast on every publish.
type CommandMessage struct {
	Timestamp uint64        `json:"timestamp"` // milliseconds since epoch
	Axes      []float64     `json:"axes"`
	Buttons   []ButtonState `json:"buttons"`
}

// NewCommandMessage converts a canonical command to its wire form.
func NewCommandMessage(cmd models.Command) CommandMessage {
	msg := CommandMessage{
		Axes:    make([]float64, len(cmd.Axes)),
		Buttons: make([]ButtonState, len(cmd.Buttons)),
	}
	if ms := cmd.Time.UnixMilli(); ms > 0 {
		msg.Timestamp = uint64(ms)
	}
	copy(msg.Axes, cmd.Axes)
	for i, b := range cmd.Buttons {
		msg.Buttons[i] = ButtonState{Pressed: b == 1}
	}
	return msg
}

func encodeIdentity(id string) ([]byte, error) {
	return json.Marshal(IdentityMessage{ID: id})
}

func encodeCommand(cmd models.Command) ([]byte, error) {
	return json.Marshal(NewCommandMessage(cmd))
}
