// file: input/joystick.go
package input

import (
	"context"
	"fmt"
	"time"

	"github.com/0xcafed00d/joystick"

	"gamepad-websocket/command"
	"gamepad-websocket/logger"
	"gamepad-websocket/port"
)

const (
	axisMax             = 32767
	defaultPollInterval = 10 * time.Millisecond
)

// Joystick polls a Linux joystick (/dev/input/jsN) and writes every state
// change to Out.
type Joystick struct {
	Index        int
	PollInterval time.Duration
	Out          *port.Port[command.Reading]

	open func(int) (joystick.Joystick, error)
}

// NewJoystick reads joystick index into out.
func NewJoystick(index int, out *port.Port[command.Reading]) (*Joystick, error) {
	if out == nil {
		return nil, fmt.Errorf("joystick %d: no output port", index)
	}
	return &Joystick{Index: index, PollInterval: defaultPollInterval, Out: out, open: joystick.Open}, nil
}

// Path is the device node of the joystick.
func (j *Joystick) Path() string {
	return devicePath(fmt.Sprintf("js%d", j.Index))
}

// Run polls until ctx is done, re-attaching when the device is unplugged.
func (j *Joystick) Run(ctx context.Context) error {
	return attachLoop(ctx, j.Path(), j.poll)
}

func (j *Joystick) poll(ctx context.Context) error {
	js, err := j.open(j.Index)
	if err != nil {
		return err
	}
	defer js.Close()
	name := js.Name()
	logger.Info.Printf("[Joystick.poll] attached %s name=%q axes=%d buttons=%d",
		j.Path(), name, js.AxisCount(), js.ButtonCount())

	interval := j.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last joystick.State
	first := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		state, err := js.Read()
		if err != nil {
			return err
		}
		if !first && sameState(last, state) {
			continue
		}
		first = false
		last = joystick.State{AxisData: append([]int(nil), state.AxisData...), Buttons: state.Buttons}
		j.Out.Write(command.Reading{
			Axes:             normalizeAxes(state.AxisData),
			Buttons:          buttonsFromMask(state.Buttons, js.ButtonCount()),
			DeviceIdentifier: name,
		})
	}
}

// normalizeAxes maps raw axis values to [-1, 1].
func normalizeAxes(raw []int) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		f := float64(v) / axisMax
		if f < -1 {
			f = -1
		}
		out[i] = f
	}
	return out
}

// buttonsFromMask unpacks the first count bits of mask.
func buttonsFromMask(mask uint32, count int) []bool {
	if count > 32 {
		count = 32
	}
	if count < 0 {
		count = 0
	}
	out := make([]bool, count)
	for i := range out {
		out[i] = mask&(1<<uint(i)) != 0
	}
	return out
}

func sameState(a, b joystick.State) bool {
	if a.Buttons != b.Buttons || len(a.AxisData) != len(b.AxisData) {
		return false
	}
	for i := range a.AxisData {
		if a.AxisData[i] != b.AxisData[i] {
			return false
		}
	}
	return true
}
