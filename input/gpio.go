// file: input/gpio.go
package input

import (
	"context"
	"fmt"

	evdev "github.com/gvalkov/golang-evdev"

	"gamepad-websocket/command"
	"gamepad-websocket/logger"
	"gamepad-websocket/port"
)

// GPIOKeys reads a gpio-keys evdev device. Each configured key code is one
// button, in configuration order.
type GPIOKeys struct {
	Device string
	Keys   []int
	Out    *port.Port[command.Reading]
}

// NewGPIOKeys reads keys from device into out.
func NewGPIOKeys(device string, keys []int, out *port.Port[command.Reading]) (*GPIOKeys, error) {
	if device == "" || len(keys) == 0 || out == nil {
		return nil, fmt.Errorf("gpio keys: need a device, key codes and an output port")
	}
	return &GPIOKeys{Device: device, Keys: keys, Out: out}, nil
}

// Path is the device node.
func (g *GPIOKeys) Path() string {
	return devicePath(g.Device)
}

// Run reads events until ctx is done, re-attaching when the device vanishes.
func (g *GPIOKeys) Run(ctx context.Context) error {
	return attachLoop(ctx, g.Path(), g.read)
}

func (g *GPIOKeys) read(ctx context.Context) error {
	dev, err := evdev.Open(g.Path())
	if err != nil {
		return err
	}
	defer dev.File.Close()
	logger.Info.Printf("[GPIOKeys.read] attached %s name=%q keys=%v", g.Path(), dev.Name, g.Keys)

	// ReadOne blocks, closing the file is the only way to interrupt it
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			dev.File.Close()
		case <-stop:
		}
	}()

	states := newKeyStates(g.Keys)
	g.Out.Write(command.Reading{Buttons: states.snapshot()})
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			return err
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		keyev := evdev.NewKeyEvent(ev)
		if states.apply(int(keyev.Scancode), keyev.State != evdev.KeyUp) {
			g.Out.Write(command.Reading{Buttons: states.snapshot()})
		}
	}
}

// keyStates tracks the pressed state of the configured keys.
type keyStates struct {
	index   map[int]int
	pressed []bool
}

func newKeyStates(keys []int) *keyStates {
	ks := &keyStates{index: make(map[int]int, len(keys)), pressed: make([]bool, len(keys))}
	for i, k := range keys {
		ks.index[k] = i
	}
	return ks
}

// apply records a key event and reports whether the state changed.
func (ks *keyStates) apply(code int, pressed bool) bool {
	i, ok := ks.index[code]
	if !ok || ks.pressed[i] == pressed {
		return false
	}
	ks.pressed[i] = pressed
	return true
}

func (ks *keyStates) snapshot() []bool {
	return append([]bool(nil), ks.pressed...)
}
