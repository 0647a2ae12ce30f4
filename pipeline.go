// file: pipeline.go
package main

import (
	"context"
	"fmt"

	"gamepad-websocket/command"
	"gamepad-websocket/config"
	"gamepad-websocket/input"
	"gamepad-websocket/port"
	"gamepad-websocket/session"
)

// device is a physical input that runs until its context ends.
type device interface {
	Run(ctx context.Context) error
	Path() string
}

// buildPipeline creates the input devices of p and the reader the session
// consumes them through.
func buildPipeline(p *config.Pipeline) (session.Reader, []device, error) {
	ports := make(map[string]*port.Port[command.Reading], len(p.Sources))
	devices := make([]device, 0, len(p.Sources))
	for _, src := range p.Sources {
		out := port.New[command.Reading]()
		dev, err := newDevice(src, out)
		if err != nil {
			return nil, nil, err
		}
		ports[src.Name] = out
		devices = append(devices, dev)
	}

	switch p.Mode {
	case config.ModeRaw:
		src := p.Sources[0]
		r, err := command.NewRawReader(src.Name, ports[src.Name])
		return r, devices, err
	case config.ModeGPIO:
		r, err := command.NewGPIOReader(p.DeviceIdentifier, ports[p.Sources[0].Name])
		return r, devices, err
	case config.ModeAggregate:
		agg, err := command.NewAggregator(p.AggregatorConfig())
		if err != nil {
			return nil, nil, err
		}
		r, err := command.NewAggregateReader(agg, ports)
		return r, devices, err
	}
	return nil, nil, fmt.Errorf("unknown mode %q", p.Mode)
}

func newDevice(src config.SourceConfig, out *port.Port[command.Reading]) (device, error) {
	switch src.Kind {
	case config.KindJoystick:
		idx, err := src.JoystickIndex()
		if err != nil {
			return nil, err
		}
		return input.NewJoystick(idx, out)
	case config.KindGPIO:
		return input.NewGPIOKeys(src.Device, src.Keys, out)
	}
	return nil, fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
}
