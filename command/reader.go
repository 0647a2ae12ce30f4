// file: command/reader.go
package command

import (
	"fmt"
	"time"

	"gamepad-websocket/models"
	"gamepad-websocket/port"
)

// ------------------- raw reader -------------------

// RawReader forwards the samples of a single device. The device identifier
// is carried by the samples themselves.
type RawReader struct {
	in   *port.Port[Reading]
	size sizeGuard
	now  func() time.Time
}

// NewRawReader reads from in.
func NewRawReader(name string, in *port.Port[Reading]) (*RawReader, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: raw reader %q needs an input port", models.ErrConfiguration, name)
	}
	return &RawReader{in: in, size: sizeGuard{source: name}, now: time.Now}, nil
}

// Read returns the latest sample as a command.
func (r *RawReader) Read() (models.Command, models.Freshness, error) {
	reading, status := r.in.Read()
	if status == models.NoData {
		return models.Command{}, status, nil
	}
	if status == models.NewData {
		if err := r.size.check(reading); err != nil {
			return models.Command{}, models.NoData, err
		}
		r.size.establish(reading)
	}
	cmd := models.Command{
		Time:             r.now(),
		Axes:             append([]float64(nil), reading.Axes...),
		Buttons:          buttonsFromStates(reading.Buttons),
		DeviceIdentifier: reading.DeviceIdentifier,
	}
	return cmd, status, nil
}

// Reset forgets the established sizes.
func (r *RawReader) Reset() { r.size.reset() }

// ------------------- gpio reader -------------------

// GPIOReader converts GPIO states into a buttons-only command. The device
// identifier is fixed by configuration.
type GPIOReader struct {
	in               *port.Port[Reading]
	deviceIdentifier string
	size             sizeGuard
	now              func() time.Time
}

// NewGPIOReader reads GPIO states from in and tags them with deviceIdentifier.
func NewGPIOReader(deviceIdentifier string, in *port.Port[Reading]) (*GPIOReader, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: gpio reader needs an input port", models.ErrConfiguration)
	}
	if deviceIdentifier == "" {
		return nil, fmt.Errorf("%w: gpio mode needs a device_identifier", models.ErrConfiguration)
	}
	return &GPIOReader{
		in:               in,
		deviceIdentifier: deviceIdentifier,
		size:             sizeGuard{source: "gpio"},
		now:              time.Now,
	}, nil
}

// Read returns the latest GPIO states as buttons.
func (g *GPIOReader) Read() (models.Command, models.Freshness, error) {
	reading, status := g.in.Read()
	if status == models.NoData {
		return models.Command{}, status, nil
	}
	// GPIO states only carry buttons
	reading.Axes = nil
	if status == models.NewData {
		if err := g.size.check(reading); err != nil {
			return models.Command{}, models.NoData, err
		}
		g.size.establish(reading)
	}
	cmd := models.Command{
		Time:             g.now(),
		Buttons:          buttonsFromStates(reading.Buttons),
		DeviceIdentifier: g.deviceIdentifier,
	}
	return cmd, status, nil
}

// Reset forgets the established button count.
func (g *GPIOReader) Reset() { g.size.reset() }

// ------------------- aggregate reader -------------------

// AggregateReader feeds an Aggregator from one port per source.
type AggregateReader struct {
	agg    *Aggregator
	inputs map[string]*port.Port[Reading]
}

// NewAggregateReader binds every aggregator source to its port.
func NewAggregateReader(agg *Aggregator, inputs map[string]*port.Port[Reading]) (*AggregateReader, error) {
	if agg == nil {
		return nil, fmt.Errorf("%w: aggregate reader needs an aggregator", models.ErrConfiguration)
	}
	for _, s := range agg.cfg.Sources {
		if inputs[s.Name] == nil {
			return nil, fmt.Errorf("%w: no input bound to source %q", models.ErrConfiguration, s.Name)
		}
	}
	return &AggregateReader{agg: agg, inputs: inputs}, nil
}

// Read gathers one input per source and aggregates them.
func (r *AggregateReader) Read() (models.Command, models.Freshness, error) {
	inputs := make(map[string]Input, len(r.inputs))
	for name, p := range r.inputs {
		reading, status := p.Read()
		inputs[name] = Input{Reading: reading, Status: status}
	}
	return r.agg.Aggregate(inputs)
}

// Reset clears the aggregator state.
func (r *AggregateReader) Reset() { r.agg.Reset() }

func buttonsFromStates(states []bool) []uint8 {
	if states == nil {
		return nil
	}
	out := make([]uint8, len(states))
	for i, s := range states {
		out[i] = boolToButton(s)
	}
	return out
}
