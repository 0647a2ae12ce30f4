// file: config/pipeline.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"gamepad-websocket/command"
	"gamepad-websocket/models"
)

// Publishing modes.
const (
	ModeRaw       = "raw"
	ModeGPIO      = "gpio"
	ModeAggregate = "aggregate"
)

// Source kinds.
const (
	KindJoystick = "joystick"
	KindGPIO     = "gpio"
)

// Pipeline describes the input devices and how they become one command.
type Pipeline struct {
	Mode             string           `yaml:"mode"`
	DeviceIdentifier string           `yaml:"device_identifier"`
	Sources          []SourceConfig   `yaml:"sources"`
	AxisMap          []models.Mapping `yaml:"axis_map"`
	ButtonMap        []models.Mapping `yaml:"button_map"`
}

// SourceConfig is one physical input device.
type SourceConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Device   string `yaml:"device"`
	Optional bool   `yaml:"optional"`
	// Keys are evdev key codes, one button each, for gpio sources.
	Keys []int `yaml:"keys"`
}

// JoystickIndex parses "js3" or "3".
func (s SourceConfig) JoystickIndex() (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s.Device, "js"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: source %q: joystick device %q is not jsN",
			models.ErrConfiguration, s.Name, s.Device)
	}
	return n, nil
}

// LoadPipeline reads and validates a pipeline file.
func LoadPipeline(path string) (*Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pipeline: %v", models.ErrConfiguration, err)
	}
	return ParsePipeline(raw)
}

// ParsePipeline decodes and validates YAML.
func ParsePipeline(raw []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: parsing pipeline: %v", models.ErrConfiguration, err)
	}
	p.applyDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Pipeline) applyDefaults() {
	if p.Mode == "" {
		p.Mode = ModeRaw
	}
	for i := range p.Sources {
		if p.Sources[i].Kind == "" {
			p.Sources[i].Kind = KindJoystick
		}
	}
}

func (p *Pipeline) validate() error {
	seen := make(map[string]bool)
	for _, s := range p.Sources {
		if s.Name == "" {
			return fmt.Errorf("%w: source without a name", models.ErrConfiguration)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate source %q", models.ErrConfiguration, s.Name)
		}
		seen[s.Name] = true
		switch s.Kind {
		case KindJoystick:
			if _, err := s.JoystickIndex(); err != nil {
				return err
			}
		case KindGPIO:
			if s.Device == "" || len(s.Keys) == 0 {
				return fmt.Errorf("%w: gpio source %q needs a device and keys", models.ErrConfiguration, s.Name)
			}
		default:
			return fmt.Errorf("%w: source %q has unknown kind %q", models.ErrConfiguration, s.Name, s.Kind)
		}
	}

	switch p.Mode {
	case ModeRaw:
		if len(p.Sources) != 1 || p.Sources[0].Kind != KindJoystick {
			return fmt.Errorf("%w: raw mode needs exactly one joystick source", models.ErrConfiguration)
		}
	case ModeGPIO:
		if len(p.Sources) != 1 || p.Sources[0].Kind != KindGPIO {
			return fmt.Errorf("%w: gpio mode needs exactly one gpio source", models.ErrConfiguration)
		}
		if p.DeviceIdentifier == "" {
			return fmt.Errorf("%w: gpio mode needs a device_identifier", models.ErrConfiguration)
		}
	case ModeAggregate:
		if len(p.Sources) == 0 {
			return fmt.Errorf("%w: aggregate mode needs at least one source", models.ErrConfiguration)
		}
		if p.DeviceIdentifier == "" {
			return fmt.Errorf("%w: aggregate mode needs a device_identifier", models.ErrConfiguration)
		}
		cfg := p.AggregatorConfig()
		if _, err := command.ValidateMappings("axis", cfg.Sources, cfg.AxisMap); err != nil {
			return err
		}
		if _, err := command.ValidateMappings("button", cfg.Sources, cfg.ButtonMap); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", models.ErrConfiguration, p.Mode)
	}
	return nil
}

// AggregatorConfig converts the pipeline into aggregator tables.
func (p *Pipeline) AggregatorConfig() command.AggregatorConfig {
	sources := make([]command.Source, len(p.Sources))
	for i, s := range p.Sources {
		sources[i] = command.Source{Name: s.Name, Optional: s.Optional}
	}
	return command.AggregatorConfig{
		DeviceIdentifier: p.DeviceIdentifier,
		Sources:          sources,
		AxisMap:          p.AxisMap,
		ButtonMap:        p.ButtonMap,
	}
}
