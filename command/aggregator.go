// file: command/aggregator.go
package command

import (
	"fmt"
	"time"

	"gamepad-websocket/logger"
	"gamepad-websocket/models"
)

// Reading is one raw sample from a physical source. Joysticks fill both
// slices, GPIO sources only Buttons.
type Reading struct {
	Axes             []float64
	Buttons          []bool
	DeviceIdentifier string
}

// Input is a reading together with its freshness for the current cycle.
type Input struct {
	Reading Reading
	Status  models.Freshness
}

// Source describes one configured input of the aggregator.
type Source struct {
	Name string
	// Optional sources do not hold the cycle back when they never
	// delivered; their targets stay at zero.
	Optional bool
}

// AggregatorConfig holds the static tables of an Aggregator.
type AggregatorConfig struct {
	DeviceIdentifier string
	Sources          []Source
	AxisMap          []models.Mapping
	ButtonMap        []models.Mapping
}

// Aggregator merges several raw input streams into one canonical command.
// It is used from the control loop only.
type Aggregator struct {
	cfg         AggregatorConfig
	axisCount   int
	buttonCount int
	// minimum lengths a source reading must have for the mapping to apply
	needAxes    map[string]int
	needButtons map[string]int

	latest map[string]Reading
	sizes  map[string]*sizeGuard
	now    func() time.Time
}

// NewAggregator validates the mapping tables and returns an aggregator.
func NewAggregator(cfg AggregatorConfig) (*Aggregator, error) {
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("%w: aggregator needs at least one source", models.ErrConfiguration)
	}
	seen := make(map[string]bool)
	for _, s := range cfg.Sources {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: aggregator source without a name", models.ErrConfiguration)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate aggregator source %q", models.ErrConfiguration, s.Name)
		}
		seen[s.Name] = true
	}

	axisCount, err := ValidateMappings("axis", cfg.Sources, cfg.AxisMap)
	if err != nil {
		return nil, err
	}
	buttonCount, err := ValidateMappings("button", cfg.Sources, cfg.ButtonMap)
	if err != nil {
		return nil, err
	}

	a := &Aggregator{
		cfg:         cfg,
		axisCount:   axisCount,
		buttonCount: buttonCount,
		needAxes:    requiredLengths(cfg.AxisMap),
		needButtons: requiredLengths(cfg.ButtonMap),
		now:         time.Now,
	}
	a.Reset()
	logger.Info.Printf("[NewAggregator] sources=%d axes=%d buttons=%d", len(cfg.Sources), axisCount, buttonCount)
	return a, nil
}

func requiredLengths(mappings []models.Mapping) map[string]int {
	out := make(map[string]int)
	for _, m := range mappings {
		if m.Index+1 > out[m.Source] {
			out[m.Source] = m.Index + 1
		}
	}
	return out
}

// Reset forgets every sample and every established length. Called on session start.
func (a *Aggregator) Reset() {
	a.latest = make(map[string]Reading)
	a.sizes = make(map[string]*sizeGuard)
	for _, s := range a.cfg.Sources {
		a.sizes[s.Name] = &sizeGuard{source: s.Name}
	}
}

// AxisCount is the canonical number of axes.
func (a *Aggregator) AxisCount() int { return a.axisCount }

// ButtonCount is the canonical number of buttons.
func (a *Aggregator) ButtonCount() int { return a.buttonCount }

// Aggregate consumes this cycle's inputs, keyed by source name. It returns
// NoData when a mandatory source never delivered (the cycle must be
// skipped), NewData when at least one source delivered a new sample and
// OldData otherwise. A size mismatch leaves the aggregator untouched.
func (a *Aggregator) Aggregate(inputs map[string]Input) (models.Command, models.Freshness, error) {
	// validate first so that an error never commits a partial update
	fresh := make(map[string]Reading)
	for _, s := range a.cfg.Sources {
		in, ok := inputs[s.Name]
		if !ok || in.Status != models.NewData {
			continue
		}
		if err := a.checkReading(s.Name, in.Reading); err != nil {
			return models.Command{}, models.NoData, err
		}
		fresh[s.Name] = in.Reading
	}
	for name, r := range fresh {
		a.sizes[name].establish(r)
		a.latest[name] = r
	}

	for _, s := range a.cfg.Sources {
		if _, ok := a.latest[s.Name]; !ok && !s.Optional {
			logger.Debug.Printf("[Aggregator.Aggregate] waiting for source=%s", s.Name)
			return models.Command{}, models.NoData, nil
		}
	}

	status := models.OldData
	if len(fresh) > 0 {
		status = models.NewData
	}
	return a.assemble(), status, nil
}

func (a *Aggregator) checkReading(name string, r Reading) error {
	if err := a.sizes[name].check(r); err != nil {
		return err
	}
	if len(r.Axes) < a.needAxes[name] {
		return fmt.Errorf("%w: source %s delivered %d axes, mapping needs %d",
			models.ErrSizeMismatch, name, len(r.Axes), a.needAxes[name])
	}
	if len(r.Buttons) < a.needButtons[name] {
		return fmt.Errorf("%w: source %s delivered %d buttons, mapping needs %d",
			models.ErrSizeMismatch, name, len(r.Buttons), a.needButtons[name])
	}
	return nil
}

func (a *Aggregator) assemble() models.Command {
	cmd := models.Command{
		Axes:             make([]float64, a.axisCount),
		Buttons:          make([]uint8, a.buttonCount),
		DeviceIdentifier: a.cfg.DeviceIdentifier,
	}
	for _, m := range a.cfg.AxisMap {
		r, ok := a.latest[m.Source]
		if !ok {
			continue
		}
		for _, target := range m.MappedTo {
			cmd.Axes[target] = r.Axes[m.Index]
		}
	}
	for _, m := range a.cfg.ButtonMap {
		r, ok := a.latest[m.Source]
		if !ok {
			continue
		}
		for _, target := range m.MappedTo {
			cmd.Buttons[target] = boolToButton(r.Buttons[m.Index])
		}
	}
	// stamped at assembly time, not at capture time
	cmd.Time = a.now()
	return cmd
}

func boolToButton(pressed bool) uint8 {
	if pressed {
		return 1
	}
	return 0
}

// --------------- size guard ---------------

// sizeGuard remembers the element counts of the first sample of a source.
type sizeGuard struct {
	source  string
	set     bool
	axes    int
	buttons int
}

func (g *sizeGuard) check(r Reading) error {
	if !g.set {
		return nil
	}
	if len(r.Axes) != g.axes {
		return fmt.Errorf("%w: expected %d axes from %s, got %d",
			models.ErrSizeMismatch, g.axes, g.source, len(r.Axes))
	}
	if len(r.Buttons) != g.buttons {
		return fmt.Errorf("%w: expected %d buttons from %s, got %d",
			models.ErrSizeMismatch, g.buttons, g.source, len(r.Buttons))
	}
	return nil
}

func (g *sizeGuard) establish(r Reading) {
	if g.set {
		return
	}
	g.set = true
	g.axes = len(r.Axes)
	g.buttons = len(r.Buttons)
}

func (g *sizeGuard) reset() {
	g.set = false
	g.axes = 0
	g.buttons = 0
}
