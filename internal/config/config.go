package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/collision/internal/core/systems/collision"
	"github.com/zeusync/collision/internal/core/world"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level simulation configuration, readable from YAML or JSON.
type Config struct {
	World      world.Config     `json:"world" yaml:"world"`
	Collision  collision.Config `json:"collision" yaml:"collision"`
	Simulation Simulation       `json:"simulation" yaml:"simulation"`
	Log        Log              `json:"log" yaml:"log"`
}

// Simulation controls the fixed-step loop.
type Simulation struct {
	// FrameTime is the step length in seconds.
	FrameTime float64 `json:"frame_time" yaml:"frame_time"`
	Frames    int     `json:"frames" yaml:"frames"`
}

type Log struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns a 60 Hz, ten second simulation of the default world.
func Default() Config {
	return Config{
		World:      world.DefaultConfig(),
		Collision:  collision.DefaultConfig(),
		Simulation: Simulation{FrameTime: 1.0 / 60, Frames: 600},
		Log:        Log{Level: "info"},
	}
}

// Load reads a YAML config. Missing keys keep their defaults.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	if err := decodeYAML(r, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadJSON reads a JSON config. Missing keys keep their defaults.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	if err := decodeJSON(r, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a config file, picking the format by extension.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if isJSON(path) {
		return LoadJSON(f)
	}
	return Load(f)
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	w := c.World
	if !(w.Width > 0) || !(w.Height > 0) {
		add("world size %vx%v", w.Width, w.Height)
	}
	if !(w.CellSize > 0) {
		add("world cell_size %v", w.CellSize)
	}
	if w.NeighborRadius < 0 {
		add("world neighbor_radius %d", w.NeighborRadius)
	}
	switch w.BroadPhase {
	case world.BroadPhaseGrid, world.BroadPhaseSweep:
	default:
		add("world broad_phase %q", w.BroadPhase)
	}

	if c.Collision.VelocityEpsilon < 0 {
		add("collision velocity_epsilon %v", c.Collision.VelocityEpsilon)
	}
	if c.Collision.TimeMargin < 0 || c.Collision.TimeMargin >= 1 {
		add("collision time_margin %v", c.Collision.TimeMargin)
	}

	if !(c.Simulation.FrameTime > 0) {
		add("simulation frame_time %v", c.Simulation.FrameTime)
	}
	if c.Simulation.Frames < 0 {
		add("simulation frames %d", c.Simulation.Frames)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error", "fatal", "silent", "off":
	default:
		add("log level %q", c.Log.Level)
	}

	return errors.Join(errs...)
}

func decodeYAML(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func decodeJSON(r io.Reader, out any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
