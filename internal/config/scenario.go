package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeusync/collision/internal/core/world"
)

// Scenario is a config plus the level and bodies to simulate.
type Scenario struct {
	Config `yaml:",inline"`

	Name   string          `json:"name" yaml:"name"`
	Tiles  Tiles           `json:"tiles" yaml:"tiles"`
	Bodies []world.BodyDef `json:"bodies" yaml:"bodies"`
}

// Tiles is a text tile map; '#' marks a solid tile.
type Tiles struct {
	Size float64  `json:"size" yaml:"size"`
	Rows []string `json:"rows" yaml:"rows"`
}

// TileMap builds the scenario's tile map, or nil when it has none.
func (s *Scenario) TileMap() (*world.TileMap, error) {
	if len(s.Tiles.Rows) == 0 {
		return nil, nil
	}
	return world.ParseTileMap(s.Tiles.Rows, s.Tiles.Size)
}

// Validate checks the embedded config, the tile layer and the body list.
func (s *Scenario) Validate() error {
	errs := []error{s.Config.Validate()}
	if len(s.Tiles.Rows) > 0 && !(s.Tiles.Size > 0) {
		errs = append(errs, fmt.Errorf("%w: tile size %v", ErrInvalidConfig, s.Tiles.Size))
	}
	seen := make(map[string]struct{}, len(s.Bodies))
	for i, b := range s.Bodies {
		if b.Tag == "" {
			errs = append(errs, fmt.Errorf("%w: body %d has no tag", ErrInvalidConfig, i))
			continue
		}
		if _, dup := seen[b.Tag]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate body tag %q", ErrInvalidConfig, b.Tag))
		}
		seen[b.Tag] = struct{}{}
	}
	return errors.Join(errs...)
}

// LoadScenario reads a YAML scenario on top of the default config.
func LoadScenario(r io.Reader) (*Scenario, error) {
	s := Scenario{Config: Default()}
	if err := decodeYAML(r, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenarioJSON reads a JSON scenario on top of the default config.
func LoadScenarioJSON(r io.Reader) (*Scenario, error) {
	s := Scenario{Config: Default()}
	if err := decodeJSON(r, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenarioFile reads a scenario file; a missing name defaults to the path.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s *Scenario
	if isJSON(path) {
		s, err = LoadScenarioJSON(f)
	} else {
		s, err = LoadScenario(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
