package world

import "github.com/zeusync/collision/internal/core/systems/physics"

// BroadPhase selects how entity pairs are found before the narrow phase.
type BroadPhase string

const (
	// BroadPhaseGrid asks the spatial grid for neighbours within NeighborRadius cells.
	BroadPhaseGrid BroadPhase = "grid"
	// BroadPhaseSweep sorts swept extents along X and prunes non-overlapping pairs.
	BroadPhaseSweep BroadPhase = "sweep"
)

// Config holds the world-level simulation settings.
type Config struct {
	Width          float64      `yaml:"width" json:"width"`
	Height         float64      `yaml:"height" json:"height"`
	CellSize       float64      `yaml:"cell_size" json:"cell_size"`
	NeighborRadius int          `yaml:"neighbor_radius" json:"neighbor_radius"`
	BroadPhase     BroadPhase   `yaml:"broad_phase" json:"broad_phase"`
	Gravity        physics.Vec2 `yaml:"gravity" json:"gravity"`
}

// DefaultConfig returns a 1024x768 world with 64 unit cells and no gravity.
func DefaultConfig() Config {
	return Config{
		Width:          1024,
		Height:         768,
		CellSize:       64,
		NeighborRadius: 1,
		BroadPhase:     BroadPhaseGrid,
	}
}
