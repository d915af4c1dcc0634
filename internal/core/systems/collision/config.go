package collision

// Numeric policy defaults.
const (
	DefaultVelocityEpsilon = 1e-12
	DefaultTimeMargin      = 1e-6
)

// Config holds the numeric policy of the narrow phase.
type Config struct {
	// VelocityEpsilon is the smallest projected speed treated as motion.
	VelocityEpsilon float64 `yaml:"velocity_epsilon" json:"velocity_epsilon"`
	// TimeMargin is subtracted from every reported time of impact so a
	// body placed at contact starts the next frame just short of touching.
	TimeMargin float64 `yaml:"time_margin" json:"time_margin"`
}

// DefaultConfig returns the standard numeric policy.
func DefaultConfig() Config {
	return Config{
		VelocityEpsilon: DefaultVelocityEpsilon,
		TimeMargin:      DefaultTimeMargin,
	}
}
