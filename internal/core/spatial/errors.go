package spatial

import "errors"

// Spatial grid errors
var (
	// ErrInvalidArgument reports a non-positive grid dimension, extent or radius.
	ErrInvalidArgument = errors.New("invalid spatial argument")
	// ErrOutOfRange reports an extent that leaves the modeled world bounds.
	ErrOutOfRange = errors.New("position out of grid bounds")
)
