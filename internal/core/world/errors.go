package world

import "errors"

// World errors
var (
	ErrBodyNotFound = errors.New("body not found")
	ErrInvalidBody  = errors.New("invalid body definition")
	ErrInvalidTile  = errors.New("tile outside map")

	ErrStepInProgress = errors.New("step already in progress")
)
