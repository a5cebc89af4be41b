package domain

import "errors"

var (
	// ErrGridVariableNotFound means the grids file lacks the coordinates for a grid kind.
	// It aborts processing of the whole folder.
	ErrGridVariableNotFound = errors.New("grid variable not found")

	// ErrNoDataVariable means a file has no variable besides time and dimensions.
	ErrNoDataVariable = errors.New("no data variable")

	// ErrIncompatibleShapes means data and coordinates cannot be aligned.
	ErrIncompatibleShapes = errors.New("incompatible shapes")

	// ErrReadFailure wraps any open/read error on a data file.
	ErrReadFailure = errors.New("read failure")

	// ErrEmptyData means no finite value is left to plot.
	ErrEmptyData = errors.New("empty data")

	// ErrDuplicateImage means another file of the folder already owns the image name.
	ErrDuplicateImage = errors.New("duplicate image")

	// ErrInvalidResolution rejects a target mesh step outside [0.05, 90].
	ErrInvalidResolution = errors.New("invalid resolution")
)
